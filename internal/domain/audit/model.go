package audit

import (
	"time"

	"github.com/google/uuid"
)

// Category represents the type of audit event.
type Category string

const (
	CategoryAccount  Category = "account"
	CategoryStable   Category = "stable"
	CategorySession  Category = "session"
	CategoryBilling  Category = "billing"
	CategorySecurity Category = "security"
)

// Action represents the action that occurred.
type Action string

const (
	ActionCreate        Action = "create"
	ActionUpdate        Action = "update"
	ActionDelete        Action = "delete"
	ActionApprove       Action = "approve"
	ActionReject        Action = "reject"
	ActionChangeManager Action = "change_manager"
	ActionLogin         Action = "login"
	ActionImport        Action = "import"
	ActionExport        Action = "export"
)

// Event represents a single audit log entry. Admin workflow mutations
// (stable approval, rejection, manager changes, deletions) append one each.
type Event struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Category     Category  `json:"category"`
	Action       Action    `json:"action"`
	ActorEmail   string    `json:"actor_email"`
	ResourceType string    `json:"resource_type"`
	ResourceID   string    `json:"resource_id"`
	Description  string    `json:"description"`
}

// NewEvent creates a new audit event with the current timestamp.
func NewEvent(actorEmail string, category Category, action Action) Event {
	return Event{
		ID:         uuid.New().String(),
		Timestamp:  time.Now(),
		Category:   category,
		Action:     action,
		ActorEmail: actorEmail,
	}
}

// WithResource sets resource information.
func (e Event) WithResource(resourceType, resourceID string) Event {
	e.ResourceType = resourceType
	e.ResourceID = resourceID
	return e
}

// WithDescription sets the event description.
func (e Event) WithDescription(desc string) Event {
	e.Description = desc
	return e
}
