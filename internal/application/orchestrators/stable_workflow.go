package orchestrators

import (
	"context"
	"fmt"
	"log/slog"

	"paddock/internal/domain/account"
	"paddock/internal/domain/audit"
	"paddock/internal/domain/notification"
	"paddock/internal/domain/stable"
)

// StableStoreForWorkflow defines the store interface needed by the stable
// admin workflow.
type StableStoreForWorkflow interface {
	GetByID(ctx context.Context, id string) (stable.Stable, error)
	List(ctx context.Context) ([]stable.Stable, error)
	SaveWithUsers(ctx context.Context, st stable.Stable, users ...account.User) error
	DeleteWithUsers(ctx context.Context, stableID string, users ...account.User) error
}

// AccountStoreForWorkflow defines the account lookups the workflow needs.
type AccountStoreForWorkflow interface {
	GetByEmail(ctx context.Context, email string) (account.User, error)
}

// AuditStoreForWorkflow appends audit events.
type AuditStoreForWorkflow interface {
	Append(ctx context.Context, e audit.Event) error
}

// StableWorkflowDeps holds dependencies for the stable admin workflow.
type StableWorkflowDeps struct {
	StableStore  StableStoreForWorkflow
	AccountStore AccountStoreForWorkflow
	AuditStore   AuditStoreForWorkflow
	Notify       NotifyDeps
}

// ExecuteApproveStable approves a pending or rejected stable and grants the
// associated roles in the same transaction as the status change.
// PRE: Stable exists and is not already approved
// POST: Stable approved; manager holds stable_manager; listed trainers hold trainer
func ExecuteApproveStable(ctx context.Context, stableID, adminEmail string, deps StableWorkflowDeps) error {
	st, err := deps.StableStore.GetByID(ctx, stableID)
	if err != nil {
		return fmt.Errorf("get stable: %w", err)
	}
	if err := st.Approve(); err != nil {
		return err
	}

	var users []account.User

	manager, err := deps.AccountStore.GetByEmail(ctx, account.NormalizeEmail(st.ManagerEmail))
	if err != nil {
		return fmt.Errorf("manager account %s: %w", st.ManagerEmail, err)
	}
	if !manager.HasRole(account.RoleStableManager) {
		if err := manager.GrantRole(account.RoleStableManager); err != nil {
			return err
		}
		users = append(users, manager)
	}

	// Trainer grants are best effort per email; an unknown trainer email on
	// the stable does not block approval.
	for _, te := range st.TrainerEmails {
		trainer, err := deps.AccountStore.GetByEmail(ctx, account.NormalizeEmail(te))
		if err != nil {
			slog.Warn("stable_trainer_not_found", "stable_id", stableID, "email", te)
			continue
		}
		if !trainer.HasRole(account.RoleTrainer) {
			if err := trainer.GrantRole(account.RoleTrainer); err != nil {
				return err
			}
			users = append(users, trainer)
		}
	}

	if err := deps.StableStore.SaveWithUsers(ctx, st, users...); err != nil {
		return fmt.Errorf("save approval: %w", err)
	}

	_ = deps.AuditStore.Append(ctx, audit.NewEvent(adminEmail, audit.CategoryStable, audit.ActionApprove).
		WithResource("stable", stableID).
		WithDescription("approved "+st.Name))

	ExecuteNotify(ctx, NotifyInput{
		UserEmail:         manager.Email,
		Type:              notification.TypeStableApproved,
		Title:             "Your stable has been approved",
		Message:           fmt.Sprintf("**%s** has been approved and is now visible to riders and trainers.", st.Name),
		RelatedEntityType: "stable",
		RelatedEntityID:   stableID,
	}, deps.Notify)

	slog.Info("stable_approved", "stable_id", stableID, "admin", adminEmail)
	return nil
}

// ExecuteRejectStable rejects a pending stable. No roles change; a pending
// stable never conferred any.
// PRE: Stable exists and is pending
// POST: Stable rejected; manager notified
func ExecuteRejectStable(ctx context.Context, stableID, adminEmail, reason string, deps StableWorkflowDeps) error {
	st, err := deps.StableStore.GetByID(ctx, stableID)
	if err != nil {
		return fmt.Errorf("get stable: %w", err)
	}
	if err := st.Reject(); err != nil {
		return err
	}
	if err := deps.StableStore.SaveWithUsers(ctx, st); err != nil {
		return fmt.Errorf("save rejection: %w", err)
	}

	_ = deps.AuditStore.Append(ctx, audit.NewEvent(adminEmail, audit.CategoryStable, audit.ActionReject).
		WithResource("stable", stableID).
		WithDescription("rejected "+st.Name))

	msg := fmt.Sprintf("**%s** was not approved.", st.Name)
	if reason != "" {
		msg += "\n\nReason: " + reason
	}
	ExecuteNotify(ctx, NotifyInput{
		UserEmail:         account.NormalizeEmail(st.ManagerEmail),
		Type:              notification.TypeStableRejected,
		Title:             "Your stable registration was rejected",
		Message:           msg,
		RelatedEntityType: "stable",
		RelatedEntityID:   stableID,
	}, deps.Notify)

	slog.Info("stable_rejected", "stable_id", stableID, "admin", adminEmail)
	return nil
}

// ExecuteChangeManager reassigns a stable to a new manager. The new manager
// gains stable_manager; the old manager keeps it only while managing some
// other stable. Both user updates commit with the stable record.
// PRE: Stable exists; new manager account exists
// POST: Stable references the new manager; roles reflect actual management
func ExecuteChangeManager(ctx context.Context, stableID, newManagerEmail, adminEmail string, deps StableWorkflowDeps) error {
	st, err := deps.StableStore.GetByID(ctx, stableID)
	if err != nil {
		return fmt.Errorf("get stable: %w", err)
	}

	newManagerEmail = account.NormalizeEmail(newManagerEmail)
	oldManagerEmail := account.NormalizeEmail(st.ManagerEmail)
	if newManagerEmail == oldManagerEmail {
		return nil
	}

	newManager, err := deps.AccountStore.GetByEmail(ctx, newManagerEmail)
	if err != nil {
		return fmt.Errorf("new manager account %s: %w", newManagerEmail, err)
	}

	var users []account.User
	if !newManager.HasRole(account.RoleStableManager) {
		if err := newManager.GrantRole(account.RoleStableManager); err != nil {
			return err
		}
		users = append(users, newManager)
	}

	all, err := deps.StableStore.List(ctx)
	if err != nil {
		return fmt.Errorf("list stables: %w", err)
	}
	if !stable.ManagesAnother(all, oldManagerEmail, stableID) {
		oldManager, err := deps.AccountStore.GetByEmail(ctx, oldManagerEmail)
		if err == nil && oldManager.HasRole(account.RoleStableManager) {
			oldManager.RevokeRole(account.RoleStableManager)
			users = append(users, oldManager)
		}
	}

	st.ManagerEmail = newManagerEmail
	if err := deps.StableStore.SaveWithUsers(ctx, st, users...); err != nil {
		return fmt.Errorf("save manager change: %w", err)
	}

	_ = deps.AuditStore.Append(ctx, audit.NewEvent(adminEmail, audit.CategoryStable, audit.ActionChangeManager).
		WithResource("stable", stableID).
		WithDescription(fmt.Sprintf("manager %s -> %s", oldManagerEmail, newManagerEmail)))

	slog.Info("stable_manager_changed", "stable_id", stableID,
		"old_manager", oldManagerEmail, "new_manager", newManagerEmail, "admin", adminEmail)
	return nil
}

// ExecuteDeleteStable removes a stable and revokes the manager's role when
// this was their only stable.
// PRE: Stable exists
// POST: Stable and its events removed; roles reflect actual management
func ExecuteDeleteStable(ctx context.Context, stableID, adminEmail string, deps StableWorkflowDeps) error {
	st, err := deps.StableStore.GetByID(ctx, stableID)
	if err != nil {
		return fmt.Errorf("get stable: %w", err)
	}

	managerEmail := account.NormalizeEmail(st.ManagerEmail)
	var users []account.User

	all, err := deps.StableStore.List(ctx)
	if err != nil {
		return fmt.Errorf("list stables: %w", err)
	}
	if !stable.ManagesAnother(all, managerEmail, stableID) {
		manager, err := deps.AccountStore.GetByEmail(ctx, managerEmail)
		if err == nil && manager.HasRole(account.RoleStableManager) {
			manager.RevokeRole(account.RoleStableManager)
			users = append(users, manager)
		}
	}

	if err := deps.StableStore.DeleteWithUsers(ctx, stableID, users...); err != nil {
		return fmt.Errorf("delete stable: %w", err)
	}

	_ = deps.AuditStore.Append(ctx, audit.NewEvent(adminEmail, audit.CategoryStable, audit.ActionDelete).
		WithResource("stable", stableID).
		WithDescription("deleted "+st.Name))

	slog.Info("stable_deleted", "stable_id", stableID, "admin", adminEmail)
	return nil
}
