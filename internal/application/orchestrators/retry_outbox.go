package orchestrators

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"paddock/internal/adapters/email"
	outboxStore "paddock/internal/adapters/storage/outbox"
	domain "paddock/internal/domain/outbox"
	"paddock/internal/metrics"

	"github.com/avast/retry-go"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// OutboxProcessor drains the outbox, retrying failed deliveries with
// exponential backoff.
type OutboxProcessor struct {
	store     outboxStore.Store
	executors map[string]ActionExecutor
	baseDelay time.Duration
	maxDelay  time.Duration
	batchSize int
}

// ActionExecutor executes a specific type of external action.
type ActionExecutor interface {
	// Execute runs the external action with the given payload.
	// Returns the provider's external ID and any error.
	Execute(ctx context.Context, payload string) (string, error)
}

// ProcessorOptions tune retry pacing and batch size.
type ProcessorOptions struct {
	BaseDelay time.Duration
	MaxDelay  time.Duration
	BatchSize int
}

// NewOutboxProcessor creates a new outbox processor.
func NewOutboxProcessor(store outboxStore.Store, executors map[string]ActionExecutor, opts ProcessorOptions) *OutboxProcessor {
	if opts.BaseDelay <= 0 {
		opts.BaseDelay = time.Minute
	}
	if opts.MaxDelay <= 0 {
		opts.MaxDelay = time.Hour
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = 20
	}
	return &OutboxProcessor{
		store:     store,
		executors: executors,
		baseDelay: opts.BaseDelay,
		maxDelay:  opts.MaxDelay,
		batchSize: opts.BatchSize,
	}
}

// ProcessPending processes pending outbox entries with retries.
// POST: Each due entry is attempted once; state is persisted after each
func (p *OutboxProcessor) ProcessPending(ctx context.Context) error {
	entries, err := p.store.ListPending(ctx, p.batchSize)
	if err != nil {
		return fmt.Errorf("list pending outbox entries: %w", err)
	}

	for _, entry := range entries {
		if err := p.processEntry(ctx, entry); err != nil {
			slog.Error("outbox_process_failed", "entry_id", entry.ID,
				"action_type", entry.ActionType, "error", err.Error())
		}
	}
	return nil
}

func (p *OutboxProcessor) processEntry(ctx context.Context, entry domain.Entry) error {
	// Honor the backoff window between attempts.
	if !entry.LastAttemptedAt.IsZero() {
		delay := entry.NextRetryDelay(p.baseDelay, p.maxDelay)
		if time.Since(entry.LastAttemptedAt) < delay {
			return nil
		}
	}

	executor, ok := p.executors[entry.ActionType]
	if !ok {
		entry.MarkFailed(fmt.Errorf("no executor registered for action type: %s", entry.ActionType))
		return p.store.Save(ctx, entry)
	}

	entry.MarkAttempt()
	externalID, err := executor.Execute(ctx, entry.Payload)
	if err != nil {
		entry.MarkFailed(err)
		metrics.OutboxDeliveries.WithLabelValues("failed").Inc()
		slog.Warn("outbox_action_failed", "entry_id", entry.ID,
			"attempt", entry.Attempts, "error", err.Error())
	} else {
		entry.MarkSuccess(externalID)
		metrics.OutboxDeliveries.WithLabelValues("delivered").Inc()
		slog.Info("outbox_action_succeeded", "entry_id", entry.ID,
			"action_type", entry.ActionType, "external_id", externalID)
	}

	return p.store.Save(ctx, entry)
}

// ProcessSingle manually processes one entry (admin retry).
// PRE: entry exists and is not terminal
func (p *OutboxProcessor) ProcessSingle(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	if entry.IsTerminal() {
		return fmt.Errorf("entry %s is in terminal state and cannot be retried", entryID)
	}

	executor, ok := p.executors[entry.ActionType]
	if !ok {
		return fmt.Errorf("no executor registered for action type: %s", entry.ActionType)
	}

	entry.MarkAttempt()
	externalID, err := executor.Execute(ctx, entry.Payload)
	if err != nil {
		entry.MarkFailed(err)
	} else {
		entry.MarkSuccess(externalID)
	}
	return p.store.Save(ctx, entry)
}

// AbandonEntry marks an entry as abandoned by admin.
func (p *OutboxProcessor) AbandonEntry(ctx context.Context, entryID string) error {
	entry, err := p.store.GetByID(ctx, entryID)
	if err != nil {
		return fmt.Errorf("get outbox entry: %w", err)
	}
	entry.MarkAbandoned()
	return p.store.Save(ctx, entry)
}

// mdRenderer converts markdown notification bodies to email HTML.
// Raw HTML in the input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// EmailExecutor delivers notification emails through the configured sender.
type EmailExecutor struct {
	Sender email.Sender
}

// Execute sends one email from the payload.
// PRE: payload is valid JSON matching EmailPayload
// POST: email accepted by the provider, returns its message ID
// INVARIANT: outbox entry status managed by caller
func (e *EmailExecutor) Execute(ctx context.Context, payload string) (string, error) {
	var p EmailPayload
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return "", fmt.Errorf("unmarshal payload: %w", err)
	}

	var html bytes.Buffer
	if err := mdRenderer.Convert([]byte(p.Markdown), &html); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}

	var result email.SendResult
	err := retry.Do(
		func() error {
			var sendErr error
			result, sendErr = e.Sender.Send(ctx, email.SendRequest{
				To:      []string{p.To},
				Subject: p.Subject,
				HTML:    html.String(),
			})
			return sendErr
		},
		retry.Attempts(3),
		retry.Delay(500*time.Millisecond),
		retry.MaxDelay(5*time.Second),
		retry.Context(ctx),
	)
	if err != nil {
		return "", err
	}
	return result.MessageID, nil
}

// StartBackgroundWorker starts a goroutine that periodically drains the
// outbox until stopCh is closed.
func StartBackgroundWorker(processor *OutboxProcessor, interval time.Duration, stopCh <-chan struct{}) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
				if err := processor.ProcessPending(ctx); err != nil {
					slog.Error("outbox_background_process_failed", "error", err.Error())
				}
				cancel()
			case <-stopCh:
				slog.Info("outbox_background_worker_stopped")
				return
			}
		}
	}()
}
