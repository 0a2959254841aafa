// Package service provides the service desk core: the case dispatcher and
// the conversational front controller.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"

	"github.com/capitalize-ai/hr-service-desk/internal/intent"
	"github.com/capitalize-ai/hr-service-desk/internal/model"
	"github.com/capitalize-ai/hr-service-desk/internal/store"
	"github.com/capitalize-ai/hr-service-desk/internal/tools"
	"github.com/capitalize-ai/hr-service-desk/pkg/logger"
	"github.com/capitalize-ai/hr-service-desk/pkg/metrics"
)

var tracer = otel.Tracer("github.com/capitalize-ai/hr-service-desk/internal/service")

// PersistenceError is a case store failure scoped to one case.
type PersistenceError struct {
	CaseID string
	Op     string
	Err    error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("case %s: %s failed: %v", e.CaseID, e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// CaseOutcome is the per-case result of dispatching user input. Case always
// carries the final status; Err is the failure that shaped it, if any.
type CaseOutcome struct {
	Case *model.Case
	Err  error
}

// OK reports whether the case completed and every write succeeded.
func (o CaseOutcome) OK() bool {
	return o.Err == nil && o.Case.Status == model.CaseStatusCompleted
}

// EventPublisher appends case transitions to a journal.
type EventPublisher interface {
	Publish(ctx context.Context, event *model.CaseEvent) error
}

// DispatcherConfig configures a Dispatcher.
type DispatcherConfig struct {
	// HandlerTimeout bounds one handler invocation; zero means no limit.
	HandlerTimeout time.Duration
}

// Dispatcher turns user input into cases and runs each one on its handler.
type Dispatcher struct {
	store    store.CaseStore
	registry *tools.Registry
	events   EventPublisher
	cfg      DispatcherConfig
	logger   *logger.Logger

	newID func() string
	now   func() time.Time
}

// NewDispatcher creates a dispatcher. events may be nil.
func NewDispatcher(
	caseStore store.CaseStore,
	registry *tools.Registry,
	events EventPublisher,
	cfg DispatcherConfig,
	log *logger.Logger,
) *Dispatcher {
	return &Dispatcher{
		store:    caseStore,
		registry: registry,
		events:   events,
		cfg:      cfg,
		logger:   log,
		newID:    func() string { return uuid.Must(uuid.NewV7()).String() },
		now:      time.Now,
	}
}

// ProcessUserInput classifies text and processes one case per intent, in
// classification order. Failures are recorded on their own case and never
// stop the remaining ones; the result always has one entry per intent.
func (d *Dispatcher) ProcessUserInput(ctx context.Context, userID, text string) []CaseOutcome {
	ctx, span := tracer.Start(ctx, "dispatcher.process_user_input")
	defer span.End()

	intents := intent.Classify(text)
	span.SetAttributes(attribute.Int("intents", len(intents)))

	d.logger.Info("dispatching user input",
		zap.String("user_id", userID),
		zap.Int("intents", len(intents)),
	)

	outcomes := make([]CaseOutcome, 0, len(intents))
	for _, in := range intents {
		outcomes = append(outcomes, d.processIntent(ctx, userID, in))
	}

	return outcomes
}

func (d *Dispatcher) processIntent(ctx context.Context, userID string, in model.Intent) CaseOutcome {
	c := model.NewCase(d.newID(), userID, in, d.now())

	ctx, span := tracer.Start(ctx, "dispatcher.case")
	defer span.End()
	span.SetAttributes(
		attribute.String("case.id", c.ID),
		attribute.String("case.intent", string(c.Intent)),
	)

	log := d.logger.With(
		zap.String("case_id", c.ID),
		zap.String("user_id", userID),
		zap.String("intent", string(c.Intent)),
	)

	if _, err := d.store.Create(ctx, c); err != nil {
		perr := &PersistenceError{CaseID: c.ID, Op: "create", Err: err}
		log.Error("failed to persist case", zap.Error(err))
		metrics.RecordPersistenceFailure("create")
		span.RecordError(perr)
		span.SetStatus(codes.Error, "persist case")

		// Never handed to a handler; close it locally so the caller sees why.
		_ = c.Apply(model.Failed("No se pudo registrar el caso: "+err.Error()), d.now())
		metrics.RecordCase(string(c.Intent), string(c.Status), 0)
		return CaseOutcome{Case: c, Err: perr}
	}
	d.publish(ctx, c, "")
	log.Info("case created")

	var persistErr error
	if err := d.transition(ctx, c, model.InProgress()); err != nil {
		log.Warn("failed to mark case in progress", zap.Error(err))
		persistErr = err
	}

	tool, ok := d.registry.Lookup(c.Intent)
	var result tools.Result
	var handlerErr error
	start := time.Now()
	if !ok {
		handlerErr = tools.Fail("dispatcher", "no handler registered for "+string(c.Intent))
	} else {
		result, handlerErr = d.execute(ctx, tool, c)
	}
	elapsed := time.Since(start)

	var update model.StatusUpdate
	if handlerErr != nil {
		update = model.Failed("Error al procesar: " + handlerReason(handlerErr))
		log.Error("case handler failed", zap.Error(handlerErr), zap.Duration("duration", elapsed))
		span.RecordError(handlerErr)
		span.SetStatus(codes.Error, "handler failed")
	} else {
		update = model.Completed(result.Text)
		log.Info("case completed", zap.Duration("duration", elapsed))
	}
	if result.ThreadID != "" && c.ThreadID == "" {
		update = update.WithThread(result.ThreadID)
	}

	if err := d.transition(ctx, c, update); err != nil {
		log.Error("failed to persist case outcome", zap.Error(err))
		persistErr = err
		// The store missed the update, but the caller still gets the outcome.
		_ = c.Apply(update, d.now())
	}
	metrics.RecordCase(string(c.Intent), string(c.Status), elapsed.Seconds())

	switch {
	case handlerErr != nil:
		return CaseOutcome{Case: c, Err: handlerErr}
	case persistErr != nil:
		return CaseOutcome{Case: c, Err: persistErr}
	default:
		return CaseOutcome{Case: c}
	}
}

// execute runs tool under the configured timeout and converts panics and
// foreign errors into handler errors.
func (d *Dispatcher) execute(ctx context.Context, tool tools.Tool, c *model.Case) (result tools.Result, err error) {
	if d.cfg.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.HandlerTimeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			err = tools.Fail(tool.Name(), fmt.Sprintf("handler panicked: %v", r))
		}
	}()

	result, err = tool.Execute(ctx, tools.Task{
		CaseID:      c.ID,
		UserID:      c.UserID,
		Intent:      c.Intent,
		Description: c.Description,
	})
	if err != nil {
		var herr *tools.HandlerError
		if !errors.As(err, &herr) {
			err = &tools.HandlerError{Tool: tool.Name(), Reason: err.Error(), Err: err}
		}
	}
	return result, err
}

// transition persists update and mirrors it on the in-memory case.
func (d *Dispatcher) transition(ctx context.Context, c *model.Case, update model.StatusUpdate) error {
	if err := d.store.UpdateStatus(ctx, c.ID, update); err != nil {
		metrics.RecordPersistenceFailure("update_status")
		return &PersistenceError{CaseID: c.ID, Op: "update_status", Err: err}
	}
	if err := c.Apply(update, d.now()); err != nil {
		return &PersistenceError{CaseID: c.ID, Op: "apply", Err: err}
	}

	reason := ""
	if update.Status == model.CaseStatusError {
		reason = c.Response()
	}
	d.publish(ctx, c, reason)
	return nil
}

func (d *Dispatcher) publish(ctx context.Context, c *model.Case, reason string) {
	if d.events == nil {
		return
	}

	event := &model.CaseEvent{
		ID:        d.newID(),
		CaseID:    c.ID,
		UserID:    c.UserID,
		Intent:    c.Intent,
		Status:    c.Status,
		Reason:    reason,
		CreatedAt: d.now(),
	}
	if err := d.events.Publish(ctx, event); err != nil {
		d.logger.Warn("failed to journal case event",
			zap.String("case_id", c.ID),
			zap.String("status", string(c.Status)),
			zap.Error(err),
		)
	}
}

func handlerReason(err error) string {
	var herr *tools.HandlerError
	if errors.As(err, &herr) {
		return herr.Reason
	}
	return err.Error()
}

// Views renders outcomes for API and CLI output.
func Views(outcomes []CaseOutcome) []model.CaseView {
	views := make([]model.CaseView, len(outcomes))
	for i, o := range outcomes {
		views[i] = model.CaseView{Case: *o.Case}
		if o.Err != nil {
			views[i].Error = o.Err.Error()
		}
	}
	return views
}
