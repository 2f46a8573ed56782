package commands

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	command "github.com/goliatone/go-command"

	"github.com/revenuewire/translation/internal/diff"
	"github.com/revenuewire/translation/internal/dispatch"
	"github.com/revenuewire/translation/internal/domain"
	"github.com/revenuewire/translation/internal/logging"
	"github.com/revenuewire/translation/internal/publish"
	"github.com/revenuewire/translation/internal/reconcile"
)

const (
	diffMessageType      = "translation.queue.diff"
	dispatchMessageType  = "translation.queue.dispatch"
	reconcileMessageType = "translation.queue.reconcile"
	publishMessageType   = "translation.queue.publish"
)

var (
	_ command.Commander[DiffCommand]      = (*DiffHandler)(nil)
	_ command.Commander[DispatchCommand]  = (*DispatchHandler)(nil)
	_ command.Commander[ReconcileCommand] = (*ReconcileHandler)(nil)
	_ command.Commander[PublishCommand]   = (*PublishHandler)(nil)
)

// DiffCommand queues untranslated texts for one target language.
type DiffCommand struct {
	TargetLanguage string `json:"target_language"`
	Provider       string `json:"provider"`
	BatchLimit     int    `json:"batch_limit,omitempty"`
}

// Type implements command.Message.
func (DiffCommand) Type() string { return diffMessageType }

// Validate satisfies command.Message.
func (c DiffCommand) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.TargetLanguage, validation.Required),
		validation.Field(&c.Provider, validation.Required, validation.By(func(any) error {
			if _, ok := domain.ParseProvider(c.Provider); !ok {
				return fmt.Errorf("unknown provider %q", c.Provider)
			}
			return nil
		})),
		validation.Field(&c.BatchLimit, validation.Min(0)),
	)
}

// DispatchCommand submits queued projects to their providers. An empty
// ProjectID sweeps every pending project.
type DispatchCommand struct {
	ProjectID string `json:"project_id,omitempty"`
}

// Type implements command.Message.
func (DispatchCommand) Type() string { return dispatchMessageType }

// Validate satisfies command.Message.
func (DispatchCommand) Validate() error { return nil }

// ReconcileCommand polls asynchronous providers for finished work. An empty
// ProjectID polls every in-flight project.
type ReconcileCommand struct {
	ProjectID string `json:"project_id,omitempty"`
}

// Type implements command.Message.
func (ReconcileCommand) Type() string { return reconcileMessageType }

// Validate satisfies command.Message.
func (ReconcileCommand) Validate() error { return nil }

// PublishCommand promotes finished translations back into the store.
type PublishCommand struct{}

// Type implements command.Message.
func (PublishCommand) Type() string { return publishMessageType }

// Validate satisfies command.Message.
func (PublishCommand) Validate() error { return nil }

// DiffHandler drives diff sweeps through the shared handler foundation.
type DiffHandler struct {
	inner *Handler[DiffCommand]
}

// NewDiffHandler binds the handler to a diff engine.
func NewDiffHandler(svc diff.Service, logger logging.Logger, opts ...HandlerOption[DiffCommand]) *DiffHandler {
	if logger == nil {
		logger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg DiffCommand) error {
		prov, ok := domain.ParseProvider(msg.Provider)
		if !ok {
			return fmt.Errorf("commands: unknown provider %q", msg.Provider)
		}
		result, err := svc.Diff(ctx, diff.Request{
			TargetLanguage: msg.TargetLanguage,
			Provider:       prov,
			BatchLimit:     msg.BatchLimit,
		})
		if err != nil {
			return err
		}
		logging.WithFields(logger, map[string]any{
			"target_language":  msg.TargetLanguage,
			"provider":         msg.Provider,
			"items_queued":     result.ItemsQueued,
			"projects_created": result.ProjectsCreated,
		}).Info("queue.command.diff.completed")
		return nil
	}

	handlerOpts := append([]HandlerOption[DiffCommand]{
		WithLogger[DiffCommand](logger),
		WithOperation[DiffCommand]("queue.diff"),
	}, opts...)
	return &DiffHandler{inner: NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[DiffCommand].
func (h *DiffHandler) Execute(ctx context.Context, msg DiffCommand) error {
	return h.inner.Execute(ctx, msg)
}

// DispatchHandler drives project submission through the shared handler
// foundation.
type DispatchHandler struct {
	inner *Handler[DispatchCommand]
}

// NewDispatchHandler binds the handler to a dispatch engine.
func NewDispatchHandler(svc dispatch.Service, logger logging.Logger, opts ...HandlerOption[DispatchCommand]) *DispatchHandler {
	if logger == nil {
		logger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg DispatchCommand) error {
		if msg.ProjectID == "" {
			return svc.DispatchPending(ctx)
		}
		return svc.Dispatch(ctx, msg.ProjectID)
	}

	handlerOpts := append([]HandlerOption[DispatchCommand]{
		WithLogger[DispatchCommand](logger),
		WithOperation[DispatchCommand]("queue.dispatch"),
	}, opts...)
	return &DispatchHandler{inner: NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[DispatchCommand].
func (h *DispatchHandler) Execute(ctx context.Context, msg DispatchCommand) error {
	return h.inner.Execute(ctx, msg)
}

// ReconcileHandler drives result collection through the shared handler
// foundation.
type ReconcileHandler struct {
	inner *Handler[ReconcileCommand]
}

// NewReconcileHandler binds the handler to a reconciliation engine.
func NewReconcileHandler(svc reconcile.Service, logger logging.Logger, opts ...HandlerOption[ReconcileCommand]) *ReconcileHandler {
	if logger == nil {
		logger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ReconcileCommand) error {
		if msg.ProjectID != "" {
			report, err := svc.Reconcile(ctx, msg.ProjectID)
			if err != nil {
				return err
			}
			logReport(logger, report)
			return nil
		}
		reports, err := svc.ReconcileInProgress(ctx)
		for _, report := range reports {
			logReport(logger, report)
		}
		return err
	}

	handlerOpts := append([]HandlerOption[ReconcileCommand]{
		WithLogger[ReconcileCommand](logger),
		WithOperation[ReconcileCommand]("queue.reconcile"),
	}, opts...)
	return &ReconcileHandler{inner: NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[ReconcileCommand].
func (h *ReconcileHandler) Execute(ctx context.Context, msg ReconcileCommand) error {
	return h.inner.Execute(ctx, msg)
}

func logReport(logger logging.Logger, report *reconcile.Report) {
	if report == nil {
		return
	}
	logging.WithFields(logger, map[string]any{
		"project":       report.ProjectID,
		"status":        report.Status,
		"committed":     report.Committed,
		"items_updated": report.ItemsUpdated,
	}).Info(report.Message)
}

// PublishHandler drives publish sweeps through the shared handler foundation.
type PublishHandler struct {
	inner *Handler[PublishCommand]
}

// NewPublishHandler binds the handler to a publish engine.
func NewPublishHandler(svc publish.Service, logger logging.Logger, opts ...HandlerOption[PublishCommand]) *PublishHandler {
	if logger == nil {
		logger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg PublishCommand) error {
		result, err := svc.Publish(ctx)
		if result != nil {
			logging.WithFields(logger, map[string]any{
				"published": result.Published,
				"skipped":   result.Skipped,
			}).Info("queue.command.publish.completed")
		}
		return err
	}

	handlerOpts := append([]HandlerOption[PublishCommand]{
		WithLogger[PublishCommand](logger),
		WithOperation[PublishCommand]("queue.publish"),
	}, opts...)
	return &PublishHandler{inner: NewHandler(exec, handlerOpts...)}
}

// Execute satisfies command.Commander[PublishCommand].
func (h *PublishHandler) Execute(ctx context.Context, msg PublishCommand) error {
	return h.inner.Execute(ctx, msg)
}
