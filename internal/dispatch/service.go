package dispatch

import (
	"context"
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"

	"github.com/revenuewire/translation/internal/catalog"
	"github.com/revenuewire/translation/internal/domain"
	"github.com/revenuewire/translation/internal/logging"
	"github.com/revenuewire/translation/internal/provider"
	"github.com/revenuewire/translation/internal/queue"
)

// Provider data keys persisted on asynchronous projects.
const (
	DataProjectID = "project_id"
	DataResources = "resources"
)

const (
	codeUnknownProvider = "DISPATCH_UNKNOWN_PROVIDER"
	codeProviderFailed  = "DISPATCH_PROVIDER_FAILED"
)

// UnitSource resolves source texts for submission payloads.
type UnitSource interface {
	Get(ctx context.Context, id string) (*catalog.Unit, error)
}

// ItemRepository is the slice of the queue store the dispatcher touches.
type ItemRepository interface {
	ByProject(ctx context.Context, projectID string) ([]*queue.Item, error)
	Update(ctx context.Context, item *queue.Item, columns ...string) error
}

// ProjectRepository loads and advances project records.
type ProjectRepository interface {
	Get(ctx context.Context, id string) (*queue.Project, error)
	Update(ctx context.Context, project *queue.Project, columns ...string) error
	ByStatus(ctx context.Context, statuses ...domain.ProjectStatus) ([]*queue.Project, error)
}

// Resolver maps a provider code to its adapter.
type Resolver interface {
	Resolve(kind domain.Provider) (provider.Translator, error)
}

// Service hands pending projects to their provider adapters. Synchronous
// providers complete inline; asynchronous ones leave the project in flight
// for reconciliation to finish later.
type Service interface {
	Dispatch(ctx context.Context, projectID string) error
	DispatchPending(ctx context.Context) error
}

// Option configures the service at construction time.
type Option func(*service)

// WithLogger attaches a structured logger.
func WithLogger(logger logging.Logger) Option {
	return func(s *service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSourceLanguage overrides the source language sent to providers.
func WithSourceLanguage(code string) Option {
	return func(s *service) {
		if code != "" {
			s.sourceLanguage = code
		}
	}
}

type service struct {
	units          UnitSource
	items          ItemRepository
	projects       ProjectRepository
	providers      Resolver
	sourceLanguage string
	logger         logging.Logger
}

// NewService wires a dispatcher over the stores and the provider registry.
func NewService(units UnitSource, items ItemRepository, projects ProjectRepository, providers Resolver, opts ...Option) Service {
	s := &service{
		units:          units,
		items:          items,
		projects:       projects,
		providers:      providers,
		sourceLanguage: catalog.DefaultLanguage,
		logger:         logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// DispatchPending dispatches every PENDING project. A failing project does
// not stop its siblings; errors are joined and reported once the sweep ends.
func (s *service) DispatchPending(ctx context.Context) error {
	pending, err := s.projects.ByStatus(ctx, domain.ProjectPending)
	if err != nil {
		return fmt.Errorf("dispatch: list pending projects: %w", err)
	}

	var errs []error
	for _, project := range pending {
		if err := s.Dispatch(ctx, project.ID); err != nil {
			s.logger.Error("dispatch.project_failed", "project", project.ID, "error", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Dispatch submits one project to its provider. Re-dispatching a project
// that already left PENDING is a logged no-op, so crashed sweeps can be
// retried wholesale.
func (s *service) Dispatch(ctx context.Context, projectID string) error {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return fmt.Errorf("dispatch: load project %s: %w", projectID, err)
	}
	if project.Status != domain.ProjectPending {
		s.logger.Info("dispatch.skip", "project", project.ID, "status", project.Status)
		return nil
	}

	translator, err := s.providers.Resolve(project.Provider)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryCommand, "dispatch: unresolvable provider").
			WithTextCode(codeUnknownProvider)
	}

	items, err := s.items.ByProject(ctx, project.ID)
	if err != nil {
		return fmt.Errorf("dispatch: load items for %s: %w", project.ID, err)
	}

	// Only PENDING items travel; a partially dispatched batch picks up
	// where it left off.
	submission := make([]*queue.Item, 0, len(items))
	texts := make(map[string]string, len(items))
	for _, item := range items {
		if item.Status != domain.QueuePending {
			continue
		}
		sourceID, _, _, err := queue.SplitItemID(item.ID)
		if err != nil {
			return fmt.Errorf("dispatch: %w", err)
		}
		unit, err := s.units.Get(ctx, sourceID)
		if err != nil {
			return fmt.Errorf("dispatch: resolve source unit %s: %w", sourceID, err)
		}
		submission = append(submission, item)
		texts[item.ID] = unit.Text
	}

	if len(submission) == 0 {
		s.logger.Warn("dispatch.empty", "project", project.ID)
		return s.completeProject(ctx, project)
	}

	s.logger.Info("dispatch.start",
		"project", project.ID,
		"provider", project.Provider,
		"target_language", project.TargetLanguage,
		"items", len(submission),
	)

	switch adapter := translator.(type) {
	case provider.Machine:
		return s.dispatchSync(ctx, project, adapter, submission, texts)
	case provider.Marketplace:
		return s.dispatchAsync(ctx, project, adapter, submission, texts)
	default:
		return fmt.Errorf("dispatch: adapter for %s implements no transport", project.Provider)
	}
}

// dispatchSync translates inline and completes the project in one pass.
// Texts dropped by the adapter stay PENDING and the project stays open for
// a later retry; a wholly empty result aborts with no item writes.
func (s *service) dispatchSync(ctx context.Context, project *queue.Project, adapter provider.Machine, items []*queue.Item, texts map[string]string) error {
	results, err := adapter.TranslateBatch(ctx, s.sourceLanguage, project.TargetLanguage, texts)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryCommand, "dispatch: translate batch failed").
			WithTextCode(codeProviderFailed)
	}
	if len(results) == 0 {
		return goerrors.Wrap(fmt.Errorf("project %s", project.ID), goerrors.CategoryCommand, "dispatch: provider returned no translations").
			WithTextCode(codeProviderFailed)
	}

	translated := 0
	for _, item := range items {
		result, ok := results[item.ID]
		if !ok {
			s.logger.Warn("dispatch.item_untranslated", "project", project.ID, "item", item.ID)
			continue
		}
		item.TargetResult = result
		item.Status = domain.QueueReady
		if err := s.items.Update(ctx, item, "status", "target_result"); err != nil {
			return fmt.Errorf("dispatch: update item %s: %w", item.ID, err)
		}
		translated++
	}

	if translated < len(items) {
		s.logger.Warn("dispatch.partial",
			"project", project.ID,
			"translated", translated,
			"pending", len(items)-translated,
		)
		return nil
	}
	return s.completeProject(ctx, project)
}

// dispatchAsync hands the batch to the vendor and parks the project in
// IN_PROGRESS with the vendor's tracking data. Items stay PENDING until
// reconciliation brings results back.
func (s *service) dispatchAsync(ctx context.Context, project *queue.Project, adapter provider.Marketplace, items []*queue.Item, texts map[string]string) error {
	sub := provider.Submission{
		ProjectID:      project.ID,
		SourceLanguage: s.sourceLanguage,
		TargetLanguage: project.TargetLanguage,
		Items:          make([]provider.SubmissionItem, 0, len(items)),
	}
	for _, item := range items {
		sub.Items = append(sub.Items, provider.SubmissionItem{ItemID: item.ID, Text: texts[item.ID]})
	}

	receipt, err := adapter.Submit(ctx, sub)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryCommand, "dispatch: submit failed").
			WithTextCode(codeProviderFailed)
	}

	data := map[string]any{
		DataProjectID: receipt.ProviderProjectID,
		DataResources: receipt.Resources,
	}
	for key, value := range receipt.Extra {
		data[key] = value
	}

	if !project.Status.CanTransition(domain.ProjectInProgress) {
		return fmt.Errorf("dispatch: project %s cannot move from %s to %s", project.ID, project.Status, domain.ProjectInProgress)
	}
	project.ProviderData = data
	project.Status = domain.ProjectInProgress
	if err := s.projects.Update(ctx, project, "status", "provider_data"); err != nil {
		return fmt.Errorf("dispatch: update project %s: %w", project.ID, err)
	}

	s.logger.Info("dispatch.submitted",
		"project", project.ID,
		"provider_project", receipt.ProviderProjectID,
	)
	return nil
}

func (s *service) completeProject(ctx context.Context, project *queue.Project) error {
	if !project.Status.CanTransition(domain.ProjectCompleted) {
		return fmt.Errorf("dispatch: project %s cannot move from %s to %s", project.ID, project.Status, domain.ProjectCompleted)
	}
	project.Status = domain.ProjectCompleted
	if err := s.projects.Update(ctx, project, "status"); err != nil {
		return fmt.Errorf("dispatch: complete project %s: %w", project.ID, err)
	}
	s.logger.Info("dispatch.completed", "project", project.ID)
	return nil
}
