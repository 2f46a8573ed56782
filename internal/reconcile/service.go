package reconcile

import (
	"context"
	"fmt"

	goerrors "github.com/goliatone/go-errors"

	"github.com/revenuewire/translation/internal/dispatch"
	"github.com/revenuewire/translation/internal/domain"
	"github.com/revenuewire/translation/internal/logging"
	"github.com/revenuewire/translation/internal/provider"
	"github.com/revenuewire/translation/internal/queue"
)

const codeProviderFailed = "RECONCILE_PROVIDER_FAILED"

// ItemRepository is the slice of the queue store reconciliation mutates.
type ItemRepository interface {
	Get(ctx context.Context, id string) (*queue.Item, error)
	Update(ctx context.Context, item *queue.Item, columns ...string) error
}

// ProjectRepository loads and advances in-flight projects.
type ProjectRepository interface {
	Get(ctx context.Context, id string) (*queue.Project, error)
	Update(ctx context.Context, project *queue.Project, columns ...string) error
	ByStatus(ctx context.Context, statuses ...domain.ProjectStatus) ([]*queue.Project, error)
}

// Resolver maps a provider code to its adapter.
type Resolver interface {
	Resolve(kind domain.Provider) (provider.Translator, error)
}

// Report describes the outcome of reconciling one project, suitable for
// operator-facing output.
type Report struct {
	ProjectID    string
	Status       string
	Committed    bool
	ItemsUpdated int
	Message      string
}

// Service polls asynchronous vendors for in-flight projects and commits
// finished results back into the queue.
type Service interface {
	Reconcile(ctx context.Context, projectID string) (*Report, error)
	ReconcileInProgress(ctx context.Context) ([]*Report, error)
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

type service struct {
	items     ItemRepository
	projects  ProjectRepository
	providers Resolver
	logger    logging.Logger
}

// NewService wires a reconciler over the queue stores and provider registry.
func NewService(items ItemRepository, projects ProjectRepository, providers Resolver, opts ...Option) Service {
	s := &service{
		items:     items,
		projects:  projects,
		providers: providers,
		logger:    logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ReconcileInProgress polls every IN_PROGRESS project. A failing project
// does not stop its siblings.
func (s *service) ReconcileInProgress(ctx context.Context) ([]*Report, error) {
	inFlight, err := s.projects.ByStatus(ctx, domain.ProjectInProgress)
	if err != nil {
		return nil, fmt.Errorf("reconcile: list in-progress projects: %w", err)
	}

	reports := make([]*Report, 0, len(inFlight))
	var firstErr error
	for _, project := range inFlight {
		report, err := s.Reconcile(ctx, project.ID)
		if err != nil {
			s.logger.Error("reconcile.project_failed", "project", project.ID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		reports = append(reports, report)
	}
	return reports, firstErr
}

// Reconcile polls one project. Unfinished vendor work is a reported no-op;
// a signed or completed vendor project has its results committed and the
// project closed. Reconciling a COMPLETED project changes nothing.
func (s *service) Reconcile(ctx context.Context, projectID string) (*Report, error) {
	project, err := s.projects.Get(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("reconcile: load project %s: %w", projectID, err)
	}

	switch project.Status {
	case domain.ProjectCompleted:
		return &Report{ProjectID: project.ID, Status: string(project.Status), Message: "project already committed"}, nil
	case domain.ProjectPending:
		return &Report{ProjectID: project.ID, Status: string(project.Status), Message: "project not dispatched yet"}, nil
	}

	translator, err := s.providers.Resolve(project.Provider)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryCommand, "reconcile: unresolvable provider").
			WithTextCode("RECONCILE_UNKNOWN_PROVIDER")
	}
	marketplace, ok := translator.(provider.Marketplace)
	if !ok {
		return nil, fmt.Errorf("reconcile: provider %s is synchronous, nothing to reconcile", project.Provider)
	}

	providerProjectID, resources, err := unpackProviderData(project.ProviderData)
	if err != nil {
		return nil, fmt.Errorf("reconcile: project %s: %w", project.ID, err)
	}

	report, err := marketplace.Status(ctx, providerProjectID)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryCommand, "reconcile: status poll failed").
			WithTextCode(codeProviderFailed)
	}

	s.logger.Info("reconcile.status",
		"project", project.ID,
		"provider_project", providerProjectID,
		"vendor_status", report.Code,
	)

	switch report.Code {
	case provider.StatusPending, provider.StatusInProgress:
		return &Report{
			ProjectID: project.ID,
			Status:    report.Code,
			Message:   fmt.Sprintf("vendor project %s is %s, check back later", providerProjectID, report.Code),
		}, nil
	case provider.StatusSigned, provider.StatusCompleted:
		return s.commit(ctx, project, marketplace, resources, report)
	default:
		return &Report{
			ProjectID: project.ID,
			Status:    report.Code,
			Message:   "Unable to commit unsigned project.",
		}, nil
	}
}

// commit downloads translated resources and writes results onto their queue
// items. Vendor resources unknown to the stored receipt, and results for
// item ids the queue no longer tracks, are drift: logged and skipped rather
// than fatal.
func (s *service) commit(ctx context.Context, project *queue.Project, marketplace provider.Marketplace, resources map[string]string, status *provider.StatusReport) (*Report, error) {
	updated := 0
	for sourceResource, translatedResources := range status.Bindings {
		if _, ok := resources[sourceResource]; !ok {
			s.logger.Warn("reconcile.unknown_resource", "project", project.ID, "resource", sourceResource)
			continue
		}
		if len(translatedResources) == 0 {
			s.logger.Warn("reconcile.resource_untranslated", "project", project.ID, "resource", sourceResource)
			continue
		}

		for _, translated := range translatedResources {
			results, err := marketplace.FetchResults(ctx, translated)
			if err != nil {
				return nil, goerrors.Wrap(err, goerrors.CategoryCommand, "reconcile: fetch results failed").
					WithTextCode(codeProviderFailed)
			}

			for itemID, text := range results {
				item, err := s.items.Get(ctx, itemID)
				if err != nil {
					if queue.IsNotFound(err) {
						s.logger.Warn("reconcile.unknown_item", "project", project.ID, "item", itemID)
						continue
					}
					return nil, fmt.Errorf("reconcile: load item %s: %w", itemID, err)
				}
				if item.Status != domain.QueuePending {
					s.logger.Debug("reconcile.item_already_settled", "item", itemID, "status", item.Status)
					continue
				}

				item.TargetResult = text
				item.Status = domain.QueueReady
				if err := s.items.Update(ctx, item, "status", "target_result"); err != nil {
					return nil, fmt.Errorf("reconcile: update item %s: %w", itemID, err)
				}
				updated++
			}
		}
	}

	if !project.Status.CanTransition(domain.ProjectCompleted) {
		return nil, fmt.Errorf("reconcile: project %s cannot move from %s to %s", project.ID, project.Status, domain.ProjectCompleted)
	}
	project.Status = domain.ProjectCompleted
	if err := s.projects.Update(ctx, project, "status"); err != nil {
		return nil, fmt.Errorf("reconcile: complete project %s: %w", project.ID, err)
	}

	s.logger.Info("reconcile.committed", "project", project.ID, "items_updated", updated)
	return &Report{
		ProjectID:    project.ID,
		Status:       status.Code,
		Committed:    true,
		ItemsUpdated: updated,
		Message:      fmt.Sprintf("committed %d translated items", updated),
	}, nil
}

// unpackProviderData recovers the vendor tracking state the dispatcher
// persisted. The resources map survives a JSON round trip as
// map[string]any, so both shapes are accepted.
func unpackProviderData(data map[string]any) (string, map[string]string, error) {
	providerProjectID, _ := data[dispatch.DataProjectID].(string)
	if providerProjectID == "" {
		return "", nil, fmt.Errorf("provider data missing %q", dispatch.DataProjectID)
	}

	resources := make(map[string]string)
	switch raw := data[dispatch.DataResources].(type) {
	case map[string]string:
		resources = raw
	case map[string]any:
		for key, value := range raw {
			if text, ok := value.(string); ok {
				resources[key] = text
			}
		}
	default:
		return "", nil, fmt.Errorf("provider data missing %q", dispatch.DataResources)
	}
	return providerProjectID, resources, nil
}
