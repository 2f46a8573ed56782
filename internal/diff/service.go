package diff

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/revenuewire/translation/internal/catalog"
	"github.com/revenuewire/translation/internal/domain"
	"github.com/revenuewire/translation/internal/languages"
	"github.com/revenuewire/translation/internal/logging"
	"github.com/revenuewire/translation/internal/queue"
)

// DefaultBatchLimit bounds project size when the caller does not supply one.
// It matches the OneHourTranslation per-project ceiling.
const DefaultBatchLimit = 100

var (
	ErrLanguageUnsupported = errors.New("diff: provider does not support target language")
	ErrSourceEqualsTarget  = errors.New("diff: target language equals the source language")
)

// UnitSource streams canonical units out of the content store.
type UnitSource interface {
	ByLanguage(ctx context.Context, language string) catalog.Pager
}

// ItemRepository is the slice of the queue store the diff engine mutates.
type ItemRepository interface {
	Get(ctx context.Context, id string) (*queue.Item, error)
	Create(ctx context.Context, item *queue.Item) error
}

// ProjectRepository persists finished batches.
type ProjectRepository interface {
	Create(ctx context.Context, project *queue.Project) error
}

// Request captures one diff sweep: find untranslated units for a target
// language and batch them into provider-sized projects.
type Request struct {
	TargetLanguage string
	Provider       domain.Provider
	BatchLimit     int
}

// Validate checks the request before any store read.
func (r Request) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.TargetLanguage, validation.Required),
		validation.Field(&r.Provider, validation.Required, validation.By(func(any) error {
			if _, ok := domain.ParseProvider(string(r.Provider)); !ok {
				return fmt.Errorf("unknown provider %q", r.Provider)
			}
			return nil
		})),
		validation.Field(&r.BatchLimit, validation.Min(1)),
	)
}

// Result reports what a diff sweep accomplished.
type Result struct {
	ItemsQueued     int
	ProjectsCreated int
}

// Service scans the content store for untranslated units and enqueues them.
type Service interface {
	Diff(ctx context.Context, req Request) (*Result, error)
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

// WithSourceLanguage overrides the default source language scanned.
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
	sourceLanguage string
	logger         logging.Logger
}

// NewService wires a diff engine over the content and queue stores.
func NewService(units UnitSource, items ItemRepository, projects ProjectRepository, opts ...Option) Service {
	s := &service{
		units:          units,
		items:          items,
		projects:       projects,
		sourceLanguage: catalog.DefaultLanguage,
		logger:         logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Diff fully drains the source-language scan, creating queue items for
// units that have no entry under the derived key yet. Items persist
// immediately; a project persists only once its batch closes, so an empty
// batch never reaches the store. Re-running over an unchanged store is a
// no-op because the item key is derivable.
func (s *service) Diff(ctx context.Context, req Request) (*Result, error) {
	if req.BatchLimit <= 0 {
		req.BatchLimit = DefaultBatchLimit
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	req.TargetLanguage = languages.Normalize(req.TargetLanguage)
	if req.TargetLanguage == s.sourceLanguage {
		return nil, ErrSourceEqualsTarget
	}
	if !languages.Supported(req.Provider, req.TargetLanguage) {
		return nil, fmt.Errorf("%w: %s via %s", ErrLanguageUnsupported, req.TargetLanguage, req.Provider)
	}

	s.logger.Info("diff.start",
		"source_language", s.sourceLanguage,
		"target_language", req.TargetLanguage,
		"provider", req.Provider,
		"batch_limit", req.BatchLimit,
	)

	result := &Result{}
	var current *queue.Project
	batched := 0

	pager := s.units.ByLanguage(ctx, s.sourceLanguage)
	for {
		page, err := pager.Next(ctx)
		if err != nil {
			return nil, fmt.Errorf("diff: scan source units: %w", err)
		}
		if len(page) == 0 {
			break
		}

		for _, unit := range page {
			itemID := queue.ItemID(unit.ID, req.TargetLanguage, req.Provider)
			if _, err := s.items.Get(ctx, itemID); err == nil {
				continue
			} else if !queue.IsNotFound(err) {
				return nil, fmt.Errorf("diff: probe queue item %s: %w", itemID, err)
			}

			if current == nil {
				current = s.newProject(req)
			}

			item := &queue.Item{
				ID:        itemID,
				ProjectID: current.ID,
				Status:    domain.QueuePending,
			}
			if err := s.items.Create(ctx, item); err != nil {
				if errors.Is(err, queue.ErrItemExists) {
					// A concurrent sweep queued this unit first.
					s.logger.Debug("diff.item_raced", "item", itemID)
					continue
				}
				return result, fmt.Errorf("diff: create queue item %s: %w", itemID, err)
			}

			result.ItemsQueued++
			batched++
			s.logger.Debug("diff.item_queued", "item", itemID, "project", current.ID)

			if batched >= req.BatchLimit {
				if err := s.closeProject(ctx, current, batched, result); err != nil {
					return result, err
				}
				current = nil
				batched = 0
			}
		}
	}

	if current != nil && batched > 0 {
		if err := s.closeProject(ctx, current, batched, result); err != nil {
			return result, err
		}
	}

	s.logger.Info("diff.done",
		"items_queued", result.ItemsQueued,
		"projects_created", result.ProjectsCreated,
	)
	return result, nil
}

func (s *service) newProject(req Request) *queue.Project {
	return &queue.Project{
		ID:             queue.NewProjectID(),
		TargetLanguage: req.TargetLanguage,
		Provider:       req.Provider,
		Status:         domain.ProjectPending,
	}
}

func (s *service) closeProject(ctx context.Context, project *queue.Project, size int, result *Result) error {
	project.Size = size
	if err := s.projects.Create(ctx, project); err != nil {
		return fmt.Errorf("diff: persist project %s: %w", project.ID, err)
	}
	result.ProjectsCreated++
	s.logger.Info("diff.project_created",
		"project", project.ID,
		"provider", project.Provider,
		"target_language", project.TargetLanguage,
		"size", size,
	)
	return nil
}
