package publish

import (
	"context"
	"errors"
	"fmt"

	"github.com/revenuewire/translation/internal/catalog"
	"github.com/revenuewire/translation/internal/domain"
	"github.com/revenuewire/translation/internal/logging"
	"github.com/revenuewire/translation/internal/queue"
)

// UnitStore is the slice of the content store publishing writes through.
type UnitStore interface {
	Get(ctx context.Context, id string) (*catalog.Unit, error)
	Upsert(ctx context.Context, unit *catalog.Unit) error
}

// ItemRepository lists ready work and closes it out.
type ItemRepository interface {
	ByStatus(ctx context.Context, status domain.QueueStatus) ([]*queue.Item, error)
	Update(ctx context.Context, item *queue.Item, columns ...string) error
}

// Result reports what a publish sweep accomplished.
type Result struct {
	Published int
	Skipped   int
}

// Service promotes READY queue items into translated units.
type Service interface {
	Publish(ctx context.Context) (*Result, error)
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
	units  UnitStore
	items  ItemRepository
	logger logging.Logger
}

// NewService wires a publisher over the content and queue stores.
func NewService(units UnitStore, items ItemRepository, opts ...Option) Service {
	s := &service{
		units:  units,
		items:  items,
		logger: logging.NoOp(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Publish sweeps every READY item: derive the translated unit's
// content-addressed id, upsert the unit, and close the item. The upsert
// makes the sweep safe to re-run; a failing item moves to ERROR so one bad
// record cannot wedge the sweep or be retried forever.
func (s *service) Publish(ctx context.Context) (*Result, error) {
	ready, err := s.items.ByStatus(ctx, domain.QueueReady)
	if err != nil {
		return nil, fmt.Errorf("publish: list ready items: %w", err)
	}

	result := &Result{}
	var errs []error
	for _, item := range ready {
		if err := s.publishItem(ctx, item); err != nil {
			s.logger.Error("publish.item_failed", "item", item.ID, "error", err)
			item.Status = domain.QueueError
			if uerr := s.items.Update(ctx, item, "status"); uerr != nil {
				errs = append(errs, fmt.Errorf("publish: park item %s: %w", item.ID, uerr))
			}
			result.Skipped++
			errs = append(errs, err)
			continue
		}
		result.Published++
	}

	s.logger.Info("publish.done", "published", result.Published, "skipped", result.Skipped)
	return result, errors.Join(errs...)
}

func (s *service) publishItem(ctx context.Context, item *queue.Item) error {
	sourceID, targetLanguage, _, err := queue.SplitItemID(item.ID)
	if err != nil {
		return err
	}
	if item.TargetResult == "" {
		return fmt.Errorf("publish: item %s is READY without a result", item.ID)
	}

	source, err := s.units.Get(ctx, sourceID)
	if err != nil {
		return fmt.Errorf("publish: resolve source unit %s: %w", sourceID, err)
	}

	targetID := item.TargetID
	if targetID == "" {
		targetID = catalog.UnitID(targetLanguage, source.Text, source.Namespace)
	}

	unit := &catalog.Unit{
		ID:        targetID,
		Text:      item.TargetResult,
		Language:  targetLanguage,
		Namespace: source.Namespace,
	}
	if err := s.units.Upsert(ctx, unit); err != nil {
		return fmt.Errorf("publish: upsert unit %s: %w", targetID, err)
	}

	item.TargetID = targetID
	item.Status = domain.QueueCompleted
	if err := s.items.Update(ctx, item, "status", "target_id"); err != nil {
		return fmt.Errorf("publish: close item %s: %w", item.ID, err)
	}

	s.logger.Debug("publish.item", "item", item.ID, "unit", targetID)
	return nil
}
