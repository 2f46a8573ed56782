package catalog

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"
)

const defaultPageSize = 100

// BunRepository persists translation units using a Bun-backed database.
type BunRepository struct {
	db       *bun.DB
	pageSize int
	now      func() time.Time
}

// BunOption configures the repository at construction time.
type BunOption func(*BunRepository)

// WithPageSize overrides the scan page size used by ByLanguage.
func WithPageSize(size int) BunOption {
	return func(r *BunRepository) {
		if size > 0 {
			r.pageSize = size
		}
	}
}

// WithClock overrides the clock used to stamp records.
func WithClock(clock func() time.Time) BunOption {
	return func(r *BunRepository) {
		if clock != nil {
			r.now = clock
		}
	}
}

// NewBunRepository constructs a Bun-backed unit repository.
func NewBunRepository(db *bun.DB, opts ...BunOption) *BunRepository {
	r := &BunRepository{db: db, pageSize: defaultPageSize, now: time.Now}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *BunRepository) Get(ctx context.Context, id string) (*Unit, error) {
	var unit Unit
	if err := r.db.NewSelect().Model(&unit).Where("id = ?", id).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "unit", Key: id}
		}
		return nil, err
	}
	return &unit, nil
}

func (r *BunRepository) BatchGet(ctx context.Context, ids []string) ([]*Unit, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var units []*Unit
	if err := r.db.NewSelect().Model(&units).Where("id IN (?)", bun.In(ids)).Scan(ctx); err != nil {
		return nil, err
	}
	return units, nil
}

func (r *BunRepository) Create(ctx context.Context, unit *Unit) error {
	now := r.now().UTC()
	if unit.CreatedAt.IsZero() {
		unit.CreatedAt = now
	}
	unit.UpdatedAt = now
	if _, err := r.db.NewInsert().Model(unit).Exec(ctx); err != nil {
		if isConflict(err) {
			return ErrUnitExists
		}
		return err
	}
	return nil
}

func (r *BunRepository) Upsert(ctx context.Context, unit *Unit) error {
	now := r.now().UTC()
	if unit.CreatedAt.IsZero() {
		unit.CreatedAt = now
	}
	unit.UpdatedAt = now
	_, err := r.db.NewInsert().
		Model(unit).
		On("CONFLICT (id) DO UPDATE").
		Set("text = EXCLUDED.text").
		Set("language = EXCLUDED.language").
		Set("namespace = EXCLUDED.namespace").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	return err
}

func (r *BunRepository) BatchUpsert(ctx context.Context, units []*Unit) error {
	for _, unit := range units {
		if err := r.Upsert(ctx, unit); err != nil {
			return err
		}
	}
	return nil
}

func (r *BunRepository) ByLanguage(ctx context.Context, language string) Pager {
	return &bunPager{repo: r, language: language}
}

// bunPager walks the language index with keyset pagination so a full drain
// never re-reads rows regardless of how many pages the scan spans.
type bunPager struct {
	repo     *BunRepository
	language string
	cursor   string
	done     bool
}

func (p *bunPager) Next(ctx context.Context) ([]*Unit, error) {
	if p.done {
		return nil, nil
	}
	var units []*Unit
	err := p.repo.db.NewSelect().
		Model(&units).
		Where("language = ?", p.language).
		Where("id > ?", p.cursor).
		Order("id ASC").
		Limit(p.repo.pageSize).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	if len(units) < p.repo.pageSize {
		p.done = true
	}
	if len(units) > 0 {
		p.cursor = units[len(units)-1].ID
	}
	return units, nil
}

// isConflict detects primary-key violations across the supported dialects.
func isConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
