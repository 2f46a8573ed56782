package queue

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/uptrace/bun"

	"github.com/revenuewire/translation/internal/domain"
)

// BunItemRepository persists queue items using a Bun-backed database.
type BunItemRepository struct {
	db  *bun.DB
	now func() time.Time
}

// NewBunItemRepository constructs a Bun-backed item repository.
func NewBunItemRepository(db *bun.DB) *BunItemRepository {
	return &BunItemRepository{db: db, now: time.Now}
}

func (r *BunItemRepository) Get(ctx context.Context, id string) (*Item, error) {
	var item Item
	if err := r.db.NewSelect().Model(&item).Where("id = ?", id).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "queue item", Key: id}
		}
		return nil, err
	}
	return &item, nil
}

func (r *BunItemRepository) Create(ctx context.Context, item *Item) error {
	if err := item.Validate(); err != nil {
		return err
	}
	now := r.now().UTC()
	if item.CreatedAt.IsZero() {
		item.CreatedAt = now
	}
	item.UpdatedAt = now
	if _, err := r.db.NewInsert().Model(item).Exec(ctx); err != nil {
		if isConflict(err) {
			return ErrItemExists
		}
		return err
	}
	return nil
}

func (r *BunItemRepository) Update(ctx context.Context, item *Item, columns ...string) error {
	if err := item.Validate(); err != nil {
		return err
	}
	item.UpdatedAt = r.now().UTC()
	query := r.db.NewUpdate().Model(item).WherePK()
	if len(columns) > 0 {
		query = query.Column(append(columns, "updated_at")...)
	}
	res, err := query.Exec(ctx)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return &NotFoundError{Resource: "queue item", Key: item.ID}
	}
	return nil
}

func (r *BunItemRepository) ByProject(ctx context.Context, projectID string) ([]*Item, error) {
	var items []*Item
	err := r.db.NewSelect().
		Model(&items).
		Where("project_id = ?", projectID).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *BunItemRepository) ByStatus(ctx context.Context, status domain.QueueStatus) ([]*Item, error) {
	var items []*Item
	err := r.db.NewSelect().
		Model(&items).
		Where("status = ?", status).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// BunProjectRepository persists projects using a Bun-backed database.
type BunProjectRepository struct {
	db  *bun.DB
	now func() time.Time
}

// NewBunProjectRepository constructs a Bun-backed project repository.
func NewBunProjectRepository(db *bun.DB) *BunProjectRepository {
	return &BunProjectRepository{db: db, now: time.Now}
}

func (r *BunProjectRepository) Get(ctx context.Context, id string) (*Project, error) {
	var project Project
	if err := r.db.NewSelect().Model(&project).Where("id = ?", id).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &NotFoundError{Resource: "project", Key: id}
		}
		return nil, err
	}
	return &project, nil
}

func (r *BunProjectRepository) Create(ctx context.Context, project *Project) error {
	now := r.now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	project.UpdatedAt = now
	if _, err := r.db.NewInsert().Model(project).Exec(ctx); err != nil {
		if isConflict(err) {
			return ErrProjectExists
		}
		return err
	}
	return nil
}

func (r *BunProjectRepository) Update(ctx context.Context, project *Project, columns ...string) error {
	project.UpdatedAt = r.now().UTC()
	query := r.db.NewUpdate().Model(project).WherePK()
	if len(columns) > 0 {
		query = query.Column(append(columns, "updated_at")...)
	}
	res, err := query.Exec(ctx)
	if err != nil {
		return err
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return &NotFoundError{Resource: "project", Key: project.ID}
	}
	return nil
}

func (r *BunProjectRepository) ByStatus(ctx context.Context, statuses ...domain.ProjectStatus) ([]*Project, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	values := make([]string, 0, len(statuses))
	for _, status := range statuses {
		values = append(values, string(status))
	}
	var projects []*Project
	err := r.db.NewSelect().
		Model(&projects).
		Where("status IN (?)", bun.In(values)).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *BunProjectRepository) ByIDs(ctx context.Context, ids []string) ([]*Project, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var projects []*Project
	err := r.db.NewSelect().
		Model(&projects).
		Where("id IN (?)", bun.In(ids)).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return projects, nil
}

func isConflict(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key value")
}
