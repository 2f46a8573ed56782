package queue

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/revenuewire/translation/internal/domain"
)

// MemoryItemRepository is an in-memory implementation for scaffolding and tests.
type MemoryItemRepository struct {
	mu    sync.RWMutex
	items map[string]*Item
	now   func() time.Time
}

// NewMemoryItemRepository creates an empty in-memory item repository.
func NewMemoryItemRepository() *MemoryItemRepository {
	return &MemoryItemRepository{items: make(map[string]*Item), now: time.Now}
}

func (m *MemoryItemRepository) Get(_ context.Context, id string) (*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	item, ok := m.items[id]
	if !ok {
		return nil, &NotFoundError{Resource: "queue item", Key: id}
	}
	return cloneItem(item), nil
}

func (m *MemoryItemRepository) Create(_ context.Context, item *Item) error {
	if err := item.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.items[item.ID]; ok {
		return ErrItemExists
	}
	copied := cloneItem(item)
	now := m.now().UTC()
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = now
	}
	copied.UpdatedAt = now
	m.items[copied.ID] = copied
	return nil
}

func (m *MemoryItemRepository) Update(_ context.Context, item *Item, columns ...string) error {
	if err := item.Validate(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.items[item.ID]
	if !ok {
		return &NotFoundError{Resource: "queue item", Key: item.ID}
	}

	updated := cloneItem(existing)
	if len(columns) == 0 {
		updated = cloneItem(item)
		updated.CreatedAt = existing.CreatedAt
	} else {
		for _, column := range columns {
			switch column {
			case "status":
				updated.Status = item.Status
			case "project_id":
				updated.ProjectID = item.ProjectID
			case "target_id":
				updated.TargetID = item.TargetID
			case "target_result":
				updated.TargetResult = item.TargetResult
			}
		}
	}
	updated.UpdatedAt = m.now().UTC()
	m.items[item.ID] = updated
	return nil
}

func (m *MemoryItemRepository) ByProject(_ context.Context, projectID string) ([]*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Item, 0)
	for _, item := range m.items {
		if item.ProjectID == projectID {
			out = append(out, cloneItem(item))
		}
	}
	sortItems(out)
	return out, nil
}

func (m *MemoryItemRepository) ByStatus(_ context.Context, status domain.QueueStatus) ([]*Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Item, 0)
	for _, item := range m.items {
		if item.Status == status {
			out = append(out, cloneItem(item))
		}
	}
	sortItems(out)
	return out, nil
}

// MemoryProjectRepository is an in-memory implementation for scaffolding and tests.
type MemoryProjectRepository struct {
	mu       sync.RWMutex
	projects map[string]*Project
	now      func() time.Time
}

// NewMemoryProjectRepository creates an empty in-memory project repository.
func NewMemoryProjectRepository() *MemoryProjectRepository {
	return &MemoryProjectRepository{projects: make(map[string]*Project), now: time.Now}
}

func (m *MemoryProjectRepository) Get(_ context.Context, id string) (*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	project, ok := m.projects[id]
	if !ok {
		return nil, &NotFoundError{Resource: "project", Key: id}
	}
	return cloneProject(project), nil
}

func (m *MemoryProjectRepository) Create(_ context.Context, project *Project) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.projects[project.ID]; ok {
		return ErrProjectExists
	}
	copied := cloneProject(project)
	now := m.now().UTC()
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = now
	}
	copied.UpdatedAt = now
	m.projects[copied.ID] = copied
	return nil
}

func (m *MemoryProjectRepository) Update(_ context.Context, project *Project, columns ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	existing, ok := m.projects[project.ID]
	if !ok {
		return &NotFoundError{Resource: "project", Key: project.ID}
	}

	updated := cloneProject(existing)
	if len(columns) == 0 {
		updated = cloneProject(project)
		updated.CreatedAt = existing.CreatedAt
	} else {
		for _, column := range columns {
			switch column {
			case "status":
				updated.Status = project.Status
			case "provider_data":
				updated.ProviderData = cloneData(project.ProviderData)
			case "size":
				updated.Size = project.Size
			}
		}
	}
	updated.UpdatedAt = m.now().UTC()
	m.projects[project.ID] = updated
	return nil
}

func (m *MemoryProjectRepository) ByStatus(_ context.Context, statuses ...domain.ProjectStatus) ([]*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	wanted := make(map[domain.ProjectStatus]bool, len(statuses))
	for _, status := range statuses {
		wanted[status] = true
	}

	out := make([]*Project, 0)
	for _, project := range m.projects {
		if wanted[project.Status] {
			out = append(out, cloneProject(project))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (m *MemoryProjectRepository) ByIDs(_ context.Context, ids []string) ([]*Project, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Project, 0, len(ids))
	for _, id := range ids {
		if project, ok := m.projects[id]; ok {
			out = append(out, cloneProject(project))
		}
	}
	return out, nil
}

func sortItems(items []*Item) {
	sort.Slice(items, func(i, j int) bool { return items[i].ID < items[j].ID })
}

func cloneItem(src *Item) *Item {
	if src == nil {
		return nil
	}
	copied := *src
	return &copied
}

func cloneProject(src *Project) *Project {
	if src == nil {
		return nil
	}
	copied := *src
	copied.ProviderData = cloneData(src.ProviderData)
	return &copied
}

func cloneData(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	copied := make(map[string]any, len(src))
	for k, v := range src {
		copied[k] = v
	}
	return copied
}
