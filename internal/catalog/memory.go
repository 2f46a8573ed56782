package catalog

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepository is an in-memory implementation for scaffolding and tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	units    map[string]*Unit
	pageSize int
	now      func() time.Time
}

// NewMemoryRepository creates an empty in-memory unit repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		units:    make(map[string]*Unit),
		pageSize: defaultPageSize,
		now:      time.Now,
	}
}

// SetPageSize overrides the scan page size, useful to exercise pagination.
func (m *MemoryRepository) SetPageSize(size int) {
	if size > 0 {
		m.pageSize = size
	}
}

func (m *MemoryRepository) Get(_ context.Context, id string) (*Unit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	unit, ok := m.units[id]
	if !ok {
		return nil, &NotFoundError{Resource: "unit", Key: id}
	}
	return cloneUnit(unit), nil
}

func (m *MemoryRepository) BatchGet(_ context.Context, ids []string) ([]*Unit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*Unit, 0, len(ids))
	for _, id := range ids {
		if unit, ok := m.units[id]; ok {
			out = append(out, cloneUnit(unit))
		}
	}
	return out, nil
}

func (m *MemoryRepository) Create(_ context.Context, unit *Unit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.units[unit.ID]; ok {
		return ErrUnitExists
	}
	copied := cloneUnit(unit)
	now := m.now().UTC()
	if copied.CreatedAt.IsZero() {
		copied.CreatedAt = now
	}
	copied.UpdatedAt = now
	m.units[copied.ID] = copied
	return nil
}

func (m *MemoryRepository) Upsert(_ context.Context, unit *Unit) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	copied := cloneUnit(unit)
	now := m.now().UTC()
	if existing, ok := m.units[unit.ID]; ok {
		copied.CreatedAt = existing.CreatedAt
	} else if copied.CreatedAt.IsZero() {
		copied.CreatedAt = now
	}
	copied.UpdatedAt = now
	m.units[copied.ID] = copied
	return nil
}

func (m *MemoryRepository) BatchUpsert(ctx context.Context, units []*Unit) error {
	for _, unit := range units {
		if err := m.Upsert(ctx, unit); err != nil {
			return err
		}
	}
	return nil
}

// ByLanguage snapshots matching ids up front; units added mid-scan are
// picked up by the next sweep instead.
func (m *MemoryRepository) ByLanguage(_ context.Context, language string) Pager {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0)
	for id, unit := range m.units {
		if unit.Language == language {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return &memoryPager{repo: m, ids: ids, pageSize: m.pageSize}
}

type memoryPager struct {
	repo     *MemoryRepository
	ids      []string
	pageSize int
	offset   int
}

func (p *memoryPager) Next(_ context.Context) ([]*Unit, error) {
	if p.offset >= len(p.ids) {
		return nil, nil
	}
	end := p.offset + p.pageSize
	if end > len(p.ids) {
		end = len(p.ids)
	}

	p.repo.mu.RLock()
	defer p.repo.mu.RUnlock()

	page := make([]*Unit, 0, end-p.offset)
	for _, id := range p.ids[p.offset:end] {
		if unit, ok := p.repo.units[id]; ok {
			page = append(page, cloneUnit(unit))
		}
	}
	p.offset = end
	return page, nil
}

func cloneUnit(src *Unit) *Unit {
	if src == nil {
		return nil
	}
	copied := *src
	return &copied
}
