package queue

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"

	"github.com/revenuewire/translation/internal/domain"
)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open("sqlite3", "file:queue_test?mode=memory&cache=shared&_fk=1")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = sqldb.Close() })

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, model := range []any{(*Item)(nil), (*Project)(nil)} {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			t.Fatalf("create table: %v", err)
		}
		if _, err := db.NewDelete().Model(model).Where("1 = 1").Exec(ctx); err != nil {
			t.Fatalf("truncate table: %v", err)
		}
	}
	return db
}

func TestBunItemRepositoryConditionalCreate(t *testing.T) {
	repo := NewBunItemRepository(newTestDB(t))
	ctx := context.Background()

	item := &Item{ID: "u1:fr:GCT", ProjectID: "p1", Status: domain.QueuePending}
	if err := repo.Create(ctx, item); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, item); !errors.Is(err, ErrItemExists) {
		t.Fatalf("expected ErrItemExists, got %v", err)
	}
}

func TestBunItemRepositoryPartialUpdate(t *testing.T) {
	repo := NewBunItemRepository(newTestDB(t))
	ctx := context.Background()

	item := &Item{ID: "u1:fr:GCT", ProjectID: "p1", Status: domain.QueuePending}
	if err := repo.Create(ctx, item); err != nil {
		t.Fatalf("create: %v", err)
	}

	item.Status = domain.QueueReady
	item.TargetResult = "Bonjour"
	item.ProjectID = "should-not-stick"
	if err := repo.Update(ctx, item, "status", "target_result"); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.Get(ctx, item.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.QueueReady || got.TargetResult != "Bonjour" {
		t.Fatalf("columns not updated: %+v", got)
	}
	if got.ProjectID != "p1" {
		t.Fatalf("untouched column mutated: %q", got.ProjectID)
	}
}

func TestBunItemRepositoryUpdateMissing(t *testing.T) {
	repo := NewBunItemRepository(newTestDB(t))

	err := repo.Update(context.Background(), &Item{ID: "absent:fr:GCT", Status: domain.QueuePending}, "status")
	if !IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestBunItemRepositoryQueries(t *testing.T) {
	repo := NewBunItemRepository(newTestDB(t))
	ctx := context.Background()

	seed := []*Item{
		{ID: "a:fr:GCT", ProjectID: "p1", Status: domain.QueuePending},
		{ID: "b:fr:GCT", ProjectID: "p1", Status: domain.QueueReady, TargetResult: "x"},
		{ID: "c:fr:GCT", ProjectID: "p2", Status: domain.QueuePending},
	}
	for _, item := range seed {
		if err := repo.Create(ctx, item); err != nil {
			t.Fatalf("seed %s: %v", item.ID, err)
		}
	}

	byProject, err := repo.ByProject(ctx, "p1")
	if err != nil {
		t.Fatalf("by project: %v", err)
	}
	if len(byProject) != 2 {
		t.Fatalf("expected 2 items got %d", len(byProject))
	}

	pending, err := repo.ByStatus(ctx, domain.QueuePending)
	if err != nil {
		t.Fatalf("by status: %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending got %d", len(pending))
	}
}

func TestBunProjectRepositoryLifecycle(t *testing.T) {
	repo := NewBunProjectRepository(newTestDB(t))
	ctx := context.Background()

	project := &Project{
		ID:             NewProjectID(),
		TargetLanguage: "fr",
		Provider:       domain.ProviderOHT,
		Status:         domain.ProjectPending,
		Size:           2,
	}
	if err := repo.Create(ctx, project); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, project); !errors.Is(err, ErrProjectExists) {
		t.Fatalf("expected ErrProjectExists, got %v", err)
	}

	project.Status = domain.ProjectInProgress
	project.ProviderData = map[string]any{
		"project_id": "7001",
		"resources":  map[string]any{"rsc-1": project.ID},
	}
	if err := repo.Update(ctx, project, "status", "provider_data"); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, err := repo.Get(ctx, project.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != domain.ProjectInProgress {
		t.Fatalf("status not updated: %s", got.Status)
	}
	if got.ProviderData["project_id"] != "7001" {
		t.Fatalf("provider data not round-tripped: %+v", got.ProviderData)
	}
	resources, ok := got.ProviderData["resources"].(map[string]any)
	if !ok || resources["rsc-1"] != project.ID {
		t.Fatalf("nested provider data lost: %+v", got.ProviderData)
	}
	if got.Size != 2 {
		t.Fatalf("size not preserved: %d", got.Size)
	}
}

func TestBunProjectRepositoryByStatus(t *testing.T) {
	repo := NewBunProjectRepository(newTestDB(t))
	ctx := context.Background()

	statuses := []domain.ProjectStatus{domain.ProjectPending, domain.ProjectInProgress, domain.ProjectCompleted}
	ids := make([]string, 0, len(statuses))
	for _, status := range statuses {
		project := &Project{
			ID:             NewProjectID(),
			TargetLanguage: "fr",
			Provider:       domain.ProviderGCT,
			Status:         status,
		}
		if err := repo.Create(ctx, project); err != nil {
			t.Fatalf("seed %s: %v", status, err)
		}
		ids = append(ids, project.ID)
	}

	open, err := repo.ByStatus(ctx, domain.ProjectPending, domain.ProjectInProgress)
	if err != nil {
		t.Fatalf("by status: %v", err)
	}
	if len(open) != 2 {
		t.Fatalf("expected 2 open projects got %d", len(open))
	}

	byIDs, err := repo.ByIDs(ctx, ids)
	if err != nil {
		t.Fatalf("by ids: %v", err)
	}
	if len(byIDs) != 3 {
		t.Fatalf("expected 3 projects got %d", len(byIDs))
	}
}
