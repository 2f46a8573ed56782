package publish_test

import (
	"context"
	"testing"

	"github.com/revenuewire/translation/internal/catalog"
	"github.com/revenuewire/translation/internal/domain"
	"github.com/revenuewire/translation/internal/publish"
	"github.com/revenuewire/translation/internal/queue"
)

func seedReady(t *testing.T, units *catalog.MemoryRepository, items *queue.MemoryItemRepository, text, translated string) *queue.Item {
	t.Helper()
	ctx := context.Background()

	unit := &catalog.Unit{
		ID:       catalog.UnitID(catalog.DefaultLanguage, text, ""),
		Text:     text,
		Language: catalog.DefaultLanguage,
	}
	if err := units.Create(ctx, unit); err != nil {
		t.Fatalf("seed unit: %v", err)
	}

	item := &queue.Item{
		ID:           queue.ItemID(unit.ID, "fr", domain.ProviderGCT),
		ProjectID:    "p1",
		Status:       domain.QueueReady,
		TargetResult: translated,
	}
	if err := items.Create(ctx, item); err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return item
}

func TestPublishPromotesReadyItems(t *testing.T) {
	units := catalog.NewMemoryRepository()
	items := queue.NewMemoryItemRepository()
	seedReady(t, units, items, "Hello", "Bonjour")

	svc := publish.NewService(units, items)
	ctx := context.Background()

	result, err := svc.Publish(ctx)
	if err != nil {
		t.Fatalf("publish: %v", err)
	}
	if result.Published != 1 || result.Skipped != 0 {
		t.Fatalf("unexpected result %+v", result)
	}

	// The translated unit is addressed by the source text under the target
	// language, so runtime lookups can derive the id without a query.
	targetID := catalog.UnitID("fr", "Hello", "")
	unit, err := units.Get(ctx, targetID)
	if err != nil {
		t.Fatalf("translated unit: %v", err)
	}
	if unit.Text != "Bonjour" || unit.Language != "fr" {
		t.Fatalf("unexpected unit %+v", unit)
	}

	itemID := queue.ItemID(catalog.UnitID(catalog.DefaultLanguage, "Hello", ""), "fr", domain.ProviderGCT)
	item, err := items.Get(ctx, itemID)
	if err != nil {
		t.Fatalf("item: %v", err)
	}
	if item.Status != domain.QueueCompleted {
		t.Fatalf("item status %s, want COMPLETED", item.Status)
	}
	if item.TargetID != targetID {
		t.Fatalf("item target id %q, want %q", item.TargetID, targetID)
	}
}

func TestPublishIsRerunSafe(t *testing.T) {
	units := catalog.NewMemoryRepository()
	items := queue.NewMemoryItemRepository()
	seedReady(t, units, items, "Hello", "Bonjour")

	svc := publish.NewService(units, items)
	ctx := context.Background()

	if _, err := svc.Publish(ctx); err != nil {
		t.Fatalf("first publish: %v", err)
	}
	second, err := svc.Publish(ctx)
	if err != nil {
		t.Fatalf("second publish: %v", err)
	}
	if second.Published != 0 {
		t.Fatalf("rerun must find no ready items, got %+v", second)
	}
}

func TestPublishOverwritesStaleTranslation(t *testing.T) {
	units := catalog.NewMemoryRepository()
	items := queue.NewMemoryItemRepository()
	seedReady(t, units, items, "Hello", "Bonjour")

	ctx := context.Background()
	stale := &catalog.Unit{
		ID:       catalog.UnitID("fr", "Hello", ""),
		Text:     "Salut",
		Language: "fr",
	}
	if err := units.Create(ctx, stale); err != nil {
		t.Fatalf("seed stale unit: %v", err)
	}

	svc := publish.NewService(units, items)
	if _, err := svc.Publish(ctx); err != nil {
		t.Fatalf("publish: %v", err)
	}

	unit, err := units.Get(ctx, stale.ID)
	if err != nil {
		t.Fatalf("unit: %v", err)
	}
	if unit.Text != "Bonjour" {
		t.Fatalf("expected fresh translation, got %q", unit.Text)
	}
}

func TestPublishSkipsBrokenItemAndContinues(t *testing.T) {
	units := catalog.NewMemoryRepository()
	items := queue.NewMemoryItemRepository()
	seedReady(t, units, items, "Hello", "Bonjour")

	// A ready item whose source unit no longer exists.
	ctx := context.Background()
	orphan := &queue.Item{
		ID:           queue.ItemID("deadbeef", "fr", domain.ProviderGCT),
		ProjectID:    "p1",
		Status:       domain.QueueReady,
		TargetResult: "Inconnu",
	}
	if err := items.Create(ctx, orphan); err != nil {
		t.Fatalf("seed orphan: %v", err)
	}

	svc := publish.NewService(units, items)
	result, err := svc.Publish(ctx)
	if err == nil {
		t.Fatal("expected orphan failure to surface")
	}
	if result.Published != 1 || result.Skipped != 1 {
		t.Fatalf("unexpected result %+v", result)
	}

	got, err := items.Get(ctx, orphan.ID)
	if err != nil {
		t.Fatalf("orphan: %v", err)
	}
	if got.Status != domain.QueueError {
		t.Fatalf("failed item must move to ERROR, got %s", got.Status)
	}
	if got.TargetResult != "Inconnu" {
		t.Fatalf("errored item must keep its result, got %q", got.TargetResult)
	}

	// The errored item is out of the sweep; a rerun finds nothing ready.
	second, err := svc.Publish(ctx)
	if err != nil {
		t.Fatalf("rerun: %v", err)
	}
	if second.Published != 0 || second.Skipped != 0 {
		t.Fatalf("rerun must ignore errored items, got %+v", second)
	}
}
