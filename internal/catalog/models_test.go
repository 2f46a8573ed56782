package catalog_test

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/revenuewire/translation/internal/catalog"
)

func TestUnitIDDeterministic(t *testing.T) {
	first := catalog.UnitID("en", "Product", "")
	second := catalog.UnitID("en", "Product", "")
	if first != second {
		t.Fatalf("expected identical ids, got %q and %q", first, second)
	}
	if _, err := uuid.Parse(first); err != nil {
		t.Fatalf("expected a uuid-shaped id, got %q: %v", first, err)
	}
}

func TestUnitIDDistinguishesInputs(t *testing.T) {
	base := catalog.UnitID("en", "Product", "")
	if catalog.UnitID("fr", "Product", "") == base {
		t.Fatal("different language must yield a different id")
	}
	if catalog.UnitID("en", "product", "") == base {
		t.Fatal("different text must yield a different id")
	}
	if catalog.UnitID("en", "Product", "checkout") == base {
		t.Fatal("different namespace must yield a different id")
	}
}

func TestUnitIDTrimsWhitespace(t *testing.T) {
	if catalog.UnitID("en", "  Hello  ", "") != catalog.UnitID("en", "Hello", "") {
		t.Fatal("surrounding whitespace must not change the id")
	}
}

func TestMemoryRepositoryConditionalCreate(t *testing.T) {
	repo := catalog.NewMemoryRepository()
	ctx := context.Background()

	unit := &catalog.Unit{ID: catalog.UnitID("en", "Hello", ""), Text: "Hello", Language: "en"}
	if err := repo.Create(ctx, unit); err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := repo.Create(ctx, unit); err != catalog.ErrUnitExists {
		t.Fatalf("expected ErrUnitExists got %v", err)
	}
}

func TestMemoryRepositoryByLanguageDrainsAllPages(t *testing.T) {
	repo := catalog.NewMemoryRepository()
	repo.SetPageSize(2)
	ctx := context.Background()

	texts := []string{"one", "two", "three", "four", "five"}
	for _, text := range texts {
		unit := &catalog.Unit{ID: catalog.UnitID("en", text, ""), Text: text, Language: "en"}
		if err := repo.Create(ctx, unit); err != nil {
			t.Fatalf("create %q: %v", text, err)
		}
	}
	other := &catalog.Unit{ID: catalog.UnitID("fr", "un", ""), Text: "un", Language: "fr"}
	if err := repo.Create(ctx, other); err != nil {
		t.Fatalf("create fr unit: %v", err)
	}

	pager := repo.ByLanguage(ctx, "en")
	total := 0
	pages := 0
	for {
		page, err := pager.Next(ctx)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if len(page) == 0 {
			break
		}
		pages++
		total += len(page)
	}
	if total != len(texts) {
		t.Fatalf("expected %d units got %d", len(texts), total)
	}
	if pages != 3 {
		t.Fatalf("expected 3 pages got %d", pages)
	}
}

func TestMemoryRepositoryUpsertOverwrites(t *testing.T) {
	repo := catalog.NewMemoryRepository()
	ctx := context.Background()

	id := catalog.UnitID("fr", "Hello", "")
	if err := repo.Upsert(ctx, &catalog.Unit{ID: id, Text: "Bonjour", Language: "fr"}); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := repo.Upsert(ctx, &catalog.Unit{ID: id, Text: "Salut", Language: "fr"}); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	unit, err := repo.Get(ctx, id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if unit.Text != "Salut" {
		t.Fatalf("expected latest text, got %q", unit.Text)
	}
}
