package translation_test

import (
	"context"
	"testing"

	translation "github.com/revenuewire/translation"
	"github.com/revenuewire/translation/internal/catalog"
)

func newLookupFixture(t *testing.T) (*translation.Lookup, *catalog.MemoryRepository) {
	t.Helper()
	units := catalog.NewMemoryRepository()
	module := newModule(t, translation.WithUnitRepository(units))
	return module.Lookup(), units
}

func TestLookupFallsBackToSourceText(t *testing.T) {
	lookup, units := newLookupFixture(t)
	ctx := context.Background()

	if got := lookup.Translate(ctx, "fr", "Hello"); got != "Hello" {
		t.Fatalf("expected fallback, got %q", got)
	}

	// The miss registered the canonical unit for the next diff sweep.
	unit, err := units.Get(ctx, catalog.UnitID(catalog.DefaultLanguage, "Hello", ""))
	if err != nil {
		t.Fatalf("registered unit: %v", err)
	}
	if unit.Text != "Hello" || unit.Language != catalog.DefaultLanguage {
		t.Fatalf("unexpected registered unit %+v", unit)
	}
}

func TestLookupReturnsPublishedTranslation(t *testing.T) {
	lookup, units := newLookupFixture(t)
	ctx := context.Background()

	translated := &catalog.Unit{
		ID:       catalog.UnitID("fr", "Hello", ""),
		Text:     "Bonjour",
		Language: "fr",
	}
	if err := units.Create(ctx, translated); err != nil {
		t.Fatalf("seed translation: %v", err)
	}

	if got := lookup.Translate(ctx, "fr", "Hello"); got != "Bonjour" {
		t.Fatalf("expected translation, got %q", got)
	}
	// Second read serves from cache even if the store loses the row.
	if got := lookup.Translate(ctx, "fr", "Hello"); got != "Bonjour" {
		t.Fatalf("expected cached translation, got %q", got)
	}
}

func TestLookupSourceLanguageIsIdentity(t *testing.T) {
	lookup, units := newLookupFixture(t)
	ctx := context.Background()

	if got := lookup.Translate(ctx, "en", "Hello"); got != "Hello" {
		t.Fatalf("expected identity, got %q", got)
	}
	// Identity lookups register nothing.
	if _, err := units.Get(ctx, catalog.UnitID("en", "Hello", "")); !catalog.IsNotFound(err) {
		t.Fatalf("expected no registration, got %v", err)
	}
}

func TestLookupUnknownLanguageIsIdentity(t *testing.T) {
	lookup, _ := newLookupFixture(t)

	if got := lookup.Translate(context.Background(), "xx-zz", "Hello"); got != "Hello" {
		t.Fatalf("expected identity for unknown language, got %q", got)
	}
}

func TestLookupNamespacesAreIsolated(t *testing.T) {
	lookup, units := newLookupFixture(t)
	ctx := context.Background()

	checkout := &catalog.Unit{
		ID:        catalog.UnitID("fr", "Submit", "checkout"),
		Text:      "Valider",
		Language:  "fr",
		Namespace: "checkout",
	}
	if err := units.Create(ctx, checkout); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if got := lookup.TranslateIn(ctx, "fr", "checkout", "Submit"); got != "Valider" {
		t.Fatalf("expected namespaced translation, got %q", got)
	}
	if got := lookup.TranslateIn(ctx, "fr", "forum", "Submit"); got != "Submit" {
		t.Fatalf("expected fallback outside the namespace, got %q", got)
	}
}

func TestBatchTranslateMixesHitsAndMisses(t *testing.T) {
	lookup, units := newLookupFixture(t)
	ctx := context.Background()

	translated := &catalog.Unit{
		ID:       catalog.UnitID("fr", "Hello", ""),
		Text:     "Bonjour",
		Language: "fr",
	}
	if err := units.Create(ctx, translated); err != nil {
		t.Fatalf("seed translation: %v", err)
	}

	got := lookup.BatchTranslate(ctx, "fr", []string{"Hello", "World", "Bye"})
	if got["Hello"] != "Bonjour" {
		t.Fatalf("expected translated entry, got %q", got["Hello"])
	}
	if got["World"] != "World" || got["Bye"] != "Bye" {
		t.Fatalf("expected fallbacks, got %+v", got)
	}

	// Misses registered their canonical units.
	for _, text := range []string{"World", "Bye"} {
		if _, err := units.Get(ctx, catalog.UnitID(catalog.DefaultLanguage, text, "")); err != nil {
			t.Fatalf("registered unit for %q: %v", text, err)
		}
	}
}
