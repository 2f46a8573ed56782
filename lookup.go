package translation

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/revenuewire/translation/internal/catalog"
	"github.com/revenuewire/translation/internal/languages"
	"github.com/revenuewire/translation/internal/logging"
)

// lookupWriteChunk bounds how many source units a batch lookup registers in
// one store write.
const lookupWriteChunk = 25

// LookupCache is the optional read cache in front of the content store.
// Implementations must be safe for concurrent use.
type LookupCache interface {
	Get(key string) (string, bool)
	Set(key, value string, ttl time.Duration)
}

// Lookup serves translations at request time. Reads fall back to the
// original text when no translation exists yet, and every miss registers
// the source text so the next diff sweep picks it up.
type Lookup struct {
	units          catalog.Repository
	cache          LookupCache
	cacheTTL       time.Duration
	sourceLanguage string
	logger         logging.Logger
}

func newLookup(units catalog.Repository, cfg Config, logger logging.Logger) *Lookup {
	return &Lookup{
		units:          units,
		cache:          newMemoryCache(),
		cacheTTL:       time.Duration(cfg.LookupCacheTTLSeconds) * time.Second,
		sourceLanguage: cfg.SourceLanguage,
		logger:         logger,
	}
}

// SetCache swaps the read cache, for hosts that bring a shared one.
func (l *Lookup) SetCache(cache LookupCache) {
	if cache != nil {
		l.cache = cache
	}
}

// Translate returns the stored translation of text into language, or the
// text itself when none exists. Unknown source texts are registered in the
// store as a side effect.
func (l *Lookup) Translate(ctx context.Context, language, text string) string {
	return l.TranslateIn(ctx, language, "", text)
}

// TranslateIn is Translate scoped to a namespace.
func (l *Lookup) TranslateIn(ctx context.Context, language, namespace, text string) string {
	language = languages.Normalize(language)
	if text == "" || language == l.sourceLanguage {
		return text
	}
	if _, ok := languages.Lookup(language); !ok {
		return text
	}

	targetID := catalog.UnitID(language, text, namespace)
	if cached, ok := l.cache.Get(targetID); ok {
		return cached
	}

	l.registerSource(ctx, namespace, text)

	unit, err := l.units.Get(ctx, targetID)
	if err != nil {
		if !catalog.IsNotFound(err) {
			l.logger.Error("lookup.read_failed", "unit", targetID, "error", err)
		}
		return text
	}

	l.cache.Set(targetID, unit.Text, l.cacheTTL)
	return unit.Text
}

// BatchTranslate translates many texts at once, returning a map keyed by
// the original text. Untranslated entries map to themselves.
func (l *Lookup) BatchTranslate(ctx context.Context, language string, texts []string) map[string]string {
	return l.BatchTranslateIn(ctx, language, "", texts)
}

// BatchTranslateIn is BatchTranslate scoped to a namespace.
func (l *Lookup) BatchTranslateIn(ctx context.Context, language, namespace string, texts []string) map[string]string {
	out := make(map[string]string, len(texts))
	for _, text := range texts {
		out[text] = text
	}

	language = languages.Normalize(language)
	if language == l.sourceLanguage {
		return out
	}
	if _, ok := languages.Lookup(language); !ok {
		return out
	}

	// Resolve cache hits first; only misses touch the store.
	missing := make([]string, 0, len(texts))
	targetIDs := make([]string, 0, len(texts))
	targetToText := make(map[string]string, len(texts))
	for text := range out {
		targetID := catalog.UnitID(language, text, namespace)
		if cached, ok := l.cache.Get(targetID); ok {
			out[text] = cached
			continue
		}
		missing = append(missing, text)
		targetIDs = append(targetIDs, targetID)
		targetToText[targetID] = text
	}
	if len(missing) == 0 {
		return out
	}

	l.registerSources(ctx, namespace, missing)

	units, err := l.units.BatchGet(ctx, targetIDs)
	if err != nil {
		l.logger.Error("lookup.batch_read_failed", "count", len(targetIDs), "error", err)
		return out
	}
	for _, unit := range units {
		text, ok := targetToText[unit.ID]
		if !ok {
			continue
		}
		out[text] = unit.Text
		l.cache.Set(unit.ID, unit.Text, l.cacheTTL)
	}
	return out
}

// registerSource writes the canonical unit for a text if it is new. Losing
// a create race means another request registered it first.
func (l *Lookup) registerSource(ctx context.Context, namespace, text string) {
	unit := &catalog.Unit{
		ID:        catalog.UnitID(l.sourceLanguage, text, namespace),
		Text:      text,
		Language:  l.sourceLanguage,
		Namespace: namespace,
	}
	if err := l.units.Create(ctx, unit); err != nil && !errors.Is(err, catalog.ErrUnitExists) {
		l.logger.Error("lookup.register_failed", "unit", unit.ID, "error", err)
	}
}

func (l *Lookup) registerSources(ctx context.Context, namespace string, texts []string) {
	units := make([]*catalog.Unit, 0, len(texts))
	for _, text := range texts {
		units = append(units, &catalog.Unit{
			ID:        catalog.UnitID(l.sourceLanguage, text, namespace),
			Text:      text,
			Language:  l.sourceLanguage,
			Namespace: namespace,
		})
	}

	for start := 0; start < len(units); start += lookupWriteChunk {
		end := start + lookupWriteChunk
		if end > len(units) {
			end = len(units)
		}
		if err := l.units.BatchUpsert(ctx, units[start:end]); err != nil {
			l.logger.Error("lookup.batch_register_failed", "count", end-start, "error", err)
			return
		}
	}
}

// memoryCache is the default in-process read cache.
type memoryCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	value     string
	expiresAt time.Time
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]cacheEntry)}
}

func (c *memoryCache) Get(key string) (string, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return "", false
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return "", false
	}
	return entry.value, true
}

func (c *memoryCache) Set(key, value string, ttl time.Duration) {
	entry := cacheEntry{value: value}
	if ttl > 0 {
		entry.expiresAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.entries[key] = entry
	c.mu.Unlock()
}
