package gct

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"sort"

	"cloud.google.com/go/translate"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"golang.org/x/text/language"
	"google.golang.org/api/option"

	"github.com/revenuewire/translation/internal/domain"
	"github.com/revenuewire/translation/internal/languages"
	"github.com/revenuewire/translation/internal/provider"
)

const defaultChunkSize = 10

// Config captures Google Cloud Translation credentials.
type Config struct {
	APIKey string

	// ChunkSize bounds how many texts go into one API call.
	ChunkSize int
}

// Validate reports missing credentials before any vendor call is attempted.
func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.APIKey, validation.Required),
	)
}

// api is the slice of the Cloud Translation client the adapter consumes,
// narrowed so tests can stub the vendor.
type api interface {
	Translate(ctx context.Context, inputs []string, target language.Tag, opts *translate.Options) ([]translate.Translation, error)
}

// Client is the synchronous Google Cloud Translation adapter. Translation
// happens inline during submission; there is nothing to poll.
type Client struct {
	api   api
	chunk int
}

var _ provider.Machine = (*Client)(nil)

// New constructs a GCT client, failing fast on missing credentials.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("gct: %w", err)
	}
	client, err := translate.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("gct: new client: %w", err)
	}
	return newWithAPI(client, cfg.ChunkSize), nil
}

func newWithAPI(a api, chunkSize int) *Client {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &Client{api: a, chunk: chunkSize}
}

func (c *Client) Kind() domain.Provider { return domain.ProviderGCT }
func (c *Client) Synchronous() bool     { return true }

// Translate translates one text, returning the input unchanged on any
// failure. Callers must not assume the value changed.
func (c *Client) Translate(ctx context.Context, sourceLang, targetLang, text string) string {
	results, err := c.translateChunk(ctx, sourceLang, targetLang, []string{text})
	if err != nil || len(results) != 1 {
		return text
	}
	return results[0]
}

// TranslateBatch translates texts keyed by caller-chosen ids, in chunks.
// A failed chunk is dropped rather than retried; its keys are simply absent
// from the result and the caller's items stay pending.
func (c *Client) TranslateBatch(ctx context.Context, sourceLang, targetLang string, texts map[string]string) (map[string]string, error) {
	if len(texts) == 0 {
		return map[string]string{}, nil
	}

	keys := make([]string, 0, len(texts))
	for key := range texts {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	results := make(map[string]string, len(texts))
	for start := 0; start < len(keys); start += c.chunk {
		end := start + c.chunk
		if end > len(keys) {
			end = len(keys)
		}
		chunkKeys := keys[start:end]

		inputs := make([]string, 0, len(chunkKeys))
		for _, key := range chunkKeys {
			inputs = append(inputs, texts[key])
		}

		translated, err := c.translateChunk(ctx, sourceLang, targetLang, inputs)
		if err != nil {
			continue
		}
		for i, key := range chunkKeys {
			results[key] = translated[i]
		}
	}
	return results, nil
}

func (c *Client) translateChunk(ctx context.Context, sourceLang, targetLang string, inputs []string) ([]string, error) {
	sourceCode, ok := languages.ProviderCode(domain.ProviderGCT, sourceLang)
	if !ok {
		return nil, fmt.Errorf("gct: unsupported source language %q", sourceLang)
	}
	targetCode, ok := languages.ProviderCode(domain.ProviderGCT, targetLang)
	if !ok {
		return nil, fmt.Errorf("gct: unsupported target language %q", targetLang)
	}

	sourceTag, err := language.Parse(sourceCode)
	if err != nil {
		return nil, fmt.Errorf("gct: parse source language: %w", err)
	}
	targetTag, err := language.Parse(targetCode)
	if err != nil {
		return nil, fmt.Errorf("gct: parse target language: %w", err)
	}

	protected := make([]string, len(inputs))
	for i, text := range inputs {
		protected[i] = protectPlaceholders(text)
	}

	translations, err := c.api.Translate(ctx, protected, targetTag, &translate.Options{
		Source: sourceTag,
		Format: translate.HTML,
		Model:  "nmt",
	})
	if err != nil {
		return nil, fmt.Errorf("gct: translate: %w", err)
	}
	if len(translations) != len(inputs) {
		return nil, fmt.Errorf("gct: expected %d translations got %d", len(inputs), len(translations))
	}

	out := make([]string, len(translations))
	for i, tr := range translations {
		out[i] = restorePlaceholders(tr.Text)
	}
	return out, nil
}

var (
	placeholderPattern = regexp.MustCompile(`\{([^{}]+)\}`)
	notranslatePattern = regexp.MustCompile(`<span class="notranslate">(.+?)</span>`)
)

// protectPlaceholders wraps templating placeholders in notranslate markup so
// the NMT model passes them through untouched.
func protectPlaceholders(text string) string {
	return placeholderPattern.ReplaceAllString(text, `<span class="notranslate">{$1}</span>`)
}

// restorePlaceholders strips the notranslate markup and decodes the HTML
// entities the API introduces in HTML mode.
func restorePlaceholders(text string) string {
	return html.UnescapeString(notranslatePattern.ReplaceAllString(text, "$1"))
}
