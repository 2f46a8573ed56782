package provider

import (
	"context"
	"fmt"

	"github.com/revenuewire/translation/internal/domain"
)

// Vendor status codes shared by the reconciliation state machine. Providers
// map their native codes onto these.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusSigned     = "signed"
	StatusCompleted  = "completed"
)

// Translator is the uniform capability contract every vendor adapter
// implements. The synchronous/asynchronous split is an explicit capability:
// synchronous adapters also implement Machine, asynchronous ones Marketplace.
type Translator interface {
	Kind() domain.Provider
	Synchronous() bool
}

// Machine is a synchronous provider: translated text comes back inline
// within the submission call. Both calls are best-effort — adapter failures
// return the original text rather than propagating, so callers must not
// assume the value changed.
type Machine interface {
	Translator

	// TranslateBatch translates texts keyed by caller-chosen ids. Keys
	// missing from the result were dropped by a failed chunk.
	TranslateBatch(ctx context.Context, sourceLang, targetLang string, texts map[string]string) (map[string]string, error)

	// Translate translates a single text, returning the input on failure.
	Translate(ctx context.Context, sourceLang, targetLang, text string) string
}

// SubmissionItem pairs a queue item id with its source text so results can
// be mapped back after the provider round-trip.
type SubmissionItem struct {
	ItemID string
	Text   string
}

// Submission is a provider-agnostic batch handed to an asynchronous vendor.
type Submission struct {
	ProjectID      string
	SourceLanguage string
	TargetLanguage string
	Items          []SubmissionItem
}

// Receipt captures the vendor's tracking state after an asynchronous submit.
// It is persisted verbatim as the project's opaque provider data.
type Receipt struct {
	// ProviderProjectID is the vendor-side project token used for polling.
	ProviderProjectID string

	// Resources maps uploaded resource ids to the pipeline project id so
	// reconciliation can detect vendor/queue drift.
	Resources map[string]string

	// Extra carries provider-specific details (credits, word counts).
	Extra map[string]any
}

// StatusReport is the polled state of an asynchronous vendor project.
type StatusReport struct {
	// Code is one of the Status constants, or a raw vendor code when the
	// vendor reports something the pipeline does not recognize.
	Code string

	// Bindings maps each submitted source resource to the translated
	// resources produced for it. Empty bindings mean not translated yet.
	Bindings map[string][]string
}

// Marketplace is an asynchronous provider: submissions are accepted and
// results arrive later via polling.
type Marketplace interface {
	Translator

	Submit(ctx context.Context, sub Submission) (*Receipt, error)
	Status(ctx context.Context, providerProjectID string) (*StatusReport, error)

	// FetchResults downloads and decodes a translated resource, returning
	// translated texts keyed by the queue item ids embedded at submit time.
	FetchResults(ctx context.Context, resourceID string) (map[string]string, error)
}

// UnknownProviderError marks a project whose provider has no registered
// adapter — a fatal misconfiguration, never silently skipped.
type UnknownProviderError struct {
	Provider domain.Provider
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("provider: no adapter registered for %q", e.Provider)
}

// Registry resolves vendor adapters by provider code.
type Registry struct {
	translators map[domain.Provider]Translator
}

// NewRegistry indexes the supplied adapters by kind.
func NewRegistry(translators ...Translator) *Registry {
	index := make(map[domain.Provider]Translator, len(translators))
	for _, t := range translators {
		if t != nil {
			index[t.Kind()] = t
		}
	}
	return &Registry{translators: index}
}

// Resolve returns the adapter for a provider or an UnknownProviderError.
func (r *Registry) Resolve(kind domain.Provider) (Translator, error) {
	if r != nil {
		if t, ok := r.translators[kind]; ok {
			return t, nil
		}
	}
	return nil, &UnknownProviderError{Provider: kind}
}
