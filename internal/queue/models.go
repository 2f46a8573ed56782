package queue

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"

	"github.com/revenuewire/translation/internal/domain"
)

// Item is one unit of translation work for a
// (source text, target language, provider) triple. Its id is derivable from
// that triple, so re-running a diff never duplicates work.
type Item struct {
	bun.BaseModel `bun:"table:translation_queue,alias:q"`

	ID string `bun:"id,pk" json:"id"`

	// ProjectID binds the item to its owning batch. Once assigned it is
	// never reassigned.
	ProjectID string `bun:"project_id" json:"project_id,omitempty"`

	// TargetID is the id of the translated unit once it is published.
	TargetID string `bun:"target_id" json:"target_id,omitempty"`

	// TargetResult holds the raw translated text once the provider returns
	// it. A populated result implies the item left PENDING.
	TargetResult string `bun:"target_result" json:"target_result,omitempty"`

	Status    domain.QueueStatus `bun:"status,notnull"      json:"status"`
	CreatedAt time.Time          `bun:"created_at,nullzero" json:"created_at"`
	UpdatedAt time.Time          `bun:"updated_at,nullzero" json:"updated_at"`
}

// Project is a bounded batch of queue items submitted together to one
// provider. Projects are append-only history and are never deleted.
type Project struct {
	bun.BaseModel `bun:"table:translation_projects,alias:p"`

	ID             string               `bun:"id,pk"                        json:"id"`
	TargetLanguage string               `bun:"target_language,notnull"      json:"target_language"`
	Provider       domain.Provider      `bun:"provider,notnull"             json:"provider"`
	Status         domain.ProjectStatus `bun:"status,notnull"               json:"status"`
	ProviderData   map[string]any       `bun:"provider_data,type:jsonb"     json:"provider_data,omitempty"`
	Size           int                  `bun:"size"                         json:"size"`
	CreatedAt      time.Time            `bun:"created_at,nullzero"          json:"created_at"`
	UpdatedAt      time.Time            `bun:"updated_at,nullzero"          json:"updated_at"`
}

const itemIDSeparator = ":"

// ItemID derives the composite queue key for a source unit, target language,
// and provider. At most one queue item can exist per triple.
func ItemID(sourceID, targetLanguage string, provider domain.Provider) string {
	return strings.Join([]string{sourceID, targetLanguage, string(provider)}, itemIDSeparator)
}

// SplitItemID recovers the source unit id, target language, and provider
// from a queue key produced by ItemID.
func SplitItemID(id string) (sourceID, targetLanguage string, provider domain.Provider, err error) {
	parts := strings.Split(id, itemIDSeparator)
	if len(parts) != 3 || parts[0] == "" || parts[1] == "" || parts[2] == "" {
		return "", "", "", fmt.Errorf("queue: malformed item id %q", id)
	}
	p, ok := domain.ParseProvider(parts[2])
	if !ok {
		return "", "", "", fmt.Errorf("queue: unknown provider in item id %q", id)
	}
	return parts[0], parts[1], p, nil
}

// NewProjectID mints an opaque project token. Generation order carries no
// meaning.
func NewProjectID() string {
	return uuid.NewString()
}

// ErrResultWithoutStatus guards the invariant that a populated target result
// implies an item past PENDING. ERROR items keep their result so a failed
// publish can be inspected.
var ErrResultWithoutStatus = errors.New("queue: target result set on pending item")

// Validate checks item invariants prior to a write.
func (i *Item) Validate() error {
	if i.TargetResult != "" && i.Status == domain.QueuePending {
		return ErrResultWithoutStatus
	}
	return nil
}
