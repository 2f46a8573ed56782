package queue

import (
	"context"
	"errors"
	"fmt"

	"github.com/revenuewire/translation/internal/domain"
)

var (
	// ErrItemExists signals a conditional create against a queue key that is
	// already present. This is the sole concurrency-safety mechanism between
	// competing diff runs, so callers treat it as expected and skip.
	ErrItemExists = errors.New("queue: item already exists")

	// ErrProjectExists signals a duplicate project token.
	ErrProjectExists = errors.New("queue: project already exists")
)

// NotFoundError represents missing records from repository lookups.
type NotFoundError struct {
	Resource string
	Key      string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %q not found", e.Resource, e.Key)
}

// IsNotFound reports whether err wraps a repository NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// ItemRepository abstracts storage operations for queue items.
type ItemRepository interface {
	Get(ctx context.Context, id string) (*Item, error)
	// Create inserts an item, failing with ErrItemExists when the key is
	// taken (create-if-absent).
	Create(ctx context.Context, item *Item) error
	// Update overwrites the named columns of an existing item. Missing rows
	// surface as NotFoundError; an empty column list overwrites every field.
	Update(ctx context.Context, item *Item, columns ...string) error
	ByProject(ctx context.Context, projectID string) ([]*Item, error)
	ByStatus(ctx context.Context, status domain.QueueStatus) ([]*Item, error)
}

// ProjectRepository abstracts storage operations for translation projects.
type ProjectRepository interface {
	Get(ctx context.Context, id string) (*Project, error)
	Create(ctx context.Context, project *Project) error
	Update(ctx context.Context, project *Project, columns ...string) error
	ByStatus(ctx context.Context, statuses ...domain.ProjectStatus) ([]*Project, error)
	ByIDs(ctx context.Context, ids []string) ([]*Project, error)
}
