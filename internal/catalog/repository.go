package catalog

import (
	"context"
	"errors"
	"fmt"
)

// ErrUnitExists signals a conditional create against an id that is already
// present. Expected under concurrent sweeps; callers may re-read or skip.
var ErrUnitExists = errors.New("catalog: unit already exists")

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

// Pager yields successive pages of units. It is lazy, finite, and
// non-restartable: callers invoke Next until it returns an empty page.
type Pager interface {
	Next(ctx context.Context) ([]*Unit, error)
}

// Repository abstracts storage operations for translation units.
type Repository interface {
	Get(ctx context.Context, id string) (*Unit, error)
	// BatchGet returns the units that exist; absent ids are silently skipped.
	BatchGet(ctx context.Context, ids []string) ([]*Unit, error)
	// Create inserts a unit, failing with ErrUnitExists when the id is taken.
	Create(ctx context.Context, unit *Unit) error
	// Upsert inserts or fully overwrites a unit.
	Upsert(ctx context.Context, unit *Unit) error
	BatchUpsert(ctx context.Context, units []*Unit) error
	// ByLanguage scans every unit stored under a language code.
	ByLanguage(ctx context.Context, language string) Pager
}
