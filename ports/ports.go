// Package ports defines interfaces (contracts) between layers.
// These interfaces enable dependency injection and testability.
// Implementations live in adapters/ or in the embedding application.
package ports

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/artpar/pagekit/core/nav"
)

// ErrNotFound is returned by Resource implementations when no item exists
// for the requested id.
var ErrNotFound = errors.New("not found")

// Item is a resource record as a free-form document. The "id" field is
// reserved for the record identifier.
type Item map[string]any

// ID returns the item's identifier, or "" when unsaved.
func (it Item) ID() string {
	id, _ := it["id"].(string)
	return id
}

// SetID sets the item's identifier.
func (it Item) SetID(id string) {
	it["id"] = id
}

// SetParent stores a parent reference under the given field.
func (it Item) SetParent(field, id string) {
	it[field] = id
}

// DisplayName returns the item's display name from the given field, falling
// back to the id when the field is absent or empty.
func (it Item) DisplayName(field string) string {
	if v, ok := it[field]; ok && v != nil {
		if s, ok := v.(string); ok {
			if s != "" {
				return s
			}
		} else {
			return fmt.Sprint(v)
		}
	}
	return it.ID()
}

// Clone returns a deep copy of the item. Nested maps and slices are copied;
// scalar values are shared (they are immutable).
func (it Item) Clone() Item {
	if it == nil {
		return nil
	}
	out := make(Item, len(it))
	for k, v := range it {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case Item:
		return map[string]any(t.Clone())
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Parentable is implemented by items that accept a parent reference when
// created under a parent resource.
type Parentable interface {
	SetParent(field, id string)
}

var _ Parentable = Item{}

// -----------------------------------------------------------------------------
// Collaborator Ports
// -----------------------------------------------------------------------------

// Resource is the data-access collaborator for a single resource collection.
type Resource interface {
	// Get retrieves an item by id. Returns ErrNotFound when absent.
	Get(ctx context.Context, id string) (Item, error)

	// Save creates or updates an item. The returned item carries the
	// assigned id. A rejection with field-level errors is returned as
	// *detail.ValidationError.
	Save(ctx context.Context, item Item) (Item, error)

	// Remove deletes an item by id.
	Remove(ctx context.Context, id string) error
}

// Collection extends Resource with listing, for collection pages.
type Collection interface {
	Resource

	// List returns all items in the collection.
	List(ctx context.Context) ([]Item, error)
}

// BreadcrumbBar publishes breadcrumb trails to the navigation UI.
type BreadcrumbBar interface {
	// Set replaces the published trail.
	Set(trail []nav.Entry)

	// ReplaceLast swaps the terminal entry of the published trail.
	ReplaceLast(e nav.Entry)
}

// Messages is the global user-message collaborator.
type Messages interface {
	// Clear dismisses all pending user messages.
	Clear()
}

// Navigator is the location collaborator.
type Navigator interface {
	// Path redirects to the given path.
	Path(path string)

	// Back navigates to the previous location.
	Back()
}

// -----------------------------------------------------------------------------
// Infrastructure Ports
// -----------------------------------------------------------------------------

// Clock abstracts time for testability.
type Clock interface {
	Now() time.Time
}

// IDGenerator generates unique identifiers.
type IDGenerator interface {
	New() string
}
