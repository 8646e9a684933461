// Package detail implements the generic detail-page controller: it wires a
// view/edit form to a REST-style resource collaborator, publishes breadcrumb
// navigation, and routes field-level validation errors back to the form.
package detail

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/artpar/pagekit/core/endpoint"
	"github.com/artpar/pagekit/core/nav"
	"github.com/artpar/pagekit/ports"
)

// NewLabel titles the terminal breadcrumb for a not-yet-created item.
const NewLabel = "New"

// ParentValue is an ancestor record supplying its display name for the
// breadcrumb trail and its key for parent linkage.
type ParentValue interface {
	DisplayName() string
	Key() string
}

// Deps contains the collaborators for a controller.
type Deps struct {
	Endpoint *endpoint.Descriptor
	Resource ports.Resource
	Crumbs   ports.BreadcrumbBar
	Messages ports.Messages
	Nav      ports.Navigator
	Logger   zerolog.Logger
}

// Controller drives one detail view. Construct a fresh controller per view
// activation and discard it on teardown; it is not safe for concurrent use.
type Controller struct {
	deps Deps

	item        ports.Item
	baseURL     string
	isNew       bool
	fieldErrors map[string][]string
}

// New creates a controller for a detail view.
func New(deps Deps) *Controller {
	return &Controller{deps: deps}
}

// Activate loads the item (or starts a blank one when id is empty), clears
// global messages, and publishes the breadcrumb trail and UI stack.
//
// parents supplies the actual ancestor records ordered from the immediate
// parent outward; baseURL is the current collection path, e.g.
// "/gadgets/42/widgets".
func (c *Controller) Activate(ctx context.Context, id string, parents []ParentValue, baseURL string) (nav.Stack, error) {
	c.deps.Messages.Clear()
	c.baseURL = baseURL
	c.fieldErrors = nil

	label := NewLabel
	if id == "" {
		c.isNew = true
		c.item = ports.Item{}
		if ref := c.deps.Endpoint.ParentRefField(); ref != "" {
			if len(parents) == 0 {
				return nil, nav.ErrMissingParentData
			}
			c.item.SetParent(ref, parents[0].Key())
		}
	} else {
		item, err := c.deps.Resource.Get(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("load %s %q: %w", c.deps.Endpoint.Name, id, err)
		}
		c.isNew = false
		c.item = item
		label = item.DisplayName(c.deps.Endpoint.Label())
	}

	named := make([]nav.Named, len(parents))
	for i, p := range parents {
		named[i] = p
	}

	trail, stack, err := nav.Build(c.deps.Endpoint, named, label, baseURL)
	if err != nil {
		return nil, err
	}
	c.deps.Crumbs.Set(trail)

	return stack, nil
}

// Item returns the item under edit.
func (c *Controller) Item() ports.Item {
	return c.item
}

// IsNew reports whether the item has not been saved yet.
func (c *Controller) IsNew() bool {
	return c.isNew
}

// FieldErrors returns validation messages from the last failed save, grouped
// by field name. Nil when the last save succeeded.
func (c *Controller) FieldErrors() map[string][]string {
	return c.fieldErrors
}

// Set writes a form value onto the item under edit.
func (c *Controller) Set(field string, value any) {
	c.item[field] = value
}

// Save persists the item through the resource collaborator.
//
// A *ValidationError is recovered locally: its field errors are grouped for
// the form and the view stays in edit mode. Any other error propagates
// ungrouped, also leaving the view in edit mode. On success for a previously
// unsaved item the terminal breadcrumb is replaced with the saved label and
// the navigator is pointed at the item's own page.
func (c *Controller) Save(ctx context.Context) error {
	saved, err := c.deps.Resource.Save(ctx, c.item)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			c.fieldErrors = GroupByField(verr.Fields)
			c.deps.Logger.Debug().
				Str("endpoint", c.deps.Endpoint.Name).
				Int("fields", len(c.fieldErrors)).
				Msg("save rejected with field errors")
			return err
		}
		c.deps.Logger.Error().Err(err).
			Str("endpoint", c.deps.Endpoint.Name).
			Msg("save failed")
		return err
	}

	c.fieldErrors = nil
	wasNew := c.isNew
	c.item = saved
	c.isNew = false

	label := saved.DisplayName(c.deps.Endpoint.Label())
	c.deps.Crumbs.ReplaceLast(nav.Entry{Title: label})

	if wasNew {
		c.deps.Nav.Path(c.baseURL + "/" + saved.ID())
	}
	return nil
}

// Remove deletes the item and navigates back.
func (c *Controller) Remove(ctx context.Context) error {
	if err := c.deps.Resource.Remove(ctx, c.item.ID()); err != nil {
		c.deps.Logger.Error().Err(err).
			Str("endpoint", c.deps.Endpoint.Name).
			Str("id", c.item.ID()).
			Msg("remove failed")
		return err
	}
	c.deps.Nav.Back()
	return nil
}
