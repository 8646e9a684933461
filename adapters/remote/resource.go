package remote

import (
	"context"
	"net/url"

	"github.com/artpar/pagekit/ports"
)

// Resource accesses one collection on the remote service.
type Resource struct {
	client *Client
	path   string
}

// Resource returns an accessor for a collection path, e.g. "/widgets".
func (c *Client) Resource(path string) *Resource {
	return &Resource{client: c, path: path}
}

// Get retrieves an item by id.
func (r *Resource) Get(ctx context.Context, id string) (ports.Item, error) {
	var item ports.Item
	if err := r.client.Request(ctx, "GET", r.itemPath(id), nil, &item); err != nil {
		return nil, err
	}
	return item, nil
}

// Save creates the item with POST when it has no id, otherwise updates it
// with PUT. The response body carries the saved item including its id.
func (r *Resource) Save(ctx context.Context, item ports.Item) (ports.Item, error) {
	var saved ports.Item
	if item.ID() == "" {
		if err := r.client.Request(ctx, "POST", r.path, item, &saved); err != nil {
			return nil, err
		}
		return saved, nil
	}
	if err := r.client.Request(ctx, "PUT", r.itemPath(item.ID()), item, &saved); err != nil {
		return nil, err
	}
	return saved, nil
}

// Remove deletes an item by id.
func (r *Resource) Remove(ctx context.Context, id string) error {
	return r.client.Request(ctx, "DELETE", r.itemPath(id), nil, nil)
}

// List returns all items in the collection.
func (r *Resource) List(ctx context.Context) ([]ports.Item, error) {
	var items []ports.Item
	if err := r.client.Request(ctx, "GET", r.path, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Resource) itemPath(id string) string {
	return r.path + "/" + url.PathEscape(id)
}

// Ensure interface compliance.
var _ ports.Collection = (*Resource)(nil)
