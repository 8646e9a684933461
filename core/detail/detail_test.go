package detail

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/rs/zerolog"

	"github.com/artpar/pagekit/core/endpoint"
	"github.com/artpar/pagekit/core/nav"
	"github.com/artpar/pagekit/ports"
)

// -----------------------------------------------------------------------------
// Fake collaborators
// -----------------------------------------------------------------------------

type fakeResource struct {
	items   map[string]ports.Item
	saveErr error
	lastID  string
}

func newFakeResource() *fakeResource {
	return &fakeResource{items: map[string]ports.Item{}}
}

func (r *fakeResource) Get(ctx context.Context, id string) (ports.Item, error) {
	item, ok := r.items[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return item.Clone(), nil
}

func (r *fakeResource) Save(ctx context.Context, item ports.Item) (ports.Item, error) {
	if r.saveErr != nil {
		return nil, r.saveErr
	}
	saved := item.Clone()
	if saved.ID() == "" {
		r.lastID = "generated-1"
		saved.SetID(r.lastID)
	}
	r.items[saved.ID()] = saved.Clone()
	return saved, nil
}

func (r *fakeResource) Remove(ctx context.Context, id string) error {
	if _, ok := r.items[id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

type fakeCrumbs struct {
	trail    []nav.Entry
	replaced []nav.Entry
}

func (c *fakeCrumbs) Set(trail []nav.Entry) { c.trail = trail }
func (c *fakeCrumbs) ReplaceLast(e nav.Entry) {
	c.replaced = append(c.replaced, e)
	if len(c.trail) > 0 {
		c.trail[len(c.trail)-1] = e
	}
}

type fakeMessages struct {
	cleared int
}

func (m *fakeMessages) Clear() { m.cleared++ }

type fakeNavigator struct {
	paths []string
	backs int
}

func (n *fakeNavigator) Path(path string) { n.paths = append(n.paths, path) }
func (n *fakeNavigator) Back()            { n.backs++ }

type fakeParent struct {
	name string
	key  string
}

func (p fakeParent) DisplayName() string { return p.name }
func (p fakeParent) Key() string         { return p.key }

type harness struct {
	controller *Controller
	resource   *fakeResource
	crumbs     *fakeCrumbs
	messages   *fakeMessages
	nav        *fakeNavigator
}

func newHarness(ep *endpoint.Descriptor) *harness {
	h := &harness{
		resource: newFakeResource(),
		crumbs:   &fakeCrumbs{},
		messages: &fakeMessages{},
		nav:      &fakeNavigator{},
	}
	h.controller = New(Deps{
		Endpoint: ep,
		Resource: h.resource,
		Crumbs:   h.crumbs,
		Messages: h.messages,
		Nav:      h.nav,
		Logger:   zerolog.Nop(),
	})
	return h
}

// -----------------------------------------------------------------------------
// Tests
// -----------------------------------------------------------------------------

func TestActivate_ExistingItem(t *testing.T) {
	widget := &endpoint.Descriptor{Name: "widget"}
	h := newHarness(widget)
	h.resource.items["42"] = ports.Item{"id": "42", "name": "Sprocket"}

	stack, err := h.controller.Activate(context.Background(), "42", nil, "/widgets")
	if err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	if h.messages.cleared != 1 {
		t.Errorf("messages cleared %d times, want 1", h.messages.cleared)
	}
	if len(stack) != 0 {
		t.Errorf("stack = %+v, want empty", stack)
	}

	wantTrail := []nav.Entry{
		{Title: "Widgets", URL: "#/widgets"},
		{Title: "Sprocket"},
	}
	if !reflect.DeepEqual(h.crumbs.trail, wantTrail) {
		t.Errorf("published trail = %+v, want %+v", h.crumbs.trail, wantTrail)
	}
	if h.controller.IsNew() {
		t.Error("IsNew() = true for a loaded item")
	}
}

func TestActivate_NewItem(t *testing.T) {
	widget := &endpoint.Descriptor{Name: "widget"}
	h := newHarness(widget)

	_, err := h.controller.Activate(context.Background(), "", nil, "/widgets")
	if err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	if !h.controller.IsNew() {
		t.Error("IsNew() = false for an unsaved item")
	}
	last := h.crumbs.trail[len(h.crumbs.trail)-1]
	if last.Title != NewLabel {
		t.Errorf("terminal crumb title = %q, want %q", last.Title, NewLabel)
	}
}

func TestActivate_NewChildLinksParent(t *testing.T) {
	gadget := &endpoint.Descriptor{Name: "gadget"}
	widget := &endpoint.Descriptor{Name: "widget", Parent: gadget}
	h := newHarness(widget)

	parents := []ParentValue{fakeParent{name: "Acme", key: "42"}}
	stack, err := h.controller.Activate(context.Background(), "", parents, "/gadgets/42/widgets")
	if err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	if got := h.controller.Item()["gadget_id"]; got != "42" {
		t.Errorf("gadget_id = %v, want 42", got)
	}

	wantStack := nav.Stack{{Title: "Acme", URL: "#/gadgets/42?tab=widgets"}}
	if !reflect.DeepEqual(stack, wantStack) {
		t.Errorf("stack = %+v, want %+v", stack, wantStack)
	}
}

func TestActivate_MissingParentData(t *testing.T) {
	gadget := &endpoint.Descriptor{Name: "gadget"}
	widget := &endpoint.Descriptor{Name: "widget", Parent: gadget}
	h := newHarness(widget)

	_, err := h.controller.Activate(context.Background(), "", nil, "/gadgets/42/widgets")
	if !errors.Is(err, nav.ErrMissingParentData) {
		t.Errorf("Activate() error = %v, want ErrMissingParentData", err)
	}
}

func TestActivate_LoadError(t *testing.T) {
	widget := &endpoint.Descriptor{Name: "widget"}
	h := newHarness(widget)

	_, err := h.controller.Activate(context.Background(), "nope", nil, "/widgets")
	if !errors.Is(err, ports.ErrNotFound) {
		t.Errorf("Activate() error = %v, want wrapped ErrNotFound", err)
	}
}

func TestSave_NewItemNavigates(t *testing.T) {
	widget := &endpoint.Descriptor{Name: "widget"}
	h := newHarness(widget)

	if _, err := h.controller.Activate(context.Background(), "", nil, "/widgets"); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	h.controller.Set("name", "Sprocket")

	if err := h.controller.Save(context.Background()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if h.controller.IsNew() {
		t.Error("IsNew() = true after a successful save")
	}
	if got := h.controller.Item().ID(); got != "generated-1" {
		t.Errorf("saved id = %q, want generated-1", got)
	}
	wantPaths := []string{"/widgets/generated-1"}
	if !reflect.DeepEqual(h.nav.paths, wantPaths) {
		t.Errorf("navigator paths = %v, want %v", h.nav.paths, wantPaths)
	}
	wantReplaced := []nav.Entry{{Title: "Sprocket"}}
	if !reflect.DeepEqual(h.crumbs.replaced, wantReplaced) {
		t.Errorf("replaced crumbs = %+v, want %+v", h.crumbs.replaced, wantReplaced)
	}
}

func TestSave_ExistingItemStays(t *testing.T) {
	widget := &endpoint.Descriptor{Name: "widget"}
	h := newHarness(widget)
	h.resource.items["42"] = ports.Item{"id": "42", "name": "Sprocket"}

	if _, err := h.controller.Activate(context.Background(), "42", nil, "/widgets"); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	h.controller.Set("name", "Cog")

	if err := h.controller.Save(context.Background()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	if len(h.nav.paths) != 0 {
		t.Errorf("navigator paths = %v, want none for an existing item", h.nav.paths)
	}
	wantReplaced := []nav.Entry{{Title: "Cog"}}
	if !reflect.DeepEqual(h.crumbs.replaced, wantReplaced) {
		t.Errorf("replaced crumbs = %+v, want %+v", h.crumbs.replaced, wantReplaced)
	}
}

func TestSave_ValidationErrorGrouped(t *testing.T) {
	widget := &endpoint.Descriptor{Name: "widget"}
	h := newHarness(widget)
	h.resource.saveErr = &ValidationError{Fields: []FieldError{
		{Field: "name", Message: "is required"},
		{Field: "size", Message: "must be positive"},
		{Field: "name", Message: "must be unique"},
	}}

	if _, err := h.controller.Activate(context.Background(), "", nil, "/widgets"); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	err := h.controller.Save(context.Background())
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("Save() error = %v, want *ValidationError", err)
	}

	want := map[string][]string{
		"name": {"is required", "must be unique"},
		"size": {"must be positive"},
	}
	if !reflect.DeepEqual(h.controller.FieldErrors(), want) {
		t.Errorf("FieldErrors() = %v, want %v", h.controller.FieldErrors(), want)
	}
	if !h.controller.IsNew() {
		t.Error("item should remain unsaved after a rejected save")
	}
	if len(h.nav.paths) != 0 {
		t.Errorf("navigator paths = %v, want none after a rejected save", h.nav.paths)
	}
}

func TestSave_OtherErrorPropagatesUngrouped(t *testing.T) {
	widget := &endpoint.Descriptor{Name: "widget"}
	h := newHarness(widget)
	boom := errors.New("upstream down")
	h.resource.saveErr = boom

	if _, err := h.controller.Activate(context.Background(), "", nil, "/widgets"); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}

	if err := h.controller.Save(context.Background()); !errors.Is(err, boom) {
		t.Errorf("Save() error = %v, want %v", err, boom)
	}
	if h.controller.FieldErrors() != nil {
		t.Errorf("FieldErrors() = %v, want nil for a non-validation failure", h.controller.FieldErrors())
	}
}

func TestSave_ClearsStaleFieldErrors(t *testing.T) {
	widget := &endpoint.Descriptor{Name: "widget"}
	h := newHarness(widget)
	h.resource.saveErr = &ValidationError{Fields: []FieldError{{Field: "name", Message: "is required"}}}

	if _, err := h.controller.Activate(context.Background(), "", nil, "/widgets"); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if err := h.controller.Save(context.Background()); err == nil {
		t.Fatal("first Save() should fail")
	}

	h.resource.saveErr = nil
	h.controller.Set("name", "Sprocket")
	if err := h.controller.Save(context.Background()); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	if h.controller.FieldErrors() != nil {
		t.Errorf("FieldErrors() = %v, want nil after a successful save", h.controller.FieldErrors())
	}
}

func TestRemove(t *testing.T) {
	widget := &endpoint.Descriptor{Name: "widget"}
	h := newHarness(widget)
	h.resource.items["42"] = ports.Item{"id": "42", "name": "Sprocket"}

	if _, err := h.controller.Activate(context.Background(), "42", nil, "/widgets"); err != nil {
		t.Fatalf("Activate() error = %v", err)
	}
	if err := h.controller.Remove(context.Background()); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}

	if h.nav.backs != 1 {
		t.Errorf("Back() called %d times, want 1", h.nav.backs)
	}
	if _, ok := h.resource.items["42"]; ok {
		t.Error("item still present after Remove()")
	}
}

func TestGroupByField(t *testing.T) {
	got := GroupByField([]FieldError{
		{Field: "a", Message: "first"},
		{Field: "b", Message: "second"},
		{Field: "a", Message: "third"},
	})
	want := map[string][]string{
		"a": {"first", "third"},
		"b": {"second"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("GroupByField() = %v, want %v", got, want)
	}
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Fields: []FieldError{{Field: "name", Message: "is required"}}}
	if got := err.Error(); got != "validation failed: name: is required" {
		t.Errorf("Error() = %q", got)
	}

	empty := &ValidationError{}
	if got := empty.Error(); got != "validation failed" {
		t.Errorf("Error() = %q", got)
	}
}
