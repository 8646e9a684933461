package web

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/artpar/pagekit/config"
	"github.com/artpar/pagekit/core/detail"
	"github.com/artpar/pagekit/core/endpoint"
	"github.com/artpar/pagekit/core/nav"
	"github.com/artpar/pagekit/ports"
)

// HomePage lists the configured resource collections.
func (h *Handler) HomePage(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		Title string
		URL   string
		Owned bool
	}
	var entries []entry
	for _, name := range h.order {
		b := h.bindings[name]
		entries = append(entries, entry{
			Title: b.Endpoint.Title(),
			URL:   "/" + b.Endpoint.Plural(),
			Owned: b.Endpoint.Parent != nil,
		})
	}

	data := struct {
		PageData
		Resources []entry
	}{
		PageData:  h.newPageData(r, "Resources"),
		Resources: entries,
	}
	if h.metrics != nil {
		h.metrics.PageRenders.WithLabelValues("home", "").Inc()
	}
	h.render(w, http.StatusOK, "home", data)
}

// listView is the view model for a collection page.
type listView struct {
	PageData
	Resource string
	Trail    []nav.Entry
	Items    []itemRow
	BaseURL  string
	NewURL   string
}

type itemRow struct {
	ID    string
	Label string
	URL   string
}

func (h *Handler) listPage(b *Binding) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parents, baseURL, err := h.parentValues(r, b)
		if err != nil {
			h.renderParentError(w, r, err)
			return
		}

		items, err := b.Store.List(r.Context())
		if err != nil {
			h.logger.Error().Err(err).Str("resource", b.Endpoint.Name).Msg("list failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		// Scope nested collections to the addressed parent.
		if ref := b.Endpoint.ParentRefField(); ref != "" && len(parents) > 0 {
			filtered := items[:0]
			for _, item := range items {
				if item[ref] == parents[0].Key() {
					filtered = append(filtered, item)
				}
			}
			items = filtered
		}

		named := make([]nav.Named, len(parents))
		for i, p := range parents {
			named[i] = p
		}
		trail, _, err := nav.Build(b.Endpoint, named, "", baseURL)
		if err != nil {
			h.renderParentError(w, r, err)
			return
		}
		// The list page itself is the collection; drop the empty
		// current-item entry.
		trail = trail[:len(trail)-1]

		rows := make([]itemRow, len(items))
		for i, item := range items {
			rows[i] = itemRow{
				ID:    item.ID(),
				Label: item.DisplayName(b.Endpoint.Label()),
				URL:   baseURL + "/" + item.ID(),
			}
		}

		data := listView{
			PageData: h.newPageData(r, b.Endpoint.Title()),
			Resource: b.Endpoint.Title(),
			Trail:    trail,
			Items:    rows,
			BaseURL:  baseURL,
			NewURL:   baseURL + "/new",
		}
		if h.metrics != nil {
			h.metrics.PageRenders.WithLabelValues("list", b.Endpoint.Name).Inc()
		}
		h.render(w, http.StatusOK, "list", data)
	}
}

// detailView is the view model for a detail/edit page.
type detailView struct {
	PageData
	Resource   string
	Trail      []nav.Entry
	Stack      []nav.Entry
	Fields     []fieldView
	IsNew      bool
	FormAction string
	DeleteURL  string
	Error      string
}

type fieldView struct {
	Name     string
	Label    string
	Widget   string
	Required bool
	Value    any
	Errors   []string
	Select   map[string]any
}

func (h *Handler) detailPage(b *Binding) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parents, baseURL, err := h.parentValues(r, b)
		if err != nil {
			h.renderParentError(w, r, err)
			return
		}

		id := chi.URLParam(r, "id")
		crumbs := &crumbBar{}
		ctrl := detail.New(detail.Deps{
			Endpoint: b.Endpoint,
			Resource: b.Store,
			Crumbs:   crumbs,
			Messages: &flashMessages{},
			Nav:      &redirector{},
			Logger:   h.logger,
		})

		stack, err := ctrl.Activate(r.Context(), id, parents, baseURL)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			h.logger.Error().Err(err).Str("resource", b.Endpoint.Name).Msg("activate failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if h.metrics != nil {
			h.metrics.PageRenders.WithLabelValues("detail", b.Endpoint.Name).Inc()
		}
		h.renderDetail(w, r, http.StatusOK, b, ctrl, crumbs.trail, stack, baseURL, "")
	}
}

func (h *Handler) savePage(b *Binding) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parents, baseURL, err := h.parentValues(r, b)
		if err != nil {
			h.renderParentError(w, r, err)
			return
		}

		id := chi.URLParam(r, "id")
		crumbs := &crumbBar{}
		redirect := &redirector{}
		ctrl := detail.New(detail.Deps{
			Endpoint: b.Endpoint,
			Resource: b.Store,
			Crumbs:   crumbs,
			Messages: &flashMessages{},
			Nav:      redirect,
			Logger:   h.logger,
		})

		stack, err := ctrl.Activate(r.Context(), id, parents, baseURL)
		if err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			h.logger.Error().Err(err).Str("resource", b.Endpoint.Name).Msg("activate failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		for _, f := range b.Fields {
			if r.Form.Has(f.Name) {
				ctrl.Set(f.Name, r.FormValue(f.Name))
			}
		}

		err = ctrl.Save(r.Context())
		var verr *detail.ValidationError
		isValidation := errors.As(err, &verr)
		if h.metrics != nil {
			h.metrics.ObserveSave(b.Endpoint.Name, err, isValidation)
		}

		if isValidation {
			h.renderDetail(w, r, http.StatusUnprocessableEntity, b, ctrl, crumbs.trail, stack, baseURL, "")
			return
		}
		if err != nil {
			h.renderDetail(w, r, http.StatusBadGateway, b, ctrl, crumbs.trail, stack, baseURL,
				"Saving failed, please retry.")
			return
		}

		target := redirect.path
		if target == "" {
			target = baseURL + "/" + ctrl.Item().ID()
		}
		http.Redirect(w, r, target+"?saved=1", http.StatusSeeOther)
	}
}

func (h *Handler) removePage(b *Binding) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		parents, baseURL, err := h.parentValues(r, b)
		if err != nil {
			h.renderParentError(w, r, err)
			return
		}

		id := chi.URLParam(r, "id")
		redirect := &redirector{}
		ctrl := detail.New(detail.Deps{
			Endpoint: b.Endpoint,
			Resource: b.Store,
			Crumbs:   &crumbBar{},
			Messages: &flashMessages{},
			Nav:      redirect,
			Logger:   h.logger,
		})

		if _, err := ctrl.Activate(r.Context(), id, parents, baseURL); err != nil {
			if errors.Is(err, ports.ErrNotFound) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		err = ctrl.Remove(r.Context())
		if h.metrics != nil {
			outcome := "ok"
			if err != nil {
				outcome = "error"
			}
			h.metrics.RemovesTotal.WithLabelValues(b.Endpoint.Name, outcome).Inc()
		}
		if err != nil {
			h.logger.Error().Err(err).Str("resource", b.Endpoint.Name).Msg("remove failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		// Back from an item page lands on its collection.
		http.Redirect(w, r, baseURL+"?removed=1", http.StatusSeeOther)
	}
}

func (h *Handler) renderDetail(w http.ResponseWriter, r *http.Request, status int, b *Binding,
	ctrl *detail.Controller, trail []nav.Entry, stack nav.Stack, baseURL, errMsg string) {

	item := ctrl.Item()
	fieldErrors := ctrl.FieldErrors()

	fields := make([]fieldView, len(b.Fields))
	for i, f := range b.Fields {
		fields[i] = fieldView{
			Name:     f.Name,
			Label:    fieldLabel(f),
			Widget:   f.Widget,
			Required: f.Required,
			Value:    item[f.Name],
			Errors:   fieldErrors[f.Name],
			Select:   h.resolveSelect(b, f),
		}
	}

	title := b.Endpoint.Title()
	formAction := baseURL
	deleteURL := ""
	if !ctrl.IsNew() {
		formAction = baseURL + "/" + item.ID()
		deleteURL = formAction + "/delete"
	}

	data := detailView{
		PageData:   h.newPageData(r, title),
		Resource:   title,
		Trail:      trail,
		Stack:      stack,
		Fields:     fields,
		IsNew:      ctrl.IsNew(),
		FormAction: formAction,
		DeleteURL:  deleteURL,
		Error:      errMsg,
	}
	h.render(w, status, "detail", data)
}

// resolveSelect merges a field's inline options onto its named select
// config. Nil for non-select widgets with nothing to configure.
func (h *Handler) resolveSelect(b *Binding, f config.FieldConfig) map[string]any {
	if f.Widget != "select" && f.Select == "" {
		return nil
	}
	name := f.Select
	if name == "" {
		name = f.Name
	}
	cfg, err := h.selects.Resolve(name, f.Options)
	if err != nil {
		h.logger.Error().Err(err).
			Str("resource", b.Endpoint.Name).
			Str("field", f.Name).
			Str("select", name).
			Msg("select config resolve failed")
		return nil
	}
	return cfg
}

// parentValues loads the ancestor items addressed by the URL, ordered from
// the immediate parent outward, and assembles the concrete collection path.
func (h *Handler) parentValues(r *http.Request, b *Binding) ([]detail.ParentValue, string, error) {
	chain := b.Endpoint.Chain()

	parents := make([]detail.ParentValue, 0, len(chain))
	baseURL := ""
	for i := len(chain) - 1; i >= 0; i-- {
		p := chain[i]
		id := chi.URLParam(r, p.Name+"_id")
		if id == "" {
			return nil, "", fmt.Errorf("%w: missing %s id", nav.ErrMissingParentData, p.Name)
		}

		pb, ok := h.bindings[p.Name]
		if !ok {
			return nil, "", fmt.Errorf("no binding for parent resource %q", p.Name)
		}
		item, err := pb.Store.Get(r.Context(), id)
		if err != nil {
			return nil, "", fmt.Errorf("load parent %s %q: %w", p.Name, id, err)
		}

		pv := parentValue{item: item, label: p.Label()}
		parents = append([]detail.ParentValue{pv}, parents...)
		baseURL += "/" + p.Plural() + "/" + id
	}

	return parents, baseURL + "/" + b.Endpoint.Plural(), nil
}

func (h *Handler) renderParentError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ports.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	h.logger.Error().Err(err).Str("path", r.URL.Path).Msg("parent resolution failed")
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func fieldLabel(f config.FieldConfig) string {
	if f.Label != "" {
		return f.Label
	}
	return endpoint.Capitalize(f.Name)
}
