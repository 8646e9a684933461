// Package web provides the SSR scaffolding portal. Each configured resource
// gets list and detail pages wired to its store through the detail
// controller. All templates and static files are embedded in the binary.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/artpar/pagekit/adapters/metrics"
	"github.com/artpar/pagekit/config"
	"github.com/artpar/pagekit/core/endpoint"
	"github.com/artpar/pagekit/core/selectconf"
	"github.com/artpar/pagekit/ports"
)

//go:embed templates/* static/*
var assets embed.FS

// pages that get their own parsed template, each paired with the layout.
var pageNames = []string{"home", "list", "detail", "unlock"}

// Binding ties one configured resource to its descriptor and store.
type Binding struct {
	Endpoint *endpoint.Descriptor
	Store    ports.Collection
	Fields   []config.FieldConfig
}

// Deps contains dependencies for the web handler.
type Deps struct {
	Bindings []*Binding
	Selects  *selectconf.Registry
	Metrics  *metrics.Collector
	Logger   zerolog.Logger

	// EditPasswordHash guards mutating routes when non-empty (bcrypt).
	EditPasswordHash string

	// MetricsEnabled mounts the Prometheus endpoint.
	MetricsEnabled bool
	MetricsPath    string
}

// Handler provides the portal endpoints.
type Handler struct {
	templates map[string]*template.Template
	bindings  map[string]*Binding // by resource name
	order     []string            // declaration order for the home page
	selects   *selectconf.Registry
	metrics   *metrics.Collector
	logger    zerolog.Logger
	editLock  *editLock
	deps      Deps
}

// NewHandler creates a new portal handler.
func NewHandler(deps Deps) (*Handler, error) {
	templates, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	h := &Handler{
		templates: templates,
		bindings:  make(map[string]*Binding, len(deps.Bindings)),
		selects:   deps.Selects,
		metrics:   deps.Metrics,
		logger:    deps.Logger,
		deps:      deps,
	}
	if deps.EditPasswordHash != "" {
		h.editLock = newEditLock(deps.EditPasswordHash)
	}
	for _, b := range deps.Bindings {
		h.bindings[b.Endpoint.Name] = b
		h.order = append(h.order, b.Endpoint.Name)
	}
	return h, nil
}

// Router returns the portal router.
func (h *Handler) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(h.requestLogger)

	staticFS, _ := fs.Sub(assets, "static")
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	if h.deps.MetricsEnabled {
		path := h.deps.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Handle(path, promhttp.Handler())
	}

	r.Get("/", h.HomePage)

	if h.editLock != nil {
		r.Get("/unlock", h.UnlockPage)
		r.Post("/unlock", h.UnlockSubmit)
	}

	for _, name := range h.order {
		b := h.bindings[name]
		pattern := h.routePattern(b)

		r.Get(pattern, h.listPage(b))
		r.Get(pattern+"/new", h.detailPage(b))
		r.Get(pattern+"/{id}", h.detailPage(b))

		r.Group(func(r chi.Router) {
			if h.editLock != nil {
				r.Use(h.editLock.Require)
			}
			r.Post(pattern, h.savePage(b))
			r.Post(pattern+"/{id}", h.savePage(b))
			r.Post(pattern+"/{id}/delete", h.removePage(b))
		})
	}

	return r
}

// routePattern builds the nested chi pattern for a resource, e.g.
// "/gadgets/{gadget_id}/widgets" for a widget owned by gadget.
func (h *Handler) routePattern(b *Binding) string {
	chain := b.Endpoint.Chain()
	pattern := ""
	for i := len(chain) - 1; i >= 0; i-- {
		p := chain[i]
		pattern += "/" + p.Plural() + "/{" + p.Name + "_id}"
	}
	return pattern + "/" + b.Endpoint.Plural()
}

// PageData is the view model shared by all pages.
type PageData struct {
	Title   string
	Flash   string
	Locked  bool
	HomeURL string
}

func (h *Handler) newPageData(r *http.Request, title string) PageData {
	flash := ""
	if r.URL.Query().Get("saved") == "1" {
		flash = "Saved."
	}
	if r.URL.Query().Get("removed") == "1" {
		flash = "Deleted."
	}
	return PageData{
		Title:   title,
		Flash:   flash,
		Locked:  h.editLock != nil && !h.editLock.Unlocked(r),
		HomeURL: "/",
	}
}

func (h *Handler) render(w http.ResponseWriter, status int, page string, data any) {
	tmpl, ok := h.templates[page]
	if !ok {
		h.logger.Error().Str("page", page).Msg("unknown template")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, "layout", data); err != nil {
		h.logger.Error().Err(err).Str("page", page).Msg("template render failed")
	}
}

func parseTemplates() (map[string]*template.Template, error) {
	templates := make(map[string]*template.Template, len(pageNames))
	for _, page := range pageNames {
		tmpl, err := template.New(page).Funcs(templateFuncs).ParseFS(assets,
			"templates/layout.html",
			"templates/"+page+".html",
		)
		if err != nil {
			return nil, fmt.Errorf("parse template %s: %w", page, err)
		}
		templates[page] = tmpl
	}
	return templates, nil
}

var templateFuncs = template.FuncMap{
	"now": func() int { return time.Now().Year() },

	// href turns a breadcrumb fragment URL into a portal path.
	"href": func(u string) string { return strings.TrimPrefix(u, "#") },

	// choiceValue and choiceLabel read select choices that are either
	// plain strings or {value, label} maps.
	"choiceValue": func(c any) string {
		if m, ok := c.(map[string]any); ok {
			return fmt.Sprint(m["value"])
		}
		return fmt.Sprint(c)
	},
	"choiceLabel": func(c any) string {
		if m, ok := c.(map[string]any); ok {
			if l, ok := m["label"]; ok {
				return fmt.Sprint(l)
			}
			return fmt.Sprint(m["value"])
		}
		return fmt.Sprint(c)
	},
}

// requestLogger logs each request and feeds the duration histogram.
func (h *Handler) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		elapsed := time.Since(start)
		if h.metrics != nil {
			h.metrics.RequestDuration.
				WithLabelValues(r.Method, fmt.Sprint(sw.status)).
				Observe(elapsed.Seconds())
		}
		h.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", sw.status).
			Dur("elapsed", elapsed).
			Msg("request")
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
