package httpx

import (
	"bytes"
	"context"
	"html"
	"log/slog"
	"net/http"

	domainauth "github.com/fstgc/vms-portal/internal/domain/auth"
	"github.com/fstgc/vms-portal/internal/domain/dashboard"
	"github.com/fstgc/vms-portal/internal/http/ui/viewmodel"
	"github.com/fstgc/vms-portal/internal/service"
)

// DashboardLoader runs the data loaders behind sections and panels.
type DashboardLoader interface {
	LoadSection(ctx context.Context, sess domainauth.Session, section dashboard.Section) service.View
	Load(ctx context.Context, sess domainauth.Session, ids ...service.PanelID) (service.View, error)
}

var _ DashboardLoader = (*service.DashboardService)(nil)

// UIHandlers serves browser-facing dashboard routes.
type UIHandlers struct {
	T           *TemplateRenderer
	Dashboard   DashboardLoader
	Generations *service.GenerationService
	IsDev       bool // Development mode flag for enhanced error reporting
	Logger      *slog.Logger
}

// logger returns the configured logger or falls back to slog.Default().
func (h *UIHandlers) logger() *slog.Logger {
	if h != nil && h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}

// PageMeta contains metadata for page rendering.
type PageMeta struct {
	Title       string
	PageTitle   string
	CurrentPage string
	Portal      domainauth.Portal
	Section     dashboard.Section
}

// dashboardPage is the data behind every dashboard and panel template.
type dashboardPage struct {
	viewmodel.Layout
	View service.View
}

func (p *dashboardPage) LayoutData() *viewmodel.Layout { return &p.Layout }

// documentTitle appends the application name.
func documentTitle(title string) string {
	if title == "" {
		return AppName
	}
	return title + " - " + AppName
}

// buildLayout constructs shared layout metadata from the request/session context.
func buildLayout(r *http.Request, meta PageMeta) viewmodel.Layout {
	layout := viewmodel.Layout{
		Title:       documentTitle(meta.Title),
		PageTitle:   meta.PageTitle,
		CurrentPage: meta.CurrentPage,
		Portal:      string(meta.Portal),
		Section:     string(meta.Section),
		CSRFToken:   GetCSRFToken(r),
		CSRFField:   csrfField(r),
	}

	if meta.Portal != domainauth.PortalNone {
		layout.Nav = dashboard.LayoutFor(meta.Portal).Nav(meta.Section)
	}

	if session := GetSessionFromContext(r.Context()); session != nil {
		layout.User = &viewmodel.User{
			Name:    session.User.DisplayName(),
			Initial: session.User.Initial(),
			Email:   session.User.Email,
			Role:    string(session.User.Role),
		}
		layout.IsAuthenticated = true
	}

	return layout
}

// sectionMeta describes the page of one dashboard section.
func sectionMeta(portal domainauth.Portal, item dashboard.NavItem) PageMeta {
	return PageMeta{
		Title:       item.Title,
		PageTitle:   item.Title,
		CurrentPage: pageID(portal, item.Section),
		Portal:      portal,
		Section:     item.Section,
	}
}

// renderDashboardPage renders a dashboard page with proper HTMX partial support.
// Full loads get the layout; htmx swaps of #content get the section plus
// out-of-band updates of the header title and sidebar, and a nav:activate
// event for the client script.
func (h *UIHandlers) renderDashboardPage(w http.ResponseWriter, r *http.Request, page *dashboardPage) {
	w.Header().Add("Vary", "Hx-Request")

	// Handle full page requests first (early return) to reduce nesting
	if !WantsPartial(r) {
		if err := h.T.RenderFull(w, r, page); err != nil {
			h.logAndRenderTemplateError(w, r, err, "full page render")
		}
		return
	}

	var buf bytes.Buffer
	// Include a <title> element so htmx updates document.title on partial swaps
	buf.WriteString(`<title>` + html.EscapeString(page.Title) + `</title>`)
	// Out-of-band update for the header title
	buf.WriteString(`<h1 id="page-title" class="page-title" hx-swap-oob="outerHTML">` +
		html.EscapeString(page.PageTitle) + `</h1>`)

	nav, err := h.T.execute("sidebar-nav-items", page)
	if err != nil {
		h.logAndRenderTemplateError(w, r, err, "partial nav render")
		return
	}
	buf.WriteString(`<div hx-swap-oob="innerHTML:#sidebar-nav">`)
	_, _ = nav.WriteTo(&buf)
	buf.WriteString(`</div>`)

	content, err := h.T.execute("content", page)
	if err != nil {
		h.logAndRenderTemplateError(w, r, err, "partial content render")
		return
	}
	_, _ = content.WriteTo(&buf)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	HTMX(w).Trigger("nav:activate", map[string]string{
		"portal":  page.Portal,
		"section": page.Section,
	})
	if _, err := buf.WriteTo(w); err != nil {
		h.logger().Error("failed to write partial response", "error", err)
	}
}

// logAndRenderTemplateError logs template errors and renders them in dev mode.
func (h *UIHandlers) logAndRenderTemplateError(w http.ResponseWriter, r *http.Request, err error, context string) {
	h.logger().Error("template rendering failed",
		"error", err,
		"context", context,
		"path", r.URL.Path,
		"method", r.Method,
	)

	// In dev mode, show detailed error in the response
	if h.IsDev {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		if _, writeErr := w.Write([]byte(`<div class="template-error"><h2>Template Rendering Error</h2>` +
			`<p><strong>Context:</strong> ` + html.EscapeString(context) + `</p>` +
			`<p><strong>Path:</strong> ` + html.EscapeString(r.URL.Path) + `</p>` +
			`<pre>` + html.EscapeString(err.Error()) + `</pre></div>`)); writeErr != nil {
			h.logger().Error("failed to write template error response", "error", writeErr)
		}
		return
	}

	// In production, show generic error
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
