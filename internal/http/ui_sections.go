package httpx

import (
	"errors"
	"net/http"

	domainauth "github.com/fstgc/vms-portal/internal/domain/auth"
	"github.com/fstgc/vms-portal/internal/domain/dashboard"
	"github.com/fstgc/vms-portal/internal/service"
)

// Section renders one section of a portal's dashboard and re-runs its
// loaders on every request.
// GET /admin/{section}, GET /volunteer/{section}.
func (h *UIHandlers) Section(portal domainauth.Portal) http.HandlerFunc {
	layout := dashboard.LayoutFor(portal)
	return func(w http.ResponseWriter, r *http.Request) {
		sess := GetSessionFromContext(r.Context())
		if sess == nil {
			redirect(w, r, loginPath)
			return
		}
		item, ok := layout.Lookup(r.PathValue("section"))
		if !ok {
			h.NotFound(w, r)
			return
		}

		ctx := r.Context()
		ticket := h.Generations.Begin(ctx, sess.ID, contentContainer)
		// The section carries fresh copies of its panels.
		h.Generations.Supersede(ctx, sess.ID, panelContainers(portal, item.Section)...)
		view := h.Dashboard.LoadSection(ctx, *sess, item.Section)
		if WantsPartial(r) && ticket.Superseded(ctx) {
			HTMX(w).Skip()
			return
		}

		h.renderDashboardPage(w, r, &dashboardPage{
			Layout: buildLayout(r, sectionMeta(portal, item)),
			View:   view,
		})
	}
}

func panelContainers(portal domainauth.Portal, section dashboard.Section) []string {
	ids := service.PanelsFor(portal, section)
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		out = append(out, service.ContainerID(id))
	}
	return out
}

// Panel re-runs a single loader and renders only its container. Used by the
// refresh buttons inside each panel.
// GET /admin/panels/{panel}, GET /volunteer/panels/{panel}.
func (h *UIHandlers) Panel(portal domainauth.Portal) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess := GetSessionFromContext(r.Context())
		if sess == nil {
			redirect(w, r, loginPath)
			return
		}
		id := service.PanelID(r.PathValue("panel"))
		if !service.HasPanel(portal, id) {
			h.NotFound(w, r)
			return
		}

		ctx := r.Context()
		ticket := h.Generations.Begin(ctx, sess.ID, service.ContainerID(id))
		view, err := h.Dashboard.Load(ctx, *sess, id)
		if errors.Is(err, service.ErrUnknownPanel) {
			h.NotFound(w, r)
			return
		}
		if IsHTMX(r) && ticket.Superseded(ctx) {
			HTMX(w).Skip()
			return
		}

		page := &dashboardPage{
			Layout: buildLayout(r, PageMeta{Portal: portal}),
			View:   view,
		}
		if err := h.T.RenderFragment(w, panelTemplateFor(portal, string(id)), page); err != nil {
			h.logAndRenderTemplateError(w, r, err, "panel render")
		}
	}
}

// PortalHome redirects a portal's root to its dashboard section.
// GET /admin/{$}, GET /volunteer/{$}.
func (h *UIHandlers) PortalHome(portal domainauth.Portal) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		redirect(w, r, portal.DashboardPath())
	}
}
