package httpx

import (
	"net/http"
	"strings"

	apperrors "github.com/fstgc/vms-portal/internal/errors"
)

// NotFound handles 404 errors.
// Browser requests get the HTML error page, JSON clients a JSON error.
func (h *UIHandlers) NotFound(w http.ResponseWriter, r *http.Request) {
	err := apperrors.NotFound("not found")
	if wantsJSON(r) {
		WriteError(w, ErrorParams{Code: err.HTTPStatus(), Err: err})
		return
	}
	h.RenderError(ErrorOpts{W: w, R: r, Err: err})
}

// wantsJSON reports an explicit JSON preference without an HTML one.
func wantsJSON(r *http.Request) bool {
	accept := r.Header.Get("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

// Index sends the bare root to the login page, which forwards signed-in
// visitors to their dashboard.
// GET /{$}.
func (h *UIHandlers) Index(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, loginPath, http.StatusSeeOther)
}
