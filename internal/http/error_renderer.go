package httpx

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	apperrors "github.com/fstgc/vms-portal/internal/errors"
	"github.com/fstgc/vms-portal/internal/http/ui/viewmodel"
)

// errorPage is the data behind the "error-layout" template.
type errorPage struct {
	viewmodel.Layout
	Code     string
	Message  string
	HomePath string
}

func (p *errorPage) LayoutData() *viewmodel.Layout { return &p.Layout }

// ErrorOpts contains all options needed to render an error response.
type ErrorOpts struct {
	W http.ResponseWriter
	R *http.Request
	// Err is the error that occurred (optional when Status is set)
	Err error
	// Status overrides the status derived from Err
	Status int
	// Message overrides the user-facing message derived from Err
	Message string
}

// statusFor maps an error to the HTTP status of the page reporting it.
// AppErrors carry their own mapping; bare context errors are timeouts.
func statusFor(err error) int {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr.HTTPStatus()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout
	}
	return http.StatusInternalServerError
}

// messageFor returns the text shown for err. Internal details never reach the page.
func messageFor(err error, status int) string {
	code := apperrors.GetCode(err)
	switch {
	case code == apperrors.ErrCodeTimeout || errors.Is(err, context.DeadlineExceeded):
		return "Request timed out. Please try again."
	case code == apperrors.ErrCodeCanceled || errors.Is(err, context.Canceled):
		return "Request was canceled."
	case status == http.StatusNotFound:
		return "The page you're looking for doesn't exist."
	}
	return apperrors.UserMessage(err, "An error occurred. Please try again.")
}

// RenderError renders the standalone error page. Pages of signed-in users
// link back to their dashboard, everyone else to the login form.
func (h *UIHandlers) RenderError(opts ErrorOpts) {
	status := opts.Status
	if status == 0 {
		status = statusFor(opts.Err)
	}
	msg := opts.Message
	if msg == "" {
		msg = messageFor(opts.Err, status)
	}
	if status >= http.StatusInternalServerError && opts.Err != nil {
		h.logger().ErrorContext(opts.R.Context(), "request failed",
			"path", opts.R.URL.Path,
			"status", status,
			"error", opts.Err)
	}

	page := &errorPage{
		Layout:   buildLayout(opts.R, PageMeta{Title: http.StatusText(status), PageTitle: http.StatusText(status)}),
		Code:     strconv.Itoa(status),
		Message:  msg,
		HomePath: loginPath,
	}
	if sess := GetSessionFromContext(opts.R.Context()); sess != nil {
		page.HomePath = sess.User.Portal().DashboardPath()
	}

	if h.T == nil || h.T.RenderError(opts.W, status, page) != nil {
		http.Error(opts.W, msg, status)
	}
}
