package backendapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend responded %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("backend responded %d: %s", e.Status, e.Message)
}

// StatusCode returns the HTTP status the backend answered with.
func (e *APIError) StatusCode() int { return e.Status }

// BackendMessage returns the message normalized from the response body, if any.
func (e *APIError) BackendMessage() string { return e.Message }

// AsAPIError unwraps err into an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// messageExpr picks the human readable message out of the error bodies the
// backend and its servlet container produce.
const messageExpr = "message || error_description || error.message || error || errors[0].message || errors[0]"

// errorMessage extracts a message from a decoded error body. Non-object
// bodies and unknown shapes yield "".
func errorMessage(body any) string {
	if _, ok := body.(map[string]any); !ok {
		return ""
	}
	v, err := jmespath.Search(messageExpr, body)
	if err != nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(s)
}
