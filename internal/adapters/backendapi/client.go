// Package backendapi is the portal's client for the volunteer REST backend.
package backendapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fstgc/vms-portal/internal/domain/model"
	"github.com/fstgc/vms-portal/internal/ports"
)

const (
	defaultTimeout = 10 * time.Second
	// maxBodyBytes caps how much of a response we are willing to read.
	maxBodyBytes = 4 << 20
)

// Config configures Client.
type Config struct {
	BaseURL string
	Timeout time.Duration
	// Client overrides the HTTP client (tests). Its Timeout is left as is.
	Client *http.Client
}

// Client talks JSON to the backend. It is safe for concurrent use.
type Client struct {
	base   *url.URL
	client *http.Client
}

// NewClient validates cfg and builds a Client.
func NewClient(cfg Config) (*Client, error) {
	raw := strings.TrimSpace(cfg.BaseURL)
	if raw == "" {
		return nil, errors.New("backend base url is required")
	}
	if !strings.HasSuffix(raw, "/") {
		raw += "/"
	}
	base, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("parse backend base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend base url must be http(s), got %q", base.Scheme)
	}

	hc := cfg.Client
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{base: base, client: hc}, nil
}

var _ ports.Backend = (*Client)(nil)

// Login exchanges credentials for a backend token and user.
func (c *Client) Login(ctx context.Context, creds ports.Credentials) (ports.LoginResult, error) {
	var res ports.LoginResult
	raw, err := c.do(ctx, http.MethodPost, "api/login", nil, "", creds)
	if err != nil {
		return res, err
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		return ports.LoginResult{}, fmt.Errorf("decode login response: %w", err)
	}
	if res.Token == "" {
		return ports.LoginResult{}, errors.New("decode login response: missing token")
	}
	return res, nil
}

// Logout invalidates token on the backend.
func (c *Client) Logout(ctx context.Context, token string) error {
	_, err := c.do(ctx, http.MethodPost, "api/logout", nil, token, nil)
	return err
}

func (c *Client) AdminStatistics(ctx context.Context, token string) (model.AdminStatistics, error) {
	raw, err := c.do(ctx, http.MethodGet, "api/admin/statistics", nil, token, nil)
	if err != nil {
		return model.AdminStatistics{}, err
	}
	return unwrapObject[model.AdminStatistics](raw)
}

func (c *Client) ListEvents(ctx context.Context, token string, filter model.EventFilter) ([]model.Event, error) {
	raw, err := c.do(ctx, http.MethodGet, "api/events", filter.Query(), token, nil)
	if err != nil {
		return nil, err
	}
	return unwrapList[model.Event](raw)
}

func (c *Client) ListAnnouncements(
	ctx context.Context,
	token string,
	filter model.AnnouncementFilter,
) ([]model.Announcement, error) {
	raw, err := c.do(ctx, http.MethodGet, "api/announcements", filter.Query(), token, nil)
	if err != nil {
		return nil, err
	}
	return unwrapList[model.Announcement](raw)
}

func (c *Client) ListVolunteers(ctx context.Context, token string) ([]model.Volunteer, error) {
	raw, err := c.do(ctx, http.MethodGet, "api/volunteers", nil, token, nil)
	if err != nil {
		return nil, err
	}
	return unwrapList[model.Volunteer](raw)
}

func (c *Client) VolunteerStatistics(
	ctx context.Context,
	token string,
	volunteerID model.ID,
) (model.VolunteerStatistics, error) {
	if volunteerID.IsZero() {
		return model.VolunteerStatistics{}, errors.New("volunteer id is required")
	}
	path := "api/volunteers/" + url.PathEscape(volunteerID.String()) + "/statistics"
	raw, err := c.do(ctx, http.MethodGet, path, nil, token, nil)
	if err != nil {
		return model.VolunteerStatistics{}, err
	}
	return unwrapObject[model.VolunteerStatistics](raw)
}

// do performs one request and returns the body of a 2xx response. Non-2xx
// responses become *APIError with the message normalized from the body.
func (c *Client) do(
	ctx context.Context,
	method, path string,
	query url.Values,
	token string,
	payload any,
) (json.RawMessage, error) {
	req, err := c.newRequest(ctx, method, path, query, token, payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return json.RawMessage("null"), nil
	}
	return body, nil
}

func (c *Client) newRequest(
	ctx context.Context,
	method, path string,
	query url.Values,
	token string,
	payload any,
) (*http.Request, error) {
	u := c.base.ResolveReference(&url.URL{Path: path})
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode %s payload: %w", path, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", path, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}
	var doc any
	if err := json.Unmarshal(body, &doc); err == nil {
		apiErr.Message = errorMessage(doc)
	}
	return apiErr
}

// Reachable reports whether the backend answers HTTP at its base URL. Any
// status below 500 counts; the base path usually has no route of its own.
func (c *Client) Reachable(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "", nil, "", nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("reach backend: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	if resp.StatusCode >= http.StatusInternalServerError {
		return fmt.Errorf("reach backend: %w", newAPIError(resp.StatusCode, nil))
	}
	return nil
}
