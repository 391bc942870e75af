package backendapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/fstgc/vms-portal/internal/domain/auth"
	"github.com/fstgc/vms-portal/internal/domain/model"
	"github.com/fstgc/vms-portal/internal/ports"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{BaseURL: srv.URL, Timeout: 2 * time.Second})
	require.NoError(t, err)
	return c
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{})
	require.Error(t, err)

	_, err = NewClient(Config{BaseURL: "ftp://backend"})
	require.Error(t, err)

	c, err := NewClient(Config{BaseURL: "http://backend:8081/vms"})
	require.NoError(t, err)
	assert.Equal(t, "http://backend:8081/vms/", c.base.String())
}

func TestLogin_Success(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var creds ports.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, ports.Credentials{Username: "admin", Password: "pw", RememberMe: true}, creds)

		writeJSON(w, http.StatusOK, `{
			"success": true,
			"message": "Login successful",
			"token": "tok-1",
			"user": {"id": 7, "username": "admin", "firstName": "Ada", "lastName": "Admin",
			         "email": "a@example.com", "role": "super_admin", "userType": "admin"}
		}`)
	})

	res, err := c.Login(context.Background(), ports.Credentials{Username: "admin", Password: "pw", RememberMe: true})
	require.NoError(t, err)
	assert.Equal(t, "tok-1", res.Token)
	assert.Equal(t, model.ID("7"), res.User.ID)
	assert.Equal(t, domainauth.RoleSuperAdmin, res.User.Role)
	assert.Equal(t, domainauth.PortalAdmin, res.User.Portal())
}

func TestLogin_Rejected(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"message field", http.StatusUnauthorized, `{"success":false,"message":"Invalid credentials"}`, "Invalid credentials"},
		{"error field", http.StatusForbidden, `{"error":"Account is inactive"}`, "Account is inactive"},
		{"errors array", http.StatusBadRequest, `{"errors":[{"message":"Username required"}]}`, "Username required"},
		{"html body", http.StatusUnauthorized, `<html>nope</html>`, ""},
		{"empty body", http.StatusUnauthorized, ``, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})
			_, err := c.Login(context.Background(), ports.Credentials{Username: "u", Password: "p"})
			require.Error(t, err)
			apiErr, ok := AsAPIError(err)
			require.True(t, ok)
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
		})
	}
}

func TestLogin_MalformedSuccess(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, `{"success":true}`)
	})
	_, err := c.Login(context.Background(), ports.Credentials{Username: "u", Password: "p"})
	require.Error(t, err)
	_, isAPI := AsAPIError(err)
	assert.False(t, isAPI)
}

func TestLogin_TransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	c, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Login(context.Background(), ports.Credentials{Username: "u", Password: "p"})
	require.Error(t, err)
	_, isAPI := AsAPIError(err)
	assert.False(t, isAPI)
}

func TestListEvents_QueryAndEnvelopes(t *testing.T) {
	bodies := map[string]string{
		"bare":    `[{"eventId":1,"title":"Beach cleanup","eventDate":"2024-03-05","capacity":20,"registeredCount":4}]`,
		"data":    `{"data":[{"eventId":"1","title":"Beach cleanup","eventDate":"2024-03-05"}]}`,
		"content": `{"content":[{"eventId":1,"title":"Beach cleanup"}],"totalElements":1}`,
		"items":   `{"items":[{"eventId":1,"title":"Beach cleanup"}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/api/events", r.URL.Path)
				assert.Equal(t, "upcoming", r.URL.Query().Get("status"))
				assert.Equal(t, "5", r.URL.Query().Get("limit"))
				assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
				writeJSON(w, http.StatusOK, body)
			})
			events, err := c.ListEvents(context.Background(), "tok", model.UpcomingEvents(5))
			require.NoError(t, err)
			require.Len(t, events, 1)
			assert.Equal(t, model.ID("1"), events[0].EventID)
			assert.Equal(t, "Beach cleanup", events[0].Title)
		})
	}
}

func TestListEvents_EmptyShapes(t *testing.T) {
	for _, body := range []string{`[]`, `null`, ``, `{"data":[]}`, `{"message":"ok"}`} {
		c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, body)
		})
		events, err := c.ListEvents(context.Background(), "tok", model.EventFilter{})
		require.NoError(t, err, body)
		assert.Empty(t, events, body)
	}
}

func TestListEvents_ServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusInternalServerError, `{"message":"boom"}`)
	})
	_, err := c.ListEvents(context.Background(), "tok", model.EventFilter{})
	require.Error(t, err)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode())
	assert.Contains(t, err.Error(), "boom")
}

func TestListAnnouncementsAndVolunteers(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/announcements":
			assert.Equal(t, "5", r.URL.Query().Get("limit"))
			writeJSON(w, http.StatusOK, `[{"announcementId":3,"title":"Hi","content":"Body","priority":"HIGH","createdDate":"2024-01-02T10:00:00"}]`)
		case "/api/volunteers":
			assert.Empty(t, r.URL.RawQuery)
			writeJSON(w, http.StatusOK, `{"data":[{"volunteerId":9,"firstName":"Vera","lastName":"V","email":"v@example.com","totalHours":12.5,"isActive":true}]}`)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	anns, err := c.ListAnnouncements(ctx, "tok", model.AnnouncementFilter{Limit: 5})
	require.NoError(t, err)
	require.Len(t, anns, 1)
	assert.Equal(t, "HIGH", anns[0].Priority)
	assert.Equal(t, 2024, anns[0].CreatedDate.Year())

	vols, err := c.ListVolunteers(ctx, "tok")
	require.NoError(t, err)
	require.Len(t, vols, 1)
	assert.Equal(t, "Vera V", vols[0].FullName())
	assert.True(t, vols[0].Active())
}

func TestStatistics(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/admin/statistics":
			writeJSON(w, http.StatusOK, `{"totalVolunteers":12,"totalEvents":3.0,"totalHours":40.5,"activeVolunteers":10}`)
		case "/api/volunteers/42/statistics":
			writeJSON(w, http.StatusOK, `{"data":{"eventsAttended":4,"awardsEarned":1,"rank":2}}`)
		default:
			http.NotFound(w, r)
		}
	})
	ctx := context.Background()

	admin, err := c.AdminStatistics(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, model.AdminStatistics{TotalVolunteers: 12, TotalEvents: 3, TotalHours: 40.5, ActiveVolunteers: 10}, admin)

	vol, err := c.VolunteerStatistics(ctx, "tok", "42")
	require.NoError(t, err)
	assert.Equal(t, int64(4), vol.EventsAttended)
	require.True(t, vol.HasRank())
	assert.Equal(t, int64(2), *vol.Rank)

	_, err = c.VolunteerStatistics(ctx, "tok", "")
	require.Error(t, err)
}

func TestLogout_SendsBearer(t *testing.T) {
	called := false
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/logout", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.WriteHeader(http.StatusNoContent)
	})
	require.NoError(t, c.Logout(context.Background(), "tok"))
	assert.True(t, called)
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		writeJSON(w, http.StatusOK, `[]`)
	}))
	t.Cleanup(srv.Close)
	c, err := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond})
	require.NoError(t, err)

	_, err = c.ListEvents(context.Background(), "tok", model.EventFilter{})
	require.Error(t, err)
}

func TestReachable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		http.NotFound(w, r)
	})
	require.NoError(t, c.Reachable(context.Background()), "a 404 still proves the backend is up")

	down := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	err := down.Reachable(context.Background())
	require.Error(t, err)
	apiErr, ok := AsAPIError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
}
