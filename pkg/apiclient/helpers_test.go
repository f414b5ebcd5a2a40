package apiclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

// mockAPI is a fake BarangayLink server. Login issues loginToken ("old"
// unless changed); refresh issues whatever refreshToken is set to.
type mockAPI struct {
	*httptest.Server
	mux *http.ServeMux

	refreshCalls atomic.Int32
	logoutCalls  atomic.Int32
	loginToken   atomic.Value
	refreshToken atomic.Value
	refreshFails atomic.Bool
	role         Role
	// onRefresh, when set before the first call, runs at the start of every
	// refresh request.
	onRefresh func(r *http.Request)
}

func newMockAPI(t *testing.T) *mockAPI {
	t.Helper()
	m := &mockAPI{mux: http.NewServeMux(), role: RoleMember}
	m.loginToken.Store("old")
	m.refreshToken.Store("new")

	m.mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Invalid email or password"})
			return
		}
		writeJSON(w, http.StatusOK, envelopeOf(AuthResult{
			User:         &User{ID: 7, Email: body["email"], FirstName: "Juan", LastName: "Dela Cruz", Role: m.role, IsActive: true},
			Token:        m.loginToken.Load().(string),
			RefreshToken: "refresh-1",
		}))
	})
	m.mux.HandleFunc("/api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		m.refreshCalls.Add(1)
		if m.onRefresh != nil {
			m.onRefresh(r)
		}
		if m.refreshFails.Load() {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Refresh token expired"})
			return
		}
		writeJSON(w, http.StatusOK, envelopeOf(AuthResult{
			Token:        m.refreshToken.Load().(string),
			RefreshToken: "refresh-2",
		}))
	})
	m.mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		m.logoutCalls.Add(1)
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "Logged out successfully"})
	})

	m.Server = httptest.NewServer(m.mux)
	t.Cleanup(m.Close)
	return m
}

func (m *mockAPI) baseURL() string {
	return m.URL + "/api"
}

func envelopeOf(data any) map[string]any {
	return map[string]any{"success": true, "data": data}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func bearer(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestClient(baseURL string, opts ...Option) *Client {
	return New(baseURL, append([]Option{WithLogger(quietLogger())}, opts...)...)
}

// signedIn returns a client whose session holds the token "old".
func signedIn(t *testing.T, m *mockAPI) (*Client, *Session) {
	t.Helper()
	c := newTestClient(m.baseURL())
	s := NewSession(c, NewMemoryStorage())
	_, err := s.Login(context.Background(), "juan@example.org", "secret")
	require.NoError(t, err)
	require.Equal(t, "old", s.AccessToken())
	return c, s
}
