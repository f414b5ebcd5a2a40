package apiclient

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendAttachesBearerAndDecodesEnvelope(t *testing.T) {
	m := newMockAPI(t)
	m.mux.HandleFunc("/api/things", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "old", bearer(r))
		assert.Equal(t, "application/json", r.Header.Get("Accept"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "ok", "data": map[string]int{"n": 3}})
	})
	c, _ := signedIn(t, m)

	resp, err := c.Send(context.Background(), http.MethodGet, "/things", nil)
	require.NoError(t, err)
	assert.True(t, resp.Success)
	assert.Equal(t, "ok", resp.Message)

	var out struct{ N int }
	require.NoError(t, resp.Decode(&out))
	assert.Equal(t, 3, out.N)
}

func TestSendWithoutSessionHasNoAuthorizationHeader(t *testing.T) {
	m := newMockAPI(t)
	m.mux.HandleFunc("/api/public", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		writeJSON(w, http.StatusOK, envelopeOf(nil))
	})
	c := newTestClient(m.baseURL())

	require.NoError(t, c.Get(context.Background(), "/public", nil))
}

func TestUnauthorizedRefreshesOnceAndRetries(t *testing.T) {
	m := newMockAPI(t)
	var calls atomic.Int32
	m.mux.HandleFunc("/api/things", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if bearer(r) != "new" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Token expired"})
			return
		}
		writeJSON(w, http.StatusOK, envelopeOf("fresh"))
	})
	c, s := signedIn(t, m)

	var out string
	require.NoError(t, c.Get(context.Background(), "/things", &out))
	assert.Equal(t, "fresh", out)
	assert.Equal(t, int32(1), m.refreshCalls.Load())
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, "new", s.AccessToken())
}

func TestSecondUnauthorizedIsAuthInvalid(t *testing.T) {
	m := newMockAPI(t)
	var calls atomic.Int32
	m.mux.HandleFunc("/api/things", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Token expired"})
	})
	c, s := signedIn(t, m)
	events, cancel := s.Subscribe()
	defer cancel()

	err := c.Get(context.Background(), "/things", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthInvalid)
	assert.True(t, IsAuthFailure(err))
	assert.Equal(t, int32(1), m.refreshCalls.Load())
	assert.Equal(t, int32(2), calls.Load())
	assert.False(t, s.IsAuthenticated())

	var kinds []EventKind
	for len(events) > 0 {
		kinds = append(kinds, (<-events).Kind)
	}
	assert.Equal(t, []EventKind{EventRefreshed, EventUnauthenticated}, kinds)
}

func TestRefreshFailureInvalidatesSession(t *testing.T) {
	m := newMockAPI(t)
	m.refreshFails.Store(true)
	var calls atomic.Int32
	m.mux.HandleFunc("/api/things", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Token expired"})
	})
	c, s := signedIn(t, m)

	err := c.Get(context.Background(), "/things", nil)
	assert.ErrorIs(t, err, ErrAuthInvalid)
	assert.Equal(t, KindAuthInvalid, KindOf(err))
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, int32(1), m.refreshCalls.Load())
	assert.Equal(t, StateUnauthenticated, s.Current().State)
}

func TestUnauthorizedWithoutSessionIsAuthInvalid(t *testing.T) {
	m := newMockAPI(t)
	m.mux.HandleFunc("/api/things", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Authorization required"})
	})
	c := newTestClient(m.baseURL())

	err := c.Get(context.Background(), "/things", nil)
	assert.ErrorIs(t, err, ErrAuthInvalid)
	assert.Equal(t, int32(0), m.refreshCalls.Load())
}

func TestConcurrentUnauthorizedCallsShareOneRefresh(t *testing.T) {
	m := newMockAPI(t)
	m.mux.HandleFunc("/api/things", func(w http.ResponseWriter, r *http.Request) {
		if bearer(r) != "new" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false})
			return
		}
		writeJSON(w, http.StatusOK, envelopeOf(nil))
	})
	c, _ := signedIn(t, m)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- c.Get(context.Background(), "/things", nil)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, int32(1), m.refreshCalls.Load())
}

func TestErrorKindsByStatus(t *testing.T) {
	tests := []struct {
		status   int
		body     map[string]any
		sentinel error
		message  string
	}{
		{http.StatusBadRequest, map[string]any{"message": "Title is required"}, ErrBadRequest, "Title is required"},
		{http.StatusForbidden, map[string]any{"message": "Insufficient permissions"}, ErrForbidden, "Insufficient permissions"},
		{http.StatusNotFound, map[string]any{"error": "Request not found"}, ErrNotFound, "Request not found"},
		{http.StatusConflict, map[string]any{"message": "Email already registered"}, ErrConflict, "Email already registered"},
		{http.StatusTooManyRequests, map[string]any{}, ErrRateLimited, "Too Many Requests"},
		{http.StatusServiceUnavailable, map[string]any{"detail": "AI service unavailable"}, ErrServerError, "AI service unavailable"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			m := newMockAPI(t)
			var calls atomic.Int32
			m.mux.HandleFunc("/api/things", func(w http.ResponseWriter, r *http.Request) {
				calls.Add(1)
				writeJSON(w, tt.status, tt.body)
			})
			c, _ := signedIn(t, m)

			err := c.Get(context.Background(), "/things", nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)

			var apiErr *Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Status)
			assert.Equal(t, tt.message, apiErr.Message)
			assert.Equal(t, int32(1), calls.Load(), "non-auth errors are never retried")
			assert.Equal(t, int32(0), m.refreshCalls.Load())
		})
	}
}

func TestNetworkUnreachable(t *testing.T) {
	m := newMockAPI(t)
	base := m.baseURL()
	m.Close()

	err := newTestClient(base).Get(context.Background(), "/things", nil)
	assert.ErrorIs(t, err, ErrNetworkUnreachable)
	assert.Equal(t, 0, err.(*Error).Status)
}

func TestTimeout(t *testing.T) {
	m := newMockAPI(t)
	m.mux.HandleFunc("/api/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	})

	err := newTestClient(m.baseURL(), WithTimeout(50*time.Millisecond)).Get(context.Background(), "/slow", nil)
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestCanceled(t *testing.T) {
	m := newMockAPI(t)
	m.mux.HandleFunc("/api/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(2 * time.Second):
		case <-r.Context().Done():
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(20*time.Millisecond, cancel)

	err := newTestClient(m.baseURL()).Get(ctx, "/slow", nil)
	assert.ErrorIs(t, err, ErrCanceled)
}

func TestLoginFailureCarriesServerMessage(t *testing.T) {
	m := newMockAPI(t)
	c := newTestClient(m.baseURL())
	s := NewSession(c, nil)

	_, err := s.Login(context.Background(), "juan@example.org", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAuthInvalid)
	assert.Equal(t, KindAuthInvalid, KindOf(err))
	assert.Contains(t, err.Error(), "Invalid email or password")
	assert.Equal(t, int32(0), m.refreshCalls.Load())
	assert.False(t, s.IsAuthenticated())
}

func TestDeriveWebSocketURL(t *testing.T) {
	assert.Equal(t, "wss://barangay.example.org/api/ws", deriveWebSocketURL("https://barangay.example.org/api"))
	assert.Equal(t, "ws://localhost:8080/api/ws", deriveWebSocketURL("http://localhost:8080/api/"))
}

func TestCallerGivingUpDuringRefreshKeepsSession(t *testing.T) {
	tests := []struct {
		name     string
		ctx      func() (context.Context, context.CancelFunc)
		sentinel error
		kind     Kind
	}{
		{
			name: "deadline",
			ctx: func() (context.Context, context.CancelFunc) {
				return context.WithTimeout(context.Background(), 50*time.Millisecond)
			},
			sentinel: ErrTimeout,
			kind:     KindTimeout,
		},
		{
			name: "cancel",
			ctx: func() (context.Context, context.CancelFunc) {
				ctx, cancel := context.WithCancel(context.Background())
				time.AfterFunc(50*time.Millisecond, cancel)
				return ctx, cancel
			},
			sentinel: ErrCanceled,
			kind:     KindCanceled,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newMockAPI(t)
			m.onRefresh = func(r *http.Request) {
				select {
				case <-time.After(300 * time.Millisecond):
				case <-r.Context().Done():
				}
			}
			m.mux.HandleFunc("/api/things", func(w http.ResponseWriter, r *http.Request) {
				if bearer(r) != "new" {
					writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Token expired"})
					return
				}
				writeJSON(w, http.StatusOK, envelopeOf(nil))
			})
			c, s := signedIn(t, m)

			ctx, cancel := tt.ctx()
			defer cancel()

			err := c.Get(ctx, "/things", nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Equal(t, tt.kind, KindOf(err))
			assert.False(t, IsAuthFailure(err))
			assert.True(t, s.IsAuthenticated())

			// The shared exchange still completes for the session.
			assert.Eventually(t, func() bool { return s.AccessToken() == "new" }, 2*time.Second, 10*time.Millisecond)
			assert.Equal(t, int32(1), m.refreshCalls.Load())
		})
	}
}

func TestLoginDuringRefreshKeepsNewSession(t *testing.T) {
	m := newMockAPI(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	var enterOnce, releaseOnce sync.Once
	defer releaseOnce.Do(func() { close(release) })
	m.onRefresh = func(r *http.Request) {
		enterOnce.Do(func() { close(entered) })
		<-release
	}
	m.mux.HandleFunc("/api/things", func(w http.ResponseWriter, r *http.Request) {
		if bearer(r) != "second" {
			writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Token expired"})
			return
		}
		writeJSON(w, http.StatusOK, envelopeOf("second session"))
	})
	c, s := signedIn(t, m)

	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		var out string
		err := c.Get(context.Background(), "/things", &out)
		done <- result{out, err}
	}()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh never started")
	}

	m.loginToken.Store("second")
	_, err := s.Login(context.Background(), "juan@example.org", "secret")
	require.NoError(t, err)
	require.Equal(t, "second", s.AccessToken())

	releaseOnce.Do(func() { close(release) })

	var res result
	select {
	case res = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("call did not finish")
	}
	require.NoError(t, res.err)
	assert.Equal(t, "second session", res.out)
	assert.Equal(t, "second", s.AccessToken())
	assert.True(t, s.IsAuthenticated())
}

func TestLogoutDuringRefreshFailsCallWithoutNewSession(t *testing.T) {
	m := newMockAPI(t)
	entered := make(chan struct{})
	release := make(chan struct{})
	var enterOnce, releaseOnce sync.Once
	defer releaseOnce.Do(func() { close(release) })
	m.onRefresh = func(r *http.Request) {
		enterOnce.Do(func() { close(entered) })
		<-release
	}
	m.mux.HandleFunc("/api/things", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusUnauthorized, map[string]any{"success": false, "message": "Token expired"})
	})
	c, s := signedIn(t, m)

	done := make(chan error, 1)
	go func() {
		done <- c.Get(context.Background(), "/things", nil)
	}()

	select {
	case <-entered:
	case <-time.After(2 * time.Second):
		t.Fatal("refresh never started")
	}
	s.Logout(context.Background())
	releaseOnce.Do(func() { close(release) })

	var err error
	select {
	case err = <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("call did not finish")
	}
	assert.ErrorIs(t, err, ErrAuthInvalid)
	assert.False(t, s.IsAuthenticated())
	assert.Empty(t, s.AccessToken(), "the discarded refresh must not revive the session")
}
