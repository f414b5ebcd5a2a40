package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"barangaylink/pkg/apiclient"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeEnvelope(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": status < 400, "data": data, "message": http.StatusText(status)})
}

func fakeServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var logouts atomic.Int32
	user := apiclient.User{ID: 3, Email: "ana@example.com", FirstName: "Ana", LastName: "Reyes", Role: apiclient.Role("MEMBER"), IsActive: true}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		if body["password"] != "secret123" {
			writeEnvelope(w, http.StatusUnauthorized, nil)
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{"user": user, "token": "access-1", "refreshToken": "refresh-1"})
	})
	mux.HandleFunc("/api/auth/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access-1" {
			writeEnvelope(w, http.StatusUnauthorized, nil)
			return
		}
		writeEnvelope(w, http.StatusOK, map[string]any{"user": user})
	})
	mux.HandleFunc("/api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		logouts.Add(1)
		writeEnvelope(w, http.StatusOK, nil)
	})
	mux.HandleFunc("/api/requests/my", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"data": []map[string]any{
				{"id": 11, "title": "Flooded canal", "category": "INFRASTRUCTURE", "priority": "MEDIUM", "status": "PENDING"},
			},
			"pagination": map[string]any{"page": 1, "limit": 20, "total": 1, "pages": 1},
		})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, &logouts
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetIn(bytes.NewReader(nil))
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func configure(t *testing.T, apiURL string) string {
	t.Helper()
	sessionFile := filepath.Join(t.TempDir(), "session.json")
	viper.Set("api_url", apiURL)
	viper.Set("session_file", sessionFile)
	t.Cleanup(viper.Reset)
	return sessionFile
}

func TestLoginWhoamiLogout(t *testing.T) {
	srv, logouts := fakeServer(t)
	sessionFile := configure(t, srv.URL+"/api")

	out, err := run(t, "login", "--email", "ana@example.com", "--password", "secret123")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed in as Ana Reyes (MEMBER)")
	assert.FileExists(t, sessionFile)

	out, err = run(t, "whoami")
	require.NoError(t, err)
	assert.Contains(t, out, "Ana Reyes <ana@example.com>")

	out, err = run(t, "requests", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Flooded canal")

	out, err = run(t, "logout")
	require.NoError(t, err)
	assert.Contains(t, out, "Signed out")
	assert.EqualValues(t, 1, logouts.Load())

	_, err = run(t, "whoami")
	assert.ErrorContains(t, err, "not logged in")
}

func TestLoginRejected(t *testing.T) {
	srv, _ := fakeServer(t)
	sessionFile := configure(t, srv.URL+"/api")

	_, err := run(t, "login", "--email", "ana@example.com", "--password", "wrong-one")
	require.Error(t, err)
	assert.ErrorIs(t, err, apiclient.ErrAuthInvalid)

	_, statErr := os.Stat(sessionFile)
	assert.True(t, os.IsNotExist(statErr))
}

func TestDescribePush(t *testing.T) {
	msg := apiclient.PushMessage{
		Type: apiclient.PushEmergencyAlert,
		Data: json.RawMessage(`{"id":1,"type":"FIRE","severity":"CRITICAL","message":"Evacuate","location":"Purok 2"}`),
	}
	assert.Contains(t, describePush(msg), "ALERT [CRITICAL] FIRE at Purok 2: Evacuate")

	other := apiclient.PushMessage{Type: "something_new", Data: json.RawMessage(`{}`)}
	assert.Contains(t, describePush(other), "something_new {}")
}
