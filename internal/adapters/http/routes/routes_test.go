package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"barangaylink/internal/adapters/http/middleware"
	"barangaylink/internal/adapters/persistence/models"
	"barangaylink/internal/adapters/persistence/repositories"
	"barangaylink/internal/adapters/realtime"
	"barangaylink/internal/config"
	"barangaylink/internal/core/services"
	"barangaylink/internal/pkg/jwt"
	"barangaylink/internal/testutil"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type envelope struct {
	Success    bool              `json:"success"`
	Message    string            `json:"message"`
	Data       json.RawMessage   `json:"data"`
	Pagination map[string]any    `json:"pagination"`
	Errors     map[string]string `json:"errors"`
}

type testServer struct {
	app *fiber.App
	db  *gorm.DB
	cfg *config.Config
}

func newServer(t *testing.T) *testServer {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:            "test-secret",
			RefreshSecret:     "test-refresh-secret",
			AccessTokenMins:   15,
			RefreshTokenDays:  7,
			ResetTokenMinutes: 30,
		},
		Upload: config.UploadConfig{Dir: t.TempDir(), MaxBytes: 1024},
	}

	hub := realtime.NewHub(nil)
	t.Cleanup(hub.Stop)

	app := fiber.New(fiber.Config{ErrorHandler: middleware.CustomErrorHandler})
	Setup(app, Deps{
		DB:       db,
		Config:   cfg,
		Services: services.New(repositories.New(db), cfg, nil, nil),
		Hub:      hub,
		Gatherer: prometheus.NewRegistry(),
	})
	return &testServer{app: app, db: db, cfg: cfg}
}

// tokenFor creates a user with role and returns a bearer token for it
func (s *testServer) tokenFor(t *testing.T, email, role string) (*models.User, string) {
	t.Helper()
	u := testutil.CreateUser(t, s.db, email, role)
	token, err := jwt.GenerateAccessToken(u.ID, u.Email, u.Role, s.cfg.JWT.Secret, 15)
	require.NoError(t, err)
	return u, token
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) (*http.Response, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return s.send(t, req)
}

func (s *testServer) send(t *testing.T, req *http.Request) (*http.Response, envelope) {
	t.Helper()
	resp, err := s.app.Test(req, -1)
	require.NoError(t, err)

	var env envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &env))
	}
	return resp, env
}

func decode(t *testing.T, raw json.RawMessage, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(raw, v))
}

func TestRootAndHealth(t *testing.T) {
	s := newServer(t)

	resp, _ := s.do(t, http.MethodGet, "/", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "healthy", health.Checks["database"])
	assert.Equal(t, "disabled", health.Checks["ai_chat"])
}

func TestMetricsEndpoint(t *testing.T) {
	s := newServer(t)
	resp, _ := s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestAuthFlow(t *testing.T) {
	s := newServer(t)

	resp, env := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":     "Maria@Example.com",
		"password":  "password123",
		"firstName": "Maria",
		"lastName":  "Santos",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)

	var registered services.AuthResponse
	decode(t, env.Data, &registered)
	assert.Equal(t, "maria@example.com", registered.User.Email)
	assert.Equal(t, "MEMBER", registered.User.Role)
	assert.NotEmpty(t, registered.Token)
	assert.NotEmpty(t, registered.RefreshToken)

	resp, env = s.do(t, http.MethodGet, "/api/auth/me", registered.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "no-store", resp.Header.Get(fiber.HeaderCacheControl))
	var me struct {
		User models.UserResponse `json:"user"`
	}
	decode(t, env.Data, &me)
	assert.Equal(t, registered.User.ID, me.User.ID)

	resp, env = s.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email":    "maria@example.com",
		"password": "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid email or password", env.Message)

	resp, env = s.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{
		"refreshToken": registered.RefreshToken,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	var refreshed services.AuthResponse
	decode(t, env.Data, &refreshed)
	assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)

	// the rotated token is spent
	resp, _ = s.do(t, http.MethodPost, "/api/auth/refresh", "", map[string]string{
		"refreshToken": registered.RefreshToken,
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/auth/logout", "", map[string]string{"refreshToken": "garbage"})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRegisterValidation(t *testing.T) {
	s := newServer(t)

	resp, env := s.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"email":    "not-an-email",
		"password": "short",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Errors)
	assert.NotEmpty(t, env.Message)
}

func TestProtectedRoutesNeedToken(t *testing.T) {
	s := newServer(t)

	for _, path := range []string{"/api/requests/my", "/api/notifications", "/api/events", "/api/admin/stats"} {
		resp, _ := s.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	resp, _ := s.do(t, http.MethodGet, "/api/requests/my", "not-a-jwt", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestRoleGuards(t *testing.T) {
	s := newServer(t)
	_, member := s.tokenFor(t, "member@example.com", "MEMBER")
	_, moderator := s.tokenFor(t, "mod@example.com", "MODERATOR")
	_, admin := s.tokenFor(t, "admin@example.com", "ADMIN")

	resp, _ := s.do(t, http.MethodGet, "/api/requests", member, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = s.do(t, http.MethodGet, "/api/requests", moderator, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/admin/stats", moderator, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = s.do(t, http.MethodGet, "/api/admin/stats", admin, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/announcements", member, map[string]any{"title": "x", "body": "y"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRequestLifecycle(t *testing.T) {
	s := newServer(t)
	_, member := s.tokenFor(t, "member@example.com", "MEMBER")
	_, moderator := s.tokenFor(t, "mod@example.com", "MODERATOR")

	resp, env := s.do(t, http.MethodPost, "/api/requests", member, map[string]string{
		"title":       "Need insulin",
		"description": "Ran out of insulin for my father",
		"category":    "MEDICAL",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	var created models.ServiceRequest
	decode(t, env.Data, &created)
	assert.Equal(t, "HIGH", created.Priority)
	assert.Equal(t, "PENDING", created.Status)

	resp, env = s.do(t, http.MethodGet, "/api/requests/my", member, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, env.Pagination["total"])

	path := "/api/requests/" + itoa(created.ID)

	resp, _ = s.do(t, http.MethodPatch, path+"/status", member, map[string]string{"status": "RESOLVED"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, env = s.do(t, http.MethodPatch, path+"/status", moderator, map[string]string{"status": "IN_PROGRESS", "note": "On it"})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)

	resp, env = s.do(t, http.MethodGet, "/api/notifications/unread-count", member, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var unread struct {
		Count int64 `json:"count"`
	}
	decode(t, env.Data, &unread)
	assert.EqualValues(t, 1, unread.Count)

	resp, _ = s.do(t, http.MethodPatch, "/api/notifications/read-all", member, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	_, env = s.do(t, http.MethodGet, "/api/notifications/unread-count", member, nil)
	decode(t, env.Data, &unread)
	assert.Zero(t, unread.Count)

	resp, _ = s.do(t, http.MethodGet, "/api/requests/999", member, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = s.do(t, http.MethodGet, "/api/requests/abc", member, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRequestAttachmentUpload(t *testing.T) {
	s := newServer(t)
	_, member := s.tokenFor(t, "member@example.com", "MEMBER")

	_, env := s.do(t, http.MethodPost, "/api/requests", member, map[string]string{
		"title":       "Broken streetlight",
		"description": "Corner of Rizal St.",
		"category":    "INFRASTRUCTURE",
	})
	var created models.ServiceRequest
	decode(t, env.Data, &created)

	upload := func(content []byte) (*http.Response, envelope) {
		var buf bytes.Buffer
		w := multipart.NewWriter(&buf)
		part, err := w.CreateFormFile("file", "photo.JPG")
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
		require.NoError(t, w.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/requests/"+itoa(created.ID)+"/attachments", &buf)
		req.Header.Set("Content-Type", w.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+member)
		return s.send(t, req)
	}

	resp, env := upload([]byte("jpeg bytes"))
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	var updated models.ServiceRequest
	decode(t, env.Data, &updated)
	require.Len(t, updated.Attachments, 1)
	assert.Contains(t, updated.Attachments[0], ".jpg")

	resp, err := s.app.Test(httptest.NewRequest(http.MethodGet, updated.Attachments[0], nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = upload(bytes.Repeat([]byte("x"), 2048))
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestAIRoutesWithoutUpstream(t *testing.T) {
	s := newServer(t)
	_, member := s.tokenFor(t, "member@example.com", "MEMBER")

	resp, _ := s.do(t, http.MethodPost, "/api/ai/chat", member, map[string]string{"message": "Paano mag-request?"})
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPost, "/api/ai/chat", member, map[string]string{"message": "hi", "language": "fr"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestEmergencyContactsArePublic(t *testing.T) {
	s := newServer(t)
	require.NoError(t, s.db.Create(&models.EmergencyContact{Name: "Barangay Hall", Phone: "0917-000-0000"}).Error)

	resp, env := s.do(t, http.MethodGet, "/api/emergency/contacts", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "public, max-age=300", resp.Header.Get(fiber.HeaderCacheControl))

	var contacts []models.EmergencyContact
	decode(t, env.Data, &contacts)
	require.Len(t, contacts, 1)
	assert.Equal(t, "Barangay Hall", contacts[0].Name)

	// alerts stay behind auth
	resp, _ = s.do(t, http.MethodGet, "/api/emergency/alerts", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestEmergencyAlertResolveNeedsStaff(t *testing.T) {
	s := newServer(t)
	_, member := s.tokenFor(t, "member@example.com", "MEMBER")
	_, moderator := s.tokenFor(t, "mod@example.com", "MODERATOR")

	resp, env := s.do(t, http.MethodPost, "/api/emergency/alerts", member, map[string]string{
		"type":     "flood",
		"severity": "HIGH",
		"message":  "Water rising at Purok 3",
		"location": "Purok 3",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	var alert models.EmergencyAlert
	decode(t, env.Data, &alert)
	assert.Equal(t, "FLOOD", alert.Type)

	path := "/api/emergency/alerts/" + itoa(alert.ID) + "/resolve"
	resp, _ = s.do(t, http.MethodPatch, path, member, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = s.do(t, http.MethodPatch, path, moderator, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = s.do(t, http.MethodPatch, path, moderator, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestAdminUserManagement(t *testing.T) {
	s := newServer(t)
	adminUser, admin := s.tokenFor(t, "admin@example.com", "ADMIN")
	member, _ := s.tokenFor(t, "member@example.com", "MEMBER")

	resp, env := s.do(t, http.MethodGet, "/api/admin/users?role=MEMBER", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 1, env.Pagination["total"])

	resp, env = s.do(t, http.MethodPatch, "/api/admin/users/"+itoa(member.ID)+"/role", admin, map[string]string{"role": "MODERATOR"})
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)

	resp, _ = s.do(t, http.MethodPatch, "/api/admin/users/"+itoa(member.ID)+"/role", admin, map[string]string{"role": "KING"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodPatch, "/api/admin/users/"+itoa(member.ID)+"/status", admin, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = s.do(t, http.MethodDelete, "/api/admin/users/"+itoa(adminUser.ID), admin, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWebsocketRequiresUpgrade(t *testing.T) {
	s := newServer(t)
	_, member := s.tokenFor(t, "member@example.com", "MEMBER")

	resp, _ := s.do(t, http.MethodGet, "/api/ws", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = s.do(t, http.MethodGet, "/api/ws?token="+member, "", nil)
	assert.Equal(t, http.StatusUpgradeRequired, resp.StatusCode)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
