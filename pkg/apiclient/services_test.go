package apiclient

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestsCreate(t *testing.T) {
	m := newMockAPI(t)
	m.mux.HandleFunc("/api/requests", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		var in ServiceRequestInput
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "Flooded street", in.Title)
		writeJSON(w, http.StatusCreated, envelopeOf(ServiceRequest{ID: 9, Title: in.Title, Priority: "HIGH", Status: "PENDING"}))
	})
	c, _ := signedIn(t, m)

	got, err := NewServices(c).Requests.Create(context.Background(), ServiceRequestInput{
		Title:       "Flooded street",
		Description: "Knee-deep water near the chapel",
		Category:    "INFRASTRUCTURE",
	})
	require.NoError(t, err)
	assert.Equal(t, uint(9), got.ID)
	assert.Equal(t, "HIGH", got.Priority)
}

func TestAdminSetUserRoleForbidden(t *testing.T) {
	m := newMockAPI(t)
	m.mux.HandleFunc("/api/admin/users/5/role", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPatch, r.Method)
		writeJSON(w, http.StatusForbidden, map[string]any{"success": false, "message": "Insufficient permissions"})
	})
	c, _ := signedIn(t, m)

	_, err := NewServices(c).Admin.SetUserRole(context.Background(), 5, RoleAdmin)
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestAIChat(t *testing.T) {
	m := newMockAPI(t)
	m.mux.HandleFunc("/api/ai/chat", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "tl", body["language"])
		writeJSON(w, http.StatusOK, envelopeOf(ChatReply{
			Response:         "Maaari kang humiling ng barangay clearance sa opisina.",
			Confidence:       0.8,
			Category:         "services",
			SuggestedActions: []string{"Request barangay clearance"},
			Language:         "tl",
		}))
	})
	c, _ := signedIn(t, m)

	reply, err := NewServices(c).AI.Chat(context.Background(), "Paano kumuha ng clearance?", "tl")
	require.NoError(t, err)
	assert.Equal(t, "services", reply.Category)
	assert.Len(t, reply.SuggestedActions, 1)
}

func TestNotificationsUnreadCount(t *testing.T) {
	m := newMockAPI(t)
	m.mux.HandleFunc("/api/notifications/unread-count", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, envelopeOf(map[string]int{"count": 4}))
	})
	c, _ := signedIn(t, m)

	n, err := NewServices(c).Notifications.UnreadCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestEmergencyContacts(t *testing.T) {
	m := newMockAPI(t)
	m.mux.HandleFunc("/api/emergency/contacts", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, envelopeOf([]EmergencyContact{
			{ID: 1, Name: "Barangay Hall", Phone: "(02) 8123-4567", Agency: "Barangay"},
			{ID: 2, Name: "Fire Station", Phone: "160", Agency: "BFP"},
		}))
	})
	c, _ := signedIn(t, m)

	contacts, err := NewServices(c).Emergency.Contacts(context.Background())
	require.NoError(t, err)
	assert.Len(t, contacts, 2)
}

func TestNotificationsSubscribe(t *testing.T) {
	m := newMockAPI(t)
	upgrader := websocket.Upgrader{}
	m.mux.HandleFunc("/api/ws", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("token") != "old" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if !assert.NoError(t, err) {
			return
		}
		defer conn.Close()
		_ = conn.WriteJSON(map[string]any{
			"type": PushEmergencyAlert,
			"data": EmergencyAlert{ID: 2, Type: "FLOOD", Severity: "HIGH", Message: "Evacuate Purok 3", Active: true},
		})
		_, _, _ = conn.ReadMessage()
	})
	c, _ := signedIn(t, m)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs, err := NewServices(c).Notifications.Subscribe(ctx)
	require.NoError(t, err)

	select {
	case msg := <-msgs:
		assert.Equal(t, PushEmergencyAlert, msg.Type)
		alert, err := msg.Alert()
		require.NoError(t, err)
		assert.Equal(t, "Evacuate Purok 3", alert.Message)
	case <-time.After(5 * time.Second):
		t.Fatal("no push message received")
	}

	cancel()
	select {
	case _, ok := <-msgs:
		for ok {
			_, ok = <-msgs
		}
	case <-time.After(5 * time.Second):
		t.Fatal("stream was not closed after cancel")
	}
}

func TestNotificationsSubscribeRejected(t *testing.T) {
	m := newMockAPI(t)
	m.mux.HandleFunc("/api/ws", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	c, _ := signedIn(t, m)

	_, err := NewServices(c).Notifications.Subscribe(context.Background())
	assert.ErrorIs(t, err, ErrAuthExpired)
}

func TestNotificationsSubscribeWithoutSession(t *testing.T) {
	c := newTestClient("http://localhost/api")
	_, err := NewServices(c).Notifications.Subscribe(context.Background())
	assert.ErrorIs(t, err, ErrNoSession)
	assert.True(t, strings.HasPrefix(c.wsURL, "ws://"))
}
