package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Push message types sent on the notification stream.
const (
	PushNotification   = "notification"
	PushEmergencyAlert = "emergency_alert"
	PushAlertResolved  = "alert_resolved"
	PushAnnouncement   = "announcement"
)

const (
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
	writeWait  = 10 * time.Second
)

// PushMessage is one message from the server's push channel.
type PushMessage struct {
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
	Timestamp time.Time       `json:"timestamp"`
}

// Notification decodes Data for a PushNotification message.
func (m PushMessage) Notification() (*Notification, error) {
	var n Notification
	if err := json.Unmarshal(m.Data, &n); err != nil {
		return nil, err
	}
	return &n, nil
}

// Alert decodes Data for PushEmergencyAlert and PushAlertResolved messages.
func (m PushMessage) Alert() (*EmergencyAlert, error) {
	var a EmergencyAlert
	if err := json.Unmarshal(m.Data, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// NotificationService wraps /notifications and the push channel.
type NotificationService struct {
	c *Client
}

// List returns the caller's notifications, newest first. Filter: unread.
func (s *NotificationService) List(ctx context.Context, q PageQuery) (*Page[Notification], error) {
	return GetPage[Notification](ctx, s.c, "/notifications", q)
}

func (s *NotificationService) UnreadCount(ctx context.Context) (int64, error) {
	var out struct {
		Count int64 `json:"count"`
	}
	if err := s.c.Get(ctx, "/notifications/unread-count", &out); err != nil {
		return 0, err
	}
	return out.Count, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, id uint) error {
	return s.c.Patch(ctx, fmt.Sprintf("/notifications/%d/read", id), nil, nil)
}

func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	return s.c.Patch(ctx, "/notifications/read-all", nil, nil)
}

// Subscribe opens the push channel with the current access token. The
// returned channel is closed when ctx is done or the connection drops;
// reconnecting is left to the caller.
func (s *NotificationService) Subscribe(ctx context.Context) (<-chan PushMessage, error) {
	if s.c.wsURL == "" {
		return nil, fmt.Errorf("no websocket URL configured")
	}
	creds := s.c.credentials()
	if creds == nil || creds.AccessToken() == "" {
		return nil, ErrNoSession
	}

	u, err := url.Parse(s.c.wsURL)
	if err != nil {
		return nil, fmt.Errorf("invalid websocket URL: %w", err)
	}
	q := u.Query()
	q.Set("token", creds.AccessToken())
	u.RawQuery = q.Encode()

	dialer := websocket.Dialer{HandshakeTimeout: s.c.timeout}
	conn, resp, err := dialer.DialContext(ctx, u.String(), http.Header{"User-Agent": {s.c.userAgent}})
	if err != nil {
		if resp != nil {
			return nil, &Error{
				Kind:    kindForStatus(resp.StatusCode),
				Status:  resp.StatusCode,
				Message: http.StatusText(resp.StatusCode),
				Method:  http.MethodGet,
				Path:    "/ws",
				Err:     err,
			}
		}
		return nil, &Error{Kind: kindForTransport(ctx, err), Method: http.MethodGet, Path: "/ws", Err: err}
	}

	out := make(chan PushMessage, 64)
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(writeWait))
				conn.Close()
				return
			case <-done:
				return
			case <-ticker.C:
				if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
					conn.Close()
					return
				}
			}
		}
	}()

	go func() {
		defer close(out)
		defer close(done)
		defer conn.Close()

		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})

		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && ctx.Err() == nil {
					s.c.logger.WithError(err).Warn("push channel closed")
				}
				return
			}
			var msg PushMessage
			if err := json.Unmarshal(data, &msg); err != nil {
				s.c.logger.WithFields(logrus.Fields{"error": err}).Debug("invalid push message")
				continue
			}
			select {
			case out <- msg:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}
