package services

import (
	"sync"
	"testing"

	"barangaylink/internal/adapters/persistence/models"
	"barangaylink/internal/adapters/persistence/repositories"
	"barangaylink/internal/config"
	"barangaylink/internal/core/domain"
	"barangaylink/internal/testutil"

	"gorm.io/gorm"
)

type pushed struct {
	UserID uint
	Type   string
	Data   any
}

// recordingPublisher captures realtime pushes. UserID 0 means broadcast.
type recordingPublisher struct {
	mu   sync.Mutex
	msgs []pushed
}

func (p *recordingPublisher) SendToUser(userID uint, msgType string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, pushed{UserID: userID, Type: msgType, Data: data})
}

func (p *recordingPublisher) Broadcast(msgType string, data any) {
	p.SendToUser(0, msgType, data)
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.msgs))
	for i, m := range p.msgs {
		out[i] = m.Type
	}
	return out
}

type env struct {
	db            *gorm.DB
	repos         *repositories.Repositories
	cfg           *config.Config
	pub           *recordingPublisher
	notifications *NotificationService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.NewDB(t)
	repos := repositories.New(db)
	pub := &recordingPublisher{}
	cfg := &config.Config{
		AppMode: "dev",
		JWT: config.JWTConfig{
			Secret:            "test-access-secret",
			RefreshSecret:     "test-refresh-secret",
			AccessTokenMins:   15,
			RefreshTokenDays:  7,
			ResetTokenMinutes: 30,
		},
		Upload: config.UploadConfig{Dir: t.TempDir(), MaxBytes: 1024},
	}
	return &env{
		db:            db,
		repos:         repos,
		cfg:           cfg,
		pub:           pub,
		notifications: NewNotificationService(repos.Notifications, repos.Users, pub),
	}
}

func (e *env) user(t *testing.T, email string, role domain.Role) (*models.User, Actor) {
	t.Helper()
	u := testutil.CreateUser(t, e.db, email, string(role))
	return u, Actor{UserID: u.ID, Role: role}
}

func (e *env) auth() *AuthService {
	return NewAuthService(e.repos.Users, e.repos.RefreshTokens, e.repos.PasswordResets, e.cfg)
}

func (e *env) requests(ai *AIService) *RequestService {
	return NewRequestService(e.repos, ai, e.notifications, e.cfg.Upload)
}

func (e *env) unread(t *testing.T, userID uint) []*models.Notification {
	t.Helper()
	var out []*models.Notification
	if err := e.db.Where("user_id = ?", userID).Order("id").Find(&out).Error; err != nil {
		t.Fatal(err)
	}
	return out
}
