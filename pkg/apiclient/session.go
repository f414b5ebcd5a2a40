package apiclient

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// State is the session's authentication state.
type State int

const (
	StateUnauthenticated State = iota
	StateAuthenticated
)

func (s State) String() string {
	if s == StateAuthenticated {
		return "authenticated"
	}
	return "unauthenticated"
}

// EventKind names a session transition.
type EventKind int

const (
	EventAuthenticated EventKind = iota + 1
	EventRefreshed
	EventUnauthenticated
)

func (k EventKind) String() string {
	switch k {
	case EventAuthenticated:
		return "authenticated"
	case EventRefreshed:
		return "refreshed"
	case EventUnauthenticated:
		return "unauthenticated"
	}
	return "unknown"
}

// SessionEvent is delivered to subscribers on every session transition.
type SessionEvent struct {
	Kind EventKind
	User *User
	// Verified is false while a session restored from storage has not yet
	// been confirmed by the server.
	Verified bool
	// Reason is set on EventUnauthenticated when the session ended because
	// of a failure rather than a logout.
	Reason error
}

// Snapshot is a copy of the session state at one instant.
type Snapshot struct {
	State    State
	User     *User
	Verified bool
}

// Session owns the signed-in user's tokens. It is the only writer of
// tokens: the Client reads them through the Credentials interface.
type Session struct {
	auth   *AuthService
	store  Storage
	logger logrus.FieldLogger

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
	user         *User
	verified     bool
	// generation changes whenever a session starts or ends, so background
	// verification never clears a session it did not restore.
	generation uint64

	refreshGroup singleflight.Group

	obsMu     sync.Mutex
	observers map[int]chan SessionEvent
	nextObs   int
}

// NewSession creates an unauthenticated Session and attaches it to c as its
// credentials. A nil store keeps the session in memory only.
func NewSession(c *Client, store Storage) *Session {
	if store == nil {
		store = NewMemoryStorage()
	}
	s := &Session{
		auth:      &AuthService{c: c},
		store:     store,
		logger:    c.logger,
		observers: make(map[int]chan SessionEvent),
	}
	c.SetCredentials(s)
	return s
}

// AccessToken returns the current bearer token, or "" without a session.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// User returns a copy of the signed-in user, or nil.
func (s *Session) User() *User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.user)
}

// IsAuthenticated reports whether a session is held.
func (s *Session) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken != ""
}

// Current returns a snapshot of the session state.
func (s *Session) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := Snapshot{User: copyUser(s.user), Verified: s.verified}
	if s.accessToken != "" {
		snap.State = StateAuthenticated
	}
	return snap
}

// HasRole reports whether the signed-in user has role. It is false without
// a session.
func (s *Session) HasRole(role Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken != "" && s.user != nil && s.user.Role == role
}

// HasAnyRole reports whether the signed-in user has one of roles.
func (s *Session) HasAnyRole(roles ...Role) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.accessToken == "" || s.user == nil {
		return false
	}
	for _, r := range roles {
		if s.user.Role == r {
			return true
		}
	}
	return false
}

// ExpiresAt reads the access token's exp claim without verifying it.
func (s *Session) ExpiresAt() (time.Time, bool) {
	token := s.AccessToken()
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Login signs in and starts a session.
func (s *Session) Login(ctx context.Context, email, password string) (*User, error) {
	result, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.establish(result)
}

// Register creates an account and starts a session for it.
func (s *Session) Register(ctx context.Context, in RegisterInput) (*User, error) {
	result, err := s.auth.Register(ctx, in)
	if err != nil {
		return nil, err
	}
	return s.establish(result)
}

func (s *Session) establish(result *AuthResult) (*User, error) {
	if result.Token == "" || result.User == nil {
		return nil, &Error{Kind: KindServerError, Message: "authentication response is missing token or user"}
	}

	s.mu.Lock()
	s.accessToken = result.Token
	s.refreshToken = result.RefreshToken
	s.user = copyUser(result.User)
	s.verified = true
	s.generation++
	user := copyUser(s.user)
	s.mu.Unlock()

	s.persist(result.Token, result.RefreshToken, user)
	s.emit(SessionEvent{Kind: EventAuthenticated, User: user, Verified: true})
	return copyUser(user), nil
}

// Logout tells the server to revoke the refresh token and then clears the
// session. Server errors are ignored; Logout never fails.
func (s *Session) Logout(ctx context.Context) {
	s.mu.RLock()
	refresh := s.refreshToken
	s.mu.RUnlock()

	if refresh != "" {
		if err := s.auth.Logout(ctx, refresh); err != nil {
			s.logger.WithError(err).Debug("logout notification failed")
		}
	}
	s.clear(nil, true)
}

// Invalidate ends the session after an unrecoverable auth failure.
func (s *Session) Invalidate(reason error) {
	s.clear(reason, false)
}

// clear drops the session from memory and storage. Observers are told when
// a session actually ended, or always when force is set.
func (s *Session) clear(reason error, force bool) {
	s.mu.Lock()
	had := s.accessToken != ""
	s.accessToken = ""
	s.refreshToken = ""
	s.user = nil
	s.verified = false
	s.generation++
	s.mu.Unlock()

	if err := s.store.Delete(KeyToken, KeyRefreshToken, KeyUser); err != nil {
		s.logger.WithError(err).Warn("failed to clear stored session")
	}
	if had || force {
		s.emit(SessionEvent{Kind: EventUnauthenticated, Reason: reason})
	}
}

// Refresh exchanges the refresh token for a new token pair. Concurrent
// callers share one exchange, which runs detached from ctx and bounded by
// the client timeout: a caller that gives up only stops waiting for it.
// ErrSessionChanged means the session was replaced meanwhile.
func (s *Session) Refresh(ctx context.Context) error {
	ch := s.refreshGroup.DoChan("refresh", func() (any, error) {
		s.mu.RLock()
		refresh, gen := s.refreshToken, s.generation
		s.mu.RUnlock()
		if refresh == "" {
			return nil, ErrNoSession
		}

		exchangeCtx := context.WithoutCancel(ctx)
		if timeout := s.auth.c.timeout; timeout > 0 {
			var cancel context.CancelFunc
			exchangeCtx, cancel = context.WithTimeout(exchangeCtx, timeout)
			defer cancel()
		}

		result, err := s.auth.Refresh(exchangeCtx, refresh)
		if err != nil {
			return nil, err
		}
		if result.Token == "" {
			return nil, &Error{Kind: KindServerError, Message: "refresh response has no token", Path: "/auth/refresh"}
		}

		s.mu.Lock()
		if s.generation != gen {
			s.mu.Unlock()
			return nil, ErrSessionChanged
		}
		s.accessToken = result.Token
		if result.RefreshToken != "" {
			s.refreshToken = result.RefreshToken
		}
		if result.User != nil {
			s.user = copyUser(result.User)
		}
		access, next, user := s.accessToken, s.refreshToken, copyUser(s.user)
		verified := s.verified
		s.mu.Unlock()

		s.persist(access, next, user)
		s.emit(SessionEvent{Kind: EventRefreshed, User: user, Verified: verified})
		return nil, nil
	})

	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Init restores a persisted session, if any, and verifies it against the
// server in the background. The restored session is usable at once; if the
// server rejects it, it is cleared without an error being reported. The
// returned channel is closed when verification has finished.
func (s *Session) Init(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})

	token, _ := s.store.Get(KeyToken)
	refresh, _ := s.store.Get(KeyRefreshToken)
	rawUser, _ := s.store.Get(KeyUser)

	var user User
	if token == "" || rawUser == "" || json.Unmarshal([]byte(rawUser), &user) != nil {
		close(done)
		return done
	}

	s.mu.Lock()
	s.accessToken = token
	s.refreshToken = refresh
	s.user = &user
	s.verified = false
	s.generation++
	gen := s.generation
	s.mu.Unlock()

	s.emit(SessionEvent{Kind: EventAuthenticated, User: copyUser(&user), Verified: false})

	go func() {
		defer close(done)
		me, err := s.auth.Me(ctx)

		s.mu.Lock()
		if s.generation != gen {
			s.mu.Unlock()
			return
		}
		if err != nil {
			s.mu.Unlock()
			s.logger.WithError(err).Debug("stored session rejected")
			s.clear(err, false)
			return
		}
		s.user = copyUser(me)
		s.verified = true
		access, next := s.accessToken, s.refreshToken
		s.mu.Unlock()

		s.persist(access, next, me)
		s.emit(SessionEvent{Kind: EventAuthenticated, User: copyUser(me), Verified: true})
	}()

	return done
}

// Subscribe returns a channel of session transitions and a function that
// unsubscribes and closes it. Events are dropped for a subscriber whose
// buffer is full.
func (s *Session) Subscribe() (<-chan SessionEvent, func()) {
	ch := make(chan SessionEvent, 16)

	s.obsMu.Lock()
	id := s.nextObs
	s.nextObs++
	s.observers[id] = ch
	s.obsMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.obsMu.Lock()
			delete(s.observers, id)
			s.obsMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Session) emit(ev SessionEvent) {
	s.obsMu.Lock()
	defer s.obsMu.Unlock()
	for _, ch := range s.observers {
		select {
		case ch <- ev:
		default:
			s.logger.WithField("event", ev.Kind.String()).Warn("session subscriber is full, event dropped")
		}
	}
}

func (s *Session) persist(access, refresh string, user *User) {
	raw, err := json.Marshal(user)
	if err != nil {
		s.logger.WithError(err).Warn("failed to encode session user")
		return
	}
	for key, value := range map[string]string{
		KeyToken:        access,
		KeyRefreshToken: refresh,
		KeyUser:         string(raw),
	} {
		if err := s.store.Set(key, value); err != nil {
			s.logger.WithError(err).WithField("key", key).Warn("failed to persist session")
			return
		}
	}
}

func copyUser(u *User) *User {
	if u == nil {
		return nil
	}
	cp := *u
	return &cp
}
