// Package state holds the client-side state containers: the authenticated
// session and the job list.  Each container owns its single source of truth
// and publishes changes to subscribers synchronously, replaying the current
// value on subscription.  Containers are constructed once and passed by
// reference to consumers; there are no package-level singletons.
package state

import (
	"context"
	"sync"

	"github.com/iliyamo/job-application-tracker/internal/client/api"
)

// AuthAPI is the slice of the API client the session needs.
type AuthAPI interface {
	Register(ctx context.Context, creds api.Credentials) (api.AuthResponse, error)
	Login(ctx context.Context, creds api.Credentials) (api.AuthResponse, error)
	SetupTwoFactor(ctx context.Context, token string) (api.TwoFactorSetupResponse, error)
	VerifyTwoFactor(ctx context.Context, token string, req api.TwoFactorVerifyRequest) (api.TwoFactorVerifyResponse, error)
}

// TokenStorage persists the bearer token between runs.
type TokenStorage interface {
	Load() (string, error)
	Save(token string) error
	Clear() error
}

// AuthState is the current session: a bearer token plus the user it belongs
// to.  User is nil right after rehydration from storage until the next
// login or registration fills it in.  A nil *AuthState means
// unauthenticated.
type AuthState struct {
	Token string
	User  *api.AuthUser
}

// Session is the process-wide holder of authentication state.  Token
// presence is the sole authentication predicate used by route guards and
// the API calls.
type Session struct {
	api     AuthAPI
	storage TokenStorage

	mu     sync.Mutex
	state  *AuthState
	subs   map[int]func(*AuthState)
	nextID int
}

// NewSession builds a Session, hydrating initial state from the persisted
// token if one exists.  The rehydrated state has no user until the next
// successful login or registration.
func NewSession(a AuthAPI, st TokenStorage) *Session {
	s := &Session{api: a, storage: st, subs: map[int]func(*AuthState){}}
	if tok, err := st.Load(); err == nil && tok != "" {
		s.state = &AuthState{Token: tok}
	}
	return s
}

// Subscribe registers fn and immediately calls it with the current state
// (replay-last), then on every subsequent change until the returned
// unsubscribe function is called.  Notifications are synchronous.
func (s *Session) Subscribe(fn func(*AuthState)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	current := s.state
	s.mu.Unlock()

	fn(current)
	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// State returns the current session state.  Callers must not mutate the
// returned value.
func (s *Session) State() *AuthState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// IsAuthenticated reports whether a non-empty token is held.  Synchronous;
// no network call.
func (s *Session) IsAuthenticated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state != nil && s.state.Token != ""
}

// Token returns the current bearer token, or "" when unauthenticated.
func (s *Session) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == nil {
		return ""
	}
	return s.state.Token
}

// Login authenticates remotely.  On success the token is persisted and the
// new state published; on failure nothing changes.
func (s *Session) Login(ctx context.Context, creds api.Credentials) (api.AuthResponse, error) {
	resp, err := s.api.Login(ctx, creds)
	if err != nil {
		return api.AuthResponse{}, err
	}
	s.accept(resp)
	return resp, nil
}

// Register creates an account remotely.  Success and failure behave exactly
// like Login.
func (s *Session) Register(ctx context.Context, creds api.Credentials) (api.AuthResponse, error) {
	resp, err := s.api.Register(ctx, creds)
	if err != nil {
		return api.AuthResponse{}, err
	}
	s.accept(resp)
	return resp, nil
}

// Logout clears the persisted token and publishes the unauthenticated
// state.
func (s *Session) Logout() {
	_ = s.storage.Clear()
	s.publish(nil)
}

// SetupTwoFactor provisions a new TOTP secret for the current user.  It
// passes through to the API without touching session state.
func (s *Session) SetupTwoFactor(ctx context.Context) (api.TwoFactorSetupResponse, error) {
	return s.api.SetupTwoFactor(ctx, s.Token())
}

// VerifyTwoFactor checks a TOTP code for the current user.  Pass-through
// like SetupTwoFactor.
func (s *Session) VerifyTwoFactor(ctx context.Context, req api.TwoFactorVerifyRequest) (api.TwoFactorVerifyResponse, error) {
	return s.api.VerifyTwoFactor(ctx, s.Token(), req)
}

func (s *Session) accept(resp api.AuthResponse) {
	_ = s.storage.Save(resp.Token)
	user := resp.User
	s.publish(&AuthState{Token: resp.Token, User: &user})
}

func (s *Session) publish(st *AuthState) {
	s.mu.Lock()
	s.state = st
	fns := make([]func(*AuthState), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(st)
	}
}
