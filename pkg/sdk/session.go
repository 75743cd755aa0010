package sdk

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Phase is the Session's view of whether the stored credential is usable.
type Phase string

const (
	// PhaseResolving means a stored credential is being verified.
	PhaseResolving Phase = "resolving"
	// PhaseAuthenticated means the credential was verified or just issued.
	PhaseAuthenticated Phase = "authenticated"
	// PhaseUnauthenticated means there is no usable credential.
	PhaseUnauthenticated Phase = "unauthenticated"
)

// DefaultLoginPath is the route unauthenticated visitors are sent to.
const DefaultLoginPath = "/login"

// State is a snapshot of the Session. Identity is non-nil exactly when
// Phase is PhaseAuthenticated.
type State struct {
	Phase    Phase
	Identity *Identity
}

// IsAuthenticated reports whether an identity is currently held.
func (s State) IsAuthenticated() bool {
	return s.Identity != nil
}

// Navigation is a redirect request handed back to the layer that owns routing.
// The zero value means "stay where you are".
type Navigation struct {
	To string
}

// IsZero reports whether n requests no navigation.
func (n Navigation) IsZero() bool {
	return n.To == ""
}

// Session owns the current identity and drives the resolving, authenticated
// and unauthenticated phases. It is safe for concurrent use.
//
// Every Initialize, Login, Logout and server-side rejection starts a new
// generation; a verification that completes under an older generation is
// discarded.
type Session struct {
	gateway     *Gateway
	store       CredentialStore
	logger      *zap.Logger
	loginPath   string
	publicPaths []string

	mu         sync.Mutex
	generation uint64
	state      State

	subscribers map[uint64]func(State)
	nextSubID   uint64
	pending     []State
	flushing    bool
}

// SessionOption configures a Session.
type SessionOption func(*Session)

// WithLoginPath overrides DefaultLoginPath.
func WithLoginPath(path string) SessionOption {
	return func(s *Session) {
		s.loginPath = path
	}
}

// WithPublicPaths adds routes that never wait on verification. An entry
// ending in "/" matches every path beneath it.
func WithPublicPaths(paths ...string) SessionOption {
	return func(s *Session) {
		s.publicPaths = append(s.publicPaths, paths...)
	}
}

// WithSessionLogger sets the logger used for session transitions.
func WithSessionLogger(logger *zap.Logger) SessionOption {
	return func(s *Session) {
		s.logger = logger
	}
}

// NewSession creates a Session over gateway and registers it to be told
// when the server rejects the credential. The Session starts unauthenticated
// until Initialize or Login is called.
func NewSession(gateway *Gateway, opts ...SessionOption) *Session {
	s := &Session{
		gateway:     gateway,
		store:       gateway.Store(),
		loginPath:   DefaultLoginPath,
		state:       State{Phase: PhaseUnauthenticated},
		subscribers: make(map[uint64]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	s.publicPaths = append(s.publicPaths, s.loginPath)

	gateway.OnUnauthorized(s.handleUnauthorized)
	return s
}

// LoginPath returns the route used for redirects.
func (s *Session) LoginPath() string {
	return s.loginPath
}

// State returns the current snapshot.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe calls fn with every new State, in transition order. fn may call
// back into the Session. The returned function removes the subscription.
func (s *Session) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subscribers, id)
		s.mu.Unlock()
	}
}

// IsPublic reports whether path is reachable without a session.
func (s *Session) IsPublic(path string) bool {
	if u, err := url.Parse(path); err == nil {
		path = u.Path
	}
	for _, p := range s.publicPaths {
		if path == p || (strings.HasSuffix(p, "/") && strings.HasPrefix(path, p)) {
			return true
		}
	}
	return false
}

// Initialize resolves the session for the route at path and returns the
// resulting State. It blocks while the stored credential is verified.
//
// Public routes and an empty store settle immediately as unauthenticated.
// Any verification failure clears the credential without surfacing an error.
// If a newer Initialize, Login or Logout happens while this call is
// verifying, its result is discarded and the newer State is returned.
func (s *Session) Initialize(ctx context.Context, path string) State {
	s.mu.Lock()
	s.generation++
	gen := s.generation

	if s.IsPublic(path) {
		s.setLocked(State{Phase: PhaseUnauthenticated})
		st := s.state
		s.mu.Unlock()
		s.flush()
		return st
	}
	s.mu.Unlock()

	// The store may be remote; State readers must not wait on it.
	token, err := s.store.Get()
	if err != nil {
		s.logger.Warn("credential store unavailable", zap.Error(err))
	}

	s.mu.Lock()
	if gen != s.generation {
		st := s.state
		s.mu.Unlock()
		return st
	}
	if err != nil || token == "" {
		s.setLocked(State{Phase: PhaseUnauthenticated})
		st := s.state
		s.mu.Unlock()
		s.flush()
		return st
	}

	s.setLocked(State{Phase: PhaseResolving})
	s.mu.Unlock()
	s.flush()

	identity, err := FetchIdentity(ctx, s.gateway)

	s.mu.Lock()
	if gen != s.generation {
		st := s.state
		s.mu.Unlock()
		s.logger.Debug("discarding stale verification", zap.String("path", path))
		return st
	}

	if err != nil {
		if ctx.Err() != nil && errors.Is(err, ErrNetwork) {
			// Abandoned by the caller; that says nothing about the token.
			s.generation++
			s.setLocked(State{Phase: PhaseUnauthenticated})
			st := s.state
			s.mu.Unlock()
			s.flush()
			return st
		}
		s.logger.Debug("verification failed", zap.String("path", path), zap.String("kind", string(KindOf(err))), zap.Error(err))
		if err := s.store.Clear(); err != nil {
			s.logger.Error("failed to clear credential", zap.Error(err))
		}
		s.generation++
		s.setLocked(State{Phase: PhaseUnauthenticated})
		st := s.state
		s.mu.Unlock()
		s.flush()
		return st
	}

	s.setLocked(State{Phase: PhaseAuthenticated, Identity: identity})
	st := s.state
	s.mu.Unlock()
	s.flush()
	return st
}

// Login stores token and marks identity as authenticated. Routing after a
// successful login is left to the caller.
func (s *Session) Login(token string, identity *Identity) error {
	if token == "" {
		return errors.New("token is required")
	}
	if identity == nil {
		return errors.New("identity is required")
	}
	if err := s.store.Set(token); err != nil {
		return err
	}

	s.mu.Lock()
	s.generation++
	s.setLocked(State{Phase: PhaseAuthenticated, Identity: identity})
	s.mu.Unlock()
	s.flush()

	s.logger.Debug("logged in", zap.String("username", identity.Username))
	return nil
}

// LoginWithPassword performs the login call and, on success, Login.
func (s *Session) LoginWithPassword(ctx context.Context, username, password string) (*Identity, error) {
	res, err := Login(ctx, s.gateway, username, password)
	if err != nil {
		return nil, err
	}
	if err := s.Login(res.Token, res.Identity); err != nil {
		return nil, err
	}
	return res.Identity, nil
}

// Logout clears the credential and identity. With redirect set it returns a
// Navigation to the login route; otherwise the caller relies on Guard
// reacting to the new phase.
func (s *Session) Logout(redirect bool) Navigation {
	if err := s.store.Clear(); err != nil {
		s.logger.Error("failed to clear credential", zap.Error(err))
	}

	s.mu.Lock()
	s.generation++
	s.setLocked(State{Phase: PhaseUnauthenticated})
	s.mu.Unlock()
	s.flush()

	if redirect {
		return Navigation{To: s.loginPath}
	}
	return Navigation{}
}

// Navigate resolves the session for path and decides what the router
// should do. Public routes always render.
func (s *Session) Navigate(ctx context.Context, path string) Decision {
	st := s.Initialize(ctx, path)
	if s.IsPublic(path) {
		return Decision{Action: ActionRender}
	}
	return Guard(st.Phase, s.loginPath)
}

// Guard evaluates the current phase.
func (s *Session) Guard() Decision {
	return Guard(s.State().Phase, s.loginPath)
}

// handleUnauthorized runs after the Gateway cleared a rejected credential.
// The Gateway skips it when the rejected token is no longer the stored one.
func (s *Session) handleUnauthorized() {
	s.mu.Lock()
	s.generation++
	s.setLocked(State{Phase: PhaseUnauthenticated})
	s.mu.Unlock()
	s.flush()

	s.logger.Debug("credential rejected by server")
}

// setLocked must be called with s.mu held.
func (s *Session) setLocked(st State) {
	s.state = st
	s.pending = append(s.pending, st)
}

// flush delivers queued states in order. A call made while another
// goroutine (or a subscriber) is already flushing just leaves its state in
// the queue for that flusher.
func (s *Session) flush() {
	s.mu.Lock()
	if s.flushing {
		s.mu.Unlock()
		return
	}
	s.flushing = true
	for len(s.pending) > 0 {
		st := s.pending[0]
		s.pending = s.pending[1:]
		subs := make([]func(State), 0, len(s.subscribers))
		for _, fn := range s.subscribers {
			subs = append(subs, fn)
		}
		s.mu.Unlock()
		for _, fn := range subs {
			fn(st)
		}
		s.mu.Lock()
	}
	s.flushing = false
	s.mu.Unlock()
}
