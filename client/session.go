package client

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	fypapp "github.com/apiguave/fypapp-go"
	"github.com/apiguave/fypapp-go/lexicons"
)

// MinSecretLen is the minimum accepted secret length. Shorter secrets
// are rejected before any network call.
const MinSecretLen = 8

// SessionStore holds the single live session of the process. Sign-in
// and sign-out mutate it; all concurrent readers see the latest
// committed value. Concurrent sign-in attempts racing each other are
// the caller's problem to serialize.
type SessionStore struct {
	mu      sync.RWMutex
	session *fypapp.Session
}

// NewSessionStore creates an empty store. One store is created at
// startup and passed to every collaborator that needs credentials.
func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// Current returns the live session, if any.
func (s *SessionStore) Current() (fypapp.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return fypapp.Session{}, false
	}
	return *s.session, true
}

// Token returns the bearer token of the live session, if any.
func (s *SessionStore) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.session == nil {
		return "", false
	}
	return s.session.AccessToken, true
}

func (s *SessionStore) set(session fypapp.Session) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = &session
}

func (s *SessionStore) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.session = nil
}

// Sessions owns the identity and session token lifecycle.
type Sessions struct {
	client *Client
	store  *SessionStore
	log    zerolog.Logger
}

func NewSessions(client *Client, store *SessionStore) *Sessions {
	return &Sessions{
		client: client,
		store:  store,
		log:    zerolog.Nop(),
	}
}

// SetLogger installs a logger for session lifecycle events.
func (s *Sessions) SetLogger(log zerolog.Logger) {
	s.log = log
}

type wireSession struct {
	DID       string `json:"did"`
	Handle    string `json:"handle"`
	AccessJwt string `json:"accessJwt"`
}

// SignUp registers a new account and establishes a session. The
// handle is derived from the identifier; secrets below the minimum
// length fail with a weak-secret error and leave no session behind.
func (s *Sessions) SignUp(ctx context.Context, identifier, secret, email string) (fypapp.Session, error) {
	ctx, span := tracer.Start(ctx, "Sessions.SignUp")
	defer span.End()

	if len(secret) < MinSecretLen {
		return fypapp.Session{}, fypapp.AuthError{Kind: fypapp.AuthWeakSecret}
	}

	handle := fypapp.DeriveHandle(identifier)
	body := map[string]any{
		"handle":   handle,
		"email":    email,
		"password": secret,
	}

	var out wireSession
	if err := s.client.Procedure(ctx, lexicons.CreateAccount, nil, body, &out); err != nil {
		span.RecordError(errors.Wrap(err, "createAccount failed"))
		return fypapp.Session{}, err
	}

	session := fypapp.Session{DID: out.DID, Handle: out.Handle, AccessToken: out.AccessJwt}
	s.store.set(session)
	s.log.Info().Str("did", session.DID).Str("handle", session.Handle).Msg("signed up")
	return session, nil
}

// SignIn exchanges credentials for a session token.
func (s *Sessions) SignIn(ctx context.Context, identifier, secret string) (fypapp.Session, error) {
	ctx, span := tracer.Start(ctx, "Sessions.SignIn")
	defer span.End()

	body := map[string]any{
		"identifier": fypapp.DeriveHandle(identifier),
		"password":   secret,
	}

	var out wireSession
	if err := s.client.Procedure(ctx, lexicons.CreateSession, nil, body, &out); err != nil {
		span.RecordError(errors.Wrap(err, "createSession failed"))
		return fypapp.Session{}, err
	}

	session := fypapp.Session{DID: out.DID, Handle: out.Handle, AccessToken: out.AccessJwt}
	s.store.set(session)
	s.log.Info().Str("did", session.DID).Msg("signed in")
	return session, nil
}

// SignOut clears the session. Subsequent authenticated calls fail
// until a new session is established. The token lives only in memory,
// so nothing outlives the process.
func (s *Sessions) SignOut() {
	s.store.clear()
	s.log.Info().Msg("signed out")
}

// CurrentDID returns the identity of the live session, if any.
func (s *Sessions) CurrentDID() (string, bool) {
	session, ok := s.store.Current()
	if !ok {
		return "", false
	}
	return session.DID, true
}
