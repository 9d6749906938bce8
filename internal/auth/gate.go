// Package auth implements the access gate in front of the admin dashboard:
// a small authentication state machine plus the first-run admin provisioning
// fallback.
package auth

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// State of the gate. StateUnknown means the session has not been resolved
// yet; it must not be treated as StateAnonymous or a dashboard mount would
// redirect before the session is known.
type State int

const (
	StateUnknown State = iota
	StateAnonymous
	StateAuthenticating
	StateSignedIn // valid session, administrator flag false
	StateAdmin
)

func (s State) String() string {
	switch s {
	case StateAnonymous:
		return "anonymous"
	case StateAuthenticating:
		return "authenticating"
	case StateSignedIn:
		return "signed-in"
	case StateAdmin:
		return "admin"
	}
	return "unknown"
}

// Session is the signed-in actor as resolved by the backend.
type Session struct {
	Token string
	Email string
	Name  string
	Admin bool
}

// Authenticator is the external authentication collaborator. ProvisionAdmin
// is the out-of-band "create first admin" operation; it is the only
// account-creation path.
type Authenticator interface {
	SignIn(ctx context.Context, email, secret string) (Session, error)
	Resolve(ctx context.Context, token string) (Session, error)
	SignOut(ctx context.Context, token string) error
	ProvisionAdmin(ctx context.Context, email, secret, name string) error
}

// ErrNotAdmin is returned when a valid session lacks the administrator role.
var ErrNotAdmin = errors.New("administrator role required")

// ValidationError is a credential check failure raised before any backend
// call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// Credentials are the contents of the admin access form.
type Credentials struct {
	Name     string
	Email    string
	Password string
	Confirm  string
}

func (c Credentials) validate() error {
	if strings.TrimSpace(c.Email) == "" {
		return &ValidationError{Message: "Email is required"}
	}
	if c.Password == "" {
		return &ValidationError{Message: "Password is required"}
	}
	if c.Password != c.Confirm {
		return &ValidationError{Message: "Password and confirm password do not match"}
	}
	if len(c.Password) < 6 {
		return &ValidationError{Message: "Password must be at least 6 characters"}
	}
	return nil
}

// Gate tracks authentication state and gates dashboard entry.
type Gate struct {
	auth Authenticator

	mu    sync.Mutex
	state State
	sess  Session
}

func NewGate(a Authenticator) *Gate {
	return &Gate{auth: a, state: StateUnknown}
}

func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Session returns the current session; ok is false unless signed in.
func (g *Gate) Session() (Session, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateSignedIn && g.state != StateAdmin {
		return Session{}, false
	}
	return g.sess, true
}

// Admitted reports whether dashboard entry is allowed. Only StateAdmin
// qualifies; a signed-in non-administrator is still denied.
func (g *Gate) Admitted() bool {
	return g.State() == StateAdmin
}

// Check resolves a session token without touching the gate's own state, so
// one caller's resolution can never leak into another's. An empty or stale
// token is anonymous.
func (g *Gate) Check(ctx context.Context, token string) (Session, State) {
	if token == "" {
		return Session{}, StateAnonymous
	}
	sess, err := g.auth.Resolve(ctx, token)
	if err != nil {
		return Session{}, StateAnonymous
	}
	if sess.Admin {
		return sess, StateAdmin
	}
	return sess, StateSignedIn
}

// Resume resolves a previously issued session token, typically from a
// cookie, into the gate's own state. An empty or stale token lands on
// StateAnonymous.
func (g *Gate) Resume(ctx context.Context, token string) {
	sess, state := g.Check(ctx, token)
	g.set(state, sess)
}

// SignIn attempts plain authentication with the identifier/secret pair and
// returns the issued session.
func (g *Gate) SignIn(ctx context.Context, email, password string) (Session, error) {
	g.set(StateAuthenticating, Session{})
	sess, err := g.auth.SignIn(ctx, email, password)
	if err != nil {
		g.set(StateAnonymous, Session{})
		return Session{}, err
	}
	g.setSession(sess)
	return sess, nil
}

// Access runs the access-form flow: validate locally, attempt sign-in, and
// on failure fall back to first-run admin provisioning followed by a second
// sign-in attempt. Any of the three failures surfaces as a single
// user-facing error.
//
// The fallback deliberately treats every sign-in failure as "no account
// yet"; provisioning itself refuses to run once an admin exists, which is
// what keeps a wrong password from minting accounts.
func (g *Gate) Access(ctx context.Context, creds Credentials) (Session, error) {
	if err := creds.validate(); err != nil {
		return Session{}, err
	}
	if sess, err := g.SignIn(ctx, creds.Email, creds.Password); err == nil {
		return sess, nil
	}
	if err := g.auth.ProvisionAdmin(ctx, creds.Email, creds.Password, creds.Name); err != nil {
		return Session{}, err
	}
	sess, err := g.SignIn(ctx, creds.Email, creds.Password)
	if err != nil {
		return Session{}, errors.New("admin account created, please sign in again")
	}
	return sess, nil
}

// Revoke invalidates the given session token at the backend. When it is the
// gate's own session the machine returns to StateAnonymous; a foreign token
// leaves the gate's state alone.
func (g *Gate) Revoke(ctx context.Context, token string) {
	if token == "" {
		return
	}
	g.mu.Lock()
	if g.sess.Token == token {
		g.state = StateAnonymous
		g.sess = Session{}
	}
	g.mu.Unlock()
	_ = g.auth.SignOut(ctx, token)
}

// SignOut invalidates the current session, if any, and returns the gate to
// StateAnonymous.
func (g *Gate) SignOut(ctx context.Context) {
	g.mu.Lock()
	token := ""
	if g.state == StateSignedIn || g.state == StateAdmin {
		token = g.sess.Token
	}
	g.state = StateAnonymous
	g.sess = Session{}
	g.mu.Unlock()

	if token != "" {
		_ = g.auth.SignOut(ctx, token)
	}
}

func (g *Gate) set(state State, sess Session) {
	g.mu.Lock()
	g.state = state
	g.sess = sess
	g.mu.Unlock()
}

func (g *Gate) setSession(sess Session) {
	if sess.Admin {
		g.set(StateAdmin, sess)
		return
	}
	g.set(StateSignedIn, sess)
}
