package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAuth counts calls so tests can assert which failures stayed local.
type fakeAuth struct {
	calls        map[string]int
	signInFails  int // fail the first N sign-in attempts
	signInErr    error
	provisionErr error
	resolveErr   error
	admin        bool
	lastToken    string
}

func newFakeAuth(admin bool) *fakeAuth {
	return &fakeAuth{calls: map[string]int{}, admin: admin, signInErr: errors.New("invalid email or password")}
}

func (f *fakeAuth) SignIn(_ context.Context, email, _ string) (Session, error) {
	f.calls["signin"]++
	if f.signInFails > 0 {
		f.signInFails--
		return Session{}, f.signInErr
	}
	return Session{Token: "tok-1", Email: email, Admin: f.admin}, nil
}

func (f *fakeAuth) Resolve(_ context.Context, token string) (Session, error) {
	f.calls["resolve"]++
	if f.resolveErr != nil {
		return Session{}, f.resolveErr
	}
	return Session{Token: token, Email: "admin@saltware.lk", Admin: f.admin}, nil
}

func (f *fakeAuth) SignOut(_ context.Context, token string) error {
	f.calls["signout"]++
	f.lastToken = token
	return nil
}

func (f *fakeAuth) ProvisionAdmin(_ context.Context, _, _, _ string) error {
	f.calls["provision"]++
	return f.provisionErr
}

func validCreds() Credentials {
	return Credentials{Email: "admin@saltware.lk", Password: "secret1", Confirm: "secret1"}
}

func TestGateStartsUnknownNotAnonymous(t *testing.T) {
	g := NewGate(newFakeAuth(true))
	assert.Equal(t, StateUnknown, g.State())
	assert.NotEqual(t, StateAnonymous, g.State())
	assert.False(t, g.Admitted())
}

func TestResume(t *testing.T) {
	ctx := context.Background()

	t.Run("empty token is anonymous", func(t *testing.T) {
		fa := newFakeAuth(true)
		g := NewGate(fa)
		g.Resume(ctx, "")
		assert.Equal(t, StateAnonymous, g.State())
		assert.Equal(t, 0, fa.calls["resolve"])
	})

	t.Run("stale token is anonymous", func(t *testing.T) {
		fa := newFakeAuth(true)
		fa.resolveErr = errors.New("session expired")
		g := NewGate(fa)
		g.Resume(ctx, "old")
		assert.Equal(t, StateAnonymous, g.State())
	})

	t.Run("admin session admits", func(t *testing.T) {
		g := NewGate(newFakeAuth(true))
		g.Resume(ctx, "tok")
		assert.Equal(t, StateAdmin, g.State())
		assert.True(t, g.Admitted())
	})

	t.Run("non-admin session resolves but is not admitted", func(t *testing.T) {
		g := NewGate(newFakeAuth(false))
		g.Resume(ctx, "tok")
		assert.Equal(t, StateSignedIn, g.State())
		assert.False(t, g.Admitted())
		_, ok := g.Session()
		assert.True(t, ok)
	})
}

func TestAccessValidatesBeforeAnyNetworkCall(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name  string
		creds Credentials
		want  string
	}{
		{"missing email", Credentials{Password: "secret1", Confirm: "secret1"}, "Email is required"},
		{"missing password", Credentials{Email: "a@b.lk"}, "Password is required"},
		{"confirm mismatch", Credentials{Email: "a@b.lk", Password: "secret1", Confirm: "secret2"}, "do not match"},
		{"short password", Credentials{Email: "a@b.lk", Password: "12345", Confirm: "12345"}, "at least 6 characters"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fa := newFakeAuth(true)
			g := NewGate(fa)
			_, err := g.Access(ctx, tc.creds)
			var vErr *ValidationError
			require.ErrorAs(t, err, &vErr)
			assert.Contains(t, vErr.Message, tc.want)
			assert.Equal(t, 0, fa.calls["signin"])
			assert.Equal(t, 0, fa.calls["provision"])
		})
	}
}

func TestAccessSignInSuccess(t *testing.T) {
	fa := newFakeAuth(true)
	g := NewGate(fa)

	sess, err := g.Access(context.Background(), validCreds())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", sess.Token)
	assert.Equal(t, StateAdmin, g.State())
	assert.Equal(t, 1, fa.calls["signin"])
	assert.Equal(t, 0, fa.calls["provision"])
}

func TestAccessFirstRunFallbackProvisionsThenRetries(t *testing.T) {
	fa := newFakeAuth(true)
	fa.signInFails = 1
	g := NewGate(fa)

	sess, err := g.Access(context.Background(), validCreds())
	require.NoError(t, err)
	assert.Equal(t, "tok-1", sess.Token)
	assert.Equal(t, StateAdmin, g.State())
	assert.Equal(t, 2, fa.calls["signin"])
	assert.Equal(t, 1, fa.calls["provision"])
}

func TestAccessSurfacesProvisioningFailure(t *testing.T) {
	fa := newFakeAuth(true)
	fa.signInFails = 2
	fa.provisionErr = errors.New("an admin account already exists")
	g := NewGate(fa)

	_, err := g.Access(context.Background(), validCreds())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
	assert.Equal(t, StateAnonymous, g.State())
}

func TestAccessSecondSignInFailure(t *testing.T) {
	fa := newFakeAuth(true)
	fa.signInFails = 2
	g := NewGate(fa)

	_, err := g.Access(context.Background(), validCreds())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sign in again")
}

func TestNonAdminIsNeverAdmitted(t *testing.T) {
	fa := newFakeAuth(false)
	g := NewGate(fa)

	// A perfectly valid session with the role flag off.
	sess, err := g.Access(context.Background(), validCreds())
	require.NoError(t, err)
	assert.False(t, sess.Admin)
	assert.Equal(t, StateSignedIn, g.State())
	assert.False(t, g.Admitted())
}

func TestCheckResolvesWithoutTouchingGateState(t *testing.T) {
	fa := newFakeAuth(true)
	g := NewGate(fa)
	ctx := context.Background()

	sess, state := g.Check(ctx, "admin-tok")
	require.Equal(t, StateAdmin, state)
	assert.Equal(t, "admin-tok", sess.Token)

	// A caller with no cookie, arriving right after the admin resolution,
	// must not inherit it: it gets anonymous and an empty session.
	anonSess, anonState := g.Check(ctx, "")
	assert.Equal(t, StateAnonymous, anonState)
	assert.Empty(t, anonSess.Token)
	assert.Equal(t, 1, fa.calls["resolve"])

	// The gate's own machine never saw either check.
	assert.Equal(t, StateUnknown, g.State())
	assert.False(t, g.Admitted())
}

func TestCheckNonAdminAndStaleTokens(t *testing.T) {
	ctx := context.Background()

	sess, state := NewGate(newFakeAuth(false)).Check(ctx, "tok")
	assert.Equal(t, StateSignedIn, state)
	assert.False(t, sess.Admin)

	fa := newFakeAuth(true)
	fa.resolveErr = errors.New("session expired")
	_, state = NewGate(fa).Check(ctx, "old")
	assert.Equal(t, StateAnonymous, state)
}

func TestRevoke(t *testing.T) {
	fa := newFakeAuth(true)
	g := NewGate(fa)
	ctx := context.Background()

	sess, err := g.Access(ctx, validCreds())
	require.NoError(t, err)

	// Revoking a foreign token hits the backend but leaves the gate alone.
	g.Revoke(ctx, "other-tok")
	assert.Equal(t, "other-tok", fa.lastToken)
	assert.Equal(t, StateAdmin, g.State())

	g.Revoke(ctx, sess.Token)
	assert.Equal(t, sess.Token, fa.lastToken)
	assert.Equal(t, StateAnonymous, g.State())

	// Empty token is a no-op.
	g.Revoke(ctx, "")
	assert.Equal(t, 2, fa.calls["signout"])
}

func TestSignOut(t *testing.T) {
	fa := newFakeAuth(true)
	g := NewGate(fa)
	ctx := context.Background()

	_, err := g.Access(ctx, validCreds())
	require.NoError(t, err)
	g.SignOut(ctx)
	assert.Equal(t, StateAnonymous, g.State())
	assert.Equal(t, 1, fa.calls["signout"])
	assert.Equal(t, "tok-1", fa.lastToken)
	_, ok := g.Session()
	assert.False(t, ok)

	// Signing out while anonymous is a no-op.
	g.SignOut(ctx)
	assert.Equal(t, 1, fa.calls["signout"])
}
