package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/saltware/website/internal/auth"
)

// Compile-time contract assertion: the store is the auth collaborator.
var _ auth.Authenticator = (*Store)(nil)

const sessionTTL = 30 * 24 * time.Hour

var (
	// ErrBadCredentials covers unknown email and wrong password alike.
	ErrBadCredentials = errors.New("invalid email or password")
	// ErrAdminExists means first-run provisioning already happened.
	ErrAdminExists = errors.New("an admin account already exists")
)

// SignIn authenticates by email and password and issues a session.
func (s *Store) SignIn(ctx context.Context, email, secret string) (auth.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	var id, name, role, hash string
	err := s.db.QueryRowContext(ctx, s.rebind(
		"SELECT id, name, role, password_hash FROM users WHERE email = ?"), email).
		Scan(&id, &name, &role, &hash)
	if err != nil {
		return auth.Session{}, ErrBadCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) != nil {
		return auth.Session{}, ErrBadCredentials
	}

	token, err := s.createSession(ctx, id)
	if err != nil {
		return auth.Session{}, err
	}
	return auth.Session{Token: token, Email: email, Name: name, Admin: role == "admin"}, nil
}

// Resolve looks up a session token and returns the actor behind it. Expired
// sessions are removed on sight.
func (s *Store) Resolve(ctx context.Context, token string) (auth.Session, error) {
	var email, name, role string
	var expiresAt int64
	err := s.db.QueryRowContext(ctx, s.rebind(
		`SELECT u.email, u.name, u.role, s.expires_at
		 FROM sessions s JOIN users u ON u.id = s.user_id
		 WHERE s.token = ?`), token).
		Scan(&email, &name, &role, &expiresAt)
	if err != nil {
		return auth.Session{}, errors.New("session not found")
	}
	if time.Now().Unix() >= expiresAt {
		s.db.ExecContext(ctx, s.rebind("DELETE FROM sessions WHERE token = ?"), token)
		return auth.Session{}, errors.New("session expired")
	}
	return auth.Session{Token: token, Email: email, Name: name, Admin: role == "admin"}, nil
}

func (s *Store) SignOut(ctx context.Context, token string) error {
	_, err := s.db.ExecContext(ctx, s.rebind("DELETE FROM sessions WHERE token = ?"), token)
	return err
}

// ProvisionAdmin creates the first admin account. It refuses once any admin
// exists; there is no general self-registration.
func (s *Store) ProvisionAdmin(ctx context.Context, email, secret, name string) error {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return errors.New("email is required")
	}
	if len(secret) < 6 {
		return errors.New("password must be at least 6 characters")
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM users WHERE role = 'admin')").Scan(&exists); err != nil {
		return fmt.Errorf("check admin: %w", err)
	}
	if exists {
		return ErrAdminExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	if _, err := s.db.ExecContext(ctx, s.rebind(
		"INSERT INTO users (id, email, name, role, password_hash) VALUES (?, ?, ?, 'admin', ?)"),
		uuid.NewString(), email, name, string(hash)); err != nil {
		return fmt.Errorf("create admin: %w", err)
	}
	return nil
}

func (s *Store) createSession(ctx context.Context, userID string) (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	expires := time.Now().Add(sessionTTL).Unix()
	if _, err := s.db.ExecContext(ctx, s.rebind(
		"INSERT INTO sessions (token, user_id, expires_at) VALUES (?, ?, ?)"),
		token, userID, expires); err != nil {
		return "", fmt.Errorf("insert session: %w", err)
	}
	return token, nil
}
