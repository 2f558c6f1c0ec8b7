package admin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/abdelaziz-sekouti/beauty-ecom/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrSessionExpired     = errors.New("admin session expired")
	ErrNoSession          = errors.New("no admin session")
	ErrNotFound           = errors.New("not found")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrValidation         = errors.New("validation")
)

type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Authenticator checks admin credentials. Implementations decide where the
// credentials live; the dashboard only depends on this interface.
type Authenticator interface {
	Authenticate(ctx context.Context, cred Credentials) (*models.AdminSession, error)
}

// StaticAuthenticator accepts exactly one configured username and password.
// It is a demo gate, not an access-control system.
type StaticAuthenticator struct {
	username string
	hash     []byte
	now      func() time.Time
}

func NewStaticAuthenticator(username, password string) (*StaticAuthenticator, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("admin credentials must be set: %w", ErrValidation)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash admin password: %w", err)
	}
	return &StaticAuthenticator{username: username, hash: hash, now: time.Now}, nil
}

func (a *StaticAuthenticator) Authenticate(_ context.Context, cred Credentials) (*models.AdminSession, error) {
	if cred.Username != a.username {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(a.hash, []byte(cred.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	now := a.now().UTC()
	return &models.AdminSession{
		Username:  cred.Username,
		LoginTime: now,
		Timestamp: now.UnixMilli(),
	}, nil
}
