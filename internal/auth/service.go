package auth

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/wayfarer-travel/wayfarer/internal/crud"
	"github.com/wayfarer-travel/wayfarer/internal/users"
)

// ErrInvalidCredentials is returned for unknown emails, wrong passwords and
// deactivated accounts alike so responses cannot be used to probe accounts.
var ErrInvalidCredentials = errors.New("auth: invalid credentials")

// UserFinder is the slice of the users store the login flow needs.
type UserFinder interface {
	FindOne(ctx context.Context, filter crud.Filter) (*users.User, bool, error)
}

// Service wraps authentication business rules.
type Service struct {
	users UserFinder
}

// NewService constructs a new Service.
func NewService(finder UserFinder) *Service {
	return &Service{users: finder}
}

// Authenticate validates email/password credentials.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*users.User, error) {
	user, found, err := s.users.FindOne(ctx, crud.Filter{"email": email})
	if err != nil {
		return nil, err
	}
	if !found || !user.IsActive {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
