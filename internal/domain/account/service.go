package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/chaman/hospital/internal/platform/apperr"
	"github.com/chaman/hospital/internal/platform/auth"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong
// password alike.
var ErrInvalidCredentials = fmt.Errorf("invalid email or password: %w", apperr.ErrUnauthenticated)

type Service struct {
	users      UserRepository
	tokens     *auth.TokenIssuer
	revoked    auth.RevocationStore
	bcryptCost int
	// dummyHash is compared against when the email is unknown so both
	// failure paths cost one bcrypt comparison.
	dummyHash string
}

func NewService(users UserRepository, tokens *auth.TokenIssuer, revoked auth.RevocationStore, bcryptCost int) *Service {
	dummy, _ := auth.HashPassword(uuid.NewString(), bcryptCost)
	return &Service{users: users, tokens: tokens, revoked: revoked, bcryptCost: bcryptCost, dummyHash: dummy}
}

// Register creates a USER account and signs it in. Registration never
// grants ADMIN.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	if err := in.normalize(); err != nil {
		return nil, err
	}
	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}
	u := &User{Email: in.Email, Name: in.Name, Role: auth.RoleUser, PasswordHash: hash}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	return s.issue(u)
}

// Login checks the credentials and issues a new session.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	email := normalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, apperr.Validation("Email and password are required")
	}
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			auth.CheckPassword(in.Password, s.dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPassword(in.Password, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

// Logout revokes the session token until it would have expired.
func (s *Service) Logout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return apperr.ErrUnauthenticated
	}
	if claims.ExpiresAt == nil {
		return fmt.Errorf("logout: token %s has no expiry", claims.ID)
	}
	return s.revoked.Revoke(ctx, claims.ID, claims.ExpiresAt.Time)
}

// Me returns the account of the actor.
func (s *Service) Me(ctx context.Context, actor auth.Actor) (*User, error) {
	if err := auth.Authenticate(actor); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("session subject %q: %w", actor.UserID, apperr.ErrUnauthenticated)
	}
	u, err := s.users.GetByID(ctx, id)
	if errors.Is(err, apperr.ErrNotFound) {
		// The account was removed after the token was issued.
		return nil, apperr.ErrUnauthenticated
	}
	return u, err
}

func (s *Service) issue(u *User) (*Session, error) {
	token, claims, err := s.tokens.Issue(u.ID.String(), u.Role, u.Name)
	if err != nil {
		return nil, err
	}
	return &Session{User: u, Token: token, Claims: claims}, nil
}
