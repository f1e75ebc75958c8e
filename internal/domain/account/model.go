package account

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/chaman/hospital/internal/platform/apperr"
	"github.com/chaman/hospital/internal/platform/auth"
)

// minPasswordLen is the shortest password accepted at registration.
const minPasswordLen = 8

// User is a login account. ADMIN users run the hospital; USER accounts
// book appointments and see their own data.
type User struct {
	ID           uuid.UUID `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	Role         auth.Role `db:"role" json:"role"`
	PasswordHash string    `db:"password_hash" json:"-"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

// Actor returns the access control identity of the user.
func (u *User) Actor() auth.Actor {
	return auth.Actor{UserID: u.ID.String(), Role: u.Role}
}

// RegisterInput is the body of POST /auth/register.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (in *RegisterInput) normalize() error {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return apperr.Validation("Name, email, and password are required")
	}
	if !strings.Contains(in.Email, "@") {
		return apperr.Validation("Invalid email")
	}
	if len(in.Password) < minPasswordLen {
		return apperr.Validation("Password must be at least %d characters", minPasswordLen)
	}
	return nil
}

// LoginInput is the body of POST /auth/login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func normalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Session is a signed-in user and the token that identifies them.
type Session struct {
	User   *User
	Token  string
	Claims *auth.Claims
}
