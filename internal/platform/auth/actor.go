package auth

import (
	"context"
)

// Role is the coarse role carried by a session.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleUser  Role = "USER"
	// RoleNone marks an unauthenticated request.
	RoleNone Role = ""
)

// Valid reports whether r is one of the roles a session may carry.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleUser
}

// Actor is the identity and role attached to one incoming request.
type Actor struct {
	UserID string
	Role   Role
}

// Anonymous is the actor of a request without a session.
var Anonymous = Actor{}

func (a Actor) Authenticated() bool {
	return a.Role.Valid() && a.UserID != ""
}

func (a Actor) IsAdmin() bool {
	return a.Authenticated() && a.Role == RoleAdmin
}

type contextKey string

const (
	actorKey contextKey = "actor"
	tokenKey contextKey = "session_token"
)

// WithActor returns a copy of ctx carrying the actor.
func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey, a)
}

// ActorFromContext returns the request actor, or Anonymous when the request
// carried no session.
func ActorFromContext(ctx context.Context) Actor {
	a, ok := ctx.Value(actorKey).(Actor)
	if !ok {
		return Anonymous
	}
	return a
}

func withClaims(ctx context.Context, c *Claims) context.Context {
	return context.WithValue(ctx, tokenKey, c)
}

// ClaimsFromContext returns the validated session claims, if any.
func ClaimsFromContext(ctx context.Context) *Claims {
	c, _ := ctx.Value(tokenKey).(*Claims)
	return c
}
