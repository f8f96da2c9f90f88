// Package session carries the authenticated identity through the request
// context. The auth middleware writes it, everything downstream reads it.
package session

import "context"

type contextKey struct{}

// User is the identity attached to an authenticated request. Both fields
// come from the session token and may be blank on tokens issued before an
// account migration.
type User struct {
	ID    string
	Email string
}

func NewContext(ctx context.Context, user User) context.Context {
	return context.WithValue(ctx, contextKey{}, user)
}

// FromContext returns the session user, or ok=false on an unauthenticated
// request.
func FromContext(ctx context.Context) (User, bool) {
	user, ok := ctx.Value(contextKey{}).(User)
	return user, ok
}
