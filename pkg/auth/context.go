package auth

import (
	"context"
	"errors"
)

// UserContext is the resolved identity attached to a request after
// successful authentication. It is populated exactly once by the auth
// middleware; handlers on optional-auth routes treat absence as anonymous.
type UserContext struct {
	UserID   string
	Username string
}

type contextKey string

const userContextKey contextKey = "user"

// GetUserFromContext extracts the identity from a request context
func GetUserFromContext(ctx context.Context) (*UserContext, error) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	if !ok || user == nil {
		return nil, errors.New("user not found in context")
	}
	return user, nil
}

// SetUserInContext attaches an identity to a request context
func SetUserInContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}
