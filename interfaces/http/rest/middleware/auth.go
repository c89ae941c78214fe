package middleware

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"notes-backend/pkg/auth"
)

// RequireAuth resolves the identity from the signed session cookie and
// rejects the request when it cannot. Every authentication failure -
// absent cookie, bad cookie signature, malformed or expired token - is a
// 401; 403 is reserved for authenticated-but-not-permitted outcomes
// further down the stack.
func RequireAuth(cookies *auth.CookieManager, tokens *auth.JWTService, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := resolveIdentity(r, cookies, tokens)
			if err != nil {
				logger.Warn("authentication failed",
					zap.Error(err),
					zap.String("path", r.URL.Path),
					zap.String("method", r.Method),
				)
				respondUnauthorized(w, "authentication required")
				return
			}

			ctx := auth.SetUserInContext(r.Context(), &auth.UserContext{
				UserID:   claims.UserID,
				Username: claims.Username,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth attaches an identity when a valid session cookie is
// present and proceeds anonymously otherwise. Invalid tokens are dropped
// silently so public endpoints still work for clients holding a stale
// session.
func OptionalAuth(cookies *auth.CookieManager, tokens *auth.JWTService, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, err := resolveIdentity(r, cookies, tokens)
			if err != nil {
				if !errors.Is(err, auth.ErrMissingToken) {
					logger.Debug("session not resolved, continuing anonymous",
						zap.Error(err),
						zap.String("path", r.URL.Path),
					)
				}
				next.ServeHTTP(w, r)
				return
			}

			ctx := auth.SetUserInContext(r.Context(), &auth.UserContext{
				UserID:   claims.UserID,
				Username: claims.Username,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// resolveIdentity reads the signed cookie envelope and validates the
// embedded session token
func resolveIdentity(r *http.Request, cookies *auth.CookieManager, tokens *auth.JWTService) (*auth.Claims, error) {
	token, err := cookies.Read(r)
	if err != nil {
		return nil, err
	}
	return tokens.ValidateToken(token)
}

// respondUnauthorized sends the standard 401 error body
func respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":  "error",
		"message": message,
	})
}
