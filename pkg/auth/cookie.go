package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"
	"time"
)

// CookieName is the canonical session cookie name.
const CookieName = "session_token"

var ErrInvalidCookie = errors.New("invalid session cookie")

// CookieManager writes and reads the signed session cookie. The cookie
// value is `<token>|<mac>` where mac is HMAC-SHA256 over the token with a
// secret separate from the JWT signing secret, so the envelope itself
// cannot be tampered with.
type CookieManager struct {
	secret []byte
	secure bool
	maxAge time.Duration
}

// NewCookieManager creates a cookie manager. secure should be true in
// production so the cookie is only sent over HTTPS.
func NewCookieManager(secret string, secure bool, maxAge time.Duration) (*CookieManager, error) {
	if secret == "" {
		return nil, errors.New("cookie signing secret is required")
	}
	return &CookieManager{
		secret: []byte(secret),
		secure: secure,
		maxAge: maxAge,
	}, nil
}

// sign computes the base64url MAC for a token
func (m *CookieManager) sign(token string) string {
	mac := hmac.New(sha256.New, m.secret)
	mac.Write([]byte(token))
	return base64.RawURLEncoding.EncodeToString(mac.Sum(nil))
}

// Write sets the signed session cookie
func (m *CookieManager) Write(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token + "|" + m.sign(token),
		Path:     "/",
		MaxAge:   int(m.maxAge.Seconds()),
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Clear expires the session cookie
func (m *CookieManager) Clear(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// Read returns the embedded token when the cookie is present and its MAC
// verifies. A missing cookie yields ErrMissingToken; a present but
// tampered or malformed cookie yields ErrInvalidCookie.
func (m *CookieManager) Read(r *http.Request) (string, error) {
	cookie, err := r.Cookie(CookieName)
	if err != nil || cookie == nil {
		return "", ErrMissingToken
	}

	value := strings.TrimSpace(cookie.Value)
	if value == "" {
		return "", ErrMissingToken
	}

	idx := strings.LastIndex(value, "|")
	if idx <= 0 {
		return "", ErrInvalidCookie
	}

	token, sig := value[:idx], value[idx+1:]
	if !hmac.Equal([]byte(sig), []byte(m.sign(token))) {
		return "", ErrInvalidCookie
	}

	return token, nil
}
