package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCookieManager(t *testing.T) *CookieManager {
	t.Helper()
	m, err := NewCookieManager("cookie-secret", false, 24*time.Hour)
	require.NoError(t, err)
	return m
}

func requestWithCookie(value string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: CookieName, Value: value})
	return r
}

func TestCookieManager_RoundTrip(t *testing.T) {
	m := newTestCookieManager(t)

	w := httptest.NewRecorder()
	m.Write(w, "some-token")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	cookie := cookies[0]

	assert.Equal(t, CookieName, cookie.Name)
	assert.Equal(t, "/", cookie.Path)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)
	assert.Equal(t, int((24 * time.Hour).Seconds()), cookie.MaxAge)

	token, err := m.Read(requestWithCookie(cookie.Value))
	require.NoError(t, err)
	assert.Equal(t, "some-token", token)
}

func TestCookieManager_MissingCookie(t *testing.T) {
	m := newTestCookieManager(t)

	_, err := m.Read(httptest.NewRequest(http.MethodGet, "/", nil))
	assert.ErrorIs(t, err, ErrMissingToken)
}

func TestCookieManager_TamperedValue(t *testing.T) {
	m := newTestCookieManager(t)

	w := httptest.NewRecorder()
	m.Write(w, "some-token")
	signed := w.Result().Cookies()[0].Value

	// Change the embedded token but keep the original MAC
	tampered := "other-token" + signed[len("some-token"):]
	_, err := m.Read(requestWithCookie(tampered))
	assert.ErrorIs(t, err, ErrInvalidCookie)
}

func TestCookieManager_WrongSecret(t *testing.T) {
	m := newTestCookieManager(t)
	other, err := NewCookieManager("other-secret", false, time.Hour)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	other.Write(w, "some-token")

	_, err = m.Read(requestWithCookie(w.Result().Cookies()[0].Value))
	assert.ErrorIs(t, err, ErrInvalidCookie)
}

func TestCookieManager_MalformedValue(t *testing.T) {
	m := newTestCookieManager(t)

	_, err := m.Read(requestWithCookie("no-separator"))
	assert.ErrorIs(t, err, ErrInvalidCookie)
}

func TestCookieManager_Clear(t *testing.T) {
	m := newTestCookieManager(t)

	w := httptest.NewRecorder()
	m.Clear(w)

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, -1, cookies[0].MaxAge)
	assert.Empty(t, cookies[0].Value)
}

func TestCookieManager_EmptySecret(t *testing.T) {
	_, err := NewCookieManager("", false, time.Hour)
	require.Error(t, err)
}
