package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"notes-backend/application/services"
	"notes-backend/domain/entities"
	"notes-backend/pkg/auth"
	pkgerrors "notes-backend/pkg/errors"
)

const (
	testJWTSecret    = "test-jwt-secret"
	testCookieSecret = "test-cookie-secret"
	testIssuer       = "notes-backend"
)

type stubUserRepository struct {
	mu    sync.Mutex
	users map[string]*entities.User
}

func (r *stubUserRepository) Create(_ context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Username]; ok {
		return pkgerrors.NewConflictError("username already registered")
	}
	copied := *user
	r.users[user.Username] = &copied
	return nil
}

func (r *stubUserRepository) GetByUsername(_ context.Context, username string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("user")
	}
	copied := *user
	return &copied, nil
}

type stubNoteRepository struct {
	mu    sync.Mutex
	notes map[string]*entities.Note
}

func (r *stubNoteRepository) Create(_ context.Context, note *entities.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *note
	r.notes[note.ID] = &copied
	return nil
}

func (r *stubNoteRepository) GetByID(_ context.Context, id string) (*entities.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	note, ok := r.notes[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("note")
	}
	copied := *note
	return &copied, nil
}

func (r *stubNoteRepository) ListByOwner(_ context.Context, ownerID string) ([]*entities.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var notes []*entities.Note
	for _, note := range r.notes {
		if note.OwnerID == ownerID {
			copied := *note
			notes = append(notes, &copied)
		}
	}
	sort.Slice(notes, func(i, j int) bool {
		return notes[i].CreatedAt.After(notes[j].CreatedAt)
	})
	return notes, nil
}

func (r *stubNoteRepository) UpdateContent(_ context.Context, id, ownerID string, title, content *string) (*entities.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	note, ok := r.notes[id]
	if !ok || note.OwnerID != ownerID {
		return nil, pkgerrors.NewNotFoundError("note")
	}
	if title != nil {
		note.Title = *title
	}
	if content != nil {
		note.Content = *content
	}
	note.UpdatedAt = time.Now().UTC()
	copied := *note
	return &copied, nil
}

func (r *stubNoteRepository) SetVisibility(_ context.Context, id, ownerID string, isPublic bool) (*entities.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	note, ok := r.notes[id]
	if !ok || note.OwnerID != ownerID {
		return nil, pkgerrors.NewNotFoundError("note")
	}
	note.IsPublic = isPublic
	note.UpdatedAt = time.Now().UTC()
	copied := *note
	return &copied, nil
}

func (r *stubNoteRepository) Delete(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	note, ok := r.notes[id]
	if !ok || note.OwnerID != ownerID {
		return pkgerrors.NewNotFoundError("note")
	}
	delete(r.notes, id)
	return nil
}

func newTestHandler(t *testing.T) (http.Handler, *auth.CookieManager, *auth.JWTService) {
	t.Helper()
	logger := zap.NewNop()

	tokens, err := auth.NewJWTService(testJWTSecret, testIssuer, 24*time.Hour)
	require.NoError(t, err)

	cookies, err := auth.NewCookieManager(testCookieSecret, false, 24*time.Hour)
	require.NoError(t, err)

	userRepo := &stubUserRepository{users: make(map[string]*entities.User)}
	noteRepo := &stubNoteRepository{notes: make(map[string]*entities.Note)}

	authService := services.NewAuthService(userRepo, auth.NewPasswordHasher(4), logger)
	noteService := services.NewNoteService(noteRepo, logger)

	router := NewRouter(authService, noteService, tokens, cookies, "http://localhost:5173", logger)
	return router.Setup(), cookies, tokens
}

func doJSON(t *testing.T, handler http.Handler, method, path string, body interface{}, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatal("session cookie not set")
	return nil
}

func registerAndLogin(t *testing.T, handler http.Handler, username, password string) *http.Cookie {
	t.Helper()

	rec := doJSON(t, handler, http.MethodPost, "/api/auth/register", map[string]string{
		"username": username,
		"password": password,
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, handler, http.MethodPost, "/api/auth/login", map[string]string{
		"username": username,
		"password": password,
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	return sessionCookie(t, rec)
}

func TestRouter_RegisterAndLogin(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodPost, "/api/auth/register", map[string]string{
		"username": "alice",
		"password": "Passw0rd",
	}, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "success", decodeBody(t, rec)["status"])

	t.Run("duplicate username conflicts", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/auth/register", map[string]string{
			"username": "Alice",
			"password": "Passw0rd",
		}, nil)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "error", decodeBody(t, rec)["status"])
	})

	t.Run("weak password rejected", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/auth/register", map[string]string{
			"username": "bob",
			"password": "short",
		}, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("login sets signed session cookie", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/auth/login", map[string]string{
			"username": "alice",
			"password": "Passw0rd",
		}, nil)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		cookie := sessionCookie(t, rec)
		assert.True(t, cookie.HttpOnly)
		assert.Equal(t, "/", cookie.Path)
		assert.Contains(t, cookie.Value, "|")

		body := decodeBody(t, rec)
		user := body["data"].(map[string]interface{})["user"].(map[string]interface{})
		assert.Equal(t, "alice", user["username"])
		assert.NotEmpty(t, user["id"])
	})

	t.Run("login with wrong password", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/auth/login", map[string]string{
			"username": "alice",
			"password": "Wr0ngpass",
		}, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("login with unknown username", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/auth/login", map[string]string{
			"username": "nobody",
			"password": "Passw0rd",
		}, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("logout clears cookie", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPost, "/api/auth/logout", nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		cookie := sessionCookie(t, rec)
		assert.Empty(t, cookie.Value)
		assert.Negative(t, cookie.MaxAge)
	})
}

func TestRouter_NoteLifecycle(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	alice := registerAndLogin(t, handler, "alice", "Passw0rd")
	bob := registerAndLogin(t, handler, "bob", "Passw0rd")

	// Alice creates a private note.
	rec := doJSON(t, handler, http.MethodPost, "/api/notes", map[string]interface{}{
		"title":   "secret plan",
		"content": "step one",
	}, alice)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	created := decodeBody(t, rec)["data"].(map[string]interface{})
	noteID := created["id"].(string)
	require.NotEmpty(t, noteID)
	assert.Equal(t, false, created["public"])

	notePath := fmt.Sprintf("/api/notes/%s", noteID)

	t.Run("anonymous read of private note is forbidden", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, notePath, nil, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("other user read of private note is forbidden", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, notePath, nil, bob)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("owner reads own private note", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, notePath, nil, alice)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "secret plan", body["title"])
		assert.Equal(t, "step one", body["content"])
	})

	t.Run("other user cannot update", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPut, notePath, map[string]string{
			"title": "hijacked",
		}, bob)
		// Ownership misses read as not-found so note existence never leaks.
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("other user cannot delete", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodDelete, notePath, nil, bob)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("owner makes note public", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPatch, notePath, map[string]bool{
			"public": true,
		}, alice)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		data := decodeBody(t, rec)["data"].(map[string]interface{})
		assert.Equal(t, true, data["public"])
	})

	t.Run("anonymous reads public note", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, notePath, nil, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "secret plan", decodeBody(t, rec)["title"])
	})

	t.Run("owner updates content", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPut, notePath, map[string]string{
			"content": "step two",
		}, alice)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		data := decodeBody(t, rec)["data"].(map[string]interface{})
		assert.Equal(t, "step two", data["content"])
		assert.Equal(t, "secret plan", data["title"])
	})

	t.Run("empty update rejected", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodPut, notePath, map[string]string{}, alice)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("owner lists own notes only", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/api/notes", nil, bob)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, decodeBody(t, rec)["data"])

		rec = doJSON(t, handler, http.MethodGet, "/api/notes", nil, alice)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decodeBody(t, rec)["data"], 1)
	})

	t.Run("owner deletes note", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodDelete, notePath, nil, alice)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = doJSON(t, handler, http.MethodGet, notePath, nil, alice)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRouter_RequireAuth(t *testing.T) {
	handler, cookies, _ := newTestHandler(t)

	t.Run("missing cookie", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/api/notes", nil, nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, "error", body["status"])
		assert.Equal(t, "authentication required", body["message"])
	})

	t.Run("tampered cookie", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/api/notes", nil, &http.Cookie{
			Name:  auth.CookieName,
			Value: "forged-token|forged-signature",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, "/api/notes", nil, expiredCookie(t, cookies))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRouter_OptionalAuthDegradesToAnonymous(t *testing.T) {
	handler, cookies, _ := newTestHandler(t)

	alice := registerAndLogin(t, handler, "alice", "Passw0rd")

	rec := doJSON(t, handler, http.MethodPost, "/api/notes", map[string]interface{}{
		"title":   "published",
		"content": "visible to all",
		"public":  true,
	}, alice)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	noteID := decodeBody(t, rec)["data"].(map[string]interface{})["id"].(string)
	notePath := fmt.Sprintf("/api/notes/%s", noteID)

	t.Run("stale session still reads public note", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, notePath, nil, expiredCookie(t, cookies))
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("tampered session still reads public note", func(t *testing.T) {
		rec := doJSON(t, handler, http.MethodGet, notePath, nil, &http.Cookie{
			Name:  auth.CookieName,
			Value: "garbage",
		})
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRouter_RouteNotFound(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodGet, "/api/unknown", nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "route not found", body["message"])
}

func TestRouter_HealthCheck(t *testing.T) {
	handler, _, _ := newTestHandler(t)

	rec := doJSON(t, handler, http.MethodGet, "/health", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decodeBody(t, rec)["status"])
}

// expiredCookie mints a correctly signed cookie around an already expired
// session token.
func expiredCookie(t *testing.T, cookies *auth.CookieManager) *http.Cookie {
	t.Helper()

	expired, err := auth.NewJWTService(testJWTSecret, testIssuer, -time.Hour)
	require.NoError(t, err)

	token, err := expired.GenerateToken("user-1", "alice")
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	cookies.Write(rec, token)
	for _, c := range rec.Result().Cookies() {
		if c.Name == auth.CookieName {
			return c
		}
	}
	t.Fatal("cookie not written")
	return nil
}
