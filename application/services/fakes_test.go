package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"notes-backend/domain/entities"
	pkgerrors "notes-backend/pkg/errors"
)

// memUserRepository is an in-memory ports.UserRepository for tests
type memUserRepository struct {
	mu    sync.Mutex
	users map[string]*entities.User // keyed by normalized username
}

func newMemUserRepository() *memUserRepository {
	return &memUserRepository{users: make(map[string]*entities.User)}
}

func (r *memUserRepository) Create(_ context.Context, user *entities.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.Username]; ok {
		return pkgerrors.NewConflictError("username already registered")
	}
	copied := *user
	r.users[user.Username] = &copied
	return nil
}

func (r *memUserRepository) GetByUsername(_ context.Context, username string) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[username]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("user")
	}
	copied := *user
	return &copied, nil
}

// memNoteRepository is an in-memory ports.NoteRepository for tests. Its
// mutations mirror the production repository's ownership filter: a miss on
// (id, ownerID) is not-found, never forbidden.
type memNoteRepository struct {
	mu    sync.Mutex
	notes map[string]*entities.Note
}

func newMemNoteRepository() *memNoteRepository {
	return &memNoteRepository{notes: make(map[string]*entities.Note)}
}

func (r *memNoteRepository) Create(_ context.Context, note *entities.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *note
	r.notes[note.ID] = &copied
	return nil
}

func (r *memNoteRepository) GetByID(_ context.Context, id string) (*entities.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	note, ok := r.notes[id]
	if !ok {
		return nil, pkgerrors.NewNotFoundError("note")
	}
	copied := *note
	return &copied, nil
}

func (r *memNoteRepository) ListByOwner(_ context.Context, ownerID string) ([]*entities.Note, error) {
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

func (r *memNoteRepository) UpdateContent(_ context.Context, id, ownerID string, title, content *string) (*entities.Note, error) {
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

func (r *memNoteRepository) SetVisibility(_ context.Context, id, ownerID string, isPublic bool) (*entities.Note, error) {
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

func (r *memNoteRepository) Delete(_ context.Context, id, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	note, ok := r.notes[id]
	if !ok || note.OwnerID != ownerID {
		return pkgerrors.NewNotFoundError("note")
	}
	delete(r.notes, id)
	return nil
}
