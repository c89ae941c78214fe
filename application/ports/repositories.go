package ports

import (
	"context"

	"notes-backend/domain/entities"
)

// UserRepository defines the interface for user persistence.
// This is a port in hexagonal architecture - the domain doesn't know about
// the implementation.
type UserRepository interface {
	// Create persists a new user. Returns a conflict error when the
	// normalized username is already taken; the uniqueness check and the
	// write are a single atomic operation in the store.
	Create(ctx context.Context, user *entities.User) error

	// GetByUsername retrieves a user by normalized username
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
}

// NoteRepository defines the interface for note persistence.
//
// All owner-gated mutations take the acting user's id and apply it as a
// filter inside a single atomic write, so ownership verification and the
// mutation cannot race. A mutation that matches no (id, ownerID) pair
// reports not-found whether the note is missing or owned by someone else.
type NoteRepository interface {
	// Create persists a new note
	Create(ctx context.Context, note *entities.Note) error

	// GetByID retrieves a note by its id regardless of owner
	GetByID(ctx context.Context, id string) (*entities.Note, error)

	// ListByOwner retrieves all notes owned by ownerID, newest first
	ListByOwner(ctx context.Context, ownerID string) ([]*entities.Note, error)

	// UpdateContent updates title and/or content of a note owned by ownerID
	// and returns the updated note. Nil fields are left unchanged.
	UpdateContent(ctx context.Context, id, ownerID string, title, content *string) (*entities.Note, error)

	// SetVisibility sets the public flag of a note owned by ownerID and
	// returns the updated note
	SetVisibility(ctx context.Context, id, ownerID string, isPublic bool) (*entities.Note, error)

	// Delete removes a note owned by ownerID
	Delete(ctx context.Context, id, ownerID string) error
}
