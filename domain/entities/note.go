package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"

	pkgerrors "notes-backend/pkg/errors"
)

// Note is a user-owned document with a public/private flag. The owner is
// set at creation and never changes; only the owner may mutate or delete
// the note, and only public notes are readable by anyone else.
type Note struct {
	ID        string
	OwnerID   string
	Title     string
	Content   string
	IsPublic  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewNote creates a note owned by ownerID. Visibility defaults to private
// unless isPublic is set.
func NewNote(ownerID, title, content string, isPublic bool) (*Note, error) {
	if ownerID == "" {
		return nil, pkgerrors.NewValidationError("owner id cannot be empty")
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, pkgerrors.NewValidationError("title cannot be empty")
	}
	if content == "" {
		return nil, pkgerrors.NewValidationError("content cannot be empty")
	}

	now := time.Now().UTC()
	return &Note{
		ID:        uuid.New().String(),
		OwnerID:   ownerID,
		Title:     title,
		Content:   content,
		IsPublic:  isPublic,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// IsOwnedBy reports whether userID owns the note
func (n *Note) IsOwnedBy(userID string) bool {
	return userID != "" && n.OwnerID == userID
}

// IsViewableBy reports whether the note may be read by the given user.
// Public notes are readable by anyone, including anonymous callers.
func (n *Note) IsViewableBy(userID string) bool {
	return n.IsPublic || n.IsOwnedBy(userID)
}
