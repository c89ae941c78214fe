package services

import (
	"context"

	"go.uber.org/zap"

	"notes-backend/application/ports"
	"notes-backend/domain/entities"
	pkgerrors "notes-backend/pkg/errors"
)

// NoteService enforces the note visibility and ownership rules.
//
// Reads keep the 404-before-403 ordering so clients can tell a missing
// note from someone else's private note. Mutations instead go through the
// repository's atomic ownership-filtered writes and collapse both cases
// into 404, which avoids a check-then-act race and never confirms the
// existence of another user's note.
type NoteService struct {
	notes  ports.NoteRepository
	logger *zap.Logger
}

// NewNoteService creates a new note service
func NewNoteService(notes ports.NoteRepository, logger *zap.Logger) *NoteService {
	return &NoteService{
		notes:  notes,
		logger: logger,
	}
}

// Get returns a note when it is public or owned by the caller. callerID is
// empty for anonymous callers.
func (s *NoteService) Get(ctx context.Context, id, callerID string) (*entities.Note, error) {
	note, err := s.notes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !note.IsViewableBy(callerID) {
		return nil, pkgerrors.NewForbiddenError("not authorized to access this note")
	}

	return note, nil
}

// List returns the caller's notes, newest first
func (s *NoteService) List(ctx context.Context, callerID string) ([]*entities.Note, error) {
	return s.notes.ListByOwner(ctx, callerID)
}

// Create creates a note owned by the caller. Visibility defaults to
// private unless isPublic is set.
func (s *NoteService) Create(ctx context.Context, callerID, title, content string, isPublic bool) (*entities.Note, error) {
	note, err := entities.NewNote(callerID, title, content, isPublic)
	if err != nil {
		return nil, err
	}

	if err := s.notes.Create(ctx, note); err != nil {
		return nil, err
	}

	s.logger.Info("note created",
		zap.String("note_id", note.ID),
		zap.String("owner_id", note.OwnerID),
		zap.Bool("public", note.IsPublic),
	)

	return note, nil
}

// Update updates title and/or content of a note owned by the caller
func (s *NoteService) Update(ctx context.Context, id, callerID string, title, content *string) (*entities.Note, error) {
	if title == nil && content == nil {
		return nil, pkgerrors.NewValidationError("nothing to update")
	}

	return s.notes.UpdateContent(ctx, id, callerID, title, content)
}

// SetVisibility toggles the public flag of a note owned by the caller
func (s *NoteService) SetVisibility(ctx context.Context, id, callerID string, isPublic bool) (*entities.Note, error) {
	note, err := s.notes.SetVisibility(ctx, id, callerID, isPublic)
	if err != nil {
		return nil, err
	}

	s.logger.Info("note visibility changed",
		zap.String("note_id", note.ID),
		zap.Bool("public", note.IsPublic),
	)

	return note, nil
}

// Delete removes a note owned by the caller
func (s *NoteService) Delete(ctx context.Context, id, callerID string) error {
	if err := s.notes.Delete(ctx, id, callerID); err != nil {
		return err
	}

	s.logger.Info("note deleted",
		zap.String("note_id", id),
		zap.String("owner_id", callerID),
	)

	return nil
}
