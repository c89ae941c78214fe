package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"notes-backend/application/services"
	"notes-backend/domain/entities"
	"notes-backend/pkg/auth"
	"notes-backend/pkg/common"
	pkgerrors "notes-backend/pkg/errors"
	"notes-backend/pkg/utils"
)

// NoteHandler handles note-related HTTP requests
type NoteHandler struct {
	notes  *services.NoteService
	errors *pkgerrors.ErrorHandler
	logger *zap.Logger
}

// NewNoteHandler creates a new note handler
func NewNoteHandler(notes *services.NoteService, errorHandler *pkgerrors.ErrorHandler, logger *zap.Logger) *NoteHandler {
	return &NoteHandler{
		notes:  notes,
		errors: errorHandler,
		logger: logger,
	}
}

// CreateNoteRequest represents the request body for creating a note
type CreateNoteRequest struct {
	Title   string `json:"title" validate:"required,max=200"`
	Content string `json:"content" validate:"required"`
	Public  *bool  `json:"public,omitempty"`
}

// UpdateNoteRequest represents the request body for updating a note
type UpdateNoteRequest struct {
	Title   *string `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Content *string `json:"content,omitempty" validate:"omitempty,min=1"`
}

// VisibilityRequest represents the request body for the visibility toggle
type VisibilityRequest struct {
	Public *bool `json:"public" validate:"required"`
}

// NoteResponse is the full wire shape of a note
type NoteResponse struct {
	ID        string    `json:"id"`
	User      string    `json:"user"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Public    bool      `json:"public"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// VisibilityResponse carries only the visibility fields after a toggle
type VisibilityResponse struct {
	ID        string    `json:"id"`
	Public    bool      `json:"public"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toNoteResponse(n *entities.Note) NoteResponse {
	return NoteResponse{
		ID:        n.ID,
		User:      n.OwnerID,
		Title:     n.Title,
		Content:   n.Content,
		Public:    n.IsPublic,
		CreatedAt: n.CreatedAt,
		UpdatedAt: n.UpdatedAt,
	}
}

// GetNote handles GET /api/notes/{noteID}. Auth is optional: the caller
// id is empty for anonymous requests and the service decides visibility.
func (h *NoteHandler) GetNote(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "noteID")

	callerID := ""
	if user, err := auth.GetUserFromContext(r.Context()); err == nil {
		callerID = user.UserID
	}

	note, err := h.notes.Get(r.Context(), noteID, callerID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondRaw(w, http.StatusOK, toNoteResponse(note))
}

// ListNotes handles GET /api/notes
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError(""))
		return
	}

	notes, err := h.notes.List(r.Context(), user.UserID)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	responses := make([]NoteResponse, 0, len(notes))
	for _, n := range notes {
		responses = append(responses, toNoteResponse(n))
	}

	common.RespondJSON(w, http.StatusOK, responses)
}

// CreateNote handles POST /api/notes
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError(""))
		return
	}

	isPublic := req.Public != nil && *req.Public

	note, err := h.notes.Create(r.Context(), user.UserID, req.Title, req.Content, isPublic)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusCreated, toNoteResponse(note))
}

// UpdateNote handles PUT /api/notes/{noteID}
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "noteID")

	var req UpdateNoteRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError(""))
		return
	}

	note, err := h.notes.Update(r.Context(), noteID, user.UserID, req.Title, req.Content)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, toNoteResponse(note))
}

// UpdateVisibility handles PATCH /api/notes/{noteID}
func (h *NoteHandler) UpdateVisibility(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "noteID")

	var req VisibilityRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError("invalid request body"))
		return
	}

	if err := utils.ValidateStruct(req); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError(""))
		return
	}

	note, err := h.notes.SetVisibility(r.Context(), noteID, user.UserID, *req.Public)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondJSON(w, http.StatusOK, VisibilityResponse{
		ID:        note.ID,
		Public:    note.IsPublic,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	})
}

// DeleteNote handles DELETE /api/notes/{noteID}
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	noteID := chi.URLParam(r, "noteID")

	user, err := auth.GetUserFromContext(r.Context())
	if err != nil {
		h.errors.Handle(w, r, pkgerrors.NewUnauthorizedError(""))
		return
	}

	if err := h.notes.Delete(r.Context(), noteID, user.UserID); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	common.RespondMessage(w, http.StatusOK, "note deleted successfully")
}
