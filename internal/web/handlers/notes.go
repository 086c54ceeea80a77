package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kozaktomas/face-vault/internal/database"
	"github.com/kozaktomas/face-vault/internal/database/postgres"
	"github.com/kozaktomas/face-vault/internal/web/middleware"
)

// NoteStore is the persistence interface the notes handler needs.
type NoteStore interface {
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]database.Note, error)
	Create(ctx context.Context, note *database.Note) error
	Update(ctx context.Context, id, ownerID uuid.UUID, title, content string) (*database.Note, error)
	Delete(ctx context.Context, id, ownerID uuid.UUID) error
}

// NotesHandler handles the authenticated note CRUD endpoints. Every
// operation is scoped to the owner taken from the session claims.
type NotesHandler struct {
	notes NoteStore
}

// NewNotesHandler creates a new notes handler.
func NewNotesHandler(notes NoteStore) *NotesHandler {
	return &NotesHandler{notes: notes}
}

// noteRequest is the JSON body for create and update.
type noteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// List returns the owner's notes, newest first.
func (h *NotesHandler) List(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	notes, err := h.notes.ListByOwner(r.Context(), claims.UserID)
	if err != nil {
		log.Printf("[web] listing notes for %q: %v", sanitizeForLog(claims.Username), err)
		respondMessage(w, http.StatusInternalServerError, "Fetching data failed.")
		return
	}
	if notes == nil {
		notes = []database.Note{}
	}

	respondJSON(w, http.StatusOK, notes)
}

// Create stores a new note for the owner.
func (h *NotesHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		respondMessage(w, http.StatusBadRequest, "Title is required.")
		return
	}

	note := &database.Note{
		ID:      uuid.New(),
		OwnerID: claims.UserID,
		Title:   title,
		Content: req.Content,
	}
	if err := h.notes.Create(r.Context(), note); err != nil {
		log.Printf("[web] creating note for %q: %v", sanitizeForLog(claims.Username), err)
		respondMessage(w, http.StatusInternalServerError, "Saving data failed.")
		return
	}

	respondJSON(w, http.StatusCreated, note)
}

// Update replaces the title and content of a note. A note owned by someone
// else gets the same response as a nonexistent one.
func (h *NotesHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondMessage(w, http.StatusNotFound, "Not authorized or data not found.")
		return
	}

	var req noteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondMessage(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		respondMessage(w, http.StatusBadRequest, "Title is required.")
		return
	}

	note, err := h.notes.Update(r.Context(), id, claims.UserID, title, req.Content)
	if errors.Is(err, postgres.ErrNoteNotFound) {
		respondMessage(w, http.StatusNotFound, "Not authorized or data not found.")
		return
	}
	if err != nil {
		log.Printf("[web] updating note for %q: %v", sanitizeForLog(claims.Username), err)
		respondMessage(w, http.StatusInternalServerError, "Updating data failed.")
		return
	}

	respondJSON(w, http.StatusOK, note)
}

// Delete removes a note, with the same ownership-coupled matching as Update.
func (h *NotesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondMessage(w, http.StatusUnauthorized, "Not authorized or data not found.")
		return
	}

	err = h.notes.Delete(r.Context(), id, claims.UserID)
	if errors.Is(err, postgres.ErrNoteNotFound) {
		respondMessage(w, http.StatusUnauthorized, "Not authorized or data not found.")
		return
	}
	if err != nil {
		log.Printf("[web] deleting note for %q: %v", sanitizeForLog(claims.Username), err)
		respondMessage(w, http.StatusInternalServerError, "Deleting data failed.")
		return
	}

	respondMessage(w, http.StatusOK, "Data deleted successfully.")
}
