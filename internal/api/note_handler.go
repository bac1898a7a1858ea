package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/salem-notes/notes-backend/internal/api/respond"
	"github.com/salem-notes/notes-backend/internal/auth"
	"github.com/salem-notes/notes-backend/internal/blob"
	"github.com/salem-notes/notes-backend/internal/core/note"
	"github.com/salem-notes/notes-backend/internal/model"
)

const (
	// maxImageBytes caps attachment size; requests beyond it are rejected
	// at the boundary before the core sees them.
	maxImageBytes = 5 << 20

	minContentLength = 10
)

// NoteHandler is the HTTP transport for the note lifecycle. It parses the
// multipart input, validates fields, and translates core errors; every
// decision beyond that lives in the core service.
type NoteHandler struct {
	svc *note.Service
}

func NewNoteHandler(svc *note.Service) *NoteHandler { return &NoteHandler{svc: svc} }

// noteRequest is the JSON part of the multipart body.
type noteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// parseNoteForm reads the multipart body: the "note" JSON part and the
// optional "image" file part. Returns the upload or nil when no file came.
func parseNoteForm(r *http.Request) (*noteRequest, *blob.Upload, int, string) {
	if err := r.ParseMultipartForm(maxImageBytes + 1<<20); err != nil {
		return nil, nil, http.StatusBadRequest, "expected multipart/form-data body"
	}

	raw := r.FormValue("note")
	if raw == "" {
		return nil, nil, http.StatusBadRequest, "missing 'note' part"
	}
	var req noteRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return nil, nil, http.StatusBadRequest, "invalid JSON in 'note' part"
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, nil, http.StatusBadRequest, "title must not be empty"
	}
	if len(req.Content) < minContentLength {
		return nil, nil, http.StatusBadRequest, "content must be at least 10 characters"
	}

	file, hdr, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return &req, nil, 0, ""
		}
		return nil, nil, http.StatusBadRequest, "invalid 'image' part"
	}
	if hdr.Size > maxImageBytes {
		_ = file.Close()
		return nil, nil, http.StatusRequestEntityTooLarge, "image exceeds 5 MiB"
	}
	contentType := hdr.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "image/") {
		_ = file.Close()
		return nil, nil, http.StatusBadRequest, "attachment must be an image"
	}

	up := &blob.Upload{Reader: file, Size: hdr.Size, Name: hdr.Filename, ContentType: contentType}
	return &req, up, 0, ""
}

// CreateNote POST /api/notes
func (h *NoteHandler) CreateNote(w http.ResponseWriter, r *http.Request) {
	caller := auth.IdentityFromContext(r.Context())
	req, up, code, msg := parseNoteForm(r)
	if code != 0 {
		respond.WriteError(w, code, msg)
		return
	}

	v, err := h.svc.Create(r.Context(), caller, req.Title, req.Content, up)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusCreated, v)
}

// ListNotes GET /api/notes
func (h *NoteHandler) ListNotes(w http.ResponseWriter, r *http.Request) {
	caller := auth.IdentityFromContext(r.Context())
	views, err := h.svc.List(r.Context(), caller)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, views)
}

// UpdateNote PUT /api/notes/{noteId}
func (h *NoteHandler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	caller := auth.IdentityFromContext(r.Context())
	noteID, ok := pathNoteID(w, r)
	if !ok {
		return
	}
	req, up, code, msg := parseNoteForm(r)
	if code != 0 {
		respond.WriteError(w, code, msg)
		return
	}

	v, err := h.svc.Update(r.Context(), caller, noteID, req.Title, req.Content, up)
	if err != nil {
		writeCoreError(w, err)
		return
	}
	respond.WriteJSON(w, http.StatusOK, v)
}

// DeleteNote DELETE /api/notes/{noteId}
func (h *NoteHandler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	caller := auth.IdentityFromContext(r.Context())
	noteID, ok := pathNoteID(w, r)
	if !ok {
		return
	}

	if err := h.svc.Delete(r.Context(), caller, noteID); err != nil {
		writeCoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pathNoteID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["noteId"], 10, 64)
	if err != nil || id <= 0 {
		respond.WriteBadRequest(w, "invalid note id")
		return 0, false
	}
	return id, true
}

// writeCoreError maps core error kinds onto transport responses. NotFound
// and OwnershipDenied render the same body so a caller cannot probe for the
// existence of someone else's note; the log lines stay distinct.
func writeCoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrNotFound):
		respond.WriteNotFound(w, "note not found")
	case errors.Is(err, model.ErrOwnershipDenied):
		log.Warn().Err(err).Msg("ownership denied rendered as not found")
		respond.WriteNotFound(w, "note not found")
	case errors.Is(err, model.ErrUploadFailed):
		log.Error().Stack().Err(err).Msg("attachment upload failed")
		respond.WriteInternalError(w, "could not store attachment")
	case errors.Is(err, model.ErrStorageUnavailable):
		log.Error().Stack().Err(err).Msg("persistence unavailable")
		respond.WriteInternalError(w, "internal error")
	default:
		log.Error().Stack().Err(err).Msg("unexpected core error")
		respond.WriteInternalError(w, "internal error")
	}
}
