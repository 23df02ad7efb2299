package note

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/mominaamjad/pixel-notes/internal/core"
	"github.com/mominaamjad/pixel-notes/internal/export"
	"github.com/mominaamjad/pixel-notes/internal/middleware"
)

type Handler struct {
	service   *Service
	formatter *export.Formatter
	validate  *validator.Validate
}

func NewHandler(
	service *Service,
	formatter *export.Formatter,
	validate *validator.Validate,
) *Handler {
	return &Handler{
		service:   service,
		formatter: formatter,
		validate:  validate,
	}
}

// RegisterRoutes mounts the note endpoints. All of them require an
// authenticated caller.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/tags", h.ListTags)
	r.Get("/export", h.Export)
	r.Get("/download/{id}", h.Download)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Patch("/", h.Update)
		r.Delete("/", h.Delete)
		r.Patch("/favorite", h.ToggleFavorite)
		r.Patch("/archive", h.ToggleArchive)
	})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		core.Unauthorized(w, "authentication required")
		return
	}

	var req CreateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.Created(w, NoteEnvelope{Note: *resp})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		core.Unauthorized(w, "authentication required")
		return
	}

	resp, err := h.service.Get(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, NoteEnvelope{Note: *resp})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		core.Unauthorized(w, "authentication required")
		return
	}

	filters, err := parseListFilters(r)
	if err != nil {
		core.BadRequest(w, err.Error())
		return
	}

	notes, err := h.service.List(r.Context(), userID, filters)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OKList(w, NotesEnvelope{Notes: notes}, len(notes))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		core.Unauthorized(w, "authentication required")
		return
	}

	var req UpdateNoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if req.IsEmpty() {
		core.BadRequest(w, "no fields to update")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		core.BadRequest(w, core.FormatValidationError(err))
		return
	}

	resp, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), userID, req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, NoteEnvelope{Note: *resp})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		core.Unauthorized(w, "authentication required")
		return
	}

	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id"), userID); err != nil {
		h.writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.service.ToggleFavorite)
}

func (h *Handler) ToggleArchive(w http.ResponseWriter, r *http.Request) {
	h.toggle(w, r, h.service.ToggleArchive)
}

func (h *Handler) toggle(
	w http.ResponseWriter,
	r *http.Request,
	fn func(ctx context.Context, id, userID string) (*NoteResponse, error),
) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		core.Unauthorized(w, "authentication required")
		return
	}

	resp, err := fn(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	core.OK(w, NoteEnvelope{Note: *resp})
}

func (h *Handler) ListTags(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		core.Unauthorized(w, "authentication required")
		return
	}

	tags, err := h.service.ListTags(r.Context(), userID)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	core.OKList(w, TagsEnvelope{Tags: tags}, len(tags))
}

// Export renders the caller's notes, optionally narrowed by tags, as a
// downloadable document.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		core.Unauthorized(w, "authentication required")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatJSON
	}

	// Reject a bad format before touching the store.
	if !export.IsSupportedFormat(format) {
		core.JSONError(w, core.UnsupportedFormatError(format))
		return
	}

	filters := ListFilters{Tags: tagsFromQuery(r.URL.Query())}

	notes, err := h.service.List(r.Context(), userID, filters)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	artifact, err := h.formatter.FormatMany(format, toExportNotes(notes))
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeArtifact(w, artifact)
}

// Download renders a single note as a downloadable document.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		core.Unauthorized(w, "authentication required")
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = export.FormatText
	}

	if !export.IsSupportedFormat(format) {
		core.JSONError(w, core.UnsupportedFormatError(format))
		return
	}

	resp, err := h.service.Get(r.Context(), chi.URLParam(r, "id"), userID)
	if err != nil {
		h.writeError(w, err)
		return
	}

	artifact, err := h.formatter.FormatOne(format, export.Note(*resp))
	if err != nil {
		h.writeError(w, err)
		return
	}

	writeArtifact(w, artifact)
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "note")
	case core.IsAppError(err):
		core.JSONError(w, err)
	default:
		core.InternalServerError(w, err)
	}
}

// writeArtifact serves a rendered export. JSON renders inline in the
// response envelope; csv and txt are served as file attachments.
func writeArtifact(w http.ResponseWriter, artifact *export.Artifact) {
	w.Header().Set("Content-Type", artifact.ContentType)
	if artifact.Attachment {
		w.Header().Set("Content-Disposition",
			fmt.Sprintf("attachment; filename=%q", artifact.FileName))
	}
	w.WriteHeader(http.StatusOK)
	//nolint:errcheck // headers already sent, nothing left to report
	_, _ = w.Write(artifact.Body)
}

func parseListFilters(r *http.Request) (ListFilters, error) {
	q := r.URL.Query()

	filters := ListFilters{
		Tags:   tagsFromQuery(q),
		Color:  q.Get("color"),
		Search: q.Get("search"),
	}

	var err error
	if filters.Favorite, err = parseBoolParam(q.Get("favorite"), "favorite"); err != nil {
		return ListFilters{}, err
	}
	if filters.Archived, err = parseBoolParam(q.Get("archived"), "archived"); err != nil {
		return ListFilters{}, err
	}

	return filters, nil
}

// tagsFromQuery reads the tag filter. "tag" is the documented key;
// "tags" is accepted as an alias. Either takes a comma-separated list.
func tagsFromQuery(q url.Values) []string {
	raw := q.Get("tag")
	if raw == "" {
		raw = q.Get("tags")
	}
	return parseTags(raw)
}

func parseTags(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}

func parseBoolParam(raw, name string) (*bool, error) {
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid %s parameter: must be true or false", name)
	}
	return &v, nil
}
