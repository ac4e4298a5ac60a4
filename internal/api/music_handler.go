package api

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-playground/validator/v10"

	"github.com/annotune/annotune-api/internal/api/shared"
	"github.com/annotune/annotune-api/internal/service"
)

// MusicHandler serves music registration, listing, deletion and audio
// streaming endpoints.
type MusicHandler struct {
	musicService *service.MusicService
	validate     *validator.Validate
	logger       *slog.Logger
}

// NewMusicHandler creates a MusicHandler with the given dependencies.
func NewMusicHandler(musicService *service.MusicService, validate *validator.Validate, logger *slog.Logger) *MusicHandler {
	return &MusicHandler{
		musicService: musicService,
		validate:     validate,
		logger:       logger.With(slog.String("component", "music_handler")),
	}
}

// RegisterBatch handles POST /music/. The multipart field "file" holds a
// JSON array of absolute paths; registration is per-path, so one bad path
// never blocks the rest of the batch.
func (h *MusicHandler) RegisterBatch(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		shared.RespondWithBusinessError(w, r, "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(io.LimitReader(file, maxRequestBodyBytes))
	if err != nil {
		shared.RespondWithSystemError(w, r, err)
		return
	}

	var paths []string
	if err := json.Unmarshal(content, &paths); err != nil {
		shared.RespondWithBusinessError(w, r, "file must contain a JSON array of paths")
		return
	}

	result, err := h.musicService.RegisterBatch(r.Context(), caller, paths)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithData(w, r, result)
}

// Delete handles DELETE /music/?id=. Removing a music row also removes
// its tasks and their records.
func (h *MusicHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, ok := currentUser(w, r)
	if !ok {
		return
	}

	id, err := strconv.ParseInt(r.URL.Query().Get("id"), 10, 64)
	if err != nil {
		shared.RespondWithBusinessError(w, r, "id must be an integer")
		return
	}

	if err := h.musicService.Delete(r.Context(), caller, id); err != nil {
		respondServiceError(w, r, err)
		return
	}

	shared.RespondWithData(w, r, map[string]int64{"id": id})
}

// List handles GET /music/ with an optional filename filter.
func (h *MusicHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.musicService.List(r.Context(), r.URL.Query().Get("filename"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	shared.RespondWithData(w, r, newMusicListResponse(items))
}

// GetFile handles GET /music/file?path= and streams the raw audio bytes.
// This endpoint is not enveloped.
func (h *MusicHandler) GetFile(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		shared.RespondWithBusinessError(w, r, "path is required")
		return
	}

	audio, err := h.musicService.GetFile(r.Context(), path)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", audio.ContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("inline; filename*=UTF-8''%s", url.PathEscape(audio.Filename)))
	w.Header().Set("Content-Length", strconv.Itoa(len(audio.Content)))

	if _, err := w.Write(audio.Content); err != nil {
		h.logger.WarnContext(r.Context(), "failed to stream audio file",
			slog.String("path", path),
			slog.String("error", err.Error()))
	}
}
