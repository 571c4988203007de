package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/GoArmGo/GalleryApp/internal/archive"
	"github.com/GoArmGo/GalleryApp/internal/core/ports"
	"github.com/GoArmGo/GalleryApp/internal/domain"
	"github.com/GoArmGo/GalleryApp/internal/usecase"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// maxUploadBytes caps a single multipart upload (image or archive) before any
// processing happens.
const maxUploadBytes = 256 << 20 // 256 MiB

// GalleryHandler serves the gallery HTTP API.
type GalleryHandler struct {
	ingestor      usecase.PictureIngestor
	ledger        usecase.TagLedger
	access        usecase.AccessGate
	pictures      ports.PictureStorage
	albums        ports.AlbumStorage
	galleries     ports.GalleryStorage
	users         ports.UserStorage
	uploadLimiter chan struct{}
	logger        *slog.Logger
}

// NewGalleryHandler creates a new GalleryHandler.
func NewGalleryHandler(
	ingestor usecase.PictureIngestor,
	ledger usecase.TagLedger,
	access usecase.AccessGate,
	pictures ports.PictureStorage,
	albums ports.AlbumStorage,
	galleries ports.GalleryStorage,
	users ports.UserStorage,
	uploadLimiter chan struct{},
	logger *slog.Logger,
) *GalleryHandler {
	return &GalleryHandler{
		ingestor:      ingestor,
		ledger:        ledger,
		access:        access,
		pictures:      pictures,
		albums:        albums,
		galleries:     galleries,
		users:         users,
		uploadLimiter: uploadLimiter,
		logger:        logger,
	}
}

// respondWithJSON sends a JSON response to the client.
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}, logger *slog.Logger) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		logger.Error("failed to marshal JSON response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err = w.Write(response); err != nil {
		logger.Error("failed to write HTTP response", "error", err)
	}
}

// respondWithError sends a JSON error response.
func respondWithError(w http.ResponseWriter, code int, message string, logger *slog.Logger) {
	respondWithJSON(w, code, map[string]string{"error": message}, logger)
}

// urlParamUUID parses a chi URL parameter as a UUID.
func urlParamUUID(r *http.Request, name string) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, name))
}

// splitTags parses the comma-separated tags form field.
func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// readUpload pulls the "file" part out of a multipart request.
func readUpload(r *http.Request) (filename, contentType string, data []byte, err error) {
	r.Body = http.MaxBytesReader(nil, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		return "", "", nil, err
	}
	defer file.Close()

	data, err = io.ReadAll(file)
	if err != nil {
		return "", "", nil, err
	}
	return header.Filename, header.Header.Get("Content-Type"), data, nil
}

// UploadPicture handles POST /albums/{albumID}/pictures: a multipart image
// upload with an optional comma-separated "tags" field.
func (h *GalleryHandler) UploadPicture(w http.ResponseWriter, r *http.Request) {
	albumID, err := urlParamUUID(r, "albumID")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid album id", h.logger)
		return
	}

	h.uploadLimiter <- struct{}{}
	defer func() { <-h.uploadLimiter }()

	filename, contentType, data, err := readUpload(r)
	if err != nil {
		h.logger.Warn("bad upload request", "error", err)
		respondWithError(w, http.StatusBadRequest, "multipart field 'file' is required", h.logger)
		return
	}
	tags := splitTags(r.FormValue("tags"))

	picture, err := h.ingestor.IngestPicture(r.Context(), albumID, filename, data, contentType, tags)
	if err != nil {
		h.respondIngestError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, picture, h.logger)
}

// UploadArchive handles POST /albums/{albumID}/pictures/archive: a multipart
// archive upload whose image entries become separate pictures.
func (h *GalleryHandler) UploadArchive(w http.ResponseWriter, r *http.Request) {
	albumID, err := urlParamUUID(r, "albumID")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid album id", h.logger)
		return
	}

	h.uploadLimiter <- struct{}{}
	defer func() { <-h.uploadLimiter }()

	filename, _, data, err := readUpload(r)
	if err != nil {
		h.logger.Warn("bad archive upload request", "error", err)
		respondWithError(w, http.StatusBadRequest, "multipart field 'file' is required", h.logger)
		return
	}
	tags := splitTags(r.FormValue("tags"))

	pictures, err := h.ingestor.IngestArchive(r.Context(), albumID, filename, data, tags)
	if err != nil {
		h.respondIngestError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, map[string]interface{}{
		"count":    len(pictures),
		"pictures": pictures,
	}, h.logger)
}

// respondIngestError maps ingestion errors to HTTP statuses.
func (h *GalleryHandler) respondIngestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, usecase.ErrAlbumNotFound):
		respondWithError(w, http.StatusNotFound, "album not found", h.logger)
	case errors.Is(err, usecase.ErrEmptyUpload):
		respondWithError(w, http.StatusBadRequest, "upload contains no image data", h.logger)
	case errors.Is(err, archive.ErrUnsupportedArchive):
		respondWithError(w, http.StatusBadRequest, archive.ErrUnsupportedArchive.Error(), h.logger)
	case errors.Is(err, archive.ErrTooLarge):
		respondWithError(w, http.StatusRequestEntityTooLarge, archive.ErrTooLarge.Error(), h.logger)
	default:
		h.logger.Error("ingestion failed", "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to ingest upload", h.logger)
	}
}

// pictureResponse is the detailed picture view: the row, the tags grouped by
// provenance source, and a fresh signed URL.
type pictureResponse struct {
	Picture *domain.Picture                   `json:"picture"`
	Tags    map[domain.TagSource][]domain.Tag `json:"tags"`
	URL     string                            `json:"url"`
	Expires int64                             `json:"url_expires_at"`
}

// GetPicture handles GET /pictures/{pictureID}.
func (h *GalleryHandler) GetPicture(w http.ResponseWriter, r *http.Request) {
	pictureID, err := urlParamUUID(r, "pictureID")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid picture id", h.logger)
		return
	}

	picture, err := h.pictures.GetLivePictureByID(r.Context(), pictureID)
	if err != nil {
		h.logger.Error("failed to load picture", "picture_id", pictureID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to load picture", h.logger)
		return
	}
	if picture == nil {
		respondWithError(w, http.StatusNotFound, "picture not found", h.logger)
		return
	}

	tags, err := h.ledger.TagsBySource(r.Context(), pictureID)
	if err != nil {
		h.logger.Error("failed to load picture tags", "picture_id", pictureID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to load picture tags", h.logger)
		return
	}

	signed, err := h.access.SignedPictureURL(r.Context(), pictureID, 0)
	if err != nil {
		h.logger.Error("failed to sign picture url", "picture_id", pictureID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to sign picture url", h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, pictureResponse{
		Picture: picture,
		Tags:    tags,
		URL:     signed.URL,
		Expires: signed.ExpiresAt,
	}, h.logger)
}

// GetPictureURL handles GET /pictures/{pictureID}/url with an optional
// ttl query parameter in seconds.
func (h *GalleryHandler) GetPictureURL(w http.ResponseWriter, r *http.Request) {
	pictureID, err := urlParamUUID(r, "pictureID")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid picture id", h.logger)
		return
	}

	var ttl time.Duration
	if raw := r.URL.Query().Get("ttl"); raw != "" {
		seconds, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || seconds <= 0 {
			respondWithError(w, http.StatusBadRequest, "ttl must be a positive number of seconds", h.logger)
			return
		}
		ttl = time.Duration(seconds) * time.Second
	}

	signed, err := h.access.SignedPictureURL(r.Context(), pictureID, ttl)
	if err != nil {
		if errors.Is(err, usecase.ErrPictureNotFound) {
			respondWithError(w, http.StatusNotFound, "picture not found", h.logger)
			return
		}
		h.logger.Error("failed to sign picture url", "picture_id", pictureID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to sign picture url", h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, signed, h.logger)
}

// VerifyAccess handles GET /internal/verify, the auth_request-style check the
// edge proxy calls before serving a media object. It answers 204 for a valid
// signature and 403 otherwise.
func (h *GalleryHandler) VerifyAccess(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	uri := query.Get("uri")
	signature := query.Get("st")
	expires, err := strconv.ParseInt(query.Get("e"), 10, 64)
	if err != nil || uri == "" || signature == "" {
		w.WriteHeader(http.StatusForbidden)
		return
	}

	if !h.access.VerifyAccess(uri, signature, expires) {
		w.WriteHeader(http.StatusForbidden)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListAlbumPictures handles GET /albums/{albumID}/pictures.
func (h *GalleryHandler) ListAlbumPictures(w http.ResponseWriter, r *http.Request) {
	albumID, err := urlParamUUID(r, "albumID")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid album id", h.logger)
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page <= 0 {
		page = 1
	}
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	if perPage <= 0 {
		perPage = 20
	}

	pictures, err := h.pictures.ListPicturesByAlbum(r.Context(), albumID, page, perPage)
	if err != nil {
		h.logger.Error("failed to list album pictures", "album_id", albumID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to list pictures", h.logger)
		return
	}

	respondWithJSON(w, http.StatusOK, pictures, h.logger)
}

// DeletePicture handles DELETE /pictures/{pictureID} (soft delete).
func (h *GalleryHandler) DeletePicture(w http.ResponseWriter, r *http.Request) {
	pictureID, err := urlParamUUID(r, "pictureID")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid picture id", h.logger)
		return
	}

	if err := h.pictures.SoftDeletePicture(r.Context(), pictureID); err != nil {
		h.logger.Error("failed to delete picture", "picture_id", pictureID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to delete picture", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RestorePicture handles POST /pictures/{pictureID}/restore.
func (h *GalleryHandler) RestorePicture(w http.ResponseWriter, r *http.Request) {
	pictureID, err := urlParamUUID(r, "pictureID")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid picture id", h.logger)
		return
	}

	if err := h.pictures.RestorePicture(r.Context(), pictureID); err != nil {
		h.logger.Error("failed to restore picture", "picture_id", pictureID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to restore picture", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// tagRequest is the body of manual tag mutations.
type tagRequest struct {
	Name string `json:"name"`
}

// AddPictureTag handles POST /pictures/{pictureID}/tags. Manual tags always
// carry the user source.
func (h *GalleryHandler) AddPictureTag(w http.ResponseWriter, r *http.Request) {
	pictureID, err := urlParamUUID(r, "pictureID")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid picture id", h.logger)
		return
	}

	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		respondWithError(w, http.StatusBadRequest, "body must contain a non-empty tag name", h.logger)
		return
	}

	tag, created, err := h.ledger.AddLink(r.Context(), pictureID, req.Name, domain.SourceUser)
	if err != nil {
		h.logger.Error("failed to add tag", "picture_id", pictureID, "tag", req.Name, "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to add tag", h.logger)
		return
	}

	code := http.StatusOK
	if created {
		code = http.StatusCreated
	}
	respondWithJSON(w, code, tag, h.logger)
}

// RemovePictureTag handles DELETE /pictures/{pictureID}/tags/{tagName}. Only
// the user-sourced link is removed; detection and exif links survive.
func (h *GalleryHandler) RemovePictureTag(w http.ResponseWriter, r *http.Request) {
	pictureID, err := urlParamUUID(r, "pictureID")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid picture id", h.logger)
		return
	}
	tagName := chi.URLParam(r, "tagName")

	if err := h.ledger.RemoveLink(r.Context(), pictureID, tagName, domain.SourceUser); err != nil {
		h.logger.Error("failed to remove tag", "picture_id", pictureID, "tag", tagName, "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to remove tag", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPictureTags handles GET /pictures/{pictureID}/tags.
func (h *GalleryHandler) GetPictureTags(w http.ResponseWriter, r *http.Request) {
	pictureID, err := urlParamUUID(r, "pictureID")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid picture id", h.logger)
		return
	}

	if source := r.URL.Query().Get("source"); source != "" {
		tags, err := h.ledger.LinksBySource(r.Context(), pictureID, domain.TagSource(source))
		if err != nil {
			if errors.Is(err, usecase.ErrInvalidSource) {
				respondWithError(w, http.StatusBadRequest, "unknown tag source", h.logger)
				return
			}
			h.logger.Error("failed to list tags", "picture_id", pictureID, "error", err)
			respondWithError(w, http.StatusInternalServerError, "failed to list tags", h.logger)
			return
		}
		respondWithJSON(w, http.StatusOK, tags, h.logger)
		return
	}

	grouped, err := h.ledger.TagsBySource(r.Context(), pictureID)
	if err != nil {
		h.logger.Error("failed to list tags", "picture_id", pictureID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to list tags", h.logger)
		return
	}
	respondWithJSON(w, http.StatusOK, grouped, h.logger)
}
