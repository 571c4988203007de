package handler

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/GoArmGo/GalleryApp/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// createGalleryRequest is the body of POST /galleries.
type createGalleryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	GalleryType string `json:"gallery_type"`
}

// CreateGallery handles POST /galleries. Galleries created through this
// endpoint belong to the system user until real authentication fills in an
// owner.
func (h *GalleryHandler) CreateGallery(w http.ResponseWriter, r *http.Request) {
	var req createGalleryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		respondWithError(w, http.StatusBadRequest, "body must contain a non-empty gallery name", h.logger)
		return
	}

	galleryType := domain.GalleryType(req.GalleryType)
	if req.GalleryType == "" {
		galleryType = domain.GalleryPrivate
	}
	if galleryType != domain.GalleryPrivate && galleryType != domain.GalleryPublic {
		respondWithError(w, http.StatusBadRequest, "gallery_type must be private or public", h.logger)
		return
	}

	ownerID, err := h.users.GetOrCreateSystemUser(r.Context())
	if err != nil {
		h.logger.Error("failed to resolve system user", "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to create gallery", h.logger)
		return
	}

	now := time.Now()
	gallery := &domain.Gallery{
		ID:          uuid.New(),
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		GalleryType: galleryType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := h.galleries.CreateGallery(r.Context(), gallery); err != nil {
		h.logger.Error("failed to create gallery", "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to create gallery", h.logger)
		return
	}

	respondWithJSON(w, http.StatusCreated, gallery, h.logger)
}

// createAlbumRequest is the body of POST /galleries/{galleryID}/albums.
type createAlbumRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CreateAlbum handles POST /galleries/{galleryID}/albums.
func (h *GalleryHandler) CreateAlbum(w http.ResponseWriter, r *http.Request) {
	galleryID, err := urlParamUUID(r, "galleryID")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid gallery id", h.logger)
		return
	}

	var req createAlbumRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		respondWithError(w, http.StatusBadRequest, "body must contain a non-empty album name", h.logger)
		return
	}

	gallery, err := h.galleries.GetGalleryByID(r.Context(), galleryID)
	if err != nil {
		h.logger.Error("failed to load gallery", "gallery_id", galleryID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to create album", h.logger)
		return
	}
	if gallery == nil || gallery.IsDeleted() {
		respondWithError(w, http.StatusNotFound, "gallery not found", h.logger)
		return
	}

	now := time.Now()
	album := &domain.Album{
		ID:           uuid.New(),
		GalleryID:    galleryID,
		Name:         strings.TrimSpace(req.Name),
		Description:  req.Description,
		EXIFMetadata: domain.JSONMap{},
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := h.albums.CreateAlbum(r.Context(), album); err != nil {
		h.logger.Error("failed to create album", "gallery_id", galleryID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to create album", h.logger)
		return
	}

	respondWithJSON(w, http.StatusCreated, album, h.logger)
}

// shareRequest is the body of POST /galleries/{galleryID}/shares.
type shareRequest struct {
	UserID  uuid.UUID `json:"user_id"`
	CanEdit bool      `json:"can_edit"`
}

// ShareGallery handles POST /galleries/{galleryID}/shares. Re-sharing with
// the same user updates the edit permission.
func (h *GalleryHandler) ShareGallery(w http.ResponseWriter, r *http.Request) {
	galleryID, err := urlParamUUID(r, "galleryID")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid gallery id", h.logger)
		return
	}

	var req shareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.UserID == uuid.Nil {
		respondWithError(w, http.StatusBadRequest, "body must contain a user_id", h.logger)
		return
	}

	gallery, err := h.galleries.GetGalleryByID(r.Context(), galleryID)
	if err != nil {
		h.logger.Error("failed to load gallery", "gallery_id", galleryID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to share gallery", h.logger)
		return
	}
	if gallery == nil || gallery.IsDeleted() {
		respondWithError(w, http.StatusNotFound, "gallery not found", h.logger)
		return
	}

	if err := h.galleries.ShareGallery(r.Context(), galleryID, req.UserID, req.CanEdit); err != nil {
		h.logger.Error("failed to share gallery", "gallery_id", galleryID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to share gallery", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// UnshareGallery handles DELETE /galleries/{galleryID}/shares/{userID}.
func (h *GalleryHandler) UnshareGallery(w http.ResponseWriter, r *http.Request) {
	galleryID, err := urlParamUUID(r, "galleryID")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid gallery id", h.logger)
		return
	}
	userID, err := urlParamUUID(r, "userID")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid user id", h.logger)
		return
	}

	if err := h.galleries.UnshareGallery(r.Context(), galleryID, userID); err != nil {
		h.logger.Error("failed to unshare gallery", "gallery_id", galleryID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to unshare gallery", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddGalleryTag handles POST /galleries/{galleryID}/tags.
func (h *GalleryHandler) AddGalleryTag(w http.ResponseWriter, r *http.Request) {
	galleryID, err := urlParamUUID(r, "galleryID")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid gallery id", h.logger)
		return
	}

	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		respondWithError(w, http.StatusBadRequest, "body must contain a non-empty tag name", h.logger)
		return
	}

	if err := h.galleries.AddTag(r.Context(), galleryID, req.Name); err != nil {
		h.logger.Error("failed to tag gallery", "gallery_id", galleryID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to tag gallery", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveGalleryTag handles DELETE /galleries/{galleryID}/tags/{tagName}.
func (h *GalleryHandler) RemoveGalleryTag(w http.ResponseWriter, r *http.Request) {
	galleryID, err := urlParamUUID(r, "galleryID")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid gallery id", h.logger)
		return
	}

	if err := h.galleries.RemoveTag(r.Context(), galleryID, chi.URLParam(r, "tagName")); err != nil {
		h.logger.Error("failed to untag gallery", "gallery_id", galleryID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to untag gallery", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddAlbumTag handles POST /albums/{albumID}/tags.
func (h *GalleryHandler) AddAlbumTag(w http.ResponseWriter, r *http.Request) {
	albumID, err := urlParamUUID(r, "albumID")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid album id", h.logger)
		return
	}

	var req tagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Name) == "" {
		respondWithError(w, http.StatusBadRequest, "body must contain a non-empty tag name", h.logger)
		return
	}

	if err := h.albums.AddTag(r.Context(), albumID, req.Name); err != nil {
		h.logger.Error("failed to tag album", "album_id", albumID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to tag album", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RemoveAlbumTag handles DELETE /albums/{albumID}/tags/{tagName}.
func (h *GalleryHandler) RemoveAlbumTag(w http.ResponseWriter, r *http.Request) {
	albumID, err := urlParamUUID(r, "albumID")
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid album id", h.logger)
		return
	}

	if err := h.albums.RemoveTag(r.Context(), albumID, chi.URLParam(r, "tagName")); err != nil {
		h.logger.Error("failed to untag album", "album_id", albumID, "error", err)
		respondWithError(w, http.StatusInternalServerError, "failed to untag album", h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
