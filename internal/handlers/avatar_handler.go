package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/tagcard/backend/internal/middleware"
	"github.com/tagcard/backend/internal/models"
	"github.com/tagcard/backend/internal/services"
)

// AvatarHandler uploads and removes the owner's avatar. The stored URL is
// kept on the profile record so the public projection and card renderer can
// find it.
type AvatarHandler struct {
	store     services.ProfileStore
	avatars   *services.AvatarService
	maxSizeMB int64
}

func NewAvatarHandler(store services.ProfileStore, avatars *services.AvatarService, maxSizeMB int64) *AvatarHandler {
	return &AvatarHandler{store: store, avatars: avatars, maxSizeMB: maxSizeMB}
}

func (h *AvatarHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxSizeMB*1024*1024)
	if err := r.ParseMultipartForm(h.maxSizeMB * 1024 * 1024); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("File too large or invalid form data"))
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("No avatar file provided"))
		return
	}
	defer file.Close()

	if !isValidImageType(header.Header.Get("Content-Type")) {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid image type. Allowed: JPEG, PNG, GIF, WebP"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	prof, err := h.store.GetOrCreateProfile(ctx, userID, middleware.GetUserEmail(r.Context()))
	if err != nil {
		log.Printf("[UploadAvatar] user=%s error=%v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load profile"))
		return
	}

	response, err := h.avatars.Upload(header.Filename, file)
	if err != nil {
		log.Printf("[UploadAvatar] user=%s error=%v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to upload avatar"))
		return
	}

	if _, err := h.store.UpsertProfile(ctx, userID, "", &models.UpsertProfileRequest{AvatarURL: &response.URL}); err != nil {
		log.Printf("[UploadAvatar] user=%s error=%v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to update profile"))
		return
	}

	// Replace, don't accumulate: drop the previous file best-effort.
	if prof.AvatarURL != "" && prof.AvatarURL != response.URL {
		if err := h.avatars.RemoveByURL(prof.AvatarURL); err != nil {
			log.Printf("[UploadAvatar] user=%s old avatar cleanup error=%v", userID, err)
		}
	}

	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(response))
}

func (h *AvatarHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	prof, err := h.store.GetOrCreateProfile(ctx, userID, middleware.GetUserEmail(r.Context()))
	if err != nil {
		log.Printf("[DeleteAvatar] user=%s error=%v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load profile"))
		return
	}
	if prof.AvatarURL == "" {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("No avatar set"))
		return
	}

	empty := ""
	if _, err := h.store.UpsertProfile(ctx, userID, "", &models.UpsertProfileRequest{AvatarURL: &empty}); err != nil {
		log.Printf("[DeleteAvatar] user=%s error=%v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to update profile"))
		return
	}
	if err := h.avatars.RemoveByURL(prof.AvatarURL); err != nil {
		log.Printf("[DeleteAvatar] user=%s file cleanup error=%v", userID, err)
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"message": "Avatar deleted"}))
}

func isValidImageType(contentType string) bool {
	validTypes := map[string]bool{
		"image/jpeg": true,
		"image/jpg":  true,
		"image/png":  true,
		"image/gif":  true,
		"image/webp": true,
	}
	return validTypes[contentType]
}
