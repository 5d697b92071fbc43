package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/tagcard/backend/internal/middleware"
	"github.com/tagcard/backend/internal/models"
	"github.com/tagcard/backend/internal/services"
)

// ProfileHandler is the owner surface: everything here requires a verified
// bearer token and only ever touches the caller's own profile.
type ProfileHandler struct {
	store   services.ProfileStore
	avatars *services.AvatarService
}

func NewProfileHandler(store services.ProfileStore, avatars *services.AvatarService) *ProfileHandler {
	return &ProfileHandler{store: store, avatars: avatars}
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}
	email := middleware.GetUserEmail(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	prof, err := h.store.GetOrCreateProfile(ctx, userID, email)
	if err != nil {
		log.Printf("[GetProfile] user=%s error=%v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load profile"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(prof))
}

func (h *ProfileHandler) UpsertProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}
	email := middleware.GetUserEmail(r.Context())

	var req models.UpsertProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}

	errors := map[string]string{}
	if req.FullName != nil && strings.TrimSpace(*req.FullName) == "" {
		errors["full_name"] = "Full name cannot be empty"
	}
	if req.VisibilityPreset != nil && *req.VisibilityPreset != "" {
		switch strings.ToLower(*req.VisibilityPreset) {
		case models.PresetMinimal, models.PresetWork, models.PresetFriend, models.PresetPublic:
		default:
			errors["visibility_preset"] = "Unknown visibility preset"
		}
	}
	if len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	prof, err := h.store.UpsertProfile(ctx, userID, email, &req)
	if err != nil {
		log.Printf("[UpsertProfile] user=%s error=%v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to update profile"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(prof))
}

// GetStats returns the owner's dashboard summary: the public locator and the
// denormalized view counter.
func (h *ProfileHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	prof, err := h.store.GetOrCreateProfile(ctx, userID, middleware.GetUserEmail(r.Context()))
	if err != nil {
		log.Printf("[GetStats] user=%s error=%v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load profile"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(models.ProfileStats{
		PublicID:  prof.PublicID,
		ViewCount: prof.ViewCount,
	}))
}

// DeleteAccount removes the profile and everything hanging off it: tags,
// social links, view events and the stored avatar file.
func (h *ProfileHandler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	result, err := h.store.DeleteAccount(ctx, userID)
	if err != nil {
		log.Printf("[DeleteAccount] user=%s error=%v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to delete account"))
		return
	}

	if result.AvatarURL != "" {
		if err := h.avatars.RemoveByURL(result.AvatarURL); err != nil {
			log.Printf("[DeleteAccount] user=%s avatar cleanup error=%v", userID, err)
		}
	}

	writeJSON(w, http.StatusOK, models.NewSuccessResponse(result))
}
