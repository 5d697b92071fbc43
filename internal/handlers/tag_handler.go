package handlers

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tagcard/backend/internal/middleware"
	"github.com/tagcard/backend/internal/models"
	"github.com/tagcard/backend/internal/services"
)

// TagHandler manages the owner's tags and social links.
type TagHandler struct {
	store services.ProfileStore
}

func NewTagHandler(store services.ProfileStore) *TagHandler {
	return &TagHandler{store: store}
}

func (h *TagHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	tags, err := h.store.ListTags(ctx, userID)
	if err != nil {
		log.Printf("[ListTags] user=%s error=%v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load tags"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(tags))
}

func (h *TagHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	var req models.AddTagRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	errors := map[string]string{}
	if req.Name == "" {
		errors["name"] = "Name is required"
	} else if len(req.Name) > 60 {
		errors["name"] = "Name is too long"
	}
	if req.Kind != "" && req.Kind != models.TagKindLike && req.Kind != models.TagKindDislike {
		errors["kind"] = "Kind must be like or dislike"
	}
	if len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	tag, err := h.store.AddTag(ctx, userID, &req)
	if err != nil {
		if err == services.ErrProfileNotFound {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Profile not found"))
			return
		}
		log.Printf("[AddTag] user=%s error=%v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to add tag"))
		return
	}
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(tag))
}

func (h *TagHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.store.DeleteTag(ctx, userID, chi.URLParam(r, "tagId")); err != nil {
		if err == services.ErrTagNotFound {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Tag not found"))
			return
		}
		log.Printf("[DeleteTag] user=%s error=%v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to delete tag"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"message": "Tag deleted"}))
}

func (h *TagHandler) ListLinks(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	links, err := h.store.ListLinks(ctx, userID)
	if err != nil {
		log.Printf("[ListLinks] user=%s error=%v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load social links"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(links))
}

func (h *TagHandler) AddLink(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	var req models.AddSocialLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Invalid request body"))
		return
	}
	errors := map[string]string{}
	if req.Platform == "" {
		errors["platform"] = "Platform is required"
	}
	if req.URL == "" {
		errors["url"] = "URL is required"
	}
	if len(errors) > 0 {
		writeJSON(w, http.StatusBadRequest, models.NewValidationErrorResponse(errors))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	link, err := h.store.AddLink(ctx, userID, &req)
	if err != nil {
		if err == services.ErrProfileNotFound {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Profile not found"))
			return
		}
		log.Printf("[AddLink] user=%s error=%v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to add social link"))
		return
	}
	writeJSON(w, http.StatusCreated, models.NewSuccessResponse(link))
}

func (h *TagHandler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	if userID == "" {
		writeJSON(w, http.StatusUnauthorized, models.NewErrorResponse("Unauthorized"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	if err := h.store.DeleteLink(ctx, userID, chi.URLParam(r, "linkId")); err != nil {
		if err == services.ErrLinkNotFound {
			writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Social link not found"))
			return
		}
		log.Printf("[DeleteLink] user=%s error=%v", userID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to delete social link"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(map[string]string{"message": "Social link deleted"}))
}
