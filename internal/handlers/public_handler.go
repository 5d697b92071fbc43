package handlers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tagcard/backend/internal/models"
	"github.com/tagcard/backend/internal/services"
)

// PublicHandler serves the anonymous profile page data. Rendering flows one
// direction: public identifier -> record -> projected view; view recording is
// a side channel off the same resolution and never affects the response.
type PublicHandler struct {
	store services.ProfileStore
	views *services.ViewRecorder
}

func NewPublicHandler(store services.ProfileStore, views *services.ViewRecorder) *PublicHandler {
	return &PublicHandler{store: store, views: views}
}

func (h *PublicHandler) GetPublicProfile(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	prof, err := h.resolve(ctx, r)
	if err != nil {
		respondResolveError(w, err)
		return
	}

	// One page load, one view. Owner loads count too.
	h.views.RecordAsync(prof.ID, r.Referer(), r.UserAgent())

	view := h.project(ctx, prof, models.ProjectOptions{
		Query:  r.URL.Query().Get("q"),
		Preset: effectivePreset(r, prof),
	})
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(view))
}

// effectivePreset prefers an explicit ?preset= over the owner's stored
// default. Either way the owner's disclosure booleans still cap the result.
func effectivePreset(r *http.Request, prof *models.Profile) string {
	if p := r.URL.Query().Get("preset"); p != "" {
		return p
	}
	return prof.VisibilityPreset
}

// resolve maps the URL's public identifier to a profile record. Fails closed:
// any miss is ErrProfileNotFound, never a partial match.
func (h *PublicHandler) resolve(ctx context.Context, r *http.Request) (*models.Profile, error) {
	return h.store.ResolveByPublicID(ctx, chi.URLParam(r, "publicId"))
}

// project loads tags and links and applies the visibility rules. Load
// failures on the secondary lists degrade to empty lists rather than failing
// the page.
func (h *PublicHandler) project(ctx context.Context, prof *models.Profile, opts models.ProjectOptions) *models.PublicProfile {
	tags, err := h.store.ListTags(ctx, prof.ID)
	if err != nil {
		log.Printf("[PublicProfile] tags profile=%s error=%v", prof.ID, err)
		tags = nil
	}
	links, err := h.store.ListLinks(ctx, prof.ID)
	if err != nil {
		log.Printf("[PublicProfile] links profile=%s error=%v", prof.ID, err)
		links = nil
	}
	return models.ProjectPublic(prof, tags, links, opts)
}

func respondResolveError(w http.ResponseWriter, err error) {
	if err == services.ErrProfileNotFound {
		writeJSON(w, http.StatusNotFound, models.NewErrorResponse("Profile not found"))
		return
	}
	log.Printf("[PublicProfile] resolve error=%v", err)
	writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to load profile"))
}
