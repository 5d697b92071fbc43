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

// ArtifactHandler generates the shareable outputs: vCard, QR code, printable
// card (PNG/PDF) and per-channel share actions. All of them consume the
// projected public view plus the canonical share URL; none of them records a
// view (artifact downloads are user-initiated after a successful render).
type ArtifactHandler struct {
	public  *PublicHandler
	cards   *services.CardRenderer
	baseURL string
}

func NewArtifactHandler(public *PublicHandler, cards *services.CardRenderer, baseURL string) *ArtifactHandler {
	return &ArtifactHandler{public: public, cards: cards, baseURL: baseURL}
}

// resolveView resolves the public identifier and projects the view the same
// way the page itself does, so artifacts can never expose more than the page.
func (h *ArtifactHandler) resolveView(w http.ResponseWriter, r *http.Request) (*models.PublicProfile, string, bool) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	prof, err := h.public.resolve(ctx, r)
	if err != nil {
		respondResolveError(w, err)
		return nil, "", false
	}

	// Projection honors the owner's stored preset default; the canonical URL
	// only carries a preset the caller asked for explicitly.
	view := h.public.project(ctx, prof, models.ProjectOptions{Preset: effectivePreset(r, prof)})
	url := services.ProfileURL(h.baseURL, prof.PublicID, r.URL.Query().Get("preset"))
	return view, url, true
}

func (h *ArtifactHandler) GetVCard(w http.ResponseWriter, r *http.Request) {
	view, _, ok := h.resolveView(w, r)
	if !ok {
		return
	}
	vcard := services.BuildVCard(view)
	writeAttachment(w, "text/vcard", services.VCardFilename(view), []byte(vcard))
}

func (h *ArtifactHandler) GetQRCode(w http.ResponseWriter, r *http.Request) {
	view, url, ok := h.resolveView(w, r)
	if !ok {
		return
	}

	kind := r.URL.Query().Get("kind")
	png, err := services.EncodeQRPNG(kind, view, url)
	if err != nil {
		if err == services.ErrUnknownQRKind {
			writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Unknown QR kind"))
			return
		}
		log.Printf("[Artifact] qr profile=%s error=%v", view.PublicID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to generate QR code"))
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (h *ArtifactHandler) GetCardPNG(w http.ResponseWriter, r *http.Request) {
	view, url, ok := h.resolveView(w, r)
	if !ok {
		return
	}
	png, err := h.cards.RenderPNG(view, url)
	if err != nil {
		log.Printf("[Artifact] card png profile=%s error=%v", view.PublicID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to generate card image"))
		return
	}
	writeAttachment(w, "image/png", services.CardPNGFilename(view), png)
}

func (h *ArtifactHandler) GetCardPDF(w http.ResponseWriter, r *http.Request) {
	view, url, ok := h.resolveView(w, r)
	if !ok {
		return
	}
	pdf, err := h.cards.RenderPDF(view, url)
	if err != nil {
		log.Printf("[Artifact] card pdf profile=%s error=%v", view.PublicID, err)
		writeJSON(w, http.StatusInternalServerError, models.NewErrorResponse("Failed to generate card PDF"))
		return
	}
	writeAttachment(w, "application/pdf", services.CardPDFFilename(view), pdf)
}

func (h *ArtifactHandler) GetShareAction(w http.ResponseWriter, r *http.Request) {
	view, url, ok := h.resolveView(w, r)
	if !ok {
		return
	}

	action, err := services.BuildShareAction(chi.URLParam(r, "target"), view, url)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, models.NewErrorResponse("Unknown share target"))
		return
	}
	writeJSON(w, http.StatusOK, models.NewSuccessResponse(action))
}
