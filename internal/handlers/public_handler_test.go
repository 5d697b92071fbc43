package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tagcard/backend/internal/models"
	"github.com/tagcard/backend/internal/services"
)

// publicEnvelope mirrors the wire shape of a public profile response.
type publicEnvelope struct {
	Success bool                 `json:"success"`
	Data    models.PublicProfile `json:"data"`
	Error   string               `json:"error"`
}

func strPtr(s string) *string { return &s }

// newPublicRouter wires the anonymous routes over a file-backed store, the
// same way the server does, and seeds one fully populated profile.
func newPublicRouter(t *testing.T) (chi.Router, *services.FileProfileService, *models.Profile) {
	t.Helper()

	store, err := services.NewFileProfileService(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	_, err = store.GetOrCreateProfile(ctx, "owner-1", "jane@example.com")
	require.NoError(t, err)
	prof, err := store.UpsertProfile(ctx, "owner-1", "", &models.UpsertProfileRequest{
		FullName: strPtr("Jane Doe"),
		JobTitle: strPtr("Engineer"),
		Company:  strPtr("Acme"),
		Phone:    strPtr("+1 555 0100"),
		Website:  strPtr("https://jane.example"),
		Location: strPtr("Berlin"),
		ShortBio: strPtr("Builder of things."),
	})
	require.NoError(t, err)

	_, err = store.AddTag(ctx, "owner-1", &models.AddTagRequest{Name: "Coffee", Kind: models.TagKindLike})
	require.NoError(t, err)
	_, err = store.AddTag(ctx, "owner-1", &models.AddTagRequest{Name: "Hiking", Kind: models.TagKindLike})
	require.NoError(t, err)
	_, err = store.AddTag(ctx, "owner-1", &models.AddTagRequest{Name: "Meetings", Kind: models.TagKindDislike})
	require.NoError(t, err)
	_, err = store.AddLink(ctx, "owner-1", &models.AddSocialLinkRequest{Platform: "GitHub", URL: "https://github.com/jane"})
	require.NoError(t, err)

	publicHandler := NewPublicHandler(store, services.NewViewRecorder(store))
	cards := services.NewCardRenderer(services.NewAvatarService(t.TempDir()), "", "")
	artifactHandler := NewArtifactHandler(publicHandler, cards, "https://tagcard.app")

	r := chi.NewRouter()
	r.Route("/p/{publicId}", func(r chi.Router) {
		r.Get("/", publicHandler.GetPublicProfile)
		r.Get("/vcard", artifactHandler.GetVCard)
		r.Get("/qr.png", artifactHandler.GetQRCode)
		r.Get("/card.png", artifactHandler.GetCardPNG)
		r.Get("/card.pdf", artifactHandler.GetCardPDF)
		r.Get("/share/{target}", artifactHandler.GetShareAction)
	})
	return r, store, prof
}

func doGet(t *testing.T, r chi.Router, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestGetPublicProfile(t *testing.T) {
	r, _, prof := newPublicRouter(t)

	w := doGet(t, r, "/p/"+prof.PublicID)
	require.Equal(t, http.StatusOK, w.Code)

	var env publicEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, prof.PublicID, env.Data.PublicID)
	assert.Equal(t, "Jane Doe", env.Data.FullName)
	assert.Equal(t, "Jane Doe", env.Data.DisplayName)
	assert.Equal(t, "Builder of things.", env.Data.Bio)
	assert.Len(t, env.Data.Likes, 2)
	assert.Len(t, env.Data.Dislikes, 1)
	assert.Equal(t, "jane@example.com", env.Data.Email)
	assert.Len(t, env.Data.SocialLinks, 1)
}

func TestGetPublicProfileUnknownID(t *testing.T) {
	r, _, _ := newPublicRouter(t)

	for _, path := range []string{
		"/p/unknown000000",
		"/p/unknown000000/vcard",
		"/p/unknown000000/qr.png",
		"/p/unknown000000/card.png",
		"/p/unknown000000/card.pdf",
		"/p/unknown000000/share/whatsapp",
	} {
		w := doGet(t, r, path)
		assert.Equal(t, http.StatusNotFound, w.Code, path)

		var env publicEnvelope
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
		assert.False(t, env.Success, path)
		assert.Equal(t, "Profile not found", env.Error, path)
	}
}

func TestGetPublicProfileQueryFiltersTags(t *testing.T) {
	r, _, prof := newPublicRouter(t)

	w := doGet(t, r, "/p/"+prof.PublicID+"?q=coff")
	require.Equal(t, http.StatusOK, w.Code)

	var env publicEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	require.Len(t, env.Data.Likes, 1)
	assert.Equal(t, "Coffee", env.Data.Likes[0].Name)
	assert.Empty(t, env.Data.Dislikes)
	// The query never hides bio or contact info.
	assert.Equal(t, "Builder of things.", env.Data.Bio)
	assert.Equal(t, "jane@example.com", env.Data.Email)
}

func TestGetPublicProfilePresetNarrows(t *testing.T) {
	r, _, prof := newPublicRouter(t)

	w := doGet(t, r, "/p/"+prof.PublicID+"?preset=minimal")
	require.Equal(t, http.StatusOK, w.Code)

	var env publicEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Empty(t, env.Data.Email)
	assert.Empty(t, env.Data.Phone)
	assert.Empty(t, env.Data.Website)
	assert.Empty(t, env.Data.SocialLinks)
	// Identity fields stay visible under every preset.
	assert.Equal(t, "Jane Doe", env.Data.FullName)
	assert.Len(t, env.Data.Likes, 2)

	w = doGet(t, r, "/p/"+prof.PublicID+"?preset=work")
	require.Equal(t, http.StatusOK, w.Code)
	env = publicEnvelope{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "jane@example.com", env.Data.Email)
	assert.Empty(t, env.Data.SocialLinks)
}

func TestStoredPresetAppliesWhenURLHasNone(t *testing.T) {
	r, store, prof := newPublicRouter(t)

	_, err := store.UpsertProfile(context.Background(), "owner-1", "", &models.UpsertProfileRequest{
		VisibilityPreset: strPtr(models.PresetMinimal),
	})
	require.NoError(t, err)

	// No ?preset= in the URL: the owner's stored default narrows the view.
	w := doGet(t, r, "/p/"+prof.PublicID)
	require.Equal(t, http.StatusOK, w.Code)

	var env publicEnvelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Empty(t, env.Data.Email)
	assert.Empty(t, env.Data.SocialLinks)

	// An explicit preset in the URL wins over the stored default.
	w = doGet(t, r, "/p/"+prof.PublicID+"?preset=work")
	require.Equal(t, http.StatusOK, w.Code)
	env = publicEnvelope{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "jane@example.com", env.Data.Email)
	assert.Empty(t, env.Data.SocialLinks)

	// Artifacts follow the same default: the vCard drops contact lines too.
	w = doGet(t, r, "/p/"+prof.PublicID+"/vcard")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "EMAIL")
	assert.NotContains(t, w.Body.String(), "TEL:")
}

func TestPageLoadRecordsView(t *testing.T) {
	r, store, prof := newPublicRouter(t)

	w := doGet(t, r, "/p/"+prof.PublicID)
	require.Equal(t, http.StatusOK, w.Code)

	// Recording runs on a detached goroutine; poll until it lands.
	assert.Eventually(t, func() bool {
		p, err := store.ResolveByPublicID(context.Background(), prof.PublicID)
		return err == nil && p.ViewCount == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestArtifactDownloadDoesNotRecordView(t *testing.T) {
	r, store, prof := newPublicRouter(t)

	w := doGet(t, r, "/p/"+prof.PublicID+"/vcard")
	require.Equal(t, http.StatusOK, w.Code)

	time.Sleep(100 * time.Millisecond)
	p, err := store.ResolveByPublicID(context.Background(), prof.PublicID)
	require.NoError(t, err)
	assert.EqualValues(t, 0, p.ViewCount)
}

func TestGetVCard(t *testing.T) {
	r, _, prof := newPublicRouter(t)

	w := doGet(t, r, "/p/"+prof.PublicID+"/vcard")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/vcard", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Jane_Doe.vcf"`, w.Header().Get("Content-Disposition"))

	body := w.Body.String()
	assert.True(t, strings.HasPrefix(body, "BEGIN:VCARD\r\n"))
	assert.Contains(t, body, "FN:Jane Doe\r\n")
	assert.Contains(t, body, "EMAIL:jane@example.com\r\n")
	assert.True(t, strings.HasSuffix(body, "END:VCARD\r\n"))
	assert.NotContains(t, body, "\r\n\r\n", "no blank lines in the vCard body")
}

func TestGetVCardHonorsPreset(t *testing.T) {
	r, _, prof := newPublicRouter(t)

	w := doGet(t, r, "/p/"+prof.PublicID+"/vcard?preset=minimal")
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "EMAIL")
	assert.NotContains(t, w.Body.String(), "TEL")
}

func TestGetQRCode(t *testing.T) {
	r, _, prof := newPublicRouter(t)

	pngMagic := []byte{0x89, 'P', 'N', 'G'}

	w := doGet(t, r, "/p/"+prof.PublicID+"/qr.png")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, pngMagic, w.Body.Bytes()[:4])

	w = doGet(t, r, "/p/"+prof.PublicID+"/qr.png?kind=static")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pngMagic, w.Body.Bytes()[:4])

	w = doGet(t, r, "/p/"+prof.PublicID+"/qr.png?kind=banana")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetCardArtifacts(t *testing.T) {
	r, _, prof := newPublicRouter(t)

	w := doGet(t, r, "/p/"+prof.PublicID+"/card.png")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Jane_Doe_card.png"`, w.Header().Get("Content-Disposition"))

	w = doGet(t, r, "/p/"+prof.PublicID+"/card.pdf")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	body, err := io.ReadAll(w.Body)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(body), "%PDF"))
}

func TestGetShareAction(t *testing.T) {
	r, _, prof := newPublicRouter(t)

	w := doGet(t, r, "/p/"+prof.PublicID+"/share/whatsapp")
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Success bool                 `json:"success"`
		Data    services.ShareAction `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "whatsapp", env.Data.Target)
	assert.Equal(t, services.ShareMethodRedirect, env.Data.Method)
	assert.Contains(t, env.Data.URL, "wa.me")
	assert.Contains(t, env.Data.URL, "tagcard.app")
	assert.Contains(t, env.Data.Message, "Jane Doe")

	w = doGet(t, r, "/p/"+prof.PublicID+"/share/instagram")
	require.Equal(t, http.StatusOK, w.Code)
	env.Data = services.ShareAction{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, services.ShareMethodCopy, env.Data.Method)
	assert.NotEmpty(t, env.Data.Instruction)

	w = doGet(t, r, "/p/"+prof.PublicID+"/share/myspace")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
