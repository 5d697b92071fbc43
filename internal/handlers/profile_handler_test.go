package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appMiddleware "github.com/tagcard/backend/internal/middleware"
	"github.com/tagcard/backend/internal/models"
	"github.com/tagcard/backend/internal/services"
)

const testJWTSecret = "test-secret"

// newOwnerRouter wires the authenticated owner routes the same way the
// server does, backed by a file store.
func newOwnerRouter(t *testing.T) (chi.Router, *services.FileProfileService) {
	t.Helper()

	store, err := services.NewFileProfileService(t.TempDir())
	require.NoError(t, err)

	avatars := services.NewAvatarService(t.TempDir())
	profileHandler := NewProfileHandler(store, avatars)
	tagHandler := NewTagHandler(store)

	r := chi.NewRouter()
	r.Group(func(r chi.Router) {
		r.Use(appMiddleware.JWTAuth(testJWTSecret))

		r.Route("/api/profile", func(r chi.Router) {
			r.Get("/", profileHandler.GetProfile)
			r.Put("/", profileHandler.UpsertProfile)
			r.Get("/stats", profileHandler.GetStats)

			r.Post("/tags", tagHandler.AddTag)
			r.Get("/tags", tagHandler.ListTags)
			r.Delete("/tags/{tagId}", tagHandler.DeleteTag)
		})

		r.Delete("/api/account", profileHandler.DeleteAccount)
	})
	return r, store
}

func signToken(t *testing.T, userID, email string) string {
	t.Helper()
	claims := jwt.MapClaims{"user_id": userID}
	if email != "" {
		claims["email"] = email
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testJWTSecret))
	require.NoError(t, err)
	return token
}

func doAuth(t *testing.T, r chi.Router, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestOwnerRoutesRequireToken(t *testing.T) {
	r, _ := newOwnerRouter(t)

	w := doAuth(t, r, http.MethodGet, "/api/profile", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Token signed with a different secret is rejected.
	bad, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": "owner-1"}).
		SignedString([]byte("wrong-secret"))
	require.NoError(t, err)
	w = doAuth(t, r, http.MethodGet, "/api/profile", bad, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestGetProfileCreatesOnFirstLoad(t *testing.T) {
	r, _ := newOwnerRouter(t)
	token := signToken(t, "owner-1", "jane@example.com")

	w := doAuth(t, r, http.MethodGet, "/api/profile", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Success bool           `json:"success"`
		Data    models.Profile `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "owner-1", env.Data.ID)
	assert.Len(t, env.Data.PublicID, 12)
	assert.Equal(t, "jane@example.com", env.Data.Email)

	// Same account, same locator on the next load.
	w = doAuth(t, r, http.MethodGet, "/api/profile", token, "")
	first := env.Data.PublicID
	env.Data = models.Profile{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, first, env.Data.PublicID)
}

func TestUpsertProfileValidation(t *testing.T) {
	r, _ := newOwnerRouter(t)
	token := signToken(t, "owner-1", "")

	w := doAuth(t, r, http.MethodPut, "/api/profile", token, `{"full_name":"  "}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var env struct {
		Success bool              `json:"success"`
		Error   string            `json:"error"`
		Errors  map[string]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Contains(t, env.Errors, "full_name")

	w = doAuth(t, r, http.MethodPut, "/api/profile", token, `{"visibility_preset":"stealth"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doAuth(t, r, http.MethodPut, "/api/profile", token, `{"full_name":"Jane Doe","visibility_preset":"work"}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetStatsReflectsViews(t *testing.T) {
	r, store := newOwnerRouter(t)
	token := signToken(t, "owner-1", "")

	w := doAuth(t, r, http.MethodGet, "/api/profile", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, store.RecordView(context.Background(), "owner-1", "", ""))
	require.NoError(t, store.RecordView(context.Background(), "owner-1", "", ""))

	w = doAuth(t, r, http.MethodGet, "/api/profile/stats", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data models.ProfileStats `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.EqualValues(t, 2, env.Data.ViewCount)
	assert.Len(t, env.Data.PublicID, 12)
}

func TestTagRoutes(t *testing.T) {
	r, _ := newOwnerRouter(t)
	token := signToken(t, "owner-1", "")

	w := doAuth(t, r, http.MethodGet, "/api/profile", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	w = doAuth(t, r, http.MethodPost, "/api/profile/tags", token, `{"name":"Coffee","kind":"like"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	var env struct {
		Data models.Tag `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.Equal(t, "Coffee", env.Data.Name)
	assert.Equal(t, models.TagKindLike, env.Data.Kind)

	w = doAuth(t, r, http.MethodPost, "/api/profile/tags", token, `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doAuth(t, r, http.MethodPost, "/api/profile/tags", token, `{"name":"Queues","kind":"maybe"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doAuth(t, r, http.MethodDelete, "/api/profile/tags/"+env.Data.ID, token, "")
	assert.Equal(t, http.StatusOK, w.Code)

	w = doAuth(t, r, http.MethodDelete, "/api/profile/tags/"+env.Data.ID, token, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteAccountEndpoint(t *testing.T) {
	r, store := newOwnerRouter(t)
	token := signToken(t, "owner-1", "")

	w := doAuth(t, r, http.MethodGet, "/api/profile", token, "")
	require.Equal(t, http.StatusOK, w.Code)
	w = doAuth(t, r, http.MethodPost, "/api/profile/tags", token, `{"name":"Coffee"}`)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doAuth(t, r, http.MethodDelete, "/api/account", token, "")
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Data models.AccountDeletionResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.EqualValues(t, 1, env.Data.ProfilesDeleted)
	assert.EqualValues(t, 1, env.Data.TagsDeleted)

	tags, err := store.ListTags(context.Background(), "owner-1")
	require.NoError(t, err)
	assert.Empty(t, tags)
}
