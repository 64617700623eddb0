package handler

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmacedo/presenteio/internal/auth"
	"github.com/rmacedo/presenteio/internal/claim"
	"github.com/rmacedo/presenteio/internal/model"
	"github.com/rmacedo/presenteio/internal/repository/sqlite"
	"github.com/rmacedo/presenteio/internal/service"
	"github.com/rmacedo/presenteio/internal/view"
)

// testEnv runs the real stack end to end: sqlite in memory, the services,
// the handlers and the session middleware, behind a router with the same
// groups as the server wiring.
type testEnv struct {
	router *chi.Mux
	tokens *auth.TokenService
	lists  *service.ListService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	tokens, err := auth.NewTokenService("test-secret-0123456789abcdef")
	require.NoError(t, err)

	listService := service.NewListService(db, nil, logger)
	profileService := service.NewProfileService(db, db, logger)
	listHandler := NewListHandler(listService, profileService, logger)

	ctx := context.Background()
	for _, p := range []*model.Profile{
		{ID: "owner-1", DisplayName: "Ana"},
		{ID: "visitor-1", DisplayName: "Bruno"},
		{ID: "visitor-2", DisplayName: "Carla"},
		{ID: "ghost-1"}, // signed in, never finished the profile
	} {
		require.NoError(t, db.Save(ctx, p))
	}

	router := chi.NewRouter()
	router.Group(func(r chi.Router) {
		r.Use(auth.RequireAuth(tokens))
		r.Post("/api/lists/{listID}/items/{itemID}/claim", listHandler.HandleClaimItem)
		r.Post("/api/lists/{listID}/items/{itemID}/unclaim", listHandler.HandleUnclaimItem)
	})
	router.Group(func(r chi.Router) {
		r.Use(auth.OptionalAuth(tokens))
		r.Get("/api/lists/code/{code}", listHandler.HandleByCode)
	})

	return &testEnv{router: router, tokens: tokens, lists: listService}
}

// seedList creates a list with one available item and returns it.
func (env *testEnv) seedList(t *testing.T) *model.List {
	t.Helper()
	owner := claim.Actor{ID: "owner-1", DisplayName: "Ana"}

	list, err := env.lists.Create(context.Background(), owner, model.CreateListRequest{Name: "Aniversário"})
	require.NoError(t, err)
	list, err = env.lists.UpsertItem(context.Background(), list.ID, "", owner, model.ItemRequest{
		Name:     "Tênis",
		Price:    200,
		Priority: model.PriorityAlta,
	})
	require.NoError(t, err)
	return list
}

// do performs a request, attaching the session cookie for principalID when
// given ("" stays anonymous).
func (env *testEnv) do(t *testing.T, method, target, principalID string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	if principalID != "" {
		token, err := env.tokens.Generate(principalID)
		require.NoError(t, err)
		req.AddCookie(&http.Cookie{Name: auth.CookieName, Value: token})
	}
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeMessage(t *testing.T, rec *httptest.ResponseRecorder) (string, view.ListView) {
	t.Helper()
	var body struct {
		Message string        `json:"message"`
		Data    view.ListView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Message, body.Data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestClaimRoute(t *testing.T) {
	env := newTestEnv(t)
	list := env.seedList(t)
	claimURL := "/api/lists/" + list.ID + "/items/" + list.Items[0].ID + "/claim"

	rec := env.do(t, http.MethodPost, claimURL, "visitor-1")
	require.Equal(t, http.StatusOK, rec.Code)

	message, data := decodeMessage(t, rec)
	assert.Equal(t, "O dono da lista vai adorar a surpresa!", message)
	require.Len(t, data.Items, 1)
	assert.True(t, data.Items[0].Claimed)
	assert.Equal(t, "Bruno", data.Items[0].GiftedBy)
	assert.True(t, data.Items[0].ClaimedByMe)
	assert.True(t, data.Items[0].CanUnclaim)
}

func TestClaimRoute_Guards(t *testing.T) {
	env := newTestEnv(t)
	list := env.seedList(t)
	claimURL := "/api/lists/" + list.ID + "/items/" + list.Items[0].ID + "/claim"

	t.Run("anonymous", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, claimURL, "")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("incomplete profile", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, claimURL, "ghost-1")
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "profile_incomplete", decodeError(t, rec).Error)
	})

	t.Run("owner", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, claimURL, "owner-1")
		require.Equal(t, http.StatusForbidden, rec.Code)
		assert.Equal(t, "permission_denied", decodeError(t, rec).Error)
	})

	t.Run("already claimed", func(t *testing.T) {
		require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, claimURL, "visitor-1").Code)

		rec := env.do(t, http.MethodPost, claimURL, "visitor-2")
		require.Equal(t, http.StatusConflict, rec.Code)
		body := decodeError(t, rec)
		assert.Equal(t, "conflict", body.Error)
		assert.Contains(t, body.Message, "Bruno")
	})
}

func TestUnclaimRoute_OnlyClaimant(t *testing.T) {
	env := newTestEnv(t)
	list := env.seedList(t)
	base := "/api/lists/" + list.ID + "/items/" + list.Items[0].ID

	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, base+"/claim", "visitor-1").Code)

	rec := env.do(t, http.MethodPost, base+"/unclaim", "visitor-2")
	require.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, decodeError(t, rec).Message, "Bruno")

	rec = env.do(t, http.MethodPost, base+"/unclaim", "visitor-1")
	require.Equal(t, http.StatusOK, rec.Code)
	_, data := decodeMessage(t, rec)
	assert.False(t, data.Items[0].Claimed)
}

func TestGetByCodeRoute_AnonymousProjection(t *testing.T) {
	env := newTestEnv(t)
	list := env.seedList(t)
	claimURL := "/api/lists/" + list.ID + "/items/" + list.Items[0].ID + "/claim"
	require.Equal(t, http.StatusOK, env.do(t, http.MethodPost, claimURL, "visitor-1").Code)

	rec := env.do(t, http.MethodGet, "/api/lists/code/"+list.Code, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var data view.ListView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &data))
	require.Len(t, data.Items, 1)
	// Anonymous visitors see the claim but get no affordances.
	assert.True(t, data.Items[0].Claimed)
	assert.Equal(t, "Bruno", data.Items[0].GiftedBy)
	assert.False(t, data.Items[0].CanClaim)
	assert.False(t, data.Items[0].ClaimedByMe)
}
