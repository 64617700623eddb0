package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rmacedo/presenteio/internal/auth"
	"github.com/rmacedo/presenteio/internal/claim"
	"github.com/rmacedo/presenteio/internal/model"
	"github.com/rmacedo/presenteio/internal/service"
	"github.com/rmacedo/presenteio/internal/view"
)

// ListHandler exposes the list registry over HTTP.
type ListHandler struct {
	lists    *service.ListService
	profiles *service.ProfileService
	logger   *slog.Logger
}

func NewListHandler(lists *service.ListService, profiles *service.ProfileService, logger *slog.Logger) *ListHandler {
	return &ListHandler{
		lists:    lists,
		profiles: profiles,
		logger:   logger,
	}
}

// resolveActor turns the request's principal (if any) into a claim.Actor.
// Anonymous requests yield the zero actor.
func resolveActor(r *http.Request, profiles *service.ProfileService) (claim.Actor, error) {
	principalID, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		return claim.Actor{}, nil
	}
	return profiles.Actor(r.Context(), principalID)
}

func (h *ListHandler) actor(r *http.Request) (claim.Actor, error) {
	return resolveActor(r, h.profiles)
}

// viewOptions reads the session-local projection state from the query:
// ?category=Roupas&sort=value. Absent params get the defaults.
func viewOptions(r *http.Request) view.Options {
	opts := view.DefaultOptions()
	if c := r.URL.Query().Get("category"); c != "" {
		opts.Category = c
	}
	if s := r.URL.Query().Get("sort"); s != "" {
		opts.Sort = s
	}
	return opts
}

// HandleCreate creates an empty list for the signed-in owner.
//
//	POST /api/lists {"name": "...", "color": "blue"}
func (h *ListHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req model.CreateListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid request body",
		})
		return
	}

	actor, err := h.actor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	list, err := h.lists.Create(r.Context(), actor, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, view.Render(list, actor, viewOptions(r)))
}

// HandleMine returns the signed-in owner's lists, oldest first.
//
//	GET /api/lists
func (h *ListHandler) HandleMine(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	lists, err := h.lists.ListsByOwner(r.Context(), actor.ID)
	if err != nil {
		writeError(w, err)
		return
	}

	views := make([]view.ListView, 0, len(lists))
	for i := range lists {
		views = append(views, view.Render(&lists[i], actor, view.DefaultOptions()))
	}
	writeJSON(w, http.StatusOK, views)
}

// HandleRename changes a list's name; owner only.
//
//	PATCH /api/lists/{listID} {"name": "..."}
func (h *ListHandler) HandleRename(w http.ResponseWriter, r *http.Request) {
	var req model.RenameListRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid request body",
		})
		return
	}

	actor, err := h.actor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	list, err := h.lists.Rename(r.Context(), chi.URLParam(r, "listID"), actor, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view.Render(list, actor, viewOptions(r)))
}

// HandleDelete removes a list irreversibly; owner only.
//
//	DELETE /api/lists/{listID}
func (h *ListHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.lists.Delete(r.Context(), chi.URLParam(r, "listID"), actor); err != nil {
		writeError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleByCode resolves a shareable code to the per-actor list view. The
// route is public: anonymous visitors browse, they just can't claim.
//
//	GET /api/lists/code/{code}?category=Todas&sort=priority
func (h *ListHandler) HandleByCode(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	list, err := h.lists.FindByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, view.Render(list, actor, viewOptions(r)))
}
