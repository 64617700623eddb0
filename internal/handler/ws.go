package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rmacedo/presenteio/internal/auth"
	"github.com/rmacedo/presenteio/internal/realtime"
	"github.com/rmacedo/presenteio/internal/service"
)

// WSHandler upgrades a list-view connection into a live subscription: every
// accepted write to the list pushes a fresh per-actor rendering down the
// socket.
type WSHandler struct {
	hub      *realtime.Hub
	lists    *service.ListService
	profiles *service.ProfileService
	logger   *slog.Logger
}

func NewWSHandler(hub *realtime.Hub, lists *service.ListService, profiles *service.ProfileService, logger *slog.Logger) *WSHandler {
	return &WSHandler{
		hub:      hub,
		lists:    lists,
		profiles: profiles,
		logger:   logger,
	}
}

// HandleSubscribe verifies the code resolves to a list, then hands the
// connection to the hub. The actor is resolved once at subscribe time, so
// each subscriber gets projections with their own affordances.
//
//	GET /ws/lists/{code}
func (h *WSHandler) HandleSubscribe(w http.ResponseWriter, r *http.Request) {
	actor, err := resolveActor(r, h.profiles)
	if err != nil {
		writeError(w, err)
		return
	}

	list, err := h.lists.FindByCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.hub.Subscribe(w, r, list.Code, actor); err != nil {
		// Upgrade failures already wrote to the connection.
		h.logger.Warn("websocket subscribe failed",
			slog.String("code", list.Code),
			slog.String("error", err.Error()),
		)
	}
}

// HandleSubscribeMine opens a dashboard subscription: the signed-in owner
// receives a snapshot whenever any of their lists changes or is deleted, so
// the "my lists" page stays live without polling.
//
//	GET /ws/me/lists
func (h *WSHandler) HandleSubscribeMine(w http.ResponseWriter, r *http.Request) {
	principalID, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthenticated",
			Message: "valid authentication required",
		})
		return
	}

	actor, err := resolveActor(r, h.profiles)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.hub.SubscribeOwner(w, r, principalID, actor); err != nil {
		h.logger.Warn("websocket subscribe failed",
			slog.String("owner", principalID),
			slog.String("error", err.Error()),
		)
	}
}
