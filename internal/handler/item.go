package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rmacedo/presenteio/internal/model"
	"github.com/rmacedo/presenteio/internal/view"
)

// Item routes. Every mutation returns a MessageResponse whose message is the
// notice the client shows, with the actor's fresh list view as data.

// HandleCreateItem adds an item to the list; owner only.
//
//	POST /api/lists/{listID}/items
func (h *ListHandler) HandleCreateItem(w http.ResponseWriter, r *http.Request) {
	h.upsertItem(w, r, "", "Item adicionado.")
}

// HandleUpdateItem edits an item's metadata in place; owner only. The claim
// state rides through the edit untouched.
//
//	PUT /api/lists/{listID}/items/{itemID}
func (h *ListHandler) HandleUpdateItem(w http.ResponseWriter, r *http.Request) {
	h.upsertItem(w, r, chi.URLParam(r, "itemID"), "O item foi editado com sucesso.")
}

func (h *ListHandler) upsertItem(w http.ResponseWriter, r *http.Request, itemID, message string) {
	var req model.ItemRequest
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

	list, err := h.lists.UpsertItem(r.Context(), chi.URLParam(r, "listID"), itemID, actor, req)
	if err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if itemID == "" {
		status = http.StatusCreated
	}
	writeJSON(w, status, MessageResponse{
		Message: message,
		Data:    view.Render(list, actor, viewOptions(r)),
	})
}

// HandleRemoveItem deletes an item permanently ("already received"); owner
// only. Removing an item someone else is missing from their view is a no-op
// on their side.
//
//	DELETE /api/lists/{listID}/items/{itemID}
func (h *ListHandler) HandleRemoveItem(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	list, err := h.lists.RemoveItem(r.Context(), chi.URLParam(r, "listID"), chi.URLParam(r, "itemID"), actor)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: "Lista atualizada!",
		Data:    view.Render(list, actor, viewOptions(r)),
	})
}

// HandleClaimItem pledges an available item to the signed-in visitor.
//
//	POST /api/lists/{listID}/items/{itemID}/claim
func (h *ListHandler) HandleClaimItem(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	list, err := h.lists.ClaimItem(r.Context(), chi.URLParam(r, "listID"), chi.URLParam(r, "itemID"), actor)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: "O dono da lista vai adorar a surpresa!",
		Data:    view.Render(list, actor, viewOptions(r)),
	})
}

// HandleUnclaimItem releases the visitor's own pledge.
//
//	POST /api/lists/{listID}/items/{itemID}/unclaim
func (h *ListHandler) HandleUnclaimItem(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	list, err := h.lists.UnclaimItem(r.Context(), chi.URLParam(r, "listID"), chi.URLParam(r, "itemID"), actor)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: "O item está disponível novamente na lista.",
		Data:    view.Render(list, actor, viewOptions(r)),
	})
}

// HandleResetItem is the owner's unconditional claim reset.
//
//	POST /api/lists/{listID}/items/{itemID}/reset
func (h *ListHandler) HandleResetItem(w http.ResponseWriter, r *http.Request) {
	actor, err := h.actor(r)
	if err != nil {
		writeError(w, err)
		return
	}

	list, err := h.lists.ResetItem(r.Context(), chi.URLParam(r, "listID"), chi.URLParam(r, "itemID"), actor)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: "O item está disponível novamente na lista.",
		Data:    view.Render(list, actor, viewOptions(r)),
	})
}
