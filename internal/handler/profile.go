package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rmacedo/presenteio/internal/auth"
	"github.com/rmacedo/presenteio/internal/model"
	"github.com/rmacedo/presenteio/internal/service"
)

// ProfileHandler exposes profiles: publicly readable, writable only by
// their principal.
type ProfileHandler struct {
	profiles *service.ProfileService
	logger   *slog.Logger
}

func NewProfileHandler(profiles *service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, logger: logger}
}

// HandleGet returns any profile by principal id. Visitors open a list
// owner's profile to check sizes and preferences before picking a gift.
//
//	GET /api/profiles/{profileID}
func (h *ProfileHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	profile, err := h.profiles.Get(r.Context(), chi.URLParam(r, "profileID"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// HandleUpdate saves the signed-in principal's own profile. A display name
// change fans out to the ownerName on every owned list.
//
//	PUT /api/me/profile
func (h *ProfileHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	principalID, _ := auth.PrincipalFromContext(r.Context())

	var req model.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   "validation_error",
			Message: "invalid request body",
		})
		return
	}

	profile, err := h.profiles.Update(r.Context(), principalID, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message: "Dados salvos com sucesso.",
		Data:    profile,
	})
}
