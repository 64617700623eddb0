package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/rs/xid"

	"github.com/rmacedo/presenteio/internal/auth"
	"github.com/rmacedo/presenteio/internal/service"
)

// AuthHandler owns the Google sign-in flow and session management.
//
//	HandleGoogleLogin    → redirect to Google's consent screen
//	HandleGoogleCallback → exchange the code, provision the profile, set JWT
//	HandleLogout         → clear the session cookie
//	HandleMe             → return the signed-in principal's profile
type AuthHandler struct {
	google   *auth.GoogleProvider
	tokens   *auth.TokenService
	profiles *service.ProfileService
	frontend string // where to land after the OAuth dance
	logger   *slog.Logger
}

func NewAuthHandler(
	google *auth.GoogleProvider,
	tokens *auth.TokenService,
	profiles *service.ProfileService,
	frontendURL string,
	logger *slog.Logger,
) *AuthHandler {
	return &AuthHandler{
		google:   google,
		tokens:   tokens,
		profiles: profiles,
		frontend: frontendURL,
		logger:   logger,
	}
}

// HandleGoogleLogin redirects to the consent screen. The random state lands
// in a short-lived cookie and is verified on callback against CSRF.
//
// An optional ?next= query (a client-side route like /ABC-123) survives the
// round trip in its own cookie, so claiming from a list view returns there.
func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := xid.New().String()

	http.SetCookie(w, &http.Cookie{
		Name:     "oauth_state",
		Value:    state,
		Path:     "/",
		MaxAge:   int((5 * time.Minute).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	if next := r.URL.Query().Get("next"); next != "" && next[0] == '/' {
		http.SetCookie(w, &http.Cookie{
			Name:     "auth_next",
			Value:    next,
			Path:     "/",
			MaxAge:   int((5 * time.Minute).Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	http.Redirect(w, r, h.google.AuthURL(state), http.StatusTemporaryRedirect)
}

// HandleGoogleCallback finishes the flow: verify state, exchange the code,
// ensure a profile exists, issue the session cookie, redirect back.
//
// A dismissed consent screen comes back as error=access_denied. That is the
// user changing their mind, not a failure — redirect home silently.
func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		if errParam == "access_denied" {
			http.Redirect(w, r, h.frontend, http.StatusTemporaryRedirect)
			return
		}
		h.logger.Warn("auth callback: provider error", slog.String("error", errParam))
		http.Redirect(w, r, h.frontend+"?auth=failed", http.StatusTemporaryRedirect)
		return
	}

	stateCookie, err := r.Cookie("oauth_state")
	if err != nil || stateCookie.Value == "" || r.URL.Query().Get("state") != stateCookie.Value {
		h.logger.Warn("auth callback: state mismatch")
		http.Redirect(w, r, h.frontend+"?auth=failed", http.StatusTemporaryRedirect)
		return
	}

	// The state cookie is single-use.
	http.SetCookie(w, &http.Cookie{Name: "oauth_state", Value: "", Path: "/", MaxAge: -1})

	gu, err := h.google.Exchange(r.Context(), r.URL.Query().Get("code"))
	if err != nil {
		h.logger.Error("auth callback: exchange failed", slog.String("error", err.Error()))
		http.Redirect(w, r, h.frontend+"?auth=failed", http.StatusTemporaryRedirect)
		return
	}

	profile, err := h.profiles.EnsureProfile(r.Context(), gu)
	if err != nil {
		h.logger.Error("auth callback: profile provisioning failed", slog.String("error", err.Error()))
		http.Redirect(w, r, h.frontend+"?auth=failed", http.StatusTemporaryRedirect)
		return
	}

	token, err := h.tokens.Generate(profile.ID)
	if err != nil {
		h.logger.Error("auth callback: token generation failed", slog.String("error", err.Error()))
		http.Redirect(w, r, h.frontend+"?auth=failed", http.StatusTemporaryRedirect)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(auth.SessionLifetime.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.logger.Info("signed in", slog.String("principal", profile.ID))

	target := h.frontend
	if nextCookie, err := r.Cookie("auth_next"); err == nil && nextCookie.Value != "" {
		target = h.frontend + nextCookie.Value
		http.SetCookie(w, &http.Cookie{Name: "auth_next", Value: "", Path: "/", MaxAge: -1})
	}
	http.Redirect(w, r, target, http.StatusTemporaryRedirect)
}

// HandleLogout clears the session cookie; local session state is gone
// immediately, the token just ages out.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// HandleMe returns the signed-in principal's own profile.
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	principalID, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{
			Error:   "unauthenticated",
			Message: "valid authentication required",
		})
		return
	}

	profile, err := h.profiles.Get(r.Context(), principalID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
