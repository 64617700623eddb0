package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// GoogleUser is the slice of Google's userinfo response we care about.
// Name or Picture may be empty when the account hides them; a missing name
// leaves the provisioned profile incomplete until the user fills one in.
type GoogleUser struct {
	ID      string `json:"id"`      // stable subject identifier
	Name    string `json:"name"`    // display name, may be empty
	Email   string `json:"email"`   // primary email
	Picture string `json:"picture"` // avatar URL
}

const userinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// GoogleProvider wraps golang.org/x/oauth2 for the Google authorization-code
// flow. The client secret never leaves the server: the code-for-token
// exchange is a server-to-server call.
type GoogleProvider struct {
	config *oauth2.Config
}

// NewGoogleProvider creates a provider with credentials from the Google
// Cloud console. callbackURL must exactly match a registered redirect URI.
func NewGoogleProvider(clientID, clientSecret, callbackURL string) *GoogleProvider {
	return &GoogleProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  callbackURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.profile",
				"https://www.googleapis.com/auth/userinfo.email",
			},
			Endpoint: google.Endpoint,
		},
	}
}

// AuthURL returns the consent-screen URL for the given anti-CSRF state.
// The caller stores the state in a short-lived cookie and verifies it on
// callback.
func (p *GoogleProvider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for the user's Google profile.
func (p *GoogleProvider) Exchange(ctx context.Context, codeParam string) (*GoogleUser, error) {
	oauthToken, err := p.config.Exchange(ctx, codeParam)
	if err != nil {
		return nil, fmt.Errorf("auth: exchanging OAuth code: %w", err)
	}

	// oauth2.Config.Client returns an *http.Client that attaches the bearer
	// token to every request.
	client := p.config.Client(ctx, oauthToken)

	resp, err := client.Get(userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("auth: calling Google userinfo API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("auth: Google userinfo API returned status %d", resp.StatusCode)
	}

	var gu GoogleUser
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return nil, fmt.Errorf("auth: decoding Google userinfo response: %w", err)
	}
	if gu.ID == "" {
		return nil, fmt.Errorf("auth: Google returned an invalid user (empty id)")
	}

	return &gu, nil
}
