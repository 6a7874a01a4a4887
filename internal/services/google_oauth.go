package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/fraudshield/backend/internal/apperr"
	"github.com/fraudshield/backend/internal/config"
	"github.com/fraudshield/backend/internal/dto"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"
	googleUserInfoURL  = "https://www.googleapis.com/oauth2/v2/userinfo"
)

// GoogleProfile is the subset of the Google userinfo payload the backend
// cares about.
type GoogleProfile struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// GoogleAuthenticator resolves an OAuth request into a verified profile.
// Implemented by GoogleVerifier; stubbed in tests.
type GoogleAuthenticator interface {
	Authenticate(ctx context.Context, req *dto.GoogleAuthRequest) (*GoogleProfile, error)
}

type GoogleVerifier struct {
	oauth  *oauth2.Config
	client *http.Client
}

func NewGoogleVerifier(cfg *config.Config) *GoogleVerifier {
	return &GoogleVerifier{
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

// Authenticate accepts any one of: an authorization code (+ redirect URI), an
// ID token, or a Google access token, and returns the verified profile.
func (g *GoogleVerifier) Authenticate(ctx context.Context, req *dto.GoogleAuthRequest) (*GoogleProfile, error) {
	switch {
	case req.Code != "" && req.RedirectURI != "":
		tok, err := g.ExchangeCode(ctx, req.Code)
		if err != nil {
			return nil, apperr.InvalidCredentials()
		}
		return g.FetchUserInfo(ctx, tok.AccessToken)
	case req.IDToken != "":
		return g.VerifyIDToken(ctx, req.IDToken)
	case req.AccessToken != "":
		return g.FetchUserInfo(ctx, req.AccessToken)
	default:
		return nil, apperr.Validation("either code with redirect_uri, id_token, or access_token is required")
	}
}

// VerifyIDToken checks an ID token against Google's tokeninfo endpoint.
func (g *GoogleVerifier) VerifyIDToken(ctx context.Context, idToken string) (*GoogleProfile, error) {
	endpoint := googleTokenInfoURL + "?id_token=" + url.QueryEscape(idToken)
	profile, err := g.fetch(ctx, endpoint)
	if err != nil {
		return nil, apperr.InvalidCredentials()
	}
	// tokeninfo reports the Google account id under "sub"
	if profile.ID == "" {
		return nil, apperr.InvalidCredentials()
	}
	return profile, nil
}

// FetchUserInfo loads the profile behind a Google access token.
func (g *GoogleVerifier) FetchUserInfo(ctx context.Context, accessToken string) (*GoogleProfile, error) {
	endpoint := googleUserInfoURL + "?access_token=" + url.QueryEscape(accessToken)
	profile, err := g.fetch(ctx, endpoint)
	if err != nil {
		return nil, apperr.InvalidCredentials()
	}
	return profile, nil
}

// ExchangeCode trades an authorization code for Google tokens.
func (g *GoogleVerifier) ExchangeCode(ctx context.Context, code string) (*oauth2.Token, error) {
	return g.oauth.Exchange(ctx, code)
}

func (g *GoogleVerifier) fetch(ctx context.Context, endpoint string) (*GoogleProfile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("google request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("google returned status %d", resp.StatusCode)
	}

	var payload struct {
		GoogleProfile
		Sub string `json:"sub"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode google response: %w", err)
	}

	profile := payload.GoogleProfile
	if profile.ID == "" {
		profile.ID = payload.Sub
	}
	return &profile, nil
}
