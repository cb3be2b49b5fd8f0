package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/mberzonis/carelink/internal/common"
)

const (
	googleAuthEndpoint   = "https://accounts.google.com/o/oauth2/v2/auth"
	googleTokenEndpoint  = "https://oauth2.googleapis.com/token"
	googleRevokeEndpoint = "https://oauth2.googleapis.com/revoke"

	calendarScope = "https://www.googleapis.com/auth/calendar.events"

	defaultTimeout = 10 * time.Second
)

// GoogleConfig holds the static OAuth client registration for Google.
// Endpoint fields default to the public Google endpoints when empty;
// tests point them at an httptest server.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Timeout      time.Duration

	AuthEndpoint   string
	TokenEndpoint  string
	RevokeEndpoint string
}

// GoogleProvider implements Provider against Google's OAuth2 endpoints.
type GoogleProvider struct {
	cfg    GoogleConfig
	client *http.Client
}

// NewGoogleProvider constructs a GoogleProvider. All network calls use a
// bounded timeout so a hung provider surfaces as a transient failure.
func NewGoogleProvider(cfg GoogleConfig) *GoogleProvider {
	if cfg.AuthEndpoint == "" {
		cfg.AuthEndpoint = googleAuthEndpoint
	}
	if cfg.TokenEndpoint == "" {
		cfg.TokenEndpoint = googleTokenEndpoint
	}
	if cfg.RevokeEndpoint == "" {
		cfg.RevokeEndpoint = googleRevokeEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	return &GoogleProvider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

func (p *GoogleProvider) Name() string {
	return "google"
}

// AuthURL builds the consent URL. access_type=offline and prompt=consent
// make Google return a refresh token on every authorization.
func (p *GoogleProvider) AuthURL(state string) (string, error) {
	if p.cfg.ClientID == "" || p.cfg.RedirectURL == "" {
		return "", common.ErrMissingConfiguration
	}

	q := url.Values{}
	q.Set("client_id", p.cfg.ClientID)
	q.Set("redirect_uri", p.cfg.RedirectURL)
	q.Set("response_type", "code")
	q.Set("scope", calendarScope)
	q.Set("access_type", "offline")
	q.Set("prompt", "consent")
	q.Set("state", state)

	return p.cfg.AuthEndpoint + "?" + q.Encode(), nil
}

// tokenResponse is the provider's token endpoint payload, success or error.
type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	Error        string `json:"error"`
	ErrorDesc    string `json:"error_description"`
}

// Exchange trades an authorization code for a token pair. Codes are
// single-use: any rejection, including a replay, is ErrExchangeFailed.
func (p *GoogleProvider) Exchange(ctx context.Context, code string) (*Grant, error) {
	if p.cfg.ClientID == "" || p.cfg.ClientSecret == "" {
		return nil, common.ErrMissingConfiguration
	}

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("client_id", p.cfg.ClientID)
	form.Set("client_secret", p.cfg.ClientSecret)
	form.Set("redirect_uri", p.cfg.RedirectURL)

	body, status, err := p.postForm(ctx, p.cfg.TokenEndpoint, form)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrExchangeFailed, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: provider returned %q (%d)", common.ErrExchangeFailed, body.Error, status)
	}
	if body.AccessToken == "" {
		return nil, fmt.Errorf("%w: empty access token in response", common.ErrExchangeFailed)
	}

	return &Grant{
		AccessToken:  body.AccessToken,
		RefreshToken: body.RefreshToken,
		ExpiresIn:    time.Duration(body.ExpiresIn) * time.Second,
	}, nil
}

// Refresh mints a new access token. Only an explicit invalid_grant from the
// provider is terminal; everything else (network errors, 5xx, malformed
// payloads) is transient and leaves the stored grant intact.
func (p *GoogleProvider) Refresh(ctx context.Context, refreshToken string) (*Grant, error) {
	if p.cfg.ClientID == "" || p.cfg.ClientSecret == "" {
		return nil, common.ErrMissingConfiguration
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", p.cfg.ClientID)
	form.Set("client_secret", p.cfg.ClientSecret)

	body, status, err := p.postForm(ctx, p.cfg.TokenEndpoint, form)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrRefreshFailed, err)
	}

	switch {
	case status == http.StatusOK:
		if body.AccessToken == "" {
			return nil, fmt.Errorf("%w: empty access token in response", common.ErrRefreshFailed)
		}
		return &Grant{
			AccessToken:  body.AccessToken,
			RefreshToken: body.RefreshToken,
			ExpiresIn:    time.Duration(body.ExpiresIn) * time.Second,
		}, nil
	case body.Error == "invalid_grant":
		return nil, fmt.Errorf("%w: %s", common.ErrGrantRevoked, body.ErrorDesc)
	default:
		return nil, fmt.Errorf("%w: provider returned %q (%d)", common.ErrRefreshFailed, body.Error, status)
	}
}

// Revoke posts the token to the revocation endpoint.
func (p *GoogleProvider) Revoke(ctx context.Context, token string) error {
	form := url.Values{}
	form.Set("token", token)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.RevokeEndpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("revoke endpoint returned %d", resp.StatusCode)
	}
	return nil
}

// postForm sends a form POST and decodes the JSON body. A decode failure on
// a non-2xx response is ignored so the status code still drives
// classification.
func (p *GoogleProvider) postForm(ctx context.Context, endpoint string, form url.Values) (*tokenResponse, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint,
		strings.NewReader(form.Encode()))
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body := &tokenResponse{}
	if err := json.NewDecoder(resp.Body).Decode(body); err != nil && resp.StatusCode == http.StatusOK {
		return nil, 0, fmt.Errorf("decoding token response: %v", err)
	}
	return body, resp.StatusCode, nil
}
