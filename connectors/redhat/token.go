package redhat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	// tokenSafetyMargin is shaved off the reported lifetime so a token is
	// never presented right at its expiry edge.
	tokenSafetyMargin = 60 * time.Second

	// defaultExpiresIn applies when the token endpoint omits expires_in.
	defaultExpiresIn = 900
)

// tokenProvider caches the OAuth2 client-credentials bearer token and redoes
// the exchange once the cached expiry passes. It is owned by the Client; there
// is no package-level token state.
type tokenProvider struct {
	authURL      string
	clientID     string
	clientSecret string
	httpClient   *http.Client

	token       string
	tokenExpiry time.Time
	now         func() time.Time
}

func newTokenProvider(authURL, clientID, clientSecret string, httpClient *http.Client) *tokenProvider {
	return &tokenProvider{
		authURL:      authURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		httpClient:   httpClient,
		now:          time.Now,
	}
}

// tokenResponse represents the OAuth2 token response from Red Hat SSO
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
	TokenType   string `json:"token_type"`
}

// acquire returns the cached token while it is still valid and performs the
// client-credentials exchange otherwise.
func (p *tokenProvider) acquire(ctx context.Context) (string, error) {
	// Skip if token is still valid
	if p.token != "" && p.now().Before(p.tokenExpiry) {
		return p.token, nil
	}

	form := url.Values{
		"grant_type":    {"client_credentials"},
		"client_id":     {p.clientID},
		"client_secret": {p.clientSecret},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", &AuthError{Err: fmt.Errorf("create auth request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", &AuthError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", &AuthError{Status: resp.StatusCode, Err: fmt.Errorf("token endpoint: %s", string(body))}
	}

	var tokenResp tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", &AuthError{Err: fmt.Errorf("decode token response: %w", err)}
	}
	if tokenResp.AccessToken == "" {
		return "", &AuthError{Err: fmt.Errorf("token response missing access_token")}
	}

	expiresIn := tokenResp.ExpiresIn
	if expiresIn == 0 {
		expiresIn = defaultExpiresIn
	}
	p.token = tokenResp.AccessToken
	p.tokenExpiry = p.now().Add(time.Duration(expiresIn)*time.Second - tokenSafetyMargin)
	return p.token, nil
}
