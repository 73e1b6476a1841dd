package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/couchcryptid/french-toast-alert-service/internal/domain"
)

const defaultAccessURL = "https://slack.com/api/oauth.access"

// OAuthClient exchanges an authorization code for an incoming-webhook
// registration via Slack's oauth.access endpoint.
type OAuthClient struct {
	httpClient   *http.Client
	accessURL    string
	clientID     string
	clientSecret string
	redirectURL  string
	logger       *slog.Logger
}

// NewOAuthClient creates an OAuth exchange client.
func NewOAuthClient(clientID, clientSecret, redirectURL string, timeout time.Duration, logger *slog.Logger) *OAuthClient {
	return &OAuthClient{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		accessURL:    defaultAccessURL,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURL:  redirectURL,
		logger:       logger,
	}
}

// accessResponse matches the subset of the oauth.access payload we need.
type accessResponse struct {
	OK              bool   `json:"ok"`
	Error           string `json:"error"`
	TeamID          string `json:"team_id"`
	IncomingWebhook struct {
		ChannelID string `json:"channel_id"`
		URL       string `json:"url"`
	} `json:"incoming_webhook"`
}

// Access trades the authorization code for the team's webhook details.
func (c *OAuthClient) Access(ctx context.Context, code string) (domain.Registration, error) {
	form := url.Values{
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"redirect_uri":  {c.redirectURL},
		"code":          {code},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.accessURL, strings.NewReader(form.Encode()))
	if err != nil {
		return domain.Registration{}, fmt.Errorf("create oauth request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return domain.Registration{}, fmt.Errorf("oauth access request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Registration{}, fmt.Errorf("oauth access: status %d", resp.StatusCode)
	}

	var access accessResponse
	if err := json.NewDecoder(resp.Body).Decode(&access); err != nil {
		return domain.Registration{}, fmt.Errorf("decode oauth response: %w", err)
	}
	if !access.OK {
		return domain.Registration{}, fmt.Errorf("oauth access rejected: %s", access.Error)
	}
	if access.IncomingWebhook.URL == "" {
		return domain.Registration{}, fmt.Errorf("oauth access: no incoming webhook granted")
	}

	return domain.Registration{
		TeamID:     access.TeamID,
		ChannelID:  access.IncomingWebhook.ChannelID,
		WebhookURL: access.IncomingWebhook.URL,
	}, nil
}

// AuthorizeURL builds the Slack authorization redirect for a signed state.
func AuthorizeURL(oauthURL, clientID, redirectURL, state string) string {
	params := url.Values{
		"client_id":    {clientID},
		"redirect_uri": {redirectURL},
		"scope":        {"incoming-webhook"},
		"state":        {state},
	}
	return oauthURL + "?" + params.Encode()
}
