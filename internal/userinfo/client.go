// Package userinfo fetches the authenticated user's profile from the
// external system's identity endpoint.
package userinfo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"idbridge/internal/platform/metrics"
	dErrors "idbridge/pkg/domain-errors"
)

// UserProfile is the normalized identity response.
type UserProfile struct {
	ID                string `json:"id"`
	GivenName         string `json:"given_name"`
	FamilyName        string `json:"family_name"`
	DisplayName       string `json:"display_name"`
	Email             string `json:"email"`
	ProfileURI        string `json:"profile_uri"`
	PreferredUsername string `json:"preferred_username"`
	Locale            string `json:"locale"`
}

// identityResponse is the subset of the userinfo document we read.
type identityResponse struct {
	UserID            string `json:"user_id"`
	GivenName         string `json:"given_name"`
	FamilyName        string `json:"family_name"`
	Name              string `json:"name"`
	Email             string `json:"email"`
	Profile           string `json:"profile"`
	PreferredUsername string `json:"preferred_username"`
	Locale            string `json:"locale"`
}

const maxBodyBytes = 1 << 20

// Client calls the identity endpoint once per request. It does not retry
// and sets no timeout of its own; the caller's context bounds the call.
type Client struct {
	endpoint string
	base     *http.Client
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Client)

// WithHTTPClient sets the transport the bearer client wraps.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.base = c
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		cl.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(cl *Client) {
		cl.metrics = m
	}
}

func NewClient(endpoint string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(endpoint) == "" {
		return nil, errors.New("identity endpoint is required")
	}
	c := &Client{
		endpoint: endpoint,
		base:     http.DefaultClient,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchUserProfile exchanges a session token for the user's profile.
//
// Errors: CodeInvalidSession for a blank token; CodeUnexpectedResponse for a
// non-2xx status, an unreadable body or a missing user_id. Transport errors
// are returned as they come from the HTTP client.
func (c *Client) FetchUserProfile(ctx context.Context, sessionToken string) (*UserProfile, error) {
	if strings.TrimSpace(sessionToken) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidSession, "session token is missing")
	}
	defer c.metrics.ObserveUserInfo(time.Now())

	source := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: sessionToken, TokenType: "Bearer"})
	httpClient := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, c.base), source)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build identity request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WarnContext(ctx, "identity endpoint rejected request", "status", resp.StatusCode)
		return nil, dErrors.New(dErrors.CodeUnexpectedResponse,
			fmt.Sprintf("identity endpoint returned status %d", resp.StatusCode))
	}

	var body identityResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnexpectedResponse, "identity response is not valid JSON")
	}
	if body.UserID == "" {
		return nil, dErrors.New(dErrors.CodeUnexpectedResponse, "identity response has no user_id")
	}

	return &UserProfile{
		ID:                body.UserID,
		GivenName:         body.GivenName,
		FamilyName:        body.FamilyName,
		DisplayName:       body.Name,
		Email:             body.Email,
		ProfileURI:        body.Profile,
		PreferredUsername: body.PreferredUsername,
		Locale:            body.Locale,
	}, nil
}
