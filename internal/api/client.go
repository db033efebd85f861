// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package api is a thin client for the HackMD REST API. Commands map
// one-to-one onto endpoints; the only status handling callers rely on is
// the 200 / 401 / other trichotomy carried by RemoteError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/pdiddy/hackmd-cli/internal/httputil"
	"github.com/pdiddy/hackmd-cli/internal/profile"
	"github.com/pdiddy/hackmd-cli/pkg/types"
)

// RemoteError is a non-2xx response from the API, carrying the status code
// and response body for user-facing reporting.
type RemoteError struct {
	Status int
	Body   string
}

// Error renders the status and, when present, the response body.
func (e *RemoteError) Error() string {
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("API returned HTTP %d", e.Status)
	}
	return fmt.Sprintf("API returned HTTP %d: %s", e.Status, strings.TrimSpace(e.Body))
}

// Unauthorized reports whether the error is an HTTP 401.
func (e *RemoteError) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized
}

// Client performs authenticated requests against one HackMD credential.
type Client struct {
	baseURL   string
	token     string
	userAgent string
	http      *http.Client
}

// NewClient builds a Client from a resolved credential and HTTP settings.
func NewClient(cred profile.Credential, cfg types.ClientConfig) *Client {
	cfg = cfg.WithDefaults()
	baseURL := cred.APIBaseURL
	if baseURL == "" {
		baseURL = profile.DefaultBaseURL
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     cred.APIToken,
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: cfg.Timeout},
	}
}

// Me returns the authenticated account from GET /me.
func (c *Client) Me(ctx context.Context) (*types.User, error) {
	var user types.User
	if err := c.getJSON(ctx, "/me", &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// Teams returns the caller's teams from GET /teams.
func (c *Client) Teams(ctx context.Context) ([]types.Team, error) {
	var teams []types.Team
	if err := c.getJSON(ctx, "/teams", &teams); err != nil {
		return nil, err
	}
	return teams, nil
}

// Notes returns the caller's notes from GET /notes. List responses carry
// metadata only, no content.
func (c *Client) Notes(ctx context.Context) ([]types.Note, error) {
	var notes []types.Note
	if err := c.getJSON(ctx, "/notes", &notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// CreateNote creates a note via POST /notes and returns the created record.
// The API answers 201 on success; 200 is accepted as well.
func (c *Client) CreateNote(ctx context.Context, title, content string) (*types.Note, error) {
	payload, err := json.Marshal(map[string]string{
		"title":   title,
		"content": content,
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling note: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/notes", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, remoteError(resp)
	}

	var note types.Note
	if err := json.NewDecoder(resp.Body).Decode(&note); err != nil {
		return nil, fmt.Errorf("parsing create response: %w", err)
	}
	return &note, nil
}

// Note fetches a single note via GET /notes/{id}. A non-JSON body is
// tolerated and treated as the raw note content.
func (c *Client) Note(ctx context.Context, id string) (*types.Note, error) {
	resp, err := c.do(ctx, http.MethodGet, "/notes/"+id, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, remoteError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading note response: %w", err)
	}

	var note types.Note
	if err := json.Unmarshal(body, &note); err != nil {
		return &types.Note{ID: id, Content: string(body)}, nil
	}
	return &note, nil
}

// getJSON performs a GET and decodes a JSON body into out.
func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	resp, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return remoteError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("parsing %s response: %w", path, err)
	}
	return nil
}

// do issues one authenticated request, retrying on 429.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.Debug().Str("method", method).Str("path", path).Msg("API request")

	resp, err := httputil.DoWithRetry(ctx, c.http, req, 0)
	if err != nil {
		return nil, fmt.Errorf("API request %s %s: %w", method, path, err)
	}
	return resp, nil
}

// remoteError drains the response into a RemoteError. The caller's deferred
// Close still runs; reading here is safe because the body is consumed once.
func remoteError(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)
	return &RemoteError{Status: resp.StatusCode, Body: string(body)}
}
