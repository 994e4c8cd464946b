// Package linkedin publishes posts and comments through the LinkedIn REST API.
package linkedin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/example/socialcli/internal/config"
	"github.com/example/socialcli/internal/ports/secondary"
)

const (
	// Name is the provider identifier used in records and config.
	Name = "linkedin"

	defaultBaseURL = "https://api.linkedin.com"
	apiVersion     = "2.0.0"
)

// ErrorKind classifies publish failures.
type ErrorKind string

const (
	ErrAuth    ErrorKind = "auth"
	ErrNetwork ErrorKind = "network"
	ErrAPI     ErrorKind = "api"
)

// PublishError describes a failed publish attempt.
type PublishError struct {
	Kind    ErrorKind
	Status  int
	Message string
}

func (e *PublishError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("linkedin %s error (status %d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("linkedin %s error: %s", e.Kind, e.Message)
}

// Provider implements the publisher port against the LinkedIn API.
type Provider struct {
	baseURL     string
	accessToken string
	authorURN   string
	client      *http.Client
}

var _ secondary.Publisher = (*Provider)(nil)

// New builds a provider from credentials.
func New(pc *config.ProviderConfig) (*Provider, error) {
	if pc == nil || pc.AccessToken == "" {
		return nil, &PublishError{Kind: ErrAuth, Message: "no access token configured, run 'socialcli login' first"}
	}
	if pc.TokenExpiry != "" {
		expiry, err := time.Parse(time.RFC3339, pc.TokenExpiry)
		if err != nil {
			return nil, &PublishError{Kind: ErrAuth, Message: fmt.Sprintf("invalid token_expiry %q: %v", pc.TokenExpiry, err)}
		}
		if !expiry.After(time.Now()) {
			return nil, &PublishError{Kind: ErrAuth, Message: "access token expired, run 'socialcli login' again"}
		}
	}
	if pc.AuthorURN == "" {
		return nil, &PublishError{Kind: ErrAuth, Message: "no author URN configured"}
	}
	return &Provider{
		baseURL:     defaultBaseURL,
		accessToken: pc.AccessToken,
		authorURN:   pc.AuthorURN,
		client:      &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Publish creates a UGC post, or a comment when parentExternalID is set.
// It returns the platform identifier of the created entity.
func (p *Provider) Publish(ctx context.Context, content *secondary.Content, parentExternalID string) (string, error) {
	if parentExternalID != "" {
		return p.publishComment(ctx, content, parentExternalID)
	}
	return p.publishPost(ctx, content)
}

func (p *Provider) publishPost(ctx context.Context, content *secondary.Content) (string, error) {
	body := map[string]any{
		"author":         p.authorURN,
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]any{
			"com.linkedin.ugc.ShareContent": map[string]any{
				"shareCommentary": map[string]any{
					"text": renderText(content),
				},
				"shareMediaCategory": "NONE",
			},
		},
		"visibility": map[string]any{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	resp, err := p.doPost(ctx, "/v2/ugcPosts", body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	// The created share URN comes back in a RestLi header.
	urn := resp.Header.Get("X-RestLi-Id")
	if urn == "" {
		var payload struct {
			ID string `json:"id"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&payload); decodeErr == nil {
			urn = payload.ID
		}
	}
	if urn == "" {
		return "", &PublishError{Kind: ErrAPI, Status: resp.StatusCode, Message: "response missing created post identifier"}
	}
	return urn, nil
}

func (p *Provider) publishComment(ctx context.Context, content *secondary.Content, parentURN string) (string, error) {
	body := map[string]any{
		"actor": p.authorURN,
		"message": map[string]any{
			"text": renderText(content),
		},
	}

	path := fmt.Sprintf("/v2/socialActions/%s/comments", url.PathEscape(parentURN))
	resp, err := p.doPost(ctx, path, body)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if err := checkStatus(resp); err != nil {
		return "", err
	}

	var payload struct {
		URN string `json:"$URN"`
		ID  int64  `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", &PublishError{Kind: ErrAPI, Status: resp.StatusCode, Message: "failed to decode comment response"}
	}
	if payload.URN != "" {
		return payload.URN, nil
	}
	return fmt.Sprintf("%d", payload.ID), nil
}

func (p *Provider) doPost(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, &PublishError{Kind: ErrAPI, Message: fmt.Sprintf("failed to encode request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return nil, &PublishError{Kind: ErrAPI, Message: err.Error()}
	}
	req.Header.Set("Authorization", "Bearer "+p.accessToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Restli-Protocol-Version", apiVersion)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, &PublishError{Kind: ErrNetwork, Message: err.Error()}
	}
	return resp, nil
}

func checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	msg := resp.Status
	if data, err := io.ReadAll(io.LimitReader(resp.Body, 4096)); err == nil && len(data) > 0 {
		var apiErr struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Message != "" {
			msg = apiErr.Message
		} else {
			msg = string(data)
		}
	}

	kind := ErrAPI
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		kind = ErrAuth
	}
	return &PublishError{Kind: kind, Status: resp.StatusCode, Message: msg}
}

// renderText folds the resolved content into the share commentary: body text
// followed by hashtags derived from tags.
func renderText(content *secondary.Content) string {
	text := strings.TrimSpace(content.Body)
	if len(content.Tags) > 0 {
		var tags []string
		for _, t := range content.Tags {
			t = strings.TrimSpace(strings.TrimPrefix(t, "#"))
			if t != "" {
				tags = append(tags, "#"+t)
			}
		}
		if len(tags) > 0 {
			text = text + "\n\n" + strings.Join(tags, " ")
		}
	}
	return text
}
