// Package client is the REST client for the connectors collaborator: event
// schemas, connectors, actions and credential sets are read from it, and
// sequences are persisted through it when the editor is not backed by its
// own store.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sequor-io/sequor/pkg/codec"
	"github.com/sequor-io/sequor/pkg/models"
)

const defaultTimeout = 30 * time.Second

// Client talks to the collaborator API. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// NewClient creates a client rooted at the collaborator's base URL.
func NewClient(logger *slog.Logger, baseURL string, opts ...Option) *Client {
	client := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: defaultTimeout},
		logger:     logger,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Events lists the event descriptors available for trigger binding,
// including their field schemas.
func (c *Client) Events(ctx context.Context) ([]models.EventDescriptor, error) {
	var events []models.EventDescriptor
	if err := c.get(ctx, "/events/", nil, &events); err != nil {
		return nil, err
	}

	return events, nil
}

// Connectors lists the available connectors.
func (c *Client) Connectors(ctx context.Context) ([]models.Connector, error) {
	var connectors []models.Connector
	if err := c.get(ctx, "/connectors/", nil, &connectors); err != nil {
		return nil, err
	}

	return connectors, nil
}

// Actions lists the actions of one connector.
func (c *Client) Actions(ctx context.Context, connectorID string) ([]models.ActionDescriptor, error) {
	var actions []models.ActionDescriptor

	query := url.Values{"connector": []string{connectorID}}
	if err := c.get(ctx, "/actions/", query, &actions); err != nil {
		return nil, err
	}

	return actions, nil
}

// ActionByID fetches a single action descriptor. Implements the action
// catalog consumed by the editing session's validation gate.
func (c *Client) ActionByID(ctx context.Context, actionID string) (*models.ActionDescriptor, error) {
	var action models.ActionDescriptor
	if err := c.get(ctx, "/actions/"+url.PathEscape(actionID)+"/", nil, &action); err != nil {
		return nil, err
	}

	return &action, nil
}

// CredentialSets lists the credential sets usable with an action.
func (c *Client) CredentialSets(ctx context.Context, actionID string) ([]models.CredentialSet, error) {
	var sets []models.CredentialSet
	if err := c.get(ctx, "/actions/"+url.PathEscape(actionID)+"/credential_sets/", nil, &sets); err != nil {
		return nil, err
	}

	return sets, nil
}

// SaveSequence persists a sequence through the collaborator: POST for a new
// document, PUT once it has an identity.
func (c *Client) SaveSequence(ctx context.Context, seq *models.Sequence) (*models.Sequence, error) {
	body, err := codec.Marshal(seq)
	if err != nil {
		return nil, err
	}

	method := http.MethodPost
	path := "/sequences/"

	if seq.ID != "" {
		method = http.MethodPut
		path = "/sequences/" + url.PathEscape(seq.ID) + "/"
	}

	data, err := c.do(ctx, method, path, nil, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	saved, err := codec.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("decoding saved sequence: %w", err)
	}

	return saved, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	data, err := c.do(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}

	return nil
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body io.Reader) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("building %s %s request: %w", method, path, err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("failed to close response body", "error", err)
		}
	}()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading %s %s response: %w", method, path, err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Body:       string(data),
		}
	}

	return data, nil
}

// StatusError is returned for non-2xx collaborator responses.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d", e.Method, e.Path, e.StatusCode)
}
