// Package api talks to the remote nutrition service over HTTP+JSON.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Service is the remote surface the sync core consumes. Implemented by
// *Client; fakes implement it in tests.
type Service interface {
	EnsureIdentity(ctx context.Context) error
	ListEntries(ctx context.Context, date string) (EntriesResponse, error)
	GetSummary(ctx context.Context, date string) (SummaryResponse, error)
	GetSettings(ctx context.Context) (SettingsResponse, error)
	CreateEntry(ctx context.Context, req CreateEntryRequest) (CreateEntryResponse, error)
	DeleteEntryItem(ctx context.Context, itemID string) error
	PatchEntryItem(ctx context.Context, itemID string, req PatchItemRequest) (*EntryItem, error)
	UpsertTargets(ctx context.Context, req TargetsRequest) error
	UpsertSettings(ctx context.Context, req SettingsRequest) error
}

// Ensure Client implements Service at compile time.
var _ Service = (*Client)(nil)

// Client talks to the nutrition service HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	authToken string
	userAgent string
}

const (
	defaultUserAgent = "nosh/0.1"
	requestTimeout   = 15 * time.Second
)

// NewClient builds a Client for the given base URL. An empty token disables
// the Authorization header.
func NewClient(baseURL, authToken string) (*Client, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		authToken: authToken,
		userAgent: defaultUserAgent,
	}, nil
}

// EnsureIdentity creates the server-side profile when missing. Idempotent.
func (c *Client) EnsureIdentity(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.do(ctx, http.MethodPost, "/api/identity/ensure", nil, nil)
}

// ListEntries retrieves the meal entries and their items for one date.
func (c *Client) ListEntries(ctx context.Context, date string) (EntriesResponse, error) {
	if c == nil {
		return EntriesResponse{}, fmt.Errorf("client is nil")
	}
	rel := &url.URL{Path: "/api/entries", RawQuery: dateQuery(date)}
	var payload EntriesResponse
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return EntriesResponse{}, err
	}
	return payload, nil
}

// GetSummary retrieves the server-side day summary, including per-date
// targets and the settings snapshot.
func (c *Client) GetSummary(ctx context.Context, date string) (SummaryResponse, error) {
	if c == nil {
		return SummaryResponse{}, fmt.Errorf("client is nil")
	}
	rel := &url.URL{Path: "/api/summary", RawQuery: dateQuery(date)}
	var payload SummaryResponse
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return SummaryResponse{}, err
	}
	return payload, nil
}

// GetSettings retrieves the global nutrition settings.
func (c *Client) GetSettings(ctx context.Context) (SettingsResponse, error) {
	if c == nil {
		return SettingsResponse{}, fmt.Errorf("client is nil")
	}
	var payload SettingsResponse
	if err := c.do(ctx, http.MethodGet, "/api/settings", nil, &payload); err != nil {
		return SettingsResponse{}, err
	}
	return payload, nil
}

// CreateEntry creates a meal entry with its items and returns the
// server-assigned identifiers.
func (c *Client) CreateEntry(ctx context.Context, req CreateEntryRequest) (CreateEntryResponse, error) {
	if c == nil {
		return CreateEntryResponse{}, fmt.Errorf("client is nil")
	}
	var payload CreateEntryResponse
	if err := c.do(ctx, http.MethodPost, "/api/entries", req, &payload); err != nil {
		return CreateEntryResponse{}, err
	}
	return payload, nil
}

// DeleteEntryItem removes a single logged item.
func (c *Client) DeleteEntryItem(ctx context.Context, itemID string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(itemID) == "" {
		return fmt.Errorf("item id required")
	}
	rel := &url.URL{Path: "/api/entry-items/" + itemID}
	return c.doURL(ctx, http.MethodDelete, rel, nil, nil)
}

// PatchEntryItem updates fields on a logged item. Returns nil when the item
// no longer exists server-side.
func (c *Client) PatchEntryItem(ctx context.Context, itemID string, req PatchItemRequest) (*EntryItem, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	if strings.TrimSpace(itemID) == "" {
		return nil, fmt.Errorf("item id required")
	}
	rel := &url.URL{Path: "/api/entry-items/" + itemID}
	var payload struct {
		Item *EntryItem `json:"item"`
	}
	if err := c.doURL(ctx, http.MethodPatch, rel, req, &payload); err != nil {
		return nil, err
	}
	return payload.Item, nil
}

// UpsertTargets writes the per-date goal overrides.
func (c *Client) UpsertTargets(ctx context.Context, req TargetsRequest) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.do(ctx, http.MethodPut, "/api/targets", req, nil)
}

// UpsertSettings writes the global goal settings.
func (c *Client) UpsertSettings(ctx context.Context, req SettingsRequest) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.do(ctx, http.MethodPut, "/api/settings", req, nil)
}

func dateQuery(date string) string {
	values := url.Values{}
	values.Set("date", strings.TrimSpace(date))
	return values.Encode()
}

func (c *Client) do(ctx context.Context, method, path string, body, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, body, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.authToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("api %s returned status %d", rel.String(), resp.StatusCode)
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("api base url required")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_base %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
