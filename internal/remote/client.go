package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Controller defines the remote operations on a running showreel.
// This interface is implemented by *Client and can be used for testing.
type Controller interface {
	Health(ctx context.Context) error
	FetchStatus(ctx context.Context) (*StatusResponse, error)
	FetchPlaylist(ctx context.Context) (*PlaylistResponse, error)
	TogglePlay(ctx context.Context) (*StatusResponse, error)
	ToggleMute(ctx context.Context) (*StatusResponse, error)
	Seek(ctx context.Context, fraction float64) (*StatusResponse, error)
	SeekBy(ctx context.Context, delta float64) (*StatusResponse, error)
	SelectTrack(ctx context.Context, index int) (*StatusResponse, error)
}

// Ensure Client implements Controller at compile time.
var _ Controller = (*Client)(nil)

// APIError is returned for responses with an error status.
type APIError struct {
	Path    string
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api %s returned status %d", e.Path, e.Status)
	}
	return fmt.Sprintf("api %s returned status %d: %s", e.Path, e.Status, e.Message)
}

// Client talks to the showreel HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultAPIBind   = "127.0.0.1:7480"
	defaultUserAgent = "showreel/0.1"
	requestTimeout   = 5 * time.Second
)

// NewClient builds a Client using the provided apiBind host:port value.
func NewClient(apiBind string) (*Client, error) {
	base, err := parseBaseURL(apiBind)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// Health checks that the API answers.
func (c *Client) Health(ctx context.Context) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	return c.do(ctx, http.MethodGet, "/api/health", nil)
}

// FetchStatus retrieves the current player status.
func (c *Client) FetchStatus(ctx context.Context) (*StatusResponse, error) {
	return c.status(ctx, http.MethodGet, &url.URL{Path: "/api/status"})
}

// FetchPlaylist retrieves the playlist with the active track marked.
func (c *Client) FetchPlaylist(ctx context.Context) (*PlaylistResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload PlaylistResponse
	if err := c.do(ctx, http.MethodGet, "/api/playlist", &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// TogglePlay plays or pauses the active track.
func (c *Client) TogglePlay(ctx context.Context) (*StatusResponse, error) {
	return c.status(ctx, http.MethodPost, &url.URL{Path: "/api/play"})
}

// ToggleMute flips the mute state.
func (c *Client) ToggleMute(ctx context.Context) (*StatusResponse, error) {
	return c.status(ctx, http.MethodPost, &url.URL{Path: "/api/mute"})
}

// Seek moves to fraction of the active track's duration.
func (c *Client) Seek(ctx context.Context, fraction float64) (*StatusResponse, error) {
	values := url.Values{}
	values.Set("fraction", strconv.FormatFloat(fraction, 'f', -1, 64))
	return c.status(ctx, http.MethodPost, &url.URL{Path: "/api/seek", RawQuery: values.Encode()})
}

// SeekBy moves the position by delta seconds.
func (c *Client) SeekBy(ctx context.Context, delta float64) (*StatusResponse, error) {
	values := url.Values{}
	values.Set("delta", strconv.FormatFloat(delta, 'f', -1, 64))
	return c.status(ctx, http.MethodPost, &url.URL{Path: "/api/seek", RawQuery: values.Encode()})
}

// SelectTrack switches to the zero-based track index.
func (c *Client) SelectTrack(ctx context.Context, index int) (*StatusResponse, error) {
	return c.status(ctx, http.MethodPost, &url.URL{Path: "/api/tracks/" + strconv.Itoa(index)})
}

func (c *Client) status(ctx context.Context, method string, rel *url.URL) (*StatusResponse, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload StatusResponse
	if err := c.doURL(ctx, method, rel, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

func (c *Client) do(ctx context.Context, method, path string, dest any) error {
	rel := &url.URL{Path: path}
	return c.doURL(ctx, method, rel, dest)
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		apiErr := &APIError{Path: rel.Path, Status: resp.StatusCode}
		var payload errorResponse
		if json.NewDecoder(resp.Body).Decode(&payload) == nil {
			apiErr.Message = payload.Error
		}
		return apiErr
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

func parseBaseURL(apiBind string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBind)
	if trimmed == "" {
		trimmed = defaultAPIBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api address %q: %w", apiBind, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
