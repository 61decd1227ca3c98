// Package subsonic implements the subset of the Subsonic REST API needed to
// sync starred songs: listing starred items and downloading their content.
package subsonic

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"starsync/internal/model"
)

const (
	// apiVersion is the Subsonic REST API version sent with every request.
	apiVersion = "1.14.0"
	// clientName identifies this client to the server (the required c param).
	clientName = "starsync"

	defaultTimeout = 5 * time.Minute
)

// Credentials authenticates every request: the username plus the salted MD5
// token derived from the password (see Token).
type Credentials struct {
	Username string
	Token    string
	Salt     string
}

// Client is an authenticated Subsonic REST API client.
type Client struct {
	baseURL    string
	creds      Credentials
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a client for the server at baseURL. When insecure is
// true, TLS certificate verification is disabled; this affects only the
// transport, never request semantics.
func NewClient(baseURL string, creds Credentials, insecure bool, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	transport := http.DefaultTransport
	if insecure {
		transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		creds:   creds,
		httpClient: &http.Client{
			Timeout:   defaultTimeout,
			Transport: transport,
		},
		logger: logger,
	}
}

// endpoint builds the URL for a REST view, merging the authentication
// parameters into the query string.
func (c *Client) endpoint(view string, params url.Values) string {
	query := url.Values{}
	for k, vs := range params {
		query[k] = vs
	}
	query.Set("u", c.creds.Username)
	query.Set("t", c.creds.Token)
	query.Set("s", c.creds.Salt)
	query.Set("c", clientName)
	query.Set("f", "json")
	query.Set("v", apiVersion)
	return fmt.Sprintf("%s/rest/%s?%s", c.baseURL, view, query.Encode())
}

// get performs an authenticated GET. The caller owns the response body.
func (c *Client) get(ctx context.Context, view string, params url.Values) (*http.Response, error) {
	endpoint := c.endpoint(view, params)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("subsonic request", "view", view)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("subsonic request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, fmt.Errorf("subsonic error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return resp, nil
}

// Starred fetches the user's starred songs. Starred albums and artists are
// not part of the response mapping, and non-audio entries (videos, podcasts
// mis-starred as songs) are filtered out. The server's ordering is preserved.
func (c *Client) Starred(ctx context.Context) ([]model.StarredItem, error) {
	resp, err := c.get(ctx, "getStarred.view", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	var envelope responseEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decoding subsonic response: %w", err)
	}
	if err := envelope.Response.err(); err != nil {
		return nil, err
	}

	var items []model.StarredItem
	for _, song := range envelope.Response.Starred.Song {
		if !strings.HasPrefix(song.ContentType, "audio") {
			c.logger.Debug("skipping non-audio starred item",
				"id", song.ID, "contentType", song.ContentType)
			continue
		}
		items = append(items, model.StarredItem{
			ID:        song.ID,
			Path:      song.Path,
			Title:     song.Title,
			Artist:    song.Artist,
			StarredAt: model.ParseStarredTime(song.Starred),
		})
	}
	return items, nil
}

// Download fetches the binary content of the item with the given id.
// The caller must close the returned reader. The download endpoint answers
// errors with a JSON envelope instead of media, so a JSON content type is
// decoded and returned as an error.
func (c *Client) Download(ctx context.Context, id string) (io.ReadCloser, error) {
	params := url.Values{}
	params.Set("id", id)

	resp, err := c.get(ctx, "download.view", params)
	if err != nil {
		return nil, err
	}

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mediaType == "application/json" {
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("reading error response: %w", err)
		}
		var envelope responseEnvelope
		if err := json.Unmarshal(body, &envelope); err != nil {
			return nil, fmt.Errorf("decoding subsonic response: %w", err)
		}
		if err := envelope.Response.err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("subsonic returned JSON instead of media for id %s", id)
	}

	return resp.Body, nil
}
