package removebg

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/ironsheep/photo-editor-mcp/internal/imaging"
)

// DefaultEndpoint is the remove.bg API URL.
const DefaultEndpoint = "https://api.remove.bg/v1.0/removebg"

// DefaultTimeout bounds a single removal request.
const DefaultTimeout = 60 * time.Second

// maxResponseBytes bounds the size of the returned image.
const maxResponseBytes = 64 << 20

// ErrRemovalFailed is returned (wrapped) for every failed removal.
var ErrRemovalFailed = errors.New("background removal failed")

// Remover replaces an image by a copy with its background removed.
type Remover interface {
	Remove(ctx context.Context, buf *imaging.Buffer) (*imaging.Buffer, error)
}

// StatusError describes a non-2xx response from the service.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("service returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("service returned HTTP %d: %s", e.StatusCode, e.Message)
}

// Config holds the client settings.
type Config struct {
	// APIKey is sent as X-Api-Key. Required.
	APIKey string

	// Endpoint defaults to DefaultEndpoint.
	Endpoint string

	// Timeout defaults to DefaultTimeout.
	Timeout time.Duration

	// HTTPClient overrides the client used for requests.
	HTTPClient *http.Client
}

// Client talks to a remove.bg compatible service.
type Client struct {
	apiKey   string
	endpoint string
	http     *http.Client
}

// NewClient creates a client from cfg, filling in defaults.
func NewClient(cfg Config) *Client {
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	return &Client{apiKey: cfg.APIKey, endpoint: endpoint, http: hc}
}

// Remove uploads buf and returns the image sent back by the service.
func (c *Client) Remove(ctx context.Context, buf *imaging.Buffer) (*imaging.Buffer, error) {
	if c.apiKey == "" {
		return nil, fmt.Errorf("%w: no API key configured", ErrRemovalFailed)
	}

	body, contentType, err := encodeForm(buf)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemovalFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemovalFailed, err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Accept", "image/png")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRemovalFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return nil, fmt.Errorf("%w: %w", ErrRemovalFailed, &StatusError{
			StatusCode: resp.StatusCode,
			Message:    serviceMessage(data),
		})
	}

	decoded, err := imaging.Decode(resp.Body, maxResponseBytes)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid response image: %w", ErrRemovalFailed, err)
	}
	return decoded.Buffer, nil
}

// encodeForm builds the multipart body holding buf as PNG.
func encodeForm(buf *imaging.Buffer) (io.Reader, string, error) {
	pngData, err := imaging.EncodePNG(buf)
	if err != nil {
		return nil, "", err
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("image_file", "image.png")
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(pngData); err != nil {
		return nil, "", err
	}
	if err := w.WriteField("size", "auto"); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &body, w.FormDataContentType(), nil
}

// serviceMessage extracts the first error title from a remove.bg error body,
// falling back to the trimmed raw text.
func serviceMessage(data []byte) string {
	var payload struct {
		Errors []struct {
			Title string `json:"title"`
		} `json:"errors"`
	}
	if json.Unmarshal(data, &payload) == nil && len(payload.Errors) > 0 {
		return payload.Errors[0].Title
	}
	return strings.TrimSpace(string(data))
}
