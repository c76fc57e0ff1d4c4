// Package tmpfiles relays images to an anonymous public file host and turns
// the returned landing-page URL into a direct-download link.
package tmpfiles

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"tryon/internal/domain"
	"tryon/internal/imagegen"
	"tryon/internal/infra"
)

// DefaultEndpoint is the public upload API.
const DefaultEndpoint = "https://tmpfiles.org/api/v1/upload"

const maxErrorBody = 512

// Options configures the upload client.
type Options struct {
	Endpoint   string
	HTTPClient *http.Client
	Logger     *infra.Logger
	Timeout    time.Duration
}

// Client uploads files with multipart POSTs. Uploaded content is public and
// unauthenticated.
type Client struct {
	endpoint   string
	httpClient *http.Client
	logger     *infra.Logger
}

type uploadResponse struct {
	Status string `json:"status"`
	Data   struct {
		URL string `json:"url"`
	} `json:"data"`
}

// NewClient constructs a client with defaults for anything left unset.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	endpoint := strings.TrimSpace(opts.Endpoint)
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Client{endpoint: endpoint, httpClient: httpClient, logger: logger}
}

// Upload sends img as form field "file" and returns the direct-download URL.
// Any response other than HTTP 200 with status "success" and a url is
// reported as domain.ErrUploadFailed; there is no retry.
func (c *Client) Upload(ctx context.Context, img imagegen.SourceImage) (string, error) {
	body, contentType, err := encodeForm(img)
	if err != nil {
		return "", fmt.Errorf("tmpfiles: encode form: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, body)
	if err != nil {
		return "", fmt.Errorf("tmpfiles: build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: tmpfiles: %v", domain.ErrUploadFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: tmpfiles: read response: %v", domain.ErrUploadFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: tmpfiles: status %d: %s", domain.ErrUploadFailed, resp.StatusCode, excerpt(raw))
	}
	var decoded uploadResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("%w: tmpfiles: decode response: %v", domain.ErrUploadFailed, err)
	}
	if decoded.Status != "success" {
		return "", fmt.Errorf("%w: tmpfiles: status %q: %s", domain.ErrUploadFailed, decoded.Status, excerpt(raw))
	}
	direct, err := DirectURL(decoded.Data.URL)
	if err != nil {
		return "", fmt.Errorf("%w: tmpfiles: %v", domain.ErrUploadFailed, err)
	}
	c.logger.Debug().
		Str("file", img.Name).
		Int("bytes", len(img.Data)).
		Str("url", direct).
		Msg("tmpfiles: uploaded image")
	return direct, nil
}

// DirectURL rewrites a landing-page URL such as https://tmpfiles.org/123/a.png
// into its raw-bytes form https://tmpfiles.org/dl/123/a.png. URLs already in
// direct form are returned unchanged.
func DirectURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty url")
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("invalid url %q", raw)
	}
	if parsed.Path == "/dl" || strings.HasPrefix(parsed.Path, "/dl/") {
		return parsed.String(), nil
	}
	parsed.Path = "/dl" + ensureLeadingSlash(parsed.Path)
	if parsed.RawPath != "" {
		parsed.RawPath = "/dl" + ensureLeadingSlash(parsed.RawPath)
	}
	return parsed.String(), nil
}

func ensureLeadingSlash(p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}

func encodeForm(img imagegen.SourceImage) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	name := img.Name
	if name == "" {
		name = "image"
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(name)))
	mime := img.MIMEType
	if mime == "" {
		mime = "application/octet-stream"
	}
	header.Set("Content-Type", mime)
	part, err := w.CreatePart(header)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(img.Data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return &buf, w.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

func excerpt(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}

var _ imagegen.Uploader = (*Client)(nil)
