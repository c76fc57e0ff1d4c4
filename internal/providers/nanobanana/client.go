// Package nanobanana talks to the NanoBanana image-generation API: task
// submission, task status lookups, and result downloads.
package nanobanana

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"tryon/internal/domain"
	"tryon/internal/infra"
)

const (
	// DefaultBaseURL is the public API host.
	DefaultBaseURL = "https://api.nanobananaapi.ai"
	// DefaultCallbackURL is sent because the API requires one; results are
	// always collected by polling.
	DefaultCallbackURL = "https://example.com/callback"

	// taskTypeImageToImage is the API's own spelling.
	taskTypeImageToImage = "IMAGETOIAMGE"
	codeSuccess          = 200
	maxErrorBody         = 512
)

// Options configures the NanoBanana client.
type Options struct {
	APIKey      string
	BaseURL     string
	CallbackURL string
	HTTPClient  *http.Client
	Logger      *infra.Logger
	Timeout     time.Duration
}

// Client performs HTTP calls against the NanoBanana API.
type Client struct {
	apiKey      string
	baseURL     string
	callbackURL string
	httpClient  *http.Client
	logger      *infra.Logger
}

// SubmitRequest is one image-to-image generation request.
type SubmitRequest struct {
	Prompt      string
	ImageURLs   []string
	AspectRatio string
}

// TaskStatus is the decoded record-info payload for a task.
type TaskStatus struct {
	// Flag is nil when the response carried no successFlag.
	Flag         *int
	ResultURL    string
	OriginURL    string
	ErrorMessage string
}

type generateRequest struct {
	Prompt      string   `json:"prompt"`
	NumImages   int      `json:"numImages"`
	Type        string   `json:"type"`
	ImageURLs   []string `json:"imageUrls"`
	ImageSize   string   `json:"image_size"`
	CallbackURL string   `json:"callBackUrl"`
}

type generateResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data *struct {
		TaskID string `json:"taskId"`
	} `json:"data"`
}

type recordInfoResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data *struct {
		TaskID       string `json:"taskId"`
		SuccessFlag  *int   `json:"successFlag"`
		ErrorMessage string `json:"errorMessage"`
		Response     *struct {
			ResultImageURL string `json:"resultImageUrl"`
			OriginImageURL string `json:"originImageUrl"`
		} `json:"response"`
	} `json:"data"`
}

// StatusError reports a non-200 answer from the record-info endpoint.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("nanobanana: record-info status %d: %s", e.StatusCode, e.Body)
}

// NewClient constructs a client with sane defaults and injected dependencies.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	callbackURL := strings.TrimSpace(opts.CallbackURL)
	if callbackURL == "" {
		callbackURL = DefaultCallbackURL
	}
	logger := opts.Logger
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Client{
		apiKey:      strings.TrimSpace(opts.APIKey),
		baseURL:     baseURL,
		callbackURL: callbackURL,
		httpClient:  httpClient,
		logger:      logger,
	}
}

// WithAPIKey returns a copy of the client bound to key.
func (c *Client) WithAPIKey(key string) *Client {
	clone := *c
	clone.apiKey = strings.TrimSpace(key)
	return &clone
}

// HasCredentials reports whether the client can perform remote calls.
func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

// Submit creates a generation task and returns its identifier. Success
// requires HTTP 200, body code 200 and a task id; anything else is fatal for
// the request and is not retried.
func (c *Client) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	if !c.HasCredentials() {
		return "", domain.ErrMissingCredential
	}
	prompt := strings.TrimSpace(req.Prompt)
	if prompt == "" {
		return "", errors.New("nanobanana: prompt is required")
	}
	if len(req.ImageURLs) == 0 {
		return "", errors.New("nanobanana: at least one image url is required")
	}
	payload := generateRequest{
		Prompt:      prompt,
		NumImages:   1,
		Type:        taskTypeImageToImage,
		ImageURLs:   req.ImageURLs,
		ImageSize:   req.AspectRatio,
		CallbackURL: c.callbackURL,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("nanobanana: encode request: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/nanobanana/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("nanobanana: build request: %w", err)
	}
	c.authorize(httpReq)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: nanobanana: %v", domain.ErrSubmitFailed, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: nanobanana: read response: %v", domain.ErrSubmitFailed, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: nanobanana: status %d: %s", domain.ErrSubmitFailed, resp.StatusCode, excerpt(raw))
	}
	var decoded generateResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return "", fmt.Errorf("%w: nanobanana: decode response: %v", domain.ErrSubmitFailed, err)
	}
	if decoded.Code != codeSuccess {
		return "", fmt.Errorf("%w: nanobanana: %s (code %d)", domain.ErrSubmitFailed, decoded.Msg, decoded.Code)
	}
	if decoded.Data == nil || strings.TrimSpace(decoded.Data.TaskID) == "" {
		return "", domain.ErrMissingTaskID
	}
	taskID := strings.TrimSpace(decoded.Data.TaskID)
	c.logger.Debug().
		Str("task_id", taskID).
		Str("image_size", req.AspectRatio).
		Msg("nanobanana: task submitted")
	return taskID, nil
}

// RecordInfo fetches the current status of a task. Non-200 answers are
// returned as *StatusError.
func (c *Client) RecordInfo(ctx context.Context, taskID string) (*TaskStatus, error) {
	if !c.HasCredentials() {
		return nil, domain.ErrMissingCredential
	}
	endpoint := c.baseURL + "/api/v1/nanobanana/record-info?" + url.Values{"taskId": {taskID}}.Encode()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("nanobanana: build request: %w", err)
	}
	c.authorize(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("nanobanana: record-info: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("nanobanana: read record-info: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: excerpt(raw)}
	}
	var decoded recordInfoResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("nanobanana: decode record-info: %w", err)
	}
	status := &TaskStatus{}
	if decoded.Data != nil {
		status.Flag = decoded.Data.SuccessFlag
		status.ErrorMessage = strings.TrimSpace(decoded.Data.ErrorMessage)
		if decoded.Data.Response != nil {
			status.ResultURL = strings.TrimSpace(decoded.Data.Response.ResultImageURL)
			status.OriginURL = strings.TrimSpace(decoded.Data.Response.OriginImageURL)
		}
	}
	return status, nil
}

// Download fetches the bytes behind a result URL.
func (c *Client) Download(ctx context.Context, imageURL string) ([]byte, string, error) {
	parsed, err := url.Parse(strings.TrimSpace(imageURL))
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, "", fmt.Errorf("nanobanana: invalid image url: %s", imageURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, parsed.String(), nil)
	if err != nil {
		return nil, "", fmt.Errorf("nanobanana: build download request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("nanobanana: download image: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("nanobanana: download status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("nanobanana: read image: %w", err)
	}
	format := resp.Header.Get("Content-Type")
	if format == "" {
		format = "image/png"
	}
	return data, format, nil
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}

func excerpt(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > maxErrorBody {
		return s[:maxErrorBody] + "..."
	}
	return s
}
