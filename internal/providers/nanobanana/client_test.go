package nanobanana

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tryon/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(Options{APIKey: "test-key", BaseURL: srv.URL + "/", HTTPClient: srv.Client()})
}

func TestSubmitSendsPayload(t *testing.T) {
	var payload map[string]any
	var auth string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/nanobanana/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		auth = r.Header.Get("Authorization")
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &payload)
		_, _ = io.WriteString(w, `{"code":200,"msg":"success","data":{"taskId":"task-123"}}`)
	})

	taskID, err := client.Submit(context.Background(), SubmitRequest{
		Prompt:      "swap the shirt",
		ImageURLs:   []string{"https://tmpfiles.org/dl/person.png", "https://tmpfiles.org/dl/cloth.png"},
		AspectRatio: "9:16",
	})
	require.NoError(t, err)
	assert.Equal(t, "task-123", taskID)
	assert.Equal(t, "Bearer test-key", auth)
	assert.Equal(t, "swap the shirt", payload["prompt"])
	assert.Equal(t, float64(1), payload["numImages"])
	assert.Equal(t, "IMAGETOIAMGE", payload["type"])
	assert.Equal(t, "9:16", payload["image_size"])
	assert.Equal(t, DefaultCallbackURL, payload["callBackUrl"])
	assert.Equal(t, []any{"https://tmpfiles.org/dl/person.png", "https://tmpfiles.org/dl/cloth.png"}, payload["imageUrls"])
}

func TestSubmitFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   error
	}{
		{"http error", http.StatusUnauthorized, `{"code":401,"msg":"bad key"}`, domain.ErrSubmitFailed},
		{"error code", http.StatusOK, `{"code":402,"msg":"insufficient credits"}`, domain.ErrSubmitFailed},
		{"malformed", http.StatusOK, `not json`, domain.ErrSubmitFailed},
		{"missing data", http.StatusOK, `{"code":200,"msg":"ok"}`, domain.ErrMissingTaskID},
		{"empty task id", http.StatusOK, `{"code":200,"msg":"ok","data":{"taskId":" "}}`, domain.ErrMissingTaskID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			})
			_, err := client.Submit(context.Background(), SubmitRequest{Prompt: "p", ImageURLs: []string{"u"}})
			assert.ErrorIs(t, err, tt.want)
			assert.Equal(t, 1, calls)
		})
	}
}

func TestSubmitErrorCarriesProviderMessage(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"code":402,"msg":"insufficient credits"}`)
	})
	_, err := client.Submit(context.Background(), SubmitRequest{Prompt: "p", ImageURLs: []string{"u"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insufficient credits")
}

func TestSubmitRequiresCredentials(t *testing.T) {
	client := NewClient(Options{})
	_, err := client.Submit(context.Background(), SubmitRequest{Prompt: "p", ImageURLs: []string{"u"}})
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
	assert.True(t, client.WithAPIKey(" k ").HasCredentials())
	assert.False(t, client.HasCredentials(), "WithAPIKey must not mutate the receiver")
}

func TestRecordInfoDecodesStatus(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/nanobanana/record-info", r.URL.Path)
		assert.Equal(t, "task-9", r.URL.Query().Get("taskId"))
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"code":200,"data":{"taskId":"task-9","successFlag":1,"response":{"resultImageUrl":" https://cdn.example.com/r.png ","originImageUrl":"https://cdn.example.com/o.png"}}}`)
	})

	status, err := client.RecordInfo(context.Background(), "task-9")
	require.NoError(t, err)
	require.NotNil(t, status.Flag)
	assert.Equal(t, FlagSuccess, *status.Flag)
	assert.Equal(t, "https://cdn.example.com/r.png", status.ResultURL)
	assert.Equal(t, "https://cdn.example.com/o.png", status.OriginURL)
}

func TestRecordInfoPendingWithoutResponse(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"code":200,"data":{"successFlag":0,"response":null}}`)
	})
	status, err := client.RecordInfo(context.Background(), "task-9")
	require.NoError(t, err)
	require.NotNil(t, status.Flag)
	assert.Equal(t, FlagPending, *status.Flag)
	assert.Empty(t, status.ResultURL)
}

func TestRecordInfoStatusError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = io.WriteString(w, "upstream")
	})
	_, err := client.RecordInfo(context.Background(), "task-9")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
}

func TestRecordInfoUndecodableBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "<html>gateway</html>")
	})
	status, err := client.RecordInfo(context.Background(), "task-9")
	require.Error(t, err)
	assert.Nil(t, status)
}

func TestDownload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte{0xff, 0xd8})
	})

	data, format, err := client.Download(context.Background(), client.baseURL+"/result.png")
	require.NoError(t, err)
	assert.Equal(t, []byte{0xff, 0xd8}, data)
	assert.Equal(t, "image/jpeg", format)

	_, _, err = client.Download(context.Background(), client.baseURL+"/missing.png")
	assert.Error(t, err)

	_, _, err = client.Download(context.Background(), "not a url")
	assert.Error(t, err)
}
