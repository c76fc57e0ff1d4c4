package image

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tryon/internal/domain"
	"tryon/internal/imagegen"
	"tryon/internal/providers/nanobanana"
	"tryon/internal/providers/tmpfiles"
)

type instantClock struct{}

func (instantClock) Now() time.Time { return time.Unix(1700000000, 0) }

func (instantClock) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Unix(1700000000, 0)
	return ch
}

type fakeAPI struct {
	uploads    atomic.Int32
	polls      atomic.Int32
	uploadCode int
	flags      []int
	mu         sync.Mutex
	lastBody   string
}

func (f *fakeAPI) body() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastBody
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/upload", func(w http.ResponseWriter, r *http.Request) {
		n := f.uploads.Add(1)
		if f.uploadCode != 0 && f.uploadCode != http.StatusOK {
			w.WriteHeader(f.uploadCode)
			return
		}
		fmt.Fprintf(w, `{"status":"success","data":{"url":"https://tmpfiles.org/%d/img.png"}}`, n)
	})
	mux.HandleFunc("/api/v1/nanobanana/generate", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.lastBody = string(body)
		f.mu.Unlock()
		_, _ = io.WriteString(w, `{"code":200,"msg":"success","data":{"taskId":"task-42"}}`)
	})
	mux.HandleFunc("/api/v1/nanobanana/record-info", func(w http.ResponseWriter, r *http.Request) {
		idx := int(f.polls.Add(1)) - 1
		flag := 0
		if idx < len(f.flags) {
			flag = f.flags[idx]
		}
		fmt.Fprintf(w, `{"code":200,"data":{"successFlag":%d,"response":{"resultImageUrl":"https://cdn.example.com/task-42.png"}}}`, flag)
	})
	return mux
}

func newGenerator(t *testing.T, api *fakeAPI) *NanoBanana {
	t.Helper()
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)
	uploader := tmpfiles.NewClient(tmpfiles.Options{Endpoint: srv.URL + "/api/v1/upload", HTTPClient: srv.Client()})
	client := nanobanana.NewClient(nanobanana.Options{BaseURL: srv.URL, HTTPClient: srv.Client()})
	return NewNanoBanana(uploader, client, nanobanana.PollerOptions{MaxAttempts: 5, Clock: instantClock{}}, nil)
}

func sampleRequest() GenerateRequest {
	return GenerateRequest{
		APIKey:      "key",
		Prompt:      imagegen.TryOnInstruction(),
		AspectRatio: "3:4",
		Person:      imagegen.SourceImage{Name: "person.png", MIMEType: "image/png", Data: []byte("p")},
		Cloth:       imagegen.SourceImage{Name: "cloth.png", MIMEType: "image/png", Data: []byte("c")},
	}
}

func TestNanoBananaGenerate(t *testing.T) {
	api := &fakeAPI{flags: []int{0, 0, 1}}
	gen := newGenerator(t, api)

	var stages []Stage
	req := sampleRequest()
	req.OnEvent = func(ev Event) { stages = append(stages, ev.Stage) }

	asset, err := gen.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "task-42", asset.TaskID)
	assert.Equal(t, "https://cdn.example.com/task-42.png", asset.URL)
	assert.Equal(t, "https://tmpfiles.org/dl/1/img.png", asset.PersonURL)
	assert.Equal(t, "https://tmpfiles.org/dl/2/img.png", asset.ClothURL)
	assert.Equal(t, domain.JobStatusSuccess, asset.Job.Status)
	assert.Equal(t, int32(3), api.polls.Load())
	assert.Contains(t, api.body(), `"image_size":"3:4"`)
	assert.Equal(t, []Stage{StageUploading, StageUploading, StageSubmitting, StagePolling, StagePolling, StagePolling}, stages)
}

func TestNanoBananaGenerateUploadFailureAborts(t *testing.T) {
	api := &fakeAPI{uploadCode: http.StatusInternalServerError}
	gen := newGenerator(t, api)

	_, err := gen.Generate(context.Background(), sampleRequest())
	assert.ErrorIs(t, err, domain.ErrUploadFailed)
	assert.Contains(t, err.Error(), "person image")
	assert.Equal(t, int32(1), api.uploads.Load())
	assert.Equal(t, int32(0), api.polls.Load())
}

func TestNanoBananaGenerateTimeout(t *testing.T) {
	api := &fakeAPI{}
	gen := newGenerator(t, api)

	asset, err := gen.Generate(context.Background(), sampleRequest())
	assert.Nil(t, asset)
	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.Equal(t, int32(5), api.polls.Load())
}

func TestNanoBananaGenerateMissingKey(t *testing.T) {
	api := &fakeAPI{}
	gen := newGenerator(t, api)
	req := sampleRequest()
	req.APIKey = " "

	_, err := gen.Generate(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
	assert.Equal(t, int32(0), api.uploads.Load())
}
