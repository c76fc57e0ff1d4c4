package image

import (
	"context"
	"fmt"

	"tryon/internal/domain"
	"tryon/internal/imagegen"
	"tryon/internal/infra"
	"tryon/internal/providers/nanobanana"
)

// NanoBanana runs the upload → submit → poll pipeline against the
// NanoBanana API. It holds no per-request state.
type NanoBanana struct {
	uploader imagegen.Uploader
	client   *nanobanana.Client
	poll     nanobanana.PollerOptions
	logger   *infra.Logger
}

// NewNanoBanana wires the uploader, API client and polling policy.
func NewNanoBanana(uploader imagegen.Uploader, client *nanobanana.Client, poll nanobanana.PollerOptions, logger *infra.Logger) *NanoBanana {
	if logger == nil {
		logger = infra.NopLogger()
	}
	if poll.Logger == nil {
		poll.Logger = logger
	}
	return &NanoBanana{uploader: uploader, client: client, poll: poll, logger: logger}
}

// Generate fulfils the Generator interface. Any upload or submission error
// aborts the request; the returned Asset is nil unless the task succeeded.
func (n *NanoBanana) Generate(ctx context.Context, req GenerateRequest) (*Asset, error) {
	if n == nil || n.client == nil || n.uploader == nil {
		return nil, fmt.Errorf("nanobanana generator not configured")
	}
	client := n.client.WithAPIKey(req.APIKey)
	if !client.HasCredentials() {
		return nil, domain.ErrMissingCredential
	}

	req.emit(Event{Stage: StageUploading, Detail: "person"})
	personURL, err := n.uploader.Upload(ctx, req.Person)
	if err != nil {
		return nil, fmt.Errorf("person image: %w", err)
	}
	req.emit(Event{Stage: StageUploading, Detail: "cloth"})
	clothURL, err := n.uploader.Upload(ctx, req.Cloth)
	if err != nil {
		return nil, fmt.Errorf("cloth image: %w", err)
	}

	req.emit(Event{Stage: StageSubmitting})
	taskID, err := client.Submit(ctx, nanobanana.SubmitRequest{
		Prompt:      req.Prompt,
		ImageURLs:   []string{personURL, clothURL},
		AspectRatio: req.AspectRatio,
	})
	if err != nil {
		return nil, err
	}

	poller := nanobanana.NewPoller(client, n.poll)
	clock := n.poll.Clock
	if clock == nil {
		clock = nanobanana.SystemClock()
	}
	job := domain.NewJob(taskID, clock.Now())
	n.logger.Info().Str("task_id", taskID).Str("image_size", req.AspectRatio).Msg("nanobanana: polling task")
	err = poller.Wait(ctx, job, func(p nanobanana.Progress) {
		req.emit(Event{Stage: StagePolling, TaskID: p.TaskID, Attempt: p.Attempt, MaxAttempts: p.MaxAttempts, Detail: string(p.Status)})
	})
	if err != nil {
		return nil, fmt.Errorf("task %s: %w", taskID, err)
	}
	return &Asset{TaskID: taskID, URL: job.ResultURL, PersonURL: personURL, ClothURL: clothURL, Job: job}, nil
}

var _ Generator = (*NanoBanana)(nil)
