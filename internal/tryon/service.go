// Package tryon runs one end-to-end virtual try-on: credential resolution,
// ratio inference, generation and download preparation.
package tryon

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"

	"tryon/internal/domain"
	"tryon/internal/imagegen"
	"tryon/internal/infra"
	"tryon/internal/infra/credentials"
	"tryon/internal/providers/image"
)

const (
	// DownloadFilename is the name offered for the saved result.
	DownloadFilename = "tryon_result.png"
	// DownloadMIMEType is the media type offered for the saved result.
	DownloadMIMEType = "image/png"
)

// CredentialSource resolves the API key for a run.
type CredentialSource interface {
	Resolve(ctx context.Context) (credentials.Resolution, error)
}

// Downloader re-fetches a generated image.
type Downloader interface {
	Download(ctx context.Context, url string) ([]byte, string, error)
}

// Input is one try-on request.
type Input struct {
	Person imagegen.SourceImage
	Cloth  imagegen.SourceImage
	// Notes is appended to the fixed instruction as an extra rule.
	Notes   string
	OnEvent func(image.Event)
}

// Download is the prepared save-to-disk artifact.
type Download struct {
	Filename string
	MIMEType string
	Data     []byte
}

// Result describes a successful run.
type Result struct {
	TaskID           string
	ResultURL        string
	AspectRatio      string
	CredentialSource string
	Attempts         int
	Warnings         []string
	Download         *Download
}

// DownloadAvailable reports whether the result bytes were re-fetched.
func (r *Result) DownloadAvailable() bool {
	return r != nil && r.Download != nil && len(r.Download.Data) > 0
}

// Service runs at most one try-on at a time.
type Service struct {
	generator   image.Generator
	downloader  Downloader
	credentials CredentialSource
	slot        *semaphore.Weighted
	logger      *infra.Logger
}

// NewService wires the service dependencies.
func NewService(gen image.Generator, dl Downloader, creds CredentialSource, logger *infra.Logger) *Service {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &Service{
		generator:   gen,
		downloader:  dl,
		credentials: creds,
		slot:        semaphore.NewWeighted(1),
		logger:      logger,
	}
}

// Run executes the whole workflow. A second call while one is in flight
// fails with domain.ErrBusy. Download preparation failures only add a
// warning.
func (s *Service) Run(ctx context.Context, in Input) (*Result, error) {
	if !s.slot.TryAcquire(1) {
		return nil, domain.ErrBusy
	}
	defer s.slot.Release(1)

	cred, err := s.credentials.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	if len(in.Person.Data) == 0 {
		return nil, fmt.Errorf("%w: person image is required", domain.ErrInvalidImage)
	}
	if len(in.Cloth.Data) == 0 {
		return nil, fmt.Errorf("%w: cloth image is required", domain.ErrInvalidImage)
	}

	res := &Result{CredentialSource: cred.Source}
	ratio, warn := imagegen.InferRatio(in.Person.Data)
	if warn != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("could not detect image size, using default %s: %v", ratio, warn))
		s.logger.Warn().Err(warn).Str("default", ratio).Msg("tryon: ratio inference failed")
	}
	res.AspectRatio = ratio

	asset, err := s.generator.Generate(ctx, image.GenerateRequest{
		APIKey:      cred.Key,
		Prompt:      imagegen.BuildInstruction(in.Notes),
		AspectRatio: ratio,
		Person:      in.Person,
		Cloth:       in.Cloth,
		OnEvent:     in.OnEvent,
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("tryon: generation failed")
		return nil, err
	}
	res.TaskID = asset.TaskID
	res.ResultURL = asset.URL
	if asset.Job != nil {
		res.Attempts = asset.Job.Attempts
	}

	data, _, err := s.downloader.Download(ctx, asset.URL)
	if err != nil {
		res.Warnings = append(res.Warnings, fmt.Sprintf("could not prepare download: %v", err))
		s.logger.Warn().Err(err).Str("task_id", asset.TaskID).Msg("tryon: download unavailable")
	} else {
		res.Download = &Download{Filename: DownloadFilename, MIMEType: DownloadMIMEType, Data: data}
	}

	s.logger.Info().
		Str("task_id", res.TaskID).
		Str("aspect_ratio", res.AspectRatio).
		Int("attempts", res.Attempts).
		Bool("download", res.DownloadAvailable()).
		Msg("tryon: completed")
	return res, nil
}
