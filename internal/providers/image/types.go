package image

import (
	"context"

	"tryon/internal/domain"
	"tryon/internal/imagegen"
)

// Stage names a step of the generation pipeline for progress reporting.
type Stage string

const (
	StageUploading  Stage = "uploading"
	StageSubmitting Stage = "submitting"
	StagePolling    Stage = "polling"
)

// Event is emitted while a request moves through the pipeline.
type Event struct {
	Stage       Stage
	Detail      string
	TaskID      string
	Attempt     int
	MaxAttempts int
}

// GenerateRequest describes a normalized try-on request passed to a provider.
type GenerateRequest struct {
	APIKey      string
	Prompt      string
	AspectRatio string
	Person      imagegen.SourceImage
	Cloth       imagegen.SourceImage
	OnEvent     func(Event)
}

// Asset is the generated image reference.
type Asset struct {
	TaskID    string
	URL       string
	PersonURL string
	ClothURL  string
	Job       *domain.Job
}

// Generator is the contract implemented by image providers.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (*Asset, error)
}

func (r GenerateRequest) emit(ev Event) {
	if r.OnEvent != nil {
		r.OnEvent(ev)
	}
}
