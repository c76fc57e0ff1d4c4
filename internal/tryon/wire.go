package tryon

import (
	"net/http"

	"tryon/internal/infra"
	"tryon/internal/providers/image"
	"tryon/internal/providers/nanobanana"
	"tryon/internal/providers/tmpfiles"
)

// NewDefault wires the tmpfiles relay and the NanoBanana client from cfg.
// The API key is supplied per run by creds.
func NewDefault(cfg *infra.Config, creds CredentialSource, logger *infra.Logger, clock nanobanana.Clock) *Service {
	httpClient := &http.Client{Timeout: cfg.HTTPClientTimeout}
	uploader := tmpfiles.NewClient(tmpfiles.Options{
		Endpoint:   cfg.UploadEndpoint,
		HTTPClient: httpClient,
		Logger:     logger,
	})
	client := nanobanana.NewClient(nanobanana.Options{
		BaseURL:     cfg.NanoBananaBaseURL,
		CallbackURL: cfg.CallbackURL,
		HTTPClient:  httpClient,
		Logger:      logger,
	})
	gen := image.NewNanoBanana(uploader, client, nanobanana.PollerOptions{
		MaxAttempts: cfg.PollMaxAttempts,
		Interval:    cfg.PollInterval,
		Clock:       clock,
		Logger:      logger,
	}, logger)
	return NewService(gen, client, creds, logger)
}
