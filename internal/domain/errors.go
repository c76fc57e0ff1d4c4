package domain

import "errors"

var (
	// ErrMissingCredential blocks every remote call until an API key is configured.
	ErrMissingCredential = errors.New("missing api credential")
	// ErrInvalidImage is returned by intake for missing or unsupported files.
	ErrInvalidImage = errors.New("invalid image")
	// ErrUploadFailed covers any non-success response from the upload host.
	ErrUploadFailed = errors.New("upload failed")
	// ErrSubmitFailed covers non-200 responses and non-success codes on submission.
	ErrSubmitFailed = errors.New("task submission failed")
	// ErrMissingTaskID is returned when submission succeeds without a task identifier.
	ErrMissingTaskID = errors.New("task submission returned no task id")
	// ErrGenerationFailed is returned when the provider reports a failed task.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrMissingResult is returned when a task succeeds without any result url.
	ErrMissingResult = errors.New("generation succeeded without a result url")
	// ErrTimeout is returned when the polling budget is exhausted.
	ErrTimeout = errors.New("generation timed out")
	// ErrBusy is returned when another try-on job is still running.
	ErrBusy = errors.New("another job is in progress")
)
