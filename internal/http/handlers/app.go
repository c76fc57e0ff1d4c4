package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"tryon/internal/domain"
	"tryon/internal/infra"
	"tryon/internal/infra/credentials"
	"tryon/internal/middleware"
	"tryon/internal/tryon"
)

// TryOnRunner runs one virtual try-on.
type TryOnRunner interface {
	Run(ctx context.Context, in tryon.Input) (*tryon.Result, error)
}

// CredentialStore resolves and persists the API key.
type CredentialStore interface {
	Resolve(ctx context.Context) (credentials.Resolution, error)
	Save(ctx context.Context, key string) (string, error)
	Sources() []string
}

type App struct {
	Runner         TryOnRunner
	Credentials    CredentialStore
	MaxUploadBytes int64
	Logger         *infra.Logger
}

func NewApp(runner TryOnRunner, creds CredentialStore, maxUploadBytes int64, logger *infra.Logger) *App {
	if logger == nil {
		logger = infra.NopLogger()
	}
	return &App{Runner: runner, Credentials: creds, MaxUploadBytes: maxUploadBytes, Logger: logger}
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	Detail    string `json:"detail,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	a.json(w, status, errorBody{Error: errorDetail{
		Code:      code,
		Message:   message,
		RequestID: middleware.RequestIDFromContext(r.Context()),
	}})
}

// fail maps a workflow error onto a status code and a localized message.
func (a *App) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		a.Logger.Error().Err(err).Str("request_id", middleware.RequestIDFromContext(r.Context())).Msg("tryon request failed")
	}
	a.json(w, status, errorBody{Error: errorDetail{
		Code:      code,
		Message:   tryon.Message(middleware.LocaleFromContext(r.Context()), err),
		Detail:    tryon.Detail(err),
		RequestID: middleware.RequestIDFromContext(r.Context()),
	}})
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidImage):
		return http.StatusBadRequest, "invalid_image"
	case errors.Is(err, domain.ErrMissingCredential):
		return http.StatusPreconditionFailed, "missing_credential"
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict, "busy"
	case errors.Is(err, domain.ErrUploadFailed):
		return http.StatusBadGateway, "upload_failed"
	case errors.Is(err, domain.ErrSubmitFailed), errors.Is(err, domain.ErrMissingTaskID):
		return http.StatusBadGateway, "submit_failed"
	case errors.Is(err, domain.ErrGenerationFailed), errors.Is(err, domain.ErrMissingResult):
		return http.StatusUnprocessableEntity, "generation_failed"
	case errors.Is(err, domain.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.Is(err, context.Canceled):
		// nginx's "client closed request"
		return 499, "cancelled"
	default:
		return http.StatusInternalServerError, "internal"
	}
}
