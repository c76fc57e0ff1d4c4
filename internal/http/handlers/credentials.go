package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"tryon/internal/domain"
)

type credentialStatus struct {
	Configured bool     `json:"configured"`
	Source     string   `json:"source,omitempty"`
	Sources    []string `json:"sources"`
}

// CredentialStatus reports whether a key is available. The key itself is
// never returned.
func (a *App) CredentialStatus(w http.ResponseWriter, r *http.Request) {
	status := credentialStatus{Sources: a.Credentials.Sources()}
	res, err := a.Credentials.Resolve(r.Context())
	switch {
	case err == nil:
		status.Configured = true
		status.Source = res.Source
	case !errors.Is(err, domain.ErrMissingCredential):
		a.fail(w, r, err)
		return
	}
	a.json(w, http.StatusOK, status)
}

type saveCredentialRequest struct {
	APIKey string `json:"api_key"`
}

// SaveCredential persists the key so it never has to be entered again.
func (a *App) SaveCredential(w http.ResponseWriter, r *http.Request) {
	var req saveCredentialRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.APIKey) == "" {
		a.error(w, r, http.StatusBadRequest, "bad_request", "api_key is required")
		return
	}
	source, err := a.Credentials.Save(r.Context(), req.APIKey)
	if err != nil {
		a.Logger.Error().Err(err).Msg("save credential")
		a.error(w, r, http.StatusInternalServerError, "internal", "failed to save api key")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"saved": true, "source": source})
}
