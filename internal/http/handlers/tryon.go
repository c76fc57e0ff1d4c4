package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"tryon/internal/domain"
	"tryon/internal/imagegen"
	"tryon/internal/tryon"
)

type tryOnResponse struct {
	TaskID            string   `json:"task_id"`
	ResultURL         string   `json:"result_url"`
	AspectRatio       string   `json:"aspect_ratio"`
	Attempts          int      `json:"attempts"`
	Warnings          []string `json:"warnings"`
	DownloadAvailable bool     `json:"download_available"`
	Filename          string   `json:"filename,omitempty"`
	MIMEType          string   `json:"mime_type,omitempty"`
	// Data is base64 encoded by encoding/json.
	Data []byte `json:"data,omitempty"`
}

// TryOn accepts multipart fields "person" and "cloth" plus an optional
// "notes" value. With ?download=1 the result image is streamed as an
// attachment instead of JSON.
func (a *App) TryOn(w http.ResponseWriter, r *http.Request) {
	limit := a.MaxUploadBytes
	if limit <= 0 {
		limit = 20 << 20
	}
	r.Body = http.MaxBytesReader(w, r.Body, 2*limit+(1<<20))
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			a.error(w, r, http.StatusRequestEntityTooLarge, "too_large", "upload exceeds size limit")
			return
		}
		a.error(w, r, http.StatusBadRequest, "bad_request", "expected multipart form data")
		return
	}
	defer r.MultipartForm.RemoveAll()

	person, err := readImage(r, "person", limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	cloth, err := readImage(r, "cloth", limit)
	if err != nil {
		a.fail(w, r, err)
		return
	}

	res, err := a.Runner.Run(r.Context(), tryon.Input{
		Person: person,
		Cloth:  cloth,
		Notes:  r.FormValue("notes"),
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}

	if download, _ := strconv.ParseBool(r.URL.Query().Get("download")); download {
		if !res.DownloadAvailable() {
			a.error(w, r, http.StatusBadGateway, "download_unavailable", "result image could not be fetched; use result_url")
			return
		}
		w.Header().Set("Content-Type", res.Download.MIMEType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", res.Download.Filename))
		w.Header().Set("Content-Length", strconv.Itoa(len(res.Download.Data)))
		w.Header().Set("X-Result-URL", res.ResultURL)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(res.Download.Data)
		return
	}

	body := tryOnResponse{
		TaskID:            res.TaskID,
		ResultURL:         res.ResultURL,
		AspectRatio:       res.AspectRatio,
		Attempts:          res.Attempts,
		Warnings:          res.Warnings,
		DownloadAvailable: res.DownloadAvailable(),
	}
	if body.Warnings == nil {
		body.Warnings = []string{}
	}
	if res.DownloadAvailable() {
		body.Filename = res.Download.Filename
		body.MIMEType = res.Download.MIMEType
		body.Data = res.Download.Data
	}
	a.json(w, http.StatusOK, body)
}

func readImage(r *http.Request, field string, limit int64) (imagegen.SourceImage, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return imagegen.SourceImage{}, fmt.Errorf("%w: %s image is required", domain.ErrInvalidImage, field)
	}
	defer file.Close()
	if header.Size > limit {
		return imagegen.SourceImage{}, fmt.Errorf("%w: %s image exceeds %d bytes", domain.ErrInvalidImage, field, limit)
	}
	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		return imagegen.SourceImage{}, fmt.Errorf("read %s image: %w", field, err)
	}
	if int64(len(data)) > limit {
		return imagegen.SourceImage{}, fmt.Errorf("%w: %s image exceeds %d bytes", domain.ErrInvalidImage, field, limit)
	}
	return imagegen.NewSourceImage(header.Filename, header.Header.Get("Content-Type"), data)
}
