package handlers

import (
	"net/http"
	"strconv"

	"tryon/internal/imagegen"
)

func (a *App) Ratios(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"items":   imagegen.Ratios(),
		"default": imagegen.DefaultAspectRatio,
	})
}

// InferRatio answers GET /v1/ratios/infer?width=&height=.
func (a *App) InferRatio(w http.ResponseWriter, r *http.Request) {
	width, errW := strconv.Atoi(r.URL.Query().Get("width"))
	height, errH := strconv.Atoi(r.URL.Query().Get("height"))
	if errW != nil || errH != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request", "width and height must be integers")
		return
	}
	label, err := imagegen.ClosestRatio(width, height)
	if err != nil {
		a.error(w, r, http.StatusBadRequest, "bad_request", err.Error())
		return
	}
	a.json(w, http.StatusOK, map[string]any{
		"width":        width,
		"height":       height,
		"aspect_ratio": label,
	})
}
