package imagegen

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"math"

	// Decoders registered for DecodeConfig.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DefaultAspectRatio is used when the person image dimensions cannot be read.
const DefaultAspectRatio = "3:4"

// ErrInvalidDimensions is returned for non-positive width or height.
var ErrInvalidDimensions = errors.New("imagegen: width and height must be positive")

// Ratio is one supported output aspect ratio.
type Ratio struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// supportedRatios is scanned in order; the first entry with the minimal
// distance wins ties.
var supportedRatios = []Ratio{
	{Label: "1:1", Value: 1.0},
	{Label: "9:16", Value: 9.0 / 16.0},
	{Label: "16:9", Value: 16.0 / 9.0},
	{Label: "3:4", Value: 3.0 / 4.0},
	{Label: "4:3", Value: 4.0 / 3.0},
	{Label: "3:2", Value: 3.0 / 2.0},
	{Label: "2:3", Value: 2.0 / 3.0},
	{Label: "5:4", Value: 5.0 / 4.0},
	{Label: "4:5", Value: 4.0 / 5.0},
	{Label: "21:9", Value: 21.0 / 9.0},
}

// Ratios returns a copy of the supported ratio table in scan order.
func Ratios() []Ratio {
	out := make([]Ratio, len(supportedRatios))
	copy(out, supportedRatios)
	return out
}

// IsSupportedRatio reports whether label is one of the table entries.
func IsSupportedRatio(label string) bool {
	for _, r := range supportedRatios {
		if r.Label == label {
			return true
		}
	}
	return false
}

// ClosestRatio maps width/height to the nearest supported ratio label.
func ClosestRatio(width, height int) (string, error) {
	if width <= 0 || height <= 0 {
		return "", fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}
	target := float64(width) / float64(height)
	best := supportedRatios[0].Label
	minDiff := math.Inf(1)
	for _, r := range supportedRatios {
		if diff := math.Abs(target - r.Value); diff < minDiff {
			minDiff = diff
			best = r.Label
		}
	}
	return best, nil
}

// Dimensions decodes only the image header and returns its pixel size.
func Dimensions(data []byte) (int, int, error) {
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return 0, 0, fmt.Errorf("imagegen: read dimensions: %w", err)
	}
	return cfg.Width, cfg.Height, nil
}

// InferRatio picks the ratio for an encoded image. When the dimensions
// cannot be read it returns DefaultAspectRatio and a non-nil warning; the
// label is always usable.
func InferRatio(data []byte) (string, error) {
	w, h, err := Dimensions(data)
	if err != nil {
		return DefaultAspectRatio, err
	}
	label, err := ClosestRatio(w, h)
	if err != nil {
		return DefaultAspectRatio, err
	}
	return label, nil
}
