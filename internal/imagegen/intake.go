package imagegen

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"tryon/internal/domain"
)

var acceptedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

var acceptedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// NewSourceImage filters an uploaded file by type. The content is sniffed
// and must be JPEG or PNG; a filename extension, when present, must agree.
// The declared media type is replaced by the detected one.
func NewSourceImage(name, declared string, data []byte) (SourceImage, error) {
	if len(data) == 0 {
		return SourceImage{}, fmt.Errorf("%w: %s is empty", domain.ErrInvalidImage, displayName(name))
	}
	detected := mimetype.Detect(data)
	mime := detected.String()
	if idx := strings.IndexByte(mime, ';'); idx >= 0 {
		mime = mime[:idx]
	}
	ext, ok := acceptedTypes[mime]
	if !ok {
		return SourceImage{}, fmt.Errorf("%w: %s has unsupported type %s (declared %q)", domain.ErrInvalidImage, displayName(name), mime, declared)
	}
	name = strings.TrimSpace(filepath.Base(name))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "image" + ext
	}
	if e := strings.ToLower(filepath.Ext(name)); e != "" {
		if _, ok := acceptedExtensions[e]; !ok {
			return SourceImage{}, fmt.Errorf("%w: %s has unsupported extension %s", domain.ErrInvalidImage, name, e)
		}
	}
	img := SourceImage{Name: name, MIMEType: mime, Data: data}
	if w, h, err := Dimensions(data); err == nil {
		img.Width, img.Height = w, h
	}
	return img, nil
}

func displayName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "image"
	}
	return name
}
