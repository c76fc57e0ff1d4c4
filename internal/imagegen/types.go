package imagegen

import "context"

// SourceImage is a user-supplied image held in memory until it is uploaded.
type SourceImage struct {
	Name     string
	MIMEType string
	Data     []byte
	Width    int
	Height   int
}

// Uploader publishes an image and returns a publicly fetchable URL.
type Uploader interface {
	Upload(ctx context.Context, img SourceImage) (string, error)
}
