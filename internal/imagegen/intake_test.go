package imagegen

import (
	"bytes"
	"image"
	"image/color/palette"
	"image/gif"
	"image/jpeg"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tryon/internal/domain"
)

func TestNewSourceImageAcceptsPNG(t *testing.T) {
	img, err := NewSourceImage("person.png", "application/octet-stream", encodePNG(t, 30, 40))
	require.NoError(t, err)
	assert.Equal(t, "person.png", img.Name)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, 30, img.Width)
	assert.Equal(t, 40, img.Height)
}

func TestNewSourceImageAcceptsJPEGWithoutName(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 16, 16)), nil))
	img, err := NewSourceImage("", "", buf.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "image.jpg", img.Name)
	assert.Equal(t, "image/jpeg", img.MIMEType)
}

func TestNewSourceImageStripsDirectories(t *testing.T) {
	img, err := NewSourceImage("../../etc/cloth.PNG", "image/png", encodePNG(t, 4, 4))
	require.NoError(t, err)
	assert.Equal(t, "cloth.PNG", img.Name)
}

func TestNewSourceImageRejects(t *testing.T) {
	var gifBuf bytes.Buffer
	require.NoError(t, gif.Encode(&gifBuf, image.NewPaletted(image.Rect(0, 0, 2, 2), palette.Plan9), nil))

	tests := []struct {
		name string
		file string
		data []byte
	}{
		{"empty", "person.png", nil},
		{"gif content", "person.gif", gifBuf.Bytes()},
		{"text content", "person.png", []byte("hello")},
		{"png with wrong extension", "person.webp", encodePNG(t, 2, 2)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSourceImage(tt.file, "image/png", tt.data)
			assert.ErrorIs(t, err, domain.ErrInvalidImage)
		})
	}
}
