package tryon

import (
	"context"
	"errors"

	"tryon/internal/domain"
)

type messageKey int

const (
	msgUnexpected messageKey = iota
	msgMissingCredential
	msgInvalidImage
	msgUploadFailed
	msgSubmitFailed
	msgGenerationFailed
	msgTimeout
	msgBusy
	msgCancelled
)

var catalog = map[string]map[messageKey]string{
	"en": {
		msgUnexpected:        "An unexpected error occurred.",
		msgMissingCredential: "API key not found. Save your NanoBanana API key first.",
		msgInvalidImage:      "Please upload both a person and a clothing image (JPG or PNG).",
		msgUploadFailed:      "Failed to upload the image. Please try again.",
		msgSubmitFailed:      "Task creation failed.",
		msgGenerationFailed:  "Model processing failed. Please try different images.",
		msgTimeout:           "Request timed out.",
		msgBusy:              "Another generation is still running. Please wait for it to finish.",
		msgCancelled:         "The request was cancelled.",
	},
	"id": {
		msgUnexpected:        "Terjadi kesalahan yang tidak terduga.",
		msgMissingCredential: "API key tidak ditemukan. Simpan API key NanoBanana terlebih dahulu.",
		msgInvalidImage:      "Unggah foto orang dan foto pakaian (JPG atau PNG).",
		msgUploadFailed:      "Gagal mengunggah gambar. Silakan coba lagi.",
		msgSubmitFailed:      "Gagal membuat tugas.",
		msgGenerationFailed:  "Model gagal memproses. Coba gunakan gambar lain.",
		msgTimeout:           "Permintaan melewati batas waktu.",
		msgBusy:              "Masih ada proses lain yang berjalan. Tunggu hingga selesai.",
		msgCancelled:         "Permintaan dibatalkan.",
	},
}

// Message returns the user-facing text for err in locale ("en" or "id").
func Message(locale string, err error) string {
	texts, ok := catalog[locale]
	if !ok {
		texts = catalog["en"]
	}
	return texts[classify(err)]
}

func classify(err error) messageKey {
	switch {
	case errors.Is(err, domain.ErrMissingCredential):
		return msgMissingCredential
	case errors.Is(err, domain.ErrInvalidImage):
		return msgInvalidImage
	case errors.Is(err, domain.ErrUploadFailed):
		return msgUploadFailed
	case errors.Is(err, domain.ErrSubmitFailed), errors.Is(err, domain.ErrMissingTaskID):
		return msgSubmitFailed
	case errors.Is(err, domain.ErrGenerationFailed), errors.Is(err, domain.ErrMissingResult):
		return msgGenerationFailed
	case errors.Is(err, domain.ErrTimeout):
		return msgTimeout
	case errors.Is(err, domain.ErrBusy):
		return msgBusy
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return msgCancelled
	default:
		return msgUnexpected
	}
}

// Detail returns the upstream reason behind an upload, submission or
// generation failure, such as the provider's own error message. It is empty
// for every other kind of error.
func Detail(err error) string {
	if err == nil {
		return ""
	}
	switch classify(err) {
	case msgUploadFailed, msgSubmitFailed, msgGenerationFailed:
		return err.Error()
	default:
		return ""
	}
}
