package tryon

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"tryon/internal/domain"
)

func TestMessage(t *testing.T) {
	cases := []struct {
		locale string
		err    error
		want   string
	}{
		{"en", domain.ErrMissingCredential, catalog["en"][msgMissingCredential]},
		{"id", fmt.Errorf("task x: %w", domain.ErrTimeout), catalog["id"][msgTimeout]},
		{"en", fmt.Errorf("person image: %w", domain.ErrUploadFailed), catalog["en"][msgUploadFailed]},
		{"en", domain.ErrMissingTaskID, catalog["en"][msgSubmitFailed]},
		{"en", domain.ErrMissingResult, catalog["en"][msgGenerationFailed]},
		{"id", domain.ErrBusy, catalog["id"][msgBusy]},
		{"en", context.Canceled, catalog["en"][msgCancelled]},
		{"fr", domain.ErrInvalidImage, catalog["en"][msgInvalidImage]},
		{"en", errors.New("boom"), catalog["en"][msgUnexpected]},
	}
	for _, tc := range cases {
		if got := Message(tc.locale, tc.err); got != tc.want {
			t.Errorf("Message(%q, %v) = %q, want %q", tc.locale, tc.err, got, tc.want)
		}
	}
}

func TestCatalogsComplete(t *testing.T) {
	for locale, texts := range catalog {
		for key := msgUnexpected; key <= msgCancelled; key++ {
			if texts[key] == "" {
				t.Errorf("locale %s missing message %d", locale, key)
			}
		}
	}
}

func TestDetail(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"submit", fmt.Errorf("%w: nanobanana: Insufficient credits (code 402)", domain.ErrSubmitFailed), "task submission failed: nanobanana: Insufficient credits (code 402)"},
		{"upload", fmt.Errorf("person image: %w: tmpfiles: status 503: down", domain.ErrUploadFailed), "person image: upload failed: tmpfiles: status 503: down"},
		{"generation", fmt.Errorf("task t1: %w: content blocked (flag 2)", domain.ErrGenerationFailed), "task t1: generation failed: content blocked (flag 2)"},
		{"missing credential", domain.ErrMissingCredential, ""},
		{"unexpected", errors.New("boom"), ""},
		{"nil", nil, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Detail(tc.err); got != tc.want {
				t.Errorf("Detail(%v) = %q, want %q", tc.err, got, tc.want)
			}
		})
	}
}
