package main

import (
	"bytes"
	"errors"
	"fmt"
	stdimage "image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"tryon/internal/domain"
	"tryon/internal/providers/image"
)

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewCLI()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func TestRatiosCommand(t *testing.T) {
	out, _, err := execute(t, "ratios")
	if err != nil {
		t.Fatalf("ratios: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 11 {
		t.Fatalf("expected header + 10 rows, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[1], "1:1") || !strings.HasPrefix(lines[10], "21:9") {
		t.Fatalf("unexpected order:\n%s", out)
	}
	if !strings.Contains(out, "*") {
		t.Fatal("default ratio not marked")
	}
}

func TestRatioCommandDimensions(t *testing.T) {
	out, _, err := execute(t, "ratio", "1080", "1920")
	if err != nil {
		t.Fatalf("ratio: %v", err)
	}
	if strings.TrimSpace(out) != "9:16" {
		t.Fatalf("got %q", out)
	}
	if _, _, err := execute(t, "ratio", "0", "10"); err == nil {
		t.Fatal("expected error for zero width")
	}
}

func TestRatioCommandFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "p.png")
	var buf bytes.Buffer
	if err := png.Encode(&buf, stdimage.NewRGBA(stdimage.Rect(0, 0, 1920, 1080))); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatal(err)
	}
	out, _, err := execute(t, "ratio", path)
	if err != nil {
		t.Fatalf("ratio: %v", err)
	}
	if strings.TrimSpace(out) != "16:9" {
		t.Fatalf("got %q", out)
	}

	garbage := filepath.Join(t.TempDir(), "g.png")
	_ = os.WriteFile(garbage, []byte("nope"), 0o600)
	out, errOut, err := execute(t, "ratio", garbage)
	if err != nil {
		t.Fatalf("ratio: %v", err)
	}
	if strings.TrimSpace(out) != "3:4" || !strings.Contains(errOut, "warning") {
		t.Fatalf("out=%q err=%q", out, errOut)
	}
}

func TestRunRequiresFlags(t *testing.T) {
	if _, _, err := execute(t, "run"); err == nil {
		t.Fatal("expected missing flag error")
	}
}

func TestPrintProgress(t *testing.T) {
	var buf bytes.Buffer
	printProgress(&buf, image.Event{Stage: image.StagePolling, TaskID: "t", Attempt: 30, MaxAttempts: 60, Detail: "pending"})
	if !strings.Contains(buf.String(), "(50%)") {
		t.Fatalf("got %q", buf.String())
	}
}

func TestReportPrintsProviderReason(t *testing.T) {
	var errOut bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetErr(&errOut)
	cause := fmt.Errorf("%w: nanobanana: Insufficient credits (code 402)", domain.ErrSubmitFailed)

	err := report(cmd, "id", cause)
	if !errors.Is(err, domain.ErrSubmitFailed) {
		t.Fatalf("report returned %v", err)
	}
	got := errOut.String()
	if !strings.Contains(got, "error: Gagal membuat tugas.") {
		t.Fatalf("localized line missing: %q", got)
	}
	if !strings.Contains(got, "Insufficient credits (code 402)") {
		t.Fatalf("provider reason missing: %q", got)
	}
	if !cmd.SilenceErrors {
		t.Fatal("cobra would print the error a second time")
	}
}
