package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

type fileContents struct {
	NanoBananaAPIKey string `json:"nanobanana_api_key"`
}

// FileProvider keeps the key in a small JSON document readable only by the owner.
type FileProvider struct {
	path string
}

// DefaultFilePath returns <user config dir>/tryon/credentials.json.
func DefaultFilePath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("credentials: locate config dir: %w", err)
	}
	return filepath.Join(dir, "tryon", "credentials.json"), nil
}

// NewFileProvider returns a provider rooted at path.
func NewFileProvider(path string) *FileProvider {
	return &FileProvider{path: strings.TrimSpace(path)}
}

func (p *FileProvider) Name() string { return "file" }

// Path returns the backing file location.
func (p *FileProvider) Path() string { return p.path }

func (p *FileProvider) Lookup(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	raw, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", fmt.Errorf("read %s: %w", p.path, err)
	}
	var contents fileContents
	if err := json.Unmarshal(raw, &contents); err != nil {
		return "", fmt.Errorf("decode %s: %w", p.path, err)
	}
	return strings.TrimSpace(contents.NanoBananaAPIKey), nil
}

func (p *FileProvider) Save(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if p.path == "" {
		return errors.New("file path is required")
	}
	if err := os.MkdirAll(filepath.Dir(p.path), 0o700); err != nil {
		return fmt.Errorf("ensure directory: %w", err)
	}
	raw, err := json.MarshalIndent(fileContents{NanoBananaAPIKey: strings.TrimSpace(key)}, "", "  ")
	if err != nil {
		return err
	}
	tmp := p.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, p.path); err != nil {
		return fmt.Errorf("replace %s: %w", p.path, err)
	}
	return nil
}

var _ Saver = (*FileProvider)(nil)
