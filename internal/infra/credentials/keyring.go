package credentials

import (
	"context"
	"errors"
	"strings"

	"github.com/zalando/go-keyring"
)

// KeyringProvider stores the key in the operating system keychain.
type KeyringProvider struct {
	service string
	user    string
}

// NewKeyringProvider returns a provider for the given keychain entry.
func NewKeyringProvider(service, user string) *KeyringProvider {
	return &KeyringProvider{service: service, user: user}
}

func (p *KeyringProvider) Name() string { return "keyring" }

func (p *KeyringProvider) Lookup(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	secret, err := keyring.Get(p.service, p.user)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(secret), nil
}

func (p *KeyringProvider) Save(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return keyring.Set(p.service, p.user, strings.TrimSpace(key))
}

// Delete removes the stored key. Missing entries are not an error.
func (p *KeyringProvider) Delete(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := keyring.Delete(p.service, p.user); err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return err
	}
	return nil
}

var _ Saver = (*KeyringProvider)(nil)
