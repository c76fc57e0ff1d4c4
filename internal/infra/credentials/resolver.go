// Package credentials resolves the NanoBanana API key from an ordered list of
// providers and persists keys entered by the user.
package credentials

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tryon/internal/domain"
)

// Provider yields an API key, or an empty string when it holds none.
type Provider interface {
	Name() string
	Lookup(ctx context.Context) (string, error)
}

// Saver is a Provider that can also persist a key.
type Saver interface {
	Provider
	Save(ctx context.Context, key string) error
}

// Resolution is a resolved key together with the provider that supplied it.
type Resolution struct {
	Key    string
	Source string
}

// Resolve walks providers in order and returns the first non-empty key.
// Lookup failures skip the provider; when nothing is found the result wraps
// domain.ErrMissingCredential together with any lookup failures.
func Resolve(ctx context.Context, providers ...Provider) (Resolution, error) {
	var errs []error
	for _, p := range providers {
		if p == nil {
			continue
		}
		key, err := p.Lookup(ctx)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		if key = strings.TrimSpace(key); key != "" {
			return Resolution{Key: key, Source: p.Name()}, nil
		}
	}
	return Resolution{}, errors.Join(append([]error{domain.ErrMissingCredential}, errs...)...)
}

// Resolver binds an ordered provider chain.
type Resolver struct {
	providers []Provider
}

// NewResolver returns a resolver over providers; nil entries are dropped.
func NewResolver(providers ...Provider) *Resolver {
	kept := make([]Provider, 0, len(providers))
	for _, p := range providers {
		if p != nil {
			kept = append(kept, p)
		}
	}
	return &Resolver{providers: kept}
}

// Resolve returns the first non-empty key in provider order.
func (r *Resolver) Resolve(ctx context.Context) (Resolution, error) {
	if r == nil {
		return Resolution{}, domain.ErrMissingCredential
	}
	return Resolve(ctx, r.providers...)
}

// Sources lists provider names in resolution order.
func (r *Resolver) Sources() []string {
	if r == nil {
		return nil
	}
	names := make([]string, 0, len(r.providers))
	for _, p := range r.providers {
		names = append(names, p.Name())
	}
	return names
}

// Save persists key with the first saver that accepts it and returns its name.
func (r *Resolver) Save(ctx context.Context, key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("credentials: api key is required")
	}
	if r == nil {
		return "", errors.New("credentials: no persistent store configured")
	}
	var errs []error
	for _, p := range r.providers {
		saver, ok := p.(Saver)
		if !ok {
			continue
		}
		if err := saver.Save(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", saver.Name(), err))
			continue
		}
		return saver.Name(), nil
	}
	if len(errs) == 0 {
		return "", errors.New("credentials: no persistent store configured")
	}
	return "", errors.Join(errs...)
}
