package credentials

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"tryon/internal/infra"
	"tryon/internal/sqlinline"
)

const (
	ProviderNanoBanana = "nanobanana"
)

// Store reads and writes integration tokens kept in Postgres.
type Store struct {
	sql      infra.SQLExecutor
	provider string
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql, provider: ProviderNanoBanana}
}

// EnsureSchema creates the integration_tokens table when it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.sql.Exec(ctx, sqlinline.QCreateIntegrationTokens)
	return err
}

func (s *Store) Name() string { return "database" }

func (s *Store) Lookup(ctx context.Context) (string, error) {
	return s.Token(ctx, s.provider)
}

func (s *Store) Save(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return errors.New("nanobanana api key is required")
	}
	return s.upsert(ctx, s.provider, key, map[string]any{"source": "tryon"})
}

func (s *Store) Token(ctx context.Context, provider string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectIntegrationToken, provider)
	var token string
	if err := row.Scan(&token); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(token), nil
}

func (s *Store) upsert(ctx context.Context, provider, token string, props map[string]any) error {
	payload := props
	if payload == nil {
		payload = map[string]any{}
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	_, err = s.sql.Exec(ctx, sqlinline.QUpsertIntegrationToken, provider, token, raw)
	return err
}

var _ Saver = (*Store)(nil)
