package credentials

import (
	"context"
	"fmt"

	"tryon/internal/infra"
)

// NewDefaultResolver builds the resolution order env → keyring → file →
// database. The database provider is only added when sql is non-nil.
func NewDefaultResolver(cfg *infra.Config, sql infra.SQLExecutor) (*Resolver, error) {
	path := cfg.CredentialsFile
	if path == "" {
		p, err := DefaultFilePath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	providers := []Provider{
		NewEnvProvider(),
		NewKeyringProvider(cfg.KeyringService, cfg.KeyringUser),
		NewFileProvider(path),
	}
	if sql != nil {
		providers = append(providers, NewStore(sql))
	}
	return NewResolver(providers...), nil
}

// Open builds the default resolver, connecting to Postgres when
// DATABASE_URL is configured. The returned close func is never nil.
func Open(ctx context.Context, cfg *infra.Config, logger infra.Logger) (*Resolver, func(), error) {
	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		return nil, func() {}, err
	}
	closeFn := func() {}
	var sql infra.SQLExecutor
	if pool != nil {
		closeFn = pool.Close
		runner := infra.NewSQLRunner(pool, logger)
		if err := NewStore(runner).EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, func() {}, fmt.Errorf("credentials: ensure schema: %w", err)
		}
		sql = runner
	}
	resolver, err := NewDefaultResolver(cfg, sql)
	if err != nil {
		closeFn()
		return nil, func() {}, err
	}
	logger.Debug().Strs("sources", resolver.Sources()).Msg("credentials: resolver ready")
	return resolver, closeFn, nil
}
