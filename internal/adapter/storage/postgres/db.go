package postgres

import (
	"context"
	"fmt"

	"member-finance/config"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// applicationName tags finance connections in pg_stat_activity.
const applicationName = "member-finance"

// NewPool opens the pool shared by the finance repositories and fails fast
// when the ledger database cannot be reached.
func NewPool(ctx context.Context, cfg config.DatabaseConfig, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := financePoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("open finance pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("reach finance database %s/%s: %w", cfg.Host, cfg.DBName, err)
	}

	log.Info().
		Str("db_host", cfg.Host).
		Str("db_name", cfg.DBName).
		Int32("pool_max", poolCfg.MaxConns).
		Int32("pool_min", poolCfg.MinConns).
		Msg("Finance ledger database ready")

	return pool, nil
}

// financePoolConfig turns DatabaseConfig into pool settings. Zero values
// keep the pgxpool defaults.
func financePoolConfig(cfg config.DatabaseConfig) (*pgxpool.Config, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("parse finance database settings: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 && cfg.MinConns <= poolCfg.MaxConns {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	poolCfg.ConnConfig.RuntimeParams["application_name"] = applicationName

	return poolCfg, nil
}
