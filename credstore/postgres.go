package credstore

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/credforge/credkit/credhash"
	kerrors "github.com/credforge/credkit/errors"
	"github.com/credforge/credkit/identifier"
)

const pgSchema = `
CREATE TABLE IF NOT EXISTS credentials (
	id            CHAR(22) PRIMARY KEY,
	password_hash TEXT,
	key_hash      TEXT,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// postgresStore persists credentials through a pgxpool.Pool.
type postgresStore struct {
	pool    *pgxpool.Pool
	cfg     *Config
	logger  *slog.Logger
	metrics MetricsCollector

	closeOnce sync.Once
}

func openPostgres(ctx context.Context, cfg *Config) (*postgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, wrapError(err, "failed to parse PostgreSQL DSN")
	}

	poolConfig.MaxConns = int32(cfg.MaxOpenConns)
	poolConfig.MinConns = int32(cfg.MaxIdleConns)
	poolConfig.MaxConnLifetime = cfg.ConnMaxLifetime
	if cfg.ConnectTimeout > 0 {
		poolConfig.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}

	connectCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		connectCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}

	pool, err := pgxpool.NewWithConfig(connectCtx, poolConfig)
	if err != nil {
		return nil, wrapError(err, "failed to create PostgreSQL connection pool")
	}
	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, wrapError(err, "failed to ping PostgreSQL database")
	}

	s := &postgresStore{
		pool:    pool,
		cfg:     cfg,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}

	if s.logger != nil {
		s.logger.Info("PostgreSQL credential store connected",
			slog.String("dsn", cfg.MaskedDSN()),
			slog.Int("max_conns", cfg.MaxOpenConns),
		)
	}

	return s, nil
}

// run bounds an operation with the configured query timeout, retries
// transient failures, and records metrics.
func (s *postgresStore) run(ctx context.Context, op string, fn func(context.Context) error) error {
	if s.cfg.QueryTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.QueryTimeout)
		defer cancel()
	}
	start := time.Now()
	err := withRetry(ctx, s.cfg, fn)
	if s.metrics != nil {
		s.metrics.RecordOperation(ctx, op, time.Since(start), err)
	}
	return err
}

func (s *postgresStore) Migrate(ctx context.Context) error {
	return s.run(ctx, "migrate", func(ctx context.Context) error {
		if _, err := s.pool.Exec(ctx, pgSchema); err != nil {
			return wrapError(err, "failed to create credentials table")
		}
		return nil
	})
}

func (s *postgresStore) SavePassword(ctx context.Context, id identifier.Identifier, hp *credhash.HashedPassword) error {
	var encoded any
	if hp != nil {
		encoded = hp.String()
	}
	return s.run(ctx, "save_password", func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO credentials (id, password_hash) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE
			SET password_hash = EXCLUDED.password_hash, updated_at = now()`,
			id.String(), encoded)
		if err != nil {
			return wrapError(err, "failed to save password hash")
		}
		return nil
	})
}

func (s *postgresStore) Password(ctx context.Context, id identifier.Identifier) (*credhash.HashedPassword, error) {
	var encoded *string
	err := s.run(ctx, "load_password", func(ctx context.Context) error {
		row := s.pool.QueryRow(ctx,
			`SELECT password_hash FROM credentials WHERE id = $1`, id.String())
		if err := row.Scan(&encoded); err != nil {
			return wrapError(err, "failed to load password hash")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if encoded == nil {
		return nil, nil
	}
	hp, err := credhash.ParsePassword(*encoded)
	if err != nil {
		return nil, kerrors.Wrap(err, kerrors.Classify(err), "stored password hash is corrupt")
	}
	return hp, nil
}

func (s *postgresStore) SaveKey(ctx context.Context, id identifier.Identifier, hk *credhash.HashedKey) error {
	var encoded any
	if hk != nil {
		encoded = hk.String()
	}
	return s.run(ctx, "save_key", func(ctx context.Context) error {
		_, err := s.pool.Exec(ctx, `
			INSERT INTO credentials (id, key_hash) VALUES ($1, $2)
			ON CONFLICT (id) DO UPDATE
			SET key_hash = EXCLUDED.key_hash, updated_at = now()`,
			id.String(), encoded)
		if err != nil {
			return wrapError(err, "failed to save key hash")
		}
		return nil
	})
}

func (s *postgresStore) Key(ctx context.Context, id identifier.Identifier) (*credhash.HashedKey, error) {
	var encoded *string
	err := s.run(ctx, "load_key", func(ctx context.Context) error {
		row := s.pool.QueryRow(ctx,
			`SELECT key_hash FROM credentials WHERE id = $1`, id.String())
		if err := row.Scan(&encoded); err != nil {
			return wrapError(err, "failed to load key hash")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if encoded == nil {
		return nil, nil
	}
	hk, err := credhash.ParseKey(*encoded)
	if err != nil {
		return nil, kerrors.Wrap(err, kerrors.Classify(err), "stored key hash is corrupt")
	}
	return hk, nil
}

func (s *postgresStore) Delete(ctx context.Context, id identifier.Identifier) error {
	return s.run(ctx, "delete", func(ctx context.Context) error {
		tag, err := s.pool.Exec(ctx,
			`DELETE FROM credentials WHERE id = $1`, id.String())
		if err != nil {
			return wrapError(err, "failed to delete credential")
		}
		if tag.RowsAffected() == 0 {
			return kerrors.Newf(kerrors.CodeNotFound, "credential %s not found", id)
		}
		return nil
	})
}

func (s *postgresStore) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.pool.Ping(ctx); err != nil {
		return wrapError(err, "store health check failed")
	}
	return nil
}

func (s *postgresStore) Stats() PoolStats {
	stat := s.pool.Stat()
	return PoolStats{
		AcquiredConns: stat.AcquiredConns(),
		IdleConns:     stat.IdleConns(),
		TotalConns:    stat.TotalConns(),
		MaxConns:      stat.MaxConns(),
	}
}

func (s *postgresStore) Driver() Driver {
	return DriverPostgres
}

func (s *postgresStore) Close() error {
	s.closeOnce.Do(func() {
		s.pool.Close()
		if s.logger != nil {
			s.logger.Info("PostgreSQL credential store closed")
		}
	})
	return nil
}
