package credstore

import (
	"context"
	"database/sql"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver

	"github.com/credforge/credkit/credhash"
	kerrors "github.com/credforge/credkit/errors"
	"github.com/credforge/credkit/identifier"
)

const mysqlSchema = `
CREATE TABLE IF NOT EXISTS credentials (
	id            CHAR(22) PRIMARY KEY,
	password_hash TEXT,
	key_hash      TEXT,
	created_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
	updated_at    TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`

// mysqlStore persists credentials through database/sql with the MySQL
// driver.
type mysqlStore struct {
	db      *sql.DB
	cfg     *Config
	logger  *slog.Logger
	metrics MetricsCollector

	closeOnce sync.Once
}

func openMySQL(ctx context.Context, cfg *Config) (*mysqlStore, error) {
	db, err := sql.Open("mysql", buildMySQLDSN(cfg))
	if err != nil {
		return nil, wrapError(err, "failed to open MySQL connection")
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, wrapError(err, "failed to ping MySQL database")
	}

	s := &mysqlStore{
		db:      db,
		cfg:     cfg,
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
	}

	if s.logger != nil {
		s.logger.Info("MySQL credential store connected",
			slog.String("dsn", cfg.MaskedDSN()),
			slog.Int("max_conns", cfg.MaxOpenConns),
		)
	}

	return s, nil
}

// buildMySQLDSN appends driver parameters the store depends on: parseTime
// for TIMESTAMP columns and timeouts derived from the config.
func buildMySQLDSN(cfg *Config) string {
	params := url.Values{}
	params.Add("parseTime", "true")
	params.Add("loc", "UTC")
	params.Add("charset", "utf8mb4")
	if cfg.ConnectTimeout > 0 {
		params.Add("timeout", cfg.ConnectTimeout.String())
	}
	if cfg.QueryTimeout > 0 {
		params.Add("readTimeout", cfg.QueryTimeout.String())
		params.Add("writeTimeout", cfg.QueryTimeout.String())
	}

	if strings.Contains(cfg.DSN, "?") {
		return cfg.DSN + "&" + params.Encode()
	}
	return cfg.DSN + "?" + params.Encode()
}

func (s *mysqlStore) run(ctx context.Context, op string, fn func(context.Context) error) error {
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

func (s *mysqlStore) Migrate(ctx context.Context) error {
	return s.run(ctx, "migrate", func(ctx context.Context) error {
		if _, err := s.db.ExecContext(ctx, mysqlSchema); err != nil {
			return wrapError(err, "failed to create credentials table")
		}
		return nil
	})
}

func (s *mysqlStore) SavePassword(ctx context.Context, id identifier.Identifier, hp *credhash.HashedPassword) error {
	var encoded any
	if hp != nil {
		encoded = hp.String()
	}
	return s.run(ctx, "save_password", func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO credentials (id, password_hash) VALUES (?, ?)
			ON DUPLICATE KEY UPDATE password_hash = VALUES(password_hash)`,
			id.String(), encoded)
		if err != nil {
			return wrapError(err, "failed to save password hash")
		}
		return nil
	})
}

func (s *mysqlStore) Password(ctx context.Context, id identifier.Identifier) (*credhash.HashedPassword, error) {
	var encoded *string
	err := s.run(ctx, "load_password", func(ctx context.Context) error {
		row := s.db.QueryRowContext(ctx,
			`SELECT password_hash FROM credentials WHERE id = ?`, id.String())
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

func (s *mysqlStore) SaveKey(ctx context.Context, id identifier.Identifier, hk *credhash.HashedKey) error {
	var encoded any
	if hk != nil {
		encoded = hk.String()
	}
	return s.run(ctx, "save_key", func(ctx context.Context) error {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO credentials (id, key_hash) VALUES (?, ?)
			ON DUPLICATE KEY UPDATE key_hash = VALUES(key_hash)`,
			id.String(), encoded)
		if err != nil {
			return wrapError(err, "failed to save key hash")
		}
		return nil
	})
}

func (s *mysqlStore) Key(ctx context.Context, id identifier.Identifier) (*credhash.HashedKey, error) {
	var encoded *string
	err := s.run(ctx, "load_key", func(ctx context.Context) error {
		row := s.db.QueryRowContext(ctx,
			`SELECT key_hash FROM credentials WHERE id = ?`, id.String())
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

func (s *mysqlStore) Delete(ctx context.Context, id identifier.Identifier) error {
	return s.run(ctx, "delete", func(ctx context.Context) error {
		result, err := s.db.ExecContext(ctx,
			`DELETE FROM credentials WHERE id = ?`, id.String())
		if err != nil {
			return wrapError(err, "failed to delete credential")
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return wrapError(err, "failed to read delete result")
		}
		if affected == 0 {
			return kerrors.Newf(kerrors.CodeNotFound, "credential %s not found", id)
		}
		return nil
	})
}

func (s *mysqlStore) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		return wrapError(err, "store health check failed")
	}
	return nil
}

func (s *mysqlStore) Stats() PoolStats {
	stat := s.db.Stats()
	return PoolStats{
		AcquiredConns: int32(stat.InUse),
		IdleConns:     int32(stat.Idle),
		TotalConns:    int32(stat.OpenConnections),
		MaxConns:      int32(stat.MaxOpenConnections),
	}
}

func (s *mysqlStore) Driver() Driver {
	return DriverMySQL
}

func (s *mysqlStore) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.db.Close()
		if s.logger != nil {
			s.logger.Info("MySQL credential store closed")
		}
	})
	return err
}
