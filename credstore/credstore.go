// Package credstore persists hashed credentials in PostgreSQL or MySQL.
//
// Each stored row is keyed by an identifier.Identifier and holds at most one
// password hash and one key hash, serialized through the credhash string
// format. The store never sees plaintext credentials. A closed sentinel
// credential round-trips as its sentinel string; an absent credential is a
// SQL NULL and loads back as nil.
package credstore

import (
	"context"

	"github.com/credforge/credkit/credhash"
	"github.com/credforge/credkit/identifier"
)

// Driver selects the backing database.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverMySQL    Driver = "mysql"
)

// Store is the persistence interface for hashed credentials.
// Both the PostgreSQL and MySQL implementations satisfy it.
type Store interface {
	// SavePassword stores the password hash for id, creating the row if
	// needed. A nil hash clears the stored password.
	SavePassword(ctx context.Context, id identifier.Identifier, hp *credhash.HashedPassword) error

	// Password loads the password hash for id. A stored NULL returns
	// (nil, nil); a missing row returns a not-found error.
	Password(ctx context.Context, id identifier.Identifier) (*credhash.HashedPassword, error)

	// SaveKey stores the key hash for id, creating the row if needed.
	// A nil hash clears the stored key.
	SaveKey(ctx context.Context, id identifier.Identifier, hk *credhash.HashedKey) error

	// Key loads the key hash for id. A stored NULL returns (nil, nil);
	// a missing row returns a not-found error.
	Key(ctx context.Context, id identifier.Identifier) (*credhash.HashedKey, error)

	// Delete removes the row for id. Deleting a missing row returns a
	// not-found error.
	Delete(ctx context.Context, id identifier.Identifier) error

	// Migrate creates the credentials table if it does not exist.
	Migrate(ctx context.Context) error

	// Health checks that the database is reachable.
	Health(ctx context.Context) error

	// Stats returns connection pool statistics.
	Stats() PoolStats

	// Driver reports which database backs the store.
	Driver() Driver

	// Close releases the connection pool. Call during shutdown only.
	Close() error
}

// PoolStats holds connection pool statistics.
type PoolStats struct {
	AcquiredConns int32
	IdleConns     int32
	TotalConns    int32
	MaxConns      int32
}

// Ensure both implementations satisfy Store at compile time.
var (
	_ Store = (*postgresStore)(nil)
	_ Store = (*mysqlStore)(nil)
)

// Open connects to the database named by cfg.Driver and returns a Store.
func Open(ctx context.Context, cfg *Config) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Driver {
	case DriverPostgres:
		return openPostgres(ctx, cfg)
	case DriverMySQL:
		return openMySQL(ctx, cfg)
	default:
		return nil, errInvalidDriver
	}
}
