package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/m-mizutani/goerr/v2"
	_ "github.com/mattn/go-sqlite3"
	"github.com/secmon-lab/leetwatch/pkg/domain/interfaces"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

const schema = `CREATE TABLE IF NOT EXISTS kv_entries (
	entry_key   TEXT PRIMARY KEY,
	entry_value TEXT NOT NULL,
	expires_at  BIGINT NOT NULL DEFAULT 0
)`

// Store is a KeyValueStore backed by a single SQL table. expires_at holds
// unix milliseconds, 0 meaning no expiry.
type Store struct {
	db *sqlx.DB
}

var _ interfaces.KeyValueStore = &Store{}

type entryRow struct {
	Value     string `db:"entry_value"`
	ExpiresAt int64  `db:"expires_at"`
}

// New opens the database and creates the table when missing
func New(ctx context.Context, driver, dsn string) (*Store, error) {
	switch driver {
	case DriverSQLite, DriverPostgres:
	default:
		return nil, goerr.New("unsupported sql driver", goerr.V("driver", driver))
	}

	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("driver", driver))
	}
	if driver == DriverSQLite {
		// sqlite allows a single writer; ":memory:" databases are per connection
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to connect database", goerr.V("driver", driver))
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to migrate database", goerr.V("driver", driver))
	}

	return &Store{db: db}, nil
}

func (s *Store) Get(ctx context.Context, key string, now time.Time) (string, bool, error) {
	var row entryRow
	query := s.db.Rebind(`SELECT entry_value, expires_at FROM kv_entries WHERE entry_key = ?`)
	if err := s.db.GetContext(ctx, &row, query, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, goerr.Wrap(err, "failed to get entry", goerr.V("key", key))
	}

	if row.ExpiresAt != 0 && row.ExpiresAt <= now.UnixMilli() {
		return "", false, nil
	}

	return row.Value, true, nil
}

func (s *Store) Put(ctx context.Context, key, value string, expiresAt time.Time) error {
	var expires int64
	if !expiresAt.IsZero() {
		expires = expiresAt.UnixMilli()
	}

	query := s.db.Rebind(`INSERT INTO kv_entries (entry_key, entry_value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT (entry_key) DO UPDATE SET entry_value = excluded.entry_value, expires_at = excluded.expires_at`)
	if _, err := s.db.ExecContext(ctx, query, key, value, expires); err != nil {
		return goerr.Wrap(err, "failed to put entry", goerr.V("key", key))
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	query := s.db.Rebind(`DELETE FROM kv_entries WHERE entry_key = ?`)
	if _, err := s.db.ExecContext(ctx, query, key); err != nil {
		return goerr.Wrap(err, "failed to delete entry", goerr.V("key", key))
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
