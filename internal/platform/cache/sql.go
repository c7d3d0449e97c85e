package cache

import (
	"context"
	"database/sql"
	stderrors "errors"
	"io/fs"
	"strings"
	"time"

	crerr "github.com/cockroachdb/errors"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/riskibarqy/ballstats/migrations"
	_ "modernc.org/sqlite"
)

const (
	DialectPostgres = "postgres"
	DialectSQLite   = "sqlite"
)

func init() {
	sqlx.BindDriver(DialectSQLite, sqlx.QUESTION)
}

const (
	selectEntrySQL = `SELECT cache_value FROM cache_entries WHERE cache_key = ?`
	upsertEntrySQL = `INSERT INTO cache_entries (cache_key, cache_value, updated_at) VALUES (?, ?, ?)
ON CONFLICT (cache_key) DO UPDATE SET cache_value = excluded.cache_value, updated_at = excluded.updated_at`
)

// SQLStore keeps entries in the cache_entries table of a postgres or
// sqlite database.
type SQLStore struct {
	db      *sqlx.DB
	dialect string
}

func NewSQLStore(db *sqlx.DB) *SQLStore {
	return &SQLStore{db: db, dialect: db.DriverName()}
}

// OpenSQL opens the database for dialect. For sqlite the dsn is a file
// path; for postgres a connection URL.
func OpenSQL(ctx context.Context, dialect, dsn string) (*sqlx.DB, error) {
	dialect = strings.ToLower(strings.TrimSpace(dialect))
	if dialect != DialectPostgres && dialect != DialectSQLite {
		return nil, crerr.Newf("unsupported sql cache dialect %q", dialect)
	}

	db, err := sqlx.Open(dialect, dsn)
	if err != nil {
		return nil, crerr.Wrapf(err, "open %s cache", dialect)
	}
	if dialect == DialectSQLite {
		// sqlite allows one writer; a single connection also keeps
		// ":memory:" databases shared.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, crerr.Mark(crerr.Wrapf(err, "ping %s cache", dialect), ErrBackend)
	}
	return db, nil
}

// EnsureSchema applies the embedded up migrations for the store dialect.
// The statements are idempotent so this is safe next to cmd/migration.
func (s *SQLStore) EnsureSchema(ctx context.Context) error {
	files, err := fs.Glob(migrations.FS, s.dialect+"/*.up.sql")
	if err != nil {
		return crerr.Wrap(err, "list cache migrations")
	}
	if len(files) == 0 {
		return crerr.Newf("no cache migrations for dialect %q", s.dialect)
	}

	for _, name := range files {
		raw, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			return crerr.Wrapf(err, "read migration %s", name)
		}
		if _, err := s.db.ExecContext(ctx, string(raw)); err != nil {
			return crerr.Mark(crerr.Wrapf(err, "apply migration %s", name), ErrBackend)
		}
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var raw []byte
	err := s.db.GetContext(ctx, &raw, s.db.Rebind(selectEntrySQL), key)
	if stderrors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return raw, true, nil
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, s.db.Rebind(upsertEntrySQL), key, value, time.Now().UTC())
	return err
}
