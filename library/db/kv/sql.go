package kv

import (
	"context"
	"database/sql"
	"regexp"
	"time"

	errors "github.com/Laisky/errors/v2"
)

var (
	_ Interface = new(SQL)

	regexpTableName = regexp.MustCompile(`^[a-zA-Z0-9_]{1,64}$`)
)

// SQL is a kv backend over a relational table, used with sqlite for
// single-node deployments that do not want to run redis.
type SQL struct {
	opt *sqlOption
	db  *sql.DB
}

type sqlOption struct {
	tableName string
}

// SQLOption is a function that configures the sql kv
type SQLOption func(*sqlOption) error

func applySQLOpts(opts ...SQLOption) (*sqlOption, error) {
	// fill default
	o := &sqlOption{
		tableName: "kv",
	}

	// apply opts
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, errors.WithStack(err)
		}
	}

	return o, nil
}

// WithTableName is a option to set table name
func WithTableName(tableName string) SQLOption {
	return func(o *sqlOption) error {
		if !regexpTableName.MatchString(tableName) {
			return errors.Errorf("invalid table name: %s", tableName)
		}
		o.tableName = tableName
		return nil
	}
}

// NewSQL creates a sql-backed kv store and its table if missing.
func NewSQL(db *sql.DB, opts ...SQLOption) (*SQL, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	opt, err := applySQLOpts(opts...)
	if err != nil {
		return nil, errors.Wrap(err, "apply opts")
	}

	s := &SQL{
		opt: opt,
		db:  db,
	}

	if err := s.setup(); err != nil {
		return nil, errors.Wrap(err, "setup kv")
	}

	return s, nil
}

func (s *SQL) setup() error {
	stmt := `
CREATE TABLE IF NOT EXISTS ` + s.opt.tableName + ` (
  key TEXT PRIMARY KEY,
  value BLOB NOT NULL,
  updated_at TIMESTAMP NOT NULL
)`

	if _, err := s.db.Exec(stmt); err != nil {
		return errors.Wrap(err, "create kv table")
	}

	return nil
}

func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	stmt := `SELECT value FROM ` + s.opt.tableName + ` WHERE key = ? LIMIT 1`
	err := s.db.QueryRowContext(ctx, stmt, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errors.Wrapf(errKeyNotFound, "key %s", key)
		}
		return nil, errors.Wrapf(err, "get key %s", key)
	}

	return value, nil
}

func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	stmt := `
INSERT INTO ` + s.opt.tableName + ` (key, value, updated_at)
VALUES (?, ?, ?)
ON CONFLICT(key)
DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`

	if _, err := s.db.ExecContext(ctx, stmt, key, value, time.Now().UTC()); err != nil {
		return errors.Wrapf(err, "upsert key %s", key)
	}

	return nil
}

func (s *SQL) Del(ctx context.Context, key string) error {
	stmt := `DELETE FROM ` + s.opt.tableName + ` WHERE key = ?`
	if _, err := s.db.ExecContext(ctx, stmt, key); err != nil {
		return errors.Wrapf(err, "delete key %s", key)
	}

	return nil
}

func (s *SQL) Keys(ctx context.Context, prefix string) (keys []string, err error) {
	// prefixes contain no LIKE metacharacters, plain concat is safe
	stmt := `SELECT key FROM ` + s.opt.tableName + ` WHERE key LIKE ? || '%'`
	rows, err := s.db.QueryContext(ctx, stmt, prefix)
	if err != nil {
		return nil, errors.Wrapf(err, "list keys with prefix %s", prefix)
	}
	defer rows.Close() //nolint:errcheck

	for rows.Next() {
		var key string
		if err = rows.Scan(&key); err != nil {
			return nil, errors.Wrap(err, "scan key")
		}
		keys = append(keys, key)
	}
	if err = rows.Err(); err != nil {
		return nil, errors.Wrap(err, "iterate keys")
	}

	return keys, nil
}
