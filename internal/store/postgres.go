package store

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"

	"github.com/sells-group/capture-cli/internal/model"
)

// Pool is the subset of pgxpool.Pool the store uses; pgxmock satisfies it in
// tests.
type Pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
	Close()
}

// PostgresStore persists the snapshot in PostgreSQL via pgxpool, for setups
// sharing one capture store across a team.
type PostgresStore struct {
	pool Pool
}

// PoolConfig holds optional connection pool tuning parameters.
type PoolConfig struct {
	MaxConns int32 `yaml:"max_conns" mapstructure:"max_conns"`
	MinConns int32 `yaml:"min_conns" mapstructure:"min_conns"`
}

const postgresMigration = `
CREATE TABLE IF NOT EXISTS records (
	id           TEXT NOT NULL,
	object_type  TEXT NOT NULL,
	data         JSONB NOT NULL,
	source_url   TEXT NOT NULL,
	last_updated TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (object_type, id)
);

CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);
`

// NewPostgres creates a PostgresStore with a connection pool and runs the
// migration.
func NewPostgres(ctx context.Context, connString string, poolCfg *PoolConfig) (*PostgresStore, error) {
	pgxCfg, err := pgxpool.ParseConfig(connString)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: parse config")
	}

	maxConns := int32(4)
	minConns := int32(1)
	if poolCfg != nil {
		if poolCfg.MaxConns > 0 {
			maxConns = poolCfg.MaxConns
		}
		if poolCfg.MinConns > 0 {
			minConns = poolCfg.MinConns
		}
	}
	pgxCfg.MaxConns = maxConns
	pgxCfg.MinConns = minConns
	pgxCfg.MaxConnLifetime = 30 * time.Minute
	pgxCfg.MaxConnIdleTime = 5 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, pgxCfg)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: create pool")
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, eris.Wrap(err, "postgres: ping")
	}

	s := &PostgresStore{pool: pool}
	if err := s.migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, postgresMigration)
	return eris.Wrap(err, "postgres: migrate")
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

func (s *PostgresStore) Load(ctx context.Context) (*model.Snapshot, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, object_type, data, source_url, last_updated FROM records`)
	if err != nil {
		return nil, eris.Wrap(err, "postgres: query records")
	}
	defer rows.Close()

	snap := model.NewSnapshot()
	for rows.Next() {
		var rec model.Record
		var dataJSON []byte
		if err := rows.Scan(&rec.ID, &rec.ObjectType, &dataJSON, &rec.SourceURL, &rec.LastUpdated); err != nil {
			return nil, eris.Wrap(err, "postgres: scan record")
		}
		if err := json.Unmarshal(dataJSON, &rec.Data); err != nil {
			return nil, eris.Wrapf(err, "postgres: parse data for %s", rec.ID)
		}
		part := rec.ObjectType.Partition()
		snap.Partitions[part] = append(snap.Partitions[part], rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "postgres: iterate records")
	}

	var lastSync string
	err = s.pool.QueryRow(ctx,
		`SELECT value FROM meta WHERE key = 'last_sync'`).Scan(&lastSync)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return nil, eris.Wrap(err, "postgres: query last_sync")
	default:
		if t, perr := time.Parse(time.RFC3339Nano, lastSync); perr == nil {
			snap.LastSync = t
		}
	}

	return snap, nil
}

// Save replaces the persisted snapshot wholesale inside one transaction.
func (s *PostgresStore) Save(ctx context.Context, snap *model.Snapshot) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return eris.Wrap(err, "postgres: begin tx")
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM records`); err != nil {
		return eris.Wrap(err, "postgres: clear records")
	}

	for _, recs := range snap.Partitions {
		for _, rec := range recs {
			dataJSON, err := json.Marshal(rec.Data)
			if err != nil {
				return eris.Wrapf(err, "postgres: marshal data for %s", rec.ID)
			}
			if _, err := tx.Exec(ctx,
				`INSERT INTO records (id, object_type, data, source_url, last_updated) VALUES ($1, $2, $3, $4, $5)`,
				rec.ID, string(rec.ObjectType), dataJSON, rec.SourceURL, rec.LastUpdated.UTC(),
			); err != nil {
				return eris.Wrapf(err, "postgres: insert record %s", rec.ID)
			}
		}
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO meta (key, value) VALUES ('last_sync', $1)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`,
		snap.LastSync.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return eris.Wrap(err, "postgres: upsert last_sync")
	}

	return eris.Wrap(tx.Commit(ctx), "postgres: commit")
}
