package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"

	"github.com/sells-group/capture-cli/internal/model"
)

// SQLiteStore persists the snapshot in a local SQLite database, one row per
// record plus a meta row for lastSync.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLite opens (and migrates) a SQLite database at the given path with
// WAL mode configured.
func NewSQLite(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

const sqliteMigration = `
CREATE TABLE IF NOT EXISTS records (
	id           TEXT NOT NULL,
	object_type  TEXT NOT NULL,
	data         TEXT NOT NULL,
	source_url   TEXT NOT NULL,
	last_updated DATETIME NOT NULL,
	PRIMARY KEY (object_type, id)
);

CREATE TABLE IF NOT EXISTS meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_records_object_type ON records(object_type);
`

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(sqliteMigration)
	return eris.Wrap(err, "sqlite: migrate")
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Load(ctx context.Context) (*model.Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, object_type, data, source_url, last_updated FROM records`)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: query records")
	}
	defer rows.Close()

	snap := model.NewSnapshot()
	for rows.Next() {
		var rec model.Record
		var dataJSON string
		if err := rows.Scan(&rec.ID, &rec.ObjectType, &dataJSON, &rec.SourceURL, &rec.LastUpdated); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan record")
		}
		if err := json.Unmarshal([]byte(dataJSON), &rec.Data); err != nil {
			return nil, eris.Wrapf(err, "sqlite: parse data for %s", rec.ID)
		}
		part := rec.ObjectType.Partition()
		snap.Partitions[part] = append(snap.Partitions[part], rec)
	}
	if err := rows.Err(); err != nil {
		return nil, eris.Wrap(err, "sqlite: iterate records")
	}

	var lastSync string
	err = s.db.QueryRowContext(ctx,
		`SELECT value FROM meta WHERE key = 'last_sync'`).Scan(&lastSync)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return nil, eris.Wrap(err, "sqlite: query last_sync")
	default:
		if t, perr := time.Parse(time.RFC3339Nano, lastSync); perr == nil {
			snap.LastSync = t
		}
	}

	return snap, nil
}

// Save replaces the persisted snapshot wholesale inside one transaction.
func (s *SQLiteStore) Save(ctx context.Context, snap *model.Snapshot) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return eris.Wrap(err, "sqlite: clear records")
	}

	for _, recs := range snap.Partitions {
		for _, rec := range recs {
			dataJSON, err := json.Marshal(rec.Data)
			if err != nil {
				return eris.Wrapf(err, "sqlite: marshal data for %s", rec.ID)
			}
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO records (id, object_type, data, source_url, last_updated) VALUES (?, ?, ?, ?, ?)`,
				rec.ID, string(rec.ObjectType), string(dataJSON), rec.SourceURL, rec.LastUpdated.UTC(),
			); err != nil {
				return eris.Wrapf(err, "sqlite: insert record %s", rec.ID)
			}
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO meta (key, value) VALUES ('last_sync', ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		snap.LastSync.UTC().Format(time.RFC3339Nano),
	); err != nil {
		return eris.Wrap(err, "sqlite: upsert last_sync")
	}

	return eris.Wrap(tx.Commit(), "sqlite: commit")
}
