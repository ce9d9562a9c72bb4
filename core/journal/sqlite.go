package journal

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists records to a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS ir_transactions (
        id TEXT PRIMARY KEY,
        ts INTEGER NOT NULL,
        code TEXT NOT NULL,
        success INTEGER NOT NULL,
        value INTEGER NOT NULL,
        resynced INTEGER NOT NULL,
        error TEXT,
        read_error TEXT,
        duration_ms REAL
    );
    CREATE INDEX IF NOT EXISTS ir_transactions_ts ON ir_transactions (ts);`
	if _, err := db.Exec(schema); err != nil {
		if cerr := db.Close(); cerr != nil {
			return nil, fmt.Errorf("close db: %v (schema err: %w)", cerr, err)
		}
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Append writes the record to the database.
func (s *SQLiteStore) Append(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ir_transactions (id, ts, code, success, value, resynced, error, read_error, duration_ms)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Timestamp.UnixNano(), rec.Code, rec.Success, rec.Value, rec.Resynced,
		rec.Error, rec.ReadError, rec.DurationMS)
	return err
}

// Query returns records matching q.
func (s *SQLiteStore) Query(ctx context.Context, q Query) ([]Record, error) {
	var args []any
	where := `WHERE 1=1`
	if !q.Start.IsZero() {
		where += ` AND ts >= ?`
		args = append(args, q.Start.UnixNano())
	}
	if !q.End.IsZero() {
		where += ` AND ts <= ?`
		args = append(args, q.End.UnixNano())
	}
	if q.Code != "" {
		where += ` AND code = ?`
		args = append(args, q.Code)
	}
	if q.FailedOnly {
		where += ` AND (success = 0 OR read_error != '')`
	}
	query := `SELECT id, ts, code, success, value, resynced, error, read_error, duration_ms
        FROM ir_transactions ` + where + ` ORDER BY ts DESC`
	if q.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, q.Limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []Record
	for rows.Next() {
		var (
			r       Record
			ts      int64
			errText sql.NullString
			readErr sql.NullString
		)
		if err := rows.Scan(&r.ID, &ts, &r.Code, &r.Success, &r.Value, &r.Resynced,
			&errText, &readErr, &r.DurationMS); err != nil {
			return nil, err
		}
		r.Timestamp = timeFromUnixNano(ts)
		r.Error = errText.String
		r.ReadError = readErr.String
		res = append(res, r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i, j := 0, len(res)-1; i < j; i, j = i+1, j-1 {
		res[i], res[j] = res[j], res[i]
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
