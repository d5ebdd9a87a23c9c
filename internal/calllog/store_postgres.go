package calllog

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"exotel-connector/pkg/utils"
)

// NOTE: This store assumes the call_logs table from migrations/0001_init.sql:
// PRIMARY KEY (id) is what makes Insert idempotent under concurrent deliveries.

const callLogColumns = `id, from_number, to_number, medium, status, duration, recording_url, modified_by, created_at, updated_at`

// PostgresStore implements Store on database/sql (pgx stdlib driver).
type PostgresStore struct {
	db    *sql.DB
	clock func() time.Time
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db, clock: time.Now}
}

func (s *PostgresStore) Get(ctx context.Context, id string) (CallLog, bool, error) {
	const q = `SELECT ` + callLogColumns + ` FROM call_logs WHERE id = $1`
	return scanOne(s.db.QueryRowContext(ctx, q, id))
}

func (s *PostgresStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error {
	return utils.WithTx(ctx, s.db, &sql.TxOptions{}, func(ctx context.Context, tx *sql.Tx) error {
		return fn(ctx, postgresTx{q: sqlTxQuerier{tx: tx}, now: s.clock})
	})
}

// rowScanner is satisfied by *sql.Row.
type rowScanner interface {
	Scan(dest ...any) error
}

// rowQuerier runs single-row statements inside one transaction.
type rowQuerier interface {
	QueryRow(ctx context.Context, query string, args ...any) rowScanner
}

type sqlTxQuerier struct{ tx *sql.Tx }

func (q sqlTxQuerier) QueryRow(ctx context.Context, query string, args ...any) rowScanner {
	return q.tx.QueryRowContext(ctx, query, args...)
}

type postgresTx struct {
	q   rowQuerier
	now func() time.Time
}

func (t postgresTx) Get(ctx context.Context, id string) (CallLog, bool, error) {
	// Lock the row so the rest of this transaction sees a stable record.
	const q = `SELECT ` + callLogColumns + ` FROM call_logs WHERE id = $1 FOR UPDATE`
	return scanOne(t.q.QueryRow(ctx, q, id))
}

func (t postgresTx) Insert(ctx context.Context, p Principal, log CallLog) (CallLog, bool, error) {
	if err := p.authorizeWrite(); err != nil {
		return CallLog{}, false, err
	}
	if log.ID == "" {
		return CallLog{}, false, ErrInvalidArgument
	}
	now := t.now().UTC()

	const q = `
INSERT INTO call_logs (` + callLogColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$9)
ON CONFLICT (id) DO NOTHING
RETURNING ` + callLogColumns

	out, ok, err := scanOne(t.q.QueryRow(ctx, q,
		log.ID,
		log.From,
		log.To,
		log.Medium,
		string(log.Status),
		log.DurationSeconds,
		nullString(log.RecordingURL),
		p.Actor(),
		now,
	))
	if err != nil {
		return CallLog{}, false, err
	}
	if ok {
		return out, true, nil
	}

	// Lost the race: another delivery created the row first.
	existing, found, err := t.Get(ctx, log.ID)
	if err != nil {
		return CallLog{}, false, err
	}
	if !found {
		return CallLog{}, false, ErrNotFound
	}
	return existing, false, nil
}

func (t postgresTx) Update(ctx context.Context, p Principal, log CallLog) (CallLog, error) {
	if err := p.authorizeWrite(); err != nil {
		return CallLog{}, err
	}
	const q = `
UPDATE call_logs
SET to_number = $2, status = $3, duration = $4, recording_url = $5, modified_by = $6, updated_at = $7
WHERE id = $1
RETURNING ` + callLogColumns

	out, ok, err := scanOne(t.q.QueryRow(ctx, q,
		log.ID,
		log.To,
		string(log.Status),
		log.DurationSeconds,
		nullString(log.RecordingURL),
		p.Actor(),
		t.now().UTC(),
	))
	if err != nil {
		return CallLog{}, err
	}
	if !ok {
		return CallLog{}, ErrNotFound
	}
	return out, nil
}

func scanOne(row rowScanner) (CallLog, bool, error) {
	var (
		l      CallLog
		status string
		rec    sql.NullString
	)
	if err := row.Scan(
		&l.ID,
		&l.From,
		&l.To,
		&l.Medium,
		&status,
		&l.DurationSeconds,
		&rec,
		&l.ModifiedBy,
		&l.CreatedAt,
		&l.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return CallLog{}, false, nil
		}
		return CallLog{}, false, err
	}
	l.Status = Status(status)
	if rec.Valid {
		l.RecordingURL = &rec.String
	}
	return l, true, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
