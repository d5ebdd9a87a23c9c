package errorlog

import (
	"context"
	"database/sql"
)

// PostgresRepo appends entries with a plain autocommit statement, so a rolled back
// business transaction cannot take the entry down with it.
type PostgresRepo struct {
	db *sql.DB
}

func NewPostgresRepo(db *sql.DB) *PostgresRepo { return &PostgresRepo{db: db} }

func (r *PostgresRepo) Append(ctx context.Context, e Entry) error {
	const q = `
INSERT INTO error_logs (id, reference_type, reference_name, title, error, payload, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7)
`
	_, err := r.db.ExecContext(ctx, q,
		e.ID,
		e.ReferenceType,
		e.ReferenceName,
		e.Title,
		e.Error,
		e.Payload,
		e.CreatedAt,
	)
	return err
}
