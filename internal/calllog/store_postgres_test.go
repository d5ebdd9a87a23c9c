package calllog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

type scriptedRow struct {
	vals []any
	err  error
}

func (r scriptedRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if len(dest) != len(r.vals) {
		return fmt.Errorf("scan: %d dest for %d values", len(dest), len(r.vals))
	}
	for i, d := range dest {
		switch d := d.(type) {
		case *string:
			*d = r.vals[i].(string)
		case *int:
			*d = r.vals[i].(int)
		case *sql.NullString:
			*d = r.vals[i].(sql.NullString)
		case *time.Time:
			*d = r.vals[i].(time.Time)
		default:
			return fmt.Errorf("scan: unsupported dest %T", d)
		}
	}
	return nil
}

// scriptedQuerier answers statements in order and records what was asked.
type scriptedQuerier struct {
	rows    []scriptedRow
	queries []string
	args    [][]any
}

func (q *scriptedQuerier) QueryRow(ctx context.Context, query string, args ...any) rowScanner {
	q.queries = append(q.queries, query)
	q.args = append(q.args, args)
	if len(q.rows) == 0 {
		return scriptedRow{err: errors.New("unexpected query")}
	}
	r := q.rows[0]
	q.rows = q.rows[1:]
	return r
}

var fixedNow = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func rowValues(id string, status Status, modifiedBy string) []any {
	return []any{id, "0912", "0987", "0803", string(status), 7, sql.NullString{String: "https://r/1.mp3", Valid: true}, modifiedBy, fixedNow, fixedNow}
}

func newScriptedTx(rows ...scriptedRow) (postgresTx, *scriptedQuerier) {
	q := &scriptedQuerier{rows: rows}
	return postgresTx{q: q, now: func() time.Time { return fixedNow }}, q
}

func TestPostgresTx_InsertCreatesRow(t *testing.T) {
	tx, q := newScriptedTx(scriptedRow{vals: rowValues("CA1", StatusRinging, "system:exotel_webhook")})

	got, created, err := tx.Insert(context.Background(), SystemPrincipal("exotel_webhook"), CallLog{ID: "CA1", Status: StatusRinging})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !created || got.ID != "CA1" {
		t.Fatalf("unexpected result: created=%v row=%+v", created, got)
	}
	if len(q.queries) != 1 || !strings.Contains(q.queries[0], "ON CONFLICT (id) DO NOTHING") {
		t.Fatalf("expected a single conflict-tolerant insert, got %q", q.queries)
	}
	if q.args[0][7] != "system:exotel_webhook" {
		t.Fatalf("expected modified_by stamped from principal, got %v", q.args[0][7])
	}
}

func TestPostgresTx_InsertLosingRaceReturnsExistingRow(t *testing.T) {
	tx, q := newScriptedTx(
		scriptedRow{err: sql.ErrNoRows},
		scriptedRow{vals: rowValues("CA1", StatusCompleted, "system:exotel_webhook")},
	)

	got, created, err := tx.Insert(context.Background(), SystemPrincipal("exotel_webhook"), CallLog{ID: "CA1", Status: StatusRinging})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if created {
		t.Fatalf("expected created=false for the losing insert")
	}
	if got.Status != StatusCompleted || got.RecordingURL == nil || *got.RecordingURL != "https://r/1.mp3" {
		t.Fatalf("expected the winner's row, got %+v", got)
	}
	if len(q.queries) != 2 || !strings.Contains(q.queries[1], "FOR UPDATE") {
		t.Fatalf("expected re-read under row lock, got %q", q.queries)
	}
}

func TestPostgresTx_InsertLosingRaceWithVanishedRow(t *testing.T) {
	tx, _ := newScriptedTx(scriptedRow{err: sql.ErrNoRows}, scriptedRow{err: sql.ErrNoRows})

	_, _, err := tx.Insert(context.Background(), SystemPrincipal("exotel_webhook"), CallLog{ID: "CA1"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresTx_InsertPropagatesDriverError(t *testing.T) {
	boom := errors.New("connection reset")
	tx, q := newScriptedTx(scriptedRow{err: boom})

	_, _, err := tx.Insert(context.Background(), SystemPrincipal("exotel_webhook"), CallLog{ID: "CA1"})
	if !errors.Is(err, boom) {
		t.Fatalf("expected driver error, got %v", err)
	}
	if len(q.queries) != 1 {
		t.Fatalf("expected no re-read after a driver error, got %d queries", len(q.queries))
	}
}

func TestPostgresTx_InsertChecksPrincipalBeforeQuerying(t *testing.T) {
	tx, q := newScriptedTx()

	_, _, err := tx.Insert(context.Background(), Principal{}, CallLog{ID: "CA1"})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	if len(q.queries) != 0 {
		t.Fatalf("expected no queries, got %q", q.queries)
	}
}

func TestPostgresTx_UpdateMissingRow(t *testing.T) {
	tx, _ := newScriptedTx(scriptedRow{err: sql.ErrNoRows})

	_, err := tx.Update(context.Background(), SystemPrincipal("exotel_webhook"), CallLog{ID: "nope"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPostgresTx_UpdateWritesNullRecording(t *testing.T) {
	tx, q := newScriptedTx(scriptedRow{vals: rowValues("CA1", StatusNoAnswer, "system:exotel_webhook")})

	_, err := tx.Update(context.Background(), SystemPrincipal("exotel_webhook"), CallLog{ID: "CA1", Status: StatusNoAnswer})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if rec, ok := q.args[0][4].(sql.NullString); !ok || rec.Valid {
		t.Fatalf("expected NULL recording_url, got %#v", q.args[0][4])
	}
}
