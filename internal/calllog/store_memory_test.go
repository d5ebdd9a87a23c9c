package calllog

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore_InsertIsIdempotent(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	p := SystemPrincipal("test")

	for i := 0; i < 2; i++ {
		err := s.InTx(ctx, func(ctx context.Context, tx Tx) error {
			_, created, err := tx.Insert(ctx, p, CallLog{ID: "CA1", Status: StatusRinging})
			if err != nil {
				return err
			}
			if created != (i == 0) {
				t.Fatalf("attempt %d: unexpected created=%v", i, created)
			}
			return nil
		})
		if err != nil {
			t.Fatalf("insert: %v", err)
		}
	}
	if s.Len() != 1 {
		t.Fatalf("expected 1 row, got %d", s.Len())
	}
}

func TestMemoryStore_RollbackOnError(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.InTx(ctx, func(ctx context.Context, tx Tx) error {
		if _, _, err := tx.Insert(ctx, SystemPrincipal("test"), CallLog{ID: "CA1"}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}
	if _, ok, _ := s.Get(ctx, "CA1"); ok {
		t.Fatalf("expected insert to be rolled back")
	}
}

func TestMemoryStore_WritesRequirePrincipal(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	err := s.InTx(ctx, func(ctx context.Context, tx Tx) error {
		_, _, err := tx.Insert(ctx, Principal{}, CallLog{ID: "CA1"})
		return err
	})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}

	err = s.InTx(ctx, func(ctx context.Context, tx Tx) error {
		_, _, err := tx.Insert(ctx, UserPrincipal("u-1"), CallLog{ID: "CA1"})
		return err
	})
	if err != nil {
		t.Fatalf("expected user write to succeed, got %v", err)
	}
	got, _, _ := s.Get(ctx, "CA1")
	if got.ModifiedBy != "u-1" {
		t.Fatalf("expected modified_by u-1, got %q", got.ModifiedBy)
	}
}

func TestMemoryStore_UpdateOverwritesMutableFields(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	p := SystemPrincipal("test")
	rec := "https://rec/1.mp3"

	err := s.InTx(ctx, func(ctx context.Context, tx Tx) error {
		if _, _, err := tx.Insert(ctx, p, CallLog{ID: "CA1", From: "111", Medium: "222", Status: StatusRinging}); err != nil {
			return err
		}
		_, err := tx.Update(ctx, p, CallLog{ID: "CA1", To: "333", Status: StatusCompleted, DurationSeconds: 42, RecordingURL: &rec})
		return err
	})
	if err != nil {
		t.Fatalf("tx: %v", err)
	}

	got, ok, _ := s.Get(ctx, "CA1")
	if !ok {
		t.Fatalf("expected row")
	}
	if got.Status != StatusCompleted || got.DurationSeconds != 42 || got.To != "333" {
		t.Fatalf("unexpected row: %+v", got)
	}
	if got.From != "111" || got.Medium != "222" {
		t.Fatalf("update must not touch from/medium: %+v", got)
	}
	if got.RecordingURL == nil || *got.RecordingURL != rec {
		t.Fatalf("expected recording url")
	}
	if got.ModifiedBy != "system:test" {
		t.Fatalf("unexpected modified_by %q", got.ModifiedBy)
	}
}

func TestMemoryStore_UpdateMissingRow(t *testing.T) {
	s := NewMemoryStore()
	err := s.InTx(context.Background(), func(ctx context.Context, tx Tx) error {
		_, err := tx.Update(ctx, SystemPrincipal("test"), CallLog{ID: "nope"})
		return err
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
