package errorlog

import (
	"context"
	"errors"
	"testing"
)

func TestService_AppendRequiresReferenceAndTitle(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if err := svc.Append(context.Background(), Entry{Title: "x"}); !errors.Is(err, ErrInvalidEntry) {
		t.Fatalf("expected ErrInvalidEntry, got %v", err)
	}
	if err := svc.Append(context.Background(), Entry{ReferenceType: ReferenceExotelSettings}); !errors.Is(err, ErrInvalidEntry) {
		t.Fatalf("expected ErrInvalidEntry, got %v", err)
	}
}

func TestService_LogErrorFillsIDAndTime(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	if err := svc.LogError(context.Background(), ReferenceExotelSettings, "Error in Exotel incoming call", errors.New("db down"), `{"CallSid":"CA1"}`); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}

	es := repo.Entries()
	if len(es) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(es))
	}
	if es[0].ID == "" || es[0].CreatedAt.IsZero() {
		t.Fatalf("expected id and created_at to be set: %+v", es[0])
	}
	if es[0].Error != "db down" || es[0].ReferenceType != ReferenceExotelSettings {
		t.Fatalf("unexpected entry: %+v", es[0])
	}
}

func TestService_NilRepo(t *testing.T) {
	var svc *Service
	if err := svc.Append(context.Background(), Entry{ReferenceType: "x", Title: "y"}); err == nil {
		t.Fatalf("expected error")
	}
}
