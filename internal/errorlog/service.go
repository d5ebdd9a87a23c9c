package errorlog

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for error log entries.
// Append must commit on its own; it is never part of a caller's transaction.
type Repository interface {
	Append(ctx context.Context, e Entry) error
}

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEntry = errors.New("errorlog: invalid entry")

func (s *Service) Append(ctx context.Context, e Entry) error {
	if s == nil || s.repo == nil {
		return errors.New("errorlog: repository not configured")
	}
	if e.ReferenceType == "" || e.Title == "" {
		return ErrInvalidEntry
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// LogError records cause against a reference, the way a failed webhook is reported against
// the integration settings.
func (s *Service) LogError(ctx context.Context, referenceType, title string, cause error, payload string) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return s.Append(ctx, Entry{
		ReferenceType: referenceType,
		Title:         title,
		Error:         msg,
		Payload:       payload,
	})
}
