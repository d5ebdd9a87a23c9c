package calllog

import (
	"context"
	"errors"
)

var (
	ErrNotFound         = errors.New("calllog: not found")
	ErrPermissionDenied = errors.New("calllog: permission denied")
	ErrInvalidArgument  = errors.New("calllog: invalid argument")
)

// Store is the persistence contract for call logs.
//
// All writes happen inside InTx. If fn returns an error (or panics) nothing it wrote is kept;
// otherwise the transaction commits before InTx returns.
type Store interface {
	Get(ctx context.Context, id string) (CallLog, bool, error)
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx is the unit-of-work view of the store.
type Tx interface {
	Get(ctx context.Context, id string) (CallLog, bool, error)

	// Insert creates the row unless one with the same ID exists. In that case the existing row
	// is returned with created=false. It never produces two rows for one ID.
	Insert(ctx context.Context, p Principal, log CallLog) (out CallLog, created bool, err error)

	// Update overwrites the mutable fields (To, Status, DurationSeconds, RecordingURL).
	Update(ctx context.Context, p Principal, log CallLog) (CallLog, error)
}
