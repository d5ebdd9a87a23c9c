package errorlog

import "time"

// Entry is an immutable, append-only error log record.
//
// Invariants:
// - Entries are never updated or deleted.
// - Every entry is bound to a reference (the record the failure is reported against).
// - Entries are written outside the failing unit of work so they survive its rollback.
type Entry struct {
	ID string `json:"id" db:"id"`

	ReferenceType string `json:"reference_type" db:"reference_type"`
	ReferenceName string `json:"reference_name,omitempty" db:"reference_name"`

	Title string `json:"title" db:"title"`
	Error string `json:"error" db:"error"`

	// Payload is optional JSON with the input that triggered the failure.
	Payload string `json:"payload,omitempty" db:"payload"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

const ReferenceExotelSettings = "exotel_settings"
