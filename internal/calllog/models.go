package calllog

import "time"

// CallLog is the single record a telephony call reconciles into.
//
// Invariants:
// - ID is the provider's call session id; at most one row exists per ID.
// - Rows are created on first sighting and mutated in place afterwards. They are never deleted here.
type CallLog struct {
	ID string `json:"id" db:"id"`

	// From is the originating number.
	From string `json:"from" db:"from_number"`
	// To is the counterparty that was dialed.
	To string `json:"to" db:"to_number"`
	// Medium is the provider number the call was routed to.
	Medium string `json:"medium" db:"medium"`

	Status Status `json:"status" db:"status"`

	DurationSeconds int `json:"duration" db:"duration"`

	RecordingURL *string `json:"recording_url,omitempty" db:"recording_url"`

	// ModifiedBy names the principal of the last write.
	ModifiedBy string `json:"modified_by" db:"modified_by"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Status is an open set; the provider may add labels and an empty value is legal.
type Status string

const (
	StatusNone      Status = ""
	StatusRinging   Status = "Ringing"
	StatusCompleted Status = "Completed"
	StatusNoAnswer  Status = "No Answer"
	StatusCanceled  Status = "Canceled"
	StatusFailed    Status = "Failed"
)
