package exotel

import "exotel-connector/internal/calllog"

type missedCallKey struct {
	callType       string
	dialCallStatus string
}

var missedCallStatuses = map[missedCallKey]calllog.Status{
	{callType: "incomplete", dialCallStatus: "no-answer"}:  calllog.StatusNoAnswer,
	{callType: "client-hangup", dialCallStatus: "canceled"}: calllog.StatusCanceled,
	{callType: "incomplete", dialCallStatus: "failed"}:      calllog.StatusFailed,
}

// MissedCallStatus maps the (CallType, DialCallStatus) pair by exact, case-sensitive match.
// Any other combination, including padded values, yields the empty status.
func MissedCallStatus(callType, dialCallStatus string) calllog.Status {
	return missedCallStatuses[missedCallKey{callType: callType, dialCallStatus: dialCallStatus}]
}
