package calllog

import "strings"

// Principal identifies who is writing a call log.
//
// Webhook deliveries carry no session, so they write through SystemPrincipal, an explicit
// elevated capability. Everything else must name an authenticated user.
type Principal struct {
	UserID   string
	Elevated bool
	Reason   string
}

// SystemPrincipal returns the elevated write capability used for unauthenticated provider input.
func SystemPrincipal(reason string) Principal {
	return Principal{UserID: "system", Elevated: true, Reason: reason}
}

// UserPrincipal returns a normal, non-elevated principal.
func UserPrincipal(userID string) Principal {
	return Principal{UserID: strings.TrimSpace(userID)}
}

func (p Principal) authorizeWrite() error {
	if p.Elevated {
		if p.Reason == "" {
			return ErrPermissionDenied
		}
		return nil
	}
	if p.UserID == "" {
		return ErrPermissionDenied
	}
	return nil
}

// Actor is what gets stamped into ModifiedBy.
func (p Principal) Actor() string {
	if p.Elevated {
		return p.UserID + ":" + p.Reason
	}
	return p.UserID
}
