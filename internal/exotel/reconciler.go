package exotel

import (
	"context"
	"errors"
	"fmt"

	"exotel-connector/internal/calllog"
	"exotel-connector/internal/errorlog"
	"exotel-connector/internal/metrics"
	"exotel-connector/pkg/logger"
)

const (
	statusFree = "free"

	incomingCallErrorTitle = "Error in Exotel incoming call"

	// webhookWriteReason is stamped on every row written from provider input.
	webhookWriteReason = "exotel_webhook"
)

// Reconciler maps Exotel webhook deliveries onto call log rows.
//
// Webhooks arrive unauthenticated, so every write goes through calllog.SystemPrincipal.
// Deliveries may be retried or reordered; each one is applied in its own transaction and the
// last write wins.
type Reconciler struct {
	settings SettingsSource
	store    calllog.Store
	errLog   *errorlog.Service
	locker   CallLocker
}

func NewReconciler(settings SettingsSource, store calllog.Store, errs *errorlog.Service, locker CallLocker) *Reconciler {
	return &Reconciler{settings: settings, store: store, errLog: errs, locker: locker}
}

func (r *Reconciler) principal() calllog.Principal {
	return calllog.SystemPrincipal(webhookWriteReason)
}

// HandleIncomingCall creates or refreshes the row for a new inbound call.
//
// Failures are contained here: the transaction is rolled back and the error is appended to the
// error log against the settings record. The returned error is non-nil only when that error
// log write itself fails.
func (r *Reconciler) HandleIncomingCall(ctx context.Context, p Payload) (err error) {
	log := logger.From(ctx)

	defer func() {
		if rec := recover(); rec != nil {
			err = r.containIncoming(ctx, p, fmt.Errorf("panic: %v", rec))
		}
	}()

	s, serr := r.settings.Settings(ctx)
	if serr != nil {
		return r.containIncoming(ctx, p, fmt.Errorf("load settings: %w", serr))
	}
	if !s.Enabled {
		metrics.WebhookEventsTotal.WithLabelValues("incoming_call", metrics.OutcomeDisabled).Inc()
		return nil
	}
	if p.Get(FieldStatus) == statusFree {
		metrics.WebhookEventsTotal.WithLabelValues("incoming_call", metrics.OutcomeSkipped).Inc()
		return nil
	}

	unlock := r.lock(ctx, p.CallSid())
	defer unlock()

	txErr := r.store.InTx(ctx, func(ctx context.Context, tx calllog.Tx) error {
		existing, found, err := tx.Get(ctx, p.CallSid())
		if err != nil {
			return err
		}
		if !found {
			_, err := r.CreateCallLog(ctx, tx, p)
			return err
		}
		_, _, err = r.UpdateCallLog(ctx, tx, p, calllog.StatusRinging, &existing)
		return err
	})
	if txErr != nil {
		return r.containIncoming(ctx, p, txErr)
	}

	metrics.WebhookEventsTotal.WithLabelValues("incoming_call", metrics.OutcomeApplied).Inc()
	log.Debug("exotel incoming call reconciled", "call_sid", p.CallSid())
	return nil
}

// containIncoming runs after the data transaction has already been rolled back.
func (r *Reconciler) containIncoming(ctx context.Context, p Payload, cause error) error {
	metrics.WebhookEventsTotal.WithLabelValues("incoming_call", metrics.OutcomeFailed).Inc()
	logger.From(ctx).Error("exotel incoming call failed", "call_sid", p.CallSid(), "err", cause)

	if err := r.errLog.LogError(ctx, errorlog.ReferenceExotelSettings, incomingCallErrorTitle, cause, p.JSON()); err != nil {
		return errors.Join(cause, fmt.Errorf("write error log: %w", err))
	}
	return nil
}

// HandleEndCall marks the call Completed, creating the row when the end event is the first
// one seen for this call.
func (r *Reconciler) HandleEndCall(ctx context.Context, p Payload) (calllog.CallLog, error) {
	return r.reconcile(ctx, "end_call", p, calllog.StatusCompleted)
}

// HandleMissedCall derives the status from CallType and DialCallStatus and applies it.
// The table is matched on the values exactly as delivered, without trimming.
func (r *Reconciler) HandleMissedCall(ctx context.Context, p Payload) (calllog.CallLog, error) {
	status := MissedCallStatus(p[FieldCallType], p[FieldDialCallStatus])
	return r.reconcile(ctx, "missed_call", p, status)
}

func (r *Reconciler) reconcile(ctx context.Context, event string, p Payload, status calllog.Status) (calllog.CallLog, error) {
	unlock := r.lock(ctx, p.CallSid())
	defer unlock()

	var out calllog.CallLog
	err := r.store.InTx(ctx, func(ctx context.Context, tx calllog.Tx) error {
		l, _, err := r.UpdateCallLog(ctx, tx, p, status, nil)
		out = l
		return err
	})
	if err != nil {
		metrics.WebhookEventsTotal.WithLabelValues(event, metrics.OutcomeFailed).Inc()
		return calllog.CallLog{}, err
	}
	metrics.WebhookEventsTotal.WithLabelValues(event, metrics.OutcomeApplied).Inc()
	return out, nil
}

// UpdateCallLog applies one delivery to the row. The target is existing when given, otherwise
// it is looked up by CallSid and created if absent. ok is false when no row could be resolved.
func (r *Reconciler) UpdateCallLog(ctx context.Context, tx calllog.Tx, p Payload, status calllog.Status, existing *calllog.CallLog) (calllog.CallLog, bool, error) {
	var target calllog.CallLog
	if existing != nil {
		target = *existing
	} else {
		l, found, err := tx.Get(ctx, p.CallSid())
		if err != nil {
			return calllog.CallLog{}, false, err
		}
		if found {
			target = l
		} else {
			created, err := r.CreateCallLog(ctx, tx, p)
			if err != nil {
				return calllog.CallLog{}, false, err
			}
			target = created
		}
	}
	if target.ID == "" {
		return calllog.CallLog{}, false, nil
	}

	target.Status = status
	target.To = p.Get(FieldDialWhomNumber)
	target.DurationSeconds = p.Duration()
	target.RecordingURL = p.RecordingURL()

	out, err := tx.Update(ctx, r.principal(), target)
	if err != nil {
		return calllog.CallLog{}, false, err
	}
	return out, true, nil
}

// GetCallLog looks the row up by CallSid. It has no side effects.
func (r *Reconciler) GetCallLog(ctx context.Context, p Payload) (calllog.CallLog, bool, error) {
	if p.CallSid() == "" {
		return calllog.CallLog{}, false, nil
	}
	return r.store.Get(ctx, p.CallSid())
}

// CreateCallLog inserts a Ringing row for the delivery. If another delivery created the row
// first, that row is returned instead.
func (r *Reconciler) CreateCallLog(ctx context.Context, tx calllog.Tx, p Payload) (calllog.CallLog, error) {
	l, created, err := tx.Insert(ctx, r.principal(), calllog.CallLog{
		ID:     p.CallSid(),
		To:     p.Get(FieldDialWhomNumber),
		Medium: p.Get(FieldTo),
		Status: calllog.StatusRinging,
		From:   p.Get(FieldCallFrom),
	})
	if err != nil {
		return calllog.CallLog{}, err
	}
	if created {
		metrics.CallLogsCreatedTotal.Inc()
	}
	return l, nil
}

func (r *Reconciler) lock(ctx context.Context, callSid string) func() {
	if r.locker == nil || callSid == "" {
		return func() {}
	}
	unlock, err := r.locker.Lock(ctx, callSid)
	if err != nil {
		// The insert is atomic on its own; the lock only orders concurrent updates.
		metrics.CallLockContentionTotal.Inc()
		logger.From(ctx).Warn("exotel call lock unavailable, continuing", "call_sid", callSid, "err", err)
		return func() {}
	}
	return unlock
}
