package calllog

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store useful for tests.
// Transactions are serialized and applied only when fn succeeds.
type MemoryStore struct {
	mu    sync.Mutex
	rows  map[string]CallLog
	clock func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: map[string]CallLog{}, clock: time.Now}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (CallLog, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.rows[id]
	return cloneLog(l), ok, nil
}

func (s *MemoryStore) InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) (err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	staged := make(map[string]CallLog, len(s.rows))
	for k, v := range s.rows {
		staged[k] = v
	}
	tx := &memoryTx{rows: staged, now: s.clock}

	if err := fn(ctx, tx); err != nil {
		return err
	}
	s.rows = staged
	return nil
}

// Len reports the number of committed rows.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

type memoryTx struct {
	rows map[string]CallLog
	now  func() time.Time
}

func (t *memoryTx) Get(ctx context.Context, id string) (CallLog, bool, error) {
	l, ok := t.rows[id]
	return cloneLog(l), ok, nil
}

func (t *memoryTx) Insert(ctx context.Context, p Principal, log CallLog) (CallLog, bool, error) {
	if err := p.authorizeWrite(); err != nil {
		return CallLog{}, false, err
	}
	if log.ID == "" {
		return CallLog{}, false, ErrInvalidArgument
	}
	if existing, ok := t.rows[log.ID]; ok {
		return cloneLog(existing), false, nil
	}
	now := t.now().UTC()
	log.ModifiedBy = p.Actor()
	log.CreatedAt = now
	log.UpdatedAt = now
	t.rows[log.ID] = cloneLog(log)
	return log, true, nil
}

func (t *memoryTx) Update(ctx context.Context, p Principal, log CallLog) (CallLog, error) {
	if err := p.authorizeWrite(); err != nil {
		return CallLog{}, err
	}
	cur, ok := t.rows[log.ID]
	if !ok {
		return CallLog{}, ErrNotFound
	}
	cur.To = log.To
	cur.Status = log.Status
	cur.DurationSeconds = log.DurationSeconds
	cur.RecordingURL = log.RecordingURL
	cur.ModifiedBy = p.Actor()
	cur.UpdatedAt = t.now().UTC()
	t.rows[log.ID] = cloneLog(cur)
	return cloneLog(cur), nil
}

func cloneLog(l CallLog) CallLog {
	if l.RecordingURL != nil {
		u := *l.RecordingURL
		l.RecordingURL = &u
	}
	return l
}
