package sessions

import (
	"sync"
	"time"

	"github.com/jrsteele09/go-api-client/internal/errors"
	"github.com/jrsteele09/go-api-client/token"
)

// DefaultMaxAge is the fixed lifetime of a session.
const DefaultMaxAge = 10 * time.Hour

// InMemoryRepo is a thread-safe in-memory implementation of Repo
type InMemoryRepo struct {
	mu       sync.RWMutex
	sessions map[string]*Record
	maxAge   time.Duration
	nowFunc  func() time.Time
}

var _ Repo = (*InMemoryRepo)(nil)

// NewInMemoryRepo creates a new in-memory session repository
func NewInMemoryRepo(maxAge time.Duration) *InMemoryRepo {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	return &InMemoryRepo{
		sessions: make(map[string]*Record),
		maxAge:   maxAge,
		nowFunc:  time.Now,
	}
}

// WithClock replaces the repository clock, for tests.
func (r *InMemoryRepo) WithClock(now func() time.Time) *InMemoryRepo {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nowFunc = now
	return r
}

func (r *InMemoryRepo) Get(sessionID string) Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.sessions[sessionID]
	if !ok || r.expired(rec) {
		return Record{ID: sessionID}
	}
	return copyRecord(rec)
}

func (r *InMemoryRepo) SetToken(sessionID string, t token.Token) (Record, error) {
	if sessionID == "" {
		return Record{}, errors.ErrSessionIDRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.record(sessionID)
	rec.Token = &t
	rec.Version++
	return copyRecord(rec), nil
}

func (r *InMemoryRepo) CompareAndSwapToken(sessionID string, version uint64, t token.Token) (Record, bool, error) {
	if sessionID == "" {
		return Record{}, false, errors.ErrSessionIDRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec := r.record(sessionID)
	if rec.Version != version {
		return copyRecord(rec), false, nil
	}
	rec.Token = &t
	rec.Version++
	return copyRecord(rec), true, nil
}

func (r *InMemoryRepo) ClearToken(sessionID string) error {
	if sessionID == "" {
		return errors.ErrSessionIDRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.sessions[sessionID]
	if !ok || rec.Token == nil {
		return nil
	}
	rec.Token = nil
	rec.Version++
	return nil
}

func (r *InMemoryRepo) ClearTokenIfVersion(sessionID string, version uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.sessions[sessionID]
	if !ok || r.expired(rec) || rec.Version != version || rec.Token == nil {
		return false
	}
	rec.Token = nil
	rec.Version++
	return true
}

func (r *InMemoryRepo) SetPendingReturn(sessionID, path string) error {
	if sessionID == "" {
		return errors.ErrSessionIDRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.record(sessionID).PendingReturnPath = path
	return nil
}

func (r *InMemoryRepo) TakePendingReturn(sessionID string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.sessions[sessionID]
	if !ok || r.expired(rec) || rec.PendingReturnPath == "" {
		return "", false
	}
	path := rec.PendingReturnPath
	rec.PendingReturnPath = ""
	return path, true
}

func (r *InMemoryRepo) Delete(sessionID string) error {
	if sessionID == "" {
		return errors.ErrSessionIDRequired
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, sessionID)
	return nil
}

func (r *InMemoryRepo) DeleteExpired(now time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for id, rec := range r.sessions {
		if !now.Before(rec.ExpiresAt) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

// Len returns the number of stored sessions, expired or not.
func (r *InMemoryRepo) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// record returns the live record for sessionID, creating it (or replacing
// an expired one) as needed. Callers must hold the write lock.
func (r *InMemoryRepo) record(sessionID string) *Record {
	rec, ok := r.sessions[sessionID]
	if ok && !r.expired(rec) {
		return rec
	}
	now := r.nowFunc()
	rec = &Record{
		ID:        sessionID,
		CreatedAt: now,
		ExpiresAt: now.Add(r.maxAge),
	}
	r.sessions[sessionID] = rec
	return rec
}

func (r *InMemoryRepo) expired(rec *Record) bool {
	return !r.nowFunc().Before(rec.ExpiresAt)
}

func copyRecord(rec *Record) Record {
	c := *rec
	if rec.Token != nil {
		t := *rec.Token
		c.Token = &t
	}
	return c
}
