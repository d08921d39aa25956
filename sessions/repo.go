package sessions

import (
	"time"

	"github.com/jrsteele09/go-api-client/token"
)

// Repo stores one Record per session id. All writes to a session are
// serialised.
type Repo interface {
	// Get returns the session's record, or an empty record when the session is unknown or expired
	Get(sessionID string) Record

	// SetToken replaces the session's token wholesale (last writer wins)
	SetToken(sessionID string, t token.Token) (Record, error)

	// CompareAndSwapToken replaces the token only if the record is still at version.
	// The returned record is the stored state after the call.
	CompareAndSwapToken(sessionID string, version uint64, t token.Token) (Record, bool, error)

	// ClearToken drops the session's token, returning it to the no-token state
	ClearToken(sessionID string) error

	// ClearTokenIfVersion drops the token only if the record is still at version
	ClearTokenIfVersion(sessionID string, version uint64) bool

	// SetPendingReturn records where to send the caller after authorization
	SetPendingReturn(sessionID, path string) error

	// TakePendingReturn reads and clears the pending return path in one step
	TakePendingReturn(sessionID string) (string, bool)

	// Delete removes a session
	Delete(sessionID string) error

	// DeleteExpired removes sessions whose lifetime ended at or before now and reports how many were removed
	DeleteExpired(now time.Time) int
}
