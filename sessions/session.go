package sessions

import (
	"time"

	"github.com/jrsteele09/go-api-client/token"
)

// Record is everything the client keeps for one caller. It is returned by
// value; changing a Record does not change the store.
type Record struct {
	ID                string       // Session identifier carried by the cookie
	Token             *token.Token // Current token set, nil until the first successful exchange
	PendingReturnPath string       // Resource to return to once the callback is serviced
	Version           uint64       // Bumped on every token write, used for compare-and-swap
	CreatedAt         time.Time
	ExpiresAt         time.Time
}

// HasToken reports whether the session holds a token.
func (r Record) HasToken() bool {
	return r.Token != nil && !r.Token.IsZero()
}
