package pvpchan

import (
    "time"

    "github.com/park285/xo-kakao-bot/internal/xo"
)

// InvitationState is advisory; the bound session is the source of truth.
type InvitationState string

const (
    StateLobby   InvitationState = "LOBBY"   // nobody accepted yet
    StateWaiting InvitationState = "WAITING" // seat 1 taken, session awaiting opponent
    StateActive  InvitationState = "ACTIVE"  // both seats taken
)

// Invitation is stored as JSON in Redis under inv:<token>.
type Invitation struct {
    Token     string          `json:"token"`
    State     InvitationState `json:"state"`
    Symbols   xo.SymbolPair   `json:"symbols"`
    CreatedAt time.Time       `json:"created_at"`

    IssuerID   string `json:"issuer_id"`
    IssuerName string `json:"issuer_name"`
    Room       string `json:"room"`

    SessionID string `json:"session_id,omitempty"`
}

// JoinResult reports which seat the caller ended up in.
type JoinResult struct {
    Seat      xo.Seat
    Started   bool
    SessionID string
    Snapshot  *xo.Snapshot
}

// Errors
var (
    ErrInvalidArgs = errf("invalid arguments")
    ErrTokenAlloc  = errf("failed to allocate invitation token")
)

type staticErr string
func (e staticErr) Error() string { return string(e) }
func errf(s string) error { return staticErr(s) }
