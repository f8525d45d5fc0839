package xo

import "errors"

// Kind groups domain errors the way the transport reports them.
type Kind string

const (
	KindSessionNotFound Kind = "session_not_found"
	KindMatchmaking     Kind = "matchmaking"
	KindMove            Kind = "move"
	KindReset           Kind = "reset"
	KindInvitation      Kind = "invitation"
)

// Error is an expected, user-recoverable outcome of a session operation.
// Values are compared by identity, so callers match them with errors.Is.
type Error struct {
	Kind Kind
	Code string
	msg  string
}

func (e *Error) Error() string { return e.msg }

func newErr(kind Kind, code, msg string) *Error { return &Error{Kind: kind, Code: code, msg: msg} }

var (
	ErrSessionNotFound = newErr(KindSessionNotFound, "session_not_found", "session not found or already deleted")

	ErrAlreadySeat1 = newErr(KindMatchmaking, "already_seat1", "user already holds seat 1")
	ErrAlreadySeat2 = newErr(KindMatchmaking, "already_seat2", "user already holds seat 2")
	ErrSessionFull  = newErr(KindMatchmaking, "session_full", "session already has two players")

	ErrNotReady     = newErr(KindMove, "not_ready", "waiting for the second player")
	ErrGameOver     = newErr(KindMove, "game_over", "game is already over")
	ErrNotYourTurn  = newErr(KindMove, "not_your_turn", "not your turn")
	ErrCellOccupied = newErr(KindMove, "cell_occupied", "cell is already taken")
	ErrOutOfRange   = newErr(KindMove, "out_of_range", "position must be between 0 and 8")

	ErrIncompleteRoster = newErr(KindReset, "incomplete_roster", "reset needs two seated players")

	ErrInvitationNotFound = newErr(KindInvitation, "invitation_not_found", "invitation not found or expired")
	ErrInvalidSymbols     = newErr(KindInvitation, "invalid_symbols", "symbols must be short, non-blank and distinct")
)

// KindOf reports the category of a domain error, or "" for anything else.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// CodeOf returns the stable code of a domain error, or "" for anything else.
func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// IsDomain reports whether err is one of the expected session outcomes.
func IsDomain(err error) bool { return KindOf(err) != "" }
