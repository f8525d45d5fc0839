package xodto

type SeatView struct {
	UserID string
	Name   string
	Symbol string
	Wins   int
}

// SessionView is everything the presenter needs to draw a board and its controls.
type SessionView struct {
	SessionID  string
	Token      string
	Cells      [9]string
	Seats      [2]SeatView
	Symbols    [2]string // invitation order: Symbols[0] is drawn as X, Symbols[1] as O
	Turn       int       // 1 or 2
	Phase      string
	Outcome    string
	Winner     int // 0 when nobody won
	WinLine    []int
	Round      int
	Moves      int
	LastMove   int // -1 before the first move
	BoardImage []byte
}

// OnTurn returns the seat expected to move, or nil when nobody is.
func (v *SessionView) OnTurn() *SeatView {
	if v == nil || v.Phase != "IN_PROGRESS" || v.Turn < 1 || v.Turn > 2 {
		return nil
	}
	return &v.Seats[v.Turn-1]
}

// WinnerSeat returns the winning seat, or nil.
func (v *SessionView) WinnerSeat() *SeatView {
	if v == nil || v.Winner < 1 || v.Winner > 2 {
		return nil
	}
	return &v.Seats[v.Winner-1]
}

// FreeCells lists empty cells using 1-based numbering as typed in chat.
func (v *SessionView) FreeCells() []int {
	var out []int
	for i, c := range v.Cells {
		if c == "" {
			out = append(out, i+1)
		}
	}
	return out
}

// InvitationView describes an issued invitation for the lobby listing.
type InvitationView struct {
	Token      string
	State      string
	First      string
	Second     string
	IssuerName string
	Room       string
	SessionID  string
}
