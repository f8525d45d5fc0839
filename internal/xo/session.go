package xo

import (
	"strings"
	"time"
)

// Seat identifies one of the two player slots. Seat 1 always moves first.
type Seat int

const (
	NoSeat Seat = 0
	Seat1  Seat = 1
	Seat2  Seat = 2
)

func (s Seat) Other() Seat {
	switch s {
	case Seat1:
		return Seat2
	case Seat2:
		return Seat1
	}
	return NoSeat
}

func (s Seat) Valid() bool { return s == Seat1 || s == Seat2 }

// UserRef is a chat user. Only ID takes part in identity checks.
type UserRef struct {
	ID   string `json:"id"`
	Name string `json:"name,omitempty"`
}

// Display prefers the chat nickname.
func (u UserRef) Display() string {
	if n := strings.TrimSpace(u.Name); n != "" {
		return n
	}
	return u.ID
}

// SeatState is the occupant of a seat with the mark it plays and its running tally.
type SeatState struct {
	Player *UserRef `json:"player,omitempty"`
	Symbol Symbol   `json:"symbol"`
	Wins   int      `json:"wins"`
}

func (s SeatState) Occupied() bool { return s.Player != nil }

func (s SeatState) heldBy(userID string) bool { return s.Player != nil && s.Player.ID == userID }

// Phase is the coarse lifecycle state of a session.
type Phase string

const (
	PhaseAwaiting   Phase = "AWAITING_SECOND_PLAYER"
	PhaseInProgress Phase = "IN_PROGRESS"
	PhaseFinished   Phase = "FINISHED"
)

// Outcome describes how a finished round ended.
type Outcome string

const (
	OutcomeNone  Outcome = ""
	OutcomeWon   Outcome = "WON"
	OutcomeDrawn Outcome = "DRAWN"
)

// Session is one two-player game from the first accepted invitation until deletion.
// Methods mutate in place; callers must own the value exclusively (see registry.Update).
type Session struct {
	ID        string       `json:"id"`
	Token     string       `json:"token,omitempty"`
	Seats     [2]SeatState `json:"seats"`
	Symbols   SymbolPair   `json:"symbols"` // as agreed at invitation time; seats may swap, this does not
	Board     Board        `json:"board"`
	Turn      Seat         `json:"turn"`
	Phase     Phase        `json:"phase"`
	Outcome   Outcome      `json:"outcome,omitempty"`
	Winner    Seat         `json:"winner,omitempty"`
	Round     int          `json:"round"`
	Moves     int          `json:"moves"`
	LastMove  int          `json:"last_move"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// NewSession seats the first participant and waits for an opponent.
func NewSession(first UserRef, symbols SymbolPair, now time.Time) *Session {
	p := first
	return &Session{
		Seats: [2]SeatState{
			{Player: &p, Symbol: symbols.First},
			{Symbol: symbols.Second},
		},
		Symbols:   symbols,
		Turn:      Seat1,
		Phase:     PhaseAwaiting,
		Round:     1,
		LastMove:  -1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Seat returns a pointer into the seat array; nil for an invalid seat.
func (s *Session) Seat(seat Seat) *SeatState {
	if !seat.Valid() {
		return nil
	}
	return &s.Seats[seat-1]
}

// SeatOf returns the seat held by userID, or NoSeat.
func (s *Session) SeatOf(userID string) Seat {
	switch {
	case s.Seats[0].heldBy(userID):
		return Seat1
	case s.Seats[1].heldBy(userID):
		return Seat2
	}
	return NoSeat
}

// SeatForSymbol maps a board mark back to the seat playing it.
func (s *Session) SeatForSymbol(sym Symbol) Seat {
	switch sym {
	case s.Seats[0].Symbol:
		return Seat1
	case s.Seats[1].Symbol:
		return Seat2
	}
	return NoSeat
}

func (s *Session) Full() bool { return s.Seats[0].Occupied() && s.Seats[1].Occupied() }

// Join seats u as the second player.
func (s *Session) Join(u UserRef, now time.Time) error {
	switch {
	case s.Seats[0].heldBy(u.ID):
		return ErrAlreadySeat1
	case s.Seats[1].heldBy(u.ID):
		return ErrAlreadySeat2
	case s.Phase != PhaseAwaiting || s.Seats[1].Occupied():
		return ErrSessionFull
	}
	p := u
	s.Seats[1].Player = &p
	s.Phase = PhaseInProgress
	s.Turn = Seat1
	s.UpdatedAt = now
	return nil
}

// Move validates and applies a move by u at pos.
// Checks run phase, range, seat, cell, turn and stop at the first failure.
// A user holding neither seat can never be on turn, so they get ErrNotYourTurn
// before the cell is inspected.
func (s *Session) Move(u UserRef, pos int, now time.Time) error {
	switch s.Phase {
	case PhaseAwaiting:
		return ErrNotReady
	case PhaseFinished:
		return ErrGameOver
	}
	if !InRange(pos) {
		return ErrOutOfRange
	}
	mover := s.SeatOf(u.ID)
	if mover == NoSeat {
		return ErrNotYourTurn
	}
	if s.Board[pos] != Empty {
		return ErrCellOccupied
	}
	if !s.Seat(s.Turn).heldBy(u.ID) {
		return ErrNotYourTurn
	}

	next, err := s.Board.ApplyMove(pos, s.Seat(s.Turn).Symbol)
	if err != nil {
		return err
	}
	s.Board = next
	s.Moves++
	s.LastMove = pos
	s.UpdatedAt = now

	if sym, ok := s.Board.Winner(); ok {
		winner := s.SeatForSymbol(sym)
		s.Phase = PhaseFinished
		s.Outcome = OutcomeWon
		s.Winner = winner
		s.Seat(winner).Wins++
		return nil
	}
	if s.Board.IsFull() {
		s.Phase = PhaseFinished
		s.Outcome = OutcomeDrawn
		return nil
	}
	s.Turn = s.Turn.Other()
	return nil
}

// Clone returns a deep copy safe to hand to another goroutine.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	for i := range c.Seats {
		if p := s.Seats[i].Player; p != nil {
			cp := *p
			c.Seats[i].Player = &cp
		}
	}
	return &c
}
