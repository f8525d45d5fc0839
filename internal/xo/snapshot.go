package xo

import "time"

// Snapshot is a read-only copy of a session, detached from the registry record.
type Snapshot struct {
	ID        string
	Token     string
	Board     Board
	Seats     [2]SeatState
	Symbols   SymbolPair
	Turn      Seat
	Phase     Phase
	Outcome   Outcome
	Winner    Seat
	Round     int
	Moves     int
	LastMove  int
	UpdatedAt time.Time
}

func (s *Session) Snapshot() *Snapshot {
	c := s.Clone()
	return &Snapshot{
		ID:        c.ID,
		Token:     c.Token,
		Board:     c.Board,
		Seats:     c.Seats,
		Symbols:   c.Symbols,
		Turn:      c.Turn,
		Phase:     c.Phase,
		Outcome:   c.Outcome,
		Winner:    c.Winner,
		Round:     c.Round,
		Moves:     c.Moves,
		LastMove:  c.LastMove,
		UpdatedAt: c.UpdatedAt,
	}
}

func (s *Snapshot) Seat(seat Seat) SeatState {
	if !seat.Valid() {
		return SeatState{}
	}
	return s.Seats[seat-1]
}

// OnTurn returns the player expected to move, or nil outside of play.
func (s *Snapshot) OnTurn() *UserRef {
	if s.Phase != PhaseInProgress {
		return nil
	}
	return s.Seat(s.Turn).Player
}

func (s *Snapshot) TotalWins() int { return s.Seats[0].Wins + s.Seats[1].Wins }
