package xo

import (
	"fmt"
	"strings"
	"time"
)

// ResetPolicy decides how seats are filled for the next round.
type ResetPolicy string

const (
	// ResetSwap exchanges the seats so the previous second player opens the next round.
	// Each player keeps their own mark and tally.
	ResetSwap ResetPolicy = "swap"
	// ResetSame keeps everyone where they were.
	ResetSame ResetPolicy = "same"
)

func ParseResetPolicy(raw string) (ResetPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "swap", "role-swap":
		return ResetSwap, nil
	case "same", "same-seat", "keep":
		return ResetSame, nil
	}
	return "", fmt.Errorf("unknown reset policy %q", raw)
}

// Reset starts a new round in place. It is allowed mid-game as a forced restart.
func (s *Session) Reset(policy ResetPolicy, now time.Time) error {
	if !s.Full() {
		return ErrIncompleteRoster
	}
	if policy == ResetSwap {
		s.Seats[0], s.Seats[1] = s.Seats[1], s.Seats[0]
	}
	s.Board = Board{}
	s.Turn = Seat1
	s.Phase = PhaseInProgress
	s.Outcome = OutcomeNone
	s.Winner = NoSeat
	s.Moves = 0
	s.LastMove = -1
	s.Round++
	s.UpdatedAt = now
	return nil
}
