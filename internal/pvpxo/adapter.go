package pvpxo

import (
    "github.com/park285/xo-kakao-bot/internal/pvpchan"
    "github.com/park285/xo-kakao-bot/internal/xo"
    "github.com/park285/xo-kakao-bot/pkg/xodto"
)

// ToView converts a snapshot into the transport DTO. Image bytes are filled in by the presenter.
func ToView(s *xo.Snapshot) *xodto.SessionView {
    if s == nil { return nil }
    v := &xodto.SessionView{
        SessionID: s.ID,
        Token:     s.Token,
        Turn:      int(s.Turn),
        Phase:     string(s.Phase),
        Outcome:   string(s.Outcome),
        Winner:    int(s.Winner),
        Round:     s.Round,
        Moves:     s.Moves,
        LastMove:  s.LastMove,
        Symbols:   [2]string{string(s.Symbols.First), string(s.Symbols.Second)},
    }
    for i, c := range s.Board { v.Cells[i] = string(c) }
    for i, seat := range s.Seats {
        sv := xodto.SeatView{Symbol: string(seat.Symbol), Wins: seat.Wins}
        if seat.Player != nil {
            sv.UserID = seat.Player.ID
            sv.Name = seat.Player.Display()
        }
        v.Seats[i] = sv
    }
    if s.Outcome == xo.OutcomeWon {
        if line, ok := s.Board.WinningLine(); ok { v.WinLine = line[:] }
    }
    return v
}

// ToDomainError maps an expected session outcome onto the DTO error; ok is false for infrastructure errors.
func ToDomainError(err error) (xodto.DomainError, bool) {
    if !xo.IsDomain(err) { return xodto.DomainError{}, false }
    return xodto.DomainError{
        Code:    xo.CodeOf(err),
        Kind:    string(xo.KindOf(err)),
        Message: err.Error(),
        // a lost race on turn or cell is worth retrying after re-reading the board
        Retryable: xo.CodeOf(err) == xo.ErrNotYourTurn.Code || xo.CodeOf(err) == xo.ErrCellOccupied.Code,
    }, true
}

func ToInvitationView(inv *pvpchan.Invitation) *xodto.InvitationView {
    if inv == nil { return nil }
    return &xodto.InvitationView{
        Token:      inv.Token,
        State:      string(inv.State),
        First:      string(inv.Symbols.First),
        Second:     string(inv.Symbols.Second),
        IssuerName: inv.IssuerName,
        Room:       inv.Room,
        SessionID:  inv.SessionID,
    }
}
