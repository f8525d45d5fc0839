package pvpchan

import (
    "context"
    "errors"
    "strings"
    "time"

    "github.com/park285/xo-kakao-bot/internal/obslog"
    "github.com/park285/xo-kakao-bot/internal/registry"
    "github.com/park285/xo-kakao-bot/internal/xo"
    "go.uber.org/zap"
)

// Manager runs the invitation handshake: the first acceptance creates a
// session in seat 1, the second fills seat 2 and starts play.
type Manager struct {
    store Store
    reg   registry.Registry
    now   func() time.Time
}

func NewManager(store Store, reg registry.Registry) *Manager {
    return &Manager{store: store, reg: reg, now: time.Now}
}

// Make issues a new invitation token carrying the symbol pair.
func (m *Manager) Make(ctx context.Context, issuer xo.UserRef, room string, symbols *xo.SymbolPair) (*Invitation, error) {
    pair := xo.DefaultSymbols()
    if symbols != nil {
        if err := symbols.Validate(); err != nil { return nil, err }
        pair = *symbols
    }
    for i := 0; i < 5; i++ {
        tok, err := tokenGen()
        if err != nil { return nil, err }
        inv := &Invitation{
            Token:      tok,
            State:      StateLobby,
            Symbols:    pair,
            CreatedAt:  m.now(),
            IssuerID:   strings.TrimSpace(issuer.ID),
            IssuerName: strings.TrimSpace(issuer.Name),
            Room:       strings.TrimSpace(room),
        }
        // optimistic: only set if key doesn't exist
        ok, err := m.store.CreateInvitation(ctx, inv)
        if err != nil { return nil, err }
        if !ok { continue }
        if err := m.store.AddLobby(ctx, tok); err != nil {
            _ = m.store.Forget(ctx, tok)
            return nil, err
        }
        obslog.L().Info("lobby_make", zap.String("token", tok), zap.String("room", inv.Room), zap.String("issuer_id", inv.IssuerID),
            zap.String("symbols", string(pair.First)+string(pair.Second)))
        return inv, nil
    }
    return nil, ErrTokenAlloc
}

// Join accepts the invitation on behalf of u.
func (m *Manager) Join(ctx context.Context, token string, u xo.UserRef) (*JoinResult, error) {
    token = NormalizeToken(token)
    if token == "" || strings.TrimSpace(u.ID) == "" { return nil, ErrInvalidArgs }
    inv, err := m.store.LoadInvitation(ctx, token)
    if err != nil { return nil, err }
    if inv == nil { return nil, xo.ErrInvitationNotFound }

    bound, err := m.store.Bound(ctx, token)
    if err != nil { return nil, err }
    if bound != "" { return m.joinExisting(ctx, inv, bound, u) }

    // 첫 수락: 세션 생성 후 토큰에 바인딩. 경합에서 지면 만든 세션을 지우고 승자 세션에 합류.
    s := xo.NewSession(u, inv.Symbols, m.now())
    s.Token = token
    id, err := m.reg.Create(ctx, u.ID, s)
    if err != nil { return nil, err }
    winner, err := m.store.Claim(ctx, token, id)
    if err != nil {
        _, _ = m.reg.Delete(ctx, id)
        return nil, err
    }
    if winner != id {
        _, _ = m.reg.Delete(ctx, id)
        obslog.L().Debug("lobby_claim_lost", zap.String("token", token), zap.String("user_id", u.ID))
        return m.joinExisting(ctx, inv, winner, u)
    }

    inv.State = StateWaiting
    inv.SessionID = id
    if err := m.store.SaveInvitation(ctx, inv); err != nil {
        obslog.L().Warn("lobby_meta_save_error", zap.String("token", token), zap.Error(err))
    }
    _, created, err := m.reg.FindByID(ctx, id)
    if err != nil { return nil, err }
    if created == nil { return nil, xo.ErrSessionNotFound }
    obslog.L().Info("lobby_join", zap.String("token", token), zap.String("session_id", id), zap.String("user_id", u.ID), zap.String("reason", "seat1"))
    return &JoinResult{Seat: xo.Seat1, Started: false, SessionID: id, Snapshot: created.Snapshot()}, nil
}

func (m *Manager) joinExisting(ctx context.Context, inv *Invitation, id string, u xo.UserRef) (*JoinResult, error) {
    now := m.now()
    s, err := m.reg.Update(ctx, id, func(s *xo.Session) error { return s.Join(u, now) })
    if err != nil {
        if xo.KindOf(err) == xo.KindMatchmaking {
            obslog.L().Debug("lobby_join_rejected", zap.String("token", inv.Token), zap.String("user_id", u.ID), zap.String("code", xo.CodeOf(err)))
        } else if !errors.Is(err, xo.ErrSessionNotFound) {
            obslog.L().Warn("lobby_join_error", zap.String("token", inv.Token), zap.String("user_id", u.ID), zap.Error(err))
        }
        return nil, err
    }
    inv.State = StateActive
    inv.SessionID = id
    if err := m.store.SaveInvitation(ctx, inv); err != nil {
        obslog.L().Warn("lobby_meta_save_error", zap.String("token", inv.Token), zap.Error(err))
    }
    // remove from lobby index once game starts
    if err := m.store.RemoveLobby(ctx, inv.Token); err != nil {
        obslog.L().Debug("lobby_remove_error", zap.String("token", inv.Token), zap.Error(err))
    }
    obslog.L().Info("lobby_start_game", zap.String("token", inv.Token), zap.String("session_id", id),
        zap.String("seat1_id", s.Seats[0].Player.ID), zap.String("seat2_id", s.Seats[1].Player.ID))
    return &JoinResult{Seat: xo.Seat2, Started: true, SessionID: id, Snapshot: s.Snapshot()}, nil
}

// SessionFor resolves a token to its session id.
func (m *Manager) SessionFor(ctx context.Context, token string) (string, error) {
    token = NormalizeToken(token)
    inv, err := m.store.LoadInvitation(ctx, token)
    if err != nil { return "", err }
    if inv == nil { return "", xo.ErrInvitationNotFound }
    id, err := m.store.Bound(ctx, token)
    if err != nil { return "", err }
    if id == "" { return "", xo.ErrSessionNotFound }
    return id, nil
}

// Touch keeps token resolvable while its session is still being played.
func (m *Manager) Touch(ctx context.Context, token string) error {
    token = NormalizeToken(token)
    if token == "" { return nil }
    return m.store.Touch(ctx, token)
}

// Invitation loads the invitation metadata, or ErrInvitationNotFound.
func (m *Manager) Invitation(ctx context.Context, token string) (*Invitation, error) {
    inv, err := m.store.LoadInvitation(ctx, NormalizeToken(token))
    if err != nil { return nil, err }
    if inv == nil { return nil, xo.ErrInvitationNotFound }
    return inv, nil
}

// Close drops the token from the lobby listing. The binding stays so late
// clicks resolve to a missing session instead of opening a new one.
func (m *Manager) Close(ctx context.Context, token string) error {
    if strings.TrimSpace(token) == "" { return nil }
    return m.store.RemoveLobby(ctx, NormalizeToken(token))
}

// ListLobby returns invitations still waiting for players.
func (m *Manager) ListLobby(ctx context.Context) ([]*Invitation, error) {
    toks, err := m.store.LobbyTokens(ctx)
    if err != nil { return nil, err }
    var out []*Invitation
    for _, t := range toks {
        inv, _ := m.store.LoadInvitation(ctx, t)
        if inv == nil || inv.State == StateActive { continue }
        out = append(out, inv)
    }
    return out, nil
}
