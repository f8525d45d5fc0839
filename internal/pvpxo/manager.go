package pvpxo

import (
    "context"
    "errors"
    "strings"
    "time"

    "github.com/park285/xo-kakao-bot/internal/metrics"
    "github.com/park285/xo-kakao-bot/internal/obslog"
    "github.com/park285/xo-kakao-bot/internal/pvpchan"
    "github.com/park285/xo-kakao-bot/internal/registry"
    "github.com/park285/xo-kakao-bot/internal/xo"
    "go.uber.org/zap"
)

// Manager is the operation surface the chat layer talks to. Every method
// returns either a detached snapshot or an *xo.Error; nothing here formats text.
type Manager struct {
    reg     registry.Registry
    lobby   *pvpchan.Manager
    policy  xo.ResetPolicy
    metrics *metrics.Metrics
    now     func() time.Time
}

type Option func(*Manager)

func WithResetPolicy(p xo.ResetPolicy) Option { return func(m *Manager) { if p != "" { m.policy = p } } }
func WithMetrics(mt *metrics.Metrics) Option  { return func(m *Manager) { m.metrics = mt } }
func WithClock(now func() time.Time) Option   { return func(m *Manager) { if now != nil { m.now = now } } }

func NewManager(reg registry.Registry, lobby *pvpchan.Manager, opts ...Option) *Manager {
    m := &Manager{reg: reg, lobby: lobby, policy: xo.ResetSwap, now: time.Now}
    for _, o := range opts { o(m) }
    return m
}

// Policy reports the configured reset policy.
func (m *Manager) Policy() xo.ResetPolicy { return m.policy }

// CreateInvitation issues a token; nobody is seated until someone accepts it.
func (m *Manager) CreateInvitation(ctx context.Context, issuer xo.UserRef, room string, symbols *xo.SymbolPair) (*pvpchan.Invitation, error) {
    inv, err := m.lobby.Make(ctx, issuer, room, symbols)
    if err != nil { return nil, err }
    m.metrics.Invitation(symbols != nil)
    return inv, nil
}

// AcceptInvitation seats user in the session bound to token.
func (m *Manager) AcceptInvitation(ctx context.Context, token string, user xo.UserRef) (*pvpchan.JoinResult, error) {
    jr, err := m.lobby.Join(ctx, token, user)
    if err != nil {
        m.metrics.Join(resultLabel(err))
        return nil, err
    }
    if jr.Started {
        m.metrics.Join("started")
    } else {
        m.metrics.Join("waiting")
    }
    return jr, nil
}

// AttemptMove places user's mark at position (0-8, row by row).
func (m *Manager) AttemptMove(ctx context.Context, sessionID string, user xo.UserRef, position int) (*xo.Snapshot, error) {
    sessionID = strings.TrimSpace(sessionID)
    now := m.now()
    s, err := m.reg.Update(ctx, sessionID, func(s *xo.Session) error { return s.Move(user, position, now) })
    m.metrics.Move(resultLabel(err))
    if err != nil {
        m.logRejected("xo_move_rejected", sessionID, user, err, zap.Int("cell", position))
        return nil, err
    }
    m.touch(ctx, s)
    obslog.L().Info("xo_move",
        zap.String("session_id", s.ID),
        zap.String("user_id", user.ID),
        zap.Int("cell", position),
        zap.Int("moves", s.Moves),
        zap.String("phase", string(s.Phase)),
    )
    if s.Phase == xo.PhaseFinished {
        m.metrics.Finished(strings.ToLower(string(s.Outcome)))
        fields := []zap.Field{zap.String("session_id", s.ID), zap.String("outcome", string(s.Outcome)), zap.Int("round", s.Round)}
        if w := s.Seat(s.Winner); w != nil && w.Player != nil {
            fields = append(fields, zap.String("winner_id", w.Player.ID), zap.Int("winner_wins", w.Wins))
        }
        obslog.L().Info("xo_round_finished", fields...)
    }
    return s.Snapshot(), nil
}

// RequestReset starts the next round, seating players per the configured policy.
func (m *Manager) RequestReset(ctx context.Context, sessionID string, requester xo.UserRef) (*xo.Snapshot, error) {
    sessionID = strings.TrimSpace(sessionID)
    now := m.now()
    s, err := m.reg.Update(ctx, sessionID, func(s *xo.Session) error { return s.Reset(m.policy, now) })
    m.metrics.Reset(resultLabel(err))
    if err != nil {
        m.logRejected("xo_reset_rejected", sessionID, requester, err)
        return nil, err
    }
    m.touch(ctx, s)
    obslog.L().Info("xo_reset",
        zap.String("session_id", s.ID),
        zap.String("requester_id", requester.ID),
        zap.String("policy", string(m.policy)),
        zap.Int("round", s.Round),
        zap.String("seat1_id", s.Seats[0].Player.ID),
        zap.Int("seat1_wins", s.Seats[0].Wins),
        zap.Int("seat2_wins", s.Seats[1].Wins),
    )
    return s.Snapshot(), nil
}

// DeleteSession removes the session. A second delete reports ErrSessionNotFound.
func (m *Manager) DeleteSession(ctx context.Context, sessionID string, requester xo.UserRef) error {
    sessionID = strings.TrimSpace(sessionID)
    _, s, err := m.reg.FindByID(ctx, sessionID)
    if err != nil { return err }
    ok, err := m.reg.Delete(ctx, sessionID)
    if err != nil {
        m.metrics.Delete("error")
        return err
    }
    if !ok {
        m.metrics.Delete(xo.ErrSessionNotFound.Code)
        return xo.ErrSessionNotFound
    }
    m.metrics.Delete("ok")
    if s != nil && s.Token != "" {
        if cerr := m.lobby.Close(ctx, s.Token); cerr != nil {
            obslog.L().Warn("xo_delete_lobby_error", zap.String("session_id", sessionID), zap.Error(cerr))
        }
    }
    obslog.L().Info("xo_delete", zap.String("session_id", sessionID), zap.String("requester_id", requester.ID))
    return nil
}

// Snapshot reads the current state without mutating it.
func (m *Manager) Snapshot(ctx context.Context, sessionID string) (*xo.Snapshot, error) {
    _, s, err := m.reg.FindByID(ctx, strings.TrimSpace(sessionID))
    if err != nil { return nil, err }
    if s == nil { return nil, xo.ErrSessionNotFound }
    return s.Snapshot(), nil
}

// SessionForToken resolves an invitation token to its session id.
func (m *Manager) SessionForToken(ctx context.Context, token string) (string, error) {
    return m.lobby.SessionFor(ctx, token)
}

// OpenInvitations lists invitations still missing a player.
func (m *Manager) OpenInvitations(ctx context.Context) ([]*pvpchan.Invitation, error) {
    return m.lobby.ListLobby(ctx)
}

func (m *Manager) ActiveSessions(ctx context.Context) (int, error) { return m.reg.Count(ctx) }

// touch extends the token binding after a committed change.
func (m *Manager) touch(ctx context.Context, s *xo.Session) {
    if s.Token == "" { return }
    if err := m.lobby.Touch(ctx, s.Token); err != nil {
        obslog.L().Warn("xo_token_touch_error", zap.String("session_id", s.ID), zap.String("token", s.Token), zap.Error(err))
    }
}

func (m *Manager) logRejected(event, sessionID string, user xo.UserRef, err error, extra ...zap.Field) {
    fields := append([]zap.Field{zap.String("session_id", sessionID), zap.String("user_id", user.ID)}, extra...)
    if xo.IsDomain(err) {
        obslog.L().Debug(event, append(fields, zap.String("code", xo.CodeOf(err)))...)
        return
    }
    obslog.L().Error(event, append(fields, zap.Error(err))...)
}

func resultLabel(err error) string {
    if err == nil { return "ok" }
    if c := xo.CodeOf(err); c != "" { return c }
    if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) { return "canceled" }
    return "error"
}
