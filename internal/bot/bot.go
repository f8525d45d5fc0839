package bot

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/park285/xo-kakao-bot/internal/adapter/xopresenter"
	"github.com/park285/xo-kakao-bot/internal/irisfast"
	"github.com/park285/xo-kakao-bot/internal/metrics"
	"github.com/park285/xo-kakao-bot/internal/obslog"
	"github.com/park285/xo-kakao-bot/internal/pvpxo"
	"github.com/park285/xo-kakao-bot/internal/xo"
	"github.com/park285/xo-kakao-bot/pkg/xodto"
	"go.uber.org/zap"
)

// Gate decides which rooms the bot answers in.
type Gate interface {
	RoomAllowed(room string) bool
}

// Inbound is a chat line reduced to what command handling needs.
type Inbound struct {
	Room     string
	UserID   string
	UserName string
	Text     string
}

// FromIris converts a WebSocket event.
func FromIris(msg *irisfast.Message) Inbound {
	if msg == nil {
		return Inbound{}
	}
	return Inbound{
		Room:     strings.TrimSpace(msg.Room),
		UserID:   strings.TrimSpace(msg.UserID()),
		UserName: strings.TrimSpace(msg.SenderName()),
		Text:     msg.Msg,
	}
}

// Bot routes prefixed chat commands to the session manager and presents the results.
type Bot struct {
	prefix    string
	gate      Gate
	games     *pvpxo.Manager
	presenter *xopresenter.Presenter
	formatter *xopresenter.Formatter
	metrics   *metrics.Metrics
	timeout   time.Duration

	mu         sync.RWMutex
	lastByRoom map[string]string // room -> token of the session most recently touched there
}

type Option func(*Bot)

func WithGate(g Gate) Option { return func(b *Bot) { b.gate = g } }
func WithMetrics(m *metrics.Metrics) Option { return func(b *Bot) { b.metrics = m } }
func WithTimeout(d time.Duration) Option { return func(b *Bot) { b.timeout = d } }

func New(prefix string, games *pvpxo.Manager, p *xopresenter.Presenter, f *xopresenter.Formatter, opts ...Option) *Bot {
	b := &Bot{
		prefix:     strings.TrimSpace(prefix),
		games:      games,
		presenter:  p,
		formatter:  f,
		timeout:    15 * time.Second,
		lastByRoom: make(map[string]string),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

func (b *Bot) Prefix() string { return b.prefix }

// Accepts reports whether msg is a command for this bot in an allowed room.
func (b *Bot) Accepts(in Inbound) bool {
	text := strings.TrimSpace(in.Text)
	if text == "" || !strings.HasPrefix(text, b.prefix) {
		return false
	}
	// "!xox" is not "!xo"
	rest := text[len(b.prefix):]
	if rest != "" && rest[0] != ' ' && rest[0] != '\t' {
		return false
	}
	if b.gate != nil && !b.gate.RoomAllowed(in.Room) {
		obslog.L().Debug("bot_room_ignored", zap.String("room", in.Room))
		return false
	}
	return true
}

// Handle runs one command to completion. It is safe to call from many goroutines.
func (b *Bot) Handle(parent context.Context, in Inbound) {
	if !b.Accepts(in) {
		return
	}
	ctx, cancel := context.WithTimeout(parent, b.timeout)
	defer cancel()

	cmd := Parse(strings.TrimSpace(strings.TrimSpace(in.Text)[len(b.prefix):]))
	b.metrics.Command(cmd.Name)
	user := xo.UserRef{ID: in.UserID, Name: in.UserName}

	switch cmd.Name {
	case CmdHelp:
		b.say(ctx, in.Room, b.formatter.Help())
		return
	case CmdRules:
		b.say(ctx, in.Room, b.formatter.Rules(string(b.games.Policy())))
		return
	case CmdList:
		b.list(ctx, in.Room)
		return
	case CmdUnknown:
		b.say(ctx, in.Room, b.formatter.Notice("unknown_command"))
		return
	}

	if user.ID == "" {
		b.say(ctx, in.Room, b.formatter.Notice("unknown_user"))
		return
	}

	switch cmd.Name {
	case CmdNew:
		b.create(ctx, in.Room, user, cmd.Args)
	case CmdJoin:
		b.join(ctx, in.Room, user, cmd.Token)
	case CmdMove:
		b.move(ctx, in.Room, user, cmd)
	case CmdReset:
		b.reset(ctx, in.Room, user, cmd.Token)
	case CmdDelete:
		b.remove(ctx, in.Room, user, cmd.Token)
	case CmdStatus:
		b.status(ctx, in.Room, cmd.Token)
	}
}

func (b *Bot) create(ctx context.Context, room string, user xo.UserRef, args []string) {
	var symbols *xo.SymbolPair
	if len(args) >= 2 {
		pair, err := xo.NewSymbolPair(args[0], args[1])
		if err != nil {
			b.fail(ctx, room, err)
			return
		}
		symbols = &pair
	}
	inv, err := b.games.CreateInvitation(ctx, user, room, symbols)
	if err != nil {
		b.fail(ctx, room, err)
		return
	}
	b.remember(room, inv.Token)
	b.say(ctx, room, b.formatter.Invitation(pvpxo.ToInvitationView(inv)))
}

func (b *Bot) join(ctx context.Context, room string, user xo.UserRef, token string) {
	if token == "" {
		b.say(ctx, room, b.formatter.Error(&xodto.DomainError{Code: xo.ErrInvitationNotFound.Code}))
		return
	}
	jr, err := b.games.AcceptInvitation(ctx, token, user)
	if err != nil {
		b.fail(ctx, room, err)
		return
	}
	b.remember(room, token)
	view := pvpxo.ToView(jr.Snapshot)
	if !jr.Started {
		b.say(ctx, room, b.formatter.Joined(view, int(jr.Seat)))
		return
	}
	b.board(ctx, room, b.formatter.Joined(view, int(jr.Seat)), view)
}

func (b *Bot) move(ctx context.Context, room string, user xo.UserRef, cmd Command) {
	token, id, ok := b.resolve(ctx, room, cmd.Token)
	if !ok {
		return
	}
	snap, err := b.games.AttemptMove(ctx, id, user, cmd.Cell-1)
	if err != nil {
		b.fail(ctx, room, err)
		return
	}
	b.remember(room, token)
	view := pvpxo.ToView(snap)
	b.board(ctx, room, b.formatter.Move(view), view)
}

func (b *Bot) reset(ctx context.Context, room string, user xo.UserRef, explicit string) {
	token, id, ok := b.resolve(ctx, room, explicit)
	if !ok {
		return
	}
	snap, err := b.games.RequestReset(ctx, id, user)
	if err != nil {
		b.fail(ctx, room, err)
		return
	}
	b.remember(room, token)
	view := pvpxo.ToView(snap)
	b.board(ctx, room, b.formatter.Reset(view), view)
}

func (b *Bot) remove(ctx context.Context, room string, user xo.UserRef, explicit string) {
	token, id, ok := b.resolve(ctx, room, explicit)
	if !ok {
		return
	}
	if err := b.games.DeleteSession(ctx, id, user); err != nil {
		b.fail(ctx, room, err)
		return
	}
	b.forget(token)
	b.say(ctx, room, b.formatter.Deleted(token))
}

func (b *Bot) status(ctx context.Context, room, explicit string) {
	token, id, ok := b.resolve(ctx, room, explicit)
	if !ok {
		return
	}
	snap, err := b.games.Snapshot(ctx, id)
	if err != nil {
		b.fail(ctx, room, err)
		return
	}
	b.remember(room, token)
	view := pvpxo.ToView(snap)
	if view.Phase == string(xo.PhaseAwaiting) {
		b.say(ctx, room, b.formatter.Status(view))
		return
	}
	b.board(ctx, room, b.formatter.Status(view), view)
}

func (b *Bot) list(ctx context.Context, room string) {
	invs, err := b.games.OpenInvitations(ctx)
	if err != nil {
		b.fail(ctx, room, err)
		return
	}
	views := make([]*xodto.InvitationView, 0, len(invs))
	for _, inv := range invs {
		if inv.Room == room {
			views = append(views, pvpxo.ToInvitationView(inv))
		}
	}
	b.say(ctx, room, b.formatter.Lobby(views))
}

// resolve maps the typed token, or the room's latest one, to a session id.
// It answers in chat itself when nothing can be resolved.
func (b *Bot) resolve(ctx context.Context, room, explicit string) (token, id string, ok bool) {
	token = explicit
	if token == "" {
		b.mu.RLock()
		token = b.lastByRoom[room]
		b.mu.RUnlock()
	}
	if token == "" {
		b.say(ctx, room, b.formatter.Notice("no_session"))
		return "", "", false
	}
	id, err := b.games.SessionForToken(ctx, token)
	if err != nil {
		if explicit == "" {
			b.forget(token)
		}
		b.fail(ctx, room, err)
		return "", "", false
	}
	return token, id, true
}

func (b *Bot) remember(room, token string) {
	b.mu.Lock()
	b.lastByRoom[room] = token
	b.mu.Unlock()
}

func (b *Bot) forget(token string) {
	b.mu.Lock()
	for room, t := range b.lastByRoom {
		if t == token {
			delete(b.lastByRoom, room)
		}
	}
	b.mu.Unlock()
}

// LastToken returns the token commands in room default to.
func (b *Bot) LastToken(room string) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastByRoom[room]
}

func (b *Bot) fail(ctx context.Context, room string, err error) {
	if derr, ok := pvpxo.ToDomainError(err); ok {
		b.say(ctx, room, b.formatter.Error(&derr))
		return
	}
	obslog.L().Error("bot_command_failed", zap.String("room", room), zap.Error(err))
	b.say(ctx, room, b.formatter.Error(nil))
}

func (b *Bot) say(ctx context.Context, room, text string) {
	if err := b.presenter.Text(ctx, room, text); err != nil {
		obslog.L().Warn("bot_send_failed", zap.String("room", room), zap.Error(err))
	}
}

func (b *Bot) board(ctx context.Context, room, text string, view *xodto.SessionView) {
	if err := b.presenter.Board(ctx, room, text, view, b.formatter.HUD(view)); err != nil {
		obslog.L().Warn("bot_send_failed", zap.String("room", room), zap.Error(err))
	}
}
