package xopresenter

import (
	"strconv"
	"strings"

	"github.com/park285/xo-kakao-bot/internal/msgcat"
	"github.com/park285/xo-kakao-bot/internal/render"
	"github.com/park285/xo-kakao-bot/internal/util"
	"github.com/park285/xo-kakao-bot/pkg/xodto"
)

const (
	phaseWaiting    = "AWAITING_SECOND_PLAYER"
	phaseInProgress = "IN_PROGRESS"
	phaseFinished   = "FINISHED"
	outcomeWon      = "WON"
)

var keycaps = [9]string{"1️⃣", "2️⃣", "3️⃣", "4️⃣", "5️⃣", "6️⃣", "7️⃣", "8️⃣", "9️⃣"}

// PrefixProvider exposes the command prefix messages should mention.
type PrefixProvider interface {
	Prefix() string
}

// Formatter renders session DTOs into Kakao-friendly text blocks.
type Formatter struct {
	cat            *msgcat.Catalog
	prefixProvider PrefixProvider
}

func NewFormatter(cat *msgcat.Catalog, provider PrefixProvider) *Formatter {
	return &Formatter{cat: cat, prefixProvider: provider}
}

func (f *Formatter) Prefix() string {
	if f == nil || f.prefixProvider == nil {
		return ""
	}
	return strings.TrimSpace(f.prefixProvider.Prefix())
}

func (f *Formatter) text(key string, data map[string]any, fallback string) string {
	if data == nil {
		data = map[string]any{}
	}
	if _, ok := data["Prefix"]; !ok {
		data["Prefix"] = f.Prefix()
	}
	return f.cat.Text(key, data, fallback)
}

func (f *Formatter) Help() string {
	body := f.text("help.body", nil, f.Prefix()+" help")
	return util.SeeMore(body, f.text("help.instruction", nil, "Tic-tac-toe"))
}

func (f *Formatter) Rules(policy string) string {
	return f.text("rules.body", map[string]any{"Policy": policy}, "")
}

func (f *Formatter) Invitation(inv *xodto.InvitationView) string {
	if inv == nil {
		return ""
	}
	return f.text("invite.created", map[string]any{
		"Token": inv.Token, "First": inv.First, "Second": inv.Second,
	}, inv.Token)
}

// Joined announces a seat taken through an invitation.
func (f *Formatter) Joined(v *xodto.SessionView, seat int) string {
	if v == nil {
		return ""
	}
	if v.Phase == phaseWaiting {
		s := v.Seats[0]
		return f.text("join.waiting", map[string]any{"Name": s.Name, "Symbol": s.Symbol, "Token": v.Token}, "")
	}
	header := f.text("join.started", map[string]any{
		"First":  v.Seats[0].Symbol + " " + v.Seats[0].Name,
		"Second": v.Seats[1].Symbol + " " + v.Seats[1].Name,
	}, "")
	return joinLines(header, f.Grid(v), f.statusLine(v))
}

// Move summarizes the board after a successful move.
func (f *Formatter) Move(v *xodto.SessionView) string {
	if v == nil {
		return ""
	}
	lines := []string{f.Grid(v), f.statusLine(v)}
	if v.Phase == phaseFinished {
		lines = append(lines, f.score(v), f.text("move.next", map[string]any{"Token": v.Token}, ""))
	}
	return joinLines(lines...)
}

func (f *Formatter) Reset(v *xodto.SessionView) string {
	if v == nil {
		return ""
	}
	first := v.OnTurn()
	if first == nil {
		first = &v.Seats[0]
	}
	header := f.text("reset.done", map[string]any{"Round": v.Round, "Symbol": first.Symbol, "Name": first.Name}, "")
	return joinLines(header, f.score(v), f.Grid(v))
}

func (f *Formatter) Deleted(token string) string {
	return f.text("delete.done", map[string]any{"Token": token}, token)
}

func (f *Formatter) Status(v *xodto.SessionView) string {
	if v == nil {
		return f.text("errors.no_session", nil, "")
	}
	header := f.text("status.header", map[string]any{"Token": v.Token, "Round": v.Round}, v.Token)
	if v.Phase == phaseWaiting {
		return joinLines(header, f.text("status.waiting", map[string]any{"Token": v.Token}, ""))
	}
	return joinLines(header, f.score(v), f.Grid(v), f.statusLine(v))
}

func (f *Formatter) Lobby(list []*xodto.InvitationView) string {
	if len(list) == 0 {
		return f.text("list.empty", nil, "")
	}
	var sb strings.Builder
	for i, inv := range list {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString(f.text("list.item", map[string]any{
			"Token": inv.Token, "First": inv.First, "Second": inv.Second, "Issuer": inv.IssuerName,
		}, inv.Token))
	}
	instruction := f.text("list.instruction", nil, "")
	if len(list) <= 3 {
		return joinLines(instruction, sb.String())
	}
	return util.SeeMore(sb.String(), instruction)
}

// Error turns a domain error into chat text; anything else gets the generic line.
func (f *Formatter) Error(derr *xodto.DomainError) string {
	generic := f.text("errors.generic", nil, "error")
	if derr == nil || derr.Code == "" {
		return generic
	}
	return f.text("errors."+derr.Code, nil, derr.Error())
}

// Notice renders one of the fixed errors.* lines that are not domain errors.
func (f *Formatter) Notice(code string) string {
	return f.text("errors."+code, nil, code)
}

// HUD builds the header lines drawn on the board image. The image fonts are
// Latin only, so the HUD names seats by number rather than by chat nickname.
func (f *Formatter) HUD(v *xodto.SessionView) render.RenderOptions {
	if v == nil {
		return render.RenderOptions{}
	}
	opts := render.RenderOptions{
		HUDHeader: f.text("hud.header", map[string]any{"Round": v.Round}, ""),
		HUDScore: f.text("hud.score", map[string]any{
			"First": v.Seats[0].Name, "FirstWins": v.Seats[0].Wins,
			"Second": v.Seats[1].Name, "SecondWins": v.Seats[1].Wins,
		}, ""),
	}
	switch {
	case v.Phase == phaseWaiting:
		opts.HUDTurn = f.text("hud.waiting", nil, "")
	case v.Phase == phaseFinished && v.Outcome == outcomeWon:
		if w := v.WinnerSeat(); w != nil {
			opts.HUDTurn = f.text("hud.won", map[string]any{"Name": w.Name, "Seat": v.Winner}, "")
		}
	case v.Phase == phaseFinished:
		opts.HUDTurn = f.text("hud.draw", nil, "")
	default:
		if t := v.OnTurn(); t != nil {
			opts.HUDTurn = f.text("hud.turn", map[string]any{"Name": t.Name, "Seat": v.Turn}, "")
		}
	}
	return opts
}

// Grid draws the board as three rows of symbols, free cells shown as keycaps.
func (f *Formatter) Grid(v *xodto.SessionView) string {
	var sb strings.Builder
	for r := 0; r < 3; r++ {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for c := 0; c < 3; c++ {
			i := r*3 + c
			if c > 0 {
				sb.WriteByte(' ')
			}
			if v.Cells[i] == "" {
				sb.WriteString(keycaps[i])
			} else {
				sb.WriteString(v.Cells[i])
			}
		}
	}
	return sb.String()
}

func (f *Formatter) statusLine(v *xodto.SessionView) string {
	switch {
	case v.Phase == phaseFinished && v.Outcome == outcomeWon:
		w := v.WinnerSeat()
		if w == nil {
			return ""
		}
		return f.text("move.won", map[string]any{"Symbol": w.Symbol, "Name": w.Name}, w.Name)
	case v.Phase == phaseFinished:
		return f.text("move.draw", nil, "")
	}
	t := v.OnTurn()
	if t == nil {
		return ""
	}
	return f.text("move.turn", map[string]any{"Symbol": t.Symbol, "Name": t.Name}, t.Name)
}

func (f *Formatter) score(v *xodto.SessionView) string {
	return v.Seats[0].Symbol + " " + v.Seats[0].Name + " " + strconv.Itoa(v.Seats[0].Wins) +
		" : " + strconv.Itoa(v.Seats[1].Wins) + " " + v.Seats[1].Name + " " + v.Seats[1].Symbol
}

func joinLines(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}
