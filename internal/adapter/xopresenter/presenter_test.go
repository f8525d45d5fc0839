package xopresenter

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/park285/xo-kakao-bot/internal/msgcat"
	"github.com/park285/xo-kakao-bot/internal/render"
	"github.com/park285/xo-kakao-bot/pkg/xodto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	mu     sync.Mutex
	texts  []string
	images []string
}

func (s *recordingSender) SendText(_ context.Context, _ string, msg string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts = append(s.texts, msg)
	return nil
}

func (s *recordingSender) SendImage(_ context.Context, _ string, img string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.images = append(s.images, img)
	return nil
}

type failingRenderer struct{}

func (failingRenderer) RenderPNG(context.Context, *xodto.SessionView, render.RenderOptions) ([]byte, error) {
	return nil, errors.New("boom")
}

type prefix string

func (p prefix) Prefix() string { return string(p) }

func newFormatter(t *testing.T) *Formatter {
	t.Helper()
	cat, err := msgcat.New("")
	require.NoError(t, err)
	return NewFormatter(cat, prefix("!xo"))
}

func inProgressView() *xodto.SessionView {
	return &xodto.SessionView{
		SessionID: "sid",
		Token:     "XO-ABCDEF",
		Cells:     [9]string{"❌", "", "", "", "⭕", "", "", "", ""},
		Seats:     [2]xodto.SeatView{{UserID: "a", Name: "Alice", Symbol: "❌"}, {UserID: "b", Name: "Bob", Symbol: "⭕"}},
		Turn:      1,
		Phase:     phaseInProgress,
		Round:     1,
		Moves:     2,
		LastMove:  4,
	}
}

func TestBoardSendsTextThenImage(t *testing.T) {
	out := &recordingSender{}
	p := NewPresenter(out, render.NewBoardRenderer(), nil)
	require.NoError(t, p.Board(context.Background(), "room", "hello", inProgressView(), render.RenderOptions{}))

	require.Len(t, out.texts, 1)
	require.Len(t, out.images, 1)
	raw, err := base64.StdEncoding.DecodeString(out.images[0])
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "\x89PNG"))
}

func TestBoardRenderFailureKeepsText(t *testing.T) {
	out := &recordingSender{}
	p := NewPresenter(out, failingRenderer{}, nil)
	require.NoError(t, p.Board(context.Background(), "room", "grid", inProgressView(), render.RenderOptions{}))
	assert.Equal(t, []string{"grid"}, out.texts)
	assert.Empty(t, out.images)
}

func TestBoardWithoutRendererIsTextOnly(t *testing.T) {
	out := &recordingSender{}
	p := NewPresenter(out, nil, nil)
	require.NoError(t, p.Board(context.Background(), "room", "grid", inProgressView(), render.RenderOptions{}))
	assert.Len(t, out.texts, 1)
	assert.Empty(t, out.images)
}

func TestGrid(t *testing.T) {
	f := newFormatter(t)
	assert.Equal(t, "❌ 2️⃣ 3️⃣\n4️⃣ ⭕ 6️⃣\n7️⃣ 8️⃣ 9️⃣", f.Grid(inProgressView()))
}

func TestMoveFinishedMentionsWinnerAndReset(t *testing.T) {
	f := newFormatter(t)
	v := inProgressView()
	v.Phase, v.Outcome, v.Winner = phaseFinished, outcomeWon, 2
	v.Seats[1].Wins = 1
	text := f.Move(v)
	assert.Contains(t, text, "Bob")
	assert.Contains(t, text, "!xo reset XO-ABCDEF")
	assert.Contains(t, text, "0 : 1")
}

func TestErrorUsesCatalog(t *testing.T) {
	f := newFormatter(t)
	assert.Equal(t, "지금은 차례가 아닙니다.", f.Error(&xodto.DomainError{Code: "not_your_turn"}))
	assert.Contains(t, f.Error(&xodto.DomainError{Code: "game_over"}), "!xo reset")
	assert.NotEmpty(t, f.Error(nil))
	assert.Equal(t, "custom", f.Error(&xodto.DomainError{Code: "made_up", Message: "custom"}))
}

func TestHUD(t *testing.T) {
	f := newFormatter(t)
	v := inProgressView()
	hud := f.HUD(v)
	assert.Equal(t, "PLAYER 1 TO MOVE", hud.HUDTurn)
	assert.Equal(t, "0 : 0", hud.HUDScore)
	assert.Contains(t, hud.HUDHeader, "1")

	v.Phase, v.Outcome = phaseFinished, "DRAWN"
	assert.Equal(t, "DRAW", f.HUD(v).HUDTurn)
}

func TestLobbyLongListFolds(t *testing.T) {
	f := newFormatter(t)
	assert.Contains(t, f.Lobby(nil), "!xo new")

	var list []*xodto.InvitationView
	for i := 0; i < 5; i++ {
		list = append(list, &xodto.InvitationView{Token: "XO-AAAAA" + string(rune('A'+i)), First: "❌", Second: "⭕", IssuerName: "x"})
	}
	out := f.Lobby(list)
	assert.Contains(t, out, "\u200b")
	assert.Contains(t, out, "XO-AAAAAE")
}

func TestHelpIsFolded(t *testing.T) {
	f := newFormatter(t)
	h := f.Help()
	assert.Contains(t, h, "\u200b")
	assert.Contains(t, h, "!xo join")
}
