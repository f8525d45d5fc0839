package bot

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/park285/xo-kakao-bot/internal/adapter/xopresenter"
	"github.com/park285/xo-kakao-bot/internal/metrics"
	"github.com/park285/xo-kakao-bot/internal/msgcat"
	"github.com/park285/xo-kakao-bot/internal/pvpchan"
	"github.com/park285/xo-kakao-bot/internal/pvpxo"
	"github.com/park285/xo-kakao-bot/internal/registry"
	"github.com/park285/xo-kakao-bot/internal/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chat struct {
	mu     sync.Mutex
	texts  []string
	images int
}

func (c *chat) SendText(_ context.Context, _ string, msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.texts = append(c.texts, msg)
	return nil
}

func (c *chat) SendImage(context.Context, string, string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.images++
	return nil
}

func (c *chat) last() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.texts) == 0 {
		return ""
	}
	return c.texts[len(c.texts)-1]
}

type rooms []string

func (r rooms) RoomAllowed(room string) bool {
	for _, x := range r {
		if x == room {
			return true
		}
	}
	return false
}

func newBot(t *testing.T, renderer render.BoardRenderer, opts ...Option) (*Bot, *chat) {
	t.Helper()
	reg := registry.NewMemory()
	games := pvpxo.NewManager(reg, pvpchan.NewManager(pvpchan.NewMemoryStore(), reg))
	cat, err := msgcat.New("")
	require.NoError(t, err)
	out := &chat{}
	b := New("!xo", games, xopresenter.NewPresenter(out, renderer, nil), nil, opts...)
	b.formatter = xopresenter.NewFormatter(cat, b)
	return b, out
}

func say(b *Bot, room, user, text string) {
	b.Handle(context.Background(), Inbound{Room: room, UserID: user, UserName: strings.ToUpper(user), Text: text})
}

func tokenIn(t *testing.T, text string) string {
	t.Helper()
	i := strings.Index(text, "XO-")
	require.GreaterOrEqual(t, i, 0, "no token in %q", text)
	return text[i : i+9]
}

func TestFullGameOverChat(t *testing.T) {
	b, out := newBot(t, render.NewBoardRenderer())

	say(b, "r", "a", "!xo new")
	token := tokenIn(t, out.last())
	say(b, "r", "a", "!xo join "+token)
	assert.Contains(t, out.last(), "A")
	say(b, "r", "b", "!xo join "+strings.ToLower(token))
	assert.Equal(t, 1, out.images)

	for i, mv := range []struct{ who, cell string }{{"a", "1"}, {"b", "4"}, {"a", "2"}, {"b", "5"}, {"a", "3"}} {
		say(b, "r", mv.who, "!xo "+mv.cell)
		assert.Equal(t, i+2, out.images)
	}
	assert.Contains(t, out.last(), "🏆")
	assert.Contains(t, out.last(), "!xo reset "+token)

	say(b, "r", "a", "!xo 9")
	assert.Contains(t, out.last(), "이미 끝난 대국")

	say(b, "r", "b", "!xo reset")
	assert.Contains(t, out.last(), "2라운드")
	// swap policy: B now moves first with the first symbol
	assert.Contains(t, out.last(), "B 님입니다")

	say(b, "r", "a", "!xo delete")
	assert.Contains(t, out.last(), token)
	assert.Empty(t, b.LastToken("r"))

	say(b, "r", "a", "!xo status "+token)
	assert.Contains(t, out.last(), "찾을 수 없거나")
}

func TestMoveRejections(t *testing.T) {
	b, out := newBot(t, nil)
	say(b, "r", "a", "!xo 5")
	assert.Contains(t, out.last(), "진행 중인 대국이 없습니다")

	say(b, "r", "a", "!xo new")
	token := tokenIn(t, out.last())
	say(b, "r", "a", "!xo join "+token)
	say(b, "r", "a", "!xo join "+token)
	assert.Equal(t, "이미 1번 자리에 앉아 있습니다.", out.last())

	say(b, "r", "a", "!xo 5")
	assert.Equal(t, "아직 상대가 참가하지 않았습니다.", out.last())

	say(b, "r", "b", "!xo join "+token)
	say(b, "r", "b", "!xo 5")
	assert.Equal(t, "지금은 차례가 아닙니다.", out.last())
	say(b, "r", "a", "!xo 10")
	assert.Equal(t, "칸 번호는 1부터 9까지입니다.", out.last())
	say(b, "r", "a", "!xo 5")
	say(b, "r", "b", "!xo "+token+" 5")
	assert.Equal(t, "이미 채워진 칸입니다.", out.last())
	say(b, "r", "c", "!xo join "+token)
	assert.Equal(t, "이미 두 명이 참가한 대국입니다.", out.last())
}

func TestInvalidSymbols(t *testing.T) {
	b, out := newBot(t, nil)
	say(b, "r", "a", "!xo new 🐱 🐱")
	assert.Equal(t, "기호는 서로 다른 1~4글자여야 합니다.", out.last())

	say(b, "r", "a", "!xo new 🐱 🐶")
	assert.Contains(t, out.last(), "🐱 vs 🐶")
}

func TestListOnlyShowsRoomInvitations(t *testing.T) {
	b, out := newBot(t, nil)
	say(b, "r1", "a", "!xo new")
	t1 := tokenIn(t, out.last())
	say(b, "r2", "b", "!xo new")
	t2 := tokenIn(t, out.last())

	say(b, "r1", "a", "!xo list")
	assert.Contains(t, out.last(), t1)
	assert.NotContains(t, out.last(), t2)
}

func TestGateAndPrefix(t *testing.T) {
	b, out := newBot(t, nil, WithGate(rooms{"ok"}), WithMetrics(metrics.New()))
	say(b, "blocked", "a", "!xo help")
	say(b, "ok", "a", "!xox help")
	say(b, "ok", "a", "hello")
	assert.Empty(t, out.texts)

	say(b, "ok", "a", "!xo")
	assert.Contains(t, out.last(), "!xo join")
	say(b, "ok", "a", "!xo dance")
	assert.Contains(t, out.last(), "알 수 없는 명령")
}

func TestAnonymousUserRejected(t *testing.T) {
	b, out := newBot(t, nil)
	b.Handle(context.Background(), Inbound{Room: "r", Text: "!xo new"})
	assert.Equal(t, "사용자를 확인할 수 없습니다.", out.last())
}
