package render

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/park285/xo-kakao-bot/pkg/xodto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func finishedView() *xodto.SessionView {
	return &xodto.SessionView{
		Cells:    [9]string{"❌", "❌", "❌", "", "⭕", "", "", "", "⭕"},
		Seats:    [2]xodto.SeatView{{UserID: "a", Name: "Alice", Symbol: "❌", Wins: 1}, {UserID: "b", Name: "Bob", Symbol: "⭕"}},
		Phase:    "FINISHED",
		Outcome:  "WON",
		Winner:   1,
		WinLine:  []int{0, 1, 2},
		LastMove: 2,
	}
}

func TestRenderPNG(t *testing.T) {
	r := NewBoardRenderer()

	raw, err := r.RenderPNG(context.Background(), finishedView(), RenderOptions{HUDHeader: "Alice vs Bob", HUDScore: "1 : 0", HUDTurn: "Alice wins"})
	require.NoError(t, err)

	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, boardSize+sideMargin*2, img.Bounds().Dx())
	assert.Equal(t, boardSize+topMargin+bottomMargin, img.Bounds().Dy())
}

func TestRenderPNGHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewBoardRenderer().RenderPNG(ctx, finishedView(), RenderOptions{})
	assert.ErrorIs(t, err, context.Canceled)

	_, err = NewBoardRenderer().RenderPNG(context.Background(), nil, RenderOptions{})
	assert.Error(t, err)
}

func TestMarkImagesAreCached(t *testing.T) {
	a, err := renderMarkImage(MarkX, 64)
	require.NoError(t, err)
	b, err := renderMarkImage(MarkX, 64)
	require.NoError(t, err)
	assert.Same(t, a, b)

	o, err := renderMarkImage(MarkO, 64)
	require.NoError(t, err)
	assert.Equal(t, 64, o.Bounds().Dx())

	_, err = renderMarkImage(MarkNone, 64)
	assert.Error(t, err)
}

func TestMarkForFollowsInvitationPair(t *testing.T) {
	v := finishedView()
	v.Symbols = [2]string{"❌", "⭕"}
	assert.Equal(t, MarkX, markFor(v, "❌"))
	assert.Equal(t, MarkO, markFor(v, "⭕"))
	assert.Equal(t, MarkNone, markFor(v, ""))
	assert.Equal(t, MarkNone, markFor(v, "?"))

	// round 2 after a swap: the ⭕ player now sits in seat 1
	v.Seats[0], v.Seats[1] = v.Seats[1], v.Seats[0]
	assert.Equal(t, "⭕", v.Seats[0].Symbol)
	assert.Equal(t, MarkO, markFor(v, "⭕"))
	assert.Equal(t, MarkX, markFor(v, "❌"))
}

func TestMarkForCustomPairSwapped(t *testing.T) {
	v := &xodto.SessionView{
		Seats:   [2]xodto.SeatView{{Symbol: "🐶"}, {Symbol: "🐱"}},
		Symbols: [2]string{"🐱", "🐶"},
	}
	assert.Equal(t, MarkX, markFor(v, "🐱"))
	assert.Equal(t, MarkO, markFor(v, "🐶"))
}

func TestMarkForWithoutPairUsesSeats(t *testing.T) {
	v := finishedView()
	assert.Equal(t, MarkX, markFor(v, "❌"))
	assert.Equal(t, MarkO, markFor(v, "⭕"))
}
