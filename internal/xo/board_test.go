package xo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestBoardWinner(t *testing.T) {
	t.Run("Row wins", func(t *testing.T) {
		b := Board{"X", "X", "X", "", "O", "O", "", "", ""}

		sym, ok := b.Winner()

		assert.True(t, ok)
		assert.Equal(t, Symbol("X"), sym)
	})

	t.Run("Diagonal wins", func(t *testing.T) {
		b := Board{"O", "X", "X", "", "O", "X", "", "", "O"}

		sym, ok := b.Winner()

		assert.True(t, ok)
		assert.Equal(t, Symbol("O"), sym)
	})

	t.Run("Row is reported before column", func(t *testing.T) {
		// not reachable in play, must still be deterministic
		b := Board{"O", "O", "O", "O", "X", "X", "O", "X", "X"}

		sym, ok := b.Winner()
		line, _ := b.WinningLine()

		assert.True(t, ok)
		assert.Equal(t, Symbol("O"), sym)
		assert.Equal(t, [3]int{0, 1, 2}, line)
	})

	t.Run("Draw", func(t *testing.T) {
		b := Board{"X", "O", "X", "X", "X", "O", "O", "X", "O"}

		_, ok := b.Winner()

		assert.False(t, ok)
		assert.True(t, b.IsFull())
	})

	t.Run("Ongoing", func(t *testing.T) {
		b := Board{"X", "O", "X", "", "O", "", "", "X", ""}

		_, ok := b.Winner()

		assert.False(t, ok)
		assert.False(t, b.IsFull())
		assert.Equal(t, 5, b.Filled())
	})
}

func TestBoardApplyMove(t *testing.T) {
	var b Board

	next, err := b.ApplyMove(4, "X")
	require.NoError(t, err)
	assert.Equal(t, Symbol("X"), next[4])
	assert.Equal(t, Empty, b[4], "original board must not change")

	_, err = next.ApplyMove(4, "O")
	assert.ErrorIs(t, err, ErrCellOccupied)

	for _, pos := range []int{-1, 9, 10, 100} {
		_, err = next.ApplyMove(pos, "O")
		assert.ErrorIs(t, err, ErrOutOfRange, "pos %d", pos)
	}
}

func genBoard() *rapid.Generator[Board] {
	return rapid.Custom(func(t *rapid.T) Board {
		var b Board
		for i := range b {
			b[i] = rapid.SampledFrom([]Symbol{Empty, "X", "O"}).Draw(t, "cell")
		}
		return b
	})
}

func TestPropertyWinnerIffUniformLine(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := genBoard().Draw(t, "board")
		uniform := map[Symbol]bool{}
		for _, l := range winLines {
			if b[l[0]] != Empty && b[l[0]] == b[l[1]] && b[l[1]] == b[l[2]] {
				uniform[b[l[0]]] = true
			}
		}
		sym, ok := b.Winner()
		if ok != (len(uniform) > 0) {
			t.Fatalf("winner=%v but uniform lines=%v on %v", ok, uniform, b)
		}
		if ok && !uniform[sym] {
			t.Fatalf("winner %q does not own a uniform line on %v", sym, b)
		}
	})
}

func TestPropertyFilledWithoutLineIsDraw(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		order := rapid.Permutation([]int{0, 1, 2, 3, 4, 5, 6, 7, 8}).Draw(t, "order")
		var b Board
		var err error
		for i, pos := range order {
			sym := Symbol("X")
			if i%2 == 1 {
				sym = "O"
			}
			b, err = b.ApplyMove(pos, sym)
			if err != nil {
				t.Fatalf("move %d at %d: %v", i, pos, err)
			}
		}
		if !b.IsFull() {
			t.Fatalf("board not full after 9 moves: %v", b)
		}
		if _, ok := b.WinningLine(); !ok {
			if _, won := b.Winner(); won {
				t.Fatalf("winner reported without a line on %v", b)
			}
		}
	})
}
