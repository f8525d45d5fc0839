package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	cases := []struct {
		in   string
		want Command
	}{
		{"", Command{Name: CmdHelp}},
		{"5", Command{Name: CmdMove, Cell: 5}},
		{"0", Command{Name: CmdMove, Cell: 0}},
		{"xo-abc123 9", Command{Name: CmdMove, Token: "XO-ABC123", Cell: 9}},
		{"XO-ABC123", Command{Name: CmdStatus, Token: "XO-ABC123"}},
		{"join abc123", Command{Name: CmdJoin, Token: "XO-ABC123", Args: []string{"abc123"}}},
		{"참가 XO-ABC123", Command{Name: CmdJoin, Token: "XO-ABC123", Args: []string{"XO-ABC123"}}},
		{"reset", Command{Name: CmdReset, Args: []string{}}},
		{"delete XO-ABC123", Command{Name: CmdDelete, Token: "XO-ABC123", Args: []string{"XO-ABC123"}}},
		{"new 🐱 🐶", Command{Name: CmdNew, Args: []string{"🐱", "🐶"}}},
		{"LIST", Command{Name: CmdList, Args: []string{}}},
		{"dance", Command{Name: CmdUnknown, Args: []string{"dance"}}},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			assert.Equal(t, tc.want, Parse(tc.in))
		})
	}
}
