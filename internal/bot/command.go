package bot

import (
	"strconv"
	"strings"

	"github.com/park285/xo-kakao-bot/internal/pvpchan"
)

// Command names, also used as metric labels.
const (
	CmdHelp    = "help"
	CmdRules   = "rules"
	CmdNew     = "new"
	CmdJoin    = "join"
	CmdMove    = "move"
	CmdReset   = "reset"
	CmdDelete  = "delete"
	CmdStatus  = "status"
	CmdList    = "list"
	CmdUnknown = "unknown"
)

var aliases = map[string]string{
	"help": CmdHelp, "도움말": CmdHelp, "?": CmdHelp,
	"rules": CmdRules, "규칙": CmdRules,
	"new": CmdNew, "시작": CmdNew, "초대": CmdNew,
	"join": CmdJoin, "참가": CmdJoin,
	"reset": CmdReset, "다시": CmdReset, "rematch": CmdReset,
	"delete": CmdDelete, "삭제": CmdDelete, "종료": CmdDelete,
	"status": CmdStatus, "현황": CmdStatus, "board": CmdStatus,
	"list": CmdList, "목록": CmdList,
}

// Command is one parsed chat line after the prefix.
type Command struct {
	Name  string
	Token string // normalized, "" when the room's latest session should be used
	Cell  int    // 1-based as typed; only set for CmdMove
	Args  []string
}

// Parse splits the text after the bot prefix. Accepted move forms are
// "<cell>" and "<token> <cell>"; a bare token shows that session's board.
func Parse(raw string) Command {
	parts := strings.Fields(raw)
	if len(parts) == 0 {
		return Command{Name: CmdHelp}
	}

	if n, ok := cellArg(parts[0]); ok && len(parts) == 1 {
		return Command{Name: CmdMove, Cell: n}
	}
	if pvpchan.LooksLikeToken(parts[0]) {
		token := pvpchan.NormalizeToken(parts[0])
		if len(parts) >= 2 {
			if n, ok := cellArg(parts[1]); ok {
				return Command{Name: CmdMove, Token: token, Cell: n}
			}
		}
		return Command{Name: CmdStatus, Token: token}
	}

	name, ok := aliases[strings.ToLower(parts[0])]
	if !ok {
		return Command{Name: CmdUnknown, Args: parts}
	}
	cmd := Command{Name: name, Args: parts[1:]}
	switch name {
	case CmdJoin:
		if len(cmd.Args) > 0 {
			cmd.Token = pvpchan.NormalizeToken(cmd.Args[0])
		}
	case CmdReset, CmdDelete, CmdStatus:
		if len(cmd.Args) > 0 && pvpchan.LooksLikeToken(cmd.Args[0]) {
			cmd.Token = pvpchan.NormalizeToken(cmd.Args[0])
		}
	}
	return cmd
}

// cellArg accepts any integer so that 0 or 10 reach the engine and come back as out_of_range.
func cellArg(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}
