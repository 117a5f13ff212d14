package protocol

import "strings"

// 大厅命令（区分大小写）
const (
	CmdCreate = "create"
	CmdJoin   = "join"
	CmdList   = "list"
	CmdSwitch = "switch"
	CmdTop    = "top"
	CmdStats  = "stats"
	CmdRecent = "recent"
	CmdHelp   = "help"
	CmdQuit   = "quit"
)

// Command 解析后的一行输入：关键字 + 自由文本参数
type Command struct {
	Name string
	Arg  string
}

// ParseCommand splits a line into its keyword and the trimmed remainder.
func ParseCommand(line string) Command {
	line = strings.TrimSpace(line)
	name, arg, _ := strings.Cut(line, " ")
	return Command{Name: name, Arg: strings.TrimSpace(arg)}
}

// HelpLines 命令帮助
var HelpLines = []string{
	"create <room>  - create a room, you become its admin",
	"join <room>    - join a room and wait for the game",
	"list           - list rooms",
	"switch <room>  - leave the current room and join another",
	"top            - show the leaderboard",
	"stats          - show your statistics",
	"recent         - show recently finished games",
	"quit           - disconnect",
	"In game: type a city, 'ban <name>' (admin only) or 'exit'",
}
