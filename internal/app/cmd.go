package app

import (
	"fmt"
	"slices"
	"strings"
)

// Command はサブコマンドを表す。
type Command string

const (
	CommandServe       Command = "serve"
	CommandMigrate     Command = "migrate"
	CommandHealthcheck Command = "healthcheck" // distrolessイメージのHEALTHCHECK用
)

var commands = []Command{CommandServe, CommandMigrate, CommandHealthcheck}

// ParseCommand は先頭の引数からサブコマンドを決定する。
// 引数がなければserveとして扱い、未知のサブコマンドはエラーにする。
func ParseCommand(args []string) (Command, error) {
	if len(args) == 0 || args[0] == "" {
		return CommandServe, nil
	}

	cmd := Command(args[0])
	if !slices.Contains(commands, cmd) {
		names := make([]string, len(commands))
		for i, c := range commands {
			names[i] = string(c)
		}
		return "", fmt.Errorf("unknown command %q (available: %s)", args[0], strings.Join(names, ", "))
	}
	return cmd, nil
}
