// FILE: cmd/chess-client/main.go
// Package main implements an interactive debugging client for the chess server API.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"chessbot/internal/client/api"
	"chessbot/internal/client/commands"
	"chessbot/internal/client/display"
	"chessbot/internal/core"

	"github.com/chzyer/readline"
)

func main() {
	apiURL := flag.String("url", "http://localhost:8080", "Chess server base URL")
	flag.Parse()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          display.Prompt("chess"),
		HistoryFile:     ".chess_client_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", display.Red, err.Error(), display.Reset)
		os.Exit(1)
	}
	defer rl.Close()

	client := api.New(*apiURL)
	client.Out = rl.Stdout()
	s := &commands.Session{
		Client: client,
		Out:    rl.Stdout(),
	}

	fmt.Fprintf(s.Out, "%sChess Debug Client%s\n", display.Cyan, display.Reset)
	fmt.Fprintf(s.Out, "%sAPI: %s%s\n", display.Cyan, client.BaseURL, display.Reset)
	fmt.Fprintf(s.Out, "Type 'help' for commands\n\n")

	registry := commands.NewRegistry(s)

	for {
		rl.SetPrompt(buildPrompt(s))

		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		if err := registry.Execute(line); errors.Is(err, commands.ErrExit) {
			break
		}
	}
}

func buildPrompt(s *commands.Session) string {
	prompt := "chess"
	if s.CurrentGame == "" {
		return display.Prompt(prompt)
	}

	id := s.CurrentGame
	if len(id) > 8 {
		id = id[:8]
	}
	prompt += display.Yellow + " [" + display.White + id + display.Yellow + "]"

	if state := s.GameState; state != nil {
		player, name := state.Players.White, "White"
		color := display.Blue
		if state.Turn == core.ColorBlack.String() {
			player, name, color = state.Players.Black, "Black", display.Red
		}
		kind := "h"
		if player != nil && player.Type == core.PlayerComputer {
			kind = "c"
		}
		prompt += fmt.Sprintf(" - Turn:%s%s%s(%s)", color, name, display.Yellow, kind)
		if state.State != core.StateOngoing.String() {
			prompt += " " + strings.ToUpper(state.State)
		}
	}

	return display.Prompt(prompt)
}
