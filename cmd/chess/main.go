// FILE: cmd/chess/main.go
// Package main runs an interactive terminal chess game against the built-in engine.
package main

import (
	"flag"
	"log"
	"os"

	"chessbot/internal/cli"
	"chessbot/internal/core"
	"chessbot/internal/processor"
	"chessbot/internal/service"

	"github.com/chzyer/readline"
)

func main() {
	var (
		depth = flag.Int("depth", core.DefaultSearchDepth, "Computer search depth (1-5)")
		theme = flag.String("theme", "", "Board color theme: off, brown, green, gray (default: brown on a terminal)")
	)
	flag.Parse()

	if *depth < core.MinSearchDepth || *depth > core.MaxSearchDepth {
		log.Fatalf("Invalid depth %d: must be between %d and %d", *depth, core.MinSearchDepth, core.MaxSearchDepth)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		HistoryFile:     ".chess_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		log.Fatalf("Failed to start terminal: %v", err)
	}
	defer rl.Close()

	svc := service.New()
	defer svc.Shutdown()

	proc := processor.New(svc, 1)
	defer proc.Close()

	view := cli.New(rl, rl.Stdout())
	selected := cli.DefaultTheme(int(os.Stdout.Fd()))
	if *theme != "" {
		selected = cli.ColorTheme(*theme)
	}
	if err := view.SetTheme(selected); err != nil {
		log.Fatalf("%v", err)
	}

	handler := cli.NewHandler(proc, svc, view, *depth)

	view.ShowWelcome()
	handler.Run()
}
