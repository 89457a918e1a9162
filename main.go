package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"blockfall/client"
	"blockfall/game"

	"golang.org/x/term"
)

const (
	hideCursor = "\033[2J\033[?25l" // also clear screen
	showCursor = "\033[2J\033[H\033[?25h"
)

func main() {
	cfg := game.DefaultConfig()
	rows := flag.Int("rows", cfg.Rows, "board rows")
	cols := flag.Int("cols", cfg.Cols, "board columns")
	fall := flag.Float64("fall", float64(cfg.FallInterval.Milliseconds()), "fall interval in milliseconds")
	move := flag.Float64("move", float64(cfg.MoveInterval.Milliseconds()), "move window in milliseconds")
	windowed := flag.Bool("windowed", false, "only accept moves within the move window after each fall")
	remote := flag.String("remote", "localhost:9000", "board server address for online play")
	name := flag.String("name", "player", "player name")
	logFile := flag.String("log", "", "write JSON logs to this file")
	flag.Parse()

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		log.Fatal("blockfall needs an interactive terminal")
	}

	logger := slog.New(slog.DiscardHandler)
	if *logFile != "" {
		f, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.Fatalf("unable to open log file: %v", err)
		}
		defer f.Close()
		logger = slog.New(slog.NewJSONHandler(f, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	cfg.Rows, cfg.Cols = *rows, *cols
	cfg.FallInterval = game.Millis(*fall)
	cfg.MoveInterval = game.Millis(*move)
	if *windowed {
		cfg.MovePolicy = game.MoveWindowed
	}

	c, err := client.New(logger, &client.Options{Config: cfg, Address: *remote, Name: *name})
	if err != nil {
		log.Fatalf("unable to start client: %v", err)
	}
	fmt.Print(hideCursor)
	defer fmt.Print(showCursor)
	c.Start()
}
