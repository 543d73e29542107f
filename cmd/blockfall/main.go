// Command blockfall plays the falling-block game in a terminal.
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gdamore/tcell/v2"
	"github.com/plus3/blockfall/internal/cli"
	"github.com/plus3/blockfall/sim"
	"github.com/plus3/blockfall/spectate"
	"golang.org/x/sync/errgroup"
)

func main() {
	flags, cfg, err := cli.Parse("blockfall", os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("blockfall: %v", err)
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		log.Fatalf("blockfall: open terminal: %v", err)
	}
	if err := screen.Init(); err != nil {
		log.Fatalf("blockfall: init terminal: %v", err)
	}

	// The screen owns the terminal until the game ends, so log lines are
	// held back and printed afterwards.
	var held bytes.Buffer
	logger := log.New(&held, "", log.LstdFlags)

	term := newTerminal(screen, cfg.Bindings.Quit)
	opts := []sim.Option{sim.WithRenderer(term)}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	if flags.Spectate != "" {
		hub := spectate.NewHub(spectate.WithLogger(logger))
		opts = append(opts, sim.WithRenderer(hub))
		g.Go(func() error {
			return hub.Serve(gctx, flags.Spectate)
		})
	}

	session, err := sim.NewSession(cfg, opts...)
	if err != nil {
		screen.Fini()
		log.Fatalf("blockfall: %v", err)
	}
	logger.Printf("blockfall: %dx%d board, tick %s, %s moves", cfg.Width, cfg.Height, cfg.TickInterval, cfg.Movement)

	events := make(chan sim.KeyEvent, 16)
	done := make(chan struct{})
	go term.pollKeys(events, done)

	term.Render(session.Snapshot())
	g.Go(func() error {
		defer cancel()
		err := session.Run(gctx, events)
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	err = g.Wait()
	close(done)
	screen.Fini()

	os.Stderr.Write(held.Bytes())
	fmt.Print(session.Snapshot().Text())
	if err != nil {
		log.Fatalf("blockfall: %v", err)
	}
	log.Printf("blockfall: game over, score %d", session.Score())
}
