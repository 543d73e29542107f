// Command blockfall-ebiten plays the falling-block game in a desktop window.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/plus3/blockfall/internal/cli"
	"github.com/plus3/blockfall/sim"
	"github.com/plus3/blockfall/spectate"
)

func main() {
	flags, cfg, err := cli.Parse("blockfall-ebiten", os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		log.Fatalf("blockfall-ebiten: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var opts []sim.Option
	if flags.Spectate != "" {
		hub := spectate.NewHub()
		opts = append(opts, sim.WithRenderer(hub))
		go func() {
			if err := hub.Serve(ctx, flags.Spectate); err != nil {
				log.Printf("blockfall-ebiten: spectate: %v", err)
			}
		}()
	}

	session, err := sim.NewSession(cfg, opts...)
	if err != nil {
		log.Fatalf("blockfall-ebiten: %v", err)
	}

	game := newGame(session)
	go game.run(ctx)

	w, h := game.Layout(0, 0)
	ebiten.SetWindowSize(w*2, h*2)
	ebiten.SetWindowTitle("blockfall")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	log.Printf("blockfall-ebiten: %dx%d board, tick %s, %s moves", cfg.Width, cfg.Height, cfg.TickInterval, cfg.Movement)
	if err := ebiten.RunGame(game); err != nil {
		log.Fatalf("blockfall-ebiten: %v", err)
	}
	cancel()
	if err := game.wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("blockfall-ebiten: %v", err)
	}
	log.Printf("blockfall-ebiten: game over, score %d", session.Score())
}
