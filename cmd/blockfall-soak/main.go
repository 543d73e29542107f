// Command blockfall-soak plays many headless games with random input and
// reports tick timings, scores and memory use.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"os"
	"runtime"
	"time"

	"github.com/plus3/blockfall/internal/cli"
	"github.com/plus3/blockfall/sim"
)

var moves = []sim.Intent{sim.MoveLeft, sim.MoveRight, sim.MoveDown, sim.Rotate}

func main() {
	fs := flag.NewFlagSet("blockfall-soak", flag.ExitOnError)
	duration := fs.Duration("duration", 10*time.Second, "The total duration the soak should run for.")
	maxGames := fs.Int("games", 0, "Stop after this many games, 0 for no limit.")
	maxIntents := fs.Int("intents", 2, "Maximum random intents submitted per tick.")
	gcPauseMetrics := fs.Bool("gc-pause-metrics", false, "Enable detailed GC pause metrics in the report.")
	flags := cli.Register(fs)
	fs.Parse(os.Args[1:])

	cfg, err := flags.Config()
	if err != nil {
		log.Fatalf("blockfall-soak: %v", err)
	}

	report := &Report{
		Duration:       *duration,
		Width:          cfg.Width,
		Height:         cfg.Height,
		Movement:       cfg.Movement.String(),
		GCPauseMetrics: *gcPauseMetrics,
	}

	runtime.ReadMemStats(&report.MemStatsStart)

	log.Printf("Running %dx%d games for %s...", cfg.Width, cfg.Height, *duration)
	ctx, cancel := context.WithTimeout(context.Background(), *duration)
	defer cancel()

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	input := rand.New(rand.NewPCG(seed, ^seed))

	startTime := time.Now()
	for *maxGames == 0 || report.Games < *maxGames {
		cfg.Seed = input.Uint64() | 1
		err := playGame(ctx, cfg, input, *maxIntents, report)
		if errors.Is(err, context.DeadlineExceeded) {
			break
		}
		if err != nil {
			log.Fatalf("blockfall-soak: %v", err)
		}
	}

	report.TotalTime = time.Since(startTime)
	report.TickTime.Finalize()
	report.Score.Finalize()
	runtime.ReadMemStats(&report.MemStatsEnd)

	log.Println("Soak finished.")

	fmt.Println("\n\n--- Soak Report ---")
	if err := report.Generate(os.Stdout); err != nil {
		log.Fatalf("Failed to generate report: %v", err)
	}
	fmt.Println("--- End of Report ---")
}

// playGame runs one session to game over. An unfinished game at the
// deadline is discarded.
func playGame(ctx context.Context, cfg sim.Config, input *rand.Rand, maxIntents int, report *Report) error {
	session, err := sim.NewSession(cfg)
	if err != nil {
		return err
	}

	for !session.GameOver() {
		if err := ctx.Err(); err != nil {
			return err
		}

		for range input.IntN(maxIntents + 1) {
			session.Submit(moves[input.IntN(len(moves))])
		}

		tickStart := time.Now()
		session.Step()
		report.TickTime.Add(time.Since(tickStart))
		report.Ticks++
	}

	snap := session.Snapshot()
	report.Games++
	report.Pieces += snap.Pieces
	report.Score.Add(snap.Score)
	report.Systems = mergeSystems(report.Systems, session.Stats())
	return nil
}
