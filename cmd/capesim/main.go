package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/milk9111/cape/cape"
	"github.com/milk9111/cape/prefabs"
	"github.com/milk9111/cape/sim"
)

func main() {
	scenario := flag.String("scenario", "settle", "scenario name in prefabs/scenarios (basename, .yaml optional)")
	ticks := flag.Int("ticks", 0, "ticks to run (0 uses the scenario's count)")
	out := flag.String("out", "", "write the trajectory as CSV to this path")
	every := flag.Int("every", 1, "record one frame every N ticks")
	verify := flag.Bool("verify", false, "run twice and fail if the trajectories differ")
	list := flag.Bool("list", false, "list embedded scenarios and exit")
	debug := flag.Bool("debug", false, "log a summary line every second of simulated time")
	flag.Parse()

	if *list {
		for _, name := range prefabs.Scenarios() {
			fmt.Println(name)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rec, s, err := run(ctx, *scenario, *ticks, *every, *debug)
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("capesim: %s %s", s.Source, rec.Summarize(s.Cape.SegmentLength))

	if *verify {
		again, _, err := run(ctx, *scenario, *ticks, *every, false)
		if err != nil {
			log.Fatal(err)
		}
		if tick, index, diverged := sim.Diverge(rec.Frames(), again.Frames()); diverged {
			log.Fatalf("capesim: %s is not deterministic: first difference at tick %d segment %d", s.Source, tick, index)
		}
		log.Printf("capesim: %s replayed bit-identically", s.Source)
	}

	if *out != "" {
		f, err := os.Create(*out)
		if err != nil {
			log.Fatal(err)
		}
		if err := rec.WriteCSV(f); err != nil {
			_ = f.Close()
			log.Fatal(err)
		}
		if err := f.Close(); err != nil {
			log.Fatal(err)
		}
		log.Printf("capesim: wrote %d frames to %s", len(rec.Frames()), *out)
	}
}

func run(ctx context.Context, name string, ticks, every int, debug bool) (*sim.Recorder, *sim.Scenario, error) {
	s, err := sim.LoadScenario(name)
	if err != nil {
		return nil, nil, err
	}
	if ticks <= 0 {
		ticks = s.Spec.Ticks
	}

	rec := &sim.Recorder{Every: every}
	s.Runner.OnTick(rec.Record)
	if debug {
		perSecond := int(1/s.Runner.Dt() + 0.5)
		s.Runner.OnTick(func(tick int, positions []cape.Vec3) {
			if tick%perSecond != 0 {
				return
			}
			end := positions[len(positions)-1]
			log.Printf("capesim: tick %d end=(%.4f, %.4f)", tick, end.X(), end.Y())
		})
	}

	if err := s.Runner.Run(ctx, ticks); err != nil {
		return nil, nil, err
	}
	return rec, s, nil
}
