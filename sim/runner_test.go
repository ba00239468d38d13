package sim

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/milk9111/cape/cape"
	"github.com/milk9111/cape/motion"
	"github.com/milk9111/cape/prefabs"
)

const tick = 1.0 / 60

func newSweepRunner(t *testing.T) *Runner {
	t.Helper()
	driver, err := motion.FromSpec(prefabs.AnchorSpec{
		Kind:      prefabs.AnchorSine,
		Amplitude: prefabs.YAMLVec{Vec3: cape.V3(0.3, 0, 0)},
		Frequency: prefabs.YAMLVec{Vec3: cape.V3(3, 0, 0)},
	}, prefabs.VelocitySpec{})
	if err != nil {
		t.Fatalf("FromSpec: %v", err)
	}
	rig, err := cape.NewRig(cape.DefaultConfig(), driver.Anchor, driver.Velocity, cape.NoSurface{})
	if err != nil {
		t.Fatalf("NewRig: %v", err)
	}
	r, err := NewRunner(rig, driver, tick)
	if err != nil {
		t.Fatalf("NewRunner: %v", err)
	}
	return r
}

func TestNewRunnerErrors(t *testing.T) {
	r := newSweepRunner(t)
	if _, err := NewRunner(nil, r.Driver(), tick); err == nil {
		t.Fatalf("expected error for nil rig")
	}
	if _, err := NewRunner(r.Rig(), nil, tick); err == nil {
		t.Fatalf("expected error for nil driver")
	}
	if _, err := NewRunner(r.Rig(), r.Driver(), 0); !errors.Is(err, ErrBadTimestep) {
		t.Fatalf("expected ErrBadTimestep, got %v", err)
	}
}

func TestRunnerPublishesInitialSnapshot(t *testing.T) {
	r := newSweepRunner(t)
	pos := r.Positions(nil)
	if len(pos) != cape.DefaultConfig().SegmentCount {
		t.Fatalf("expected %d positions, got %d", cape.DefaultConfig().SegmentCount, len(pos))
	}
	if pos[0] != (cape.Vec3{}) {
		t.Fatalf("initial snapshot should hang from the anchor, got %+v", pos[0])
	}
}

func TestAdvanceFixedTimestep(t *testing.T) {
	cases := []struct {
		name  string
		frame time.Duration
		want  int
	}{
		{"short_frame", 5 * time.Millisecond, 0},
		{"two_ticks", 40 * time.Millisecond, 2},
		{"stall_is_bounded", time.Second, MaxCatchUp},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newSweepRunner(t)
			if got := r.Advance(tc.frame); got != tc.want {
				t.Fatalf("Advance(%v) ran %d ticks, want %d", tc.frame, got, tc.want)
			}
			if r.Ticks() != tc.want {
				t.Fatalf("tick counter %d, want %d", r.Ticks(), tc.want)
			}
			if a := r.Alpha(); a < 0 || a >= 1 {
				t.Fatalf("alpha %v outside [0,1)", a)
			}
		})
	}
}

func TestAdvanceCarriesRemainder(t *testing.T) {
	r := newSweepRunner(t)
	total := 0
	for i := 0; i < 20; i++ {
		total += r.Advance(7 * time.Millisecond)
	}
	// 140ms of frames at 60Hz is 8 whole ticks with the remainder carried.
	if total != 8 {
		t.Fatalf("ran %d ticks over 140ms, want 8", total)
	}
}

func TestStepKeepsAnchorPinned(t *testing.T) {
	r := newSweepRunner(t)
	var buf []cape.Vec3
	for i := 0; i < 240; i++ {
		r.Step()
		buf = r.Positions(buf)
		if want := r.Driver().Anchor.AnchorPosition(); buf[0] != want {
			t.Fatalf("tick %d: segment 0 at %+v, anchor at %+v", i, buf[0], want)
		}
	}
}

func TestStepDoesNotAllocate(t *testing.T) {
	r := newSweepRunner(t)
	buf := make([]cape.Vec3, 0, 16)
	r.Step()
	allocs := testing.AllocsPerRun(200, func() {
		r.Step()
		buf = r.Positions(buf)
	})
	if allocs != 0 {
		t.Fatalf("steady state step allocated %v times", allocs)
	}
}

func TestConcurrentReadersSeeWholeSnapshots(t *testing.T) {
	r := newSweepRunner(t)
	n := cape.DefaultConfig().SegmentCount

	ctx, cancel := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	errs := make(chan string, 4)
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var buf []cape.Vec3
			for ctx.Err() == nil {
				buf = r.Positions(buf)
				if len(buf) != n {
					errs <- "torn snapshot length"
					return
				}
				for _, p := range buf {
					if !cape.Finite(p) {
						errs <- "non-finite position"
						return
					}
				}
			}
		}()
	}

	if err := r.Run(context.Background(), 600); err != nil {
		t.Fatalf("Run: %v", err)
	}
	cancel()
	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Fatal(msg)
	}
	if r.Ticks() != 600 {
		t.Fatalf("expected 600 ticks, got %d", r.Ticks())
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	r := newSweepRunner(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := r.Run(ctx, 100); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if r.Ticks() != 0 {
		t.Fatalf("cancelled run stepped %d ticks", r.Ticks())
	}
}

func TestRunRealtime(t *testing.T) {
	r := newSweepRunner(t)
	ctx, cancel := context.WithTimeout(context.Background(), 150*time.Millisecond)
	defer cancel()
	if err := r.RunRealtime(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline, got %v", err)
	}
	if r.Ticks() == 0 {
		t.Fatalf("realtime run never stepped")
	}
}

func TestResetAndReconfigure(t *testing.T) {
	r := newSweepRunner(t)
	for i := 0; i < 50; i++ {
		r.Step()
	}
	r.Reset()
	if r.Ticks() != 0 || r.Driver().Clock.Now() != 0 {
		t.Fatalf("reset should rewind ticks and clock")
	}
	pos := r.Positions(nil)
	for i, p := range pos {
		if p.X() != 0 || math.Abs(p.Y()+float64(i)*0.1) > 1e-12 {
			t.Fatalf("segment %d not re-hung: %+v", i, p)
		}
	}

	cfg := cape.DefaultConfig()
	cfg.SegmentCount = 4
	if err := r.Reconfigure(cfg); err != nil {
		t.Fatalf("Reconfigure: %v", err)
	}
	if got := len(r.Positions(nil)); got != 4 {
		t.Fatalf("snapshot has %d positions after reconfigure, want 4", got)
	}
	cfg.Iterations = 0
	if err := r.Reconfigure(cfg); !errors.Is(err, cape.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestOnTickObservers(t *testing.T) {
	r := newSweepRunner(t)
	var seen []int
	r.OnTick(func(tick int, positions []cape.Vec3) {
		if len(positions) != cape.DefaultConfig().SegmentCount {
			t.Errorf("observer got %d positions", len(positions))
		}
		seen = append(seen, tick)
	})
	for i := 0; i < 3; i++ {
		r.Step()
	}
	if len(seen) != 3 || seen[0] != 1 || seen[2] != 3 {
		t.Fatalf("observer saw ticks %v", seen)
	}
}

func TestRetuneKeepsSnapshot(t *testing.T) {
	r := newSweepRunner(t)
	for i := 0; i < 40; i++ {
		r.Step()
	}
	before := r.Positions(nil)

	cfg := cape.DefaultConfig()
	cfg.WindFactor = 0
	if err := r.Retune(cfg); err != nil {
		t.Fatalf("Retune: %v", err)
	}
	for i, p := range r.Positions(nil) {
		if p != before[i] {
			t.Fatalf("segment %d moved on retune: %+v -> %+v", i, before[i], p)
		}
	}
	if r.Ticks() != 40 {
		t.Fatalf("retune must not rewind ticks, got %d", r.Ticks())
	}
	if got := r.Rig().Chain().Config().WindFactor; got != 0 {
		t.Fatalf("wind factor %v after retune, want 0", got)
	}
}
