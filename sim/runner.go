package sim

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/milk9111/cape/cape"
	"github.com/milk9111/cape/motion"
)

// MaxCatchUp bounds how many fixed ticks one Advance call may run. Frame
// time beyond that is dropped so a stalled host does not spiral.
const MaxCatchUp = 5

var ErrBadTimestep = errors.New("sim: timestep must be positive")

// TickFunc observes the published snapshot after every tick. The slice is
// only valid for the duration of the call.
type TickFunc func(tick int, positions []cape.Vec3)

// Runner drives a rig at a fixed timestep. Stepping happens on one goroutine
// at a time; any number of readers may call Positions concurrently and only
// ever see complete post-constraint snapshots.
type Runner struct {
	rig    *cape.Rig
	driver *motion.Driver
	dt     float64

	stepMu sync.Mutex
	acc    float64
	onTick []TickFunc

	mu       sync.RWMutex
	snapshot []cape.Vec3
	ticks    atomic.Int64
}

func NewRunner(rig *cape.Rig, driver *motion.Driver, dt float64) (*Runner, error) {
	if rig == nil {
		return nil, errors.New("sim: nil rig")
	}
	if driver == nil {
		return nil, errors.New("sim: nil driver")
	}
	if !(dt > 0) {
		return nil, ErrBadTimestep
	}
	r := &Runner{rig: rig, driver: driver, dt: dt}
	r.publish()
	return r, nil
}

// OnTick registers an observer called after each published tick.
func (r *Runner) OnTick(fn TickFunc) {
	r.stepMu.Lock()
	r.onTick = append(r.onTick, fn)
	r.stepMu.Unlock()
}

func (r *Runner) Dt() float64 {
	return r.dt
}

func (r *Runner) Ticks() int {
	return int(r.ticks.Load())
}

func (r *Runner) Rig() *cape.Rig {
	return r.rig
}

func (r *Runner) Driver() *motion.Driver {
	return r.driver
}

// Step runs exactly one fixed tick.
func (r *Runner) Step() {
	r.stepMu.Lock()
	defer r.stepMu.Unlock()
	r.step()
}

func (r *Runner) step() {
	r.driver.Advance(r.dt)
	r.rig.Tick(r.dt)
	r.publish()
	n := int(r.ticks.Add(1))
	if len(r.onTick) > 0 {
		r.mu.RLock()
		for _, fn := range r.onTick {
			fn(n, r.snapshot)
		}
		r.mu.RUnlock()
	}
}

// Advance accumulates frame time and runs as many whole ticks as fit, at
// most MaxCatchUp. It returns the number of ticks run.
func (r *Runner) Advance(frame time.Duration) int {
	r.stepMu.Lock()
	defer r.stepMu.Unlock()

	r.acc += frame.Seconds()
	n := 0
	for r.acc >= r.dt && n < MaxCatchUp {
		r.step()
		r.acc -= r.dt
		n++
	}
	if n == MaxCatchUp && r.acc >= r.dt {
		r.acc = 0
	}
	return n
}

// Alpha is the fraction of a tick left in the accumulator, for renderers
// that interpolate between snapshots.
func (r *Runner) Alpha() float64 {
	r.stepMu.Lock()
	defer r.stepMu.Unlock()
	return r.acc / r.dt
}

// Positions copies the latest snapshot into dst, reusing its capacity.
func (r *Runner) Positions(dst []cape.Vec3) []cape.Vec3 {
	r.mu.RLock()
	dst = append(dst[:0], r.snapshot...)
	r.mu.RUnlock()
	return dst
}

func (r *Runner) publish() {
	r.mu.Lock()
	r.snapshot = r.rig.Chain().AppendPositions(r.snapshot[:0])
	r.mu.Unlock()
}

// Reset rewinds motion and re-hangs the chain.
func (r *Runner) Reset() {
	r.stepMu.Lock()
	defer r.stepMu.Unlock()
	r.driver.Reset()
	r.rig.Reset()
	r.acc = 0
	r.ticks.Store(0)
	r.publish()
}

// Reconfigure applies new tunables at the anchor's current position without
// rewinding motion.
func (r *Runner) Reconfigure(cfg cape.Config) error {
	r.stepMu.Lock()
	defer r.stepMu.Unlock()
	if err := r.rig.Reconfigure(cfg); err != nil {
		return err
	}
	r.publish()
	return nil
}

// Retune swaps the tunables between ticks without re-hanging the chain.
func (r *Runner) Retune(cfg cape.Config) error {
	r.stepMu.Lock()
	defer r.stepMu.Unlock()
	return r.rig.Retune(cfg)
}

// Run steps n ticks as fast as possible, or until ctx is done.
func (r *Runner) Run(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.Step()
	}
	return nil
}

// RunRealtime steps in wall-clock time until ctx is done, feeding measured
// frame time through Advance.
func (r *Runner) RunRealtime(ctx context.Context) error {
	ticker := time.NewTicker(time.Duration(r.dt * float64(time.Second)))
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			r.Advance(now.Sub(last))
			last = now
		}
	}
}
