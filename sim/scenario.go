package sim

import (
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/cape/cape"
	"github.com/milk9111/cape/collision"
	"github.com/milk9111/cape/levels"
	"github.com/milk9111/cape/motion"
	"github.com/milk9111/cape/prefabs"
)

// Scenario is a fully wired run: tunables, level geometry, anchor motion
// and the runner stepping them.
type Scenario struct {
	Source string
	Spec   *prefabs.ScenarioSpec
	Cape   prefabs.CapeSpec
	Level  *levels.Level
	Space  *collision.Space
	Driver *motion.Driver
	Runner *Runner

	opts   []Option
	stamps []stamp
}

// stamp is the disk state of one prefab override when the scenario loaded.
type stamp struct {
	file   string
	mod    time.Time
	onDisk bool
}

// Option adjusts how a scenario is wired.
type Option func(*options)

type options struct {
	anchor   cape.AnchorProvider
	maxSpeed float64
}

// WithAnchor replaces the scenario's anchor path with a host-owned anchor.
// Offsets and the velocity mode from the scenario still apply.
func WithAnchor(a cape.AnchorProvider) Option {
	return func(o *options) { o.anchor = a }
}

// WithMaxSpeed clamps tracked anchor velocity so jumps in the anchor do not
// blow the cape away.
func WithMaxSpeed(v float64) Option {
	return func(o *options) { o.maxSpeed = v }
}

func LoadScenario(name string, opts ...Option) (*Scenario, error) {
	spec, err := prefabs.LoadScenarioSpec(name)
	if err != nil {
		return nil, err
	}
	s, err := NewScenario(spec, opts...)
	if err != nil {
		return nil, err
	}
	s.Source = name
	for _, file := range spec.Files(name) {
		mod, ok := prefabs.ModTime(file)
		s.stamps = append(s.stamps, stamp{file: file, mod: mod, onDisk: ok})
	}
	return s, nil
}

// Changed polls the prefab overrides the scenario was loaded from and
// reports the first one created, edited or removed since the last call. It
// stands in for prefabs.Watcher where fsnotify is unavailable.
func (s *Scenario) Changed() (prefabs.Change, bool) {
	for i, st := range s.stamps {
		mod, ok := prefabs.ModTime(st.file)
		if ok != st.onDisk || !mod.Equal(st.mod) {
			s.stamps[i].mod, s.stamps[i].onDisk = mod, ok
			return prefabs.Change{Path: filepath.Join("prefabs", filepath.FromSlash(st.file)), Kind: prefabs.ChangeSpec}, true
		}
	}
	return prefabs.Change{}, false
}

func NewScenario(spec *prefabs.ScenarioSpec, opts ...Option) (*Scenario, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	capeSpec, err := spec.CapeSpec()
	if err != nil {
		return nil, err
	}
	cfg, err := capeSpec.Config()
	if err != nil {
		return nil, err
	}

	s := &Scenario{Source: spec.Name, Spec: spec, Cape: capeSpec, opts: opts}
	if spec.Level != "" {
		level, err := levels.Load(spec.Level)
		if err != nil {
			return nil, fmt.Errorf("sim: scenario %s: %w", spec.Name, err)
		}
		s.Level = level
		s.Space = collision.NewSpaceFromLevel(level)
	} else {
		s.Space = collision.NewSpace()
	}
	for i, shape := range spec.Geometry {
		if err := addShape(s.Space, shape); err != nil {
			return nil, fmt.Errorf("sim: scenario %s: geometry %d: %w", spec.Name, i, err)
		}
	}

	if o.anchor != nil {
		s.Driver, err = motion.Follow(o.anchor, spec.Anchor, spec.Velocity)
	} else {
		s.Driver, err = motion.FromSpec(spec.Anchor, spec.Velocity)
	}
	if err != nil {
		return nil, fmt.Errorf("sim: scenario %s: %w", spec.Name, err)
	}
	if o.maxSpeed > 0 {
		s.Driver.LimitSpeed(o.maxSpeed)
	}
	rig, err := cape.NewRig(cfg, s.Driver.Anchor, s.Driver.Velocity, s.Space)
	if err != nil {
		return nil, fmt.Errorf("sim: scenario %s: %w", spec.Name, err)
	}
	s.Runner, err = NewRunner(rig, s.Driver, spec.Dt())
	if err != nil {
		return nil, err
	}

	kind := anchorKind(spec.Anchor.Kind)
	if o.anchor != nil {
		kind = "host"
	}
	log.Printf("Scenario: %s ready (%d segments, anchor %s, dt %.4f)", spec.Name, cfg.SegmentCount, kind, spec.Dt())
	return s, nil
}

func anchorKind(kind string) string {
	if kind == "" {
		return prefabs.AnchorFixed
	}
	return kind
}

func addShape(space *collision.Space, shape prefabs.ShapeSpec) error {
	switch shape.Kind {
	case "box":
		if shape.Hazard {
			space.AddHazard(shape.Min.X(), shape.Min.Y(), shape.Max.X()-shape.Min.X())
			return nil
		}
		if shape.Max.X() <= shape.Min.X() || shape.Max.Y() <= shape.Min.Y() {
			return fmt.Errorf("empty box %+v..%+v", shape.Min.Vec3, shape.Max.Vec3)
		}
		space.AddBox(shape.Min.X(), shape.Min.Y(), shape.Max.X(), shape.Max.Y())
	case "circle":
		if !(shape.Radius > 0) {
			return fmt.Errorf("circle radius %v", shape.Radius)
		}
		space.AddCircle(shape.Center.X(), shape.Center.Y(), shape.Radius)
	case "segment":
		space.AddSegment(shape.A.X(), shape.A.Y(), shape.B.X(), shape.B.Y(), shape.Radius)
	case "polygon":
		if len(shape.Points) < 3 {
			return fmt.Errorf("polygon needs 3 points, got %d", len(shape.Points))
		}
		verts := make([]cp.Vector, len(shape.Points))
		for i, p := range shape.Points {
			verts[i] = cp.Vector{X: p.X(), Y: p.Y()}
		}
		space.AddPolygon(verts)
	default:
		return fmt.Errorf("unknown shape kind %q", shape.Kind)
	}
	return nil
}

// Reload applies a watched file change. Script edits are swapped into the
// running program; spec and level edits rebuild the scenario, which is
// returned in place of the receiver.
func (s *Scenario) Reload(change prefabs.Change) (*Scenario, error) {
	switch change.Kind {
	case prefabs.ChangeScript:
		if s.Driver.Script == nil {
			return s, nil
		}
		src, err := prefabs.LoadScript(s.Spec.Anchor.Script)
		if err != nil {
			return s, err
		}
		if err := s.Driver.Script.Reload(src); err != nil {
			return s, err
		}
		log.Printf("Scenario: reloaded script %s", s.Spec.Anchor.Script)
		return s, nil
	case prefabs.ChangeLevel:
		if s.Level == nil {
			return s, nil
		}
	}

	next, err := LoadScenario(s.Source, s.opts...)
	if err != nil {
		return s, err
	}
	log.Printf("Scenario: rebuilt %s after %s change to %s", s.Source, change.Kind, change.Path)
	return next, nil
}
