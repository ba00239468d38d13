package motion

import (
	"errors"
	"fmt"
	"log"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/cape/cape"
)

const scriptDispatch = `
__result := position(__t)
`

// Script evaluates a tengo function `position(t)` returning the anchor
// offset from Origin as an array [x, y] / [x, y, z] or a map {x:, y:, z:}.
type Script struct {
	Name   string
	Origin cape.Vec3

	clock    *Clock
	compiled *tengo.Compiled

	cachedAt float64
	cached   cape.Vec3
	valid    bool
	failed   bool
}

// NewScript compiles src and evaluates it once at t=0 so a broken script is
// reported at construction instead of mid-simulation.
func NewScript(clock *Clock, name string, src []byte, origin cape.Vec3) (*Script, error) {
	if clock == nil {
		return nil, errors.New("motion: nil clock")
	}
	s := &Script{Name: name, Origin: origin, clock: clock}
	if err := s.Reload(src); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload swaps in new source. On error the previous program stays active.
func (s *Script) Reload(src []byte) error {
	compiled, err := compileScript(src)
	if err != nil {
		return fmt.Errorf("motion: script %s: %w", s.Name, err)
	}
	if _, err := evalScript(compiled, 0); err != nil {
		return fmt.Errorf("motion: script %s: %w", s.Name, err)
	}
	s.compiled = compiled
	s.valid = false
	s.failed = false
	return nil
}

func compileScript(src []byte) (*tengo.Compiled, error) {
	script := tengo.NewScript(append(append([]byte(nil), src...), scriptDispatch...))
	_ = script.Add("__t", 0.0)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	return script.Compile()
}

func evalScript(compiled *tengo.Compiled, t float64) (cape.Vec3, error) {
	if err := compiled.Set("__t", t); err != nil {
		return cape.Vec3{}, err
	}
	if err := compiled.Run(); err != nil {
		return cape.Vec3{}, err
	}
	return toVec3(compiled.Get("__result").Value())
}

// At evaluates the script at time t. Runtime errors are logged once and the
// last good position is held.
func (s *Script) At(t float64) cape.Vec3 {
	if s.valid && s.cachedAt == t {
		return s.Origin.Add(s.cached)
	}
	v, err := evalScript(s.compiled, t)
	if err != nil {
		if !s.failed {
			log.Printf("Script: %s at t=%.3f: %v", s.Name, t, err)
			s.failed = true
		}
		return s.Origin.Add(s.cached)
	}
	s.cached, s.cachedAt, s.valid = v, t, true
	return s.Origin.Add(v)
}

func (s *Script) AnchorPosition() cape.Vec3 {
	return s.At(s.clock.Now())
}

func toVec3(v any) (cape.Vec3, error) {
	var xs [3]float64
	switch val := v.(type) {
	case []any:
		if len(val) < 2 || len(val) > 3 {
			return cape.Vec3{}, fmt.Errorf("position must have 2 or 3 components, got %d", len(val))
		}
		for i, e := range val {
			f, ok := toFloat(e)
			if !ok {
				return cape.Vec3{}, fmt.Errorf("position component %d is %T", i, e)
			}
			xs[i] = f
		}
	case map[string]any:
		for i, key := range []string{"x", "y", "z"} {
			e, ok := val[key]
			if !ok {
				continue
			}
			f, ok := toFloat(e)
			if !ok {
				return cape.Vec3{}, fmt.Errorf("position %s is %T", key, e)
			}
			xs[i] = f
		}
	default:
		return cape.Vec3{}, fmt.Errorf("position must be an array or map, got %T", v)
	}
	out := cape.V3(xs[0], xs[1], xs[2])
	if !cape.Finite(out) {
		return cape.Vec3{}, fmt.Errorf("position is not finite: %+v", out)
	}
	return out, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}
