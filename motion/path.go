package motion

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/milk9111/cape/cape"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

var ErrEmptyPath = errors.New("motion: path has no keyframes")

// Keyframe is a path waypoint. Duration and Ease shape the leg arriving at
// this keyframe.
type Keyframe struct {
	At       cape.Vec3
	Duration float64
	Ease     ease.TweenFunc
}

// Path moves the anchor through keyframes, easing each leg. A looping path
// wraps back to the first keyframe after the last leg.
type Path struct {
	clock  *Clock
	keys   []Keyframe
	legs   []*gween.Tween
	starts []float64
	total  float64
	loop   bool
}

func NewPath(clock *Clock, keys []Keyframe, loop bool) (*Path, error) {
	if clock == nil {
		return nil, errors.New("motion: nil clock")
	}
	if len(keys) == 0 {
		return nil, ErrEmptyPath
	}

	p := &Path{
		clock:  clock,
		keys:   append([]Keyframe(nil), keys...),
		legs:   make([]*gween.Tween, 0, len(keys)-1),
		starts: make([]float64, 0, len(keys)-1),
		loop:   loop,
	}
	for i := 1; i < len(keys); i++ {
		k := keys[i]
		if !(k.Duration > 0) || math.IsInf(k.Duration, 0) {
			return nil, fmt.Errorf("motion: keyframe %d: duration %v must be positive", i, k.Duration)
		}
		fn := k.Ease
		if fn == nil {
			fn = ease.Linear
		}
		// Each leg tweens progress 0..1; positions are interpolated in
		// float64 so long paths keep their precision.
		p.legs = append(p.legs, gween.New(0, 1, float32(k.Duration), fn))
		p.starts = append(p.starts, p.total)
		p.total += k.Duration
	}
	return p, nil
}

// Duration is the length of one pass over the keyframes.
func (p *Path) Duration() float64 {
	return p.total
}

func (p *Path) At(t float64) cape.Vec3 {
	if len(p.legs) == 0 {
		return p.keys[0].At
	}
	if p.loop {
		t = math.Mod(t, p.total)
		if t < 0 {
			t += p.total
		}
	}
	if t <= 0 {
		return p.keys[0].At
	}
	if t >= p.total {
		return p.keys[len(p.keys)-1].At
	}

	i := len(p.legs) - 1
	for j, start := range p.starts {
		if t < start+p.keys[j+1].Duration {
			i = j
			break
		}
	}

	leg := p.legs[i]
	leg.Reset()
	progress, _ := leg.Update(float32(t - p.starts[i]))

	from, to := p.keys[i].At, p.keys[i+1].At
	return from.Add(to.Sub(from).Mul(float64(progress)))
}

func (p *Path) AnchorPosition() cape.Vec3 {
	return p.At(p.clock.Now())
}

var easings = map[string]ease.TweenFunc{
	"linear":         ease.Linear,
	"in_quad":        ease.InQuad,
	"out_quad":       ease.OutQuad,
	"in_out_quad":    ease.InOutQuad,
	"in_cubic":       ease.InCubic,
	"out_cubic":      ease.OutCubic,
	"in_out_cubic":   ease.InOutCubic,
	"in_sine":        ease.InSine,
	"out_sine":       ease.OutSine,
	"in_out_sine":    ease.InOutSine,
	"in_expo":        ease.InExpo,
	"out_expo":       ease.OutExpo,
	"in_out_expo":    ease.InOutExpo,
	"out_back":       ease.OutBack,
	"out_bounce":     ease.OutBounce,
	"out_elastic":    ease.OutElastic,
	"in_out_elastic": ease.InOutElastic,
}

// Ease looks up an easing by its snake_case name. The empty name is linear.
func Ease(name string) (ease.TweenFunc, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return ease.Linear, nil
	}
	fn, ok := easings[name]
	if !ok {
		return nil, fmt.Errorf("motion: unknown easing %q", name)
	}
	return fn, nil
}
