package prefabs

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"github.com/milk9111/cape/cape"
	"gopkg.in/yaml.v3"
)

func LoadSpec[T any](filename string) (T, error) {
	var zero T
	data, err := Load(filename)
	if err != nil {
		return zero, fmt.Errorf("prefabs: load %s: %w", filename, err)
	}

	var spec T
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return zero, fmt.Errorf("prefabs: unmarshal %s: %w", filename, err)
	}

	return spec, nil
}

// CapeSpec is the YAML form of cape tunables. Zero counts and lengths fall
// back to cape.DefaultConfig; gravity, wind factor and radius are pointers
// because zero is a meaningful value for them.
type CapeSpec struct {
	Name          string         `yaml:"name"`
	SegmentCount  int            `yaml:"segment_count"`
	SegmentLength float64        `yaml:"segment_length"`
	Iterations    int            `yaml:"iterations"`
	Gravity       *YAMLVec       `yaml:"gravity"`
	Damping       float64        `yaml:"damping"`
	WindFactor    *float64       `yaml:"wind_factor"`
	Radius        *float64       `yaml:"radius"`
	LineRender    LineRenderSpec `yaml:"line_render"`
}

const defaultCapeFile = "cape.yaml"

func LoadCapeSpec(name string) (*CapeSpec, error) {
	if name == "" {
		name = defaultCapeFile
	}
	spec, err := LoadSpec[CapeSpec](name)
	if err != nil {
		return nil, err
	}
	return &spec, nil
}

// Config converts the spec into validated chain tunables.
func (s CapeSpec) Config() (cape.Config, error) {
	cfg := cape.DefaultConfig()
	if s.SegmentCount != 0 {
		cfg.SegmentCount = s.SegmentCount
	}
	if s.SegmentLength != 0 {
		cfg.SegmentLength = s.SegmentLength
	}
	if s.Iterations != 0 {
		cfg.Iterations = s.Iterations
	}
	if s.Gravity != nil {
		cfg.Gravity = s.Gravity.Vec3
	}
	if s.Damping != 0 {
		cfg.Damping = s.Damping
	}
	if s.WindFactor != nil {
		cfg.WindFactor = *s.WindFactor
	}
	if s.Radius != nil {
		cfg.Radius = *s.Radius
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("prefabs: cape %q: %w", s.Name, err)
	}
	return cfg, nil
}

// Merge returns s with every field set in o laid on top.
func (s CapeSpec) Merge(o *CapeSpec) CapeSpec {
	if o == nil {
		return s
	}
	if o.Name != "" {
		s.Name = o.Name
	}
	if o.SegmentCount != 0 {
		s.SegmentCount = o.SegmentCount
	}
	if o.SegmentLength != 0 {
		s.SegmentLength = o.SegmentLength
	}
	if o.Iterations != 0 {
		s.Iterations = o.Iterations
	}
	if o.Gravity != nil {
		s.Gravity = o.Gravity
	}
	if o.Damping != 0 {
		s.Damping = o.Damping
	}
	if o.WindFactor != nil {
		s.WindFactor = o.WindFactor
	}
	if o.Radius != nil {
		s.Radius = o.Radius
	}
	if o.LineRender.Width != 0 {
		s.LineRender.Width = o.LineRender.Width
	}
	if o.LineRender.Color != nil {
		s.LineRender.Color = o.LineRender.Color
	}
	if o.LineRender.AntiAlias {
		s.LineRender.AntiAlias = true
	}
	return s
}

type LineRenderSpec struct {
	Width     float32    `yaml:"width"`
	Color     *YAMLColor `yaml:"color"`
	AntiAlias bool       `yaml:"anti_alias"`
}

// Anchor path kinds.
const (
	AnchorFixed  = "fixed"
	AnchorSine   = "sine"
	AnchorPath   = "path"
	AnchorScript = "script"
)

// Velocity source modes.
const (
	VelocityTracked  = "tracked"
	VelocityNone     = "none"
	VelocityConstant = "constant"
)

// AnchorSpec describes how the cape anchor moves over time.
type AnchorSpec struct {
	Kind     string  `yaml:"kind"`
	Position YAMLVec `yaml:"position"`

	// sine: Position + Amplitude*sin(Frequency*t + Phase), per axis.
	// Frequency is angular (rad/s).
	Amplitude YAMLVec `yaml:"amplitude"`
	Frequency YAMLVec `yaml:"frequency"`
	Phase     YAMLVec `yaml:"phase"`

	Keyframes []KeyframeSpec `yaml:"keyframes"`
	Loop      bool           `yaml:"loop"`

	Script string `yaml:"script"`

	// Offset is added in the host's local frame; Mirror flips its X with the
	// host's horizontal facing.
	Offset YAMLVec `yaml:"offset"`
	Mirror bool    `yaml:"mirror"`
}

// KeyframeSpec is one waypoint of a path anchor. Duration and Ease describe
// the segment that ends at this keyframe and are ignored on the first one.
type KeyframeSpec struct {
	At       YAMLVec `yaml:"at"`
	Duration float64 `yaml:"duration"`
	Ease     string  `yaml:"ease"`
}

type VelocitySpec struct {
	Mode  string  `yaml:"mode"`
	Value YAMLVec `yaml:"value"`
}

// ShapeSpec is ad-hoc static collision geometry placed by a scenario.
type ShapeSpec struct {
	Kind   string    `yaml:"kind"`
	Min    YAMLVec   `yaml:"min"`
	Max    YAMLVec   `yaml:"max"`
	Center YAMLVec   `yaml:"center"`
	Radius float64   `yaml:"radius"`
	A      YAMLVec   `yaml:"a"`
	B      YAMLVec   `yaml:"b"`
	Points []YAMLVec `yaml:"points"`
	Hazard bool      `yaml:"hazard"`
}

// ScenarioSpec bundles everything a headless or interactive run needs.
type ScenarioSpec struct {
	Name     string       `yaml:"name"`
	Ticks    int          `yaml:"ticks"`
	TickRate float64      `yaml:"tick_rate"`
	Level    string       `yaml:"level"`
	CapeFile string       `yaml:"cape_file"`
	Cape     *CapeSpec    `yaml:"cape"`
	Anchor   AnchorSpec   `yaml:"anchor"`
	Velocity VelocitySpec `yaml:"velocity"`
	Geometry []ShapeSpec  `yaml:"geometry"`
}

const DefaultTickRate = 60

func LoadScenarioSpec(name string) (*ScenarioSpec, error) {
	clean := cleanScenarioPath(name)
	spec, err := LoadSpec[ScenarioSpec](clean)
	if err != nil {
		return nil, err
	}
	if spec.Name == "" {
		spec.Name = strings.TrimSuffix(strings.TrimPrefix(clean, "scenarios/"), ".yaml")
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

func (s ScenarioSpec) Validate() error {
	if s.Ticks < 0 {
		return fmt.Errorf("prefabs: scenario %q: negative ticks %d", s.Name, s.Ticks)
	}
	if s.TickRate < 0 {
		return fmt.Errorf("prefabs: scenario %q: negative tick rate %v", s.Name, s.TickRate)
	}
	switch s.Anchor.Kind {
	case "", AnchorFixed, AnchorSine:
	case AnchorPath:
		if len(s.Anchor.Keyframes) == 0 {
			return fmt.Errorf("prefabs: scenario %q: path anchor without keyframes", s.Name)
		}
	case AnchorScript:
		if strings.TrimSpace(s.Anchor.Script) == "" {
			return fmt.Errorf("prefabs: scenario %q: script anchor without script", s.Name)
		}
	default:
		return fmt.Errorf("prefabs: scenario %q: unknown anchor kind %q", s.Name, s.Anchor.Kind)
	}
	switch s.Velocity.Mode {
	case "", VelocityTracked, VelocityNone, VelocityConstant:
	default:
		return fmt.Errorf("prefabs: scenario %q: unknown velocity mode %q", s.Name, s.Velocity.Mode)
	}
	for i, shape := range s.Geometry {
		switch shape.Kind {
		case "box", "circle", "segment", "polygon":
		default:
			return fmt.Errorf("prefabs: scenario %q: geometry %d: unknown kind %q", s.Name, i, shape.Kind)
		}
	}
	return nil
}

// Dt is the fixed step length in seconds.
func (s ScenarioSpec) Dt() float64 {
	if s.TickRate <= 0 {
		return 1.0 / DefaultTickRate
	}
	return 1 / s.TickRate
}

// CapeSpec resolves the base cape file with the scenario's inline overrides.
// Files lists the prefab files the named scenario is assembled from, in the
// form ModTime accepts.
func (s ScenarioSpec) Files(name string) []string {
	capeFile := s.CapeFile
	if capeFile == "" {
		capeFile = defaultCapeFile
	}
	return []string{cleanScenarioPath(name), cleanPrefabPath(capeFile)}
}

func (s ScenarioSpec) CapeSpec() (CapeSpec, error) {
	base, err := LoadCapeSpec(s.CapeFile)
	if err != nil {
		return CapeSpec{}, err
	}
	return base.Merge(s.Cape), nil
}

// YAMLVec decodes either a 2 or 3 element sequence or an {x, y, z} mapping.
type YAMLVec struct {
	cape.Vec3
}

func (v *YAMLVec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var xs []float64
		if err := value.Decode(&xs); err != nil {
			return err
		}
		if len(xs) < 2 || len(xs) > 3 {
			return fmt.Errorf("vector needs 2 or 3 components, got %d", len(xs))
		}
		v.Vec3 = cape.Vec3{}
		copy(v.Vec3[:], xs)
		return nil
	case yaml.MappingNode:
		var m struct {
			X float64 `yaml:"x"`
			Y float64 `yaml:"y"`
			Z float64 `yaml:"z"`
		}
		if err := value.Decode(&m); err != nil {
			return err
		}
		v.Vec3 = cape.V3(m.X, m.Y, m.Z)
		return nil
	}
	return fmt.Errorf("vector must be a sequence or mapping")
}

type YAMLColor struct {
	color.Color
}

func (c *YAMLColor) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("color must be a string")
	}

	s := strings.TrimPrefix(value.Value, "#")

	if len(s) != 6 && len(s) != 8 {
		return fmt.Errorf("invalid color format: %s", value.Value)
	}

	parse := func(start int) (uint8, error) {
		v, err := strconv.ParseUint(s[start:start+2], 16, 8)
		return uint8(v), err
	}

	var rgba [4]uint8
	rgba[3] = 255
	for i := 0; i < len(s)/2; i++ {
		b, err := parse(i * 2)
		if err != nil {
			return fmt.Errorf("invalid color format: %s", value.Value)
		}
		rgba[i] = b
	}

	c.Color = color.NRGBA{R: rgba[0], G: rgba[1], B: rgba[2], A: rgba[3]}
	return nil
}
