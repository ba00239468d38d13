package motion

import (
	"testing"

	"github.com/milk9111/cape/cape"
)

func TestScriptPositions(t *testing.T) {
	cases := []struct {
		name string
		src  string
		t    float64
		want cape.Vec3
	}{
		{"array2", `position := func(t) { return [t, 2 * t] }`, 1.5, cape.V3(1.5, 3, 0)},
		{"array3", `position := func(t) { return [1, 2, t] }`, 0.25, cape.V3(1, 2, 0.25)},
		{"map", `position := func(t) { return {y: t * 4} }`, 0.5, cape.V3(0, 2, 0)},
		{"stdlib", `math := import("math"); position := func(t) { return [math.cos(t), 0] }`, 0, cape.V3(1, 0, 0)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			origin := cape.V3(10, 0, 0)
			s, err := NewScript(&Clock{}, tc.name, []byte(tc.src), origin)
			if err != nil {
				t.Fatalf("NewScript: %v", err)
			}
			if got := s.At(tc.t); !near(got, origin.Add(tc.want), 1e-12) {
				t.Fatalf("At(%v) = %+v, want %+v", tc.t, got, origin.Add(tc.want))
			}
		})
	}
}

func TestScriptRejectsBadPrograms(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"syntax", `position := func(t) { return [t, }`},
		{"missing_position", `speed := 2`},
		{"string_result", `position := func(t) { return "left" }`},
		{"short_array", `position := func(t) { return [t] }`},
		{"non_numeric", `position := func(t) { return [t, "y"] }`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := NewScript(&Clock{}, tc.name, []byte(tc.src), cape.Vec3{}); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestScriptHoldsLastGoodPosition(t *testing.T) {
	src := `position := func(t) { if t > 1 { return "broken" }; return [t, 0] }`
	clock := &Clock{}
	s, err := NewScript(clock, "flaky", []byte(src), cape.Vec3{})
	if err != nil {
		t.Fatal(err)
	}
	clock.Advance(0.5)
	if got := s.AnchorPosition(); got != cape.V3(0.5, 0, 0) {
		t.Fatalf("got %+v", got)
	}
	clock.Advance(1)
	if got := s.AnchorPosition(); got != cape.V3(0.5, 0, 0) {
		t.Fatalf("failing script should hold last position, got %+v", got)
	}
}

func TestScriptReload(t *testing.T) {
	s, err := NewScript(&Clock{}, "reload", []byte(`position := func(t) { return [1, 0] }`), cape.Vec3{})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Reload([]byte(`position := func(t) { return [`)); err == nil {
		t.Fatalf("expected reload error")
	}
	if got := s.At(0); got != cape.V3(1, 0, 0) {
		t.Fatalf("failed reload replaced program: %+v", got)
	}
	if err := s.Reload([]byte(`position := func(t) { return [2, 0] }`)); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	if got := s.At(0); got != cape.V3(2, 0, 0) {
		t.Fatalf("reload not applied: %+v", got)
	}
}
