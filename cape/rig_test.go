package cape

import (
	"errors"
	"testing"
)

func TestNewRigRequiresCollaborators(t *testing.T) {
	anchor := AnchorFunc(func() Vec3 { return Vec3{} })
	velocity := VelocityFunc(func() Vec3 { return Vec3{} })

	cases := []struct {
		name     string
		anchor   AnchorProvider
		velocity VelocitySource
		surface  CollisionSurface
		want     error
	}{
		{"no_anchor", nil, velocity, NoSurface{}, ErrNilAnchor},
		{"no_velocity", anchor, nil, NoSurface{}, ErrNilVelocitySource},
		{"no_surface", anchor, velocity, nil, ErrNilSurface},
		{"ok", anchor, velocity, NoSurface{}, nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewRig(DefaultConfig(), tc.anchor, tc.velocity, tc.surface)
			if !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestRigTickDerivesWind(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SegmentCount = 2
	cfg.Gravity = Vec3{}
	cfg.Damping = 1
	cfg.WindFactor = 0.5

	anchor := V3(1, 1, 0)
	rig, err := NewRig(cfg,
		AnchorFunc(func() Vec3 { return anchor }),
		VelocityFunc(func() Vec3 { return V3(4, 0, 0) }),
		NoSurface{})
	if err != nil {
		t.Fatal(err)
	}

	rig.Tick(0.1)

	if rig.Chain().Segment(0).Current != anchor {
		t.Fatalf("first segment should be pinned")
	}
	// wind = -(4,0,0)*0.5 pushes the free end left by 0.2 before the
	// constraint pulls it back towards rest length.
	if x := rig.Chain().Segment(1).Current.X(); x >= 1 {
		t.Fatalf("free end should trail left of the anchor, x=%v", x)
	}
}

func TestRigReconfigure(t *testing.T) {
	anchor := V3(0, 3, 0)
	rig, err := NewRig(DefaultConfig(),
		AnchorFunc(func() Vec3 { return anchor }),
		VelocityFunc(func() Vec3 { return Vec3{} }),
		NoSurface{})
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		rig.Tick(tick)
	}

	cfg := DefaultConfig()
	cfg.SegmentCount = 5
	cfg.SegmentLength = 0.2
	if err := rig.Reconfigure(cfg); err != nil {
		t.Fatalf("Reconfigure: %v", err)
	}
	if rig.Chain().Len() != 5 {
		t.Fatalf("expected 5 segments, got %d", rig.Chain().Len())
	}
	if got := rig.Chain().Segment(0).Current; got != anchor {
		t.Fatalf("reconfigured chain should hang from the anchor, got %+v", got)
	}

	anchor = V3(2, 2, 0)
	rig.Reset()
	if got := rig.Chain().Segment(0).Current; got != anchor {
		t.Fatalf("reset chain should hang from the moved anchor, got %+v", got)
	}
}
