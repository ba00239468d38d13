package cape

// AnchorProvider exposes the world-space point the chain is pinned to.
type AnchorProvider interface {
	AnchorPosition() Vec3
}

// VelocitySource exposes the velocity of the body the chain trails behind.
type VelocitySource interface {
	Velocity() Vec3
}

// AnchorFunc adapts a plain function to AnchorProvider.
type AnchorFunc func() Vec3

func (f AnchorFunc) AnchorPosition() Vec3 { return f() }

// VelocityFunc adapts a plain function to VelocitySource.
type VelocityFunc func() Vec3

func (f VelocityFunc) Velocity() Vec3 { return f() }

// Rig binds a chain to the host collaborators it reads every tick.
type Rig struct {
	chain    *Chain
	anchor   AnchorProvider
	velocity VelocitySource
}

// NewRig validates the collaborators and builds a chain hanging from the
// anchor's current position.
func NewRig(cfg Config, anchor AnchorProvider, velocity VelocitySource, surface CollisionSurface) (*Rig, error) {
	if anchor == nil {
		return nil, ErrNilAnchor
	}
	if velocity == nil {
		return nil, ErrNilVelocitySource
	}
	chain, err := NewChain(cfg, anchor.AnchorPosition(), surface)
	if err != nil {
		return nil, err
	}
	return &Rig{chain: chain, anchor: anchor, velocity: velocity}, nil
}

// Tick reads the anchor and velocity once and runs one chain step.
func (r *Rig) Tick(dt float64) {
	if r == nil {
		return
	}
	wind := Wind(r.velocity.Velocity(), r.chain.cfg.WindFactor)
	r.chain.Step(r.anchor.AnchorPosition(), wind, dt)
}

// Reset re-hangs the chain from the anchor's current position.
func (r *Rig) Reset() {
	r.chain.Reset(r.anchor.AnchorPosition())
}

// Reconfigure applies new tunables and re-hangs the chain.
func (r *Rig) Reconfigure(cfg Config) error {
	return r.chain.Reconfigure(cfg, r.anchor.AnchorPosition())
}

// Retune applies new tunables in place, keeping the chain's current shape.
func (r *Rig) Retune(cfg Config) error {
	return r.chain.Retune(cfg)
}

func (r *Rig) Chain() *Chain {
	return r.chain
}

func (r *Rig) Anchor() AnchorProvider {
	return r.anchor
}
