package cape

import "errors"

var (
	ErrInvalidConfig     = errors.New("cape: invalid config")
	ErrNilAnchor         = errors.New("cape: nil anchor")
	ErrNilVelocitySource = errors.New("cape: nil velocity source")
	ErrNilSurface        = errors.New("cape: nil collision surface")
)
