package signal

import "github.com/rxtech-lab/argo-compare/internal/types"

// Deriver is the two-state position machine of one strategy run.
type Deriver struct {
	current types.Position
}

// NewDeriver starts FLAT.
func NewDeriver() *Deriver {
	return &Deriver{current: types.PositionFlat}
}

// Current returns the position held after the last step.
func (d *Deriver) Current() types.Position {
	return d.current
}

// Step advances one bar. An exit on the same bar as an entry wins.
func (d *Deriver) Step(enter, exit bool) types.Position {
	switch {
	case exit:
		d.current = types.PositionFlat
	case enter:
		d.current = types.PositionLong
	}

	return d.current
}

// Reset returns the machine to FLAT.
func (d *Deriver) Reset() {
	d.current = types.PositionFlat
}
