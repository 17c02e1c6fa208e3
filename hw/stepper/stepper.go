// Package stepper adapts the TMC2209 stepper driver into the
// planner.Planner collaborator's per-axis current seam. Path
// interpolation, acceleration curves and step pulse generation stay
// the inner Planner's job (spec.md §1 scopes those out of this
// repository); Planner here only intercepts the two opcodes that
// drive real hardware current directly: ENABLE_AXES and SET_POT_VALUE.
package stepper

import (
	"motioncore.dev/driver/tmc2209"
	"motioncore.dev/planner"
	"motioncore.dev/point"
)

// runCurrentMA is the driving current applied when an axis is
// enabled; the wire protocol's SET_POT_VALUE can lower it per axis
// afterward through SetAxisPot.
const runCurrentMA = 800

// Planner wraps an inner planner.Planner, forwarding every method
// unchanged except EnableAxis and SetAxisPot, which it also applies to
// the corresponding TMC2209 device. Drivers entries left nil (an axis
// with no independent current control) fall through to the inner
// Planner alone.
type Planner struct {
	planner.Planner
	Drivers [point.NumAxes]*tmc2209.Device
}

var _ planner.Planner = (*Planner)(nil)

// EnableAxis enables or disables axis's driver current in addition to
// whatever the inner planner does with the enable signal.
func (p *Planner) EnableAxis(axis point.Axis, on bool) {
	p.Planner.EnableAxis(axis, on)
	d := p.Drivers[axis]
	if d == nil {
		return
	}
	if !on {
		d.Enable(0)
		return
	}
	d.Enable(runCurrentMA)
}

// SetAxisPot applies the wire protocol's 0-127 pot scale to axis's
// TMC2209 driver (SET_POT_VALUE, spec.md §4.3; also used by the sleep
// machine to lower stepper current around an active pause).
func (p *Planner) SetAxisPot(axis point.Axis, value uint8) {
	p.Planner.SetAxisPot(axis, value)
	d := p.Drivers[axis]
	if d == nil {
		return
	}
	d.SetPotValue(value)
}
