//go:build linux

// Package valve implements the GPIO relay behind the valve.Valve
// collaborator.
package valve

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpioreg"
	"periph.io/x/host/v3"

	corevalve "motioncore.dev/valve"
)

// Valve is the GPIO-backed implementation of valve.Valve.
type Valve struct {
	pin gpio.PinOut
	on  bool
}

var _ corevalve.Valve = (*Valve)(nil)

// Open looks up the named relay-drive pin.
func Open(pinName string) (*Valve, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("valve: pin not found: %s", pinName)
	}
	return &Valve{pin: pin}, nil
}

func (v *Valve) SetOn(on bool) {
	v.on = on
	v.pin.Out(gpio.Level(on))
}

func (v *Valve) IsOn() bool { return v.on }
