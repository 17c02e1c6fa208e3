//go:build linux

// Package fan implements the GPIO relay behind the fan.Fan
// collaborator.
package fan

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpioreg"
	"periph.io/x/host/v3"

	corefan "motioncore.dev/fan"
)

// Fan is the GPIO-backed implementation of fan.Fan.
type Fan struct {
	pin gpio.PinOut
	on  bool
}

var _ corefan.Fan = (*Fan)(nil)

// Open looks up the named relay-drive pin.
func Open(pinName string) (*Fan, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("fan: pin not found: %s", pinName)
	}
	return &Fan{pin: pin}, nil
}

func (f *Fan) SetOn(on bool) {
	f.on = on
	f.pin.Out(gpio.Level(on))
}

func (f *Fan) IsOn() bool { return f.on }
