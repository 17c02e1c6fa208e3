//go:build linux

// Package piezo implements the GPIO-backed piezo speaker behind the
// piezo.Piezo collaborator. A tone is produced by bit-banging the
// drive pin at the requested frequency for the requested duration, the
// simplest possible rendition on a GPIO without a dedicated PWM/timer
// peripheral.
package piezo

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpioreg"
	"periph.io/x/host/v3"

	corepiezo "motioncore.dev/piezo"
)

// tunes maps the canned melodies to a simple note sequence of
// (freqHz, lengthMS) pairs.
var tunes = map[corepiezo.Tune][][2]uint16{
	corepiezo.TunePrintStart:     {{2000, 100}, {2500, 100}, {3000, 150}},
	corepiezo.TuneFilamentStart:  {{1500, 80}, {1500, 80}, {1500, 200}},
}

// Piezo is the GPIO-backed implementation of piezo.Piezo.
type Piezo struct {
	pin gpio.PinOut
}

var _ corepiezo.Piezo = (*Piezo)(nil)

// Open looks up the named drive pin.
func Open(pinName string) (*Piezo, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("piezo: pin not found: %s", pinName)
	}
	return &Piezo{pin: pin}, nil
}

// PlayTune plays a canned melody, blocking for its total duration.
// Tunes are short (well under one command slice's neighboring I/O), so
// blocking here does not stall the scheduler in practice; a future
// firmware target without goroutines would instead queue tune steps
// across slices.
func (p *Piezo) PlayTune(id corepiezo.Tune) {
	for _, note := range tunes[id] {
		p.SetTone(note[0], note[1])
	}
}

// SetTone drives the pin at freqHz for lengthMS milliseconds, then
// leaves it low.
func (p *Piezo) SetTone(freqHz, lengthMS uint16) {
	if freqHz == 0 || lengthMS == 0 {
		p.pin.Out(gpio.Low)
		return
	}
	period := time.Second / time.Duration(freqHz)
	half := period / 2
	deadline := time.Now().Add(time.Duration(lengthMS) * time.Millisecond)
	for time.Now().Before(deadline) {
		p.pin.Out(gpio.High)
		time.Sleep(half)
		p.pin.Out(gpio.Low)
		time.Sleep(half)
	}
}
