//go:build linux

// Package buttons implements the GPIO-backed button matrix behind the
// wire protocol's mask byte (PAUSE_FOR_BUTTON, DISPLAY_MESSAGE's
// wait-for-button path). Bit i of the mask corresponds to the i'th
// configured pin, debounced the same way the teacher's input driver
// debounces its joystick and button pins.
package buttons

import (
	"fmt"
	"sync/atomic"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/host/v3"
	"periph.io/x/host/v3/bcm283x"
)

const debounceTimeout = 10 * time.Millisecond

// Buttons tracks up to 8 debounced GPIO button inputs as a single
// live bitmask, bit-addressable the same way the wire protocol's
// button mask is.
type Buttons struct {
	mask atomic.Uint32
}

// defaultPins mirrors the teacher's wshat/input pin assignment; bit0
// (GPIO13, the HAT's center button) is this core's "center button"
// convention (command.centerButtonMask).
var defaultPins = []gpio.PinIn{
	bcm283x.GPIO13, // bit0: center
	bcm283x.GPIO6,  // bit1: up
	bcm283x.GPIO19, // bit2: down
	bcm283x.GPIO5,  // bit3: left
	bcm283x.GPIO26, // bit4: right
	bcm283x.GPIO21, // bit5: button1
	bcm283x.GPIO20, // bit6: button2
	bcm283x.GPIO16, // bit7: button3
}

// Open initializes the GPIO pins and starts one debounce goroutine per
// pin, each updating b's live mask on a settled press/release.
func Open() (*Buttons, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	b := &Buttons{}
	for i, pin := range defaultPins {
		if err := pin.In(gpio.PullUp, gpio.BothEdges); err != nil {
			return nil, fmt.Errorf("buttons: %w", err)
		}
		bit := uint32(1) << i
		pin := pin
		go b.watch(pin, bit)
	}
	return b, nil
}

func (b *Buttons) watch(pin gpio.PinIn, bit uint32) {
	pressed := false
	newPressed := false
	for {
		timeout := debounceTimeout
		if newPressed == pressed {
			timeout = -1
		}
		if pin.WaitForEdge(timeout) {
			newPressed = pin.Read() == gpio.Low
			continue
		}
		if newPressed == pressed {
			continue
		}
		pressed = newPressed
		for {
			old := b.mask.Load()
			next := old &^ bit
			if pressed {
				next = old | bit
			}
			if b.mask.CompareAndSwap(old, next) {
				break
			}
		}
	}
}

// Pressed reports whether any button in mask is currently held, for
// wiring into mode.Deps.ButtonPressed (core.Deps.ButtonPressed). ok is
// always true: the mask is always readable once Open succeeds.
func (b *Buttons) Pressed(mask uint8) (pressed bool, ok bool) {
	return b.mask.Load()&uint32(mask) != 0, true
}
