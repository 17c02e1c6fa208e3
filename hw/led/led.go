//go:build linux

// Package led implements the GPIO-backed RGB indicator behind the
// led.LED collaborator. Real PWM dimming is out of scope for a
// three-GPIO host build; each channel is driven on/off against a
// threshold, the same simplification the teacher applies to its other
// host-side GPIO drivers (periph.io/x/conn, periph.io/x/host).
package led

import (
	"fmt"
	"sync"
	"time"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpioreg"
	"periph.io/x/host/v3"

	coreled "motioncore.dev/led"
)

const onThreshold = 128

// LED is the GPIO-backed implementation of led.LED.
type LED struct {
	r, g, b gpio.PinOut

	mu                  sync.Mutex
	lastR, lastG, lastB uint8
	stopBlink           chan struct{}
}

var _ coreled.LED = (*LED)(nil)

// Open looks up the named GPIO pins and returns an LED driving them.
func Open(rPin, gPin, bPin string) (*LED, error) {
	if _, err := host.Init(); err != nil {
		return nil, err
	}
	r := gpioreg.ByName(rPin)
	g := gpioreg.ByName(gPin)
	b := gpioreg.ByName(bPin)
	if r == nil || g == nil || b == nil {
		return nil, fmt.Errorf("led: pin not found (r=%s g=%s b=%s)", rPin, gPin, bPin)
	}
	return &LED{r: r, g: g, b: b}, nil
}

// SetCustomColor drives each channel on or off against onThreshold.
func (l *LED) SetCustomColor(r, g, b uint8) {
	l.mu.Lock()
	l.lastR, l.lastG, l.lastB = r, g, b
	l.mu.Unlock()
	l.drive(r, g, b)
}

func (l *LED) drive(r, g, b uint8) {
	l.r.Out(gpio.Level(r >= onThreshold))
	l.g.Out(gpio.Level(g >= onThreshold))
	l.b.Out(gpio.Level(b >= onThreshold))
}

// SetDefaultColor restores the default (off) indicator state.
func (l *LED) SetDefaultColor() {
	l.stopBlinking()
	l.SetCustomColor(0, 0, 0)
}

// SetBlink starts or stops a periodic blink of the current color.
// rate == 0 stops blinking.
func (l *LED) SetBlink(rate uint8) {
	l.stopBlinking()
	if rate == 0 {
		return
	}
	period := time.Duration(rate) * 50 * time.Millisecond
	stop := make(chan struct{})
	l.mu.Lock()
	l.stopBlink = stop
	l.mu.Unlock()
	go func() {
		t := time.NewTicker(period)
		defer t.Stop()
		on := true
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				on = !on
				l.mu.Lock()
				r, g, b := l.lastR, l.lastG, l.lastB
				l.mu.Unlock()
				if on {
					l.drive(r, g, b)
				} else {
					l.drive(0, 0, 0)
				}
			}
		}
	}()
}

func (l *LED) stopBlinking() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.stopBlink != nil {
		close(l.stopBlink)
		l.stopBlink = nil
	}
}
