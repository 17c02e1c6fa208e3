// Package mode implements the primary command-execution state
// machine that gates dispatch (spec.md §2 #5, §4.6).
package mode

import (
	"motioncore.dev/clock"
	"motioncore.dev/heater"
	"motioncore.dev/iface"
	"motioncore.dev/led"
	"motioncore.dev/piezo"
	"motioncore.dev/planner"
)

// Mode is the primary state, with no terminal state: Reset returns to
// Ready.
type Mode int

const (
	Ready Mode = iota
	Moving
	Delay
	Homing
	WaitOnTool
	WaitOnPlatform
	WaitOnButton
)

// Machine holds the single shared timeout and the extra fields a few
// states need (which tool is being waited on, the button mask and
// behavior). Only one timeout-bound wait is ever active, per
// spec.md §9 ("Single shared timeout").
type Machine struct {
	Current Mode

	Timeout clock.Timeout

	// WaitTool is the extruder index WAIT_ON_TOOL is waiting on.
	WaitTool uint8

	// ButtonMask and ButtonBehavior carry the PAUSE_FOR_BUTTON /
	// DISPLAY_MESSAGE bit2 payload (spec.md §3, "Button-wait context").
	ButtonMask     uint8
	ButtonBehavior uint8

	// HomingAxisMask and HomingToMax are the FIND_AXES_MIN/MAX payload,
	// kept so Advance can abort the planner on timeout without the
	// dispatcher having to remember them itself.
	HomingAxisMask uint8
	HomingToMax    bool
}

// Reset returns the machine to Ready with no pending wait.
func (m *Machine) Reset() {
	*m = Machine{}
}

// EnterDelay arms a DELAY wait (spec.md §4.3's DELAY opcode).
func (m *Machine) EnterDelay(now int64, micros int64) {
	m.Current = Delay
	m.Timeout.Start(now, micros)
}

// EnterHoming arms a HOMING wait.
func (m *Machine) EnterHoming(now int64, toMax bool, axisMask uint8, timeoutSeconds uint16) {
	m.Current = Homing
	m.HomingToMax = toMax
	m.HomingAxisMask = axisMask
	m.Timeout.Start(now, int64(timeoutSeconds)*1_000_000)
}

// EnterWaitOnTool arms a WAIT_ON_TOOL wait for the given extruder.
func (m *Machine) EnterWaitOnTool(now int64, tool uint8, timeoutSeconds uint16) {
	m.Current = WaitOnTool
	m.WaitTool = tool
	m.Timeout.Start(now, int64(timeoutSeconds)*1_000_000)
}

// EnterWaitOnPlatform arms a WAIT_ON_PLATFORM wait.
func (m *Machine) EnterWaitOnPlatform(now int64, timeoutSeconds uint16) {
	m.Current = WaitOnPlatform
	m.Timeout.Start(now, int64(timeoutSeconds)*1_000_000)
}

// EnterWaitOnButton arms a WAIT_ON_BUTTON wait (PAUSE_FOR_BUTTON or
// DISPLAY_MESSAGE bit2, spec.md §4.3/§4.4). timeoutSeconds == 0 means
// no timeout.
func (m *Machine) EnterWaitOnButton(now int64, mask, behavior uint8, timeoutSeconds uint16) {
	m.Current = WaitOnButton
	m.ButtonMask = mask
	m.ButtonBehavior = behavior
	m.Timeout.Start(now, int64(timeoutSeconds)*1_000_000)
}

// EnterMoving switches to MOVING, e.g. after a QUEUE_POINT_* dispatch
// whose effect is not itself pipeline-safe to observe as complete.
func (m *Machine) EnterMoving() {
	m.Current = Moving
}

// Deps bundles the collaborators Advance needs to evaluate exit
// conditions. CheckTempState reports the latch described in spec.md
// §4.6 ("the check_temp_state latch is cleared ... when mode ==
// READY"); ClearCheckTemp clears it once Advance has acted on it.
type Deps struct {
	Now            int64
	ButtonPressed  func() (pressed bool, ok bool)
	Planner        planner.Planner
	Extruders      [2]heater.Heater
	Platform       heater.Heater
	Interface      iface.Interface
	Piezo          piezo.Piezo
	LED            led.LED
	CheckTempState bool
	ClearCheckTemp func()
	FullReset      func()
}

// Advance evaluates the current mode's exit condition once. It is
// called from the cooperative slice after the source mux has run and
// before the dispatcher is given a chance to run (spec.md §4.6).
func (m *Machine) Advance(d Deps) {
	switch m.Current {
	case Homing:
		if d.Planner.QueueEmpty() {
			m.Current = Ready
			return
		}
		if m.Timeout.HasElapsed(d.Now) {
			d.Planner.Abort()
			m.Current = Ready
		}
	case Moving:
		if d.Planner.QueueEmpty() {
			m.Current = Ready
		}
	case Delay:
		if m.Timeout.HasElapsed(d.Now) {
			m.Current = Ready
		}
	case WaitOnTool:
		h := d.Extruders[m.WaitTool]
		if !h.IsPaused() && h.HasReachedTarget() {
			d.Piezo.PlayTune(piezo.TunePrintStart)
			m.Current = Ready
		} else if !h.IsPaused() && !h.IsHeating() {
			m.Current = Ready
		} else if m.Timeout.HasElapsed(d.Now) {
			d.Interface.ErrorMessage(iface.ErrHeatingTimeout)
			m.Current = Ready
		}
	case WaitOnPlatform:
		h := d.Platform
		if h.HasReachedTarget() || !h.IsHeating() {
			m.Current = Ready
		} else if m.Timeout.HasElapsed(d.Now) {
			d.Interface.ErrorMessage(iface.ErrPlatformHeatingTimeout)
			m.Current = Ready
		}
	case WaitOnButton:
		if d.ButtonPressed != nil {
			if pressed, ok := d.ButtonPressed(); ok && pressed {
				d.Interface.InterfaceBlink(0, 0)
				d.LED.SetDefaultColor()
				if m.ButtonBehavior&clearScreenOnPress != 0 {
					d.Interface.PopScreen()
				}
				m.Current = Ready
				return
			}
		}
		if m.Timeout.HasElapsed(d.Now) {
			if m.ButtonBehavior&abortOnTimeout != 0 {
				d.FullReset()
				return
			}
			m.Current = Ready
		}
	}
	if m.Current == Ready && d.CheckTempState && d.Platform.HasReachedTarget() {
		d.Extruders[0].Pause(false)
		d.Extruders[1].Pause(false)
		d.ClearCheckTemp()
	}
}

const (
	abortOnTimeout     = 0b01
	clearScreenOnPress = 0b10
)
