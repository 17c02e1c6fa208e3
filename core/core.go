// Package core wires the command buffer, the source mux, the mode and
// sleep state machines, and the dispatcher into the single cooperative
// scheduling entry point described by spec.md §2 and §9: one call to
// RunSlice is one slice.
package core

import (
	"motioncore.dev/buffer"
	"motioncore.dev/card"
	"motioncore.dev/clock"
	"motioncore.dev/command"
	"motioncore.dev/fan"
	"motioncore.dev/heater"
	"motioncore.dev/host"
	"motioncore.dev/iface"
	"motioncore.dev/led"
	"motioncore.dev/mode"
	"motioncore.dev/piezo"
	"motioncore.dev/planner"
	"motioncore.dev/settings"
	"motioncore.dev/sleep"
	"motioncore.dev/source"
	"motioncore.dev/valve"
)

// Deps bundles every collaborator Core is built from (spec.md §6).
type Deps struct {
	Planner   planner.Planner
	Extruders [2]heater.Heater
	Platform  heater.Heater
	Interface iface.Interface
	Piezo     piezo.Piezo
	LED       led.LED
	Fan       fan.Fan
	Valve     valve.Valve
	Card      card.Card
	Utility   card.UtilityScript
	Host      host.Host
	Settings  *settings.Store
	Clock     clock.Source

	// ButtonPressed reports whether the awaited button has been hit
	// this slice; ok is false when no button read is available yet.
	// Scanning the physical button matrix is out of scope for the core
	// (spec.md §1); this is the seam hw/buttons drives.
	ButtonPressed func() (pressed bool, ok bool)

	// Active selects which producer SourceMux polls this slice.
	Active source.Kind
}

// Core is the top-level command-interpreter instance.
type Core struct {
	buf    *buffer.Buffer
	mux    source.Mux
	mode   mode.Machine
	sleep  sleep.Machine
	disp   command.Dispatcher
	clock  clock.Source
	button func() (bool, bool)
}

// New builds a Core from its collaborators, with a fresh shared command
// buffer. cs guards that buffer against a concurrent HostLink producer
// goroutine (nil is fine for single-goroutine use, e.g. tests).
func New(d Deps, cs buffer.CriticalSection) *Core {
	buf := buffer.New(cs)
	c := &Core{
		buf: buf,
		mux: source.Mux{
			Active:  d.Active,
			Card:    d.Card,
			Utility: d.Utility,
		},
		clock:  d.Clock,
		button: d.ButtonPressed,
	}
	c.disp = command.Dispatcher{
		Planner:   d.Planner,
		Extruders: d.Extruders,
		Platform:  d.Platform,
		Interface: d.Interface,
		Piezo:     d.Piezo,
		LED:       d.LED,
		Fan:       d.Fan,
		Valve:     d.Valve,
		Card:      d.Card,
		Utility:   d.Utility,
		Host:      d.Host,
		Settings:  d.Settings,
		Mode:      &c.mode,
		Sleep:     &c.sleep,
	}
	return c
}

// Buffer exposes the shared command buffer so a HostLink producer can
// be started against it.
func (c *Core) Buffer() *buffer.Buffer {
	return c.buf
}

// RunSlice executes one cooperative scheduling slice (spec.md §2 #1,
// §9): refill from the active source, advance the mode machine, then
// (only once READY) advance the nested sleep machine, and finally give
// the dispatcher at most one packet to consume. It never blocks.
func (c *Core) RunSlice() {
	now := c.clock.NowMicro()

	c.mux.RunSlice(c.buf, &c.disp.Session, c.mode.Current == mode.Ready, c.disp.TriggerStaticFail)

	c.mode.Advance(mode.Deps{
		Now:            now,
		ButtonPressed:  c.button,
		Planner:        c.disp.Planner,
		Extruders:      c.disp.Extruders,
		Platform:       c.disp.Platform,
		Interface:      c.disp.Interface,
		Piezo:          c.disp.Piezo,
		LED:            c.disp.LED,
		CheckTempState: c.disp.Session.CheckTempState,
		ClearCheckTemp: func() {
			c.disp.Session.CheckTempState = false
		},
		FullReset: c.disp.FullReset,
	})

	if c.mode.Current == mode.Ready {
		c.sleep.Advance(now, c.sleepDeps(now))
	}

	c.disp.TryDispatch(c.buf, now)
}

func (c *Core) sleepDeps(now int64) sleep.Deps {
	return sleep.Deps{
		Now:       now,
		Planner:   c.disp.Planner,
		Extruders: c.disp.Extruders,
		Platform:  c.disp.Platform,
		Interface: c.disp.Interface,
		Piezo:     c.disp.Piezo,
		Fan:       c.disp.Fan,
		Mode:      &c.mode,
		SetToolIndex: func(tool uint8) {
			c.disp.Session.CurrentToolIndex = tool
		},
		SetCheckTempState: func() {
			c.disp.Session.CheckTempState = true
		},
	}
}

// ActivePause is the external trigger for an active pause/resume
// (spec.md §4.7). The wire protocol never names the opcode that
// invokes it; it is exposed here as the seam an external source — a
// front-panel button ISR, a host-link side channel — calls directly,
// bypassing the packet dispatcher entirely.
func (c *Core) ActivePause(on bool, typ sleep.Type) {
	now := c.clock.NowMicro()
	if on {
		c.sleep.Begin(typ, c.sleepDeps(now))
		return
	}
	c.sleep.End(c.sleepDeps(now))
}

// FullReset returns every piece of Core-owned state to its initial
// values (spec.md §3 lifecycle).
func (c *Core) FullReset() {
	c.disp.FullReset()
}

// Session exposes the dispatcher's session counters/flags read-only,
// e.g. for a status report opcode or diagnostics.
func (c *Core) Session() command.Session {
	return c.disp.Session
}

// Mode reports the primary mode machine's current state.
func (c *Core) Mode() mode.Mode {
	return c.mode.Current
}

// ArmedButtonMask reports the mask WAIT_ON_BUTTON is currently armed
// against, so a ButtonPressed closure supplied at construction time
// can query the right bits (spec.md §3, "Button-wait context").
func (c *Core) ArmedButtonMask() uint8 {
	return c.mode.ButtonMask
}
