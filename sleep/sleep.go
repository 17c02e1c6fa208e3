// Package sleep implements the active-pause state machine. It is not
// independent from the primary mode machine: it parasitizes READY and
// reuses its single shared timeout register (spec.md §9, "Nested state
// machines"). Advance is only ever called by the core when the mode
// machine reports Ready.
package sleep

import (
	"motioncore.dev/fan"
	"motioncore.dev/heater"
	"motioncore.dev/iface"
	"motioncore.dev/mode"
	"motioncore.dev/piezo"
	"motioncore.dev/planner"
	"motioncore.dev/point"
)

// State is the nine-state active-pause progression (spec.md §3,
// SleepState), plus the implicit rest state None.
type State int

const (
	None State = iota
	StartWait
	Moving
	Active
	MovingWait
	Restart
	HeatingP
	HeatingA
	Return
	Finished
)

// Type distinguishes a cold pause (heaters cooled) from a filament
// pause (heaters left hot, auto-downgrades to cold on input timeout).
type Type int

const (
	TypeNone Type = iota
	TypeCold
	TypeFilament
)

// Context is captured at pause start and consumed at resume
// (spec.md §3, SleepContext).
type Context struct {
	SavedPosition        point.Point
	SavedExtruderTargets [2]uint16
	SavedPlatformTarget  uint16
	SavedFanState        bool
}

// Machine is the active-pause state machine.
type Machine struct {
	State State
	Type  Type
	Ctx   Context
}

// ActivePaused reports the active_paused flag as a derived value: it
// is true for every state but None (spec.md §8's quantified invariant
// "active_paused == true ⇔ sleep_mode ∈ {...}").
func (m *Machine) ActivePaused() bool {
	return m.State != None
}

// Reset returns the machine to its rest state, discarding any pending
// context. Used by a full reset (watchdog, button-wait abort).
func (m *Machine) Reset() {
	*m = Machine{}
}

const (
	zRate  = 140
	xyRate = 130
	abRate = 520

	coldPotValue    = 20
	restartPotValue = 127

	// userInputTimeoutSeconds is USER_INPUT_TIMEOUT: 30 minutes.
	userInputTimeoutSeconds = 1800

	// filamentInputTimeoutMicros is USER_FILAMENT_INPUT_TIMEOUT. Its
	// numeric value is not given by the wire protocol; five minutes is
	// a conservative stand-in for an unattended filament swap window.
	filamentInputTimeoutMicros = 5 * 60 * 1_000_000

	// waitOnToolTimeoutSeconds governs the HEATING_P/HEATING_A waits
	// the sleep machine itself drives; 0 means no timeout (the user
	// explicitly asked to resume, so the heat-up wait is unbounded,
	// unlike the direct WAIT_FOR_TOOL opcode's caller-supplied value).
	waitOnToolTimeoutSeconds = 0
)

var waitMessageCold = []byte("Pausing - please wait")
var waitMessageFilament = []byte("Pausing for filament change")
var restartingMessage = []byte("Resuming - please wait")

// Deps bundles the collaborators Begin, End and Advance need.
type Deps struct {
	Now              int64
	Planner          planner.Planner
	Extruders        [2]heater.Heater
	Platform         heater.Heater
	Interface        iface.Interface
	Piezo            piezo.Piezo
	Fan              fan.Fan
	Mode             *mode.Machine
	SetToolIndex     func(uint8)
	SetCheckTempState func()
}

// Begin starts an active pause. Re-entry while a pause is already in
// progress is a no-op (spec.md §4.7, "idempotent under re-entry").
func (m *Machine) Begin(typ Type, d Deps) {
	if m.State != None {
		return
	}
	m.Type = typ
	m.State = StartWait
	if typ == TypeCold {
		d.Interface.DisplayMessage(0, 0, false, waitMessageCold)
	} else {
		d.Interface.DisplayMessage(0, 0, false, waitMessageFilament)
	}
	d.Interface.PushMessageScreen(0)
}

// End handles active_pause(false): the caller asking to resume.
func (m *Machine) End(d Deps) {
	switch m.State {
	case StartWait:
		m.State = None
		m.Type = TypeNone
	case Moving:
		m.sleepReheat(d)
		m.State = MovingWait
	case Active:
		m.sleepReheat(d)
		m.State = Restart
	}
}

// Advance evaluates the current state's exit condition once. The core
// calls it only when mode.Machine.Current == mode.Ready.
func (m *Machine) Advance(now int64, d Deps) {
	switch m.State {
	case StartWait:
		if !d.Planner.QueueEmpty() {
			return
		}
		m.Ctx.SavedPosition = d.Planner.PlannerPosition()
		m.Ctx.SavedExtruderTargets[0] = d.Extruders[0].GetSetTarget()
		m.Ctx.SavedExtruderTargets[1] = d.Extruders[1].GetSetTarget()
		m.Ctx.SavedPlatformTarget = d.Platform.GetSetTarget()
		m.Ctx.SavedFanState = d.Fan.IsOn()

		pos := m.Ctx.SavedPosition
		pos = pos.Set(point.A, pos.Get(point.A)+d.Planner.MMToSteps(1, point.A))
		pos = pos.Set(point.B, pos.Get(point.B)+d.Planner.MMToSteps(1, point.B))
		d.Planner.SetTarget(pos, abRate)

		if m.Type == TypeCold {
			d.Extruders[0].SetTarget(0)
			d.Extruders[1].SetTarget(0)
			d.Platform.SetTarget(0)
		}

		pos = pos.Set(point.Z, d.Planner.MMToSteps(150, point.Z))
		d.Planner.SetTarget(pos, zRate)
		pos = pos.Set(point.X, d.Planner.MMToSteps(-110.5, point.X))
		pos = pos.Set(point.Y, d.Planner.MMToSteps(-74, point.Y))
		d.Planner.SetTarget(pos, xyRate)

		d.Fan.SetOn(false)
		m.State = Moving

	case Moving:
		if !d.Planner.QueueEmpty() {
			return
		}
		d.Interface.PopScreen()
		m.State = Active
		if m.Type == TypeFilament {
			d.Mode.Timeout.Start(now, filamentInputTimeoutMicros)
			d.Piezo.PlayTune(piezo.TuneFilamentStart)
		} else {
			m.reducePot(d)
		}

	case Active:
		if m.Type == TypeFilament && d.Mode.Timeout.HasElapsed(now) {
			d.Mode.Timeout.Clear()
			m.Type = TypeCold
			d.Interface.ErrorMessage(iface.ErrTimedOutOfChangeFilament)
			m.reducePot(d)
			d.Extruders[0].SetTarget(0)
			d.Extruders[1].SetTarget(0)
			d.Platform.SetTarget(0)
		}

	case MovingWait:
		if d.Planner.QueueEmpty() {
			m.restart(now, d)
		}

	case Restart:
		m.restart(now, d)

	case HeatingP:
		d.Mode.EnterWaitOnTool(now, 0, waitOnToolTimeoutSeconds)
		m.State = HeatingA

	case HeatingA:
		d.Mode.EnterWaitOnTool(now, 1, waitOnToolTimeoutSeconds)
		m.State = Return

	case Return:
		d.Interface.StopProgressBar()
		cur := d.Planner.PlannerPosition()
		defined := cur.Set(point.A, m.Ctx.SavedPosition.Get(point.A))
		defined = defined.Set(point.B, m.Ctx.SavedPosition.Get(point.B))
		d.Planner.DefinePosition(defined)

		back := defined.Set(point.Z, m.Ctx.SavedPosition.Get(point.Z))
		d.Planner.SetTarget(back, zRate)
		back = back.Set(point.X, m.Ctx.SavedPosition.Get(point.X))
		back = back.Set(point.Y, m.Ctx.SavedPosition.Get(point.Y))
		d.Planner.SetTarget(back, xyRate)

		d.Fan.SetOn(m.Ctx.SavedFanState)
		m.State = Finished

	case Finished:
		if d.Planner.QueueEmpty() {
			d.Interface.PopToOnboardStart()
			m.State = None
			m.Type = TypeNone
		}
	}
}

// reducePot lowers stepper current on the four non-Z axes (spec.md
// §4.7, "reduce stepper current (pot value 20) on axes {0,1,3,4}").
func (m *Machine) reducePot(d Deps) {
	d.Planner.SetAxisPot(point.X, coldPotValue)
	d.Planner.SetAxisPot(point.Y, coldPotValue)
	d.Planner.SetAxisPot(point.A, coldPotValue)
	d.Planner.SetAxisPot(point.B, coldPotValue)
}

// restart restores pot values, shows the restarting message and begins
// the platform/tool reheat wait (spec.md §4.7 state 5).
func (m *Machine) restart(now int64, d Deps) {
	if m.Type == TypeCold {
		d.Planner.SetAxisPot(point.X, restartPotValue)
		d.Planner.SetAxisPot(point.Y, restartPotValue)
		d.Planner.SetAxisPot(point.A, restartPotValue)
		d.Planner.SetAxisPot(point.B, restartPotValue)
	}
	d.Interface.DisplayMessage(0, 0, false, restartingMessage)
	d.Interface.PushMessageScreen(0)
	d.SetToolIndex(0)
	d.Mode.EnterWaitOnPlatform(now, userInputTimeoutSeconds)
	d.Interface.StartProgressBar(3, 0, 1)
	m.State = HeatingP
}

// sleepReheat restores the three saved temperature targets and, if the
// platform is heating again and an extruder is not cooling, re-pauses
// that extruder (spec.md §4.7, "sleep_reheat").
func (m *Machine) sleepReheat(d Deps) {
	d.Extruders[0].SetTarget(m.Ctx.SavedExtruderTargets[0])
	d.Extruders[1].SetTarget(m.Ctx.SavedExtruderTargets[1])
	d.Platform.SetTarget(m.Ctx.SavedPlatformTarget)
	if !d.Platform.IsHeating() {
		return
	}
	for i := range d.Extruders {
		if !d.Extruders[i].IsCooling() {
			d.Extruders[i].Pause(true)
			d.SetCheckTempState()
		}
	}
}
