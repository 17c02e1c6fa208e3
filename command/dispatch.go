// Package command implements the decoder and dispatcher: the piece of
// the core that turns buffered wire bytes into collaborator calls
// (spec.md §4.3–§4.5).
package command

import (
	"motioncore.dev/buffer"
	"motioncore.dev/card"
	"motioncore.dev/fan"
	"motioncore.dev/heater"
	"motioncore.dev/host"
	"motioncore.dev/iface"
	"motioncore.dev/led"
	"motioncore.dev/mode"
	"motioncore.dev/piezo"
	"motioncore.dev/planner"
	"motioncore.dev/point"
	"motioncore.dev/proto"
	"motioncore.dev/settings"
	"motioncore.dev/sleep"
	"motioncore.dev/valve"
)

// centerButtonMask is the bit DISPLAY_MESSAGE's wait-for-button path
// uses for "the center button" (PAUSE_FOR_BUTTON carries its own mask
// in the packet). The wire protocol never names a bit assignment for
// it; bit0 is this core's convention for the one button every board
// has.
const centerButtonMask = 1 << 0

// Dispatcher holds every collaborator the decode/dispatch step may
// call into, plus the session counters and flags it mutates
// (spec.md §3, §6).
type Dispatcher struct {
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
	Mode      *mode.Machine
	Sleep     *sleep.Machine

	Session Session
}

// CanDispatch reports whether the dispatcher may consume a new packet
// this slice (spec.md §4.3's dispatch gate).
func (d *Dispatcher) CanDispatch() bool {
	return d.Mode.Current == mode.Ready &&
		!d.Session.Paused &&
		!d.Session.HeatShutdown &&
		!d.Sleep.ActivePaused()
}

// TryDispatch attempts to decode and dispatch a single packet from
// buf. It returns whether a packet was consumed.
func (d *Dispatcher) TryDispatch(buf *buffer.Buffer, now int64) bool {
	if !d.CanDispatch() || buf.Length() < 1 {
		return false
	}
	op := proto.Opcode(buf.Peek(0))
	size, ok := nextPacketSize(buf, op)
	if !ok || buf.Length() < size {
		return false
	}
	if !proto.PipelineSafe(op) && !d.Planner.QueueEmpty() {
		return false
	}

	buf.PopU8() // consume the opcode byte itself
	switch op {
	case proto.QueuePointExt:
		d.dispatchQueuePointExt(buf)
	case proto.QueuePointNew:
		d.dispatchQueuePointNew(buf)
	case proto.QueuePointNewExt:
		d.dispatchQueuePointNewExt(buf)
	case proto.ChangeTool:
		d.dispatchChangeTool(buf)
	case proto.EnableAxes:
		d.dispatchEnableAxes(buf)
	case proto.SetPositionExt:
		d.dispatchSetPositionExt(buf)
	case proto.Delay:
		d.dispatchDelay(buf, now)
	case proto.PauseForButton:
		d.dispatchPauseForButton(buf, now)
	case proto.DisplayMessage:
		d.dispatchDisplayMessage(buf, size, now)
	case proto.FindAxesMinMax:
		d.dispatchFindAxesMinMax(buf, now)
	case proto.WaitForTool:
		d.dispatchWaitForTool(buf, now)
	case proto.WaitForPlatform:
		d.dispatchWaitForPlatform(buf, now)
	case proto.StoreHomePosition:
		d.dispatchStoreHomePosition(buf)
	case proto.RecallHomePosition:
		d.dispatchRecallHomePosition(buf)
	case proto.SetPotValue:
		d.dispatchSetPotValue(buf)
	case proto.SetRGBLED:
		d.dispatchSetRGBLED(buf)
	case proto.SetBeep:
		d.dispatchSetBeep(buf)
	case proto.ToolCommand:
		d.dispatchToolCommand(buf)
	case proto.SetBuildPercent:
		d.dispatchSetBuildPercent(buf)
	case proto.QueueSong:
		d.Piezo.PlayTune(piezo.Tune(buf.PopU8()))
	case proto.ResetToFactory:
		buf.Skip(1)
		d.Settings.FactoryReset()
		d.FullReset()
	case proto.BuildStartNotification:
		d.dispatchBuildStart(buf, size)
	case proto.BuildEndNotification:
		d.Host.HandleBuildStop(buf.PopU8())
		d.Session.StartBuildFlag = false
	case proto.SetAccelerationToggle:
		d.Planner.SetAcceleration(buf.PopU8() != 0)
	case proto.StreamVersion:
		d.dispatchStreamVersion(buf)
	}

	d.Session.bumpLineNumber()
	return true
}

func popPoint(buf *buffer.Buffer) point.Point {
	return point.Point{
		X: buf.PopI32(),
		Y: buf.PopI32(),
		Z: buf.PopI32(),
		A: buf.PopI32(),
		B: buf.PopI32(),
	}
}

func (d *Dispatcher) dispatchQueuePointExt(buf *buffer.Buffer) {
	p := popPoint(buf)
	dda := buf.PopI32()
	d.Planner.SetTarget(p, dda)
}

func (d *Dispatcher) dispatchQueuePointNew(buf *buffer.Buffer) {
	p := popPoint(buf)
	us := buf.PopI32()
	relative := buf.PopU8()
	d.Planner.SetTargetNew(p, us, relative)
}

func (d *Dispatcher) dispatchQueuePointNewExt(buf *buffer.Buffer) {
	p := popPoint(buf)
	dda := buf.PopI32()
	relative := buf.PopU8()
	distance := buf.PopF32()
	feedrateMult := buf.PopI16()
	d.Planner.SetTargetNewExt(p, dda, relative, distance, feedrateMult)
}

func (d *Dispatcher) dispatchChangeTool(buf *buffer.Buffer) {
	tool := buf.PopU8()
	d.Session.CurrentToolIndex = tool
	d.Planner.ChangeTool(tool)
}

func (d *Dispatcher) dispatchEnableAxes(buf *buffer.Buffer) {
	bits := buf.PopU8()
	if !d.Planner.QueueEmpty() {
		return
	}
	enable := bits&(1<<7) != 0
	for i := point.Axis(0); i < point.NumAxes; i++ {
		if bits&(1<<uint(i)) != 0 {
			d.Planner.EnableAxis(i, enable)
		}
	}
}

func (d *Dispatcher) dispatchSetPositionExt(buf *buffer.Buffer) {
	d.Planner.DefinePosition(popPoint(buf))
}

func (d *Dispatcher) dispatchDelay(buf *buffer.Buffer, now int64) {
	ms := buf.PopU32()
	d.Mode.EnterDelay(now, int64(ms)*1000)
}

func (d *Dispatcher) dispatchPauseForButton(buf *buffer.Buffer, now int64) {
	mask := buf.PopU8()
	timeoutSeconds := buf.PopU16()
	behavior := buf.PopU8()
	d.Interface.WaitForButton(mask)
	d.Mode.EnterWaitOnButton(now, mask, behavior, timeoutSeconds)
}

func (d *Dispatcher) dispatchDisplayMessage(buf *buffer.Buffer, size int, now int64) {
	options := buf.PopU8()
	x := buf.PopU8()
	y := buf.PopU8()
	timeoutSeconds := buf.PopU8()
	textLen := size - 5 // header consumed so far: opcode(popped)+4
	text := make([]byte, 0, textLen)
	for range textLen {
		text = append(text, buf.PopU8())
	}
	if len(text) > 0 && text[len(text)-1] == 0 {
		text = text[:len(text)-1]
	}

	preserve := options&proto.DisplayMessagePreserve != 0
	push := options&proto.DisplayMessagePush != 0
	waitButton := options&proto.DisplayMessageWaitButton != 0

	d.Interface.DisplayMessage(x, y, preserve, text)
	if !push {
		return
	}
	if waitButton {
		d.Interface.PushScreen()
		d.Interface.WaitForButton(centerButtonMask)
		d.Mode.EnterWaitOnButton(now, centerButtonMask, 0, uint16(timeoutSeconds))
		return
	}
	d.Interface.PushMessageScreen(timeoutSeconds)
}

func (d *Dispatcher) dispatchFindAxesMinMax(buf *buffer.Buffer, now int64) {
	flags := buf.PopU8()
	feedrate := buf.PopU32()
	timeoutSeconds := buf.PopU16()
	toMax := flags&(1<<7) != 0
	axisMask := flags &^ (1 << 7)
	d.Planner.StartHoming(toMax, axisMask, feedrate)
	d.Mode.EnterHoming(now, toMax, axisMask, timeoutSeconds)
}

func (d *Dispatcher) dispatchWaitForTool(buf *buffer.Buffer, now int64) {
	tool := buf.PopU8()
	buf.Skip(2) // ping_delay, ignored
	timeoutSeconds := buf.PopU16()
	d.Mode.EnterWaitOnTool(now, tool, timeoutSeconds)
}

func (d *Dispatcher) dispatchWaitForPlatform(buf *buffer.Buffer, now int64) {
	buf.Skip(1) // tool_index, unused for the platform wait
	buf.Skip(2) // ping_delay, ignored
	timeoutSeconds := buf.PopU16()
	d.Mode.EnterWaitOnPlatform(now, timeoutSeconds)
}

func (d *Dispatcher) dispatchStoreHomePosition(buf *buffer.Buffer) {
	mask := buf.PopU8()
	pos := d.Planner.StepperPosition()
	for i := point.Axis(0); i < point.NumAxes; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		mm := d.Planner.StepsToMM(pos.Get(i), i)
		d.Settings.SetAxisHomePositionMM(i, mm)
	}
}

func (d *Dispatcher) dispatchRecallHomePosition(buf *buffer.Buffer) {
	mask := buf.PopU8()
	home := d.Planner.PlannerPosition()
	for i := point.Axis(0); i < point.NumAxes; i++ {
		if mask&(1<<uint(i)) == 0 {
			continue
		}
		mm, err := d.Settings.AxisHomePositionMM(i)
		if err != nil {
			continue
		}
		home = home.Set(i, d.Planner.MMToSteps(mm, i))
	}
	d.Planner.DefineHome(home)
}

func (d *Dispatcher) dispatchSetPotValue(buf *buffer.Buffer) {
	axis := point.Axis(buf.PopU8())
	value := buf.PopU8()
	d.Planner.SetAxisPot(axis, value)
}

func (d *Dispatcher) dispatchSetRGBLED(buf *buffer.Buffer) {
	r := buf.PopU8()
	g := buf.PopU8()
	b := buf.PopU8()
	blink := buf.PopU8()
	buf.Skip(1) // reserved
	d.LED.SetCustomColor(r, g, b)
	d.LED.SetBlink(blink)
}

func (d *Dispatcher) dispatchSetBeep(buf *buffer.Buffer) {
	freq := buf.PopU16()
	lengthMS := buf.PopU16()
	buf.Skip(1) // reserved
	d.Piezo.SetTone(freq, lengthMS)
}

func (d *Dispatcher) dispatchSetBuildPercent(buf *buffer.Buffer) {
	percent := buf.PopU8()
	buf.Skip(1) // reserved
	d.Interface.SetBuildPercentage(percent)
}

func (d *Dispatcher) dispatchBuildStart(buf *buffer.Buffer, size int) {
	buf.Skip(4) // step-count, ignored
	nameLen := size - 5
	name := make([]byte, 0, nameLen)
	for range nameLen {
		name = append(name, buf.PopU8())
	}
	if len(name) > 0 && name[len(name)-1] == 0 {
		name = name[:len(name)-1]
	}
	d.Host.HandleBuildStart(name)
	d.Session.StartBuildFlag = true
	d.Session.PlatformOnFlag = false
	if d.Session.CheckTempState {
		d.Session.CheckTempState = false
		d.Extruders[0].Pause(false)
		d.Extruders[1].Pause(false)
	}
}

func (d *Dispatcher) dispatchStreamVersion(buf *buffer.Buffer) {
	major := buf.PopU8()
	minor := buf.PopU8()
	extra := buf.PopU8()
	buf.Skip(4) // checksum, ignored
	botType := buf.PopU16()
	buf.Skip(1) // reserved

	if !d.Settings.StreamVersionMatches(major, minor, extra) {
		d.Interface.ErrorMessage(iface.ErrStreamVersion)
	}
	if d.Settings.BotType() != botType {
		d.Interface.ErrorMessage(iface.ErrBotType)
	}
}

// TriggerStaticFail performs the safe-reset action the card watchdog
// invokes after six consecutive short-read observations (spec.md §4.2,
// §8 scenario 4). The command buffer itself is reset by the caller
// (SourceMux owns the buffer reference); this only covers the
// hardware-facing response.
func (d *Dispatcher) TriggerStaticFail() {
	d.Interface.ResetLCD()
	d.Interface.ErrorMessage(iface.ErrStaticFail)
	d.Planner.Abort()
	d.Extruders[0].SetTarget(0)
	d.Extruders[1].SetTarget(0)
	d.Platform.SetTarget(0)
	pos := d.Planner.PlannerPosition()
	pos = pos.Set(point.Z, d.Planner.MMToSteps(150, point.Z))
	d.Planner.SetTarget(pos, 150)
	d.Session.Paused = false
}

// FullReset returns all dispatcher-owned state to its initial values,
// the shared path used by RESET_TO_FACTORY and the button-wait-abort
// safe reset (spec.md §3 lifecycle, §7 propagation policy). The
// STATICFAIL response is TriggerStaticFail and does not call it.
func (d *Dispatcher) FullReset() {
	d.Session.Reset()
	d.Mode.Reset()
	d.Sleep.Reset()
}
