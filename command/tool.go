package command

import (
	"motioncore.dev/buffer"
	"motioncore.dev/iface"
	"motioncore.dev/proto"
)

// dispatchToolCommand handles the TOOL_COMMAND sub-dispatch
// (spec.md §4.5). The opcode byte has already been consumed by
// TryDispatch.
func (d *Dispatcher) dispatchToolCommand(buf *buffer.Buffer) {
	tool := buf.PopU8()
	sub := proto.ToolSubCommand(buf.PopU8())
	payloadLen := int(buf.PopU8())

	switch sub {
	case proto.SetTemp:
		temp := buf.PopU16()
		d.toolSetTemp(tool, temp)
	case proto.SetPlatformTemp:
		temp := buf.PopU16()
		d.toolSetPlatformTemp(temp)
	case proto.PauseUnpause:
		d.Session.Paused = !d.Session.Paused
	case proto.ToggleFan:
		on := buf.PopU8()&1 != 0
		d.Fan.SetOn(on)
	case proto.ToggleValve:
		on := buf.PopU8()&1 != 0
		d.Valve.SetOn(on)
	default:
		// Motor/servo sub-commands and any other reserved opcode:
		// accept and discard the payload.
		buf.Skip(payloadLen)
	}
}

func (d *Dispatcher) extruder(tool uint8) (int, bool) {
	if tool > 1 {
		return 0, false
	}
	return int(tool), true
}

func (d *Dispatcher) toolSetTemp(tool uint8, temp uint16) {
	idx, ok := d.extruder(tool)
	if !ok {
		return
	}
	if d.Session.StartBuildFlag {
		d.Extruders[0].Abort()
		d.Extruders[1].Abort()
		if !d.Session.PlatformOnFlag {
			d.Platform.Abort()
		}
	}
	h := d.Extruders[idx]
	h.SetTarget(temp)
	if d.Platform.IsHeating() && !d.Platform.IsCooling() && !h.IsCooling() {
		h.Pause(true)
		d.Session.CheckTempState = true
	} else {
		h.Pause(false)
	}
	if idx == 1 && d.Settings.IsSingleTool() {
		d.Interface.ErrorMessage(iface.ErrInvalidTool)
		h.SetTarget(0)
	}
}

func (d *Dispatcher) toolSetPlatformTemp(temp uint16) {
	if d.Session.StartBuildFlag {
		d.Session.PlatformOnFlag = true
	}
	d.Platform.SetTarget(temp)
	if !d.Platform.IsCooling() {
		d.Extruders[0].Pause(true)
		d.Extruders[1].Pause(true)
	}
	d.Interface.SetBoardStatus(iface.StatusPreheating, false)
	if !d.Settings.HasHeatedPlatform() {
		d.Interface.ErrorMessage(iface.ErrInvalidPlatform)
		d.Platform.SetTarget(0)
	}
}
