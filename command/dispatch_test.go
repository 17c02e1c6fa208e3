package command

import (
	"testing"

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

type fakeHeater struct {
	target                    uint16
	paused, heating, cooling  bool
	atTarget                  bool
}

func (h *fakeHeater) SetTarget(c uint16)     { h.target = c }
func (h *fakeHeater) GetSetTarget() uint16   { return h.target }
func (h *fakeHeater) Abort()                 { h.target = 0 }
func (h *fakeHeater) Pause(on bool)          { h.paused = on }
func (h *fakeHeater) IsHeating() bool        { return h.heating }
func (h *fakeHeater) IsCooling() bool        { return h.cooling }
func (h *fakeHeater) IsPaused() bool         { return h.paused }
func (h *fakeHeater) HasReachedTarget() bool { return h.atTarget }

type fakePlanner struct {
	pos   point.Point
	empty bool
	pots  map[point.Axis]uint8
}

func (p *fakePlanner) SetTarget(point.Point, int32)                             {}
func (p *fakePlanner) SetTargetNew(point.Point, int32, uint8)                   {}
func (p *fakePlanner) SetTargetNewExt(point.Point, int32, uint8, float32, int16) {}
func (p *fakePlanner) DefinePosition(point.Point)                              {}
func (p *fakePlanner) DefineHome(point.Point)                                  {}
func (p *fakePlanner) StartHoming(bool, uint8, uint32)                         {}
func (p *fakePlanner) Abort()                                                  {}
func (p *fakePlanner) IsRunning() bool                                         { return !p.empty }
func (p *fakePlanner) QueueEmpty() bool                                        { return p.empty }
func (p *fakePlanner) StepperPosition() point.Point                            { return p.pos }
func (p *fakePlanner) PlannerPosition() point.Point                            { return p.pos }
func (p *fakePlanner) ChangeTool(uint8)                                        {}
func (p *fakePlanner) EnableAxis(point.Axis, bool)                             {}
func (p *fakePlanner) SetAxisPot(axis point.Axis, value uint8) {
	if p.pots == nil {
		p.pots = map[point.Axis]uint8{}
	}
	p.pots[axis] = value
}
func (p *fakePlanner) SetAcceleration(bool)                           {}
func (p *fakePlanner) StepsPerMM(point.Axis) float32                  { return 10 }
func (p *fakePlanner) StepsToMM(steps int32, axis point.Axis) float32 { return float32(steps) / 10 }
func (p *fakePlanner) MMToSteps(mm float32, axis point.Axis) int32    { return int32(mm * 10) }

var _ planner.Planner = (*fakePlanner)(nil)

type fakeIface struct{ errs []iface.ErrorCode }

func (f *fakeIface) DisplayMessage(uint8, uint8, bool, []byte) {}
func (f *fakeIface) PushMessageScreen(uint8)                   {}
func (f *fakeIface) ErrorMessage(code iface.ErrorCode)         { f.errs = append(f.errs, code) }
func (f *fakeIface) ErrorResponse(iface.ErrorCode, bool, bool) {}
func (f *fakeIface) WaitForButton(uint8)                       {}
func (f *fakeIface) ResetLCD()                                 {}
func (f *fakeIface) PushScreen()                               {}
func (f *fakeIface) PopScreen()                                {}
func (f *fakeIface) PopToOnboardStart()                        {}
func (f *fakeIface) StartProgressBar(int, uint8, uint8)        {}
func (f *fakeIface) StopProgressBar()                          {}
func (f *fakeIface) SetBuildPercentage(uint8)                  {}
func (f *fakeIface) InterfaceBlink(uint8, uint8)               {}
func (f *fakeIface) SetBoardStatus(iface.BoardStatus, bool)    {}

var _ iface.Interface = (*fakeIface)(nil)

type fakePiezo struct{}

func (fakePiezo) PlayTune(piezo.Tune)        {}
func (fakePiezo) SetTone(uint16, uint16) {}

type fakeLED struct{}

func (fakeLED) SetBlink(uint8)                 {}
func (fakeLED) SetCustomColor(uint8, uint8, uint8) {}
func (fakeLED) SetDefaultColor()               {}

type fakeFan struct{ on bool }

func (f *fakeFan) SetOn(on bool) { f.on = on }
func (f *fakeFan) IsOn() bool    { return f.on }

type fakeValve struct{ on bool }

func (v *fakeValve) SetOn(on bool) { v.on = on }
func (v *fakeValve) IsOn() bool    { return v.on }

type fakeCard struct{}

func (fakeCard) IsPlaying() bool        { return false }
func (fakeCard) PlaybackHasNext() bool   { return false }
func (fakeCard) PlaybackNext() byte      { return 0 }
func (fakeCard) GetFileSize() uint32     { return 0 }
func (fakeCard) FinishPlayback()         {}

var _ card.Card = fakeCard{}

type fakeUtility struct{}

func (fakeUtility) IsPlaying() bool      { return false }
func (fakeUtility) PlaybackHasNext() bool { return false }
func (fakeUtility) PlaybackNext() byte   { return 0 }
func (fakeUtility) FinishPlayback()      {}

var _ card.UtilityScript = fakeUtility{}

type fakeHost struct{}

func (fakeHost) PauseBuild(bool)            {}
func (fakeHost) HandleBuildStart([]byte)    {}
func (fakeHost) HandleBuildStop(uint8)      {}
func (fakeHost) GetHostState() host.State   { return nil }

var _ host.Host = fakeHost{}

type fakeStorage struct{ mem [4096]byte }

func (f *fakeStorage) ReadAt(addr uint32, buf []byte) error {
	copy(buf, f.mem[addr:])
	return nil
}
func (f *fakeStorage) WriteAt(addr uint32, buf []byte) error {
	copy(f.mem[addr:], buf)
	return nil
}

func newDispatcher() (*Dispatcher, *fakePlanner, [2]*fakeHeater, *fakeHeater, *fakeIface) {
	pl := &fakePlanner{}
	ex0 := &fakeHeater{}
	ex1 := &fakeHeater{}
	plat := &fakeHeater{}
	ifc := &fakeIface{}
	st := settings.New(&fakeStorage{}, nil)

	d := &Dispatcher{
		Planner:   pl,
		Extruders: [2]heater.Heater{ex0, ex1},
		Platform:  plat,
		Interface: ifc,
		Piezo:     fakePiezo{},
		LED:       fakeLED{},
		Fan:       &fakeFan{},
		Valve:     &fakeValve{},
		Card:      fakeCard{},
		Utility:   fakeUtility{},
		Host:      fakeHost{},
		Settings:  st,
		Mode:      &mode.Machine{},
		Sleep:     &sleep.Machine{},
	}
	return d, pl, [2]*fakeHeater{ex0, ex1}, plat, ifc
}

// TestDelayDispatch exercises spec scenario 1.
func TestDelayDispatch(t *testing.T) {
	d, _, _, _, _ := newDispatcher()
	buf := buffer.New(nil)
	for _, b := range []byte{0x89, 0xE8, 0x03, 0x00, 0x00} {
		buf.Push(b)
	}
	if !d.TryDispatch(buf, 0) {
		t.Fatal("expected dispatch to succeed")
	}
	if d.Mode.Current != mode.Delay {
		t.Fatalf("mode = %v, want Delay", d.Mode.Current)
	}
	if !d.Mode.Timeout.Active() || d.Mode.Timeout.HasElapsed(999_999) {
		t.Fatal("timeout should be active and not yet elapsed at 999999us")
	}
	if !d.Mode.Timeout.HasElapsed(1_000_001) {
		t.Fatal("timeout should have elapsed at 1000001us")
	}
	if d.Session.LineNumber != 1 {
		t.Fatalf("line_number = %d, want 1", d.Session.LineNumber)
	}
}

// TestPipelineBarrier exercises spec scenario 2.
func TestPipelineBarrier(t *testing.T) {
	d, pl, _, _, _ := newDispatcher()
	buf := buffer.New(nil)
	for _, b := range []byte{byte(proto.SetPotValue), 2, 64} {
		buf.Push(b)
	}

	pl.empty = false
	if d.TryDispatch(buf, 0) {
		t.Fatal("dispatch should be blocked by the pipeline barrier")
	}
	if buf.Length() != 3 {
		t.Fatal("non-pipeline-safe opcode must not be partially consumed")
	}

	pl.empty = true
	if !d.TryDispatch(buf, 0) {
		t.Fatal("expected dispatch to succeed once the queue drains")
	}
	if pl.pots[point.Axis(2)] != 64 {
		t.Fatalf("pot[2] = %d, want 64", pl.pots[point.Axis(2)])
	}
}

// TestSingleToolGuard exercises spec scenario 5.
func TestSingleToolGuard(t *testing.T) {
	d, _, ex, _, ifc := newDispatcher()
	if err := d.Settings.Save(settings.BotConfig{SingleTool: true}); err != nil {
		t.Fatal(err)
	}

	buf := buffer.New(nil)
	for _, b := range []byte{byte(proto.ToolCommand), 1, byte(proto.SetTemp), 2, 230, 0} {
		buf.Push(b)
	}
	if !d.TryDispatch(buf, 0) {
		t.Fatal("expected dispatch to succeed")
	}
	if len(ifc.errs) != 1 || ifc.errs[0] != iface.ErrInvalidTool {
		t.Fatalf("errs = %v, want [ErrInvalidTool]", ifc.errs)
	}
	if ex[1].target != 0 {
		t.Fatalf("tool 1 target = %d, want clamped to 0", ex[1].target)
	}
}
