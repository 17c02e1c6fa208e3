package core

import (
	"testing"

	"motioncore.dev/card"
	"motioncore.dev/heater"
	"motioncore.dev/host"
	"motioncore.dev/iface"
	"motioncore.dev/mode"
	"motioncore.dev/piezo"
	"motioncore.dev/planner"
	"motioncore.dev/point"
	"motioncore.dev/settings"
	"motioncore.dev/sleep"
	"motioncore.dev/source"
)

type fakeHeater struct {
	target   uint16
	paused   bool
	heating  bool
	cooling  bool
	atTarget bool
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
func (p *fakePlanner) SetAxisPot(point.Axis, uint8)                            {}
func (p *fakePlanner) SetAcceleration(bool)                                    {}
func (p *fakePlanner) StepsPerMM(point.Axis) float32                           { return 10 }
func (p *fakePlanner) StepsToMM(steps int32, axis point.Axis) float32          { return float32(steps) / 10 }
func (p *fakePlanner) MMToSteps(mm float32, axis point.Axis) int32             { return int32(mm * 10) }

var _ planner.Planner = (*fakePlanner)(nil)

type fakeIface struct{}

func (fakeIface) DisplayMessage(uint8, uint8, bool, []byte) {}
func (fakeIface) PushMessageScreen(uint8)                   {}
func (fakeIface) ErrorMessage(iface.ErrorCode)              {}
func (fakeIface) ErrorResponse(iface.ErrorCode, bool, bool)  {}
func (fakeIface) WaitForButton(uint8)                        {}
func (fakeIface) ResetLCD()                                  {}
func (fakeIface) PushScreen()                                {}
func (fakeIface) PopScreen()                                 {}
func (fakeIface) PopToOnboardStart()                         {}
func (fakeIface) StartProgressBar(int, uint8, uint8)         {}
func (fakeIface) StopProgressBar()                           {}
func (fakeIface) SetBuildPercentage(uint8)                   {}
func (fakeIface) InterfaceBlink(uint8, uint8)                {}
func (fakeIface) SetBoardStatus(iface.BoardStatus, bool)     {}

var _ iface.Interface = fakeIface{}

type fakePiezo struct{}

func (fakePiezo) PlayTune(piezo.Tune)    {}
func (fakePiezo) SetTone(uint16, uint16) {}

type fakeLED struct{}

func (fakeLED) SetBlink(uint8)                     {}
func (fakeLED) SetCustomColor(uint8, uint8, uint8) {}
func (fakeLED) SetDefaultColor()                   {}

type fakeFan struct{ on bool }

func (f *fakeFan) SetOn(on bool) { f.on = on }
func (f *fakeFan) IsOn() bool    { return f.on }

type fakeValve struct{ on bool }

func (v *fakeValve) SetOn(on bool) { v.on = on }
func (v *fakeValve) IsOn() bool    { return v.on }

type fakeCard struct{}

func (fakeCard) IsPlaying() bool       { return false }
func (fakeCard) PlaybackHasNext() bool { return false }
func (fakeCard) PlaybackNext() byte    { return 0 }
func (fakeCard) GetFileSize() uint32   { return 0 }
func (fakeCard) FinishPlayback()       {}

var _ card.Card = fakeCard{}

type fakeUtility struct{}

func (fakeUtility) IsPlaying() bool       { return false }
func (fakeUtility) PlaybackHasNext() bool { return false }
func (fakeUtility) PlaybackNext() byte    { return 0 }
func (fakeUtility) FinishPlayback()       {}

var _ card.UtilityScript = fakeUtility{}

type fakeHost struct{}

func (fakeHost) PauseBuild(bool)          {}
func (fakeHost) HandleBuildStart([]byte)  {}
func (fakeHost) HandleBuildStop(uint8)    {}
func (fakeHost) GetHostState() host.State { return nil }

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

type fakeClock struct{ now int64 }

func (c *fakeClock) NowMicro() int64 { return c.now }

func newTestCore() (*Core, *fakePlanner, *fakeClock) {
	pl := &fakePlanner{empty: true}
	clk := &fakeClock{}
	d := Deps{
		Planner:   pl,
		Extruders: [2]heater.Heater{&fakeHeater{}, &fakeHeater{}},
		Platform:  &fakeHeater{},
		Interface: fakeIface{},
		Piezo:     fakePiezo{},
		LED:       fakeLED{},
		Fan:       &fakeFan{},
		Valve:     &fakeValve{},
		Card:      fakeCard{},
		Utility:   fakeUtility{},
		Host:      fakeHost{},
		Settings:  settings.New(&fakeStorage{}, nil),
		Clock:     clk,
		Active:    source.HostLink,
	}
	return New(d, nil), pl, clk
}

// TestRunSliceDispatchesDelay exercises spec scenario 1 end to end
// through Core.RunSlice: pushing a DELAY packet and running slices
// should carry the mode machine into DELAY and back to READY once the
// timeout elapses.
func TestRunSliceDispatchesDelay(t *testing.T) {
	c, _, clk := newTestCore()
	for _, b := range []byte{0x89, 0xE8, 0x03, 0x00, 0x00} {
		c.Buffer().Push(b)
	}

	c.RunSlice()
	if c.Mode() != mode.Delay {
		t.Fatalf("mode = %v, want Delay", c.Mode())
	}

	clk.now = 999_999
	c.RunSlice()
	if c.Mode() != mode.Delay {
		t.Fatal("delay should not have elapsed yet")
	}

	clk.now = 1_000_001
	c.RunSlice()
	if c.Mode() != mode.Ready {
		t.Fatalf("mode = %v, want Ready once the delay elapses", c.Mode())
	}
}

// TestCheckTempStateUnpausesOnceTargetReached exercises spec.md §4.5/
// §4.6's check_temp_state handshake end to end: a SET_TEMP that finds
// the platform heating pauses the extruder and sets the latch; once
// the platform reaches target, the next slice must unpause it again
// rather than leaving it paused forever.
func TestCheckTempStateUnpausesOnceTargetReached(t *testing.T) {
	c, _, _ := newTestCore()
	plat := c.disp.Platform.(*fakeHeater)
	plat.heating = true

	for _, b := range []byte{0x91, 0x00, 0x03, 0x02, 0xB8, 0x0B} {
		c.Buffer().Push(b)
	}
	c.RunSlice()

	ex0 := c.disp.Extruders[0].(*fakeHeater)
	if !ex0.paused {
		t.Fatal("extruder should be paused while the platform is heating")
	}
	if !c.Session().CheckTempState {
		t.Fatal("check_temp_state should be set")
	}

	plat.atTarget = true
	c.RunSlice()

	if ex0.paused {
		t.Fatal("extruder should be unpaused once the platform reaches target")
	}
	if c.Session().CheckTempState {
		t.Fatal("check_temp_state should be cleared once acted on")
	}
}

// TestActivePauseEntersSleepMachine exercises the ActivePause seam:
// triggering a cold pause should hand control to the nested sleep
// machine and suspend ordinary dispatch (spec.md §4.7, §8 invariant
// "active_paused == true ⇔ sleep_mode ∈ {...}").
func TestActivePauseEntersSleepMachine(t *testing.T) {
	c, pl, _ := newTestCore()
	pl.empty = true

	c.ActivePause(true, sleep.TypeCold)
	if !c.disp.Sleep.ActivePaused() {
		t.Fatal("expected the sleep machine to report active_paused")
	}
	if c.disp.CanDispatch() {
		t.Fatal("dispatch must be suspended during an active pause")
	}
}
