//go:build linux

package main

import (
	"motioncore.dev/host"
	"motioncore.dev/iface"
	"motioncore.dev/point"
)

// The motion-planner, heater-PID, interface/LCD rendering and
// storage-card subsystems are explicitly out of scope for this
// repository (spec.md §1: "the core only ever talks to it through
// this interface"). The stubs below satisfy their collaborator
// interfaces well enough to boot the scheduler stand-alone; a real
// deployment links in an actual planner, heater control loop, LCD
// driver and SD card reader instead.

type stubPlanner struct{ pos point.Point }

func (p *stubPlanner) SetTarget(point.Point, int32)                             {}
func (p *stubPlanner) SetTargetNew(point.Point, int32, uint8)                   {}
func (p *stubPlanner) SetTargetNewExt(point.Point, int32, uint8, float32, int16) {}
func (p *stubPlanner) DefinePosition(pos point.Point)                          { p.pos = pos }
func (p *stubPlanner) DefineHome(point.Point)                                  {}
func (p *stubPlanner) StartHoming(bool, uint8, uint32)                         {}
func (p *stubPlanner) Abort()                                                  {}
func (p *stubPlanner) IsRunning() bool                                         { return false }
func (p *stubPlanner) QueueEmpty() bool                                        { return true }
func (p *stubPlanner) StepperPosition() point.Point                            { return p.pos }
func (p *stubPlanner) PlannerPosition() point.Point                            { return p.pos }
func (p *stubPlanner) ChangeTool(uint8)                                        {}
func (p *stubPlanner) EnableAxis(point.Axis, bool)                             {}
func (p *stubPlanner) SetAxisPot(point.Axis, uint8)                            {}
func (p *stubPlanner) SetAcceleration(bool)                                    {}
func (p *stubPlanner) StepsPerMM(point.Axis) float32                           { return 88.888 }
func (p *stubPlanner) StepsToMM(steps int32, axis point.Axis) float32 {
	return float32(steps) / p.StepsPerMM(axis)
}
func (p *stubPlanner) MMToSteps(mm float32, axis point.Axis) int32 {
	return int32(mm * p.StepsPerMM(axis))
}

type stubHeater struct {
	target uint16
	paused bool
}

func (h *stubHeater) SetTarget(c uint16)     { h.target = c }
func (h *stubHeater) GetSetTarget() uint16   { return h.target }
func (h *stubHeater) Abort()                 { h.target = 0 }
func (h *stubHeater) Pause(on bool)          { h.paused = on }
func (h *stubHeater) IsHeating() bool        { return h.target > 0 && !h.paused }
func (h *stubHeater) IsCooling() bool        { return h.target == 0 }
func (h *stubHeater) IsPaused() bool         { return h.paused }
func (h *stubHeater) HasReachedTarget() bool { return true }

type stubInterface struct{}

func (stubInterface) DisplayMessage(uint8, uint8, bool, []byte)       {}
func (stubInterface) PushMessageScreen(uint8)                         {}
func (stubInterface) ErrorMessage(code iface.ErrorCode)               {}
func (stubInterface) ErrorResponse(iface.ErrorCode, bool, bool)       {}
func (stubInterface) WaitForButton(uint8)                             {}
func (stubInterface) ResetLCD()                                       {}
func (stubInterface) PushScreen()                                     {}
func (stubInterface) PopScreen()                                      {}
func (stubInterface) PopToOnboardStart()                              {}
func (stubInterface) StartProgressBar(int, uint8, uint8)              {}
func (stubInterface) StopProgressBar()                                {}
func (stubInterface) SetBuildPercentage(uint8)                        {}
func (stubInterface) InterfaceBlink(uint8, uint8)                     {}
func (stubInterface) SetBoardStatus(flag iface.BoardStatus, on bool)  {}

type stubCard struct{}

func (stubCard) IsPlaying() bool       { return false }
func (stubCard) PlaybackHasNext() bool { return false }
func (stubCard) PlaybackNext() byte    { return 0 }
func (stubCard) GetFileSize() uint32   { return 0 }
func (stubCard) FinishPlayback()       {}

type stubUtility struct{}

func (stubUtility) IsPlaying() bool       { return false }
func (stubUtility) PlaybackHasNext() bool { return false }
func (stubUtility) PlaybackNext() byte    { return 0 }
func (stubUtility) FinishPlayback()       {}

type stubHost struct{}

func (stubHost) PauseBuild(bool)          {}
func (stubHost) HandleBuildStart([]byte)  {}
func (stubHost) HandleBuildStop(uint8)    {}
func (stubHost) GetHostState() host.State { return nil }
