// Package planner declares the external motion-planner collaborator.
// The planner's own implementation — path interpolation, acceleration
// curves, step pulse generation — is explicitly out of scope for the
// command interpreter core (spec.md §1); the core only ever talks to
// it through this interface.
package planner

import "motioncore.dev/point"

// Planner is the motion-planner collaborator surface named in
// spec.md §6.
type Planner interface {
	SetTarget(p point.Point, rate int32)
	SetTargetNew(p point.Point, us int32, relativeMask uint8)
	SetTargetNewExt(p point.Point, dda int32, relativeMask uint8, distance float32, feedrateMult16 int16)
	DefinePosition(p point.Point)
	DefineHome(p point.Point)
	StartHoming(toMax bool, axisMask uint8, feedrate uint32)
	Abort()
	IsRunning() bool
	QueueEmpty() bool
	StepperPosition() point.Point
	PlannerPosition() point.Point
	ChangeTool(index uint8)
	EnableAxis(axis point.Axis, on bool)
	SetAxisPot(axis point.Axis, value uint8)
	SetAcceleration(on bool)
	StepsPerMM(axis point.Axis) float32
	StepsToMM(steps int32, axis point.Axis) float32
	MMToSteps(mm float32, axis point.Axis) int32
}
