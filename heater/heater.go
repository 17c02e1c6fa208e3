// Package heater declares the extruder and platform heater
// collaborators. PID control itself is out of scope for the core
// (spec.md §1); the core only observes and commands targets.
package heater

// Heater is the shape shared by both extruder heaters and the
// platform heater (spec.md §6). Temperatures are in whole degrees
// Celsius, matching the u16 the wire format carries.
type Heater interface {
	SetTarget(c uint16)
	GetSetTarget() uint16
	Abort()
	Pause(on bool)
	IsHeating() bool
	IsCooling() bool
	IsPaused() bool
	HasReachedTarget() bool
}
