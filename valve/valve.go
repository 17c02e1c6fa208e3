// Package valve declares the auxiliary coolant/feedstock valve
// collaborator toggled by TOOL_COMMAND TOGGLE_VALVE. Like Fan, §6
// never names it as a standalone surface; it is given the same
// minimal boolean-relay shape.
package valve

// Valve is the toggleable auxiliary valve collaborator.
type Valve interface {
	SetOn(on bool)
	IsOn() bool
}
