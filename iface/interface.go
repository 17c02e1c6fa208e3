// Package iface declares the interface/display collaborator: message
// screens, button waits, error reporting, progress bars and board
// status. Actual LCD rendering and button-matrix scanning are out of
// scope for the core (spec.md §1); this is the named surface the core
// drives.
package iface

// ErrorCode enumerates the error kinds surfaced to the interface
// collaborator (spec.md §7). Errors never unwind the dispatcher — they
// are always reported in place through ErrorMessage/ErrorResponse.
type ErrorCode int

const (
	ErrInvalidTool ErrorCode = iota
	ErrInvalidPlatform
	ErrHeatingTimeout
	ErrPlatformHeatingTimeout
	ErrStreamVersion
	ErrBotType
	ErrStaticFail
	ErrTimedOutOfChangeFilament
)

// BoardStatus is a bit flag surfaced through SetBoardStatus, e.g. the
// STATUS_PREHEATING flag cleared by SET_PLATFORM_TEMP (spec.md §4.5).
type BoardStatus uint8

const (
	StatusPreheating BoardStatus = 1 << iota
)

// Interface is the display/interaction collaborator named in
// spec.md §6.
type Interface interface {
	// DisplayMessage stages message text for the screen at (x, y),
	// honoring the preserve bit of DISPLAY_MESSAGE (spec.md §4.4).
	DisplayMessage(x, y uint8, preserve bool, text []byte)
	// PushMessageScreen makes the staged message visible, with a
	// display-only timeout in seconds (0 = no timeout).
	PushMessageScreen(timeoutSeconds uint8)
	ErrorMessage(code ErrorCode)
	ErrorResponse(code ErrorCode, resetRequest, silent bool)
	WaitForButton(mask uint8)
	ResetLCD()
	PushScreen()
	PopScreen()
	PopToOnboardStart()
	StartProgressBar(lines int, start, percentStep uint8)
	StopProgressBar()
	SetBuildPercentage(percent uint8)
	InterfaceBlink(onTicks, offTicks uint8)
	SetBoardStatus(flag BoardStatus, on bool)
}
