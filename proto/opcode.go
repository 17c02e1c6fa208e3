// Package proto describes the host-link wire format: opcodes, their
// packet sizes, and which opcodes may be dispatched while motion is
// still queued. All multi-byte fields on the wire are little-endian.
package proto

// Opcode identifies the command carried by a packet's first byte.
type Opcode uint8

const (
	QueuePointExt            Opcode = 0x82
	ChangeTool               Opcode = 0x86
	EnableAxes               Opcode = 0x87
	QueuePointNew             Opcode = 0x97
	SetPositionExt           Opcode = 0x8A
	FindAxesMinMax           Opcode = 0x8B
	WaitForTool              Opcode = 0x88
	Delay                    Opcode = 0x89
	DisplayMessage           Opcode = 0x98
	WaitForPlatform          Opcode = 0x9E
	StoreHomePosition        Opcode = 0x8C
	RecallHomePosition       Opcode = 0x8D
	SetPotValue              Opcode = 0x8E
	SetRGBLED                Opcode = 0x8F
	SetBeep                  Opcode = 0x90
	PauseForButton           Opcode = 0x96
	ToolCommand              Opcode = 0x91
	SetBuildPercent          Opcode = 0xA2
	QueueSong                Opcode = 0x93
	ResetToFactory           Opcode = 0x99
	BuildStartNotification   Opcode = 0xA4
	BuildEndNotification     Opcode = 0xA5
	SetAccelerationToggle    Opcode = 0xA6
	StreamVersion            Opcode = 0xA7
	QueuePointNewExt         Opcode = 0xA8
)

// Size is the number of bytes, including the opcode byte itself, that
// must be present in the command buffer before the packet may be
// popped. TOOL_COMMAND, DISPLAY_MESSAGE and BUILD_START_NOTIFICATION
// have variable total length; Size reports a fixed lower bound for
// them, and the command decoder computes the full packet length once
// the header is readable (spec.md §4.3).
func Size(op Opcode) (int, bool) {
	sz, ok := sizes[op]
	return sz, ok
}

var sizes = map[Opcode]int{
	QueuePointExt:          25,
	QueuePointNew:          26,
	QueuePointNewExt:       32,
	ChangeTool:             2,
	EnableAxes:             2,
	SetPositionExt:         21,
	Delay:                  5,
	PauseForButton:         5,
	DisplayMessage:         6, // 5-byte header plus at least the NUL; message bytes follow
	FindAxesMinMax:         8,
	WaitForTool:            6,
	WaitForPlatform:        6,
	StoreHomePosition:      2,
	RecallHomePosition:     2,
	SetPotValue:            3,
	SetRGBLED:              6,
	SetBeep:                6,
	ToolCommand:            4, // header only; payload follows
	SetBuildPercent:        3,
	QueueSong:              2,
	ResetToFactory:         2,
	BuildStartNotification: 5, // header only; name bytes follow
	BuildEndNotification:   2,
	SetAccelerationToggle:  2,
	StreamVersion:          11,
}

// pipelineSafe is the set of opcodes that may be dispatched while the
// planner's motion queue is still draining. Every other opcode must
// wait for the queue to empty first (the pipeline barrier,
// spec.md §4.3).
var pipelineSafe = map[Opcode]bool{
	QueuePointExt:         true,
	QueuePointNew:         true,
	QueuePointNewExt:      true,
	EnableAxes:            true,
	SetBuildPercent:       true,
	ChangeTool:            true,
	SetPositionExt:        true,
	SetAccelerationToggle: true,
	RecallHomePosition:    true,
	FindAxesMinMax:        true,
	ToolCommand:           true,
}

// PipelineSafe reports whether op may be dispatched while motion is
// in flight, i.e. whether it is exempt from the pipeline barrier.
func PipelineSafe(op Opcode) bool {
	return pipelineSafe[op]
}

// Tool sub-command identifiers used by the TOOL_COMMAND payload
// (spec.md §4.5).
type ToolSubCommand uint8

const (
	SetTemp         ToolSubCommand = 0x03
	SetPlatformTemp ToolSubCommand = 0x0E
	PauseUnpause    ToolSubCommand = 0x0C
	ToggleFan       ToolSubCommand = 0x0A
	ToggleValve     ToolSubCommand = 0x0D
	ToggleMotor1    ToolSubCommand = 0x0B
	ToggleServo1    ToolSubCommand = 0x17
	ToggleServo2    ToolSubCommand = 0x18
)

// DisplayMessage option bits (spec.md §4.4).
const (
	DisplayMessagePreserve    = 0b001
	DisplayMessagePush        = 0b010
	DisplayMessageWaitButton  = 0b100
)

// Button-wait behavior bits (spec.md §3, "Button-wait context").
const (
	ButtonBehaviorAbortOnTimeout   = 0b01
	ButtonBehaviorClearScreenOnHit = 0b10
)
