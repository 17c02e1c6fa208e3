package command

import (
	"motioncore.dev/buffer"
	"motioncore.dev/proto"
)

// maxTailScan bounds how far nextPacketSize will scan for a
// NUL-terminated tail field (DISPLAY_MESSAGE's text, BUILD_START_
// NOTIFICATION's build name) before giving up for this slice. The
// wire protocol gives no explicit length for either field; scanning
// for a terminator mirrors the size-gating discipline used by every
// other opcode in the table (never pop until the full packet is
// buffered).
const maxTailScan = buffer.Capacity

// nextPacketSize returns the total number of bytes — including the
// opcode byte — that must be buffered before op can be dispatched, and
// whether that size is known yet. For fixed-size opcodes this is
// immediate; for the three variable-length opcodes it requires
// additional buffered bytes to resolve.
func nextPacketSize(buf *buffer.Buffer, op proto.Opcode) (int, bool) {
	switch op {
	case proto.ToolCommand:
		const header = 4
		if buf.Length() < header {
			return 0, false
		}
		payloadLen := int(buf.Peek(header - 1))
		return header + payloadLen, true

	case proto.DisplayMessage:
		const header = 5 // opcode, options, x, y, timeout_seconds
		return scanNulTerminated(buf, header)

	case proto.BuildStartNotification:
		const header = 5 // opcode, step-count(i32)
		return scanNulTerminated(buf, header)

	default:
		sz, ok := proto.Size(op)
		return sz, ok
	}
}

// scanNulTerminated looks for a NUL terminator at or after offset
// header in buf, returning the total packet size (through and
// including the terminator) once found.
func scanNulTerminated(buf *buffer.Buffer, header int) (int, bool) {
	n := buf.Length()
	if n > maxTailScan {
		n = maxTailScan
	}
	for i := header; i < n; i++ {
		if buf.Peek(i) == 0 {
			return i + 1, true
		}
	}
	return 0, false
}
