package command

// MaxLineCount bounds line_number's saturating counter. The wire
// protocol never specifies a concrete ceiling; this is a platform
// calibration in the same spirit as the sleep machine's motion rates.
const MaxLineCount = 1_000_000_000

// Session holds the process-wide counters and flags spec.md §3 names,
// mutated only from the dispatcher.
type Session struct {
	LineNumber       uint32
	CurrentToolIndex uint8
	SDBytesConsumed  uint32
	SDFailCount      uint8

	Paused                 bool
	HeatShutdown           bool
	CheckTempState         bool
	SDCardReset            bool
	StartBuildFlag         bool
	PlatformOnFlag         bool
	OutstandingToolCommand bool
}

// Reset returns the session to its initial values.
func (s *Session) Reset() {
	*s = Session{}
}

// bumpLineNumber increments line_number, saturating at
// MaxLineCount+1 (spec.md §4.3, §8's quantified invariant).
func (s *Session) bumpLineNumber() {
	if s.LineNumber < MaxLineCount+1 {
		s.LineNumber++
	}
}
