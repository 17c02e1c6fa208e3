// Package source implements the SourceMux that multiplexes exactly one
// active byte producer — host link, card playback, or the onboard
// utility script — into the shared command buffer each slice
// (spec.md §4.2).
package source

import (
	"motioncore.dev/buffer"
	"motioncore.dev/card"
	"motioncore.dev/command"
)

// Kind selects which producer is currently active. Exactly one is
// live at a time; the other two are simply not polled.
type Kind int

const (
	HostLink Kind = iota
	CardPlayback
	UtilityScript
)

// staticFailThreshold is the number of consecutive short-read
// observations (playback exhausted but fewer bytes consumed than the
// declared file size) that trip the card reliability watchdog.
const staticFailThreshold = 6

// retractMM and retractRateMicros describe the Z-axis retract the
// watchdog commands once it trips.
const (
	retractMM         = 150
	retractRateMicros = 150
)

// Mux is the SourceMux. HostLink bytes arrive through the host link's
// own producer (a goroutine or interrupt handler pushing directly
// into buf); Mux.RunSlice has nothing to pull for that case and only
// drains Card/Utility, which are synchronous pull sources.
type Mux struct {
	Active  Kind
	Card    card.Card
	Utility card.UtilityScript
}

// RunSlice drains the active source into buf for one command slice.
// modeReady reports whether ModeMachine == READY, the finish-when-idle
// condition shared by both playback sources. onStaticFail is invoked
// once the watchdog trips; it is expected to perform the hardware-side
// safe-reset actions (interface reset, error surfacing, motion abort,
// heater zeroing, the retract move) since those require the same
// collaborators already held by the dispatcher.
func (m *Mux) RunSlice(buf *buffer.Buffer, sess *command.Session, modeReady bool, onStaticFail func()) {
	switch m.Active {
	case CardPlayback:
		m.runCard(buf, sess, modeReady, onStaticFail)
	case UtilityScript:
		m.runUtility(buf, modeReady)
	case HostLink:
	}
}

func (m *Mux) runCard(buf *buffer.Buffer, sess *command.Session, modeReady bool, onStaticFail func()) {
	pushedAny := false
	for buf.RemainingCapacity() > 0 && m.Card.PlaybackHasNext() {
		buf.Push(m.Card.PlaybackNext())
		sess.SDBytesConsumed++
		pushedAny = true
	}
	if pushedAny {
		sess.SDFailCount = 0
	}

	if m.Card.PlaybackHasNext() {
		return
	}

	if !sess.SDCardReset && sess.SDBytesConsumed < m.Card.GetFileSize() {
		sess.SDFailCount++
		if sess.SDFailCount >= staticFailThreshold {
			onStaticFail()
			buf.Reset()
			m.Card.FinishPlayback()
			sess.SDCardReset = true
			sess.SDFailCount = 0
			return
		}
		return
	}

	if buf.Length() == 0 && modeReady {
		m.Card.FinishPlayback()
	}
}

func (m *Mux) runUtility(buf *buffer.Buffer, modeReady bool) {
	for buf.RemainingCapacity() > 0 && m.Utility.PlaybackHasNext() {
		buf.Push(m.Utility.PlaybackNext())
	}
	if !m.Utility.PlaybackHasNext() && buf.Length() == 0 && modeReady {
		m.Utility.FinishPlayback()
	}
}
