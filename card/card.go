// Package card declares the storage-card playback and onboard
// utility-script collaborators consumed by SourceMux. Block I/O and
// script execution themselves are out of scope for the core
// (spec.md §1).
package card

// Card is the storage-card playback collaborator (spec.md §6).
type Card interface {
	IsPlaying() bool
	PlaybackHasNext() bool
	PlaybackNext() byte
	GetFileSize() uint32
	FinishPlayback()
}

// UtilityScript is the onboard-script playback collaborator
// (spec.md §6). It shares Card's drain/finish shape but has no
// reliability watchdog (spec.md §4.2).
type UtilityScript interface {
	IsPlaying() bool
	PlaybackHasNext() bool
	PlaybackNext() byte
	FinishPlayback()
}
