// Package piezo declares the piezo speaker collaborator. Waveform
// generation is out of scope for the core (spec.md §1); the core only
// ever requests a tune or a tone.
package piezo

// Tune identifies a canned melody played by the piezo collaborator.
type Tune uint8

const (
	TunePrintStart Tune = iota
	TuneFilamentStart
)

// Piezo is the collaborator surface named in spec.md §6.
type Piezo interface {
	PlayTune(id Tune)
	SetTone(freqHz, lengthMS uint16)
}
