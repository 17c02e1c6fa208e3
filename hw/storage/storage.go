// Package storage implements the settings.Storage collaborator on top
// of a flat host file, standing in for the byte-addressable EEPROM/
// battery-backed SRAM region a real board would use.
package storage

import (
	"fmt"
	"os"

	"motioncore.dev/settings"
)

// File is a settings.Storage backed by a single host file, grown to
// size on first Open.
type File struct {
	f *os.File
}

var _ settings.Storage = (*File)(nil)

// size is large enough to hold the axis-home-position region and the
// bot-config record settings.go lays out (settings.botConfigBase +
// settings.botConfigSize), with headroom.
const size = 4096

// Open opens (creating if necessary) path as the backing file.
func Open(path string) (*File, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o600)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	if info, err := f.Stat(); err == nil && info.Size() < size {
		if err := f.Truncate(size); err != nil {
			f.Close()
			return nil, fmt.Errorf("storage: %w", err)
		}
	}
	return &File{f: f}, nil
}

func (s *File) ReadAt(addr uint32, buf []byte) error {
	_, err := s.f.ReadAt(buf, int64(addr))
	return err
}

func (s *File) WriteAt(addr uint32, buf []byte) error {
	_, err := s.f.WriteAt(buf, int64(addr))
	return err
}

// Close closes the backing file.
func (s *File) Close() error {
	return s.f.Close()
}
