// Package settings implements the persistent settings store: the two
// axis-home-position fields the core owns, plus a supplemental
// bot-configuration record (spec.md §3 expansion, SPEC_FULL.md §3).
//
// Axis home positions are stored as raw little-endian float32 values,
// matching the wire-decoding idiom used throughout this codebase
// (encoding/binary, as in proto and the adapted tmc2209 driver). The
// bot-configuration record is encoded with github.com/fxamacker/cbor/v2
// — the same structured-encoding dependency the teacher repository
// uses elsewhere — and trailed by a golang.org/x/crypto/blake2b
// checksum so a corrupted store is detected on load rather than
// silently misread.
package settings

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/blake2b"

	"motioncore.dev/point"
)

// Storage is the byte-addressable medium the store is laid out on
// (e.g. EEPROM or a battery-backed SRAM region). Each axis home
// position occupies 4 contiguous bytes and the bot-configuration record
// botConfigSize bytes; ReadAt/WriteAt must transfer all of buf per
// call (4 bytes for a home position, the whole record for Load/Save).
type Storage interface {
	ReadAt(addr uint32, buf []byte) error
	WriteAt(addr uint32, buf []byte) error
}

// CriticalSection runs fn with interrupts disabled, per spec.md §9:
// "Axis-home reads and writes execute with interrupts disabled because
// the underlying storage is byte-at-a-time and the producer ISR must
// not preempt." A platform with an atomic EEPROM primitive may pass a
// no-op section.
type CriticalSection func(fn func())

const (
	axisHomeBase  = 0x0000 // 5 axes * 4 bytes = 20 bytes
	botConfigBase = 0x0020
	botConfigSize = 256
)

// BotConfig is the supplemental record described in SPEC_FULL.md §3:
// it backs Settings.IsSingleTool / HasHeatedPlatform and the
// STREAM_VERSION / bot-type check in spec.md's opcode table.
type BotConfig struct {
	BotType        uint16
	VersionMajor   uint8
	VersionMinor   uint8
	VersionExtra   uint8
	SingleTool     bool
	HeatedPlatform bool
}

// Store is the persistent settings collaborator named in spec.md §6
// ("Settings"). It keeps the bot-configuration record cached in memory
// after the first successful Load, since it changes only on
// RESET_TO_FACTORY or an explicit factory reset.
type Store struct {
	storage  Storage
	critical CriticalSection
	cfg      BotConfig
	loaded   bool
}

// New returns a Store backed by storage. cs may be nil, meaning the
// caller accepts unprotected reads/writes (fine on a host build with a
// single goroutine touching storage).
func New(storage Storage, cs CriticalSection) *Store {
	if cs == nil {
		cs = func(fn func()) { fn() }
	}
	return &Store{storage: storage, critical: cs}
}

// AxisHomePositionOffset returns the byte address of axis i's stored
// home position, named AxisHomePositionMMOffset in spec.md §6.
func AxisHomePositionOffset(i point.Axis) uint32 {
	return axisHomeBase + uint32(i)*4
}

// AxisHomePositionMM reads the stored home position, in millimeters,
// for axis i.
func (s *Store) AxisHomePositionMM(i point.Axis) (float32, error) {
	var raw [4]byte
	var err error
	s.critical(func() {
		err = s.storage.ReadAt(AxisHomePositionOffset(i), raw[:])
	})
	if err != nil {
		return 0, fmt.Errorf("settings: read axis %d home position: %w", i, err)
	}
	return float32FromBits(raw[:]), nil
}

// SetAxisHomePositionMM writes the home position, in millimeters, for
// axis i.
func (s *Store) SetAxisHomePositionMM(i point.Axis, mm float32) error {
	var raw [4]byte
	bitsToBytes(mm, raw[:])
	var err error
	s.critical(func() {
		err = s.storage.WriteAt(AxisHomePositionOffset(i), raw[:])
	})
	if err != nil {
		return fmt.Errorf("settings: write axis %d home position: %w", i, err)
	}
	return nil
}

func float32FromBits(raw []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(raw))
}

func bitsToBytes(v float32, raw []byte) {
	binary.LittleEndian.PutUint32(raw, math.Float32bits(v))
}

// Load reads and verifies the bot-configuration record, caching it.
// A checksum mismatch reports an error so the caller can fall back to
// FactoryReset, matching the RESET_TO_FACTORY path (spec.md §4.3).
func (s *Store) Load() error {
	blob := make([]byte, botConfigSize)
	var err error
	s.critical(func() {
		err = s.storage.ReadAt(botConfigBase, blob)
	})
	if err != nil {
		return fmt.Errorf("settings: read bot config: %w", err)
	}
	sum := blob[len(blob)-blake2b.Size256:]
	payload := blob[:len(blob)-blake2b.Size256]
	n := int(binary.LittleEndian.Uint16(payload[:2]))
	if n < 0 || n > len(payload)-2 {
		return errors.New("settings: corrupt bot config length")
	}
	want := blake2b.Sum256(payload[:2+n])
	if !equalSum(want[:], sum) {
		return errors.New("settings: bot config checksum mismatch")
	}
	var cfg BotConfig
	if err := cbor.Unmarshal(payload[2:2+n], &cfg); err != nil {
		return fmt.Errorf("settings: decode bot config: %w", err)
	}
	s.cfg = cfg
	s.loaded = true
	return nil
}

// Save encodes and persists cfg, replacing the cached record.
func (s *Store) Save(cfg BotConfig) error {
	enc, err := cbor.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("settings: encode bot config: %w", err)
	}
	if len(enc) > botConfigSize-2-blake2b.Size256 {
		return errors.New("settings: bot config too large")
	}
	blob := make([]byte, botConfigSize)
	binary.LittleEndian.PutUint16(blob[:2], uint16(len(enc)))
	copy(blob[2:], enc)
	sum := blake2b.Sum256(blob[:2+len(enc)])
	copy(blob[len(blob)-blake2b.Size256:], sum[:])
	s.critical(func() {
		err = s.storage.WriteAt(botConfigBase, blob)
	})
	if err != nil {
		return fmt.Errorf("settings: write bot config: %w", err)
	}
	s.cfg = cfg
	s.loaded = true
	return nil
}

// IsSingleTool reports whether the bot is configured with one
// extruder, per spec.md's TOOL_COMMAND SET_TEMP guard.
func (s *Store) IsSingleTool() bool {
	return s.cfg.SingleTool
}

// HasHeatedPlatform reports whether the bot has a heated platform, per
// spec.md's SET_PLATFORM_TEMP guard.
func (s *Store) HasHeatedPlatform() bool {
	return s.cfg.HeatedPlatform
}

// BotType and StreamVersionMatches back the STREAM_VERSION opcode's
// mismatch checks (spec.md §4.3): both a version and a bot-type
// mismatch are non-fatal, informational errors.
func (s *Store) BotType() uint16 {
	return s.cfg.BotType
}

func (s *Store) StreamVersionMatches(major, minor, extra uint8) bool {
	return s.cfg.VersionMajor == major && s.cfg.VersionMinor == minor && s.cfg.VersionExtra == extra
}

// FactoryReset clears the bot-configuration record and all stored axis
// home positions, implementing RESET_TO_FACTORY (spec.md §4.3).
func (s *Store) FactoryReset() error {
	for i := point.Axis(0); i < point.NumAxes; i++ {
		if err := s.SetAxisHomePositionMM(i, 0); err != nil {
			return err
		}
	}
	return s.Save(BotConfig{})
}

func equalSum(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
