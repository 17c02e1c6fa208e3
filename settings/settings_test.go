package settings

import (
	"errors"

	"motioncore.dev/point"
	"testing"
)

type fakeStorage struct {
	mem [4096]byte
}

func (f *fakeStorage) ReadAt(addr uint32, buf []byte) error {
	if int(addr)+len(buf) > len(f.mem) {
		return errors.New("fakeStorage: out of range")
	}
	copy(buf, f.mem[addr:])
	return nil
}

func (f *fakeStorage) WriteAt(addr uint32, buf []byte) error {
	if int(addr)+len(buf) > len(f.mem) {
		return errors.New("fakeStorage: out of range")
	}
	copy(f.mem[addr:], buf)
	return nil
}

func TestAxisHomePositionRoundTrip(t *testing.T) {
	s := New(&fakeStorage{}, nil)
	if err := s.SetAxisHomePositionMM(point.Z, 150.5); err != nil {
		t.Fatal(err)
	}
	got, err := s.AxisHomePositionMM(point.Z)
	if err != nil {
		t.Fatal(err)
	}
	if got != 150.5 {
		t.Fatalf("got %v, want 150.5", got)
	}
	// Other axes are untouched.
	if got, _ := s.AxisHomePositionMM(point.X); got != 0 {
		t.Fatalf("axis X = %v, want 0", got)
	}
}

func TestBotConfigSaveLoad(t *testing.T) {
	st := &fakeStorage{}
	s := New(st, nil)
	cfg := BotConfig{
		BotType:        0x0001,
		VersionMajor:   2,
		VersionMinor:   9,
		VersionExtra:   0,
		SingleTool:     false,
		HeatedPlatform: true,
	}
	if err := s.Save(cfg); err != nil {
		t.Fatal(err)
	}
	s2 := New(st, nil)
	if err := s2.Load(); err != nil {
		t.Fatal(err)
	}
	if !s2.HasHeatedPlatform() {
		t.Fatal("HasHeatedPlatform should be true after load")
	}
	if s2.IsSingleTool() {
		t.Fatal("IsSingleTool should be false after load")
	}
	if s2.BotType() != 0x0001 {
		t.Fatalf("BotType = %#x, want 0x0001", s2.BotType())
	}
	if !s2.StreamVersionMatches(2, 9, 0) {
		t.Fatal("StreamVersionMatches should match saved version")
	}
}

func TestBotConfigChecksumMismatch(t *testing.T) {
	st := &fakeStorage{}
	s := New(st, nil)
	if err := s.Save(BotConfig{BotType: 7}); err != nil {
		t.Fatal(err)
	}
	// Corrupt a payload byte without updating the checksum.
	st.mem[botConfigBase+3] ^= 0xFF

	s2 := New(st, nil)
	if err := s2.Load(); err == nil {
		t.Fatal("expected checksum mismatch error")
	}
}

func TestFactoryReset(t *testing.T) {
	st := &fakeStorage{}
	s := New(st, nil)
	s.SetAxisHomePositionMM(point.X, 42)
	s.Save(BotConfig{BotType: 99, SingleTool: true})

	if err := s.FactoryReset(); err != nil {
		t.Fatal(err)
	}
	if got, _ := s.AxisHomePositionMM(point.X); got != 0 {
		t.Fatalf("axis X after reset = %v, want 0", got)
	}
	if s.IsSingleTool() {
		t.Fatal("IsSingleTool should be false after factory reset")
	}
}
