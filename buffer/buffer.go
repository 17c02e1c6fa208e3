// Package buffer implements the fixed-capacity byte ring shared
// between a single byte producer (possibly interrupt-driven) and the
// single command-slice consumer.
package buffer

import (
	"encoding/binary"
	"math"
)

// Capacity is the ring's fixed size in bytes.
const Capacity = 512

// CriticalSection runs fn with the producer excluded, so a capacity
// or length snapshot taken inside fn is atomic with respect to push.
// On bare metal this wraps an interrupt mask/restore; on a host build
// it wraps a mutex. The zero value runs fn directly, which is correct
// for single-goroutine use (e.g. in tests).
type CriticalSection func(fn func())

func defaultCritical(fn func()) { fn() }

// Buffer is a head/tail/length byte ring. It is not required to be a
// power-of-two size; spec.md §4.1 explicitly allows a plain ring.
type Buffer struct {
	data     [Capacity]byte
	head     int // next byte to pop
	len      int
	critical CriticalSection
}

// New returns an empty Buffer. cs may be nil, in which case capacity
// and length reads are not protected against concurrent push — fine
// for single-threaded use, but the caller is responsible for supplying
// a real critical section when push happens from an interrupt.
func New(cs CriticalSection) *Buffer {
	if cs == nil {
		cs = defaultCritical
	}
	return &Buffer{critical: cs}
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.critical(func() {
		b.head = 0
		b.len = 0
	})
}

// Length returns the number of bytes currently queued. It is read
// with the producer excluded, so it is atomic with respect to Push.
func (b *Buffer) Length() int {
	var n int
	b.critical(func() { n = b.len })
	return n
}

// RemainingCapacity returns Capacity - Length, atomically.
func (b *Buffer) RemainingCapacity() int {
	var n int
	b.critical(func() { n = Capacity - b.len })
	return n
}

// Push appends c at the tail. Pushing onto a full buffer is a producer
// error and must not silently overwrite data, so Push returns no error
// value; it reports whether it succeeded, and it is the producer's
// responsibility to stop feeding bytes once the buffer won't accept
// them (SourceMux checks RemainingCapacity before every push).
func (b *Buffer) Push(c byte) bool {
	ok := false
	b.critical(func() {
		if b.len >= Capacity {
			return
		}
		idx := (b.head + b.len) % Capacity
		b.data[idx] = c
		b.len++
		ok = true
	})
	return ok
}

// Peek returns the byte at the given offset from the head without
// consuming it. It panics if index is out of range of the current
// length — callers must check Length first.
func (b *Buffer) Peek(index int) byte {
	var c byte
	inRange := false
	b.critical(func() {
		if index < b.len {
			c = b.data[(b.head+index)%Capacity]
			inRange = true
		}
	})
	if !inRange {
		panic("buffer: peek past length")
	}
	return c
}

func (b *Buffer) popByte() byte {
	var c byte
	b.critical(func() {
		c = b.data[b.head]
		b.head = (b.head + 1) % Capacity
		b.len--
	})
	return c
}

// PopU8 consumes and returns one byte. Callers must ensure Length() >= 1.
func (b *Buffer) PopU8() uint8 {
	return b.popByte()
}

// PopI16 consumes and returns a little-endian signed 16-bit value.
// Callers must ensure Length() >= 2.
func (b *Buffer) PopI16() int16 {
	var raw [2]byte
	raw[0] = b.popByte()
	raw[1] = b.popByte()
	return int16(binary.LittleEndian.Uint16(raw[:]))
}

// PopU16 consumes and returns a little-endian unsigned 16-bit value.
// Callers must ensure Length() >= 2.
func (b *Buffer) PopU16() uint16 {
	var raw [2]byte
	raw[0] = b.popByte()
	raw[1] = b.popByte()
	return binary.LittleEndian.Uint16(raw[:])
}

// PopI32 consumes and returns a little-endian signed 32-bit value.
// Callers must ensure Length() >= 4.
func (b *Buffer) PopI32() int32 {
	var raw [4]byte
	for i := range raw {
		raw[i] = b.popByte()
	}
	return int32(binary.LittleEndian.Uint32(raw[:]))
}

// PopU32 consumes and returns a little-endian unsigned 32-bit value.
// Callers must ensure Length() >= 4.
func (b *Buffer) PopU32() uint32 {
	var raw [4]byte
	for i := range raw {
		raw[i] = b.popByte()
	}
	return binary.LittleEndian.Uint32(raw[:])
}

// PopF32 consumes a little-endian IEEE-754 bit pattern and returns it
// as a float32, without interpreting the value. Callers must ensure
// Length() >= 4.
func (b *Buffer) PopF32() float32 {
	var raw [4]byte
	for i := range raw {
		raw[i] = b.popByte()
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(raw[:]))
}

// Skip discards n bytes, used for reserved/ignored fields. Callers
// must ensure Length() >= n.
func (b *Buffer) Skip(n int) {
	for range n {
		b.popByte()
	}
}
