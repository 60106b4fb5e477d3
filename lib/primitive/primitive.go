// Package primitive implements unaligned, big-endian read/write of the
// scalar types the bytecode codec's wire format is built from: 8/16/32
// bit unsigned integers, IEEE-754 doubles, and length-prefixed
// strings/buffers.
//
// Every Read function takes the remaining input slice and returns the
// decoded value plus the unconsumed remainder, so callers thread the
// cursor by reassigning their own slice variable rather than passing a
// pointer. Every Put function appends to a caller-supplied []byte and
// returns the grown slice, the same append-and-reassign idiom Go
// encourages for byte buffers.
package primitive

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// ErrShortInput is returned by the Read functions when fewer bytes
// remain than the value being decoded requires. It corresponds to
// spec.md §4.4's "soft bounds check" — callers treat it as a format
// error, not a memory-safety backstop.
var ErrShortInput = errors.New("primitive: short input")

// PutU8 appends a single byte.
func PutU8(dst []byte, v uint8) []byte {
	return append(dst, v)
}

// PutU16 appends v as two big-endian bytes.
func PutU16(dst []byte, v uint16) []byte {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	return append(dst, tmp[:]...)
}

// PutU32 appends v as four big-endian bytes.
func PutU32(dst []byte, v uint32) []byte {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	return append(dst, tmp[:]...)
}

// PutDouble appends v as two big-endian 32-bit words, high half first,
// where "high half" means the upper 32 bits of the IEEE-754 bit pattern
// returned by math.Float64bits. That pattern is the same on every host,
// so the output is the canonical big-endian IEEE-754 encoding; it equals
// duk__write_double's memory-image output on hosts that keep the high
// half of a double first (spec.md §4.2, §6).
func PutDouble(dst []byte, v float64) []byte {
	bits := math.Float64bits(v)
	hi := uint32(bits >> 32)
	lo := uint32(bits)
	dst = PutU32(dst, hi)
	dst = PutU32(dst, lo)
	return dst
}

// PutString appends a u32 length followed by s's bytes.
func PutString(dst []byte, s string) []byte {
	dst = PutU32(dst, uint32(len(s)))
	return append(dst, s...)
}

// PutBuffer appends a u32 length followed by b's bytes. A nil or empty
// buffer encodes as length 0, matching the "missing buffer" case of
// spec.md §4.2.
func PutBuffer(dst []byte, b []byte) []byte {
	dst = PutU32(dst, uint32(len(b)))
	return append(dst, b...)
}

// ReadU8 decodes one byte.
func ReadU8(p []byte) (uint8, []byte, error) {
	if len(p) < 1 {
		return 0, p, ErrShortInput
	}
	return p[0], p[1:], nil
}

// ReadU16 decodes a big-endian uint16.
func ReadU16(p []byte) (uint16, []byte, error) {
	if len(p) < 2 {
		return 0, p, ErrShortInput
	}
	return binary.BigEndian.Uint16(p), p[2:], nil
}

// ReadU32 decodes a big-endian uint32.
func ReadU32(p []byte) (uint32, []byte, error) {
	if len(p) < 4 {
		return 0, p, ErrShortInput
	}
	return binary.BigEndian.Uint32(p), p[4:], nil
}

// ReadDouble decodes two big-endian 32-bit words, high half first, into
// the float64 whose math.Float64bits pattern they form. It is the exact
// inverse of PutDouble; see its doc comment for how this relates to the
// host's double layout.
func ReadDouble(p []byte) (float64, []byte, error) {
	if len(p) < 8 {
		return 0, p, ErrShortInput
	}
	hi, p, err := ReadU32(p)
	if err != nil {
		return 0, p, err
	}
	lo, p, err := ReadU32(p)
	if err != nil {
		return 0, p, err
	}
	bits := uint64(hi)<<32 | uint64(lo)
	return math.Float64frombits(bits), p, nil
}

// ReadString decodes a u32 length followed by that many raw bytes,
// returned as a freshly allocated string (Go strings are immutable, so
// a copy is unavoidable and also what we want — the returned string must
// not alias the input buffer).
func ReadString(p []byte) (string, []byte, error) {
	n, p, err := ReadU32(p)
	if err != nil {
		return "", p, err
	}
	if uint64(len(p)) < uint64(n) {
		return "", p, ErrShortInput
	}
	return string(p[:n]), p[n:], nil
}

// ReadBuffer decodes a u32 length followed by that many raw bytes,
// returned as a freshly allocated []byte.
func ReadBuffer(p []byte) ([]byte, []byte, error) {
	n, p, err := ReadU32(p)
	if err != nil {
		return nil, p, err
	}
	if uint64(len(p)) < uint64(n) {
		return nil, p, ErrShortInput
	}
	out := make([]byte, n)
	copy(out, p[:n])
	return out, p[n:], nil
}
