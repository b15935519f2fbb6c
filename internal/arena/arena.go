// Package arena implements the owned-byte-buffer container the Quartet
// voice-set parser builds on top of.
//
// The original player expresses a file's in-memory image as a raw pointer
// plus a length, with padding bytes appended past the valid region so that
// loop-wrap and interpolation reads never run off the end of the
// allocation. Carrying that forward as bare []byte slices would leave every
// borrower free to reslice past what was actually validated. Arena keeps
// the full backing allocation (valid bytes + pad) together with the valid
// length, and hands out either view explicitly.
package arena

import "fmt"

// Arena is an owned byte buffer of len Valid "real" bytes, optionally
// followed by Pad zeroed (or caller-filled) bytes reserved for safe
// over-reads.
type Arena struct {
	buf   []byte
	valid int
}

// New allocates an Arena holding a copy of data, followed by pad zero
// bytes. pad may be zero.
func New(data []byte, pad int) *Arena {
	buf := make([]byte, len(data)+pad)
	copy(buf, data)
	return &Arena{buf: buf, valid: len(data)}
}

// Bytes returns the valid region only.
func (a *Arena) Bytes() []byte { return a.buf[:a.valid] }

// Full returns the valid region plus its pad.
func (a *Arena) Full() []byte { return a.buf }

// Len reports the valid byte count.
func (a *Arena) Len() int { return a.valid }

// Cap reports the full backing length, valid bytes plus pad.
func (a *Arena) Cap() int { return len(a.buf) }

// Truncate drops the arena's valid length to a multiple of n, discarding the
// remainder into the pad region rather than the backing array.
func (a *Arena) Truncate(n int) {
	a.valid -= a.valid % n
}

// Slice returns a[off:off+n] of the valid-or-padded full buffer, bounds
// checked against Cap, not Len — callers that need to stay inside the
// validated region should check against Len themselves first.
func (a *Arena) Slice(off, n int) ([]byte, error) {
	if off < 0 || n < 0 || off+n > len(a.buf) {
		return nil, fmt.Errorf("arena: slice [%d:%d] out of range for capacity %d", off, off+n, len(a.buf))
	}
	return a.buf[off : off+n], nil
}
