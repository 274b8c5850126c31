// Package bits implements MSB-first bit readers and writers with the
// exp-Golomb codes used by video parameter set syntax.
package bits

import "errors"

var (
	ErrInvalidWidth      = errors.New("bits: invalid field width")
	ErrValueOverflow     = errors.New("bits: value does not fit field width")
	ErrUnexpectedEnd     = errors.New("bits: unexpected end of stream")
	ErrAlignmentMismatch = errors.New("bits: alignment bit is not 1")
	ErrGolombOverflow    = errors.New("bits: exp-Golomb code too long")
	ErrNotByteAligned    = errors.New("bits: position is not byte aligned")
)

// maxGolombLeadingZeros bounds ue(v) prefixes to codes of at most 2^32 + 2^32 - 1,
// enough for every uint32 and every int32 mapped through se(v).
const maxGolombLeadingZeros = 32

const byteSize = 8

// seToCode maps a signed value onto its se(v) code number.
func seToCode(v int32) uint64 {
	if v > 0 {
		return uint64(v)*2 - 1
	}
	return uint64(-int64(v)) * 2 //nolint:gosec // -int64(v) is non-negative here
}

// codeToSE maps an se(v) code number back onto a signed value.
func codeToSE(code uint64) (int64, bool) {
	var v int64
	if code&1 != 0 {
		v = int64((code + 1) / 2) //nolint:gosec // code < 2^33
	} else {
		v = -int64(code / 2) //nolint:gosec // code < 2^33
	}
	if v > int64(^uint32(0)>>1) || v < -int64(^uint32(0)>>1)-1 {
		return 0, false
	}
	return v, true
}
