package bitstream

import (
	"fmt"

	"github.com/ugparu/vpcc/utils/bits"
)

// fieldWriter writes named syntax elements and keeps the first error, so a
// structure can be written straight through and checked once at the end.
type fieldWriter struct {
	w   *bits.Writer
	err error
}

func newFieldWriter(capacity int) *fieldWriter {
	return &fieldWriter{w: bits.NewWriter(capacity)}
}

func (fw *fieldWriter) wrap(name string, err error) {
	if err == nil || fw.err != nil {
		return
	}
	fw.err = &SyntaxError{Kind: ErrFieldOverflow, Element: name, Offset: fw.w.Len(), Err: err}
}

// fail records an unsupported combination of values for element name.
func (fw *fieldWriter) fail(name string, format string, args ...any) {
	if fw.err != nil {
		return
	}
	fw.err = newSyntaxError(ErrUnsupportedConfiguration, name, fw.w.Len(), format, args...)
}

// require fails with ErrUnsupportedConfiguration unless cond holds.
func (fw *fieldWriter) require(cond bool, name string, format string, args ...any) bool {
	if !cond {
		fw.fail(name, format, args...)
	}
	return cond && fw.err == nil
}

func (fw *fieldWriter) u(name string, v uint64, n int) {
	if fw.err != nil {
		return
	}
	fw.wrap(name, fw.w.WriteBits64(v, n))
}

func (fw *fieldWriter) i32(name string, v int32) {
	fw.u(name, uint64(uint32(v)), 32) //nolint:gosec,mnd // i(32) is the two's complement pattern
}

func (fw *fieldWriter) flag(name string, b bool) {
	if fw.err != nil {
		return
	}
	fw.w.WriteFlag(b)
}

func (fw *fieldWriter) ue(name string, v uint32) {
	if fw.err != nil {
		return
	}
	fw.w.WriteExponentialGolombCode(v)
}

func (fw *fieldWriter) se(name string, v int32) {
	if fw.err != nil {
		return
	}
	fw.w.WriteSE(v)
}

func (fw *fieldWriter) align() {
	if fw.err != nil {
		return
	}
	fw.w.WriteAlignment()
}

func (fw *fieldWriter) bytes(name string, b []byte) {
	if fw.err != nil {
		return
	}
	fw.wrap(name, fw.w.WriteBytes(b))
}

// fieldReader is the decoding counterpart of fieldWriter. After the first
// failure every read returns a zero value.
type fieldReader struct {
	r   *bits.Reader
	err error
}

func newFieldReader(b []byte) *fieldReader {
	return &fieldReader{r: bits.NewReader(b)}
}

func (fr *fieldReader) wrap(name string, offset int, err error) {
	if err == nil || fr.err != nil {
		return
	}
	fr.err = &SyntaxError{Kind: ErrMalformedBitstream, Element: name, Offset: offset, Err: err}
}

func (fr *fieldReader) fail(name string, format string, args ...any) {
	if fr.err != nil {
		return
	}
	fr.err = newSyntaxError(ErrMalformedBitstream, name, fr.r.Pos(), format, args...)
}

// require fails with ErrMalformedBitstream unless cond holds.
func (fr *fieldReader) require(cond bool, name string, format string, args ...any) bool {
	if !cond {
		fr.fail(name, format, args...)
	}
	return cond && fr.err == nil
}

func (fr *fieldReader) u(name string, n int) uint64 {
	if fr.err != nil {
		return 0
	}
	pos := fr.r.Pos()
	v, err := fr.r.ReadBits64(n)
	fr.wrap(name, pos, err)
	return v
}

func (fr *fieldReader) u8(name string, n int) uint8 {
	return uint8(fr.u(name, n)) //nolint:gosec // callers pass n <= 8
}

func (fr *fieldReader) u16(name string, n int) uint16 {
	return uint16(fr.u(name, n)) //nolint:gosec // callers pass n <= 16
}

func (fr *fieldReader) u32(name string, n int) uint32 {
	return uint32(fr.u(name, n)) //nolint:gosec // callers pass n <= 32
}

func (fr *fieldReader) i32(name string) int32 {
	return int32(fr.u32(name, 32)) //nolint:gosec,mnd // i(32) is the two's complement pattern
}

func (fr *fieldReader) flag(name string) bool {
	return fr.u(name, 1) == 1
}

func (fr *fieldReader) ue(name string) uint32 {
	if fr.err != nil {
		return 0
	}
	pos := fr.r.Pos()
	v, err := fr.r.ReadExponentialGolombCode()
	fr.wrap(name, pos, err)
	return v
}

func (fr *fieldReader) se(name string) int32 {
	if fr.err != nil {
		return 0
	}
	pos := fr.r.Pos()
	v, err := fr.r.ReadSE()
	fr.wrap(name, pos, err)
	return v
}

func (fr *fieldReader) align(name string) {
	if fr.err != nil {
		return
	}
	pos := fr.r.Pos()
	fr.wrap(name, pos, fr.r.ReadAlignment())
}

func (fr *fieldReader) bytes(name string, n int) []byte {
	if fr.err != nil {
		return nil
	}
	pos := fr.r.Pos()
	b, err := fr.r.ReadBytes(n)
	fr.wrap(name, pos, err)
	return b
}

// count validates a decoded element count against the bits left in the
// stream, each element taking at least minBits bits.
func (fr *fieldReader) count(name string, n uint32, minBits int) int {
	if fr.err != nil {
		return 0
	}
	if uint64(n)*uint64(minBits) > uint64(fr.r.Left()) { //nolint:gosec // Left is non-negative
		fr.wrap(name, fr.r.Pos(), fmt.Errorf("count %d exceeds remaining data: %w", n, bits.ErrUnexpectedEnd))
		return 0
	}
	return int(n)
}

