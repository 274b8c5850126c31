package bits

import (
	"math"
	"strconv"
)

// Reader reads MSB-first bit fields from an in-memory buffer.
type Reader struct {
	buf []byte
	pos int
}

func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Pos returns the number of bits consumed so far.
func (r *Reader) Pos() int {
	return r.pos
}

// Left returns the number of bits not consumed yet.
func (r *Reader) Left() int {
	return len(r.buf)*byteSize - r.pos
}

func (r *Reader) ByteAligned() bool {
	return r.pos%byteSize == 0
}

func (r *Reader) ReadBit() (res uint, err error) {
	if r.Left() < 1 {
		err = ErrUnexpectedEnd
		return
	}
	res = uint(r.buf[r.pos/byteSize]>>(byteSize-1-r.pos%byteSize)) & 1
	r.pos++
	return
}

func (r *Reader) ReadFlag() (bool, error) {
	bit, err := r.ReadBit()
	return bit == 1, err
}

// ReadBits64 reads an n-bit unsigned field, 0 <= n <= 64. A zero-width read
// returns 0 without consuming anything.
func (r *Reader) ReadBits64(n int) (res uint64, err error) {
	if n < 0 || n > 64 {
		err = ErrInvalidWidth
		return
	}
	if r.Left() < n {
		err = ErrUnexpectedEnd
		return
	}
	for range n {
		bit := uint64(r.buf[r.pos/byteSize]>>(byteSize-1-r.pos%byteSize)) & 1
		res = res<<1 | bit
		r.pos++
	}
	return
}

func (r *Reader) ReadBits32(n int) (res uint32, err error) {
	if n > 32 { //nolint:mnd // width of uint32
		err = ErrInvalidWidth
		return
	}
	var v uint64
	if v, err = r.ReadBits64(n); err != nil {
		return
	}
	res = uint32(v) //nolint:gosec // n <= 32
	return
}

func (r *Reader) ReadBits(n int) (res uint, err error) {
	if n > strconv.IntSize {
		err = ErrInvalidWidth
		return
	}
	var v uint64
	if v, err = r.ReadBits64(n); err != nil {
		return
	}
	res = uint(v)
	return
}

// readGolombCode reads the raw ue(v) code number.
func (r *Reader) readGolombCode() (code uint64, err error) {
	leadingZeros := 0
	for {
		var bit uint
		if bit, err = r.ReadBit(); err != nil {
			return
		}
		if bit == 1 {
			break
		}
		leadingZeros++
		if leadingZeros > maxGolombLeadingZeros {
			err = ErrGolombOverflow
			return
		}
	}
	var suffix uint64
	if suffix, err = r.ReadBits64(leadingZeros); err != nil {
		return
	}
	code = (uint64(1)<<leadingZeros | suffix) - 1
	return
}

// ReadExponentialGolombCode reads an unsigned exp-Golomb ue(v) value.
func (r *Reader) ReadExponentialGolombCode() (res uint32, err error) {
	var code uint64
	if code, err = r.readGolombCode(); err != nil {
		return
	}
	if code > math.MaxUint32 {
		err = ErrGolombOverflow
		return
	}
	res = uint32(code)
	return
}

// ReadSE reads a signed exp-Golomb se(v) value.
func (r *Reader) ReadSE() (res int32, err error) {
	var code uint64
	if code, err = r.readGolombCode(); err != nil {
		return
	}
	v, ok := codeToSE(code)
	if !ok {
		err = ErrGolombOverflow
		return
	}
	res = int32(v) //nolint:gosec // range checked by codeToSE
	return
}

// ReadAlignment consumes byte_alignment(): a single 1 bit followed by zero
// bits up to the next byte boundary.
func (r *Reader) ReadAlignment() error {
	bit, err := r.ReadBit()
	if err != nil {
		return err
	}
	if bit != 1 {
		return ErrAlignmentMismatch
	}
	for !r.ByteAligned() {
		if bit, err = r.ReadBit(); err != nil {
			return err
		}
		if bit != 0 {
			return ErrAlignmentMismatch
		}
	}
	return nil
}

// ReadBytes returns the next n whole bytes. The reader must be byte aligned.
// The returned slice aliases the underlying buffer.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if !r.ByteAligned() {
		return nil, ErrNotByteAligned
	}
	if n < 0 || r.Left()/byteSize < n {
		return nil, ErrUnexpectedEnd
	}
	start := r.pos / byteSize
	r.pos += n * byteSize
	return r.buf[start : start+n], nil
}
