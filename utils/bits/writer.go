package bits

import mathbits "math/bits"

// Writer appends MSB-first bit fields to an in-memory buffer.
type Writer struct {
	buf  []byte
	cur  byte
	left uint8 // bits already placed in cur
}

func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// Len returns the number of bits written so far.
func (w *Writer) Len() int {
	return len(w.buf)*byteSize + int(w.left)
}

func (w *Writer) ByteAligned() bool {
	return w.left == 0
}

func (w *Writer) WriteBit(bit uint) {
	w.cur = w.cur<<1 | byte(bit&1)
	w.left++
	if w.left == byteSize {
		w.buf = append(w.buf, w.cur)
		w.cur = 0
		w.left = 0
	}
}

func (w *Writer) WriteFlag(flag bool) {
	if flag {
		w.WriteBit(1)
	} else {
		w.WriteBit(0)
	}
}

// WriteBits64 appends the n low bits of v, 0 <= n <= 64. Values that need
// more than n bits are rejected instead of truncated.
func (w *Writer) WriteBits64(v uint64, n int) error {
	if n < 0 || n > 64 {
		return ErrInvalidWidth
	}
	if n < 64 && v>>n != 0 {
		return ErrValueOverflow
	}
	for i := n - 1; i >= 0; i-- {
		w.WriteBit(uint(v>>i) & 1)
	}
	return nil
}

func (w *Writer) WriteBits(v uint, n int) error {
	return w.WriteBits64(uint64(v), n)
}

func (w *Writer) writeGolombCode(code uint64) {
	x := code + 1
	length := mathbits.Len64(x)
	for range length - 1 {
		w.WriteBit(0)
	}
	for i := length - 1; i >= 0; i-- {
		w.WriteBit(uint(x>>i) & 1)
	}
}

// WriteExponentialGolombCode appends v as an unsigned exp-Golomb ue(v) code.
func (w *Writer) WriteExponentialGolombCode(v uint32) {
	w.writeGolombCode(uint64(v))
}

// WriteSE appends v as a signed exp-Golomb se(v) code.
func (w *Writer) WriteSE(v int32) {
	w.writeGolombCode(seToCode(v))
}

// WriteAlignment appends byte_alignment(): a 1 bit, then zero bits up to
// the next byte boundary. It always writes between 1 and 8 bits.
func (w *Writer) WriteAlignment() {
	w.WriteBit(1)
	for !w.ByteAligned() {
		w.WriteBit(0)
	}
}

// WriteBytes appends raw bytes. The writer must be byte aligned.
func (w *Writer) WriteBytes(b []byte) error {
	if !w.ByteAligned() {
		return ErrNotByteAligned
	}
	w.buf = append(w.buf, b...)
	return nil
}

// Bytes returns the written data. A trailing partial byte is padded with
// zero bits.
func (w *Writer) Bytes() []byte {
	out := make([]byte, len(w.buf), len(w.buf)+1)
	copy(out, w.buf)
	if w.left > 0 {
		out = append(out, w.cur<<(byteSize-w.left))
	}
	return out
}
