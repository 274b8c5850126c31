package bits

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteBits_MaxValuePerWidth(t *testing.T) {
	t.Parallel()

	for n := 1; n <= 64; n++ {
		w := NewWriter(8)
		maxValue := uint64(math.MaxUint64) >> (64 - n)
		require.NoError(t, w.WriteBits64(maxValue, n), "width %d", n)
		require.Equal(t, n, w.Len())

		r := NewReader(w.Bytes())
		got, err := r.ReadBits64(n)
		require.NoError(t, err)
		require.Equal(t, maxValue, got, "width %d", n)
	}
}

func TestWriteBits_Overflow(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value uint64
		width int
		err   error
	}{
		{name: "one_bit", value: 2, width: 1, err: ErrValueOverflow},
		{name: "four_bits", value: 16, width: 4, err: ErrValueOverflow},
		{name: "zero_width_nonzero", value: 1, width: 0, err: ErrValueOverflow},
		{name: "width_65", value: 0, width: 65, err: ErrInvalidWidth},
		{name: "negative_width", value: 0, width: -1, err: ErrInvalidWidth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			w := NewWriter(1)
			require.ErrorIs(t, w.WriteBits64(tt.value, tt.width), tt.err)
			require.Zero(t, w.Len())
		})
	}
}

func TestWriteBits_MSBFirst(t *testing.T) {
	t.Parallel()

	w := NewWriter(2)
	require.NoError(t, w.WriteBits(0x5, 3))
	require.NoError(t, w.WriteBits(0x1b, 5))
	require.NoError(t, w.WriteBits(0x3, 2))
	require.Equal(t, []byte{0xbb, 0xc0}, w.Bytes())
}

func TestExponentialGolomb_RoundTrip(t *testing.T) {
	t.Parallel()

	values := []uint32{0, 1, 2, 3, 255, 1<<20 - 1, math.MaxUint32 - 1, math.MaxUint32}
	w := NewWriter(64)
	for _, v := range values {
		w.WriteExponentialGolombCode(v)
	}
	r := NewReader(w.Bytes())
	for _, v := range values {
		got, err := r.ReadExponentialGolombCode()
		require.NoError(t, err)
		require.Equal(t, v, got)
	}
}

func TestExponentialGolomb_Codewords(t *testing.T) {
	t.Parallel()

	tests := []struct {
		value uint32
		bits  int
		word  uint64
	}{
		{value: 0, bits: 1, word: 0b1},
		{value: 1, bits: 3, word: 0b010},
		{value: 2, bits: 3, word: 0b011},
		{value: 3, bits: 5, word: 0b00100},
		{value: 6, bits: 5, word: 0b00111},
		{value: 7, bits: 7, word: 0b0001000},
	}

	for _, tt := range tests {
		w := NewWriter(1)
		w.WriteExponentialGolombCode(tt.value)
		require.Equal(t, tt.bits, w.Len(), "ue(%d)", tt.value)
		got, err := NewReader(w.Bytes()).ReadBits64(tt.bits)
		require.NoError(t, err)
		require.Equal(t, tt.word, got, "ue(%d)", tt.value)
	}
}

func TestSignedExponentialGolomb(t *testing.T) {
	t.Parallel()

	values := []int32{0, 1, -1, 2, -2, 1000, -1000, math.MaxInt32, math.MinInt32}
	w := NewWriter(64)
	for _, v := range values {
		w.WriteSE(v)
	}
	r := NewReader(w.Bytes())
	for _, v := range values {
		got, err := r.ReadSE()
		require.NoError(t, err)
		require.Equal(t, v, got)
	}

	// se(v) code numbers: 0, 1, -1, 2 -> 0, 1, 2, 3
	w = NewWriter(1)
	w.WriteSE(-1)
	code, err := NewReader(w.Bytes()).ReadExponentialGolombCode()
	require.NoError(t, err)
	require.Equal(t, uint32(2), code)
}

func TestExponentialGolomb_TooLong(t *testing.T) {
	t.Parallel()

	r := NewReader(make([]byte, 8))
	_, err := r.ReadExponentialGolombCode()
	require.ErrorIs(t, err, ErrGolombOverflow)
}

func TestAlignment(t *testing.T) {
	t.Parallel()

	for prefix := range 16 {
		w := NewWriter(4)
		for range prefix {
			w.WriteBit(0)
		}
		before := w.Len()
		w.WriteAlignment()
		require.True(t, w.ByteAligned())
		require.Zero(t, w.Len()%8)
		padding := w.Len() - before
		require.GreaterOrEqual(t, padding, 1)
		require.LessOrEqual(t, padding, 8)

		r := NewReader(w.Bytes())
		_, err := r.ReadBits64(prefix)
		require.NoError(t, err)
		require.NoError(t, r.ReadAlignment())
		require.Zero(t, r.Left())
	}
}

func TestReadAlignment_Mismatch(t *testing.T) {
	t.Parallel()

	r := NewReader([]byte{0x00})
	require.ErrorIs(t, r.ReadAlignment(), ErrAlignmentMismatch)

	r = NewReader([]byte{0x41})
	_, err := r.ReadBits64(1)
	require.NoError(t, err)
	require.ErrorIs(t, r.ReadAlignment(), ErrAlignmentMismatch)
}

func TestReadBits_UnexpectedEnd(t *testing.T) {
	t.Parallel()

	r := NewReader([]byte{0xff})
	_, err := r.ReadBits64(9)
	require.ErrorIs(t, err, ErrUnexpectedEnd)
	require.Zero(t, r.Pos())

	_, err = r.ReadBits64(8)
	require.NoError(t, err)
	_, err = r.ReadBit()
	require.ErrorIs(t, err, ErrUnexpectedEnd)
}

func TestBytes_RequireAlignment(t *testing.T) {
	t.Parallel()

	w := NewWriter(8)
	w.WriteBit(1)
	require.ErrorIs(t, w.WriteBytes([]byte{1}), ErrNotByteAligned)
	w.WriteAlignment()
	require.NoError(t, w.WriteBytes([]byte{0xde, 0xad}))

	r := NewReader(w.Bytes())
	_, err := r.ReadBytes(1)
	require.NoError(t, err)
	b, err := r.ReadBytes(2)
	require.NoError(t, err)
	require.Equal(t, []byte{0xde, 0xad}, b)
	_, err = r.ReadBytes(1)
	require.ErrorIs(t, err, ErrUnexpectedEnd)
}
