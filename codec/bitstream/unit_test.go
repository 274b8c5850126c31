package bitstream

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
	"github.com/ugparu/vpcc"
	"github.com/ugparu/vpcc/utils/bits"
)

func requireKind(t *testing.T, err error, kind error) *SyntaxError {
	t.Helper()
	require.Error(t, err)
	require.ErrorIs(t, err, kind)
	var se *SyntaxError
	require.True(t, errors.As(err, &se), "error %v is not a *SyntaxError", err)
	return se
}

func TestEncodeDecode_RoundTrip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		ctx  func() *Context
	}{
		{name: "minimal", ctx: newMinimalContext},
		{name: "full", ctx: newTestContext},
		{
			name: "absolute_d1_single_geometry_stream",
			ctx: func() *Context {
				ctx := newMinimalContext()
				ctx.SPS.LayerCount = 2
				ctx.SPS.Layers = []LayerParameters{{AbsoluteCodingEnabled: true}}
				return ctx
			},
		},
		{
			name: "empty_video_streams",
			ctx: func() *Context {
				ctx := newMinimalContext()
				ctx.Video = [vpcc.VideoTypeCount][]byte{}
				return ctx
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			want := tt.ctx()
			b, err := Encode(want)
			require.NoError(t, err)

			got, err := Decode(b)
			require.NoError(t, err)
			if diff := cmp.Diff(want, got, cmpopts.EquateEmpty()); diff != "" {
				t.Fatalf("decoded context mismatch (-want +got):\n%s", diff)
			}

			again, err := Encode(got)
			require.NoError(t, err)
			require.Equal(t, b, again)
		})
	}
}

func TestEncode_SequenceUnitHeader(t *testing.T) {
	t.Parallel()

	b, err := Encode(newMinimalContext())
	require.NoError(t, err)

	// u(5) SPS type and 27 reserved bits, then the tier flag and profile.
	require.Equal(t, []byte{0x00, 0x00, 0x00, 0x00}, b[:unitHeaderBits/8])
	require.Equal(t, byte(0x81), b[4])
}

func TestUnitHeader_Width(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		multi bool
		pcm   bool
	}{
		{name: "single_layer", multi: false, pcm: false},
		{name: "multi_layer", multi: true, pcm: false},
		{name: "single_layer_pcm_separate", multi: false, pcm: true},
		{name: "multi_layer_pcm_separate", multi: true, pcm: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := NewContext()
			ctx.SPS.LayerCount = 2
			ctx.SPS.Layers = []LayerParameters{{}}
			ctx.SPS.MultipleLayerStreamsPresent = tt.multi
			ctx.SPS.PCMPatchEnabled = tt.pcm
			ctx.SPS.PCMSeparateVideoPresent = tt.pcm
			ctx.SPS.Attributes = make([]AttributeParameterSet, 128)
			ctx.Unit = UnitParams{AttributeIndex: 127, PCMVideoFlag: tt.pcm}

			for _, ut := range vpcc.UnitOrder {
				fw := newFieldWriter(4)
				writeUnitHeader(fw, ctx, ut)
				require.NoError(t, fw.err)
				require.Equal(t, unitHeaderBits, fw.w.Len(), "unit %v", ut)
			}
		})
	}
}

func TestUnitHeader_AttributeIndexRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		attributes int
		index      uint8
		wantErr    bool
	}{
		{name: "no_attributes", attributes: 0, index: 0},
		{name: "last_attribute", attributes: 2, index: 1},
		{name: "past_last_attribute", attributes: 2, index: 2, wantErr: true},
		{name: "index_without_attributes", attributes: 0, index: 1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := NewContext()
			ctx.SPS.Attributes = make([]AttributeParameterSet, tt.attributes)
			ctx.Unit.AttributeIndex = tt.index

			fw := newFieldWriter(4)
			writeUnitHeader(fw, ctx, vpcc.UnitAVD)
			if tt.wantErr {
				se := requireKind(t, fw.err, ErrUnsupportedConfiguration)
				require.Equal(t, unitAttrIndexElement, se.Element)
				return
			}
			require.NoError(t, fw.err)

			got := NewContext()
			got.SPS.Attributes = make([]AttributeParameterSet, tt.attributes)
			fr := newFieldReader(fw.w.Bytes())
			readUnitHeader(fr, got, vpcc.UnitAVD)
			require.NoError(t, fr.err)
			require.Equal(t, tt.index, got.Unit.AttributeIndex)
		})
	}
}

func TestDecode_AttributeIndexOutOfRange(t *testing.T) {
	t.Parallel()

	src := NewContext()
	src.SPS.Attributes = make([]AttributeParameterSet, 3)
	src.Unit.AttributeIndex = 2
	fw := newFieldWriter(4)
	writeUnitHeader(fw, src, vpcc.UnitAVD)
	require.NoError(t, fw.err)

	ctx := NewContext()
	ctx.SPS.Attributes = make([]AttributeParameterSet, 1)
	fr := newFieldReader(fw.w.Bytes())
	readUnitHeader(fr, ctx, vpcc.UnitAVD)
	se := requireKind(t, fr.err, ErrMalformedBitstream)
	require.Equal(t, unitAttrIndexElement, se.Element)
}

func TestDecodeFrames(t *testing.T) {
	t.Parallel()

	want := newTestContext()
	b, err := Encode(want)
	require.NoError(t, err)

	ctx, frames, err := DecodeFrames(b)
	require.NoError(t, err)
	resolved, err := Resolve(ctx)
	require.NoError(t, err)
	require.Equal(t, resolved, frames)
	require.Len(t, frames, len(want.Frames))

	_, frames, err = DecodeFrames(b[:len(b)-1])
	requireKind(t, err, ErrMalformedBitstream)
	require.Nil(t, frames)
}

func TestEncode_PCMVideoFlagNotRepresentable(t *testing.T) {
	t.Parallel()

	ctx := newMinimalContext()
	ctx.Unit.PCMVideoFlag = true
	_, err := Encode(ctx)
	se := requireKind(t, err, ErrUnsupportedConfiguration)
	require.Equal(t, unitPCMVideoElement, se.Element)
}

func TestEncode_StreamNotCarried(t *testing.T) {
	t.Parallel()

	ctx := newTestContext()
	ctx.Video[vpcc.VideoGeometry] = []byte{0x01}
	_, err := Encode(ctx)
	se := requireKind(t, err, ErrUnsupportedConfiguration)
	require.Equal(t, videoPayloadElement, se.Element)
}

func TestEncode_NilContext(t *testing.T) {
	t.Parallel()

	_, err := Encode(nil)
	requireKind(t, err, ErrUnsupportedConfiguration)
}

func TestDecode_Truncated(t *testing.T) {
	t.Parallel()

	b, err := Encode(newTestContext())
	require.NoError(t, err)

	for n := range len(b) {
		_, err := Decode(b[:n])
		requireKind(t, err, ErrMalformedBitstream)
	}
}

func TestDecode_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(b []byte) []byte
		element string
		cause   error
	}{
		{
			name:    "reserved_bits_set",
			mutate:  func(b []byte) []byte { b[0] |= 0x01; return b },
			element: reservedZeroElement,
		},
		{
			name:    "unexpected_unit_type",
			mutate:  func(b []byte) []byte { b[0] = byte(vpcc.UnitPSD) << 3; return b },
			element: unitTypeElement,
		},
		{
			// The minimal sequence parameter set body is 157 bits, so its
			// alignment bit is bit 189 of the stream.
			name: "sequence_alignment_bit_cleared",
			mutate: func(b []byte) []byte {
				if b[23]&0x04 == 0 {
					panic("alignment bit is not where expected")
				}
				b[23] &^= 0x04
				return b
			},
			element: "sps_byte_alignment",
			cause:   bits.ErrAlignmentMismatch,
		},
		{
			name:    "trailing_bytes",
			mutate:  func(b []byte) []byte { return append(b, 0x00) },
			element: unitTypeElement,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			b, err := Encode(newMinimalContext())
			require.NoError(t, err)

			_, err = Decode(tt.mutate(b))
			se := requireKind(t, err, ErrMalformedBitstream)
			require.Equal(t, tt.element, se.Element)
			if tt.cause != nil {
				require.ErrorIs(t, err, tt.cause)
			}
		})
	}
}

func TestDecode_SequenceIDMismatch(t *testing.T) {
	t.Parallel()

	ctx := newMinimalContext()
	b, err := Encode(ctx)
	require.NoError(t, err)

	// The PSD header follows the 24 byte sequence unit: u(5) type, u(4) id.
	psd := 24
	require.Equal(t, byte(vpcc.UnitPSD)<<3|ctx.SPS.ID>>1, b[psd])
	b[psd] ^= 0x01

	_, err = Decode(b)
	se := requireKind(t, err, ErrMalformedBitstream)
	require.Equal(t, unitSPSIDElement, se.Element)
}

func TestDecode_DanglingPatchReference(t *testing.T) {
	t.Parallel()

	ctx := newTestContext()
	ip := ctx.Frames[0].Patches[0].(IntraPatch)
	ip.GeometryPatchParameterSetID = Overridden(uint32(99))
	ctx.Frames[0].Patches[0] = ip

	_, err := Encode(ctx)
	requireKind(t, err, ErrUnsupportedConfiguration)

	b, err := encodeUnits(ctx)
	require.NoError(t, err)
	_, err = Decode(b)
	se := requireKind(t, err, ErrMalformedBitstream)
	require.Equal(t, -1, se.Offset)
	require.Contains(t, se.Element, "pid_geometry_patch_parameter_set_id")
}

func TestVideoStreams(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		sps  SequenceParameterSet
		want []vpcc.VideoType
	}{
		{
			name: "single_layer",
			sps:  SequenceParameterSet{LayerCount: 1},
			want: []vpcc.VideoType{vpcc.VideoOccupancy, vpcc.VideoGeometry},
		},
		{
			name: "two_depth_streams",
			sps:  SequenceParameterSet{LayerCount: 2, Layers: []LayerParameters{{}}},
			want: []vpcc.VideoType{vpcc.VideoOccupancy, vpcc.VideoGeometryD0, vpcc.VideoGeometryD1},
		},
		{
			name: "absolute_d1_with_attribute_and_pcm",
			sps: SequenceParameterSet{
				LayerCount:              2,
				Layers:                  []LayerParameters{{AbsoluteCodingEnabled: true}},
				PCMPatchEnabled:         true,
				PCMSeparateVideoPresent: true,
				Attributes:              []AttributeParameterSet{{}},
			},
			want: []vpcc.VideoType{
				vpcc.VideoOccupancy, vpcc.VideoGeometry, vpcc.VideoGeometryMissedPoints,
				vpcc.VideoTexture, vpcc.VideoTextureMissedPoints,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, VideoStreams(&tt.sps))
		})
	}
}
