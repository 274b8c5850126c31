package decoder

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/ugparu/vpcc"
	"github.com/ugparu/vpcc/codec/bitstream"
)

func TestMain(m *testing.M) {
	logrus.SetLevel(logrus.FatalLevel)
	m.Run()
}

func newSequence() *bitstream.Context {
	ctx := bitstream.NewContext()
	ctx.SPS = bitstream.SequenceParameterSet{
		ID:         2,
		Width:      320,
		Height:     240,
		LayerCount: 1,
		Occupancy:  bitstream.OccupancyParameterSet{CodecID: 1, PackingBlockSize: 16},
		Geometry:   bitstream.GeometryParameterSet{CodecID: 1, CoordinatesBitDepth: 10},
		Attributes: []bitstream.AttributeParameterSet{{CodecID: 1, DimensionMinus1: 2}},
	}
	ctx.PatchSequenceParameterSets[0] = bitstream.PatchSequenceParameterSet{}
	ctx.PatchFrameParameterSets[0] = bitstream.PatchFrameParameterSet{LocalOverrideAttributePatch: []bool{false}}
	header := bitstream.PatchFrameHeader{Type: bitstream.FrameI}
	for i := range header.BitCounts {
		header.BitCounts[i] = bitstream.Overridden(uint8(4))
	}
	header.BitCounts[bitstream.BitCountLOD] = bitstream.Overridden(uint8(0))
	ctx.Frames = []bitstream.PatchFrame{
		{Header: header, Patches: []bitstream.Patch{bitstream.IntraPatch{Shift2DU: 1, DeltaSize2DU: 4, DeltaSize2DV: 4}}},
		{Header: header},
	}
	ctx.Video[vpcc.VideoOccupancy] = []byte{0x01}
	ctx.Video[vpcc.VideoGeometry] = []byte{0x02, 0x03}
	ctx.Video[vpcc.VideoTexture] = []byte{0x04, 0x05, 0x06}
	return ctx
}

func encodeSequence(t *testing.T) []byte {
	t.Helper()
	b, err := bitstream.Encode(newSequence())
	require.NoError(t, err)
	return b
}

// fakeVideo doubles every payload byte and records the parameters it saw.
type fakeVideo struct {
	mu     sync.Mutex
	params map[vpcc.VideoType]vpcc.VideoParameters
	fail   vpcc.VideoType
	err    error
}

func (f *fakeVideo) Decode(payload []byte, par vpcc.VideoParameters) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.params == nil {
		f.params = make(map[vpcc.VideoType]vpcc.VideoParameters)
	}
	f.params[par.Type] = par
	if f.err != nil && par.Type == f.fail {
		return nil, f.err
	}
	return bytes.Repeat(payload, 2), nil
}

func TestDecode(t *testing.T) {
	t.Parallel()

	video := &fakeVideo{}
	var reconstructed int
	rec := ReconstructorFunc(func(ctx *bitstream.Context, frames []bitstream.ResolvedFrame, planes *Planes) error {
		reconstructed++
		require.Len(t, frames, 2)
		require.Len(t, frames[0].Patches, 1)
		require.Equal(t, []byte{0x02, 0x03, 0x02, 0x03}, planes[vpcc.VideoGeometry])
		require.Equal(t, uint16(320), ctx.SPS.Width)
		return nil
	})

	res, err := New(video, rec).Decode(context.Background(), encodeSequence(t))
	require.NoError(t, err)
	require.Equal(t, 1, reconstructed)
	require.Equal(t, []byte{0x01, 0x01}, res.Planes[vpcc.VideoOccupancy])
	require.Equal(t, []byte{0x04, 0x05, 0x06, 0x04, 0x05, 0x06}, res.Planes[vpcc.VideoTexture])
	require.Nil(t, res.Planes[vpcc.VideoGeometryD0])

	require.Equal(t, map[vpcc.VideoType]vpcc.VideoParameters{
		vpcc.VideoOccupancy: {Type: vpcc.VideoOccupancy, Width: 320, Height: 240, FrameCount: 2, BitDepth: 8},
		vpcc.VideoGeometry:  {Type: vpcc.VideoGeometry, Width: 320, Height: 240, FrameCount: 2, BitDepth: 16},
		vpcc.VideoTexture:   {Type: vpcc.VideoTexture, Width: 320, Height: 240, FrameCount: 2, BitDepth: 8},
	}, video.params)
}

func TestDecodeWithoutReconstructor(t *testing.T) {
	t.Parallel()

	res, err := New(&fakeVideo{}, nil).Decode(context.Background(), encodeSequence(t))
	require.NoError(t, err)
	require.Len(t, res.Frames, 2)
	require.Equal(t, []byte{0x02, 0x03}, res.Context.Video[vpcc.VideoGeometry])
}

func TestDecodeSkipsEmptyStreams(t *testing.T) {
	t.Parallel()

	ctx := newSequence()
	ctx.Video[vpcc.VideoTexture] = nil
	b, err := bitstream.Encode(ctx)
	require.NoError(t, err)

	video := &fakeVideo{}
	res, err := New(video, nil).Decode(context.Background(), b)
	require.NoError(t, err)
	require.NotContains(t, video.params, vpcc.VideoTexture)
	require.Nil(t, res.Planes[vpcc.VideoTexture])
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	errVideo := errors.New("video failed")
	errRec := errors.New("reconstruction failed")
	canceled, cancel := context.WithCancel(context.Background())
	cancel()

	tests := []struct {
		name    string
		dec     *Decoder
		ctx     context.Context
		input   []byte
		wantErr error
	}{
		{
			name:    "no_video_decoder",
			dec:     New(nil, nil),
			input:   encodeSequence(t),
			wantErr: ErrNoVideoDecoder,
		},
		{
			name:    "malformed_bitstream",
			dec:     New(&fakeVideo{}, nil),
			input:   []byte{0x00, 0x01},
			wantErr: bitstream.ErrMalformedBitstream,
		},
		{
			name:    "video_failure",
			dec:     New(&fakeVideo{fail: vpcc.VideoTexture, err: errVideo}, nil),
			input:   encodeSequence(t),
			wantErr: errVideo,
		},
		{
			name: "reconstruction_failure",
			dec: New(&fakeVideo{}, ReconstructorFunc(func(*bitstream.Context, []bitstream.ResolvedFrame, *Planes) error {
				return errRec
			})),
			input:   encodeSequence(t),
			wantErr: errRec,
		},
		{
			name:    "canceled",
			dec:     New(&fakeVideo{}, nil),
			ctx:     canceled,
			input:   encodeSequence(t),
			wantErr: context.Canceled,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			ctx := tt.ctx
			if ctx == nil {
				ctx = context.Background()
			}
			res, err := tt.dec.Decode(ctx, tt.input)
			require.ErrorIs(t, err, tt.wantErr)
			require.Nil(t, res)
		})
	}
}

func TestVideoParameters(t *testing.T) {
	t.Parallel()

	multi := &bitstream.SequenceParameterSet{
		Width:                       1280,
		Height:                      720,
		LayerCount:                  2,
		MultipleLayerStreamsPresent: true,
		Layers:                      []bitstream.LayerParameters{{AbsoluteCodingEnabled: true}},
		Geometry:                    bitstream.GeometryParameterSet{CoordinatesBitDepth: 8},
	}

	tests := []struct {
		vt        vpcc.VideoType
		wantCount uint
		wantDepth uint
	}{
		{vt: vpcc.VideoOccupancy, wantCount: 5, wantDepth: 8},
		{vt: vpcc.VideoGeometry, wantCount: 10, wantDepth: 8},
		{vt: vpcc.VideoGeometryD0, wantCount: 5, wantDepth: 8},
		{vt: vpcc.VideoGeometryMissedPoints, wantCount: 5, wantDepth: 16},
		{vt: vpcc.VideoTexture, wantCount: 10, wantDepth: 8},
		{vt: vpcc.VideoTextureMissedPoints, wantCount: 5, wantDepth: 8},
	}
	for _, tt := range tests {
		t.Run(tt.vt.String(), func(t *testing.T) {
			t.Parallel()

			par := VideoParameters(multi, 5, tt.vt)
			require.Equal(t, vpcc.VideoParameters{
				Type:       tt.vt,
				Width:      1280,
				Height:     720,
				FrameCount: tt.wantCount,
				BitDepth:   tt.wantDepth,
			}, par)
		})
	}
}
