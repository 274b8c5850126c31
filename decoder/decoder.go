// Package decoder drives a full point cloud decode: bitstream syntax, video
// sub-stream decompression and the hand-off to reconstruction.
package decoder

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ugparu/vpcc"
	"github.com/ugparu/vpcc/codec/bitstream"
	"github.com/ugparu/vpcc/utils/logger"
)

var ErrNoVideoDecoder = errors.New("decoder: no video decoder")

const (
	textureBitDepth   = 8
	geometryWideDepth = 16
)

// Planes holds the decompressed video planes indexed by sub-stream type.
type Planes [vpcc.VideoTypeCount][]byte

// Reconstructor turns a decoded sequence into point cloud frames. Frames are
// the resolved patch frames of ctx, in bitstream order.
type Reconstructor interface {
	Reconstruct(ctx *bitstream.Context, frames []bitstream.ResolvedFrame, planes *Planes) error
}

// ReconstructorFunc adapts a function to the Reconstructor interface.
type ReconstructorFunc func(ctx *bitstream.Context, frames []bitstream.ResolvedFrame, planes *Planes) error

// Reconstruct calls f(ctx, frames, planes).
func (f ReconstructorFunc) Reconstruct(ctx *bitstream.Context, frames []bitstream.ResolvedFrame, planes *Planes) error {
	return f(ctx, frames, planes)
}

// Result is a decoded sequence ready for, or already passed to, reconstruction.
type Result struct {
	Context *bitstream.Context
	Frames  []bitstream.ResolvedFrame
	Planes  Planes
}

// Decoder decodes complete bitstreams. It is safe for concurrent use when the
// injected video decoder and reconstructor are.
type Decoder struct {
	video         vpcc.VideoDecoder
	reconstructor Reconstructor
}

// New returns a Decoder. reconstructor may be nil, in which case Decode stops
// after the video planes are decompressed.
func New(video vpcc.VideoDecoder, reconstructor Reconstructor) *Decoder {
	return &Decoder{video: video, reconstructor: reconstructor}
}

func (dec *Decoder) String() string {
	return "VPCC_DECODER"
}

// Decode parses b, decompresses every carried video sub-stream concurrently
// and hands the result to the reconstructor.
func (dec *Decoder) Decode(ctx context.Context, b []byte) (*Result, error) {
	if dec.video == nil {
		return nil, ErrNoVideoDecoder
	}

	bs, frames, err := bitstream.DecodeFrames(b)
	if err != nil {
		return nil, err
	}
	res := &Result{Context: bs, Frames: frames}

	g, gctx := errgroup.WithContext(ctx)
	for _, vt := range bitstream.VideoStreams(&bs.SPS) {
		payload := bs.Video[vt]
		if len(payload) == 0 {
			logger.Debugf(dec, "Skipping empty %v stream", vt)
			continue
		}
		par := VideoParameters(&bs.SPS, len(bs.Frames), vt)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			logger.Tracef(dec, "Decompressing %v: %d bytes, %dx%d, %d frames, %d bits",
				vt, len(payload), par.Width, par.Height, par.FrameCount, par.BitDepth)
			planes, err := dec.video.Decode(payload, par)
			if err != nil {
				return fmt.Errorf("decoder: %v stream: %w", vt, err)
			}
			res.Planes[vt] = planes
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}

	if dec.reconstructor != nil {
		if err = dec.reconstructor.Reconstruct(bs, frames, &res.Planes); err != nil {
			return nil, fmt.Errorf("decoder: reconstruction: %w", err)
		}
	}
	logger.Debugf(dec, "Decoded %d frames", len(frames))
	return res, nil
}

// VideoParameters returns the parameters a video codec needs to decompress
// sub-stream vt of a sequence with frameCount patch frames.
func VideoParameters(sps *bitstream.SequenceParameterSet, frameCount int, vt vpcc.VideoType) vpcc.VideoParameters {
	par := vpcc.VideoParameters{
		Type:       vt,
		Width:      uint(sps.Width),
		Height:     uint(sps.Height),
		FrameCount: uint(frameCount),
		BitDepth:   textureBitDepth,
	}
	switch vt {
	case vpcc.VideoGeometry, vpcc.VideoTexture:
		if sps.MultipleLayerStreamsPresent {
			par.FrameCount *= 2
		}
	}
	switch vt {
	case vpcc.VideoGeometry, vpcc.VideoGeometryD0, vpcc.VideoGeometryD1:
		if sps.Geometry.CoordinatesBitDepth > textureBitDepth {
			par.BitDepth = geometryWideDepth
		}
	case vpcc.VideoGeometryMissedPoints:
		par.BitDepth = geometryWideDepth
	}
	return par
}
