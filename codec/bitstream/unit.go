// Package bitstream implements the V-PCC bitstream syntax: the unit
// headers, the sequence parameter set, the patch sequence parameter sets
// and the per-frame patch data.
package bitstream

import (
	"errors"
	"slices"

	"github.com/ugparu/vpcc"
	"github.com/ugparu/vpcc/utils/logger"
)

const (
	unitTypeBits      = 5
	unitSPSIDBits     = 4
	unitAttrIndexBits = 7
	unitLayerBits     = 4
	unitHeaderBits    = 32
	videoLengthBits   = 32
)

// Reserved run widths that complete each header to unitHeaderBits.
const (
	reservedSPS       = 27
	reservedPSDOVD    = 23
	reservedGVDMulti  = 18
	reservedGVDSingle = 22
	reservedAVDMulti  = 11
	reservedAVDSingle = 15
)

const (
	unitTypeElement      = "vpcc_unit_type"
	unitSPSIDElement     = "vpcc_sequence_parameter_set_id"
	unitAttrIndexElement = "vpcc_attribute_index"
	unitLayerElement     = "vpcc_layer_index"
	unitPCMVideoElement  = "pcm_video_flag"
	reservedZeroElement  = "vpcc_reserved_zero_bits"
	videoLengthElement   = "video_stream_size"
	videoPayloadElement  = "video_stream_payload"
)

var errNilContext = errors.New("nil context")

// Encode serializes ctx as the five units SPS, PSD, OVD, GVD and AVD.
func Encode(ctx *Context) ([]byte, error) {
	if ctx == nil {
		return nil, &SyntaxError{Kind: ErrUnsupportedConfiguration, Element: "context", Offset: -1, Err: errNilContext}
	}
	out, err := encodeUnits(ctx)
	if err != nil {
		return nil, err
	}
	if _, err = resolve(ctx, ErrUnsupportedConfiguration); err != nil {
		return nil, err
	}
	logger.Debugf(ctx, "encoded %d frames into %d bytes", len(ctx.Frames), len(out))
	return out, nil
}

// encodeUnits writes the units without resolving cross-frame references.
func encodeUnits(ctx *Context) ([]byte, error) {
	fw := newFieldWriter(encodedSizeHint(ctx))
	for _, ut := range vpcc.UnitOrder {
		start := fw.w.Len()
		writeUnitHeader(fw, ctx, ut)
		switch ut {
		case vpcc.UnitSPS:
			writeSequenceParameterSet(fw, &ctx.SPS)
		case vpcc.UnitPSD:
			writePatchSequenceData(fw, ctx)
		default:
			writeVideoPayload(fw, ctx, ut)
		}
		if fw.err != nil {
			return nil, fw.err
		}
		logger.Tracef(ut, "encoded unit: %d bytes", (fw.w.Len()-start)/8) //nolint:mnd // bits to bytes
	}
	return fw.w.Bytes(), nil
}

// Decode parses a bitstream produced by Encode. Decoding is all or nothing:
// any structural error aborts the call.
func Decode(b []byte) (*Context, error) {
	ctx, _, err := DecodeFrames(b)
	return ctx, err
}

// DecodeFrames is Decode that also returns the resolved frames, which
// decoding computes to validate cross-frame references.
func DecodeFrames(b []byte) (*Context, []ResolvedFrame, error) {
	ctx := NewContext()
	fr := newFieldReader(b)
	for _, want := range vpcc.UnitOrder {
		start := fr.r.Pos()
		readUnitHeader(fr, ctx, want)
		switch want {
		case vpcc.UnitSPS:
			readSequenceParameterSet(fr, &ctx.SPS)
		case vpcc.UnitPSD:
			readPatchSequenceData(fr, ctx)
		default:
			readVideoPayload(fr, ctx, want)
		}
		if fr.err != nil {
			return nil, nil, fr.err
		}
		logger.Tracef(want, "decoded unit: %d bytes", (fr.r.Pos()-start)/8) //nolint:mnd // bits to bytes
	}
	if fr.r.Left() != 0 {
		return nil, nil, newSyntaxError(ErrMalformedBitstream, unitTypeElement, fr.r.Pos(),
			"%d trailing bytes after the last unit", fr.r.Left()/8) //nolint:mnd // bits to bytes
	}
	frames, err := resolve(ctx, ErrMalformedBitstream)
	if err != nil {
		return nil, nil, err
	}
	logger.Debugf(ctx, "decoded %d frames from %d bytes", len(ctx.Frames), len(b))
	return ctx, frames, nil
}

func encodedSizeHint(ctx *Context) int {
	n := 1024 //nolint:mnd // parameter sets and patch data
	for _, v := range ctx.Video {
		n += len(v) + 4 //nolint:mnd // length prefix
	}
	return n
}

func writeUnitHeader(fw *fieldWriter, ctx *Context, ut vpcc.UnitType) {
	sps := &ctx.SPS
	fw.u(unitTypeElement, uint64(ut), unitTypeBits)
	if ut == vpcc.UnitSPS {
		fw.u(reservedZeroElement, 0, reservedSPS)
		return
	}
	fw.u(unitSPSIDElement, uint64(sps.ID), unitSPSIDBits)
	switch ut {
	case vpcc.UnitAVD:
		fw.require(ctx.Unit.AttributeIndex == 0 || int(ctx.Unit.AttributeIndex) < sps.AttributeCount(), unitAttrIndexElement,
			"attribute index %d of %d attributes", ctx.Unit.AttributeIndex, sps.AttributeCount())
		fw.u(unitAttrIndexElement, uint64(ctx.Unit.AttributeIndex), unitAttrIndexBits)
		if sps.MultipleLayerStreamsPresent {
			fw.u(unitLayerElement, uint64(ctx.Unit.LayerIndex), unitLayerBits)
			writePCMSeparateVideo(fw, ctx, reservedAVDMulti)
		} else {
			fw.require(ctx.Unit.LayerIndex == 0, unitLayerElement, "layer index %d without multiple layer streams", ctx.Unit.LayerIndex)
			writePCMSeparateVideo(fw, ctx, reservedAVDSingle)
		}
	case vpcc.UnitGVD:
		if sps.MultipleLayerStreamsPresent {
			fw.u(unitLayerElement, uint64(ctx.Unit.LayerIndex), unitLayerBits)
			writePCMSeparateVideo(fw, ctx, reservedGVDMulti)
		} else {
			fw.require(ctx.Unit.LayerIndex == 0, unitLayerElement, "layer index %d without multiple layer streams", ctx.Unit.LayerIndex)
			writePCMSeparateVideo(fw, ctx, reservedGVDSingle)
		}
	default:
		fw.u(reservedZeroElement, 0, reservedPSDOVD)
	}
}

// writePCMSeparateVideo writes the PCM video flag and bitCount reserved
// bits, or bitCount+1 reserved bits when the flag is not coded.
func writePCMSeparateVideo(fw *fieldWriter, ctx *Context, bitCount int) {
	if ctx.SPS.PCMSeparateVideoPresent && ctx.Unit.LayerIndex == 0 {
		fw.flag(unitPCMVideoElement, ctx.Unit.PCMVideoFlag)
		fw.u(reservedZeroElement, 0, bitCount)
		return
	}
	fw.require(!ctx.Unit.PCMVideoFlag, unitPCMVideoElement, "pcm video flag set without separate pcm video on layer 0")
	fw.u(reservedZeroElement, 0, bitCount+1)
}

func readUnitHeader(fr *fieldReader, ctx *Context, want vpcc.UnitType) {
	ut := vpcc.UnitType(fr.u8(unitTypeElement, unitTypeBits))
	if !fr.require(ut == want, unitTypeElement, "got unit %v, want %v", ut, want) {
		return
	}
	if ut == vpcc.UnitSPS {
		readReserved(fr, reservedSPS)
		return
	}
	sps := &ctx.SPS
	id := fr.u8(unitSPSIDElement, unitSPSIDBits)
	fr.require(id == sps.ID, unitSPSIDElement, "unit references sps %d, decoded sps is %d", id, sps.ID)
	switch ut {
	case vpcc.UnitGVD:
		if sps.MultipleLayerStreamsPresent {
			ctx.Unit.LayerIndex = fr.u8(unitLayerElement, unitLayerBits)
			ctx.Unit.PCMVideoFlag = readPCMSeparateVideo(fr, ctx, reservedGVDMulti)
		} else {
			ctx.Unit.PCMVideoFlag = readPCMSeparateVideo(fr, ctx, reservedGVDSingle)
		}
	case vpcc.UnitAVD:
		// The AVD header repeats the layer index and PCM video flag of the
		// GVD header, which was decoded first.
		ctx.Unit.AttributeIndex = fr.u8(unitAttrIndexElement, unitAttrIndexBits)
		fr.require(ctx.Unit.AttributeIndex == 0 || int(ctx.Unit.AttributeIndex) < sps.AttributeCount(), unitAttrIndexElement,
			"attribute index %d of %d attributes", ctx.Unit.AttributeIndex, sps.AttributeCount())
		reserved := reservedAVDSingle
		if sps.MultipleLayerStreamsPresent {
			layer := fr.u8(unitLayerElement, unitLayerBits)
			fr.require(layer == ctx.Unit.LayerIndex, unitLayerElement, "layer index %d disagrees with geometry unit %d", layer, ctx.Unit.LayerIndex)
			reserved = reservedAVDMulti
		}
		pcm := readPCMSeparateVideo(fr, ctx, reserved)
		fr.require(pcm == ctx.Unit.PCMVideoFlag, unitPCMVideoElement, "pcm video flag disagrees with geometry unit")
	default:
		readReserved(fr, reservedPSDOVD)
	}
}

func readPCMSeparateVideo(fr *fieldReader, ctx *Context, bitCount int) bool {
	if ctx.SPS.PCMSeparateVideoPresent && ctx.Unit.LayerIndex == 0 {
		flag := fr.flag(unitPCMVideoElement)
		readReserved(fr, bitCount)
		return flag
	}
	readReserved(fr, bitCount+1)
	return false
}

func readReserved(fr *fieldReader, n int) {
	v := fr.u(reservedZeroElement, n)
	fr.require(v == 0, reservedZeroElement, "reserved bits are %#x", v)
}

// videoStreams lists the sub-streams carried by a video unit, in coding order.
func videoStreams(sps *SequenceParameterSet, ut vpcc.UnitType) []vpcc.VideoType {
	switch ut {
	case vpcc.UnitOVD:
		return []vpcc.VideoType{vpcc.VideoOccupancy}
	case vpcc.UnitGVD:
		streams := []vpcc.VideoType{vpcc.VideoGeometry}
		if sps.LayerCount > 1 && !sps.AbsoluteD1() {
			streams = []vpcc.VideoType{vpcc.VideoGeometryD0, vpcc.VideoGeometryD1}
		}
		if sps.PCMSeparateVideoPresent {
			streams = append(streams, vpcc.VideoGeometryMissedPoints)
		}
		return streams
	case vpcc.UnitAVD:
		if sps.AttributeCount() == 0 {
			return nil
		}
		if sps.PCMSeparateVideoPresent {
			return []vpcc.VideoType{vpcc.VideoTexture, vpcc.VideoTextureMissedPoints}
		}
		return []vpcc.VideoType{vpcc.VideoTexture}
	}
	return nil
}

// VideoStreams returns the sub-streams the sequence carries, in bitstream order.
func VideoStreams(sps *SequenceParameterSet) []vpcc.VideoType {
	var streams []vpcc.VideoType
	for _, ut := range vpcc.UnitOrder {
		if ut.IsVideo() {
			streams = append(streams, videoStreams(sps, ut)...)
		}
	}
	return streams
}

func writeVideoPayload(fw *fieldWriter, ctx *Context, ut vpcc.UnitType) {
	var carried [vpcc.VideoTypeCount]bool
	for _, vt := range videoStreams(&ctx.SPS, ut) {
		carried[vt] = true
		payload := ctx.Video[vt]
		fw.u(videoLengthElement, uint64(len(payload)), videoLengthBits)
		fw.bytes(videoPayloadElement, payload)
	}
	for vt := range vpcc.VideoTypeCount {
		if vt.Unit() == ut && !carried[vt] {
			fw.require(len(ctx.Video[vt]) == 0, videoPayloadElement, "%v stream is not carried by this sequence", vt)
		}
	}
}

func readVideoPayload(fr *fieldReader, ctx *Context, ut vpcc.UnitType) {
	for _, vt := range videoStreams(&ctx.SPS, ut) {
		n := fr.u32(videoLengthElement, videoLengthBits)
		size := fr.count(videoLengthElement, n, 8) //nolint:mnd // bytes
		if size > 0 {
			ctx.Video[vt] = slices.Clone(fr.bytes(videoPayloadElement, size))
		}
	}
}
