// Package vpcc holds the unit and video stream enums shared by the
// bitstream codec and the decoding pipeline, and the interface of the
// external video codec.
package vpcc

// VideoParameters describes a video sub-stream handed to a video codec.
type VideoParameters struct {
	Type       VideoType // Sub-stream being coded.
	Width      uint      // Plane width in pixels.
	Height     uint      // Plane height in pixels.
	FrameCount uint      // Number of frames in the sub-stream.
	BitDepth   uint      // Sample bit depth.
}

// VideoDecoder turns a compressed video sub-stream into raw planes. The
// payload is the opaque blob stored in a video unit; its format is owned by
// the implementation.
type VideoDecoder interface {
	Decode(payload []byte, par VideoParameters) (planes []byte, err error)
}

// VideoDecoderFunc adapts a function to the VideoDecoder interface.
type VideoDecoderFunc func(payload []byte, par VideoParameters) ([]byte, error)

// Decode calls f(payload, par).
func (f VideoDecoderFunc) Decode(payload []byte, par VideoParameters) ([]byte, error) {
	return f(payload, par)
}
