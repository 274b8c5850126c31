package decoder

import (
	"context"
	"runtime"

	"github.com/ugparu/vpcc/utils/lifecycle"
	"github.com/ugparu/vpcc/utils/logger"
)

// Output is the outcome of decoding one bitstream sent to a Stream.
type Output struct {
	Result *Result
	Err    error
}

// Stream decodes bitstreams received on a channel on its own goroutine.
type Stream struct {
	lifecycle.AsyncManager[*Stream]
	decoder *Decoder
	inpCh   chan []byte // Bitstreams to decode.
	outCh   chan Output // Decode outcomes, in input order.
	decoded int
}

// NewStream returns a stopped Stream around dec that keeps decoding after a
// failed bitstream. Call Decode to start it and Close to stop it.
func NewStream(chanSize int, dec *Decoder) *Stream {
	return newStream(chanSize, dec, lifecycle.NewFailSafeAsyncManager[*Stream])
}

// NewStrictStream is NewStream for a Stream that stops after the first failed
// bitstream. The failure is still delivered on Outputs.
func NewStrictStream(chanSize int, dec *Decoder) *Stream {
	return newStream(chanSize, dec, lifecycle.NewAsyncManager[*Stream])
}

func newStream(chanSize int, dec *Decoder, manager func(*Stream) lifecycle.AsyncManager[*Stream]) *Stream {
	s := &Stream{
		AsyncManager: nil,
		decoder:      dec,
		inpCh:        make(chan []byte, chanSize),
		outCh:        make(chan Output, chanSize),
	}
	s.AsyncManager = manager(s)
	runtime.SetFinalizer(s, func(s *Stream) { s.Close() })
	return s
}

// Decode starts the decoding loop.
func (s *Stream) Decode() {
	_ = s.Start(func(*Stream) error { return nil })
}

// Step decodes the next bitstream and publishes its outcome.
func (s *Stream) Step(stopCh <-chan struct{}) error {
	select {
	case <-stopCh:
		logger.Debug(s, "Close signal detected. Breaking decoding...")
		return &lifecycle.BreakError{}
	case b := <-s.inpCh:
		out := s.process(b, stopCh)
		select {
		case <-stopCh:
			return &lifecycle.BreakError{}
		case s.outCh <- out:
		}
		if out.Err != nil {
			return out.Err
		}
		s.decoded++
		logger.Tracef(s, "Sent result of bitstream %d", s.decoded)
	}
	return nil
}

func (s *Stream) process(b []byte, stopCh <-chan struct{}) Output {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-stopCh:
			cancel()
		case <-ctx.Done():
		}
	}()

	res, err := s.decoder.Decode(ctx, b)
	return Output{Result: res, Err: err}
}

func (s *Stream) Close() {
	s.AsyncManager.Close()
}

// Close_ closes the channels once the loop has exited.
func (s *Stream) Close_() { //nolint:revive // required by lifecycle.AsyncInstance interface
	close(s.inpCh)
	close(s.outCh)
}

func (s *Stream) String() string {
	return "VPCC_STREAM"
}

// Bitstreams accepts complete bitstreams to decode.
func (s *Stream) Bitstreams() chan<- []byte {
	return s.inpCh
}

// Outputs delivers one Output per accepted bitstream.
func (s *Stream) Outputs() <-chan Output {
	return s.outCh
}
