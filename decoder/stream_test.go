package decoder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ugparu/vpcc/codec/bitstream"
)

func receive(t *testing.T, s *Stream) Output {
	t.Helper()
	select {
	case out := <-s.Outputs():
		return out
	case <-time.After(time.Second):
		t.Fatal("no output")
	}
	return Output{}
}

func TestStream(t *testing.T) {
	t.Parallel()

	s := NewStream(1, New(&fakeVideo{}, nil))
	s.Decode()
	defer s.Close()

	good := encodeSequence(t)
	s.Bitstreams() <- good
	out := receive(t, s)
	require.NoError(t, out.Err)
	require.Len(t, out.Result.Frames, 2)

	s.Bitstreams() <- good[:len(good)-1]
	out = receive(t, s)
	require.ErrorIs(t, out.Err, bitstream.ErrMalformedBitstream)
	require.Nil(t, out.Result)

	s.Bitstreams() <- good
	out = receive(t, s)
	require.NoError(t, out.Err)
}

func TestStrictStream(t *testing.T) {
	t.Parallel()

	s := NewStrictStream(1, New(&fakeVideo{}, nil))
	s.Decode()
	defer s.Close()

	good := encodeSequence(t)
	s.Bitstreams() <- good
	require.NoError(t, receive(t, s).Err)

	s.Bitstreams() <- good[:len(good)-1]
	out := receive(t, s)
	require.ErrorIs(t, out.Err, bitstream.ErrMalformedBitstream)

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("stream kept running after a failed bitstream")
	}
}

func TestStreamClose(t *testing.T) {
	t.Parallel()

	s := NewStream(1, New(&fakeVideo{}, nil))
	s.Decode()
	s.Close()

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("stream did not stop")
	}
	_, ok := <-s.Outputs()
	require.False(t, ok)
	s.Close()
}
