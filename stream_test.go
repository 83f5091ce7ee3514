package rzcobs

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// --- Writer Test Suite ---

type WriterTestSuite struct {
	suite.Suite
	buf    *bytes.Buffer
	writer *Writer
	stats  *Stats
}

// SetupTest runs before each test in the suite, ensuring a clean state.
func (s *WriterTestSuite) SetupTest() {
	s.buf = &bytes.Buffer{}
	s.stats = NewStats()
	w, err := NewWriter(s.buf)
	s.Require().NoError(err)
	s.writer = w.WithStats(s.stats)
}

func (s *WriterTestSuite) TestConstructors() {
	s.T().Run("NilWriter", func(t *testing.T) {
		_, err := NewWriter(nil)
		assert.ErrorIs(t, err, ErrNilIO)
	})

	s.T().Run("SmallBufioWriter", func(t *testing.T) {
		_, err := NewWriterSize(bufio.NewWriterSize(io.Discard, 16), 1024)
		assert.ErrorIs(t, err, ErrAlreadyBuffered)
	})

	s.T().Run("LargeBufioWriter", func(t *testing.T) {
		var out bytes.Buffer
		bw := bufio.NewWriterSize(&out, 4096)
		w, err := NewWriterSize(bw, 1024)
		require.NoError(t, err)

		require.NoError(t, w.WriteMessage([]byte{1, 2}))
		require.NoError(t, w.Flush())
		assert.Equal(t, len(Encode([]byte{1, 2})), bw.Buffered(), "frames go straight into the caller's buffer")
		assert.Zero(t, out.Len(), "the caller's buffer is flushed by its owner")

		require.NoError(t, bw.Flush())
		assert.Equal(t, Encode([]byte{1, 2}), out.Bytes())
	})
}

func (s *WriterTestSuite) TestWriteMessages() {
	msgs := [][]byte{{1, 2, 3}, {}, {0, 0, 0, 0, 0, 0, 0, 0}, seq(1, 200)}
	var want []byte
	for _, m := range msgs {
		s.Require().NoError(s.writer.WriteMessage(m))
		want = append(want, Encode(m)...)
	}

	n, err := s.writer.Result()
	s.Require().NoError(err)
	s.Assert().EqualValues(len(want), n)
	s.Assert().Equal(want, s.buf.Bytes())
	s.Assert().EqualValues(len(msgs), s.writer.Frames())

	snap := s.stats.Snapshot()
	s.Assert().EqualValues(len(msgs), snap.Frames)
	s.Assert().EqualValues(len(want), snap.WireBytes)
	s.Assert().EqualValues(3+0+8+200, snap.Payload)
}

func (s *WriterTestSuite) TestStreamedMessage() {
	_, err := s.writer.Write([]byte{1, 0})
	s.Require().NoError(err)
	s.Require().NoError(s.writer.WriteByte(2))
	_, err = s.writer.Write(seq(10, 20))
	s.Require().NoError(err)
	s.Require().NoError(s.writer.EndMessage())
	s.Require().NoError(s.writer.EndMessage())
	s.Require().NoError(s.writer.Flush())

	want := Encode(append([]byte{1, 0, 2}, seq(10, 20)...))
	want = append(want, Terminator)
	s.Assert().Equal(want, s.buf.Bytes())
	s.Assert().EqualValues(len(want), s.stats.Snapshot().WireBytes)
}

func (s *WriterTestSuite) TestErrorHandling() {
	s.T().Run("ShortSinkIsSticky", func(t *testing.T) {
		w, err := NewWriter(&BytesWriter{B: make([]byte, 4)})
		require.NoError(t, err)

		err = w.WriteMessage(seq(1, 10))
		require.ErrorIs(t, err, io.ErrShortWrite)

		assert.ErrorIs(t, w.WriteMessage([]byte{1}), io.ErrShortWrite)
		assert.ErrorIs(t, w.EndMessage(), io.ErrShortWrite)
		_, err = w.Write([]byte{1})
		assert.ErrorIs(t, err, io.ErrShortWrite)
		assert.Equal(t, io.ErrShortWrite, w.Err())
	})

	s.T().Run("MarshalErrorIsNotSticky", func(t *testing.T) {
		var buf bytes.Buffer
		w, _ := NewWriter(&buf)
		boom := errors.New("boom")
		assert.ErrorIs(t, w.WriteValue(failingMarshaler{boom}), boom)
		assert.NoError(t, w.Err())
	})
}

type failingMarshaler struct{ err error }

func (f failingMarshaler) MarshalBinary() ([]byte, error) { return nil, f.err }

func (s *WriterTestSuite) TestNestedWriterFramesBecomePayload() {
	var out bytes.Buffer
	outer, err := NewWriter(&out)
	s.Require().NoError(err)

	_, err = outer.Write([]byte{1, 2, 3})
	s.Require().NoError(err)
	inner, err := NewWriter(outer)
	s.Require().NoError(err)
	s.Require().NoError(inner.WriteMessage([]byte{7}))
	s.Require().NoError(inner.WriteMessage([]byte{8, 0}))
	s.Require().NoError(inner.Flush())
	s.Require().NoError(outer.EndMessage())
	s.Require().NoError(outer.Flush())

	innerFrames := frames([]byte{7}, []byte{8, 0})
	s.Assert().EqualValues(1, outer.Frames())
	s.Assert().Equal(Encode(append([]byte{1, 2, 3}, innerFrames...)), out.Bytes())

	r, err := NewReader(&out)
	s.Require().NoError(err)
	msg, err := r.ReadMessage()
	s.Require().NoError(err)
	requirePadded(s.T(), append([]byte{1, 2, 3}, innerFrames...), msg)

	nested, err := NewReader(bytes.NewReader(msg[3 : 3+len(innerFrames)]))
	s.Require().NoError(err)
	for _, want := range [][]byte{{7}, {8, 0}} {
		got, err := nested.ReadMessage()
		s.Require().NoError(err)
		requirePadded(s.T(), want, got)
	}
}

// TestWriter runs the WriterTestSuite.
func TestWriter(t *testing.T) {
	suite.Run(t, new(WriterTestSuite))
}

// --- Reader Test Suite ---

type ReaderTestSuite struct {
	suite.Suite
}

func frames(msgs ...[]byte) []byte {
	var out []byte
	for _, m := range msgs {
		out = AppendEncode(out, m)
	}
	return out
}

func (s *ReaderTestSuite) TestConstructors() {
	s.T().Run("NilReader", func(t *testing.T) {
		_, err := NewReader(nil)
		assert.ErrorIs(t, err, ErrNilIO)
	})

	s.T().Run("SizeTooSmall", func(t *testing.T) {
		_, err := NewReaderSize(bytes.NewReader(nil), 8)
		assert.ErrorIs(t, err, ErrSizeTooSmall)
	})

	s.T().Run("SmallBufioReader", func(t *testing.T) {
		_, err := NewReaderSize(bufio.NewReaderSize(bytes.NewReader(nil), 16), 1024)
		assert.ErrorIs(t, err, ErrAlreadyBuffered)
	})
}

func (s *ReaderTestSuite) TestReadMessages() {
	msgs := [][]byte{{1, 2, 3}, {}, make([]byte, 20), seq(1, 150), {9, 0, 0, 9}}
	stats := NewStats()
	r, err := NewReader(bytes.NewReader(frames(msgs...)))
	s.Require().NoError(err)
	r.WithStats(stats)

	for _, m := range msgs {
		got, err := r.ReadMessage()
		s.Require().NoError(err)
		requirePadded(s.T(), m, got)
	}

	_, err = r.ReadMessage()
	s.Assert().ErrorIs(err, io.EOF)
	s.Assert().True(r.IsEOF())
	s.Assert().EqualValues(len(msgs), r.Frames())

	n, err := r.Result()
	s.Assert().ErrorIs(err, io.EOF)
	s.Assert().EqualValues(len(frames(msgs...)), n)
	s.Assert().EqualValues(len(msgs), stats.Snapshot().Frames)
	s.Assert().EqualValues(n, stats.Snapshot().WireBytes)
}

func (s *ReaderTestSuite) TestFramesSpanningBuffer() {
	msgs := [][]byte{seq(1, 100), {0}, seq(50, 40)}
	r, err := NewReaderSize(bytes.NewReader(frames(msgs...)), 16)
	s.Require().NoError(err)

	for _, m := range msgs {
		frame, err := r.ReadFrame()
		s.Require().NoError(err)
		s.Assert().Equal(Encode(m), frame)
	}
}

func (s *ReaderTestSuite) TestOversizedFramesAreSkipped() {
	data := frames([]byte{1}, seq(1, 50), []byte{2})

	for _, size := range []int{16, 4096} {
		stats := NewStats()
		r, err := NewReaderSize(bytes.NewReader(data), size)
		s.Require().NoError(err)
		r.WithMaxFrameSize(10).WithStats(stats)

		got, err := r.ReadMessage()
		s.Require().NoError(err)
		requirePadded(s.T(), []byte{1}, got)

		_, err = r.ReadMessage()
		s.Require().ErrorIs(err, ErrFrameTooLarge)
		s.Assert().NoError(r.Err(), "an oversized frame must not poison the stream")

		got, err = r.ReadMessage()
		s.Require().NoError(err)
		requirePadded(s.T(), []byte{2}, got)
		s.Assert().EqualValues(1, stats.Snapshot().Oversized)
	}
}

func (s *ReaderTestSuite) TestMalformedFrameIsSkipped() {
	data := append([]byte{0x7E, Terminator}, Encode([]byte{3})...)
	stats := NewStats()
	r, _ := NewReader(bytes.NewReader(data))
	r.WithStats(stats)

	_, err := r.ReadMessage()
	s.Require().ErrorIs(err, ErrMalformedFrame)

	got, err := r.ReadMessage()
	s.Require().NoError(err)
	requirePadded(s.T(), []byte{3}, got)
	s.Assert().EqualValues(1, stats.Snapshot().Malformed)
	s.Assert().EqualValues(2, stats.Snapshot().Frames, "frames are counted before decoding")
}

func (s *ReaderTestSuite) TestLargeFrameWithoutLimit() {
	msg := bytes.Repeat([]byte{0x01}, 2<<20)
	r, err := NewReader(bytes.NewReader(Encode(msg)))
	s.Require().NoError(err)

	got, err := r.ReadMessage()
	s.Require().NoError(err)
	requirePadded(s.T(), msg, got)
}

func (s *ReaderTestSuite) TestReadFrameStats() {
	msgs := [][]byte{{1, 2}, seq(1, 40), {}}
	data := frames(msgs...)
	stats := NewStats()
	r, err := NewReaderSize(bytes.NewReader(data), 16)
	s.Require().NoError(err)
	r.WithStats(stats)

	for range msgs {
		_, err := r.ReadFrame()
		s.Require().NoError(err)
	}

	snap := stats.Snapshot()
	s.Assert().EqualValues(len(msgs), snap.Frames)
	s.Assert().EqualValues(len(data), snap.WireBytes)
	s.Assert().Zero(snap.Payload, "payload is counted when a frame is decoded")
}

func (s *ReaderTestSuite) TestTruncatedStream() {
	data := append(Encode([]byte{1}), 0x01, 0x02, 0x03)
	r, _ := NewReaderSize(bytes.NewReader(data), 16)

	_, err := r.ReadMessage()
	s.Require().NoError(err)

	_, err = r.ReadMessage()
	s.Require().ErrorIs(err, ErrMalformedFrame)
	s.Assert().ErrorIs(err, io.ErrUnexpectedEOF)
	s.Assert().False(r.IsEOF())

	_, err2 := r.ReadFrame()
	s.Assert().Equal(err, err2, "stream errors are sticky")
}

func (s *ReaderTestSuite) TestStreamError() {
	boom := errors.New("link down")
	r, _ := NewReader(io.MultiReader(bytes.NewReader([]byte{1, 2}), &failingReader{boom}))

	_, err := r.ReadFrame()
	s.Require().ErrorIs(err, boom)
	s.Assert().ErrorIs(r.Err(), boom)
}

type failingReader struct{ err error }

func (f *failingReader) Read([]byte) (int, error) { return 0, f.err }

// TestReader runs the ReaderTestSuite.
func TestReader(t *testing.T) {
	suite.Run(t, new(ReaderTestSuite))
}

// --- Pipe round trip ---

func TestPipeRoundTrip(t *testing.T) {
	pr, pw := io.Pipe()
	msgs := [][]byte{[]byte("hello"), make([]byte, 30), seq(1, 255), {}}

	go func() {
		w, _ := NewWriterSize(pw, 32)
		for _, m := range msgs {
			_ = w.WriteMessage(m)
		}
		_, err := w.Result()
		pw.CloseWithError(err)
	}()

	r, err := NewReaderSize(pr, 32)
	require.NoError(t, err)
	for _, m := range msgs {
		got, err := r.ReadMessage()
		require.NoError(t, err)
		requirePadded(t, m, got)
	}
	_, err = r.ReadMessage()
	assert.ErrorIs(t, err, io.EOF)
}

func TestSharedStats(t *testing.T) {
	stats := NewStats()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			w, _ := NewWriter(io.Discard)
			w.WithStats(stats)
			for j := 0; j < 100; j++ {
				_ = w.WriteMessage([]byte{1, 2, 3})
			}
			_, _ = w.Result()
		}()
	}
	wg.Wait()

	snap := stats.Snapshot()
	assert.EqualValues(t, 800, snap.Frames)
	assert.EqualValues(t, 800*3, snap.Payload)
	assert.EqualValues(t, 800*len(Encode([]byte{1, 2, 3})), snap.WireBytes)

	stats.Reset()
	assert.Zero(t, stats.Snapshot())
}
