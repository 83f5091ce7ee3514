package rzcobs

import (
	"bufio"
	"bytes"
	"encoding"
	"io"
)

// sink is the buffered destination behind a Writer.
type sink interface {
	io.Writer
	io.ByteWriter
	io.Closer
	Flush() error
}

// Writer writes rzCOBS frames to an underlying io.Writer. It wraps
// bufio.Writer for efficiency and tracks the first error that occurs.
// After an error, all subsequent write operations become no-ops.
//
// Bytes passed to Write accumulate into the current message, which
// EndMessage terminates; WriteMessage writes a whole message as one frame.
type Writer struct {
	w       sink
	enc     Encoder
	payload int   // bytes of the message in progress
	start   int64 // encoder count when the message in progress began
	frames  int64 // frames terminated
	err     error // first error encountered. Subsequent writes become no-ops.
	depth   int
	stats   *Stats
}

// NewWriterSize creates a new Writer with a specified buffer size.
// It returns an error to prevent double-buffering, a common source of bugs.
func NewWriterSize(w io.Writer, size int) (*Writer, error) {
	if w == nil {
		return nil, ErrNilIO
	}

	var s sink
	depth := 0
	// A *Writer is an ordinary io.Writer here: frames written through it
	// become the payload of its message in progress.
	switch bw := w.(type) {
	// prevent unpredictable double-buffering.
	case *bufio.Writer:
		if bw.Size() < size {
			return nil, ErrAlreadyBuffered
		}
		s, depth = &bufioWriterAdapter{bw}, 1

	// underlying is a buf so we don't need buffering
	case *BytesWriter:
		s = bw
	case *bytes.Buffer:
		s = &bytesBufferWriterAdapter{bw}
	}

	// default use bufio
	if s == nil {
		s = &bufioWriterAdapter{bufio.NewWriterSize(w, size)}
	}
	wr := &Writer{w: s, depth: depth}
	wr.enc.Reset(s)
	return wr, nil
}

// NewWriter creates a new Writer with a default buffer size.
func NewWriter(w io.Writer) (*Writer, error) {
	return NewWriterSize(w, 0)
}

// WithStats records written frames into s.
func (w *Writer) WithStats(s *Stats) *Writer {
	w.stats = s
	return w
}

// Close flushes buffered frames. A message in progress is not terminated.
func (w *Writer) Close() error {
	if err := w.Flush(); err != nil {
		return err
	}
	return w.w.Close()
}

// Write implements the io.Writer interface. p is appended to the message in
// progress; call EndMessage to terminate it.
func (w *Writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	n, err := w.enc.Write(p)
	w.payload += n
	w.setError(err)
	return n, w.err
}

// WriteByte implements io.ByteWriter for the message in progress.
func (w *Writer) WriteByte(c byte) error {
	if w.err != nil {
		return w.err
	}
	if err := w.enc.WriteByte(c); err != nil {
		w.setError(err)
		return err
	}
	w.payload++
	return nil
}

// EndMessage terminates the message in progress, even an empty one.
func (w *Writer) EndMessage() error {
	if w.err != nil {
		return w.err
	}
	if err := w.enc.EndFrame(); err != nil {
		w.setError(err)
		return err
	}
	w.endFrame()
	return nil
}

// WriteMessage writes msg as one complete frame. Bytes already passed to
// Write become the head of that frame.
func (w *Writer) WriteMessage(msg []byte) error {
	if _, err := w.Write(msg); err != nil {
		return err
	}
	return w.EndMessage()
}

func (w *Writer) endFrame() {
	w.frames++
	w.stats.frame(int(w.enc.Count() - w.start))
	w.stats.message(w.payload)
	w.start = w.enc.Count()
	w.payload = 0
}

// WriteValue marshals v and writes it as one frame.
func (w *Writer) WriteValue(v encoding.BinaryMarshaler) error {
	if w.err != nil {
		return w.err
	}
	buf, err := v.MarshalBinary()
	if err != nil {
		return err
	}
	return w.WriteMessage(buf)
}

func (w *Writer) Count() int64  { return w.enc.Count() }
func (w *Writer) Frames() int64 { return w.frames }
func (w *Writer) Err() error    { return w.err }

// setError records the first non-nil error.
// This preserves the root cause of a failure chain instead of a later,
// less relevant error.
func (w *Writer) setError(err error) {
	if w.err == nil && err != nil {
		w.err = err
	}
}

// Result flushes the buffer and returns the final count and error state.
func (w *Writer) Result() (int64, error) {
	w.Flush()
	return w.enc.Count(), w.err
}

// Flush writes any buffered data to the underlying io.Writer.
func (w *Writer) Flush() error {
	// A caller-supplied *bufio.Writer is flushed by its owner.
	if w.depth > 0 || w.err != nil {
		return w.err
	}
	err := w.w.Flush()
	w.setError(err)
	return err
}
