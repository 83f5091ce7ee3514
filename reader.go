package rzcobs

import (
	"bufio"
	"encoding"
	"errors"
	"fmt"
	"io"
)

// Reader reads zero-terminated rzCOBS frames from an underlying io.Reader.
//
// Stream errors are sticky: once the source fails or ends mid-frame, every
// later call returns that error. Frame errors are not: a malformed or
// oversized frame is reported once and the next call starts at the
// following frame, since frames share no decoding state.
type Reader struct {
	r      *bufio.Reader
	max    int   // maximum frame size including the terminator, 0 = unlimited
	count  int64 // total bytes consumed
	frames int64
	err    error // first stream error encountered.
	stats  *Stats
}

// NewReaderSize creates a new Reader with a specified buffer size.
func NewReaderSize(r io.Reader, size int) (*Reader, error) {
	if r == nil {
		return nil, ErrNilIO
	}

	// prevent unpredictable double-buffering.
	if br, ok := r.(*bufio.Reader); ok {
		if br.Size() >= size {
			return &Reader{r: br}, nil
		}
		return nil, ErrAlreadyBuffered
	}

	if size < 16 {
		return nil, ErrSizeTooSmall
	}
	return &Reader{r: bufio.NewReaderSize(r, size)}, nil
}

// NewReader creates a new Reader with a default buffer size.
func NewReader(r io.Reader) (*Reader, error) {
	return NewReaderSize(r, 4096)
}

// WithMaxFrameSize sets the largest accepted frame, terminator included.
// Frames are unlimited by default; n <= 0 removes the limit.
func (r *Reader) WithMaxFrameSize(n int) *Reader {
	if n < 0 {
		n = 0
	}
	r.max = n
	return r
}

// WithStats records read frames into s.
func (r *Reader) WithStats(s *Stats) *Reader {
	r.stats = s
	return r
}

func (r *Reader) Count() int64  { return r.count }
func (r *Reader) Frames() int64 { return r.frames }
func (r *Reader) Err() error    { return r.err }
func (r *Reader) IsEOF() bool   { return r.err == io.EOF }

// setError records the first non-nil error.
func (r *Reader) setError(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

// Result returns the total bytes read and the final error state.
func (r *Reader) Result() (int64, error) {
	return r.count, r.err
}

// ReadFrame returns the next frame, terminator included. The returned slice
// is owned by the caller.
//
// It returns io.EOF when the stream ends between frames, and
// ErrMalformedFrame wrapping io.ErrUnexpectedEOF when it ends inside one.
// A frame larger than the configured maximum is skipped and reported as
// ErrFrameTooLarge.
func (r *Reader) ReadFrame() ([]byte, error) {
	if r.err != nil {
		return nil, r.err
	}

	// The common case is a frame wholly inside the bufio buffer.
	chunk, err := r.r.ReadSlice(Terminator)
	r.count += int64(len(chunk))
	if err == nil {
		if r.max > 0 && len(chunk) > r.max {
			return nil, r.oversized(len(chunk))
		}
		r.frames++
		r.stats.frame(len(chunk))
		return append([]byte(nil), chunk...), nil
	}

	buf := getBuffer()
	defer putBuffer(buf)
	total := len(chunk)
	skipping := false
	for {
		if !skipping {
			if r.max > 0 && total > r.max {
				// Keep consuming up to the terminator, but stop buffering.
				skipping = true
				buf.Reset()
			} else {
				buf.Write(chunk)
			}
		}
		if err == nil {
			break
		}
		if !errors.Is(err, bufio.ErrBufferFull) {
			if err == io.EOF {
				if total == 0 {
					r.setError(io.EOF)
					return nil, io.EOF
				}
				r.stats.malformed()
				err = fmt.Errorf("%w: stream ended after %d bytes without terminator: %w", ErrMalformedFrame, total, io.ErrUnexpectedEOF)
			}
			r.setError(err)
			return nil, r.err
		}
		chunk, err = r.r.ReadSlice(Terminator)
		r.count += int64(len(chunk))
		total += len(chunk)
	}

	if skipping {
		return nil, r.oversized(total)
	}
	r.frames++
	r.stats.frame(total)
	return append([]byte(nil), buf.Bytes()...), nil
}

func (r *Reader) oversized(n int) error {
	r.stats.oversized()
	return fmt.Errorf("%w: %d bytes, limit %d", ErrFrameTooLarge, n, r.max)
}

// ReadMessage reads and decodes the next frame. The message may end with up
// to MaxPadding zero bytes that were not part of the original input.
func (r *Reader) ReadMessage() ([]byte, error) {
	frame, err := r.ReadFrame()
	if err != nil {
		return nil, err
	}
	msg, err := Decode(frame)
	if err != nil {
		r.stats.malformed()
		return nil, err
	}
	r.stats.message(len(msg))
	return msg, nil
}

// ReadValue reads the next message into v. UnmarshalBinary sees the
// decoded padding, see CheckBufferNotZeros.
func (r *Reader) ReadValue(v encoding.BinaryUnmarshaler) error {
	msg, err := r.ReadMessage()
	if err != nil {
		return err
	}
	return v.UnmarshalBinary(msg)
}
