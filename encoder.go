package rzcobs

import "io"

// Encoder is a streaming rzCOBS encoder. Its whole state is one run counter
// and one zero mask, so it suits unbounded messages and small devices alike.
//
// Feed message bytes with Write or WriteByte, then call EndFrame to emit the
// pending code byte and the terminator. The Encoder is ready for the next
// message afterwards. After a write error, all operations become no-ops
// returning that error.
type Encoder struct {
	w     io.ByteWriter
	run   uint8 // bytes in the current window or literal run
	zeros uint8 // zero mask of the current window, bit i = position i
	count int64 // total bytes emitted
	err   error
}

var _ io.Writer = (*Encoder)(nil)

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.ByteWriter) *Encoder {
	return &Encoder{w: w}
}

// Reset discards any pending message state and switches output to w.
func (e *Encoder) Reset(w io.ByteWriter) {
	*e = Encoder{w: w}
}

func (e *Encoder) Count() int64 { return e.count }
func (e *Encoder) Err() error   { return e.err }

func (e *Encoder) emit(c byte) {
	if e.err != nil {
		return
	}
	if err := e.w.WriteByte(c); err != nil {
		e.err = err
		return
	}
	e.count++
}

// WriteByte encodes one message byte.
func (e *Encoder) WriteByte(c byte) error {
	if e.err != nil {
		return e.err
	}
	if e.run < WindowSize {
		if c == 0 {
			e.zeros |= 1 << e.run
		} else {
			e.emit(c)
		}
		e.run++
		// A window without zeros keeps growing into a literal run.
		if e.run == WindowSize && e.zeros != 0 {
			e.emit(e.zeros)
			e.run, e.zeros = 0, 0
		}
	} else if c == 0 {
		e.emit(runCode(int(e.run)))
		e.run, e.zeros = 0, 0
	} else {
		e.emit(c)
		e.run++
		if e.run == MaxRun {
			e.emit(Continuation)
			e.run, e.zeros = 0, 0
		}
	}
	return e.err
}

// Write implements io.Writer. All of p belongs to the current message.
func (e *Encoder) Write(p []byte) (int, error) {
	for i, c := range p {
		if err := e.WriteByte(c); err != nil {
			return i, err
		}
	}
	return len(p), nil
}

// End finishes the current message body without writing the terminator.
//
// A partial window is closed with its unused positions marked as zeros,
// so the decoder may yield up to MaxPadding extra zero bytes.
func (e *Encoder) End() error {
	switch {
	case e.run == 0:
	case e.run < WindowSize:
		e.emit((e.zeros | 0xFF<<e.run) & maskBits)
	default:
		e.emit(runCode(int(e.run)))
	}
	e.run, e.zeros = 0, 0
	return e.err
}

// EndFrame finishes the current message and writes the terminator.
func (e *Encoder) EndFrame() error {
	if err := e.End(); err != nil {
		return err
	}
	e.emit(Terminator)
	return e.err
}

// MaxEncodedLen returns the largest frame Encode can produce for an n byte
// message, terminator included.
func MaxEncodedLen(n int) int {
	return n + CeilDiv(n, MaxRun) + 1
}

// appendWriter is an io.ByteWriter growing a slice.
type appendWriter struct{ b []byte }

func (w *appendWriter) WriteByte(c byte) error {
	w.b = append(w.b, c)
	return nil
}

// Encode returns the frame for src, terminator included. It never fails.
func Encode(src []byte) []byte {
	return AppendEncode(make([]byte, 0, MaxEncodedLen(len(src))), src)
}

// AppendEncode appends the frame for src to dst and returns the extended slice.
func AppendEncode(dst, src []byte) []byte {
	w := appendWriter{b: dst}
	e := Encoder{w: &w}
	_, _ = e.Write(src)
	_ = e.EndFrame()
	return w.b
}

// EncodeTo writes the frame for src into dst and returns its length.
// It returns io.ErrShortBuffer if dst cannot hold the frame; a dst of
// MaxEncodedLen(len(src)) bytes is always enough.
func EncodeTo(dst, src []byte) (int, error) {
	w := &BytesWriter{B: dst}
	e := Encoder{w: w}
	_, _ = e.Write(src)
	if err := e.EndFrame(); err != nil {
		return w.Len(), io.ErrShortBuffer
	}
	return w.Len(), nil
}
