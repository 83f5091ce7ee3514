package rzcobs

import (
	"bytes"
	"fmt"
	"math/bits"
)

// body validates the terminator of frame and returns the bytes before it.
func body(frame []byte) ([]byte, error) {
	if len(frame) == 0 {
		return nil, fmt.Errorf("%w: empty input", ErrMalformedFrame)
	}
	last := len(frame) - 1
	if i := bytes.IndexByte(frame, Terminator); i < 0 {
		return nil, fmt.Errorf("%w: missing terminator", ErrMalformedFrame)
	} else if i != last {
		return nil, fmt.Errorf("%w: zero byte at offset %d before terminator", ErrMalformedFrame, i)
	}
	return frame[:last], nil
}

// bodyLen walks the codes of b from the end and returns the decoded length.
func bodyLen(b []byte) (int, error) {
	n := 0
	for i := len(b); i > 0; {
		i--
		c := b[i]
		var lit, out int
		switch {
		case c == 0:
			return 0, fmt.Errorf("%w: zero byte at offset %d", ErrMalformedFrame, i)
		case c < runFlag:
			lit = WindowSize - bits.OnesCount8(c)
			out = WindowSize
		case c == Continuation:
			lit = MaxRun
			out = MaxRun
		default:
			lit = int(c&maskBits) + WindowSize
			out = lit + 1
		}
		if i < lit {
			return 0, fmt.Errorf("%w: code 0x%02x at offset %d needs %d bytes, %d remain", ErrMalformedFrame, c, i, lit, i)
		}
		i -= lit
		n += out
	}
	return n, nil
}

// fill decodes b into out, which must be exactly bodyLen(b) bytes long.
// Both slices are walked from the end.
func fill(out, b []byte) {
	p, i := len(out), len(b)
	for i > 0 {
		i--
		c := b[i]
		switch {
		case c < runFlag:
			for bit := WindowSize - 1; bit >= 0; bit-- {
				p--
				if c&(1<<bit) != 0 {
					out[p] = 0
				} else {
					i--
					out[p] = b[i]
				}
			}
		case c == Continuation:
			p -= MaxRun
			i -= MaxRun
			copy(out[p:p+MaxRun], b[i:i+MaxRun])
		default:
			n := int(c&maskBits) + WindowSize
			p--
			out[p] = 0
			p -= n
			i -= n
			copy(out[p:p+n], b[i:i+n])
		}
	}
}

// DecodedLen returns the length of the message Decode would return for frame.
func DecodedLen(frame []byte) (int, error) {
	b, err := body(frame)
	if err != nil {
		return 0, err
	}
	return bodyLen(b)
}

// Decode decodes a complete frame, terminator included. The result holds
// the original message followed by up to MaxPadding zero bytes.
func Decode(frame []byte) ([]byte, error) {
	return AppendDecode(nil, frame)
}

// DecodeBody decodes a frame body that does not carry the terminator.
func DecodeBody(b []byte) ([]byte, error) {
	if i := bytes.IndexByte(b, Terminator); i >= 0 {
		return nil, fmt.Errorf("%w: zero byte at offset %d", ErrMalformedFrame, i)
	}
	n, err := bodyLen(b)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	fill(out, b)
	return out, nil
}

// AppendDecode appends the message decoded from frame to dst. On error dst
// is returned unchanged. A nil dst yields a non-nil slice, even for an empty
// message.
func AppendDecode(dst, frame []byte) ([]byte, error) {
	b, err := body(frame)
	if err != nil {
		return dst, err
	}
	n, err := bodyLen(b)
	if err != nil {
		return dst, err
	}
	if dst == nil {
		dst = make([]byte, 0, n)
	}
	start := len(dst)
	dst = grow(dst, n)
	fill(dst[start:], b)
	return dst, nil
}

// DecodeTo decodes frame into dst and returns the message length. It
// returns ErrBufferOverflow without touching dst if the message does not fit.
func DecodeTo(dst, frame []byte) (int, error) {
	b, err := body(frame)
	if err != nil {
		return 0, err
	}
	n, err := bodyLen(b)
	if err != nil {
		return 0, err
	}
	if n > len(dst) {
		return 0, fmt.Errorf("%w: need %d bytes, have %d", ErrBufferOverflow, n, len(dst))
	}
	fill(dst[:n], b)
	return n, nil
}

// grow extends dst by n bytes, reallocating only when capacity runs out.
func grow(dst []byte, n int) []byte {
	if cap(dst)-len(dst) >= n {
		return dst[:len(dst)+n]
	}
	out := make([]byte, len(dst)+n)
	copy(out, dst)
	return out
}
