package rzcobs

import (
	"encoding"
	"io"
)

// MarshalFrame marshals v and returns it encoded as one frame.
func MarshalFrame(v encoding.BinaryMarshaler) ([]byte, error) {
	payload, err := v.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return Encode(payload), nil
}

// AppendFrame marshals v and appends its frame to dst. Values that know
// their size are marshaled through a pooled buffer.
func AppendFrame[T interface {
	encoding.BinaryMarshaler
	Sizer
	io.WriterTo
}](dst []byte, v T) ([]byte, error) {
	buf := getBuffer()
	defer putBuffer(buf)
	if n := v.Size(); n > 0 {
		buf.Grow(n)
	}
	if _, err := v.WriteTo(buf); err != nil {
		return dst, err
	}
	return AppendEncode(dst, buf.Bytes()), nil
}

// UnmarshalFrame decodes frame and unmarshals its payload into v.
//
// v receives the decoded payload including any trailing zero padding, so it
// must accept up to MaxPadding extra zero bytes. CheckBufferNotZeros
// validates such a tail.
func UnmarshalFrame(frame []byte, v encoding.BinaryUnmarshaler) error {
	payload, err := Decode(frame)
	if err != nil {
		return err
	}
	return v.UnmarshalBinary(payload)
}
