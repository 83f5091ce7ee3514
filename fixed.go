package rzcobs

import (
	"encoding/binary"
	"fmt"
	"io"
	"reflect"

	"github.com/puzpuzpuz/xsync/v4"
)

// sizeCache avoids the high performance cost of reflection in `binary.Size`
// on every call. Using a concurrent map makes it safe across goroutines.
var sizeCache = xsync.NewMap[reflect.Type, int]()

// Fixed carries a struct of fixed-size fields as a frame payload, such as a
// telemetry record sent over a serial link.
//
// Constraint: The `Payload` type MUST NOT contain variable-size fields like slices,
// maps, or strings, as this will cause `binary.Size` to fail.
type Fixed[Payload any] struct {
	Payload Payload
}

// Size returns the fixed size of the struct in bytes.
func (c *Fixed[Payload]) Size() int {
	t := reflect.TypeOf((*Payload)(nil)).Elem()
	if size, ok := sizeCache.Load(t); ok {
		return size
	}
	size := binary.Size(&c.Payload)
	sizeCache.Store(t, size)
	return size
}

// MarshalBinary implements the standard `encoding.BinaryMarshaler` interface.
func (c *Fixed[Payload]) MarshalBinary() ([]byte, error) {
	buf := make([]byte, c.Size())
	if _, err := binary.Encode(buf, Order, &c.Payload); err != nil {
		return nil, err
	}
	return buf, nil
}

// UnmarshalBinary implements the standard `encoding.BinaryUnmarshaler` interface.
// Up to MaxPadding trailing zero bytes, as left by the decoder, are accepted.
func (c *Fixed[Payload]) UnmarshalBinary(data []byte) error {
	size := c.Size()
	if len(data) < size {
		return fmt.Errorf("%w: expected %d bytes, got %d", ErrTruncatedData, size, len(data))
	}
	if _, err := binary.Decode(data[:size], Order, &c.Payload); err != nil {
		return err
	}
	return CheckBufferNotZeros(data[size:])
}

// WriteTo implements `io.WriterTo`, writing the raw payload without framing.
func (c *Fixed[Payload]) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, Order, &c.Payload); err != nil {
		return 0, err
	}
	return int64(c.Size()), nil
}
