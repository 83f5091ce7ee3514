package rzcobs

import (
	"encoding/binary"
	"fmt"

	"golang.org/x/exp/constraints"
)

var (
	BE = binary.BigEndian
	LE = binary.LittleEndian
	// Order is the byte order used by Fixed.
	Order = BE
)

// CeilDiv returns n/d rounded up, for non-negative n and positive d.
func CeilDiv[T constraints.Integer](n, d T) T { return (n + d - 1) / d }

// CheckBufferNotZeros verifies that buf holds nothing but decoder padding:
// at most MaxPadding bytes, all zero.
func CheckBufferNotZeros(buf []byte) error {
	for i, b := range buf {
		if b != 0 {
			return fmt.Errorf("%w: found non-zero byte 0x%02x at offset %d", ErrTrailingData, b, i)
		}
	}
	if len(buf) > MaxPadding {
		return fmt.Errorf("%w: %d zero bytes exceed padding of %d", ErrTrailingData, len(buf), MaxPadding)
	}
	return nil
}

// TrimPadding strips trailing zero bytes from a decoded message. Only use it
// when the message format cannot legitimately end in zero bytes.
func TrimPadding(msg []byte) []byte {
	n := len(msg)
	for n > 0 && msg[n-1] == 0 {
		n--
	}
	return msg[:n]
}
