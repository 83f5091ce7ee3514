// Package rzcobs implements rzCOBS, a reverse Consistent Overhead Byte
// Stuffing variant that also compresses runs of zero bytes.
//
// An encoded frame never contains 0x00 except for its final terminator, so
// a transport can delimit messages by scanning for zero bytes. Code bytes
// follow the literal bytes they describe, which lets the encoder stream with
// two bytes of state; the decoder walks a complete frame from the terminator
// backward.
//
// Code byte layout:
//
//	00000000  end of frame
//	0xxxxxxx  for each bit x from LSB to MSB: 0 = one literal byte, 1 = a zero byte
//	1nnnnnnn  n+7 literal bytes, then a zero byte
//	11111111  134 literal bytes, no zero byte
//
// Decoded messages may carry up to six trailing zero bytes that were not
// part of the original input. Consumers must treat trailing zeros as
// insignificant.
package rzcobs

const (
	// Terminator marks the end of a frame. It is the only zero byte in a frame.
	Terminator byte = 0x00

	// WindowSize is the number of output positions a zero-bitmask code covers.
	WindowSize = 7

	// MaxRun is the number of literal bytes behind a Continuation code.
	MaxRun = 134

	// Continuation is the code for MaxRun literal bytes without an implied zero.
	Continuation byte = 0xFF

	// MaxPadding is the maximum number of zero bytes decoding may append
	// to the original message.
	MaxPadding = WindowSize - 1

	runFlag  byte = 0x80
	maskBits byte = 0x7F
)

// runCode returns the literal-run code for a run of n (7..133) bytes.
func runCode(n int) byte { return byte(n-WindowSize) | runFlag }
