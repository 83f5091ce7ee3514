package rzcobs

import "errors"

var (
	// ErrMalformedFrame indicates a frame that no encoder could have produced:
	// the terminator is missing, a zero byte appears before it, or a code
	// byte declares more literal bytes than the frame holds.
	ErrMalformedFrame = errors.New("rzcobs: malformed frame")

	// ErrBufferOverflow indicates that a caller-supplied destination is too
	// small for the decoded message.
	ErrBufferOverflow = errors.New("rzcobs: destination buffer too small")

	// ErrFrameTooLarge indicates that a frame read from a stream exceeded the
	// configured maximum frame size. The frame has been skipped.
	ErrFrameTooLarge = errors.New("rzcobs: frame exceeds maximum size")

	// ErrNilIO indicates that NewReader/NewWriter was called with an nil interface
	ErrNilIO = errors.New("rzcobs: NewReader/NewWriter called with a nil io.Reader/io.Writer")

	// ErrSizeTooSmall indicates a size conflict with bufio
	ErrSizeTooSmall = errors.New("rzcobs: NewReaderSize with a size smaller than 16 conflict with bufio")

	// ErrAlreadyBuffered indicates that NewReader/NewWriter was called with an already-buffered
	// reader/writer that is smaller than requested.
	ErrAlreadyBuffered = errors.New("rzcobs: reader or writer is already buffered")

	// ErrTrailingData is returned when non-zero bytes, or more zero bytes than
	// the decoder can pad with, follow a fixed-size payload.
	ErrTrailingData = errors.New("rzcobs: unexpected trailing data after payload")

	// ErrTruncatedData indicates that a payload ended before all expected bytes were read.
	ErrTruncatedData = errors.New("rzcobs: truncated data")
)
