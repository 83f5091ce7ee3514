package rzcobs

// Sizer is an interface for types that can report their binary size.
// AppendFrame uses it to size the frame buffer up front.
type Sizer interface {
	// Size returns the size of the type in bytes when binary encoded.
	Size() int
}
