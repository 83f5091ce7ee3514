package rzcobs

import "github.com/puzpuzpuz/xsync/v4"

// Stats counts frame traffic. One Stats may be shared by any number of
// Readers and Writers running on different goroutines.
type Stats struct {
	Frames    *xsync.Counter // frames read or written, counted before decoding
	WireBytes *xsync.Counter // frame bytes, terminators included
	Payload   *xsync.Counter // message bytes before encoding or after decoding
	Malformed *xsync.Counter // frames rejected with ErrMalformedFrame
	Oversized *xsync.Counter // frames skipped with ErrFrameTooLarge
}

// StatsSnapshot is a point-in-time copy of Stats.
type StatsSnapshot struct {
	Frames    int64
	WireBytes int64
	Payload   int64
	Malformed int64
	Oversized int64
}

func NewStats() *Stats {
	return &Stats{
		Frames:    xsync.NewCounter(),
		WireBytes: xsync.NewCounter(),
		Payload:   xsync.NewCounter(),
		Malformed: xsync.NewCounter(),
		Oversized: xsync.NewCounter(),
	}
}

// Snapshot reads all counters. Counters are read one by one, so a snapshot
// taken under load is not atomic across fields.
func (s *Stats) Snapshot() StatsSnapshot {
	return StatsSnapshot{
		Frames:    s.Frames.Value(),
		WireBytes: s.WireBytes.Value(),
		Payload:   s.Payload.Value(),
		Malformed: s.Malformed.Value(),
		Oversized: s.Oversized.Value(),
	}
}

// Reset zeroes all counters.
func (s *Stats) Reset() {
	s.Frames.Reset()
	s.WireBytes.Reset()
	s.Payload.Reset()
	s.Malformed.Reset()
	s.Oversized.Reset()
}

// the record helpers accept a nil receiver so streams without Stats skip counting.

func (s *Stats) frame(wire int) {
	if s == nil {
		return
	}
	s.Frames.Inc()
	s.WireBytes.Add(int64(wire))
}

func (s *Stats) message(payload int) {
	if s != nil {
		s.Payload.Add(int64(payload))
	}
}

func (s *Stats) malformed() {
	if s != nil {
		s.Malformed.Inc()
	}
}

func (s *Stats) oversized() {
	if s != nil {
		s.Oversized.Inc()
	}
}
