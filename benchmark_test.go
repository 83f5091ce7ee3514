package rzcobs

import (
	"io"
	"math/rand/v2"
	"testing"
)

// benchPayload is half zero bytes, like a sparse binary struct dump.
func benchPayload(n int) []byte {
	rng := rand.New(rand.NewPCG(7, 7))
	b := make([]byte, n)
	for i := range b {
		if rng.IntN(2) == 0 {
			b[i] = byte(1 + rng.IntN(255))
		}
	}
	return b
}

func BenchmarkEncode(b *testing.B) {
	msg := benchPayload(4096)
	b.SetBytes(int64(len(msg)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = Encode(msg)
	}
}

func BenchmarkEncodeTo(b *testing.B) {
	msg := benchPayload(4096)
	dst := make([]byte, MaxEncodedLen(len(msg)))
	b.SetBytes(int64(len(msg)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = EncodeTo(dst, msg)
	}
}

func BenchmarkDecode(b *testing.B) {
	frame := Encode(benchPayload(4096))
	b.SetBytes(int64(len(frame)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = Decode(frame)
	}
}

func BenchmarkDecodeTo(b *testing.B) {
	frame := Encode(benchPayload(4096))
	dst := make([]byte, 4096+MaxPadding)
	b.SetBytes(int64(len(frame)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = DecodeTo(dst, frame)
	}
}

// Baseline: the stream Writer on top of the codec, to see the buffering overhead.
func BenchmarkWriterWriteMessage(b *testing.B) {
	msg := benchPayload(512)
	w, _ := NewWriter(io.Discard)
	b.SetBytes(int64(len(msg)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = w.WriteMessage(msg)
	}
	_, _ = w.Result()
}
