package simulation

import (
	"encoding/binary"
	"strings"

	"golang.org/x/crypto/blake2b"
)

// Stream is a deterministic sequence of floats in [0,1) derived from a
// key string. The same key yields the same sequence on every call, in
// every process. Sub-streams are derived by joining the logical run seed
// with domain tags (seed:stage:entity:purpose), which keeps decisions for
// different purposes independent while making each one reproducible.
type Stream struct {
	key     string
	counter uint64
}

func NewStream(parts ...string) *Stream {
	return &Stream{key: strings.Join(parts, ":")}
}

// Next returns the next value in [0,1).
func (s *Stream) Next() float64 {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], s.counter)
	s.counter++

	h, _ := blake2b.New256(nil)
	_, _ = h.Write([]byte(s.key))
	_, _ = h.Write([]byte{'#'})
	_, _ = h.Write(buf[:])
	sum := h.Sum(nil)

	// 53 bits of entropy keeps the conversion exact in float64.
	v := binary.BigEndian.Uint64(sum[:8]) >> 11
	return float64(v) / float64(1<<53)
}
