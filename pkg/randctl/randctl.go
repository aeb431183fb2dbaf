// Package randctl owns seeded pseudo-random generators for the veiling
// engine. Every generator is keyed by a (logical stream name, seed) pair and
// is handed to exactly one caller; there is no process-global registry, so
// unrelated sessions and tests can never contaminate each other's draws.
package randctl

import (
	"crypto/sha256"
	"encoding/binary"
	mrand "math/rand/v2"
)

// DefaultSeed is used whenever a caller supplies no seed. Falling back to a
// fixed value keeps the "no seed" case reproducible instead of silently
// pulling entropy from the OS.
const DefaultSeed uint64 = 0x5eed_da7a_0e11

// Stream returns a deterministic generator for a logical stream. The same
// (name, seed) pair yields the same draw sequence across runs, processes and
// machines. The caller owns the returned generator; it must not be shared
// across concurrent veiling calls.
func Stream(name string, seed uint64) *mrand.Rand {
	hi, lo := mix(name, seed)
	return mrand.New(mrand.NewPCG(hi, lo))
}

// Derive produces a child seed from a parent seed and a string salt. A single
// master seed can fan out into independent substreams per modality or profile
// without the substreams correlating.
func Derive(seed uint64, salt string) uint64 {
	hi, _ := mix(salt, seed)
	return hi
}

// mix hashes the stream name and seed into two 64-bit words for PCG state.
// SHA-256 keeps the mapping stable across architectures.
func mix(name string, seed uint64) (uint64, uint64) {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], seed)

	h := sha256.New()
	h.Write(buf[:])
	h.Write([]byte{0})
	h.Write([]byte(name))
	sum := h.Sum(nil)

	return binary.BigEndian.Uint64(sum[0:8]), binary.BigEndian.Uint64(sum[8:16])
}
