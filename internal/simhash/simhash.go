// Package simhash builds locality-sensitive line fingerprints: similar token
// multisets produce fingerprints with a small Hamming distance.
package simhash

import (
	"hash/fnv"
	"math/bits"
)

// MaxBits is the widest supported fingerprint.
const MaxBits = 64

// Fingerprint computes a bits-wide SimHash over tokens. Each token is hashed
// with 64-bit FNV-1a; every bit position keeps a signed counter that is
// incremented for a set bit and decremented otherwise, and the output bit is
// set iff its counter ends up positive. The result depends only on the token
// multiset. Empty input yields 0; bits outside [1, MaxBits] are clamped.
func Fingerprint(tokens []string, width int) uint64 {
	if len(tokens) == 0 {
		return 0
	}
	width = clamp(width)
	var vec [MaxBits]int
	for _, t := range tokens {
		h := Hash(t)
		for b := 0; b < width; b++ {
			if (h>>uint(b))&1 == 1 {
				vec[b]++
			} else {
				vec[b]--
			}
		}
	}
	var out uint64
	for b := 0; b < width; b++ {
		if vec[b] > 0 {
			out |= 1 << uint(b)
		}
	}
	return out
}

// Hash is the token hash used by Fingerprint: 64-bit FNV-1a, stable across
// runs and platforms.
func Hash(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}

// Hamming returns the number of differing bits between a and b.
func Hamming(a, b uint64) int {
	return bits.OnesCount64(a ^ b)
}

func clamp(width int) int {
	if width < 1 {
		return 1
	}
	if width > MaxBits {
		return MaxBits
	}
	return width
}
