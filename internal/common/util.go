package common

import (
	"crypto/rand"
)

// GenerateRandByteArray returns size cryptographically random bytes.
// It panics if the system's secure random source fails.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray zeroes the buffer in place. Used to scrub key material
// once it is no longer needed.
func WipeByteArray(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}
