package engine

import (
	"bytes"
	"crypto/aes"
	"encoding/hex"
)

// Initialize runs the engine's power-up known-answer test (the FIPS 197
// appendix C.1 vector). It is cheap and idempotent; the public package
// gates it behind a sync.Once.
func Initialize() Status {
	key, _ := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	pt, _ := hex.DecodeString("00112233445566778899aabbccddeeff")
	want, _ := hex.DecodeString("69c4e0d86a7b0430d8cdb78070b4c55a")

	b, err := aes.NewCipher(key)
	if err != nil {
		return StatusSelfTest
	}
	got := make([]byte, 16)
	b.Encrypt(got, pt)
	if !bytes.Equal(got, want) {
		return StatusSelfTest
	}
	return StatusOK
}
