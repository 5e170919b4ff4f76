package engine

import (
	"crypto/cipher"
	"crypto/subtle"
	"encoding/binary"
)

// wrapDefaultICV is the RFC 3394 initial value.
var wrapDefaultICV = [8]byte{0xa6, 0xa6, 0xa6, 0xa6, 0xa6, 0xa6, 0xa6, 0xa6}

// wrapMode implements the RFC 3394 key wrap over a 128-bit block cipher.
// Encrypt wraps (output is input + 8 bytes), Decrypt unwraps and checks the
// integrity value; SetIV overrides the default ICV.
type wrapMode struct {
	baseMode
	b   cipher.Block
	icv [8]byte
}

func newWrapMode(b cipher.Block) *wrapMode {
	return &wrapMode{b: b, icv: wrapDefaultICV}
}

func (m *wrapMode) SetIV(iv []byte) Status {
	if len(iv) != 8 {
		return StatusInvalidIVLength
	}
	copy(m.icv[:], iv)
	return StatusOK
}

func (m *wrapMode) Reset() { m.icv = wrapDefaultICV }

func (m *wrapMode) Encrypt(dst, src []byte) Status {
	if len(src)%8 != 0 || len(src) < 16 {
		return StatusInvalidLength
	}
	if len(dst) < len(src)+8 {
		return StatusShortBuffer
	}
	n := len(src) / 8

	a := make([]byte, 8)
	copy(a, m.icv[:])
	r := make([]byte, len(src))
	copy(r, src)

	var b [16]byte
	for j := 0; j <= 5; j++ {
		for i := 1; i <= n; i++ {
			copy(b[:8], a)
			copy(b[8:], r[(i-1)*8:i*8])
			m.b.Encrypt(b[:], b[:])
			t := uint64(n*j + i)
			copy(a, b[:8])
			xorUint64(a, t)
			copy(r[(i-1)*8:i*8], b[8:])
		}
	}
	copy(dst[:8], a)
	copy(dst[8:len(src)+8], r)
	return StatusOK
}

func (m *wrapMode) Decrypt(dst, src []byte) Status {
	if len(src)%8 != 0 || len(src) < 24 {
		return StatusInvalidLength
	}
	if len(dst) < len(src)-8 {
		return StatusShortBuffer
	}
	n := len(src)/8 - 1

	a := make([]byte, 8)
	copy(a, src[:8])
	r := make([]byte, len(src)-8)
	copy(r, src[8:])

	var b [16]byte
	for j := 5; j >= 0; j-- {
		for i := n; i >= 1; i-- {
			t := uint64(n*j + i)
			copy(b[:8], a)
			xorUint64(b[:8], t)
			copy(b[8:], r[(i-1)*8:i*8])
			m.b.Decrypt(b[:], b[:])
			copy(a, b[:8])
			copy(r[(i-1)*8:i*8], b[8:])
		}
	}
	if subtle.ConstantTimeCompare(a, m.icv[:]) != 1 {
		return StatusAuthentication
	}
	copy(dst[:len(r)], r)
	return StatusOK
}

func xorUint64(b []byte, v uint64) {
	var t [8]byte
	binary.BigEndian.PutUint64(t[:], v)
	for i := 0; i < 8; i++ {
		b[i] ^= t[i]
	}
}
