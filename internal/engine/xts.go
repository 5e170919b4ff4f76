package engine

import "crypto/cipher"

// xtsMode implements the IEEE 1619 XEX tweaked codebook mode. The session key
// is double width: the first half drives the data cipher, the second half
// encrypts the 16-byte tweak installed with SetIV. Inputs must be
// block-aligned; the tweak sequence continues across calls.
type xtsMode struct {
	baseMode
	b1, b2 cipher.Block
	tweak  []byte
}

func (m *xtsMode) SetIV(iv []byte) Status {
	if len(iv) != 16 {
		return StatusInvalidIVLength
	}
	m.tweak = make([]byte, 16)
	m.b2.Encrypt(m.tweak, iv)
	return StatusOK
}

func (m *xtsMode) Reset() { m.tweak = nil }

func (m *xtsMode) ensureTweak() []byte {
	if m.tweak == nil {
		m.tweak = make([]byte, 16)
		var zero [16]byte
		m.b2.Encrypt(m.tweak, zero[:])
	}
	return m.tweak
}

// doubleTweak multiplies the tweak by x in GF(2^128) with the XTS
// little-endian polynomial.
func doubleTweak(t []byte) {
	var carry byte
	for i := 0; i < 16; i++ {
		next := t[i] >> 7
		t[i] = t[i]<<1 | carry
		carry = next
	}
	if carry != 0 {
		t[0] ^= 0x87
	}
}

func (m *xtsMode) Encrypt(dst, src []byte) Status {
	return m.run(dst, src, m.b1.Encrypt)
}

func (m *xtsMode) Decrypt(dst, src []byte) Status {
	return m.run(dst, src, m.b1.Decrypt)
}

func (m *xtsMode) run(dst, src []byte, op func(dst, src []byte)) Status {
	if st := checkBlockBufs(dst, src, 16, true); st != StatusOK {
		return st
	}
	t := m.ensureTweak()
	var x [16]byte
	for i := 0; i < len(src); i += 16 {
		xorInto(x[:], src[i:i+16], t)
		op(x[:], x[:])
		xorInto(dst[i:i+16], x[:], t)
		doubleTweak(t)
	}
	return StatusOK
}
