package engine

import (
	"crypto/cipher"
	"crypto/subtle"
	"encoding/binary"
)

const gcmTagSize = 16

// ghash is an incremental GHASH accumulator (NIST SP 800-38D) with a partial
// block buffer so callers may feed data in arbitrary chunks.
type ghash struct {
	h0, h1 uint64 // hash subkey, big-endian halves
	y0, y1 uint64 // accumulator
	buf    [16]byte
	n      int
}

func newGhash(h []byte) *ghash {
	return &ghash{
		h0: binary.BigEndian.Uint64(h[:8]),
		h1: binary.BigEndian.Uint64(h[8:]),
	}
}

// mul sets y = (y ^ x) * h in GF(2^128) with the GCM bit ordering.
func (g *ghash) mul(x0, x1 uint64) {
	x0 ^= g.y0
	x1 ^= g.y1
	var z0, z1 uint64
	v0, v1 := g.h0, g.h1
	for i := 0; i < 128; i++ {
		var bit uint64
		if i < 64 {
			bit = x0 >> (63 - i)
		} else {
			bit = x1 >> (127 - i)
		}
		if bit&1 != 0 {
			z0 ^= v0
			z1 ^= v1
		}
		carry := v1 & 1
		v1 = v1>>1 | v0<<63
		v0 >>= 1
		if carry != 0 {
			v0 ^= 0xe100000000000000
		}
	}
	g.y0, g.y1 = z0, z1
}

func (g *ghash) block(b []byte) {
	g.mul(binary.BigEndian.Uint64(b[:8]), binary.BigEndian.Uint64(b[8:16]))
}

func (g *ghash) write(p []byte) {
	if g.n > 0 {
		n := copy(g.buf[g.n:], p)
		g.n += n
		p = p[n:]
		if g.n == 16 {
			g.block(g.buf[:])
			g.n = 0
		}
	}
	for len(p) >= 16 {
		g.block(p[:16])
		p = p[16:]
	}
	if len(p) > 0 {
		g.n = copy(g.buf[:], p)
	}
}

// flush zero-pads and absorbs any buffered partial block.
func (g *ghash) flush() {
	if g.n > 0 {
		for i := g.n; i < 16; i++ {
			g.buf[i] = 0
		}
		g.block(g.buf[:])
		g.n = 0
	}
}

func (g *ghash) lengths(aadBits, ctBits uint64) {
	g.mul(aadBits, ctBits)
}

func (g *ghash) sum(dst []byte) {
	binary.BigEndian.PutUint64(dst[:8], g.y0)
	binary.BigEndian.PutUint64(dst[8:16], g.y1)
}

func inc32(ctr []byte) {
	n := binary.BigEndian.Uint32(ctr[12:16])
	binary.BigEndian.PutUint32(ctr[12:16], n+1)
}

// gcmMode is an incremental Galois/Counter Mode session. Unlike the one-shot
// stdlib AEAD it supports the authenticate / encrypt / get_tag call sequence
// with chunked inputs; the result is cross-checked against crypto/cipher's
// GCM in the tests.
type gcmMode struct {
	baseMode
	b cipher.Block
	h [16]byte

	g       *ghash
	ekj0    [16]byte
	ctr     [16]byte
	ks      [16]byte
	ksPos   int
	aadLen  uint64
	dataLen uint64
	started bool // first encrypt/decrypt seen
	final   bool
	tag     [16]byte
}

func newGcmMode(b cipher.Block) *gcmMode {
	m := &gcmMode{b: b}
	var zero [16]byte
	b.Encrypt(m.h[:], zero[:])
	m.setNonce(make([]byte, 12))
	return m
}

// setNonce derives J0 and primes the counter key stream. A 12-byte nonce uses
// the fast path; any other length goes through GHASH as the standard requires.
func (m *gcmMode) setNonce(nonce []byte) {
	m.g = newGhash(m.h[:])
	var j0 [16]byte
	if len(nonce) == 12 {
		copy(j0[:], nonce)
		j0[15] = 1
	} else {
		g := newGhash(m.h[:])
		g.write(nonce)
		g.flush()
		g.lengths(0, uint64(len(nonce))*8)
		g.sum(j0[:])
	}
	m.b.Encrypt(m.ekj0[:], j0[:])
	copy(m.ctr[:], j0[:])
	m.ksPos = 16
	m.aadLen = 0
	m.dataLen = 0
	m.started = false
	m.final = false
}

func (m *gcmMode) SetIV(iv []byte) Status {
	if len(iv) == 0 {
		return StatusInvalidIVLength
	}
	m.setNonce(iv)
	return StatusOK
}

func (m *gcmMode) Reset() { m.setNonce(make([]byte, 12)) }

func (m *gcmMode) Authenticate(aad []byte) Status {
	if m.started || m.final {
		return StatusInvalidState
	}
	m.g.write(aad)
	m.aadLen += uint64(len(aad))
	return StatusOK
}

func (m *gcmMode) startData() {
	if !m.started {
		m.g.flush()
		m.started = true
	}
}

func (m *gcmMode) keystreamXOR(dst, src []byte) {
	for i := 0; i < len(src); i++ {
		if m.ksPos == 16 {
			inc32(m.ctr[:])
			m.b.Encrypt(m.ks[:], m.ctr[:])
			m.ksPos = 0
		}
		dst[i] = src[i] ^ m.ks[m.ksPos]
		m.ksPos++
	}
}

func (m *gcmMode) Encrypt(dst, src []byte) Status {
	if m.final {
		return StatusInvalidState
	}
	if len(dst) < len(src) {
		return StatusShortBuffer
	}
	m.startData()
	m.keystreamXOR(dst, src)
	m.g.write(dst[:len(src)])
	m.dataLen += uint64(len(src))
	return StatusOK
}

func (m *gcmMode) Decrypt(dst, src []byte) Status {
	if m.final {
		return StatusInvalidState
	}
	if len(dst) < len(src) {
		return StatusShortBuffer
	}
	m.startData()
	// Absorb ciphertext before the XOR so in-place calls stay correct.
	m.g.write(src)
	m.dataLen += uint64(len(src))
	m.keystreamXOR(dst, src)
	return StatusOK
}

func (m *gcmMode) finalize() {
	if m.final {
		return
	}
	m.startData()
	m.g.flush()
	m.g.lengths(m.aadLen*8, m.dataLen*8)
	m.g.sum(m.tag[:])
	for i := range m.tag {
		m.tag[i] ^= m.ekj0[i]
	}
	m.final = true
}

func (m *gcmMode) GetTag(dst []byte) Status {
	if len(dst) != gcmTagSize {
		return StatusInvalidLength
	}
	m.finalize()
	copy(dst, m.tag[:])
	return StatusOK
}

func (m *gcmMode) VerifyTag(tag []byte) Status {
	if len(tag) != gcmTagSize {
		return StatusInvalidLength
	}
	m.finalize()
	if subtle.ConstantTimeCompare(tag, m.tag[:]) != 1 {
		return StatusAuthentication
	}
	return StatusOK
}
