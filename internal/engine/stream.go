package engine

import (
	"crypto/cipher"
	"encoding/binary"

	"golang.org/x/crypto/salsa20/salsa"
)

// streamMode drives the pure stream ciphers (RC4, ChaCha20, Salsa20). The
// key stream is created lazily on first use; when an algorithm takes a nonce
// and none was set, an all-zero nonce of the default length is used, matching
// the native engine's freshly keyed state.
type streamMode struct {
	baseMode
	spec   *algoSpec
	key    []byte
	iv     []byte
	stream cipher.Stream
}

func (m *streamMode) SetIV(iv []byte) Status {
	if m.spec.nonceLens == nil {
		// Algorithm takes no IV (RC4); accepted and ignored.
		return StatusOK
	}
	ok := false
	for _, n := range m.spec.nonceLens {
		if len(iv) == n {
			ok = true
		}
	}
	if !ok {
		return StatusInvalidIVLength
	}
	m.iv = append(m.iv[:0], iv...)
	m.stream = nil
	return StatusOK
}

func (m *streamMode) Reset() {
	m.iv = nil
	m.stream = nil
}

func (m *streamMode) Encrypt(dst, src []byte) Status { return m.run(dst, src) }
func (m *streamMode) Decrypt(dst, src []byte) Status { return m.run(dst, src) }

func (m *streamMode) run(dst, src []byte) Status {
	if len(dst) < len(src) {
		return StatusShortBuffer
	}
	if m.stream == nil {
		nonce := m.iv
		if nonce == nil && m.spec.nonceLens != nil {
			nonce = make([]byte, m.spec.nonceLens[0])
		}
		s, st := m.spec.newStream(m.key, nonce)
		if st != StatusOK {
			return st
		}
		m.stream = s
	}
	m.stream.XORKeyStream(dst[:len(src)], src)
	return StatusOK
}

// salsaStream adapts the low-level salsa core to cipher.Stream, keeping the
// block counter and unread key-stream bytes across calls.
type salsaStream struct {
	key      [32]byte
	nonce    [8]byte
	counter  uint64
	leftover [64]byte
	avail    int // unread bytes at the tail of leftover
}

func newSalsa20Stream(key, nonce []byte) (cipher.Stream, Status) {
	if len(key) != 32 {
		return nil, StatusInvalidKeyLength
	}
	if len(nonce) != 8 {
		return nil, StatusInvalidIVLength
	}
	s := &salsaStream{}
	copy(s.key[:], key)
	copy(s.nonce[:], nonce)
	return s, StatusOK
}

func (s *salsaStream) counterBlock() *[16]byte {
	var c [16]byte
	copy(c[:8], s.nonce[:])
	binary.LittleEndian.PutUint64(c[8:], s.counter)
	return &c
}

func (s *salsaStream) XORKeyStream(dst, src []byte) {
	// Drain key stream left over from a previous partial block.
	for len(src) > 0 && s.avail > 0 {
		dst[0] = src[0] ^ s.leftover[64-s.avail]
		dst = dst[1:]
		src = src[1:]
		s.avail--
	}
	if len(src) == 0 {
		return
	}

	full := len(src) / 64 * 64
	if full > 0 {
		salsa.XORKeyStream(dst[:full], src[:full], s.counterBlock(), &s.key)
		s.counter += uint64(full / 64)
		dst = dst[full:]
		src = src[full:]
	}
	if len(src) > 0 {
		var ks [64]byte
		salsa.XORKeyStream(ks[:], ks[:], s.counterBlock(), &s.key)
		s.counter++
		for i := range src {
			dst[i] = src[i] ^ ks[i]
		}
		copy(s.leftover[:], ks[:])
		s.avail = 64 - len(src)
	}
}
