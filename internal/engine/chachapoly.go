package engine

import (
	"crypto/subtle"
	"encoding/binary"

	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/poly1305"
)

const polyTagSize = 16

// chachaPolyMode is an incremental ChaCha20-Poly1305 session (RFC 8439). The
// one-time Poly1305 key comes from the first key-stream block; data is
// enciphered with the counter starting at one. Cross-checked against
// x/crypto's one-shot chacha20poly1305 in the tests.
type chachaPolyMode struct {
	baseMode
	key   []byte
	nonce []byte

	stream  *chacha20.Cipher
	mac     *poly1305.MAC
	aadLen  uint64
	dataLen uint64
	started bool
	final   bool
	tag     [16]byte
}

func newChaChaPolyMode(key []byte) *chachaPolyMode {
	m := &chachaPolyMode{key: key}
	m.rekey(make([]byte, chacha20.NonceSize))
	return m
}

func (m *chachaPolyMode) rekey(nonce []byte) {
	m.nonce = append([]byte(nil), nonce...)
	m.stream = nil
	m.mac = nil
	m.aadLen = 0
	m.dataLen = 0
	m.started = false
	m.final = false
}

// ensure lazily derives the one-time MAC key and the data cipher. The nonce
// is fixed from this point until Reset or SetIV.
func (m *chachaPolyMode) ensure() Status {
	if m.mac != nil {
		return StatusOK
	}
	otk, err := chacha20.NewUnauthenticatedCipher(m.key, m.nonce)
	if err != nil {
		return StatusGeneral
	}
	var polyKey [32]byte
	otk.XORKeyStream(polyKey[:], polyKey[:])
	m.mac = poly1305.New(&polyKey)

	m.stream, err = chacha20.NewUnauthenticatedCipher(m.key, m.nonce)
	if err != nil {
		return StatusGeneral
	}
	m.stream.SetCounter(1)
	return StatusOK
}

func (m *chachaPolyMode) SetIV(iv []byte) Status {
	if len(iv) != chacha20.NonceSize {
		return StatusInvalidIVLength
	}
	m.rekey(iv)
	return StatusOK
}

func (m *chachaPolyMode) Reset() { m.rekey(make([]byte, chacha20.NonceSize)) }

func (m *chachaPolyMode) Authenticate(aad []byte) Status {
	if m.started || m.final {
		return StatusInvalidState
	}
	if st := m.ensure(); st != StatusOK {
		return st
	}
	m.mac.Write(aad)
	m.aadLen += uint64(len(aad))
	return StatusOK
}

func (m *chachaPolyMode) writePad(n uint64) {
	if rem := n % 16; rem != 0 {
		var zero [16]byte
		m.mac.Write(zero[:16-rem])
	}
}

func (m *chachaPolyMode) startData() Status {
	if st := m.ensure(); st != StatusOK {
		return st
	}
	if !m.started {
		m.writePad(m.aadLen)
		m.started = true
	}
	return StatusOK
}

func (m *chachaPolyMode) Encrypt(dst, src []byte) Status {
	if m.final {
		return StatusInvalidState
	}
	if len(dst) < len(src) {
		return StatusShortBuffer
	}
	if st := m.startData(); st != StatusOK {
		return st
	}
	m.stream.XORKeyStream(dst[:len(src)], src)
	m.mac.Write(dst[:len(src)])
	m.dataLen += uint64(len(src))
	return StatusOK
}

func (m *chachaPolyMode) Decrypt(dst, src []byte) Status {
	if m.final {
		return StatusInvalidState
	}
	if len(dst) < len(src) {
		return StatusShortBuffer
	}
	if st := m.startData(); st != StatusOK {
		return st
	}
	// Absorb ciphertext before the XOR so in-place calls stay correct.
	m.mac.Write(src)
	m.dataLen += uint64(len(src))
	m.stream.XORKeyStream(dst[:len(src)], src)
	return StatusOK
}

func (m *chachaPolyMode) finalize() Status {
	if m.final {
		return StatusOK
	}
	if st := m.startData(); st != StatusOK {
		return st
	}
	m.writePad(m.dataLen)
	var lens [16]byte
	binary.LittleEndian.PutUint64(lens[:8], m.aadLen)
	binary.LittleEndian.PutUint64(lens[8:], m.dataLen)
	m.mac.Write(lens[:])
	m.mac.Sum(m.tag[:0])
	m.final = true
	return StatusOK
}

func (m *chachaPolyMode) GetTag(dst []byte) Status {
	if len(dst) != polyTagSize {
		return StatusInvalidLength
	}
	if st := m.finalize(); st != StatusOK {
		return st
	}
	copy(dst, m.tag[:])
	return StatusOK
}

func (m *chachaPolyMode) VerifyTag(tag []byte) Status {
	if len(tag) != polyTagSize {
		return StatusInvalidLength
	}
	if st := m.finalize(); st != StatusOK {
		return st
	}
	if subtle.ConstantTimeCompare(tag, m.tag[:]) != 1 {
		return StatusAuthentication
	}
	return StatusOK
}
