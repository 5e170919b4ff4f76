package engine

import "crypto/cipher"

func xorInto(dst, a, b []byte) {
	for i := range dst {
		dst[i] = a[i] ^ b[i]
	}
}

// checkBlockBufs validates the common buffer rules of the block modes:
// output capacity at least the input length and, when aligned is set, an
// input that is a multiple of the block size.
func checkBlockBufs(dst, src []byte, bs int, aligned bool) Status {
	if aligned && len(src)%bs != 0 {
		return StatusInvalidLength
	}
	if len(dst) < len(src) {
		return StatusShortBuffer
	}
	return StatusOK
}

// ecbMode encrypts each block independently.
type ecbMode struct {
	baseMode
	b cipher.Block
}

func (m *ecbMode) SetIV([]byte) Status { return StatusOK } // no IV; accepted and ignored
func (m *ecbMode) Reset()              {}

func (m *ecbMode) Encrypt(dst, src []byte) Status { return m.run(dst, src, m.b.Encrypt) }
func (m *ecbMode) Decrypt(dst, src []byte) Status { return m.run(dst, src, m.b.Decrypt) }

func (m *ecbMode) run(dst, src []byte, op func(dst, src []byte)) Status {
	bs := m.b.BlockSize()
	if st := checkBlockBufs(dst, src, bs, true); st != StatusOK {
		return st
	}
	for i := 0; i < len(src); i += bs {
		op(dst[i:i+bs], src[i:i+bs])
	}
	return StatusOK
}

// cbcMode chains blocks through an IV register. The cts flag enables CS3
// ciphertext stealing, the mac flag turns encryption into CBC-MAC (only the
// final chaining value is emitted).
type cbcMode struct {
	baseMode
	b        cipher.Block
	cts, mac bool
	chain    []byte
}

func (m *cbcMode) ensureChain() []byte {
	if m.chain == nil {
		m.chain = make([]byte, m.b.BlockSize())
	}
	return m.chain
}

func (m *cbcMode) SetIV(iv []byte) Status {
	if len(iv) != m.b.BlockSize() {
		return StatusInvalidIVLength
	}
	m.chain = append(m.chain[:0], iv...)
	return StatusOK
}

func (m *cbcMode) Reset() { m.chain = nil }

func (m *cbcMode) Encrypt(dst, src []byte) Status {
	bs := m.b.BlockSize()
	chain := m.ensureChain()
	switch {
	case m.mac:
		if len(src)%bs != 0 {
			return StatusInvalidLength
		}
		if len(dst) < bs {
			return StatusShortBuffer
		}
		x := make([]byte, bs)
		for i := 0; i < len(src); i += bs {
			xorInto(x, chain, src[i:i+bs])
			m.b.Encrypt(chain, x)
		}
		copy(dst[:bs], chain)
		return StatusOK
	case m.cts && len(src) > bs:
		return m.encryptCTS(dst, src)
	default:
		if st := checkBlockBufs(dst, src, bs, true); st != StatusOK {
			return st
		}
		x := make([]byte, bs)
		for i := 0; i < len(src); i += bs {
			xorInto(x, chain, src[i:i+bs])
			m.b.Encrypt(dst[i:i+bs], x)
			copy(chain, dst[i:i+bs])
		}
		return StatusOK
	}
}

// encryptCTS implements CS3 ciphertext stealing: the last two ciphertext
// blocks are always swapped and a trailing partial block steals from its
// predecessor. Requires len(src) > blocksize.
func (m *cbcMode) encryptCTS(dst, src []byte) Status {
	bs := m.b.BlockSize()
	if len(dst) < len(src) {
		return StatusShortBuffer
	}
	chain := m.ensureChain()
	r := len(src) % bs
	full := len(src) - r

	// Stash the partial tail before anything is overwritten; dst may alias src.
	pad := make([]byte, bs)
	copy(pad, src[full:])

	x := make([]byte, bs)
	for i := 0; i < full; i += bs {
		xorInto(x, chain, src[i:i+bs])
		m.b.Encrypt(dst[i:i+bs], x)
		copy(chain, dst[i:i+bs])
	}

	if r == 0 {
		// Aligned input: swap the last two blocks.
		a, b := dst[full-2*bs:full-bs], dst[full-bs:full]
		for i := 0; i < bs; i++ {
			a[i], b[i] = b[i], a[i]
		}
		copy(chain, dst[full-2*bs:full-bs])
		return StatusOK
	}

	last := make([]byte, bs) // ciphertext of the final full plaintext block
	copy(last, dst[full-bs:full])
	xorInto(x, pad, last)
	m.b.Encrypt(dst[full-bs:full], x)
	copy(dst[full:], last[:r])
	copy(chain, dst[full-bs:full])
	return StatusOK
}

func (m *cbcMode) Decrypt(dst, src []byte) Status {
	if m.mac {
		return StatusInvalidState
	}
	bs := m.b.BlockSize()
	chain := m.ensureChain()
	if m.cts && len(src) > bs {
		return m.decryptCTS(dst, src)
	}
	if st := checkBlockBufs(dst, src, bs, true); st != StatusOK {
		return st
	}
	c := make([]byte, bs)
	p := make([]byte, bs)
	for i := 0; i < len(src); i += bs {
		copy(c, src[i:i+bs])
		m.b.Decrypt(p, c)
		xorInto(dst[i:i+bs], p, chain)
		copy(chain, c)
	}
	return StatusOK
}

func (m *cbcMode) decryptCTS(dst, src []byte) Status {
	bs := m.b.BlockSize()
	if len(dst) < len(src) {
		return StatusShortBuffer
	}
	chain := m.ensureChain()
	r := len(src) % bs
	nFull := len(src) / bs

	if r == 0 {
		// Aligned: the wire order of the last two blocks is swapped.
		head := (nFull - 2) * bs
		ca := make([]byte, bs) // true final ciphertext block
		cb := make([]byte, bs) // true penultimate ciphertext block
		copy(ca, src[head:head+bs])
		copy(cb, src[head+bs:])

		st := m.decryptPlainRun(dst[:head], src[:head], chain)
		if st != StatusOK {
			return st
		}
		p := make([]byte, bs)
		m.b.Decrypt(p, cb)
		xorInto(dst[head:head+bs], p, chain)
		m.b.Decrypt(p, ca)
		xorInto(dst[head+bs:head+2*bs], p, cb)
		copy(chain, ca)
		return StatusOK
	}

	head := (nFull - 1) * bs
	cn := make([]byte, bs) // stolen (full) block
	tail := make([]byte, r)
	copy(cn, src[head:head+bs])
	copy(tail, src[head+bs:])

	st := m.decryptPlainRun(dst[:head], src[:head], chain)
	if st != StatusOK {
		return st
	}

	d := make([]byte, bs)
	m.b.Decrypt(d, cn)
	// Reconstruct the penultimate ciphertext block from the truncated tail.
	prev := make([]byte, bs)
	copy(prev, tail)
	copy(prev[r:], d[r:])

	p := make([]byte, bs)
	m.b.Decrypt(p, prev)
	xorInto(dst[head:head+bs], p, chain)
	for i := 0; i < r; i++ {
		dst[head+bs+i] = d[i] ^ tail[i]
	}
	copy(chain, cn)
	return StatusOK
}

func (m *cbcMode) decryptPlainRun(dst, src, chain []byte) Status {
	bs := m.b.BlockSize()
	c := make([]byte, bs)
	p := make([]byte, bs)
	for i := 0; i < len(src); i += bs {
		copy(c, src[i:i+bs])
		m.b.Decrypt(p, c)
		xorInto(dst[i:i+bs], p, chain)
		copy(chain, c)
	}
	return StatusOK
}

// cfbMode is full-block-width cipher feedback, usable as a byte stream
// across calls.
type cfbMode struct {
	baseMode
	b   cipher.Block
	reg []byte
	ks  []byte
	pos int
}

func (m *cfbMode) init() {
	bs := m.b.BlockSize()
	if m.reg == nil {
		m.reg = make([]byte, bs)
		m.ks = make([]byte, bs)
		m.pos = bs
	}
}

func (m *cfbMode) SetIV(iv []byte) Status {
	if len(iv) != m.b.BlockSize() {
		return StatusInvalidIVLength
	}
	m.init()
	copy(m.reg, iv)
	m.pos = m.b.BlockSize()
	return StatusOK
}

func (m *cfbMode) Reset() { m.reg = nil }

func (m *cfbMode) Encrypt(dst, src []byte) Status { return m.run(dst, src, true) }
func (m *cfbMode) Decrypt(dst, src []byte) Status { return m.run(dst, src, false) }

func (m *cfbMode) run(dst, src []byte, encrypt bool) Status {
	if len(dst) < len(src) {
		return StatusShortBuffer
	}
	m.init()
	bs := m.b.BlockSize()
	for i := 0; i < len(src); i++ {
		if m.pos == bs {
			m.b.Encrypt(m.ks, m.reg)
			m.pos = 0
		}
		in := src[i]
		out := in ^ m.ks[m.pos]
		// The feedback register is refilled with ciphertext bytes.
		if encrypt {
			m.reg[m.pos] = out
		} else {
			m.reg[m.pos] = in
		}
		dst[i] = out
		m.pos++
	}
	return StatusOK
}

// cfb8Mode is cipher feedback with an 8-bit shift register step.
type cfb8Mode struct {
	baseMode
	b   cipher.Block
	reg []byte
	ks  []byte
}

func (m *cfb8Mode) init() {
	if m.reg == nil {
		m.reg = make([]byte, m.b.BlockSize())
		m.ks = make([]byte, m.b.BlockSize())
	}
}

func (m *cfb8Mode) SetIV(iv []byte) Status {
	if len(iv) != m.b.BlockSize() {
		return StatusInvalidIVLength
	}
	m.init()
	copy(m.reg, iv)
	return StatusOK
}

func (m *cfb8Mode) Reset() { m.reg = nil }

func (m *cfb8Mode) Encrypt(dst, src []byte) Status { return m.run(dst, src, true) }
func (m *cfb8Mode) Decrypt(dst, src []byte) Status { return m.run(dst, src, false) }

func (m *cfb8Mode) run(dst, src []byte, encrypt bool) Status {
	if len(dst) < len(src) {
		return StatusShortBuffer
	}
	m.init()
	bs := m.b.BlockSize()
	for i := 0; i < len(src); i++ {
		m.b.Encrypt(m.ks, m.reg)
		in := src[i]
		out := in ^ m.ks[0]
		fb := out
		if !encrypt {
			fb = in
		}
		copy(m.reg, m.reg[1:])
		m.reg[bs-1] = fb
		dst[i] = out
	}
	return StatusOK
}

// ofbMode generates a key stream by repeatedly encrypting the IV register.
type ofbMode struct {
	baseMode
	b   cipher.Block
	reg []byte
	pos int
}

func (m *ofbMode) init() {
	if m.reg == nil {
		m.reg = make([]byte, m.b.BlockSize())
		m.pos = m.b.BlockSize()
	}
}

func (m *ofbMode) SetIV(iv []byte) Status {
	if len(iv) != m.b.BlockSize() {
		return StatusInvalidIVLength
	}
	m.init()
	copy(m.reg, iv)
	m.pos = m.b.BlockSize()
	return StatusOK
}

func (m *ofbMode) Reset() { m.reg = nil }

func (m *ofbMode) Encrypt(dst, src []byte) Status { return m.run(dst, src) }
func (m *ofbMode) Decrypt(dst, src []byte) Status { return m.run(dst, src) }

func (m *ofbMode) run(dst, src []byte) Status {
	if len(dst) < len(src) {
		return StatusShortBuffer
	}
	m.init()
	bs := m.b.BlockSize()
	for i := 0; i < len(src); i++ {
		if m.pos == bs {
			m.b.Encrypt(m.reg, m.reg)
			m.pos = 0
		}
		dst[i] = src[i] ^ m.reg[m.pos]
		m.pos++
	}
	return StatusOK
}

// ctrMode runs the block cipher in counter mode. The whole counter block is
// incremented big-endian, and SetIV is accepted as an alias for SetCtr so
// IV-oriented callers behave as expected.
type ctrMode struct {
	baseMode
	b      cipher.Block
	ctr    []byte
	stream cipher.Stream
}

func (m *ctrMode) SetCtr(ctr []byte) Status {
	if len(ctr) != m.b.BlockSize() {
		return StatusInvalidIVLength
	}
	m.ctr = append(m.ctr[:0], ctr...)
	m.stream = nil
	return StatusOK
}

// SetIV seeds the counter block. This diverges from libgcrypt, where setiv on
// a CTR handle stores an IV the mode never reads; treating the value as the
// initial counter gives IV-oriented callers the key stream they expect.
func (m *ctrMode) SetIV(iv []byte) Status { return m.SetCtr(iv) }

func (m *ctrMode) Reset() {
	m.ctr = nil
	m.stream = nil
}

func (m *ctrMode) Encrypt(dst, src []byte) Status { return m.run(dst, src) }
func (m *ctrMode) Decrypt(dst, src []byte) Status { return m.run(dst, src) }

func (m *ctrMode) run(dst, src []byte) Status {
	if len(dst) < len(src) {
		return StatusShortBuffer
	}
	if m.stream == nil {
		if m.ctr == nil {
			m.ctr = make([]byte, m.b.BlockSize())
		}
		m.stream = cipher.NewCTR(m.b, m.ctr)
	}
	m.stream.XORKeyStream(dst[:len(src)], src)
	return StatusOK
}
