package engine

import (
	"crypto/cipher"
	"sync/atomic"
)

var liveContexts atomic.Int64

// LiveContexts returns the number of open cipher contexts. Used as a handle
// leak probe by tests and exported metrics.
func LiveContexts() int64 {
	return liveContexts.Load()
}

// modeState is the per-mode operation surface of an open, keyed context.
// Operations that a mode does not support return StatusInvalidState.
type modeState interface {
	SetIV(iv []byte) Status
	SetCtr(ctr []byte) Status
	Reset()
	Authenticate(aad []byte) Status
	Encrypt(dst, src []byte) Status
	Decrypt(dst, src []byte) Status
	GetTag(dst []byte) Status
	VerifyTag(tag []byte) Status
}

// baseMode supplies the rejection defaults shared by all mode states.
type baseMode struct{}

func (baseMode) SetIV([]byte) Status        { return StatusInvalidState }
func (baseMode) SetCtr([]byte) Status       { return StatusInvalidState }
func (baseMode) Authenticate([]byte) Status { return StatusInvalidState }
func (baseMode) GetTag([]byte) Status       { return StatusInvalidState }
func (baseMode) VerifyTag([]byte) Status    { return StatusInvalidState }

// Context is one native cipher context. It is owned by exactly one public
// session; the engine never shares or aliases contexts.
type Context struct {
	spec   *algoSpec
	mode   int
	flags  int
	secure bool

	key    []byte
	block  cipher.Block // block-cipher algorithms only, set by SetKey
	block2 cipher.Block // tweak cipher, XTS only
	op     modeState    // nil until SetKey succeeds
	closed bool
}

// Open allocates a new context for the given algorithm, mode and flag codes.
// The combination is validated here; everything key-dependent is deferred to
// SetKey.
func Open(algo, mode, flags int) (*Context, Status) {
	if flags&^flagsAll != 0 {
		return nil, StatusUnsupportedFlags
	}
	if flags&FlagCbcCts != 0 && flags&FlagCbcMac != 0 {
		return nil, StatusUnsupportedFlags
	}
	spec, ok := algoTable[algo]
	if !ok || !spec.available() {
		return nil, StatusUnsupportedAlgorithm
	}
	if st := checkModeCombo(spec, mode); st != StatusOK {
		return nil, st
	}
	c := &Context{
		spec:   spec,
		mode:   mode,
		flags:  flags,
		secure: flags&FlagSecure != 0,
	}
	liveContexts.Add(1)
	return c, StatusOK
}

// checkModeCombo validates that the algorithm can be driven in the requested
// mode. CCM, OCB and EAX are enumerated but not implemented by this engine.
func checkModeCombo(spec *algoSpec, mode int) Status {
	switch mode {
	case ModeEcb, ModeCbc, ModeCfb, ModeCfb8, ModeOfb, ModeCtr:
		if spec.blockLen == 0 {
			return StatusUnsupportedMode
		}
	case ModeStream:
		if spec.blockLen != 0 {
			return StatusUnsupportedMode
		}
	case ModeGcm, ModeXts, ModeAesWrap:
		if spec.blockLen != 16 {
			return StatusUnsupportedMode
		}
	case ModePoly1305:
		if spec.code != AlgoChacha20 {
			return StatusUnsupportedMode
		}
	case ModeCcm, ModeOcb, ModeEax:
		return StatusUnsupportedMode
	default:
		return StatusUnsupportedMode
	}
	return StatusOK
}

// Close releases the context, wiping key material. It is idempotent.
func (c *Context) Close() {
	if c.closed {
		return
	}
	c.closed = true
	c.wipeKey()
	c.block = nil
	c.block2 = nil
	c.op = nil
	liveContexts.Add(-1)
}

func (c *Context) wipeKey() {
	if c.key == nil {
		return
	}
	if c.secure {
		secureFree(c.key)
	} else {
		wipe(c.key)
	}
	c.key = nil
}

// SetKey installs the symmetric key and builds the mode state machine. The
// key length must satisfy the algorithm's constraints; XTS needs a
// double-width key.
func (c *Context) SetKey(key []byte) Status {
	if c.closed {
		return StatusInvalidState
	}
	want := len(key)
	if c.mode == ModeXts {
		if want != 2*c.spec.keyLen {
			return StatusInvalidKeyLength
		}
	} else if !c.spec.keyLenOK(want) {
		return StatusInvalidKeyLength
	}

	buf, st := c.allocKey(want)
	if st != StatusOK {
		return st
	}
	copy(buf, key)

	var block, block2 cipher.Block
	if c.spec.newBlock != nil {
		var err error
		if c.mode == ModeXts {
			half := want / 2
			if block, err = c.spec.newBlock(buf[:half]); err == nil {
				block2, err = c.spec.newBlock(buf[half:])
			}
		} else {
			block, err = c.spec.newBlock(buf)
		}
		if err != nil {
			c.freeKey(buf)
			return StatusInvalidKeyLength
		}
	}

	op, st := c.newModeState(block, block2, buf)
	if st != StatusOK {
		c.freeKey(buf)
		return st
	}

	c.wipeKey()
	c.key = buf
	c.block = block
	c.block2 = block2
	c.op = op
	return StatusOK
}

func (c *Context) allocKey(n int) ([]byte, Status) {
	if c.secure {
		return secureAlloc(n)
	}
	return make([]byte, n), StatusOK
}

func (c *Context) freeKey(b []byte) {
	if c.secure {
		secureFree(b)
	} else {
		wipe(b)
	}
}

func (c *Context) newModeState(block, block2 cipher.Block, key []byte) (modeState, Status) {
	switch c.mode {
	case ModeEcb:
		return &ecbMode{b: block}, StatusOK
	case ModeCbc:
		return &cbcMode{b: block, cts: c.flags&FlagCbcCts != 0, mac: c.flags&FlagCbcMac != 0}, StatusOK
	case ModeCfb:
		return &cfbMode{b: block}, StatusOK
	case ModeCfb8:
		return &cfb8Mode{b: block}, StatusOK
	case ModeOfb:
		return &ofbMode{b: block}, StatusOK
	case ModeCtr:
		return &ctrMode{b: block}, StatusOK
	case ModeStream:
		return &streamMode{spec: c.spec, key: key}, StatusOK
	case ModeGcm:
		return newGcmMode(block), StatusOK
	case ModePoly1305:
		return newChaChaPolyMode(key), StatusOK
	case ModeXts:
		return &xtsMode{b1: block, b2: block2}, StatusOK
	case ModeAesWrap:
		return newWrapMode(block), StatusOK
	}
	return nil, StatusUnsupportedMode
}

func (c *Context) ready() bool {
	return !c.closed && c.op != nil
}

// SetIV installs the initialization vector. Requires an installed key.
func (c *Context) SetIV(iv []byte) Status {
	if !c.ready() {
		return StatusInvalidState
	}
	return c.op.SetIV(iv)
}

// SetCtr installs the initial counter block for CTR mode.
func (c *Context) SetCtr(ctr []byte) Status {
	if !c.ready() {
		return StatusInvalidState
	}
	return c.op.SetCtr(ctr)
}

// Reset drops IV, counter and authentication state while preserving the key,
// returning the context to the freshly keyed state. A reset before SetKey is
// a no-op, as in the native engines.
func (c *Context) Reset() Status {
	if c.closed {
		return StatusInvalidState
	}
	if c.op != nil {
		c.op.Reset()
	}
	return StatusOK
}

// Authenticate feeds additional authenticated data into an AEAD context.
func (c *Context) Authenticate(aad []byte) Status {
	if !c.ready() {
		return StatusInvalidState
	}
	return c.op.Authenticate(aad)
}

// Encrypt transforms src into dst. dst and src may be the same slice.
func (c *Context) Encrypt(dst, src []byte) Status {
	if !c.ready() {
		return StatusInvalidState
	}
	return c.op.Encrypt(dst, src)
}

// Decrypt transforms src into dst. dst and src may be the same slice.
func (c *Context) Decrypt(dst, src []byte) Status {
	if !c.ready() {
		return StatusInvalidState
	}
	return c.op.Decrypt(dst, src)
}

// GetTag extracts the authentication tag of an AEAD context into dst.
func (c *Context) GetTag(dst []byte) Status {
	if !c.ready() {
		return StatusInvalidState
	}
	return c.op.GetTag(dst)
}

// VerifyTag checks tag against the computed authentication tag in constant
// time.
func (c *Context) VerifyTag(tag []byte) Status {
	if !c.ready() {
		return StatusInvalidState
	}
	return c.op.VerifyTag(tag)
}
