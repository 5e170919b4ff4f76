package engine

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/des"
	"crypto/rc4"

	"golang.org/x/crypto/blowfish"
	"golang.org/x/crypto/cast5"
	"golang.org/x/crypto/chacha20"
	"golang.org/x/crypto/twofish"
)

// Algorithm codes. The numeric values are the libgcrypt ABI and form a stable
// external contract; they must never be renumbered.
const (
	AlgoIdea          = 1
	AlgoTripleDes     = 2
	AlgoCast5         = 3
	AlgoBlowfish      = 4
	AlgoSaferSk128    = 5
	AlgoDesSk         = 6
	AlgoAes           = 7
	AlgoAes192        = 8
	AlgoAes256        = 9
	AlgoTwofish       = 10
	AlgoArcfour       = 301
	AlgoDes           = 302
	AlgoTwofish128    = 303
	AlgoSerpent128    = 304
	AlgoSerpent192    = 305
	AlgoSerpent256    = 306
	AlgoRfc2268_40    = 307
	AlgoRfc2268_128   = 308
	AlgoSeed          = 309
	AlgoCamellia128   = 310
	AlgoCamellia192   = 311
	AlgoCamellia256   = 312
	AlgoSalsa20       = 313
	AlgoSalsa20r12    = 314
	AlgoGost28147     = 315
	AlgoChacha20      = 316
	AlgoGost28147Mesh = 317
	AlgoSm4           = 318
)

// Mode codes, same ABI contract as the algorithm codes.
const (
	ModeEcb      = 1
	ModeCfb      = 2
	ModeCbc      = 3
	ModeStream   = 4
	ModeOfb      = 5
	ModeCtr      = 6
	ModeAesWrap  = 7
	ModeCcm      = 8
	ModeGcm      = 9
	ModePoly1305 = 10
	ModeOcb      = 11
	ModeCfb8     = 12
	ModeXts      = 13
	ModeEax      = 14
)

// Flag bits accepted by Open.
const (
	FlagSecure     = 1
	FlagEnableSync = 2
	FlagCbcCts     = 4
	FlagCbcMac     = 8

	flagsAll = FlagSecure | FlagEnableSync | FlagCbcCts | FlagCbcMac
)

// algoSpec describes one catalog entry. Entries without a constructor are
// enumerated for ABI completeness but report as unavailable.
type algoSpec struct {
	code     int
	name     string
	keyLen   int // canonical key length in bytes
	blockLen int // 0 for stream ciphers
	minKey   int // 0 means the key length is fixed at keyLen
	maxKey   int

	newBlock  func(key []byte) (cipher.Block, error)
	newStream func(key, nonce []byte) (cipher.Stream, Status)
	nonceLens []int // accepted IV lengths in Stream mode; nil means no IV
}

func (s *algoSpec) available() bool {
	return s.newBlock != nil || s.newStream != nil
}

func (s *algoSpec) keyLenOK(n int) bool {
	if s.minKey > 0 {
		return n >= s.minKey && n <= s.maxKey
	}
	return n == s.keyLen
}

func newChaCha20Stream(key, nonce []byte) (cipher.Stream, Status) {
	ok := false
	for _, n := range []int{chacha20.NonceSize, chacha20.NonceSizeX} {
		if len(nonce) == n {
			ok = true
		}
	}
	if !ok {
		return nil, StatusInvalidIVLength
	}
	s, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		return nil, StatusInvalidKeyLength
	}
	return s, StatusOK
}

func newArcfourStream(key, _ []byte) (cipher.Stream, Status) {
	s, err := rc4.NewCipher(key)
	if err != nil {
		return nil, StatusInvalidKeyLength
	}
	return s, StatusOK
}

// algoTable holds every enumerated algorithm keyed by its ABI code.
var algoTable = map[int]*algoSpec{
	AlgoIdea:       {code: AlgoIdea, name: "IDEA", keyLen: 16, blockLen: 8},
	AlgoTripleDes:  {code: AlgoTripleDes, name: "3DES", keyLen: 24, blockLen: 8, newBlock: des.NewTripleDESCipher},
	AlgoCast5:      {code: AlgoCast5, name: "CAST5", keyLen: 16, blockLen: 8, newBlock: newCast5},
	AlgoBlowfish:   {code: AlgoBlowfish, name: "BLOWFISH", keyLen: 16, blockLen: 8, minKey: 1, maxKey: 56, newBlock: newBlowfish},
	AlgoSaferSk128: {code: AlgoSaferSk128},
	AlgoDesSk:      {code: AlgoDesSk},
	AlgoAes:        {code: AlgoAes, name: "AES", keyLen: 16, blockLen: 16, newBlock: aes.NewCipher},
	AlgoAes192:     {code: AlgoAes192, name: "AES192", keyLen: 24, blockLen: 16, newBlock: aes.NewCipher},
	AlgoAes256:     {code: AlgoAes256, name: "AES256", keyLen: 32, blockLen: 16, newBlock: aes.NewCipher},
	AlgoTwofish:    {code: AlgoTwofish, name: "TWOFISH", keyLen: 32, blockLen: 16, newBlock: newTwofish},
	AlgoArcfour: {
		code: AlgoArcfour, name: "ARCFOUR", keyLen: 16, blockLen: 0, minKey: 1, maxKey: 256,
		newStream: newArcfourStream,
	},
	AlgoDes:         {code: AlgoDes, name: "DES", keyLen: 8, blockLen: 8, newBlock: des.NewCipher},
	AlgoTwofish128:  {code: AlgoTwofish128, name: "TWOFISH128", keyLen: 16, blockLen: 16, newBlock: newTwofish},
	AlgoSerpent128:  {code: AlgoSerpent128, name: "SERPENT128", keyLen: 16, blockLen: 16},
	AlgoSerpent192:  {code: AlgoSerpent192, name: "SERPENT192", keyLen: 24, blockLen: 16},
	AlgoSerpent256:  {code: AlgoSerpent256, name: "SERPENT256", keyLen: 32, blockLen: 16},
	AlgoRfc2268_40:  {code: AlgoRfc2268_40, name: "RFC2268_40", keyLen: 5, blockLen: 8},
	AlgoRfc2268_128: {code: AlgoRfc2268_128, name: "RFC2268_128", keyLen: 16, blockLen: 8},
	AlgoSeed:        {code: AlgoSeed, name: "SEED", keyLen: 16, blockLen: 16},
	AlgoCamellia128: {code: AlgoCamellia128, name: "CAMELLIA128", keyLen: 16, blockLen: 16},
	AlgoCamellia192: {code: AlgoCamellia192, name: "CAMELLIA192", keyLen: 24, blockLen: 16},
	AlgoCamellia256: {code: AlgoCamellia256, name: "CAMELLIA256", keyLen: 32, blockLen: 16},
	AlgoSalsa20: {
		code: AlgoSalsa20, name: "SALSA20", keyLen: 32, blockLen: 0,
		newStream: newSalsa20Stream, nonceLens: []int{8},
	},
	AlgoSalsa20r12: {code: AlgoSalsa20r12, name: "SALSA20R12", keyLen: 32, blockLen: 0},
	AlgoGost28147:  {code: AlgoGost28147, name: "GOST28147", keyLen: 32, blockLen: 8},
	AlgoChacha20: {
		code: AlgoChacha20, name: "CHACHA20", keyLen: 32, blockLen: 0,
		newStream: newChaCha20Stream, nonceLens: []int{chacha20.NonceSize, chacha20.NonceSizeX},
	},
	AlgoGost28147Mesh: {code: AlgoGost28147Mesh, name: "GOST28147_MESH", keyLen: 32, blockLen: 8},
	AlgoSm4:           {code: AlgoSm4, name: "SM4", keyLen: 16, blockLen: 16},
}

var algoByName = func() map[string]int {
	m := make(map[string]int, len(algoTable))
	for code, spec := range algoTable {
		if spec.name != "" {
			m[spec.name] = code
		}
	}
	return m
}()

func newCast5(key []byte) (cipher.Block, error)    { return cast5.NewCipher(key) }
func newBlowfish(key []byte) (cipher.Block, error) { return blowfish.NewCipher(key) }
func newTwofish(key []byte) (cipher.Block, error)  { return twofish.NewCipher(key) }

// AlgoByName maps a canonical cipher name to its algorithm code. The match is
// exact (case-sensitive).
func AlgoByName(name string) (int, bool) {
	code, ok := algoByName[name]
	return code, ok
}

// AlgoName returns the canonical name for an algorithm code, or false when
// the code has no name in the catalog.
func AlgoName(code int) (string, bool) {
	spec, ok := algoTable[code]
	if !ok || spec.name == "" {
		return "", false
	}
	return spec.name, true
}

// AlgoKeyLen returns the canonical key length in bytes, or 0 for unknown
// codes.
func AlgoKeyLen(code int) int {
	if spec, ok := algoTable[code]; ok {
		return spec.keyLen
	}
	return 0
}

// AlgoBlockLen returns the block length in bytes; 0 for stream ciphers and
// unknown codes.
func AlgoBlockLen(code int) int {
	if spec, ok := algoTable[code]; ok {
		return spec.blockLen
	}
	return 0
}

// AlgoAvailable reports whether the engine carries a working implementation
// of the algorithm.
func AlgoAvailable(code int) bool {
	spec, ok := algoTable[code]
	return ok && spec.available()
}

// AlgoCodes returns every enumerated algorithm code in ascending order.
func AlgoCodes() []int {
	codes := make([]int, 0, len(algoTable))
	for code := range algoTable {
		codes = append(codes, code)
	}
	for i := 1; i < len(codes); i++ {
		for j := i; j > 0 && codes[j] < codes[j-1]; j-- {
			codes[j], codes[j-1] = codes[j-1], codes[j]
		}
	}
	return codes
}
