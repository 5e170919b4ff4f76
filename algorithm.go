package cipherkit

import (
	"fmt"
	"unicode/utf8"

	"github.com/allisson/go-cipherkit/internal/engine"
)

// Algorithm identifies a symmetric cipher primitive. The numeric values are
// the engine's ABI and mirror libgcrypt's cipher codes exactly; they are a
// stable external contract.
type Algorithm int

const (
	Idea          Algorithm = engine.AlgoIdea
	TripleDes     Algorithm = engine.AlgoTripleDes
	Cast5         Algorithm = engine.AlgoCast5
	Blowfish      Algorithm = engine.AlgoBlowfish
	SaferSk128    Algorithm = engine.AlgoSaferSk128
	DesSk         Algorithm = engine.AlgoDesSk
	Aes           Algorithm = engine.AlgoAes
	Aes192        Algorithm = engine.AlgoAes192
	Aes256        Algorithm = engine.AlgoAes256
	Twofish       Algorithm = engine.AlgoTwofish
	Arcfour       Algorithm = engine.AlgoArcfour
	Des           Algorithm = engine.AlgoDes
	Twofish128    Algorithm = engine.AlgoTwofish128
	Serpent128    Algorithm = engine.AlgoSerpent128
	Serpent192    Algorithm = engine.AlgoSerpent192
	Serpent256    Algorithm = engine.AlgoSerpent256
	Rfc2268_40    Algorithm = engine.AlgoRfc2268_40
	Rfc2268_128   Algorithm = engine.AlgoRfc2268_128
	Seed          Algorithm = engine.AlgoSeed
	Camellia128   Algorithm = engine.AlgoCamellia128
	Camellia192   Algorithm = engine.AlgoCamellia192
	Camellia256   Algorithm = engine.AlgoCamellia256
	Salsa20       Algorithm = engine.AlgoSalsa20
	Salsa20r12    Algorithm = engine.AlgoSalsa20r12
	Gost28147     Algorithm = engine.AlgoGost28147
	Chacha20      Algorithm = engine.AlgoChacha20
	Gost28147Mesh Algorithm = engine.AlgoGost28147Mesh
	Sm4           Algorithm = engine.AlgoSm4

	// Aliases carried over from the native enumeration.
	Aes128      = Aes
	Rijndael    = Aes
	Rijndael128 = Aes
	Rijndael192 = Aes192
	Rijndael256 = Aes256
)

// AlgorithmFromName maps a canonical cipher name (case-sensitive, e.g.
// "AES256" or "CHACHA20") to its Algorithm. The second return value is false
// when the name is unrecognized.
func AlgorithmFromName(name string) (Algorithm, bool) {
	code, ok := engine.AlgoByName(name)
	return Algorithm(code), ok
}

// Algorithms returns every enumerated algorithm in ascending code order,
// including those the engine has no working implementation for.
func Algorithms() []Algorithm {
	codes := engine.AlgoCodes()
	out := make([]Algorithm, len(codes))
	for i, c := range codes {
		out[i] = Algorithm(c)
	}
	return out
}

// IsAvailable reports whether the engine carries a working implementation of
// the algorithm. It triggers the lazy library initialization.
func (a Algorithm) IsAvailable() bool {
	if err := ensureInit(); err != nil {
		return false
	}
	return engine.AlgoAvailable(int(a))
}

// Name returns the canonical display name. It returns ErrUnknownAlgorithm
// for codes the catalog has no name for, and ErrInvalidName if the stored
// name is not valid text.
func (a Algorithm) Name() (string, error) {
	name, ok := engine.AlgoName(int(a))
	if !ok {
		return "", ErrUnknownAlgorithm
	}
	if !utf8.ValidString(name) {
		return "", ErrInvalidName
	}
	return name, nil
}

// KeyLen returns the canonical key length in bytes; 0 for unknown codes.
func (a Algorithm) KeyLen() int { return engine.AlgoKeyLen(int(a)) }

// BlockLen returns the block length in bytes; 0 for stream ciphers and
// unknown codes.
func (a Algorithm) BlockLen() int { return engine.AlgoBlockLen(int(a)) }

// String implements fmt.Stringer.
func (a Algorithm) String() string {
	if name, err := a.Name(); err == nil {
		return name
	}
	return fmt.Sprintf("Algorithm(%d)", int(a))
}
