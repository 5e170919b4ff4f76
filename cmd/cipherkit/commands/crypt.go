package commands

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	validation "github.com/jellydator/validation"
	"golang.org/x/sync/errgroup"

	cipherkit "github.com/allisson/go-cipherkit"
	"github.com/allisson/go-cipherkit/internal/config"
	appvalidation "github.com/allisson/go-cipherkit/internal/validation"
)

const aeadTagSize = 16

// Request carries the common encrypt/decrypt command inputs.
type Request struct {
	Algorithm string
	Mode      string
	Key       string
	IV        string
	AAD       string
	Suffix    string
	Inputs    []string
}

// Validate checks the request fields before any cipher work starts.
func (r Request) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Key, validation.Required, appvalidation.HexString{}),
		validation.Field(&r.IV, appvalidation.HexString{}),
		validation.Field(&r.AAD, appvalidation.HexString{}),
		validation.Field(&r.Inputs, validation.Required),
	)
}

type job struct {
	algo   cipherkit.Algorithm
	mode   cipherkit.Mode
	flags  cipherkit.Flags
	key    []byte
	iv     []byte
	aad    []byte
	suffix string
}

func buildJob(req Request) (*job, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	cfg := config.Load()
	algoName := req.Algorithm
	if algoName == "" {
		algoName = cfg.DefaultAlgorithm
	}
	modeName := req.Mode
	if modeName == "" {
		modeName = cfg.DefaultMode
	}

	algo, ok := cipherkit.AlgorithmFromName(algoName)
	if !ok {
		return nil, fmt.Errorf("unknown algorithm %q", algoName)
	}
	mode, ok := modeFromName(modeName)
	if !ok {
		return nil, fmt.Errorf("unknown mode %q", modeName)
	}

	flags := cipherkit.FlagNone
	if cfg.SecureMemory {
		flags |= cipherkit.FlagSecure
	}

	j := &job{algo: algo, mode: mode, flags: flags, suffix: req.Suffix}
	var err error
	if j.key, err = hex.DecodeString(req.Key); err != nil {
		return nil, fmt.Errorf("invalid key: %w", err)
	}
	if j.iv, err = hex.DecodeString(req.IV); err != nil {
		return nil, fmt.Errorf("invalid iv: %w", err)
	}
	if j.aad, err = hex.DecodeString(req.AAD); err != nil {
		return nil, fmt.Errorf("invalid aad: %w", err)
	}
	return j, nil
}

func modeFromName(name string) (cipherkit.Mode, bool) {
	for _, m := range cipherkit.Modes() {
		if m.String() == name {
			return m, true
		}
	}
	return 0, false
}

func (j *job) aead() bool {
	return j.mode == cipherkit.Gcm || j.mode == cipherkit.Poly1305
}

// open starts a fresh session configured with the job's key, IV and AAD.
// Each worker opens its own session: sessions are not safe for concurrent
// use.
func (j *job) open() (*cipherkit.Session, error) {
	session, err := cipherkit.OpenWithFlags(j.algo, j.mode, j.flags)
	if err != nil {
		return nil, err
	}
	if err := session.SetKey(j.key); err != nil {
		_ = session.Close()
		return nil, err
	}
	if len(j.iv) > 0 {
		if err := session.SetIV(j.iv); err != nil {
			_ = session.Close()
			return nil, err
		}
	}
	if len(j.aad) > 0 {
		if err := session.Authenticate(j.aad); err != nil {
			_ = session.Close()
			return nil, err
		}
	}
	return session, nil
}

func (j *job) encryptFile(path string) error {
	session, err := j.open()
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	plaintext, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var out []byte
	switch {
	case j.aead():
		out = make([]byte, len(plaintext)+aeadTagSize)
		if err := session.Encrypt(out[:len(plaintext)], plaintext); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := session.GetTag(out[len(plaintext):]); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	case j.mode == cipherkit.AesWrap:
		out = make([]byte, len(plaintext)+8)
		if err := session.Encrypt(out, plaintext); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	default:
		out = make([]byte, len(plaintext))
		if err := session.Encrypt(out, plaintext); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return os.WriteFile(path+j.suffix, out, 0o600)
}

func (j *job) decryptFile(path string) error {
	session, err := j.open()
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	ciphertext, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var out []byte
	switch {
	case j.aead():
		if len(ciphertext) < aeadTagSize {
			return fmt.Errorf("%s: ciphertext shorter than the authentication tag", path)
		}
		body := ciphertext[:len(ciphertext)-aeadTagSize]
		tag := ciphertext[len(ciphertext)-aeadTagSize:]
		out = make([]byte, len(body))
		if err := session.Decrypt(out, body); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		if err := session.VerifyTag(tag); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	case j.mode == cipherkit.AesWrap:
		if len(ciphertext) < 16 {
			return fmt.Errorf("%s: wrapped key too short", path)
		}
		out = make([]byte, len(ciphertext)-8)
		if err := session.Decrypt(out, ciphertext); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	default:
		out = make([]byte, len(ciphertext))
		if err := session.Decrypt(out, ciphertext); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
	}
	return os.WriteFile(outputPath(path, j.suffix), out, 0o600)
}

func outputPath(path, suffix string) string {
	if suffix != "" && strings.HasSuffix(path, suffix) {
		return strings.TrimSuffix(path, suffix)
	}
	return path + ".dec"
}

func runFiles(ctx context.Context, req Request, fn func(*job, string) error) error {
	j, err := buildJob(req)
	if err != nil {
		return err
	}

	cfg := config.Load()
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(cfg.MaxWorkers)
	for _, path := range req.Inputs {
		g.Go(func() error { return fn(j, path) })
	}
	return g.Wait()
}

// RunEncrypt encrypts every input file, processing files concurrently with
// one session per worker.
func RunEncrypt(ctx context.Context, req Request) error {
	return runFiles(ctx, req, (*job).encryptFile)
}

// RunDecrypt decrypts every input file.
func RunDecrypt(ctx context.Context, req Request) error {
	return runFiles(ctx, req, (*job).decryptFile)
}
