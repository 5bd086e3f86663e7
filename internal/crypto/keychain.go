// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"
)

const (
	sealedPrefix = "$argon2id$"
	saltLen      = 16
	keyLen       = 32

	// upper bound on the memory cost accepted by Open, in KiB
	maxArgonMemory = 4 * 1024 * 1024
)

var b64 = base64.RawStdEncoding

// keychain is the private implementation of [Keychain].
type keychain struct {
	// Argon2id tuning parameters used for new seals. Open reads the
	// parameters back from the sealed string.
	argonTime    uint32
	argonMemory  uint32
	argonThreads uint8
}

// Option adjusts a keychain built by [NewKeychain].
type Option func(*keychain)

// WithArgonParams overrides the Argon2id cost parameters. memory is in KiB.
func WithArgonParams(time, memory uint32, threads uint8) Option {
	return func(k *keychain) {
		k.argonTime = time
		k.argonMemory = memory
		k.argonThreads = threads
	}
}

// NewKeychain constructs a [Keychain] with the Argon2id parameters
// recommended by OWASP:
//   - time cost:   1 iteration
//   - memory cost: 64 MiB
//   - parallelism: 4 threads
func NewKeychain(opts ...Option) Keychain {
	k := &keychain{
		argonTime:    1,
		argonMemory:  64 * 1024,
		argonThreads: 4,
	}
	for _, opt := range opts {
		opt(k)
	}
	return k
}

// IsSealed reports whether s looks like the output of [Keychain.Seal].
func IsSealed(s string) bool {
	return strings.HasPrefix(s, sealedPrefix)
}

func (k *keychain) Seal(secret, passphrase string) (string, error) {
	if passphrase == "" {
		return "", ErrEmptyPassphrase
	}

	salt, err := randomBytes(saltLen)
	if err != nil {
		return "", fmt.Errorf("generate salt: %w", err)
	}

	gcm, err := newGCM(argon2.IDKey([]byte(passphrase), salt, k.argonTime, k.argonMemory, k.argonThreads, keyLen))
	if err != nil {
		return "", err
	}

	nonce, err := randomBytes(gcm.NonceSize())
	if err != nil {
		return "", fmt.Errorf("generate nonce: %w", err)
	}

	// nonce ‖ ciphertext
	blob := gcm.Seal(nonce, nonce, []byte(secret), nil)

	return fmt.Sprintf("%sv=%d$m=%d,t=%d,p=%d$%s$%s",
		sealedPrefix, argon2.Version,
		k.argonMemory, k.argonTime, k.argonThreads,
		b64.EncodeToString(salt), b64.EncodeToString(blob),
	), nil
}

func (k *keychain) Open(sealed, passphrase string) (string, error) {
	if passphrase == "" {
		return "", ErrEmptyPassphrase
	}

	p, err := parseSealed(sealed)
	if err != nil {
		return "", err
	}

	gcm, err := newGCM(argon2.IDKey([]byte(passphrase), p.salt, p.time, p.memory, p.threads, keyLen))
	if err != nil {
		return "", err
	}

	nonceSize := gcm.NonceSize()
	if len(p.blob) < nonceSize {
		return "", fmt.Errorf("%w: ciphertext too short", ErrMalformedSecret)
	}
	nonce, ciphertext := p.blob[:nonceSize], p.blob[nonceSize:]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", ErrWrongPassphrase
	}
	return string(plaintext), nil
}

type sealedParts struct {
	time    uint32
	memory  uint32
	threads uint8
	salt    []byte
	blob    []byte
}

func parseSealed(s string) (sealedParts, error) {
	var p sealedParts

	if !IsSealed(s) {
		return p, ErrMalformedSecret
	}
	fields := strings.Split(s, "$")
	if len(fields) != 6 {
		return p, ErrMalformedSecret
	}

	var version int
	if _, err := fmt.Sscanf(fields[2], "v=%d", &version); err != nil || version != argon2.Version {
		return p, fmt.Errorf("%w: unsupported version %q", ErrMalformedSecret, fields[2])
	}

	var threads uint32
	if _, err := fmt.Sscanf(fields[3], "m=%d,t=%d,p=%d", &p.memory, &p.time, &threads); err != nil {
		return p, fmt.Errorf("%w: parameters %q", ErrMalformedSecret, fields[3])
	}
	if p.time == 0 || threads == 0 || threads > 255 || p.memory < 8*threads || p.memory > maxArgonMemory {
		return p, fmt.Errorf("%w: parameters %q", ErrMalformedSecret, fields[3])
	}
	p.threads = uint8(threads)

	var err error
	if p.salt, err = b64.DecodeString(fields[4]); err != nil {
		return p, fmt.Errorf("%w: salt: %v", ErrMalformedSecret, err)
	}
	if p.blob, err = b64.DecodeString(fields[5]); err != nil {
		return p, fmt.Errorf("%w: ciphertext: %v", ErrMalformedSecret, err)
	}
	return p, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("create gcm: %w", err)
	}
	return gcm, nil
}

func randomBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, err
	}
	return b, nil
}
