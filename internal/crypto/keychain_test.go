// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"errors"
	"strings"
	"testing"
)

func cheapKeychain() Keychain {
	return NewKeychain(WithArgonParams(1, 64, 1))
}

func TestSealOpen_RoundTrip(t *testing.T) {
	k := cheapKeychain()

	for _, secret := range []string{"hunter2", "", "7c5f9d6e-1a2b-4c3d-8e9f-0a1b2c3d4e5f", "пароль"} {
		sealed, err := k.Seal(secret, "correct horse")
		if err != nil {
			t.Fatalf("Seal(%q) error: %v", secret, err)
		}
		if !IsSealed(sealed) {
			t.Fatalf("Seal(%q) = %q, want %q prefix", secret, sealed, sealedPrefix)
		}
		if secret != "" && strings.Contains(sealed, secret) {
			t.Fatalf("sealed value %q contains the plaintext", sealed)
		}

		got, err := k.Open(sealed, "correct horse")
		if err != nil {
			t.Fatalf("Open error: %v", err)
		}
		if got != secret {
			t.Fatalf("Open = %q, want %q", got, secret)
		}
	}
}

func TestSeal_FreshSaltAndNonce(t *testing.T) {
	k := cheapKeychain()

	a, err := k.Seal("same", "pass")
	if err != nil {
		t.Fatalf("Seal error: %v", err)
	}
	b, err := k.Seal("same", "pass")
	if err != nil {
		t.Fatalf("Seal error: %v", err)
	}
	if a == b {
		t.Fatalf("expected two seals of the same secret to differ")
	}
}

func TestSeal_RecordsParameters(t *testing.T) {
	sealed, err := NewKeychain(WithArgonParams(2, 128, 2)).Seal("x", "pass")
	if err != nil {
		t.Fatalf("Seal error: %v", err)
	}
	if !strings.HasPrefix(sealed, "$argon2id$v=19$m=128,t=2,p=2$") {
		t.Fatalf("sealed = %q, want recorded parameters", sealed)
	}

	// a keychain with other defaults still opens it
	got, err := cheapKeychain().Open(sealed, "pass")
	if err != nil {
		t.Fatalf("Open error: %v", err)
	}
	if got != "x" {
		t.Fatalf("Open = %q, want %q", got, "x")
	}
}

func TestOpen_WrongPassphrase(t *testing.T) {
	k := cheapKeychain()
	sealed, err := k.Seal("hunter2", "right")
	if err != nil {
		t.Fatalf("Seal error: %v", err)
	}

	_, err = k.Open(sealed, "wrong")
	if !errors.Is(err, ErrWrongPassphrase) {
		t.Fatalf("Open error = %v, want ErrWrongPassphrase", err)
	}
}

func TestOpen_Tampered(t *testing.T) {
	k := cheapKeychain()
	sealed, err := k.Seal("hunter2", "pass")
	if err != nil {
		t.Fatalf("Seal error: %v", err)
	}

	i := strings.LastIndex(sealed, "$")
	blob, err := b64.DecodeString(sealed[i+1:])
	if err != nil {
		t.Fatalf("decode ciphertext: %v", err)
	}
	blob[len(blob)-1] ^= 0x01
	tampered := sealed[:i+1] + b64.EncodeToString(blob)

	_, err = k.Open(tampered, "pass")
	if !errors.Is(err, ErrWrongPassphrase) {
		t.Fatalf("Open error = %v, want ErrWrongPassphrase", err)
	}
}

func TestOpen_Malformed(t *testing.T) {
	k := cheapKeychain()

	tests := []struct {
		name   string
		sealed string
	}{
		{name: "plaintext", sealed: "hunter2"},
		{name: "missing fields", sealed: "$argon2id$v=19$m=64,t=1,p=1$c2FsdA"},
		{name: "other version", sealed: "$argon2id$v=16$m=64,t=1,p=1$c2FsdA$YmxvYg"},
		{name: "bad params", sealed: "$argon2id$v=19$m=x,t=1,p=1$c2FsdA$YmxvYg"},
		{name: "zero threads", sealed: "$argon2id$v=19$m=64,t=1,p=0$c2FsdA$YmxvYg"},
		{name: "huge memory", sealed: "$argon2id$v=19$m=999999999,t=1,p=1$c2FsdA$YmxvYg"},
		{name: "bad salt", sealed: "$argon2id$v=19$m=64,t=1,p=1$!!$YmxvYg"},
		{name: "short ciphertext", sealed: "$argon2id$v=19$m=64,t=1,p=1$c2FsdA$YmxvYg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := k.Open(tt.sealed, "pass")
			if !errors.Is(err, ErrMalformedSecret) {
				t.Fatalf("Open error = %v, want ErrMalformedSecret", err)
			}
		})
	}
}

func TestEmptyPassphrase(t *testing.T) {
	k := cheapKeychain()

	if _, err := k.Seal("x", ""); !errors.Is(err, ErrEmptyPassphrase) {
		t.Fatalf("Seal error = %v, want ErrEmptyPassphrase", err)
	}
	if _, err := k.Open("$argon2id$v=19$m=64,t=1,p=1$c2FsdA$YmxvYg", ""); !errors.Is(err, ErrEmptyPassphrase) {
		t.Fatalf("Open error = %v, want ErrEmptyPassphrase", err)
	}
}
