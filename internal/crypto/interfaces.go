// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package crypto protects the credentials kept in saved profiles.
//
// A secret is sealed with AES-256-GCM under a key derived from a passphrase
// through Argon2id. The sealed form is a single printable string that
// carries the Argon2id parameters and the salt next to the ciphertext:
//
//	$argon2id$v=19$m=65536,t=1,p=4$<salt>$<nonce ‖ ciphertext>
//
// so it can be stored in a text column and opened later even if the default
// parameters change.
package crypto

// Keychain seals and opens short secrets with a passphrase.
type Keychain interface {
	// Seal encrypts secret under a key derived from passphrase with a fresh
	// random salt and nonce. Sealing the same secret twice yields different
	// strings.
	Seal(secret, passphrase string) (string, error)

	// Open reverses Seal. A wrong passphrase or a tampered value returns
	// ErrWrongPassphrase; a value not produced by Seal returns
	// ErrMalformedSecret.
	Open(sealed, passphrase string) (string, error)
}
