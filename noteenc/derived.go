// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package noteenc

import (
	"crypto/rand"
	"crypto/sha256"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// SaltSize is the PBKDF2 salt length in bytes.
	SaltSize = 16
	// PBKDF2Iterations is the fixed iteration count for password-derived keys.
	PBKDF2Iterations = 100000
)

// DeriveKeyFromPassword computes the 32-byte AES key PBKDF2-HMAC-SHA256
// derives from password and salt, with the fixed 100,000 iteration count.
func DeriveKeyFromPassword(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, PBKDF2Iterations, KeySize, sha256.New)
}

// NewSalt generates a fresh random PBKDF2 salt.
func NewSalt() ([]byte, error) {
	salt := make([]byte, SaltSize)
	_, err := rand.Read(salt)
	return salt, err
}

// EncryptWithPassword seals plaintext under a key freshly derived from
// password; the returned salt must be stored (base64, in metadata) so
// the same key can be rederived for decryption.
func EncryptWithPassword(password string, plaintext []byte) (salt []byte, sealed Sealed, err error) {
	salt, err = NewSalt()
	if nil != err {
		return nil, Sealed{}, err
	}
	key := DeriveKeyFromPassword(password, salt)
	sealed, err = Encrypt(key, plaintext)
	return salt, sealed, err
}

// DecryptWithPassword rederives the key from password and salt and
// opens sealed, failing with fault.ErrDecrypt on tag mismatch.
func DecryptWithPassword(password string, salt []byte, sealed Sealed) ([]byte, error) {
	key := DeriveKeyFromPassword(password, salt)
	return Decrypt(key, sealed)
}
