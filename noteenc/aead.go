// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package noteenc provides the crypto primitives layered on top of the
// codec registry: one-shot AEAD for whole payloads and titles, a
// password-derived variant of the same AEAD, a deterministic per-chunk
// stream cipher for streamnote data records, and the SHA-256 hash used
// throughout.
package noteenc

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"

	"github.com/bitmark-inc/noteledger/fault"
)

const (
	// KeySize is the AES-256 key length in bytes.
	KeySize = 32
	// NonceSize is the GCM nonce length in bytes.
	NonceSize = 12
	// TagSize is the GCM authentication tag length in bytes.
	TagSize = 16
)

// Sealed is the result of an AEAD encryption: ciphertext, nonce and tag
// kept separate so callers can place them in metadata fields the way
// spec.md's wire format expects (iv/tag stored base64 alongside data).
type Sealed struct {
	Nonce      [NonceSize]byte
	Tag        [TagSize]byte
	Ciphertext []byte
}

func newGCM(key []byte) (cipher.AEAD, error) {
	if KeySize != len(key) {
		return nil, fault.ErrInvalidKeyLength
	}
	block, err := aes.NewCipher(key)
	if nil != err {
		return nil, err
	}
	return cipher.NewGCMWithTagSize(block, TagSize)
}

// Encrypt seals plaintext under key with a fresh random nonce.
func Encrypt(key []byte, plaintext []byte) (Sealed, error) {
	aead, err := newGCM(key)
	if nil != err {
		return Sealed{}, err
	}

	var nonce [NonceSize]byte
	if _, err := rand.Read(nonce[:]); nil != err {
		return Sealed{}, err
	}

	sealed := aead.Seal(nil, nonce[:], plaintext, nil)
	// crypto/cipher appends the tag to the ciphertext; split it out so
	// the wire format can store nonce/tag/data as separate fields.
	cutAt := len(sealed) - TagSize
	out := Sealed{Nonce: nonce, Ciphertext: sealed[:cutAt]}
	copy(out.Tag[:], sealed[cutAt:])
	return out, nil
}

// Decrypt opens a Sealed value under key, failing with fault.ErrDecrypt
// on any tag mismatch.
func Decrypt(key []byte, sealed Sealed) ([]byte, error) {
	aead, err := newGCM(key)
	if nil != err {
		return nil, err
	}

	combined := make([]byte, 0, len(sealed.Ciphertext)+TagSize)
	combined = append(combined, sealed.Ciphertext...)
	combined = append(combined, sealed.Tag[:]...)

	plaintext, err := aead.Open(nil, sealed.Nonce[:], combined, nil)
	if nil != err {
		return nil, fault.ErrDecrypt
	}
	return plaintext, nil
}
