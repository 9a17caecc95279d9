// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package noteenc

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"

	"github.com/bitmark-inc/noteledger/fault"
)

// SeedSize is the length of the per-session seed (the password salt, or
// a random 16-byte iv when a raw key is used) that feeds per-chunk IV
// derivation.
const SeedSize = 16

var encryptionLabel = []byte("encryption")
var ivDerivationLabel = []byte("iv-derivation")

// StreamKeys holds the two subkeys derived once per session from the
// shared key K, avoiding per-chunk IV/tag storage overhead while still
// guaranteeing a unique keystream per chunk.
type StreamKeys struct {
	encKey []byte // K_enc = HMAC-SHA256(K, "encryption")
	ivKey  []byte // K_iv  = HMAC-SHA256(K, "iv-derivation")
}

// DeriveStreamKeys computes K_enc and K_iv from the shared session key K.
func DeriveStreamKeys(k []byte) StreamKeys {
	return StreamKeys{
		encKey: hmacSum(k, encryptionLabel),
		ivKey:  hmacSum(k, ivDerivationLabel),
	}
}

func hmacSum(key []byte, label []byte) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write(label)
	return mac.Sum(nil)
}

// chunkIV computes the deterministic per-chunk IV: the first 16 bytes
// of HMAC-SHA256(K_iv, seed || uint32_be(index)).
func (sk StreamKeys) chunkIV(seed []byte, index uint32) []byte {
	indexBytes := make([]byte, 4)
	binary.BigEndian.PutUint32(indexBytes, index)

	mac := hmac.New(sha256.New, sk.ivKey)
	mac.Write(seed)
	mac.Write(indexBytes)
	return mac.Sum(nil)[:aes.BlockSize]
}

func (sk StreamKeys) streamCipher(seed []byte, index uint32) (cipher.Stream, error) {
	if KeySize != len(sk.encKey) {
		return nil, fault.ErrInvalidKeyLength
	}
	block, err := aes.NewCipher(sk.encKey)
	if nil != err {
		return nil, err
	}
	return cipher.NewCTR(block, sk.chunkIV(seed, index)), nil
}

// EncryptChunk encrypts one chunk with the keystream for (seed, index).
func (sk StreamKeys) EncryptChunk(seed []byte, index uint32, plaintext []byte) ([]byte, error) {
	stream, err := sk.streamCipher(seed, index)
	if nil != err {
		return nil, err
	}
	out := make([]byte, len(plaintext))
	stream.XORKeyStream(out, plaintext)
	return out, nil
}

// DecryptChunk reverses EncryptChunk; CTR mode makes encrypt/decrypt
// the same XOR operation, but the method is kept distinct for clarity
// at call sites (writer vs reader).
func (sk StreamKeys) DecryptChunk(seed []byte, index uint32, ciphertext []byte) ([]byte, error) {
	return sk.EncryptChunk(seed, index, ciphertext)
}
