// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package account

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"

	"golang.org/x/crypto/ed25519"

	"github.com/bitmark-inc/noteledger/fault"
	"github.com/bitmark-inc/noteledger/storage"
)

// hdDerivationLabel domain-separates child-key derivation from any other
// use of the sender's private key bytes as an HMAC key.
var hdDerivationLabel = []byte("noteledger-hd-child")

// PrivateKeyFromMnemonic resolves a sender private key from its mnemonic
// form. This corpus has no bundled BIP39 word list, so the mnemonic is the
// same Base58 seed string accepted by PrivateKeyFromBase58Seed.
func PrivateKeyFromMnemonic(mnemonic string) (*PrivateKey, error) {
	return PrivateKeyFromBase58Seed(mnemonic)
}

// DeriveChildPrivateKey deterministically derives a child ed25519 key pair
// from a parent private key and a pair of indices. The same parent key and
// (accountIndex, addressIndex) pair always yields the same child key, so a
// receiver address can be recovered later from the indices alone.
func DeriveChildPrivateKey(parent *PrivateKey, accountIndex uint32, addressIndex uint32) (*PrivateKey, error) {
	if nil == parent || nil == parent.PrivateKeyInterface {
		return nil, fault.ErrNotPrivateKey
	}

	parentSeed := parent.PrivateKeyBytes()
	if ed25519.PrivateKeySize != len(parentSeed) {
		return nil, fault.ErrInvalidKeyLength
	}

	index := make([]byte, 8)
	binary.BigEndian.PutUint32(index[0:4], accountIndex)
	binary.BigEndian.PutUint32(index[4:8], addressIndex)

	mac := hmac.New(sha256.New, parentSeed)
	mac.Write(hdDerivationLabel)
	mac.Write(index)
	childSeed := mac.Sum(nil)

	_, priv, err := ed25519.GenerateKey(bytes.NewReader(childSeed))
	if nil != err {
		return nil, err
	}

	testnet := parent.IsTesting()
	child := &PrivateKey{
		PrivateKeyInterface: &ED25519PrivateKey{
			Test:       testnet,
			PrivateKey: priv,
		},
	}
	return child, nil
}

// DeriveChildAccount derives only the public account for a child key, the
// form needed to recover a revision-tag recipient from stored indices
// without re-deriving the private key. Results are cached in
// storage.Pool.ReceiverCache, keyed by the parent account and the two
// indices, since callers that only need the receiver address (rather
// than its signing key) tend to re-resolve the same indices repeatedly
// while walking a revision chain.
func DeriveChildAccount(parent *PrivateKey, accountIndex uint32, addressIndex uint32) (*Account, error) {
	if nil == parent || nil == parent.PrivateKeyInterface {
		return nil, fault.ErrNotPrivateKey
	}

	cacheKey := receiverCacheKey(parent.Account(), accountIndex, addressIndex)
	if nil != storage.Pool.ReceiverCache {
		if cached := storage.Pool.ReceiverCache.Get(cacheKey); nil != cached {
			return AccountFromBytes(cached)
		}
	}

	child, err := DeriveChildPrivateKey(parent, accountIndex, addressIndex)
	if nil != err {
		return nil, err
	}
	account := child.Account()

	if nil != storage.Pool.ReceiverCache {
		storage.Pool.ReceiverCache.Put(cacheKey, account.Bytes())
	}
	return account, nil
}

func receiverCacheKey(parent *Account, accountIndex uint32, addressIndex uint32) []byte {
	key := make([]byte, 0, len(parent.Bytes())+8)
	key = append(key, parent.Bytes()...)
	index := make([]byte, 8)
	binary.BigEndian.PutUint32(index[0:4], accountIndex)
	binary.BigEndian.PutUint32(index[4:8], addressIndex)
	return append(key, index...)
}
