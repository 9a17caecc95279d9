// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package digest provides a fixed-size SHA-256 digest type used to detect
// when a streaming upload's compressed chunk candidate has stopped
// changing between polling ticks.
package digest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/bitmark-inc/noteledger/fault"
)

// DigestLength is the number of bytes in a digest.
const DigestLength = sha256.Size

// Digest is a SHA-256 hash value.
type Digest [DigestLength]byte

// NewDigest computes the digest of record.
func NewDigest(record []byte) Digest {
	return sha256.Sum256(record)
}

// String returns the digest as a lower-case hex string.
func (digest Digest) String() string {
	return hex.EncodeToString(digest[:])
}

// GoString returns the digest for use by the fmt package's %#v verb.
func (digest Digest) GoString() string {
	return "<SHA-256:" + hex.EncodeToString(digest[:]) + ">"
}

// Scan converts a hex representation to a digest for the fmt package's
// scan routines.
func (digest *Digest) Scan(state fmt.ScanState, verb rune) error {
	token, err := state.Token(true, func(c rune) bool {
		if c >= '0' && c <= '9' {
			return true
		}
		if c >= 'A' && c <= 'F' {
			return true
		}
		if c >= 'a' && c <= 'f' {
			return true
		}
		return false
	})
	if nil != err {
		return err
	}
	if len(token) != hex.EncodedLen(DigestLength) {
		return fault.ErrNotLink
	}

	buffer := make([]byte, hex.DecodedLen(len(token)))
	byteCount, err := hex.Decode(buffer, token)
	if nil != err {
		return err
	}
	if DigestLength != byteCount {
		return fault.ErrNotLink
	}
	copy(digest[:], buffer)
	return nil
}

// MarshalText converts a digest to hex text.
func (digest Digest) MarshalText() ([]byte, error) {
	size := hex.EncodedLen(len(digest))
	buffer := make([]byte, size)
	hex.Encode(buffer, digest[:])
	return buffer, nil
}

// UnmarshalText converts hex text into a digest.
func (digest *Digest) UnmarshalText(s []byte) error {
	if DigestLength != hex.DecodedLen(len(s)) {
		return fault.ErrNotLink
	}
	buffer := make([]byte, hex.DecodedLen(len(s)))
	byteCount, err := hex.Decode(buffer, s)
	if nil != err {
		return err
	}
	if DigestLength != byteCount {
		return fault.ErrNotLink
	}
	copy(digest[:], buffer)
	return nil
}

// DigestFromBytes validates and copies a byte slice into a digest.
func DigestFromBytes(digest *Digest, buffer []byte) error {
	if DigestLength != len(buffer) {
		return fault.ErrNotLink
	}
	copy(digest[:], buffer)
	return nil
}
