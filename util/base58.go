// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package util

import (
	"github.com/mr-tron/base58"
)

// ToBase58 - encode a byte buffer to a Base58 string
func ToBase58(buffer []byte) string {
	return base58.Encode(buffer)
}

// FromBase58 - decode a Base58 string to a byte buffer
//
// returns a nil/empty slice on any decode error, matching the
// account/private key parsers' expectation that a zero-length
// result means "could not decode"
func FromBase58(encoded string) []byte {
	buffer, err := base58.Decode(encoded)
	if nil != err {
		return nil
	}
	return buffer
}
