// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage maintains the ledger adapter's local LevelDB index: a
// small set of prefix-keyed pools that cache data derived from the remote
// ledger so repeated searches don't have to re-fetch and re-parse
// transactions the process has already seen.
//
// Notes:
// 1. each separate pool has a single byte prefix (to spread the keys in LevelDB)
// 2. ++ = concatenation of byte data
//
//	S ++ transaction id            - already-seen confirmed transaction
//	                                 data: JSON-encoded transaction
//	R ++ receiver address          - revision chain
//	                                 data: JSON list of revision payload ids
//	A ++ parent account ++ accid(4) ++ addid(4)
//	                               - derived receiver address, cached to
//	                                 avoid recomputing an HD derivation
//	Z ++ key                       - testing data
package storage
