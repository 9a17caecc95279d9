// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package streamnote implements incremental, buffered payload upload and
// retrieval: a session accepts repeated Save calls, adaptively packs
// buffered bytes into near-1024-byte data records as they accumulate,
// and a reader replays and then tails those records in strict counter
// order until a self-sent stop record closes the session.
package streamnote

import "encoding/json"

// MetadataVersion is the payload-metadata schema version this package writes.
const MetadataVersion = 1

// Metadata is the JSON note carried by a streamnote session's metadata
// transaction. Same shape as blocknote's metadata note; Txns is left
// unset since a streaming session has no fixed chunk count up front.
type Metadata struct {
	Version      int             `json:"version"`
	Title        json.RawMessage `json:"title"`
	MIME         string          `json:"mime"`
	Type         string          `json:"type,omitempty"`
	Compression  string          `json:"compression,omitempty"`
	IV           string          `json:"iv,omitempty"`
	Salt         string          `json:"salt,omitempty"`
	AddressIndex uint32          `json:"addid,omitempty"`
	AccountIndex uint32          `json:"accid,omitempty"`
}

func plainTitle(title string) json.RawMessage {
	raw, _ := json.Marshal(title)
	return raw
}
