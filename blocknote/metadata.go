// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blocknote implements the one-shot payload upload and
// retrieval: compress, optionally encrypt, chunk into note-sized data
// transactions, and submit them in order behind a payload-metadata
// transaction. The streamnote package reuses Metadata and the encrypted
// title encoding since both note formats share the same wire schema.
package blocknote

import "encoding/json"

// MetadataVersion is the format version written into every new
// payload-metadata record.
const MetadataVersion = 1

// Metadata is the payload-metadata record carried in one transaction's
// note (JSON-encoded, at most the note size limit).
type Metadata struct {
	Version      int             `json:"version"`
	Title        json.RawMessage `json:"title"`
	MIME         string          `json:"mime"`
	Type         string          `json:"type,omitempty"`
	Size         int64           `json:"size,omitempty"`
	Txns         int             `json:"txns,omitempty"`
	Compression  string          `json:"compression,omitempty"`
	IV           string          `json:"iv,omitempty"`
	Tag          string          `json:"tag,omitempty"`
	Salt         string          `json:"salt,omitempty"`
	AddressIndex uint32          `json:"addid,omitempty"`
	AccountIndex uint32          `json:"accid,omitempty"`
}

// encryptedTitle is the shape of Metadata.Title when the title itself
// has been AEAD-encrypted.
type encryptedTitle struct {
	IV   string `json:"iv"`
	Tag  string `json:"tag"`
	Data string `json:"data"`
}

// plainTitle marshals title as a bare JSON string.
func plainTitle(title string) json.RawMessage {
	raw, _ := json.Marshal(title)
	return raw
}

// sealedTitle marshals an encrypted title object.
func sealedTitle(t encryptedTitle) json.RawMessage {
	raw, _ := json.Marshal(t)
	return raw
}

// decodeTitle reports whether raw is an encrypted title object, and if
// so returns it; otherwise raw is a plain JSON string.
func decodeTitle(raw json.RawMessage) (plain string, sealed *encryptedTitle, isSealed bool) {
	var t encryptedTitle
	if err := json.Unmarshal(raw, &t); nil == err && "" != t.Data {
		return "", &t, true
	}
	var s string
	_ = json.Unmarshal(raw, &s)
	return s, nil, false
}
