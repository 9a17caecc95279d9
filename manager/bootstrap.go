// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package manager

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"

	"github.com/bitmark-inc/noteledger/noteenc"
)

// bootstrapSecret is the payload sealed inside a funding transaction's
// note: the fresh bootstrap sender's mnemonic, plus a random key the
// eventual caller of runFromBootstrapTransaction must present back,
// binding possession of that call to whoever holds this note's secret.
type bootstrapSecret struct {
	SenderMnemonic string `json:"sender_mnemonic"`
	BootstrapKey   string `json:"bootstrap_key"`
}

// sealedNoteJSON is the hex-encoded wire shape of a noteenc.Sealed value,
// per spec.md §6's "base64 of JSON {iv,data,tag} hex-encoded".
type sealedNoteJSON struct {
	IV   string `json:"iv"`
	Data string `json:"data"`
	Tag  string `json:"tag"`
}

// bootstrapNote is the funding transaction's note payload.
type bootstrapNote struct {
	App       string `json:"app"`
	Blocknote string `json:"blocknote"`
}

func newBootstrapKey() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); nil != err {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}

// encodeBootstrapNote seals secret under the process key and packs the
// result into the on-chain note bytes.
func encodeBootstrapNote(processKey []byte, appName string, secret bootstrapSecret) ([]byte, error) {
	plaintext, err := json.Marshal(secret)
	if nil != err {
		return nil, err
	}

	sealed, err := noteenc.EncryptTransactionNote(processKey, plaintext)
	if nil != err {
		return nil, err
	}

	wire := sealedNoteJSON{
		IV:   hex.EncodeToString(sealed.Nonce[:]),
		Data: hex.EncodeToString(sealed.Ciphertext),
		Tag:  hex.EncodeToString(sealed.Tag[:]),
	}
	wireJSON, err := json.Marshal(wire)
	if nil != err {
		return nil, err
	}

	note := bootstrapNote{
		App:       appName,
		Blocknote: base64.StdEncoding.EncodeToString(wireJSON),
	}
	return json.Marshal(note)
}

// decodeBootstrapNote reverses encodeBootstrapNote, returning nil, ok=false
// for any note that is not one of this app's bootstrap notes rather than
// failing outright — callers scan mixed note streams for matches.
func decodeBootstrapNote(processKey []byte, appName string, noteBytes []byte) (bootstrapSecret, bool) {
	var note bootstrapNote
	if err := json.Unmarshal(noteBytes, &note); nil != err {
		return bootstrapSecret{}, false
	}
	if appName != note.App {
		return bootstrapSecret{}, false
	}

	wireJSON, err := base64.StdEncoding.DecodeString(note.Blocknote)
	if nil != err {
		return bootstrapSecret{}, false
	}
	var wire sealedNoteJSON
	if err := json.Unmarshal(wireJSON, &wire); nil != err {
		return bootstrapSecret{}, false
	}

	var sealed noteenc.Sealed
	if _, err := hex.Decode(sealed.Nonce[:], []byte(wire.IV)); nil != err {
		return bootstrapSecret{}, false
	}
	if _, err := hex.Decode(sealed.Tag[:], []byte(wire.Tag)); nil != err {
		return bootstrapSecret{}, false
	}
	ciphertext, err := hex.DecodeString(wire.Data)
	if nil != err {
		return bootstrapSecret{}, false
	}
	sealed.Ciphertext = ciphertext

	plaintext, err := noteenc.DecryptTransactionNote(processKey, sealed)
	if nil != err {
		return bootstrapSecret{}, false
	}

	var secret bootstrapSecret
	if err := json.Unmarshal(plaintext, &secret); nil != err {
		return bootstrapSecret{}, false
	}
	return secret, true
}
