// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package noteenc_test

import (
	"bytes"
	"testing"

	"github.com/bitmark-inc/noteledger/noteenc"
)

func TestTransactionNoteRoundTrip(t *testing.T) {
	key := bytes.Repeat([]byte{0x42}, 32)
	mnemonic := []byte("bootstrap account mnemonic words go here")

	sealed, err := noteenc.EncryptTransactionNote(key, mnemonic)
	if nil != err {
		t.Fatalf("EncryptTransactionNote: %s", err)
	}

	restored, err := noteenc.DecryptTransactionNote(key, sealed)
	if nil != err {
		t.Fatalf("DecryptTransactionNote: %s", err)
	}
	if !bytes.Equal(mnemonic, restored) {
		t.Errorf("round trip mismatch")
	}

	wrongKey := bytes.Repeat([]byte{0x24}, 32)
	if _, err := noteenc.DecryptTransactionNote(wrongKey, sealed); nil == err {
		t.Error("expected decryption to fail under the wrong process key")
	}
}
