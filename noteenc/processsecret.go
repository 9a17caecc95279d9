// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package noteenc

// EncryptTransactionNote seals the bootstrap mnemonic under key, the
// process-wide secret sourced from PRIVATE_KEY_AES at startup — distinct
// from any payload or title key so a leaked payload key never exposes a
// bootstrap account's mnemonic. Callers own key's lifetime; this package
// holds no secret state of its own.
func EncryptTransactionNote(key []byte, mnemonic []byte) (Sealed, error) {
	return Encrypt(key, mnemonic)
}

// DecryptTransactionNote reverses EncryptTransactionNote.
func DecryptTransactionNote(key []byte, sealed Sealed) ([]byte, error) {
	return Decrypt(key, sealed)
}
