// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package manager

import (
	"github.com/bitmark-inc/noteledger/blocknote"
	"github.com/bitmark-inc/noteledger/codec"
)

// PrepareOptions configures a bootstrap-funded upload at preparation
// time. It deliberately excludes AESKey/Password/EncryptTitle: a user
// funding an upload before any bootstrap account exists must not hand
// encryption material to the server ahead of time, so those fields are
// only accepted later, by RunFromBootstrapTransaction's RunEncryption.
type PrepareOptions struct {
	Compression codec.Selection
	MIME        string
	Title       string
	IsString    bool
}

// RunEncryption carries the encryption fields withheld from
// PrepareOptions; the caller supplies these once the funding
// transaction has confirmed and the run is actually taking place.
type RunEncryption struct {
	AESKey       []byte
	Password     string
	EncryptTitle *bool
}

// BootstrapResult is returned from PrepareBootstrapTransaction: the
// unsigned funding transaction for the user to sign, and the bootstrap
// key they must present back to RunFromBootstrapTransaction.
type BootstrapResult struct {
	FundingTransactionID string
	UnsignedFunding      []byte
	BootstrapKey         string
	FundingAmount        uint64
}

// toSaveOptions merges a PrepareOptions and a RunEncryption into the
// blocknote.Options a save actually runs with.
func toSaveOptions(prepare PrepareOptions, run RunEncryption) blocknote.Options {
	return blocknote.Options{
		Compression:  prepare.Compression,
		MIME:         prepare.MIME,
		Title:        prepare.Title,
		EncryptTitle: run.EncryptTitle,
		AESKey:       run.AESKey,
		Password:     run.Password,
	}
}
