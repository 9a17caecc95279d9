// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"crypto/sha256"
	"encoding/base32"
	"encoding/json"

	"github.com/bitmark-inc/noteledger/account"
)

// Payment is an unsigned payment transaction: sender pays amount to
// receiver, carrying an opaque note, optionally closing the sender
// account's remainder to closeRemainderTo.
type Payment struct {
	Sender           *account.Account
	Receiver         *account.Account
	Amount           uint64
	Note             []byte
	CloseRemainderTo *account.Account
	Params           SuggestedParams
}

// wireTxn is the canonical encoded form signed and submitted; fields
// are a minimal, self-contained representation of Payment since this
// system's wire format is opaque to higher layers (spec.md §4.3).
type wireTxn struct {
	Type             string `json:"type"`
	Sender           string `json:"snd"`
	Receiver         string `json:"rcv"`
	Amount           uint64 `json:"amt"`
	Note             []byte `json:"note,omitempty"`
	CloseRemainderTo string `json:"close,omitempty"`
	FirstValid       uint64 `json:"fv"`
	LastValid        uint64 `json:"lv"`
	Fee              uint64 `json:"fee"`
	GenesisID        string `json:"gen"`
	GenesisHash      []byte `json:"gh"`
}

// UnsignedPayment is a payment transaction built from a Payment and its
// suggested params, with a stable id derived before signing.
type UnsignedPayment struct {
	ID     string
	Params SuggestedParams
	wire   wireTxn
	raw    []byte
}

// base32NoPad matches real Algorand's own transaction id encoding: a
// 32-byte hash, base32-encoded without padding, which comes out to
// exactly 52 characters — the same length the revision-tag invariant
// (spec.md §3) requires of a payload id.
var base32NoPad = base32.StdEncoding.WithPadding(base32.NoPadding)

// TransactionID computes the canonical id for raw canonical transaction
// bytes: the base32, unpadded encoding of their SHA-256 hash.
func TransactionID(raw []byte) string {
	sum := sha256.Sum256(raw)
	return base32NoPad.EncodeToString(sum[:])
}

// BuildPayment encodes p into an UnsignedPayment and computes its id.
func BuildPayment(p Payment) (*UnsignedPayment, error) {
	wire := wireTxn{
		Type:        "pay",
		Sender:      p.Sender.String(),
		Receiver:    p.Receiver.String(),
		Amount:      p.Amount,
		Note:        p.Note,
		FirstValid:  p.Params.FirstValid,
		LastValid:   p.Params.LastValid,
		Fee:         p.Params.Fee,
		GenesisID:   p.Params.GenesisID,
		GenesisHash: p.Params.GenesisHash,
	}
	if nil != p.CloseRemainderTo {
		wire.CloseRemainderTo = p.CloseRemainderTo.String()
	}

	raw, err := json.Marshal(wire)
	if nil != err {
		return nil, err
	}

	return &UnsignedPayment{
		ID:     TransactionID(raw),
		Params: p.Params,
		wire:   wire,
		raw:    raw,
	}, nil
}

// Raw returns the canonical encoded bytes an external signer (e.g. a
// wallet holding the user's own key) must sign over to produce a
// SignedPayment for this transaction.
func (u *UnsignedPayment) Raw() []byte { return u.raw }

// SignedPayment is a payment transaction ready for submission.
type SignedPayment struct {
	ID    string
	Bytes []byte
}

// signedEnvelope pairs the canonical transaction bytes with its signature.
type signedEnvelope struct {
	Txn       []byte `json:"txn"`
	Signature []byte `json:"sig"`
}

// Sign signs unsigned with sender's private key.
func Sign(unsigned *UnsignedPayment, sender *account.PrivateKey) (*SignedPayment, error) {
	signature := sender.Sign(unsigned.raw)

	envelope := signedEnvelope{
		Txn:       unsigned.raw,
		Signature: []byte(signature),
	}
	bytes, err := json.Marshal(envelope)
	if nil != err {
		return nil, err
	}
	return &SignedPayment{ID: unsigned.ID, Bytes: bytes}, nil
}

// decodeEnvelope extracts the transaction id and last-valid round from
// signed bytes, used by WaitForConfirmation to track the in-flight txn
// without needing the original UnsignedPayment in scope.
func decodeEnvelope(signed []byte) (txID string, lastValid uint64, err error) {
	var envelope signedEnvelope
	if err := json.Unmarshal(signed, &envelope); nil != err {
		return "", 0, err
	}
	var wire wireTxn
	if err := json.Unmarshal(envelope.Txn, &wire); nil != err {
		return "", 0, err
	}
	return TransactionID(envelope.Txn), wire.LastValid, nil
}
