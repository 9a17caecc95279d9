// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"encoding/json"

	"github.com/bitmark-inc/noteledger/storage"
)

// PaymentDetail is the indexer's nested payment-transaction object.
type PaymentDetail struct {
	Receiver         string `json:"receiver"`
	Amount           uint64 `json:"amount"`
	CloseRemainderTo string `json:"close-remainder-to"`
}

// Transaction is the subset of indexer/algod transaction fields this
// system reads: sender, note bytes, the nested payment detail, and the
// confirmed round.
type Transaction struct {
	ID                 string        `json:"id"`
	Sender             string        `json:"sender"`
	Note               []byte        `json:"note"`
	ConfirmedRound     uint64        `json:"confirmed-round"`
	PaymentTransaction PaymentDetail `json:"payment-transaction"`
}

// Receiver is a convenience accessor for the nested payment detail.
func (t Transaction) Receiver() string { return t.PaymentTransaction.Receiver }

// CloseRemainderTo is a convenience accessor for the nested payment detail.
func (t Transaction) CloseRemainderTo() string { return t.PaymentTransaction.CloseRemainderTo }

type lookupReply struct {
	Transaction Transaction `json:"transaction"`
}

// LookupByID fetches one confirmed transaction by id from the indexer. A
// confirmed transaction's fields never change, so a hit in
// storage.Pool.SeenTransactions (when the process has a cache open via
// storage.Initialise) is served without a round trip.
func (c *Client) LookupByID(id string) (Transaction, error) {
	if nil != storage.Pool.SeenTransactions {
		if cached := storage.Pool.SeenTransactions.Get([]byte(id)); nil != cached {
			var txn Transaction
			if err := json.Unmarshal(cached, &txn); nil == err {
				return txn, nil
			}
		}
	}

	var reply lookupReply
	if err := c.getJSON(c.indexerURL+"/v2/transactions/"+id, c.indexerToken, &reply); nil != err {
		return reply.Transaction, err
	}

	if nil != storage.Pool.SeenTransactions {
		if encoded, err := json.Marshal(reply.Transaction); nil == err {
			storage.Pool.SeenTransactions.Put([]byte(id), encoded)
		}
	}
	return reply.Transaction, nil
}
