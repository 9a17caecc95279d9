// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blocknote_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"

	"github.com/bitmark-inc/noteledger/ledger"
)

// fakeLedger is an in-memory stand-in for both an algod node and an
// indexer, just capable enough to drive a blocknote Save/Load round
// trip: it accepts submissions, confirms them immediately, and answers
// lookups and address searches from what it has stored.
type fakeLedger struct {
	mu    sync.Mutex
	round uint64
	txns  []ledger.Transaction
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{round: 1}
}

// wireTxnFields mirrors the subset of ledger's private wireTxn JSON
// shape this harness needs to read back out of a signed envelope.
type wireTxnFields struct {
	Sender           string `json:"snd"`
	Receiver         string `json:"rcv"`
	Note             []byte `json:"note,omitempty"`
	CloseRemainderTo string `json:"close,omitempty"`
	LastValid        uint64 `json:"lv"`
}

func (f *fakeLedger) server() *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/v2/transactions/params", f.handleParams)
	mux.HandleFunc("/v2/transactions/pending/", f.handlePending)
	mux.HandleFunc("/v2/status", f.handleStatus)
	mux.HandleFunc("/v2/status/wait-for-block-after/", f.handleWaitForBlock)
	mux.HandleFunc("/v2/transactions", f.handleTransactions)
	mux.HandleFunc("/v2/transactions/", f.handleLookup)
	return httptest.NewServer(mux)
}

func (f *fakeLedger) handleParams(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	round := f.round
	f.mu.Unlock()
	json.NewEncoder(w).Encode(ledger.SuggestedParams{
		Fee: 1, FirstValid: round, LastValid: round + 1000, GenesisID: "fake-genesis",
	})
}

// handleTransactions serves algod's submit (POST) and the indexer's
// paginated address search (GET) on the same path, as real algod and
// indexer deployments do not, but a single fake origin conveniently can.
func (f *fakeLedger) handleTransactions(w http.ResponseWriter, r *http.Request) {
	if http.MethodPost == r.Method {
		f.handleSubmit(w, r)
		return
	}
	f.handleSearch(w, r)
}

func (f *fakeLedger) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var envelope struct {
		Txn       []byte `json:"txn"`
		Signature []byte `json:"sig"`
	}
	if err := json.NewDecoder(r.Body).Decode(&envelope); nil != err {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	var wire wireTxnFields
	if err := json.Unmarshal(envelope.Txn, &wire); nil != err {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id := ledger.TransactionID(envelope.Txn)

	f.mu.Lock()
	for _, existing := range f.txns {
		if existing.ID == id {
			f.mu.Unlock()
			http.Error(w, "transaction already in ledger", http.StatusBadRequest)
			return
		}
	}
	f.txns = append(f.txns, ledger.Transaction{
		ID:             id,
		Sender:         wire.Sender,
		Note:           wire.Note,
		ConfirmedRound: f.round,
		PaymentTransaction: ledger.PaymentDetail{
			Receiver:         wire.Receiver,
			CloseRemainderTo: wire.CloseRemainderTo,
		},
	})
	f.mu.Unlock()

	json.NewEncoder(w).Encode(struct {
		TxID string `json:"txId"`
	}{TxID: id})
}

func (f *fakeLedger) handlePending(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v2/transactions/pending/")

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, txn := range f.txns {
		if txn.ID == id {
			json.NewEncoder(w).Encode(struct {
				ConfirmedRound uint64 `json:"confirmed-round"`
			}{ConfirmedRound: txn.ConfirmedRound})
			return
		}
	}
	json.NewEncoder(w).Encode(struct {
		ConfirmedRound uint64 `json:"confirmed-round"`
	}{ConfirmedRound: 0})
}

func (f *fakeLedger) handleStatus(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	round := f.round
	f.mu.Unlock()
	json.NewEncoder(w).Encode(struct {
		LastRound uint64 `json:"last-round"`
	}{LastRound: round})
}

func (f *fakeLedger) handleWaitForBlock(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.round++
	round := f.round
	f.mu.Unlock()
	json.NewEncoder(w).Encode(struct {
		LastRound uint64 `json:"last-round"`
	}{LastRound: round})
}

func (f *fakeLedger) handleLookup(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/v2/transactions/")

	f.mu.Lock()
	defer f.mu.Unlock()
	for _, txn := range f.txns {
		if txn.ID == id {
			json.NewEncoder(w).Encode(struct {
				Transaction ledger.Transaction `json:"transaction"`
			}{Transaction: txn})
			return
		}
	}
	http.Error(w, "not found", http.StatusNotFound)
}

func (f *fakeLedger) handleSearch(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	role := r.URL.Query().Get("address-role")
	minRoundStr := r.URL.Query().Get("min-round")
	minRound := uint64(0)
	if "" != minRoundStr {
		minRound, _ = strconv.ParseUint(minRoundStr, 10, 64)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	matched := make([]ledger.Transaction, 0)
	for _, txn := range f.txns {
		if txn.ConfirmedRound < minRound {
			continue
		}
		switch role {
		case "sender":
			if txn.Sender != address {
				continue
			}
		default: // receiver
			if txn.Receiver() != address {
				continue
			}
		}
		matched = append(matched, txn)
	}

	json.NewEncoder(w).Encode(struct {
		Transactions []ledger.Transaction `json:"transactions"`
		NextToken    string                `json:"next-token"`
	}{Transactions: matched})
}
