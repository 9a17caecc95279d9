// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bitmark-inc/noteledger/account"
	"github.com/bitmark-inc/noteledger/ledger"
)

func testAccount(t *testing.T) (*account.PrivateKey, *account.Account) {
	priv, err := account.PrivateKeyFromBase58Seed("5XEECqhR7QBkJezUJiUJBmHaSmffDfVN5atuLnQBHnvfxbsWHuBfQLw")
	if nil != err {
		t.Fatalf("PrivateKeyFromBase58Seed: %s", err)
	}
	return priv, priv.Account()
}

func TestSuggestedParams(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ledger.SuggestedParams{
			Fee: 1000, FirstValid: 5, LastValid: 1005, GenesisID: "test-genesis",
		})
	}))
	defer server.Close()

	client := ledger.NewClient(ledger.Config{AlgodURL: server.URL})
	params, err := client.SuggestedParams()
	if nil != err {
		t.Fatalf("SuggestedParams: %s", err)
	}
	if 1000 != params.Fee {
		t.Errorf("expected fee 1000, got %d", params.Fee)
	}
}

func TestBuildSignPayment(t *testing.T) {
	senderKey, sender := testAccount(t)
	_, receiver := testAccount(t)

	unsigned, err := ledger.BuildPayment(ledger.Payment{
		Sender:   sender,
		Receiver: receiver,
		Amount:   100,
		Note:     []byte("hello"),
		Params:   ledger.SuggestedParams{Fee: 10, FirstValid: 1, LastValid: 1000},
	})
	if nil != err {
		t.Fatalf("BuildPayment: %s", err)
	}
	if "" == unsigned.ID {
		t.Fatal("expected non-empty transaction id")
	}

	signed, err := ledger.Sign(unsigned, senderKey)
	if nil != err {
		t.Fatalf("Sign: %s", err)
	}
	if signed.ID != unsigned.ID {
		t.Errorf("signed id %q != unsigned id %q", signed.ID, unsigned.ID)
	}
	if 0 == len(signed.Bytes) {
		t.Error("expected non-empty signed bytes")
	}
}

func TestSubmitTreatsAlreadyInLedgerAsSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "transaction already in ledger", http.StatusBadRequest)
	}))
	defer server.Close()

	client := ledger.NewClient(ledger.Config{AlgodURL: server.URL})
	err := client.Submit(&ledger.SignedPayment{ID: "x", Bytes: []byte("{}")})
	if nil != err {
		t.Errorf("expected already-in-ledger to be treated as success, got %s", err)
	}
}
