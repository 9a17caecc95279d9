// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package manager_test

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/bitmark-inc/noteledger/account"
	"github.com/bitmark-inc/noteledger/fault"
	"github.com/bitmark-inc/noteledger/ledger"
	"github.com/bitmark-inc/noteledger/manager"
)

func testUser(t *testing.T) *account.PrivateKey {
	key, err := account.PrivateKeyFromBase58Seed("5XEECqhR7QBkJezUJiUJBmHaSmffDfVN5atuLnQBHnvfxbsWHuBfQLw")
	if nil != err {
		t.Fatalf("PrivateKeyFromBase58Seed: %s", err)
	}
	return key
}

func newTestManager(t *testing.T, client *ledger.Client) *manager.Manager {
	store, err := manager.OpenStore(filepath.Join(t.TempDir(), "uploads.sqlite"))
	if nil != err {
		t.Fatalf("OpenStore: %s", err)
	}
	t.Cleanup(func() { store.Close() })

	return &manager.Manager{
		Client:     client,
		Store:      store,
		Jobs:       manager.NewJobTable(),
		ProcessKey: bytes.Repeat([]byte{0x11}, 32),
		AppName:    "noteledger-test",
		Testnet:    true,
	}
}

// signAndSubmitFunding signs raw (the unsigned funding transaction's
// canonical bytes, as an external wallet would) with signer and submits
// it through client, waiting for confirmation.
func signAndSubmitFunding(t *testing.T, client *ledger.Client, signer *account.PrivateKey, txID string, raw []byte) {
	signature := signer.Sign(raw)
	envelope := struct {
		Txn       []byte `json:"txn"`
		Signature []byte `json:"sig"`
	}{Txn: raw, Signature: []byte(signature)}

	envelopeBytes, err := json.Marshal(envelope)
	if nil != err {
		t.Fatalf("marshal envelope: %s", err)
	}

	signed := &ledger.SignedPayment{ID: txID, Bytes: envelopeBytes}
	if err := client.Submit(signed); nil != err {
		t.Fatalf("Submit funding transaction: %s", err)
	}
	if err := client.WaitForConfirmation(signed); nil != err {
		t.Fatalf("WaitForConfirmation funding transaction: %s", err)
	}
}

func TestPrepareAndRunBootstrapUpload(t *testing.T) {
	fake := newFakeLedger()
	server := fake.server()
	defer server.Close()

	client := ledger.NewClient(ledger.Config{AlgodURL: server.URL, IndexerURL: server.URL})
	mgr := newTestManager(t, client)
	user := testUser(t)
	userAccount := user.Account()

	content := []byte("bootstrap-funded upload content")
	prepare := manager.PrepareOptions{MIME: "text/plain", IsString: true}

	ctx := context.Background()
	result, err := mgr.PrepareBootstrapTransaction(ctx, userAccount, content, prepare)
	if nil != err {
		t.Fatalf("PrepareBootstrapTransaction: %s", err)
	}
	if "" == result.FundingTransactionID {
		t.Fatal("expected a funding transaction id")
	}
	if 0 == result.FundingAmount {
		t.Error("expected a nonzero funding amount")
	}
	if "" == result.BootstrapKey {
		t.Fatal("expected a bootstrap key")
	}

	signAndSubmitFunding(t, client, user, result.FundingTransactionID, result.UnsignedFunding)

	saveResult, err := mgr.RunFromBootstrapTransaction(ctx, result.FundingTransactionID, result.BootstrapKey, manager.RunEncryption{})
	if nil != err {
		t.Fatalf("RunFromBootstrapTransaction: %s", err)
	}
	if "" == saveResult.PayloadTransactionID {
		t.Fatal("expected a payload transaction id from the completed save")
	}

	if _, found, err := mgr.Store.Get(result.FundingTransactionID); nil != err || found {
		t.Errorf("expected the queued upload to be removed after running, found=%v err=%v", found, err)
	}
}

func TestRunFromBootstrapTransactionWrongKey(t *testing.T) {
	fake := newFakeLedger()
	server := fake.server()
	defer server.Close()

	client := ledger.NewClient(ledger.Config{AlgodURL: server.URL, IndexerURL: server.URL})
	mgr := newTestManager(t, client)
	user := testUser(t)

	ctx := context.Background()
	result, err := mgr.PrepareBootstrapTransaction(ctx, user.Account(), []byte("content"), manager.PrepareOptions{IsString: true})
	if nil != err {
		t.Fatalf("PrepareBootstrapTransaction: %s", err)
	}
	signAndSubmitFunding(t, client, user, result.FundingTransactionID, result.UnsignedFunding)

	_, err = mgr.RunFromBootstrapTransaction(ctx, result.FundingTransactionID, "wrong-key", manager.RunEncryption{})
	if fault.ErrInvalidBootstrapKey != err {
		t.Errorf("expected ErrInvalidBootstrapKey, got %v", err)
	}
}

func TestRunFromBootstrapTransactionBeforeFunding(t *testing.T) {
	fake := newFakeLedger()
	server := fake.server()
	defer server.Close()

	client := ledger.NewClient(ledger.Config{AlgodURL: server.URL, IndexerURL: server.URL})
	mgr := newTestManager(t, client)
	user := testUser(t)

	ctx := context.Background()
	result, err := mgr.PrepareBootstrapTransaction(ctx, user.Account(), []byte("content"), manager.PrepareOptions{IsString: true})
	if nil != err {
		t.Fatalf("PrepareBootstrapTransaction: %s", err)
	}

	if _, err := mgr.RunFromBootstrapTransaction(ctx, result.FundingTransactionID, result.BootstrapKey, manager.RunEncryption{}); nil == err {
		t.Fatal("expected an error looking up an unconfirmed funding transaction")
	}
}

func TestJobTableSubmitAndEvict(t *testing.T) {
	fake := newFakeLedger()
	server := fake.server()
	defer server.Close()

	client := ledger.NewClient(ledger.Config{AlgodURL: server.URL, IndexerURL: server.URL})
	mgr := newTestManager(t, client)
	user := testUser(t)

	ctx := context.Background()
	id := mgr.SubmitPrepare(ctx, user.Account(), []byte("content"), manager.PrepareOptions{IsString: true})
	if "" == id {
		t.Fatal("expected a job id")
	}

	deadline := time.Now().Add(5 * time.Second)
	var job manager.Job
	var ok bool
	for time.Now().Before(deadline) {
		job, ok = mgr.JobResult(id)
		if !ok {
			t.Fatal("job disappeared before completion")
		}
		if manager.JobPending != job.Status {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if manager.JobDone != job.Status {
		t.Fatalf("job status = %v, err = %v, want JobDone", job.Status, job.Err)
	}

	if _, ok := mgr.JobResult(id); ok {
		t.Error("expected the job to be evicted after its terminal state was observed")
	}
}
