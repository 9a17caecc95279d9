// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package manager

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bitmark-inc/noteledger/account"
	"github.com/bitmark-inc/noteledger/blocknote"
	"github.com/bitmark-inc/noteledger/constants"
	"github.com/bitmark-inc/noteledger/fault"
	"github.com/bitmark-inc/noteledger/ledger"
)

// Manager runs bootstrap-funded uploads: a throwaway sender account is
// generated server-side, funded by a real user with one signed
// transaction, then consumed to run an ordinary blocknote save without
// the upload's own encryption material ever passing through the user's
// funding step.
type Manager struct {
	Client     *ledger.Client
	Store      *Store
	Jobs       *JobTable
	ProcessKey []byte
	AppName    string
	Testnet    bool
}

// PrepareBootstrapTransaction generates a fresh bootstrap sender,
// estimates the fee it will need via a simulated save, and returns an
// unsigned funding transaction for userAddress to sign. content and
// prepare are persisted locally under the funding transaction's id
// until RunFromBootstrapTransaction consumes them or the entry expires.
func (m *Manager) PrepareBootstrapTransaction(ctx context.Context, userAddress *account.Account, content []byte, prepare PrepareOptions) (*BootstrapResult, error) {
	if nil == userAddress {
		return nil, fault.ErrMissingSender
	}

	bootstrapSeed, err := account.NewBase58EncodedSeedV2(m.Testnet)
	if nil != err {
		return nil, err
	}
	bootstrapKey, err := account.PrivateKeyFromBase58Seed(bootstrapSeed)
	if nil != err {
		return nil, err
	}

	simulated, err := blocknote.Save(ctx, m.Client, bootstrapKey, content, prepare.IsString, blocknote.Options{
		Compression: prepare.Compression,
		MIME:        prepare.MIME,
		Title:       prepare.Title,
		Simulate:    true,
	})
	if nil != err {
		return nil, err
	}

	params, err := m.Client.SuggestedParams()
	if nil != err {
		return nil, err
	}

	fundingAmount := simulated.Fees*constants.FeeMultiplier +
		constants.BootstrapFundingBuffer +
		params.Fee*constants.FeeMultiplier

	bootstrapAuthKey, err := newBootstrapKey()
	if nil != err {
		return nil, err
	}

	note, err := encodeBootstrapNote(m.ProcessKey, m.AppName, bootstrapSecret{
		SenderMnemonic: bootstrapSeed,
		BootstrapKey:   bootstrapAuthKey,
	})
	if nil != err {
		return nil, err
	}

	unsigned, err := ledger.BuildPayment(ledger.Payment{
		Sender:   userAddress,
		Receiver: bootstrapKey.Account(),
		Amount:   fundingAmount,
		Note:     note,
		Params:   params,
	})
	if nil != err {
		return nil, err
	}

	paramsJSON, err := json.Marshal(prepare)
	if nil != err {
		return nil, err
	}
	if prepare.IsString {
		if err := m.Store.Put(unsigned.ID, string(content), nil, true, string(paramsJSON)); nil != err {
			return nil, err
		}
	} else {
		if err := m.Store.Put(unsigned.ID, "", content, false, string(paramsJSON)); nil != err {
			return nil, err
		}
	}

	return &BootstrapResult{
		FundingTransactionID: unsigned.ID,
		UnsignedFunding:      unsigned.Raw(),
		BootstrapKey:         bootstrapAuthKey,
		FundingAmount:        fundingAmount,
	}, nil
}

// RunFromBootstrapTransaction looks up a confirmed funding transaction,
// verifies bootstrapKey against its sealed note, and runs the queued
// save using the bootstrap sender it names. On completion the bootstrap
// sender's remaining balance is closed back to its original funder.
func (m *Manager) RunFromBootstrapTransaction(ctx context.Context, fundingTxID string, bootstrapKey string, run RunEncryption) (*blocknote.Result, error) {
	txn, err := m.Client.LookupByID(fundingTxID)
	if nil != err {
		return nil, err
	}

	secret, ok := decodeBootstrapNote(m.ProcessKey, m.AppName, txn.Note)
	if !ok {
		return nil, fault.ErrInvalidBootstrapKey
	}
	if secret.BootstrapKey != bootstrapKey {
		return nil, fault.ErrInvalidBootstrapKey
	}

	queued, found, err := m.Store.Get(fundingTxID)
	if nil != err {
		return nil, err
	}
	if !found {
		return nil, fault.ErrBootstrapNotFound
	}

	var prepare PrepareOptions
	if err := json.Unmarshal([]byte(queued.ParamsJSON), &prepare); nil != err {
		return nil, err
	}

	bootstrapSender, err := account.PrivateKeyFromBase58Seed(secret.SenderMnemonic)
	if nil != err {
		return nil, err
	}

	content := queued.File
	if queued.IsString {
		content = []byte(queued.Content)
	}

	result, err := blocknote.Save(ctx, m.Client, bootstrapSender, content, queued.IsString, toSaveOptions(prepare, run))
	if nil != err {
		return nil, err
	}

	funderAccount, err := account.AccountFromBase58(txn.Sender)
	if nil != err {
		return nil, err
	}
	if err := m.refundBootstrapSender(bootstrapSender, funderAccount); nil != err {
		return nil, err
	}

	if err := m.Store.Delete(fundingTxID); nil != err {
		return nil, err
	}
	return result, nil
}

// SubmitPrepare runs PrepareBootstrapTransaction asynchronously, per
// spec.md §4.8's job-table call shape: the caller gets a job id back
// immediately and polls JobResult for the outcome.
func (m *Manager) SubmitPrepare(ctx context.Context, userAddress *account.Account, content []byte, prepare PrepareOptions) string {
	return m.Jobs.Submit(func() (interface{}, error) {
		return m.PrepareBootstrapTransaction(ctx, userAddress, content, prepare)
	})
}

// SubmitRun runs RunFromBootstrapTransaction asynchronously; see SubmitPrepare.
func (m *Manager) SubmitRun(ctx context.Context, fundingTxID string, bootstrapKey string, run RunEncryption) string {
	return m.Jobs.Submit(func() (interface{}, error) {
		return m.RunFromBootstrapTransaction(ctx, fundingTxID, bootstrapKey, run)
	})
}

// JobResult returns the current state of a job started by SubmitPrepare
// or SubmitRun, evicting it from the table if it has reached a terminal
// state.
func (m *Manager) JobResult(id string) (Job, bool) {
	return m.Jobs.Get(id)
}

// refundBootstrapSender closes the bootstrap sender's remaining balance
// back to the account that funded it, the same self-closing shape
// blocknote's writer uses for its own throwaway receiver addresses.
func (m *Manager) refundBootstrapSender(bootstrapSender *account.PrivateKey, funder *account.Account) error {
	params, err := m.Client.SuggestedParams()
	if nil != err {
		return err
	}

	return submitPayment(m.Client, bootstrapSender, ledger.Payment{
		Sender:           bootstrapSender.Account(),
		Receiver:         funder,
		CloseRemainderTo: funder,
		Params:           params,
	})
}

// submitPayment builds, signs, submits and waits for confirmation of a
// single payment under the same bounded retry-then-rebuild policy
// blocknote and streamnote each apply to their own submissions.
func submitPayment(client *ledger.Client, signer *account.PrivateKey, payment ledger.Payment) error {
	retries := 0
	for {
		unsigned, err := ledger.BuildPayment(payment)
		if nil != err {
			return err
		}
		signed, err := ledger.Sign(unsigned, signer)
		if nil != err {
			return err
		}

		err = client.Submit(signed)
		if nil == err {
			err = client.WaitForConfirmation(signed)
		}
		if nil == err {
			return nil
		}
		if fault.IsSubmitExpired(err) {
			return err
		}

		retries++
		if retries >= constants.SubmitRetryLimit {
			fresh, paramErr := client.SuggestedParams()
			if nil != paramErr {
				return paramErr
			}
			payment.Params = fresh
			retries = 0
			time.Sleep(constants.SubmitRetryBackoff)
			continue
		}
		time.Sleep(constants.SubmitInterval)
	}
}
