// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package manager

import (
	"github.com/bitmark-inc/noteledger/account"
	"github.com/bitmark-inc/noteledger/ledger"
)

// GetAllSenders returns the address of every bootstrap sender account
// userAddress has ever funded, discovered by scanning its outgoing
// payments for notes this process's key can unseal. A payment whose
// note does not decode as one of this app's bootstrap notes is
// silently skipped — most of a real account's outgoing traffic will be
// unrelated payments.
func (m *Manager) GetAllSenders(userAddress string) ([]string, error) {
	txns, err := m.Client.Search(ledger.SearchFilter{
		Address:     userAddress,
		AddressRole: ledger.RoleSender,
		TxType:      "pay",
	})
	if nil != err {
		return nil, err
	}

	seen := make(map[string]bool)
	var out []string
	for _, txn := range txns {
		secret, ok := decodeBootstrapNote(m.ProcessKey, m.AppName, txn.Note)
		if !ok {
			continue
		}
		bootstrapSender, err := account.PrivateKeyFromBase58Seed(secret.SenderMnemonic)
		if nil != err {
			continue
		}
		address := bootstrapSender.Account().String()
		if seen[address] {
			continue
		}
		seen[address] = true
		out = append(out, address)
	}
	return out, nil
}

// GetPayloadIdFromSender returns the blocknote payload id a given
// bootstrap sender account submitted — its earliest outgoing payment,
// since every later one is either a data frame or the final
// close-remainder refund back to the funder.
func (m *Manager) GetPayloadIdFromSender(sender string) (string, bool, error) {
	txns, err := m.Client.Search(ledger.SearchFilter{
		Address:     sender,
		AddressRole: ledger.RoleSender,
		TxType:      "pay",
	})
	if nil != err {
		return "", false, err
	}
	if 0 == len(txns) {
		return "", false, nil
	}

	earliest := txns[0]
	for _, txn := range txns[1:] {
		if txn.ConfirmedRound < earliest.ConfirmedRound {
			earliest = txn
		}
	}
	return earliest.ID, true, nil
}

// GetBootstrapSenderMnemonic recovers the bootstrap sender's mnemonic
// from the funding note a user account sent to it, by scanning that
// bootstrap account's incoming payments for one sent by userAddress
// whose note this process's key can unseal.
func (m *Manager) GetBootstrapSenderMnemonic(userAddress string, bootstrapSenderAddress string) (string, error) {
	txns, err := m.Client.Search(ledger.SearchFilter{
		Address:     bootstrapSenderAddress,
		AddressRole: ledger.RoleReceiver,
		TxType:      "pay",
	})
	if nil != err {
		return "", err
	}

	for _, txn := range txns {
		if txn.Sender != userAddress {
			continue
		}
		secret, ok := decodeBootstrapNote(m.ProcessKey, m.AppName, txn.Note)
		if !ok {
			continue
		}
		return secret.SenderMnemonic, nil
	}
	return "", nil
}
