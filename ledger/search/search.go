// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package search composes the four higher-level queries the blocknote
// and streamnote readers need on top of ledger.Client.Search: every
// received transaction for a (sender, receiver) pair excluding one id,
// the most recently received transaction, revision-chain discovery,
// and stream-end (stop-note) detection.
package search

import (
	"encoding/json"
	"sort"

	"github.com/bitmark-inc/noteledger/ledger"
	"github.com/bitmark-inc/noteledger/storage"
)

// AllReceivedExcluding returns every payment received at receiver whose
// sender is sender or receiver itself (the self-sent stop record), in
// the order the indexer returned them, excluding excludeID (the
// payload's own metadata transaction).
func AllReceivedExcluding(client *ledger.Client, sender string, receiver string, excludeID string, minRound uint64) ([]ledger.Transaction, error) {
	txns, err := client.Search(ledger.SearchFilter{
		Address:     receiver,
		AddressRole: ledger.RoleReceiver,
		TxType:      "pay",
		MinRound:    minRound,
	})
	if nil != err {
		return nil, err
	}

	out := make([]ledger.Transaction, 0, len(txns))
	for _, txn := range txns {
		if txn.ID == excludeID {
			continue
		}
		if txn.Sender != sender && txn.Sender != receiver {
			continue
		}
		out = append(out, txn)
	}
	return out, nil
}

// LastReceived returns the most recently confirmed payment received at
// receiver, or ok=false if none exist.
func LastReceived(client *ledger.Client, receiver string) (txn ledger.Transaction, ok bool, err error) {
	txns, err := client.Search(ledger.SearchFilter{
		Address:     receiver,
		AddressRole: ledger.RoleReceiver,
		TxType:      "pay",
	})
	if nil != err {
		return ledger.Transaction{}, false, err
	}
	if 0 == len(txns) {
		return ledger.Transaction{}, false, nil
	}

	latest := txns[0]
	for _, t := range txns[1:] {
		if t.ConfirmedRound > latest.ConfirmedRound {
			latest = t
		}
	}
	return latest, true, nil
}

// revisionTag is the sole valid shape of a revision-tag transaction's
// note: exactly one key, a 52-character payload id value.
type revisionTag struct {
	Revision string `json:"revision"`
}

const revisionIDLength = 52

// ParseRevisionTag validates note as a revision-tag note per spec.md's
// invariant (exactly one key, value length 52, JSON-parseable). Any
// other shape is reported as not-a-revision-tag so ordinary payload
// notes can never be mistaken for one.
func ParseRevisionTag(note []byte) (payloadID string, ok bool) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(note, &raw); nil != err {
		return "", false
	}
	if 1 != len(raw) {
		return "", false
	}
	if _, present := raw["revision"]; !present {
		return "", false
	}

	var tag revisionTag
	if err := json.Unmarshal(note, &tag); nil != err {
		return "", false
	}
	if revisionIDLength != len(tag.Revision) {
		return "", false
	}
	return tag.Revision, true
}

// RevisionChain discovers the full chain of revision-tag transactions
// posted against receiver, sent by sender, returning each linked
// payload id in the order the tags were confirmed. The chain is
// cached in storage.Pool.Revisions, keyed by receiver: since revision
// chains only ever grow, a freshly scanned chain that comes back
// shorter than the cached one (an indexer eventual-consistency lag,
// not a real truncation) is discarded in favor of the cached value.
func RevisionChain(client *ledger.Client, sender string, receiver string) ([]string, error) {
	txns, err := client.Search(ledger.SearchFilter{
		Address:     receiver,
		AddressRole: ledger.RoleReceiver,
		TxType:      "pay",
	})
	if nil != err {
		return nil, err
	}
	sort.Slice(txns, func(i, j int) bool { return txns[i].ConfirmedRound < txns[j].ConfirmedRound })

	chain := make([]string, 0)
	for _, txn := range txns {
		if txn.Sender != sender {
			continue
		}
		if payloadID, ok := ParseRevisionTag(txn.Note); ok {
			chain = append(chain, payloadID)
		}
	}

	if nil == storage.Pool.Revisions {
		return chain, nil
	}

	cacheKey := []byte(receiver)
	if cached := storage.Pool.Revisions.Get(cacheKey); nil != cached {
		var cachedChain []string
		if err := json.Unmarshal(cached, &cachedChain); nil == err && len(cachedChain) > len(chain) {
			chain = cachedChain
		}
	}
	if encoded, err := json.Marshal(chain); nil == err {
		storage.Pool.Revisions.Put(cacheKey, encoded)
	}
	return chain, nil
}

const stopNote = "stop"

// IsStopTransaction reports whether txn is the streamnote finalization
// record: sender equals receiver (a self-sent close) and the note is
// the literal ASCII bytes "stop" — a byte-level comparison, not a
// string-vs-Buffer one, per spec.md's stop-note open question.
func IsStopTransaction(txn ledger.Transaction, receiver string) bool {
	if txn.Sender != receiver {
		return false
	}
	return string(txn.Note) == stopNote
}

// FindStopTransaction scans candidates for the stream's stop record.
func FindStopTransaction(candidates []ledger.Transaction, receiver string) (ledger.Transaction, bool) {
	for _, txn := range candidates {
		if IsStopTransaction(txn, receiver) {
			return txn, true
		}
	}
	return ledger.Transaction{}, false
}
