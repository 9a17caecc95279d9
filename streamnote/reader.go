// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package streamnote

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sort"
	"sync"
	"time"

	"github.com/bitmark-inc/noteledger/codec"
	"github.com/bitmark-inc/noteledger/constants"
	"github.com/bitmark-inc/noteledger/fault"
	"github.com/bitmark-inc/noteledger/ledger"
	"github.com/bitmark-inc/noteledger/ledger/search"
	"github.com/bitmark-inc/noteledger/limitedset"
	"github.com/bitmark-inc/noteledger/noteenc"
)

// seenTxnWindow bounds how many recently folded transaction ids Reader
// remembers for poll-overlap deduplication, per constants.PollOverlapRounds.
const seenTxnWindow = 512

// Reader replays a streamnote session's history and then polls for new
// chunks, emitting contiguous data in strict counter order until the
// session's stop record is found, per spec.md §4.7.
type Reader struct {
	client       *ledger.Client
	meta         Metadata
	senderAddr   string
	receiverAddr string
	metaTxnID    string
	codecImpl    codec.Codec
	streamKeys   *noteenc.StreamKeys
	seed         []byte
	onData       chan<- DataEvent

	mu            sync.Mutex
	pending       map[uint32][]byte
	seek          uint32
	youngestRound uint64
	stopped       bool
	seenTxns      *limitedset.LimitedSet

	closeCh   chan struct{}
	closeOnce sync.Once
	doneCh    chan struct{}
}

// Open fetches metadata for payloadID, replays its history, and starts
// polling for new chunks in the background. onData receives each
// contiguous emission in order; the caller must keep draining it.
func Open(ctx context.Context, client *ledger.Client, payloadID string, onData chan<- DataEvent, opts ReadOptions) (*Reader, error) {
	metaTxn, err := client.LookupByID(payloadID)
	if nil != err {
		return nil, err
	}
	var meta Metadata
	if err := json.Unmarshal(metaTxn.Note, &meta); nil != err {
		return nil, err
	}

	codecName := meta.Compression
	if "" == codecName {
		codecName = "none"
	}
	codecImpl, err := codec.Get(codecName)
	if nil != err {
		return nil, err
	}

	streamKeys, seed, err := resolveStreamKeys(meta, opts)
	if nil != err {
		return nil, err
	}

	r := &Reader{
		client:       client,
		meta:         meta,
		senderAddr:   metaTxn.Sender,
		receiverAddr: metaTxn.Receiver(),
		metaTxnID:    metaTxn.ID,
		codecImpl:    codecImpl,
		streamKeys:   streamKeys,
		seed:         seed,
		onData:       onData,
		pending:      make(map[uint32][]byte),
		seenTxns:     limitedset.New(seenTxnWindow),
		closeCh:      make(chan struct{}),
		doneCh:       make(chan struct{}),
	}

	if err := r.loadHistory(); nil != err {
		return nil, err
	}

	go r.pollLoop(ctx)
	return r, nil
}

// Close requests the poll loop to stop and waits for it to exit.
func (r *Reader) Close(ctx context.Context) error {
	r.closeOnce.Do(func() { close(r.closeCh) })
	select {
	case <-r.doneCh:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func resolveStreamKeys(meta Metadata, opts ReadOptions) (*noteenc.StreamKeys, []byte, error) {
	switch {
	case "" != meta.Salt:
		if "" == opts.Password {
			return nil, nil, fault.ErrMissingPassword
		}
		salt, err := base64.StdEncoding.DecodeString(meta.Salt)
		if nil != err {
			return nil, nil, err
		}
		key := noteenc.DeriveKeyFromPassword(opts.Password, salt)
		sk := noteenc.DeriveStreamKeys(key)
		return &sk, salt, nil
	case "" != meta.IV:
		if 0 == len(opts.AESKey) {
			return nil, nil, fault.ErrMissingKey
		}
		iv, err := base64.StdEncoding.DecodeString(meta.IV)
		if nil != err {
			return nil, nil, err
		}
		sk := noteenc.DeriveStreamKeys(opts.AESKey)
		return &sk, iv, nil
	default:
		return nil, nil, nil
	}
}

// decode reverses one data record's stream encryption and compression,
// spec.md §4.7 step 2.
func (r *Reader) decode(ctx context.Context, counter uint32, ciphertext []byte) ([]byte, error) {
	compressed := ciphertext
	if nil != r.streamKeys {
		plain, err := r.streamKeys.DecryptChunk(r.seed, counter, ciphertext)
		if nil != err {
			return nil, fault.ErrDecrypt
		}
		compressed = plain
	}
	content, err := r.codecImpl.Uncompress(ctx, compressed)
	if nil != err {
		return nil, fault.ErrDecompress
	}
	return content, nil
}

// loadHistory implements spec.md §4.7 step 2 (getPreviousData): fetch
// every transaction received so far, decode the sender-submitted data
// chunks into pending, and emit the contiguous run already present, so
// Open's caller receives replayed data before the first poll.
func (r *Reader) loadHistory() error {
	txns, err := search.AllReceivedExcluding(r.client, r.senderAddr, r.receiverAddr, r.metaTxnID, 0)
	if nil != err {
		return err
	}
	return r.foldAndConsolidate(txns)
}

func (r *Reader) pollLoop(ctx context.Context) {
	defer close(r.doneCh)
	ticker := time.NewTicker(constants.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.closeCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		r.mu.Lock()
		stopped := r.stopped
		youngest := r.youngestRound
		r.mu.Unlock()
		if stopped {
			return
		}

		minRound := uint64(0)
		if youngest > constants.PollOverlapRounds {
			minRound = youngest - constants.PollOverlapRounds
		}

		txns, err := search.AllReceivedExcluding(r.client, r.senderAddr, r.receiverAddr, r.metaTxnID, minRound)
		if nil != err {
			continue
		}
		r.foldAndConsolidate(txns)
	}
}

// foldAndConsolidate implements spec.md §4.7 steps 2, 5 and 6: decode
// and insert newly seen data chunks, detect the stop record, then emit
// any now-contiguous run of chunks in order.
func (r *Reader) foldAndConsolidate(txns []ledger.Transaction) error {
	sort.Slice(txns, func(i, j int) bool { return txns[i].ConfirmedRound < txns[j].ConfirmedRound })

	r.mu.Lock()
	defer r.mu.Unlock()

	sawNew := false
	for _, txn := range txns {
		if txn.ConfirmedRound > r.youngestRound {
			r.youngestRound = txn.ConfirmedRound
		}

		// pollLoop re-fetches an overlap window of already-folded rounds
		// (constants.PollOverlapRounds), so the same transaction id can
		// arrive here more than once; seenTxns catches that redundancy
		// on top of the counter/pending checks below, which only guard
		// against redundant data records, not redundant stop records.
		if r.seenTxns.Exists(txn.ID) {
			continue
		}
		r.seenTxns.Add(txn.ID)

		if search.IsStopTransaction(txn, r.receiverAddr) {
			r.stopped = true
			continue
		}
		if txn.Sender != r.senderAddr {
			continue
		}

		counter, ciphertext, ok := decodeFrame(txn.Note)
		if !ok || counter < r.seek {
			continue
		}
		if _, already := r.pending[counter]; already {
			continue
		}

		content, err := r.decode(context.Background(), counter, ciphertext)
		if nil != err {
			return err
		}
		r.pending[counter] = content
		sawNew = true
	}

	if !sawNew && 0 == len(r.pending) {
		return nil
	}

	for {
		chunk, ok := r.pending[r.seek]
		if !ok {
			break
		}
		delete(r.pending, r.seek)
		if nil != r.onData {
			r.onData <- DataEvent{Counter: r.seek, Data: chunk}
		}
		r.seek++
	}
	return nil
}
