// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package streamnote

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/bitmark-inc/noteledger/account"
	"github.com/bitmark-inc/noteledger/background"
	"github.com/bitmark-inc/noteledger/codec"
	"github.com/bitmark-inc/noteledger/constants"
	"github.com/bitmark-inc/noteledger/counter"
	"github.com/bitmark-inc/noteledger/digest"
	"github.com/bitmark-inc/noteledger/fault"
	"github.com/bitmark-inc/noteledger/ledger"
	"github.com/bitmark-inc/noteledger/noteenc"
)

// Writer is one incremental upload session: repeated Save calls feed a
// rolling buffer that a background processor packs into near-1024-byte
// data records, and a background submitter drains those records to the
// ledger, per spec.md §4.5.
type Writer struct {
	client          *ledger.Client
	sender          *account.PrivateKey
	senderAccount   *account.Account
	receiverKey     *account.PrivateKey
	receiverAccount *account.Account
	codecImpl       codec.Codec
	streamKeys      *noteenc.StreamKeys
	seed            []byte
	params          ledger.SuggestedParams
	events          chan<- Event
	metaTxnID       string

	mu            sync.Mutex
	content       []byte
	counter       counter.Counter
	padding       int
	lastHash      digest.Digest
	hasLastHash   bool
	tsSameHash    time.Time
	hasTsSameHash bool
	stopRequested bool
	isFinalized   bool

	queueMu sync.Mutex
	queue   [][]byte

	bg        *background.T
	done      chan struct{}
	closeOnce sync.Once
}

// Start builds the receiver, submits the metadata transaction, and
// launches the processor/submitter background loops. Save may be called
// any number of times after Start returns.
func Start(ctx context.Context, client *ledger.Client, sender *account.PrivateKey, opts Options) (*Writer, error) {
	if nil == sender {
		return nil, fault.ErrMissingSender
	}

	codecName := opts.Compression
	if "" == codecName {
		codecName = "none"
	}
	codecImpl, err := codec.Get(codecName)
	if nil != err {
		return nil, err
	}

	accountIndex, addressIndex, err := randomIndices()
	if nil != err {
		return nil, err
	}
	receiverKey, err := account.DeriveChildPrivateKey(sender, accountIndex, addressIndex)
	if nil != err {
		return nil, err
	}
	receiverAccount := receiverKey.Account()

	meta := Metadata{
		Version:      MetadataVersion,
		Title:        plainTitle(opts.Title),
		MIME:         opts.MIME,
		Type:         "stream",
		AddressIndex: addressIndex,
		AccountIndex: accountIndex,
	}
	if "none" != codecName {
		meta.Compression = codecName
	}

	var streamKeys *noteenc.StreamKeys
	var seed []byte
	switch {
	case "" != opts.Password:
		salt, err := noteenc.NewSalt()
		if nil != err {
			return nil, err
		}
		key := noteenc.DeriveKeyFromPassword(opts.Password, salt)
		sk := noteenc.DeriveStreamKeys(key)
		streamKeys = &sk
		seed = salt
		meta.Salt = base64.StdEncoding.EncodeToString(salt)
	case 0 != len(opts.AESKey):
		iv := make([]byte, noteenc.SeedSize)
		if _, err := rand.Read(iv); nil != err {
			return nil, err
		}
		sk := noteenc.DeriveStreamKeys(opts.AESKey)
		streamKeys = &sk
		seed = iv
		meta.IV = base64.StdEncoding.EncodeToString(iv)
	}

	metaNote, err := json.Marshal(meta)
	if nil != err {
		return nil, err
	}
	if len(metaNote) > constants.NoteSizeLimit {
		return nil, fault.ErrPayloadTooLarge
	}

	params, err := client.SuggestedParams()
	if nil != err {
		return nil, err
	}

	senderAccount := sender.Account()
	metaTxnID, err := submitPayment(client, sender, ledger.Payment{
		Sender:   senderAccount,
		Receiver: receiverAccount,
		Note:     metaNote,
		Params:   params,
	})
	if nil != err {
		return nil, err
	}

	w := &Writer{
		client:          client,
		sender:          sender,
		senderAccount:   senderAccount,
		receiverKey:     receiverKey,
		receiverAccount: receiverAccount,
		codecImpl:       codecImpl,
		streamKeys:      streamKeys,
		seed:            seed,
		params:          params,
		events:          opts.Events,
		metaTxnID:       metaTxnID,
		done:            make(chan struct{}),
	}

	w.bg = background.Start(background.Processes{&processorProc{w}, &submitterProc{w}}, nil)

	go func() {
		<-ctx.Done()
		w.bg.Stop()
		w.closeOnce.Do(func() { close(w.done) })
	}()

	return w, nil
}

// MetadataTransactionID is the payload id future readers resolve this
// session by.
func (w *Writer) MetadataTransactionID() string { return w.metaTxnID }

// Save appends raw to the session's rolling buffer. Once Stop has been
// requested, further writes are discarded per spec.md §5's cooperative
// cancellation model.
func (w *Writer) Save(raw []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopRequested {
		return
	}
	w.content = append(w.content, raw...)
}

// Stop requests cooperative shutdown: the buffer drains through normal
// or final-flush chunking, then a stop record closes the session. Stop
// blocks until that stop record has been submitted or ctx is done.
func (w *Writer) Stop(ctx context.Context) error {
	w.mu.Lock()
	w.stopRequested = true
	w.mu.Unlock()

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type processorProc struct{ w *Writer }

func (p *processorProc) Run(_ interface{}, shutdown <-chan struct{}) {
	ticker := time.NewTicker(constants.ProcessorTick)
	defer ticker.Stop()
	for {
		select {
		case <-shutdown:
			return
		case <-ticker.C:
		}
		if p.w.processorStep() {
			return
		}
	}
}

type submitterProc struct{ w *Writer }

func (p *submitterProc) Run(_ interface{}, shutdown <-chan struct{}) {
	ticker := time.NewTicker(constants.SubmitterTick)
	defer ticker.Stop()
	for {
		select {
		case <-shutdown:
			return
		case <-ticker.C:
		}
		if p.w.submitterStep() {
			return
		}
	}
}

// buildCandidate compresses then stream-encrypts raw with the current
// counter, and prepends the counter prefix, per spec.md §4.5 step 2.
func (w *Writer) buildCandidate(raw []byte) ([]byte, error) {
	compressed, err := w.codecImpl.Compress(context.Background(), raw)
	if nil != err {
		return nil, err
	}
	sealed := compressed
	frameCounter := uint32(w.counter.Uint64())
	if nil != w.streamKeys {
		sealed, err = w.streamKeys.EncryptChunk(w.seed, frameCounter, compressed)
		if nil != err {
			return nil, err
		}
	}
	return encodeFrame(frameCounter, sealed), nil
}

func (w *Writer) enqueue(frame []byte) {
	w.queueMu.Lock()
	w.queue = append(w.queue, frame)
	w.queueMu.Unlock()
}

// processorStep implements one tick of spec.md §4.5's processor: it
// returns true once the buffer is drained and stop has been requested,
// signalling this loop's work is complete.
func (w *Writer) processorStep() bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	if 0 == len(w.content) {
		if w.stopRequested {
			w.isFinalized = true
			return true
		}
		return false
	}

	if w.stopRequested {
		candidate, err := w.buildCandidate(w.content)
		if nil == err && len(candidate) <= constants.NoteSizeLimit {
			w.enqueue(candidate)
			w.content = nil
			w.isFinalized = true
			return true
		}
	}

	sliceLen := constants.NoteSizeLimit + w.padding
	if sliceLen > len(w.content) {
		sliceLen = len(w.content)
	}
	if sliceLen < 0 {
		sliceLen = 0
	}

	candidate, err := w.buildCandidate(w.content[:sliceLen])
	if nil != err {
		emit(w.events, Event{Kind: EventError, Err: err})
		return false
	}

	hash := digest.NewDigest(candidate)
	if w.hasLastHash && hash == w.lastHash {
		if !w.hasTsSameHash {
			w.tsSameHash = time.Now()
			w.hasTsSameHash = true
		}
	} else {
		w.lastHash = hash
		w.hasLastHash = true
		w.hasTsSameHash = false
	}

	stallDuration := time.Duration(0)
	if w.hasTsSameHash {
		stallDuration = time.Since(w.tsSameHash)
	}
	emit(w.events, Event{
		Kind:          EventLog,
		Message:       fmt.Sprintf("candidate=%dB padding=%d", len(candidate), w.padding),
		BufferedBytes: len(w.content),
		Padding:       w.padding,
		StallDuration: stallDuration,
	})

	switch {
	case len(candidate) < constants.NoteSizeLimit:
		w.padding += constants.PaddingGrowthStep
		if w.hasTsSameHash && stallDuration >= constants.StallTimeout {
			w.flushChunk(candidate, sliceLen)
		}
		return false
	case len(candidate) > constants.NoteSizeLimit:
		for len(candidate) > constants.NoteSizeLimit {
			w.padding--
			sliceLen = constants.NoteSizeLimit + w.padding
			if sliceLen < 0 {
				sliceLen = 0
			}
			if sliceLen > len(w.content) {
				sliceLen = len(w.content)
			}
			time.Sleep(constants.PaddingSearchStep)
			candidate, err = w.buildCandidate(w.content[:sliceLen])
			if nil != err {
				emit(w.events, Event{Kind: EventError, Err: err})
				return false
			}
		}
		w.flushChunk(candidate, sliceLen)
		return false
	default:
		w.flushChunk(candidate, sliceLen)
		return false
	}
}

// flushChunk enqueues candidate, consumes sliceLen bytes of raw content,
// resets padding/stall tracking, and advances the counter. Caller holds w.mu.
func (w *Writer) flushChunk(candidate []byte, sliceLen int) {
	w.enqueue(candidate)
	w.content = w.content[sliceLen:]
	w.padding = 0
	w.hasLastHash = false
	w.hasTsSameHash = false
	w.counter.Increment()
}

// submitterStep implements one tick of spec.md §4.5's submitter: drain
// the queue, submit each frame, and once finalized with an empty queue
// send the stop record and report completion.
func (w *Writer) submitterStep() bool {
	w.queueMu.Lock()
	batch := w.queue
	w.queue = nil
	w.queueMu.Unlock()

	for _, frame := range batch {
		if _, err := submitPayment(w.client, w.sender, ledger.Payment{
			Sender:   w.senderAccount,
			Receiver: w.receiverAccount,
			Note:     frame,
			Params:   w.params,
		}); nil != err {
			emit(w.events, Event{Kind: EventError, Err: err})
		}
	}

	w.mu.Lock()
	finalized := w.isFinalized
	w.mu.Unlock()
	w.queueMu.Lock()
	empty := 0 == len(w.queue)
	w.queueMu.Unlock()

	if !finalized || !empty {
		return false
	}

	// self-sent by the receiver, per this implementation's reading of
	// spec.md §4.7's stop-detection query (see DESIGN.md): a stop record
	// only matches the reader's "sender equals receiver" filter if the
	// receiver sends it, so the close-out here follows blocknote's same
	// self-sent-close convention rather than spec.md §4.5's literal
	// "sender -> receiver" text, which the reader could never detect.
	if _, err := submitPayment(w.client, w.receiverKey, ledger.Payment{
		Sender:           w.receiverAccount,
		Receiver:         w.receiverAccount,
		Note:             []byte("stop"),
		CloseRemainderTo: w.senderAccount,
		Params:           w.params,
	}); nil != err {
		emit(w.events, Event{Kind: EventError, Err: err})
	}

	emit(w.events, Event{Kind: EventFinish})
	w.closeOnce.Do(func() { close(w.done) })
	return true
}

// randomIndices draws a fresh (accountIndex, addressIndex) pair, each
// uniform over [0, 2^31), for HD receiver derivation.
func randomIndices() (accountIndex uint32, addressIndex uint32, err error) {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); nil != err {
		return 0, 0, err
	}
	const clearTopBit = ^uint32(1 << 31)
	accountIndex = binary.BigEndian.Uint32(buf[0:4]) & clearTopBit
	addressIndex = binary.BigEndian.Uint32(buf[4:8]) & clearTopBit
	return accountIndex, addressIndex, nil
}

// submitPayment builds, signs, submits and waits for confirmation of a
// single payment, with spec.md §4.3/§4.4's bounded retry-then-rebuild
// policy, shared verbatim with blocknote's submission loop.
func submitPayment(client *ledger.Client, signer *account.PrivateKey, payment ledger.Payment) (string, error) {
	retries := 0
	for {
		unsigned, err := ledger.BuildPayment(payment)
		if nil != err {
			return "", err
		}
		signed, err := ledger.Sign(unsigned, signer)
		if nil != err {
			return "", err
		}

		err = client.Submit(signed)
		if nil == err {
			err = client.WaitForConfirmation(signed)
		}
		if nil == err {
			return unsigned.ID, nil
		}
		if fault.IsSubmitExpired(err) {
			return "", err
		}

		retries++
		if retries >= constants.SubmitRetryLimit {
			fresh, paramErr := client.SuggestedParams()
			if nil != paramErr {
				return "", paramErr
			}
			payment.Params = fresh
			retries = 0
			time.Sleep(constants.SubmitRetryBackoff)
			continue
		}
		time.Sleep(constants.SubmitInterval)
	}
}
