// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blocknote

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"sort"

	"github.com/bitmark-inc/noteledger/codec"
	"github.com/bitmark-inc/noteledger/fault"
	"github.com/bitmark-inc/noteledger/ledger"
	"github.com/bitmark-inc/noteledger/ledger/search"
	"github.com/bitmark-inc/noteledger/noteenc"
)

// ReadOptions configures one Load call.
type ReadOptions struct {
	AESKey    []byte
	Password  string
	Revision  int // 1-based; 0 means "follow the latest revision tag, if any"
	ReturnRaw bool
}

// ReadResult is the outcome of a successful Load.
type ReadResult struct {
	Payload Metadata
	Content []byte
}

// Load fetches and reassembles the payload identified by payloadID,
// following revision resolution, decryption and decompression per
// spec.md §4.6.
func Load(ctx context.Context, client *ledger.Client, payloadID string, opts ReadOptions) (*ReadResult, error) {
	metaTxn, meta, err := fetchMetadata(client, payloadID)
	if nil != err {
		return nil, err
	}

	_, resolvedTxn, resolvedMeta, err := resolveRevision(client, payloadID, metaTxn, meta, opts.Revision)
	if nil != err {
		return nil, err
	}
	metaTxn, meta = resolvedTxn, resolvedMeta

	senderAddr := metaTxn.Sender
	receiverAddr := metaTxn.Receiver()

	txns, err := search.AllReceivedExcluding(client, senderAddr, receiverAddr, metaTxn.ID, 0)
	if nil != err {
		return nil, err
	}

	sort.Slice(txns, func(i, j int) bool { return txns[i].ConfirmedRound < txns[j].ConfirmedRound })
	if len(txns) > meta.Txns {
		txns = txns[:meta.Txns]
	}

	content, err := reassemble(txns)
	if nil != err {
		return nil, err
	}

	if opts.ReturnRaw {
		return &ReadResult{Payload: meta, Content: content}, nil
	}

	content, err = decryptPayload(meta, opts, content)
	if nil != err {
		return nil, err
	}

	if "" != meta.Compression {
		c, err := codec.Get(meta.Compression)
		if nil != err {
			return nil, err
		}
		content, err = c.Uncompress(ctx, content)
		if nil != err {
			return nil, fault.ErrDecompress
		}
	}

	meta.Title, err = decryptTitleField(meta, opts)
	if nil != err {
		return nil, err
	}

	return &ReadResult{Payload: meta, Content: content}, nil
}

// fetchMetadata loads the metadata transaction identified by id and
// parses its note as Metadata.
func fetchMetadata(client *ledger.Client, id string) (ledger.Transaction, Metadata, error) {
	txn, err := client.LookupByID(id)
	if nil != err {
		return ledger.Transaction{}, Metadata{}, err
	}
	var meta Metadata
	if err := json.Unmarshal(txn.Note, &meta); nil != err {
		return ledger.Transaction{}, Metadata{}, err
	}
	return txn, meta, nil
}

// resolveRevision follows spec.md §4.6 step 1's revision resolution: an
// explicit 1-based revision picks that link in the chain; otherwise the
// most recent revision tag (if any) is followed. Either way, metadata is
// re-fetched from the resolved payload id.
func resolveRevision(client *ledger.Client, originalID string, originalTxn ledger.Transaction, originalMeta Metadata, revision int) (string, ledger.Transaction, Metadata, error) {
	chain, err := search.RevisionChain(client, originalTxn.Sender, originalTxn.Receiver())
	if nil != err {
		return "", ledger.Transaction{}, Metadata{}, err
	}

	resolvedID := originalID
	switch {
	case revision > 0:
		if revision > len(chain) {
			return "", ledger.Transaction{}, Metadata{}, fault.ErrInvalidRevisionNumber
		}
		resolvedID = chain[revision-1]
	case 0 == revision && len(chain) > 0:
		resolvedID = chain[len(chain)-1]
	default:
		return originalID, originalTxn, originalMeta, nil
	}

	txn, meta, err := fetchMetadata(client, resolvedID)
	if nil != err {
		return "", ledger.Transaction{}, Metadata{}, err
	}
	return resolvedID, txn, meta, nil
}

// reassemble sorts data records by their frame counter and concatenates
// payloads in that order, per spec.md §3's data-record invariant.
func reassemble(txns []ledger.Transaction) ([]byte, error) {
	type frame struct {
		counter uint32
		payload []byte
	}
	frames := make([]frame, 0, len(txns))
	for _, txn := range txns {
		counter, payload, err := decodeFrame(txn.Note)
		if nil != err {
			return nil, err
		}
		frames = append(frames, frame{counter: counter, payload: payload})
	}
	sort.Slice(frames, func(i, j int) bool { return frames[i].counter < frames[j].counter })

	var content []byte
	for _, f := range frames {
		content = append(content, f.payload...)
	}
	return content, nil
}

// resolveKey derives the decryption key from opts, failing with
// MissingPassword/MissingKey per spec.md §4.6 step 5.
func resolveKey(meta Metadata, opts ReadOptions) ([]byte, error) {
	if "" != meta.Salt {
		if "" == opts.Password {
			return nil, fault.ErrMissingPassword
		}
		salt, err := base64.StdEncoding.DecodeString(meta.Salt)
		if nil != err {
			return nil, err
		}
		return noteenc.DeriveKeyFromPassword(opts.Password, salt), nil
	}
	if 0 == len(opts.AESKey) {
		return nil, fault.ErrMissingKey
	}
	return opts.AESKey, nil
}

func decryptPayload(meta Metadata, opts ReadOptions, content []byte) ([]byte, error) {
	if "" == meta.IV {
		return content, nil
	}
	key, err := resolveKey(meta, opts)
	if nil != err {
		return nil, err
	}

	sealed, err := decodeSealed(meta.IV, meta.Tag, content)
	if nil != err {
		return nil, err
	}
	return noteenc.Decrypt(key, sealed)
}

func decryptTitleField(meta Metadata, opts ReadOptions) (json.RawMessage, error) {
	plain, sealed, isSealed := decodeTitle(meta.Title)
	if !isSealed {
		return plainTitle(plain), nil
	}

	key, err := resolveKey(meta, opts)
	if nil != err {
		return nil, err
	}

	data, err := base64.StdEncoding.DecodeString(sealed.Data)
	if nil != err {
		return nil, err
	}
	wrapped, err := decodeSealed(sealed.IV, sealed.Tag, data)
	if nil != err {
		return nil, err
	}
	title, err := noteenc.Decrypt(key, wrapped)
	if nil != err {
		return nil, err
	}
	return plainTitle(string(title)), nil
}

func decodeSealed(ivB64 string, tagB64 string, ciphertext []byte) (noteenc.Sealed, error) {
	iv, err := base64.StdEncoding.DecodeString(ivB64)
	if nil != err {
		return noteenc.Sealed{}, err
	}
	tag, err := base64.StdEncoding.DecodeString(tagB64)
	if nil != err {
		return noteenc.Sealed{}, err
	}
	if noteenc.NonceSize != len(iv) || noteenc.TagSize != len(tag) {
		return noteenc.Sealed{}, fault.ErrInvalidKeyLength
	}

	var sealed noteenc.Sealed
	copy(sealed.Nonce[:], iv)
	copy(sealed.Tag[:], tag)
	sealed.Ciphertext = ciphertext
	return sealed, nil
}
