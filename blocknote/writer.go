// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blocknote

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"time"

	"github.com/bitmark-inc/noteledger/account"
	"github.com/bitmark-inc/noteledger/codec"
	"github.com/bitmark-inc/noteledger/constants"
	"github.com/bitmark-inc/noteledger/fault"
	"github.com/bitmark-inc/noteledger/ledger"
	"github.com/bitmark-inc/noteledger/noteenc"
)

// Save uploads rawContent as a new payload, or as a revision of
// opts.RevisionOf when set, and returns the completed Result. isString
// tells the codec registry whether string-only codecs may be chosen.
func Save(ctx context.Context, client *ledger.Client, sender *account.PrivateKey, rawContent []byte, isString bool, opts Options) (res *Result, err error) {
	defer func() {
		if nil != err {
			emit(opts.Events, Event{Kind: EventError, Err: err})
		}
	}()
	start := time.Now()
	if nil == sender {
		return nil, fault.ErrMissingSender
	}
	senderAccount := sender.Account()
	senderAddr := senderAccount.String()

	var original *originalPayload
	if "" != opts.RevisionOf {
		o, err := loadOriginal(client, opts.RevisionOf, senderAddr)
		if nil != err {
			return nil, err
		}
		original = o
	}

	emit(opts.Events, Event{Kind: EventProgress, Stage: "compress"})
	compressed, codecName, err := chooseCodec(ctx, opts.Compression, rawContent, isString)
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
		Size:         int64(len(rawContent)),
		AddressIndex: addressIndex,
		AccountIndex: accountIndex,
	}
	if "none" != codecName {
		meta.Compression = codecName
	}

	content, err := applyEncryption(&meta, opts, compressed)
	if nil != err {
		return nil, err
	}

	frames := splitIntoFrames(content)
	meta.Txns = len(frames)

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

	fees := uint64(0)
	txnCount := 1 + len(frames)
	if nil != original {
		txnCount += 2
	}
	fees = params.Fee * uint64(txnCount)

	var payloadTxnID string
	if !opts.Simulate {
		payloadTxnID, err = submitPayment(client, sender, ledger.Payment{
			Sender:   senderAccount,
			Receiver: receiverAccount,
			Note:     metaNote,
			Params:   params,
		})
		if nil != err {
			return nil, err
		}

		for i, frame := range frames {
			emit(opts.Events, Event{Kind: EventProgress, Stage: "data", FramesTotal: len(frames), FramesDone: i})

			isLast := i == len(frames)-1
			if !isLast {
				_, err := submitPayment(client, sender, ledger.Payment{
					Sender:   senderAccount,
					Receiver: receiverAccount,
					Note:     frame,
					Params:   params,
				})
				if nil != err {
					return nil, err
				}
				time.Sleep(constants.SubmitInterval)
				continue
			}

			// the close record: self-sent by the receiver, which the
			// sender can always re-derive the key for, closing the
			// throwaway receiver's remainder back to the real sender.
			_, err := submitPayment(client, receiverKey, ledger.Payment{
				Sender:           receiverAccount,
				Receiver:         receiverAccount,
				Note:             frame,
				CloseRemainderTo: senderAccount,
				Params:           params,
			})
			if nil != err {
				return nil, err
			}
		}

		if nil != original {
			if err := submitRevisionTag(client, sender, senderAccount, original, payloadTxnID, params); nil != err {
				return nil, err
			}
		}
	}

	result := &Result{
		PayloadTransactionID: payloadTxnID,
		Fees:                 fees,
		Compression:          codecName,
		Start:                start,
		End:                  time.Now(),
		Simulation:           opts.Simulate,
		Payload:              meta,
	}
	result.Duration = result.End.Sub(result.Start)
	emit(opts.Events, Event{Kind: EventFinish, Result: result})
	return result, nil
}

// applyEncryption implements spec.md §4.4 step 6: optional password-derived
// key, optional AEAD of the content, optional AEAD of the title, writing
// salt/iv/tag into meta as it goes.
func applyEncryption(meta *Metadata, opts Options, compressed []byte) ([]byte, error) {
	key := opts.AESKey
	if "" != opts.Password {
		salt, err := noteenc.NewSalt()
		if nil != err {
			return nil, err
		}
		key = noteenc.DeriveKeyFromPassword(opts.Password, salt)
		meta.Salt = base64.StdEncoding.EncodeToString(salt)
	}

	if 0 == len(key) {
		return compressed, nil
	}

	sealed, err := noteenc.Encrypt(key, compressed)
	if nil != err {
		return nil, err
	}
	meta.IV = base64.StdEncoding.EncodeToString(sealed.Nonce[:])
	meta.Tag = base64.StdEncoding.EncodeToString(sealed.Tag[:])

	encryptTitle := true
	if nil != opts.EncryptTitle {
		encryptTitle = *opts.EncryptTitle
	}
	if encryptTitle && "" != opts.Title {
		titleSealed, err := noteenc.Encrypt(key, []byte(opts.Title))
		if nil != err {
			return nil, err
		}
		meta.Title = sealedTitle(encryptedTitle{
			IV:   base64.StdEncoding.EncodeToString(titleSealed.Nonce[:]),
			Tag:  base64.StdEncoding.EncodeToString(titleSealed.Tag[:]),
			Data: base64.StdEncoding.EncodeToString(titleSealed.Ciphertext),
		})
	}

	return sealed.Ciphertext, nil
}

func chooseCodec(ctx context.Context, sel codec.Selection, data []byte, isString bool) ([]byte, string, error) {
	result, err := codec.Choose(ctx, sel, data, isString)
	if nil != err {
		return nil, "", err
	}
	return result.Output, result.CodecName, nil
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
// policy: 25 consecutive failures rebuild with fresh suggested params
// and reset the count; individual attempts are spaced by
// constants.SubmitInterval, rebuilds by constants.SubmitRetryBackoff.
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

// originalPayload is the resolved metadata for the payload a new
// revision supersedes.
type originalPayload struct {
	meta Metadata
}

// loadOriginal fetches and validates the metadata transaction revisionOf
// names, failing with fault.ErrRevisionOwnershipMismatch unless its
// sender equals the current sender.
func loadOriginal(client *ledger.Client, revisionOf string, senderAddr string) (*originalPayload, error) {
	txn, err := client.LookupByID(revisionOf)
	if nil != err {
		return nil, err
	}
	if txn.Sender != senderAddr {
		return nil, fault.ErrRevisionOwnershipMismatch
	}

	var meta Metadata
	if err := json.Unmarshal(txn.Note, &meta); nil != err {
		return nil, err
	}
	return &originalPayload{meta: meta}, nil
}

// submitRevisionTag posts the revision-tag transaction linking the new
// payload to the original, then self-closes the original's receiver
// address back to sender so the tag address is zeroed (spec.md §4.4
// step 10; see DESIGN.md for this implementation's reading of the
// otherwise underspecified close direction).
func submitRevisionTag(client *ledger.Client, sender *account.PrivateKey, senderAccount *account.Account, original *originalPayload, newPayloadID string, params ledger.SuggestedParams) error {
	originalReceiverKey, err := account.DeriveChildPrivateKey(sender, original.meta.AccountIndex, original.meta.AddressIndex)
	if nil != err {
		return err
	}
	originalReceiverAccount := originalReceiverKey.Account()

	tagNote, err := json.Marshal(struct {
		Revision string `json:"revision"`
	}{Revision: newPayloadID})
	if nil != err {
		return err
	}

	if _, err := submitPayment(client, sender, ledger.Payment{
		Sender:   senderAccount,
		Receiver: originalReceiverAccount,
		Note:     tagNote,
		Params:   params,
	}); nil != err {
		return err
	}

	_, err = submitPayment(client, originalReceiverKey, ledger.Payment{
		Sender:           originalReceiverAccount,
		Receiver:         originalReceiverAccount,
		CloseRemainderTo: senderAccount,
		Params:           params,
	})
	return err
}
