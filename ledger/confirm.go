// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"strconv"

	"github.com/bitmark-inc/noteledger/fault"
)

type pendingTransactionInfo struct {
	ConfirmedRound uint64 `json:"confirmed-round"`
	PoolError      string `json:"pool-error"`
}

type nodeStatus struct {
	LastRound uint64 `json:"last-round"`
}

// WaitForConfirmation blocks until signed is confirmed, expires, or the
// node reports a pool error. It decodes tx_id and last_valid from signed
// itself, then polls pending-transaction information one round at a
// time exactly as spec.md §4.3's confirmation loop describes.
func (c *Client) WaitForConfirmation(signed *SignedPayment) error {
	txID, lastValid, err := decodeEnvelope(signed.Bytes)
	if nil != err {
		return err
	}

	for {
		var info pendingTransactionInfo
		if err := c.getJSON(c.algodURL+"/v2/transactions/pending/"+txID, c.algodToken, &info); nil != err {
			return err
		}

		if info.ConfirmedRound > 0 {
			return nil // executed
		}
		if "" != info.PoolError {
			return fault.NewSubmitFailed(fault.SubmitPoolError, info.PoolError)
		}

		var status nodeStatus
		if err := c.getJSON(c.algodURL+"/v2/status", c.algodToken, &status); nil != err {
			return err
		}
		if status.LastRound > lastValid {
			return fault.NewSubmitFailed(fault.SubmitExpired, "transaction expired")
		}

		var next nodeStatus
		url := c.algodURL + "/v2/status/wait-for-block-after/" + strconv.FormatUint(status.LastRound, 10)
		if err := c.getJSON(url, c.algodToken, &next); nil != err {
			return err
		}
	}
}
