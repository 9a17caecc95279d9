// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"strings"

	"github.com/bitmark-inc/noteledger/fault"
)

type submitReply struct {
	TxID string `json:"txId"`
}

// Submit posts signed transaction bytes to the node's transaction pool.
// `transaction already in ledger` is treated as success (idempotent
// submit), matching spec.md §4.3's retry policy.
func (c *Client) Submit(signed *SignedPayment) error {
	var reply submitReply
	err := c.postJSON(c.algodURL+"/v2/transactions", c.algodToken, signed.Bytes, &reply)
	if nil == err {
		return nil
	}
	if strings.Contains(err.Error(), "already in ledger") {
		return nil
	}
	return fault.NewSubmitFailed(fault.SubmitTransientNetwork, err.Error())
}
