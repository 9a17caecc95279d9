// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

// SuggestedParams is the fee/validity-window/genesis information an
// algod node reports for building a new transaction.
type SuggestedParams struct {
	Fee              uint64 `json:"fee"`
	FirstValid       uint64 `json:"last-round"`
	LastValid        uint64 `json:"last-valid"`
	GenesisID        string `json:"genesis-id"`
	GenesisHash      []byte `json:"genesis-hash"`
	ConsensusVersion string `json:"consensus-version"`
}

// SuggestedParams fetches the node's current fee and validity window.
func (c *Client) SuggestedParams() (SuggestedParams, error) {
	var params SuggestedParams
	err := c.getJSON(c.algodURL+"/v2/transactions/params", c.algodToken, &params)
	return params, err
}
