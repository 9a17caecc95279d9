// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package ledger

import (
	"net/url"
	"strconv"
	"time"

	"github.com/bitmark-inc/noteledger/constants"
)

// AddressRole filters a search by whether the queried address is the
// sender or the receiver of each matched transaction.
type AddressRole string

const (
	RoleSender   AddressRole = "sender"
	RoleReceiver AddressRole = "receiver"
)

// SearchFilter parameterizes a paginated indexer query.
type SearchFilter struct {
	Address     string
	AddressRole AddressRole
	TxType      string // always "pay" in this system
	MinRound    uint64
}

type searchReply struct {
	Transactions []Transaction `json:"transactions"`
	NextToken    string        `json:"next-token"`
}

// Search runs filter to completion, paginating with a 200 ms sleep
// between pages (spec.md §4.3), and returns every matched transaction.
func (c *Client) Search(filter SearchFilter) ([]Transaction, error) {
	var all []Transaction
	next := ""

	for {
		query := url.Values{}
		query.Set("address", filter.Address)
		if "" != filter.AddressRole {
			query.Set("address-role", string(filter.AddressRole))
		}
		if "" != filter.TxType {
			query.Set("tx-type", filter.TxType)
		}
		if filter.MinRound > 0 {
			query.Set("min-round", strconv.FormatUint(filter.MinRound, 10))
		}
		if "" != next {
			query.Set("next", next)
		}

		var reply searchReply
		u := c.indexerURL + "/v2/transactions?" + query.Encode()
		if err := c.getJSON(u, c.indexerToken, &reply); nil != err {
			return nil, err
		}

		all = append(all, reply.Transactions...)

		if "" == reply.NextToken {
			return all, nil
		}
		next = reply.NextToken
		time.Sleep(constants.SearchPageSleep)
	}
}
