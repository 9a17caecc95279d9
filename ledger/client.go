// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package ledger adapts a remote algod/indexer-style ledger node behind
// a small typed Go client: suggested params, build/sign/submit payment,
// wait for confirmation, lookup by id, and paginated indexer search.
// Every network call goes through util.FetchJSON's HTTP+JSON idiom,
// generalized here to also support POST bodies and bearer tokens.
package ledger

import (
	"net/http"
	"strings"
	"time"
)

// Client talks to one algod node and one indexer over HTTP+JSON.
type Client struct {
	httpClient   *http.Client
	algodURL     string
	algodToken   string
	indexerURL   string
	indexerToken string
}

// Config carries the environment-variable wiring from noteconfig.
type Config struct {
	AlgodURL     string
	AlgodToken   string
	IndexerURL   string
	IndexerToken string
	Timeout      time.Duration
}

// NewClient builds a Client from Config, defaulting the HTTP timeout to
// 30 seconds when unset.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if 0 == timeout {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		algodURL:     strings.TrimRight(cfg.AlgodURL, "/"),
		algodToken:   cfg.AlgodToken,
		indexerURL:   strings.TrimRight(cfg.IndexerURL, "/"),
		indexerToken: cfg.IndexerToken,
	}
}
