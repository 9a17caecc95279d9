// Copyright (c) 2014-2017 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package constants

import (
	"time"
)

// retry policy for submitting a data transaction to the ledger
const (
	// SubmitRetryLimit is the number of consecutive submit attempts for
	// the same id before the transaction is rebuilt with fresh
	// suggested params and the retry counter resets.
	SubmitRetryLimit = 25

	// SubmitRetryBackoff is the sleep between retry rounds for the same id.
	SubmitRetryBackoff = 6 * time.Second

	// SubmitInterval is the sleep between individual submissions.
	SubmitInterval = 50 * time.Millisecond
)

// streamnote writer loop ticks
const (
	// ProcessorTick is how often the streamnote writer's processor loop
	// drains buffered input into chunk candidates.
	ProcessorTick = 100 * time.Millisecond

	// SubmitterTick is how often the streamnote writer's submitter loop
	// flushes queued chunk transactions.
	SubmitterTick = 1 * time.Second

	// PaddingSearchStep is the sleep between adaptive-padding shrink
	// attempts while a candidate is still over NoteSizeLimit.
	PaddingSearchStep = 10 * time.Millisecond

	// StallTimeout is how long a chunk candidate's hash must stay
	// unchanged before it is flushed early (note_max_size_not_reached_timeout).
	StallTimeout = 15 * time.Second
)

// streamnote reader polling
const (
	// PollInterval is how often the streamnote reader queries for new
	// transactions once history has been replayed.
	PollInterval = 3 * time.Second

	// PollOverlapRounds is subtracted from the youngest seen round to
	// form min_round, covering for rounds still settling when last polled.
	PollOverlapRounds = 10
)

// ledger/search indexer pagination
const (
	// SearchPageSleep is the sleep between indexer pagination requests.
	SearchPageSleep = 200 * time.Millisecond
)

// NoteSizeLimit is the hard per-record ceiling for a payment note's
// encoded byte content.
const NoteSizeLimit = 1024

// PaddingGrowthStep is how much padding grows per processor tick when
// a compressed candidate is still under NoteSizeLimit.
const PaddingGrowthStep = 50

// upload manager bootstrap funding
const (
	// FeeMultiplier buffers a bootstrap funding amount against fee
	// fluctuation between simulation and the eventual real submission.
	FeeMultiplier = 2

	// MinBalance is one account's minimum balance reserve, in microAlgos.
	MinBalance = 100000

	// BootstrapFundingBuffer covers two minimum balances (the bootstrap
	// sender's and the blocknote receiver's) plus their eventual refund.
	BootstrapFundingBuffer = 2 * MinBalance
)

// UploadTTL is how long a queued bootstrap upload is kept in the local
// store before being purged unclaimed.
const UploadTTL = 24 * time.Hour
