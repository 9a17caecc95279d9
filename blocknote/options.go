// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blocknote

import (
	"time"

	"github.com/bitmark-inc/noteledger/codec"
)

// Options configures one Save call. Recognized fields only; there is no
// catch-all map since Go callers get compile-time checking instead.
type Options struct {
	Compression  codec.Selection
	MIME         string
	Title        string
	EncryptTitle *bool // nil defaults to true once AESKey or Password is set
	AESKey       []byte
	Password     string
	RevisionOf   string
	Simulate     bool

	// Events receives writer progress; nil disables event delivery.
	// Go has no implicit closure lifetime, so this replaces the
	// on_progress/on_finish/on_error callback triple with one typed
	// channel the caller drains at its own pace.
	Events chan<- Event
}

// EventKind classifies an Event.
type EventKind int

const (
	EventProgress EventKind = iota
	EventFinish
	EventError
)

// Event reports writer progress, successful completion, or failure.
type Event struct {
	Kind        EventKind
	Stage       string
	FramesTotal int
	FramesDone  int
	Result      *Result
	Err         error
}

func emit(events chan<- Event, e Event) {
	if nil == events {
		return
	}
	select {
	case events <- e:
	default:
	}
}

// Result is the outcome of a successful Save.
type Result struct {
	PayloadTransactionID string
	Fees                 uint64
	Compression          string
	Start                time.Time
	End                  time.Time
	Duration             time.Duration
	Simulation           bool
	Payload              Metadata
}
