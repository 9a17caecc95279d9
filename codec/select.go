// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package codec

import (
	"context"
	"time"

	"github.com/bitmark-inc/noteledger/fault"
)

// Selection names the writer's codec selection mode.
type Selection struct {
	// Mode is "explicit", "best", or "fast". Empty defaults to "best".
	Mode string
	// Name is the explicit codec name; only read when Mode == "explicit".
	Name string
	Params
}

const (
	ModeExplicit = "explicit"
	ModeBest     = "best"
	ModeFast     = "fast"
)

// Result is the outcome of running a selection: the codec that was
// picked and its compressed output.
type Result struct {
	CodecName string
	Output    []byte
}

// Choose compresses data per sel and returns the winning codec's name
// and output. best picks the smallest output across every registered,
// non-string-only codec; fast picks whichever finishes first; explicit
// uses sel.Name directly.
func Choose(ctx context.Context, sel Selection, data []byte, isString bool) (Result, error) {
	switch sel.Mode {
	case "", ModeBest:
		return chooseBest(ctx, data, isString)
	case ModeFast:
		return chooseFast(ctx, data, isString)
	case ModeExplicit:
		return chooseExplicit(ctx, sel, data)
	default:
		return Result{}, fault.ErrInvalidCodecName
	}
}

func chooseExplicit(ctx context.Context, sel Selection, data []byte) (Result, error) {
	c, err := Get(sel.Name)
	if nil != err {
		return Result{}, err
	}
	c.SetParams(sel.Params)
	out, err := c.Compress(ctx, data)
	if nil != err {
		return Result{}, err
	}
	return Result{CodecName: c.Name(), Output: out}, nil
}

func eligibleCodecs(isString bool) []Codec {
	registryLock.RLock()
	defer registryLock.RUnlock()
	codecs := make([]Codec, 0, len(registry))
	for _, c := range registry {
		if c.StringOnly() && !isString {
			continue
		}
		codecs = append(codecs, c)
	}
	return codecs
}

func chooseBest(ctx context.Context, data []byte, isString bool) (Result, error) {
	var best Result
	haveBest := false
	for _, c := range eligibleCodecs(isString) {
		out, err := c.Compress(ctx, data)
		if nil != err {
			continue
		}
		if !haveBest || len(out) < len(best.Output) {
			best = Result{CodecName: c.Name(), Output: out}
			haveBest = true
		}
	}
	if !haveBest {
		return Result{}, fault.ErrInvalidCodecName
	}
	return best, nil
}

// raceResult carries one codec's timing so chooseFast can pick the
// fastest finisher without retaining every candidate's output at once.
type raceResult struct {
	result   Result
	err      error
	duration time.Duration
}

func chooseFast(ctx context.Context, data []byte, isString bool) (Result, error) {
	codecs := eligibleCodecs(isString)
	results := make(chan raceResult, len(codecs))

	for _, c := range codecs {
		go func(c Codec) {
			start := time.Now()
			out, err := c.Compress(ctx, data)
			results <- raceResult{
				result:   Result{CodecName: c.Name(), Output: out},
				err:      err,
				duration: time.Since(start),
			}
		}(c)
	}

	var fastest raceResult
	haveFastest := false
	for range codecs {
		r := <-results
		if nil != r.err {
			continue
		}
		if !haveFastest || r.duration < fastest.duration {
			fastest = r
			haveFastest = true
		}
	}
	if !haveFastest {
		return Result{}, fault.ErrInvalidCodecName
	}
	return fastest.result, nil
}
