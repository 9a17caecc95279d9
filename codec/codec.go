// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package codec provides the named compression plugins used to shrink a
// payload before it is chunked into note-sized records. Every plugin
// shares one contract so the writer can pick a codec by name, or run
// every registered codec and keep whichever result wins.
package codec

import (
	"context"
	"sort"
	"sync"

	"github.com/bitmark-inc/noteledger/fault"
)

// Params tunes a codec's compression effort. Process-wide, exactly like
// the source system's own module-level compression_params: set it once
// with SetParams before the first Compress call for a codec that reads it.
type Params struct {
	// CompressionLevel is a codec-specific effort knob (e.g. gzip's
	// 1-9 range, zstd's speed/level enum collapsed to an int).
	CompressionLevel int
}

// Codec is a named, pluggable compressor/decompressor.
type Codec interface {
	Name() string
	Compress(ctx context.Context, data []byte) ([]byte, error)
	Uncompress(ctx context.Context, data []byte) ([]byte, error)
	SetParams(p Params)
	// StringOnly reports whether this codec is only meaningful for
	// UTF-8 string input, so best/fast selection can exclude it for
	// arbitrary binary input. Every bundled codec, none included,
	// reports false.
	StringOnly() bool
}

var registryLock sync.RWMutex
var registry = map[string]Codec{}

// Register adds a codec under its own Name(). Re-registering the same
// name replaces the previous entry, matching the plugin-registration
// idiom used throughout this codebase's other named-lookup tables.
func Register(c Codec) {
	registryLock.Lock()
	defer registryLock.Unlock()
	registry[c.Name()] = c
}

// Get resolves a codec by name.
func Get(name string) (Codec, error) {
	registryLock.RLock()
	defer registryLock.RUnlock()
	c, ok := registry[name]
	if !ok {
		return nil, fault.ErrInvalidCodecName
	}
	return c, nil
}

// Names lists every registered codec name in stable, alphabetic order.
func Names() []string {
	registryLock.RLock()
	defer registryLock.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(newNoneCodec())
	Register(newGzipCodec())
	Register(newFlateCodec())
	Register(newLZ4Codec())
	Register(newZstdCodec())
	Register(newSnappyCodec())
	Register(newBrotliCodec())
}
