// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package codec

import (
	"context"
	"sync"

	"github.com/klauspost/compress/zstd"
)

type zstdCodec struct {
	lock  sync.RWMutex
	level zstd.EncoderLevel
}

func newZstdCodec() *zstdCodec {
	return &zstdCodec{level: zstd.SpeedDefault}
}

func (c *zstdCodec) Name() string { return "zstd" }

func (c *zstdCodec) SetParams(p Params) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if 0 == p.CompressionLevel {
		c.level = zstd.SpeedDefault
		return
	}
	c.level = zstd.EncoderLevel(p.CompressionLevel)
}

func (c *zstdCodec) Compress(ctx context.Context, data []byte) ([]byte, error) {
	c.lock.RLock()
	level := c.level
	c.lock.RUnlock()

	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if nil != err {
		return nil, err
	}
	defer enc.Close()
	return enc.EncodeAll(data, make([]byte, 0, len(data))), nil
}

func (c *zstdCodec) Uncompress(ctx context.Context, data []byte) ([]byte, error) {
	dec, err := zstd.NewReader(nil)
	if nil != err {
		return nil, err
	}
	defer dec.Close()
	return dec.DecodeAll(data, nil)
}

func (c *zstdCodec) StringOnly() bool { return false }
