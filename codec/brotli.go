// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package codec

import (
	"bytes"
	"context"
	"io/ioutil"
	"sync"

	"github.com/andybalholm/brotli"
)

type brotliCodec struct {
	lock  sync.RWMutex
	level int
}

func newBrotliCodec() *brotliCodec {
	return &brotliCodec{level: brotli.DefaultCompression}
}

func (c *brotliCodec) Name() string { return "brotli" }

func (c *brotliCodec) SetParams(p Params) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if 0 == p.CompressionLevel {
		c.level = brotli.DefaultCompression
		return
	}
	c.level = p.CompressionLevel
}

func (c *brotliCodec) Compress(ctx context.Context, data []byte) ([]byte, error) {
	c.lock.RLock()
	level := c.level
	c.lock.RUnlock()

	var buf bytes.Buffer
	w := brotli.NewWriterLevel(&buf, level)
	if _, err := w.Write(data); nil != err {
		return nil, err
	}
	if err := w.Close(); nil != err {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *brotliCodec) Uncompress(ctx context.Context, data []byte) ([]byte, error) {
	r := brotli.NewReader(bytes.NewReader(data))
	return ioutil.ReadAll(r)
}

func (c *brotliCodec) StringOnly() bool { return false }
