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

	"github.com/klauspost/compress/gzip"
)

type gzipCodec struct {
	lock  sync.RWMutex
	level int
}

func newGzipCodec() *gzipCodec {
	return &gzipCodec{level: gzip.DefaultCompression}
}

func (c *gzipCodec) Name() string { return "gzip" }

func (c *gzipCodec) SetParams(p Params) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if 0 == p.CompressionLevel {
		c.level = gzip.DefaultCompression
		return
	}
	c.level = p.CompressionLevel
}

func (c *gzipCodec) Compress(ctx context.Context, data []byte) ([]byte, error) {
	c.lock.RLock()
	level := c.level
	c.lock.RUnlock()

	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, level)
	if nil != err {
		return nil, err
	}
	if _, err := w.Write(data); nil != err {
		return nil, err
	}
	if err := w.Close(); nil != err {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (c *gzipCodec) Uncompress(ctx context.Context, data []byte) ([]byte, error) {
	r, err := gzip.NewReader(bytes.NewReader(data))
	if nil != err {
		return nil, err
	}
	defer r.Close()
	return ioutil.ReadAll(r)
}

func (c *gzipCodec) StringOnly() bool { return false }
