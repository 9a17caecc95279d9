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

	"github.com/pierrec/lz4/v4"
)

type lz4Codec struct {
	lock  sync.RWMutex
	level lz4.CompressionLevel
}

func newLZ4Codec() *lz4Codec {
	return &lz4Codec{level: lz4.Fast}
}

func (c *lz4Codec) Name() string { return "lz4" }

func (c *lz4Codec) SetParams(p Params) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if 0 == p.CompressionLevel {
		c.level = lz4.Fast
		return
	}
	c.level = lz4.CompressionLevel(p.CompressionLevel)
}

func (c *lz4Codec) Compress(ctx context.Context, data []byte) ([]byte, error) {
	c.lock.RLock()
	level := c.level
	c.lock.RUnlock()

	var buf bytes.Buffer
	w := lz4.NewWriter(&buf)
	if err := w.Apply(lz4.CompressionLevelOption(level)); nil != err {
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

func (c *lz4Codec) Uncompress(ctx context.Context, data []byte) ([]byte, error) {
	r := lz4.NewReader(bytes.NewReader(data))
	return ioutil.ReadAll(r)
}

func (c *lz4Codec) StringOnly() bool { return false }
