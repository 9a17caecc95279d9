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

	"github.com/klauspost/compress/flate"
)

// flateCodec maps to the reference implementation's pako/deflate codec.
type flateCodec struct {
	lock  sync.RWMutex
	level int
}

func newFlateCodec() *flateCodec {
	return &flateCodec{level: flate.DefaultCompression}
}

func (c *flateCodec) Name() string { return "flate" }

func (c *flateCodec) SetParams(p Params) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if 0 == p.CompressionLevel {
		c.level = flate.DefaultCompression
		return
	}
	c.level = p.CompressionLevel
}

func (c *flateCodec) Compress(ctx context.Context, data []byte) ([]byte, error) {
	c.lock.RLock()
	level := c.level
	c.lock.RUnlock()

	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, level)
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

func (c *flateCodec) Uncompress(ctx context.Context, data []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(data))
	defer r.Close()
	return ioutil.ReadAll(r)
}

func (c *flateCodec) StringOnly() bool { return false }
