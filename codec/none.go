// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package codec

import "context"

// noneCodec is the identity codec: strings are UTF-8 encoded, byte
// buffers pass through unchanged.
type noneCodec struct{}

func newNoneCodec() *noneCodec { return &noneCodec{} }

func (c *noneCodec) Name() string { return "none" }

func (c *noneCodec) Compress(ctx context.Context, data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (c *noneCodec) Uncompress(ctx context.Context, data []byte) ([]byte, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (c *noneCodec) SetParams(p Params) {}

func (c *noneCodec) StringOnly() bool { return false }
