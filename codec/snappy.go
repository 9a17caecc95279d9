// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package codec

import (
	"context"

	"github.com/golang/snappy"
)

// snappyCodec has no tunable compression level; SetParams is a no-op.
type snappyCodec struct{}

func newSnappyCodec() *snappyCodec { return &snappyCodec{} }

func (c *snappyCodec) Name() string { return "snappy" }

func (c *snappyCodec) SetParams(p Params) {}

func (c *snappyCodec) Compress(ctx context.Context, data []byte) ([]byte, error) {
	return snappy.Encode(nil, data), nil
}

func (c *snappyCodec) Uncompress(ctx context.Context, data []byte) ([]byte, error) {
	return snappy.Decode(nil, data)
}

func (c *snappyCodec) StringOnly() bool { return false }
