// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package streamnote

import "encoding/binary"

// counterSize is the width of the little-endian counter prefix every
// data record's note begins with, matching blocknote's data-record
// framing (spec.md §6's data note format is shared by both modes).
const counterSize = 4

func encodeFrame(counter uint32, payload []byte) []byte {
	frame := make([]byte, counterSize+len(payload))
	binary.LittleEndian.PutUint32(frame[0:counterSize], counter)
	copy(frame[counterSize:], payload)
	return frame
}

func decodeFrame(note []byte) (counter uint32, payload []byte, ok bool) {
	if len(note) < counterSize {
		return 0, nil, false
	}
	counter = binary.LittleEndian.Uint32(note[0:counterSize])
	return counter, note[counterSize:], true
}
