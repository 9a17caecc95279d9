// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blocknote

import (
	"encoding/binary"

	"github.com/bitmark-inc/noteledger/constants"
	"github.com/bitmark-inc/noteledger/fault"
)

// counterSize is the width of the little-endian counter prefix every
// data record's note begins with.
const counterSize = 4

// payloadPerFrame is the usable byte budget left in one note after the
// counter prefix, so every frame but the last is exactly filled up to
// the note size limit; the last frame holds whatever remains.
const payloadPerFrame = constants.NoteSizeLimit - counterSize

// encodeFrame prepends counter to payload as a little-endian prefix,
// producing one data record's note bytes.
func encodeFrame(counter uint32, payload []byte) []byte {
	frame := make([]byte, counterSize+len(payload))
	binary.LittleEndian.PutUint32(frame[0:counterSize], counter)
	copy(frame[counterSize:], payload)
	return frame
}

// decodeFrame splits a data record's note bytes back into its counter
// and payload.
func decodeFrame(note []byte) (counter uint32, payload []byte, err error) {
	if len(note) < counterSize {
		return 0, nil, fault.ErrRecordInvalid
	}
	counter = binary.LittleEndian.Uint32(note[0:counterSize])
	return counter, note[counterSize:], nil
}

// splitIntoFrames slices content into consecutive payloadPerFrame-sized
// pieces, each wrapped with its dense, zero-based counter. An empty
// content still yields exactly one (empty-payload) frame so a
// zero-length payload round-trips through a single data transaction.
func splitIntoFrames(content []byte) [][]byte {
	if 0 == len(content) {
		return [][]byte{encodeFrame(0, nil)}
	}

	frames := make([][]byte, 0, (len(content)+payloadPerFrame-1)/payloadPerFrame)
	counter := uint32(0)
	for offset := 0; offset < len(content); offset += payloadPerFrame {
		end := offset + payloadPerFrame
		if end > len(content) {
			end = len(content)
		}
		frames = append(frames, encodeFrame(counter, content[offset:end]))
		counter++
	}
	return frames
}
