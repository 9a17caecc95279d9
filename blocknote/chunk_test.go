// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2019 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blocknote

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeFrameRoundTrip(t *testing.T) {
	payload := []byte("hello data record")
	frame := encodeFrame(7, payload)

	counter, got, err := decodeFrame(frame)
	if nil != err {
		t.Fatalf("decodeFrame: %s", err)
	}
	if 7 != counter {
		t.Errorf("counter = %d, want 7", counter)
	}
	if !bytes.Equal(payload, got) {
		t.Errorf("payload = %q, want %q", got, payload)
	}
}

func TestDecodeFrameRejectsShortNote(t *testing.T) {
	if _, _, err := decodeFrame([]byte{0, 1}); nil == err {
		t.Error("expected error for note shorter than the counter prefix")
	}
}

func TestSplitIntoFramesEmptyContent(t *testing.T) {
	frames := splitIntoFrames(nil)
	if 1 != len(frames) {
		t.Fatalf("expected exactly one frame for empty content, got %d", len(frames))
	}
	counter, payload, err := decodeFrame(frames[0])
	if nil != err {
		t.Fatalf("decodeFrame: %s", err)
	}
	if 0 != counter || 0 != len(payload) {
		t.Errorf("expected counter 0 and empty payload, got counter=%d len=%d", counter, len(payload))
	}
}

func TestSplitIntoFramesDenseCounters(t *testing.T) {
	content := bytes.Repeat([]byte("x"), payloadPerFrame*3+17)
	frames := splitIntoFrames(content)
	if 4 != len(frames) {
		t.Fatalf("expected 4 frames, got %d", len(frames))
	}

	var reassembled []byte
	for i, frame := range frames {
		if len(frame) > 1024 {
			t.Errorf("frame %d exceeds the note size limit: %d bytes", i, len(frame))
		}
		counter, payload, err := decodeFrame(frame)
		if nil != err {
			t.Fatalf("decodeFrame(%d): %s", i, err)
		}
		if uint32(i) != counter {
			t.Errorf("frame %d has counter %d, want dense increasing from zero", i, counter)
		}
		reassembled = append(reassembled, payload...)
	}
	if !bytes.Equal(content, reassembled) {
		t.Error("reassembled content does not match original")
	}
}
