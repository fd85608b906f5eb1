// Copyright 2016 The Gofem Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// package transport implements the client-server interface: frame
// delimiting over a byte stream, the little-endian payload codec, and
// the action-group dispatch tables calling into engine, queue and
// constants.
package transport

import (
	"bufio"
	"encoding/base64"
	"io"

	"github.com/mertemba/spheresim/internal/errs"
)

const (
	frameStart = 0x02
	frameEnd   = 0x03
)

// WriteFrame writes payload wrapped as 0x02 <base64(payload)> 0x03.
func WriteFrame(w *bufio.Writer, payload []byte) error {
	if err := w.WriteByte(frameStart); err != nil {
		return err
	}
	enc := base64.StdEncoding.EncodeToString(payload)
	if _, err := w.WriteString(enc); err != nil {
		return err
	}
	if err := w.WriteByte(frameEnd); err != nil {
		return err
	}
	return w.Flush()
}

// ReadFrame reads one 0x02 ... 0x03 delimited frame and returns its
// decoded payload. On a malformed frame the caller should reply with an
// empty response and make no state change.
func ReadFrame(r *bufio.Reader) ([]byte, error) {
	b, err := r.ReadByte()
	if err != nil {
		return nil, err
	}
	if b != frameStart {
		return nil, errs.Errf("transport: expected frame start 0x02, got 0x%02x", b)
	}
	raw, err := r.ReadBytes(frameEnd)
	if err != nil {
		if err == io.EOF {
			return nil, errs.Errf("transport: frame truncated before 0x03")
		}
		return nil, err
	}
	enc := raw[:len(raw)-1] // strip trailing frameEnd
	payload, err := base64.StdEncoding.DecodeString(string(enc))
	if err != nil {
		return nil, errs.Errf("transport: invalid base64 payload: %v", err)
	}
	return payload, nil
}
