// File: protocol/frame.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Decoded representation of a single WebSocket frame.

package protocol

import "crypto/rand"

// Frame represents one decoded WebSocket frame, RFC 6455 Section 5.2.
//
// Payload always holds the unmasked bytes: when Masked is set, the decoder
// has already applied the masking key, so the raw wire form is never handed
// to the application layer.
type Frame struct {
	Fin    bool // final fragment of a message
	Rsv1   bool // reserved, must be zero without negotiated extensions
	Rsv2   bool
	Rsv3   bool
	Opcode byte // frame type, see Opcode* constants
	Masked bool // set on all client-originated frames

	MaskKey    [4]byte // valid iff Masked
	PayloadLen int64   // decoded payload length
	Payload    []byte  // unmasked payload bytes, exactly PayloadLen long
}

// IsControl reports whether the frame carries a control opcode
// (close, ping, pong). Control frames are decoded exactly like data
// frames; their semantics belong to the consuming layer.
func (f *Frame) IsControl() bool {
	return f.Opcode&0x8 != 0
}

// NewMaskKey returns a fresh random masking key for client-originated
// frames. Server frames are sent unmasked and never need one.
func NewMaskKey() ([4]byte, error) {
	var key [4]byte
	if _, err := rand.Read(key[:]); err != nil {
		return key, err
	}
	return key, nil
}
