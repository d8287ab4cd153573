// File: protocol/frame_codec.go
// Package protocol implements the WebSocket frame codec with size enforcement.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Implements RFC 6455 frame encoding/decoding with payload size limits
// to prevent resource exhaustion. The decoder is incremental: it never
// reads past the supplied buffer and reports incomplete input instead.

package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// MaxFramePayload defines the maximum allowed payload size for a single frame.
// This limit protects against excessively large frames that could exhaust memory.
const MaxFramePayload = 1 << 20 // 1 MiB

var (
	ErrReservedBits  = errors.New("reserved bits must be zero")
	ErrInvalidOpcode = errors.New("invalid opcode")
	ErrInvalidLength = errors.New("invalid 64-bit payload length")
	ErrFrameTooLarge = errors.New("frame payload exceeds maximum allowed size")
)

// DecodeFrame parses one complete WebSocket frame from the front of raw.
// Returns the frame, the number of bytes consumed, and an error.
//
// If raw does not yet hold the complete frame — header, extended length,
// masking key, and full payload — DecodeFrame returns (nil, 0, nil) and the
// caller must accumulate more bytes before retrying. This completeness check
// is a hard precondition: no field is ever read past len(raw).
func DecodeFrame(raw []byte) (*Frame, int, error) {
	if len(raw) < 2 {
		return nil, 0, nil // incomplete
	}

	f := &Frame{
		Fin:    raw[0]&finBit != 0,
		Rsv1:   raw[0]&rsv1Bit != 0,
		Rsv2:   raw[0]&rsv2Bit != 0,
		Rsv3:   raw[0]&rsv3Bit != 0,
		Opcode: raw[0] & opcodeMask,
		Masked: raw[1]&maskBit != 0,
	}

	// No extensions are negotiated in this profile, so any RSV bit is a
	// protocol violation rather than a feature.
	if f.Rsv1 || f.Rsv2 || f.Rsv3 {
		return nil, 0, ErrReservedBits
	}
	if !validOpcode(f.Opcode) {
		return nil, 0, fmt.Errorf("%w: 0x%X", ErrInvalidOpcode, f.Opcode)
	}

	length := int64(raw[1] & lengthMask)
	offset := 2

	switch length {
	case lengthExt16:
		if len(raw) < offset+2 {
			return nil, 0, nil // incomplete
		}
		length = int64(binary.BigEndian.Uint16(raw[offset:]))
		offset += 2
	case lengthExt64:
		if len(raw) < offset+8 {
			return nil, 0, nil // incomplete
		}
		u := binary.BigEndian.Uint64(raw[offset:])
		if u&(1<<63) != 0 {
			// RFC 6455 Section 5.2: the most significant bit must be zero.
			return nil, 0, ErrInvalidLength
		}
		length = int64(u)
		offset += 8
	}

	if length > MaxFramePayload {
		return nil, 0, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, length)
	}

	if f.Masked {
		if len(raw) < offset+4 {
			return nil, 0, nil // incomplete
		}
		copy(f.MaskKey[:], raw[offset:offset+4])
		offset += 4
	}

	total := offset + int(length)
	if len(raw) < total {
		return nil, 0, nil // incomplete
	}

	f.PayloadLen = length
	f.Payload = make([]byte, length)
	copy(f.Payload, raw[offset:total])
	if f.Masked {
		MaskBytes(f.Payload, f.MaskKey)
	}

	return f, total, nil
}

// EncodeFrame serializes f into wire format. The payload length is taken
// from len(f.Payload); f.PayloadLen does not need to be populated.
//
// When f.Masked is set the payload is masked with f.MaskKey, as a client
// would send it. Server-originated frames must leave Masked unset.
func EncodeFrame(f *Frame) ([]byte, error) {
	if !validOpcode(f.Opcode) {
		return nil, fmt.Errorf("%w: 0x%X", ErrInvalidOpcode, f.Opcode)
	}
	plen := len(f.Payload)
	if plen > MaxFramePayload {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, plen)
	}

	var b0 byte
	if f.Fin {
		b0 |= finBit
	}
	if f.Rsv1 {
		b0 |= rsv1Bit
	}
	if f.Rsv2 {
		b0 |= rsv2Bit
	}
	if f.Rsv3 {
		b0 |= rsv3Bit
	}
	b0 |= f.Opcode & opcodeMask

	var maskFlag byte
	if f.Masked {
		maskFlag = maskBit
	}

	buf := make([]byte, 0, MaxFrameHeaderLen+plen)
	switch {
	case plen <= 125:
		buf = append(buf, b0, byte(plen)|maskFlag)
	case plen <= 0xFFFF:
		buf = append(buf, b0, lengthExt16|maskFlag, 0, 0)
		binary.BigEndian.PutUint16(buf[2:], uint16(plen))
	default:
		buf = append(buf, b0, lengthExt64|maskFlag, 0, 0, 0, 0, 0, 0, 0, 0)
		binary.BigEndian.PutUint64(buf[2:], uint64(plen))
	}

	if f.Masked {
		buf = append(buf, f.MaskKey[:]...)
	}
	start := len(buf)
	buf = append(buf, f.Payload...)
	if f.Masked {
		MaskBytes(buf[start:], f.MaskKey)
	}
	return buf, nil
}

// MaskBytes applies the RFC 6455 Section 5.3 masking transform in place:
// each byte is XORed with key[i%4]. The transform is its own inverse, so
// the same call both masks and unmasks.
func MaskBytes(p []byte, key [4]byte) {
	for i := range p {
		p[i] ^= key[i%4]
	}
}
