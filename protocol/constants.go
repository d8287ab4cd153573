// Package protocol
// Author: momentics <momentics@gmail.com>
//
// WebSocket wire protocol constants

package protocol

const (
	// Data opcodes (<0x8) and control opcodes (>=0x8), RFC 6455 Section 5.2.
	OpcodeContinuation = 0x0
	OpcodeText         = 0x1
	OpcodeBinary       = 0x2
	OpcodeClose        = 0x8
	OpcodePing         = 0x9
	OpcodePong         = 0xA

	// Frame limit settings
	MaxControlPayloadLen = 125
	MaxFrameHeaderLen    = 14 // extended 64-bit length plus masking key

	// Close codes
	CloseNormalClosure     = 1000
	CloseGoingAway         = 1001
	CloseProtocolError     = 1002
	CloseUnsupportedData   = 1003
	CloseInvalidPayload    = 1007
	ClosePolicyViolation   = 1008
	CloseMessageTooBig     = 1009
	CloseInternalServerErr = 1011
)

// Bit layout of the first two header bytes.
const (
	finBit     = 0x80
	rsv1Bit    = 0x40
	rsv2Bit    = 0x20
	rsv3Bit    = 0x10
	opcodeMask = 0x0F

	maskBit    = 0x80
	lengthMask = 0x7F

	// Sentinel values of the 7-bit length field selecting an extended length.
	lengthExt16 = 126
	lengthExt64 = 127
)

// validOpcode reports whether op is one of the opcodes defined by RFC 6455.
// Values 0x3-0x7 and 0xB-0xF are reserved.
func validOpcode(op byte) bool {
	switch op {
	case OpcodeContinuation, OpcodeText, OpcodeBinary, OpcodeClose, OpcodePing, OpcodePong:
		return true
	}
	return false
}
