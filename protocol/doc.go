// Package protocol
// Author: momentics <momentics@gmail.com>
//
// Implements the core WebSocket wire logic (RFC 6455) for miniws.
//
// Everything in this package is a pure function over byte buffers: the frame
// codec, the handshake accept-key derivation, and the upgrade-request
// validation. No I/O happens here; the reactor layer owns the sockets and
// feeds accumulated bytes in.
//
// Includes:
//   - Incremental frame decoding that reports incomplete input instead of
//     reading past the buffer
//   - Frame encoding with optional client-side masking
//   - Sec-WebSocket-Accept derivation per RFC 6455 Section 1.3
//   - Upgrade-request validation against a fixed endpoint path
package protocol
