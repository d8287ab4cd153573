// File: protocol/handshake.go
// Package protocol: RFC 6455 opening-handshake validation and accept-key
// derivation for the server side of the upgrade.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package protocol

import (
	"crypto/sha1"
	"encoding/base64"
	"errors"
	"fmt"

	version "github.com/hashicorp/go-version"
)

// AcceptGUID is the fixed GUID from RFC 6455 Section 1.3, appended to the
// client nonce when deriving Sec-WebSocket-Accept.
const AcceptGUID = "258EAFA5-E914-47DA-95CA-C5AB0DC85B11"

// MinHTTPVersion is the lowest HTTP protocol version on which an upgrade
// is permitted. RFC 6455 requires at least HTTP/1.1.
var MinHTTPVersion = version.Must(version.NewVersion("1.1"))

// Header names as they appear in a parsed request's lowercased header map.
const (
	HeaderUpgrade         = "upgrade"
	HeaderConnection      = "connection"
	HeaderSecWebSocketKey = "sec-websocket-key"
)

// Exact header values required on the wire. Values are compared
// case-sensitively; clients sending variants such as "WebSocket" are
// rejected.
const (
	upgradeValue    = "websocket"
	connectionValue = "Upgrade"
)

var (
	ErrBadMethod     = errors.New("upgrade requires GET method")
	ErrBadTarget     = errors.New("request target is not the WebSocket endpoint")
	ErrBadVersion    = errors.New("HTTP version below 1.1")
	ErrBadUpgrade    = errors.New("missing or invalid Upgrade header")
	ErrBadConnection = errors.New("missing or invalid Connection header")
	ErrMissingKey    = errors.New("missing Sec-WebSocket-Key header")
)

// ComputeAcceptKey derives the Sec-WebSocket-Accept value for a client
// nonce: the base64 encoding of SHA-1(key + AcceptGUID). The nonce is
// used verbatim; it is not base64-decoded first.
func ComputeAcceptKey(key string) string {
	h := sha1.New()
	h.Write([]byte(key))
	h.Write([]byte(AcceptGUID))
	return base64.StdEncoding.EncodeToString(h.Sum(nil))
}

// ValidateUpgrade checks whether a parsed HTTP request qualifies as a
// WebSocket upgrade of endpoint. headers must map lowercased header names
// to verbatim values. The checks form a pure conjunction; the first
// failing condition determines the returned error and no request state is
// mutated.
func ValidateUpgrade(method, target string, httpVersion *version.Version, headers map[string]string, endpoint string) error {
	if method != "GET" {
		return fmt.Errorf("%w: %q", ErrBadMethod, method)
	}
	if target != endpoint {
		return fmt.Errorf("%w: %q", ErrBadTarget, target)
	}
	if httpVersion == nil || httpVersion.LessThan(MinHTTPVersion) {
		return ErrBadVersion
	}
	if headers[HeaderUpgrade] != upgradeValue {
		return ErrBadUpgrade
	}
	if headers[HeaderConnection] != connectionValue {
		return ErrBadConnection
	}
	if headers[HeaderSecWebSocketKey] == "" {
		return ErrMissingKey
	}
	return nil
}
