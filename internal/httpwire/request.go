// File: internal/httpwire/request.go
// Package httpwire implements the minimal HTTP/1.1 surface the upgrade
// server needs: request-head parsing and the fixed response set.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bodies are never read. The parser consumes exactly one request head and
// leaves any bytes after the blank-line terminator untouched, so frames a
// client pipelines behind its handshake survive for the frame decoder.

package httpwire

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	version "github.com/hashicorp/go-version"
)

// headTerminator separates the request head from whatever follows.
const headTerminator = "\r\n\r\n"

// protoPrefix is the literal protocol tag in a request line.
const protoPrefix = "HTTP/"

// Ошибки разбора HTTP-запроса.
var (
	ErrMalformedRequestLine = errors.New("malformed request line")
	ErrMalformedHeader      = errors.New("malformed header field")
	ErrBadProto             = errors.New("malformed HTTP protocol version")
)

// Request is one parsed HTTP request head.
type Request struct {
	Method  string
	Target  string
	Proto   string            // literal protocol token, e.g. "HTTP/1.1"
	Version *version.Version  // numeric part of Proto
	Headers map[string]string // lowercased names, verbatim values
}

// ParseRequest parses one request head from the front of buf.
// Returns the request, the number of bytes consumed including the
// blank-line terminator, and an error.
//
// If buf does not yet contain the terminator the head is incomplete and
// ParseRequest returns (nil, 0, nil); the caller keeps accumulating.
// Header names are lowercased because HTTP treats them case-insensitively;
// values are kept byte-exact since Sec-WebSocket-Key must be hashed
// verbatim. A repeated header keeps its last value.
func ParseRequest(buf []byte) (*Request, int, error) {
	idx := bytes.Index(buf, []byte(headTerminator))
	if idx < 0 {
		return nil, 0, nil // head not complete yet
	}
	consumed := idx + len(headTerminator)

	lines := strings.Split(string(buf[:idx]), "\r\n")
	parts := strings.Split(lines[0], " ")
	if len(parts) != 3 {
		return nil, 0, fmt.Errorf("%w: %q", ErrMalformedRequestLine, lines[0])
	}

	req := &Request{
		Method:  parts[0],
		Target:  parts[1],
		Proto:   parts[2],
		Headers: make(map[string]string, len(lines)-1),
	}

	num, ok := strings.CutPrefix(req.Proto, protoPrefix)
	if !ok {
		return nil, 0, fmt.Errorf("%w: %q", ErrBadProto, req.Proto)
	}
	v, err := version.NewVersion(num)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %q", ErrBadProto, req.Proto)
	}
	req.Version = v

	for _, line := range lines[1:] {
		name, value, ok := strings.Cut(line, ": ")
		if !ok || name == "" {
			return nil, 0, fmt.Errorf("%w: %q", ErrMalformedHeader, line)
		}
		req.Headers[strings.ToLower(name)] = value
	}

	return req, consumed, nil
}
