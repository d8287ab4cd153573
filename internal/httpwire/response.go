// File: internal/httpwire/response.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package httpwire

import "fmt"

// defaultBody is the landing page served for plain HTTP requests that do
// not target the WebSocket endpoint.
const defaultBody = "<HTML><HEAD><meta http-equiv=\"content-type\" content=\"text/html;charset=utf-8\">\r\n" +
	"<TITLE>200 OK</TITLE></HEAD><BODY>\r\n" +
	"<H1>200 OK</H1>\r\n" +
	"Welcome to the default.\r\n" +
	"</BODY></HTML>\r\n"

// SwitchingProtocols renders the 101 handshake reply carrying the derived
// accept key, with the header set RFC 6455 Section 4.2.2 prescribes.
func SwitchingProtocols(acceptKey string) []byte {
	return []byte("HTTP/1.1 101 Switching Protocols\r\n" +
		"Upgrade: websocket\r\n" +
		"Connection: Upgrade\r\n" +
		"Sec-WebSocket-Accept: " + acceptKey + "\r\n" +
		"\r\n")
}

// BadRequest renders the reply for upgrade attempts that failed
// validation. The connection is closed right after it is written.
func BadRequest() []byte {
	return []byte("HTTP/1.1 400 Bad Request\r\n\r\n")
}

// DefaultPage renders the 200 reply with the landing page body.
func DefaultPage() []byte {
	head := fmt.Sprintf("HTTP/1.1 200 OK\r\n"+
		"Content-Type: text/html; charset=utf-8\r\n"+
		"Content-Length: %d\r\n"+
		"\r\n", len(defaultBody))
	return append([]byte(head), defaultBody...)
}
