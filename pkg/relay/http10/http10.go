// Package http10 implements the HTTP/1.0 wire model: methods, status
// codes, the known/overflow header-field table, and the scanner plus
// recursive-descent parser that turns a buffered header blob into it.
//
// Like the teacher's http11 engine, every parsed field is a borrowed view
// into the caller's buffer — nothing here allocates per request.
package http10

import "github.com/yourusername/relay/pkg/relay/strbuf"

// Method identifies the HTTP/1.0 request method. Methods this server does
// not specifically recognize parse as MethodUnknown rather than failing.
type Method int

const (
	MethodGET Method = iota
	MethodPOST
	MethodHEAD
	MethodUnknown
)

var methodNames = [...]string{
	MethodGET:     "GET",
	MethodPOST:    "POST",
	MethodHEAD:    "HEAD",
	MethodUnknown: "<unknown-method>",
}

// String returns the method's wire name.
func (m Method) String() string {
	if m < 0 || int(m) >= len(methodNames) {
		return methodNames[MethodUnknown]
	}
	return methodNames[m]
}

// StatusCode is an HTTP status code used by this server's responses.
type StatusCode int

const (
	StatusOK                  StatusCode = 200
	StatusCreated             StatusCode = 201
	StatusAccepted            StatusCode = 202
	StatusNoContent           StatusCode = 204
	StatusMovedPermanently    StatusCode = 301
	StatusMovedTemporarily    StatusCode = 302
	StatusNotModified         StatusCode = 304
	StatusBadRequest          StatusCode = 400
	StatusUnauthorized        StatusCode = 401
	StatusForbidden           StatusCode = 403
	StatusNotFound            StatusCode = 404
	StatusURITooLong          StatusCode = 414
	StatusTeapot              StatusCode = 418
	StatusHeaderTooLarge      StatusCode = 431
	StatusInternalError       StatusCode = 500
	StatusNotImplemented      StatusCode = 501
	StatusBadGateway          StatusCode = 502
	StatusServiceUnavailable  StatusCode = 503
	StatusVersionUnsupported  StatusCode = 505
)

var statusText = map[StatusCode]string{
	StatusOK:                 "OK",
	StatusCreated:            "Created",
	StatusAccepted:           "Accepted",
	StatusNoContent:          "No Content",
	StatusMovedPermanently:   "Moved Permanently",
	StatusMovedTemporarily:   "Moved Temporarily",
	StatusNotModified:        "Not Modified",
	StatusBadRequest:         "Bad Request",
	StatusUnauthorized:       "Unauthorized",
	StatusForbidden:          "Forbidden",
	StatusNotFound:           "Not Found",
	StatusURITooLong:         "Request URI Too Long",
	StatusTeapot:             "I'm a Teapot",
	StatusHeaderTooLarge:     "Request Header Too Large",
	StatusInternalError:      "Internal Server Error",
	StatusNotImplemented:     "Not Implemented",
	StatusBadGateway:         "Bad Gateway",
	StatusServiceUnavailable: "Service Unavailable",
	StatusVersionUnsupported: "HTTP Version Not Supported",
}

// Text returns the reason phrase for s, or "" if unknown.
func (s StatusCode) Text() string { return statusText[s] }

// HeaderName identifies one of the fixed set of header fields this server
// tracks explicitly; any other header name parses into a request's
// overflow Extra list instead.
type HeaderName int

const (
	HNameAllow HeaderName = iota
	HNameContentEncoding
	HNameContentLength
	HNameContentType
	HNameExpires
	HNameLastModified
	HNamePragma
	HNameDate
	HNameLocation
	HNameServer
	HNameWWWAuthenticate
	HNameAuthorization
	HNameFrom
	HNameIfModifiedSince
	HNameReferer
	HNameUserAgent
	HNameHost
	hnameCount
)

var headerNames = [hnameCount]string{
	HNameAllow:           "Allow",
	HNameContentEncoding: "Content-Encoding",
	HNameContentLength:   "Content-Length",
	HNameContentType:     "Content-Type",
	HNameExpires:         "Expires",
	HNameLastModified:    "Last-Modified",
	HNamePragma:          "Pragma",
	HNameDate:            "Date",
	HNameLocation:        "Location",
	HNameServer:          "Server",
	HNameWWWAuthenticate: "WWW-Authenticate",
	HNameAuthorization:   "Authorization",
	HNameFrom:            "From",
	HNameIfModifiedSince: "If-Modified-Since",
	HNameReferer:         "Referer",
	HNameUserAgent:       "User-Agent",
	HNameHost:            "Host",
}

// String returns the header's wire name.
func (h HeaderName) String() string { return headerNames[h] }

// Limits the size caps every parsed request and assembled response obeys.
const (
	// HeaderSizeMax bounds the total bytes of header data (request line +
	// all header fields + terminating blank line) a connection will buffer.
	HeaderSizeMax = 8190
	// URISizeMax bounds the request-URI length within HeaderSizeMax.
	URISizeMax = 4096
	// ExtraFieldsMax bounds the number of header fields outside the known
	// HeaderName table a single request may carry.
	ExtraFieldsMax = 64
)

// HeaderField is one (name, value) pair outside the known-field table.
type HeaderField struct {
	Name  strbuf.View
	Value strbuf.View
}

// URI is a decomposed request-URI. Only Full is populated by this parser
// — path/query/segment splitting is a documented future extension, not a
// gap silently left in by accident.
type URI struct {
	Full    strbuf.View
	Path    strbuf.View
	Query   strbuf.View
	Segment strbuf.View
}

// Header holds a parsed request (or an in-progress response): method,
// status, version, URI, the fixed known-field table, and the bounded
// overflow list, exactly as the wire model this server implements
// specifies. A nil entry in StdFields means that field was not present.
type Header struct {
	Method  Method
	Status  StatusCode
	Version uint8 // 10 for HTTP/1.0, 11 for HTTP/1.1
	URI     URI

	StdFields [hnameCount]strbuf.View
	Extra     [ExtraFieldsMax]HeaderField
	ExtraCnt  int

	// FirstLine is the request line, captured for the one-line access log.
	FirstLine strbuf.View

	// HeaderData is the raw buffered bytes the request/response header was
	// built from or is being built into.
	HeaderData [HeaderSizeMax]byte
	HeaderLen  int
}

// Reset clears h for reuse across connections, avoiding a fresh allocation
// per accepted socket — the slab this struct lives in is never freed
// across the server's lifetime.
func (h *Header) Reset() {
	h.Method = MethodUnknown
	h.Status = 0
	h.Version = 0
	h.URI = URI{}
	for i := range h.StdFields {
		h.StdFields[i] = strbuf.View{}
	}
	h.ExtraCnt = 0
	h.FirstLine = strbuf.View{}
	h.HeaderLen = 0
}
