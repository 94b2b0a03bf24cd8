package http10

import (
	"errors"

	"github.com/yourusername/relay/pkg/relay/strbuf"
)

// Parser errors. Unlike the upstream C parser's plain true/false return,
// every failure here is distinguishable, which lets the handler map a
// malformed request line to 400 and an unsupported version to 505 instead
// of collapsing every rejection into the same status.
var (
	ErrRequestLineMalformed = errors.New("http10: malformed request line")
	ErrUnsupportedVersion   = errors.New("http10: unsupported HTTP version")
	ErrURITooLong           = errors.New("http10: request URI too long")
	ErrFieldMalformed       = errors.New("http10: malformed header field")
	ErrDuplicateStdField    = errors.New("http10: duplicate standard header field")
	ErrTooManyExtraFields   = errors.New("http10: too many header fields")
)

// IsHeaderEnd reports whether the tail of data marks the end of a header
// block: two '\n' characters with only '\r' permitted between or before
// them, tolerating any of "\r\n\r\n", "\n\n", "\r\n\n", "\n\r\n".
func IsHeaderEnd(data []byte) bool {
	n := len(data)
	if n > 4 {
		n = 4
	}
	tail := data[len(data)-n:]

	prev := byte(0)
	for i := 0; i < len(tail); i++ {
		c := tail[i]
		if c == '\n' && prev == '\n' {
			return true
		}
		if c == '\r' {
			continue
		}
		prev = c
	}
	return false
}

func expect(tok token, want tokenType) bool { return tok.typ == want }

// parseRequestLine parses "<method> <uri> HTTP/<major>.<minor> CRLF".
func parseRequestLine(s *scanner, h *Header) error {
	h.Method = MethodUnknown

	name := s.next()
	if !expect(name, tokName) {
		return ErrRequestLineMalformed
	}
	for i := Method(0); i < MethodUnknown; i++ {
		if strbuf.EqualFold(name.lexeme, []byte(methodNames[i])) {
			h.Method = i
			break
		}
	}

	if !expect(s.next(), tokBlanks) {
		return ErrRequestLineMalformed
	}

	uri := s.skipWhileTok(isURIChar)
	if len(uri.lexeme) > URISizeMax {
		return ErrURITooLong
	}
	h.URI = URI{Full: strbuf.View{Data: uri.lexeme}}

	if !expect(s.next(), tokBlanks) {
		return ErrRequestLineMalformed
	}

	ver := s.skipWhileTok(isNotCRLF)
	switch {
	case strbuf.EqualFold(ver.lexeme, []byte("HTTP/1.0")):
		h.Version = 10
	case strbuf.EqualFold(ver.lexeme, []byte("HTTP/1.1")):
		h.Version = 11
	default:
		return ErrUnsupportedVersion
	}

	if !expect(s.next(), tokCRLF) {
		return ErrRequestLineMalformed
	}
	return nil
}

// parseHeaderFields parses "(<name> ':' <blanks>? <value> CRLF)* CRLF".
//
// The original implementation's loop body ends in an unconditional
// `return true` after its first iteration, so it only ever parses one
// header field before treating the request as fully consumed. Nothing in
// this server's design calls for that — the known/overflow field split and
// the duplicate-field rejection below only make sense if every field in
// the blob is actually visited — so this parses the full field list
// instead of reproducing that truncation.
func parseHeaderFields(s *scanner, h *Header) error {
	for {
		name := s.next()
		if name.typ == tokCRLF {
			return nil
		}
		if !expect(name, tokName) {
			return ErrFieldMalformed
		}
		headerName := name.lexeme

		if !expect(s.next(), tokColon) {
			return ErrFieldMalformed
		}
		s.skipBlanks()

		valTok := s.skipWhileTok(isNotCRLF)
		value := strbuf.View{Data: valTok.lexeme}

		if !expect(s.next(), tokCRLF) {
			return ErrFieldMalformed
		}

		stdIdx := -1
		for i := HeaderName(0); i < hnameCount; i++ {
			if !strbuf.EqualFold(headerName, []byte(headerNames[i])) {
				continue
			}
			if !h.StdFields[i].IsNull() {
				return ErrDuplicateStdField
			}
			stdIdx = int(i)
			break
		}

		if stdIdx != -1 {
			h.StdFields[stdIdx] = value
		} else {
			if h.ExtraCnt == ExtraFieldsMax {
				return ErrTooManyExtraFields
			}
			h.Extra[h.ExtraCnt] = HeaderField{Name: strbuf.View{Data: headerName}, Value: value}
			h.ExtraCnt++
		}
	}
}

// ParseRequest parses h.HeaderData[:h.HeaderLen] (already buffered by the
// caller up to the terminating blank line) into h's method/URI/version and
// field tables. h.StdFields/h.Extra are reset from their zero value before
// parsing, mirroring the original's per-parse memset of std_fields.
func ParseRequest(h *Header) error {
	for i := range h.StdFields {
		h.StdFields[i] = strbuf.View{}
	}
	h.ExtraCnt = 0

	data := h.HeaderData[:h.HeaderLen]
	s := newScanner(data)

	for i, c := range data {
		if c == '\n' || c == '\r' {
			h.FirstLine = strbuf.View{Data: data[:i]}
			break
		}
	}

	if err := parseRequestLine(&s, h); err != nil {
		return err
	}
	return parseHeaderFields(&s, h)
}
