package http10

import (
	"errors"

	"github.com/yourusername/relay/pkg/relay/strbuf"
)

// ErrResponseHeaderTooLong is returned when a response's assembled header
// (status line + known fields + extra fields + Content-Length + terminator)
// would not fit within HeaderSizeMax.
var ErrResponseHeaderTooLong = errors.New("http10: response header too long")

// FillResponseHeader renders resp's status line, known fields (in
// HeaderName enum order), and extra fields into resp.HeaderData, adding a
// Content-Length field sized contentLength if one was not already set
// explicitly. resp.HeaderLen is set to the number of bytes written.
//
// The upstream C builder checks this capacity with `if (APP(CRLF))`, which
// reads as "the terminator was successfully appended" but actually fires
// the too-long branch on *success* since string_append returns true when
// it fit — an inverted check that only ever manifests as a false error log
// immediately before the (already-correct) header is sent anyway. This
// checks `!ok` instead, so the reported error actually corresponds to a
// header that didn't fit.
func FillResponseHeader(resp *Header, contentLength uint64) error {
	b := strbuf.NewBuilder(resp.HeaderData[:])

	ok := b.AppendString("HTTP/1.0 ") &&
		b.AppendUint(uint64(resp.Status)) &&
		b.AppendString(" ") &&
		b.AppendString(resp.Status.Text()) &&
		b.AppendString("\r\n")

	for i := HeaderName(0); ok && i < hnameCount; i++ {
		if resp.StdFields[i].IsNull() {
			continue
		}
		ok = b.AppendString(headerNames[i]) &&
			b.AppendString(": ") &&
			b.AppendView(resp.StdFields[i]) &&
			b.AppendString("\r\n")
	}

	for i := 0; ok && i < resp.ExtraCnt; i++ {
		f := resp.Extra[i]
		ok = b.AppendView(f.Name) &&
			b.AppendString(": ") &&
			b.AppendView(f.Value) &&
			b.AppendString("\r\n")
	}

	if ok && resp.StdFields[HNameContentLength].IsNull() {
		ok = b.AppendString(headerNames[HNameContentLength]) &&
			b.AppendString(": ") &&
			b.AppendUint(contentLength) &&
			b.AppendString("\r\n")
	}

	if ok {
		ok = b.AppendString("\r\n")
	}

	if !ok {
		return ErrResponseHeaderTooLong
	}

	resp.HeaderLen = b.Len()
	return nil
}
