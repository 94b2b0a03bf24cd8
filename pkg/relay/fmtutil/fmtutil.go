// Package fmtutil formats dates directly into a caller-owned buffer.
//
// The original formatters write into a package-level static buffer that a
// second in-flight caller could clobber before the first is done reading
// it — fine for a single-threaded event loop driving one coroutine at a
// time, but not a pattern worth reproducing in a buffer-oriented Go API
// when the caller's own strbuf.Builder is right there. The Append*
// formatters here append straight into it instead; HTTPDate and
// LocalDatetime return a freshly allocated string.
package fmtutil

import (
	"time"

	"github.com/yourusername/relay/pkg/relay/strbuf"
)

// httpDateLayout is the RFC 1123-ish format HTTP's Date header uses:
// "<day-name>, <day> <month> <year> <hour>:<minute>:<second> GMT".
const httpDateLayout = "Mon, 02 Jan 2006 15:04:05 GMT"

// localDateLayout mirrors strftime's "%F %T" used for the one-line access
// log: "<year>-<month>-<day> <hour>:<minute>:<second>".
const localDateLayout = "2006-01-02 15:04:05"

// AppendHTTPDate appends the current time in GMT, formatted for an HTTP
// Date header, to b. Returns false if it did not fit.
func AppendHTTPDate(b *strbuf.Builder, now time.Time) bool {
	return b.AppendString(now.UTC().Format(httpDateLayout))
}

// AppendLocalDatetime appends the current local time formatted for the
// one-line access log to b. Returns false if it did not fit.
func AppendLocalDatetime(b *strbuf.Builder, now time.Time) bool {
	return b.AppendString(now.Format(localDateLayout))
}

// HTTPDate returns the current time in GMT, formatted for an HTTP Date
// header, as a plain string, for callers without a strbuf.Builder at hand.
func HTTPDate(now time.Time) string { return now.UTC().Format(httpDateLayout) }

// LocalDatetime returns the current local time formatted for the one-line
// access log, as a plain string.
func LocalDatetime(now time.Time) string { return now.Format(localDateLayout) }
