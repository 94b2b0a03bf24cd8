// Package handler implements the request-handler task: the coroutine that
// reads one HTTP/1.0 request off a connection's socket, parses it, and
// writes back a fixed response body — the same one-shot, no-keep-alive
// request cycle the original cnsync demo server drives per connection.
package handler

import (
	"strconv"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/yourusername/relay/pkg/relay/coro"
	"github.com/yourusername/relay/pkg/relay/engine"
	"github.com/yourusername/relay/pkg/relay/fmtutil"
	"github.com/yourusername/relay/pkg/relay/http10"
	"github.com/yourusername/relay/pkg/relay/netio"
	"github.com/yourusername/relay/pkg/relay/strbuf"
)

const htmlMimetype = "text/html; charset=utf-8"
const serverName = "relay"

// body is the fixed 64 KiB response payload: 'a' repeated, with a '!' as
// the final byte, built once at package init rather than per request.
var body = func() []byte {
	b := make([]byte, 1<<16)
	for i := range b {
		b[i] = 'a'
	}
	b[len(b)-1] = '!'
	return b
}()

const (
	stepInit = iota
	stepReadHeader
	stepWriteHeader
	stepWriteBody
)

// RequestState is the per-connection scratch memory a Task resumes
// through. One RequestState lives in each connection slot's slab for the
// lifetime of the server and is reset, never reallocated, between
// connections.
type RequestState struct {
	reader  *netio.Reader
	writer  *netio.Writer
	req     http10.Header
	resp    http10.Header
	status  http10.StatusCode
	dateBuf [32]byte
}

// NewRequestState allocates a RequestState to be installed as one
// connection slot's coro.Context.Slab.
func NewRequestState() *RequestState { return &RequestState{} }

func (rs *RequestState) reset(fd int) {
	rs.reader = netio.NewReader(fd)
	rs.writer = netio.NewWriter(fd)
	rs.req.Reset()
	rs.resp.Reset()
	rs.status = http10.StatusBadRequest
}

// Task returns a coro.Task that serves exactly one HTTP/1.0 request per
// connection, logging a one-line entry per completed request (and, at
// Debug level, nothing additional — connection accept/close lines are the
// engine's responsibility, not the handler's).
func Task(logger hclog.Logger) coro.Task {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	return func(ctx *coro.Context, connAny any) coro.Signal {
		slot := connAny.(*engine.Slot)
		rs := ctx.Slab.(*RequestState)

		if ctx.Step == stepInit {
			rs.reset(slot.Fd)
			ctx.Step = stepReadHeader
		}

		if ctx.Step == stepReadHeader {
			for {
				c, sig := rs.reader.GetByte()
				if sig == coro.IOEOF {
					break
				}
				if sig < 0 {
					return sig
				}
				if sig == coro.Pending {
					return coro.Pending
				}

				if rs.req.HeaderLen == http10.HeaderSizeMax {
					rs.status = http10.StatusHeaderTooLarge
					break
				}
				rs.req.HeaderData[rs.req.HeaderLen] = c
				rs.req.HeaderLen++

				if c == '\n' && http10.IsHeaderEnd(rs.req.HeaderData[:rs.req.HeaderLen]) {
					break
				}
			}

			if rs.req.HeaderLen == 0 {
				return coro.Done
			}

			if err := http10.ParseRequest(&rs.req); err == nil {
				rs.status = http10.StatusOK
			} else if rs.status != http10.StatusHeaderTooLarge {
				rs.status = statusForParseError(err)
			}

			logRequest(logger, rs)

			rs.resp.Status = rs.status
			rs.resp.StdFields[http10.HNameContentType] = strbuf.View{Data: []byte(htmlMimetype)}
			rs.resp.StdFields[http10.HNameServer] = strbuf.View{Data: []byte(serverName)}

			dateBuilder := strbuf.NewBuilder(rs.dateBuf[:])
			fmtutil.AppendHTTPDate(&dateBuilder, time.Now())
			rs.resp.StdFields[http10.HNameDate] = strbuf.View{Data: dateBuilder.Bytes()}

			if err := http10.FillResponseHeader(&rs.resp, uint64(len(body))); err != nil {
				return coro.Done
			}

			rs.writer.PutData(rs.resp.HeaderData[:rs.resp.HeaderLen])
			ctx.Step = stepWriteHeader
		}

		if ctx.Step == stepWriteHeader {
			sig := rs.writer.Drain()
			if sig == coro.Pending {
				return coro.Pending
			}
			if sig != coro.Done {
				return coro.Done
			}

			if rs.req.Method == http10.MethodHEAD {
				return coro.Done
			}

			rs.writer.PutData(body)
			ctx.Step = stepWriteBody
		}

		sig := rs.writer.Drain()
		if sig == coro.Pending {
			return coro.Pending
		}
		return coro.Done
	}
}

func statusForParseError(err error) http10.StatusCode {
	switch err {
	case http10.ErrUnsupportedVersion:
		return http10.StatusVersionUnsupported
	case http10.ErrURITooLong:
		return http10.StatusURITooLong
	default:
		return http10.StatusBadRequest
	}
}

func logRequest(logger hclog.Logger, rs *RequestState) {
	if rs.req.FirstLine.IsNull() {
		return
	}
	line := "[" + fmtutil.LocalDatetime(time.Now()) + "] " +
		strconv.Itoa(int(rs.status)) + ` -- "` + string(rs.req.FirstLine.Data) + `"`
	logger.Info(line)
}
