// Package netio implements the buffered, non-blocking reader and writer the
// connection engine drives one byte/one drain at a time from coroutine
// steps, translating EAGAIN/EWOULDBLOCK into coro.Pending instead of
// blocking the single event-loop thread.
package netio

import (
	"errors"

	"golang.org/x/sys/unix"

	"github.com/yourusername/relay/pkg/relay/coro"
)

// BufferSize is the fixed read-buffer capacity per connection.
const BufferSize = 8192

// ErrFatal wraps an unrecoverable syscall error. The caller is expected to
// log it and tear the whole process down the way the original's
// ERRNO_FATAL does, since these indicate conditions the event loop cannot
// make forward progress past (a corrupted fd table, resource exhaustion).
type ErrFatal struct {
	Op  string
	Err error
}

func (e *ErrFatal) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *ErrFatal) Unwrap() error { return e.Err }

func isBlocking(err error) bool {
	return errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK)
}

// Reader buffers non-blocking reads from a socket file descriptor,
// refilling the whole buffer in one recv() whenever it runs dry.
type Reader struct {
	Fd       int
	data     [BufferSize]byte
	at       int
	count    int
	readCnt  int
	eof      bool
	fatalErr error
}

// NewReader returns a Reader bound to fd.
func NewReader(fd int) *Reader { return &Reader{Fd: fd} }

// BytesRead returns the total number of bytes pulled off the socket so far.
func (r *Reader) BytesRead() int { return r.readCnt }

// FatalErr returns the syscall error that latched the reader into a
// terminal SysError state, if any.
func (r *Reader) FatalErr() error { return r.fatalErr }

// refill clears the buffer and issues one non-blocking recv.
func (r *Reader) refill() coro.Signal {
	r.at, r.count = 0, 0

	n, err := unix.Read(r.Fd, r.data[:])
	if err != nil {
		if isBlocking(err) {
			return coro.Pending
		}
		r.fatalErr = &ErrFatal{Op: "read", Err: err}
		return coro.SysError
	}
	if n == 0 {
		r.eof = true
		return coro.IOEOF
	}

	r.readCnt += n
	r.count = n
	return coro.Signal(n)
}

// GetByte returns the next byte from the socket, refilling the buffer via
// one non-blocking read when empty. Returns coro.Pending if no data is
// currently available, coro.IOEOF once the peer has shut down its write
// side, or coro.SysError on an unrecoverable read error (see FatalErr).
func (r *Reader) GetByte() (byte, coro.Signal) {
	if r.at == r.count {
		if r.eof {
			return 0, coro.IOEOF
		}
		if sig := r.refill(); sig < 0 {
			return 0, sig
		}
	}

	b := r.data[r.at]
	r.at++
	return b, 0
}

// Writer buffers a single pending write and drains it to a socket file
// descriptor across possibly many non-blocking send() calls.
type Writer struct {
	Fd       int
	pending  []byte
	closed   bool
	fatalErr error
}

// NewWriter returns a Writer bound to fd.
func NewWriter(fd int) *Writer { return &Writer{Fd: fd} }

// FatalErr returns the syscall error that latched the writer into a
// terminal SysError state, if any.
func (w *Writer) FatalErr() error { return w.fatalErr }

// Closed reports whether the peer has gone away (EPIPE/ECONNRESET).
func (w *Writer) Closed() bool { return w.closed }

// PutData queues data for writing. Calling this while a previous Drain has
// not yet fully completed, or after the writer has latched closed, is a
// programming error and panics — the same discipline writer_put_data
// enforces with abort() in the original.
func (w *Writer) PutData(data []byte) {
	if w.closed {
		panic("netio: PutData on a closed writer")
	}
	if w.pending != nil {
		panic("netio: PutData called before previous Drain completed")
	}
	w.pending = data
}

// Drain writes as much of the pending data as the socket will currently
// accept. Returns coro.Pending if the socket would block with data still
// queued, coro.Done once everything has been written, coro.IOClosed if the
// peer reset the connection, or coro.SysError for anything else.
func (w *Writer) Drain() coro.Signal {
	for len(w.pending) > 0 {
		n, err := unix.Send(w.Fd, w.pending, unix.MSG_NOSIGNAL)
		if err != nil {
			if isBlocking(err) {
				return coro.Pending
			}
			if errors.Is(err, unix.EPIPE) || errors.Is(err, unix.ECONNRESET) {
				w.closed = true
				return coro.IOClosed
			}
			w.fatalErr = &ErrFatal{Op: "send", Err: err}
			return coro.SysError
		}
		w.pending = w.pending[n:]
	}

	w.pending = nil
	return coro.Done
}
