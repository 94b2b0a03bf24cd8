// Package strbuf provides bounded, allocation-free string views and a
// capacity-checked builder, the primitives every other package in this
// module uses to move bytes around without touching the heap per request.
package strbuf

import "bytes"

// View is a slice of bytes borrowed from a larger buffer. A nil Data means
// the field it came from was never populated — the null-slice sentinel
// used throughout the header model to mean "absent", not "empty string".
type View struct {
	Data []byte
}

// Null returns the sentinel "absent" view.
func Null() View { return View{} }

// IsNull reports whether v represents an absent field.
func (v View) IsNull() bool { return v.Data == nil }

// String allocates and returns the view's contents as a string. Callers on
// the hot path should prefer comparing/copying the []byte directly.
func (v View) String() string { return string(v.Data) }

// Equal reports byte-for-byte equality.
func Equal(a, b View) bool { return bytes.Equal(a.Data, b.Data) }

// EqualFold reports ASCII case-insensitive equality.
func EqualFold(a, b []byte) bool { return bytes.EqualFold(a, b) }

// FindByte returns the index of c in v, or -1 if v is null or c is absent.
func FindByte(v View, c byte) int {
	if v.IsNull() {
		return -1
	}
	return bytes.IndexByte(v.Data, c)
}

// Partition splits v into the parts before and after pos; the byte at pos
// itself is dropped from both halves. ok is false if pos is out of range.
func Partition(v View, pos int) (left, right View, ok bool) {
	if pos < 0 || pos >= len(v.Data) {
		return View{}, View{}, false
	}
	return View{Data: v.Data[:pos]}, View{Data: v.Data[pos+1:]}, true
}

// Builder is a fixed-capacity append-only byte buffer. Every append reports
// whether it fit rather than growing or panicking, mirroring the
// capacity-checked string_append/string_append_number discipline this
// module's response-header assembly depends on.
type Builder struct {
	data []byte
	len  int
}

// NewBuilder wraps buf as a Builder with zero length and capacity len(buf).
func NewBuilder(buf []byte) Builder {
	return Builder{data: buf}
}

// Len returns the number of bytes written so far.
func (b *Builder) Len() int { return b.len }

// Cap returns the builder's total capacity.
func (b *Builder) Cap() int { return len(b.data) }

// Bytes returns the written prefix of the backing buffer.
func (b *Builder) Bytes() []byte { return b.data[:b.len] }

// Reset clears the builder without reallocating.
func (b *Builder) Reset() { b.len = 0 }

// AppendView appends v's bytes. Returns false, leaving the builder
// unchanged, if there is not enough room.
func (b *Builder) AppendView(v View) bool {
	return b.AppendBytes(v.Data)
}

// AppendBytes appends raw bytes. Returns false if there is not enough room.
func (b *Builder) AppendBytes(p []byte) bool {
	if len(b.data)-b.len < len(p) {
		return false
	}
	b.len += copy(b.data[b.len:], p)
	return true
}

// AppendString appends s. Returns false if there is not enough room.
func (b *Builder) AppendString(s string) bool {
	if len(b.data)-b.len < len(s) {
		return false
	}
	b.len += copy(b.data[b.len:], s)
	return true
}

// AppendUint appends the decimal representation of num. Returns false if
// there is not enough room, leaving the builder unchanged in that case.
func (b *Builder) AppendUint(num uint64) bool {
	var tmp [20]byte // enough digits for a 64-bit number
	n := 0
	if num == 0 {
		tmp[n] = '0'
		n++
	}
	for num > 0 {
		tmp[n] = byte(num%10) + '0'
		num /= 10
		n++
	}
	if len(b.data)-b.len < n {
		return false
	}
	for n > 0 {
		n--
		b.data[b.len] = tmp[n]
		b.len++
	}
	return true
}
