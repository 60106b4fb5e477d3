// Package bufwriter implements a growable output cursor over a dynamic
// byte buffer: the BufferWriter component of the bytecode dump codec.
//
// # Overview
//
// Writer presents a moving write position into a buffer that grows
// transparently as more bytes are appended. Callers call Ensure before
// each write burst to guarantee the requested number of bytes are
// available without the caller having to check capacity itself.
//
// # Dependencies
//
// Backed by a pooled *bytebufferpool.ByteBuffer rather than a bare
// []byte, so repeated dump() calls (the common AOT-precompile workload:
// dump once per build, load many times at runtime) reuse backing arrays
// instead of allocating a fresh one every time.
//
// # Growth strategy
//
//   - Fast path: if the backing array already has capacity for n more
//     bytes, Ensure only extends the slice over that capacity; a pooled
//     array is reused this way without reallocating.
//   - Slow path: grow to (current offset + n + slack + offset/4) bytes,
//     where slack is a 1024-byte base allowance. The base keeps small
//     functions from over-allocating, and the offset/4 term makes each
//     reallocation add room in proportion to what is already written,
//     so growth stays amortised O(1) per byte however small the bursts.
package bufwriter

import "github.com/valyala/bytebufferpool"

// slack is the minimum number of extra bytes requested on every grow,
// on top of a quarter of the current offset.
const slack = 1024

// Writer is a growable output cursor. The zero value is not usable; use
// NewWriter.
type Writer struct {
	buf    *bytebufferpool.ByteBuffer
	offset int
}

// NewWriter checks out a pooled buffer and returns a Writer ready for
// writing at offset 0.
func NewWriter() *Writer {
	return &Writer{buf: bytebufferpool.Get()}
}

// Len returns the number of bytes written so far (the current offset).
func (w *Writer) Len() int {
	return w.offset
}

// Ensure guarantees that at least n more bytes can be written starting
// at the current offset, growing the backing buffer if necessary. It
// must be called before every write burst; writing into unensured space
// is a caller bug.
func (w *Writer) Ensure(n int) {
	if cap(w.buf.B)-w.offset >= n {
		w.buf.B = w.buf.B[:cap(w.buf.B)]
		return
	}
	want := w.offset + n + slack + w.offset/4
	grown := make([]byte, want)
	copy(grown, w.buf.B)
	w.buf.B = grown
}

// PutU8 appends a single byte at the current offset and advances it.
// Callers must have called Ensure(1) (or more) first.
func (w *Writer) PutU8(v uint8) {
	w.buf.B[w.offset] = v
	w.offset++
}

// PutBytes appends raw bytes at the current offset and advances it.
// Callers must have called Ensure(len(p)) first.
func (w *Writer) PutBytes(p []byte) {
	copy(w.buf.B[w.offset:], p)
	w.offset += len(p)
}

// Bytes returns the bytes written so far, as a slice into the writer's
// backing array. Callers that need the result to outlive Release must
// copy it first.
func (w *Writer) Bytes() []byte {
	return w.buf.B[:w.offset]
}

// Finish commits the current offset as the writer's logical end. It must
// be called before Bytes/Compact/Release are relied upon to reflect the
// final size.
func (w *Writer) Finish() {
	w.buf.B = w.buf.B[:w.offset]
}

// Compact returns a copy of the committed bytes in a right-sized array,
// so no spare capacity from growth is retained in the returned blob. The
// backing buffer itself is left as it is. Finish must be called first.
func (w *Writer) Compact() []byte {
	out := make([]byte, w.offset)
	copy(out, w.buf.B[:w.offset])
	return out
}

// Release returns the backing buffer to the pool, unless it grew beyond
// a size worth retaining, matching the drop-oversized-buffers policy
// used for pooled request buffers elsewhere in this module's domain
// stack. Callers must not use w after calling Release.
func (w *Writer) Release() {
	const maxPooled = 64 * 1024
	if cap(w.buf.B) > maxPooled {
		w.buf = nil
		return
	}
	bytebufferpool.Put(w.buf)
	w.buf = nil
}
