// Package funcbc implements the Function Codec component: recursive
// dump/load of a runtime.CompiledFunction tree to and from the binary
// bytecode format (spec.md §4.3, §4.4).
package funcbc

import "github.com/pkg/errors"

// ErrInvalidFormat is returned by Load when the input fails the leading
// signature check, a constant's type tag is not recognized, or the input
// ends early (primitive.ErrShortInput during decoding). Apart from the
// signature check it comes wrapped with context; match it with errors.Is
// or errors.Cause.
var ErrInvalidFormat = errors.New("funcbc: invalid format")

// ErrBoundFunction is returned by Dump for a function marked Bound: bound
// functions don't carry the length/name/fileName own-properties dump()
// relies on, so they are rejected rather than serialized incorrectly
// (spec.md §6, matching duk_dump_function's handling of DUK_HOBJECT_HAS_BOUND).
var ErrBoundFunction = errors.New("funcbc: cannot dump a bound function")
