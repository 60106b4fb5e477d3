package funcbc

import (
	"github.com/pkg/errors"

	"github.com/thebagchi/bcdump-go/lib/bufwriter"
	"github.com/thebagchi/bcdump-go/lib/primitive"
	"github.com/thebagchi/bcdump-go/lib/runtime"
)

const (
	sigMarker  = 0xFF
	sigVersion = 0x00

	constTagString = 0x00
	constTagNumber = 0x01
)

// Dump serializes fn and its inner-function tree into the wire format
// described by spec.md §4.3: a two-byte signature followed by the
// recursively dumped function.
//
// Dump performs no input buffer length checks beyond what constructing
// the tree in Go already guarantees (a CompiledFunction built any other
// way than via runtime.Stack is a caller bug, not a format error) —
// matching duk_dump_function's documented stance that dump/load safety
// is a trusted-input contract, not a memory-safety boundary.
func Dump(fn *runtime.CompiledFunction) ([]byte, error) {
	if fn.Bound {
		return nil, ErrBoundFunction
	}
	w := bufwriter.NewWriter()
	defer w.Release()

	w.Ensure(2)
	w.PutU8(sigMarker)
	w.PutU8(sigVersion)

	dumpFunc(w, fn)
	w.Finish()
	return w.Compact(), nil
}

func dumpFunc(w *bufwriter.Writer, fn *runtime.CompiledFunction) {
	countInstr := uint32(len(fn.Instructions))
	countConst := uint32(len(fn.Constants))
	countFuncs := uint32(len(fn.Inner))

	w.Ensure(3*4 + 2*2 + 2*4 + 4)
	w.PutBytes(primitive.PutU32(nil, countInstr))
	w.PutBytes(primitive.PutU32(nil, countConst))
	w.PutBytes(primitive.PutU32(nil, countFuncs))
	w.PutBytes(primitive.PutU16(nil, fn.NRegs))
	w.PutBytes(primitive.PutU16(nil, fn.NArgs))
	w.PutBytes(primitive.PutU32(nil, fn.StartLine))
	w.PutBytes(primitive.PutU32(nil, fn.EndLine))
	w.PutBytes(primitive.PutU32(nil, fn.Flags))

	w.Ensure(int(countInstr) * 4)
	for _, ins := range fn.Instructions {
		w.PutBytes(primitive.PutU32(nil, ins))
	}

	for _, c := range fn.Constants {
		switch v := c.(type) {
		case runtime.String:
			w.Ensure(1 + 4 + len(v))
			w.PutU8(constTagString)
			w.PutBytes(primitive.PutString(nil, string(v)))
		case runtime.Number:
			w.Ensure(1 + 8)
			w.PutU8(constTagNumber)
			w.PutBytes(primitive.PutDouble(nil, float64(v)))
		default:
			panic(errors.Errorf("funcbc: constant must be String or Number, got %T", c))
		}
	}

	for _, inner := range fn.Inner {
		dumpFunc(w, inner)
	}

	dumpUint32Prop(w, fn.Length, uint32(fn.NArgs))
	dumpStringProp(w, fn.Name)
	dumpStringProp(w, fn.FileName)
	dumpBufferProp(w, fn.Pc2Line)
	dumpVarMap(w, fn.VarMap)
	dumpFormals(w, fn.Formals)
}

// dumpUint32Prop writes v, falling back to def when v is the Go zero
// value — the Go data model has no separate "own property present"
// flag, so an unset property and an explicit zero are indistinguishable
// and both take the default. This mirrors duk__dump_uint32_prop's
// def_value fallback, used for .length defaulting to nargs when the
// function template never had an own .length property.
func dumpUint32Prop(w *bufwriter.Writer, v uint32, def uint32) {
	if v == 0 {
		v = def
	}
	w.Ensure(4)
	w.PutBytes(primitive.PutU32(nil, v))
}

func dumpStringProp(w *bufwriter.Writer, s string) {
	w.Ensure(4 + len(s))
	w.PutBytes(primitive.PutString(nil, s))
}

func dumpBufferProp(w *bufwriter.Writer, b []byte) {
	w.Ensure(4 + len(b))
	w.PutBytes(primitive.PutBuffer(nil, b))
}

// dumpVarMap writes each (name, register) pair followed by an
// empty-string terminator (spec.md §4.3 item 5).
func dumpVarMap(w *bufwriter.Writer, entries []runtime.VarMapEntry) {
	for _, e := range entries {
		w.Ensure(4 + len(e.Name) + 4)
		w.PutBytes(primitive.PutString(nil, e.Name))
		w.PutBytes(primitive.PutU32(nil, e.Value))
	}
	w.Ensure(4)
	w.PutBytes(primitive.PutU32(nil, 0))
}

// dumpFormals writes each formal parameter name followed by an
// empty-string terminator (spec.md §4.3 item 6).
func dumpFormals(w *bufwriter.Writer, formals []string) {
	for _, name := range formals {
		w.Ensure(4 + len(name))
		w.PutBytes(primitive.PutString(nil, name))
	}
	w.Ensure(4)
	w.PutBytes(primitive.PutU32(nil, 0))
}
