package funcbc

import (
	"github.com/pkg/errors"

	"github.com/thebagchi/bcdump-go/lib/primitive"
	"github.com/thebagchi/bcdump-go/lib/runtime"
)

// Load decodes data into a fresh runtime.CompiledFunction tree, using
// stack to root every intermediate allocation until the final function is
// committed (spec.md §4.4, §5, §9).
//
// Load performs no semantic validation beyond the signature check and
// constant type tags; every read is length-checked, and input that ends
// before a value it declares is reported as ErrInvalidFormat. Otherwise
// malformed bytecode is a trusted-input problem, matching
// duk_load_function's documented stance.
func Load(data []byte, stack runtime.Stack) (*runtime.CompiledFunction, error) {
	if len(data) < 2 || data[0] != sigMarker || data[1] != sigVersion {
		return nil, ErrInvalidFormat
	}
	fn, _, err := loadFunc(data[2:], stack)
	if err != nil {
		if errors.Cause(err) == primitive.ErrShortInput {
			return nil, errors.Wrap(ErrInvalidFormat, err.Error())
		}
		return nil, err
	}
	return fn, nil
}

func loadFunc(p []byte, stack runtime.Stack) (*runtime.CompiledFunction, []byte, error) {
	countInstr, p, err := primitive.ReadU32(p)
	if err != nil {
		return nil, p, errors.Wrap(err, "funcbc: header instruction count")
	}
	countConst, p, err := primitive.ReadU32(p)
	if err != nil {
		return nil, p, errors.Wrap(err, "funcbc: header constant count")
	}
	countFuncs, p, err := primitive.ReadU32(p)
	if err != nil {
		return nil, p, errors.Wrap(err, "funcbc: header inner function count")
	}

	stack.Reserve(2 + int(countConst) + int(countFuncs))

	fn := stack.NewFunction()

	fn.NRegs, p, err = primitive.ReadU16(p)
	if err != nil {
		return nil, p, errors.Wrap(err, "funcbc: nregs")
	}
	fn.NArgs, p, err = primitive.ReadU16(p)
	if err != nil {
		return nil, p, errors.Wrap(err, "funcbc: nargs")
	}
	fn.StartLine, p, err = primitive.ReadU32(p)
	if err != nil {
		return nil, p, errors.Wrap(err, "funcbc: start line")
	}
	fn.EndLine, p, err = primitive.ReadU32(p)
	if err != nil {
		return nil, p, errors.Wrap(err, "funcbc: end line")
	}
	fn.Flags, p, err = primitive.ReadU32(p)
	if err != nil {
		return nil, p, errors.Wrap(err, "funcbc: flags")
	}

	instructions := make([]uint32, countInstr)
	for i := range instructions {
		instructions[i], p, err = primitive.ReadU32(p)
		if err != nil {
			return nil, p, errors.Wrap(err, "funcbc: instruction")
		}
	}

	// Load constants onto the stack but don't yet copy into fn.Constants:
	// the stack roots them through any further recursive allocation
	// (spec.md §4.4 step 6, §9).
	for i := uint32(0); i < countConst; i++ {
		var tag uint8
		tag, p, err = primitive.ReadU8(p)
		if err != nil {
			return nil, p, errors.Wrap(err, "funcbc: constant tag")
		}
		switch tag {
		case constTagString:
			var s string
			s, p, err = primitive.ReadString(p)
			if err != nil {
				return nil, p, errors.Wrap(err, "funcbc: string constant")
			}
			stack.Push(runtime.String(s))
		case constTagNumber:
			var d float64
			d, p, err = primitive.ReadDouble(p)
			if err != nil {
				return nil, p, errors.Wrap(err, "funcbc: number constant")
			}
			stack.Push(runtime.Number(d))
		default:
			return nil, p, errors.Wrapf(ErrInvalidFormat, "funcbc: unknown constant tag 0x%02x", tag)
		}
	}

	// Load inner functions recursively; each leaves exactly its own
	// finished function rooted on the stack (spec.md §4.4 step 7).
	inner := make([]*runtime.CompiledFunction, countFuncs)
	for i := uint32(0); i < countFuncs; i++ {
		var innerFn *runtime.CompiledFunction
		innerFn, p, err = loadFunc(p, stack)
		if err != nil {
			return nil, p, err
		}
		inner[i] = innerFn
	}

	// Commit: pop the rooted temporaries back off in LIFO order and bump
	// their reference counts exactly once, now that fn can hold them
	// directly (spec.md §4.4 step 8, the two-phase GC-safe handoff).
	for i := int(countFuncs) - 1; i >= 0; i-- {
		v := stack.Pop()
		stack.Incref(v)
	}
	consts := make([]runtime.Value, countConst)
	for i := int(countConst) - 1; i >= 0; i-- {
		consts[i] = stack.Pop()
		stack.Incref(consts[i])
	}

	fn.Instructions = instructions
	fn.Constants = consts
	fn.Inner = inner

	return loadFuncProperties(fn, p, stack)
}

func loadFuncProperties(fn *runtime.CompiledFunction, p []byte, stack runtime.Stack) (*runtime.CompiledFunction, []byte, error) {
	length, p, err := primitive.ReadU32(p)
	if err != nil {
		return nil, p, errors.Wrap(err, "funcbc: length property")
	}
	if err := stack.DefineProperty(fn, "length", runtime.Number(length)); err != nil {
		return nil, p, errors.Wrap(err, "funcbc: length property")
	}

	name, p, err := primitive.ReadString(p)
	if err != nil {
		return nil, p, errors.Wrap(err, "funcbc: name property")
	}
	if fn.NameBound() {
		// Recursive self-reference: bind fn's own name inside a
		// dedicated lexical environment before anything else can
		// observe fn, so 'function foo(){ foo(); }' resolves acyclically
		// on load (spec.md §4.4 step 9, §9 "name-binding recursion").
		fn.LexEnv = &runtime.Env{Name: name, Value: fn}
	}
	if err := stack.DefineProperty(fn, "name", runtime.String(name)); err != nil {
		return nil, p, errors.Wrap(err, "funcbc: name property")
	}

	fileName, p, err := primitive.ReadString(p)
	if err != nil {
		return nil, p, errors.Wrap(err, "funcbc: fileName property")
	}
	if err := stack.DefineProperty(fn, "fileName", runtime.String(fileName)); err != nil {
		return nil, p, errors.Wrap(err, "funcbc: fileName property")
	}

	proto := runtime.NewObject()
	if err := stack.DefineProperty(proto, "constructor", fn); err != nil {
		return nil, p, errors.Wrap(err, "funcbc: prototype.constructor")
	}
	proto.Compact()
	if err := stack.DefineProperty(fn, "prototype", proto); err != nil {
		return nil, p, errors.Wrap(err, "funcbc: prototype property")
	}

	pc2line, p, err := primitive.ReadBuffer(p)
	if err != nil {
		return nil, p, errors.Wrap(err, "funcbc: pc2line property")
	}
	if err := stack.DefineProperty(fn, "pc2line", runtime.Buffer(pc2line)); err != nil {
		return nil, p, errors.Wrap(err, "funcbc: pc2line property")
	}

	varmap := runtime.NewObject()
	for {
		var key string
		key, p, err = primitive.ReadString(p)
		if err != nil {
			return nil, p, errors.Wrap(err, "funcbc: varmap entry name")
		}
		if key == "" {
			break
		}
		var reg uint32
		reg, p, err = primitive.ReadU32(p)
		if err != nil {
			return nil, p, errors.Wrap(err, "funcbc: varmap entry register")
		}
		if err := stack.DefineProperty(varmap, key, runtime.Number(reg)); err != nil {
			return nil, p, errors.Wrap(err, "funcbc: varmap entry")
		}
	}
	varmap.Compact()
	if err := stack.DefineProperty(fn, "varmap", varmap); err != nil {
		return nil, p, errors.Wrap(err, "funcbc: varmap property")
	}

	formals := &runtime.Array{}
	for {
		var name string
		name, p, err = primitive.ReadString(p)
		if err != nil {
			return nil, p, errors.Wrap(err, "funcbc: formals entry")
		}
		if name == "" {
			break
		}
		if err := stack.DefineProperty(formals, "", runtime.String(name)); err != nil {
			return nil, p, errors.Wrap(err, "funcbc: formals entry")
		}
	}
	if err := stack.DefineProperty(fn, "formals", formals); err != nil {
		return nil, p, errors.Wrap(err, "funcbc: formals property")
	}

	return fn, p, nil
}
