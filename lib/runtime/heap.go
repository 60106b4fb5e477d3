package runtime

import "github.com/pkg/errors"

// Heap is the reference implementation of Stack: a slice-backed value
// stack plus the bookkeeping a real host heap/GC would otherwise own.
// It exists so funcbc.Load has a concrete collaborator to drive in tests
// and in the cmd/bcdump front end; a real language runtime would supply
// its own Stack instead.
type Heap struct {
	stack    []Value
	allocs   int
	collects int
}

// NewHeap returns an empty Heap ready to back one Load call. Heap is not
// safe for concurrent use or for interleaving two unrelated Load calls —
// the same restriction spec.md §5 places on the real value stack.
func NewHeap() *Heap {
	return &Heap{}
}

// Reserve is a capacity hint; Go slices already grow safely on append,
// so this only pre-sizes the backing array to avoid reallocation churn
// during a large function's constant/inner-function load burst.
func (h *Heap) Reserve(n int) {
	if cap(h.stack)-len(h.stack) < n {
		grown := make([]Value, len(h.stack), len(h.stack)+n)
		copy(grown, h.stack)
		h.stack = grown
	}
}

func (h *Heap) Push(v Value) {
	h.stack = append(h.stack, v)
	h.allocs++
	h.maybeCollect()
}

func (h *Heap) Pop() Value {
	n := len(h.stack)
	v := h.stack[n-1]
	h.stack[n-1] = nil
	h.stack = h.stack[:n-1]
	return v
}

func (h *Heap) Top() Value {
	return h.stack[len(h.stack)-1]
}

func (h *Heap) Dup() {
	h.Push(h.Top())
}

func (h *Heap) Len() int {
	return len(h.stack)
}

func (h *Heap) NewFunction() *CompiledFunction {
	fn := &CompiledFunction{}
	h.allocs++
	h.Push(fn)
	return fn
}

// collectCheckpoint is the allocation interval at which maybeCollect
// relocates the stack's backing array, standing in for a compacting
// collector that can move heap-resident buffers between any two
// allocations (spec.md §5's "implicit yield points").
const collectCheckpoint = 4

// maybeCollect is the hook point corresponding to spec.md §5: in the
// real host, any allocation can invoke the garbage collector and
// relocate heap-resident buffers. Every collectCheckpoint-th allocation,
// this copies the stack into a fresh backing array and abandons the old
// one, so a codec that cached a raw slice or pointer into the stack
// across Push calls — instead of going through Push/Pop/Top/Dup — would
// observe corrupted or stale data. funcbc.Load never does this; it is
// exactly the discipline duk__load_func's stack-rooting enforces.
func (h *Heap) maybeCollect() {
	h.collects++
	if h.allocs%collectCheckpoint == 0 {
		relocated := make([]Value, len(h.stack))
		copy(relocated, h.stack)
		h.stack = relocated
	}
}

// Collections reports how many allocation-triggered collection points
// were crossed, for tests that assert the load protocol touches the
// heap the expected number of times.
func (h *Heap) Collections() int {
	return h.collects
}

func (h *Heap) Incref(v Value) {
	if fn, ok := v.(*CompiledFunction); ok {
		fn.Incref()
	}
}

func (h *Heap) DefineProperty(target Value, key string, value Value) error {
	switch t := target.(type) {
	case *CompiledFunction:
		return defineFunctionProperty(t, key, value)
	case *Object:
		t.Set(key, value)
		return nil
	case *Array:
		t.Elems = append(t.Elems, value)
		return nil
	default:
		return errors.Errorf("runtime: DefineProperty: unsupported target %T", target)
	}
}

func defineFunctionProperty(fn *CompiledFunction, key string, value Value) error {
	switch key {
	case "length":
		n, ok := value.(Number)
		if !ok {
			return errors.Errorf("runtime: length property must be a Number, got %T", value)
		}
		fn.Length = uint32(n)
	case "name":
		s, ok := value.(String)
		if !ok {
			return errors.Errorf("runtime: name property must be a String, got %T", value)
		}
		fn.Name = string(s)
	case "fileName":
		s, ok := value.(String)
		if !ok {
			return errors.Errorf("runtime: fileName property must be a String, got %T", value)
		}
		fn.FileName = string(s)
	case "pc2line":
		b, ok := value.(Buffer)
		if !ok {
			return errors.Errorf("runtime: pc2line property must be a Buffer, got %T", value)
		}
		fn.Pc2Line = []byte(b)
	case "prototype":
		o, ok := value.(*Object)
		if !ok {
			return errors.Errorf("runtime: prototype property must be an Object, got %T", value)
		}
		fn.Prototype = o
	case "varmap":
		o, ok := value.(*Object)
		if !ok {
			return errors.Errorf("runtime: varmap property must be an Object, got %T", value)
		}
		fn.VarMap = fn.VarMap[:0]
		for _, k := range o.Keys {
			n, ok := o.Values[k].(Number)
			if !ok {
				return errors.Errorf("runtime: varmap entry %q must be a Number, got %T", k, o.Values[k])
			}
			fn.VarMap = append(fn.VarMap, VarMapEntry{Name: k, Value: uint32(n)})
		}
	case "formals":
		a, ok := value.(*Array)
		if !ok {
			return errors.Errorf("runtime: formals property must be an Array, got %T", value)
		}
		fn.Formals = fn.Formals[:0]
		for _, elem := range a.Elems {
			s, ok := elem.(String)
			if !ok {
				return errors.Errorf("runtime: formals entry must be a String, got %T", elem)
			}
			fn.Formals = append(fn.Formals, string(s))
		}
	default:
		return errors.Errorf("runtime: unknown compiled-function property %q", key)
	}
	return nil
}
