package runtime

// Flag bits of CompiledFunction.Flags. The codec only ever inspects
// FlagNameBinding; the rest are opaque host-defined type flags carried
// through dump/load verbatim.
const (
	FlagStrict      uint32 = 1 << 0
	FlagNameBinding uint32 = 1 << 1
	FlagVarArgs     uint32 = 1 << 2
)

// VarMapEntry is one (name, register) pair of the internal variable map.
// Kept as an ordered slice rather than a map so dump order matches the
// host property table's iteration order exactly (spec.md §4.3 properties
// block, item 5).
type VarMapEntry struct {
	Name  string
	Value uint32
}

// CompiledFunction is the in-memory shape of a compiled function: the
// host collaborator's duk_hcompiledfunction, reduced to the fields the
// codec reads or writes. Everything not listed here (actual executable
// semantics, indirect register validation, and so on) is genuinely out
// of scope for this package.
type CompiledFunction struct {
	NRegs     uint16
	NArgs     uint16
	Flags     uint32
	StartLine uint32
	EndLine   uint32

	Instructions []uint32
	Constants    []Value // String or Number only
	Inner        []*CompiledFunction

	Length   uint32
	Name     string
	FileName string
	Pc2Line  []byte
	VarMap   []VarMapEntry
	Formals  []string

	Prototype *Object
	LexEnv    *Env

	// Bound marks a bound function. Bound functions lack the property
	// set dump() relies on (length/name/fileName are inherited from the
	// target, not own properties) and are rejected by Dump per spec.md
	// §6.
	Bound bool

	refs int
}

// NameBound reports whether fn's own identifier must be visible inside
// its body via a dedicated lexical environment.
func (fn *CompiledFunction) NameBound() bool {
	return fn.Flags&FlagNameBinding != 0
}

// Incref bumps fn's reference count by one. The host's GC decides
// liveness by refcount plus a cycle collector; this reference
// implementation only models the refcount half, which is all the codec's
// two-phase commit (spec.md §4.4 step 8) needs to exercise.
func (fn *CompiledFunction) Incref() {
	fn.refs++
}

// Refs returns the current reference count, exposed for tests that
// assert the commit step increments it exactly once per stored
// reference.
func (fn *CompiledFunction) Refs() int {
	return fn.refs
}
