package runtime

import "testing"

func TestHeapPushPopOrder(t *testing.T) {
	h := NewHeap()
	h.Push(String("a"))
	h.Push(Number(1))
	h.Push(String("b"))

	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}
	if got := h.Pop(); got != String("b") {
		t.Errorf("Pop() = %v, want \"b\"", got)
	}
	if got := h.Pop(); got != Number(1) {
		t.Errorf("Pop() = %v, want 1", got)
	}
	if got := h.Pop(); got != String("a") {
		t.Errorf("Pop() = %v, want \"a\"", got)
	}
	if h.Len() != 0 {
		t.Fatalf("Len() = %d, want 0", h.Len())
	}
}

func TestHeapDup(t *testing.T) {
	h := NewHeap()
	h.Push(Number(42))
	h.Dup()
	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}
	if h.Pop() != Number(42) || h.Pop() != Number(42) {
		t.Fatalf("Dup() did not push an equal copy")
	}
}

func TestHeapNewFunctionIsRooted(t *testing.T) {
	h := NewHeap()
	fn := h.NewFunction()
	if h.Len() != 1 {
		t.Fatalf("Len() = %d, want 1 after NewFunction", h.Len())
	}
	if h.Top() != Value(fn) {
		t.Fatalf("Top() did not return the pushed function")
	}
}

func TestDefinePropertyFunction(t *testing.T) {
	h := NewHeap()
	fn := &CompiledFunction{}

	cases := []struct {
		key   string
		value Value
	}{
		{"length", Number(2)},
		{"name", String("f")},
		{"fileName", String("main.js")},
		{"pc2line", Buffer{0x01, 0x02}},
	}
	for _, c := range cases {
		if err := h.DefineProperty(fn, c.key, c.value); err != nil {
			t.Fatalf("DefineProperty(%q): %v", c.key, err)
		}
	}
	if fn.Length != 2 || fn.Name != "f" || fn.FileName != "main.js" {
		t.Errorf("unexpected function state: %+v", fn)
	}
	if len(fn.Pc2Line) != 2 {
		t.Errorf("pc2line not set: %+v", fn.Pc2Line)
	}

	if err := h.DefineProperty(fn, "length", String("nope")); err == nil {
		t.Errorf("DefineProperty accepted a String for a Number property")
	}
	if err := h.DefineProperty(fn, "bogus", Number(0)); err == nil {
		t.Errorf("DefineProperty accepted an unknown property name")
	}
}

func TestDefinePropertyVarMapAndFormals(t *testing.T) {
	h := NewHeap()
	fn := &CompiledFunction{}

	varmap := NewObject()
	h.DefineProperty(varmap, "x", Number(0))
	h.DefineProperty(varmap, "y", Number(1))
	if err := h.DefineProperty(fn, "varmap", varmap); err != nil {
		t.Fatalf("DefineProperty(varmap): %v", err)
	}
	if len(fn.VarMap) != 2 || fn.VarMap[0].Name != "x" || fn.VarMap[1].Name != "y" {
		t.Errorf("varmap not translated in order: %+v", fn.VarMap)
	}

	formals := &Array{}
	h.DefineProperty(formals, "", String("a"))
	h.DefineProperty(formals, "", String("b"))
	if err := h.DefineProperty(fn, "formals", formals); err != nil {
		t.Fatalf("DefineProperty(formals): %v", err)
	}
	if len(fn.Formals) != 2 || fn.Formals[0] != "a" || fn.Formals[1] != "b" {
		t.Errorf("formals not translated in order: %+v", fn.Formals)
	}
}

func TestObjectPreservesInsertionOrder(t *testing.T) {
	o := NewObject()
	o.Set("z", Number(1))
	o.Set("a", Number(2))
	o.Set("z", Number(3)) // overwrite, should not move in Keys
	want := []string{"z", "a"}
	if len(o.Keys) != len(want) {
		t.Fatalf("Keys = %v, want %v", o.Keys, want)
	}
	for i, k := range want {
		if o.Keys[i] != k {
			t.Errorf("Keys[%d] = %q, want %q", i, o.Keys[i], k)
		}
	}
	if v, _ := o.Get("z"); v != Number(3) {
		t.Errorf("Get(z) = %v, want 3 (overwritten)", v)
	}
}

func TestIncref(t *testing.T) {
	h := NewHeap()
	fn := &CompiledFunction{}
	h.Incref(fn)
	h.Incref(fn)
	if fn.Refs() != 2 {
		t.Errorf("Refs() = %d, want 2", fn.Refs())
	}
	// Incref on a non-function value must not panic.
	h.Incref(String("x"))
}

func TestMaybeCollectRelocatesAcrossCheckpoints(t *testing.T) {
	h := NewHeap()
	const n = collectCheckpoint*3 + 1
	for i := 0; i < n; i++ {
		h.Push(Number(float64(i)))
	}
	if h.Collections() != n {
		t.Fatalf("Collections() = %d, want %d", h.Collections(), n)
	}
	for i := n - 1; i >= 0; i-- {
		if got := h.Pop(); got != Number(float64(i)) {
			t.Fatalf("Pop() = %v, want %v (value corrupted across a relocation checkpoint)", got, Number(float64(i)))
		}
	}
}
