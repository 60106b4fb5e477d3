package toyasm

import (
	"testing"

	"github.com/thebagchi/bcdump-go/lib/runtime"
)

func TestAssembleBasic(t *testing.T) {
	src := `
; a trivial function
nregs 2
nargs 1
strict
instr 0x01020304
const num 3.5
const str "hi"
name add
filename main.js
var x 0
formal x
`
	fn, err := Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if fn.NRegs != 2 || fn.NArgs != 1 {
		t.Errorf("reg counts = %d/%d, want 2/1", fn.NRegs, fn.NArgs)
	}
	if fn.Flags&runtime.FlagStrict == 0 {
		t.Error("strict flag not set")
	}
	if len(fn.Instructions) != 1 || fn.Instructions[0] != 0x01020304 {
		t.Errorf("Instructions = %v", fn.Instructions)
	}
	if len(fn.Constants) != 2 {
		t.Fatalf("Constants = %v, want 2 entries", fn.Constants)
	}
	if n, ok := fn.Constants[0].(runtime.Number); !ok || n != 3.5 {
		t.Errorf("Constants[0] = %v, want Number(3.5)", fn.Constants[0])
	}
	if s, ok := fn.Constants[1].(runtime.String); !ok || s != "hi" {
		t.Errorf("Constants[1] = %v, want String(\"hi\")", fn.Constants[1])
	}
	if fn.Name != "add" || fn.FileName != "main.js" {
		t.Errorf("name/filename = %q/%q", fn.Name, fn.FileName)
	}
	if len(fn.VarMap) != 1 || fn.VarMap[0].Name != "x" || fn.VarMap[0].Value != 0 {
		t.Errorf("VarMap = %+v", fn.VarMap)
	}
	if len(fn.Formals) != 1 || fn.Formals[0] != "x" {
		t.Errorf("Formals = %v", fn.Formals)
	}
}

func TestAssembleRejectsUnknownDirective(t *testing.T) {
	if _, err := Assemble("bogus 1"); err == nil {
		t.Error("Assemble accepted an unknown directive")
	}
}

func TestAssembleRejectsMalformedOperand(t *testing.T) {
	if _, err := Assemble("instr zz"); err == nil {
		t.Error("Assemble accepted a non-hex instruction operand")
	}
	if _, err := Assemble("const num notanumber"); err == nil {
		t.Error("Assemble accepted a non-numeric const")
	}
}

func TestAssembleIgnoresBlankAndCommentLines(t *testing.T) {
	fn, err := Assemble("\n; comment\n\nnregs 1\n")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if fn.NRegs != 1 {
		t.Errorf("NRegs = %d, want 1", fn.NRegs)
	}
}
