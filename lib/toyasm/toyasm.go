// Package toyasm implements a minimal line-oriented assembly notation for
// building runtime.CompiledFunction values by hand, so the command-line
// front end and tests have something to dump without a full language
// compiler attached.
//
// A program is a flat directive list, one per line:
//
//	nregs <n>
//	nargs <n>
//	strict
//	namebinding
//	instr <hex u32>
//	const num <float>
//	const str <string>
//	name <string>
//	filename <string>
//	var <name> <register>
//	formal <name>
//
// Blank lines and lines starting with ";" are ignored. Nesting (inner
// functions) is out of scope for this notation; build an Inner tree by
// assembling each function separately and attaching it in Go.
package toyasm

import (
	"bufio"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/thebagchi/bcdump-go/lib/runtime"
)

// Assemble parses source and returns the function it describes.
func Assemble(source string) (*runtime.CompiledFunction, error) {
	fn := &runtime.CompiledFunction{}
	scanner := bufio.NewScanner(strings.NewReader(source))
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, ";") {
			continue
		}
		if err := applyDirective(fn, line); err != nil {
			return nil, errors.Wrapf(err, "toyasm: line %d", lineNo)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "toyasm: reading source")
	}
	return fn, nil
}

func applyDirective(fn *runtime.CompiledFunction, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "nregs":
		n, err := parseU16(fields, 1)
		if err != nil {
			return err
		}
		fn.NRegs = n
	case "nargs":
		n, err := parseU16(fields, 1)
		if err != nil {
			return err
		}
		fn.NArgs = n
		fn.Length = uint32(n)
	case "strict":
		fn.Flags |= runtime.FlagStrict
	case "namebinding":
		fn.Flags |= runtime.FlagNameBinding
	case "instr":
		if len(fields) < 2 {
			return errors.New("toyasm: instr requires an operand")
		}
		v, err := strconv.ParseUint(strings.TrimPrefix(fields[1], "0x"), 16, 32)
		if err != nil {
			return errors.Wrapf(err, "toyasm: bad instruction %q", fields[1])
		}
		fn.Instructions = append(fn.Instructions, uint32(v))
	case "const":
		if len(fields) < 3 {
			return errors.New("toyasm: const requires a kind and a value")
		}
		switch fields[1] {
		case "num":
			f, err := strconv.ParseFloat(fields[2], 64)
			if err != nil {
				return errors.Wrapf(err, "toyasm: bad numeric constant %q", fields[2])
			}
			fn.Constants = append(fn.Constants, runtime.Number(f))
		case "str":
			fn.Constants = append(fn.Constants, runtime.String(joinQuoted(fields[2:])))
		default:
			return errors.Errorf("toyasm: unknown const kind %q", fields[1])
		}
	case "name":
		fn.Name = joinQuoted(fields[1:])
	case "filename":
		fn.FileName = joinQuoted(fields[1:])
	case "var":
		if len(fields) < 3 {
			return errors.New("toyasm: var requires a name and a register")
		}
		reg, err := strconv.ParseUint(fields[2], 10, 32)
		if err != nil {
			return errors.Wrapf(err, "toyasm: bad register %q", fields[2])
		}
		fn.VarMap = append(fn.VarMap, runtime.VarMapEntry{Name: fields[1], Value: uint32(reg)})
	case "formal":
		if len(fields) < 2 {
			return errors.New("toyasm: formal requires a name")
		}
		fn.Formals = append(fn.Formals, fields[1])
	default:
		return errors.Errorf("toyasm: unknown directive %q", fields[0])
	}
	return nil
}

func parseU16(fields []string, idx int) (uint16, error) {
	if len(fields) <= idx {
		return 0, errors.Errorf("toyasm: %s requires a value", fields[0])
	}
	n, err := strconv.ParseUint(fields[idx], 10, 16)
	if err != nil {
		return 0, errors.Wrapf(err, "toyasm: bad value %q", fields[idx])
	}
	return uint16(n), nil
}

func joinQuoted(fields []string) string {
	return strings.Trim(strings.Join(fields, " "), `"`)
}
