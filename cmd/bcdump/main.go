package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/thebagchi/bcdump-go"
	"github.com/thebagchi/bcdump-go/lib/toyasm"
)

func main() {
	var (
		dump = flag.Bool("dump", false, "assemble the toyasm source at -in and dump it to -out")
		load = flag.Bool("load", false, "load the bytecode file at -in and summarize it")
		in   = flag.String("in", "", "input file path")
		out  = flag.String("out", "", "output path for -dump (defaults to <in>.bc)")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	switch {
	case *dump:
		if err := runDump(logger, *in, *out); err != nil {
			logger.Error("dump failed", "error", err)
			os.Exit(1)
		}
	case *load:
		if err := runLoad(logger, *in); err != nil {
			logger.Error("load failed", "error", err)
			os.Exit(1)
		}
	default:
		fmt.Println("usage: bcdump -dump -in <file> [-out <file>] | -load -in <file>")
		os.Exit(2)
	}
}

func runDump(logger *slog.Logger, in, out string) error {
	if in == "" {
		return fmt.Errorf("bcdump: -dump requires -in")
	}
	source, err := os.ReadFile(in)
	if err != nil {
		return err
	}
	fn, err := toyasm.Assemble(string(source))
	if err != nil {
		return err
	}
	if out == "" {
		out = in + ".bc"
	}
	if err := bcdump.DumpToFile(fn, out); err != nil {
		return err
	}
	logger.Info("dumped function", "source", in, "output", out, "name", fn.Name)
	return nil
}

func runLoad(logger *slog.Logger, in string) error {
	if in == "" {
		return fmt.Errorf("bcdump: -load requires -in")
	}
	fn, err := bcdump.LoadFromFile(in)
	if err != nil {
		return err
	}
	logger.Info("loaded function",
		"name", fn.Name,
		"fileName", fn.FileName,
		"nregs", fn.NRegs,
		"nargs", fn.NArgs,
		"instructions", len(fn.Instructions),
		"constants", len(fn.Constants),
		"inner", len(fn.Inner),
	)
	return nil
}
