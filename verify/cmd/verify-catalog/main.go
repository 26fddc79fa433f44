package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/craftsim/core"
	"github.com/sarchlab/craftsim/instr"
	"github.com/sarchlab/craftsim/verify"
)

type dumpEntry struct {
	Mnemonic string
	Format   string
	Encoding instr.Encoding
	Kinds    []instr.OperandKind
}

func main() {
	samples := flag.Int("samples", 256, "random operand vectors per instruction")
	seed := flag.Int64("seed", 1, "random seed")
	dump := flag.Bool("dump", false, "dump the compiled encodings")
	reportPath := flag.String("report", "", "also write the report to this file")
	flag.Parse()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	report := verify.GenerateReport(core.ISAName, core.ISADescription,
		core.Definitions(), *samples, *seed)

	report.WriteReport(os.Stdout)

	if *dump {
		entries := make([]dumpEntry, 0, len(report.Specs))
		for _, s := range report.Specs {
			entries = append(entries, dumpEntry{
				Mnemonic: s.Mnemonic,
				Format:   s.Format.String(),
				Encoding: s.Encoding(),
				Kinds:    s.OperandKinds(),
			})
		}
		spew.Dump(entries)
	}

	if *reportPath != "" {
		if err := report.SaveReportToFile(*reportPath); err != nil {
			slog.Error("Report", "Error", err)
			atexit.Exit(2)
		}
		fmt.Printf("report saved to %s\n", *reportPath)
	}

	if !report.Passed() {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
