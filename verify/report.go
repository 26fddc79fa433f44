package verify

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/craftsim/core"
	"github.com/sarchlab/craftsim/instr"
)

// VerificationReport is the result of linting and checking a catalog.
type VerificationReport struct {
	Name         string
	Description  string
	Descriptions []instr.Description
	Specs        []*instr.Spec
	LintIssues   []Issue
	FuncIssues   []Issue
	Covered      []string
}

// GenerateReport lints the definitions, builds them into an emulator and
// runs the functional check.
func GenerateReport(name, description string, defs []instr.Spec, samples int, seed int64) *VerificationReport {
	r := &VerificationReport{
		Name:        name,
		Description: description,
		LintIssues:  RunLint(defs, samples, seed),
	}

	if len(FilterIssues(r.LintIssues, IssueDefinition)) > 0 ||
		len(FilterIssues(r.LintIssues, IssueCollision)) > 0 {
		return r
	}

	catalog := instr.NewCatalog(name, description)
	for _, d := range defs {
		if err := catalog.Register(d); err != nil {
			panic(err)
		}
	}

	r.Descriptions = catalog.Describe()
	r.Specs = catalog.Specs()

	fc := NewFunctionalChecker(core.NewEmulator(catalog), seed)
	r.FuncIssues = fc.Run()
	r.Covered = fc.Covered()

	return r
}

// Passed reports whether no stage found an issue.
func (r *VerificationReport) Passed() bool {
	return len(r.LintIssues) == 0 && len(r.FuncIssues) == 0
}

// WriteReport writes a formatted report to a writer.
func (r *VerificationReport) WriteReport(w io.Writer) {
	separator := strings.Repeat("=", 60)

	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "INSTRUCTION SET VERIFICATION: %s\n", r.Name)
	fmt.Fprintln(w, separator)

	if r.Description != "" {
		fmt.Fprintln(w, r.Description)
	}

	if len(r.Specs) > 0 {
		r.writeCatalog(w)
	}

	fmt.Fprintln(w, "\nSTAGE 1: STATIC LINT")
	writeIssues(w, r.LintIssues)

	fmt.Fprintln(w, "\nSTAGE 2: FUNCTIONAL CHECK")
	if len(r.Specs) == 0 {
		fmt.Fprintln(w, "skipped: the table does not build")
	} else {
		fmt.Fprintf(w, "covered %d instructions: %s\n",
			len(r.Covered), strings.Join(r.Covered, ", "))
		writeIssues(w, r.FuncIssues)
	}

	fmt.Fprintln(w, "\n"+separator)
	if r.Passed() {
		fmt.Fprintln(w, "PASSED")
	} else {
		fmt.Fprintf(w, "FAILED: %d lint issues, %d functional issues\n",
			len(r.LintIssues), len(r.FuncIssues))
	}
	fmt.Fprintln(w, separator)
}

func (r *VerificationReport) writeCatalog(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Catalog")
	t.AppendHeader(table.Row{"Mnemonic", "Format", "Test", "Mask", "Syntax", "Description"})

	for i, s := range r.Specs {
		enc := s.Encoding()
		t.AppendRow(table.Row{
			s.Mnemonic,
			s.Format.String(),
			fmt.Sprintf("0x%08x", enc.Test),
			fmt.Sprintf("0x%08x", enc.Mask),
			r.Descriptions[i].Syntax,
			r.Descriptions[i].Description,
		})
	}

	t.Render()
}

func writeIssues(w io.Writer, issues []Issue) {
	if len(issues) == 0 {
		fmt.Fprintln(w, "no issues found")
		return
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"#", "Type", "Instruction", "Word", "Message"})

	for i, issue := range issues {
		who := issue.Mnemonic
		if issue.Other != "" {
			who += " / " + issue.Other
		}

		word := "-"
		if issue.Word != 0 {
			word = fmt.Sprintf("0x%08x", issue.Word)
		}

		t.AppendRow(table.Row{i + 1, string(issue.Type), who, word, issue.Message})
	}

	t.Render()
}

// SaveReportToFile saves the report to a file.
func (r *VerificationReport) SaveReportToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	r.WriteReport(file)
	return nil
}
