package api

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
)

// WriteResults renders the results as a table, one row per core.
func WriteResults(w io.Writer, results []Result) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Results")
	t.AppendHeader(table.Row{"Core", "Program", "Retired", "Halt", "Fault", "Check"})

	passed := 0

	for _, r := range results {
		fault := "-"
		if r.Fault != nil {
			fault = r.Fault.Kind.String()
		}

		check := "PASS"
		if r.Passed() {
			passed++
		} else {
			check = "FAIL: " + strings.Join(r.Mismatches, "; ")
		}

		t.AppendRow(table.Row{r.Core, r.Program, r.Retired, r.Halt.String(), fault, check})
	}

	t.AppendFooter(table.Row{"", "", "", "", "Passed", passed})
	t.Render()
}
