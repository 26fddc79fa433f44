package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sarchlab/craftsim/instr"
)

const (
	LevelTrace slog.Level = slog.LevelInfo + 1
)

func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// PrintState renders the core's registers as a table, four rows of eight.
func PrintState(w io.Writer, c *Core) {
	fmt.Fprintf(w, "==============State@%s==============\n", c.Name())
	fmt.Fprintf(w, "PC: 0x%08x  Retired: %d  Status: %s\n",
		c.state.PC, c.state.Retired, c.state.Halt)

	regs := c.state.Regs.Snapshot()

	regTable := table.NewWriter()
	regTable.SetOutputMirror(w)
	regTable.SetTitle("Registers")
	regTable.AppendHeader(table.Row{"Reg", "+0", "+1", "+2", "+3", "+4", "+5", "+6", "+7"})

	for row := 0; row < instr.NumRegisters/8; row++ {
		r := table.Row{fmt.Sprintf("%s..", instr.RegisterName(row*8))}
		for col := 0; col < 8; col++ {
			r = append(r, regs[row*8+col])
		}
		regTable.AppendRow(r)
	}

	regTable.Render()

	if c.state.Fault != nil {
		fmt.Fprintf(w, "Fault: %v\n", c.state.Fault)
	}
}

func LogState(c *Core) {
	slog.Debug("StateCheckpoint",
		"Core", c.Name(),
		"PC", c.state.PC,
		"Retired", c.state.Retired,
		"Halt", c.state.Halt.String(),
		"Registers", c.state.Regs.Snapshot(),
		"Counter", c.emu.Counter().Value(),
	)
}
