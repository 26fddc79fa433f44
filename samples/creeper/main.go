package main

import (
	_ "embed"
	"log/slog"
	"os"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/craftsim/api"
	"github.com/sarchlab/craftsim/config"
	"github.com/sarchlab/craftsim/core"
	"github.com/sarchlab/craftsim/program"
)

//go:embed creeper.yaml
var programFile []byte

func main() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: core.LevelTrace,
	})

	slog.SetDefault(slog.New(handler))

	engine := sim.NewSerialEngine()

	platform := config.NewPlatformBuilder().
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		WithMaxInstructions(100).
		Build("Device")

	driver := api.DriverBuilder{}.
		WithPlatform(platform).
		WithFailOnMismatch(true).
		Build("Driver")

	p, err := program.Parse(programFile, platform.Catalog)
	if err != nil {
		panic(err)
	}

	p.WriteListing(os.Stdout, platform.Catalog)

	if err := driver.MapProgram(p, 0); err != nil {
		panic(err)
	}

	results, err := driver.Run()
	api.WriteResults(os.Stdout, results)
	core.PrintState(os.Stdout, platform.Cores[0])

	if err != nil {
		slog.Error("Run", "Error", err)
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
