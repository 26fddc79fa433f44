package main

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/craftsim/api"
	"github.com/sarchlab/craftsim/config"
	"github.com/sarchlab/craftsim/core"
	"github.com/sarchlab/craftsim/program"
)

//go:embed summon.asm
var source string

func summon(driver api.Driver, platform *config.Platform) {
	p, err := program.NewAssembler(platform.Catalog).Assemble(source)
	if err != nil {
		panic(err)
	}
	p.Name = "summon"
	p.Expect.Registers = map[string]int32{"$t0": 3, "$t1": 3}
	p.Expect.Memory = []program.MemoryWords{{Address: p.Labels["count"], Words: []int32{3}}}

	if err := driver.MapProgram(p, 0); err != nil {
		panic(err)
	}

	results, err := driver.Run()
	if err != nil {
		panic(err)
	}

	api.WriteResults(os.Stdout, results)
	fmt.Println("counter:", platform.Cores[0].Emulator().Counter().Value())
}

func main() {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: core.LevelTrace,
	})

	slog.SetDefault(slog.New(handler))

	engine := sim.NewSerialEngine()

	platform := config.NewPlatformBuilder().
		WithEngine(engine).
		WithFreq(1 * sim.GHz).
		Build("Device")

	driver := api.DriverBuilder{}.
		WithPlatform(platform).
		WithStateOutput(os.Stdout).
		Build("Driver")

	summon(driver, platform)
	atexit.Exit(0)
}
