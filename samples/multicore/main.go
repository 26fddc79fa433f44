package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/craftsim/api"
	"github.com/sarchlab/craftsim/config"
	"github.com/sarchlab/craftsim/core"
	"github.com/sarchlab/craftsim/program"
)

func main() {
	configPath := flag.String("config", "samples/multicore/platform.yaml", "platform config")
	programPath := flag.String("program", "samples/multicore/spawner.yaml", "program mapped to every core")
	trace := flag.Bool("trace", false, "log every retired instruction")
	monitor := flag.Bool("monitor", false, "serve the akita monitor and wait")
	flag.Parse()

	level := slog.LevelInfo
	if *trace {
		level = core.LevelTrace
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Config", "Error", err)
		atexit.Exit(2)
	}

	builder := cfg.Builder()

	var m *monitoring.Monitor
	if *monitor {
		m = monitoring.NewMonitor()
		builder = builder.WithMonitor(m)
	}

	platform := builder.Build(cfg.Name)

	if m != nil {
		m.RegisterEngine(platform.Engine)
		m.StartServer()
	}

	driver := api.DriverBuilder{}.
		WithPlatform(platform).
		Build("Driver")

	for i := 0; i < platform.NumCores(); i++ {
		p, err := program.LoadFile(*programPath, platform.Catalog)
		if err != nil {
			slog.Error("Program", "Error", err)
			atexit.Exit(2)
		}

		if err := driver.MapProgram(p, i); err != nil {
			slog.Error("Program", "Error", err)
			atexit.Exit(2)
		}
	}

	results, err := driver.Run()
	if err != nil {
		slog.Error("Run", "Error", err)
		atexit.Exit(1)
	}

	api.WriteResults(os.Stdout, results)
	fmt.Printf("shared counter: %d\n", platform.Cores[0].Emulator().Counter().Value())

	if *monitor {
		time.Sleep(100 * time.Hour)
	}

	atexit.Exit(0)
}
