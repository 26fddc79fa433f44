package api

import (
	"io"

	"github.com/sarchlab/craftsim/config"
)

// DriverBuilder creates a new instance of Driver.
type DriverBuilder struct {
	platform   *config.Platform
	stateOut   io.Writer
	stopOnMiss bool
}

// WithPlatform sets the platform the driver controls.
func (b DriverBuilder) WithPlatform(p *config.Platform) DriverBuilder {
	b.platform = p
	return b
}

// WithStateOutput makes the driver print every mapped core's state after
// the run.
func (b DriverBuilder) WithStateOutput(w io.Writer) DriverBuilder {
	b.stateOut = w
	return b
}

// WithFailOnMismatch makes Run return ErrMismatch when any program misses
// its expectation.
func (b DriverBuilder) WithFailOnMismatch(fail bool) DriverBuilder {
	b.stopOnMiss = fail
	return b
}

// Build create a driver.
func (b DriverBuilder) Build(name string) Driver {
	d := &driverImpl{
		name:       name,
		stateOut:   b.stateOut,
		failOnMiss: b.stopOnMiss,
		tasks:      map[int]*mapTask{},
		retired:    map[string]uint64{},
	}

	if b.platform != nil {
		d.RegisterPlatform(b.platform)
	}

	return d
}
