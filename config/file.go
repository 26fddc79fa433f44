package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/sarchlab/akita/v4/mem/mem"
	"github.com/sarchlab/akita/v4/sim"
	"gopkg.in/yaml.v3"
)

// Config is the YAML description of a platform.
type Config struct {
	Name            string  `yaml:"name"`
	Cores           int     `yaml:"cores"`
	FrequencyMHz    float64 `yaml:"frequency_mhz"`
	MemoryBytes     uint64  `yaml:"memory_bytes"`
	MaxInstructions uint64  `yaml:"max_instructions"`
	SharedCounter   bool    `yaml:"shared_counter"`
	Parallel        bool    `yaml:"parallel"`
}

func DefaultConfig() Config {
	return Config{
		Name:          "Platform",
		Cores:         1,
		FrequencyMHz:  1000,
		MemoryBytes:   64 * mem.KB,
		SharedCounter: true,
	}
}

// LoadConfig reads a YAML file on top of DefaultConfig.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	c, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	return c, nil
}

// ParseConfig decodes a YAML document on top of DefaultConfig.
func ParseConfig(data []byte) (Config, error) {
	c := DefaultConfig()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, err
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

func (c Config) Validate() error {
	var errs []error

	if c.Cores < 1 {
		errs = append(errs, fmt.Errorf("cores must be positive, got %d", c.Cores))
	}

	if c.FrequencyMHz <= 0 {
		errs = append(errs, fmt.Errorf("frequency_mhz must be positive, got %v", c.FrequencyMHz))
	}

	if c.MemoryBytes < 4 || c.MemoryBytes > 4*mem.GB {
		errs = append(errs, fmt.Errorf("memory_bytes must be between 4 and 4GB, got %d", c.MemoryBytes))
	}

	return errors.Join(errs...)
}

// NewEngine creates the engine the config asks for.
func (c Config) NewEngine() sim.Engine {
	if c.Parallel {
		return sim.NewParallelEngine()
	}

	return sim.NewSerialEngine()
}

// Builder turns the config into a platform builder on a new engine.
func (c Config) Builder() PlatformBuilder {
	return NewPlatformBuilder().
		WithEngine(c.NewEngine()).
		WithFreq(sim.Freq(c.FrequencyMHz) * sim.MHz).
		WithNumCores(c.Cores).
		WithMemorySize(c.MemoryBytes).
		WithMaxInstructions(c.MaxInstructions).
		WithSharedCounter(c.SharedCounter)
}
