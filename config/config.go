// Package config resolves the visualizer configuration: PARTICLES_* env
// variables provide the defaults, command-line flags override them.
package config

import (
	"flag"
	"fmt"

	"github.com/caarlos0/env/v11"

	"github.com/hesom/ParticleSystem/core"
)

type Config struct {
	ParticleCount int    `env:"PARTICLES_COUNT" envDefault:"200"`
	WindowWidth   int    `env:"PARTICLES_WINDOW_WIDTH" envDefault:"1280"`
	WindowHeight  int    `env:"PARTICLES_WINDOW_HEIGHT" envDefault:"720"`
	Title         string `env:"PARTICLES_TITLE" envDefault:"Particle System"`
	Seed          int64  `env:"PARTICLES_SEED" envDefault:"42"`
	FontPath      string `env:"PARTICLES_FONT"`
	Debug         bool   `env:"PARTICLES_DEBUG"`
}

// Load parses the environment, applies command-line overrides from args
// (without the program name) and validates the result.
func Load(args []string) (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %v: %w", err, core.ErrValidation)
	}

	fs := flag.NewFlagSet("particles", flag.ContinueOnError)
	fs.IntVar(&cfg.ParticleCount, "n", cfg.ParticleCount, "number of particles")
	fs.IntVar(&cfg.WindowWidth, "width", cfg.WindowWidth, "window width in pixels")
	fs.IntVar(&cfg.WindowHeight, "height", cfg.WindowHeight, "window height in pixels")
	fs.StringVar(&cfg.Title, "title", cfg.Title, "window title")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "simulation seed")
	fs.StringVar(&cfg.FontPath, "font", cfg.FontPath, "TTF font for the HUD overlay (HUD disabled when empty)")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("parsing arguments: %v: %w", err, core.ErrValidation)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments %v: %w", fs.Args(), core.ErrValidation)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.ParticleCount <= 0 {
		return fmt.Errorf("particle count must be positive, got %d: %w", c.ParticleCount, core.ErrValidation)
	}
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d: %w", c.WindowWidth, c.WindowHeight, core.ErrValidation)
	}
	return nil
}
