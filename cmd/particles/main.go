package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/google/uuid"

	"github.com/hesom/ParticleSystem/app"
	"github.com/hesom/ParticleSystem/config"
	"github.com/hesom/ParticleSystem/core"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	cfg, err := config.Load(args)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return core.ExitCode(err)
	}

	log := app.NewLogger("particles/"+uuid.NewString()[:8], cfg.Debug)

	if err := glfw.Init(); err != nil {
		log.Errorf("glfw init failed: %v", err)
		return core.ExitCode(fmt.Errorf("%v: %w", err, core.ErrInit))
	}
	defer glfw.Terminate()

	a, err := app.Create(cfg, log)
	if err != nil {
		log.Errorf("create failed: %v", err)
		return core.ExitCode(err)
	}

	code := a.Exec()
	a.Free()
	return code
}
