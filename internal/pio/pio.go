// Package pio wraps the PlatformIO command line tool.
//
// The packager shells out to pio for the actual compilation; everything
// it runs is recorded in the per-environment build log, so the log
// reads as a transcript of what happened.
package pio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/wvdveer/fwpack/internal/report"
)

var (
	// ErrToolNotFound means the pio executable is not installed or not
	// on PATH.
	ErrToolNotFound = errors.New("platformio executable not found")

	// ErrBuildFailed means pio ran but exited non-zero.
	ErrBuildFailed = errors.New("build command failed")
)

// Builder is the interface for PlatformIO build operations.
type Builder interface {
	Build(ctx context.Context, log *report.Log, env string) error
	BuildFilesystem(ctx context.Context, log *report.Log, env string) error
}

// Runner implements Builder by invoking the pio binary.
type Runner struct {
	bin        string // resolved pio executable
	projectDir string // project root, used as working directory
}

// NewRunner resolves the PlatformIO executable and returns a Runner
// for the project. An empty bin means look up pio on PATH; anything
// else is resolved the way the shell would resolve it.
func NewRunner(projectDir, bin string) (*Runner, error) {
	name := bin
	if name == "" {
		name = "pio"
	}
	resolved, err := exec.LookPath(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrToolNotFound, name)
	}
	return &Runner{bin: resolved, projectDir: projectDir}, nil
}

// Build runs `pio run -e <env>` for one environment.
func (r *Runner) Build(ctx context.Context, log *report.Log, env string) error {
	return r.run(ctx, log, "run", "-e", env)
}

// BuildFilesystem runs the buildfs target, producing the filesystem
// image for environments that carry a data directory.
func (r *Runner) BuildFilesystem(ctx context.Context, log *report.Log, env string) error {
	return r.run(ctx, log, "run", "-e", env, "-t", "buildfs")
}

// run invokes the tool with the project root as working directory,
// records the command line and its output in the build log, and
// translates failures.
func (r *Runner) run(ctx context.Context, log *report.Log, args ...string) error {
	cmdline := "pio " + strings.Join(args, " ")
	log.Command(cmdline)

	cmd := exec.CommandContext(ctx, r.bin, args...)
	cmd.Dir = r.projectDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	log.Output(stdout.String())
	log.Output(stderr.String())

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return fmt.Errorf("%w: %s exited with code %d", ErrBuildFailed, cmdline, exitErr.ExitCode())
		}
		return fmt.Errorf("run %s: %w", cmdline, err)
	}
	return nil
}
