// Package launcher bootstraps and supervises the local LifeOS dev server:
// it checks the runtime version, installs dependencies on first run, starts
// the server on a fixed port, opens the browser and stops the server when
// interrupted.
package launcher

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/louisbranch/lifeos/internal/platform/logging"
	"github.com/louisbranch/lifeos/internal/platform/timeouts"
	"go.uber.org/zap"
)

var (
	// ErrRuntimeMissing indicates the runtime executable was not found.
	ErrRuntimeMissing = errors.New("runtime not found")
	// ErrRuntimeTooOld indicates the runtime major version is below the minimum.
	ErrRuntimeTooOld = errors.New("runtime version too old")
	// ErrInstallFailed indicates dependency installation did not complete.
	ErrInstallFailed = errors.New("dependency install failed")
	// ErrServerExited indicates the server exited with a failure status.
	ErrServerExited = errors.New("server exited abnormally")
	// ErrForcedKill indicates the server ignored the interrupt and was killed.
	ErrForcedKill = errors.New("server did not stop after interrupt")
)

// Config describes what the launcher runs.
type Config struct {
	// Runtime is the executable whose --version is checked.
	Runtime  string
	MinMajor int
	// Dir is the project directory commands run in.
	Dir string
	// DepsDir is checked relative to Dir; when absent Install runs.
	DepsDir string
	Install string
	Serve   string
	Port    int
	Open    bool
	// Grace is how long the server has to exit after an interrupt.
	Grace        time.Duration
	ReadyTimeout time.Duration
}

// CommandFunc builds a command; exec.CommandContext in production.
type CommandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd

// Options carries the launcher's collaborators.
type Options struct {
	Logger *zap.Logger
	Stdout io.Writer
	Stderr io.Writer
	// Command overrides process construction.
	Command CommandFunc
	// OpenBrowser overrides how the URL is opened.
	OpenBrowser func(url string) error
}

// Launcher runs the bootstrap sequence.
type Launcher struct {
	cfg     Config
	logger  *zap.Logger
	stdout  io.Writer
	stderr  io.Writer
	command CommandFunc
	open    func(url string) error
}

// New validates cfg and returns a Launcher.
func New(cfg Config, opts Options) (*Launcher, error) {
	cfg.Runtime = strings.TrimSpace(cfg.Runtime)
	switch {
	case cfg.Runtime == "":
		return nil, errors.New("runtime is required")
	case len(strings.Fields(cfg.Serve)) == 0:
		return nil, errors.New("serve command is required")
	case cfg.Port < 1 || cfg.Port > 65535:
		return nil, fmt.Errorf("port %d out of range", cfg.Port)
	case cfg.MinMajor < 0:
		return nil, fmt.Errorf("minimum major version %d is negative", cfg.MinMajor)
	}
	if cfg.Dir == "" {
		cfg.Dir = "."
	}
	if cfg.Grace <= 0 {
		cfg.Grace = timeouts.ChildStop
	}
	if cfg.ReadyTimeout <= 0 {
		cfg.ReadyTimeout = 15 * time.Second
	}
	l := &Launcher{
		cfg:     cfg,
		logger:  logging.OrNop(opts.Logger).Named("launcher"),
		stdout:  opts.Stdout,
		stderr:  opts.Stderr,
		command: opts.Command,
		open:    opts.OpenBrowser,
	}
	if l.stdout == nil {
		l.stdout = os.Stdout
	}
	if l.stderr == nil {
		l.stderr = os.Stderr
	}
	if l.command == nil {
		l.command = exec.CommandContext
	}
	if l.open == nil {
		l.open = OpenBrowser
	}
	return l, nil
}

// URL is the address the server is expected to answer on.
func (l *Launcher) URL() string {
	return "http://" + l.addr() + "/"
}

func (l *Launcher) addr() string {
	return "localhost:" + strconv.Itoa(l.cfg.Port)
}

// Run checks the runtime, installs dependencies when needed and serves until
// ctx is canceled or the server exits. Failures are *ExitError values.
func (l *Launcher) Run(ctx context.Context) error {
	version, err := l.CheckRuntime(ctx)
	if err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	l.logger.Info("runtime ok", zap.String("runtime", l.cfg.Runtime), zap.String("version", version))

	if _, err := l.EnsureDependencies(ctx); err != nil {
		return &ExitError{Code: 1, Err: err}
	}
	return l.Serve(ctx)
}

// ExitError carries the process exit code a failure maps to.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return "exit status " + strconv.Itoa(e.Code)
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps err to a process exit code: 0 for nil, the carried code for
// an *ExitError and 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code > 0 {
		return exitErr.Code
	}
	return 1
}
