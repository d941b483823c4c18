package launcher

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// interruptedExit is the status shells report after SIGINT (128+2).
const interruptedExit = 130

// Serve starts the server and supervises it until it exits or ctx is
// canceled. On cancel the server gets an interrupt, then a kill once Grace
// has passed.
func (l *Launcher) Serve(ctx context.Context) error {
	args := strings.Fields(l.cfg.Serve)
	// The child is stopped by stop, not by ctx, so it gets a grace period.
	cmd := l.command(context.Background(), args[0], args[1:]...)
	cmd.Dir = l.cfg.Dir
	cmd.Stdout = l.stdout
	cmd.Stderr = l.stderr
	cmd.Env = append(os.Environ(),
		"PORT="+strconv.Itoa(l.cfg.Port),
		"LIFEOS_HTTP_ADDR="+l.addr(),
		"LIFEOS_PUBLIC_URL=http://"+l.addr(),
	)
	if err := cmd.Start(); err != nil {
		return &ExitError{Code: 1, Err: fmt.Errorf("start %s: %w", l.cfg.Serve, err)}
	}
	l.logger.Info("server started", zap.Int("pid", cmd.Process.Pid), zap.String("url", l.URL()))

	exitCh := make(chan error, 1)
	go func() {
		exitCh <- cmd.Wait()
	}()

	readyCtx, cancelReady := context.WithCancel(ctx)
	defer cancelReady()
	if l.cfg.Open {
		go l.openWhenReady(readyCtx, l.addr(), l.URL())
	}

	select {
	case err := <-exitCh:
		code := exitCode(err)
		if code != 0 {
			return &ExitError{Code: code, Err: fmt.Errorf("%w: %v", ErrServerExited, err)}
		}
		l.logger.Info("server exited")
		return nil
	case <-ctx.Done():
		return l.stop(cmd, exitCh)
	}
}

func (l *Launcher) stop(cmd *exec.Cmd, exitCh <-chan error) error {
	l.logger.Info("stopping server", zap.Duration("grace", l.cfg.Grace))
	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		// Interrupt is not deliverable on every platform.
		_ = cmd.Process.Kill()
	}

	timer := time.NewTimer(l.cfg.Grace)
	defer timer.Stop()
	select {
	case err := <-exitCh:
		switch code := exitCode(err); code {
		case 0, -1, interruptedExit:
			return nil
		default:
			return &ExitError{Code: code, Err: fmt.Errorf("%w: %v", ErrServerExited, err)}
		}
	case <-timer.C:
		l.logger.Warn("server ignored interrupt, killing")
		_ = cmd.Process.Kill()
		<-exitCh
		return &ExitError{Code: 1, Err: ErrForcedKill}
	}
}

// exitCode derives a process exit code from a wait error. A process ended by
// a signal reports -1.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}

// openWhenReady opens url once addr accepts connections. Failing to open a
// browser is logged and never stops the server.
func (l *Launcher) openWhenReady(ctx context.Context, addr, url string) {
	deadline := time.NewTimer(l.cfg.ReadyTimeout)
	defer deadline.Stop()
	tick := time.NewTicker(100 * time.Millisecond)
	defer tick.Stop()

	var dialer net.Dialer
	for {
		conn, err := dialer.DialContext(ctx, "tcp", addr)
		if err == nil {
			_ = conn.Close()
			if err := l.open(url); err != nil {
				l.logger.Warn("open browser", zap.String("url", url), zap.Error(err))
				return
			}
			l.logger.Info("browser opened", zap.String("url", url))
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-deadline.C:
			l.logger.Warn("server not reachable, open the browser manually", zap.String("url", url))
			return
		case <-tick.C:
		}
	}
}
