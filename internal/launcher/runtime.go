package launcher

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

var versionPattern = regexp.MustCompile(`v?(\d+)\.(\d+)(?:\.(\d+))?`)

// CheckRuntime runs "<runtime> --version" and enforces the minimum major.
func (l *Launcher) CheckRuntime(ctx context.Context) (string, error) {
	out, err := l.command(ctx, l.cfg.Runtime, "--version").Output()
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s is not installed or not on PATH; install version %d or newer", ErrRuntimeMissing, l.cfg.Runtime, l.cfg.MinMajor)
		}
		return "", fmt.Errorf("%w: %s --version: %v", ErrRuntimeMissing, l.cfg.Runtime, err)
	}
	version := strings.TrimSpace(string(out))
	major, err := ParseMajor(version)
	if err != nil {
		return "", err
	}
	if major < l.cfg.MinMajor {
		return version, fmt.Errorf("%w: %s %s found, version %d or newer is required; upgrade and run the launcher again", ErrRuntimeTooOld, l.cfg.Runtime, version, l.cfg.MinMajor)
	}
	return version, nil
}

// ParseMajor extracts the major number from version output like "v18.19.0".
func ParseMajor(version string) (int, error) {
	match := versionPattern.FindStringSubmatch(version)
	if match == nil {
		return 0, fmt.Errorf("unrecognized version %q", version)
	}
	return strconv.Atoi(match[1])
}

// EnsureDependencies runs the install command when DepsDir is absent. It
// reports whether an install ran.
func (l *Launcher) EnsureDependencies(ctx context.Context) (bool, error) {
	if strings.TrimSpace(l.cfg.DepsDir) == "" {
		return false, nil
	}
	deps := filepath.Join(l.cfg.Dir, l.cfg.DepsDir)
	info, err := os.Stat(deps)
	switch {
	case err == nil && info.IsDir():
		return false, nil
	case err == nil:
		return false, fmt.Errorf("%w: %s exists but is not a directory", ErrInstallFailed, deps)
	case !errors.Is(err, os.ErrNotExist):
		return false, fmt.Errorf("%w: stat %s: %v", ErrInstallFailed, deps, err)
	}

	args := strings.Fields(l.cfg.Install)
	if len(args) == 0 {
		return false, fmt.Errorf("%w: %s is missing and no install command is configured", ErrInstallFailed, deps)
	}
	l.logger.Info("installing dependencies", zap.String("command", l.cfg.Install), zap.String("dir", l.cfg.Dir))
	cmd := l.command(ctx, args[0], args[1:]...)
	cmd.Dir = l.cfg.Dir
	cmd.Stdout = l.stdout
	cmd.Stderr = l.stderr
	if err := cmd.Run(); err != nil {
		return true, fmt.Errorf("%w: %s: %v; fix the error above and run the launcher again", ErrInstallFailed, l.cfg.Install, err)
	}
	return true, nil
}
