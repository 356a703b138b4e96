// Package execrun starts applications and runs system commands through
// the desktop environment.
package execrun

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/shlex"

	"github.com/zephyrlaunch/zephyr/internal/core/ports/driven"
	"github.com/zephyrlaunch/zephyr/internal/logger"
)

// Ensure Launcher implements the port.
var _ driven.Launcher = (*Launcher)(nil)

// Launcher shells out to the desktop's own launch tooling so sandboxed
// and containerised applications start with their expected environment.
type Launcher struct{}

// NewLauncher creates a launcher.
func NewLauncher() *Launcher {
	return &Launcher{}
}

// OpenPath opens an application or file with the desktop's default
// handler. Desktop entries launch through gtk-launch so the entry's own
// Exec line, environment and sandbox wrapping apply.
func (l *Launcher) OpenPath(ctx context.Context, path string) error {
	var cmd *exec.Cmd
	if strings.HasSuffix(path, ".desktop") {
		entry := strings.TrimSuffix(filepath.Base(path), ".desktop")
		cmd = exec.CommandContext(ctx, "gtk-launch", entry)
	} else {
		cmd = exec.CommandContext(ctx, "xdg-open", path)
	}

	logger.Debug("launcher: open %s", path)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", path, err)
	}

	// Detach: the launched application outlives us.
	go func() { _ = cmd.Wait() }()
	return nil
}

// RunCommand runs a shell-style command line.
func (l *Launcher) RunCommand(ctx context.Context, command string) error {
	parts, err := shlex.Split(command)
	if err != nil {
		return fmt.Errorf("parse command %q: %w", command, err)
	}
	if len(parts) == 0 {
		return fmt.Errorf("empty command")
	}

	logger.Debug("launcher: run %s", command)
	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("run %q: %w", command, err)
	}

	go func() { _ = cmd.Wait() }()
	return nil
}
