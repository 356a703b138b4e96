package driven

import (
	"context"

	"github.com/zephyrlaunch/zephyr/internal/core/domain"
)

// Launcher starts applications and runs system commands. It is the only
// place the core touches process execution.
type Launcher interface {
	// OpenPath opens an application or file with the desktop's default
	// handler.
	OpenPath(ctx context.Context, path string) error

	// RunCommand runs a shell-style command line.
	RunCommand(ctx context.Context, command string) error
}

// ClipboardHistory is the live clipboard buffer consumed by the
// clipboard-history provider and the copy action.
type ClipboardHistory interface {
	// History returns captured entries, most recent first.
	History() []domain.ClipboardItem

	// Write places text on the system clipboard without re-capturing it.
	Write(text string) error
}
