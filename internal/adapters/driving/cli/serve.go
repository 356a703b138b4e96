package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/zephyrlaunch/zephyr/internal/logger"
	"github.com/zephyrlaunch/zephyr/internal/watcher"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the background services",
	Long: `Keeps the clipboard monitor and the plugin directory watcher
running until interrupted. This is the mode a GUI shell runs the core
in.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	go clipboardMonitor.Start(ctx)

	w, err := watcher.New(pluginLoader.Dir(), func(ctx context.Context) error {
		return searchService.ReloadExternalProviders(ctx)
	})
	if err != nil {
		logger.Warn("plugin watcher unavailable: %v", err)
	} else {
		go w.Run(ctx)
	}

	logger.Info("zephyr running; press Ctrl-C to stop")
	<-ctx.Done()
	clipboardMonitor.Stop()
	return nil
}
