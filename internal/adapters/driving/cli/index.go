package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zephyrlaunch/zephyr/internal/core/domain"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Rebuild the application index",
	RunE:  runIndex,
}

var indexListCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed applications",
	RunE:  runIndexList,
}

func init() {
	indexCmd.AddCommand(indexListCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, _ []string) error {
	settings := settingsStore.Settings()

	err := appIndexer.BuildIndex(cmd.Context(), settings.CustomPaths)
	if errors.Is(err, domain.ErrIndexInProgress) {
		return errors.New("an index build is already running")
	}
	if err != nil {
		return fmt.Errorf("index failed: %w", err)
	}

	cmd.Printf("Indexed %d applications.\n", len(appIndexer.All()))
	return nil
}

func runIndexList(cmd *cobra.Command, _ []string) error {
	apps := appIndexer.All()
	if len(apps) == 0 {
		cmd.Println("Index is empty. Run 'zephyr index' first.")
		return nil
	}

	for _, app := range apps {
		cmd.Printf("  %s  [%s]  %s\n", app.Name, app.Source, app.Path)
	}
	cmd.Printf("\n%d applications.\n", len(apps))
	return nil
}
