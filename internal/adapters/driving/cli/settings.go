package cli

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/zephyrlaunch/zephyr/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Inspect and change configuration",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the current configuration",
	RunE:  runSettingsShow,
}

var settingsModeCmd = &cobra.Command{
	Use:   "mode [fuzzy|exact]",
	Short: "Set the default search mode",
	Args:  cobra.ExactArgs(1),
	RunE:  runSettingsMode,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsModeCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	data, err := toml.Marshal(settingsStore.Settings())
	if err != nil {
		return err
	}
	cmd.Printf("# %s\n\n", settingsStore.Path())
	cmd.Print(string(data))
	return nil
}

func runSettingsMode(cmd *cobra.Command, args []string) error {
	mode := domain.SearchMode(args[0])
	if !mode.IsValid() {
		return fmt.Errorf("unknown search mode %q", args[0])
	}

	settings := settingsStore.Settings()
	settings.SearchMode = mode
	if err := settingsStore.Save(settings); err != nil {
		return err
	}

	cmd.Printf("Search mode set to %s.\n", mode)
	return nil
}
