package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zephyrlaunch/zephyr/internal/core/domain"
)

var pluginsCmd = &cobra.Command{
	Use:   "plugins",
	Short: "Manage search providers",
}

var pluginsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List registered providers",
	RunE:  runPluginsList,
}

var pluginsEnableCmd = &cobra.Command{
	Use:   "enable [name]",
	Short: "Enable a provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(cmd, args[0], true)
	},
}

var pluginsDisableCmd = &cobra.Command{
	Use:   "disable [name]",
	Short: "Disable a provider",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setEnabled(cmd, args[0], false)
	},
}

var pluginsReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Reload external plugins from disk",
	RunE:  runPluginsReload,
}

func init() {
	pluginsCmd.AddCommand(pluginsListCmd)
	pluginsCmd.AddCommand(pluginsEnableCmd)
	pluginsCmd.AddCommand(pluginsDisableCmd)
	pluginsCmd.AddCommand(pluginsReloadCmd)
	rootCmd.AddCommand(pluginsCmd)
}

func runPluginsList(cmd *cobra.Command, _ []string) error {
	providers := searchService.Providers()
	if len(providers) == 0 {
		cmd.Println("No providers registered.")
		return nil
	}

	for _, p := range providers {
		state := "enabled"
		if !p.Enabled {
			state = "disabled"
		}
		kind := "built-in"
		if p.External {
			kind = "plugin"
		}
		cmd.Printf("  %-24s %-8s %-9s priority %d\n", p.Name, kind, state, p.Priority)
		if p.Description != "" {
			cmd.Printf("      %s\n", p.Description)
		}
	}
	return nil
}

func setEnabled(cmd *cobra.Command, name string, enabled bool) error {
	if err := searchService.SetProviderEnabled(name, enabled); err != nil {
		return fmt.Errorf("provider %s: %w", name, err)
	}

	// Persist so the state survives restarts.
	settings := settingsStore.Settings()
	ps := settings.Plugins[name]
	ps.Enabled = enabled
	if settings.Plugins == nil {
		settings.Plugins = map[string]domain.PluginSettings{}
	}
	settings.Plugins[name] = ps
	if err := settingsStore.Save(settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}

	state := "enabled"
	if !enabled {
		state = "disabled"
	}
	cmd.Printf("Provider %s %s.\n", name, state)
	return nil
}

func runPluginsReload(cmd *cobra.Command, _ []string) error {
	if err := searchService.ReloadExternalProviders(cmd.Context()); err != nil {
		return fmt.Errorf("reload failed: %w", err)
	}

	external := 0
	for _, p := range searchService.Providers() {
		if p.External {
			external++
		}
	}
	cmd.Printf("Reloaded. %d external providers active.\n", external)
	return nil
}
