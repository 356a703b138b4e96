package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var marketCmd = &cobra.Command{
	Use:   "market",
	Short: "Browse and install plugins from the registry",
}

var marketListCmd = &cobra.Command{
	Use:   "list",
	Short: "List plugins available in the registry",
	RunE:  runMarketList,
}

var marketInstallCmd = &cobra.Command{
	Use:   "install [id-or-zip]",
	Short: "Install a plugin by registry ID or from a local zip",
	Args:  cobra.ExactArgs(1),
	RunE:  runMarketInstall,
}

var marketUninstallCmd = &cobra.Command{
	Use:   "uninstall [id]",
	Short: "Remove an installed plugin",
	Args:  cobra.ExactArgs(1),
	RunE:  runMarketUninstall,
}

func init() {
	marketCmd.AddCommand(marketListCmd)
	marketCmd.AddCommand(marketInstallCmd)
	marketCmd.AddCommand(marketUninstallCmd)
	rootCmd.AddCommand(marketCmd)
}

func runMarketList(cmd *cobra.Command, _ []string) error {
	plugins, err := marketService.List(cmd.Context())
	if err != nil {
		return err
	}
	if len(plugins) == 0 {
		cmd.Println("Registry is empty.")
		return nil
	}

	for _, p := range plugins {
		cmd.Printf("  %-24s %-10s %s\n", p.ID, p.Version, p.Name)
		if p.Description != "" {
			cmd.Printf("      %s\n", p.Description)
		}
	}
	return nil
}

func runMarketInstall(cmd *cobra.Command, args []string) error {
	target := args[0]

	if isZipPath(target) {
		if err := marketService.InstallLocal(cmd.Context(), target); err != nil {
			return err
		}
		cmd.Println("Installed.")
		return nil
	}

	plugins, err := marketService.List(cmd.Context())
	if err != nil {
		return err
	}
	for _, p := range plugins {
		if p.ID == target {
			if err := marketService.Install(cmd.Context(), p); err != nil {
				return err
			}
			cmd.Printf("Installed %s %s.\n", p.ID, p.Version)
			return nil
		}
	}
	return fmt.Errorf("plugin %q not found in registry", target)
}

func runMarketUninstall(cmd *cobra.Command, args []string) error {
	if err := marketService.Uninstall(cmd.Context(), args[0]); err != nil {
		return err
	}
	cmd.Printf("Uninstalled %s.\n", args[0])
	return nil
}

func isZipPath(s string) bool {
	return len(s) > 4 && s[len(s)-4:] == ".zip"
}
