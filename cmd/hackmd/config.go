package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/hackmd-cli/internal/profile"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set a configuration value",
	Long: `Set writes a configuration key into the profile config file. The key
"default.team" nests under defaults; any other key is stored as a top-level
value. Requires a prior login.`,
	Args: cobra.ExactArgs(2),
	RunE: runConfigSet,
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	key, value := args[0], args[1]

	if err := configStore().SetValue(key, value); err != nil {
		if errors.Is(err, profile.ErrNotConfigured) {
			return fmt.Errorf("not configured. Run: hackmd auth login")
		}
		return err
	}

	if key == "default.team" {
		fmt.Printf("✓ Set default team to: %s\n", value)
	} else {
		fmt.Printf("✓ Set %s to: %s\n", key, value)
	}
	return nil
}

func init() {
	configCmd.AddCommand(configSetCmd)
	rootCmd.AddCommand(configCmd)
}
