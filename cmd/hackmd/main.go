// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the hackmd CLI, a terminal client
// for the HackMD REST API: authentication profiles, note CRUD, team
// listing, and templated note creation.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/hackmd-cli/internal/logging"
	"github.com/pdiddy/hackmd-cli/internal/profile"
	"github.com/pdiddy/hackmd-cli/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// rootCmd is the base command for the hackmd CLI.
var rootCmd = &cobra.Command{
	Use:   "hackmd",
	Short: "Manage your HackMD notes from the terminal",
	Long: `hackmd is a command-line client for the HackMD REST API.

Authenticate once with an API token, then create, list, and fetch notes,
list your teams, and seed notes from reusable markdown templates with
{{placeholder}} substitution.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbosity, _ := cmd.Flags().GetCount("verbose")
		logging.Setup(verbosity)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "settings file (default: ./hackmd.yaml or ~/.config/hackmd/hackmd.yaml)")
	rootCmd.PersistentFlags().CountP("verbose", "v", "increase logging verbosity (-v info, -vv debug)")
}

// initConfig wires viper for tool settings that are not credentials:
// HTTP timeout and user agent. Credentials live in the profile store.
func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("hackmd")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "hackmd"))
		}
	}

	viper.SetEnvPrefix("HACKMD")
	viper.AutomaticEnv()

	viper.SetDefault("http.timeout", types.DefaultTimeout)
	viper.SetDefault("http.user_agent", types.DefaultUserAgent)

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using settings file:", viper.ConfigFileUsed())
	}
}

// clientConfig assembles HTTP settings from viper (file, env, defaults).
func clientConfig() types.ClientConfig {
	return types.ClientConfig{
		Timeout:   viper.GetDuration("http.timeout"),
		UserAgent: viper.GetString("http.user_agent"),
	}.WithDefaults()
}

// configStore returns the profile store at the per-user config path.
func configStore() *profile.Store {
	return profile.NewStore(profile.DefaultPath())
}

// resolveCredential returns the active credential or an error telling the
// user to log in. Commands call this before touching the network.
func resolveCredential() (*profile.Credential, error) {
	cred, err := configStore().ResolveActive()
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, fmt.Errorf("not authenticated. Run: hackmd auth login")
	}
	return cred, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
