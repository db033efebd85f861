package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/hackmd-cli/internal/api"
	"github.com/pdiddy/hackmd-cli/pkg/types"
)

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Manage teams",
}

var teamListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your teams",
	RunE:  runTeamList,
}

func runTeamList(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	cred, err := resolveCredential()
	if err != nil {
		return err
	}

	client := api.NewClient(*cred, clientConfig())
	teams, err := client.Teams(context.Background())
	if err != nil {
		return fmt.Errorf("fetching teams: %w", err)
	}

	switch format {
	case formatJSON:
		return printJSON(teams)
	case formatYAML:
		return printYAML(teams)
	case formatCSV:
		return writeTeamsCSV(cmd.OutOrStdout(), teams)
	case formatTable, "":
		printTeamTable(teams)
		return nil
	default:
		return fmt.Errorf("unsupported format %q: use table, json, csv, or yaml", format)
	}
}

func printTeamTable(teams []types.Team) {
	if len(teams) == 0 {
		fmt.Println("No teams found")
		return
	}
	fmt.Println("Your teams:")
	for _, t := range teams {
		name := t.Name
		if name == "" {
			name = "Unknown"
		}
		fmt.Printf("  • %s (path: %s, id: %s)\n", name, t.Path, t.ID)
	}
}

func init() {
	teamListCmd.Flags().StringP("format", "f", formatTable, "output format: table, json, csv, or yaml")

	teamCmd.AddCommand(teamListCmd)
	rootCmd.AddCommand(teamCmd)
}
