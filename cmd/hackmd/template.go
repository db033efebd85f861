package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/hackmd-cli/internal/template"
)

var templateCmd = &cobra.Command{
	Use:   "template",
	Short: "Manage note templates",
}

var templateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List available templates",
	RunE:  runTemplateList,
}

func runTemplateList(cmd *cobra.Command, args []string) error {
	engine := template.NewEngine(template.DefaultDir())

	names, err := engine.List()
	if err != nil {
		return err
	}
	if len(names) == 0 {
		fmt.Println("No templates found. Run: hackmd template init")
		return nil
	}

	fmt.Println("Available templates:")
	for _, name := range names {
		fmt.Printf("  • %s\n", name)
	}
	return nil
}

var templateInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Seed the built-in templates",
	Long: `Init creates the template directory and writes the five built-in
templates (daily-journal, meeting-notes, bug-report, project-readme,
weekly-review). Existing files are never overwritten; running init again
is a no-op.`,
	RunE: runTemplateInit,
}

func runTemplateInit(cmd *cobra.Command, args []string) error {
	engine := template.NewEngine(template.DefaultDir())

	created, err := engine.Initialize()
	if err != nil {
		return err
	}
	if len(created) == 0 {
		fmt.Println("All built-in templates already present.")
		return nil
	}

	fmt.Println("Created templates:")
	for _, name := range created {
		fmt.Printf("  • %s\n", name)
	}
	return nil
}

var templateCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create or replace a template",
	Long: `Create saves template content under the given name, overwriting any
existing template. Content comes from --file when given, otherwise from
standard input.`,
	Args: cobra.ExactArgs(1),
	RunE: runTemplateCreate,
}

func runTemplateCreate(cmd *cobra.Command, args []string) error {
	file, _ := cmd.Flags().GetString("file")

	var content []byte
	var err error
	if file != "" {
		content, err = os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}
	} else {
		content, err = io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading stdin: %w", err)
		}
	}

	engine := template.NewEngine(template.DefaultDir())
	path, err := engine.Save(args[0], string(content))
	if err != nil {
		return err
	}

	fmt.Printf("✓ Template saved to %s\n", path)
	return nil
}

func init() {
	templateCreateCmd.Flags().String("file", "", "read template content from a file instead of stdin")

	templateCmd.AddCommand(templateListCmd)
	templateCmd.AddCommand(templateInitCmd)
	templateCmd.AddCommand(templateCreateCmd)
	rootCmd.AddCommand(templateCmd)
}
