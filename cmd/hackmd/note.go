// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/pdiddy/hackmd-cli/internal/api"
	"github.com/pdiddy/hackmd-cli/internal/cache"
	"github.com/pdiddy/hackmd-cli/internal/template"
	"github.com/pdiddy/hackmd-cli/pkg/types"
)

var noteCmd = &cobra.Command{
	Use:   "note",
	Short: "Manage notes",
}

// --- create subcommand ---

var noteCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new note",
	Long: `Create makes a new note from literal content, a template, or a default
stub. With --template the named template is rendered first: {{date}}, {{time}}
and friends are filled automatically, --var key=value supplies the rest, and
the note title doubles as the {{title}} variable unless overridden.`,
	RunE: runNoteCreate,
}

func runNoteCreate(cmd *cobra.Command, args []string) error {
	title, _ := cmd.Flags().GetString("title")
	content, _ := cmd.Flags().GetString("content")
	templateName, _ := cmd.Flags().GetString("template")
	varFlags, _ := cmd.Flags().GetStringArray("var")

	if len(varFlags) > 0 && templateName == "" {
		return fmt.Errorf("--var only applies to template rendering: add --template <name>")
	}

	cred, err := resolveCredential()
	if err != nil {
		return err
	}

	if templateName != "" {
		vars, err := parseVars(varFlags)
		if err != nil {
			return err
		}
		if _, ok := vars["title"]; !ok {
			vars["title"] = title
		}

		engine := template.NewEngine(template.DefaultDir())
		content, err = engine.Render(templateName, vars)
		if err != nil {
			if errors.Is(err, template.ErrNotFound) {
				return fmt.Errorf("template %q not found. Run: hackmd template list", templateName)
			}
			return err
		}
	} else if content == "" {
		content = fmt.Sprintf("# %s\n\nCreated with HackMD CLI", title)
	}

	client := api.NewClient(*cred, clientConfig())
	note, err := client.CreateNote(context.Background(), title, content)
	if err != nil {
		return fmt.Errorf("creating note: %w", err)
	}

	fmt.Println("✓ Note created successfully!")
	fmt.Printf("  ID: %s\n", note.ID)
	fmt.Printf("  Title: %s\n", title)
	if note.PublishLink != "" {
		fmt.Printf("  URL: %s\n", note.PublishLink)
	}
	return nil
}

// parseVars turns repeated key=value flags into a render context.
func parseVars(pairs []string) (map[string]string, error) {
	vars := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --var %q: expected key=value", pair)
		}
		vars[key] = value
	}
	return vars, nil
}

// --- list subcommand ---

var noteListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your notes",
	Long: `List fetches your notes from the API and refreshes the local cache.
With --cached the list is served from the cache without a network call.`,
	RunE: runNoteList,
}

func runNoteList(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	limit, _ := cmd.Flags().GetInt("limit")
	cached, _ := cmd.Flags().GetBool("cached")

	cred, err := resolveCredential()
	if err != nil {
		return err
	}

	var notes []types.Note
	if cached {
		notes, err = cachedNotes(limit)
		if err != nil {
			return err
		}
	} else {
		client := api.NewClient(*cred, clientConfig())
		notes, err = client.Notes(context.Background())
		if err != nil {
			return fmt.Errorf("fetching notes: %w", err)
		}
		refreshCache(notes)
		if limit > 0 && len(notes) > limit {
			notes = notes[:limit]
		}
	}

	switch format {
	case formatJSON:
		return printJSON(notes)
	case formatYAML:
		return printYAML(notes)
	case formatCSV:
		return writeNotesCSV(cmd.OutOrStdout(), notes)
	case formatTable, "":
		printNoteTable(notes)
		return nil
	default:
		return fmt.Errorf("unsupported format %q: use table, json, csv, or yaml", format)
	}
}

func cachedNotes(limit int) ([]types.Note, error) {
	store, err := cache.Open(cache.DefaultPath())
	if err != nil {
		return nil, err
	}
	defer store.Close()
	return store.List(context.Background(), limit)
}

// refreshCache replaces the local note index. Failures only cost the
// offline view, so they are logged and swallowed.
func refreshCache(notes []types.Note) {
	store, err := cache.Open(cache.DefaultPath())
	if err != nil {
		log.Warn().Err(err).Msg("could not open note cache")
		return
	}
	defer store.Close()

	if err := store.Refresh(context.Background(), notes); err != nil {
		log.Warn().Err(err).Msg("could not refresh note cache")
	}
}

func printNoteTable(notes []types.Note) {
	if len(notes) == 0 {
		fmt.Println("No notes found")
		return
	}
	fmt.Println("Your notes:")
	for _, n := range notes {
		title := n.Title
		if title == "" {
			title = "Untitled"
		}
		fmt.Printf("  • %s (%s)\n", title, n.ID)
	}
}

// --- get subcommand ---

var noteGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Fetch a single note",
	Args:  cobra.ExactArgs(1),
	RunE:  runNoteGet,
}

func runNoteGet(cmd *cobra.Command, args []string) error {
	contentOnly, _ := cmd.Flags().GetBool("content-only")

	cred, err := resolveCredential()
	if err != nil {
		return err
	}

	client := api.NewClient(*cred, clientConfig())
	note, err := client.Note(context.Background(), args[0])
	if err != nil {
		return fmt.Errorf("fetching note: %w", err)
	}

	if contentOnly {
		fmt.Println(note.Content)
		return nil
	}

	fmt.Printf("Title: %s\n", note.Title)
	fmt.Printf("ID: %s\n", note.ID)
	if note.PublishLink != "" {
		fmt.Printf("URL: %s\n", note.PublishLink)
	}
	fmt.Println()
	fmt.Println(note.Content)
	return nil
}

// --- search subcommand ---

var noteSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search cached note titles",
	Long: `Search runs a full-text query over the locally cached note titles.
The cache is filled by "hackmd note list"; search itself never touches
the network.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNoteSearch,
}

func runNoteSearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if _, err := resolveCredential(); err != nil {
		return err
	}

	store, err := cache.Open(cache.DefaultPath())
	if err != nil {
		return err
	}
	defer store.Close()

	notes, err := store.Search(context.Background(), strings.Join(args, " "), limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		return printJSON(notes)
	}
	printNoteTable(notes)
	return nil
}

func init() {
	noteCreateCmd.Flags().StringP("title", "t", "", "note title")
	noteCreateCmd.Flags().StringP("content", "c", "", "note content")
	noteCreateCmd.Flags().String("template", "", "render content from a named template")
	noteCreateCmd.Flags().StringArray("var", nil, "template variable as key=value (repeatable)")
	noteCreateCmd.MarkFlagRequired("title")

	noteListCmd.Flags().StringP("format", "f", formatTable, "output format: table, json, csv, or yaml")
	noteListCmd.Flags().IntP("limit", "l", 20, "maximum number of notes to show")
	noteListCmd.Flags().Bool("cached", false, "serve the list from the local cache, no network")

	noteGetCmd.Flags().Bool("content-only", false, "print only the note content")

	noteSearchCmd.Flags().Int("limit", 20, "maximum number of results")
	noteSearchCmd.Flags().Bool("json", false, "output results as JSON")

	noteCmd.AddCommand(noteCreateCmd)
	noteCmd.AddCommand(noteListCmd)
	noteCmd.AddCommand(noteGetCmd)
	noteCmd.AddCommand(noteSearchCmd)
	rootCmd.AddCommand(noteCmd)
}
