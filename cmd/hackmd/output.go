// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/hackmd-cli/pkg/types"
)

// Output formats for the listing commands.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatCSV   = "csv"
	formatYAML  = "yaml"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printYAML(v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	_, err = os.Stdout.Write(data)
	return err
}

// writeNotesCSV emits the same columns the original tool did:
// id,title,createdAt,lastChangedAt. Missing timestamps become empty cells.
func writeNotesCSV(w io.Writer, notes []types.Note) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "title", "createdAt", "lastChangedAt"}); err != nil {
		return err
	}
	for _, n := range notes {
		title := n.Title
		if title == "" {
			title = "Untitled"
		}
		if err := cw.Write([]string{n.ID, title, epochCell(n.CreatedAt), epochCell(n.LastChangedAt)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeTeamsCSV(w io.Writer, teams []types.Team) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "name", "path"}); err != nil {
		return err
	}
	for _, t := range teams {
		if err := cw.Write([]string{t.ID, t.Name, t.Path}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func epochCell(ms int64) string {
	if ms == 0 {
		return ""
	}
	return strconv.FormatInt(ms, 10)
}
