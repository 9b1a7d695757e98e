package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/kbukum/carmarket/errors"
	"github.com/kbukum/carmarket/server/endpoint"
)

// Catalog output formats.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func newErrorsCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "errors [code]",
		Short: "Print the error catalog or a single entry",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			entries := endpoint.CatalogEntries(errors.Default)
			if len(args) == 1 {
				entries = filterCatalog(entries, errors.Key(args[0]))
				if len(entries) == 0 {
					return fmt.Errorf("unknown error code %s", args[0])
				}
			}
			return writeCatalog(cmd.OutOrStdout(), format, entries)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format: table, json or yaml")
	return cmd
}

func filterCatalog(entries []endpoint.CatalogEntry, code errors.Key) []endpoint.CatalogEntry {
	for _, e := range entries {
		if e.ErrorCode == code {
			return []endpoint.CatalogEntry{e}
		}
	}
	return nil
}

func writeCatalog(w io.Writer, format string, entries []endpoint.CatalogEntry) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(map[string]any{"errors": entries})
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(map[string]any{"errors": entries}); err != nil {
			return err
		}
		return enc.Close()
	case formatTable:
		tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "CODE\tSTATUS\tRETRYABLE\tMESSAGE")
		for _, e := range entries {
			fmt.Fprintf(tw, "%s\t%d\t%t\t%s\n", e.ErrorCode, e.StatusCode, e.Retryable, e.Message)
		}
		return tw.Flush()
	default:
		return fmt.Errorf("unknown format %q (want table, json or yaml)", format)
	}
}
