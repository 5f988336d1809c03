package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/doc-podcast/internal/source"
)

var infoCmd = &cobra.Command{
	Use:   "info <pdf>",
	Short: "Show page count, size and metadata of a PDF",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

var infoJSON bool

func init() {
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "Print the info as JSON")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	info, err := source.GetInfo(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if infoJSON {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal info: %w", err)
		}
		_, _ = fmt.Fprintln(out, string(data))
		return nil
	}

	_, _ = fmt.Fprintf(out, "File:   %s\n", info.Path)
	_, _ = fmt.Fprintf(out, "Pages:  %d\n", info.PageCount)
	_, _ = fmt.Fprintf(out, "Size:   %.2f MB\n", info.SizeMB)
	if info.Title != "" {
		_, _ = fmt.Fprintf(out, "Title:  %s\n", info.Title)
	}
	if info.Author != "" {
		_, _ = fmt.Fprintf(out, "Author: %s\n", info.Author)
	}
	return nil
}
