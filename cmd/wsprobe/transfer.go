package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/studiowebux/wsprobe/internal/config"
	"github.com/studiowebux/wsprobe/internal/library"
	"github.com/studiowebux/wsprobe/internal/parser"
)

var (
	flagImportFormat string
	flagExportFormat string
	flagExportFile   string
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a .ws file or a library bundle (yaml/json)",
	Long: `Import saved URLs, snippets and templates.

A .ws file adds its URL and one snippet per sent message. Any other file is
read as a bundle written by 'wsprobe export'. Use - to read a bundle from stdin.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := importFile(a.lib, args[0], flagImportFormat)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Imported %d URLs, %d snippets, %d templates (%d skipped)\n",
			result.URLs, result.Snippets, result.Templates, result.Skipped)
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export saved URLs, snippets and templates",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, false)
		if err != nil {
			return err
		}
		defer a.Close()

		format := flagExportFormat
		if !cmd.Flags().Changed("format") {
			format = formatFromPath(flagExportFile)
		}

		var w io.Writer = os.Stdout
		if flagExportFile != "" {
			f, err := os.OpenFile(flagExportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, config.FilePermissions)
			if err != nil {
				return fmt.Errorf("failed to create export file: %w", err)
			}
			defer f.Close()
			w = f
		}

		if err := a.lib.Export(w, format); err != nil {
			return err
		}
		if flagExportFile != "" {
			fmt.Fprintf(os.Stderr, "Library exported to %s\n", flagExportFile)
		}
		return nil
	},
}

func init() {
	importCmd.Flags().StringVarP(&flagImportFormat, "format", "f", "", "Bundle format (yaml/json), detected from the extension by default")
	exportCmd.Flags().StringVarP(&flagExportFormat, "format", "f", "yaml", "Bundle format (yaml/json)")
	exportCmd.Flags().StringVarP(&flagExportFile, "output", "o", "", "Write to file instead of stdout")
}

// formatFromPath picks json for .json files and yaml otherwise
func formatFromPath(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return "json"
	}
	return "yaml"
}

func importFile(lib *library.Library, path, format string) (library.ImportResult, error) {
	if path == "-" {
		if format == "" {
			format = "yaml"
		}
		return lib.Import(os.Stdin, format)
	}

	if strings.EqualFold(filepath.Ext(path), ".ws") {
		req, err := parser.ParseWebSocketFile(path)
		if err != nil {
			return library.ImportResult{}, err
		}
		return lib.ImportWS(req)
	}

	f, err := os.Open(path)
	if err != nil {
		return library.ImportResult{}, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if format == "" {
		format = formatFromPath(path)
	}
	return lib.Import(f, format)
}
