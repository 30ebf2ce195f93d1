package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/studiowebux/wsprobe/internal/config"
	"github.com/studiowebux/wsprobe/internal/keybinds"
)

var flagForce bool

var keybindsCmd = &cobra.Command{
	Use:   "keybinds",
	Short: "Inspect and customize TUI key bindings",
}

var keybindsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default bindings to keybinds.json for editing",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		if _, err := os.Stat(config.KeybindsFile); err == nil && !flagForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", config.KeybindsFile)
		}
		if err := keybinds.SaveConfig(keybinds.ExportDefaults(), config.KeybindsFile); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Wrote %s\n", config.KeybindsFile)
		return nil
	},
}

var keybindsCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate keybinds.json",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		cfg, err := keybinds.LoadConfig(config.KeybindsFile)
		if errors.Is(err, fs.ErrNotExist) {
			fmt.Println("No keybinds.json, using defaults")
			return nil
		}
		if err != nil {
			return err
		}

		result := keybinds.NewValidator().ValidateConfig(cfg)
		if !result.HasErrors() && !result.HasWarnings() {
			fmt.Println("keybinds.json is valid")
			return nil
		}
		fmt.Print(result.String())
		if result.HasErrors() {
			return fmt.Errorf("%d invalid bindings", len(result.Errors))
		}
		return nil
	},
}

var keybindsListCmd = &cobra.Command{
	Use:   "list [context]",
	Short: "List effective bindings",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		registry, err := keybinds.LoadOrDefault(config.KeybindsFile)
		if err != nil {
			return err
		}

		contexts := keybinds.Contexts
		if len(args) > 0 {
			ctx := keybinds.Context(args[0])
			if !keybinds.IsKnownContext(ctx) {
				return fmt.Errorf("unknown context %q", args[0])
			}
			contexts = []keybinds.Context{ctx}
		}

		tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "CONTEXT\tKEY\tACTION\tDESCRIPTION")
		for _, ctx := range contexts {
			for _, b := range registry.ListBindings(ctx) {
				if b.Context != ctx {
					continue
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", ctx, b.Key, b.Action, keybinds.Describe(b.Action))
			}
		}
		return tw.Flush()
	},
}

func init() {
	keybindsInitCmd.Flags().BoolVar(&flagForce, "force", false, "Overwrite an existing file")
	keybindsCmd.AddCommand(keybindsInitCmd, keybindsCheckCmd, keybindsListCmd)
}
