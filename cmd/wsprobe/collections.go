package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/studiowebux/wsprobe/internal/cli"
	"github.com/studiowebux/wsprobe/internal/library"
	"github.com/studiowebux/wsprobe/internal/types"
)

// collectionDef describes one library collection command
type collectionDef struct {
	kind    library.Kind
	use     string
	aliases []string
	short   string
	addUse  string
	addArgs cobra.PositionalArgs
	add     func(a *app, args []string) (string, error)
}

// Flags for the collection subcommands
var (
	flagOutput      string
	flagAddSecure   bool
	flagPayloadType string
	flagDescription string
)

var urlsCollection = collectionDef{
	kind:    library.KindURL,
	use:     "urls",
	aliases: []string{"url"},
	short:   "Manage saved URLs",
	addUse:  "add [url] [label]",
	addArgs: cobra.MaximumNArgs(2),
	add:     addURL,
}

var snippetsCollection = collectionDef{
	kind:    library.KindSnippet,
	use:     "snippets",
	aliases: []string{"snippet"},
	short:   "Manage quick-insert snippets",
	addUse:  "add [name] [content|-]",
	addArgs: cobra.MaximumNArgs(2),
	add:     addSnippet,
}

var templatesCollection = collectionDef{
	kind:    library.KindTemplate,
	use:     "templates",
	aliases: []string{"template"},
	short:   "Manage payload templates",
	addUse:  "add [name] [content|-]",
	addArgs: cobra.MaximumNArgs(2),
	add:     addTemplate,
}

// newCollectionCmd builds list/add/rm/find for one collection
func newCollectionCmd(def collectionDef) *cobra.Command {
	cmd := &cobra.Command{
		Use:     def.use,
		Aliases: def.aliases,
		Short:   def.short,
	}

	listCmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved " + def.use,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()
			return printCollection(os.Stdout, a.lib, def.kind, flagOutput)
		},
	}
	listCmd.Flags().StringVarP(&flagOutput, "output", "o", "text", "Output format (text/json/yaml)")

	addCmd := &cobra.Command{
		Use:   def.addUse,
		Short: "Save a new entry (prompts when arguments are missing)",
		Args:  def.addArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			name, err := def.add(a, args)
			if errors.Is(err, cli.ErrCancelled) {
				return nil
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Saved %s\n", name)
			return nil
		},
	}
	switch def.kind {
	case library.KindURL:
		addCmd.Flags().BoolVar(&flagAddSecure, "secure", true, "Use wss:// when the URL has no scheme")
	case library.KindTemplate:
		addCmd.Flags().StringVarP(&flagDescription, "description", "d", "", "Template description")
		fallthrough
	default:
		addCmd.Flags().StringVarP(&flagPayloadType, "type", "t", types.PayloadText, "Payload type (text/json)")
	}

	rmCmd := &cobra.Command{
		Use:     "rm [name|id]",
		Aliases: []string{"remove", "delete"},
		Short:   "Delete an entry (pick interactively without an argument)",
		Args:    cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()

			item, err := selectItem(a.lib, def.kind, args)
			if errors.Is(err, cli.ErrCancelled) {
				return nil
			}
			if err != nil {
				return err
			}
			if err := a.lib.Remove(def.kind, item.ID); err != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "Deleted %s\n", item.Name)
			return nil
		},
	}

	findCmd := &cobra.Command{
		Use:   "find <query>",
		Short: "Fuzzy search by name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.Close()
			items := a.lib.Find(def.kind, strings.Join(args, " "))
			return cli.PrintItems(os.Stdout, items, flagOutput)
		},
	}
	findCmd.Flags().StringVarP(&flagOutput, "output", "o", "text", "Output format (text/json/yaml)")

	cmd.AddCommand(listCmd, addCmd, rmCmd, findCmd)
	return cmd
}

func printCollection(w io.Writer, lib *library.Library, kind library.Kind, format string) error {
	switch kind {
	case library.KindURL:
		return cli.PrintURLs(w, lib.URLs(), format)
	case library.KindSnippet:
		return cli.PrintSnippets(w, lib.Snippets(), format)
	default:
		return cli.PrintTemplates(w, lib.Templates(), format)
	}
}

// selectItem resolves an exact name or ID, or shows a picker without one.
// Fuzzy matches are suggested, never deleted.
func selectItem(lib *library.Library, kind library.Kind, args []string) (library.Item, error) {
	if len(args) == 0 {
		if !isTerminal(os.Stdin) {
			return library.Item{}, fmt.Errorf("name or ID required (non-interactive mode)")
		}
		return cli.PickItem(fmt.Sprintf("Delete which %s?", kind), lib.Items(kind))
	}

	ref := args[0]
	item, err := lib.Resolve(kind, ref)
	if err != nil {
		return library.Item{}, err
	}
	if item.ID != ref && !strings.EqualFold(item.Name, ref) {
		return library.Item{}, fmt.Errorf("no %s named %q (did you mean %q?)", kind, ref, item.Name)
	}
	return item, nil
}

func addURL(a *app, args []string) (string, error) {
	answers := cli.URLAnswers{Secure: flagAddSecure}
	if len(args) > 0 {
		answers.URL = args[0]
	}
	if len(args) > 1 {
		answers.Label = args[1]
	}
	if answers.URL == "" {
		if !isTerminal(os.Stdin) {
			return "", fmt.Errorf("URL required (non-interactive mode)")
		}
		if err := cli.PromptURL(&answers); err != nil {
			return "", err
		}
	}

	saved, err := a.lib.AddURL(answers.Label, answers.URL, answers.Secure)
	if err != nil {
		return "", err
	}
	return saved.Label, nil
}

// payloadAnswers fills name and content from arguments, "-" reading content
// from stdin, and prompts for the rest when interactive
func payloadAnswers(args []string, withDescription bool) (cli.PayloadAnswers, error) {
	answers := cli.PayloadAnswers{Type: flagPayloadType, Description: flagDescription}
	if len(args) > 0 {
		answers.Name = args[0]
	}
	if len(args) > 1 {
		answers.Content = args[1]
		if answers.Content == "-" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return answers, fmt.Errorf("failed to read from stdin: %w", err)
			}
			answers.Content = strings.TrimRight(string(data), "\n")
		}
	}

	if answers.Name == "" || answers.Content == "" {
		if !isTerminal(os.Stdin) {
			return answers, fmt.Errorf("name and content required (non-interactive mode)")
		}
		if err := cli.PromptPayload(&answers, withDescription); err != nil {
			return answers, err
		}
	}
	return answers, nil
}

func addSnippet(a *app, args []string) (string, error) {
	answers, err := payloadAnswers(args, false)
	if err != nil {
		return "", err
	}
	s, err := a.lib.AddSnippet(answers.Name, answers.Content, answers.Type)
	if err != nil {
		return "", err
	}
	return s.Name, nil
}

func addTemplate(a *app, args []string) (string, error) {
	answers, err := payloadAnswers(args, true)
	if err != nil {
		return "", err
	}
	t, err := a.lib.AddTemplate(answers.Name, answers.Content, answers.Type, answers.Description)
	if err != nil {
		return "", err
	}
	return t.Name, nil
}
