package cli

import (
	"errors"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/studiowebux/wsprobe/internal/payload"
	"github.com/studiowebux/wsprobe/internal/types"
)

// URLAnswers holds the fields of the add-URL form
type URLAnswers struct {
	Label  string
	URL    string
	Secure bool
}

// PayloadAnswers holds the fields of the add-snippet and add-template forms
type PayloadAnswers struct {
	Name        string
	Type        string
	Content     string
	Description string
}

func required(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return errors.New(field + " is required")
		}
		return nil
	}
}

// PromptURL asks for a URL to save. Values already set are used as defaults.
func PromptURL(a *URLAnswers) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("WebSocket URL").
				Placeholder("localhost:8080/ws").
				Value(&a.URL).
				Validate(required("URL")),
			huh.NewInput().
				Title("Label").
				Description("Defaults to the URL").
				Value(&a.Label),
			huh.NewConfirm().
				Title("Use wss:// when the URL has no scheme?").
				Value(&a.Secure),
		),
	)
	return runForm(form)
}

// PromptPayload asks for a snippet, or a template when withDescription is set
func PromptPayload(a *PayloadAnswers, withDescription bool) error {
	if a.Type == "" {
		a.Type = types.PayloadText
	}

	fields := []huh.Field{
		huh.NewInput().
			Title("Name").
			Value(&a.Name).
			Validate(required("name")),
		huh.NewSelect[string]().
			Title("Payload type").
			Options(
				huh.NewOption("Text", types.PayloadText),
				huh.NewOption("JSON", types.PayloadJSON),
			).
			Value(&a.Type),
		huh.NewText().
			Title("Content").
			Placeholder(`{"type": "ping"}`).
			Value(&a.Content).
			Validate(func(s string) error {
				if err := required("content")(s); err != nil {
					return err
				}
				if a.Type == types.PayloadJSON {
					_, err := payload.Canonicalize(s)
					return err
				}
				return nil
			}),
	}
	if withDescription {
		fields = append(fields, huh.NewInput().
			Title("Description").
			Value(&a.Description))
	}

	return runForm(huh.NewForm(huh.NewGroup(fields...)))
}

func runForm(form *huh.Form) error {
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrCancelled
		}
		return err
	}
	return nil
}
