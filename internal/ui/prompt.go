package ui

import (
	"fmt"
	"strings"

	"uproot/pkg/inventory"

	"github.com/manifoldco/promptui"
)

// Confirm prompts the user for yes/no confirmation.
func Confirm(prompt string, defaultYes bool) (bool, error) {
	label := prompt
	if defaultYes {
		label += " [Y/n]"
	} else {
		label += " [y/N]"
	}

	p := promptui.Prompt{
		Label:     label,
		IsConfirm: true,
	}
	if defaultYes {
		p.Default = "y"
	}

	result, err := p.Run()
	if err != nil {
		if err == promptui.ErrAbort {
			return false, nil
		}
		return defaultYes, nil // Return default on error
	}

	result = strings.ToLower(strings.TrimSpace(result))
	if result == "" {
		return defaultYes, nil
	}

	return result == "y" || result == "yes", nil
}

// SelectEntry prompts the user to pick one inventory entry, used when an
// identifier is installed through more than one backend.
func SelectEntry(entries []inventory.Entry, prompt string) (*inventory.Entry, error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("no packages to select from")
	}

	if len(entries) == 1 {
		return &entries[0], nil
	}

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ .Identifier | cyan }} {{ .Version | green }} [{{ .Kind | magenta }}]",
		Inactive: "  {{ .Identifier }} {{ .Version | faint }} [{{ .Kind | faint }}]",
		Selected: "✓ {{ .Identifier | cyan }} {{ .Version | green }} [{{ .Kind | magenta }}]",
		Details: `
--------- Package ----------
{{ "Name:" | faint }}	{{ .DisplayName }}
{{ "Identifier:" | faint }}	{{ .Identifier }}
{{ "Version:" | faint }}	{{ .Version }}
{{ "Backend:" | faint }}	{{ .Kind }}`,
	}

	searcher := func(input string, index int) bool {
		entry := entries[index]
		name := strings.ToLower(entry.Identifier)
		input = strings.ToLower(input)
		return strings.Contains(name, input)
	}

	p := promptui.Select{
		Label:     prompt,
		Items:     entries,
		Templates: templates,
		Size:      10,
		Searcher:  searcher,
	}

	index, _, err := p.Run()
	if err != nil {
		return nil, err
	}

	return &entries[index], nil
}

// Input prompts the user for text input.
func Input(prompt string, defaultValue string) (string, error) {
	p := promptui.Prompt{
		Label:   prompt,
		Default: defaultValue,
	}
	return p.Run()
}
