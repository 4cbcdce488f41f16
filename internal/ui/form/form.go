// Package form holds the huh plumbing shared by every view that collects
// input.
package form

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/cloudconsole/internal/theme"
)

// Step forwards msg to f and returns the updated form together with its
// state after the update.
func Step(f *huh.Form, msg tea.Msg) (*huh.Form, tea.Cmd, huh.FormState) {
	if f == nil {
		return nil, nil, huh.StateAborted
	}

	mdl, cmd := f.Update(msg)
	if updated, ok := mdl.(*huh.Form); ok {
		f = updated
	}
	return f, cmd, f.State
}

// Width clamps the available width to a comfortable form width.
func Width(available int) int {
	w := available - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

// New builds a single-group form sized for the given content width.
func New(width int, fields ...huh.Field) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(Width(width)).WithShowHelp(true)
}

// View renders f under a title, padded to fill the content area.
func View(title string, f *huh.Form, width, height int) string {
	if f == nil {
		return ""
	}

	content := theme.TitleStyle.Render(title) + "\n" + f.View()

	return lipgloss.NewStyle().
		Padding(1, 2).
		Width(width).
		Height(height).
		Render(content)
}

// Required rejects blank input.
func Required(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}

// URL accepts an absolute URL with one of the given schemes.
func URL(schemes ...string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("URL is required")
		}
		parsed, err := url.Parse(s)
		if err != nil {
			return fmt.Errorf("invalid URL: %w", err)
		}
		if parsed.Scheme == "" || parsed.Host == "" {
			return fmt.Errorf("URL must include scheme and host (e.g., %s://example.com)", schemes[0])
		}
		for _, scheme := range schemes {
			if parsed.Scheme == scheme {
				return nil
			}
		}
		return fmt.Errorf("URL scheme must be one of %s", strings.Join(schemes, ", "))
	}
}

// NonNegativeInt accepts a blank string (read as zero) or a whole number
// no greater than max.
func NonNegativeInt(fieldName string, max int) func(string) error {
	return IntRange(fieldName, 0, max)
}

// IntRange accepts a blank string (left to the caller's default) or a
// whole number between min and max inclusive.
func IntRange(fieldName string, min, max int) func(string) error {
	return func(s string) error {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < 0 {
			return fmt.Errorf("%s must be a whole number", fieldName)
		}
		if n < min {
			return fmt.Errorf("%s must be at least %d", fieldName, min)
		}
		if n > max {
			return fmt.Errorf("%s must be at most %d", fieldName, max)
		}
		return nil
	}
}

// Atoi reads a field validated by NonNegativeInt or IntRange.
func Atoi(s string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(s))
	return n
}
