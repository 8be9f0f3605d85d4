package changelog

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/term"
)

// categoryStyle defines the color and icon for a changelog category.
type categoryStyle struct {
	color *color.Color
	icon  string
}

var categoryStyles = map[string]categoryStyle{
	"added":      {color: color.New(color.FgGreen), icon: "+"},
	"changed":    {color: color.New(color.FgBlue), icon: "~"},
	"deprecated": {color: color.New(color.FgYellow), icon: "!"},
	"removed":    {color: color.New(color.FgRed), icon: "-"},
	"fixed":      {color: color.New(color.FgCyan), icon: "*"},
	"security":   {color: color.New(color.FgMagenta), icon: "#"},
}

// FormatOptions controls terminal output formatting.
type FormatOptions struct {
	Plain    bool // Disable colors and icons
	MaxWidth int  // Maximum line width (0 = auto-detect)
}

// FormatVersion writes a single version's entries to the writer with
// terminal styling.
func FormatVersion(v *Version, w io.Writer, opts FormatOptions) error {
	width := resolveWidth(opts.MaxWidth)

	if err := writeVersionHeader(v, w, opts); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	changes := v.Changes
	for _, cat := range changes.byCategory() {
		if len(*cat.Entries) == 0 {
			continue
		}
		if err := writeCategorySection(cat.Name, *cat.Entries, w, opts, width); err != nil {
			return err
		}
	}
	return nil
}

// FormatEntries writes a flat entry list grouped by version.
func FormatEntries(entries []Entry, w io.Writer, opts FormatOptions) error {
	if len(entries) == 0 {
		return nil
	}

	width := resolveWidth(opts.MaxWidth)
	currentVersion := ""

	for _, e := range entries {
		if e.Version != currentVersion {
			if currentVersion != "" {
				fmt.Fprintln(w)
			}
			currentVersion = e.Version
			header := &Version{Version: e.Version}
			if err := writeVersionHeader(header, w, opts); err != nil {
				return err
			}
		}
		if err := writeEntry(e, w, opts, width); err != nil {
			return err
		}
	}
	return nil
}

func writeVersionHeader(v *Version, w io.Writer, opts FormatOptions) error {
	var header string
	switch {
	case v.IsUnreleased():
		header = "Unreleased"
	case v.Date != "":
		header = fmt.Sprintf("v%s (%s)", v.Version, v.Date)
	default:
		header = "v" + v.Version
	}

	if opts.Plain {
		_, err := fmt.Fprintf(w, "## %s\n", header)
		return err
	}
	bold := color.New(color.Bold).SprintFunc()
	_, err := fmt.Fprintf(w, "## %s\n", bold(header))
	return err
}

func writeCategorySection(category string, texts []string, w io.Writer, opts FormatOptions, width int) error {
	style := categoryStyles[category]

	if opts.Plain {
		if _, err := fmt.Fprintf(w, "\n### %s\n", titleCase(category)); err != nil {
			return err
		}
	} else {
		colored := style.color.SprintFunc()
		if _, err := fmt.Fprintf(w, "\n%s %s\n", colored(style.icon), colored(titleCase(category))); err != nil {
			return err
		}
	}

	for _, text := range texts {
		if err := writeEntry(Entry{Text: text, Category: category}, w, opts, width); err != nil {
			return err
		}
	}
	return nil
}

func writeEntry(entry Entry, w io.Writer, opts FormatOptions, width int) error {
	prefix := "  - "
	if opts.Plain {
		_, err := fmt.Fprintf(w, "%s%s\n", prefix, entry.Text)
		return err
	}

	style := categoryStyles[entry.Category]
	colored := style.color.SprintFunc()
	wrapped := wrapText(entry.Text, width-len(prefix), "    ")
	_, err := fmt.Fprintf(w, "%s%s\n", prefix, colored(wrapped))
	return err
}

func resolveWidth(maxWidth int) int {
	if maxWidth > 0 {
		return maxWidth
	}
	if w, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 {
		return w
	}
	return 80
}

// wrapText wraps text to fit within maxWidth, using indent for continuation lines.
func wrapText(text string, maxWidth int, indent string) string {
	if maxWidth <= 0 || len(text) <= maxWidth {
		return text
	}

	var lines []string
	remaining := text

	for len(remaining) > maxWidth {
		breakPoint := maxWidth
		for i := maxWidth - 1; i > 0; i-- {
			if remaining[i] == ' ' {
				breakPoint = i
				break
			}
		}
		lines = append(lines, remaining[:breakPoint])
		remaining = strings.TrimLeft(remaining[breakPoint:], " ")
	}
	if len(remaining) > 0 {
		lines = append(lines, remaining)
	}
	return strings.Join(lines, "\n"+indent)
}
