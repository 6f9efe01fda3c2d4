package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"gopkg.in/yaml.v3"

	"github.com/example/roombook-console/internal/application"
)

// Output formats accepted by --output.
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

func parseFormat(value string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(value)); f {
	case "", formatTable:
		return formatTable, nil
	case formatJSON, formatYAML:
		return f, nil
	}
	return "", usagef("unknown output format %q (want table, json, or yaml)", value)
}

// table is the tabular rendering of a command result.
type table struct {
	headers []string
	rows    [][]string
	footer  string
}

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	footerStyle = lipgloss.NewStyle().Faint(true)
	cellStyle   = lipgloss.NewStyle().PaddingRight(2)

	noticeStyles = map[application.NoticeLevel]lipgloss.Style{
		application.NoticeInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("12")),
		application.NoticeSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		application.NoticeWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		application.NoticeError:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
	}
)

// render writes value in format. The table form is built lazily since json
// and yaml never need it.
func render(w io.Writer, format string, value any, tbl func() table) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(value); err != nil {
			return err
		}
		return enc.Close()
	}
	_, err := io.WriteString(w, renderTable(tbl()))
	return err
}

func renderTable(t table) string {
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range t.rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	line := func(cells []string, style lipgloss.Style) string {
		rendered := make([]string, len(widths))
		for i := range widths {
			var cell string
			if i < len(cells) {
				cell = cells[i]
			}
			rendered[i] = cellStyle.Width(widths[i] + 2).Render(style.Render(cell))
		}
		return strings.TrimRight(lipgloss.JoinHorizontal(lipgloss.Top, rendered...), " ")
	}

	var b strings.Builder
	b.WriteString(line(t.headers, headerStyle))
	b.WriteByte('\n')
	for _, row := range t.rows {
		b.WriteString(line(row, lipgloss.NewStyle()))
		b.WriteByte('\n')
	}
	if t.footer != "" {
		b.WriteString(footerStyle.Render(t.footer))
		b.WriteByte('\n')
	}
	return b.String()
}

// printNotices writes the notices produced by a command, one per line.
func printNotices(w io.Writer, notices []application.Notice) {
	for _, n := range notices {
		style, ok := noticeStyles[n.Level]
		if !ok {
			style = lipgloss.NewStyle()
		}
		fmt.Fprintln(w, style.Render(fmt.Sprintf("[%s] %s", n.Level, n.Text)))
	}
}

// pageOutput is a list page as printed by roomctl.
type pageOutput[T any] struct {
	AdminUsername string             `json:"admin_username,omitempty" yaml:"admin_username,omitempty"`
	Filter        application.Filter `json:"filter" yaml:"filter"`
	Items         []T                `json:"items" yaml:"items"`
	Page          int                `json:"page" yaml:"page"`
	PageSize      int                `json:"page_size" yaml:"page_size"`
	TotalPages    int                `json:"total_pages" yaml:"total_pages"`
	TotalItems    int                `json:"total_items" yaml:"total_items"`
}

func newPageOutput[T any](admin string, filter application.Filter, page application.Page[T]) pageOutput[T] {
	return pageOutput[T]{
		AdminUsername: admin,
		Filter:        filter,
		Items:         page.Items,
		Page:          page.Number,
		PageSize:      page.Size,
		TotalPages:    page.TotalPages,
		TotalItems:    page.TotalItems,
	}
}

func pageFooter(page int, totalPages, totalItems, size int, filter application.Filter) string {
	footer := fmt.Sprintf("page %d of %d, %d items, %d per page", page, totalPages, totalItems, size)
	if strings.TrimSpace(filter.Text) != "" {
		footer += fmt.Sprintf(", filtered by %q", filter.Text)
	}
	return footer
}
