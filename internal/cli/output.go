package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/pfrederiksen/grantflow/internal/grant"
	"github.com/pfrederiksen/grantflow/internal/site"
)

// OutputFormat specifies the output format
type OutputFormat string

const (
	FormatText  OutputFormat = "text"
	FormatJSON  OutputFormat = "json"
	FormatTable OutputFormat = "table"
)

// titleWidthMax keeps table rows on one line for long titles
const titleWidthMax = 60

// ParseOutputFormat validates a --format value
func ParseOutputFormat(s string) (OutputFormat, error) {
	format := OutputFormat(strings.ToLower(strings.TrimSpace(s)))
	switch format {
	case FormatText, FormatJSON, FormatTable:
		return format, nil
	default:
		return "", fmt.Errorf("invalid format: %s (must be 'text', 'json' or 'table')", s)
	}
}

// OutputResult contains data to be output
type OutputResult struct {
	GeneratedAt time.Time      `json:"generated_at"`
	Filter      string         `json:"filter,omitempty"`
	Sort        SortOrder      `json:"sort"`
	Count       int            `json:"count"`
	Grants      []*grant.Grant `json:"grants"`
}

// WriteOutput writes the result in the specified format
func WriteOutput(w io.Writer, result *OutputResult, format OutputFormat, verbose bool) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, result)
	case FormatText:
		return writeText(w, result, verbose)
	case FormatTable:
		return writeTable(w, result, verbose)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// writeJSON outputs results as JSON
func writeJSON(w io.Writer, result *OutputResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

// writeText outputs results as human-readable text
func writeText(w io.Writer, result *OutputResult, verbose bool) error {
	if result.Count == 0 {
		fmt.Fprintln(w, "No grants found.")
		return nil
	}

	for _, g := range result.Grants {
		fmt.Fprintf(w, "[%s] %s\n", nicheLabel(g), g.Title)
		fmt.Fprintf(w, "     Amount: %s | Deadline: %s\n", site.FormatAmount(g.Amount), deadlineText(g))
		if verbose {
			if g.Source != "" {
				fmt.Fprintf(w, "     Source: %s\n", g.Source)
			}
			fmt.Fprintf(w, "     Link: %s\n", g.Link)
			if g.Eligibility != "" {
				fmt.Fprintf(w, "     Eligibility: %s\n", g.Eligibility)
			}
			if g.TLDR != "" {
				fmt.Fprintf(w, "     TL;DR: %s\n", g.TLDR)
			} else if g.Summary != "" {
				fmt.Fprintf(w, "     Summary: %s\n", g.Summary)
			}
		}
	}

	fmt.Fprintf(w, "\nTotal: %d grants\n", result.Count)
	if result.Filter != "" {
		fmt.Fprintf(w, "Filter: %s\n", result.Filter)
	}

	return nil
}

// writeTable outputs results as a table
func writeTable(w io.Writer, result *OutputResult, verbose bool) error {
	if result.Count == 0 {
		fmt.Fprintln(w, "No grants found.")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := table.Row{"Niche", "Title", "Amount", "Deadline", "Source"}
	if verbose {
		header = append(header, "Link")
	}
	t.AppendHeader(header)
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Title", WidthMax: titleWidthMax},
	})

	for _, g := range result.Grants {
		row := table.Row{nicheLabel(g), g.Title, site.FormatAmount(g.Amount), deadlineText(g), g.Source}
		if verbose {
			row = append(row, g.Link)
		}
		t.AppendRow(row)
	}

	t.AppendFooter(table.Row{"", fmt.Sprintf("Total: %d", result.Count)})
	t.Render()

	return nil
}

func nicheLabel(g *grant.Grant) string {
	if g.Niche == "" {
		return "-"
	}
	return g.Niche
}

func deadlineText(g *grant.Grant) string {
	if strings.TrimSpace(g.Deadline) == "" {
		return site.DeadlineUnknown
	}
	return g.Deadline
}
