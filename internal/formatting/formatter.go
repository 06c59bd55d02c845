// Package formatting renders CLI results as tables, JSON or YAML.
package formatting

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"gopkg.in/yaml.v3"

	"cfuaa/internal/config"
	"cfuaa/internal/principal"
	"cfuaa/internal/uaa"
)

// OutputFormat selects how results are written.
type OutputFormat string

const (
	FormatTable OutputFormat = "table"
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
)

// ParseFormat accepts table, json or yaml.
func ParseFormat(s string) (OutputFormat, error) {
	switch f := OutputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatJSON, FormatYAML:
		return f, nil
	case "":
		return FormatTable, nil
	default:
		return "", fmt.Errorf("unknown output format %q (use table, json or yaml)", s)
	}
}

// Printer writes results to an io.Writer.
type Printer struct {
	out    io.Writer
	format OutputFormat
}

// NewPrinter creates a Printer.
func NewPrinter(out io.Writer, format OutputFormat) *Printer {
	return &Printer{out: out, format: format}
}

func (p *Printer) createTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(p.out)
	t.SetStyle(table.StyleRounded)
	return t
}

func header(cols ...string) table.Row {
	row := make(table.Row, len(cols))
	for i, c := range cols {
		row[i] = text.FgHiCyan.Sprint(c)
	}
	return row
}

func (p *Printer) structured(v any) (bool, error) {
	switch p.format {
	case FormatJSON:
		enc := json.NewEncoder(p.out)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(p.out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	default:
		return false, nil
	}
}

// Principal prints a principal and its authorities.
func (p *Printer) Principal(pr *principal.Principal) error {
	if done, err := p.structured(pr); done {
		return err
	}

	t := p.createTable()
	t.AppendHeader(header("FIELD", "VALUE"))
	t.AppendRow(table.Row{"Name", pr.Name})
	if pr.UserID != "" {
		t.AppendRow(table.Row{"User ID", pr.UserID})
	}
	if pr.DisplayName != "" {
		t.AppendRow(table.Row{"Display name", pr.DisplayName})
	}
	t.AppendRow(table.Row{"Authorities", strings.Join(pr.Authorities, "\n")})
	t.Render()
	return nil
}

// organizationsView is the structured form of an organization listing.
type organizationsView struct {
	Organizations []string `json:"organizations" yaml:"organizations"`
	TotalResults  int      `json:"totalResults" yaml:"totalResults"`
	TotalPages    int      `json:"totalPages" yaml:"totalPages"`
	Truncated     bool     `json:"truncated" yaml:"truncated"`
}

// Organizations prints an organization listing and warns when it was
// truncated to the first page.
func (p *Printer) Organizations(orgs *uaa.Organizations) error {
	view := organizationsView{
		Organizations: orgs.Names,
		TotalResults:  orgs.TotalResults,
		TotalPages:    orgs.TotalPages,
		Truncated:     orgs.Truncated(),
	}
	if view.Organizations == nil {
		view.Organizations = []string{}
	}
	if done, err := p.structured(view); done {
		return err
	}

	if len(orgs.Names) == 0 {
		fmt.Fprintln(p.out, text.FgYellow.Sprint("No active organizations found"))
		return nil
	}

	t := p.createTable()
	t.AppendHeader(header("#", "ORGANIZATION"))
	for i, name := range orgs.Names {
		t.AppendRow(table.Row{i + 1, name})
	}
	t.Render()

	if orgs.Truncated() {
		fmt.Fprintln(p.out, text.FgYellow.Sprintf("Only the first of %d pages was read", orgs.TotalPages))
	}
	return nil
}

// ConfigErrors prints every configuration problem with its suggestions.
func (p *Printer) ConfigErrors(errs []*config.ConfigurationError) error {
	if done, err := p.structured(errs); done {
		return err
	}

	t := p.createTable()
	t.AppendHeader(header("FIELD", "PROBLEM", "SUGGESTION"))
	for _, e := range errs {
		t.AppendRow(table.Row{
			text.FgHiRed.Sprint(e.Field),
			e.Message,
			strings.Join(e.Suggestions, "\n"),
		})
	}
	t.Render()
	return nil
}
