// Package report renders manifest diffs for people and machines.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/dharmarajatulya1-hub/sdkdrift/internal/qualitygate"
	"github.com/dharmarajatulya1-hub/sdkdrift/internal/snapshot"
)

// Format selects a renderer.
type Format string

const (
	FormatTerminal Format = "terminal"
	FormatMarkdown Format = "markdown"
	FormatJSON     Format = "json"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatTerminal, FormatMarkdown, FormatJSON:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	case "":
		return FormatTerminal, nil
	default:
		return "", fmt.Errorf("unknown report format %q (want terminal, markdown or json)", s)
	}
}

// Report is everything a renderer needs.
type Report struct {
	Diff  *snapshot.ManifestDiff      `json:"diff"`
	Gates *qualitygate.PipelineResult `json:"gates,omitempty"`
}

// Options tune rendering.
type Options struct {
	// Color enables ANSI colors in terminal output.
	Color bool
}

// Render writes r in the given format.
func Render(w io.Writer, r *Report, format Format, opts Options) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case FormatMarkdown:
		return renderMarkdown(w, r)
	default:
		return renderTerminal(w, r, opts)
	}
}

type palette struct {
	high, medium, low, ok, bold *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		high:   color.New(color.FgRed, color.Bold),
		medium: color.New(color.FgYellow, color.Bold),
		low:    color.New(color.FgCyan),
		ok:     color.New(color.FgGreen, color.Bold),
		bold:   color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.high, p.medium, p.low, p.ok, p.bold} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p palette) severity(s snapshot.Severity) *color.Color {
	switch s {
	case snapshot.SeverityHigh:
		return p.high
	case snapshot.SeverityMedium:
		return p.medium
	default:
		return p.low
	}
}

func renderTerminal(w io.Writer, r *Report, opts Options) error {
	p := newPalette(opts.Color)
	d := r.Diff

	p.bold.Fprintf(w, "SDK surface drift")
	if d.OldRef != "" || d.NewRef != "" {
		fmt.Fprintf(w, " (%s -> %s)", d.OldRef, d.NewRef)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Methods: %d -> %d (+%d / -%d, %d changed)\n",
		d.OldCount, d.NewCount, d.Summary.MethodsAdded, d.Summary.MethodsRemoved, d.Summary.MethodsChanged)

	if len(d.Findings) == 0 {
		p.ok.Fprintln(w, "No drift detected.")
	} else {
		fmt.Fprintf(w, "Findings: %d high, %d medium, %d low\n", d.Summary.High, d.Summary.Medium, d.Summary.Low)
		for _, f := range d.Findings {
			p.severity(f.Severity).Fprintf(w, "  %-6s", strings.ToUpper(string(f.Severity)))
			fmt.Fprintf(w, " %-20s %s\n", f.Kind, f.Message)
		}
	}

	scoreColor := p.ok
	if d.Breaking() {
		scoreColor = p.high
	}
	fmt.Fprint(w, "Score: ")
	scoreColor.Fprintf(w, "%.1f", d.Score)
	fmt.Fprintln(w)

	if r.Gates != nil && len(r.Gates.Gates) > 0 {
		fmt.Fprintln(w)
		fmt.Fprint(w, qualitygate.FormatReport(r.Gates))
	}
	return nil
}

func renderMarkdown(w io.Writer, r *Report) error {
	d := r.Diff
	var b strings.Builder

	b.WriteString("## SDK surface drift\n\n")
	if d.OldRef != "" || d.NewRef != "" {
		fmt.Fprintf(&b, "Comparing `%s` to `%s`.\n\n", d.OldRef, d.NewRef)
	}
	b.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(&b, "| Methods before | %d |\n", d.OldCount)
	fmt.Fprintf(&b, "| Methods after | %d |\n", d.NewCount)
	fmt.Fprintf(&b, "| Added | %d |\n", d.Summary.MethodsAdded)
	fmt.Fprintf(&b, "| Removed | %d |\n", d.Summary.MethodsRemoved)
	fmt.Fprintf(&b, "| Changed | %d |\n", d.Summary.MethodsChanged)
	fmt.Fprintf(&b, "| Score | %.1f |\n\n", d.Score)

	if len(d.Findings) == 0 {
		b.WriteString("No drift detected.\n")
	} else {
		b.WriteString("| Severity | Kind | Method | Parameter | Detail |\n|---|---|---|---|---|\n")
		for _, f := range d.Findings {
			detail := f.Message
			if f.Old != "" || f.New != "" {
				detail = fmt.Sprintf("`%s` → `%s`", f.Old, f.New)
			}
			fmt.Fprintf(&b, "| %s | %s | `%s` | %s | %s |\n",
				f.Severity, f.Kind, f.MethodID, escapeCell(f.Param), escapeCell(detail))
		}
	}

	if r.Gates != nil && len(r.Gates.Gates) > 0 {
		b.WriteString("\n### Gates\n\n")
		for _, g := range r.Gates.Gates {
			mark := "x"
			if g.Status != qualitygate.GatePassed {
				mark = " "
			}
			fmt.Fprintf(&b, "- [%s] **%s** (%s): %s\n", mark, g.Name, g.Status, g.Message)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
