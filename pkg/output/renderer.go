// Package output renders sync results for the terminal. Text output is
// styled with lipgloss when stdout is a terminal; json and yaml formats
// are machine-readable.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
	"gopkg.in/yaml.v3"

	"github.com/drivesync/drivesync/pkg/errors"
	"github.com/drivesync/drivesync/pkg/sync"
)

// Output formats accepted by the renderer.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
)

var (
	actionStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	dryRunStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	remoteIDStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	summaryStyle   = lipgloss.NewStyle().Bold(true)
	ambiguousStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("13"))
)

// Renderer writes sync results to a writer in a chosen format.
type Renderer struct {
	writer  io.Writer
	noColor bool
}

// NewRenderer creates a renderer for w. Color is enabled only when w is
// a terminal.
func NewRenderer(w io.Writer) *Renderer {
	noColor := true
	if f, ok := w.(*os.File); ok {
		noColor = !isatty.IsTerminal(f.Fd()) || termenv.EnvNoColor()
	}
	return &Renderer{writer: w, noColor: noColor}
}

// Render writes results in the given format.
func (r *Renderer) Render(results []sync.Result, format string) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(r.writer)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	case FormatYAML:
		return yaml.NewEncoder(r.writer).Encode(results)
	case FormatText, "":
		r.renderText(results)
		return nil
	default:
		return errors.Newf(errors.ErrInvalidInput,
			"unknown output format %q (want text, json, or yaml)", format)
	}
}

func (r *Renderer) renderText(results []sync.Result) {
	failures := 0
	for _, res := range results {
		if res.Failed() {
			failures++
			fmt.Fprintf(r.writer, "%s  %s  %s\n",
				r.style(errorStyle, "error"), res.Path, res.Error)
			continue
		}

		line := fmt.Sprintf("%s  %s", r.styleAction(res.Action), res.Path)
		if res.RemoteID != "" {
			line += "  " + r.style(remoteIDStyle, res.RemoteID)
		}
		if res.AmbiguousMatches > 0 {
			line += "  " + r.style(ambiguousStyle,
				fmt.Sprintf("(%d ambiguous)", res.AmbiguousMatches))
		}
		fmt.Fprintln(r.writer, line)
	}

	fmt.Fprintln(r.writer, r.style(summaryStyle,
		fmt.Sprintf("%d file(s) processed, %d failed", len(results), failures)))
}

func (r *Renderer) styleAction(a sync.Action) string {
	switch a {
	case sync.ActionDryRunCreate, sync.ActionDryRunUpdate, sync.ActionDryRunCreateNew:
		return r.style(dryRunStyle, string(a))
	default:
		return r.style(actionStyle, string(a))
	}
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if r.noColor {
		return text
	}
	return s.Render(text)
}
