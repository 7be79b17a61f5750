// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The rapval Authors

package report

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/evidencepub/rapval/internal/violation"
	"github.com/goccy/go-json"
)

// WriteJSON writes r as indented JSON followed by a newline.
func WriteJSON(w io.Writer, r *Report) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	data = append(data, '\n')
	_, err = w.Write(data)
	return err
}

type styles struct {
	pass, fail, err, warn, path, rule lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		pass: r.NewStyle().Foreground(lipgloss.Color("#27ca3f")).Bold(true),
		fail: r.NewStyle().Foreground(lipgloss.Color("#ff5f56")).Bold(true),
		err:  r.NewStyle().Foreground(lipgloss.Color("#ff5f56")),
		warn: r.NewStyle().Foreground(lipgloss.Color("#f9ca24")),
		path: r.NewStyle().Bold(true),
		rule: r.NewStyle().Foreground(lipgloss.Color("#bababa")),
	}
}

// WriteText writes one line per violation (severity, path, rule, message)
// and a summary line. Colors are only emitted when w is a terminal.
func WriteText(w io.Writer, r *Report) error {
	st := newStyles(w)

	verdict := st.pass.Render("PASS")
	if !r.Pass {
		verdict = st.fail.Render("FAIL")
	}
	if _, err := fmt.Fprintf(w, "%s %s\n", verdict, r.Document); err != nil {
		return err
	}

	for _, v := range r.Violations {
		sev := st.err.Render(fmt.Sprintf("%-7s", v.Severity))
		if v.Severity == violation.Warning {
			sev = st.warn.Render(fmt.Sprintf("%-7s", v.Severity))
		}
		if _, err := fmt.Fprintf(w, "  %s %s %s %s\n", sev, st.path.Render(v.Path),
			st.rule.Render("["+string(v.Rule)+"]"), v.Message); err != nil {
			return err
		}
	}

	summary := fmt.Sprintf("%s: %d error(s), %d warning(s)", r.Schema, r.Errors, r.Warnings)
	if r.Strict {
		summary += " (strict)"
	}
	_, err := fmt.Fprintln(w, st.rule.Render(summary))
	return err
}
