// Package report renders a run's findings as text, JSON or YAML.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ralt/rpmaudit/internal/result"
	"github.com/ralt/rpmaudit/internal/utils"
)

// Format is an output encoding
type Format int

const (
	FormatText Format = iota
	FormatJSON
	FormatYAML
)

// String returns the string representation of Format
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatYAML:
		return "yaml"
	default:
		return "text"
	}
}

// ParseFormat converts a format name to a Format
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "", "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return FormatText, fmt.Errorf("unknown output format %q", name)
	}
}

// InspectionResult is the pass/fail outcome of one inspection
type InspectionResult struct {
	Name   string `json:"name" yaml:"name"`
	Passed bool   `json:"passed" yaml:"passed"`
}

// Document is everything written for one run
type Document struct {
	Before      []string           `json:"before,omitempty" yaml:"before,omitempty"`
	After       []string           `json:"after" yaml:"after"`
	Product     string             `json:"product,omitempty" yaml:"product,omitempty"`
	Inspections []InspectionResult `json:"inspections" yaml:"inspections"`
	Worst       result.Severity    `json:"worst" yaml:"worst"`
	Findings    []result.Finding   `json:"findings" yaml:"findings"`
}

// Write encodes doc to w in the given format
func Write(w io.Writer, doc *Document, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode JSON report: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("failed to encode YAML report: %w", err)
		}
		return enc.Close()
	default:
		return writeText(w, doc)
	}
}

// WriteFile writes doc to path
func WriteFile(path string, doc *Document, format Format) error {
	var buf bytes.Buffer
	if err := Write(&buf, doc, format); err != nil {
		return err
	}
	return utils.WriteFile(path, buf.Bytes(), 0644)
}

// ExitCode maps the worst severity to a process exit status
func ExitCode(worst, threshold result.Severity) int {
	if worst >= threshold && worst > result.OK {
		return 1
	}
	return 0
}

func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, l := range lines {
		if l != "" {
			lines[i] = prefix + l
		}
	}
	return strings.Join(lines, "\n")
}

func writeText(w io.Writer, doc *Document) error {
	var b strings.Builder

	if len(doc.Before) > 0 {
		fmt.Fprintf(&b, "Before: %s\n", strings.Join(doc.Before, ", "))
	}
	fmt.Fprintf(&b, "After:  %s\n", strings.Join(doc.After, ", "))
	if doc.Product != "" {
		fmt.Fprintf(&b, "Product release: %s\n", doc.Product)
	}

	current := ""
	n := 0
	for _, f := range doc.Findings {
		if f.Inspection != current {
			current = f.Inspection
			n = 0
			fmt.Fprintf(&b, "\n%s:\n%s\n", current, strings.Repeat("-", len(current)+1))
		}

		n++
		msg := f.Message
		if msg == "" {
			msg = "No problems found."
		}
		fmt.Fprintf(&b, "\n%d) %s\n\n", n, msg)
		fmt.Fprintf(&b, "   Result: %s\n", f.Severity)
		fmt.Fprintf(&b, "   Waiver Authorization: %s\n", f.Waiver)
		if f.Details != "" {
			fmt.Fprintf(&b, "\n   Details:\n%s\n", indent(f.Details, "   "))
		}
		if f.Remedy != "" {
			fmt.Fprintf(&b, "\n   Suggested Remedy:\n%s\n", indent(f.Remedy, "   "))
		}
	}

	fmt.Fprintf(&b, "\nOverall result: %s\n", doc.Worst)

	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}
