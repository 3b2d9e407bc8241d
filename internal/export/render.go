package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/mohamed-kadi/invoice-combination-finder/internal/combination"
)

// Format names an output format of Render.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Formats lists every format Render accepts.
var Formats = []Format{FormatText, FormatJSON, FormatYAML, FormatCSV, FormatXLSX}

// ParseFormat accepts a format name in any case.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown format %q (expected one of text, json, yaml, csv, xlsx)", s)
}

// Extension returns the file extension for the format, with the dot.
func (f Format) Extension() string {
	switch f {
	case FormatText:
		return ".txt"
	case FormatYAML:
		return ".yaml"
	default:
		return "." + string(f)
	}
}

// Render writes o to w in the given format.
func Render(w io.Writer, o *combination.Outcome, format Format) error {
	switch format {
	case FormatText:
		return RenderText(w, o)
	case FormatJSON:
		return RenderJSON(w, o)
	case FormatYAML:
		return RenderYAML(w, o)
	case FormatCSV:
		return WriteCSV(w, o)
	case FormatXLSX:
		return WriteXLSX(w, o)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

// RenderJSON writes the structured view as indented JSON.
func RenderJSON(w io.Writer, o *combination.Outcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewView(o))
}

// RenderYAML writes the structured view as YAML.
func RenderYAML(w io.Writer, o *combination.Outcome) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(NewView(o)); err != nil {
		return err
	}
	return enc.Close()
}

// RenderText writes a short human-readable report.
func RenderText(w io.Writer, o *combination.Outcome) error {
	if o.Count() == 0 {
		_, err := fmt.Fprintln(w, "No combinations found.")
		return err
	}

	if _, err := fmt.Fprintf(w, "Found %d combination(s):\n", o.Count()); err != nil {
		return err
	}
	for i := range o.Combinations {
		members := strings.ReplaceAll(Members(o, i), "; ", " + ")
		if _, err := fmt.Fprintf(w, "%4d. %s = %s\n", i+1, members, Plain(o.Total(i))); err != nil {
			return err
		}
	}
	return nil
}
