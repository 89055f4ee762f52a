// Package output provides output formatting for the sessiondx CLI.
package output

import (
	"encoding/json"
	"io"

	"github.com/jperezcano/sessiondx-go/internal/core/domain"
	"github.com/jperezcano/sessiondx-go/internal/core/service"
)

// Format represents the output format.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// Formatter formats data for output.
type Formatter interface {
	Format(w io.Writer, data any) error
}

// NewFormatter creates a formatter for the given format. Unknown formats
// fall back to text.
func NewFormatter(format Format) Formatter {
	if format == FormatJSON {
		return &JSONFormatter{}
	}
	return &TextFormatter{}
}

// JSONFormatter formats data as indented JSON.
type JSONFormatter struct{}

// Format writes data as indented JSON.
func (f *JSONFormatter) Format(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// TextFormatter renders the domain types this CLI prints. Types without a
// dedicated renderer fall back to JSON so nothing is ever silently dropped.
type TextFormatter struct{}

// Format writes data in human-readable form.
func (f *TextFormatter) Format(w io.Writer, data any) error {
	switch v := data.(type) {
	case *domain.DiagnosticContext:
		return RenderContext(w, v)
	case *domain.Session:
		return RenderSession(w, v)
	case *service.ProbeReport:
		return RenderProbeReport(w, v)
	case *Table:
		return v.Render(w)
	default:
		return (&JSONFormatter{}).Format(w, data)
	}
}
