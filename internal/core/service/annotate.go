package service

import (
	"strings"
)

// HypothesisNote is one hypothesis statement found in step text, together
// with the engineer the text names for it.
type HypothesisNote struct {
	Text     string
	Engineer string
}

// Annotator extracts diagnostic signals from free-form step text.
//
// @design DS-0104
type Annotator interface {
	// Components returns the component names marked in the text.
	Components(text string) []string

	// Hypotheses returns the hypothesis statements in the text. Each note
	// carries the engineer named by an engineer marker in the same text,
	// or "Unknown" when no marker names one.
	Hypotheses(text string) []HypothesisNote
}

// Markers are matched case-insensitively against each line; they are held
// lowercase and compared to the case-folded line. Both English and Spanish
// forms appear in recorded sessions.
var (
	componentMarkers  = []string{"component:", "componente:"}
	hypothesisMarkers = []string{"hypothesis", "hipótesis"}
	engineerMarkers   = []string{"engineer:", "ingeniero:"}
)

// markerAnnotator is the default marker-based Annotator.
type markerAnnotator struct{}

// NewMarkerAnnotator returns the marker-based Annotator used by the
// reconstructor.
func NewMarkerAnnotator() Annotator {
	return markerAnnotator{}
}

// Components scans each line for a component marker and returns the
// trimmed value after the marker. Markdown emphasis around the marker is
// stripped, so "**Component:** api-gateway" yields "api-gateway".
func (markerAnnotator) Components(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		if value := markerValue(line, componentMarkers); value != "" {
			out = append(out, value)
		}
	}
	return out
}

// Hypotheses returns every line containing a hypothesis marker, trimmed,
// each attributed to the engineer the text itself names.
func (markerAnnotator) Hypotheses(text string) []HypothesisNote {
	engineer := markerEngineer(text)
	var out []HypothesisNote
	for _, line := range strings.Split(text, "\n") {
		lower := strings.ToLower(line)
		for _, marker := range hypothesisMarkers {
			if strings.Contains(lower, marker) {
				if trimmed := strings.TrimSpace(line); trimmed != "" {
					out = append(out, HypothesisNote{Text: trimmed, Engineer: engineer})
				}
				break
			}
		}
	}
	return out
}

// markerEngineer finds the first engineer marker in the text and returns
// its value, or Unknown when the text names nobody.
func markerEngineer(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if value := markerValue(line, engineerMarkers); value != "" {
			return value
		}
	}
	return unknownValue
}

// markerValue returns the trimmed value after the first matching marker in
// the line. Matching is case-insensitive; the value keeps its original
// casing.
func markerValue(line string, markers []string) string {
	lower := strings.ToLower(line)
	for _, marker := range markers {
		idx := strings.Index(lower, marker)
		if idx < 0 {
			continue
		}
		return strings.TrimSpace(strings.Trim(line[idx+len(marker):], "* \t"))
	}
	return ""
}
