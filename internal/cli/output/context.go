// Package output provides output formatting for the sessiondx CLI.
package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/jperezcano/sessiondx-go/internal/core/domain"
)

// stepPreviewLimit bounds the step text excerpt shown in the timeline.
const stepPreviewLimit = 50

// RenderContext writes the human-readable diagnostic context report.
func RenderContext(w io.Writer, dc *domain.DiagnosticContext) error {
	fmt.Fprintln(w, "=== Diagnostic Context ===")
	fmt.Fprintln(w)

	info := &Table{}
	info.AddRow("Incident:", orDash(dc.Incident.IncidentID))
	info.AddRow("System:", orDash(dc.Incident.SystemAffected))
	info.AddRow("Severity:", orDash(dc.Incident.Severity))
	info.AddRow("Started:", formatTime(dc.Incident.StartedAt))
	info.AddRow("Status:", orDash(dc.Incident.Status))
	if err := info.Render(w); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nComponents tested (%d):\n", len(dc.ComponentsTested))
	for _, component := range dc.ComponentsTested {
		fmt.Fprintf(w, "  - %s\n", component)
	}

	fmt.Fprintf(w, "\nTimeline (%d entries):\n", len(dc.Timeline))
	for i, event := range dc.Timeline {
		fmt.Fprintf(w, "%3d. [%s] %s (engineer: %s)\n",
			i+1, formatTime(event.Timestamp), orDash(event.Description), event.Engineer)
		for _, step := range event.Steps {
			marker := ""
			if step.HasImages {
				marker = fmt.Sprintf(" [%d image(s)]", len(step.ImageRefs))
			}
			fmt.Fprintf(w, "     - [%s] %s%s\n",
				formatTime(step.Timestamp), preview(step.TextContent), marker)
		}
	}

	fmt.Fprintf(w, "\nHypotheses (%d):\n", len(dc.Hypotheses))
	for _, h := range dc.Hypotheses {
		fmt.Fprintf(w, "  - [%s] %s: %s\n", formatTime(h.Timestamp), h.Engineer, h.Text)
	}

	fmt.Fprintf(w, "\nScreenshots (%d):\n", len(dc.Screenshots))
	for _, shot := range dc.Screenshots {
		fmt.Fprintf(w, "  - [%s] step %s", formatTime(shot.Timestamp), truncateID(shot.StepID))
		if shot.AssociatedText != "" {
			fmt.Fprintf(w, ": %s", preview(shot.AssociatedText))
		}
		fmt.Fprintln(w)
	}

	return nil
}

// RenderSession writes the detail view of a session.
func RenderSession(w io.Writer, session *domain.Session) error {
	table := &Table{}
	table.AddRow("Session ID:", session.ID)
	table.AddRow("Status:", session.Status())
	table.AddRow("Created:", formatTime(session.CreatedAt))
	table.AddRow("Ended:", formatTime(session.EndedAt))
	table.AddRow("Incident:", orDash(session.Meta(domain.MetaIncidentID, "")))
	table.AddRow("System:", orDash(session.Meta(domain.MetaSystemAffected, "")))
	table.AddRow("Severity:", orDash(session.Meta(domain.MetaSeverity, "")))
	return table.Render(w)
}

// preview flattens text to a single line and truncates it for timeline
// display.
func preview(text string) string {
	flat := strings.Join(strings.Fields(text), " ")
	runes := []rune(flat)
	if len(runes) <= stepPreviewLimit {
		return flat
	}
	return string(runes[:stepPreviewLimit]) + "..."
}
