// Package output provides output formatting for the sessiondx CLI.
package output

import (
	"fmt"
	"io"

	"github.com/jperezcano/sessiondx-go/internal/core/service"
)

// RenderProbeReport writes the staged probe report.
func RenderProbeReport(w io.Writer, report *service.ProbeReport) error {
	fmt.Fprintln(w, "Gateway probe:")
	for _, stage := range report.Stages {
		marker := "✗"
		switch stage.Status {
		case service.ProbePass:
			marker = "✓"
		case service.ProbeSkip:
			marker = "-"
		}
		fmt.Fprintf(w, "  %s %-25s %s", marker, stage.Name, stage.Status)
		if stage.Detail != "" {
			fmt.Fprintf(w, "  (%s)", stage.Detail)
		}
		fmt.Fprintln(w)
	}

	if report.OK() {
		fmt.Fprintln(w, "\nAll checks passed.")
	} else {
		fmt.Fprintln(w, "\nProbe detected failures.")
	}
	return nil
}
