package main

import (
	"fmt"
	"io"

	"github.com/zulandar/groundwork/internal/phase"
)

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// printRecalc reports a recalculation outcome in one or two lines.
func printRecalc(out io.Writer, outcome *phase.RecalcOutcome) {
	if outcome == nil {
		return
	}
	switch {
	case outcome.Skipped:
		fmt.Fprintf(out, "Recalculation skipped: %s\n", outcome.SkipReason)
	case outcome.Changed:
		fmt.Fprintf(out, "Phase %s duration: %d → %d business days (driven by %s)\n",
			outcome.PhaseID, outcome.PreviousDuration, outcome.NewDuration, outcome.DrivingTaskID)
	default:
		fmt.Fprintf(out, "Phase %s duration unchanged at %d business days\n",
			outcome.PhaseID, outcome.NewDuration)
	}
}
