package metrics

import (
	"fmt"
	"math"

	"github.com/zulandar/groundwork/internal/models"
)

// Schedule health states.
const (
	StateOnTrack        = "on_track"
	StateNeedsAttention = "needs_attention"
	StateBehind         = "behind"
)

// ScheduleStatus classifies a project's schedule health against its
// baseline snapshot.
type ScheduleStatus struct {
	State   string `json:"state"`
	Message string `json:"message"`
	// DaysOff is the signed difference between current and baseline
	// duration; nil when the project has no baseline.
	DaysOff *int `json:"days_off"`
}

// varianceTolerance is the fraction of baseline duration a project may
// slip before it counts as behind.
const varianceTolerance = 0.1

// Status classifies a project's schedule health. Without a baseline the
// only signal is whether any phase or task is delayed or blocked. With a
// baseline, the current duration is compared against the baseline duration
// with a 10% tolerance (rounded up to whole days).
func Status(project *models.Project, phases []models.Phase, dur ProjectDuration) ScheduleStatus {
	atRisk := 0
	for i := range phases {
		if phases[i].AtRisk() {
			atRisk++
		}
	}

	if !project.HasBaseline() {
		if atRisk > 0 {
			return ScheduleStatus{
				State:   StateNeedsAttention,
				Message: fmt.Sprintf("%d phase(s) delayed or blocked; no baseline set", atRisk),
			}
		}
		return ScheduleStatus{State: StateOnTrack, Message: "on track; no baseline set"}
	}

	baseline := *project.BaselineDurationDays
	diff := dur.TotalDays - baseline
	tolerance := int(math.Ceil(float64(baseline) * varianceTolerance))

	switch {
	case atRisk > 0 && diff > tolerance:
		return ScheduleStatus{
			State:   StateBehind,
			Message: fmt.Sprintf("%d days over baseline with %d phase(s) delayed or blocked", diff, atRisk),
			DaysOff: &diff,
		}
	case atRisk > 0:
		return ScheduleStatus{
			State:   StateNeedsAttention,
			Message: fmt.Sprintf("%d phase(s) delayed or blocked", atRisk),
			DaysOff: &diff,
		}
	case diff > tolerance:
		return ScheduleStatus{
			State:   StateBehind,
			Message: fmt.Sprintf("%d days over baseline (tolerance %d)", diff, tolerance),
			DaysOff: &diff,
		}
	case diff < -tolerance:
		return ScheduleStatus{
			State:   StateOnTrack,
			Message: fmt.Sprintf("%d days ahead of baseline", -diff),
			DaysOff: &diff,
		}
	default:
		return ScheduleStatus{
			State:   StateOnTrack,
			Message: "within baseline tolerance",
			DaysOff: &diff,
		}
	}
}
