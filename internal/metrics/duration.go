// Package metrics computes derived scheduling figures for read paths.
// Everything here is a pure function over a project's phase rows; nothing
// is persisted.
package metrics

import (
	"math"
	"time"

	"github.com/zulandar/groundwork/internal/models"
	"github.com/zulandar/groundwork/internal/schedule"
)

// ProjectDuration describes the wall-clock span of a project.
type ProjectDuration struct {
	// TotalDays is the calendar-day span between the earliest phase start
	// and the latest phase end. Calendar days, not business days: this is
	// elapsed project duration.
	TotalDays int        `json:"total_days"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// effectiveEnd returns the stored planned end date when present, otherwise
// derives it from start, duration, and buffer.
func effectiveEnd(p *models.Phase) time.Time {
	if !p.PlannedEndDate.IsZero() {
		return schedule.Normalize(p.PlannedEndDate)
	}
	return schedule.CalculateEndDate(p.PlannedStartDate, p.PlannedDurationDays, p.BufferDays)
}

// Duration computes the total span of a project from its flattened phase
// and task rows. Only top-level phases contribute: a task's influence on
// the span is already folded into its parent's duration by recalculation.
func Duration(phases []models.Phase) ProjectDuration {
	var start, end time.Time
	found := false
	for i := range phases {
		p := &phases[i]
		if !p.TopLevel() {
			continue
		}
		ps := schedule.Normalize(p.PlannedStartDate)
		pe := effectiveEnd(p)
		if !found {
			start, end = ps, pe
			found = true
			continue
		}
		if ps.Before(start) {
			start = ps
		}
		if pe.After(end) {
			end = pe
		}
	}
	if !found {
		return ProjectDuration{}
	}
	return ProjectDuration{
		TotalDays: schedule.CalendarDaysBetween(start, end),
		StartDate: &start,
		EndDate:   &end,
	}
}

// Completion returns the project completion percentage: the unweighted mean
// of per-phase progress over top-level phases, rounded to the nearest
// integer. Per-phase progress is ComputedProgress when present, else a
// binary 100/0 on completed status. Equal per-phase weighting keeps the
// rollup stable under phase-count changes; duration weighting happens one
// level down inside ComputedProgress itself. No top-level phases yields 0.
func Completion(phases []models.Phase) int {
	sum, n := 0, 0
	for i := range phases {
		p := &phases[i]
		if !p.TopLevel() {
			continue
		}
		n++
		switch {
		case p.ComputedProgress != nil:
			sum += *p.ComputedProgress
		case p.Status == models.StatusCompleted:
			sum += 100
		}
	}
	if n == 0 {
		return 0
	}
	return int(math.Round(float64(sum) / float64(n)))
}
