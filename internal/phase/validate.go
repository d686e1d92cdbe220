package phase

import (
	"fmt"

	"github.com/zulandar/groundwork/internal/models"
	"github.com/zulandar/groundwork/internal/schedule"
)

// ValidateTaskDates checks that a task's effective date window sits inside
// its parent phase's effective window. Both windows run from the planned
// start through start + business-days(duration + buffer). Returns
// human-readable problems; an empty slice means the dates are valid.
//
// Only containment is checked: sibling tasks may overlap freely.
func ValidateTaskDates(task, parent *models.Phase) []string {
	parentStart := schedule.Normalize(parent.PlannedStartDate)
	parentEnd := schedule.CalculateEndDate(parentStart, parent.PlannedDurationDays, parent.BufferDays)
	taskStart := schedule.Normalize(task.PlannedStartDate)
	taskEnd := schedule.CalculateEndDate(taskStart, task.PlannedDurationDays, task.BufferDays)

	var problems []string
	if taskStart.Before(parentStart) {
		problems = append(problems, fmt.Sprintf(
			"task starts %s, before phase %q starts (%s)",
			schedule.FormatDate(taskStart), parent.Name, schedule.FormatDate(parentStart)))
	}
	if taskEnd.After(parentEnd) {
		problems = append(problems, fmt.Sprintf(
			"task ends %s, after phase %q ends (%s)",
			schedule.FormatDate(taskEnd), parent.Name, schedule.FormatDate(parentEnd)))
	}
	return problems
}
