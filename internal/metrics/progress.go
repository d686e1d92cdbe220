package metrics

import (
	"math"

	"github.com/zulandar/groundwork/internal/models"
)

// statusProgress maps a task status to its contribution toward the parent
// phase's progress. In-progress work counts half; delayed and blocked work
// counts as not done.
func statusProgress(status string) int {
	switch status {
	case models.StatusCompleted:
		return 100
	case models.StatusInProgress:
		return 50
	default:
		return 0
	}
}

// Progress computes a phase's rollup progress from its tasks, weighted by
// each task's planned duration so long tasks move the needle more than
// short ones. Zero-duration tasks weigh as one day. A phase with no tasks
// falls back to a binary 100/0 on its own completed status.
func Progress(phase *models.Phase, tasks []models.Phase) int {
	if len(tasks) == 0 {
		if phase.Status == models.StatusCompleted {
			return 100
		}
		return 0
	}
	totalWeight, sum := 0, 0
	for i := range tasks {
		t := &tasks[i]
		w := t.PlannedDurationDays
		if w < 1 {
			w = 1
		}
		totalWeight += w
		sum += w * statusProgress(t.Status)
	}
	return int(math.Round(float64(sum) / float64(totalWeight)))
}
