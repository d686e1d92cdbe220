package phase

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/zulandar/groundwork/internal/models"
	"github.com/zulandar/groundwork/internal/schedule"
	"gorm.io/gorm"
)

// TaskOffset records one task's contribution to a recalculation.
type TaskOffset struct {
	TaskID string `json:"task_id"`
	Name   string `json:"name"`
	// EndOffset is the task's effective end expressed in business days
	// from the phase's planned start.
	EndOffset int `json:"end_offset"`
}

// RecalcOutcome is the diagnostic breakdown of one recalculation attempt,
// returned to callers for logging or display.
type RecalcOutcome struct {
	PhaseID          string       `json:"phase_id"`
	Skipped          bool         `json:"skipped"`
	SkipReason       string       `json:"skip_reason,omitempty"`
	PreviousDuration int          `json:"previous_duration"`
	NewDuration      int          `json:"new_duration"`
	Changed          bool         `json:"changed"`
	DrivingTaskID    string       `json:"driving_task_id,omitempty"`
	TaskOffsets      []TaskOffset `json:"task_offsets,omitempty"`
}

// Recalculate re-derives a phase's planned duration from its current tasks.
//
// The new duration is the maximum end-offset in business days from the
// phase's planned start across all tasks; the phase's own buffer days are
// left untouched (task buffers fold into their offsets, they do not
// propagate up). A phase in override mode is skipped unless force is set.
// A phase with no tasks keeps its manually-set duration.
//
// The write is a guarded read-modify-write: it only lands if the phase row
// is unchanged since it was read, so two racing recalculations cannot
// interleave. Losing the race is reported as a skip, not an error; the
// winning write already ran against the same task set or a fresher one.
func Recalculate(db *gorm.DB, phaseID string, force bool) (*models.Phase, *RecalcOutcome, error) {
	ph, err := Get(db, phaseID)
	if err != nil {
		return nil, nil, err
	}
	if ph.IsTask {
		return nil, nil, validationErrorf("%s is a task; only phases are recalculated", phaseID)
	}

	outcome := &RecalcOutcome{
		PhaseID:          ph.ID,
		PreviousDuration: ph.PlannedDurationDays,
		NewDuration:      ph.PlannedDurationDays,
	}

	if ph.DurationMode == models.DurationOverride && !force {
		outcome.Skipped = true
		outcome.SkipReason = "duration mode is override"
		return ph, outcome, nil
	}

	tasks, err := ListTasks(db, ph.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(tasks) == 0 {
		outcome.Skipped = true
		outcome.SkipReason = "phase has no tasks"
		return ph, outcome, nil
	}

	start := schedule.Normalize(ph.PlannedStartDate)
	maxOffset := 0
	for i := range tasks {
		t := &tasks[i]
		end := schedule.CalculateEndDate(t.PlannedStartDate, t.PlannedDurationDays, t.BufferDays)
		off := schedule.EndOffset(start, end)
		outcome.TaskOffsets = append(outcome.TaskOffsets, TaskOffset{
			TaskID:    t.ID,
			Name:      t.Name,
			EndOffset: off,
		})
		if off > maxOffset || outcome.DrivingTaskID == "" {
			maxOffset = off
			outcome.DrivingTaskID = t.ID
		}
	}
	outcome.NewDuration = maxOffset

	newEnd := schedule.CalculateEndDate(start, maxOffset, ph.BufferDays)
	if maxOffset == ph.PlannedDurationDays && newEnd.Equal(schedule.Normalize(ph.PlannedEndDate)) {
		// Nothing to write; recalculation is idempotent.
		return ph, outcome, nil
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Phase{}).
			Where("id = ? AND updated_at = ?", ph.ID, ph.UpdatedAt).
			Updates(map[string]interface{}{
				"planned_duration_days": maxOffset,
				"planned_end_date":      newEnd,
			})
		if res.Error != nil {
			return fmt.Errorf("phase: recalculate %s: %w", ph.ID, res.Error)
		}
		if res.RowsAffected == 0 {
			outcome.Skipped = true
			outcome.SkipReason = "phase changed concurrently"
			outcome.NewDuration = outcome.PreviousDuration
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	if outcome.Skipped {
		return ph, outcome, nil
	}

	outcome.Changed = maxOffset != outcome.PreviousDuration
	ph.PlannedDurationDays = maxOffset
	ph.PlannedEndDate = newEnd
	return ph, outcome, nil
}

// recalcBestEffort runs Recalculate and converts any failure into a log
// entry. Recalculation health never affects the triggering write: callers
// get a nil outcome on failure and nothing else.
func recalcBestEffort(db *gorm.DB, phaseID string) *RecalcOutcome {
	_, outcome, err := Recalculate(db, phaseID, false)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"phase_id": phaseID,
		}).WithError(err).Warn("phase: duration recalculation failed")
		return nil
	}
	return outcome
}
