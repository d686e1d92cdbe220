// Package phase provides phase and task lifecycle operations: creation,
// updates with hierarchy validation, deletion, and automatic duration
// recalculation.
package phase

import (
	"errors"
	"fmt"
	"time"

	"github.com/zulandar/groundwork/internal/metrics"
	"github.com/zulandar/groundwork/internal/models"
	"github.com/zulandar/groundwork/internal/schedule"
	"gorm.io/gorm"
)

// CreatePhaseOpts holds parameters for creating a new top-level phase.
type CreatePhaseOpts struct {
	ProjectID           string
	Name                string
	Description         string
	SequenceOrder       int
	PlannedStartDate    time.Time
	PlannedDurationDays int
	BufferDays          int
	PredecessorPhaseID  string
	Color               string
	Metadata            string
}

// CreateTaskOpts holds parameters for creating a task under a phase.
type CreateTaskOpts struct {
	ParentPhaseID       string
	Name                string
	Description         string
	SequenceOrder       int
	PlannedStartDate    time.Time
	PlannedDurationDays int
	BufferDays          int
	Color               string
	Metadata            string
}

// UpdateOpts holds optional field updates for a phase or task. Nil fields
// are left unchanged.
type UpdateOpts struct {
	Name                *string
	Description         *string
	SequenceOrder       *int
	PlannedStartDate    *time.Time
	PlannedDurationDays *int
	BufferDays          *int
	Status              *string
	Color               *string
	DurationMode        *string
	Metadata            *string
}

// ValidTransitions maps each status to its valid next statuses.
var ValidTransitions = map[string][]string{
	models.StatusNotStarted: {models.StatusInProgress, models.StatusDelayed, models.StatusBlocked},
	models.StatusInProgress: {models.StatusCompleted, models.StatusDelayed, models.StatusBlocked},
	models.StatusDelayed:    {models.StatusInProgress, models.StatusCompleted, models.StatusBlocked},
	models.StatusBlocked:    {models.StatusInProgress, models.StatusDelayed},
	models.StatusCompleted:  {models.StatusInProgress},
}

func isValidTransition(from, to string) bool {
	for _, s := range ValidTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// generateUniqueID generates an ID with the given prefix, retrying on the
// unlikely event of a collision.
func generateUniqueID(db *gorm.DB, prefix string) (string, error) {
	for i := 0; i < 5; i++ {
		id, err := models.GenerateID(prefix)
		if err != nil {
			return "", err
		}
		var count int64
		if err := db.Model(&models.Phase{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return "", fmt.Errorf("phase: check id %s: %w", id, err)
		}
		if count == 0 {
			return id, nil
		}
	}
	return "", fmt.Errorf("phase: could not generate unique id")
}

// CreatePhase creates a new top-level phase for a project.
func CreatePhase(db *gorm.DB, opts CreatePhaseOpts) (*models.Phase, error) {
	var problems []string
	if opts.Name == "" {
		problems = append(problems, "name is required")
	}
	if opts.PlannedStartDate.IsZero() {
		problems = append(problems, "planned start date is required")
	}
	if opts.PlannedDurationDays < 0 {
		problems = append(problems, "planned duration must not be negative")
	}
	if opts.BufferDays < 0 {
		problems = append(problems, "buffer days must not be negative")
	}
	if len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	var project models.Project
	if err := db.Where("id = ?", opts.ProjectID).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: "project", ID: opts.ProjectID}
		}
		return nil, fmt.Errorf("phase: check project %s: %w", opts.ProjectID, err)
	}

	if opts.PredecessorPhaseID != "" {
		var pred models.Phase
		if err := db.Where("id = ?", opts.PredecessorPhaseID).First(&pred).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, &NotFoundError{Kind: "phase", ID: opts.PredecessorPhaseID}
			}
			return nil, fmt.Errorf("phase: check predecessor %s: %w", opts.PredecessorPhaseID, err)
		}
		if pred.ProjectID != opts.ProjectID {
			return nil, validationErrorf("predecessor %s belongs to a different project", opts.PredecessorPhaseID)
		}
		if pred.IsTask {
			return nil, validationErrorf("predecessor %s is a task, not a phase", opts.PredecessorPhaseID)
		}
	}

	id, err := generateUniqueID(db, "ph")
	if err != nil {
		return nil, err
	}

	start := schedule.Normalize(opts.PlannedStartDate)
	row := models.Phase{
		ID:                  id,
		ProjectID:           opts.ProjectID,
		Name:                opts.Name,
		Description:         opts.Description,
		SequenceOrder:       opts.SequenceOrder,
		PlannedStartDate:    start,
		PlannedDurationDays: opts.PlannedDurationDays,
		BufferDays:          opts.BufferDays,
		PlannedEndDate:      schedule.CalculateEndDate(start, opts.PlannedDurationDays, opts.BufferDays),
		Status:              models.StatusNotStarted,
		IsTask:              false,
		Color:               opts.Color,
		DurationMode:        models.DurationAuto,
		Metadata:            opts.Metadata,
	}
	if opts.PredecessorPhaseID != "" {
		row.PredecessorPhaseID = &opts.PredecessorPhaseID
	}

	if err := db.Create(&row).Error; err != nil {
		return nil, fmt.Errorf("phase: create: %w", err)
	}
	return &row, nil
}

// CreateTask creates a task under an existing phase. Task dates must sit
// inside the parent phase's effective window; that check blocks the write.
// After a successful write the parent's duration is recalculated on a
// best-effort basis: the returned RecalcOutcome is nil if recalculation
// failed, and the failure never affects the created task.
func CreateTask(db *gorm.DB, opts CreateTaskOpts) (*models.Phase, *RecalcOutcome, error) {
	var problems []string
	if opts.Name == "" {
		problems = append(problems, "name is required")
	}
	if opts.PlannedStartDate.IsZero() {
		problems = append(problems, "planned start date is required")
	}
	if opts.PlannedDurationDays < 0 {
		problems = append(problems, "planned duration must not be negative")
	}
	if opts.BufferDays < 0 {
		problems = append(problems, "buffer days must not be negative")
	}
	if len(problems) > 0 {
		return nil, nil, &ValidationError{Problems: problems}
	}

	var parent models.Phase
	if err := db.Where("id = ?", opts.ParentPhaseID).First(&parent).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, &NotFoundError{Kind: "phase", ID: opts.ParentPhaseID}
		}
		return nil, nil, fmt.Errorf("phase: check parent %s: %w", opts.ParentPhaseID, err)
	}
	if parent.IsTask {
		return nil, nil, validationErrorf("parent %s is a task; tasks cannot nest", opts.ParentPhaseID)
	}

	id, err := generateUniqueID(db, "tk")
	if err != nil {
		return nil, nil, err
	}

	start := schedule.Normalize(opts.PlannedStartDate)
	row := models.Phase{
		ID:                  id,
		ProjectID:           parent.ProjectID,
		Name:                opts.Name,
		Description:         opts.Description,
		SequenceOrder:       opts.SequenceOrder,
		PlannedStartDate:    start,
		PlannedDurationDays: opts.PlannedDurationDays,
		BufferDays:          opts.BufferDays,
		PlannedEndDate:      schedule.CalculateEndDate(start, opts.PlannedDurationDays, opts.BufferDays),
		Status:              models.StatusNotStarted,
		ParentPhaseID:       &parent.ID,
		IsTask:              true,
		Color:               opts.Color,
		DurationMode:        models.DurationAuto,
		Metadata:            opts.Metadata,
	}

	if problems := ValidateTaskDates(&row, &parent); len(problems) > 0 {
		return nil, nil, &ValidationError{Problems: problems}
	}

	if err := db.Create(&row).Error; err != nil {
		return nil, nil, fmt.Errorf("phase: create task: %w", err)
	}

	outcome := recalcBestEffort(db, parent.ID)
	return &row, outcome, nil
}

// Get retrieves a phase or task by ID.
func Get(db *gorm.DB, id string) (*models.Phase, error) {
	var row models.Phase
	if err := db.Where("id = ?", id).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Kind: "phase", ID: id}
		}
		return nil, fmt.Errorf("phase: get %s: %w", id, err)
	}
	return &row, nil
}

// ListTasks returns the tasks under a phase, ordered by sequence then
// creation time.
func ListTasks(db *gorm.DB, phaseID string) ([]models.Phase, error) {
	var tasks []models.Phase
	if err := db.Where("parent_phase_id = ?", phaseID).
		Order("sequence_order ASC, created_at ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("phase: list tasks of %s: %w", phaseID, err)
	}
	return tasks, nil
}

// ListByProject returns all phase and task rows for a project, ordered by
// sequence then creation time, with ComputedProgress filled in for
// top-level phases from their tasks.
func ListByProject(db *gorm.DB, projectID string) ([]models.Phase, error) {
	var rows []models.Phase
	if err := db.Where("project_id = ?", projectID).
		Order("sequence_order ASC, created_at ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("phase: list project %s: %w", projectID, err)
	}

	tasksByParent := make(map[string][]models.Phase)
	for i := range rows {
		if rows[i].IsTask && rows[i].ParentPhaseID != nil {
			tasksByParent[*rows[i].ParentPhaseID] = append(tasksByParent[*rows[i].ParentPhaseID], rows[i])
		}
	}
	for i := range rows {
		if rows[i].TopLevel() {
			progress := metrics.Progress(&rows[i], tasksByParent[rows[i].ID])
			rows[i].ComputedProgress = &progress
		}
	}
	return rows, nil
}

// Update applies partial field updates to a phase or task.
//
// For a task whose date-affecting fields change, the new dates are
// revalidated against the parent window before the write (blocking), and
// the parent's duration is recalculated afterward (best-effort).
//
// For a phase whose duration or buffer is edited while its duration mode
// is auto, the mode flips to override as part of the same write, so the
// next task-triggered recalculation cannot clobber the manual edit. The
// flip sticks until DurationMode is explicitly set back to "auto".
func Update(db *gorm.DB, id string, opts UpdateOpts) (*models.Phase, *RecalcOutcome, error) {
	row, err := Get(db, id)
	if err != nil {
		return nil, nil, err
	}

	var problems []string
	dateChanged := false
	durationEdited := false

	if opts.Name != nil {
		if *opts.Name == "" {
			problems = append(problems, "name must not be empty")
		}
		row.Name = *opts.Name
	}
	if opts.Description != nil {
		row.Description = *opts.Description
	}
	if opts.SequenceOrder != nil {
		row.SequenceOrder = *opts.SequenceOrder
	}
	if opts.Color != nil {
		row.Color = *opts.Color
	}
	if opts.Metadata != nil {
		row.Metadata = *opts.Metadata
	}

	if opts.PlannedStartDate != nil {
		start := schedule.Normalize(*opts.PlannedStartDate)
		if !start.Equal(row.PlannedStartDate) {
			row.PlannedStartDate = start
			dateChanged = true
		}
	}
	if opts.PlannedDurationDays != nil {
		if *opts.PlannedDurationDays < 0 {
			problems = append(problems, "planned duration must not be negative")
		} else if *opts.PlannedDurationDays != row.PlannedDurationDays {
			row.PlannedDurationDays = *opts.PlannedDurationDays
			dateChanged = true
			durationEdited = true
		}
	}
	if opts.BufferDays != nil {
		if *opts.BufferDays < 0 {
			problems = append(problems, "buffer days must not be negative")
		} else if *opts.BufferDays != row.BufferDays {
			row.BufferDays = *opts.BufferDays
			dateChanged = true
			durationEdited = true
		}
	}

	if opts.DurationMode != nil {
		if *opts.DurationMode != models.DurationAuto && *opts.DurationMode != models.DurationOverride {
			problems = append(problems, fmt.Sprintf("duration mode %q is not auto or override", *opts.DurationMode))
		} else {
			row.DurationMode = *opts.DurationMode
		}
	}

	if opts.Status != nil && *opts.Status != row.Status {
		if !models.ValidStatus(*opts.Status) {
			problems = append(problems, fmt.Sprintf("unknown status %q", *opts.Status))
		} else if !isValidTransition(row.Status, *opts.Status) {
			problems = append(problems, fmt.Sprintf("cannot transition from %s to %s", row.Status, *opts.Status))
		} else {
			applyTransition(row, *opts.Status)
		}
	}

	if len(problems) > 0 {
		return nil, nil, &ValidationError{Problems: problems}
	}

	// Manual duration edit on an auto phase flips it to override unless the
	// caller set the mode explicitly in the same update.
	if !row.IsTask && durationEdited && opts.DurationMode == nil && row.DurationMode == models.DurationAuto {
		row.DurationMode = models.DurationOverride
	}

	if dateChanged {
		row.PlannedEndDate = schedule.CalculateEndDate(row.PlannedStartDate, row.PlannedDurationDays, row.BufferDays)
	}

	// A task's new window must still fit its parent; this blocks the write.
	if row.IsTask && dateChanged {
		parent, err := Get(db, *row.ParentPhaseID)
		if err != nil {
			return nil, nil, err
		}
		if problems := ValidateTaskDates(row, parent); len(problems) > 0 {
			return nil, nil, &ValidationError{Problems: problems}
		}
	}

	if err := db.Save(row).Error; err != nil {
		return nil, nil, fmt.Errorf("phase: update %s: %w", id, err)
	}

	var outcome *RecalcOutcome
	if row.IsTask && dateChanged {
		outcome = recalcBestEffort(db, *row.ParentPhaseID)
	}
	return row, outcome, nil
}

// applyTransition sets the new status and its actual-date side effects.
// Actual dates are written once, on the first transition into the state.
func applyTransition(row *models.Phase, to string) {
	row.Status = to
	now := schedule.Normalize(time.Now())
	switch to {
	case models.StatusInProgress:
		if row.ActualStartDate == nil {
			row.ActualStartDate = &now
		}
	case models.StatusCompleted:
		if row.ActualEndDate == nil {
			row.ActualEndDate = &now
		}
	}
}

// Delete hard-deletes a phase or task. Deleting a task captures the parent
// first and recalculates it afterward (best-effort). Deleting a phase
// removes its tasks with it.
func Delete(db *gorm.DB, id string) (*RecalcOutcome, error) {
	row, err := Get(db, id)
	if err != nil {
		return nil, err
	}

	if row.IsTask {
		parentID := *row.ParentPhaseID
		if err := db.Delete(&models.Phase{}, "id = ?", id).Error; err != nil {
			return nil, fmt.Errorf("phase: delete task %s: %w", id, err)
		}
		return recalcBestEffort(db, parentID), nil
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Phase{}, "parent_phase_id = ?", id).Error; err != nil {
			return fmt.Errorf("phase: delete tasks of %s: %w", id, err)
		}
		if err := tx.Delete(&models.Phase{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("phase: delete %s: %w", id, err)
		}
		return nil
	})
	return nil, err
}
