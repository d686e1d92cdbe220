package models

import "time"

// Phase/task status values.
const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusDelayed    = "delayed"
	StatusBlocked    = "blocked"
)

// Duration modes. A phase in auto mode has its duration recomputed from its
// tasks; override mode freezes the duration against automatic recomputation.
const (
	DurationAuto     = "auto"
	DurationOverride = "override"
)

// Phase is a schedulable unit of a project. Phases and tasks share one table:
// a task is a Phase row with IsTask set and a non-nil ParentPhaseID pointing
// at a non-task phase. The hierarchy is exactly two levels deep.
type Phase struct {
	ID            string `json:"id" gorm:"primaryKey;size:32"`
	ProjectID     string `json:"project_id" gorm:"size:32;index;not null"`
	Name          string `json:"name" gorm:"not null"`
	Description   string `json:"description" gorm:"type:text"`
	SequenceOrder int    `json:"sequence_order" gorm:"default:0"`

	PlannedStartDate    time.Time `json:"planned_start_date" gorm:"type:date"`
	PlannedDurationDays int       `json:"planned_duration_days" gorm:"default:0"`
	BufferDays          int       `json:"buffer_days" gorm:"default:0"`
	// PlannedEndDate caches start + business-days(duration + buffer) and is
	// refreshed on every write that touches start, duration, or buffer.
	PlannedEndDate time.Time `json:"planned_end_date" gorm:"type:date"`

	ActualStartDate *time.Time `json:"actual_start_date" gorm:"type:date"`
	ActualEndDate   *time.Time `json:"actual_end_date" gorm:"type:date"`

	Status string `json:"status" gorm:"size:16;default:not_started;index"`

	// PredecessorPhaseID is an ordering hint only; a predecessor slipping
	// never shifts this phase's dates.
	PredecessorPhaseID *string `json:"predecessor_phase_id" gorm:"size:32"`
	ParentPhaseID      *string `json:"parent_phase_id" gorm:"size:32;index"`
	IsTask             bool    `json:"is_task" gorm:"default:false;index"`

	Color        string `json:"color" gorm:"size:16"`
	DurationMode string `json:"duration_mode" gorm:"size:16;default:auto"`
	// Metadata is an open JSON bag for caller extensions. Scheduling reads
	// nothing out of it.
	Metadata string `json:"metadata,omitempty" gorm:"type:json"`

	// ComputedProgress is filled on read paths from child task statuses,
	// never persisted.
	ComputedProgress *int `json:"computed_progress,omitempty" gorm:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Parent *Phase  `json:"-" gorm:"foreignKey:ParentPhaseID"`
	Tasks  []Phase `json:"tasks,omitempty" gorm:"foreignKey:ParentPhaseID"`
}

// TopLevel reports whether the row is a phase proper rather than a task.
func (p *Phase) TopLevel() bool {
	return !p.IsTask && p.ParentPhaseID == nil
}

// ValidStatus reports whether s is a recognized phase/task status.
func ValidStatus(s string) bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusDelayed, StatusBlocked:
		return true
	}
	return false
}

// AtRisk reports whether the row's status counts against schedule health.
func (p *Phase) AtRisk() bool {
	return p.Status == StatusDelayed || p.Status == StatusBlocked
}
