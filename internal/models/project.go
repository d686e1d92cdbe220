package models

import "time"

// Project owns phases and carries an optional baseline snapshot used for
// schedule-variance comparison. Baseline fields are set and cleared only by
// explicit actions, never as a side effect of phase edits.
type Project struct {
	ID          string `json:"id" gorm:"primaryKey;size:32"`
	OrgID       string `json:"org_id" gorm:"size:32;index;not null"`
	Name        string `json:"name" gorm:"not null"`
	Description string `json:"description" gorm:"type:text"`

	BaselineStartDate    *time.Time `json:"baseline_start_date" gorm:"type:date"`
	BaselineDurationDays *int       `json:"baseline_duration_days"`
	BaselineSetDate      *time.Time `json:"baseline_set_date"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Phases []Phase `json:"phases,omitempty" gorm:"foreignKey:ProjectID"`
}

// HasBaseline reports whether both baseline fields needed for variance
// comparison are present.
func (p *Project) HasBaseline() bool {
	return p.BaselineStartDate != nil && p.BaselineDurationDays != nil
}
