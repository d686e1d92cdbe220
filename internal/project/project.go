// Package project provides project lifecycle operations and the baseline
// snapshot used for schedule-variance comparison.
package project

import (
	"errors"
	"fmt"
	"time"

	"github.com/zulandar/groundwork/internal/models"
	"github.com/zulandar/groundwork/internal/phase"
	"github.com/zulandar/groundwork/internal/schedule"
	"gorm.io/gorm"
)

// CreateOpts holds parameters for creating a new project.
type CreateOpts struct {
	OrgID       string
	Name        string
	Description string
}

// Create creates a new project for an org.
func Create(db *gorm.DB, opts CreateOpts) (*models.Project, error) {
	var problems []string
	if opts.OrgID == "" {
		problems = append(problems, "org id is required")
	}
	if opts.Name == "" {
		problems = append(problems, "name is required")
	}
	if len(problems) > 0 {
		return nil, &phase.ValidationError{Problems: problems}
	}

	id, err := models.GenerateID("pr")
	if err != nil {
		return nil, err
	}
	p := models.Project{
		ID:          id,
		OrgID:       opts.OrgID,
		Name:        opts.Name,
		Description: opts.Description,
	}
	if err := db.Create(&p).Error; err != nil {
		return nil, fmt.Errorf("project: create: %w", err)
	}
	return &p, nil
}

// Get retrieves a project by ID.
func Get(db *gorm.DB, id string) (*models.Project, error) {
	var p models.Project
	if err := db.Where("id = ?", id).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &phase.NotFoundError{Kind: "project", ID: id}
		}
		return nil, fmt.Errorf("project: get %s: %w", id, err)
	}
	return &p, nil
}

// List returns all projects for an org, newest first.
func List(db *gorm.DB, orgID string) ([]models.Project, error) {
	var projects []models.Project
	if err := db.Where("org_id = ?", orgID).
		Order("created_at DESC").Find(&projects).Error; err != nil {
		return nil, fmt.Errorf("project: list org %s: %w", orgID, err)
	}
	return projects, nil
}

// Delete hard-deletes a project along with all its phases and tasks.
func Delete(db *gorm.DB, id string) error {
	if _, err := Get(db, id); err != nil {
		return err
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Phase{}, "project_id = ?", id).Error; err != nil {
			return fmt.Errorf("project: delete phases of %s: %w", id, err)
		}
		if err := tx.Delete(&models.Project{}, "id = ?", id).Error; err != nil {
			return fmt.Errorf("project: delete %s: %w", id, err)
		}
		return nil
	})
}

// SetBaseline freezes the project's current planning reference: a start
// date and a duration in days to compare future schedules against. A
// baseline that is already set must be cleared explicitly before a new one
// can be taken; it is never replaced implicitly.
func SetBaseline(db *gorm.DB, id string, start time.Time, durationDays int) (*models.Project, error) {
	p, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	if p.HasBaseline() {
		return nil, &phase.ValidationError{Problems: []string{
			"baseline is already set; clear it before taking a new one",
		}}
	}
	if durationDays < 0 {
		return nil, &phase.ValidationError{Problems: []string{"baseline duration must not be negative"}}
	}

	s := schedule.Normalize(start)
	now := time.Now()
	p.BaselineStartDate = &s
	p.BaselineDurationDays = &durationDays
	p.BaselineSetDate = &now
	if err := db.Save(p).Error; err != nil {
		return nil, fmt.Errorf("project: set baseline on %s: %w", id, err)
	}
	return p, nil
}

// ClearBaseline explicitly removes the project's baseline snapshot.
func ClearBaseline(db *gorm.DB, id string) (*models.Project, error) {
	p, err := Get(db, id)
	if err != nil {
		return nil, err
	}
	if err := db.Model(p).Updates(map[string]interface{}{
		"baseline_start_date":    nil,
		"baseline_duration_days": nil,
		"baseline_set_date":      nil,
	}).Error; err != nil {
		return nil, fmt.Errorf("project: clear baseline on %s: %w", id, err)
	}
	p.BaselineStartDate = nil
	p.BaselineDurationDays = nil
	p.BaselineSetDate = nil
	return p, nil
}
