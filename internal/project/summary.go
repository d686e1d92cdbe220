package project

import (
	"time"

	"github.com/zulandar/groundwork/internal/metrics"
	"github.com/zulandar/groundwork/internal/models"
	"github.com/zulandar/groundwork/internal/phase"
	"gorm.io/gorm"
)

// SummaryRow holds derived scheduling figures for one project, for
// dashboards and the status CLI.
type SummaryRow struct {
	ProjectID  string     `json:"project_id"`
	Name       string     `json:"name"`
	TotalDays  int        `json:"total_days"`
	StartDate  *time.Time `json:"start_date"`
	EndDate    *time.Time `json:"end_date"`
	Completion int        `json:"completion"`
	State      string     `json:"state"`
	Message    string     `json:"message"`
	DaysOff    *int       `json:"days_off"`
	PhaseCount int        `json:"phase_count"`
	TaskCount  int        `json:"task_count"`
}

// Summarize computes the derived figures for a single project.
func Summarize(db *gorm.DB, p *models.Project) (*SummaryRow, error) {
	phases, err := phase.ListByProject(db, p.ID)
	if err != nil {
		return nil, err
	}
	dur := metrics.Duration(phases)
	status := metrics.Status(p, phases, dur)

	row := &SummaryRow{
		ProjectID:  p.ID,
		Name:       p.Name,
		TotalDays:  dur.TotalDays,
		StartDate:  dur.StartDate,
		EndDate:    dur.EndDate,
		Completion: metrics.Completion(phases),
		State:      status.State,
		Message:    status.Message,
		DaysOff:    status.DaysOff,
	}
	for i := range phases {
		if phases[i].IsTask {
			row.TaskCount++
		} else {
			row.PhaseCount++
		}
	}
	return row, nil
}

// Summaries computes summary rows for every project in an org.
func Summaries(db *gorm.DB, orgID string) ([]SummaryRow, error) {
	projects, err := List(db, orgID)
	if err != nil {
		return nil, err
	}
	rows := make([]SummaryRow, 0, len(projects))
	for i := range projects {
		row, err := Summarize(db, &projects[i])
		if err != nil {
			return nil, err
		}
		rows = append(rows, *row)
	}
	return rows, nil
}
