// Package notify posts schedule alerts to chat channels. Delivery is
// outbound only; nothing in here reads messages back.
package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/zulandar/groundwork/internal/metrics"
	"github.com/zulandar/groundwork/internal/project"
	"gorm.io/gorm"
)

// Attachment colors by schedule state.
const (
	ColorSuccess = "#36a64f"
	ColorInfo    = "#2196f3"
	ColorWarning = "#ff9800"
	ColorError   = "#e53935"
)

// Field is a short labeled value rendered inside an alert.
type Field struct {
	Name  string
	Value string
	Short bool
}

// Alert is one formatted schedule notification.
type Alert struct {
	ProjectID string
	Title     string
	Body      string
	Color     string
	Fields    []Field
}

// Notifier delivers alerts to one chat platform.
type Notifier interface {
	Send(ctx context.Context, alert Alert) error
	Name() string
}

// stateColor maps a schedule state to an attachment color.
func stateColor(state string) string {
	switch state {
	case metrics.StateBehind:
		return ColorError
	case metrics.StateNeedsAttention:
		return ColorWarning
	default:
		return ColorSuccess
	}
}

// BuildDigest summarizes every project in the org and returns alerts
// for the ones that are not on track. Returns nil when everything is
// healthy, so callers can suppress empty digests.
func BuildDigest(db *gorm.DB, orgID string) ([]Alert, error) {
	rows, err := project.Summaries(db, orgID)
	if err != nil {
		return nil, fmt.Errorf("notify: build digest: %w", err)
	}

	var alerts []Alert
	for _, row := range rows {
		if row.State == metrics.StateOnTrack {
			continue
		}
		alerts = append(alerts, alertFor(row))
	}
	return alerts, nil
}

// alertFor formats a single off-track summary row.
func alertFor(row project.SummaryRow) Alert {
	var bodyLines []string
	bodyLines = append(bodyLines, row.Message)
	if row.StartDate != nil && row.EndDate != nil {
		bodyLines = append(bodyLines, fmt.Sprintf("Planned: %s – %s (%d calendar days)",
			row.StartDate.Format("Jan 2"), row.EndDate.Format("Jan 2"), row.TotalDays))
	}
	bodyLines = append(bodyLines, fmt.Sprintf("Completion: %d%%", row.Completion))

	fields := []Field{
		{Name: "State", Value: row.State, Short: true},
		{Name: "Completion", Value: fmt.Sprintf("%d%%", row.Completion), Short: true},
		{Name: "Phases", Value: fmt.Sprintf("%d", row.PhaseCount), Short: true},
		{Name: "Tasks", Value: fmt.Sprintf("%d", row.TaskCount), Short: true},
	}
	if row.DaysOff != nil {
		fields = append(fields, Field{Name: "Days Off Baseline", Value: fmt.Sprintf("%+d", *row.DaysOff), Short: true})
	}

	return Alert{
		ProjectID: row.ProjectID,
		Title:     fmt.Sprintf("Schedule alert: %s", row.Name),
		Body:      strings.Join(bodyLines, "\n"),
		Color:     stateColor(row.State),
		Fields:    fields,
	}
}
