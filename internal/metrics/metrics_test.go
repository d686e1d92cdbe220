package metrics

import (
	"testing"
	"time"

	"github.com/zulandar/groundwork/internal/models"
	"github.com/zulandar/groundwork/internal/schedule"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := schedule.ParseDate(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return d
}

func topPhase(t *testing.T, start string, duration, buffer int) models.Phase {
	t.Helper()
	s := date(t, start)
	return models.Phase{
		PlannedStartDate:    s,
		PlannedDurationDays: duration,
		BufferDays:          buffer,
		PlannedEndDate:      schedule.CalculateEndDate(s, duration, buffer),
		Status:              models.StatusNotStarted,
	}
}

func intp(n int) *int { return &n }

func TestDuration_Empty(t *testing.T) {
	got := Duration(nil)
	if got.TotalDays != 0 || got.StartDate != nil || got.EndDate != nil {
		t.Errorf("Duration(nil) = %+v, want zero value", got)
	}

	// Tasks only, no top-level phases.
	parent := "ph-aaaaa"
	task := topPhase(t, "2025-02-03", 3, 0)
	task.IsTask = true
	task.ParentPhaseID = &parent
	got = Duration([]models.Phase{task})
	if got.TotalDays != 0 || got.StartDate != nil {
		t.Errorf("Duration(tasks only) = %+v, want zero value", got)
	}
}

func TestDuration_Span(t *testing.T) {
	// Two phases: 02-03 for 5 business days, 02-17 for 5 business days.
	// Span runs 02-03 through 02-24 (calendar days).
	phases := []models.Phase{
		topPhase(t, "2025-02-03", 5, 0),
		topPhase(t, "2025-02-17", 5, 0),
	}
	got := Duration(phases)
	if got.StartDate == nil || schedule.FormatDate(*got.StartDate) != "2025-02-03" {
		t.Fatalf("StartDate = %v, want 2025-02-03", got.StartDate)
	}
	if got.EndDate == nil || schedule.FormatDate(*got.EndDate) != "2025-02-24" {
		t.Fatalf("EndDate = %v, want 2025-02-24", got.EndDate)
	}
	if got.TotalDays != 21 {
		t.Errorf("TotalDays = %d, want 21", got.TotalDays)
	}
}

func TestDuration_DerivesMissingEndDate(t *testing.T) {
	p := topPhase(t, "2025-02-03", 4, 1)
	p.PlannedEndDate = time.Time{} // no cached column
	got := Duration([]models.Phase{p})
	if got.EndDate == nil || schedule.FormatDate(*got.EndDate) != "2025-02-10" {
		t.Errorf("EndDate = %v, want derived 2025-02-10", got.EndDate)
	}
}

func TestCompletion_Rollup(t *testing.T) {
	a := topPhase(t, "2025-02-03", 5, 0)
	a.ComputedProgress = intp(100)
	b := topPhase(t, "2025-02-10", 5, 0)
	b.ComputedProgress = intp(50)
	if got := Completion([]models.Phase{a, b}); got != 75 {
		t.Errorf("Completion = %d, want 75", got)
	}
}

func TestCompletion_Empty(t *testing.T) {
	if got := Completion(nil); got != 0 {
		t.Errorf("Completion(nil) = %d, want 0", got)
	}
}

func TestCompletion_StatusFallback(t *testing.T) {
	done := topPhase(t, "2025-02-03", 5, 0)
	done.Status = models.StatusCompleted
	open := topPhase(t, "2025-02-10", 5, 0)
	if got := Completion([]models.Phase{done, open}); got != 50 {
		t.Errorf("Completion = %d, want 50 from 100/0 fallback", got)
	}
}

func TestCompletion_IgnoresTasks(t *testing.T) {
	parent := "ph-aaaaa"
	phase := topPhase(t, "2025-02-03", 5, 0)
	phase.ComputedProgress = intp(40)
	task := topPhase(t, "2025-02-03", 2, 0)
	task.IsTask = true
	task.ParentPhaseID = &parent
	task.Status = models.StatusCompleted
	if got := Completion([]models.Phase{phase, task}); got != 40 {
		t.Errorf("Completion = %d, want 40 (task excluded)", got)
	}
}

func TestProgress_Weighted(t *testing.T) {
	phase := topPhase(t, "2025-02-03", 10, 0)
	tasks := []models.Phase{
		{PlannedDurationDays: 3, Status: models.StatusCompleted},
		{PlannedDurationDays: 1, Status: models.StatusNotStarted},
	}
	// (3*100 + 1*0) / 4 = 75
	if got := Progress(&phase, tasks); got != 75 {
		t.Errorf("Progress = %d, want 75", got)
	}
}

func TestProgress_NoTasks(t *testing.T) {
	phase := topPhase(t, "2025-02-03", 10, 0)
	if got := Progress(&phase, nil); got != 0 {
		t.Errorf("Progress(no tasks, not completed) = %d, want 0", got)
	}
	phase.Status = models.StatusCompleted
	if got := Progress(&phase, nil); got != 100 {
		t.Errorf("Progress(no tasks, completed) = %d, want 100", got)
	}
}

func TestStatus_NoBaseline(t *testing.T) {
	project := &models.Project{}
	phases := []models.Phase{topPhase(t, "2025-02-03", 5, 0)}
	got := Status(project, phases, Duration(phases))
	if got.State != StateOnTrack || got.DaysOff != nil {
		t.Errorf("Status = %+v, want on_track with nil DaysOff", got)
	}

	phases[0].Status = models.StatusDelayed
	got = Status(project, phases, Duration(phases))
	if got.State != StateNeedsAttention {
		t.Errorf("State = %s, want needs_attention with delayed phase", got.State)
	}
	if got.DaysOff != nil {
		t.Errorf("DaysOff = %v, want nil without baseline", *got.DaysOff)
	}
}

func TestStatus_BaselineThresholds(t *testing.T) {
	start := date(t, "2025-01-06")
	baseline := 100
	project := &models.Project{
		BaselineStartDate:    &start,
		BaselineDurationDays: &baseline,
	}
	phases := []models.Phase{topPhase(t, "2025-01-06", 5, 0)}

	tests := []struct {
		totalDays   int
		wantState   string
		wantDaysOff int
	}{
		{112, StateBehind, 12},   // 12% over, tolerance is 10 days
		{105, StateOnTrack, 5},   // 5% over, within tolerance
		{110, StateOnTrack, 10},  // exactly at tolerance
		{111, StateBehind, 11},   // one past tolerance
		{85, StateOnTrack, -15},  // ahead of schedule
		{100, StateOnTrack, 0},   // dead on
	}
	for _, tt := range tests {
		got := Status(project, phases, ProjectDuration{TotalDays: tt.totalDays})
		if got.State != tt.wantState {
			t.Errorf("Status(total=%d).State = %s, want %s", tt.totalDays, got.State, tt.wantState)
		}
		if got.DaysOff == nil || *got.DaysOff != tt.wantDaysOff {
			t.Errorf("Status(total=%d).DaysOff = %v, want %d", tt.totalDays, got.DaysOff, tt.wantDaysOff)
		}
		if got.Message == "" {
			t.Errorf("Status(total=%d) has empty message", tt.totalDays)
		}
	}
}

func TestStatus_BaselineWithRiskPhases(t *testing.T) {
	start := date(t, "2025-01-06")
	baseline := 100
	project := &models.Project{
		BaselineStartDate:    &start,
		BaselineDurationDays: &baseline,
	}
	blocked := topPhase(t, "2025-01-06", 5, 0)
	blocked.Status = models.StatusBlocked
	phases := []models.Phase{blocked}

	// Risk + over tolerance -> behind.
	got := Status(project, phases, ProjectDuration{TotalDays: 115})
	if got.State != StateBehind {
		t.Errorf("State = %s, want behind", got.State)
	}
	// Risk but within tolerance -> needs_attention.
	got = Status(project, phases, ProjectDuration{TotalDays: 103})
	if got.State != StateNeedsAttention {
		t.Errorf("State = %s, want needs_attention", got.State)
	}
}
