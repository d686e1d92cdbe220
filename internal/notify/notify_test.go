package notify

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/zulandar/groundwork/internal/models"
	"github.com/zulandar/groundwork/internal/phase"
	"github.com/zulandar/groundwork/internal/project"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.Project{}, &models.Phase{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.ParseInLocation("2006-01-02", s, time.Local)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

// seedProject creates a baselined project with a single phase of the
// given duration. The baseline is in calendar days, matching the unit of
// the derived project span: a 100-business-day phase starting Monday
// 2025-02-03 spans 20 weeks, so 140 calendar days. A span well past the
// baseline reads as behind; one within tolerance reads as on track.
func seedProject(t *testing.T, db *gorm.DB, name string, baselineDays, phaseDays int) *models.Project {
	t.Helper()
	p, err := project.Create(db, project.CreateOpts{OrgID: "org-1", Name: name})
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	start := mustDate(t, "2025-02-03")
	if _, err := project.SetBaseline(db, p.ID, start, baselineDays); err != nil {
		t.Fatalf("set baseline: %v", err)
	}
	if _, err := phase.CreatePhase(db, phase.CreatePhaseOpts{
		ProjectID:           p.ID,
		Name:                "Foundation",
		PlannedStartDate:    start,
		PlannedDurationDays: phaseDays,
	}); err != nil {
		t.Fatalf("create phase: %v", err)
	}
	return p
}

func TestBuildDigest_OnTrackSuppressed(t *testing.T) {
	db := testDB(t)
	seedProject(t, db, "Healthy build", 140, 100)

	alerts, err := BuildDigest(db, "org-1")
	if err != nil {
		t.Fatalf("BuildDigest: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("got %d alerts for an on-track org, want 0", len(alerts))
	}
}

func TestBuildDigest_BehindProjectAlerts(t *testing.T) {
	db := testDB(t)
	seedProject(t, db, "Healthy build", 140, 100)
	// 130 business days span 182 calendar days, 42 over a 140-day
	// baseline with a 14-day tolerance.
	late := seedProject(t, db, "Late build", 140, 130)

	alerts, err := BuildDigest(db, "org-1")
	if err != nil {
		t.Fatalf("BuildDigest: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(alerts))
	}
	a := alerts[0]
	if a.ProjectID != late.ID {
		t.Errorf("alert project = %s, want %s", a.ProjectID, late.ID)
	}
	if a.Color != ColorError {
		t.Errorf("alert color = %s, want %s", a.Color, ColorError)
	}
	if a.Title == "" || a.Body == "" {
		t.Error("alert missing title or body")
	}
	// The planned span is a calendar-day figure and must be labeled as one.
	if !strings.Contains(a.Body, "182 calendar days") {
		t.Errorf("alert body does not report the calendar-day span: %q", a.Body)
	}
}

func TestBuildDigest_ScopedToOrg(t *testing.T) {
	db := testDB(t)
	seedProject(t, db, "Late build", 140, 130)

	alerts, err := BuildDigest(db, "org-2")
	if err != nil {
		t.Fatalf("BuildDigest: %v", err)
	}
	if len(alerts) != 0 {
		t.Errorf("got %d alerts for another org, want 0", len(alerts))
	}
}

func TestStateColor(t *testing.T) {
	if c := stateColor("behind"); c != ColorError {
		t.Errorf("behind color = %s", c)
	}
	if c := stateColor("needs_attention"); c != ColorWarning {
		t.Errorf("needs_attention color = %s", c)
	}
	if c := stateColor("on_track"); c != ColorSuccess {
		t.Errorf("on_track color = %s", c)
	}
}

func TestNewDaemon_Validation(t *testing.T) {
	db := testDB(t)
	ok := fakeNotifier{}

	if _, err := NewDaemon(DaemonOpts{DB: db, OrgID: "org-1", Cron: "not a cron", Notifiers: []Notifier{ok}}); err == nil {
		t.Error("expected error for bad cron expression")
	}
	if _, err := NewDaemon(DaemonOpts{DB: db, OrgID: "org-1", Cron: "0 7 * * 1-5"}); err == nil {
		t.Error("expected error with no notifiers")
	}
	if _, err := NewDaemon(DaemonOpts{DB: db, OrgID: "org-1", Cron: "0 7 * * 1-5", Notifiers: []Notifier{ok}}); err != nil {
		t.Errorf("valid daemon rejected: %v", err)
	}
}

func TestNextCronDuration(t *testing.T) {
	if d := nextCronDuration("bogus"); d != 0 {
		t.Errorf("bogus expression duration = %v, want 0", d)
	}
	if d := nextCronDuration("* * * * *"); d <= 0 || d > time.Minute {
		t.Errorf("every-minute duration = %v, want (0, 1m]", d)
	}
}

type fakeNotifier struct{}

func (fakeNotifier) Send(context.Context, Alert) error { return nil }
func (fakeNotifier) Name() string                      { return "fake" }
