package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// cronParser uses standard 5-field cron expressions (minute, hour, dom, month, dow).
var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// nextCronDuration parses a 5-field cron expression and returns the duration
// until the next fire time. Returns 0 on parse error.
func nextCronDuration(expr string) time.Duration {
	sched, err := cronParser.Parse(expr)
	if err != nil {
		return 0
	}
	next := sched.Next(time.Now())
	d := time.Until(next)
	if d < 0 {
		return 0
	}
	return d
}

// Daemon fires the schedule digest on a cron expression and fans the
// alerts out to every configured notifier.
type Daemon struct {
	db        *gorm.DB
	orgID     string
	expr      string
	notifiers []Notifier
}

// DaemonOpts holds parameters for creating a Daemon.
type DaemonOpts struct {
	DB        *gorm.DB
	OrgID     string
	Cron      string // 5-field cron expression
	Notifiers []Notifier
}

// NewDaemon validates the cron expression and builds a Daemon.
func NewDaemon(opts DaemonOpts) (*Daemon, error) {
	if _, err := cronParser.Parse(opts.Cron); err != nil {
		return nil, fmt.Errorf("notify: invalid cron expression %q: %w", opts.Cron, err)
	}
	if len(opts.Notifiers) == 0 {
		return nil, fmt.Errorf("notify: at least one notifier is required")
	}
	return &Daemon{
		db:        opts.DB,
		orgID:     opts.OrgID,
		expr:      opts.Cron,
		notifiers: opts.Notifiers,
	}, nil
}

// Run blocks until the context is cancelled, posting a digest each time
// the cron expression fires. Delivery failures are logged, never fatal.
func (d *Daemon) Run(ctx context.Context) error {
	for {
		wait := nextCronDuration(d.expr)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		d.fire(ctx)
	}
}

// fire builds and delivers one digest.
func (d *Daemon) fire(ctx context.Context) {
	alerts, err := BuildDigest(d.db, d.orgID)
	if err != nil {
		logrus.WithError(err).Warn("notify: digest build failed")
		return
	}
	if len(alerts) == 0 {
		logrus.Debug("notify: all projects on track, digest suppressed")
		return
	}
	for _, alert := range alerts {
		for _, n := range d.notifiers {
			if err := n.Send(ctx, alert); err != nil {
				logrus.WithFields(logrus.Fields{
					"notifier": n.Name(),
					"project":  alert.ProjectID,
				}).WithError(err).Warn("notify: alert delivery failed")
			}
		}
	}
	logrus.WithField("alerts", len(alerts)).Info("notify: digest posted")
}
