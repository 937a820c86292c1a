// Package scheduler runs the daily recurring-charge sweep for long-lived
// deployments where users rarely log in.
package scheduler

import (
	"fmt"

	"github.com/Kamran7679/finance-tracker/internal/service"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Scheduler applies due recurring charges to every account once per day.
type Scheduler struct {
	svc  *service.Service
	cron *cron.Cron
	log  *logrus.Logger
}

// New initializes the sweep scheduler
func New(svc *service.Service, log *logrus.Logger) *Scheduler {
	return &Scheduler{
		svc:  svc,
		cron: cron.New(),
		log:  log,
	}
}

// Start registers the daily sweep and starts the cron runner.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("0 0 * * *", s.sweep); err != nil {
		return fmt.Errorf("failed to schedule recurring sweep: %w", err)
	}
	s.cron.Start()
	s.log.Info("Recurring-charge sweep scheduled daily at midnight")
	return nil
}

// Stop halts the cron runner. Running jobs complete.
func (s *Scheduler) Stop() {
	s.cron.Stop()
}

func (s *Scheduler) sweep() {
	for _, username := range s.svc.Usernames() {
		applied, err := s.svc.ProcessRecurring(username)
		if err != nil {
			s.log.Errorf("Recurring sweep failed for %s: %v", username, err)
			continue
		}
		if applied > 0 {
			s.log.Infof("Recurring sweep applied %d charges for %s", applied, username)
		}
	}
}
