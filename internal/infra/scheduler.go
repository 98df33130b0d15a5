package infra

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultSweepSpec runs the session sweep every 15 minutes
const DefaultSweepSpec = "*/15 * * * *"

// SessionSweeper removes expired sessions
type SessionSweeper interface {
	PurgeExpiredSessions(ctx context.Context) (int64, error)
}

// Scheduler manages scheduled housekeeping tasks
type Scheduler struct {
	cron    *cron.Cron
	sweeper SessionSweeper
	spec    string
}

// NewScheduler creates a new scheduler
// spec defaults to DefaultSweepSpec if empty
func NewScheduler(sweeper SessionSweeper, spec string) *Scheduler {
	if spec == "" {
		spec = DefaultSweepSpec
	}
	return &Scheduler{
		cron:    cron.New(),
		sweeper: sweeper,
		spec:    spec,
	}
}

// Start registers the sweep job and starts the cron loop
func (s *Scheduler) Start() error {
	log.Printf("Starting scheduler... [Sweep: %s]", s.spec)

	_, err := s.cron.AddFunc(s.spec, func() {
		if err := s.RunNow(); err != nil {
			log.Printf("ERROR: Scheduled session sweep failed: %v", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.Println("[OK] Scheduler started successfully")
	return nil
}

// Stop stops the scheduler and waits for a running job to finish
func (s *Scheduler) Stop() {
	log.Println("Stopping scheduler...")
	<-s.cron.Stop().Done()
	log.Println("[OK] Scheduler stopped")
}

// RunNow performs one sweep synchronously
func (s *Scheduler) RunNow() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	n, err := s.sweeper.PurgeExpiredSessions(ctx)
	if err != nil {
		return err
	}
	if n > 0 {
		log.Printf("[CRON] Purged %d expired session(s)", n)
	}
	return nil
}
