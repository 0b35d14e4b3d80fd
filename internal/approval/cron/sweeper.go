package cronjob

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

type RequestPurger interface {
	PurgeExpired(ctx context.Context, before time.Time) (int64, error)
}

// Sweeper deletes approval requests that expired without being consumed.
// Purely hygiene: expiry is enforced at read time, so a missed run changes
// nothing user-visible.
type Sweeper struct {
	requests RequestPurger
	c        *cron.Cron
}

func NewSweeper(requests RequestPurger) *Sweeper {
	return &Sweeper{requests: requests}
}

// Start schedules the nightly sweep (12:00 AM).
func (s *Sweeper) Start() error {
	s.c = cron.New(cron.WithSeconds())

	_, err := s.c.AddFunc("0 0 0 * * *", func() {
		s.Run(context.Background())
	})
	if err != nil {
		return err
	}

	log.Println("Approval sweeper started (running nightly at 12:00AM)")
	s.c.Start()
	return nil
}

func (s *Sweeper) Stop() {
	if s.c != nil {
		s.c.Stop()
	}
}

func (s *Sweeper) Run(ctx context.Context) {
	n, err := s.requests.PurgeExpired(ctx, time.Now().UTC())
	if err != nil {
		log.Printf("Approval sweep failed: %v", err)
		return
	}
	log.Printf("Approval sweep removed %d expired requests", n)
}
