package cache

import (
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Evictable is a cache region that can be flushed on a schedule.
type Evictable interface {
	Name() string
	EvictAll()
}

// Scheduler flushes registered regions on independent fixed periods.
// The first flush of a region happens one period after Start.
type Scheduler struct {
	cron   *cron.Cron
	logger *logrus.Entry
}

func NewScheduler(logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	entry := logger.WithField("component", "cache_scheduler")
	return &Scheduler{
		cron:   cron.New(cron.WithChain(cron.Recover(cron.PrintfLogger(entry)))),
		logger: entry,
	}
}

// Schedule registers region to be flushed every period.
func (s *Scheduler) Schedule(region Evictable, every time.Duration) error {
	if region == nil {
		return errors.New("region is nil")
	}
	if every < time.Second {
		return fmt.Errorf("eviction period for %q must be at least 1s, got %s", region.Name(), every)
	}
	s.cron.Schedule(cron.Every(every), cron.FuncJob(region.EvictAll))
	s.logger.WithFields(logrus.Fields{
		"region": region.Name(),
		"every":  every.String(),
	}).Info("cache eviction scheduled")
	return nil
}

// Scheduled reports the number of registered evictions.
func (s *Scheduler) Scheduled() int {
	return len(s.cron.Entries())
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("cache scheduler started")
}

// Stop halts further evictions and waits for a running one to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("cache scheduler stopped")
}
