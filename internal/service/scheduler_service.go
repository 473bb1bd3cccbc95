package service

import (
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// SchedulerService wraps cron-based jobs.
type SchedulerService struct {
	cron  *cron.Cron
	chain cron.Chain
}

func NewSchedulerService(loc *time.Location, log *zap.Logger) *SchedulerService {
	if loc == nil {
		loc = time.Local
	}
	if log == nil {
		log = zap.NewNop()
	}
	cronLog := cron.PrintfLogger(zap.NewStdLog(log.Named("cron")))
	return &SchedulerService{
		cron:  cron.New(cron.WithLocation(loc), cron.WithSeconds(), cron.WithLogger(cronLog)),
		chain: cron.NewChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
	}
}

func (s *SchedulerService) Start() {
	s.cron.Start()
}

func (s *SchedulerService) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

// ScheduleInterval registers a job every given duration. Runs are spaced by a
// constant delay and a run is skipped while the previous one is still busy.
func (s *SchedulerService) ScheduleInterval(interval time.Duration, job func()) (cron.EntryID, error) {
	id, _, err := s.scheduleInterval(interval, job)
	return id, err
}

// ScheduleIntervalNow is ScheduleInterval plus one run right away.
func (s *SchedulerService) ScheduleIntervalNow(interval time.Duration, job func()) (cron.EntryID, error) {
	id, wrapped, err := s.scheduleInterval(interval, job)
	if err != nil {
		return 0, err
	}
	go wrapped.Run()
	return id, nil
}

func (s *SchedulerService) scheduleInterval(interval time.Duration, job func()) (cron.EntryID, cron.Job, error) {
	if interval <= 0 {
		return 0, nil, fmt.Errorf("interval must be positive")
	}
	if interval < time.Second {
		interval = time.Second
	}
	wrapped := s.chain.Then(cron.FuncJob(job))
	return s.cron.Schedule(cron.Every(interval), wrapped), wrapped, nil
}
