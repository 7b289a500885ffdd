package sched

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/chainplay/arenabot/src/app/tournaments"
	"github.com/chainplay/arenabot/src/domain/shared"
	"github.com/chainplay/arenabot/src/domain/tournament"
)

// DefaultInterval is the lifecycle sweep cadence.
const DefaultInterval = 30 * time.Second

// Announcer pushes transition announcements to the channel a tournament was
// created in. Delivery is best effort.
type Announcer interface {
	Send(ctx context.Context, channel shared.ChannelID, text string) error
}

// Sweeper drives the tournament lifecycle clock: a recurring job that advances
// every tournament once per tick. Transitions are computed by the store; the
// sweeper schedules, logs, counts, and announces them.
type Sweeper struct {
	service     *tournaments.Service
	announcer   Announcer
	logger      *zap.Logger
	interval    time.Duration
	transitions *prometheus.CounterVec

	scheduler gocron.Scheduler
	sweeps    atomic.Int64
}

// NewSweeper creates a sweeper over the tournament service. The announcer and
// the transitions counter are optional; pass nil to skip announcements or
// metrics.
func NewSweeper(service *tournaments.Service, announcer Announcer, logger *zap.Logger, interval time.Duration, transitions *prometheus.CounterVec) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Sweeper{
		service:     service,
		announcer:   announcer,
		logger:      logger,
		interval:    interval,
		transitions: transitions,
	}
}

// Start launches the recurring sweep job.
func (s *Sweeper) Start() error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return err
	}
	_, err = scheduler.NewJob(
		gocron.DurationJob(s.interval),
		gocron.NewTask(func() { s.RunOnce(context.Background()) }),
	)
	if err != nil {
		return err
	}
	s.scheduler = scheduler
	scheduler.Start()
	s.logger.Info("lifecycle sweeper started", zap.Duration("interval", s.interval))
	return nil
}

// RunOnce performs a single sweep tick.
func (s *Sweeper) RunOnce(ctx context.Context) {
	s.sweeps.Inc()
	for _, tr := range s.service.Sweep(ctx) {
		s.logger.Info("tournament transition",
			zap.String("tournament", string(tr.ID)),
			zap.String("from", string(tr.From)),
			zap.String("to", string(tr.To)),
			zap.String("winner", string(tr.Winner)),
		)
		if s.transitions != nil {
			s.transitions.WithLabelValues(string(tr.To)).Inc()
		}
		if s.announcer != nil && tr.Channel != "" {
			if err := s.announcer.Send(ctx, tr.Channel, announceText(tr)); err != nil {
				s.logger.Warn("transition announcement failed",
					zap.String("tournament", string(tr.ID)),
					zap.String("channel", string(tr.Channel)),
					zap.Error(err),
				)
			}
		}
	}
}

func announceText(tr tournament.Transition) string {
	switch {
	case tr.To == tournament.StateActive:
		return fmt.Sprintf("🏁 Tournament %s is live! Outcomes count from now on.", tr.ID)
	case tr.Winner != "":
		return fmt.Sprintf("🏆 Tournament %s has ended. Winner: %s", tr.ID, tr.Winner)
	}
	return fmt.Sprintf("🏁 Tournament %s has ended with no entrants.", tr.ID)
}

// Sweeps reports how many ticks have run.
func (s *Sweeper) Sweeps() int64 {
	return s.sweeps.Load()
}

// Stop shuts the scheduler down, waiting for a running tick to finish.
func (s *Sweeper) Stop() error {
	if s.scheduler == nil {
		return nil
	}
	return s.scheduler.Shutdown()
}
