package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/serroba/shortlink/internal/events"
	"github.com/serroba/shortlink/internal/messaging"
	"go.uber.org/zap"
)

const sweepTimeout = 5 * time.Minute

// Purger deletes links expired at its current time and reports the cutoff used.
type Purger interface {
	PurgeExpired(ctx context.Context) (int64, time.Time, error)
}

// Sweeper periodically hard-deletes expired links. Resolution never depends
// on it; expired links are already unresolvable.
type Sweeper struct {
	cron     *cron.Cron
	schedule string
	purger   Purger
	publish  messaging.Publish[events.LinksPurged]
	logger   *zap.Logger
}

// New creates a sweeper running on schedule, a five-field cron expression or
// a descriptor such as "@hourly" or "@every 30m".
func New(
	schedule string,
	purger Purger,
	publish messaging.Publish[events.LinksPurged],
	logger *zap.Logger,
) (*Sweeper, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(schedule); err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", schedule, err)
	}

	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger.Named("cron")))

	return &Sweeper{
		cron: cron.New(
			cron.WithParser(parser),
			cron.WithLocation(time.UTC),
			cron.WithChain(cron.SkipIfStillRunning(cronLogger)),
		),
		schedule: schedule,
		purger:   purger,
		publish:  publish,
		logger:   logger,
	}, nil
}

// Start schedules the sweep. Runs stop when ctx is done or on Shutdown.
func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.schedule, func() {
		_, _ = s.Sweep(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("sweeper started", zap.String("schedule", s.schedule))

	return nil
}

// Sweep runs one purge pass and returns the number of links removed.
func (s *Sweeper) Sweep(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	count, cutoff, err := s.purger.PurgeExpired(ctx)
	if err != nil {
		s.logger.Error("failed to purge expired links", zap.Error(err))

		return 0, err
	}

	if count == 0 {
		s.logger.Debug("no expired links to purge")

		return 0, nil
	}

	s.logger.Info("purged expired links", zap.Int64("count", count))

	event := &events.LinksPurged{
		Count:    count,
		Before:   cutoff,
		PurgedAt: time.Now().UTC(),
	}

	if err := s.publish(ctx, event); err != nil {
		s.logger.Error("failed to publish links purged event", zap.Error(err))
	}

	return count, nil
}

// Shutdown stops scheduling and waits for a running sweep to finish.
func (s *Sweeper) Shutdown() error {
	<-s.cron.Stop().Done()

	s.logger.Info("sweeper stopped")

	return nil
}
