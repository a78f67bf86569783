//go:build !solution

package webpage

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jonboulle/clockwork"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"gitlab.com/slon/pageaccess/pageaccess"
)

// Lifecycle events of a visitor, in the order they happen.
const (
	EventCreated   = "created"
	EventReady     = "ready"
	EventAccessing = "accessing"
	EventExits     = "exits"
)

// Runner plays a roster against a Coordinator.
type Runner struct {
	Coordinator *pageaccess.Coordinator
	Logger      *zap.Logger
	Clock       clockwork.Clock
}

// NewRunner creates *Runner with a coordinator for the roster's policy.
// Extra options are passed to pageaccess.New.
func NewRunner(logger *zap.Logger, clock clockwork.Clock, roster *Roster, opts ...pageaccess.Option) *Runner {
	opts = append([]pageaccess.Option{
		pageaccess.WithPolicy(roster.Policy),
		pageaccess.WithClock(clock),
	}, opts...)
	return &Runner{
		Coordinator: pageaccess.New(opts...),
		Logger:      logger,
		Clock:       clock,
	}
}

// Run starts one goroutine per roster entry and waits for all of them.
// If ctx is cancelled, waiting visitors give up and Run returns ctx.Err().
func (r *Runner) Run(ctx context.Context, roster *Roster) error {
	runID, err := uuid.NewV4()
	if err != nil {
		return fmt.Errorf("generate run id: %w", err)
	}
	logger := r.Logger.With(zap.String("run_id", runID.String()))
	logger.Info("run started",
		zap.Stringer("policy", roster.Policy),
		zap.Duration("unit", roster.Unit),
		zap.Int("visitors", len(roster.Entries)),
	)

	g, ctx := errgroup.WithContext(ctx)
	for _, e := range roster.Entries {
		g.Go(func() error {
			return r.visit(ctx, logger.With(zap.Stringer("role", e.Role), zap.Int("id", e.ID)), e, roster.Unit)
		})
	}
	if err := g.Wait(); err != nil {
		logger.Warn("run aborted", zap.Error(err))
		return err
	}

	s := r.Coordinator.Stats()
	logger.Info("run finished",
		zap.Uint64("readers", s.Admitted[pageaccess.Reader]),
		zap.Uint64("writers", s.Admitted[pageaccess.Writer]),
	)
	return nil
}

func (r *Runner) visit(ctx context.Context, logger *zap.Logger, e Entry, unit time.Duration) error {
	logger.Info("visitor created", zap.String("event", EventCreated))

	if err := r.sleep(ctx, time.Duration(e.StartDelay)*unit); err != nil {
		return err
	}
	logger.Info("visitor ready", zap.String("event", EventReady))

	if err := r.Coordinator.AcquireContext(ctx, e.Role); err != nil {
		return fmt.Errorf("%v: %w", e, err)
	}
	defer r.Coordinator.Release(e.Role)

	// Критическая секция
	logger.Info("visitor accessing the page", zap.String("event", EventAccessing))
	err := r.sleep(ctx, time.Duration(e.Work)*unit)
	logger.Info("visitor exits the page", zap.String("event", EventExits))
	return err
}

func (r *Runner) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := r.Clock.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.Chan():
		return nil
	}
}
