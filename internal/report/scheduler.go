package report

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Veraticus/majordomo/internal/common"
	"github.com/Veraticus/majordomo/internal/model"
	"github.com/Veraticus/majordomo/internal/service"
)

// Scheduler pushes the daily digest to every known user at a fixed local
// time. It ticks once a minute and fires when the wall clock crosses the
// configured hour and minute, at most once per calendar day.
type Scheduler struct {
	aggregator *Aggregator
	storage    service.Storage
	transport  service.Transport
	loc        *time.Location

	hour   int
	minute int

	// injectable for tests
	now  func() time.Time
	tick func(context.Context) <-chan time.Time

	lastFired string
}

// NewScheduler creates the daily report scheduler. hour and minute are the
// fire time in loc.
func NewScheduler(aggregator *Aggregator, storage service.Storage, transport service.Transport, loc *time.Location, hour, minute int) *Scheduler {
	return &Scheduler{
		aggregator: aggregator,
		storage:    storage,
		transport:  transport,
		loc:        loc,
		hour:       hour,
		minute:     minute,
		now:        time.Now,
		tick: func(ctx context.Context) <-chan time.Time {
			t := time.NewTicker(time.Minute)
			go func() {
				<-ctx.Done()
				t.Stop()
			}()
			return t.C
		},
	}
}

// Run blocks until ctx is done, firing the digest when the local time
// matches the configured schedule.
func (s *Scheduler) Run(ctx context.Context) error {
	common.LogInfo("report scheduler started", common.Fields{
		"fire_time": fmt.Sprintf("%02d:%02d", s.hour, s.minute),
		"timezone":  s.loc.String(),
	})

	ticks := s.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticks:
			s.maybeFire(ctx)
		}
	}
}

// maybeFire runs the digest if the current minute matches the schedule and
// today has not fired yet.
func (s *Scheduler) maybeFire(ctx context.Context) {
	now := s.now().In(s.loc)
	if now.Hour() != s.hour || now.Minute() != s.minute {
		return
	}
	day := now.Format("2006-01-02")
	if day == s.lastFired {
		return
	}
	s.lastFired = day
	s.RunOnce(ctx, now)
}

// RunOnce builds and delivers the digest for every known user. Users are
// handled concurrently; a failure for one is logged and does not block the
// others.
func (s *Scheduler) RunOnce(ctx context.Context, asOf time.Time) {
	users, err := s.storage.ListUsers(ctx)
	if err != nil {
		common.LogError(err, "failed to list report recipients", nil)
		return
	}

	var g errgroup.Group
	for _, userID := range users {
		userID := userID
		g.Go(func() error {
			report, err := s.aggregator.Build(ctx, userID, asOf)
			if err != nil {
				common.LogError(err, "failed to build daily report", common.Fields{"user_id": userID})
				return nil
			}
			if err := s.transport.Send(ctx, userID, report.Render()); err != nil {
				common.LogError(err, "failed to deliver daily report", common.Fields{"user_id": userID})
				return nil
			}
			common.LogInfo("daily report delivered", common.Fields{"user_id": userID})
			return nil
		})
	}
	_ = g.Wait()
}

// Handler adapts the aggregator to the engine's handler contract so users
// can ask for their report on demand.
type Handler struct {
	aggregator *Aggregator
}

// NewHandler creates the on-demand report handler.
func NewHandler(aggregator *Aggregator) *Handler {
	return &Handler{aggregator: aggregator}
}

// Apply is unsupported: report actions are read only.
func (h *Handler) Apply(_ context.Context, action *model.Action) (model.Confirmation, error) {
	return model.Confirmation{}, fmt.Errorf("report handler cannot apply %s", action.Type)
}

// Query builds the caller's report as of now.
func (h *Handler) Query(ctx context.Context, action *model.Action) (model.Confirmation, error) {
	report, err := h.aggregator.Build(ctx, action.UserID, action.OccurredAt)
	if err != nil {
		return model.Confirmation{}, err
	}
	return model.Confirmation{Report: &report, Text: report.Render()}, nil
}
