package apply

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/automatedhome/allyscheduler/pkg/command"
	"github.com/automatedhome/allyscheduler/pkg/metrics"
	"github.com/automatedhome/allyscheduler/pkg/schedule"
)

// Publisher delivers one slot to one thermostat. A nil error means the
// command was applied.
type Publisher interface {
	Publish(ctx context.Context, device string, day schedule.Weekday, slot schedule.TimeSlot) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, device string, day schedule.Weekday, slot schedule.TimeSlot) error

func (f PublisherFunc) Publish(ctx context.Context, device string, day schedule.Weekday, slot schedule.TimeSlot) error {
	return f(ctx, device, day, slot)
}

var (
	// ErrTimeout is returned by publishers that gave up waiting for the bus.
	ErrTimeout = errors.New("publish timed out")
	// ErrRejected is returned by publishers when the payload was refused.
	ErrRejected = errors.New("payload rejected")
)

type Option func(*Applier)

// WithInterval pauses between two publishes.
func WithInterval(d time.Duration) Option {
	return func(a *Applier) { a.interval = d }
}

func WithMetrics(r *metrics.Recorder) Option {
	return func(a *Applier) { a.metrics = r }
}

// Applier publishes commands one at a time, in order.
type Applier struct {
	publisher Publisher
	logger    zerolog.Logger
	interval  time.Duration
	metrics   *metrics.Recorder
	now       func() time.Time
}

func New(p Publisher, logger zerolog.Logger, opts ...Option) *Applier {
	a := &Applier{
		publisher: p,
		logger:    logger.With().Str("component", "applier").Logger(),
		now:       time.Now,
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Apply publishes every command and records each outcome. A failed publish
// does not stop the run and is never retried here.
func (a *Applier) Apply(ctx context.Context, cmds []command.Command) *Report {
	report := &Report{RunID: uuid.NewString(), Outcomes: make([]Outcome, 0, len(cmds))}
	log := a.logger.With().Str("run_id", report.RunID).Logger()
	log.Info().Int("commands", len(cmds)).Msg("Applying schedule")

	for i, cmd := range cmds {
		if i > 0 && a.interval > 0 {
			a.pause(ctx)
		}

		start := a.now()
		err := a.publisher.Publish(ctx, cmd.Device, cmd.Day, cmd.Slot)
		took := a.now().Sub(start)

		out := Outcome{Command: cmd, Status: Applied}
		if err != nil {
			out.Status = Failed
			out.Reason = Classify(err)
			out.Err = err
			log.Warn().Err(err).
				Str("device", cmd.Device).
				Str("day", cmd.Day.String()).
				Str("slot", cmd.Slot.String()).
				Str("reason", string(out.Reason)).
				Msg("Failed to apply command")
		} else {
			log.Debug().
				Str("device", cmd.Device).
				Str("day", cmd.Day.String()).
				Str("slot", cmd.Slot.String()).
				Msg("Command applied")
		}
		a.metrics.ObserveCommand(string(out.Status), string(out.Reason), took)
		report.Outcomes = append(report.Outcomes, out)
	}

	a.metrics.ApplyFinished(a.now())
	log.Info().
		Int("applied", report.Applied()).
		Int("failed", len(report.Failures())).
		Msg("Schedule applied")
	return report
}

// pause waits for the interval or until ctx is done. A done ctx is left
// for the publisher to report.
func (a *Applier) pause(ctx context.Context) {
	t := time.NewTimer(a.interval)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Classify maps a publish error to a failure reason.
func Classify(err error) Reason {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return ReasonTimeout
	case errors.Is(err, context.Canceled):
		return ReasonCanceled
	case errors.Is(err, ErrRejected):
		return ReasonRejected
	}
	return ReasonTransport
}
