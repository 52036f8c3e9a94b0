package mqttbus

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/automatedhome/allyscheduler/pkg/ally"
	"github.com/automatedhome/allyscheduler/pkg/apply"
	"github.com/automatedhome/allyscheduler/pkg/schedule"
)

// DryRun logs what would be published without touching the broker.
type DryRun struct {
	TopicSet string
	Programs *ally.Programs
	logger   zerolog.Logger
}

func NewDryRun(topicSet string, logger zerolog.Logger) *DryRun {
	return &DryRun{TopicSet: topicSet, logger: logger.With().Str("component", "dry-run").Logger()}
}

func (d *DryRun) Publish(ctx context.Context, device string, day schedule.Weekday, slot schedule.TimeSlot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := d.Programs.Payload(device, day, slot)
	if err != nil {
		return fmt.Errorf("%w: %w", apply.ErrRejected, err)
	}
	d.logger.Info().
		Str("topic", ally.Topic(d.TopicSet, device)).
		RawJSON("payload", payload).
		Msg("[DRY-RUN] Sending schedule")
	return nil
}
