package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"

	"github.com/playlistbridge/playlistbridge/internal/logging"
)

// progressTopic is the single in-process topic every sync's progress is
// published to; subscribers (internal/api's Handler is the only one)
// sort events by SyncProgress.PlaylistName themselves.
const progressTopic = "sync.progress"

// SyncProgress is published after every coarse pipeline step and after
// every per-track update within step 2 (spec §6).
type SyncProgress struct {
	PlaylistName string `json:"playlist_name"`
	Step         string `json:"step"`
	CurrentTrack string `json:"current_track"`
	ProgressPct  int    `json:"progress_pct"`
	TotalSteps   int    `json:"total_steps"`
	StepNumber   int    `json:"step_number"`
	Total        int    `json:"total"`
	Matched      int    `json:"matched"`
	Failed       int    `json:"failed"`
}

// progressBus wraps a watermill in-memory gochannel pub/sub carrying
// SyncProgress events — a deliberately small slice of the teacher's much
// larger watermill/NATS event bus (internal/eventprocessor), since this
// daemon has exactly one process and needs no cross-process delivery.
type progressBus struct {
	pubsub *gochannel.GoChannel
}

func newProgressBus() *progressBus {
	logger := watermill.NewStdLogger(false, false)
	pubsub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, logger)
	return &progressBus{pubsub: pubsub}
}

// publish sends one SyncProgress event, logging (not failing the sync) if
// the bus cannot accept it.
func (b *progressBus) publish(p SyncProgress) {
	payload, err := json.Marshal(p)
	if err != nil {
		logging.Warn().Err(err).Msg("marshal sync progress event failed")
		return
	}
	msg := message.NewMessage(uuid.New().String(), payload)
	if err := b.pubsub.Publish(progressTopic, msg); err != nil {
		logging.Warn().Err(err).Msg("publish sync progress event failed")
	}
}

// Subscribe returns a channel of SyncProgress events for every running
// and future sync, used by internal/api's Handler to mirror progress into
// a per-playlist ring buffer without polling the orchestrator directly.
func (b *progressBus) Subscribe(ctx context.Context) (<-chan SyncProgress, error) {
	msgs, err := b.pubsub.Subscribe(ctx, progressTopic)
	if err != nil {
		return nil, fmt.Errorf("subscribe to sync progress: %w", err)
	}

	out := make(chan SyncProgress, 256)
	go func() {
		defer close(out)
		for msg := range msgs {
			var p SyncProgress
			if err := json.Unmarshal(msg.Payload, &p); err != nil {
				msg.Ack()
				continue
			}
			msg.Ack()
			select {
			case out <- p:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (b *progressBus) Close() error {
	return b.pubsub.Close()
}
