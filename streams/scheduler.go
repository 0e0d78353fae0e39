package streams

import (
	"context"
	"time"

	"github.com/streamhub/streamhub/constants"
	"github.com/streamhub/streamhub/events"
	"github.com/streamhub/streamhub/logger"
	"github.com/streamhub/streamhub/utils"
)

// StartStream transitions a stream to streaming and installs its timer. A
// stream already streaming (unless force), already at capacity, or already
// holding a timer handle is left untouched.
//
// Drift correction: the first tick is anchored to the last settled part, not
// to the moment of this call. Resuming too early waits out the remainder of
// the interval; resuming between one and two intervals late fires exactly
// one catch-up part for the missed slot; anything later starts fresh with an
// immediate part and no further catch-up.
func (svc *streamsService) StartStream(streamID string, force bool) error {
	svc.registryMtx.Lock()
	stream, found := svc.registry[streamID]
	if !found {
		svc.registryMtx.Unlock()
		return NewNotFoundError()
	}
	if stream.Status == constants.STREAM_STATUS_FINISHED || stream.completed() {
		svc.registryMtx.Unlock()
		logger.Logger.Debug().Str("stream_id", streamID).Msg("Not starting finished stream")
		return nil
	}
	if stream.Status == constants.STREAM_STATUS_STREAMING && !force {
		svc.registryMtx.Unlock()
		return nil
	}
	if stream.atCapacity() {
		svc.registryMtx.Unlock()
		return nil
	}
	if stream.cancelTimer != nil {
		svc.registryMtx.Unlock()
		return nil
	}

	stream.Status = constants.STREAM_STATUS_STREAMING
	partsPaid := stream.PartsPaid
	lastPayment := stream.LastPayment
	delayMs := stream.DelayMs

	timerCtx, cancel := context.WithCancel(svc.ctx)
	stream.cancelTimer = cancel
	svc.registryMtx.Unlock()

	// a manual (re)start opens a fresh failure episode
	svc.notifier.ClearEpisode(streamID)

	status := constants.STREAM_STATUS_STREAMING
	svc.persistProgress(streamID, partsPaid, nil, &status)

	var borrowedAnchor int64
	var initialWait time.Duration
	if lastPayment != 0 {
		elapsed := time.Now().UnixMilli() - lastPayment
		if elapsed < delayMs {
			// too early to pay again, wait out the rest of the interval
			initialWait = time.Duration(delayMs-elapsed) * time.Millisecond
		} else if elapsed < 2*delayMs {
			// exactly one slot was missed: pay it now, anchored at its
			// nominal time, and schedule the next part on cadence
			borrowedAnchor = lastPayment + delayMs
			initialWait = time.Duration(2*delayMs-elapsed) * time.Millisecond
		}
	}

	logger.Logger.Info().
		Str("stream_id", streamID).
		Int64("delay_ms", delayMs).
		Dur("initial_wait", initialWait).
		Bool("borrowed", borrowedAnchor != 0).
		Msg("Starting stream")

	go svc.runStreamTimer(timerCtx, streamID, borrowedAnchor, initialWait, time.Duration(delayMs)*time.Millisecond)
	return nil
}

// runStreamTimer is the per-stream timing loop. timerCtx only gates the
// waits: iterations run against the service context, so cancelling the timer
// never aborts a payment already handed to the node.
func (svc *streamsService) runStreamTimer(timerCtx context.Context, streamID string, borrowedAnchor int64, initialWait time.Duration, delay time.Duration) {
	if borrowedAnchor != 0 {
		svc.makeStreamIteration(streamID, borrowedAnchor)
	}
	if initialWait > 0 {
		select {
		case <-timerCtx.Done():
			return
		case <-time.After(initialWait):
		}
	}
	if timerCtx.Err() != nil {
		return
	}
	svc.makeStreamIteration(streamID, time.Now().UnixMilli())

	ticker := time.NewTicker(delay)
	defer ticker.Stop()
	for {
		select {
		case <-timerCtx.Done():
			return
		case <-ticker.C:
			svc.makeStreamIteration(streamID, time.Now().UnixMilli())
		}
	}
}

// PauseStream cancels the stream's timer and, if it was streaming, marks it
// paused. The durable status is only touched when persist is set, so a
// shutdown pause leaves "run" rows behind for the next hydrate to resume.
func (svc *streamsService) PauseStream(streamID string, persist bool) error {
	svc.registryMtx.Lock()
	stream, found := svc.registry[streamID]
	if !found {
		svc.registryMtx.Unlock()
		return NewNotFoundError()
	}
	svc.clearTimerHandleLocked(stream)
	if stream.Status != constants.STREAM_STATUS_STREAMING {
		svc.registryMtx.Unlock()
		return nil
	}
	stream.Status = constants.STREAM_STATUS_PAUSED
	partsPaid := stream.PartsPaid
	svc.registryMtx.Unlock()

	if persist {
		status := constants.STREAM_STATUS_PAUSED
		svc.persistProgress(streamID, partsPaid, nil, &status)
	}

	logger.Logger.Info().Str("stream_id", streamID).Msg("Stream paused")
	svc.eventPublisher.Publish(&events.Event{
		Event: EVENT_STREAM_PAUSED,
		Properties: &StreamStatusProperties{
			StreamID:  streamID,
			PartsPaid: partsPaid,
		},
	})
	return nil
}

// PauseAllStreams pauses every streaming stream, e.g. on shutdown.
func (svc *streamsService) PauseAllStreams(persist bool) {
	svc.registryMtx.Lock()
	streamIDs := make([]string, 0, len(svc.registry))
	for streamID, stream := range svc.registry {
		if stream.Status == constants.STREAM_STATUS_STREAMING {
			streamIDs = append(streamIDs, streamID)
		}
	}
	svc.registryMtx.Unlock()

	for _, streamID := range streamIDs {
		_ = svc.PauseStream(streamID, persist)
	}
}

// FinishStream cancels the timer and moves the stream to its terminal state.
// Finished streams stay in the registry for history but are never scheduled
// again.
func (svc *streamsService) FinishStream(streamID string) error {
	svc.registryMtx.Lock()
	stream, found := svc.registry[streamID]
	if !found {
		svc.registryMtx.Unlock()
		return NewNotFoundError()
	}
	svc.clearTimerHandleLocked(stream)
	if stream.Status == constants.STREAM_STATUS_FINISHED {
		svc.registryMtx.Unlock()
		return nil
	}
	stream.Status = constants.STREAM_STATUS_FINISHED
	partsPaid := stream.PartsPaid
	svc.registryMtx.Unlock()

	status := constants.STREAM_STATUS_FINISHED
	svc.persistProgress(streamID, partsPaid, nil, &status)

	logger.Logger.Info().Str("stream_id", streamID).Int64("parts_paid", partsPaid).Msg("Stream finished")
	svc.eventPublisher.Publish(&events.Event{
		Event: EVENT_STREAM_FINISHED,
		Properties: &StreamStatusProperties{
			StreamID:  streamID,
			PartsPaid: partsPaid,
		},
	})
	return nil
}

// LoadStreams hydrates the registry from storage and resumes every stream an
// interrupted session left running.
func (svc *streamsService) LoadStreams() error {
	hydrated, err := svc.hydrate()
	if err != nil {
		return err
	}

	svc.registryMtx.Lock()
	inserted := []*Stream{}
	for _, stream := range hydrated {
		if _, exists := svc.registry[stream.StreamID]; exists {
			continue
		}
		svc.registry[stream.StreamID] = stream
		inserted = append(inserted, stream)
	}
	resume := utils.Filter(inserted, func(stream *Stream) bool {
		return stream.Status == constants.STREAM_STATUS_STREAMING
	})
	resumeIDs := make([]string, 0, len(resume))
	for _, stream := range resume {
		resumeIDs = append(resumeIDs, stream.StreamID)
	}
	svc.registryMtx.Unlock()

	for _, streamID := range resumeIDs {
		if err := svc.StartStream(streamID, true); err != nil {
			logger.Logger.Error().Err(err).Str("stream_id", streamID).Msg("Failed to resume stream")
		}
	}
	return nil
}
