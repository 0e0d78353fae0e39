package streams

import (
	"sort"
)

// ListStreams returns a snapshot of every stream in the registry, finished
// ones included, ordered by stream id for stable output.
func (svc *streamsService) ListStreams() []Stream {
	svc.registryMtx.Lock()
	defer svc.registryMtx.Unlock()

	result := make([]Stream, 0, len(svc.registry))
	for _, stream := range svc.registry {
		copied := *stream
		copied.cancelTimer = nil
		result = append(result, copied)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].StreamID < result[j].StreamID
	})
	return result
}

// GetStream returns a copy of one stream.
func (svc *streamsService) GetStream(streamID string) (*Stream, error) {
	svc.registryMtx.Lock()
	defer svc.registryMtx.Unlock()

	stream, found := svc.registry[streamID]
	if !found {
		return nil, NewNotFoundError()
	}
	copied := *stream
	copied.cancelTimer = nil
	return &copied, nil
}

// clearTimerHandleLocked cancels and drops the scheduling handle if one is
// installed. Callers must hold registryMtx.
func (svc *streamsService) clearTimerHandleLocked(stream *Stream) {
	if stream.cancelTimer != nil {
		stream.cancelTimer()
		stream.cancelTimer = nil
	}
}
