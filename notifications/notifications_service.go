package notifications

import (
	"sync"

	"github.com/streamhub/streamhub/constants"
	"github.com/streamhub/streamhub/events"
	"github.com/streamhub/streamhub/logger"
)

// NotificationSink fans user-visible messages out to the event bus, where the
// host (HTTP poller, desktop shell) picks them up. Errors are deduplicated
// per failure episode: repeated failures with the same dedupe key only emit
// once until the episode is cleared.
type NotificationSink interface {
	NotifyError(message string, dedupeKey string)
	NotifyInfo(message string)
	ClearEpisode(dedupeKey string)
}

type NotificationProperties struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

type notificationsService struct {
	eventPublisher events.EventPublisher

	episodesMtx sync.Mutex
	episodes    map[string]bool
}

func NewNotificationsService(eventPublisher events.EventPublisher) *notificationsService {
	return &notificationsService{
		eventPublisher: eventPublisher,
		episodes:       map[string]bool{},
	}
}

func (svc *notificationsService) NotifyError(message string, dedupeKey string) {
	if dedupeKey != "" {
		svc.episodesMtx.Lock()
		if svc.episodes[dedupeKey] {
			svc.episodesMtx.Unlock()
			logger.Logger.Debug().
				Str("dedupe_key", dedupeKey).
				Str("message", message).
				Msg("Suppressing duplicate error notification")
			return
		}
		svc.episodes[dedupeKey] = true
		svc.episodesMtx.Unlock()
	}

	logger.Logger.Warn().Str("message", message).Msg("User notification")
	svc.eventPublisher.Publish(&events.Event{
		Event: "notification",
		Properties: &NotificationProperties{
			Level:   constants.NOTIFICATION_LEVEL_ERROR,
			Message: message,
		},
	})
}

func (svc *notificationsService) NotifyInfo(message string) {
	logger.Logger.Info().Str("message", message).Msg("User notification")
	svc.eventPublisher.Publish(&events.Event{
		Event: "notification",
		Properties: &NotificationProperties{
			Level:   constants.NOTIFICATION_LEVEL_INFO,
			Message: message,
		},
	})
}

// ClearEpisode ends the current failure episode for the key. The next error
// with this key notifies again.
func (svc *notificationsService) ClearEpisode(dedupeKey string) {
	svc.episodesMtx.Lock()
	defer svc.episodesMtx.Unlock()
	delete(svc.episodes, dedupeKey)
}
