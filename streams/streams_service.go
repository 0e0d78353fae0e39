package streams

import (
	"context"
	"math"
	"slices"
	"sync"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/streamhub/streamhub/balances"
	"github.com/streamhub/streamhub/constants"
	"github.com/streamhub/streamhub/events"
	"github.com/streamhub/streamhub/lnclient"
	"github.com/streamhub/streamhub/notifications"
	"github.com/streamhub/streamhub/rates"
	"github.com/streamhub/streamhub/utils"
)

// streamsService is the scheduler context: it owns the stream registry and
// every timer handle, so independent schedulers can coexist (one per test,
// one per process).
type streamsService struct {
	db             *gorm.DB
	eventPublisher events.EventPublisher
	notifier       notifications.NotificationSink
	ratesSvc       rates.RatesService
	lnClient       lnclient.LNClient
	balancesSvc    balances.BalancesService
	ctx            context.Context

	// registryMtx guards the registry and every Stream it holds. Iterations
	// re-fetch the stream after each call that released the lock, so a pause
	// or finish that lands mid-iteration is observed at the next step.
	registryMtx sync.Mutex
	registry    map[string]*Stream
}

func NewStreamsService(ctx context.Context, gormDB *gorm.DB, eventPublisher events.EventPublisher, notifier notifications.NotificationSink, ratesSvc rates.RatesService) *streamsService {
	return &streamsService{
		db:             gormDB,
		eventPublisher: eventPublisher,
		notifier:       notifier,
		ratesSvc:       ratesSvc,
		ctx:            ctx,
		registry:       map[string]*Stream{},
	}
}

// SetBackends wires the node-dependent collaborators once the node is up.
func (svc *streamsService) SetBackends(lnClient lnclient.LNClient, balancesSvc balances.BalancesService) {
	svc.lnClient = lnClient
	svc.balancesSvc = balancesSvc
}

// PrepareStream validates the details and stages a new stream without
// persisting or scheduling it. Validation failures never mutate state.
func (svc *streamsService) PrepareStream(req *PrepareStreamRequest) (*Stream, error) {
	if req.LightningID == "" {
		return nil, NewRequiredFieldError("lightningId")
	}
	if err := utils.ValidateLightningPubkey(req.LightningID); err != nil {
		return nil, NewValidationError(err.Error())
	}
	if req.Price <= 0 {
		return nil, NewValidationError("price must be positive")
	}
	if !slices.Contains(constants.GetCurrencies(), req.Currency) {
		return nil, NewValidationError("currency must be one of BTC, USD")
	}
	if req.DelayMs <= 0 {
		return nil, NewValidationError("delay must be a positive number of milliseconds")
	}
	if req.TotalParts != constants.STREAM_PARTS_INFINITE && req.TotalParts <= 0 {
		return nil, NewValidationError("totalParts must be positive or infinite")
	}

	streamID := uuid.NewString()
	return &Stream{
		StreamID:    streamID,
		LightningID: req.LightningID,
		Price:       req.Price,
		Currency:    req.Currency,
		DelayMs:     req.DelayMs,
		TotalParts:  req.TotalParts,
		Status:      constants.STREAM_STATUS_PAUSED,
		Memo:        constants.STREAM_MEMO_PREFIX + streamID,
		Metadata:    req.Metadata,
	}, nil
}

// AddStream commits a staged stream: registry entry plus durable row. The
// insert propagates failure, unlike progress bookkeeping, because losing a
// whole stream on restart is not an acceptable trade-off.
func (svc *streamsService) AddStream(stream *Stream) error {
	if stream == nil || stream.StreamID == "" {
		return NewRequiredFieldError("streamId")
	}

	svc.registryMtx.Lock()
	if _, exists := svc.registry[stream.StreamID]; exists {
		svc.registryMtx.Unlock()
		return nil
	}
	svc.registry[stream.StreamID] = stream
	svc.registryMtx.Unlock()

	if err := svc.persistCreate(stream); err != nil {
		svc.registryMtx.Lock()
		delete(svc.registry, stream.StreamID)
		svc.registryMtx.Unlock()
		return err
	}
	return nil
}

// UpdateStream edits the plan of a paused stream. The new bound is
// re-validated against parts already paid.
func (svc *streamsService) UpdateStream(streamID string, req *UpdateStreamRequest) error {
	svc.registryMtx.Lock()
	stream, found := svc.registry[streamID]
	if !found {
		svc.registryMtx.Unlock()
		return NewNotFoundError()
	}
	if stream.Status == constants.STREAM_STATUS_STREAMING {
		svc.registryMtx.Unlock()
		return NewValidationError("stream must be paused before editing")
	}
	if stream.Status == constants.STREAM_STATUS_FINISHED {
		svc.registryMtx.Unlock()
		return NewValidationError("finished streams cannot be edited")
	}

	if req.Price != nil && *req.Price <= 0 {
		svc.registryMtx.Unlock()
		return NewValidationError("price must be positive")
	}
	if req.Currency != nil && !slices.Contains(constants.GetCurrencies(), *req.Currency) {
		svc.registryMtx.Unlock()
		return NewValidationError("currency must be one of BTC, USD")
	}
	if req.DelayMs != nil && *req.DelayMs <= 0 {
		svc.registryMtx.Unlock()
		return NewValidationError("delay must be a positive number of milliseconds")
	}
	if req.TotalParts != nil && *req.TotalParts != constants.STREAM_PARTS_INFINITE {
		if *req.TotalParts <= 0 {
			svc.registryMtx.Unlock()
			return NewValidationError("totalParts must be positive or infinite")
		}
		if *req.TotalParts < stream.PartsPaid {
			svc.registryMtx.Unlock()
			return NewValidationError("totalParts cannot be lower than the parts already paid")
		}
	}

	if req.Price != nil {
		stream.Price = *req.Price
	}
	if req.Currency != nil {
		stream.Currency = *req.Currency
	}
	if req.DelayMs != nil {
		stream.DelayMs = *req.DelayMs
	}
	if req.TotalParts != nil {
		stream.TotalParts = *req.TotalParts
	}
	if req.Metadata != nil {
		stream.Metadata = req.Metadata
	}
	updated := *stream
	svc.registryMtx.Unlock()

	return svc.persistUpdate(&updated)
}

// streamAmountMsat resolves the per-part amount in msat, converting from
// fiat when the stream is not BTC denominated.
func (svc *streamsService) streamAmountMsat(price float64, currency string) (int64, error) {
	if currency == constants.CURRENCY_BTC {
		return int64(math.Round(price * constants.MSAT_PER_BTC)), nil
	}
	return svc.ratesSvc.FiatToMsat(price, currency)
}
