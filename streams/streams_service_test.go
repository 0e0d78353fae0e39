package streams

import (
	"context"
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/streamhub/streamhub/constants"
	"github.com/streamhub/streamhub/db"
	"github.com/streamhub/streamhub/events"
	"github.com/streamhub/streamhub/notifications"
	"github.com/streamhub/streamhub/tests"
	"github.com/streamhub/streamhub/tests/mocks"
)

// recordingPublisher captures published events synchronously so tests can
// assert on them without racing goroutines.
type recordingPublisher struct {
	mtx      sync.Mutex
	captured []*events.Event
}

func (p *recordingPublisher) RegisterSubscriber(subscriber events.EventSubscriber) {}
func (p *recordingPublisher) RemoveSubscriber(subscriber events.EventSubscriber)   {}
func (p *recordingPublisher) SetGlobalProperty(key string, value interface{})      {}

func (p *recordingPublisher) Publish(event *events.Event) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	p.captured = append(p.captured, event)
}

func (p *recordingPublisher) PublishSync(event *events.Event) {
	p.Publish(event)
}

func (p *recordingPublisher) eventsNamed(name string) []*events.Event {
	p.mtx.Lock()
	defer p.mtx.Unlock()

	result := []*events.Event{}
	for _, event := range p.captured {
		if event.Event == name {
			result = append(result, event)
		}
	}
	return result
}

type fakeBalances struct {
	spendableMsat atomic.Int64
	refreshes     atomic.Int64
}

func (b *fakeBalances) CurrentSpendableBalance() int64 {
	return b.spendableMsat.Load()
}

func (b *fakeBalances) Refresh() {
	b.refreshes.Add(1)
}

func (b *fakeBalances) Start(ctx context.Context) {}

type fakeRates struct {
	rate float64
}

func (r *fakeRates) GetBitcoinRate(currency string) (float64, error) {
	if r.rate == 0 {
		return 0, errors.New("no rate available for " + currency)
	}
	return r.rate, nil
}

func (r *fakeRates) FiatToMsat(amountFiat float64, currency string) (int64, error) {
	rate, err := r.GetBitcoinRate(currency)
	if err != nil {
		return 0, err
	}
	return int64(math.Round(amountFiat / rate * constants.MSAT_PER_BTC)), nil
}

func (r *fakeRates) Start(ctx context.Context) {}

type streamsTestEnv struct {
	svc       *streamsService
	ts        *tests.TestService
	publisher *recordingPublisher
	ln        *mocks.MockLNClient
	balances  *fakeBalances
	rates     *fakeRates
}

func newStreamsTestEnv(t *testing.T) *streamsTestEnv {
	ts, err := tests.CreateTestService(t)
	require.NoError(t, err)
	t.Cleanup(ts.Remove)

	publisher := &recordingPublisher{}
	fr := &fakeRates{rate: 50_000}
	svc := NewStreamsService(context.Background(), ts.DB, publisher, notifications.NewNotificationsService(publisher), fr)

	ln := mocks.NewMockLNClient(t)
	fb := &fakeBalances{}
	fb.spendableMsat.Store(1_000_000_000)
	svc.SetBackends(ln, fb)

	return &streamsTestEnv{
		svc:       svc,
		ts:        ts,
		publisher: publisher,
		ln:        ln,
		balances:  fb,
		rates:     fr,
	}
}

// addStream stages and commits a BTC stream paying 1000 sats per part.
func (env *streamsTestEnv) addStream(t *testing.T, delayMs int64, totalParts int64) *Stream {
	stream, err := env.svc.PrepareStream(&PrepareStreamRequest{
		LightningID: tests.MockLightningID,
		Price:       0.00001,
		Currency:    constants.CURRENCY_BTC,
		DelayMs:     delayMs,
		TotalParts:  totalParts,
	})
	require.NoError(t, err)
	require.NoError(t, env.svc.AddStream(stream))
	return stream
}

func (env *streamsTestEnv) registryStream(t *testing.T, streamID string) *Stream {
	env.svc.registryMtx.Lock()
	defer env.svc.registryMtx.Unlock()
	stream, found := env.svc.registry[streamID]
	require.True(t, found)
	return stream
}

func (env *streamsTestEnv) streamStatus(t *testing.T, streamID string) string {
	stream, err := env.svc.GetStream(streamID)
	require.NoError(t, err)
	return stream.Status
}

func (env *streamsTestEnv) errorNotifications() []string {
	messages := []string{}
	for _, event := range env.publisher.eventsNamed("notification") {
		props := event.Properties.(*notifications.NotificationProperties)
		if props.Level == constants.NOTIFICATION_LEVEL_ERROR {
			messages = append(messages, props.Message)
		}
	}
	return messages
}

func TestPrepareStream_Validation(t *testing.T) {
	env := newStreamsTestEnv(t)

	for _, tc := range []struct {
		name string
		req  PrepareStreamRequest
	}{
		{"missing lightning id", PrepareStreamRequest{Price: 1, Currency: "BTC", DelayMs: 1000, TotalParts: 1}},
		{"malformed lightning id", PrepareStreamRequest{LightningID: "abc", Price: 1, Currency: "BTC", DelayMs: 1000, TotalParts: 1}},
		{"zero price", PrepareStreamRequest{LightningID: tests.MockLightningID, Price: 0, Currency: "BTC", DelayMs: 1000, TotalParts: 1}},
		{"negative price", PrepareStreamRequest{LightningID: tests.MockLightningID, Price: -1, Currency: "BTC", DelayMs: 1000, TotalParts: 1}},
		{"unknown currency", PrepareStreamRequest{LightningID: tests.MockLightningID, Price: 1, Currency: "EUR", DelayMs: 1000, TotalParts: 1}},
		{"zero delay", PrepareStreamRequest{LightningID: tests.MockLightningID, Price: 1, Currency: "BTC", DelayMs: 0, TotalParts: 1}},
		{"zero parts", PrepareStreamRequest{LightningID: tests.MockLightningID, Price: 1, Currency: "BTC", DelayMs: 1000, TotalParts: 0}},
		{"negative non-infinite parts", PrepareStreamRequest{LightningID: tests.MockLightningID, Price: 1, Currency: "BTC", DelayMs: 1000, TotalParts: -2}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			stream, err := env.svc.PrepareStream(&tc.req)
			assert.Error(t, err)
			assert.Nil(t, stream)
		})
	}

	assert.Empty(t, env.svc.ListStreams(), "failed validations must not stage anything")
}

func TestPrepareStream_StagesPausedStream(t *testing.T) {
	env := newStreamsTestEnv(t)

	stream, err := env.svc.PrepareStream(&PrepareStreamRequest{
		LightningID: tests.MockLightningID,
		Price:       2.5,
		Currency:    constants.CURRENCY_USD,
		DelayMs:     60_000,
		TotalParts:  constants.STREAM_PARTS_INFINITE,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, stream.StreamID)
	assert.Equal(t, constants.STREAM_STATUS_PAUSED, stream.Status)
	assert.Equal(t, constants.STREAM_MEMO_PREFIX+stream.StreamID, stream.Memo)
	assert.Zero(t, stream.PartsPaid)
	assert.Zero(t, stream.PartsPending)

	// staging alone registers and persists nothing
	assert.Empty(t, env.svc.ListStreams())
	var count int64
	env.ts.DB.Table("stream_payments").Count(&count)
	assert.Zero(t, count)
}

func TestAddStream_PersistsAndRegisters(t *testing.T) {
	env := newStreamsTestEnv(t)

	stream := env.addStream(t, 60_000, 5)

	listed := env.svc.ListStreams()
	require.Len(t, listed, 1)
	assert.Equal(t, stream.StreamID, listed[0].StreamID)

	var count int64
	env.ts.DB.Table("stream_payments").Where("stream_id = ?", stream.StreamID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestAddStream_Idempotent(t *testing.T) {
	env := newStreamsTestEnv(t)

	stream := env.addStream(t, 60_000, 5)
	require.NoError(t, env.svc.AddStream(stream))

	assert.Len(t, env.svc.ListStreams(), 1)
	var count int64
	env.ts.DB.Table("stream_payments").Where("stream_id = ?", stream.StreamID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestAddStream_PersistsMetadata(t *testing.T) {
	env := newStreamsTestEnv(t)

	stream, err := env.svc.PrepareStream(&PrepareStreamRequest{
		LightningID: tests.MockLightningID,
		Price:       0.00001,
		Currency:    constants.CURRENCY_BTC,
		DelayMs:     60_000,
		TotalParts:  5,
		Metadata:    map[string]interface{}{"label": "coffee fund", "order": float64(7)},
	})
	require.NoError(t, err)
	require.NoError(t, env.svc.AddStream(stream))

	var row db.StreamPayment
	require.NoError(t, env.ts.DB.Where("stream_id = ?", stream.StreamID).First(&row).Error)
	require.NotNil(t, row.Metadata)
	assert.JSONEq(t, `{"label": "coffee fund", "order": 7}`, string(row.Metadata))

	// the round trip through storage preserves the blob
	hydrated, err := env.svc.hydrate()
	require.NoError(t, err)
	require.Len(t, hydrated, 1)
	assert.Equal(t, stream.Metadata, hydrated[0].Metadata)
}

func TestUpdateStream_ReplacesMetadata(t *testing.T) {
	env := newStreamsTestEnv(t)

	stream := env.addStream(t, 60_000, 5)

	require.NoError(t, env.svc.UpdateStream(stream.StreamID, &UpdateStreamRequest{
		Metadata: map[string]interface{}{"label": "rent"},
	}))

	updated, err := env.svc.GetStream(stream.StreamID)
	require.NoError(t, err)
	assert.Equal(t, map[string]interface{}{"label": "rent"}, updated.Metadata)

	var row db.StreamPayment
	require.NoError(t, env.ts.DB.Where("stream_id = ?", stream.StreamID).First(&row).Error)
	assert.JSONEq(t, `{"label": "rent"}`, string(row.Metadata))
}

func TestUpdateStream_EditsPausedStream(t *testing.T) {
	env := newStreamsTestEnv(t)

	stream := env.addStream(t, 60_000, 5)

	newPrice := 0.0002
	newDelay := int64(120_000)
	newParts := constants.STREAM_PARTS_INFINITE
	require.NoError(t, env.svc.UpdateStream(stream.StreamID, &UpdateStreamRequest{
		Price:      &newPrice,
		DelayMs:    &newDelay,
		TotalParts: &newParts,
	}))

	updated, err := env.svc.GetStream(stream.StreamID)
	require.NoError(t, err)
	assert.Equal(t, newPrice, updated.Price)
	assert.Equal(t, newDelay, updated.DelayMs)
	assert.Equal(t, newParts, updated.TotalParts)

	var row struct {
		Price      float64
		DelayMs    int64
		TotalParts int64
	}
	require.NoError(t, env.ts.DB.Table("stream_payments").Where("stream_id = ?", stream.StreamID).Scan(&row).Error)
	assert.Equal(t, newPrice, row.Price)
	assert.Equal(t, newDelay, row.DelayMs)
	assert.Equal(t, newParts, row.TotalParts)
}

func TestUpdateStream_RejectsBoundBelowPartsPaid(t *testing.T) {
	env := newStreamsTestEnv(t)

	stream := env.addStream(t, 60_000, 10)
	env.registryStream(t, stream.StreamID).PartsPaid = 4

	lower := int64(3)
	err := env.svc.UpdateStream(stream.StreamID, &UpdateStreamRequest{TotalParts: &lower})
	assert.Error(t, err)

	equal := int64(4)
	assert.NoError(t, env.svc.UpdateStream(stream.StreamID, &UpdateStreamRequest{TotalParts: &equal}))
}

func TestUpdateStream_RejectsNonPausedStream(t *testing.T) {
	env := newStreamsTestEnv(t)

	stream := env.addStream(t, 60_000, 5)

	env.registryStream(t, stream.StreamID).Status = constants.STREAM_STATUS_STREAMING
	price := 1.0
	assert.Error(t, env.svc.UpdateStream(stream.StreamID, &UpdateStreamRequest{Price: &price}))

	env.registryStream(t, stream.StreamID).Status = constants.STREAM_STATUS_FINISHED
	assert.Error(t, env.svc.UpdateStream(stream.StreamID, &UpdateStreamRequest{Price: &price}))
}

func TestUpdateStream_NotFound(t *testing.T) {
	env := newStreamsTestEnv(t)

	price := 1.0
	err := env.svc.UpdateStream("missing", &UpdateStreamRequest{Price: &price})
	assert.True(t, IsNotFoundError(err))
}

func TestGetStream_CopiesDoNotAlias(t *testing.T) {
	env := newStreamsTestEnv(t)

	stream := env.addStream(t, 60_000, 5)

	copied, err := env.svc.GetStream(stream.StreamID)
	require.NoError(t, err)
	copied.PartsPaid = 99

	assert.Zero(t, env.registryStream(t, stream.StreamID).PartsPaid)
}
