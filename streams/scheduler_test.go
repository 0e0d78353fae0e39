package streams

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/streamhub/streamhub/constants"
	"github.com/streamhub/streamhub/db"
	"github.com/streamhub/streamhub/lnclient"
	"github.com/streamhub/streamhub/tests"
)

// expectPartPayments arms the gateway mock for exactly n successful parts of
// 1000 sats each (the amount addStream's price resolves to).
func (env *streamsTestEnv) expectPartPayments(n int) {
	env.ln.EXPECT().
		CreateInvoice(mock.Anything, tests.MockLightningID, int64(1_000_000), mock.Anything).
		Return(&lnclient.Invoice{
			PaymentRequest: tests.MockPaymentRequest,
			PaymentHash:    tests.MockPaymentHash,
			AmountMsat:     1_000_000,
		}, nil).
		Times(n)
	env.ln.EXPECT().
		SendPayment(mock.Anything, tests.MockPaymentRequest).
		Return(&lnclient.PaymentReceipt{ReceiptID: tests.MockPaymentHash}, nil).
		Times(n)
}

func (env *streamsTestEnv) waitForEvents(t *testing.T, name string, count int) {
	require.Eventually(t, func() bool {
		return len(env.publisher.eventsNamed(name)) >= count
	}, 5*time.Second, 10*time.Millisecond)
}

func TestStartStream_PaysOnCadenceUntilFinished(t *testing.T) {
	env := newStreamsTestEnv(t)
	env.expectPartPayments(3)

	stream := env.addStream(t, 50, 3)
	require.NoError(t, env.svc.StartStream(stream.StreamID, false))

	env.waitForEvents(t, EVENT_STREAM_FINISHED, 1)

	paid := env.publisher.eventsNamed(EVENT_STREAM_PART_PAID)
	require.Len(t, paid, 3)
	for i, event := range paid {
		props := event.Properties.(*StreamPartPaidProperties)
		assert.Equal(t, stream.StreamID, props.StreamID)
		assert.EqualValues(t, i+1, props.PartsPaid)
		assert.EqualValues(t, 1_000_000, props.AmountMsat)
	}

	finished, err := env.svc.GetStream(stream.StreamID)
	require.NoError(t, err)
	assert.Equal(t, constants.STREAM_STATUS_FINISHED, finished.Status)
	assert.EqualValues(t, 3, finished.PartsPaid)
	assert.Zero(t, finished.PartsPending)

	var row db.StreamPayment
	require.NoError(t, env.ts.DB.Where("stream_id = ?", stream.StreamID).First(&row).Error)
	assert.Equal(t, constants.STREAM_DB_STATUS_END, row.Status)
	assert.EqualValues(t, 3, row.PartsPaid)

	var parts int64
	env.ts.DB.Model(&db.StreamPart{}).Where("stream_id = ?", stream.StreamID).Count(&parts)
	assert.EqualValues(t, 3, parts)

	assert.GreaterOrEqual(t, env.balances.refreshes.Load(), int64(3))
}

func TestStartStream_SecondStartIsNoop(t *testing.T) {
	env := newStreamsTestEnv(t)
	env.expectPartPayments(1)

	stream := env.addStream(t, 3_600_000, constants.STREAM_PARTS_INFINITE)
	require.NoError(t, env.svc.StartStream(stream.StreamID, false))
	require.NoError(t, env.svc.StartStream(stream.StreamID, false))
	require.NoError(t, env.svc.StartStream(stream.StreamID, true))

	env.waitForEvents(t, EVENT_STREAM_PART_PAID, 1)
	time.Sleep(100 * time.Millisecond)

	assert.Len(t, env.publisher.eventsNamed(EVENT_STREAM_PART_PAID), 1)
	assert.Equal(t, constants.STREAM_STATUS_STREAMING, env.streamStatus(t, stream.StreamID))

	require.NoError(t, env.svc.PauseStream(stream.StreamID, false))
}

func TestStartStream_ResumeTooEarlyWaitsOutInterval(t *testing.T) {
	env := newStreamsTestEnv(t)

	stream := env.addStream(t, 60_000, constants.STREAM_PARTS_INFINITE)
	registered := env.registryStream(t, stream.StreamID)
	registered.PartsPaid = 1
	registered.LastPayment = time.Now().UnixMilli() - 1_000

	require.NoError(t, env.svc.StartStream(stream.StreamID, false))
	time.Sleep(150 * time.Millisecond)

	assert.Empty(t, env.publisher.eventsNamed(EVENT_STREAM_PART_PAID))
	assert.Equal(t, constants.STREAM_STATUS_STREAMING, env.streamStatus(t, stream.StreamID))

	require.NoError(t, env.svc.PauseStream(stream.StreamID, false))
}

func TestStartStream_ResumeWithinTwoIntervalsPaysBorrowedPart(t *testing.T) {
	env := newStreamsTestEnv(t)
	env.expectPartPayments(2)

	stream := env.addStream(t, 600, constants.STREAM_PARTS_INFINITE)
	lastPayment := time.Now().UnixMilli() - 900
	registered := env.registryStream(t, stream.StreamID)
	registered.PartsPaid = 1
	registered.LastPayment = lastPayment

	require.NoError(t, env.svc.StartStream(stream.StreamID, false))

	env.waitForEvents(t, EVENT_STREAM_PART_PAID, 1)

	// the catch-up part settles at its nominal slot, not at resume time
	resumed, err := env.svc.GetStream(stream.StreamID)
	require.NoError(t, err)
	assert.Equal(t, lastPayment+600, resumed.LastPayment)
	assert.EqualValues(t, 2, resumed.PartsPaid)
	assert.Equal(t, constants.STREAM_STATUS_STREAMING, resumed.Status)

	// the regular cadence picks up two full intervals after the skipped slot,
	// never earlier
	env.waitForEvents(t, EVENT_STREAM_PART_PAID, 2)
	resumed, err = env.svc.GetStream(stream.StreamID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, resumed.LastPayment, lastPayment+2*600)
	assert.EqualValues(t, 3, resumed.PartsPaid)

	require.NoError(t, env.svc.PauseStream(stream.StreamID, false))
}

func TestStartStream_ResumeBeyondTwoIntervalsStartsFresh(t *testing.T) {
	env := newStreamsTestEnv(t)
	env.expectPartPayments(1)

	stream := env.addStream(t, 60_000, constants.STREAM_PARTS_INFINITE)
	resumeEpoch := time.Now().UnixMilli()
	registered := env.registryStream(t, stream.StreamID)
	registered.PartsPaid = 1
	registered.LastPayment = resumeEpoch - 200_000

	require.NoError(t, env.svc.StartStream(stream.StreamID, false))

	env.waitForEvents(t, EVENT_STREAM_PART_PAID, 1)

	// a single immediate part anchored at resume time, no extra catch-up
	resumed, err := env.svc.GetStream(stream.StreamID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, resumed.LastPayment, resumeEpoch)
	assert.EqualValues(t, 2, resumed.PartsPaid)

	require.NoError(t, env.svc.PauseStream(stream.StreamID, false))
}

func TestStartStream_FinishedStreamIsTerminal(t *testing.T) {
	env := newStreamsTestEnv(t)

	stream := env.addStream(t, 50, 3)
	require.NoError(t, env.svc.FinishStream(stream.StreamID))

	require.NoError(t, env.svc.StartStream(stream.StreamID, false))
	require.NoError(t, env.svc.StartStream(stream.StreamID, true))
	time.Sleep(100 * time.Millisecond)

	assert.Equal(t, constants.STREAM_STATUS_FINISHED, env.streamStatus(t, stream.StreamID))
	assert.Empty(t, env.publisher.eventsNamed(EVENT_STREAM_PART_PAID))
}

func TestStartStream_AtCapacityIsNoop(t *testing.T) {
	env := newStreamsTestEnv(t)

	stream := env.addStream(t, 50, 2)
	registered := env.registryStream(t, stream.StreamID)
	registered.PartsPaid = 1
	registered.PartsPending = 1

	require.NoError(t, env.svc.StartStream(stream.StreamID, false))
	time.Sleep(100 * time.Millisecond)

	registered = env.registryStream(t, stream.StreamID)
	assert.Equal(t, constants.STREAM_STATUS_PAUSED, registered.Status)
	assert.Nil(t, registered.cancelTimer)
}

func TestStartStream_NotFound(t *testing.T) {
	env := newStreamsTestEnv(t)

	err := env.svc.StartStream("missing", false)
	assert.True(t, IsNotFoundError(err))
}

func TestPauseStream_LeavesOtherStreamsRunning(t *testing.T) {
	env := newStreamsTestEnv(t)
	env.expectPartPayments(2)

	first := env.addStream(t, 3_600_000, constants.STREAM_PARTS_INFINITE)
	second := env.addStream(t, 3_600_000, constants.STREAM_PARTS_INFINITE)
	require.NoError(t, env.svc.StartStream(first.StreamID, false))
	require.NoError(t, env.svc.StartStream(second.StreamID, false))

	env.waitForEvents(t, EVENT_STREAM_PART_PAID, 2)

	require.NoError(t, env.svc.PauseStream(first.StreamID, true))

	assert.Equal(t, constants.STREAM_STATUS_PAUSED, env.streamStatus(t, first.StreamID))
	assert.Equal(t, constants.STREAM_STATUS_STREAMING, env.streamStatus(t, second.StreamID))

	paused := env.publisher.eventsNamed(EVENT_STREAM_PAUSED)
	require.Len(t, paused, 1)
	assert.Equal(t, first.StreamID, paused[0].Properties.(*StreamStatusProperties).StreamID)

	require.NoError(t, env.svc.PauseStream(second.StreamID, false))
}

func TestPauseStream_PersistFlagControlsDurableStatus(t *testing.T) {
	env := newStreamsTestEnv(t)
	env.expectPartPayments(1)

	stream := env.addStream(t, 3_600_000, constants.STREAM_PARTS_INFINITE)
	require.NoError(t, env.svc.StartStream(stream.StreamID, false))
	env.waitForEvents(t, EVENT_STREAM_PART_PAID, 1)

	// a shutdown-style pause leaves the durable row running so the next
	// session resumes it
	require.NoError(t, env.svc.PauseStream(stream.StreamID, false))
	var row db.StreamPayment
	require.NoError(t, env.ts.DB.Where("stream_id = ?", stream.StreamID).First(&row).Error)
	assert.Equal(t, constants.STREAM_DB_STATUS_RUN, row.Status)

	// a user pause sticks
	require.NoError(t, env.svc.StartStream(stream.StreamID, false))
	require.NoError(t, env.svc.PauseStream(stream.StreamID, true))
	require.NoError(t, env.ts.DB.Where("stream_id = ?", stream.StreamID).First(&row).Error)
	assert.Equal(t, constants.STREAM_DB_STATUS_PAUSE, row.Status)
}

func TestPauseStream_AlreadyPausedIsNoop(t *testing.T) {
	env := newStreamsTestEnv(t)

	stream := env.addStream(t, 60_000, 5)
	require.NoError(t, env.svc.PauseStream(stream.StreamID, true))

	assert.Equal(t, constants.STREAM_STATUS_PAUSED, env.streamStatus(t, stream.StreamID))
	assert.Empty(t, env.publisher.eventsNamed(EVENT_STREAM_PAUSED))
}

func TestPauseAllStreams(t *testing.T) {
	env := newStreamsTestEnv(t)
	env.expectPartPayments(2)

	first := env.addStream(t, 3_600_000, constants.STREAM_PARTS_INFINITE)
	second := env.addStream(t, 3_600_000, constants.STREAM_PARTS_INFINITE)
	third := env.addStream(t, 3_600_000, constants.STREAM_PARTS_INFINITE)
	require.NoError(t, env.svc.StartStream(first.StreamID, false))
	require.NoError(t, env.svc.StartStream(second.StreamID, false))
	env.waitForEvents(t, EVENT_STREAM_PART_PAID, 2)

	env.svc.PauseAllStreams(false)

	assert.Equal(t, constants.STREAM_STATUS_PAUSED, env.streamStatus(t, first.StreamID))
	assert.Equal(t, constants.STREAM_STATUS_PAUSED, env.streamStatus(t, second.StreamID))
	assert.Equal(t, constants.STREAM_STATUS_PAUSED, env.streamStatus(t, third.StreamID))
}

func TestFinishStream_Idempotent(t *testing.T) {
	env := newStreamsTestEnv(t)

	stream := env.addStream(t, 60_000, 5)
	require.NoError(t, env.svc.FinishStream(stream.StreamID))
	require.NoError(t, env.svc.FinishStream(stream.StreamID))

	assert.Len(t, env.publisher.eventsNamed(EVENT_STREAM_FINISHED), 1)

	var row db.StreamPayment
	require.NoError(t, env.ts.DB.Where("stream_id = ?", stream.StreamID).First(&row).Error)
	assert.Equal(t, constants.STREAM_DB_STATUS_END, row.Status)
}

func TestLoadStreams_HydratesAndResumesRunningStreams(t *testing.T) {
	env := newStreamsTestEnv(t)
	env.expectPartPayments(1)

	rows := []db.StreamPayment{
		{
			StreamID:    "stream-running",
			LightningID: tests.MockLightningID,
			Price:       0.00001,
			Currency:    constants.CURRENCY_BTC,
			DelayMs:     60_000,
			TotalParts:  constants.STREAM_PARTS_INFINITE,
			PartsPaid:   2,
			LastPayment: time.Now().UnixMilli() - 200_000,
			Status:      constants.STREAM_DB_STATUS_RUN,
		},
		{
			StreamID:    "stream-paused",
			LightningID: tests.MockLightningID,
			Price:       0.00001,
			Currency:    constants.CURRENCY_BTC,
			DelayMs:     60_000,
			TotalParts:  5,
			PartsPaid:   1,
			Status:      constants.STREAM_DB_STATUS_PAUSE,
		},
		{
			StreamID:    "stream-done",
			LightningID: tests.MockLightningID,
			Price:       0.00001,
			Currency:    constants.CURRENCY_BTC,
			DelayMs:     60_000,
			TotalParts:  3,
			PartsPaid:   3,
			Status:      constants.STREAM_DB_STATUS_END,
		},
	}
	for i := range rows {
		require.NoError(t, env.ts.DB.Create(&rows[i]).Error)
	}

	require.NoError(t, env.svc.LoadStreams())

	env.waitForEvents(t, EVENT_STREAM_PART_PAID, 1)

	listed := env.svc.ListStreams()
	require.Len(t, listed, 2, "finished rows are history, not registry entries")
	assert.Equal(t, "stream-paused", listed[0].StreamID)
	assert.Equal(t, "stream-running", listed[1].StreamID)

	assert.Equal(t, constants.STREAM_STATUS_PAUSED, env.streamStatus(t, "stream-paused"))
	assert.Equal(t, constants.STREAM_STATUS_STREAMING, env.streamStatus(t, "stream-running"))

	resumed, err := env.svc.GetStream("stream-running")
	require.NoError(t, err)
	assert.EqualValues(t, 3, resumed.PartsPaid)
	assert.Zero(t, resumed.PartsPending)

	env.svc.PauseAllStreams(false)
}
