package streams

import (
	"fmt"

	"github.com/streamhub/streamhub/constants"
	"github.com/streamhub/streamhub/events"
	"github.com/streamhub/streamhub/lnclient"
	"github.com/streamhub/streamhub/logger"
)

// makeStreamIteration performs exactly one pay-one-part attempt. scheduledAt
// is the nominal time this slot was supposed to fire, not the wall clock at
// invocation: the last-payment anchor advances to the cadence, so jitter in
// timer delivery never accumulates into drift.
//
// The stream is re-fetched from the registry after every call that released
// the lock. That re-check, together with the terminal and eligibility
// guards, is what prevents double-spending a part when a pause or a second
// tick races an iteration still waiting on the node.
func (svc *streamsService) makeStreamIteration(streamID string, scheduledAt int64) {
	svc.registryMtx.Lock()
	stream, found := svc.registry[streamID]
	if !found {
		svc.registryMtx.Unlock()
		logger.Logger.Debug().Str("stream_id", streamID).Msg("Iteration fired for unknown stream")
		return
	}

	// terminal check
	if stream.Status == constants.STREAM_STATUS_FINISHED || stream.completed() {
		svc.registryMtx.Unlock()
		_ = svc.FinishStream(streamID)
		return
	}

	// eligibility check: a pause or a competing in-flight part may have
	// landed between schedule and fire
	if stream.Status == constants.STREAM_STATUS_PAUSED || stream.atCapacity() {
		svc.registryMtx.Unlock()
		_ = svc.PauseStream(streamID, true)
		return
	}

	price := stream.Price
	currency := stream.Currency
	lightningID := stream.LightningID
	memo := stream.Memo
	svc.registryMtx.Unlock()

	amountMsat, err := svc.streamAmountMsat(price, currency)
	if err != nil {
		svc.raiseStreamFailure(streamID, err)
		_ = svc.PauseStream(streamID, true)
		return
	}

	// the single blocking precondition before any node call: never generate
	// an invoice we cannot pay
	if svc.balancesSvc.CurrentSpendableBalance() < amountMsat {
		svc.raiseStreamFailure(streamID, NewInsufficientFundsError())
		_ = svc.PauseStream(streamID, true)
		return
	}

	// reserve the part; re-validate first, the rate and balance calls above
	// released the lock
	svc.registryMtx.Lock()
	stream, found = svc.registry[streamID]
	if !found || stream.Status != constants.STREAM_STATUS_STREAMING {
		svc.registryMtx.Unlock()
		return
	}
	if stream.atCapacity() {
		svc.registryMtx.Unlock()
		_ = svc.PauseStream(streamID, true)
		return
	}
	stream.PartsPending++
	svc.registryMtx.Unlock()

	invoice, err := svc.lnClient.CreateInvoice(svc.ctx, lightningID, amountMsat, memo)
	if err != nil {
		svc.releaseReservation(streamID)
		svc.raiseStreamFailure(streamID, err)
		_ = svc.PauseStream(streamID, true)
		return
	}

	receipt, err := svc.lnClient.SendPayment(svc.ctx, invoice.PaymentRequest)
	if err != nil {
		svc.releaseReservation(streamID)
		svc.raiseStreamFailure(streamID, err)
		_ = svc.PauseStream(streamID, true)
		return
	}

	// settle the part: release the reservation, count it, and advance the
	// anchor to the nominal slot time
	svc.registryMtx.Lock()
	stream, found = svc.registry[streamID]
	if !found {
		svc.registryMtx.Unlock()
		return
	}
	stream.PartsPending--
	stream.PartsPaid++
	if scheduledAt > stream.LastPayment {
		stream.LastPayment = scheduledAt
	}
	partsPaid := stream.PartsPaid
	lastPayment := stream.LastPayment
	finishedNow := stream.completed()
	svc.registryMtx.Unlock()

	svc.balancesSvc.Refresh()
	svc.persistProgress(streamID, partsPaid, &lastPayment, nil)
	svc.persistPart(streamID, receipt.ReceiptID, amountMsat)
	svc.notifier.ClearEpisode(streamID)

	logger.Logger.Info().
		Str("stream_id", streamID).
		Int64("parts_paid", partsPaid).
		Int64("amount_msat", amountMsat).
		Str("receipt_id", receipt.ReceiptID).
		Msg("Stream part paid")

	svc.eventPublisher.Publish(&events.Event{
		Event: EVENT_STREAM_PART_PAID,
		Properties: &StreamPartPaidProperties{
			StreamID:   streamID,
			PartsPaid:  partsPaid,
			AmountMsat: amountMsat,
			ReceiptID:  receipt.ReceiptID,
		},
	})

	if finishedNow {
		_ = svc.FinishStream(streamID)
		svc.notifier.NotifyInfo(fmt.Sprintf("Recurring payment completed: all %d parts paid", partsPaid))
	}
}

// releaseReservation undoes the PartsPending increment after a failed
// attempt. The reservation is released exactly once per iteration, on
// whichever of the invoice or payment steps failed.
func (svc *streamsService) releaseReservation(streamID string) {
	svc.registryMtx.Lock()
	defer svc.registryMtx.Unlock()

	stream, found := svc.registry[streamID]
	if !found {
		return
	}
	stream.PartsPending--
	if stream.PartsPending < 0 {
		// programming error, not a recoverable condition
		logger.Logger.Error().
			Str("stream_id", streamID).
			Int64("parts_pending", stream.PartsPending).
			Msg("Stream reservation counter went negative")
		stream.PartsPending = 0
	}
}

// raiseStreamFailure emits one user-visible notification per failure
// episode, keyed by stream. The episode ends on the next settled part or
// explicit restart.
func (svc *streamsService) raiseStreamFailure(streamID string, err error) {
	var message string
	if _, ok := err.(*insufficientFundsError); ok {
		message = "Insufficient funds, the recurring payment was paused"
	} else {
		switch lnclient.ErrorClass(err) {
		case lnclient.GATEWAY_ERROR_OFFLINE:
			message = "The recipient is offline, the recurring payment was paused"
		case lnclient.GATEWAY_ERROR_REJECTED:
			message = "The payment was rejected, the recurring payment was paused"
		default:
			message = "The recurring payment failed and was paused"
		}
	}

	logger.Logger.Warn().Err(err).Str("stream_id", streamID).Msg("Stream iteration failed")
	svc.notifier.NotifyError(message, streamID)
}
