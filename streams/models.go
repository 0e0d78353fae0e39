package streams

import (
	"context"

	"github.com/streamhub/streamhub/balances"
	"github.com/streamhub/streamhub/constants"
	"github.com/streamhub/streamhub/lnclient"
)

const (
	EVENT_STREAM_PART_PAID = "streams_part_paid"
	EVENT_STREAM_PAUSED    = "streams_paused"
	EVENT_STREAM_FINISHED  = "streams_finished"
)

// Stream is the canonical in-memory record of one recurring payment plan.
// The registry owns it; the durable row in stream_payments is a best-effort
// mirror used for restart recovery.
type Stream struct {
	StreamID    string  `json:"streamId"`
	LightningID string  `json:"lightningId"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
	DelayMs     int64   `json:"delayMs"`
	TotalParts  int64   `json:"totalParts"`
	PartsPaid   int64   `json:"partsPaid"`
	// PartsPending counts parts in flight (invoice requested or payment
	// submitted, outcome unknown). Never persisted: a restart treats
	// in-flight parts as not attempted.
	PartsPending int64                  `json:"partsPending"`
	LastPayment  int64                  `json:"lastPayment"` // epoch millis of the last settled part
	Status       string                 `json:"status"`
	Memo         string                 `json:"memo"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`

	// scheduling handle, present only while streaming
	cancelTimer context.CancelFunc
}

func (s *Stream) isFinite() bool {
	return s.TotalParts != constants.STREAM_PARTS_INFINITE
}

// atCapacity reports whether paying one more part could exceed the bound.
func (s *Stream) atCapacity() bool {
	return s.isFinite() && s.PartsPaid+s.PartsPending >= s.TotalParts
}

// completed reports whether every part has settled.
func (s *Stream) completed() bool {
	return s.isFinite() && s.PartsPaid >= s.TotalParts
}

type PrepareStreamRequest struct {
	LightningID string                 `json:"lightningId"`
	Price       float64                `json:"price"`
	Currency    string                 `json:"currency"`
	DelayMs     int64                  `json:"delayMs"`
	TotalParts  int64                  `json:"totalParts"`
	Metadata    map[string]interface{} `json:"metadata,omitempty"`
}

type UpdateStreamRequest struct {
	Price      *float64               `json:"price"`
	Currency   *string                `json:"currency"`
	DelayMs    *int64                 `json:"delayMs"`
	TotalParts *int64                 `json:"totalParts"`
	Metadata   map[string]interface{} `json:"metadata"`
}

type StreamPartPaidProperties struct {
	StreamID   string `json:"streamId"`
	PartsPaid  int64  `json:"partsPaid"`
	AmountMsat int64  `json:"amountMsat"`
	ReceiptID  string `json:"receiptId"`
}

type StreamStatusProperties struct {
	StreamID  string `json:"streamId"`
	PartsPaid int64  `json:"partsPaid"`
}

type StreamsService interface {
	SetBackends(lnClient lnclient.LNClient, balancesSvc balances.BalancesService)
	ListStreams() []Stream
	GetStream(streamID string) (*Stream, error)
	PrepareStream(req *PrepareStreamRequest) (*Stream, error)
	AddStream(stream *Stream) error
	UpdateStream(streamID string, req *UpdateStreamRequest) error
	StartStream(streamID string, force bool) error
	PauseStream(streamID string, persist bool) error
	PauseAllStreams(persist bool)
	FinishStream(streamID string) error
	LoadStreams() error
}
