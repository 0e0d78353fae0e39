package constants

// shared constants used by multiple packages

// in-memory stream statuses
const (
	STREAM_STATUS_PAUSED    = "paused"
	STREAM_STATUS_STREAMING = "streaming"
	STREAM_STATUS_FINISHED  = "finished"
)

// durable stream statuses as stored in the stream_payments table
const (
	STREAM_DB_STATUS_PAUSE = "pause"
	STREAM_DB_STATUS_RUN   = "run"
	STREAM_DB_STATUS_END   = "end"
)

const (
	CURRENCY_BTC = "BTC"
	CURRENCY_USD = "USD"
)

func GetCurrencies() []string {
	return []string{
		CURRENCY_BTC,
		CURRENCY_USD,
	}
}

// sentinel for streams with no upper bound on parts
const STREAM_PARTS_INFINITE = int64(-1)

const (
	MSAT_PER_BTC = 100_000_000_000
	MSAT_PER_SAT = 1000
)

// memo prefix used to correlate invoices back to their stream
const STREAM_MEMO_PREFIX = "stream_payment_"

const (
	NOTIFICATION_LEVEL_ERROR = "error"
	NOTIFICATION_LEVEL_INFO  = "info"
)
