package db

import (
	"time"

	"gorm.io/datatypes"
)

type UserConfig struct {
	ID        uint
	Key       string `gorm:"unique;not null"`
	Value     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// StreamPayment is the durable row behind one recurring payment plan.
// PartsPending is deliberately absent: in-flight parts cannot survive a
// restart and only live on the in-memory stream record.
type StreamPayment struct {
	ID          uint
	StreamID    string `validate:"required" gorm:"unique;not null"`
	LightningID string `validate:"required"`
	Price       float64
	Currency    string
	DelayMs     int64
	TotalParts  int64
	PartsPaid   int64
	LastPayment int64  // epoch millis of the last settled part
	Status      string // pause | run | end
	Memo        string
	Metadata    datatypes.JSON
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// StreamPart is the append-only ledger of settled parts, keyed back to the
// external payment history by receipt id (payment hash).
type StreamPart struct {
	ID         uint
	StreamID   string `validate:"required" gorm:"index"`
	ReceiptID  string `validate:"required"`
	AmountMsat uint64
	PaidAt     time.Time
	CreatedAt  time.Time
}
