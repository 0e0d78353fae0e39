package queries

import (
	"gorm.io/gorm"

	"github.com/streamhub/streamhub/db"
)

type StreamTotals struct {
	PartsRecorded int64
	TotalPaidMsat uint64
}

// GetStreamTotals sums the paid-part ledger for one stream. The ledger is
// best-effort, so the result can undercount relative to parts_paid on the
// stream row; callers display it as history, not as the source of truth.
func GetStreamTotals(tx *gorm.DB, streamID string) StreamTotals {
	var totals StreamTotals

	err := tx.Model(&db.StreamPart{}).
		Select("COUNT(*) as parts_recorded, COALESCE(SUM(amount_msat), 0) as total_paid_msat").
		Where("stream_id = ?", streamID).
		Scan(&totals).Error
	if err != nil {
		return StreamTotals{}
	}

	return totals
}
