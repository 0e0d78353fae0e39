package streams

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm/clause"

	"github.com/streamhub/streamhub/constants"
	"github.com/streamhub/streamhub/db"
	"github.com/streamhub/streamhub/logger"
)

// statusFromDB maps the durable status vocabulary onto the in-memory one.
func statusFromDB(dbStatus string) string {
	switch dbStatus {
	case constants.STREAM_DB_STATUS_RUN:
		return constants.STREAM_STATUS_STREAMING
	case constants.STREAM_DB_STATUS_END:
		return constants.STREAM_STATUS_FINISHED
	default:
		return constants.STREAM_STATUS_PAUSED
	}
}

func statusToDB(status string) string {
	switch status {
	case constants.STREAM_STATUS_STREAMING:
		return constants.STREAM_DB_STATUS_RUN
	case constants.STREAM_STATUS_FINISHED:
		return constants.STREAM_DB_STATUS_END
	default:
		return constants.STREAM_DB_STATUS_PAUSE
	}
}

func metadataToDB(metadata map[string]interface{}) datatypes.JSON {
	if metadata == nil {
		return nil
	}
	metadataBytes, err := json.Marshal(metadata)
	if err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to serialize stream metadata")
		return nil
	}
	return datatypes.JSON(metadataBytes)
}

func metadataFromDB(value datatypes.JSON) map[string]interface{} {
	if value == nil {
		return nil
	}
	var metadata map[string]interface{}
	if err := json.Unmarshal(value, &metadata); err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to deserialize stream metadata")
		return nil
	}
	return metadata
}

// hydrate rebuilds registry entries from the durable rows. Finished rows are
// history, not active streams, and are skipped. PartsPending always comes
// back as zero: in-flight state cannot survive a restart and must be treated
// as not yet attempted.
func (svc *streamsService) hydrate() ([]*Stream, error) {
	var rows []db.StreamPayment
	if err := svc.db.Order("created_at asc").Find(&rows).Error; err != nil {
		logger.Logger.Error().Err(err).Msg("Failed to load streams from database")
		return nil, err
	}

	hydrated := make([]*Stream, 0, len(rows))
	for _, row := range rows {
		if row.Status == constants.STREAM_DB_STATUS_END {
			continue
		}
		hydrated = append(hydrated, &Stream{
			StreamID:     row.StreamID,
			LightningID:  row.LightningID,
			Price:        row.Price,
			Currency:     row.Currency,
			DelayMs:      row.DelayMs,
			TotalParts:   row.TotalParts,
			PartsPaid:    row.PartsPaid,
			PartsPending: 0,
			LastPayment:  row.LastPayment,
			Status:       statusFromDB(row.Status),
			Memo:         row.Memo,
			Metadata:     metadataFromDB(row.Metadata),
		})
	}

	logger.Logger.Info().
		Int("total_rows", len(rows)).
		Int("active", len(hydrated)).
		Msg("Hydrated streams from database")
	return hydrated, nil
}

// persistCreate inserts the durable row for a new stream. Idempotent on
// stream_id; failures propagate to the caller.
func (svc *streamsService) persistCreate(stream *Stream) error {
	row := db.StreamPayment{
		StreamID:    stream.StreamID,
		LightningID: stream.LightningID,
		Price:       stream.Price,
		Currency:    stream.Currency,
		DelayMs:     stream.DelayMs,
		TotalParts:  stream.TotalParts,
		PartsPaid:   stream.PartsPaid,
		LastPayment: stream.LastPayment,
		Status:      statusToDB(stream.Status),
		Memo:        stream.Memo,
		Metadata:    metadataToDB(stream.Metadata),
	}
	err := svc.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "stream_id"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		logger.Logger.Error().Err(err).Str("stream_id", stream.StreamID).Msg("Failed to persist new stream")
		return err
	}
	return nil
}

// persistUpdate rewrites the editable plan fields. Failures propagate, like
// the initial insert.
func (svc *streamsService) persistUpdate(stream *Stream) error {
	err := svc.db.Model(&db.StreamPayment{}).
		Where("stream_id = ?", stream.StreamID).
		Updates(map[string]interface{}{
			"price":       stream.Price,
			"currency":    stream.Currency,
			"delay_ms":    stream.DelayMs,
			"total_parts": stream.TotalParts,
			"metadata":    metadataToDB(stream.Metadata),
		}).Error
	if err != nil {
		logger.Logger.Error().Err(err).Str("stream_id", stream.StreamID).Msg("Failed to persist stream update")
		return err
	}
	return nil
}

// persistProgress is the best-effort bookkeeping write. A failure is logged
// and swallowed: the in-memory registry stays authoritative for the running
// process, and the worst case after a crash is replaying or undercounting a
// single part on the next hydrate.
func (svc *streamsService) persistProgress(streamID string, partsPaid int64, lastPayment *int64, status *string) {
	updates := map[string]interface{}{
		"parts_paid": partsPaid,
	}
	if lastPayment != nil {
		updates["last_payment"] = *lastPayment
	}
	if status != nil {
		updates["status"] = statusToDB(*status)
	}

	err := svc.db.Model(&db.StreamPayment{}).
		Where("stream_id = ?", streamID).
		Updates(updates).Error
	if err != nil {
		logger.Logger.Error().Err(err).Str("stream_id", streamID).Msg("Failed to persist stream progress")
	}
}

// persistPart appends one settled part to the ledger, best-effort. The
// ledger exists for reconciliation against the node's payment history, so an
// occasional missing row is tolerable.
func (svc *streamsService) persistPart(streamID string, receiptID string, amountMsat int64) {
	part := db.StreamPart{
		StreamID:   streamID,
		ReceiptID:  receiptID,
		AmountMsat: uint64(amountMsat),
		PaidAt:     time.Now(),
	}
	if err := svc.db.Create(&part).Error; err != nil {
		logger.Logger.Error().Err(err).
			Str("stream_id", streamID).
			Str("receipt_id", receiptID).
			Msg("Failed to persist stream part")
	}
}
