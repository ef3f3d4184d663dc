package dbclient

import (
	"context"
	"time"

	"easyupdate-go/internal/logging"
	"easyupdate-go/internal/shared"
)

// HistoryRecorder keeps finished check runs in the database.
type HistoryRecorder struct {
	db DBClient
}

func NewHistoryRecorder(db DBClient) *HistoryRecorder {
	return &HistoryRecorder{db: db}
}

// Record stores rec. A zero CreatedAt is set to now.
func (h *HistoryRecorder) Record(ctx context.Context, rec shared.CheckRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	if err := h.db.Create(ctx, &rec); err != nil {
		return err
	}
	log.Debug("recorded check run", logging.KeyRunID, rec.RunID, "outcome", rec.Outcome)
	return nil
}

// Recent returns up to limit records, newest first.
func (h *HistoryRecorder) Recent(ctx context.Context, limit int) ([]shared.CheckRecord, error) {
	var records []shared.CheckRecord
	opts := &QueryOptions{Limit: limit, Order: "\"createdAt\" desc"}
	if err := h.db.Find(ctx, &records, opts); err != nil {
		return nil, err
	}
	return records, nil
}

// Prune deletes records created before cutoff.
func (h *HistoryRecorder) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	n, err := h.db.Delete(ctx, &shared.CheckRecord{}, "\"createdAt\" < ?", cutoff)
	if err != nil {
		return 0, err
	}
	log.Printf("Pruned %d check records older than %s", n, cutoff.Format(time.RFC3339))
	return n, nil
}
