package token

import (
	"context"
	"time"

	"web3-sniper/internal/worker/model"
	"web3-sniper/internal/worker/writer"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type DbTokenWriter struct {
	db *gorm.DB
	tl *zap.Logger
}

func NewDbTokenWriter(db *gorm.DB, tl *zap.Logger) writer.BatchWriter[model.TokenCreateEvent] {
	return &DbTokenWriter{db: db, tl: tl}
}

func (w *DbTokenWriter) BWrite(ctx context.Context, events []model.TokenCreateEvent) error {
	if len(events) == 0 {
		return nil
	}

	newCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	var err error
	for attempt := 0; attempt < RETRY_COUNT; attempt++ {
		// 同一 (transaction_hash, log_index) 重复投递直接忽略
		err = w.db.WithContext(newCtx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "transaction_hash"}, {Name: "log_index"}},
			DoNothing: true,
		}).CreateInBatches(events, 100).Error
		if err == nil {
			break
		}
		time.Sleep(100 * time.Millisecond)
	}
	if err != nil {
		w.tl.Warn("❌ DB write failed, exceeded the maximum number of retries", zap.Error(err))
		return err
	}
	return nil
}

func (w *DbTokenWriter) Close() error {
	return nil
}
