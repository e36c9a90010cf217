package token

import (
	"context"
	"fmt"

	"web3-sniper/internal/worker/model"
	"web3-sniper/internal/worker/writer"
	"web3-sniper/pkg/elasticsearch"

	"go.uber.org/zap"
)

type ESTokenWriter struct {
	esClient *elasticsearch.Client
	logger   *zap.Logger
	index    string
}

func NewESTokenWriter(esClient *elasticsearch.Client, logger *zap.Logger, index string) writer.BatchWriter[model.TokenCreateEvent] {
	return &ESTokenWriter{
		esClient: esClient,
		logger:   logger,
		index:    index,
	}
}

func (w *ESTokenWriter) BWrite(ctx context.Context, events []model.TokenCreateEvent) error {
	if len(events) == 0 {
		return nil
	}

	operations := make([]elasticsearch.BulkOperation, 0, len(events))
	for i := range events {
		operations = append(operations, elasticsearch.BulkOperation{
			Action:   "index", // 存在则覆盖
			Index:    w.index,
			ID:       generateDocID(&events[i]),
			Document: convertToESDoc(&events[i]),
		})
	}
	return w.esClient.BulkWrite(ctx, operations)
}

func (w *ESTokenWriter) Close() error {
	return nil
}

func generateDocID(ev *model.TokenCreateEvent) string {
	return fmt.Sprintf("%s_%d", ev.TransactionHash, ev.LogIndex)
}

func convertToESDoc(ev *model.TokenCreateEvent) map[string]interface{} {
	return map[string]interface{}{
		"token_address":    ev.TokenAddress,
		"name":             ev.Name,
		"symbol":           ev.Symbol,
		"creator":          ev.Creator,
		"timestamp":        ev.Timestamp.UnixMilli(),
		"transaction_hash": ev.TransactionHash,
		"log_index":        ev.LogIndex,
		"block_number":     ev.BlockNumber,
		"initial_supply":   ev.InitialSupply,
		"request_id":       ev.RequestID,
		"launch_time":      ev.LaunchTime,
		"launch_fee":       ev.LaunchFee,
	}
}
