package token

import (
	"context"
	"time"

	"web3-sniper/internal/worker/model"
	"web3-sniper/internal/worker/writer"

	"github.com/bytedance/sonic"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type KafkaTokenWriter struct {
	mq *kafka.Writer
	tl *zap.Logger

	topic string
}

func NewKafkaTokenWriter(mq *kafka.Writer, tl *zap.Logger, topic string) writer.BatchWriter[model.TokenCreateEvent] {
	return &KafkaTokenWriter{mq: mq, tl: tl, topic: topic}
}

func (w *KafkaTokenWriter) BWrite(ctx context.Context, events []model.TokenCreateEvent) error {
	if len(events) == 0 {
		return nil
	}

	msgs := make([]kafka.Message, 0, len(events))
	for _, ev := range events {
		msg, err := w.marshalToMsg(ev)
		if err != nil {
			w.tl.Warn("Marshal token event failed", zap.String("token", ev.TokenAddress), zap.Error(err))
			continue
		}
		msgs = append(msgs, msg)
	}

	newCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	var err error
	for attempt := 0; attempt < RETRY_COUNT; attempt++ {
		err = w.mq.WriteMessages(newCtx, msgs...)
		if err == nil {
			break
		}
	}
	if err != nil {
		w.tl.Warn("❌ MQ write failed, exceeded the maximum number of retries", zap.Error(err))
		return err
	}
	return nil
}

func (w *KafkaTokenWriter) Close() error {
	return nil
}

func (w *KafkaTokenWriter) marshalToMsg(ev model.TokenCreateEvent) (kafka.Message, error) {
	data, err := sonic.Marshal(ev)
	if err != nil {
		return kafka.Message{}, err
	}
	return kafka.Message{
		Topic: w.topic,
		Key:   []byte(ev.TokenAddress),
		Value: data,
		Time:  ev.Timestamp,
	}, nil
}
