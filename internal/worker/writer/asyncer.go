package writer

import (
	"context"
	"sync"
	"time"

	"web3-sniper/internal/worker/monitor"

	"go.uber.org/zap"
)

const defaultQueueSize = 1024

// AsyncBatchWriter 非阻塞提交，队列满时丢弃
type AsyncBatchWriter[T any] struct {
	id            string
	workers       int
	tl            *zap.Logger
	writer        BatchWriter[T]
	inputChan     chan T
	wg            sync.WaitGroup
	closeOnce     sync.Once
	batchSize     int
	flushInterval time.Duration
}

func NewAsyncBatchWriter[T any](tl *zap.Logger, writer BatchWriter[T], batchSize int, flushInterval time.Duration, id string, workers int) *AsyncBatchWriter[T] {
	if batchSize <= 0 {
		batchSize = 1
	}
	if workers <= 0 {
		workers = 1
	}
	if flushInterval <= 0 {
		flushInterval = time.Second
	}
	return &AsyncBatchWriter[T]{
		id:            id,
		workers:       workers,
		tl:            tl,
		writer:        writer,
		inputChan:     make(chan T, defaultQueueSize),
		batchSize:     batchSize,
		flushInterval: flushInterval,
	}
}

func (b *AsyncBatchWriter[T]) ID() string {
	return b.id
}

func (b *AsyncBatchWriter[T]) Start(ctx context.Context) {
	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go b.processItems(ctx)
	}
}

func (b *AsyncBatchWriter[T]) processItems(ctx context.Context) {
	defer b.wg.Done()
	ticker := time.NewTicker(b.flushInterval)
	defer ticker.Stop()

	var batch = make([]T, 0, b.batchSize)
	for {
		select {
		case <-ctx.Done():
			b.drain(batch)
			return
		case item, ok := <-b.inputChan:
			if !ok {
				if len(batch) > 0 {
					b.writeAndRecord(ctx, batch)
				}
				return
			}
			batch = append(batch, item)
			if len(batch) >= b.batchSize {
				b.writeAndRecord(ctx, batch)
				batch = make([]T, 0, b.batchSize)
			}
		case <-ticker.C:
			if len(batch) > 0 {
				b.writeAndRecord(ctx, batch)
				batch = make([]T, 0, b.batchSize)
			}
		}
	}
}

// drain ctx 已取消，用独立 ctx 写完当前批次和队列中剩余的数据
func (b *AsyncBatchWriter[T]) drain(batch []T) {
	flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for {
		select {
		case item, ok := <-b.inputChan:
			if ok {
				batch = append(batch, item)
				if len(batch) < b.batchSize {
					continue
				}
			}
			if len(batch) > 0 {
				b.writeAndRecord(flushCtx, batch)
				batch = make([]T, 0, b.batchSize)
			}
			if !ok {
				return
			}
		default:
			if len(batch) > 0 {
				b.writeAndRecord(flushCtx, batch)
			}
			return
		}
	}
}

// 封装写入操作并记录指标
func (b *AsyncBatchWriter[T]) writeAndRecord(ctx context.Context, batch []T) {
	startTime := time.Now()
	size := len(batch)

	monitor.AsyncWriterBatchSize.WithLabelValues(b.id).Observe(float64(size))

	if err := b.writer.BWrite(ctx, batch); err != nil {
		b.tl.Warn("❌ Batch write failed", zap.String("id", b.id), zap.Int("size", size), zap.Error(err))
	} else {
		monitor.AsyncWriterItemsWritten.WithLabelValues(b.id).Add(float64(size))
	}

	monitor.AsyncWriterFlushDuration.WithLabelValues(b.id).Observe(time.Since(startTime).Seconds())
}

// Submit 不阻塞调用方
func (b *AsyncBatchWriter[T]) Submit(item T) {
	select {
	case b.inputChan <- item:
		monitor.AsyncWriterMessagesQueued.WithLabelValues(b.id).Inc()
	default:
		monitor.AsyncWriterMessagesDropped.WithLabelValues(b.id).Inc()
		b.tl.Warn("Batch input channel full, dropping item", zap.String("id", b.id))
	}
}

// Close 关闭输入并等待剩余数据写完
func (b *AsyncBatchWriter[T]) Close() {
	b.closeOnce.Do(func() {
		close(b.inputChan)
		b.wg.Wait()
		// 工作协程已随 ctx 退出时，剩余数据在这里写完
		b.drain(make([]T, 0, b.batchSize))
		if err := b.writer.Close(); err != nil {
			b.tl.Warn("Batch writer close failed", zap.String("id", b.id), zap.Error(err))
		}
	})
}
