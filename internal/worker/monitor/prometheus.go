package monitor

import "github.com/prometheus/client_golang/prometheus"

var (
	// EventsReceived 订阅流相关
	EventsReceived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sniper_events_received_total",
			Help: "Total number of TokenCreate logs delivered by the subscription.",
		},
	)
	EventsDuplicate = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sniper_events_duplicate_total",
			Help: "Total number of logs dropped by the dedup window.",
		},
	)
	EventDecodeErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sniper_event_decode_errors_total",
			Help: "Total number of logs that failed to decode.",
		},
	)
	WhitelistMatches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sniper_whitelist_checks_total",
			Help: "Creator allow-list lookups by outcome.",
		},
		[]string{"matched"},
	)
	TokensProcessed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sniper_tokens_processed_total",
			Help: "Total number of decoded TokenCreate events.",
		},
	)
	DedupWindowSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sniper_dedup_window_size",
			Help: "Current number of transaction hashes held by the dedup window.",
		},
	)
	DetectToSpawnLatency = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sniper_detect_to_spawn_seconds",
			Help:    "Time from log delivery to purchase task spawn.",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	// PurchaseAttempts 买入相关
	PurchaseAttempts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sniper_purchase_attempts_total",
			Help: "Total number of purchase transaction attempts.",
		},
	)
	PurchaseResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sniper_purchase_results_total",
			Help: "Purchase outcomes by result and error kind.",
		},
		[]string{"result", "kind"},
	)
	PurchaseDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sniper_purchase_duration_seconds",
			Help:    "Time taken by a purchase call including retries.",
			Buckets: []float64{0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0, 10.0},
		},
	)
	WalletBalance = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sniper_wallet_balance_bnb",
			Help: "Operating wallet balance in BNB.",
		},
	)

	// AsyncWriterMessagesQueued AsyncWriter 指标
	AsyncWriterMessagesQueued = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "async_writer_messages_queued_total",
			Help: "Total number of messages queued to async writer.",
		},
		[]string{"writer_id"},
	)
	AsyncWriterMessagesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "async_writer_messages_dropped_total",
			Help: "Total number of messages dropped due to full queue.",
		},
		[]string{"writer_id"},
	)
	AsyncWriterBatchSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "async_writer_batch_size",
			Help:    "Number of items in each batch submitted to the writer.",
			Buckets: []float64{1, 5, 10, 50, 100, 500},
		},
		[]string{"writer_id"},
	)
	AsyncWriterFlushDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "async_writer_flush_duration_seconds",
			Help:    "Time taken to flush a batch.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.2, 0.5, 1.0, 2.0, 5.0},
		},
		[]string{"writer_id"},
	)
	AsyncWriterItemsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "async_writer_items_written_total",
			Help: "Total number of items successfully written by the async writer.",
		},
		[]string{"writer_id"},
	)
)

func init() {
	prometheus.MustRegister(
		// 订阅指标
		EventsReceived,
		EventsDuplicate,
		EventDecodeErrors,
		WhitelistMatches,
		TokensProcessed,
		DedupWindowSize,
		DetectToSpawnLatency,

		// 买入指标
		PurchaseAttempts,
		PurchaseResults,
		PurchaseDuration,
		WalletBalance,

		// async 写入指标
		AsyncWriterMessagesQueued,
		AsyncWriterMessagesDropped,
		AsyncWriterBatchSize,
		AsyncWriterFlushDuration,
		AsyncWriterItemsWritten,
	)
}
