package notify

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"web3-sniper/internal/worker/config"
	"web3-sniper/internal/worker/model"
	"web3-sniper/pkg/httpclient"

	"go.uber.org/zap"
)

type larkText struct {
	Text string `json:"text"`
}

type larkMessage struct {
	MsgType string   `json:"msg_type"`
	Content larkText `json:"content"`
}

type larkResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

const larkQueueSize = 64

// LarkAlerter webhook 推送，后台单协程发送，队列满时丢弃，发送失败只记日志
type LarkAlerter struct {
	webhook   string
	client    *httpclient.HTTPClient
	tl        *zap.Logger
	timeout   time.Duration
	queue     chan string
	done      chan struct{}
	mu        sync.RWMutex
	closed    bool
}

func NewLarkAlerter(cfg config.LarkConfig, tl *zap.Logger) *LarkAlerter {
	client := httpclient.NewHTTPClient(httpclient.HTTPClientConfig{
		Timeout:    5 * time.Second,
		RateLimit:  cfg.RateLimit,
		MaxRetries: 1,
		UserAgent:  "web3-sniper",
	}, tl)
	a := &LarkAlerter{
		webhook: cfg.Webhook,
		client:  client,
		tl:      tl,
		timeout: 5 * time.Second,
		queue:   make(chan string, larkQueueSize),
		done:    make(chan struct{}),
	}
	go a.loop()
	return a
}

func (a *LarkAlerter) TokenAlert(ctx context.Context, ev model.TokenCreateEvent) {
	a.enqueue(FormatTokenAlert(ev))
}

func (a *LarkAlerter) PurchaseResult(ctx context.Context, ev model.TokenCreateEvent, res model.PurchaseResult) {
	a.enqueue(FormatPurchaseResult(ev, res))
}

// Close 发完队列中的消息后释放连接
func (a *LarkAlerter) Close() error {
	a.mu.Lock()
	if a.closed {
		a.mu.Unlock()
		return nil
	}
	a.closed = true
	close(a.queue)
	a.mu.Unlock()

	<-a.done
	return a.client.Close()
}

func (a *LarkAlerter) enqueue(text string) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.closed {
		a.tl.Warn("Lark alerter closed, dropping message")
		return
	}
	select {
	case a.queue <- text:
	default:
		a.tl.Warn("Lark queue full, dropping message")
	}
}

func (a *LarkAlerter) loop() {
	defer close(a.done)
	for text := range a.queue {
		a.send(text)
	}
}

func (a *LarkAlerter) send(text string) {
	sendCtx, cancel := context.WithTimeout(context.Background(), a.timeout)
	defer cancel()

	var resp larkResponse
	msg := larkMessage{MsgType: "text", Content: larkText{Text: text}}
	if err := a.client.PostJSON(sendCtx, a.webhook, msg, &resp); err != nil {
		a.tl.Warn("Lark webhook failed", zap.Error(err))
		return
	}
	if resp.Code != 0 {
		a.tl.Warn("Lark webhook rejected", zap.Int("code", resp.Code), zap.String("msg", resp.Msg))
	}
}

func FormatTokenAlert(ev model.TokenCreateEvent) string {
	var b strings.Builder
	b.WriteString("🚨 WHITELISTED CREATOR ALERT\n")
	fmt.Fprintf(&b, "Symbol: %s\n", ev.Symbol)
	fmt.Fprintf(&b, "Name: %s\n", ev.Name)
	fmt.Fprintf(&b, "Address: %s\n", ev.TokenAddress)
	fmt.Fprintf(&b, "Creator: %s\n", ev.Creator)
	fmt.Fprintf(&b, "TX: %s\n", ev.TransactionHash)
	fmt.Fprintf(&b, "Block: %d\n", ev.BlockNumber)
	fmt.Fprintf(&b, "Timestamp: %s", ev.Timestamp.Format(time.RFC3339))
	return b.String()
}

func FormatPurchaseResult(ev model.TokenCreateEvent, res model.PurchaseResult) string {
	if res.Success {
		return fmt.Sprintf("✅ BUY SUCCESS for %s\nToken: %s\nTX: %s\nAttempts: %d", ev.Symbol, ev.TokenAddress, res.TxHash, res.Attempts)
	}
	text := fmt.Sprintf("❌ BUY FAILED for %s\nToken: %s\nError: %s", ev.Symbol, ev.TokenAddress, res.Detail)
	if res.Hint != "" {
		text += "\n💡 " + res.Hint
	}
	return text
}
