package elasticsearch

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"
)

type Client struct {
	es     *elasticsearch.Client
	logger *zap.Logger
}

type Config struct {
	Addresses []string
	Username  string
	Password  string
}

// BulkOperation 批量操作，只支持 index / create
type BulkOperation struct {
	Action   string                 `json:"action"`
	Index    string                 `json:"index"`
	ID       string                 `json:"id"`
	Document map[string]interface{} `json:"document"`
}

func NewClient(cfg Config, log *zap.Logger) (*Client, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: cfg.Addresses,
		Username:  cfg.Username,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}
	return &Client{es: es, logger: log}, nil
}

// BulkWrite 执行 bulk 请求
func (c *Client) BulkWrite(ctx context.Context, operations []BulkOperation) error {
	if len(operations) == 0 {
		return nil
	}

	var buf bytes.Buffer
	for _, op := range operations {
		action := op.Action
		if action == "" {
			action = "index"
		}
		actionLine := map[string]interface{}{
			action: map[string]interface{}{
				"_index": op.Index,
				"_id":    op.ID,
			},
		}
		actionBytes, err := sonic.Marshal(actionLine)
		if err != nil {
			return fmt.Errorf("marshal bulk action: %w", err)
		}
		buf.Write(actionBytes)
		buf.WriteByte('\n')

		docBytes, err := sonic.Marshal(op.Document)
		if err != nil {
			return fmt.Errorf("marshal bulk document %s: %w", op.ID, err)
		}
		buf.Write(docBytes)
		buf.WriteByte('\n')
	}

	res, err := esapi.BulkRequest{Body: &buf}.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("bulk operation failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("bulk operation error: %s", res.String())
	}

	c.logger.Debug("Bulk write operation completed", zap.Int("operations", len(operations)))
	return nil
}

// CreateIndex 创建索引，已存在时忽略
func (c *Client) CreateIndex(ctx context.Context, indexName string, mapping map[string]interface{}) error {
	mappingJSON, err := sonic.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	res, err := esapi.IndicesCreateRequest{
		Index: indexName,
		Body:  bytes.NewReader(mappingJSON),
	}.Do(ctx, c.es)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && !strings.Contains(res.String(), "resource_already_exists_exception") {
		return fmt.Errorf("failed to create index: %s", res.String())
	}

	c.logger.Info("Index created or already exists", zap.String("index", indexName))
	return nil
}
