package job

import (
	"context"

	"go.uber.org/zap"
)

type storeInitializer interface {
	EnsureExists() error
	Path() string
}

// TokenStoreInit 启动时确保记录文件存在
type TokenStoreInit struct {
	store storeInitializer
	tl    *zap.Logger
}

func NewTokenStoreInit(store storeInitializer, logger *zap.Logger) *TokenStoreInit {
	return &TokenStoreInit{store: store, tl: logger}
}

func (t *TokenStoreInit) Run(ctx context.Context) error {
	if err := t.store.EnsureExists(); err != nil {
		return err
	}
	t.tl.Info("📄 Token store ready", zap.String("path", t.store.Path()))
	return nil
}
