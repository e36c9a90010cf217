package token

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"web3-sniper/internal/worker/model"

	"github.com/bytedance/sonic"
	"go.uber.org/zap"
)

// FileStore JSON 数组文件，按时间倒序，每次追加整文件原子替换
type FileStore struct {
	path string
	tl   *zap.Logger
	mu   sync.Mutex
}

func NewFileStore(path string, tl *zap.Logger) *FileStore {
	return &FileStore{path: path, tl: tl}
}

func (s *FileStore) Path() string {
	return s.path
}

// EnsureExists 文件不存在时创建空数组
func (s *FileStore) EnsureExists() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path); err == nil {
		return nil
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return s.writeLocked([]model.TokenCreateEvent{})
}

// Load 读取全部记录，文件不存在返回空
func (s *FileStore) Load() ([]model.TokenCreateEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readLocked()
}

// Append 追加一条记录
func (s *FileStore) Append(ctx context.Context, ev model.TokenCreateEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	events, err := s.readLocked()
	if err != nil {
		// 文件损坏时不覆盖，避免丢历史
		return err
	}
	events = append(events, ev)
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Timestamp.After(events[j].Timestamp)
	})
	return s.writeLocked(events)
}

func (s *FileStore) readLocked() ([]model.TokenCreateEvent, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return []model.TokenCreateEvent{}, nil
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return []model.TokenCreateEvent{}, nil
	}

	var events []model.TokenCreateEvent
	if err := sonic.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return events, nil
}

// writeLocked 写临时文件再 rename，不会留下写了一半的文件
func (s *FileStore) writeLocked(events []model.TokenCreateEvent) error {
	data, err := sonic.ConfigStd.MarshalIndent(events, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}
