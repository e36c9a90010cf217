package token

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"web3-sniper/internal/worker/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func event(token string, ts time.Time) model.TokenCreateEvent {
	return model.TokenCreateEvent{
		TokenAddress:    token,
		Name:            "Name " + token,
		Symbol:          "SYM",
		Creator:         "0xaaa",
		Timestamp:       ts,
		TransactionHash: "0xtx" + token,
		InitialSupply:   "1000000000000000000000000000",
		RequestID:       "1",
		LaunchTime:      ts.Unix(),
		LaunchFee:       "0",
	}
}

func TestFileStoreEnsureExists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "list", "whitelisted_tokens.json")
	s := NewFileStore(path, zap.NewNop())

	require.NoError(t, s.EnsureExists())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, "[]", string(data))

	// 已存在时不覆盖
	require.NoError(t, s.Append(context.Background(), event("0x01", time.Unix(100, 0).UTC())))
	require.NoError(t, s.EnsureExists())
	events, err := s.Load()
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestFileStoreAppendNewestFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	s := NewFileStore(path, zap.NewNop())
	ctx := context.Background()

	base := time.Unix(1_700_000_000, 0).UTC()
	require.NoError(t, s.Append(ctx, event("0x02", base.Add(2*time.Second))))
	require.NoError(t, s.Append(ctx, event("0x01", base.Add(time.Second))))
	require.NoError(t, s.Append(ctx, event("0x03", base.Add(3*time.Second))))

	events, err := s.Load()
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.Equal(t, "0x03", events[0].TokenAddress)
	assert.Equal(t, "0x02", events[1].TokenAddress)
	assert.Equal(t, "0x01", events[2].TokenAddress)
	assert.True(t, events[0].Timestamp.Equal(base.Add(3*time.Second)))

	// 不残留临时文件
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFileStoreJSONFieldNames(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	s := NewFileStore(path, zap.NewNop())
	require.NoError(t, s.Append(context.Background(), event("0x01", time.Unix(100, 0).UTC())))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, field := range []string{"tokenAddress", "transactionHash", "initialSupply", "requestId", "launchTime", "launchFee", "blockNumber", "logIndex"} {
		assert.Contains(t, string(data), `"`+field+`"`)
	}
}

func TestFileStoreCorruptFileNotOverwritten(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0644))
	s := NewFileStore(path, zap.NewNop())

	assert.Error(t, s.Append(context.Background(), event("0x01", time.Now())))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{broken", string(data))
}

func TestFileStoreConcurrentAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	s := NewFileStore(path, zap.NewNop())
	base := time.Unix(1_700_000_000, 0).UTC()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			assert.NoError(t, s.Append(context.Background(), event(string(rune('a'+i)), base.Add(time.Duration(i)*time.Second))))
		}(i)
	}
	wg.Wait()

	events, err := s.Load()
	require.NoError(t, err)
	assert.Len(t, events, 20)
	for i := 1; i < len(events); i++ {
		assert.False(t, events[i].Timestamp.After(events[i-1].Timestamp))
	}
}
