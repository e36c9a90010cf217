package cache

import (
	"strings"
	"testing"

	"web3-sniper/internal/worker/model"

	"github.com/stretchr/testify/assert"
)

func TestWhitelistCaseInsensitive(t *testing.T) {
	w := NewWhitelist()
	w.Initialize([]model.WhitelistEntry{
		{Creator: "0xAbCdEf0123456789aBcDeF0123456789AbCdEf01"},
		{Creator: "  0x1111111111111111111111111111111111111111 "},
		{Creator: ""},
	})

	assert.Equal(t, 2, w.Len())

	ids := []string{
		"0xabcdef0123456789abcdef0123456789abcdef01",
		"0x1111111111111111111111111111111111111111",
	}
	for _, id := range ids {
		assert.True(t, w.Contains(id))
		assert.True(t, w.Contains(strings.ToUpper(id[:2])+strings.ToUpper(id[2:])))
		assert.Equal(t, w.Contains(strings.ToLower(id)), w.Contains(strings.ToUpper(id)))
	}
	assert.False(t, w.Contains("0x2222222222222222222222222222222222222222"))
	assert.Equal(t, ids[1], w.Entries()[0])
}

func TestWhitelistInitializeReplaces(t *testing.T) {
	w := NewWhitelist()
	w.Initialize([]model.WhitelistEntry{{Creator: "0xaaa"}})
	w.Initialize([]model.WhitelistEntry{{Creator: "0xbbb"}})

	assert.False(t, w.Contains("0xaaa"))
	assert.True(t, w.Contains("0xBBB"))
	assert.Equal(t, []string{"0xbbb"}, w.Entries())
}
