package utils

import "fmt"

func TokenListKey(chainId int64) string {
	return fmt.Sprintf("sniper:tokens:%d", chainId)
}

func WhitelistKey() string {
	return "sniper:whitelist"
}
