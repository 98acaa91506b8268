package utils

import (
	"os"
	"strconv"
)

// GetEnvDefault は環境変数 key の値を返します。未設定なら defaultValue を返します。
func GetEnvDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// GetEnvIntDefault は環境変数 key を整数として解釈します。
// 未設定または解釈できない場合は defaultValue を返します。
func GetEnvIntDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}
