package utils

import (
	"time"
)

// WireTimeFormat 通知和响应中created_at的固定文本格式
// 生产方和消费方必须保持一致
const WireTimeFormat = "2006-01-02T15:04:05"

// FormatWireTime 按固定格式序列化时间
func FormatWireTime(t time.Time) string {
	return t.Format(WireTimeFormat)
}

// GetCurrentTimestamp 返回当前的 Unix 时间戳（秒）
func GetCurrentTimestamp() int64 {
	return time.Now().Unix()
}

// GetCurrentTimestampMs 返回当前的 Unix 时间戳（毫秒）
func GetCurrentTimestampMs() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}
