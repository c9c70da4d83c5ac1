package logger

import (
	"context"
	"fmt"
	"os"

	kratoslog "github.com/go-kratos/kratos/v2/log"
)

// kratosAdapter 把内部Logger适配成Kratos日志接口，供lifecycle和server层使用
type kratosAdapter struct {
	logger Logger
}

// NewKratosLogger 创建Kratos日志适配器
func NewKratosLogger(logger Logger) kratoslog.Logger {
	return &kratosAdapter{logger: logger}
}

// Log 实现Kratos Logger接口
func (ka *kratosAdapter) Log(level kratoslog.Level, keyvals ...interface{}) error {
	if len(keyvals) == 0 {
		return nil
	}

	var msg string
	fields := make([]Field, 0, len(keyvals)/2)
	for i := 0; i+1 < len(keyvals); i += 2 {
		key := fmt.Sprintf("%v", keyvals[i])
		if key == "msg" {
			msg = fmt.Sprintf("%v", keyvals[i+1])
			continue
		}
		fields = append(fields, F(key, keyvals[i+1]))
	}

	ctx := context.Background()
	switch level {
	case kratoslog.LevelDebug:
		ka.logger.Debug(ctx, msg, fields...)
	case kratoslog.LevelWarn:
		ka.logger.Warn(ctx, msg, fields...)
	case kratoslog.LevelError:
		ka.logger.Error(ctx, msg, fields...)
	case kratoslog.LevelFatal:
		ka.logger.Fatal(ctx, msg, fields...)
	default:
		ka.logger.Info(ctx, msg, fields...)
	}
	return nil
}

// NewKratosStdLogger 创建带服务标识的标准输出Kratos日志器
func NewKratosStdLogger(serviceName, version string) kratoslog.Logger {
	return kratoslog.With(
		kratoslog.NewStdLogger(os.Stdout),
		"service.name", serviceName,
		"service.version", version,
		"ts", kratoslog.DefaultTimestamp,
		"caller", kratoslog.DefaultCaller,
	)
}
