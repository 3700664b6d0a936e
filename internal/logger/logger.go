// 包 logger：统一初始化与获取日志器；通过环境变量或显式参数控制级别、格式与输出目标
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

var (
	mu            sync.Mutex
	defaultLogger *slog.Logger
)

// Options：日志配置；空值回退到 LOG_LEVEL/LOG_FORMAT 环境变量与标准错误
type Options struct {
	Level  string
	Format string
	Output io.Writer
}

// Setup：按环境变量初始化默认日志器，输出到标准错误
func Setup() *slog.Logger {
	return SetupWith(Options{})
}

// 文档注释：按显式参数初始化默认日志器
// 约束：终端界面运行时必须把 Output 指向文件，避免日志写入标准错误破坏画面。
func SetupWith(o Options) *slog.Logger {
	if o.Level == "" {
		o.Level = os.Getenv("LOG_LEVEL")
	}
	if o.Format == "" {
		o.Format = os.Getenv("LOG_FORMAT")
	}
	if o.Output == nil {
		o.Output = os.Stderr
	}
	opts := &slog.HandlerOptions{Level: ParseLevel(o.Level)}
	var h slog.Handler
	if strings.EqualFold(o.Format, "json") {
		h = slog.NewJSONHandler(o.Output, opts)
	} else {
		h = slog.NewTextHandler(o.Output, opts)
	}
	l := slog.New(h)
	mu.Lock()
	defaultLogger = l
	mu.Unlock()
	return l
}

// ParseLevel：未知值回退到 info
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// L：获取默认日志器；若未初始化则回退到 Setup
func L() *slog.Logger {
	mu.Lock()
	l := defaultLogger
	mu.Unlock()
	if l == nil {
		return Setup()
	}
	return l
}
