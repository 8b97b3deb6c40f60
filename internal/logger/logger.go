// Package logger 保存整个模块共享的 slog 日志器。默认不输出任何日志。
package logger

import (
	"context"
	"log/slog"
	"sync/atomic"
)

// nopHandler 丢弃所有日志；Enabled 返回 false，调用方不会格式化消息。
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

var current atomic.Pointer[slog.Logger]

func init() {
	current.Store(slog.New(nopHandler{}))
}

// Set 替换全局日志器，可并发调用。传入 nil 恢复静默。
//
// 使用的级别：
//   - Debug：规格回退、字体缓存等内部诊断
//   - Info：服务启动、导出完成
//   - Warn：可恢复的问题（图标缺失、字体加载失败后使用估算宽度）
func Set(l *slog.Logger) {
	if l == nil {
		l = slog.New(nopHandler{})
	}
	current.Store(l)
}

// L 返回当前日志器。
func L() *slog.Logger {
	return current.Load()
}
