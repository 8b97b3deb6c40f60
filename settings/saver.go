package settings

import (
	"context"
	"sync"
	"time"

	"github.com/ByLCY/labelsheet/internal/logger"
	"github.com/ByLCY/labelsheet/layout"
)

// DefaultSaveDelay 是连续编辑时的合并等待时间。
const DefaultSaveDelay = 500 * time.Millisecond

// Saver 合并短时间内的多次修改，只保存最后一次。由调用方创建并负责 Cancel 或 Flush。
type Saver struct {
	store   Store
	delay   time.Duration
	onError func(error)

	mu      sync.Mutex
	timer   *time.Timer
	pending *layout.PrintSettings
	// gen 在每次 Schedule/Cancel/Flush 时递增，已被取代的计时回调据此放弃保存
	gen uint64
}

// NewSaver creates a saver; onError may be nil, in which case failures are logged.
func NewSaver(store Store, delay time.Duration, onError func(error)) *Saver {
	if delay <= 0 {
		delay = DefaultSaveDelay
	}
	if onError == nil {
		onError = func(err error) { logger.L().Warn("settings save failed", "err", err) }
	}
	return &Saver{store: store, delay: delay, onError: onError}
}

// Schedule 记录最新配置并重置计时器。
func (s *Saver) Schedule(value layout.PrintSettings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scheduleLocked(value)
}

// scheduleLocked 要求调用方持有 s.mu。
func (s *Saver) scheduleLocked(value layout.PrintSettings) {
	s.pending = &value
	if s.timer != nil {
		s.timer.Stop()
	}
	s.gen++
	gen := s.gen
	s.timer = time.AfterFunc(s.delay, func() {
		if err := s.flush(context.Background(), gen); err != nil {
			s.onError(err)
		}
	})
}

// Pending reports whether a save is waiting to run.
func (s *Saver) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}

// Cancel 丢弃尚未保存的配置。
func (s *Saver) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
	s.pending = nil
}

// Flush 立即保存待写入的配置；没有待写入内容时直接返回。
func (s *Saver) Flush(ctx context.Context) error {
	return s.flush(ctx, 0)
}

// flush 在 gen 非零时只处理对应那次 Schedule，计时器已被替换则什么也不做。
func (s *Saver) flush(ctx context.Context, gen uint64) error {
	s.mu.Lock()
	if gen != 0 && gen != s.gen {
		s.mu.Unlock()
		return nil
	}
	s.gen++
	value := s.pending
	s.pending = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	if value == nil {
		return nil
	}
	return s.store.Save(ctx, *value)
}
