// Package settings 持久化 PrintSettings。存储只负责读写，何时保存由调用方决定（见 Saver）。
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/ByLCY/labelsheet/internal/logger"
	"github.com/ByLCY/labelsheet/layout"
)

// Store 读写打印配置。首次运行（无记录）时 Load 返回默认配置而不是错误。
type Store interface {
	Load(ctx context.Context) (layout.PrintSettings, error)
	Save(ctx context.Context, s layout.PrintSettings) error
}

// Decode 解析 JSON 配置，缺省字段取默认值，并规整显示选项。
func Decode(data []byte) (layout.PrintSettings, error) {
	s := layout.DefaultPrintSettings()
	if err := json.Unmarshal(data, &s); err != nil {
		return layout.PrintSettings{}, fmt.Errorf("解析打印配置失败: %w", err)
	}
	s.Options = s.Options.Normalize()
	if s.DisplayUnit == layout.UnitNone {
		s.DisplayUnit = layout.UnitIN
	}
	return s, nil
}

// Encode 序列化配置，输出带缩进便于手工编辑。
func Encode(s layout.PrintSettings) ([]byte, error) {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("序列化打印配置失败: %w", err)
	}
	return data, nil
}

// FileStore 把配置保存为单个 JSON 文件，写入时先写临时文件再重命名。
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore creates a store backed by the JSON file at path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file path.
func (f *FileStore) Path() string { return f.path }

func (f *FileStore) Load(ctx context.Context) (layout.PrintSettings, error) {
	if err := ctx.Err(); err != nil {
		return layout.PrintSettings{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.L().Debug("settings file missing, using defaults", "path", f.path)
		return layout.DefaultPrintSettings(), nil
	}
	if err != nil {
		return layout.PrintSettings{}, fmt.Errorf("读取打印配置 %s 失败: %w", f.path, err)
	}
	return Decode(data)
}

func (f *FileStore) Save(ctx context.Context, s layout.PrintSettings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Encode(s)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if dir := filepath.Dir(f.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("创建配置目录失败: %w", err)
		}
	}
	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("写入打印配置失败: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("保存打印配置失败: %w", err)
	}
	return nil
}

// MemoryStore 是进程内存储，用于测试与无持久化的服务模式。
type MemoryStore struct {
	mu    sync.Mutex
	value *layout.PrintSettings
	saves int
}

func (m *MemoryStore) Load(ctx context.Context) (layout.PrintSettings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.value == nil {
		return layout.DefaultPrintSettings(), nil
	}
	return *m.value, nil
}

func (m *MemoryStore) Save(ctx context.Context, s layout.PrintSettings) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.value = &s
	m.saves++
	return nil
}

// Saves reports how many times Save succeeded.
func (m *MemoryStore) Saves() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}
