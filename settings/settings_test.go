package settings_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/ByLCY/labelsheet/layout"
	"github.com/ByLCY/labelsheet/settings"
)

func sample() layout.PrintSettings {
	s := layout.DefaultPrintSettings()
	s.FormatKey = "avery-5163"
	s.Orientation = layout.Landscape
	s.Options.ShowIcon = false
	s.DisplayUnit = layout.UnitMM
	return s
}

func TestFileStoreMissingReturnsDefaults(t *testing.T) {
	store := settings.NewFileStore(filepath.Join(t.TempDir(), "settings.json"))
	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if diff := cmp.Diff(layout.DefaultPrintSettings(), got); diff != "" {
		t.Fatalf("默认配置不符 (-want +got):\n%s", diff)
	}
}

func TestFileStoreSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	store := settings.NewFileStore(path)
	want := sample()
	if err := store.Save(context.Background(), want); err != nil {
		t.Fatalf("保存失败: %v", err)
	}
	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("读取失败: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("配置不符 (-want +got):\n%s", diff)
	}
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("临时文件应已被重命名")
	}
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := settings.NewFileStore(path).Load(context.Background()); err == nil {
		t.Fatalf("损坏的文件应返回错误")
	}
}

func TestDecodeFillsDefaults(t *testing.T) {
	got, err := settings.Decode([]byte(`{"formatKey":"avery-5160"}`))
	if err != nil {
		t.Fatalf("解析失败: %v", err)
	}
	if got.FormatKey != "avery-5160" {
		t.Fatalf("formatKey 错误: %q", got.FormatKey)
	}
	if diff := cmp.Diff(layout.DefaultLabelOptions(), got.Options); diff != "" {
		t.Fatalf("缺省选项应为默认值 (-want +got):\n%s", diff)
	}
	if got.DisplayUnit != layout.UnitIN {
		t.Fatalf("缺省显示单位应为 in，实际 %q", got.DisplayUnit)
	}
}

// 预设未填内边距时，保存后的文件必须能再次读回。
func TestEncodeDecodePresetWithoutPadding(t *testing.T) {
	s := sample()
	s.Presets = []layout.LabelFormat{{
		Key:        "custom-tiny",
		Name:       "Tiny",
		Columns:    2,
		CellWidth:  layout.In(1),
		CellHeight: layout.In(0.5),
		QRSize:     layout.In(0.4),

		NameFontSize:    layout.Pt(8),
		ContentFontSize: layout.Pt(6),
		CodeFontSize:    layout.Pt(6),
		MarginTop:       layout.In(0.25),
		MarginBottom:    layout.In(0.25),
		MarginLeft:      layout.In(0.2),
		MarginRight:     layout.In(0.2),
	}}
	data, err := settings.Encode(s)
	if err != nil {
		t.Fatalf("编码失败: %v", err)
	}
	got, err := settings.Decode(data)
	if err != nil {
		t.Fatalf("空内边距的预设应能解析: %v\n%s", err, data)
	}
	if diff := cmp.Diff(s, got); diff != "" {
		t.Fatalf("往返后配置不一致 (-want +got):\n%s", diff)
	}
}

func TestDSN(t *testing.T) {
	dsn := settings.DatabaseConfig{Host: "db", Port: 3307, Username: "labels", Password: "secret", DBName: "print"}.DSN()
	for _, part := range []string{"labels:secret@tcp(db:3307)/print", "parseTime=true", "timeout=3s"} {
		if !strings.Contains(dsn, part) {
			t.Fatalf("DSN %q 缺少 %q", dsn, part)
		}
	}
	if dsn := (settings.DatabaseConfig{Host: "db"}).DSN(); !strings.Contains(dsn, "tcp(db:3306)") {
		t.Fatalf("缺省端口应为 3306: %q", dsn)
	}
}

func TestSaverCoalesces(t *testing.T) {
	store := &settings.MemoryStore{}
	saver := settings.NewSaver(store, 20*time.Millisecond, nil)
	first := sample()
	last := sample()
	last.FormatKey = "avery-5167"
	saver.Schedule(first)
	saver.Schedule(last)

	deadline := time.Now().Add(2 * time.Second)
	for saver.Pending() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	// 等待回调完成保存
	for store.Saves() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if store.Saves() != 1 {
		t.Fatalf("期望合并为一次保存，实际 %d 次", store.Saves())
	}
	got, _ := store.Load(context.Background())
	if got.FormatKey != "avery-5167" {
		t.Fatalf("应保存最后一次修改，实际 %q", got.FormatKey)
	}
}

func TestSaverCancel(t *testing.T) {
	store := &settings.MemoryStore{}
	saver := settings.NewSaver(store, 10*time.Millisecond, nil)
	saver.Schedule(sample())
	saver.Cancel()
	time.Sleep(40 * time.Millisecond)
	if store.Saves() != 0 {
		t.Fatalf("取消后不应保存")
	}
	if saver.Pending() {
		t.Fatalf("取消后不应有待保存内容")
	}
}

func TestSaverFlush(t *testing.T) {
	store := &settings.MemoryStore{}
	saver := settings.NewSaver(store, time.Hour, nil)
	if err := saver.Flush(context.Background()); err != nil {
		t.Fatalf("空 Flush 不应报错: %v", err)
	}
	saver.Schedule(sample())
	if err := saver.Flush(context.Background()); err != nil {
		t.Fatalf("Flush 失败: %v", err)
	}
	if store.Saves() != 1 || saver.Pending() {
		t.Fatalf("Flush 后应已保存且无待保存内容")
	}
}

type failingStore struct{ settings.MemoryStore }

func (*failingStore) Save(context.Context, layout.PrintSettings) error { return errors.New("disk full") }

func TestSaverReportsErrors(t *testing.T) {
	var mu sync.Mutex
	var got error
	done := make(chan struct{})
	saver := settings.NewSaver(&failingStore{}, 5*time.Millisecond, func(err error) {
		mu.Lock()
		got = err
		mu.Unlock()
		close(done)
	})
	saver.Schedule(sample())
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("错误回调未触发")
	}
	mu.Lock()
	defer mu.Unlock()
	if got == nil || !strings.Contains(got.Error(), "disk full") {
		t.Fatalf("错误不符: %v", got)
	}
}
