package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ByLCY/labelsheet/assets"
	"github.com/ByLCY/labelsheet/catalog"
	"github.com/ByLCY/labelsheet/config"
	"github.com/ByLCY/labelsheet/internal/logger"
	"github.com/ByLCY/labelsheet/layout"
	"github.com/ByLCY/labelsheet/renderer"
	canvasrenderer "github.com/ByLCY/labelsheet/renderer/canvas"
	"github.com/ByLCY/labelsheet/renderer/preview"
	"github.com/ByLCY/labelsheet/server"
	"github.com/ByLCY/labelsheet/settings"
)

// options 汇总命令行参数。
type options struct {
	records  string
	settings string
	formats  string
	format   string
	output   string
	preview  string
	debug    string
	icons    string
	dpi      int
}

func main() {
	var opts options
	flag.StringVar(&opts.records, "records", "examples/records.json", "库存记录 JSON 文件路径")
	flag.StringVar(&opts.settings, "settings", "", "打印配置 JSON 文件路径（缺省使用默认配置）")
	flag.StringVar(&opts.formats, "formats", "", "额外的标签规格定义文件")
	flag.StringVar(&opts.format, "format", "", "覆盖配置中的规格 key")
	flag.StringVar(&opts.output, "out", "output/labels.pdf", "PDF 输出路径")
	flag.StringVar(&opts.preview, "preview", "", "SVG 预览输出路径")
	flag.StringVar(&opts.debug, "debug", "", "布局调试 JSON 输出路径")
	flag.StringVar(&opts.icons, "icons", "", "图标目录（<key>.png）")
	flag.IntVar(&opts.dpi, "dpi", assets.DefaultDPI, "二维码与图标的栅格化分辨率")
	query := flag.String("search", "", "按名称或兼容型号搜索规格后退出")
	serve := flag.Bool("serve", false, "以 HTTP 服务方式运行")
	configPath := flag.String("config", "config/config.yaml", "服务配置文件路径")
	verbose := flag.Bool("v", false, "输出调试日志")
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger.Set(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))

	switch {
	case *serve:
		if err := runServer(*configPath, opts.formats); err != nil {
			log.Fatalf("服务运行失败: %v", err)
		}
	case flagSet("search"):
		reg, err := loadCatalog(opts.formats)
		if err != nil {
			log.Fatalf("加载标签规格失败: %v", err)
		}
		printFormats(reg.Search(*query), reg)
	default:
		reg, err := loadCatalog(opts.formats)
		if err != nil {
			log.Fatalf("加载标签规格失败: %v", err)
		}
		if err := run(context.Background(), opts, reg); err != nil {
			log.Fatalf("生成标签失败: %v", err)
		}
		fmt.Printf("已生成 PDF：%s\n", opts.output)
	}
}

func flagSet(name string) bool {
	found := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == name {
			found = true
		}
	})
	return found
}

// loadCatalog 返回内置目录，并追加额外的定义文件。
func loadCatalog(extra ...string) (*catalog.Registry, error) {
	reg := catalog.Builtin()
	for _, path := range extra {
		if path == "" {
			continue
		}
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("无法打开规格文件 %s: %w", path, err)
		}
		more, err := catalog.Load(file)
		file.Close()
		if err != nil {
			return nil, fmt.Errorf("解析规格文件 %s 失败: %w", path, err)
		}
		reg = reg.Extend(more)
	}
	return reg, nil
}

func printFormats(formats []layout.LabelFormat, reg *catalog.Registry) {
	for _, f := range formats {
		fmt.Printf("%-20s %-32s %s × %s  %d/页", f.Key, f.Name, f.CellWidth, f.CellHeight, layout.LabelsPerPage(f))
		if refs := reg.CrossReferences(f.Key); len(refs) > 0 {
			fmt.Printf("  %v", refs)
		}
		fmt.Println()
	}
}

// run 串联读取、解析、排版、取图与渲染。
func run(ctx context.Context, opts options, reg *catalog.Registry) error {
	records, err := readRecords(opts.records)
	if err != nil {
		return err
	}
	ps := layout.DefaultPrintSettings()
	if opts.settings != "" {
		ps, err = settings.NewFileStore(opts.settings).Load(ctx)
		if err != nil {
			return err
		}
	}
	if opts.format != "" {
		ps.FormatKey = opts.format
	}

	pdf := canvasrenderer.NewRenderer()
	res := layout.Resolve(reg, layout.InputFromSettings(ps))
	result, err := layout.Build(records, res, ps.Options, layout.BuildOptions{
		Typesetter: pdf,
		Meta:       layout.DocumentMeta{Title: res.Final.Name},
	})
	if err != nil {
		return fmt.Errorf("布局计算失败: %w", err)
	}

	if opts.debug != "" {
		if err := writeDebug(result, opts.debug); err != nil {
			return err
		}
	}

	var icons *assets.IconRasterizer
	if opts.icons != "" {
		icons = assets.NewIconRasterizer(os.DirFS(opts.icons))
	}
	qrs := assets.NewQRProvider(assets.QRStyle{Dots: result.Options.QRDotStyle, Corners: result.Options.QRCornerStyle})
	images, err := assets.Collect(ctx, result, qrs, icons, opts.dpi)
	if err != nil {
		return fmt.Errorf("生成图片失败: %w", err)
	}

	if err := renderTo(pdf, result, images, opts.output); err != nil {
		return fmt.Errorf("渲染 PDF 失败: %w", err)
	}
	if opts.preview != "" {
		if err := renderTo(preview.NewRenderer(), result, images, opts.preview); err != nil {
			return fmt.Errorf("渲染预览失败: %w", err)
		}
	}
	return nil
}

func readRecords(path string) ([]layout.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("无法读取记录文件 %s: %w", path, err)
	}
	var records []layout.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("解析记录 JSON 失败: %w", err)
	}
	return records, nil
}

func renderTo(r renderer.Renderer, result *layout.Result, images renderer.Images, path string) error {
	data, err := r.Render(result, images)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}
	return nil
}

func writeDebug(result *layout.Result, debugPath string) error {
	if err := os.MkdirAll(filepath.Dir(debugPath), 0o755); err != nil {
		return fmt.Errorf("创建调试目录失败: %w", err)
	}
	if err := layout.WriteDebugJSON(result, debugPath); err != nil {
		return fmt.Errorf("输出调试 JSON 失败: %w", err)
	}
	return nil
}

// runServer 按配置文件启动 HTTP 服务，收到中断信号后优雅退出。
func runServer(configPath, extraFormats string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	logger.L().Info("starting", "mode", cfg.Mode, "addr", cfg.Addr, "settings", cfg.Settings.Driver)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	reg, err := loadCatalog(append([]string{extraFormats}, cfg.Render.Formats...)...)
	if err != nil {
		return err
	}

	var store settings.Store
	switch cfg.Settings.Driver {
	case config.DriverMySQL:
		conn, err := settings.Connect(ctx, cfg.DB)
		if err != nil {
			return err
		}
		defer conn.Close()
		ms := settings.NewMySQLStore(conn, cfg.Settings.Profile)
		if err := ms.EnsureSchema(ctx); err != nil {
			return err
		}
		store = ms
		logger.L().Info("connected to DB", "dbname", cfg.DB.DBName)
	default:
		store = settings.NewFileStore(cfg.Settings.Path)
	}

	var icons *assets.IconRasterizer
	if cfg.Icons.Dir != "" {
		icons = assets.NewIconRasterizer(os.DirFS(cfg.Icons.Dir))
	}

	if cfg.Mode == config.ModeRelease {
		gin.SetMode(gin.ReleaseMode)
	}
	svc := server.NewService(reg, store, icons, cfg.Render.DPI)
	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: server.NewRouter(svc, server.RouterOptions{
			Dev:         cfg.Mode == config.ModeDev,
			CORSOrigins: cfg.CORS.Origins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.L().Info("listening", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	logger.L().Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
