// Package config 读取服务模式的 YAML 配置。
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ByLCY/labelsheet/settings"
)

const (
	ModeDev     = "dev"
	ModeRelease = "release"

	DriverFile  = "file"
	DriverMySQL = "mysql"
)

type Settings struct {
	Driver  string `yaml:"driver"`
	Path    string `yaml:"path"`
	Profile string `yaml:"profile"`
}

type Icons struct {
	Dir string `yaml:"dir"`
}

type CORS struct {
	Origins []string `yaml:"origins"`
}

type Render struct {
	DPI int `yaml:"dpi"`
	// Formats 是额外的规格定义文件，追加到内置目录之后。
	Formats []string `yaml:"formats"`
}

type Config struct {
	Version  string                  `yaml:"version"`
	Mode     string                  `yaml:"mode"`
	Addr     string                  `yaml:"addr"`
	Settings Settings                `yaml:"settings"`
	DB       settings.DatabaseConfig `yaml:"database"`
	Icons    Icons                   `yaml:"icons"`
	CORS     CORS                    `yaml:"cors"`
	Render   Render                  `yaml:"render"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Mode:     ModeRelease,
		Addr:     ":8080",
		Settings: Settings{Driver: DriverFile, Path: "settings.json"},
		CORS:     CORS{Origins: []string{"http://localhost:3000"}},
		Render:   Render{DPI: 300},
	}
}

// Load 读取配置文件，未填写的字段使用默认值。
func Load(path string) (*Config, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	return Parse(buf)
}

// Parse 解析 YAML 并校验取值。
func Parse(buf []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, fmt.Errorf("解析配置文件失败: %w", err)
	}
	cfg.Mode = strings.ToLower(strings.TrimSpace(cfg.Mode))
	if cfg.Mode != ModeDev && cfg.Mode != ModeRelease {
		return nil, fmt.Errorf("mode 必须为 %s 或 %s，实际为 %q", ModeDev, ModeRelease, cfg.Mode)
	}
	switch cfg.Settings.Driver {
	case DriverFile:
		if cfg.Settings.Path == "" {
			return nil, fmt.Errorf("settings.path 不能为空")
		}
	case DriverMySQL:
		if cfg.DB.Host == "" || cfg.DB.DBName == "" {
			return nil, fmt.Errorf("使用 mysql 存储时必须填写 database.host 与 database.dbname")
		}
	default:
		return nil, fmt.Errorf("未知的 settings.driver：%q", cfg.Settings.Driver)
	}
	if cfg.Render.DPI <= 0 {
		cfg.Render.DPI = 300
	}
	return &cfg, nil
}
