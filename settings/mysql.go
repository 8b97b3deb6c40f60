package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/ByLCY/labelsheet/layout"
)

const driverName = "mysql"

// DatabaseConfig 是 MySQL 连接参数。
type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"user"`
	Password string `yaml:"password"`
	DBName   string `yaml:"dbname"`
}

// DSN 生成驱动连接串。
func (c DatabaseConfig) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = c.Username
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	port := c.Port
	if port == 0 {
		port = 3306
	}
	cfg.Addr = net.JoinHostPort(c.Host, strconv.Itoa(port))
	cfg.DBName = c.DBName
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Timeout = 3 * time.Second
	cfg.ReadTimeout = 5 * time.Second
	cfg.WriteTimeout = 5 * time.Second
	return cfg.FormatDSN()
}

// Connect 打开连接并 Ping 一次。
func Connect(ctx context.Context, c DatabaseConfig) (*sql.DB, error) {
	db, err := sql.Open(driverName, c.DSN())
	if err != nil {
		return nil, fmt.Errorf("数据库连接准备失败: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("数据库连接失败: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return db, nil
}

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS print_settings (
  profile    VARCHAR(64) NOT NULL PRIMARY KEY,
  payload    JSON        NOT NULL,
  updated_at DATETIME    NOT NULL
)`
	selectSQL = `SELECT payload FROM print_settings WHERE profile = ?`
	upsertSQL = `INSERT INTO print_settings (profile, payload, updated_at) VALUES (?, ?, ?)
ON DUPLICATE KEY UPDATE payload = VALUES(payload), updated_at = VALUES(updated_at)`
)

// MySQLStore 以 JSON 列保存配置，每个 profile 一行。
type MySQLStore struct {
	db      *sql.DB
	profile string
	now     func() time.Time
}

// NewMySQLStore creates a store for the given profile; an empty profile means "default".
func NewMySQLStore(db *sql.DB, profile string) *MySQLStore {
	if profile == "" {
		profile = "default"
	}
	return &MySQLStore{db: db, profile: profile, now: time.Now}
}

// EnsureSchema 创建配置表（若不存在）。
func (m *MySQLStore) EnsureSchema(ctx context.Context) error {
	if _, err := m.db.ExecContext(ctx, createTableSQL); err != nil {
		return fmt.Errorf("创建配置表失败: %w", err)
	}
	return nil
}

func (m *MySQLStore) Load(ctx context.Context) (layout.PrintSettings, error) {
	var payload []byte
	err := m.db.QueryRowContext(ctx, selectSQL, m.profile).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return layout.DefaultPrintSettings(), nil
	}
	if err != nil {
		return layout.PrintSettings{}, fmt.Errorf("查询打印配置失败: %w", err)
	}
	return Decode(payload)
}

func (m *MySQLStore) Save(ctx context.Context, s layout.PrintSettings) error {
	data, err := Encode(s)
	if err != nil {
		return err
	}
	if _, err := m.db.ExecContext(ctx, upsertSQL, m.profile, data, m.now().UTC()); err != nil {
		var me *mysql.MySQLError
		if errors.As(err, &me) {
			return fmt.Errorf("保存打印配置失败（MySQL %d）: %w", me.Number, err)
		}
		return fmt.Errorf("保存打印配置失败: %w", err)
	}
	return nil
}
