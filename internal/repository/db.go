package repository

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	slogGorm "github.com/orandin/slog-gorm" // slogGormはエイリアス
	"gorm.io/driver/postgres"               // postgresドライバ
	"gorm.io/driver/sqlite"                 // ローカル確認・テスト用
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"go_quiz_db/internal/config"
	"go_quiz_db/internal/model"
)

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch strings.ToLower(cfg.Driver) {
	case "", "postgres", "postgresql":
		return postgres.Open(cfg.URL), nil
	case "sqlite", "sqlite3":
		return sqlite.Open(cfg.URL), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q: %w", cfg.Driver, model.ErrInvalidInput)
	}
}

// NewDB は接続を1本だけ開きます。
// URL が空なら接続を試みずに model.ErrMissingConfig を返し、
// Open / Ping の失敗は *model.ConnectError (原因を保持) で返します。
func NewDB(ctx context.Context, cfg config.DatabaseConfig, appLogger *slog.Logger) (*gorm.DB, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, model.ErrMissingConfig
	}

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	// === slog を利用する GORM Logger の設定 ===
	// 通常はエラーと遅いクエリだけ、TraceSQL のときは全 SQL を出す
	gormLogLevel := gormlogger.Warn
	gormOpts := []slogGorm.Option{
		slogGorm.WithHandler(appLogger.Handler()),
		slogGorm.WithSlowThreshold(500 * time.Millisecond),
	}
	if cfg.TraceSQL {
		gormLogLevel = gormlogger.Info
		gormOpts = append(gormOpts, slogGorm.WithTraceAll())
	}
	slogGormLogger := slogGorm.New(gormOpts...)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: slogGormLogger.LogMode(gormLogLevel),
		// 接続確認は下の PingContext の1回だけにする
		DisableAutomaticPing: true,
	})
	if err != nil {
		appLogger.Error("Failed to open database with GORM", slog.String("driver", cfg.Driver), slog.Any("error", err))
		return nil, &model.ConnectError{Driver: cfg.Driver, Cause: err}
	}

	sqlDB, err := db.DB()
	if err != nil {
		appLogger.Error("Error getting underlying sql.DB from GORM", slog.Any("error", err))
		return nil, &model.ConnectError{Driver: cfg.Driver, Cause: err}
	}

	// 全ての操作を1本の接続で順番に実行する
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(0)

	pingCtx := ctx
	if cfg.ConnectTimeout > 0 {
		var cancel context.CancelFunc
		pingCtx, cancel = context.WithTimeout(ctx, cfg.ConnectTimeout)
		defer cancel()
	}
	if err = sqlDB.PingContext(pingCtx); err != nil {
		appLogger.Error("Error pinging database", slog.Any("error", err))
		sqlDB.Close() // Ping失敗時はここでClose
		return nil, &model.ConnectError{Driver: cfg.Driver, Cause: err}
	}

	appLogger.Info("Database connection established", slog.String("driver", cfg.Driver))
	return db, nil
}

// Close は GORM が持つ接続を閉じます
func Close(db *gorm.DB, appLogger *slog.Logger) error {
	sqlDB, err := db.DB()
	if err != nil {
		appLogger.Error("Error getting DB for closing", slog.Any("error", err))
		return err
	}
	if err := sqlDB.Close(); err != nil {
		appLogger.Error("Error closing database connection", slog.Any("error", err))
		return err
	}
	appLogger.Info("Database connection closed.")
	return nil
}

// WithDB は接続を開いて fn を実行し、どの経路で抜けても必ず接続を閉じます。
// 接続できなかった場合 fn は呼ばれません。
func WithDB(ctx context.Context, cfg config.DatabaseConfig, appLogger *slog.Logger, fn func(db *gorm.DB) error) error {
	db, err := NewDB(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer Close(db, appLogger)

	return fn(db)
}
