// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"go_quiz_db/internal/model"
)

type Config struct {
	App        AppConfig        `mapstructure:"app"`
	Database   DatabaseConfig   `mapstructure:"database"`
	Migrations MigrationsConfig `mapstructure:"migrations"`
	Verify     VerifyConfig     `mapstructure:"verify"`
	Log        LogConfig        `mapstructure:"log"`
}

// AppConfig は実行環境です。APP_ENV から読みます。
type AppConfig struct {
	Env string `mapstructure:"env"`
}

// IsDev は開発環境 (APP_ENV=dev) かどうか
func (c AppConfig) IsDev() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), EnvDev)
}

// DatabaseConfig は接続設定です。URL 以外の入力元は見ません。
type DatabaseConfig struct {
	Driver         string        `mapstructure:"driver" validate:"oneof=postgres sqlite"`
	URL            string        `mapstructure:"url"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" validate:"gte=0"`
	QueryTimeout   time.Duration `mapstructure:"query_timeout" validate:"gte=0"` // 0 なら無制限
	TraceSQL       bool          `mapstructure:"trace_sql"`                      // 実行した SQL をすべてログに出す
}

// MigrationsConfig は適用するSQLファイルの場所と順番です。
// Dir が空の場合は埋め込みのマイグレーションを使います。
type MigrationsConfig struct {
	Dir   string   `mapstructure:"dir"`
	Files []string `mapstructure:"files" validate:"dive,required"`
}

type VerifyConfig struct {
	SampleSize     int      `mapstructure:"sample_size" validate:"gt=0"`
	FilterCategory string   `mapstructure:"filter_category" validate:"required"`
	FilterLimit    int      `mapstructure:"filter_limit" validate:"gt=0"`
	QuizSize       int      `mapstructure:"quiz_size" validate:"gt=0"`
	QuizCategories []string `mapstructure:"quiz_categories" validate:"min=1,dive,required"`
	PolicyTables   []string `mapstructure:"policy_tables" validate:"min=1,dive,required"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// LoadOptions は設定の読み込み元を指定します
type LoadOptions struct {
	ConfigFile string // 明示的な設定ファイル (空なら ConfigDir/config.yaml を探す)
	ConfigDir  string
	EnvFile    string // .env ファイル (存在しなければ無視)
}

// LoadConfig は .env → 環境変数 → 設定ファイル → デフォルト値 の順で設定を解決します。
// ここでは検証しません。フラグで上書きした後に Validate を呼んでください。
func LoadConfig(opts LoadOptions) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("loading env file %s: %w", opts.EnvFile, err)
			}
			slog.Debug("Env file not found, skipping", slog.String("path", opts.EnvFile))
		}
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("QUIZDB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// QUIZDB_DATABASE_URL > POSTGRES_URL > DATABASE_URL の順に見る
	if err := v.BindEnv("database.url", "QUIZDB_DATABASE_URL", "POSTGRES_URL", "DATABASE_URL"); err != nil {
		return nil, err
	}
	if err := v.BindEnv("app.env", "APP_ENV"); err != nil {
		return nil, err
	}

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if opts.ConfigDir != "" {
			v.AddConfigPath(opts.ConfigDir)
		}
		v.AddConfigPath("configs")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			slog.Debug("Config file not found, using defaults and environment")
		} else {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = DefaultDriver
	}
	// 開発環境では GORM の SQL ログも出す
	if cfg.App.IsDev() {
		cfg.Database.TraceSQL = true
	}

	slog.Debug("Config loaded",
		slog.String("env", cfg.App.Env),
		slog.String("driver", cfg.Database.Driver),
		slog.Bool("database_url_set", cfg.Database.URL != ""),
		slog.String("migrations_dir", cfg.Migrations.Dir),
		slog.Int("migration_files", len(cfg.Migrations.Files)),
	)
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.driver", DefaultDriver)
	v.SetDefault("database.connect_timeout", DefaultConnectTimeout)
	v.SetDefault("database.query_timeout", DefaultQueryTimeout)
	v.SetDefault("migrations.files", DefaultMigrationFiles)
	v.SetDefault("verify.sample_size", DefaultSampleSize)
	v.SetDefault("verify.filter_category", DefaultFilterCategory)
	v.SetDefault("verify.filter_limit", DefaultFilterLimit)
	v.SetDefault("verify.quiz_size", DefaultQuizSize)
	v.SetDefault("verify.quiz_categories", DefaultQuizCategories)
	v.SetDefault("verify.policy_tables", DefaultPolicyTables)
	v.SetDefault("log.level", DefaultLogLevel)
}

// Validate は I/O の前に呼び出します。URL が無い場合は model.ErrMissingConfig を返します。
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.URL) == "" {
		return fmt.Errorf("%w: set POSTGRES_URL (or DATABASE_URL) or pass --database-url", model.ErrMissingConfig)
	}
	if err := validateStruct(c); err != nil {
		return fmt.Errorf("%w: %v", model.ErrInvalidInput, err)
	}
	return nil
}
