// internal/config/constants.go
package config

import (
	"time"

	"go_quiz_db/internal/model"
)

// アプリケーション情報
const (
	AppName    = "quiz-db-tools"
	AppVersion = "1.0.0"
)

// デフォルト設定値
const (
	DefaultDriver         = "postgres"
	DefaultConnectTimeout = 10 * time.Second
	DefaultQueryTimeout   = 30 * time.Second
	DefaultLogLevel       = "info"
	DefaultEnvFile        = ".env"
	EnvDev                = "dev"

	DefaultSampleSize     = 5
	DefaultFilterCategory = "greetings"
	DefaultFilterLimit    = 3
	DefaultQuizSize       = 3
)

// DefaultMigrationFiles は適用順に並んだマイグレーションファイル。順番を変えないこと。
var DefaultMigrationFiles = []string{
	"001_create_questions_table.sql",
	"002_create_user_progress_table.sql",
	"003_create_quiz_sessions_table.sql",
	"004_seed_french_questions.sql",
}

var DefaultQuizCategories = []string{"greetings", "numbers", "colors"}

var DefaultPolicyTables = []string{model.TableQuestions, model.TableUserProgress, model.TableQuizSessions}
