package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go_quiz_db/internal/config"
	"go_quiz_db/internal/logging"
)

const sqliteQuestionsDDL = `
CREATE TABLE questions (
	id TEXT PRIMARY KEY,
	french_word TEXT NOT NULL,
	english_translation TEXT NOT NULL,
	options TEXT NOT NULL,
	correct_answer TEXT NOT NULL,
	difficulty_level TEXT NOT NULL DEFAULT 'beginner',
	category TEXT NOT NULL,
	created_at TIMESTAMP
)`

// sqliteConfig はテストごとに独立したインメモリDBを指す設定を返します
func sqliteConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Driver: "sqlite",
		URL:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	logger := logging.Discard()
	db, err := NewDB(context.Background(), sqliteConfig(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = Close(db, logger) })
	return db
}

func setupQuestionsTable(t *testing.T) *gorm.DB {
	t.Helper()
	db := setupTestDB(t)
	require.NoError(t, db.Exec(sqliteQuestionsDDL).Error)
	return db
}

func insertQuestion(t *testing.T, db *gorm.DB, word, answer, category string, options ...string) uuid.UUID {
	t.Helper()
	id := uuid.New()
	opts, err := json.Marshal(options)
	require.NoError(t, err)
	err = db.Exec(
		`INSERT INTO questions (id, french_word, english_translation, options, correct_answer, category) VALUES (?, ?, ?, ?, ?, ?)`,
		id.String(), word, answer, string(opts), answer, category,
	).Error
	require.NoError(t, err)
	return id
}
