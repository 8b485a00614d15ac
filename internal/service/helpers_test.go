package service

import (
	"context"
	"fmt"
	"testing"
	"testing/fstest"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go_quiz_db/internal/config"
	"go_quiz_db/internal/logging"
	"go_quiz_db/internal/repository"
)

// SQLite 用のマイグレーション。options は JSON 配列の文字列で保存する。
const (
	testSchemaFile = "001_create_questions_table.sql"
	testSeedFile   = "004_seed_french_questions.sql"

	testSchemaSQL = `-- questions
CREATE TABLE questions (
	id TEXT PRIMARY KEY,
	french_word TEXT NOT NULL,
	english_translation TEXT NOT NULL,
	options TEXT NOT NULL,
	correct_answer TEXT NOT NULL,
	difficulty_level TEXT NOT NULL DEFAULT 'beginner',
	category TEXT NOT NULL,
	created_at TIMESTAMP
);
CREATE INDEX idx_questions_category ON questions(category);
`

	testSeedSQL = `INSERT INTO questions (id, french_word, english_translation, options, correct_answer, category) VALUES
('8f1c2a36-0a5b-4f7e-9a51-2f1b7e6f0a01', 'bonjour', 'hello', '["hello","goodbye","thank you","please"]', 'hello', 'greetings'),
('8f1c2a36-0a5b-4f7e-9a51-2f1b7e6f0a02', 'merci', 'thank you', '["please","thank you","sorry","hello"]', 'thank you', 'greetings'),
('8f1c2a36-0a5b-4f7e-9a51-2f1b7e6f0a03', 'un', 'one', '["one","two","three","four"]', 'one', 'numbers');
`
)

func testMigrationFS() fstest.MapFS {
	return fstest.MapFS{
		testSchemaFile:               &fstest.MapFile{Data: []byte(testSchemaSQL)},
		testSeedFile:                 &fstest.MapFile{Data: []byte(testSeedSQL)},
		"000_comments_only.sql":      &fstest.MapFile{Data: []byte("-- nothing to do here\n\n;\n")},
		"005_broken.sql":             &fstest.MapFile{Data: []byte("CREATE TABLEX broken (id int);")},
		"006_block_comment_only.sql": &fstest.MapFile{Data: []byte("/*\n * reserved /* nested */\n */\n")},
		"archive/000_notes.sql":      &fstest.MapFile{Data: []byte("-- archived\n")},
	}
}

func testDBConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Driver: "sqlite",
		URL:    fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
	}
}

func setupTestDB(t *testing.T) (*gorm.DB, config.DatabaseConfig) {
	t.Helper()
	cfg := testDBConfig()
	logger := logging.Discard()
	db, err := repository.NewDB(context.Background(), cfg, logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repository.Close(db, logger) })
	return db, cfg
}

func newTestMigrationService(cfg config.DatabaseConfig) MigrationService {
	logger := logging.Discard()
	return NewMigrationService(repository.NewGormQuestionRepository(logger), cfg, logger)
}
