package repository

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"go_quiz_db/internal/config"
	"go_quiz_db/internal/logging"
	"go_quiz_db/internal/model"
)

func TestNewDB_MissingURL(t *testing.T) {
	db, err := NewDB(context.Background(), config.DatabaseConfig{Driver: "postgres", URL: " "}, logging.Discard())
	assert.Nil(t, db)
	assert.True(t, errors.Is(err, model.ErrMissingConfig))
}

func TestNewDB_UnsupportedDriver(t *testing.T) {
	_, err := NewDB(context.Background(), config.DatabaseConfig{Driver: "mysql", URL: "x"}, logging.Discard())
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
}

func TestNewDB_ConnectFailure(t *testing.T) {
	// 存在しないディレクトリのファイルは開けない
	cfg := config.DatabaseConfig{Driver: "sqlite", URL: "file:/nonexistent-dir/quiz.db?mode=ro"}

	_, err := NewDB(context.Background(), cfg, logging.Discard())
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrConnectFailure))

	var connErr *model.ConnectError
	require.True(t, errors.As(err, &connErr))
	assert.Equal(t, "sqlite", connErr.Driver)
	assert.NotNil(t, connErr.Cause)
}

func TestNewDB_SingleConnection(t *testing.T) {
	db := setupTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	assert.Equal(t, 1, sqlDB.Stats().MaxOpenConnections)
}

func TestNewDB_TraceSQL(t *testing.T) {
	tests := []struct {
		name     string
		traceSQL bool
		wantSQL  bool
	}{
		{name: "通常は成功した SQL を出さない", traceSQL: false, wantSQL: false},
		{name: "TraceSQL なら全 SQL を出す", traceSQL: true, wantSQL: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			cfg := sqliteConfig()
			cfg.TraceSQL = tt.traceSQL

			db, err := NewDB(context.Background(), cfg, logging.New(&buf, "debug", false))
			require.NoError(t, err)
			t.Cleanup(func() { _ = Close(db, logging.Discard()) })

			require.NoError(t, db.Exec("SELECT 42").Error)
			assert.Equal(t, tt.wantSQL, strings.Contains(buf.String(), "SELECT 42"))
		})
	}
}

func TestWithDB_ClosesAfterCallback(t *testing.T) {
	var captured *gorm.DB
	err := WithDB(context.Background(), sqliteConfig(), logging.Discard(), func(db *gorm.DB) error {
		captured = db
		return db.Exec("SELECT 1").Error
	})
	require.NoError(t, err)

	sqlDB, err := captured.DB()
	require.NoError(t, err)
	assert.Error(t, sqlDB.Ping(), "connection should be closed")
}

func TestWithDB_ReturnsCallbackErrorAndCloses(t *testing.T) {
	boom := errors.New("boom")
	var captured *gorm.DB
	err := WithDB(context.Background(), sqliteConfig(), logging.Discard(), func(db *gorm.DB) error {
		captured = db
		return boom
	})
	assert.ErrorIs(t, err, boom)

	sqlDB, dbErr := captured.DB()
	require.NoError(t, dbErr)
	assert.Error(t, sqlDB.Ping())
}

func TestWithDB_SkipsCallbackWithoutURL(t *testing.T) {
	called := false
	err := WithDB(context.Background(), config.DatabaseConfig{Driver: "postgres"}, logging.Discard(), func(db *gorm.DB) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, model.ErrMissingConfig)
	assert.False(t, called)
}
