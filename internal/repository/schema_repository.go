//go:generate mockery --name SchemaRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"fmt"
	"log/slog"

	"go_quiz_db/internal/model"

	"gorm.io/gorm"
)

// SchemaRepository はカタログ (カラム定義・RLSポリシー) を参照します。
// 問い合わせ先はDBエンジンごとに異なります。
type SchemaRepository interface {
	Columns(ctx context.Context, db *gorm.DB, table string) ([]model.ColumnInfo, error)
	Policies(ctx context.Context, db *gorm.DB, tables []string) ([]model.PolicyInfo, error)
}

type gormSchemaRepository struct {
	logger *slog.Logger
}

func NewGormSchemaRepository(logger *slog.Logger) SchemaRepository {
	return &gormSchemaRepository{logger: logger}
}

const (
	postgresColumnsSQL = `
		SELECT column_name, data_type
		FROM information_schema.columns
		WHERE table_name = ? AND table_schema = 'public'
		ORDER BY ordinal_position`

	sqliteColumnsSQL = `
		SELECT name AS column_name, type AS data_type
		FROM pragma_table_info(?)
		ORDER BY cid`

	// roles は name[] なのでテキストの配列リテラルとして受け取る
	postgresPoliciesSQL = `
		SELECT schemaname, tablename, policyname, permissive, roles::text AS roles, cmd, qual
		FROM pg_policies
		WHERE schemaname = 'public' AND tablename IN ?
		ORDER BY tablename, policyname`
)

func (r *gormSchemaRepository) Columns(ctx context.Context, db *gorm.DB, table string) ([]model.ColumnInfo, error) {
	var query string
	switch db.Dialector.Name() {
	case "postgres":
		query = postgresColumnsSQL
	case "sqlite":
		query = sqliteColumnsSQL
	default:
		return nil, fmt.Errorf("gormSchemaRepository.Columns: unsupported dialect %q", db.Dialector.Name())
	}

	columns := []model.ColumnInfo{}
	result := db.WithContext(ctx).Raw(query, table).Scan(&columns)
	if result.Error != nil {
		r.logger.Error("Error listing table columns in DB",
			"error", result.Error,
			"table", table,
		)
		return nil, fmt.Errorf("gormSchemaRepository.Columns: %w", result.Error)
	}
	return columns, nil
}

// Policies は行レベルセキュリティのポリシーを返します。RLS を持たないエンジンでは常に空です。
func (r *gormSchemaRepository) Policies(ctx context.Context, db *gorm.DB, tables []string) ([]model.PolicyInfo, error) {
	policies := []model.PolicyInfo{}
	if len(tables) == 0 || db.Dialector.Name() != "postgres" {
		return policies, nil
	}

	result := db.WithContext(ctx).Raw(postgresPoliciesSQL, tables).Scan(&policies)
	if result.Error != nil {
		r.logger.Error("Error listing row level security policies in DB",
			"error", result.Error,
			"tables", tables,
		)
		return nil, fmt.Errorf("gormSchemaRepository.Policies: %w", result.Error)
	}
	return policies, nil
}
