// internal/service/migration_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"go_quiz_db/internal/config"
	"go_quiz_db/internal/model"
	"go_quiz_db/internal/repository"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

type MigrationService interface {
	// Plan は接続せずに各ファイルの有無だけを確認します (--dry-run 用)
	Plan(fsys fs.FS, files []string) []model.PlannedStep
	// Apply は files を順番どおりに適用し、最後に問題数を集計します。
	// 実行エラーが起きた時点で中断し、report.Failure と同じエラーを返します。
	// 読み込みエラーは report.ReadErr、集計エラーは report.CountErr に入ります。
	Apply(ctx context.Context, db *gorm.DB, fsys fs.FS, files []string) (*model.MigrationReport, error)
}

type migrationService struct {
	questionRepo repository.QuestionRepository
	queryTimeout time.Duration
	logger       *slog.Logger
}

func NewMigrationService(questionRepo repository.QuestionRepository, dbCfg config.DatabaseConfig, logger *slog.Logger) MigrationService {
	return &migrationService{
		questionRepo: questionRepo,
		queryTimeout: dbCfg.QueryTimeout,
		logger:       logger,
	}
}

func (s *migrationService) Plan(fsys fs.FS, files []string) []model.PlannedStep {
	plan := make([]model.PlannedStep, 0, len(files))
	for _, name := range files {
		step := model.PlannedStep{File: name}
		if info, err := fs.Stat(fsys, name); err == nil && !info.IsDir() {
			step.Present = true
			step.Bytes = info.Size()
		}
		plan = append(plan, step)
	}
	return plan
}

func (s *migrationService) Apply(ctx context.Context, db *gorm.DB, fsys fs.FS, files []string) (*model.MigrationReport, error) {
	report := &model.MigrationReport{
		Applied:    []string{},
		Skipped:    []model.SkippedStep{},
		Categories: []model.CategoryCount{},
	}

	// 後のファイルが前のファイルのスキーマに依存するので、必ず順番に1件ずつ実行する
	for _, name := range files {
		step, err := loadStep(fsys, name)
		if err != nil {
			if errors.Is(err, model.ErrMigrationFileMissing) {
				s.logger.Warn("Migration file not found, skipping", slog.String("file", name))
				report.Skipped = append(report.Skipped, model.SkippedStep{File: name, Reason: err.Error()})
				continue
			}
			// SQL は実行していないので実行エラーとは区別する
			s.logger.Error("Migration file could not be read, aborting remaining steps",
				slog.String("file", name),
				slog.Any("error", err),
			)
			report.ReadErr = err
			return report, err
		}

		if !hasExecutableSQL(step.SQL) {
			s.logger.Info("Migration file has no statements, nothing to run", slog.String("file", name))
			report.Applied = append(report.Applied, name)
			continue
		}

		s.logger.Info("Running migration", slog.String("file", name))
		started := time.Now()
		if err := s.execStep(ctx, db, step); err != nil {
			migErr := newMigrationError(name, err)
			s.logger.Error("Migration failed, aborting remaining steps",
				slog.String("file", name),
				slog.String("sqlstate", migErr.SQLCode),
				slog.Any("error", err),
			)
			report.Failure = migErr
			return report, migErr
		}
		s.logger.Info("Migration completed", slog.String("file", name), slog.Duration("elapsed", time.Since(started)))
		report.Applied = append(report.Applied, name)
	}

	if err := s.collectCounts(ctx, db, report); err != nil {
		s.logger.Error("Counting questions after migration failed", slog.Any("error", err))
		report.CountErr = err
		return report, err
	}
	return report, nil
}

// execStep はファイルの内容をそのまま1つのバッチとして実行します。
// トランザクションでは包まないので、途中で失敗した場合はそこまでの変更が残ります。
func (s *migrationService) execStep(ctx context.Context, db *gorm.DB, step model.MigrationStep) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	opCtx, cancel := operationContext(ctx, s.queryTimeout)
	defer cancel()
	_, err = sqlDB.ExecContext(opCtx, step.SQL)
	return err
}

func (s *migrationService) collectCounts(ctx context.Context, db *gorm.DB, report *model.MigrationReport) error {
	opCtx, cancel := operationContext(ctx, s.queryTimeout)
	defer cancel()

	total, err := s.questionRepo.Count(opCtx, db)
	if err != nil {
		return fmt.Errorf("%w: counting questions: %w", model.ErrCountQuery, err)
	}
	report.TotalQuestions = total

	categories, err := s.questionRepo.CountByCategory(opCtx, db)
	if err != nil {
		return fmt.Errorf("%w: counting questions by category: %w", model.ErrCountQuery, err)
	}
	report.Categories = categories
	return nil
}

func loadStep(fsys fs.FS, name string) (model.MigrationStep, error) {
	content, err := fs.ReadFile(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return model.MigrationStep{}, fmt.Errorf("%w: %s", model.ErrMigrationFileMissing, name)
		}
		return model.MigrationStep{}, fmt.Errorf("%w: %s: %w", model.ErrMigrationRead, name, err)
	}
	return model.MigrationStep{File: name, SQL: string(content)}, nil
}

// hasExecutableSQL は空白・";"・コメント ("--" と "/* */") 以外の文字があるかを返します。
// ブロックコメントは PostgreSQL と同じく入れ子を許します。
func hasExecutableSQL(sql string) bool {
	depth := 0
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		next := byte(0)
		if i+1 < len(sql) {
			next = sql[i+1]
		}
		switch {
		case c == '/' && next == '*':
			depth++
			i++
		case depth > 0 && c == '*' && next == '/':
			depth--
			i++
		case depth > 0:
		case c == '-' && next == '-':
			for i < len(sql) && sql[i] != '\n' {
				i++
			}
		case c == ';' || c == ' ' || c == '\t' || c == '\n' || c == '\r':
		default:
			return true
		}
	}
	// 閉じていないコメントは DB に送って構文エラーにさせる
	return depth > 0
}

func newMigrationError(file string, err error) *model.MigrationError {
	migErr := &model.MigrationError{File: file, Cause: err}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		migErr.SQLCode = pgErr.Code
	}
	return migErr
}

// operationContext は1回のDB操作にかける時間の上限を設定します (0 なら上限なし)
func operationContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, timeout)
}
