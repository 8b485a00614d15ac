package service

import (
	"context"
	"log/slog"
	"time"

	"go_quiz_db/internal/config"
	"go_quiz_db/internal/model"
	"go_quiz_db/internal/repository"

	"gorm.io/gorm"
)

// VerificationService は読み取り専用の確認クエリを決まった順番で実行します。
// 1項目が失敗しても残りの項目は実行されます。
type VerificationService interface {
	RunChecks(ctx context.Context, db *gorm.DB) []model.CheckResult
}

type verificationService struct {
	questionRepo repository.QuestionRepository
	schemaRepo   repository.SchemaRepository
	cfg          config.VerifyConfig
	queryTimeout time.Duration
	logger       *slog.Logger
}

func NewVerificationService(
	questionRepo repository.QuestionRepository,
	schemaRepo repository.SchemaRepository,
	cfg *config.Config,
	logger *slog.Logger,
) VerificationService {
	return &verificationService{
		questionRepo: questionRepo,
		schemaRepo:   schemaRepo,
		cfg:          cfg.Verify,
		queryTimeout: cfg.Database.QueryTimeout,
		logger:       logger,
	}
}

type checkFunc func(ctx context.Context, db *gorm.DB, result *model.CheckResult) error

func (s *verificationService) RunChecks(ctx context.Context, db *gorm.DB) []model.CheckResult {
	checks := []struct {
		name model.CheckName
		run  checkFunc
	}{
		{model.CheckRandomSample, s.randomSample},
		{model.CheckCategoryFilter, s.categoryFilter},
		{model.CheckSchemaColumns, s.schemaColumns},
		{model.CheckAccessPolicies, s.accessPolicies},
		{model.CheckQuizRender, s.quizRender},
		{model.CheckAnswerIntegrity, s.answerIntegrity},
	}

	results := make([]model.CheckResult, 0, len(checks))
	for _, c := range checks {
		result := model.CheckResult{Name: c.name}

		opCtx, cancel := operationContext(ctx, s.queryTimeout)
		err := c.run(opCtx, db, &result)
		cancel()

		if err != nil {
			result.Err = &model.CheckError{Check: c.name, Cause: err}
			s.logger.Error("Verification check failed", slog.String("check", string(c.name)), slog.Any("error", err))
		} else {
			s.logger.Info("Verification check completed", slog.String("check", string(c.name)), slog.Int("rows", result.RowCount()))
		}
		results = append(results, result)
	}
	return results
}

func (s *verificationService) randomSample(ctx context.Context, db *gorm.DB, result *model.CheckResult) error {
	questions, err := s.questionRepo.FindRandom(ctx, db, s.cfg.SampleSize)
	if err != nil {
		return err
	}
	result.Questions = questions
	return nil
}

func (s *verificationService) categoryFilter(ctx context.Context, db *gorm.DB, result *model.CheckResult) error {
	questions, err := s.questionRepo.FindByCategory(ctx, db, s.cfg.FilterCategory, s.cfg.FilterLimit)
	if err != nil {
		return err
	}
	result.Questions = questions
	return nil
}

func (s *verificationService) schemaColumns(ctx context.Context, db *gorm.DB, result *model.CheckResult) error {
	columns, err := s.schemaRepo.Columns(ctx, db, model.TableQuestions)
	if err != nil {
		return err
	}
	result.Columns = columns
	return nil
}

func (s *verificationService) accessPolicies(ctx context.Context, db *gorm.DB, result *model.CheckResult) error {
	policies, err := s.schemaRepo.Policies(ctx, db, s.cfg.PolicyTables)
	if err != nil {
		return err
	}
	result.Policies = policies
	return nil
}

func (s *verificationService) quizRender(ctx context.Context, db *gorm.DB, result *model.CheckResult) error {
	questions, err := s.questionRepo.FindRandomInCategories(ctx, db, s.cfg.QuizCategories, s.cfg.QuizSize)
	if err != nil {
		return err
	}
	result.Quiz = make([]model.QuizItem, 0, len(questions))
	for _, q := range questions {
		result.Quiz = append(result.Quiz, model.RenderQuizItem(q))
	}
	return nil
}

// answerIntegrity は全問題について「正解が選択肢に含まれるか」「選択肢の重複がないか」を確認します
func (s *verificationService) answerIntegrity(ctx context.Context, db *gorm.DB, result *model.CheckResult) error {
	questions, err := s.questionRepo.FindAll(ctx, db)
	if err != nil {
		return err
	}
	result.Scanned = len(questions)
	result.Issues = []model.IntegrityIssue{}
	for i := range questions {
		q := &questions[i]
		if err := q.Validate(); err != nil {
			result.Issues = append(result.Issues, model.IntegrityIssue{
				QuestionID: q.ID,
				FrenchWord: q.FrenchWord,
				Problem:    err.Error(),
			})
		}
	}
	return nil
}
