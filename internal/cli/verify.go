package cli

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"go_quiz_db/internal/model"
	"go_quiz_db/internal/report"
	"go_quiz_db/internal/repository"
	"go_quiz_db/internal/service"
)

// NewVerifyCommand は db_verify のルートコマンドを作ります
func NewVerifyCommand(out, errOut io.Writer) *cobra.Command {
	a := newApp(out, errOut)
	var strict bool

	cmd := a.newRootCommand(&cobra.Command{
		Use:   "db_verify",
		Short: "Run read-only sanity checks against a migrated quiz database",
		Long: `Runs six read-only checks (random sample, category filter, schema columns,
access policies, quiz rendering, answer integrity) and prints each result.
A failing check is reported and the remaining checks still run.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runVerify(strict)
		},
	})
	cmd.Flags().BoolVar(&strict, "strict", false, "exit with status 3 if any check fails")
	return cmd
}

func (a *app) runVerify(strict bool) error {
	format, err := report.ParseFormat(a.opts.format)
	if err != nil {
		return err
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger := a.newLogger(cfg)
	verificationService := service.NewVerificationService(
		repository.NewGormQuestionRepository(logger),
		repository.NewGormSchemaRepository(logger),
		cfg,
		logger,
	)

	ctx, stop := signalContext()
	defer stop()

	var results []model.CheckResult
	err = repository.WithDB(ctx, cfg.Database, logger, func(db *gorm.DB) error {
		results = verificationService.RunChecks(ctx, db)
		return nil
	})
	if err != nil {
		return err
	}

	if werr := report.WriteCheckResults(a.out, format, results); werr != nil {
		logger.Error("Failed to write report", slog.Any("error", werr))
	}

	failed := 0
	for _, r := range results {
		if r.Failed() {
			failed++
		}
	}
	if strict && failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrChecksFailed, failed, len(results))
	}
	return nil
}
