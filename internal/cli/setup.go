package cli

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"go_quiz_db/internal/model"
	"go_quiz_db/internal/report"
	"go_quiz_db/internal/repository"
	"go_quiz_db/internal/service"
)

type setupOptions struct {
	dir    string
	files  []string
	dryRun bool
}

// NewSetupCommand は db_setup のルートコマンドを作ります
func NewSetupCommand(out, errOut io.Writer) *cobra.Command {
	a := newApp(out, errOut)
	var opts setupOptions

	cmd := a.newRootCommand(&cobra.Command{
		Use:   "db_setup",
		Short: "Apply the quiz schema and seed migrations in order",
		Long: `Connects to the database given by POSTGRES_URL (or --database-url) and
applies the migration files in their configured order. Missing files are
skipped with a warning; the first failing file aborts the run.

Paths given with --file are read from disk (relative to the working
directory) unless --dir is also given, in which case they are names
inside that directory.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runSetup(cmd, opts)
		},
	})
	cmd.Flags().StringVar(&opts.dir, "dir", "", "directory containing migration files (default: embedded migrations)")
	cmd.Flags().StringSliceVar(&opts.files, "file", nil, "migration file to apply, in order (repeatable; overrides the configured list; a path on disk unless --dir is given)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "print the migration plan without connecting")
	return cmd
}

func (a *app) runSetup(cmd *cobra.Command, opts setupOptions) error {
	format, err := report.ParseFormat(a.opts.format)
	if err != nil {
		return err
	}

	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	dirGiven := cmd.Flags().Changed("dir")
	if dirGiven {
		cfg.Migrations.Dir = opts.dir
	}
	if len(opts.files) > 0 {
		cfg.Migrations.Files = opts.files
	}

	logger := a.newLogger(cfg)
	fsys, source := migrationFS(cfg.Migrations.Dir)
	if len(opts.files) > 0 && !dirGiven {
		fsys, source = localFS{}, "working directory"
	} else if err := checkStepNames(cfg.Migrations.Files); err != nil {
		return err
	}
	logger.Debug("Using migrations", slog.String("source", source), slog.Int("files", len(cfg.Migrations.Files)))

	questionRepo := repository.NewGormQuestionRepository(logger)
	migrationService := service.NewMigrationService(questionRepo, cfg.Database, logger)

	if opts.dryRun {
		return report.WritePlan(a.out, format, migrationService.Plan(fsys, cfg.Migrations.Files))
	}

	// 接続情報がなければここで終了する (何も実行しない)
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signalContext()
	defer stop()

	var result *model.MigrationReport
	err = repository.WithDB(ctx, cfg.Database, logger, func(db *gorm.DB) error {
		var applyErr error
		result, applyErr = migrationService.Apply(ctx, db, fsys, cfg.Migrations.Files)
		return applyErr
	})
	if result != nil {
		if werr := report.WriteMigrationReport(a.out, format, result); werr != nil {
			logger.Error("Failed to write report", slog.Any("error", werr))
		}
	}
	return err
}
