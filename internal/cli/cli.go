// Package cli は db_setup / db_verify のコマンド定義です。
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"go_quiz_db/internal/config"
	"go_quiz_db/internal/logging"
	"go_quiz_db/internal/model"
	"go_quiz_db/internal/report"
	"go_quiz_db/migrations"
)

// 終了コード
const (
	ExitSuccess      = 0
	ExitFailure      = 1
	ExitUsage        = 2
	ExitChecksFailed = 3
)

// ErrChecksFailed は --strict 指定時に検証項目が1つでも失敗した場合に返します
var ErrChecksFailed = errors.New("one or more verification checks failed")

// globalOptions は両コマンド共通のフラグです
type globalOptions struct {
	configFile  string
	configDir   string
	envFile     string
	databaseURL string
	driver      string
	format      string
	logLevel    string
}

type app struct {
	out    io.Writer
	errOut io.Writer
	opts   globalOptions
}

func newApp(out, errOut io.Writer) *app {
	return &app{out: out, errOut: errOut}
}

func (a *app) bindGlobalFlags(cmd *cobra.Command) {
	f := cmd.PersistentFlags()
	f.StringVar(&a.opts.configFile, "config", "", "config file (default: configs/config.yaml)")
	f.StringVar(&a.opts.configDir, "config-dir", "", "directory to search for config.yaml")
	f.StringVar(&a.opts.envFile, "env-file", config.DefaultEnvFile, ".env file to load before reading the environment")
	f.StringVar(&a.opts.databaseURL, "database-url", "", "database connection URL (overrides POSTGRES_URL)")
	f.StringVar(&a.opts.driver, "driver", "", "database driver: postgres or sqlite")
	f.StringVarP(&a.opts.format, "format", "o", string(report.FormatText), "output format: text, json or yaml")
	f.StringVar(&a.opts.logLevel, "log-level", "", "log level: debug, info, warn, error")
}

// loadConfig は設定を読み込んでフラグで上書きします。検証は呼び出し側で行います。
func (a *app) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(config.LoadOptions{
		ConfigFile: a.opts.configFile,
		ConfigDir:  a.opts.configDir,
		EnvFile:    a.opts.envFile,
	})
	if err != nil {
		return nil, err
	}
	if a.opts.databaseURL != "" {
		cfg.Database.URL = a.opts.databaseURL
	}
	if a.opts.driver != "" {
		cfg.Database.Driver = a.opts.driver
	}
	if a.opts.logLevel != "" {
		cfg.Log.Level = a.opts.logLevel
	}
	return cfg, nil
}

func (a *app) newLogger(cfg *config.Config) *slog.Logger {
	logger := logging.New(a.errOut, cfg.Log.Level, cfg.App.IsDev())
	slog.SetDefault(logger)
	return logger
}

// migrationFS は dir が空なら埋め込みのマイグレーションを返します
func migrationFS(dir string) (fs.FS, string) {
	if dir == "" {
		return migrations.FS, "embedded"
	}
	return os.DirFS(dir), dir
}

// localFS は名前をそのまま OS のパスとして開きます。
// --dir なしで --file に渡されたパス (絶対パスや作業ディレクトリからの相対パス) 用です。
type localFS struct{}

func (localFS) Open(name string) (fs.File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// checkStepNames はディレクトリ基準の fs.FS では開けない名前 (絶対パスや "..") を弾きます
func checkStepNames(files []string) error {
	for _, name := range files {
		if !fs.ValidPath(name) {
			return fmt.Errorf("%w: migration file %q must be relative to the migrations directory (pass --file without --dir to read a path on disk)", model.ErrInvalidInput, name)
		}
	}
	return nil
}

// newRootCommand は両コマンド共通の cobra 設定をします
func (a *app) newRootCommand(cmd *cobra.Command) *cobra.Command {
	cmd.Version = config.AppVersion
	cmd.Args = cobra.NoArgs
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)
	cmd.SetVersionTemplate(config.AppName + " {{.Name}} {{.Version}}\n")
	a.bindGlobalFlags(cmd)
	return cmd
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// Execute はコマンドを実行し、エラーを診断出力に書いて終了コードを返します
func Execute(cmd *cobra.Command, errOut io.Writer) int {
	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	fmt.Fprintf(errOut, "Error: %v\n", err)
	return ExitCode(err)
}

// ExitCode はエラーの種類から終了コードを決めます
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrChecksFailed):
		return ExitChecksFailed
	case errors.Is(err, model.ErrInvalidInput):
		return ExitUsage
	default:
		return ExitFailure
	}
}
