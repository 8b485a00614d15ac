// Package report はマイグレーション結果と検証結果をコンソール向けに整形します。
// 表示形式は text / json / yaml の3種類です。
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"go_quiz_db/internal/model"
)

type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat は --format の値を解釈します
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON, FormatYAML:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown output format %q (text, json, yaml): %w", s, model.ErrInvalidInput)
	}
}

func encode(w io.Writer, format Format, v interface{}) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("encode: unsupported format %q", format)
}

// --- マイグレーション ---

// migrationView は json / yaml 用の表示形式です。
// 件数を取得できなかった場合は total_questions と categories を出力しません。
type migrationView struct {
	Applied        []string              `json:"applied" yaml:"applied"`
	Skipped        []model.SkippedStep   `json:"skipped" yaml:"skipped"`
	Failure        *failureView          `json:"failure,omitempty" yaml:"failure,omitempty"`
	TotalQuestions *int64                `json:"total_questions,omitempty" yaml:"total_questions,omitempty"`
	Categories     []model.CategoryCount `json:"categories,omitempty" yaml:"categories,omitempty"`
}

// 失敗した段階
const (
	stageExecute = "execute"
	stageRead    = "read"
	stageCount   = "count"
)

type failureView struct {
	Stage   string `json:"stage" yaml:"stage"`
	File    string `json:"file,omitempty" yaml:"file,omitempty"`
	SQLCode string `json:"sqlstate,omitempty" yaml:"sqlstate,omitempty"`
	Cause   string `json:"cause" yaml:"cause"`
}

func toMigrationView(r *model.MigrationReport) migrationView {
	view := migrationView{Applied: r.Applied, Skipped: r.Skipped}
	switch {
	case r.Failure != nil:
		view.Failure = &failureView{Stage: stageExecute, File: r.Failure.File, SQLCode: r.Failure.SQLCode, Cause: causeString(r.Failure.Cause)}
	case r.ReadErr != nil:
		view.Failure = &failureView{Stage: stageRead, Cause: causeString(r.ReadErr)}
	case r.CountErr != nil:
		view.Failure = &failureView{Stage: stageCount, Cause: countFailure(r.CountErr)}
	}
	if r.Succeeded() {
		total := r.TotalQuestions
		view.TotalQuestions = &total
		view.Categories = r.Categories
	}
	return view
}

func WriteMigrationReport(w io.Writer, format Format, r *model.MigrationReport) error {
	if format != FormatText {
		return encode(w, format, toMigrationView(r))
	}

	p := &printer{w: w}
	for _, f := range r.Applied {
		p.printf("✅ %s completed successfully\n", f)
	}
	for _, s := range r.Skipped {
		p.printf("⚠️  Warning: %s not found, skipped\n", s.File)
	}
	switch {
	case r.Failure != nil:
		p.printf("❌ %s failed: %s\n", r.Failure.File, causeString(r.Failure.Cause))
		if r.Failure.SQLCode != "" {
			p.printf("   SQLSTATE: %s\n", r.Failure.SQLCode)
		}
		p.printf("\nSetup aborted. Database may be partially migrated.\n")
		return p.err
	case r.ReadErr != nil:
		p.printf("❌ %s\n", causeString(r.ReadErr))
		p.printf("\nSetup aborted. Database may be partially migrated.\n")
		return p.err
	case r.CountErr != nil:
		// 件数は取得できていないので完了表示は出さない
		p.printf("\n❌ %s\n", countFailure(r.CountErr))
		p.printf("Applied: %d, skipped: %d\n", r.AppliedCount(), len(r.Skipped))
		return p.err
	}

	p.printf("\n📊 Database setup complete!\n")
	p.printf("Applied: %d, skipped: %d\n", r.AppliedCount(), len(r.Skipped))
	p.printf("Total questions inserted: %d\n", r.TotalQuestions)
	p.printf("\nQuestions by category:\n")
	if len(r.Categories) == 0 {
		p.printf("  (none)\n")
	}
	for _, c := range r.Categories {
		p.printf("  %s: %d questions\n", c.Category, c.Count)
	}
	return p.err
}

func WritePlan(w io.Writer, format Format, plan []model.PlannedStep) error {
	if format != FormatText {
		return encode(w, format, plan)
	}
	p := &printer{w: w}
	p.printf("Migration plan (%d steps):\n", len(plan))
	for i, s := range plan {
		if s.Present {
			p.printf("  %d. %s (%d bytes)\n", i+1, s.File, s.Bytes)
		} else {
			p.printf("  %d. %s (missing, will be skipped)\n", i+1, s.File)
		}
	}
	return p.err
}

// --- 検証 ---

var checkTitles = map[model.CheckName]string{
	model.CheckRandomSample:    "Random question sample",
	model.CheckCategoryFilter:  "Questions filtered by category",
	model.CheckSchemaColumns:   "Questions table columns",
	model.CheckAccessPolicies:  "Row level security policies",
	model.CheckQuizRender:      "Sample quiz simulation",
	model.CheckAnswerIntegrity: "Answer integrity",
}

type checkView struct {
	Name   model.CheckName `json:"name" yaml:"name"`
	Status string          `json:"status" yaml:"status"`
	Error  string          `json:"error,omitempty" yaml:"error,omitempty"`
	Rows   interface{}     `json:"rows,omitempty" yaml:"rows,omitempty"`
}

func toView(r model.CheckResult) checkView {
	v := checkView{Name: r.Name, Status: "ok"}
	if r.Failed() {
		v.Status = "failed"
		v.Error = causeString(r.Err.Cause)
		return v
	}
	switch r.Name {
	case model.CheckRandomSample, model.CheckCategoryFilter:
		v.Rows = r.Questions
	case model.CheckSchemaColumns:
		v.Rows = r.Columns
	case model.CheckAccessPolicies:
		v.Rows = r.Policies
	case model.CheckQuizRender:
		v.Rows = r.Quiz
	case model.CheckAnswerIntegrity:
		v.Rows = r.Issues
	}
	return v
}

// WriteCheckResults は検証結果を出力します
func WriteCheckResults(w io.Writer, format Format, results []model.CheckResult) error {
	if format != FormatText {
		views := make([]checkView, 0, len(results))
		for _, r := range results {
			views = append(views, toView(r))
		}
		return encode(w, format, views)
	}

	p := &printer{w: w}
	p.printf("🔍 Testing database queries...\n")
	failed := 0
	for i, r := range results {
		p.printf("\nTest %d: %s\n", i+1, checkTitles[r.Name])
		if r.Failed() {
			failed++
			p.printf("  ❌ %s\n", r.Err.Error())
			continue
		}
		writeCheckText(p, r)
	}

	if failed == 0 {
		p.printf("\n✅ All database tests completed successfully!\n")
	} else {
		p.printf("\n❌ %d of %d database tests failed\n", failed, len(results))
	}
	return p.err
}

func writeCheckText(p *printer, r model.CheckResult) {
	if r.RowCount() == 0 && r.Name != model.CheckAnswerIntegrity {
		p.printf("  (no rows)\n")
		return
	}
	switch r.Name {
	case model.CheckRandomSample:
		for i, q := range r.Questions {
			p.printf("  %d. %s (%s)\n", i+1, q.FrenchWord, q.Category)
			p.printf("     Answer: %s\n", q.CorrectAnswer)
			p.printf("     Options: %s\n", strings.Join(q.Options, ", "))
		}
	case model.CheckCategoryFilter:
		for _, q := range r.Questions {
			p.printf("  %s = %s\n", q.FrenchWord, q.CorrectAnswer)
		}
	case model.CheckSchemaColumns:
		for _, c := range r.Columns {
			p.printf("  %s: %s\n", c.ColumnName, c.DataType)
		}
	case model.CheckAccessPolicies:
		for _, pol := range r.Policies {
			p.printf("  %s.%s: %s (roles: %s)\n", pol.TableName, pol.PolicyName, pol.Command, strings.Join(pol.Roles, ", "))
		}
	case model.CheckQuizRender:
		for i, item := range r.Quiz {
			p.printf("  Q%d: %s\n", i+1, item.Prompt)
			for j, opt := range item.Options {
				marker := " "
				if opt.Correct {
					marker = "✓"
				}
				p.printf("    %d. %s %s\n", j+1, opt.Label, marker)
			}
		}
	case model.CheckAnswerIntegrity:
		if len(r.Issues) == 0 {
			p.printf("  all %d questions have their correct answer among the options\n", r.Scanned)
			return
		}
		for _, issue := range r.Issues {
			p.printf("  ⚠️  %s: %s\n", issue.FrenchWord, issue.Problem)
		}
	}
}

// countFailure は "verification counts failed: <原因>" の形にそろえます
func countFailure(err error) string {
	if errors.Is(err, model.ErrCountQuery) {
		return err.Error()
	}
	return fmt.Sprintf("%s: %v", model.ErrCountQuery, err)
}

func causeString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

// printer は最初の書き込みエラーを覚えておき、以降の出力を捨てます
type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}
