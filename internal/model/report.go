// internal/model/report.go
package model

import (
	"fmt"

	"github.com/google/uuid"
)

// MigrationStep は (ファイル名, SQL本文) の組です。リストの順番どおりに適用されます。
type MigrationStep struct {
	File string
	SQL  string
}

// PlannedStep は --dry-run で表示する実行予定
type PlannedStep struct {
	File    string `json:"file" yaml:"file"`
	Present bool   `json:"present" yaml:"present"`
	Bytes   int64  `json:"bytes" yaml:"bytes"`
}

// SkippedStep は存在しなかったため飛ばしたファイルです
type SkippedStep struct {
	File   string `json:"file" yaml:"file"`
	Reason string `json:"reason" yaml:"reason"`
}

// MigrationReport はマイグレーション実行結果です。
// Failure / ReadErr / CountErr のどれかが埋まっていれば実行は失敗しています。
type MigrationReport struct {
	Applied        []string        `json:"applied" yaml:"applied"`
	Skipped        []SkippedStep   `json:"skipped" yaml:"skipped"`
	Failure        *MigrationError `json:"-" yaml:"-"` // SQL の実行エラー。最大1件
	ReadErr        error           `json:"-" yaml:"-"` // ファイルの読み込みエラー (存在しない場合を除く)
	CountErr       error           `json:"-" yaml:"-"` // 適用後の件数集計のエラー。このとき件数は未取得
	TotalQuestions int64           `json:"total_questions" yaml:"total_questions"`
	Categories     []CategoryCount `json:"categories" yaml:"categories"`
}

// Succeeded は全ステップの処理と件数集計が成功したかどうか
func (r *MigrationReport) Succeeded() bool {
	return r.Failure == nil && r.ReadErr == nil && r.CountErr == nil
}

// AppliedCount は適用済みステップ数
func (r *MigrationReport) AppliedCount() int {
	return len(r.Applied)
}

// Failures は失敗の一覧を返します (Failure が nil なら空)
func (r *MigrationReport) Failures() []*MigrationError {
	if r.Failure == nil {
		return nil
	}
	return []*MigrationError{r.Failure}
}

// CheckName は検証項目の名前
type CheckName string

const (
	CheckRandomSample    CheckName = "random_sample"
	CheckCategoryFilter  CheckName = "category_filter"
	CheckSchemaColumns   CheckName = "schema_columns"
	CheckAccessPolicies  CheckName = "access_policies"
	CheckQuizRender      CheckName = "quiz_render"
	CheckAnswerIntegrity CheckName = "answer_integrity"
)

// ColumnInfo はテーブルのカラム名と型
type ColumnInfo struct {
	ColumnName string `gorm:"column:column_name" json:"column_name" yaml:"column_name"`
	DataType   string `gorm:"column:data_type" json:"data_type" yaml:"data_type"`
}

// PolicyInfo は行レベルセキュリティのポリシー情報 (pg_policies)
type PolicyInfo struct {
	SchemaName string     `gorm:"column:schemaname" json:"schema_name" yaml:"schema_name"`
	TableName  string     `gorm:"column:tablename" json:"table_name" yaml:"table_name"`
	PolicyName string     `gorm:"column:policyname" json:"policy_name" yaml:"policy_name"`
	Permissive string     `gorm:"column:permissive" json:"permissive" yaml:"permissive"`
	Roles      StringList `gorm:"column:roles" json:"roles" yaml:"roles"`
	Command    string     `gorm:"column:cmd" json:"command" yaml:"command"`
	Qual       *string    `gorm:"column:qual" json:"qual,omitempty" yaml:"qual,omitempty"`
}

// QuizOption は描画された選択肢1つ
type QuizOption struct {
	Label   string `json:"label" yaml:"label"`
	Correct bool   `json:"correct" yaml:"correct"`
}

// QuizItem は問題1件を出題形式に描画したもの
type QuizItem struct {
	QuestionID uuid.UUID    `json:"question_id" yaml:"question_id"`
	Prompt     string       `json:"prompt" yaml:"prompt"`
	Category   string       `json:"category" yaml:"category"`
	Options    []QuizOption `json:"options" yaml:"options"`
}

// CorrectCount は正解マークが付いた選択肢の数
func (q QuizItem) CorrectCount() int {
	n := 0
	for _, o := range q.Options {
		if o.Correct {
			n++
		}
	}
	return n
}

// RenderQuizItem は問題を出題形式に変換し、CorrectAnswer と一致する選択肢に印を付けます
func RenderQuizItem(q Question) QuizItem {
	item := QuizItem{
		QuestionID: q.ID,
		Prompt:     fmt.Sprintf("What does '%s' mean?", q.FrenchWord),
		Category:   q.Category,
		Options:    make([]QuizOption, 0, len(q.Options)),
	}
	for _, opt := range q.Options {
		item.Options = append(item.Options, QuizOption{Label: opt, Correct: opt == q.CorrectAnswer})
	}
	return item
}

// IntegrityIssue は正解/選択肢の不整合が見つかった問題
type IntegrityIssue struct {
	QuestionID uuid.UUID `json:"question_id" yaml:"question_id"`
	FrenchWord string    `json:"french_word" yaml:"french_word"`
	Problem    string    `json:"problem" yaml:"problem"`
}

// CheckResult は検証1項目の結果です。Name に応じたフィールドだけが埋まります。
type CheckResult struct {
	Name      CheckName
	Questions []Question       // random_sample, category_filter
	Columns   []ColumnInfo     // schema_columns
	Policies  []PolicyInfo     // access_policies
	Quiz      []QuizItem       // quiz_render
	Issues    []IntegrityIssue // answer_integrity
	Scanned   int              // answer_integrity で走査した件数
	Err       *CheckError
}

// Failed はクエリが失敗したかどうか
func (r CheckResult) Failed() bool {
	return r.Err != nil
}

// RowCount は結果の行数
func (r CheckResult) RowCount() int {
	switch r.Name {
	case CheckRandomSample, CheckCategoryFilter:
		return len(r.Questions)
	case CheckSchemaColumns:
		return len(r.Columns)
	case CheckAccessPolicies:
		return len(r.Policies)
	case CheckQuizRender:
		return len(r.Quiz)
	case CheckAnswerIntegrity:
		return len(r.Issues)
	}
	return 0
}
