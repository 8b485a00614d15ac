package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"go_quiz_db/internal/model"
)

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": FormatText, "TEXT": FormatText, "json": FormatJSON, "yml": FormatYAML, " yaml ": FormatYAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseFormat("xml")
	assert.True(t, errors.Is(err, model.ErrInvalidInput))
}

func successfulReport() *model.MigrationReport {
	return &model.MigrationReport{
		Applied:        []string{"001_create_questions_table.sql", "004_seed_french_questions.sql"},
		Skipped:        []model.SkippedStep{{File: "002_create_user_progress_table.sql", Reason: "migration file not found"}},
		TotalQuestions: 3,
		Categories: []model.CategoryCount{
			{Category: "greetings", Count: 2},
			{Category: "numbers", Count: 1},
		},
	}
}

func TestWriteMigrationReport_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMigrationReport(&buf, FormatText, successfulReport()))

	out := buf.String()
	assert.Contains(t, out, "✅ 001_create_questions_table.sql completed successfully")
	assert.Contains(t, out, "⚠️  Warning: 002_create_user_progress_table.sql not found, skipped")
	assert.Contains(t, out, "📊 Database setup complete!")
	assert.Contains(t, out, "Total questions inserted: 3")
	assert.Contains(t, out, "  greetings: 2 questions\n  numbers: 1 questions")
}

func TestWriteMigrationReport_TextFailure(t *testing.T) {
	r := &model.MigrationReport{
		Applied: []string{},
		Failure: &model.MigrationError{File: "004_seed_french_questions.sql", SQLCode: "42P01", Cause: errors.New(`relation "questions" does not exist`)},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteMigrationReport(&buf, FormatText, r))

	out := buf.String()
	assert.Contains(t, out, "❌ 004_seed_french_questions.sql failed")
	assert.Contains(t, out, "SQLSTATE: 42P01")
	assert.NotContains(t, out, "Database setup complete")
}

// migrationDoc は json 出力を読み戻すための型です
type migrationDoc struct {
	Applied        []string `json:"applied"`
	TotalQuestions *int64   `json:"total_questions"`
	Failure        *struct {
		Stage   string `json:"stage"`
		File    string `json:"file"`
		SQLCode string `json:"sqlstate"`
		Cause   string `json:"cause"`
	} `json:"failure"`
	Categories []model.CategoryCount `json:"categories"`
}

func decodeMigrationJSON(t *testing.T, r *model.MigrationReport) migrationDoc {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, WriteMigrationReport(&buf, FormatJSON, r))
	var got migrationDoc
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	return got
}

func TestWriteMigrationReport_JSON(t *testing.T) {
	r := successfulReport()
	got := decodeMigrationJSON(t, r)

	assert.Len(t, got.Applied, 2)
	require.NotNil(t, got.TotalQuestions)
	assert.Equal(t, int64(3), *got.TotalQuestions)
	assert.Nil(t, got.Failure)
	assert.Equal(t, r.Categories, got.Categories)
}

func TestWriteMigrationReport_JSONFailure(t *testing.T) {
	r := &model.MigrationReport{
		Applied: []string{"001_create_questions_table.sql"},
		Skipped: []model.SkippedStep{},
		Failure: &model.MigrationError{File: "005.sql", SQLCode: "42601", Cause: errors.New("syntax error")},
	}
	got := decodeMigrationJSON(t, r)

	require.NotNil(t, got.Failure)
	assert.Equal(t, "execute", got.Failure.Stage)
	assert.Equal(t, "005.sql", got.Failure.File)
	assert.Equal(t, "42601", got.Failure.SQLCode)
	assert.Equal(t, "syntax error", got.Failure.Cause)
	// 件数は集計していないので出力しない
	assert.Nil(t, got.TotalQuestions)
	assert.Empty(t, got.Categories)
}

func countFailedReport() *model.MigrationReport {
	return &model.MigrationReport{
		Applied:    []string{},
		Skipped:    []model.SkippedStep{{File: "missing.sql", Reason: "migration file not found"}},
		CountErr:   fmt.Errorf("%w: counting questions: %w", model.ErrCountQuery, errors.New("no such table: questions")),
		Categories: []model.CategoryCount{},
	}
}

func TestWriteMigrationReport_TextCountFailure(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMigrationReport(&buf, FormatText, countFailedReport()))

	out := buf.String()
	assert.Contains(t, out, "⚠️  Warning: missing.sql not found, skipped")
	assert.Contains(t, out, "❌ verification counts failed: counting questions: no such table: questions")
	assert.Contains(t, out, "Applied: 0, skipped: 1")
	assert.NotContains(t, out, "Database setup complete")
	assert.NotContains(t, out, "Total questions inserted")
}

func TestWriteMigrationReport_TextCountFailureWithoutSentinel(t *testing.T) {
	r := countFailedReport()
	r.CountErr = errors.New("connection reset")

	var buf bytes.Buffer
	require.NoError(t, WriteMigrationReport(&buf, FormatText, r))
	assert.Contains(t, buf.String(), "❌ verification counts failed: connection reset")
}

func TestWriteMigrationReport_JSONCountFailure(t *testing.T) {
	got := decodeMigrationJSON(t, countFailedReport())

	require.NotNil(t, got.Failure)
	assert.Equal(t, "count", got.Failure.Stage)
	assert.Empty(t, got.Failure.File)
	assert.Contains(t, got.Failure.Cause, "no such table: questions")
	assert.Nil(t, got.TotalQuestions)
}

func TestWriteMigrationReport_YAMLCountFailure(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteMigrationReport(&buf, FormatYAML, countFailedReport()))

	var got map[string]interface{}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.NotContains(t, got, "total_questions")
	failure, ok := got["failure"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "count", failure["stage"])
}

func TestWriteMigrationReport_TextReadFailure(t *testing.T) {
	r := &model.MigrationReport{
		Applied: []string{"001_create_questions_table.sql"},
		ReadErr: fmt.Errorf("%w: archive: %w", model.ErrMigrationRead, errors.New("is a directory")),
	}
	var buf bytes.Buffer
	require.NoError(t, WriteMigrationReport(&buf, FormatText, r))

	out := buf.String()
	assert.Contains(t, out, "❌ migration file could not be read: archive: is a directory")
	assert.Contains(t, out, "Setup aborted")
	assert.NotContains(t, out, "Database setup complete")
}

func TestWritePlan(t *testing.T) {
	plan := []model.PlannedStep{
		{File: "001_create_questions_table.sql", Present: true, Bytes: 512},
		{File: "002_create_user_progress_table.sql"},
	}

	var buf bytes.Buffer
	require.NoError(t, WritePlan(&buf, FormatText, plan))
	assert.Contains(t, buf.String(), "1. 001_create_questions_table.sql (512 bytes)")
	assert.Contains(t, buf.String(), "2. 002_create_user_progress_table.sql (missing, will be skipped)")

	buf.Reset()
	require.NoError(t, WritePlan(&buf, FormatYAML, plan))
	var got []model.PlannedStep
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, plan, got)
}

func checkResults() []model.CheckResult {
	q := model.Question{
		ID:            uuid.New(),
		FrenchWord:    "bonjour",
		Options:       model.StringList{"hello", "goodbye", "thank you", "please"},
		CorrectAnswer: "hello",
		Category:      "greetings",
	}
	return []model.CheckResult{
		{Name: model.CheckRandomSample, Questions: []model.Question{q}},
		{Name: model.CheckCategoryFilter, Questions: []model.Question{}},
		{Name: model.CheckSchemaColumns, Err: &model.CheckError{Check: model.CheckSchemaColumns, Cause: errors.New("permission denied")}},
		{Name: model.CheckAccessPolicies, Policies: []model.PolicyInfo{{TableName: "questions", PolicyName: "questions_select_all", Command: "SELECT", Roles: model.StringList{"public"}}}},
		{Name: model.CheckQuizRender, Quiz: []model.QuizItem{model.RenderQuizItem(q)}},
		{Name: model.CheckAnswerIntegrity, Issues: []model.IntegrityIssue{}, Scanned: 1},
	}
}

func TestWriteCheckResults_Text(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCheckResults(&buf, FormatText, checkResults()))

	out := buf.String()
	assert.Contains(t, out, "Test 1: Random question sample")
	assert.Contains(t, out, "1. bonjour (greetings)")
	assert.Contains(t, out, "Test 2: Questions filtered by category\n  (no rows)")
	assert.Contains(t, out, "❌ verification query failed: schema_columns: permission denied")
	assert.Contains(t, out, "questions.questions_select_all: SELECT (roles: public)")
	assert.Contains(t, out, "Q1: What does 'bonjour' mean?")
	assert.Contains(t, out, "1. hello ✓")
	assert.Contains(t, out, "all 1 questions have their correct answer among the options")
	assert.Contains(t, out, "❌ 1 of 6 database tests failed")
}

func TestWriteCheckResults_AllPassed(t *testing.T) {
	results := checkResults()
	results[2] = model.CheckResult{Name: model.CheckSchemaColumns, Columns: []model.ColumnInfo{{ColumnName: "id", DataType: "uuid"}}}

	var buf bytes.Buffer
	require.NoError(t, WriteCheckResults(&buf, FormatText, results))
	assert.Contains(t, buf.String(), "id: uuid")
	assert.Contains(t, buf.String(), "✅ All database tests completed successfully!")
}

func TestWriteCheckResults_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCheckResults(&buf, FormatJSON, checkResults()))

	var got []struct {
		Name   string          `json:"name"`
		Status string          `json:"status"`
		Error  string          `json:"error"`
		Rows   json.RawMessage `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	require.Len(t, got, 6)
	assert.Equal(t, "random_sample", got[0].Name)
	assert.Equal(t, "ok", got[0].Status)
	assert.Equal(t, "failed", got[2].Status)
	assert.Equal(t, "permission denied", got[2].Error)
	assert.Contains(t, string(got[4].Rows), `"correct": true`)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("closed pipe") }

func TestWriteCheckResults_WriteError(t *testing.T) {
	err := WriteCheckResults(failingWriter{}, FormatText, checkResults())
	assert.EqualError(t, err, "closed pipe")
}
