// internal/model/question.go
package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// テーブル名
const (
	TableQuestions    = "questions"
	TableUserProgress = "user_progress"
	TableQuizSessions = "quiz_sessions"
)

// Question はクイズの問題1件を表します
type Question struct {
	ID                 uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id" yaml:"id"`
	FrenchWord         string     `gorm:"not null" json:"french_word" yaml:"french_word"`                 // 出題する単語
	EnglishTranslation string     `gorm:"not null" json:"english_translation" yaml:"english_translation"` // 訳
	Options            StringList `gorm:"type:text[];not null" json:"options" yaml:"options"`             // 選択肢
	CorrectAnswer      string     `gorm:"not null" json:"correct_answer" yaml:"correct_answer"`           // Options のいずれか
	DifficultyLevel    string     `gorm:"default:beginner" json:"difficulty_level,omitempty" yaml:"difficulty_level,omitempty"`
	Category           string     `gorm:"not null;index" json:"category" yaml:"category"`
	CreatedAt          *time.Time `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

func (Question) TableName() string {
	return TableQuestions
}

// Validate は正解が選択肢に含まれていること、選択肢に重複がないことを確認します
func (q *Question) Validate() error {
	seen := make(map[string]struct{}, len(q.Options))
	for _, opt := range q.Options {
		if _, dup := seen[opt]; dup {
			return fmt.Errorf("question %s: duplicate option %q: %w", q.ID, opt, ErrInvalidQuestion)
		}
		seen[opt] = struct{}{}
	}
	if _, ok := seen[q.CorrectAnswer]; !ok {
		return fmt.Errorf("question %s: correct answer %q not in options %v: %w", q.ID, q.CorrectAnswer, []string(q.Options), ErrInvalidQuestion)
	}
	return nil
}

// CategoryCount はカテゴリごとの問題数
type CategoryCount struct {
	Category string `json:"category" yaml:"category"`
	Count    int64  `json:"count" yaml:"count"`
}

// StringList は text[] カラム用の型です。
// PostgreSQL の配列リテラル ({a,b}) と、SQLite に保存された JSON 配列 (["a","b"]) の両方を読み込めます。
type StringList []string

func (l *StringList) Scan(src interface{}) error {
	if src == nil {
		*l = nil
		return nil
	}
	var raw string
	switch v := src.(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return fmt.Errorf("StringList.Scan: unsupported type %T", src)
	}

	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "[") {
		var out []string
		if err := json.Unmarshal([]byte(raw), &out); err != nil {
			return fmt.Errorf("StringList.Scan json: %w", err)
		}
		*l = out
		return nil
	}

	var arr pq.StringArray
	if err := arr.Scan(raw); err != nil {
		return fmt.Errorf("StringList.Scan array: %w", err)
	}
	*l = StringList(arr)
	return nil
}

// Value は PostgreSQL の配列リテラルとして書き込みます
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return pq.StringArray(l).Value()
}
