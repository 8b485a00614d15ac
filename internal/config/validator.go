package config

import (
	"errors"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/ja" // 日本語ロケール
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	ja_translations "github.com/go-playground/validator/v10/translations/ja" // 日本語翻訳
)

var (
	validate  *validator.Validate
	trans     ut.Translator
	setupOnce sync.Once
)

var fieldNameTranslations = map[string]string{
	"driver":          "DBドライバ",
	"connect_timeout": "接続タイムアウト",
	"query_timeout":   "クエリタイムアウト",
	"files":           "マイグレーションファイル",
	"sample_size":     "ランダム抽出件数",
	"filter_category": "絞り込みカテゴリ",
	"filter_limit":    "絞り込み件数",
	"quiz_size":       "クイズ問題数",
	"quiz_categories": "クイズ対象カテゴリ",
	"policy_tables":   "ポリシー確認対象テーブル",
}

func setupValidator() {
	validate = validator.New()

	// mapstructure タグからフィールド名を取得する (設定ファイルのキー名で表示するため)
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	japanese := ja.New()
	uni := ut.New(japanese, japanese)
	trans, _ = uni.GetTranslator("ja")
	if err := ja_translations.RegisterDefaultTranslations(validate, trans); err != nil {
		// 翻訳なしでも検証自体はできる
		trans = nil
		return
	}

	registerTranslation := func(tag string, msg string) {
		validate.RegisterTranslation(tag, trans, func(ut ut.Translator) error {
			return ut.Add(tag, msg, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(tag, translatedField(fe.Field()), fe.Param())
			return t
		})
	}
	registerTranslation("required", "{0}は必須項目です。")
	registerTranslation("oneof", "{0}は[{1}]のいずれかを指定してください。")
	registerTranslation("gt", "{0}は{1}より大きい値を指定してください。")
	registerTranslation("gte", "{0}は{1}以上を指定してください。")
}

func translatedField(field string) string {
	if name, ok := fieldNameTranslations[field]; ok {
		return name
	}
	return field
}

// validateStruct は検証エラーを日本語のメッセージにまとめて返します
func validateStruct(s interface{}) error {
	setupOnce.Do(setupValidator)

	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if trans != nil {
			msgs = append(msgs, fe.Translate(trans))
		} else {
			msgs = append(msgs, fe.Error())
		}
	}
	return errors.New(strings.Join(msgs, " / "))
}
