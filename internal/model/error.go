// internal/model/error.go
package model

import (
	"errors"
	"fmt"
)

// ツール固有のエラー
var (
	ErrMissingConfig        = errors.New("database connection URL is not configured")
	ErrConnectFailure       = errors.New("failed to connect to database")
	ErrMigrationFileMissing = errors.New("migration file not found")
	ErrMigrationRead        = errors.New("migration file could not be read")
	ErrMigrationExecution   = errors.New("migration execution failed")
	ErrCountQuery           = errors.New("verification counts failed")
	ErrCheckQuery           = errors.New("verification query failed")
	ErrInvalidQuestion      = errors.New("invalid question record")
	ErrInvalidInput         = errors.New("invalid input")
)

// ConnectError は接続 (Open / Ping) の失敗を表します。原因は Cause に保持します。
type ConnectError struct {
	Driver string
	Cause  error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("%s (driver=%s): %v", ErrConnectFailure, e.Driver, e.Cause)
}

func (e *ConnectError) Unwrap() error { return e.Cause }

func (e *ConnectError) Is(target error) bool { return target == ErrConnectFailure }

// MigrationError はマイグレーションファイルの実行失敗を表します (致命的)
type MigrationError struct {
	File    string
	SQLCode string // PostgreSQL の SQLSTATE (取得できた場合のみ)
	Cause   error
}

func (e *MigrationError) Error() string {
	if e.SQLCode != "" {
		return fmt.Sprintf("%s: %s [SQLSTATE %s]: %v", ErrMigrationExecution, e.File, e.SQLCode, e.Cause)
	}
	return fmt.Sprintf("%s: %s: %v", ErrMigrationExecution, e.File, e.Cause)
}

func (e *MigrationError) Unwrap() error { return e.Cause }

func (e *MigrationError) Is(target error) bool { return target == ErrMigrationExecution }

// CheckError は検証クエリ1件の失敗を表します (致命的ではない)
type CheckError struct {
	Check CheckName
	Cause error
}

func (e *CheckError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrCheckQuery, e.Check, e.Cause)
}

func (e *CheckError) Unwrap() error { return e.Cause }

func (e *CheckError) Is(target error) bool { return target == ErrCheckQuery }
