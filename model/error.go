// Package model は、アプリケーションのデータモデル定義を提供します。
package model

import (
	"errors"
	"strings"
)

// センチネルエラー
var (
	// ErrItemNotFound は対象IDの行が存在しない（影響行数が0）場合のエラーです。
	ErrItemNotFound = errors.New("item not found")
	// ErrItemNotCreated はINSERTが受理されたが1行も挿入されなかった場合のエラーです。
	ErrItemNotCreated = errors.New("failed to create item")
	// ErrInvalidItemID はパスのIDが整数として解釈できない場合のエラーです。
	ErrInvalidItemID = errors.New("invalid ID format")
)

// ValidationError はバリデーションエラーを表す型
type ValidationError struct {
	Message string
	Fields  []string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError はValidationErrorを生成するヘルパー関数
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// NewMissingFieldsError は不足しているフィールド名を列挙したValidationErrorを生成します。
func NewMissingFieldsError(fields []string) error {
	return &ValidationError{
		Message: "Missing required fields: " + strings.Join(fields, ", "),
		Fields:  fields,
	}
}
