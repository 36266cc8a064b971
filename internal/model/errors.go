// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: worker, shift, validation, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeEntityNotFound        = "ENTITY_NOT_FOUND"
	ErrCodeDuplicateEntity       = "DUPLICATE_ENTITY"
	ErrCodeBusinessRuleViolation = "BUSINESS_RULE_VIOLATION"
	ErrCodeInvalidRequest        = "INVALID_REQUEST"
	ErrCodeValidationFailed      = "VALIDATION_FAILED"
	ErrCodeInternal              = "INTERNAL_ERROR"
)

// IsErrorCode はerrがAPIErrorであり、指定したコードを持つかどうかを返す。
func IsErrorCode(err error, code string) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code == code
}

// NewWorkerNotFoundError は作業者が見つからない場合のエラーを生成する。
// 論理削除済みで操作できない場合も同じエラーを使う。
func NewWorkerNotFoundError(workerID string) *APIError {
	return &APIError{
		Code:     ErrCodeEntityNotFound,
		Message:  fmt.Sprintf("作業者が見つかりません: %s", workerID),
		Category: "worker",
		Action:   "作業者IDを確認してください。",
	}
}

// NewShiftNotFoundError は作業者に属するシフトが見つからない場合のエラーを生成する。
func NewShiftNotFoundError(shiftID int64) *APIError {
	return &APIError{
		Code:     ErrCodeEntityNotFound,
		Message:  fmt.Sprintf("シフトが見つかりません: %d", shiftID),
		Category: "shift",
		Action:   "作業者IDとシフトIDの組み合わせを確認してください。",
	}
}

// NewDuplicateWorkerError は同じ姓名の作業者が既に存在する場合のエラーを生成する。
func NewDuplicateWorkerError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEntity,
		Message:  "指定された氏名の作業者は既に存在します。",
		Category: "worker",
		Action:   "既存の作業者を確認するか、別の氏名を指定してください。",
	}
}

// NewShiftConflictError は同じ日に既にシフトが存在する場合のエラーを生成する。
func NewShiftConflictError() *APIError {
	return &APIError{
		Code:     ErrCodeBusinessRuleViolation,
		Message:  "指定された日には既にシフトが登録されています。",
		Category: "shift",
		Action:   "別の日付を指定するか、既存のシフトを更新してください。",
	}
}

// NewInvalidRequestError はリクエストボディを解析できない場合のエラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	}
}

// NewValidationError は入力値の検証に失敗した場合のエラーを生成する。
func NewValidationError(detail string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("入力値が不正です: %s", detail),
		Category: "validation",
		Action:   "入力内容を確認してください。",
	}
}

// NewInternalError は内部エラーの利用者向け表現を生成する。
// 詳細はログのみに記録する。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
