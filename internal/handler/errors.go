package handler

import (
	"errors"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/hitoshi/workplanner/internal/middleware"
	"github.com/hitoshi/workplanner/internal/model"
	"github.com/hitoshi/workplanner/internal/repository"
)

// DomainErrorRecorder はドメインエラーの発生件数を記録するインターフェース。
type DomainErrorRecorder interface {
	RecordDomainError(code string)
}

type noopDomainErrorRecorder struct{}

func (noopDomainErrorRecorder) RecordDomainError(string) {}

// errorReporter はサービス層のエラーをHTTPレスポンスに変換する。
// ハンドラーでのエラー処理はすべてここを通す。
type errorReporter struct {
	recorder DomainErrorRecorder
}

func newErrorReporter(recorder DomainErrorRecorder) errorReporter {
	if recorder == nil {
		recorder = noopDomainErrorRecorder{}
	}
	return errorReporter{recorder: recorder}
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
// APIError以外のエラーはログに記録し、詳細を伏せた500を返す。
func (e errorReporter) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		e.writeAPIError(w, apiErr)
		return
	}

	attrs := []any{
		slog.String("error", err.Error()),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("request_id", chimw.GetReqID(r.Context())),
	}
	if repository.IsUniqueViolation(err) {
		attrs = append(attrs, slog.Bool("unique_violation", true))
	}
	slog.Error("internal server error", attrs...)

	e.recorder.RecordDomainError(model.ErrCodeInternal)
	middleware.WriteInternalServerError(w)
}

// writeAPIError はAPIErrorを対応するステータスコードで書き込み、件数を記録する。
func (e errorReporter) writeAPIError(w http.ResponseWriter, apiErr *model.APIError) {
	e.recorder.RecordDomainError(apiErr.Code)
	middleware.WriteErrorResponse(w, mapAPIErrorToHTTPStatus(apiErr), apiErr)
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeEntityNotFound:
		return http.StatusNotFound
	case model.ErrCodeDuplicateEntity, model.ErrCodeInvalidRequest, model.ErrCodeValidationFailed:
		return http.StatusBadRequest
	case model.ErrCodeBusinessRuleViolation:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
