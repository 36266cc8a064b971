package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hitoshi/workplanner/internal/middleware"
	"github.com/hitoshi/workplanner/internal/model"
)

// ShiftServiceInterface はシフトハンドラーが必要とするサービスインターフェース。
type ShiftServiceInterface interface {
	// List は作業者のシフトを日付順に返す。
	List(ctx context.Context, workerID uuid.UUID) ([]*model.Shift, error)
	// Log は作業者にシフトを登録する。
	Log(ctx context.Context, workerID uuid.UUID, in model.ShiftInput) error
	// Update は作業者のシフトを更新する。
	Update(ctx context.Context, workerID uuid.UUID, shiftID int64, in model.ShiftInput) error
	// Delete は作業者のシフトを削除する。
	Delete(ctx context.Context, workerID uuid.UUID, shiftID int64) error
}

// ShiftHandler は作業者ごとのシフト管理のHTTPハンドラー。
type ShiftHandler struct {
	service ShiftServiceInterface
	errors  errorReporter
}

// NewShiftHandler はShiftHandlerを生成する。recorderはnilでもよい。
func NewShiftHandler(service ShiftServiceInterface, recorder DomainErrorRecorder) *ShiftHandler {
	return &ShiftHandler{
		service: service,
		errors:  newErrorReporter(recorder),
	}
}

// ListShifts は作業者のシフト一覧を返す。存在しない作業者の場合は空配列を返す。
// GET /worker/:id/shift
func (h *ShiftHandler) ListShifts(w http.ResponseWriter, r *http.Request) {
	workerID, ok := workerIDParam(w, r)
	if !ok {
		return
	}

	shifts, err := h.service.List(r.Context(), workerID)
	if err != nil {
		h.errors.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toShiftResponses(shifts))
}

// LogShift は作業者にシフトを登録する。
// POST /worker/:id/shift
func (h *ShiftHandler) LogShift(w http.ResponseWriter, r *http.Request) {
	workerID, ok := workerIDParam(w, r)
	if !ok {
		return
	}

	var req shiftCreateRequest
	if apiErr := decodeAndValidate(w, r, &req); apiErr != nil {
		h.errors.writeAPIError(w, apiErr)
		return
	}

	if err := h.service.Log(r.Context(), workerID, req.toShiftInput()); err != nil {
		h.errors.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// UpdateShift は作業者のシフトの日付とシフト枠を更新する。
// PUT /worker/:id/shift/:shiftId
func (h *ShiftHandler) UpdateShift(w http.ResponseWriter, r *http.Request) {
	workerID, shiftID, ok := shiftParams(w, r)
	if !ok {
		return
	}

	var req shiftCreateRequest
	if apiErr := decodeAndValidate(w, r, &req); apiErr != nil {
		h.errors.writeAPIError(w, apiErr)
		return
	}

	if err := h.service.Update(r.Context(), workerID, shiftID, req.toShiftInput()); err != nil {
		h.errors.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeleteShift は作業者のシフトを削除する。
// DELETE /worker/:id/shift/:shiftId
func (h *ShiftHandler) DeleteShift(w http.ResponseWriter, r *http.Request) {
	workerID, shiftID, ok := shiftParams(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), workerID, shiftID); err != nil {
		h.errors.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func shiftParams(w http.ResponseWriter, r *http.Request) (uuid.UUID, int64, bool) {
	workerID, ok := workerIDParam(w, r)
	if !ok {
		return uuid.Nil, 0, false
	}

	shiftID, err := strconv.ParseInt(chi.URLParam(r, "shiftId"), 10, 64)
	if err != nil || shiftID <= 0 {
		middleware.WriteNotFound(w, r)
		return uuid.Nil, 0, false
	}
	return workerID, shiftID, true
}
