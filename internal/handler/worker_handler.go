package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hitoshi/workplanner/internal/middleware"
	"github.com/hitoshi/workplanner/internal/model"
)

// WorkerServiceInterface は作業者ハンドラーが必要とするサービスインターフェース。
type WorkerServiceInterface interface {
	// List は作業者の一覧を返す。
	List(ctx context.Context, includeDeleted bool) ([]*model.Worker, error)
	// Get は作業者を返す。存在しない場合はnilを返す。
	Get(ctx context.Context, id uuid.UUID) (*model.Worker, error)
	// Create は作業者を作成し、IDを返す。
	Create(ctx context.Context, in model.WorkerInput) (uuid.UUID, error)
	// Update は作業者の属性を上書きする。
	Update(ctx context.Context, id uuid.UUID, in model.WorkerInput) error
	// Deactivate は作業者を論理削除する。
	Deactivate(ctx context.Context, id uuid.UUID) error
	// Reactivate は論理削除された作業者を元に戻す。
	Reactivate(ctx context.Context, id uuid.UUID) error
}

// WorkerHandler は作業者管理のHTTPハンドラー。
type WorkerHandler struct {
	service WorkerServiceInterface
	errors  errorReporter
}

// NewWorkerHandler はWorkerHandlerを生成する。recorderはnilでもよい。
func NewWorkerHandler(service WorkerServiceInterface, recorder DomainErrorRecorder) *WorkerHandler {
	return &WorkerHandler{
		service: service,
		errors:  newErrorReporter(recorder),
	}
}

// ListWorkers は作業者の一覧を返す。
// GET /worker?includeDeactivated=bool
func (h *WorkerHandler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	includeDeleted := false
	if raw := r.URL.Query().Get("includeDeactivated"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.errors.writeAPIError(w, model.NewValidationError("includeDeactivated: true または false を指定してください"))
			return
		}
		includeDeleted = v
	}

	workers, err := h.service.List(r.Context(), includeDeleted)
	if err != nil {
		h.errors.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, toWorkerResponses(workers))
}

// GetWorker は作業者を1件返す。無効化済みの作業者も返す。
// GET /worker/:id
func (h *WorkerHandler) GetWorker(w http.ResponseWriter, r *http.Request) {
	id, ok := workerIDParam(w, r)
	if !ok {
		return
	}

	worker, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.errors.handleServiceError(w, r, err)
		return
	}
	if worker == nil {
		h.errors.writeAPIError(w, model.NewWorkerNotFoundError(id.String()))
		return
	}

	writeJSON(w, http.StatusOK, toWorkerResponse(worker))
}

// CreateWorker は作業者を作成し、採番したIDをJSON文字列で返す。
// POST /worker
func (h *WorkerHandler) CreateWorker(w http.ResponseWriter, r *http.Request) {
	var req workerCreateRequest
	if apiErr := decodeAndValidate(w, r, &req); apiErr != nil {
		h.errors.writeAPIError(w, apiErr)
		return
	}

	id, err := h.service.Create(r.Context(), req.toWorkerInput())
	if err != nil {
		h.errors.handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, id.String())
}

// UpdateWorker は作業者の属性を上書きする。
// PUT /worker/:id
func (h *WorkerHandler) UpdateWorker(w http.ResponseWriter, r *http.Request) {
	id, ok := workerIDParam(w, r)
	if !ok {
		return
	}

	var req workerCreateRequest
	if apiErr := decodeAndValidate(w, r, &req); apiErr != nil {
		h.errors.writeAPIError(w, apiErr)
		return
	}

	if err := h.service.Update(r.Context(), id, req.toWorkerInput()); err != nil {
		h.errors.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// DeactivateWorker は作業者を無効化する。
// PUT /worker/:id/deactivate
func (h *WorkerHandler) DeactivateWorker(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Deactivate)
}

// ReactivateWorker は無効化された作業者を再有効化する。
// PUT /worker/:id/reactivate
func (h *WorkerHandler) ReactivateWorker(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Reactivate)
}

func (h *WorkerHandler) transition(w http.ResponseWriter, r *http.Request, apply func(context.Context, uuid.UUID) error) {
	id, ok := workerIDParam(w, r)
	if !ok {
		return
	}

	if err := apply(r.Context(), id); err != nil {
		h.errors.handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// workerIDParam はURLパラメータの作業者IDを解析する。
// ルート制約を通過しない値は存在しないリソースとして404を書き込む。
func workerIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		middleware.WriteNotFound(w, r)
		return uuid.Nil, false
	}
	return id, true
}

// writeJSON はvをJSONで書き込む。
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
