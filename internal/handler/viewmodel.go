package handler

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/workplanner/internal/model"
)

// Date は日付のみを扱うJSON型。
// YYYY-MM-DD とRFC 3339の両方を受け付け、出力は常にYYYY-MM-DDとする。
type Date struct {
	time.Time
}

// NewDate はtの暦日を表すDateを返す。
func NewDate(t time.Time) Date {
	return Date{Time: model.DateOf(t)}
}

// MarshalJSON はYYYY-MM-DD形式の文字列を出力する。
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Format(model.DateLayout))
}

// UnmarshalJSON はYYYY-MM-DDまたはRFC 3339の文字列を解析する。
// RFC 3339の場合はオフセットを含む入力の暦日を採用する。
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}

	if t, err := time.Parse(model.DateLayout, s); err == nil {
		d.Time = t
		return nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("invalid date %q: %w", s, err)
	}
	d.Time = model.DateOf(t)
	return nil
}

// workerCreateRequest は作業者の作成・更新リクエストのボディ。
type workerCreateRequest struct {
	FirstName    string  `json:"firstName" validate:"required,max=50"`
	LastName     string  `json:"lastName" validate:"required,max=50"`
	EmailAddress string  `json:"emailAddress" validate:"required,email,max=320"`
	PhoneNumber  *string `json:"phoneNumber" validate:"omitempty,max=15"`
	DateOfBirth  *Date   `json:"dateOfBirth"`
}

// workerResponse は作業者のAPIレスポンス。
type workerResponse struct {
	ID           uuid.UUID  `json:"id"`
	FirstName    string     `json:"firstName"`
	LastName     string     `json:"lastName"`
	EmailAddress string     `json:"emailAddress"`
	PhoneNumber  *string    `json:"phoneNumber,omitempty"`
	DateOfBirth  *Date      `json:"dateOfBirth,omitempty"`
	Deleted      *time.Time `json:"deleted,omitempty"`
}

// shiftCreateRequest はシフトの登録・更新リクエストのボディ。
type shiftCreateRequest struct {
	Date        *Date  `json:"date" validate:"required"`
	ShiftNumber string `json:"shiftNumber" validate:"required,oneof=Shift1 Shift2 Shift3 Shift4"`
}

// shiftResponse はシフトのAPIレスポンス。
type shiftResponse struct {
	ID          int64  `json:"id"`
	Date        Date   `json:"date"`
	ShiftNumber string `json:"shiftNumber"`
}

// toWorkerInput はリクエストをドメインの入力に変換する。
func (req workerCreateRequest) toWorkerInput() model.WorkerInput {
	in := model.WorkerInput{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		EmailAddress: req.EmailAddress,
		PhoneNumber:  req.PhoneNumber,
	}
	if req.DateOfBirth != nil {
		dob := req.DateOfBirth.Time
		in.DateOfBirth = &dob
	}
	return in
}

// toShiftInput はリクエストをドメインの入力に変換する。
// decodeAndValidateを通過した後に呼ぶ。
func (req shiftCreateRequest) toShiftInput() model.ShiftInput {
	return model.ShiftInput{
		Date:        req.Date.Time,
		ShiftNumber: model.ShiftNumber(req.ShiftNumber),
	}
}

func toWorkerResponse(w *model.Worker) workerResponse {
	resp := workerResponse{
		ID:           w.ID,
		FirstName:    w.FirstName,
		LastName:     w.LastName,
		EmailAddress: w.EmailAddress,
		PhoneNumber:  w.PhoneNumber,
	}
	if w.DateOfBirth != nil {
		dob := NewDate(*w.DateOfBirth)
		resp.DateOfBirth = &dob
	}
	if w.Deleted != nil {
		deleted := w.Deleted.UTC()
		resp.Deleted = &deleted
	}
	return resp
}

func toWorkerResponses(workers []*model.Worker) []workerResponse {
	results := make([]workerResponse, len(workers))
	for i, w := range workers {
		results[i] = toWorkerResponse(w)
	}
	return results
}

func toShiftResponses(shifts []*model.Shift) []shiftResponse {
	results := make([]shiftResponse, len(shifts))
	for i, s := range shifts {
		results[i] = shiftResponse{
			ID:          s.ID,
			Date:        NewDate(s.Date),
			ShiftNumber: string(s.ShiftNumber),
		}
	}
	return results
}
