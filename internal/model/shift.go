package model

import (
	"time"

	"github.com/google/uuid"
)

// ShiftNumber は1日の中のシフト枠を表す。
type ShiftNumber string

const (
	ShiftNumber1 ShiftNumber = "Shift1"
	ShiftNumber2 ShiftNumber = "Shift2"
	ShiftNumber3 ShiftNumber = "Shift3"
	ShiftNumber4 ShiftNumber = "Shift4"
)

// Valid はシフト枠が定義済みの値かどうかを返す。
func (n ShiftNumber) Valid() bool {
	switch n {
	case ShiftNumber1, ShiftNumber2, ShiftNumber3, ShiftNumber4:
		return true
	default:
		return false
	}
}

// Shift は作業者に割り当てられた1日分のシフトを表す。
// IDはコミット時にストア側で採番される。
type Shift struct {
	ID          int64
	Date        time.Time
	ShiftNumber ShiftNumber
	WorkerID    uuid.UUID
}

// OnDate は時刻を無視してシフトの日付が一致するかどうかを返す。
func (s *Shift) OnDate(t time.Time) bool {
	return SameDate(s.Date, t)
}

// Apply は入力値で日付とシフト枠を上書きする。所属する作業者は変更しない。
func (s *Shift) Apply(in ShiftInput) {
	s.Date = DateOf(in.Date)
	s.ShiftNumber = in.ShiftNumber
}

// ShiftInput はシフトの登録・更新時の入力を表す。
type ShiftInput struct {
	Date        time.Time
	ShiftNumber ShiftNumber
}

// NewShift は作業者に紐づく未保存のシフトを生成する。
func NewShift(workerID uuid.UUID, in ShiftInput) *Shift {
	s := &Shift{WorkerID: workerID}
	s.Apply(in)
	return s
}
