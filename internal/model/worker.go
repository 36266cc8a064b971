package model

import (
	"time"

	"github.com/google/uuid"
)

// Worker はシフトを割り当てられる作業者を表す。
// Deleted が nil の場合はアクティブ、値がある場合は論理削除済みとして扱う。
type Worker struct {
	ID           uuid.UUID
	FirstName    string
	LastName     string
	EmailAddress string
	PhoneNumber  *string
	DateOfBirth  *time.Time
	Deleted      *time.Time
}

// IsDeleted は作業者が論理削除済みかどうかを返す。
func (w *Worker) IsDeleted() bool {
	return w.Deleted != nil
}

// Apply は入力値で作業者の属性を上書きする。
// 任意項目は入力が nil の場合クリアされる。
func (w *Worker) Apply(in WorkerInput) {
	w.FirstName = in.FirstName
	w.LastName = in.LastName
	w.EmailAddress = in.EmailAddress
	w.PhoneNumber = cloneString(in.PhoneNumber)
	w.DateOfBirth = cloneDate(in.DateOfBirth)
}

// WorkerInput は作業者の作成・更新時の入力を表す。
type WorkerInput struct {
	FirstName    string
	LastName     string
	EmailAddress string
	PhoneNumber  *string
	DateOfBirth  *time.Time
}

// NewWorker は入力値から新しいアクティブな作業者を生成する。
// IDはここで採番されるため、コミット前に呼び出し元へ返せる。
func NewWorker(in WorkerInput) *Worker {
	w := &Worker{ID: uuid.New()}
	w.Apply(in)
	return w
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneDate(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := DateOf(*t)
	return &d
}
