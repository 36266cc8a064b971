// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"iter"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/workplanner/internal/model"
)

// Store は集約ごとに具体化される汎用的な永続化インターフェース。
// 読み取りは即時にストアへ問い合わせ、書き込みはUnitOfWork.Saveまで保留される。
type Store[T any, K comparable, Q any] interface {
	// Query は条件に一致するエンティティを遅延評価のシーケンスとして返す。
	// シーケンスを途中で打ち切った場合も結果セットは解放される。
	Query(ctx context.Context, q Q) iter.Seq2[T, error]

	// Find は指定IDのエンティティを取得する。見つからない場合はゼロ値(nil)を返す。
	Find(ctx context.Context, id K) (T, error)

	// Add はエンティティの追加を予約する。
	Add(entity T)

	// Update はエンティティの更新を予約する。
	Update(entity T)

	// Delete はエンティティの物理削除を予約する。
	Delete(entity T)
}

// WorkerQuery は作業者の検索条件。
type WorkerQuery struct {
	// IncludeDeleted がfalseの場合、論理削除済みの作業者を除外する。
	IncludeDeleted bool

	// Name が指定された場合、姓名の完全一致で絞り込む。空文字の姓名もそのまま比較する。
	Name *WorkerName

	// ExcludeID が指定された場合、そのIDの作業者を除外する。
	ExcludeID *uuid.UUID
}

// WorkerName は姓名の組。
type WorkerName struct {
	FirstName string
	LastName  string
}

// WorkerStore は作業者の永続化インターフェース。
type WorkerStore interface {
	Store[*model.Worker, uuid.UUID, WorkerQuery]

	// SoftDelete は作業者の削除日時を現在時刻に設定し、更新を予約する。
	SoftDelete(worker *model.Worker)

	// Exists は条件に一致する作業者が存在するかどうかを返す。
	Exists(ctx context.Context, q WorkerQuery) (bool, error)
}

// ShiftQuery はシフトの検索条件。
type ShiftQuery struct {
	// WorkerID の作業者のシフトのみを返す。uuid.Nilも他のIDと同じく条件として扱う。
	WorkerID uuid.UUID

	// OnDate が指定された場合、同じ暦日のシフトのみを返す。
	OnDate *time.Time
}

// ShiftStore はシフトの永続化インターフェース。
type ShiftStore interface {
	Store[*model.Shift, int64, ShiftQuery]

	// Exists は条件に一致するシフトが存在するかどうかを返す。
	Exists(ctx context.Context, q ShiftQuery) (bool, error)
}

// UnitOfWork は1回の業務操作に対応する変更の集合を表す。
type UnitOfWork interface {
	Workers() WorkerStore
	Shifts() ShiftStore

	// Save は予約された変更を1つのトランザクションで順に実行し、影響行数の合計を返す。
	// 成功・失敗にかかわらず予約は破棄される。
	Save(ctx context.Context) (int64, error)
}

// UnitOfWorkFactory は業務操作ごとに新しいUnitOfWorkを開始する。
type UnitOfWorkFactory interface {
	Begin() UnitOfWork
}

// Collect はシーケンスをすべて読み取りスライスとして返す。
// 最初のエラーで読み取りを中断する。
func Collect[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var items []T
	for item, err := range seq {
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}
