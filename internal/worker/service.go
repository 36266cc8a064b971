// Package worker は作業者管理のドメインロジックを提供する。
package worker

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hitoshi/workplanner/internal/model"
	"github.com/hitoshi/workplanner/internal/repository"
)

// Service は作業者管理のサービス層。
// 一覧取得、作成、更新、無効化、再有効化のビジネスロジックを提供する。
// ログ出力とリトライは呼び出し側の責務とする。
type Service struct {
	uows repository.UnitOfWorkFactory
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(uows repository.UnitOfWorkFactory) *Service {
	return &Service{uows: uows}
}

// List は作業者の一覧を返す。includeDeletedがfalseの場合は無効化された作業者を除外する。
func (s *Service) List(ctx context.Context, includeDeleted bool) ([]*model.Worker, error) {
	uow := s.uows.Begin()
	workers, err := repository.Collect(uow.Workers().Query(ctx, repository.WorkerQuery{
		IncludeDeleted: includeDeleted,
	}))
	if err != nil {
		return nil, fmt.Errorf("作業者一覧の取得に失敗しました: %w", err)
	}
	return workers, nil
}

// Get は指定IDの作業者を返す。無効化済みでも返す。見つからない場合はnilを返す。
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Worker, error) {
	w, err := s.uows.Begin().Workers().Find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("作業者の取得に失敗しました: %w", err)
	}
	return w, nil
}

// Create は作業者を作成し、採番したIDを返す。
// 無効化済みを含め、同じ姓名の作業者が既に存在する場合はDUPLICATE_ENTITYを返す。
func (s *Service) Create(ctx context.Context, in model.WorkerInput) (uuid.UUID, error) {
	uow := s.uows.Begin()

	exists, err := uow.Workers().Exists(ctx, repository.WorkerQuery{
		IncludeDeleted: true,
		Name:           nameOf(in),
	})
	if err != nil {
		return uuid.Nil, fmt.Errorf("作業者の重複確認に失敗しました: %w", err)
	}
	if exists {
		return uuid.Nil, model.NewDuplicateWorkerError()
	}

	w := model.NewWorker(in)
	uow.Workers().Add(w)
	if _, err := uow.Save(ctx); err != nil {
		return uuid.Nil, fmt.Errorf("作業者の保存に失敗しました: %w", err)
	}
	return w.ID, nil
}

// Update は作業者の属性をすべて上書きする。任意項目は入力が空の場合クリアされる。
// 存在しないか無効化済みの場合はENTITY_NOT_FOUND、
// 他の作業者が同じ姓名を持つ場合はDUPLICATE_ENTITYを返す。
func (s *Service) Update(ctx context.Context, id uuid.UUID, in model.WorkerInput) error {
	uow := s.uows.Begin()

	w, err := uow.Workers().Find(ctx, id)
	if err != nil {
		return fmt.Errorf("作業者の取得に失敗しました: %w", err)
	}
	if w == nil || w.IsDeleted() {
		return model.NewWorkerNotFoundError(id.String())
	}

	exists, err := uow.Workers().Exists(ctx, repository.WorkerQuery{
		IncludeDeleted: true,
		Name:           nameOf(in),
		ExcludeID:      &id,
	})
	if err != nil {
		return fmt.Errorf("作業者の重複確認に失敗しました: %w", err)
	}
	if exists {
		return model.NewDuplicateWorkerError()
	}

	w.Apply(in)
	uow.Workers().Update(w)
	if _, err := uow.Save(ctx); err != nil {
		return fmt.Errorf("作業者の保存に失敗しました: %w", err)
	}
	return nil
}

// Deactivate は作業者を論理削除する。既に無効化済みの場合は何もしない。
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) error {
	uow := s.uows.Begin()

	w, err := s.find(ctx, uow, id)
	if err != nil {
		return err
	}
	if w.IsDeleted() {
		return nil
	}

	uow.Workers().SoftDelete(w)
	if _, err := uow.Save(ctx); err != nil {
		return fmt.Errorf("作業者の無効化に失敗しました: %w", err)
	}
	return nil
}

// Reactivate は無効化された作業者を再有効化する。有効な場合は何もしない。
func (s *Service) Reactivate(ctx context.Context, id uuid.UUID) error {
	uow := s.uows.Begin()

	w, err := s.find(ctx, uow, id)
	if err != nil {
		return err
	}
	if !w.IsDeleted() {
		return nil
	}

	w.Deleted = nil
	uow.Workers().Update(w)
	if _, err := uow.Save(ctx); err != nil {
		return fmt.Errorf("作業者の再有効化に失敗しました: %w", err)
	}
	return nil
}

// find は無効化状態に関係なく作業者を取得する。存在しない場合はENTITY_NOT_FOUNDを返す。
func (s *Service) find(ctx context.Context, uow repository.UnitOfWork, id uuid.UUID) (*model.Worker, error) {
	w, err := uow.Workers().Find(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("作業者の取得に失敗しました: %w", err)
	}
	if w == nil {
		return nil, model.NewWorkerNotFoundError(id.String())
	}
	return w, nil
}

// nameOf は重複確認に使う姓名の条件を返す。空の姓名も条件として扱う。
func nameOf(in model.WorkerInput) *repository.WorkerName {
	return &repository.WorkerName{FirstName: in.FirstName, LastName: in.LastName}
}
