// Package shift は作業者ごとのシフト管理のドメインロジックを提供する。
package shift

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hitoshi/workplanner/internal/model"
	"github.com/hitoshi/workplanner/internal/repository"
)

// Service はシフト管理のサービス層。
// 1人の作業者が同じ日に持てるシフトは1件までというルールを適用する。
type Service struct {
	uows repository.UnitOfWorkFactory
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(uows repository.UnitOfWorkFactory) *Service {
	return &Service{uows: uows}
}

// List は作業者のシフトを日付順に返す。作業者が存在しない場合は空を返す。
func (s *Service) List(ctx context.Context, workerID uuid.UUID) ([]*model.Shift, error) {
	shifts, err := repository.Collect(s.uows.Begin().Shifts().Query(ctx, repository.ShiftQuery{
		WorkerID: workerID,
	}))
	if err != nil {
		return nil, fmt.Errorf("シフト一覧の取得に失敗しました: %w", err)
	}
	return shifts, nil
}

// Log は作業者にシフトを登録する。
// 無効化済みの作業者にも登録できる。
func (s *Service) Log(ctx context.Context, workerID uuid.UUID, in model.ShiftInput) error {
	uow := s.uows.Begin()

	if _, err := findWorker(ctx, uow, workerID); err != nil {
		return err
	}

	date := model.DateOf(in.Date)
	exists, err := uow.Shifts().Exists(ctx, repository.ShiftQuery{WorkerID: workerID, OnDate: &date})
	if err != nil {
		return fmt.Errorf("シフトの重複確認に失敗しました: %w", err)
	}
	if exists {
		return model.NewShiftConflictError()
	}

	uow.Shifts().Add(model.NewShift(workerID, in))
	if _, err := uow.Save(ctx); err != nil {
		return fmt.Errorf("シフトの保存に失敗しました: %w", err)
	}
	return nil
}

// Update は作業者のシフトの日付とシフト枠を上書きする。
// 日付が変わる場合のみ、変更先の日に既存シフトがないかを確認する。
func (s *Service) Update(ctx context.Context, workerID uuid.UUID, shiftID int64, in model.ShiftInput) error {
	uow := s.uows.Begin()

	shifts, err := workerShifts(ctx, uow, workerID)
	if err != nil {
		return err
	}
	target, err := pick(shifts, shiftID)
	if err != nil {
		return err
	}

	if !target.OnDate(in.Date) {
		for _, sh := range shifts {
			if sh.OnDate(in.Date) {
				return model.NewShiftConflictError()
			}
		}
	}

	target.Apply(in)
	uow.Shifts().Update(target)
	if _, err := uow.Save(ctx); err != nil {
		return fmt.Errorf("シフトの保存に失敗しました: %w", err)
	}
	return nil
}

// Delete は作業者のシフトを物理削除する。
func (s *Service) Delete(ctx context.Context, workerID uuid.UUID, shiftID int64) error {
	uow := s.uows.Begin()

	shifts, err := workerShifts(ctx, uow, workerID)
	if err != nil {
		return err
	}
	target, err := pick(shifts, shiftID)
	if err != nil {
		return err
	}

	uow.Shifts().Delete(target)
	if _, err := uow.Save(ctx); err != nil {
		return fmt.Errorf("シフトの削除に失敗しました: %w", err)
	}
	return nil
}

func findWorker(ctx context.Context, uow repository.UnitOfWork, workerID uuid.UUID) (*model.Worker, error) {
	w, err := uow.Workers().Find(ctx, workerID)
	if err != nil {
		return nil, fmt.Errorf("作業者の取得に失敗しました: %w", err)
	}
	if w == nil {
		return nil, model.NewWorkerNotFoundError(workerID.String())
	}
	return w, nil
}

// workerShifts は作業者の存在を確認したうえで、その作業者のシフトをすべて返す。
func workerShifts(ctx context.Context, uow repository.UnitOfWork, workerID uuid.UUID) ([]*model.Shift, error) {
	if _, err := findWorker(ctx, uow, workerID); err != nil {
		return nil, err
	}
	shifts, err := repository.Collect(uow.Shifts().Query(ctx, repository.ShiftQuery{WorkerID: workerID}))
	if err != nil {
		return nil, fmt.Errorf("シフト一覧の取得に失敗しました: %w", err)
	}
	return shifts, nil
}

// pick は作業者のシフトの中から指定IDのシフトを返す。
// 他の作業者のシフトIDはENTITY_NOT_FOUNDとして扱う。
func pick(shifts []*model.Shift, shiftID int64) (*model.Shift, error) {
	for _, sh := range shifts {
		if sh.ID == shiftID {
			return sh, nil
		}
	}
	return nil, model.NewShiftNotFoundError(shiftID)
}
