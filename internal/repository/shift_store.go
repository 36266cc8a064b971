package repository

import (
	"context"
	"database/sql"
	"fmt"
	"iter"

	"github.com/hitoshi/workplanner/internal/model"
)

const shiftColumns = `id, date, shift_number, worker_id`

type sqlShiftStore struct {
	db  *sql.DB
	uow *sqlUnitOfWork
}

var _ ShiftStore = (*sqlShiftStore)(nil)

// Query は作業者のシフトのうち条件に一致するものを日付・IDの順で返す。
// 日付の一致判定はドライバごとの日付表現の差を避けるためGo側で行う。
func (s *sqlShiftStore) Query(ctx context.Context, q ShiftQuery) iter.Seq2[*model.Shift, error] {
	return func(yield func(*model.Shift, error) bool) {
		rows, err := s.db.QueryContext(ctx,
			`SELECT `+shiftColumns+` FROM shifts WHERE worker_id = $1 ORDER BY date, id`,
			q.WorkerID,
		)
		if err != nil {
			yield(nil, fmt.Errorf("シフト一覧の取得に失敗しました: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			sh, err := scanShift(rows)
			if err != nil {
				yield(nil, fmt.Errorf("シフト行の読み取りに失敗しました: %w", err))
				return
			}
			if q.OnDate != nil && !sh.OnDate(*q.OnDate) {
				continue
			}
			if !yield(sh, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("シフト一覧の走査に失敗しました: %w", err))
		}
	}
}

// Find は指定IDのシフトを取得する。見つからない場合はnilを返す。
func (s *sqlShiftStore) Find(ctx context.Context, id int64) (*model.Shift, error) {
	sh, err := scanShift(s.db.QueryRowContext(ctx,
		`SELECT `+shiftColumns+` FROM shifts WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("シフトの取得に失敗しました: %w", err)
	}
	return sh, nil
}

// Exists は条件に一致するシフトが存在するかどうかを返す。
func (s *sqlShiftStore) Exists(ctx context.Context, q ShiftQuery) (bool, error) {
	for _, err := range s.Query(ctx, q) {
		if err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

// Add はシフトの追加を予約する。IDはSave成功後に設定される。
func (s *sqlShiftStore) Add(sh *model.Shift) {
	s.uow.stage(func(ctx context.Context, tx *sql.Tx) (int64, error) {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO shifts (date, shift_number, worker_id)
			 VALUES ($1, $2, $3)
			 RETURNING id`,
			sh.Date.Format(model.DateLayout), string(sh.ShiftNumber), sh.WorkerID,
		).Scan(&sh.ID)
		if err != nil {
			return 0, fmt.Errorf("シフトの作成に失敗しました: %w", err)
		}
		return 1, nil
	})
}

func (s *sqlShiftStore) Update(sh *model.Shift) {
	s.uow.stage(func(ctx context.Context, tx *sql.Tx) (int64, error) {
		n, err := execAffected(ctx, tx,
			`UPDATE shifts SET date = $1, shift_number = $2 WHERE id = $3`,
			sh.Date.Format(model.DateLayout), string(sh.ShiftNumber), sh.ID,
		)
		if err != nil {
			return 0, fmt.Errorf("シフトの更新に失敗しました: %w", err)
		}
		return n, nil
	})
}

func (s *sqlShiftStore) Delete(sh *model.Shift) {
	s.uow.stage(func(ctx context.Context, tx *sql.Tx) (int64, error) {
		n, err := execAffected(ctx, tx, `DELETE FROM shifts WHERE id = $1`, sh.ID)
		if err != nil {
			return 0, fmt.Errorf("シフトの削除に失敗しました: %w", err)
		}
		return n, nil
	})
}

func scanShift(row rowScanner) (*model.Shift, error) {
	var (
		sh     model.Shift
		number string
	)
	if err := row.Scan(&sh.ID, &sh.Date, &number, &sh.WorkerID); err != nil {
		return nil, err
	}
	sh.Date = model.DateOf(sh.Date)
	sh.ShiftNumber = model.ShiftNumber(number)
	return &sh, nil
}
