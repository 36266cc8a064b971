package repository

import (
	"context"
	"database/sql"
	"fmt"
	"iter"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/workplanner/internal/model"
)

const workerColumns = `id, first_name, last_name, email_address, phone_number, date_of_birth, deleted`

type sqlWorkerStore struct {
	db  *sql.DB
	uow *sqlUnitOfWork
	now func() time.Time
}

var _ WorkerStore = (*sqlWorkerStore)(nil)

// Query は条件に一致する作業者を姓・名・IDの順で返す。
func (s *sqlWorkerStore) Query(ctx context.Context, q WorkerQuery) iter.Seq2[*model.Worker, error] {
	return func(yield func(*model.Worker, error) bool) {
		where, args := q.where()
		rows, err := s.db.QueryContext(ctx,
			`SELECT `+workerColumns+` FROM workers`+where+` ORDER BY last_name, first_name, id`,
			args...,
		)
		if err != nil {
			yield(nil, fmt.Errorf("作業者一覧の取得に失敗しました: %w", err))
			return
		}
		defer rows.Close()

		for rows.Next() {
			w, err := scanWorker(rows)
			if err != nil {
				yield(nil, fmt.Errorf("作業者行の読み取りに失敗しました: %w", err))
				return
			}
			if !yield(w, nil) {
				return
			}
		}
		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("作業者一覧の走査に失敗しました: %w", err))
		}
	}
}

// Find は指定IDの作業者を取得する。論理削除済みでも返す。見つからない場合はnilを返す。
func (s *sqlWorkerStore) Find(ctx context.Context, id uuid.UUID) (*model.Worker, error) {
	w, err := scanWorker(s.db.QueryRowContext(ctx,
		`SELECT `+workerColumns+` FROM workers WHERE id = $1`,
		id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("作業者の取得に失敗しました: %w", err)
	}
	return w, nil
}

// Exists は条件に一致する作業者が存在するかどうかを返す。
func (s *sqlWorkerStore) Exists(ctx context.Context, q WorkerQuery) (bool, error) {
	where, args := q.where()
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM workers`+where+`)`,
		args...,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("作業者の存在確認に失敗しました: %w", err)
	}
	return exists, nil
}

func (s *sqlWorkerStore) Add(w *model.Worker) {
	s.uow.stage(func(ctx context.Context, tx *sql.Tx) (int64, error) {
		n, err := execAffected(ctx, tx,
			`INSERT INTO workers (`+workerColumns+`)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			w.ID, w.FirstName, w.LastName, w.EmailAddress, w.PhoneNumber, dateArg(w.DateOfBirth), w.Deleted,
		)
		if err != nil {
			return 0, fmt.Errorf("作業者の作成に失敗しました: %w", err)
		}
		return n, nil
	})
}

func (s *sqlWorkerStore) Update(w *model.Worker) {
	s.uow.stage(func(ctx context.Context, tx *sql.Tx) (int64, error) {
		n, err := execAffected(ctx, tx,
			`UPDATE workers
			 SET first_name = $1, last_name = $2, email_address = $3,
			     phone_number = $4, date_of_birth = $5, deleted = $6
			 WHERE id = $7`,
			w.FirstName, w.LastName, w.EmailAddress, w.PhoneNumber, dateArg(w.DateOfBirth), w.Deleted, w.ID,
		)
		if err != nil {
			return 0, fmt.Errorf("作業者の更新に失敗しました: %w", err)
		}
		return n, nil
	})
}

func (s *sqlWorkerStore) Delete(w *model.Worker) {
	s.uow.stage(func(ctx context.Context, tx *sql.Tx) (int64, error) {
		n, err := execAffected(ctx, tx, `DELETE FROM workers WHERE id = $1`, w.ID)
		if err != nil {
			return 0, fmt.Errorf("作業者の削除に失敗しました: %w", err)
		}
		return n, nil
	})
}

// SoftDelete は削除日時を設定して更新を予約する。
func (s *sqlWorkerStore) SoftDelete(w *model.Worker) {
	now := s.now().UTC()
	w.Deleted = &now
	s.Update(w)
}

// where はWHERE句と引数を返す。プレースホルダは出現順に採番する。
func (q WorkerQuery) where() (string, []any) {
	var conds []string
	var args []any
	if !q.IncludeDeleted {
		conds = append(conds, "deleted IS NULL")
	}
	if q.Name != nil {
		args = append(args, q.Name.FirstName, q.Name.LastName)
		conds = append(conds, fmt.Sprintf("first_name = $%d AND last_name = $%d", len(args)-1, len(args)))
	}
	if q.ExcludeID != nil {
		args = append(args, *q.ExcludeID)
		conds = append(conds, fmt.Sprintf("id <> $%d", len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// dateArg は日付をセッションのタイムゾーンに依存しない文字列として渡す。
func dateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(model.DateLayout)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorker(row rowScanner) (*model.Worker, error) {
	var (
		w           model.Worker
		phone       sql.NullString
		dateOfBirth sql.NullTime
		deleted     sql.NullTime
	)
	if err := row.Scan(&w.ID, &w.FirstName, &w.LastName, &w.EmailAddress, &phone, &dateOfBirth, &deleted); err != nil {
		return nil, err
	}
	if phone.Valid {
		w.PhoneNumber = &phone.String
	}
	if dateOfBirth.Valid {
		d := model.DateOf(dateOfBirth.Time)
		w.DateOfBirth = &d
	}
	if deleted.Valid {
		t := deleted.Time
		w.Deleted = &t
	}
	return &w, nil
}
