package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

// pqUniqueViolation はPostgreSQLの一意制約違反のSQLSTATE。
const pqUniqueViolation = "23505"

// operation はトランザクション内で実行される予約済みの変更。
type operation func(ctx context.Context, tx *sql.Tx) (int64, error)

// Factory は操作ごとにUnitOfWorkを生成する。
// PostgreSQL(lib/pq)とSQLite(go-sqlite3)のどちらの*sql.DBでも動作する。
type Factory struct {
	db  *sql.DB
	now func() time.Time
}

// Option はFactoryの設定を変更する。
type Option func(*Factory)

// WithClock は論理削除日時に使う時刻関数を差し替える。
func WithClock(now func() time.Time) Option {
	return func(f *Factory) {
		f.now = now
	}
}

// New はFactoryを生成する。
func New(db *sql.DB, opts ...Option) *Factory {
	f := &Factory{db: db, now: time.Now}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

var _ UnitOfWorkFactory = (*Factory)(nil)

// Begin は新しいUnitOfWorkを開始する。
// トランザクションはSave時にのみ開かれる。
func (f *Factory) Begin() UnitOfWork {
	u := &sqlUnitOfWork{db: f.db}
	u.workers = &sqlWorkerStore{db: f.db, uow: u, now: f.now}
	u.shifts = &sqlShiftStore{db: f.db, uow: u}
	return u
}

type sqlUnitOfWork struct {
	db      *sql.DB
	ops     []operation
	workers *sqlWorkerStore
	shifts  *sqlShiftStore
}

var _ UnitOfWork = (*sqlUnitOfWork)(nil)

func (u *sqlUnitOfWork) Workers() WorkerStore { return u.workers }

func (u *sqlUnitOfWork) Shifts() ShiftStore { return u.shifts }

func (u *sqlUnitOfWork) stage(op operation) {
	u.ops = append(u.ops, op)
}

// Save は予約された変更を1つのトランザクションで実行する。
// 予約がない場合はトランザクションを開かずに0を返す。
func (u *sqlUnitOfWork) Save(ctx context.Context) (int64, error) {
	ops := u.ops
	u.ops = nil
	if len(ops) == 0 {
		return 0, nil
	}

	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var affected int64
	for _, op := range ops {
		n, err := op(ctx, tx)
		if err != nil {
			return 0, err
		}
		affected += n
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return affected, nil
}

// IsUniqueViolation はerrがストレージの一意制約違反かどうかを返す。
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func execAffected(ctx context.Context, tx *sql.Tx, query string, args ...any) (int64, error) {
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
