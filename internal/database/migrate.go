// Package database はデータベース接続とマイグレーション管理を提供する。
package database

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/postgres/*.sql migrations/sqlite3/*.sql
var migrationsFS embed.FS

// newSource はドライバに対応する埋め込みマイグレーションのソースを返す。
func newSource(driver string) (source.Driver, error) {
	if !SupportedDriver(driver) {
		return nil, fmt.Errorf("unsupported database driver: %q", driver)
	}
	src, err := iofs.New(migrationsFS, "migrations/"+driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migration source: %w", err)
	}
	return src, nil
}

// migrationURL はgolang-migrateが解釈できるURLに変換する。
// sqlite3はファイルパスを"sqlite3://"スキームで包む。
func migrationURL(driver, databaseURL string) string {
	if driver == DriverSQLite && !strings.HasPrefix(databaseURL, "sqlite3://") {
		return "sqlite3://" + databaseURL
	}
	return databaseURL
}

// NewMigrator はマイグレーション実行用のmigrateインスタンスを生成する。
func NewMigrator(driver, databaseURL string) (*migrate.Migrate, error) {
	src, err := newSource(driver)
	if err != nil {
		return nil, err
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, migrationURL(driver, databaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to create migrator: %w", err)
	}

	return m, nil
}

// RunMigrations はすべてのマイグレーションを適用する。
// すでに最新の場合はエラーなしで返る。
func RunMigrations(driver, databaseURL string) error {
	m, err := NewMigrator(driver, databaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	return up(m)
}

// MigrateDB は接続済みのSQLiteデータベースにすべてのマイグレーションを適用する。
// インメモリSQLiteのように接続をまたいで状態を共有できない場合に使う。
// postgresはプールの接続を占有するためRunMigrationsを使う。
// migrate.Closeはdbを閉じるため呼び出さない。
func MigrateDB(db *sql.DB, driver string) error {
	if driver != DriverSQLite {
		return fmt.Errorf("MigrateDB supports only %q, use RunMigrations for %q", DriverSQLite, driver)
	}

	src, err := newSource(driver)
	if err != nil {
		return err
	}

	instance, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, driver, instance)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	return up(m)
}

func up(m *migrate.Migrate) error {
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
