package storage

import (
	"database/sql"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	migratemysql "github.com/golang-migrate/migrate/v4/database/mysql"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	_ "github.com/go-sql-driver/mysql"

	"storefront/pkg/domain/model"
)

//go:embed migrations/*.sql
var migrations embed.FS

var _ model.Storage = &MySQL{}

// MySQL keeps entries in the storage_entries table.
type MySQL struct {
	db *sqlx.DB
}

func OpenMySQL(dsn string) (*MySQL, error) {
	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, errors.Wrap(err, "connect to mysql")
	}
	return &MySQL{db: db}, nil
}

func NewMySQL(db *sqlx.DB) *MySQL {
	return &MySQL{db: db}
}

func (s *MySQL) DB() *sqlx.DB {
	return s.db
}

func (s *MySQL) Close() error {
	return s.db.Close()
}

func (s *MySQL) Get(key string) ([]byte, error) {
	var value []byte
	err := s.db.Get(&value, `SELECT value FROM storage_entries WHERE storage_key = ?`, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.ErrKeyNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get %q", key)
	}
	return value, nil
}

func (s *MySQL) Set(key string, value []byte) error {
	_, err := s.db.Exec(
		`INSERT INTO storage_entries (storage_key, value) VALUES (?, ?)
		ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = CURRENT_TIMESTAMP`,
		key, value,
	)
	return errors.Wrapf(err, "set %q", key)
}

func (s *MySQL) Delete(key string) error {
	result, err := s.db.Exec(`DELETE FROM storage_entries WHERE storage_key = ?`, key)
	if err != nil {
		return errors.Wrapf(err, "delete %q", key)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return errors.Wrapf(err, "delete %q", key)
	}
	if affected == 0 {
		return model.ErrKeyNotFound
	}
	return nil
}

// Migrate brings the schema up to the latest embedded migration.
func Migrate(db *sql.DB) error {
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return errors.Wrap(err, "open migrations")
	}
	driver, err := migratemysql.WithInstance(db, &migratemysql.Config{})
	if err != nil {
		return errors.Wrap(err, "open migration driver")
	}
	m, err := migrate.NewWithInstance("iofs", source, "mysql", driver)
	if err != nil {
		return errors.Wrap(err, "prepare migrations")
	}
	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return errors.Wrap(err, "apply migrations")
	}
	return nil
}
