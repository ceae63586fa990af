// Package accounts stores the names players have joined with. The game
// itself never reads it.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var ErrEmptyUsername = errors.New("empty username")

type Account struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Username  string    `gorm:"size:64;not null;uniqueIndex"`
	CreatedAt time.Time
}

func (a *Account) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type Store struct {
	db *gorm.DB
}

// Open connects to Postgres and migrates the accounts table.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open accounts db: %w", err)
	}
	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		return nil, multierr.Append(err, s.Close())
	}
	return s, nil
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(&Account{}); err != nil {
		return fmt.Errorf("migrate accounts: %w", err)
	}
	return nil
}

// Register stores username unless it is already known. It reports whether a
// new account was created.
func (s *Store) Register(ctx context.Context, username string) (bool, error) {
	if username == "" {
		return false, ErrEmptyUsername
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "username"}}, DoNothing: true}).
		Create(&Account{Username: username})
	if res.Error != nil {
		return false, fmt.Errorf("register %q: %w", username, res.Error)
	}
	return res.RowsAffected == 1, nil
}

func (s *Store) Exists(ctx context.Context, username string) (bool, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&Account{}).Where("username = ?", username).Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("lookup %q: %w", username, err)
	}
	return n > 0, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
