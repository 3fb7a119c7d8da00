package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/petermazzocco/blogly/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrNotFound         = errors.New("record not found")
	ErrMissingField     = errors.New("missing required field")
	ErrDuplicateTagName = errors.New("tag name already taken")
)

// Store is the persistence context shared by every handler. It is created once
// at start-up and is safe for concurrent use.
type Store struct {
	db *gorm.DB
}

type Options struct {
	LogSQL bool
}

// Open connects to postgres using dsn.
func Open(dsn string, opts Options) (*Store, error) {
	level := logger.Warn
	if opts.LogSQL {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(level),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return New(db), nil
}

// New wraps an already opened gorm handle.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates the users, posts, tags and posts_tags tables if they don't exist.
func (s *Store) Migrate(ctx context.Context) error {
	db := s.db.WithContext(ctx)

	// Both sides of the many2many share the explicit join model
	if err := db.SetupJoinTable(&models.Post{}, "Tags", &models.PostTag{}); err != nil {
		return fmt.Errorf("failed to set up posts_tags for posts: %w", err)
	}
	if err := db.SetupJoinTable(&models.Tag{}, "Posts", &models.PostTag{}); err != nil {
		return fmt.Errorf("failed to set up posts_tags for tags: %w", err)
	}

	if err := db.AutoMigrate(&models.User{}, &models.Post{}, &models.Tag{}, &models.PostTag{}); err != nil {
		return fmt.Errorf("failed to auto migrate models: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
