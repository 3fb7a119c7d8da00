package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/petermazzocco/blogly/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type UserInput struct {
	FirstName string
	LastName  string
	ImageURL  string
}

func (in UserInput) validate() error {
	if strings.TrimSpace(in.FirstName) == "" {
		return fmt.Errorf("%w: first_name", ErrMissingField)
	}
	if strings.TrimSpace(in.LastName) == "" {
		return fmt.Errorf("%w: last_name", ErrMissingField)
	}
	return nil
}

// imageURL falls back to the placeholder picture when none was given.
func (in UserInput) imageURL() string {
	if strings.TrimSpace(in.ImageURL) == "" {
		return models.DefaultImageURL
	}
	return in.ImageURL
}

// ListUsers returns every user ordered by last name, then first name.
func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	if err := s.db.WithContext(ctx).Order("last_name, first_name").Find(&users).Error; err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

// GetUser loads a user together with their posts.
func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Preload("Posts", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		First(&user, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *Store) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	user := models.User{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		ImageURL:  in.imageURL(),
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&user).Error; err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return &user, nil
}

func (s *Store) UpdateUser(ctx context.Context, id uint, in UserInput) (*models.User, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return notFound(err)
		}
		user.FirstName = in.FirstName
		user.LastName = in.LastName
		user.ImageURL = in.imageURL()
		return tx.Model(&user).
			Select("first_name", "last_name", "image_url").
			Updates(&user).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteUser removes a user, every post they own and those posts' tag links.
func (s *Store) DeleteUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&user, id).Error; err != nil {
			return notFound(err)
		}

		var postIDs []uint
		if err := tx.Model(&models.Post{}).Where("user_id = ?", id).Pluck("id", &postIDs).Error; err != nil {
			return fmt.Errorf("failed to find posts of user %d: %w", id, err)
		}
		if len(postIDs) > 0 {
			if err := tx.Where("post_id IN ?", postIDs).Delete(&models.PostTag{}).Error; err != nil {
				return fmt.Errorf("failed to unlink tags: %w", err)
			}
			if err := tx.Where("id IN ?", postIDs).Delete(&models.Post{}).Error; err != nil {
				return fmt.Errorf("failed to delete posts: %w", err)
			}
		}

		return tx.Delete(&models.User{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}
