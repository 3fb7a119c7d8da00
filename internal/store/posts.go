package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/petermazzocco/blogly/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PostInput struct {
	Title   string
	Content string
	// TagIDs that don't match an existing tag are ignored.
	TagIDs []uint
}

func (in PostInput) validate() error {
	if strings.TrimSpace(in.Title) == "" {
		return fmt.Errorf("%w: title", ErrMissingField)
	}
	if strings.TrimSpace(in.Content) == "" {
		return fmt.Errorf("%w: content", ErrMissingField)
	}
	return nil
}

func (s *Store) ListPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := s.db.WithContext(ctx).Preload("User").Order("id").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	return posts, nil
}

// GetPost loads a post with its author and tags.
func (s *Store) GetPost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).
		Preload("User").
		Preload("Tags", func(db *gorm.DB) *gorm.DB { return db.Order("tags.id") }).
		First(&post, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &post, nil
}

// CreatePost adds a post owned by userID. ErrNotFound means the user doesn't exist.
func (s *Store) CreatePost(ctx context.Context, userID uint, in PostInput) (*models.Post, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var post models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owner models.User
		if err := tx.Select("id").First(&owner, userID).Error; err != nil {
			return notFound(err)
		}

		post = models.Post{
			Title:   in.Title,
			Content: in.Content,
			UserID:  owner.ID,
		}
		if err := tx.Omit(clause.Associations).Create(&post).Error; err != nil {
			return fmt.Errorf("failed to create post: %w", err)
		}
		return replacePostTags(tx, post.ID, in.TagIDs)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// UpdatePost overwrites title and content and replaces the post's whole tag set.
func (s *Store) UpdatePost(ctx context.Context, id uint, in PostInput) (*models.Post, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var post models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, id).Error; err != nil {
			return notFound(err)
		}
		post.Title = in.Title
		post.Content = in.Content
		if err := tx.Model(&post).Select("title", "content").Updates(&post).Error; err != nil {
			return fmt.Errorf("failed to update post %d: %w", id, err)
		}
		return replacePostTags(tx, post.ID, in.TagIDs)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// DeletePost removes a post and its tag links. The returned post still carries
// UserID so callers can find the former owner.
func (s *Store) DeletePost(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&post, id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Where("post_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
			return fmt.Errorf("failed to unlink tags: %w", err)
		}
		return tx.Delete(&models.Post{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

func replacePostTags(tx *gorm.DB, postID uint, tagIDs []uint) error {
	if err := tx.Where("post_id = ?", postID).Delete(&models.PostTag{}).Error; err != nil {
		return fmt.Errorf("failed to clear tags of post %d: %w", postID, err)
	}
	if len(tagIDs) == 0 {
		return nil
	}

	var found []uint
	if err := tx.Model(&models.Tag{}).Where("id IN ?", tagIDs).Order("id").Pluck("id", &found).Error; err != nil {
		return fmt.Errorf("failed to resolve tags: %w", err)
	}
	if len(found) == 0 {
		return nil
	}

	links := make([]models.PostTag, 0, len(found))
	for _, tagID := range found {
		links = append(links, models.PostTag{PostID: postID, TagID: tagID})
	}
	if err := tx.Create(&links).Error; err != nil {
		return fmt.Errorf("failed to link tags to post %d: %w", postID, err)
	}
	return nil
}
