package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/petermazzocco/blogly/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TagInput struct {
	Name string
	// PostIDs that don't match an existing post are ignored.
	PostIDs []uint
}

func (in TagInput) validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("%w: name", ErrMissingField)
	}
	return nil
}

func (s *Store) ListTags(ctx context.Context) ([]models.Tag, error) {
	var tags []models.Tag
	if err := s.db.WithContext(ctx).Order("id").Find(&tags).Error; err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// GetTag loads a tag with the posts carrying it.
func (s *Store) GetTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	err := s.db.WithContext(ctx).
		Preload("Posts", func(db *gorm.DB) *gorm.DB { return db.Order("posts.id") }).
		First(&tag, id).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &tag, nil
}

func (s *Store) CreateTag(ctx context.Context, in TagInput) (*models.Tag, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var tag models.Tag
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := nameTaken(tx, in.Name, 0); err != nil {
			return err
		}
		tag = models.Tag{Name: in.Name}
		if err := tx.Omit(clause.Associations).Create(&tag).Error; err != nil {
			return duplicate(err)
		}
		return replaceTagPosts(tx, tag.ID, in.PostIDs)
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// UpdateTag renames a tag and replaces the whole set of posts carrying it.
func (s *Store) UpdateTag(ctx context.Context, id uint, in TagInput) (*models.Tag, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var tag models.Tag
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&tag, id).Error; err != nil {
			return notFound(err)
		}
		if err := nameTaken(tx, in.Name, id); err != nil {
			return err
		}
		tag.Name = in.Name
		if err := tx.Model(&tag).Select("name").Updates(&tag).Error; err != nil {
			return duplicate(err)
		}
		return replaceTagPosts(tx, tag.ID, in.PostIDs)
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// DeleteTag removes a tag and its post links; the posts stay.
func (s *Store) DeleteTag(ctx context.Context, id uint) (*models.Tag, error) {
	var tag models.Tag
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&tag, id).Error; err != nil {
			return notFound(err)
		}
		if err := tx.Where("tag_id = ?", id).Delete(&models.PostTag{}).Error; err != nil {
			return fmt.Errorf("failed to unlink posts: %w", err)
		}
		return tx.Delete(&models.Tag{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return &tag, nil
}

// nameTaken reports ErrDuplicateTagName if another tag than except already uses name.
// The unique index remains the authority; this only gives a clean error in the common case.
func nameTaken(tx *gorm.DB, name string, except uint) error {
	var count int64
	if err := tx.Model(&models.Tag{}).Where("name = ? AND id <> ?", name, except).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check tag name: %w", err)
	}
	if count > 0 {
		return ErrDuplicateTagName
	}
	return nil
}

func duplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrDuplicateTagName
	}
	return fmt.Errorf("failed to save tag: %w", err)
}

func replaceTagPosts(tx *gorm.DB, tagID uint, postIDs []uint) error {
	if err := tx.Where("tag_id = ?", tagID).Delete(&models.PostTag{}).Error; err != nil {
		return fmt.Errorf("failed to clear posts of tag %d: %w", tagID, err)
	}
	if len(postIDs) == 0 {
		return nil
	}

	var found []uint
	if err := tx.Model(&models.Post{}).Where("id IN ?", postIDs).Order("id").Pluck("id", &found).Error; err != nil {
		return fmt.Errorf("failed to resolve posts: %w", err)
	}
	if len(found) == 0 {
		return nil
	}

	links := make([]models.PostTag, 0, len(found))
	for _, postID := range found {
		links = append(links, models.PostTag{PostID: postID, TagID: tagID})
	}
	if err := tx.Create(&links).Error; err != nil {
		return fmt.Errorf("failed to link posts to tag %d: %w", tagID, err)
	}
	return nil
}
