package models

import (
	"time"
)

// DefaultImageURL is stored for users who don't supply their own picture.
const DefaultImageURL = "https://www.freeiconspng.com/uploads/icon-user-" +
	"blue-symbol-people-person-generic--public-domain--21.png"

type User struct {
	ID        uint   `gorm:"primarykey"`
	FirstName string `gorm:"size:50;not null"`
	LastName  string `gorm:"size:50;not null"`
	ImageURL  string `gorm:"size:500"`
	Posts     []Post `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

func (u User) FullName() string {
	return u.FirstName + " " + u.LastName
}

type Post struct {
	ID        uint      `gorm:"primarykey"`
	Title     string    `gorm:"type:text;not null"`
	Content   string    `gorm:"type:text;not null"`
	CreatedAt time.Time `gorm:"not null"`
	UserID    uint      `gorm:"not null;index"`
	User      *User
	Tags      []Tag `gorm:"many2many:posts_tags;"`
}

// FriendlyDate formats CreatedAt the way the detail pages show it.
func (p Post) FriendlyDate() string {
	return p.CreatedAt.Format("Mon Jan 2 2006, 3:04 PM")
}

type Tag struct {
	ID    uint   `gorm:"primarykey"`
	Name  string `gorm:"type:text;not null;uniqueIndex"`
	Posts []Post `gorm:"many2many:posts_tags;"`
}

// PostTag is the explicit join row between posts and tags.
type PostTag struct {
	PostID uint `gorm:"primaryKey"`
	TagID  uint `gorm:"primaryKey"`
}

func (PostTag) TableName() string {
	return "posts_tags"
}
