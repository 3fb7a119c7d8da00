package store

import (
	"context"
	"errors"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/petermazzocco/blogly/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_pragma=foreign_keys(1)"), &gorm.Config{
		Logger:         logger.Discard,
		TranslateError: true,
	})
	require.NoError(t, err)

	// Every connection to :memory: is its own database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	s := New(db)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func mustUser(t *testing.T, s *Store, first, last string) *models.User {
	t.Helper()
	u, err := s.CreateUser(context.Background(), UserInput{FirstName: first, LastName: last})
	require.NoError(t, err)
	return u
}

func mustTag(t *testing.T, s *Store, name string) *models.Tag {
	t.Helper()
	tag, err := s.CreateTag(context.Background(), TagInput{Name: name})
	require.NoError(t, err)
	return tag
}

func tagIDs(tags []models.Tag) []uint {
	ids := make([]uint, 0, len(tags))
	for _, tag := range tags {
		ids = append(ids, tag.ID)
	}
	return ids
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Migrate(context.Background()))
}

func TestNotFound(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.GetUser(ctx, 999999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetPost(ctx, 999999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetTag(ctx, 999999)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.UpdateUser(ctx, 999999, UserInput{FirstName: "a", LastName: "b"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.DeleteUser(ctx, 999999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.CreatePost(ctx, 999999, PostInput{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.UpdatePost(ctx, 999999, PostInput{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.DeletePost(ctx, 999999)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.UpdateTag(ctx, 999999, TagInput{Name: "x"})
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.DeleteTag(ctx, 999999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMissingFields(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, UserInput{FirstName: "Pat"})
	assert.ErrorIs(t, err, ErrMissingField)
	_, err = s.CreateUser(ctx, UserInput{LastName: "Lee"})
	assert.ErrorIs(t, err, ErrMissingField)

	u := mustUser(t, s, "Pat", "Lee")
	_, err = s.CreatePost(ctx, u.ID, PostInput{Title: "only title"})
	assert.ErrorIs(t, err, ErrMissingField)
	_, err = s.CreateTag(ctx, TagInput{Name: "  "})
	assert.ErrorIs(t, err, ErrMissingField)

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)
}

func TestListUsers_OrderedByLastThenFirst(t *testing.T) {
	s := newTestStore(t)

	mustUser(t, s, "Zed", "Adams")
	mustUser(t, s, "Pat", "Lee")
	mustUser(t, s, "Amy", "Lee")
	mustUser(t, s, "Bo", "Baker")

	users, err := s.ListUsers(context.Background())
	require.NoError(t, err)

	var names []string
	for _, u := range users {
		names = append(names, u.FullName())
	}
	assert.Equal(t, []string{"Zed Adams", "Bo Baker", "Amy Lee", "Pat Lee"}, names)
}

func TestCreateUser_RoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	custom, err := s.CreateUser(ctx, UserInput{FirstName: "Ann", LastName: "Ray", ImageURL: "http://img/ann.png"})
	require.NoError(t, err)
	plain, err := s.CreateUser(ctx, UserInput{FirstName: "Pat", LastName: "Lee", ImageURL: "   "})
	require.NoError(t, err)

	got, err := s.GetUser(ctx, custom.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ann", got.FirstName)
	assert.Equal(t, "Ray", got.LastName)
	assert.Equal(t, "http://img/ann.png", got.ImageURL)

	got, err = s.GetUser(ctx, plain.ID)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultImageURL, got.ImageURL)
	assert.Empty(t, got.Posts)
}

func TestUpdateUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u, err := s.CreateUser(ctx, UserInput{FirstName: "Pat", LastName: "Lee", ImageURL: "http://img/pat.png"})
	require.NoError(t, err)

	in := UserInput{FirstName: "Patricia", LastName: "Lee-Ray"}
	for i := 0; i < 2; i++ {
		_, err := s.UpdateUser(ctx, u.ID, in)
		require.NoError(t, err)
	}

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "Patricia", got.FirstName)
	assert.Equal(t, "Lee-Ray", got.LastName)
	assert.Equal(t, models.DefaultImageURL, got.ImageURL)
}

func TestDeleteUser_CascadesPosts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	owner := mustUser(t, s, "Pat", "Lee")
	other := mustUser(t, s, "Amy", "Lee")
	tag := mustTag(t, s, "go")

	first, err := s.CreatePost(ctx, owner.ID, PostInput{Title: "one", Content: "1", TagIDs: []uint{tag.ID}})
	require.NoError(t, err)
	second, err := s.CreatePost(ctx, owner.ID, PostInput{Title: "two", Content: "2"})
	require.NoError(t, err)
	kept, err := s.CreatePost(ctx, other.ID, PostInput{Title: "three", Content: "3", TagIDs: []uint{tag.ID}})
	require.NoError(t, err)

	deleted, err := s.DeleteUser(ctx, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pat", deleted.FirstName)

	_, err = s.GetPost(ctx, first.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.GetPost(ctx, second.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var orphans int64
	require.NoError(t, s.db.Model(&models.Post{}).Where("user_id = ?", owner.ID).Count(&orphans).Error)
	assert.Zero(t, orphans)

	var links int64
	require.NoError(t, s.db.Model(&models.PostTag{}).Where("post_id IN ?", []uint{first.ID, second.ID}).Count(&links).Error)
	assert.Zero(t, links)

	got, err := s.GetTag(ctx, tag.ID)
	require.NoError(t, err)
	require.Len(t, got.Posts, 1)
	assert.Equal(t, kept.ID, got.Posts[0].ID)
}

func TestCreatePost_TagsAreResolvableSubset(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustUser(t, s, "Pat", "Lee")
	golang := mustTag(t, s, "go")
	sql := mustTag(t, s, "sql")
	mustTag(t, s, "unused")

	post, err := s.CreatePost(ctx, u.ID, PostInput{
		Title:   "Hello",
		Content: "World",
		TagIDs:  []uint{sql.ID, 424242, golang.ID, sql.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, u.ID, post.UserID)
	assert.False(t, post.CreatedAt.IsZero())

	got, err := s.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", got.Title)
	assert.Equal(t, "World", got.Content)
	require.NotNil(t, got.User)
	assert.Equal(t, "Pat Lee", got.User.FullName())
	assert.Equal(t, []uint{golang.ID, sql.ID}, tagIDs(got.Tags))
}

func TestUpdatePost_ReplacesTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustUser(t, s, "Pat", "Lee")
	a := mustTag(t, s, "a")
	b := mustTag(t, s, "b")
	c := mustTag(t, s, "c")

	post, err := s.CreatePost(ctx, u.ID, PostInput{Title: "t", Content: "c", TagIDs: []uint{a.ID, b.ID}})
	require.NoError(t, err)
	before, err := s.GetPost(ctx, post.ID)
	require.NoError(t, err)

	in := PostInput{Title: "t2", Content: "c2", TagIDs: []uint{b.ID, c.ID}}
	for i := 0; i < 2; i++ {
		_, err := s.UpdatePost(ctx, post.ID, in)
		require.NoError(t, err)
	}

	got, err := s.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "t2", got.Title)
	assert.Equal(t, "c2", got.Content)
	assert.Equal(t, []uint{b.ID, c.ID}, tagIDs(got.Tags))
	assert.True(t, before.CreatedAt.Equal(got.CreatedAt), "created_at must not change on update")

	_, err = s.UpdatePost(ctx, post.ID, PostInput{Title: "t3", Content: "c3"})
	require.NoError(t, err)
	got, err = s.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}

func TestDeletePost_KeepsOwnerAndTags(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustUser(t, s, "Pat", "Lee")
	tag := mustTag(t, s, "go")
	post, err := s.CreatePost(ctx, u.ID, PostInput{Title: "t", Content: "c", TagIDs: []uint{tag.ID}})
	require.NoError(t, err)

	deleted, err := s.DeletePost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, deleted.UserID)

	_, err = s.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	owner, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, owner.Posts)

	got, err := s.GetTag(ctx, tag.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Posts)
}

func TestCreateTag_DuplicateName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustTag(t, s, "go")
	_, err := s.CreateTag(ctx, TagInput{Name: "go"})
	assert.ErrorIs(t, err, ErrDuplicateTagName)

	tags, err := s.ListTags(ctx)
	require.NoError(t, err)
	assert.Len(t, tags, 1)
}

func TestUpdateTag(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustUser(t, s, "Pat", "Lee")
	p1, err := s.CreatePost(ctx, u.ID, PostInput{Title: "p1", Content: "c"})
	require.NoError(t, err)
	p2, err := s.CreatePost(ctx, u.ID, PostInput{Title: "p2", Content: "c"})
	require.NoError(t, err)

	golang, err := s.CreateTag(ctx, TagInput{Name: "go", PostIDs: []uint{p1.ID, 777}})
	require.NoError(t, err)
	mustTag(t, s, "sql")

	got, err := s.GetTag(ctx, golang.ID)
	require.NoError(t, err)
	require.Len(t, got.Posts, 1)
	assert.Equal(t, p1.ID, got.Posts[0].ID)

	// keeping its own name is not a collision
	_, err = s.UpdateTag(ctx, golang.ID, TagInput{Name: "go", PostIDs: []uint{p2.ID}})
	require.NoError(t, err)
	got, err = s.GetTag(ctx, golang.ID)
	require.NoError(t, err)
	require.Len(t, got.Posts, 1)
	assert.Equal(t, p2.ID, got.Posts[0].ID)

	_, err = s.UpdateTag(ctx, golang.ID, TagInput{Name: "sql"})
	assert.ErrorIs(t, err, ErrDuplicateTagName)

	got, err = s.GetTag(ctx, golang.ID)
	require.NoError(t, err)
	assert.Equal(t, "go", got.Name)
	assert.Len(t, got.Posts, 1, "failed update must not touch links")
}

func TestDeleteTag_KeepsPosts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustUser(t, s, "Pat", "Lee")
	tag := mustTag(t, s, "go")
	post, err := s.CreatePost(ctx, u.ID, PostInput{Title: "t", Content: "c", TagIDs: []uint{tag.ID}})
	require.NoError(t, err)

	_, err = s.DeleteTag(ctx, tag.ID)
	require.NoError(t, err)
	_, err = s.GetTag(ctx, tag.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	got, err := s.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Tags)
}

func TestListPosts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustUser(t, s, "Pat", "Lee")
	for _, title := range []string{"a", "b"} {
		_, err := s.CreatePost(ctx, u.ID, PostInput{Title: title, Content: "c"})
		require.NoError(t, err)
	}

	posts, err := s.ListPosts(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "a", posts[0].Title)
	require.NotNil(t, posts[1].User)
	assert.Equal(t, "Pat", posts[1].User.FirstName)
}

// failJoinWrites makes every insert into posts_tags fail.
func failJoinWrites(t *testing.T, s *Store) {
	t.Helper()
	err := s.db.Callback().Create().Before("gorm:create").Register("test:fail_join_writes", func(db *gorm.DB) {
		if db.Statement.Table == "posts_tags" {
			db.AddError(errors.New("boom"))
		}
	})
	require.NoError(t, err)
}

func TestCreatePost_RollsBackWhenLinkingFails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustUser(t, s, "Pat", "Lee")
	tag := mustTag(t, s, "go")
	failJoinWrites(t, s)

	_, err := s.CreatePost(ctx, u.ID, PostInput{Title: "t", Content: "c", TagIDs: []uint{tag.ID}})
	require.Error(t, err)

	var posts int64
	require.NoError(t, s.db.Model(&models.Post{}).Count(&posts).Error)
	assert.Zero(t, posts)
}

func TestUpdatePost_RollsBackWhenLinkingFails(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := mustUser(t, s, "Pat", "Lee")
	a := mustTag(t, s, "a")
	b := mustTag(t, s, "b")
	post, err := s.CreatePost(ctx, u.ID, PostInput{Title: "before", Content: "c", TagIDs: []uint{a.ID}})
	require.NoError(t, err)
	failJoinWrites(t, s)

	_, err = s.UpdatePost(ctx, post.ID, PostInput{Title: "after", Content: "c2", TagIDs: []uint{b.ID}})
	require.Error(t, err)

	got, err := s.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "before", got.Title)
	assert.Equal(t, "c", got.Content)
	assert.Equal(t, []uint{a.ID}, tagIDs(got.Tags))
}

func TestDuplicate_TranslatesUniqueIndexViolation(t *testing.T) {
	s := newTestStore(t)
	mustTag(t, s, "go")

	err := s.db.Create(&models.Tag{Name: "go"}).Error
	require.Error(t, err)
	assert.ErrorIs(t, duplicate(err), ErrDuplicateTagName)

	assert.NotErrorIs(t, duplicate(errors.New("disk full")), ErrDuplicateTagName)
}
