package repositories

import (
	"context"
	"testing"

	"go-logapi/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_SequentialIDs(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	a, err := s.CreateUser(ctx, models.User{Name: "Ada", Email: "ada@example.com", Age: 36})
	require.NoError(t, err)
	assert.Equal(t, int64(1), a.ID)
	b, err := s.CreateUser(ctx, models.User{Name: "Bob", Email: "bob@example.com", Age: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), b.ID)

	_, _, err = s.DeleteUser(ctx, 2)
	require.NoError(t, err)
	c, err := s.CreateUser(ctx, models.User{Name: "Cy", Email: "cy@example.com", Age: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), c.ID, "ids are max existing id + 1")
}

func TestMemoryStore_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := s.CreateUser(ctx, models.User{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	other, err := s.CreateUser(ctx, models.User{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	_, err = s.CreateUser(ctx, models.User{Name: "Ada2", Email: "ADA@example.com"})
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	other.Email = "ada@example.com"
	_, err = s.UpdateUser(ctx, *other)
	assert.ErrorIs(t, err, ErrDuplicateEmail)

	// Keeping one's own email is not a conflict.
	other.Email = "bob@example.com"
	updated, err := s.UpdateUser(ctx, *other)
	require.NoError(t, err)
	assert.NotNil(t, updated.UpdatedAt)
}

func TestMemoryStore_DeleteUserCascades(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	u1, _ := s.CreateUser(ctx, models.User{Name: "Ada", Email: "ada@example.com"})
	u2, _ := s.CreateUser(ctx, models.User{Name: "Bob", Email: "bob@example.com"})
	for i := 0; i < 3; i++ {
		_, err := s.CreatePost(ctx, models.Post{UserID: u1.ID, Title: "t", Content: "content long enough"})
		require.NoError(t, err)
	}
	kept, err := s.CreatePost(ctx, models.Post{UserID: u2.ID, Title: "t", Content: "content long enough"})
	require.NoError(t, err)

	deleted, removedPosts, err := s.DeleteUser(ctx, u1.ID)
	require.NoError(t, err)
	assert.Equal(t, u1.ID, deleted.ID)
	assert.Equal(t, 3, removedPosts)

	users, _ := s.ListUsers(ctx)
	require.Len(t, users, 1)
	assert.Equal(t, u2.ID, users[0].ID)

	posts, _ := s.ListPosts(ctx)
	require.Len(t, posts, 1)
	assert.Equal(t, kept.ID, posts[0].ID)

	_, _, err = s.DeleteUser(ctx, u1.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_PostRequiresExistingUser(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	_, err := s.CreatePost(ctx, models.Post{UserID: 42, Title: "t", Content: "content long enough"})
	assert.ErrorIs(t, err, ErrUnknownUser)

	s.Seed()
	p, err := s.CreatePost(ctx, models.Post{UserID: 1, Title: "t", Content: "content long enough"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), p.ID)

	p.UserID = 99
	_, err = s.UpdatePost(ctx, *p)
	assert.ErrorIs(t, err, ErrUnknownUser)

	_, err = s.DeletePost(ctx, p.ID)
	require.NoError(t, err)
	_, err = s.FindPostByID(ctx, p.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
