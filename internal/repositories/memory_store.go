package repositories

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"go-logapi/internal/models"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("email already exists")
	ErrUnknownUser    = errors.New("referenced user does not exist")
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	FindUserByID(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, user models.User) (*models.User, error)
	UpdateUser(ctx context.Context, user models.User) (*models.User, error)
	// DeleteUser removes the user and every post it owns.
	DeleteUser(ctx context.Context, id int64) (*models.User, int, error)
}

// PostRepository defines the interface for post data operations
type PostRepository interface {
	ListPosts(ctx context.Context) ([]models.Post, error)
	FindPostByID(ctx context.Context, id int64) (*models.Post, error)
	CreatePost(ctx context.Context, post models.Post) (*models.Post, error)
	UpdatePost(ctx context.Context, post models.Post) (*models.Post, error)
	DeletePost(ctx context.Context, id int64) (*models.Post, error)
}

// MemoryStore owns the in-memory users and posts collections. It is created
// once and injected into the services that need it.
type MemoryStore struct {
	mu    sync.RWMutex
	users []models.User
	posts []models.Post
	now   func() time.Time
}

var (
	_ UserRepository = (*MemoryStore)(nil)
	_ PostRepository = (*MemoryStore)(nil)
)

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{now: time.Now}
}

// Seed loads the demonstration records shipped with the service.
func (s *MemoryStore) Seed() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	s.users = append(s.users, models.User{ID: 1, Name: "Demo User", Email: "demo.user@example.com", Age: 25, CreatedAt: now})
	s.posts = append(s.posts, models.Post{
		ID: 1, UserID: 1, Title: "Technical Assessment Post",
		Content:   "This is a sample post shipped with the demonstration data set",
		CreatedAt: now,
	})
}

// nextUserID returns max existing id + 1, or 1 for an empty collection.
func (s *MemoryStore) nextUserID() int64 {
	var maxID int64
	for _, u := range s.users {
		if u.ID > maxID {
			maxID = u.ID
		}
	}
	return maxID + 1
}

func (s *MemoryStore) nextPostID() int64 {
	var maxID int64
	for _, p := range s.posts {
		if p.ID > maxID {
			maxID = p.ID
		}
	}
	return maxID + 1
}

func (s *MemoryStore) userIndex(id int64) int {
	for i := range s.users {
		if s.users[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) postIndex(id int64) int {
	for i := range s.posts {
		if s.posts[i].ID == id {
			return i
		}
	}
	return -1
}

func (s *MemoryStore) emailTaken(email string, exceptID int64) bool {
	for _, u := range s.users {
		if u.ID != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

func (s *MemoryStore) ListUsers(_ context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.User, len(s.users))
	copy(out, s.users)
	return out, nil
}

func (s *MemoryStore) FindUserByID(_ context.Context, id int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.userIndex(id); i >= 0 {
		u := s.users[i]
		return &u, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreateUser(_ context.Context, user models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTaken(user.Email, 0) {
		return nil, ErrDuplicateEmail
	}
	user.ID = s.nextUserID()
	user.CreatedAt = s.now().UTC()
	user.UpdatedAt = nil
	s.users = append(s.users, user)
	return &user, nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, user models.User) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.userIndex(user.ID)
	if i < 0 {
		return nil, ErrNotFound
	}
	if s.emailTaken(user.Email, user.ID) {
		return nil, ErrDuplicateEmail
	}
	now := s.now().UTC()
	current := &s.users[i]
	current.Name = user.Name
	current.Email = user.Email
	current.Age = user.Age
	current.UpdatedAt = &now
	updated := *current
	return &updated, nil
}

func (s *MemoryStore) DeleteUser(_ context.Context, id int64) (*models.User, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.userIndex(id)
	if i < 0 {
		return nil, 0, ErrNotFound
	}
	kept := s.posts[:0]
	removed := 0
	for _, p := range s.posts {
		if p.UserID == id {
			removed++
			continue
		}
		kept = append(kept, p)
	}
	s.posts = kept
	deleted := s.users[i]
	s.users = append(s.users[:i], s.users[i+1:]...)
	return &deleted, removed, nil
}

func (s *MemoryStore) ListPosts(_ context.Context) ([]models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Post, len(s.posts))
	copy(out, s.posts)
	sort.SliceStable(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out, nil
}

func (s *MemoryStore) FindPostByID(_ context.Context, id int64) (*models.Post, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if i := s.postIndex(id); i >= 0 {
		p := s.posts[i]
		return &p, nil
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) CreatePost(_ context.Context, post models.Post) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.userIndex(post.UserID) < 0 {
		return nil, ErrUnknownUser
	}
	post.ID = s.nextPostID()
	post.CreatedAt = s.now().UTC()
	post.UpdatedAt = nil
	s.posts = append(s.posts, post)
	return &post, nil
}

func (s *MemoryStore) UpdatePost(_ context.Context, post models.Post) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.postIndex(post.ID)
	if i < 0 {
		return nil, ErrNotFound
	}
	if s.userIndex(post.UserID) < 0 {
		return nil, ErrUnknownUser
	}
	now := s.now().UTC()
	current := &s.posts[i]
	current.UserID = post.UserID
	current.Title = post.Title
	current.Content = post.Content
	current.UpdatedAt = &now
	updated := *current
	return &updated, nil
}

func (s *MemoryStore) DeletePost(_ context.Context, id int64) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.postIndex(id)
	if i < 0 {
		return nil, ErrNotFound
	}
	deleted := s.posts[i]
	s.posts = append(s.posts[:i], s.posts[i+1:]...)
	return &deleted, nil
}
