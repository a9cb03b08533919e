package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go-logapi/internal/models"
	"go-logapi/internal/pkg/validation"
	"go-logapi/internal/remotelog"
	"go-logapi/internal/repositories"

	"go.uber.org/zap"
)

const invalidUserIDMessage = "Valid user ID is required"

// PostInput is the payload accepted by post create and update.
type PostInput struct {
	Title   string `json:"title" validate:"required" message:"Title is required"`
	Content string `json:"content" validate:"min=10" message:"Content must be at least 10 characters long"`
	UserID  int64  `json:"userId" validate:"gt=0" message:"Valid user ID is required"`
}

// PostListQuery filters and pages a post listing. UserID 0 means all users.
type PostListQuery struct {
	PageRequest
	UserID int64
}

// PostService defines the operations on the posts collection
type PostService interface {
	List(ctx context.Context, q PostListQuery) ([]models.PostWithUser, Pagination, error)
	Get(ctx context.Context, id int64) (*models.PostWithUser, error)
	Create(ctx context.Context, in PostInput) (*models.Post, error)
	Update(ctx context.Context, id int64, in PostInput) (*models.Post, error)
	Delete(ctx context.Context, id int64) (*models.Post, error)
}

type postServiceImpl struct {
	posts  repositories.PostRepository
	users  repositories.UserRepository
	logger *zap.Logger
	events EventLogger
}

// NewPostService creates a new PostService
func NewPostService(posts repositories.PostRepository, users repositories.UserRepository, logger *zap.Logger, events EventLogger) PostService {
	return &postServiceImpl{posts: posts, users: users, logger: logger, events: orNop(events)}
}

// validatePost checks the payload rules and that the author exists.
func (s *postServiceImpl) validatePost(ctx context.Context, in *PostInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)

	var messages []string
	if errs := validation.ValidateStruct(in); errs != nil {
		messages = validation.Messages(errs)
	}
	if in.UserID > 0 {
		if _, err := s.users.FindUserByID(ctx, in.UserID); err != nil {
			messages = append(messages, invalidUserIDMessage)
		}
	}
	if len(messages) > 0 {
		return &ValidationError{Messages: messages}
	}
	return nil
}

func (s *postServiceImpl) withUser(ctx context.Context, p models.Post) models.PostWithUser {
	out := models.PostWithUser{Post: p}
	if u, err := s.users.FindUserByID(ctx, p.UserID); err == nil {
		out.User = u
	}
	return out
}

func (s *postServiceImpl) List(ctx context.Context, q PostListQuery) ([]models.PostWithUser, Pagination, error) {
	all, err := s.posts.ListPosts(ctx)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list posts: %w", err)
	}
	if q.UserID != 0 {
		filtered := all[:0]
		for _, p := range all {
			if p.UserID == q.UserID {
				filtered = append(filtered, p)
			}
		}
		all = filtered
	}
	page, pagination := paginate(all, q.PageRequest)
	out := make([]models.PostWithUser, len(page))
	for i, p := range page {
		out[i] = s.withUser(ctx, p)
	}
	return out, pagination, nil
}

func (s *postServiceImpl) Get(ctx context.Context, id int64) (*models.PostWithUser, error) {
	post, err := s.posts.FindPostByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find post %d: %w", id, err)
	}
	out := s.withUser(ctx, *post)
	return &out, nil
}

func (s *postServiceImpl) Create(ctx context.Context, in PostInput) (*models.Post, error) {
	if err := s.validatePost(ctx, &in); err != nil {
		return nil, err
	}
	post, err := s.posts.CreatePost(ctx, models.Post{UserID: in.UserID, Title: in.Title, Content: in.Content})
	if errors.Is(err, repositories.ErrUnknownUser) {
		// author deleted between validation and insert
		return nil, &ValidationError{Messages: []string{invalidUserIDMessage}}
	}
	if err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	s.logger.Info("Post created", zap.Int64("postID", post.ID), zap.Int64("userID", post.UserID))
	s.events.Log(remotelog.LevelInfo, remotelog.PackageService, fmt.Sprintf("Post %d created by user %d", post.ID, post.UserID))
	return post, nil
}

func (s *postServiceImpl) Update(ctx context.Context, id int64, in PostInput) (*models.Post, error) {
	if _, err := s.posts.FindPostByID(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, fmt.Errorf("find post %d: %w", id, err)
	}
	if err := s.validatePost(ctx, &in); err != nil {
		return nil, err
	}
	post, err := s.posts.UpdatePost(ctx, models.Post{ID: id, UserID: in.UserID, Title: in.Title, Content: in.Content})
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return nil, ErrPostNotFound
	case errors.Is(err, repositories.ErrUnknownUser):
		return nil, &ValidationError{Messages: []string{invalidUserIDMessage}}
	case err != nil:
		return nil, fmt.Errorf("update post %d: %w", id, err)
	}
	s.logger.Info("Post updated", zap.Int64("postID", id))
	return post, nil
}

func (s *postServiceImpl) Delete(ctx context.Context, id int64) (*models.Post, error) {
	post, err := s.posts.DeletePost(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete post %d: %w", id, err)
	}
	s.logger.Info("Post deleted", zap.Int64("postID", id))
	return post, nil
}
