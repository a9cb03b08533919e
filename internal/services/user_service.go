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

// UserInput is the payload accepted by user create and update.
type UserInput struct {
	Name  string `json:"name" validate:"min=2" message:"Name must be at least 2 characters long"`
	Email string `json:"email" validate:"contains=@" message:"Valid email is required"`
	Age   *int   `json:"age" validate:"required,min=0,max=150" message:"Age must be between 0 and 150"`
}

// UserListQuery filters and pages a user listing.
type UserListQuery struct {
	PageRequest
	Search string
}

// UserService defines the operations on the users collection
type UserService interface {
	List(ctx context.Context, q UserListQuery) ([]models.User, Pagination, error)
	Get(ctx context.Context, id int64) (*models.User, error)
	Create(ctx context.Context, in UserInput) (*models.User, error)
	Update(ctx context.Context, id int64, in UserInput) (*models.User, error)
	Delete(ctx context.Context, id int64) (*models.User, error)
}

type userServiceImpl struct {
	users  repositories.UserRepository
	logger *zap.Logger
	events EventLogger
}

// NewUserService creates a new UserService
func NewUserService(users repositories.UserRepository, logger *zap.Logger, events EventLogger) UserService {
	return &userServiceImpl{users: users, logger: logger, events: orNop(events)}
}

func (in *UserInput) normalize() {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
}

func validateUser(in *UserInput) error {
	in.normalize()
	if errs := validation.ValidateStruct(in); errs != nil {
		return &ValidationError{Messages: validation.Messages(errs)}
	}
	return nil
}

func (s *userServiceImpl) List(ctx context.Context, q UserListQuery) ([]models.User, Pagination, error) {
	all, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("list users: %w", err)
	}
	if term := strings.ToLower(strings.TrimSpace(q.Search)); term != "" {
		filtered := all[:0]
		for _, u := range all {
			if strings.Contains(strings.ToLower(u.Name), term) || strings.Contains(strings.ToLower(u.Email), term) {
				filtered = append(filtered, u)
			}
		}
		all = filtered
	}
	page, pagination := paginate(all, q.PageRequest)
	return page, pagination, nil
}

func (s *userServiceImpl) Get(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.users.FindUserByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return user, nil
}

func (s *userServiceImpl) Create(ctx context.Context, in UserInput) (*models.User, error) {
	if err := validateUser(&in); err != nil {
		return nil, err
	}
	user, err := s.users.CreateUser(ctx, models.User{Name: in.Name, Email: in.Email, Age: *in.Age})
	if errors.Is(err, repositories.ErrDuplicateEmail) {
		s.logger.Warn("User creation rejected: email already exists", zap.String("email", in.Email))
		return nil, ErrEmailExists
	}
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	s.logger.Info("User created", zap.Int64("userID", user.ID))
	s.events.Log(remotelog.LevelInfo, remotelog.PackageService, fmt.Sprintf("User %d created", user.ID))
	return user, nil
}

func (s *userServiceImpl) Update(ctx context.Context, id int64, in UserInput) (*models.User, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := validateUser(&in); err != nil {
		return nil, err
	}
	user, err := s.users.UpdateUser(ctx, models.User{ID: id, Name: in.Name, Email: in.Email, Age: *in.Age})
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return nil, ErrUserNotFound
	case errors.Is(err, repositories.ErrDuplicateEmail):
		s.logger.Warn("User update rejected: email already exists", zap.Int64("userID", id), zap.String("email", in.Email))
		return nil, ErrEmailExists
	case err != nil:
		return nil, fmt.Errorf("update user %d: %w", id, err)
	}
	s.logger.Info("User updated", zap.Int64("userID", id))
	return user, nil
}

func (s *userServiceImpl) Delete(ctx context.Context, id int64) (*models.User, error) {
	user, removedPosts, err := s.users.DeleteUser(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("delete user %d: %w", id, err)
	}
	s.logger.Info("User deleted", zap.Int64("userID", id), zap.Int("postsRemoved", removedPosts))
	s.events.Log(remotelog.LevelWarn, remotelog.PackageService,
		fmt.Sprintf("User %d deleted along with %d posts", id, removedPosts))
	return user, nil
}
