package services

import (
	"context"
	"fmt"
	"time"

	"go-logapi/internal/repositories"
)

// Stats is the aggregate view served by GET /api/stats.
type Stats struct {
	Users  UserStats   `json:"users"`
	Posts  PostStats   `json:"posts"`
	Server ServerStats `json:"server"`
}

type UserStats struct {
	Total int            `json:"total"`
	ByAge map[string]int `json:"byAge"`
}

type PostStats struct {
	Total  int             `json:"total"`
	ByUser []UserPostCount `json:"byUser"`
}

type UserPostCount struct {
	UserID    int64  `json:"userId"`
	UserName  string `json:"userName"`
	PostCount int    `json:"postCount"`
}

type ServerStats struct {
	Uptime      float64   `json:"uptime"` // seconds
	Timestamp   time.Time `json:"timestamp"`
	Environment string    `json:"environment"`
}

// StatsService aggregates the in-memory collections.
type StatsService struct {
	users       repositories.UserRepository
	posts       repositories.PostRepository
	startedAt   time.Time
	environment string
}

// NewStatsService creates a new StatsService. startedAt is the process start time used for uptime.
func NewStatsService(users repositories.UserRepository, posts repositories.PostRepository, startedAt time.Time, environment string) *StatsService {
	return &StatsService{users: users, posts: posts, startedAt: startedAt, environment: environment}
}

// Uptime returns the seconds elapsed since the service started.
func (s *StatsService) Uptime() float64 {
	return time.Since(s.startedAt).Seconds()
}

// Environment returns the deployment environment name.
func (s *StatsService) Environment() string {
	return s.environment
}

func ageBucket(age int) string {
	switch {
	case age >= 18 && age <= 25:
		return "18-25"
	case age >= 26 && age <= 35:
		return "26-35"
	case age >= 36 && age <= 50:
		return "36-50"
	case age > 50:
		return "50+"
	default:
		return ""
	}
}

func (s *StatsService) Collect(ctx context.Context) (*Stats, error) {
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	posts, err := s.posts.ListPosts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	byAge := map[string]int{"18-25": 0, "26-35": 0, "36-50": 0, "50+": 0}
	for _, u := range users {
		if b := ageBucket(u.Age); b != "" {
			byAge[b]++
		}
	}
	counts := make(map[int64]int, len(users))
	for _, p := range posts {
		counts[p.UserID]++
	}
	byUser := make([]UserPostCount, len(users))
	for i, u := range users {
		byUser[i] = UserPostCount{UserID: u.ID, UserName: u.Name, PostCount: counts[u.ID]}
	}

	return &Stats{
		Users: UserStats{Total: len(users), ByAge: byAge},
		Posts: PostStats{Total: len(posts), ByUser: byUser},
		Server: ServerStats{
			Uptime:      s.Uptime(),
			Timestamp:   time.Now().UTC(),
			Environment: s.environment,
		},
	}, nil
}
