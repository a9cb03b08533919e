package services

import (
	"context"
	"sync"
	"testing"

	"go-logapi/internal/remotelog"
	"go-logapi/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recordedEvent struct {
	level   remotelog.Level
	pkg     remotelog.Package
	message string
}

type recordingEvents struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recordingEvents) Log(level remotelog.Level, pkg remotelog.Package, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{level, pkg, message})
}

func intPtr(v int) *int { return &v }

func newUserFixture(t *testing.T) (UserService, *repositories.MemoryStore, *recordingEvents) {
	t.Helper()
	store := repositories.NewMemoryStore()
	events := &recordingEvents{}
	return NewUserService(store, zap.NewNop(), events), store, events
}

func TestUserService_CreateValidates(t *testing.T) {
	svc, _, events := newUserFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, UserInput{Name: "A", Email: "nope", Age: intPtr(-1)})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{
		"Name must be at least 2 characters long",
		"Valid email is required",
		"Age must be between 0 and 150",
	}, verr.Messages)

	_, err = svc.Create(ctx, UserInput{Name: "Ada", Email: "ada@example.com", Age: intPtr(36)})
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"Age must be between 0 and 150"}, verr.Messages)

	u, err := svc.Create(ctx, UserInput{Name: "  Ada  ", Email: " ada@example.com ", Age: intPtr(0)})
	require.NoError(t, err)
	assert.Equal(t, "Ada", u.Name)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.Equal(t, 0, u.Age)

	require.Len(t, events.events, 1)
	assert.Equal(t, remotelog.LevelInfo, events.events[0].level)
	assert.Equal(t, remotelog.PackageService, events.events[0].pkg)
}

func TestUserService_DuplicateEmail(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, UserInput{Name: "Ada", Email: "ada@example.com", Age: intPtr(30)})
	require.NoError(t, err)
	_, err = svc.Create(ctx, UserInput{Name: "Other", Email: "Ada@Example.com", Age: intPtr(30)})
	assert.ErrorIs(t, err, ErrEmailExists)
}

func TestUserService_UpdateChecksExistenceFirst(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, 99, UserInput{})
	assert.ErrorIs(t, err, ErrUserNotFound)

	u, err := svc.Create(ctx, UserInput{Name: "Ada", Email: "ada@example.com", Age: intPtr(30)})
	require.NoError(t, err)
	updated, err := svc.Update(ctx, u.ID, UserInput{Name: "Ada L", Email: "ada@example.com", Age: intPtr(31)})
	require.NoError(t, err)
	assert.Equal(t, "Ada L", updated.Name)
	assert.Equal(t, 31, updated.Age)
	assert.NotNil(t, updated.UpdatedAt)
}

func TestUserService_DeleteCascadesAndReports(t *testing.T) {
	svc, store, events := newUserFixture(t)
	store.Seed()
	ctx := context.Background()

	deleted, err := svc.Delete(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Demo User", deleted.Name)
	posts, _ := store.ListPosts(ctx)
	assert.Empty(t, posts)

	require.Len(t, events.events, 1)
	assert.Equal(t, remotelog.LevelWarn, events.events[0].level)
	assert.Equal(t, "User 1 deleted along with 1 posts", events.events[0].message)

	_, err = svc.Delete(ctx, 1)
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUserService_ListSearchAndPaginate(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	ctx := context.Background()
	for _, n := range []string{"Alice", "Bob", "Alicia", "Carol", "Malice"} {
		_, err := svc.Create(ctx, UserInput{Name: n, Email: n + "@example.com", Age: intPtr(20)})
		require.NoError(t, err)
	}

	users, p, err := svc.List(ctx, UserListQuery{Search: "ALI"})
	require.NoError(t, err)
	assert.Len(t, users, 3)
	assert.Equal(t, Pagination{CurrentPage: 1, TotalPages: 1, TotalItems: 3, ItemsPerPage: 10}, p)

	users, p, err = svc.List(ctx, UserListQuery{PageRequest: PageRequest{Page: 2, Limit: 2}})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "Alicia", users[0].Name)
	assert.Equal(t, Pagination{CurrentPage: 2, TotalPages: 3, TotalItems: 5, ItemsPerPage: 2}, p)

	users, p, err = svc.List(ctx, UserListQuery{PageRequest: PageRequest{Page: 9, Limit: 1000}})
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Equal(t, MaxLimit, p.ItemsPerPage)
}

func TestUserService_ListHugePageIsEmpty(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	ctx := context.Background()
	_, err := svc.Create(ctx, UserInput{Name: "Ada", Email: "ada@example.com", Age: intPtr(36)})
	require.NoError(t, err)

	users, p, err := svc.List(ctx, UserListQuery{PageRequest: PageRequest{Page: 1 << 62, Limit: 100}})
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Equal(t, Pagination{CurrentPage: 1 << 62, TotalPages: 1, TotalItems: 1, ItemsPerPage: 100}, p)
}
