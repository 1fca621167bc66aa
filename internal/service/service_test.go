package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patric-chuzhbe/todolist/internal/apperr"
	"github.com/patric-chuzhbe/todolist/internal/credentials"
	"github.com/patric-chuzhbe/todolist/internal/db/memorystorage"
	"github.com/patric-chuzhbe/todolist/internal/models"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	db, err := memorystorage.New()
	require.NoError(t, err)

	return New(db, credentials.New([]byte("service-test-secret"), time.Hour))
}

func registerTestUser(t *testing.T, svc *Service, email string) string {
	t.Helper()

	ctx := context.Background()
	_, err := svc.Register(ctx, &models.RegisterRequest{
		Name:     "Test User",
		Email:    email,
		Password: "secret1",
	})
	require.NoError(t, err)

	usr, found, err := svc.db.FindUserByEmail(ctx, email)
	require.NoError(t, err)
	require.True(t, found)

	return usr.ID
}

func strPtr(s string) *string {
	return &s
}

func assertKind(t *testing.T, err error, kind apperr.Kind) {
	t.Helper()

	var domainErr *apperr.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, kind, domainErr.Kind)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	testCases := []struct {
		name    string
		request models.RegisterRequest
	}{
		{"short name", models.RegisterRequest{Name: "ab", Email: "a@x.com", Password: "secret1"}},
		{"long name", models.RegisterRequest{Name: strings.Repeat("n", 31), Email: "a@x.com", Password: "secret1"}},
		{"missing email", models.RegisterRequest{Name: "Alice", Password: "secret1"}},
		{"bad email", models.RegisterRequest{Name: "Alice", Email: "not-an-email", Password: "secret1"}},
		{"short password", models.RegisterRequest{Name: "Alice", Email: "a@x.com", Password: "12345"}},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			_, err := svc.Register(ctx, &testCase.request)
			assertKind(t, err, apperr.KindBadRequest)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	request := &models.RegisterRequest{Name: "Alice", Email: "a@x.com", Password: "secret1"}

	_, err := svc.Register(ctx, request)
	require.NoError(t, err)

	_, err = svc.Register(ctx, request)
	assertKind(t, err, apperr.KindConflict)
}

func TestRegisterThenLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	token, err := svc.Register(ctx, &models.RegisterRequest{
		Name:     "A",
		Email:    "a@x.com",
		Password: "secret1",
	})
	// single-letter names are rejected, the scenario needs a valid one
	assertKind(t, err, apperr.KindBadRequest)
	require.Nil(t, token)

	token, err = svc.Register(ctx, &models.RegisterRequest{
		Name:     "Alice",
		Email:    "a@x.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)

	loggedIn, err := svc.Login(ctx, &models.LoginRequest{Email: "a@x.com", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, loggedIn.Token)

	_, err = svc.Login(ctx, &models.LoginRequest{Email: "a@x.com", Password: "wrong"})
	assertKind(t, err, apperr.KindUnauthenticated)
}

func TestLoginUnknownEmailAndWrongPasswordAreIdentical(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	registerTestUser(t, svc, "a@x.com")

	_, errUnknown := svc.Login(ctx, &models.LoginRequest{Email: "b@x.com", Password: "secret1"})
	_, errWrong := svc.Login(ctx, &models.LoginRequest{Email: "a@x.com", Password: "wrong"})

	require.Error(t, errUnknown)
	require.Error(t, errWrong)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
	assertKind(t, errUnknown, apperr.KindUnauthenticated)
	assertKind(t, errWrong, apperr.KindUnauthenticated)
}

func TestCreateTodoTitleValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	ownerID := registerTestUser(t, svc, "owner@x.com")

	testCases := []struct {
		name  string
		title *string
		valid bool
	}{
		{"missing title", nil, false},
		{"empty title", strPtr(""), false},
		{"whitespace only", strPtr("   \t "), false},
		{"too short", strPtr("ab"), false},
		{"too short after trim", strPtr("  ab  "), false},
		{"too long", strPtr(strings.Repeat("x", 51)), false},
		{"minimum length", strPtr("abc"), true},
		{"maximum length", strPtr(strings.Repeat("x", 50)), true},
		{"long but trims into range", strPtr("  " + strings.Repeat("x", 50) + "  "), true},
		{"regular title", strPtr("Valid Title"), true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			item, err := svc.CreateTodo(ctx, ownerID, &models.TodoWriteRequest{Title: testCase.title})
			if !testCase.valid {
				assertKind(t, err, apperr.KindBadRequest)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, strings.TrimSpace(*testCase.title), item.Title)
		})
	}
}

func TestCreateTodoStoresTrimmedTitle(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	ownerID := registerTestUser(t, svc, "owner@x.com")

	item, err := svc.CreateTodo(ctx, ownerID, &models.TodoWriteRequest{
		Title:       strPtr("  Buy milk  "),
		Description: strPtr("two liters"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", item.Title)

	detail, err := svc.GetTodo(ctx, ownerID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Buy milk", detail.Todo.Title)
	assert.Equal(t, "two liters", detail.Todo.Description)
}

func TestDisplayIDsAreSequential(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	firstOwner := registerTestUser(t, svc, "one@x.com")
	secondOwner := registerTestUser(t, svc, "two@x.com")

	// ids are allocated across the whole collection, not per owner
	owners := []string{firstOwner, secondOwner, firstOwner, secondOwner, firstOwner}
	for i, ownerID := range owners {
		item, err := svc.CreateTodo(ctx, ownerID, &models.TodoWriteRequest{Title: strPtr("Sequential check")})
		require.NoError(t, err)
		assert.Equal(t, i+1, item.ID)
	}
}

func TestOwnershipIsolation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	owner := registerTestUser(t, svc, "owner@x.com")
	stranger := registerTestUser(t, svc, "stranger@x.com")

	item, err := svc.CreateTodo(ctx, owner, &models.TodoWriteRequest{Title: strPtr("Private item")})
	require.NoError(t, err)

	_, err = svc.GetTodo(ctx, stranger, item.ID)
	assertKind(t, err, apperr.KindNotFound)

	_, err = svc.UpdateTodo(ctx, stranger, item.ID, &models.TodoWriteRequest{Title: strPtr("Hijacked")})
	assertKind(t, err, apperr.KindNotFound)

	err = svc.DeleteTodo(ctx, stranger, item.ID)
	assertKind(t, err, apperr.KindNotFound)

	list, err := svc.ListTodos(ctx, stranger, 1)
	require.NoError(t, err)
	assert.Empty(t, list.Data)
	assert.EqualValues(t, 0, list.TotalTodos)

	// the owner still sees the untouched todo
	detail, err := svc.GetTodo(ctx, owner, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Private item", detail.Todo.Title)
}

func TestUpdateTodo(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	ownerID := registerTestUser(t, svc, "owner@x.com")

	item, err := svc.CreateTodo(ctx, ownerID, &models.TodoWriteRequest{
		Title:       strPtr("Valid Title"),
		Description: strPtr("original"),
	})
	require.NoError(t, err)

	_, err = svc.UpdateTodo(ctx, ownerID, item.ID, &models.TodoWriteRequest{})
	assertKind(t, err, apperr.KindBadRequest)

	updated, err := svc.UpdateTodo(ctx, ownerID, item.ID, &models.TodoWriteRequest{
		Description: strPtr("only the description"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Valid Title", updated.Title)
	assert.Equal(t, "only the description", updated.Description)

	updated, err = svc.UpdateTodo(ctx, ownerID, item.ID, &models.TodoWriteRequest{
		Title: strPtr("  New Title  "),
	})
	require.NoError(t, err)
	assert.Equal(t, "New Title", updated.Title)
	assert.Equal(t, "only the description", updated.Description)

	_, err = svc.UpdateTodo(ctx, ownerID, item.ID, &models.TodoWriteRequest{Title: strPtr("ab")})
	assertKind(t, err, apperr.KindBadRequest)

	_, err = svc.UpdateTodo(ctx, ownerID, 9999, &models.TodoWriteRequest{Title: strPtr("New Title")})
	assertKind(t, err, apperr.KindNotFound)
}

func TestDeleteTodoTwice(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	ownerID := registerTestUser(t, svc, "owner@x.com")

	item, err := svc.CreateTodo(ctx, ownerID, &models.TodoWriteRequest{Title: strPtr("Short lived")})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTodo(ctx, ownerID, item.ID))

	err = svc.DeleteTodo(ctx, ownerID, item.ID)
	assertKind(t, err, apperr.KindNotFound)
}

func TestListTodosPagination(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	ownerID := registerTestUser(t, svc, "owner@x.com")

	for i := 0; i < 11; i++ {
		_, err := svc.CreateTodo(ctx, ownerID, &models.TodoWriteRequest{Title: strPtr("Paginated item")})
		require.NoError(t, err)
	}

	firstPage, err := svc.ListTodos(ctx, ownerID, 1)
	require.NoError(t, err)
	assert.Len(t, firstPage.Data, 10)
	assert.Equal(t, 1, firstPage.Page)
	assert.Equal(t, 2, firstPage.PageCount)
	assert.EqualValues(t, 11, firstPage.TotalTodos)

	secondPage, err := svc.ListTodos(ctx, ownerID, 2)
	require.NoError(t, err)
	assert.Len(t, secondPage.Data, 1)
	assert.Equal(t, 2, secondPage.Page)

	// every item appears exactly once across the pages
	seen := map[int]bool{}
	for _, item := range append(firstPage.Data, secondPage.Data...) {
		assert.False(t, seen[item.ID])
		seen[item.ID] = true
	}
	assert.Len(t, seen, 11)
}

func TestListTodosPageClamping(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	ownerID := registerTestUser(t, svc, "owner@x.com")

	for i := 0; i < 25; i++ {
		_, err := svc.CreateTodo(ctx, ownerID, &models.TodoWriteRequest{Title: strPtr("Clamped item")})
		require.NoError(t, err)
	}

	firstPage, err := svc.ListTodos(ctx, ownerID, 1)
	require.NoError(t, err)

	lastPage, err := svc.ListTodos(ctx, ownerID, 3)
	require.NoError(t, err)
	assert.Len(t, lastPage.Data, 5)

	testCases := []struct {
		name          string
		page          int
		expectedPage  int
		expectedItems []models.TodoItem
	}{
		{"zero clamps to first page", 0, 1, firstPage.Data},
		{"negative clamps to first page", -3, 1, firstPage.Data},
		{"beyond last clamps to last page", 99, 3, lastPage.Data},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			list, err := svc.ListTodos(ctx, ownerID, testCase.page)
			require.NoError(t, err)
			assert.Equal(t, testCase.expectedPage, list.Page)
			assert.Equal(t, 3, list.PageCount)
			assert.Equal(t, testCase.expectedItems, list.Data)
		})
	}
}

func TestListTodosEmptyCollection(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	ownerID := registerTestUser(t, svc, "owner@x.com")

	list, err := svc.ListTodos(ctx, ownerID, 1)
	require.NoError(t, err)
	assert.Empty(t, list.Data)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 1, list.PageCount)
	assert.EqualValues(t, 0, list.TotalTodos)
}

func TestListTodosNewestFirst(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	ownerID := registerTestUser(t, svc, "owner@x.com")

	titles := []string{"first", "second", "third"}
	for _, title := range titles {
		_, err := svc.CreateTodo(ctx, ownerID, &models.TodoWriteRequest{Title: strPtr(title + " item")})
		require.NoError(t, err)
	}

	list, err := svc.ListTodos(ctx, ownerID, 1)
	require.NoError(t, err)
	require.Len(t, list.Data, 3)
	assert.Equal(t, "third item", list.Data[0].Title)
	assert.Equal(t, "second item", list.Data[1].Title)
	assert.Equal(t, "first item", list.Data[2].Title)
}

func TestStats(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	firstOwner := registerTestUser(t, svc, "one@x.com")
	registerTestUser(t, svc, "two@x.com")

	for i := 0; i < 3; i++ {
		_, err := svc.CreateTodo(ctx, firstOwner, &models.TodoWriteRequest{Title: strPtr("Counted item")})
		require.NoError(t, err)
	}

	stats, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.Users)
	assert.EqualValues(t, 3, stats.Todos)
}
