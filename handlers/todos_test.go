package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/templateapi/go-todo/database"
	"github.com/templateapi/go-todo/handlers"
	"github.com/templateapi/go-todo/models"
	"github.com/templateapi/go-todo/repository"
	"github.com/templateapi/go-todo/router"
	"github.com/templateapi/go-todo/services"
)

var testSecret = []byte("integration-test-secret")

func newTestApp(t *testing.T, store repository.Store) *fiber.App {
	t.Helper()
	hash, err := services.HashPassword("test")
	require.NoError(t, err)
	auth := services.NewAuthService("test", hash, testSecret)

	app := fiber.New()
	router.SetupRoutes(app, handlers.NewTodoHandler(store, auth), testSecret)
	return app
}

func jsonRequest(method, target string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func bearerToken(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, err := app.Test(jsonRequest("POST", "/api/todos/authenticate",
		models.AuthUser{Username: "test", Password: "test"}))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var user models.User
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&user))
	require.NotEmpty(t, user.Token)
	return user.Token
}

func decode(t *testing.T, body io.Reader, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(body).Decode(v))
}

func TestAuthenticate(t *testing.T) {
	app := newTestApp(t, database.NewMemoryStore())

	resp, err := app.Test(jsonRequest("POST", "/api/todos/authenticate",
		models.AuthUser{Username: "test", Password: "bad_pw"}))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	token := bearerToken(t, app)
	assert.NotEmpty(t, token)
}

func TestItemRoutesRequireAuth(t *testing.T) {
	app := newTestApp(t, database.NewMemoryStore())

	for _, req := range []*http.Request{
		httptest.NewRequest("GET", "/api/todos", nil),
		httptest.NewRequest("GET", "/api/todos/1", nil),
		jsonRequest("POST", "/api/todos", models.TodoItemUpsertDTO{Name: "x"}),
		jsonRequest("PUT", "/api/todos/1", models.TodoItemUpsertDTO{Name: "x"}),
		httptest.NewRequest("DELETE", "/api/todos/1", nil),
	} {
		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, 401, resp.StatusCode, "%s %s", req.Method, req.URL.Path)
	}
}

func TestTodoItemLifecycle(t *testing.T) {
	app := newTestApp(t, database.NewMemoryStore())
	token := bearerToken(t, app)
	authed := func(req *http.Request) *http.Request {
		req.Header.Set("Authorization", "Bearer "+token)
		return req
	}

	// Create.
	resp, err := app.Test(authed(jsonRequest("POST", "/api/todos",
		models.TodoItemUpsertDTO{Name: "test", IsComplete: true})))
	require.NoError(t, err)
	require.Equal(t, 201, resp.StatusCode)

	var created models.TodoItemResponseDTO
	decode(t, resp.Body, &created)
	assert.Equal(t, "test", created.Name)
	assert.True(t, created.IsComplete)
	assert.Equal(t, 1, created.ID)
	assert.Equal(t, "/api/todos/1", resp.Header.Get("Location"))

	// Read it back.
	resp, err = app.Test(authed(httptest.NewRequest("GET", fmt.Sprintf("/api/todos/%d", created.ID), nil)))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var fetched models.TodoItemResponseDTO
	decode(t, resp.Body, &fetched)
	assert.Equal(t, created, fetched)

	// Update.
	resp, err = app.Test(authed(jsonRequest("PUT", "/api/todos/1",
		models.TodoItemUpsertDTO{Name: "updated", IsComplete: false})))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var updated models.TodoItemResponseDTO
	decode(t, resp.Body, &updated)
	assert.Equal(t, "updated", updated.Name)
	assert.False(t, updated.IsComplete)
	assert.Equal(t, 1, updated.ID)

	// Delete, then the id is gone.
	resp, err = app.Test(authed(httptest.NewRequest("DELETE", "/api/todos/1", nil)))
	require.NoError(t, err)
	assert.Equal(t, 204, resp.StatusCode)

	resp, err = app.Test(authed(httptest.NewRequest("GET", "/api/todos/1", nil)))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestNotFoundAndBadInput(t *testing.T) {
	app := newTestApp(t, database.NewMemoryStore())
	token := bearerToken(t, app)
	authed := func(req *http.Request) *http.Request {
		req.Header.Set("Authorization", "Bearer "+token)
		return req
	}

	resp, err := app.Test(authed(httptest.NewRequest("GET", "/api/todos/100", nil)))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	resp, err = app.Test(authed(jsonRequest("PUT", "/api/todos/100",
		models.TodoItemUpsertDTO{Name: "ghost"})))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	resp, err = app.Test(authed(httptest.NewRequest("DELETE", "/api/todos/100", nil)))
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)

	// Absent payload on update.
	req := httptest.NewRequest("PUT", "/api/todos/1", nil)
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(authed(req))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)

	// Non-integer id.
	resp, err = app.Test(authed(httptest.NewRequest("GET", "/api/todos/abc", nil)))
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestListPaginationMetadata(t *testing.T) {
	app := newTestApp(t, database.NewMemoryStore())
	token := bearerToken(t, app)
	authed := func(req *http.Request) *http.Request {
		req.Header.Set("Authorization", "Bearer "+token)
		return req
	}

	for _, name := range []string{"one", "two", "three"} {
		resp, err := app.Test(authed(jsonRequest("POST", "/api/todos",
			models.TodoItemUpsertDTO{Name: name})))
		require.NoError(t, err)
		require.Equal(t, 201, resp.StatusCode)
	}

	resp, err := app.Test(authed(httptest.NewRequest("GET", "/api/todos?page=1&pageCount=2", nil)))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var metadata struct {
		TotalCount  int `json:"totalCount"`
		PageSize    int `json:"pageSize"`
		CurrentPage int `json:"currentPage"`
		TotalPages  int `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal([]byte(resp.Header.Get("X-Pagination")), &metadata))
	assert.Equal(t, 3, metadata.TotalCount)
	assert.Equal(t, 2, metadata.PageSize)
	assert.Equal(t, 1, metadata.CurrentPage)
	assert.Equal(t, 2, metadata.TotalPages)

	var body struct {
		Value []models.TodoItemResponseDTO `json:"value"`
	}
	decode(t, resp.Body, &body)
	require.Len(t, body.Value, 2)
	assert.Equal(t, "one", body.Value[0].Name)
	assert.Equal(t, "two", body.Value[1].Name)
}

func TestListSearchFilter(t *testing.T) {
	app := newTestApp(t, database.NewMemoryStore())
	token := bearerToken(t, app)
	authed := func(req *http.Request) *http.Request {
		req.Header.Set("Authorization", "Bearer "+token)
		return req
	}

	for _, name := range []string{"buy milk", "wash car", "spill milk"} {
		resp, err := app.Test(authed(jsonRequest("POST", "/api/todos",
			models.TodoItemUpsertDTO{Name: name})))
		require.NoError(t, err)
		require.Equal(t, 201, resp.StatusCode)
	}

	resp, err := app.Test(authed(httptest.NewRequest("GET", "/api/todos?query=milk", nil)))
	require.NoError(t, err)
	require.Equal(t, 200, resp.StatusCode)

	var body struct {
		Value []models.TodoItemResponseDTO `json:"value"`
	}
	decode(t, resp.Body, &body)
	require.Len(t, body.Value, 2)
	assert.Equal(t, "buy milk", body.Value[0].Name)
	assert.Equal(t, "spill milk", body.Value[1].Name)
}

// brokenCommitStore reads normally but refuses every commit, so mutations
// stage fine and fail on save.
type brokenCommitStore struct {
	*database.MemoryStore
}

func (s *brokenCommitStore) Commit(changes []repository.Change) (int, error) {
	return -1, errors.New("commit refused")
}

func TestCommitFailureEscalatesTo500(t *testing.T) {
	seed := database.NewMemoryStore()
	_, err := seed.Commit([]repository.Change{
		{Kind: repository.ChangeInsert, ID: 1, Item: models.TodoEntity{ID: 1, Name: "stuck"}},
	})
	require.NoError(t, err)

	app := newTestApp(t, &brokenCommitStore{MemoryStore: seed})
	token := bearerToken(t, app)
	authed := func(req *http.Request) *http.Request {
		req.Header.Set("Authorization", "Bearer "+token)
		return req
	}

	resp, err := app.Test(authed(jsonRequest("PUT", "/api/todos/1",
		models.TodoItemUpsertDTO{Name: "nope"})))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)

	resp, err = app.Test(authed(httptest.NewRequest("DELETE", "/api/todos/1", nil)))
	require.NoError(t, err)
	assert.Equal(t, 500, resp.StatusCode)
}

func TestConcurrentCreates(t *testing.T) {
	store := database.NewMemoryStore()
	app := newTestApp(t, store)
	token := bearerToken(t, app)

	// Parallel creates each run against their own request-scoped
	// repository; every insert must land in the shared store.
	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			req := jsonRequest("POST", "/api/todos",
				models.TodoItemUpsertDTO{Name: fmt.Sprintf("item %d", n)})
			req.Header.Set("Authorization", "Bearer "+token)
			resp, err := app.Test(req)
			assert.NoError(t, err)
			assert.Equal(t, 201, resp.StatusCode)
		}(i)
	}
	wg.Wait()

	count, err := store.Count()
	require.NoError(t, err)
	assert.Equal(t, workers, count)
}

func TestHealthCheck(t *testing.T) {
	app := newTestApp(t, database.NewMemoryStore())

	resp, err := app.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
}
