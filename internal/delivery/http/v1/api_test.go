package v1

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexedwards/argon2id"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/bharatnilam/my-laravel-api-2/internal/models"
	"github.com/bharatnilam/my-laravel-api-2/internal/services"
	"github.com/bharatnilam/my-laravel-api-2/internal/storage"
)

type testAPI struct {
	router *gin.Engine
	store  *storage.MemoryStore
	user   *models.User
	token  string
}

// newTestAPI wires the real router against the in-memory stores and
// seeds the well-known test user, returning a ready bearer token.
func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := storage.NewMemoryStore()
	logger := zerolog.Nop()

	hash, err := argon2id.CreateHash("password", argon2id.DefaultParams)
	if err != nil {
		t.Fatalf("CreateHash: %v", err)
	}
	user, err := store.CreateUser(context.Background(), &models.User{
		Name:     "Test User",
		Email:    "test@example.com",
		Password: hash,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	authService := services.NewAuthService(logger, store, store, 32)
	taskService := services.NewTaskService(logger, store, store)

	router := gin.New()
	RegisterRoutes(router, New(logger, authService, taskService))

	result, err := authService.Login(context.Background(), services.LoginParams{
		Email:    "test@example.com",
		Password: "password",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	return &testAPI{
		router: router,
		store:  store,
		user:   user,
		token:  result.Token,
	}
}

func (api *testAPI) request(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	return w
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return body
}

func (api *testAPI) createTask(t *testing.T, body any) map[string]any {
	t.Helper()
	w := api.request(t, http.MethodPost, "/tasks", api.token, body)
	if w.Code != http.StatusCreated {
		t.Fatalf("create task: status %d, body %s", w.Code, w.Body.String())
	}
	task, ok := decodeJSON(t, w)["task"].(map[string]any)
	if !ok {
		t.Fatalf("create task: missing task object in %s", w.Body.String())
	}
	return task
}

func TestHealthCheck(t *testing.T) {
	api := newTestAPI(t)

	w := api.request(t, http.MethodGet, "/healthcheck", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestProtectedEndpointsRequireAuth(t *testing.T) {
	api := newTestAPI(t)

	tests := []struct {
		method string
		path   string
		body   any
	}{
		{http.MethodGet, "/tasks", nil},
		{http.MethodPost, "/tasks", gin.H{"title": "should not be created"}},
		{http.MethodGet, "/tasks/some-id", nil},
		{http.MethodPut, "/tasks/some-id", gin.H{"title": "nope"}},
		{http.MethodDelete, "/tasks/some-id", nil},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := api.request(t, tt.method, tt.path, "", tt.body)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("no token: status = %d, want 401", w.Code)
			}

			w = api.request(t, tt.method, tt.path, "bogus-token", tt.body)
			if w.Code != http.StatusUnauthorized {
				t.Errorf("bad token: status = %d, want 401", w.Code)
			}
		})
	}

	if api.store.TaskCount() != 0 {
		t.Errorf("unauthenticated requests must not mutate the store, found %d tasks", api.store.TaskCount())
	}
}

func TestLoginScenario(t *testing.T) {
	api := newTestAPI(t)

	w := api.request(t, http.MethodPost, "/login", "", gin.H{
		"email":    "test@example.com",
		"password": "password",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	body := decodeJSON(t, w)
	if body["message"] != "Login successful" {
		t.Errorf("message = %v", body["message"])
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Error("expected a non-empty token")
	}
	user, ok := body["user"].(map[string]any)
	if !ok {
		t.Fatal("expected a user object")
	}
	if user["email"] != "test@example.com" {
		t.Errorf("user email = %v", user["email"])
	}
	if _, leaked := user["password"]; leaked {
		t.Error("the user projection must never carry the password")
	}

	w = api.request(t, http.MethodPost, "/login", "", gin.H{
		"email":    "test@example.com",
		"password": "wrong-password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status = %d", w.Code)
	}
	if decodeJSON(t, w)["message"] != "Invalid credentials" {
		t.Errorf("message = %v", decodeJSON(t, w)["message"])
	}

	w = api.request(t, http.MethodPost, "/login", "", gin.H{
		"email":    "nobody@example.com",
		"password": "password",
	})
	if w.Code != http.StatusUnauthorized {
		t.Errorf("unknown email: status = %d, want the same 401", w.Code)
	}
}

func TestLoginValidationErrors(t *testing.T) {
	api := newTestAPI(t)

	w := api.request(t, http.MethodPost, "/login", "", gin.H{"email": "not-an-email"})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	errs, ok := decodeJSON(t, w)["errors"].(map[string]any)
	if !ok {
		t.Fatalf("expected an errors object in %s", w.Body.String())
	}
	if errs["email"] == nil || errs["password"] == nil {
		t.Errorf("expected errors on email and password, got %v", errs)
	}
}

func TestCreateTask(t *testing.T) {
	api := newTestAPI(t)

	task := api.createTask(t, gin.H{"title": "Buy milk"})
	if task["status"] != models.StatusPending {
		t.Errorf("status = %v, want %q", task["status"], models.StatusPending)
	}
	if task["priority"] != models.PriorityMedium {
		t.Errorf("priority = %v, want %q", task["priority"], models.PriorityMedium)
	}
	if task["user_id"] != api.user.ID {
		t.Errorf("user_id = %v, want caller %q", task["user_id"], api.user.ID)
	}
	if api.store.TaskCount() != 1 {
		t.Errorf("store holds %d tasks, want 1", api.store.TaskCount())
	}
}

func TestCreateTaskValidationErrors(t *testing.T) {
	api := newTestAPI(t)

	w := api.request(t, http.MethodPost, "/tasks", api.token, gin.H{
		"description": "attempt to create a task with a missing title",
	})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	errs, ok := decodeJSON(t, w)["errors"].(map[string]any)
	if !ok {
		t.Fatalf("expected an errors object in %s", w.Body.String())
	}
	if errs["title"] == nil {
		t.Errorf("expected errors.title, got %v", errs)
	}
	if api.store.TaskCount() != 0 {
		t.Errorf("rejected input must not persist, found %d tasks", api.store.TaskCount())
	}
}

func TestListTasks(t *testing.T) {
	api := newTestAPI(t)
	api.createTask(t, gin.H{"title": "first", "description": "with description"})
	api.createTask(t, gin.H{"title": "second"})

	w := api.request(t, http.MethodGet, "/tasks", api.token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var tasks []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("got %d tasks, want 2", len(tasks))
	}
	if tasks[0]["title"] != "second" {
		t.Errorf("expected newest first, got %v", tasks[0]["title"])
	}
	for _, task := range tasks {
		user, ok := task["user"].(map[string]any)
		if !ok {
			t.Fatalf("task %v missing its user object", task["title"])
		}
		if user["id"] != api.user.ID {
			t.Errorf("user id = %v", user["id"])
		}
	}
}

func TestGetTask(t *testing.T) {
	api := newTestAPI(t)
	created := api.createTask(t, gin.H{"title": "readable"})

	w := api.request(t, http.MethodGet, "/tasks/"+created["id"].(string), api.token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	task := decodeJSON(t, w)
	if task["title"] != "readable" {
		t.Errorf("title = %v", task["title"])
	}
	if _, ok := task["user"].(map[string]any); !ok {
		t.Error("expected the user object on a single task read")
	}

	w = api.request(t, http.MethodGet, "/tasks/does-not-exist", api.token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", w.Code)
	}
}

func TestUpdateTaskPartial(t *testing.T) {
	api := newTestAPI(t)
	created := api.createTask(t, gin.H{
		"title":       "original title",
		"description": "original description",
		"status":      models.StatusInProgress,
		"priority":    models.PriorityHigh,
	})

	w := api.request(t, http.MethodPut, "/tasks/"+created["id"].(string), api.token, gin.H{
		"title": "updated title",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	body := decodeJSON(t, w)
	if body["message"] != "Task updated successfully" {
		t.Errorf("message = %v", body["message"])
	}
	task, ok := body["task"].(map[string]any)
	if !ok {
		t.Fatalf("missing task object in %s", w.Body.String())
	}
	if task["title"] != "updated title" {
		t.Errorf("title = %v", task["title"])
	}
	if task["description"] != "original description" {
		t.Errorf("description changed: %v", task["description"])
	}
	if task["status"] != models.StatusInProgress || task["priority"] != models.PriorityHigh {
		t.Errorf("status/priority changed: %v/%v", task["status"], task["priority"])
	}
	if task["user_id"] != api.user.ID {
		t.Errorf("owner changed: %v", task["user_id"])
	}
}

func TestUpdateTaskErrors(t *testing.T) {
	api := newTestAPI(t)
	created := api.createTask(t, gin.H{"title": "fine"})

	w := api.request(t, http.MethodPut, "/tasks/"+created["id"].(string), api.token, gin.H{"title": ""})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("empty title: status = %d", w.Code)
	}
	errs, _ := decodeJSON(t, w)["errors"].(map[string]any)
	if errs["title"] == nil {
		t.Errorf("expected errors.title, got %v", errs)
	}

	w = api.request(t, http.MethodPut, "/tasks/does-not-exist", api.token, gin.H{"title": "anything"})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown id: status = %d, want 404", w.Code)
	}

	// The lookup decides before validation does: an invalid payload
	// against an unknown id is still a 404, never a 422.
	w = api.request(t, http.MethodPut, "/tasks/does-not-exist", api.token, gin.H{"title": ""})
	if w.Code != http.StatusNotFound {
		t.Errorf("unknown id with invalid payload: status = %d, want 404", w.Code)
	}
}

func TestUpdateTaskNullFields(t *testing.T) {
	api := newTestAPI(t)
	created := api.createTask(t, gin.H{
		"title":       "keep me",
		"description": "to be cleared",
		"due_date":    "2026-09-15 09:30:00",
	})
	id := created["id"].(string)

	// Title is required, so an explicit null is rejected like an
	// empty string would be.
	w := api.request(t, http.MethodPut, "/tasks/"+id, api.token, gin.H{"title": nil})
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("null title: status = %d, want 422, body %s", w.Code, w.Body.String())
	}
	errs, _ := decodeJSON(t, w)["errors"].(map[string]any)
	if errs["title"] == nil {
		t.Errorf("expected errors.title, got %v", errs)
	}

	// The nullable fields accept an explicit null and clear.
	w = api.request(t, http.MethodPut, "/tasks/"+id, api.token, gin.H{
		"description": nil,
		"due_date":    nil,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("clear nullable fields: status = %d, body %s", w.Code, w.Body.String())
	}
	task, _ := decodeJSON(t, w)["task"].(map[string]any)
	if task["description"] != nil {
		t.Errorf("description = %v, want null", task["description"])
	}
	if task["due_date"] != nil {
		t.Errorf("due_date = %v, want null", task["due_date"])
	}
	if task["title"] != "keep me" {
		t.Errorf("title = %v", task["title"])
	}

	w = api.request(t, http.MethodGet, "/tasks/"+id, api.token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("read back: status = %d", w.Code)
	}
	got := decodeJSON(t, w)
	if got["description"] != nil || got["due_date"] != nil {
		t.Errorf("cleared fields came back: %v / %v", got["description"], got["due_date"])
	}
}

func TestPatchUpdatesTask(t *testing.T) {
	api := newTestAPI(t)
	created := api.createTask(t, gin.H{"title": "patch me"})

	w := api.request(t, http.MethodPatch, "/tasks/"+created["id"].(string), api.token, gin.H{
		"status": models.StatusCompleted,
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	task, _ := decodeJSON(t, w)["task"].(map[string]any)
	if task["status"] != models.StatusCompleted {
		t.Errorf("status = %v", task["status"])
	}
	if task["title"] != "patch me" {
		t.Errorf("title changed: %v", task["title"])
	}
}

func TestDeleteTask(t *testing.T) {
	api := newTestAPI(t)
	created := api.createTask(t, gin.H{"title": "doomed"})
	id := created["id"].(string)

	w := api.request(t, http.MethodDelete, "/tasks/"+id, api.token, nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
	if w.Body.Len() != 0 {
		t.Errorf("delete must not carry a body, got %q", w.Body.String())
	}

	w = api.request(t, http.MethodGet, "/tasks/"+id, api.token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("get after delete: status = %d, want 404", w.Code)
	}

	w = api.request(t, http.MethodDelete, "/tasks/"+id, api.token, nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete: status = %d, want 404", w.Code)
	}
}

func TestDueDateRoundTrip(t *testing.T) {
	api := newTestAPI(t)
	created := api.createTask(t, gin.H{
		"title":    "with a deadline",
		"due_date": "2026-09-15 09:30:00",
	})
	if created["due_date"] != "2026-09-15 09:30:00" {
		t.Errorf("created due_date = %v", created["due_date"])
	}

	w := api.request(t, http.MethodGet, "/tasks/"+created["id"].(string), api.token, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := decodeJSON(t, w)["due_date"]; got != "2026-09-15 09:30:00" {
		t.Errorf("read-back due_date = %v", got)
	}
}

func TestMalformedBody(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/tasks", bytes.NewReader([]byte("{not json")))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+api.token)

	w := httptest.NewRecorder()
	api.router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}
