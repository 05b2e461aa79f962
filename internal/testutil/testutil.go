package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"todolist-web/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database with the sessions table
func SetupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "Failed to open test database")

	// Every new connection to :memory: is a fresh database
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.SessionRecord{})
	require.NoError(t, err, "Failed to create sessions table")

	return db
}

// CleanupTestDB closes the test database
func CleanupTestDB(t *testing.T, db *gorm.DB) {
	sqlDB, err := db.DB()
	require.NoError(t, err)
	err = sqlDB.Close()
	require.NoError(t, err)
}

// SessionWithLists builds session data holding lists with the given names
func SessionWithLists(names ...string) *models.SessionData {
	data := models.NewSessionData()
	for _, name := range names {
		data.LastListID++
		data.Lists = append(data.Lists, models.List{
			ID:    data.LastListID,
			Name:  name,
			Todos: make([]models.Todo, 0),
		})
	}
	return data
}

// AddTodo appends a todo to the list at index i of data
func AddTodo(data *models.SessionData, i int, name string, complete bool) models.Todo {
	list := &data.Lists[i]
	list.LastTodoID++
	todo := models.Todo{ID: list.LastTodoID, Name: name, Complete: complete}
	list.Todos = append(list.Todos, todo)
	return todo
}

// MakeFormRequest creates an HTTP request with a urlencoded form body
func MakeFormRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// MakeXHRRequest creates a form request flagged as an XMLHttpRequest
func MakeXHRRequest(method, target string) *http.Request {
	req := MakeFormRequest(method, target, url.Values{})
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	return req
}

// ParseJSONResponse parses a JSON response into a target structure
func ParseJSONResponse(t *testing.T, w *httptest.ResponseRecorder, target interface{}) {
	err := json.Unmarshal(w.Body.Bytes(), target)
	require.NoError(t, err, "Failed to parse JSON response")
}

// CookieValue returns the value of the named cookie set on the response
func CookieValue(w *httptest.ResponseRecorder, name string) string {
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == name {
			return cookie.Value
		}
	}
	return ""
}
