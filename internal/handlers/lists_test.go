package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"todolist-web/internal/lists"
	"todolist-web/internal/models"
	"todolist-web/internal/session"
	"todolist-web/internal/storage"
	"todolist-web/internal/testutil"
	"todolist-web/internal/web"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSessionID = "00000000-0000-0000-0000-000000000000"

// handlerTest is a gin context with a session attached, as the session
// middleware would leave it
type handlerTest struct {
	c       *gin.Context
	w       *httptest.ResponseRecorder
	session *session.Session
	store   *storage.Storage
}

func newHandlerTest(t *testing.T, data *models.SessionData, req *http.Request, params ...gin.Param) *handlerTest {
	t.Helper()
	gin.SetMode(gin.TestMode)

	renderer, err := web.NewRenderer()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	c, engine := gin.CreateTestContext(w)
	engine.HTMLRender = renderer
	c.Request = req
	c.Params = params

	store := storage.NewStorage()
	s := session.New(testSessionID, data, store, time.Hour)
	session.Attach(c, s)

	return &handlerTest{c: c, w: w, session: s, store: store}
}

// serve runs handler and flushes the status, as gin's engine does once the
// chain finishes. Redirects write no body, so the recorder would otherwise
// still report 200.
func (ht *handlerTest) serve(handler gin.HandlerFunc) {
	handler(ht.c)
	ht.c.Writer.WriteHeaderNow()
}

// saved returns what the handler persisted for the session
func (ht *handlerTest) saved(t *testing.T) *models.SessionData {
	t.Helper()
	data, err := ht.store.Load(context.Background(), testSessionID)
	require.NoError(t, err, "session was not saved")
	return data
}

func listParam(id string) gin.Param {
	return gin.Param{Key: "id", Value: id}
}

func setupListHandler() *ListHandler {
	return NewListHandler(lists.NewManager())
}

func TestIndex(t *testing.T) {
	ht := newHandlerTest(t, models.NewSessionData(), httptest.NewRequest("GET", "/", http.NoBody))

	ht.serve(setupListHandler().Index)

	assert.Equal(t, http.StatusFound, ht.w.Code)
	assert.Equal(t, "/lists", ht.w.Header().Get("Location"))
}

func TestGetAllLists(t *testing.T) {
	t.Run("renders every list", func(t *testing.T) {
		data := testutil.SessionWithLists("Groceries", "Chores")
		ht := newHandlerTest(t, data, httptest.NewRequest("GET", "/lists", http.NoBody))

		ht.serve(setupListHandler().GetAllLists)

		assert.Equal(t, http.StatusOK, ht.w.Code)
		assert.Contains(t, ht.w.Body.String(), "<h2>Groceries</h2>")
		assert.Contains(t, ht.w.Body.String(), "<h2>Chores</h2>")
	})

	t.Run("shows and clears the flash", func(t *testing.T) {
		data := models.NewSessionData()
		data.Flash.Success = "The list has been created."
		ht := newHandlerTest(t, data, httptest.NewRequest("GET", "/lists", http.NoBody))

		ht.serve(setupListHandler().GetAllLists)

		assert.Contains(t, ht.w.Body.String(), "The list has been created.")
		assert.True(t, ht.saved(t).Flash.Empty())
	})

	t.Run("fails without a session", func(t *testing.T) {
		gin.SetMode(gin.TestMode)
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest("GET", "/lists", http.NoBody)

		setupListHandler().GetAllLists(c)

		assert.Equal(t, http.StatusInternalServerError, c.Writer.Status())
		assert.True(t, c.IsAborted())
		assert.Len(t, c.Errors, 1)
	})
}

func TestNewList(t *testing.T) {
	ht := newHandlerTest(t, models.NewSessionData(), httptest.NewRequest("GET", "/lists/new", http.NoBody))

	ht.serve(setupListHandler().NewList)

	assert.Equal(t, http.StatusOK, ht.w.Code)
	assert.Contains(t, ht.w.Body.String(), `name="list_name"`)
}

func TestCreateList(t *testing.T) {
	t.Run("creates list and redirects", func(t *testing.T) {
		req := testutil.MakeFormRequest("POST", "/lists", url.Values{"list_name": {"  Groceries  "}})
		ht := newHandlerTest(t, models.NewSessionData(), req)

		ht.serve(setupListHandler().CreateList)

		assert.Equal(t, http.StatusFound, ht.w.Code)
		assert.Equal(t, "/lists", ht.w.Header().Get("Location"))

		saved := ht.saved(t)
		require.Len(t, saved.Lists, 1)
		assert.Equal(t, 1, saved.Lists[0].ID)
		assert.Equal(t, "Groceries", saved.Lists[0].Name)
		assert.Equal(t, "The list has been created.", saved.Flash.Success)
	})

	t.Run("rejects duplicate name", func(t *testing.T) {
		data := testutil.SessionWithLists("Groceries")
		req := testutil.MakeFormRequest("POST", "/lists", url.Values{"list_name": {"Groceries"}})
		ht := newHandlerTest(t, data, req)

		ht.serve(setupListHandler().CreateList)

		assert.Equal(t, http.StatusUnprocessableEntity, ht.w.Code)
		assert.Contains(t, ht.w.Body.String(), "List name must be unique.")
		assert.Contains(t, ht.w.Body.String(), `value="Groceries"`)
		assert.Len(t, data.Lists, 1)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		req := testutil.MakeFormRequest("POST", "/lists", url.Values{"list_name": {"   "}})
		ht := newHandlerTest(t, models.NewSessionData(), req)

		ht.serve(setupListHandler().CreateList)

		assert.Equal(t, http.StatusUnprocessableEntity, ht.w.Code)
		assert.Contains(t, ht.w.Body.String(), "List name must be between 1 and 100 characters.")
		assert.Empty(t, ht.session.Data.Lists)
	})

	t.Run("rejects missing field", func(t *testing.T) {
		req := testutil.MakeFormRequest("POST", "/lists", url.Values{})
		ht := newHandlerTest(t, models.NewSessionData(), req)

		ht.serve(setupListHandler().CreateList)

		assert.Equal(t, http.StatusUnprocessableEntity, ht.w.Code)
	})

	t.Run("rejects name over 100 characters", func(t *testing.T) {
		req := testutil.MakeFormRequest("POST", "/lists", url.Values{"list_name": {strings.Repeat("a", 101)}})
		ht := newHandlerTest(t, models.NewSessionData(), req)

		ht.serve(setupListHandler().CreateList)

		assert.Equal(t, http.StatusUnprocessableEntity, ht.w.Code)
		assert.Empty(t, ht.session.Data.Lists)
	})
}

func TestGetList(t *testing.T) {
	t.Run("renders list with todos", func(t *testing.T) {
		data := testutil.SessionWithLists("Groceries")
		testutil.AddTodo(data, 0, "milk", false)
		ht := newHandlerTest(t, data, httptest.NewRequest("GET", "/lists/1", http.NoBody), listParam("1"))

		ht.serve(setupListHandler().GetList)

		assert.Equal(t, http.StatusOK, ht.w.Code)
		assert.Contains(t, ht.w.Body.String(), "<h2>Groceries</h2>")
		assert.Contains(t, ht.w.Body.String(), "<h3>milk</h3>")
	})

	t.Run("redirects unknown list with error", func(t *testing.T) {
		ht := newHandlerTest(t, models.NewSessionData(), httptest.NewRequest("GET", "/lists/9", http.NoBody), listParam("9"))

		ht.serve(setupListHandler().GetList)

		assert.Equal(t, http.StatusFound, ht.w.Code)
		assert.Equal(t, "/lists", ht.w.Header().Get("Location"))
		assert.Equal(t, "The specified list was not found.", ht.saved(t).Flash.Error)
	})

	t.Run("redirects malformed id with error", func(t *testing.T) {
		data := testutil.SessionWithLists("Groceries")
		ht := newHandlerTest(t, data, httptest.NewRequest("GET", "/lists/abc", http.NoBody), listParam("abc"))

		ht.serve(setupListHandler().GetList)

		assert.Equal(t, http.StatusFound, ht.w.Code)
		assert.Equal(t, "The specified list was not found.", ht.saved(t).Flash.Error)
	})
}

func TestEditList(t *testing.T) {
	data := testutil.SessionWithLists("Groceries")
	ht := newHandlerTest(t, data, httptest.NewRequest("GET", "/lists/1/edit", http.NoBody), listParam("1"))

	ht.serve(setupListHandler().EditList)

	assert.Equal(t, http.StatusOK, ht.w.Code)
	assert.Contains(t, ht.w.Body.String(), `action="/lists/1"`)
	assert.Contains(t, ht.w.Body.String(), `value="Groceries"`)
}

func TestUpdateList(t *testing.T) {
	t.Run("renames and redirects to the list", func(t *testing.T) {
		data := testutil.SessionWithLists("Groceries")
		req := testutil.MakeFormRequest("POST", "/lists/1", url.Values{"list_name": {"Food"}})
		ht := newHandlerTest(t, data, req, listParam("1"))

		ht.serve(setupListHandler().UpdateList)

		assert.Equal(t, http.StatusFound, ht.w.Code)
		assert.Equal(t, "/lists/1", ht.w.Header().Get("Location"))

		saved := ht.saved(t)
		assert.Equal(t, "Food", saved.Lists[0].Name)
		assert.Equal(t, "The list has been updated.", saved.Flash.Success)
	})

	t.Run("keeping the same name is allowed", func(t *testing.T) {
		data := testutil.SessionWithLists("Groceries")
		req := testutil.MakeFormRequest("POST", "/lists/1", url.Values{"list_name": {"Groceries"}})
		ht := newHandlerTest(t, data, req, listParam("1"))

		ht.serve(setupListHandler().UpdateList)

		assert.Equal(t, http.StatusFound, ht.w.Code)
	})

	t.Run("rejects another list's name", func(t *testing.T) {
		data := testutil.SessionWithLists("Groceries", "Chores")
		req := testutil.MakeFormRequest("POST", "/lists/1", url.Values{"list_name": {"Chores"}})
		ht := newHandlerTest(t, data, req, listParam("1"))

		ht.serve(setupListHandler().UpdateList)

		assert.Equal(t, http.StatusUnprocessableEntity, ht.w.Code)
		assert.Contains(t, ht.w.Body.String(), "List name must be unique.")
		assert.Equal(t, "Groceries", data.Lists[0].Name)
	})

	t.Run("redirects unknown list", func(t *testing.T) {
		req := testutil.MakeFormRequest("POST", "/lists/5", url.Values{"list_name": {"Food"}})
		ht := newHandlerTest(t, models.NewSessionData(), req, listParam("5"))

		ht.serve(setupListHandler().UpdateList)

		assert.Equal(t, http.StatusFound, ht.w.Code)
		assert.Equal(t, "/lists", ht.w.Header().Get("Location"))
	})
}

func TestDeleteList(t *testing.T) {
	t.Run("deletes list and its todos", func(t *testing.T) {
		data := testutil.SessionWithLists("Groceries", "Chores")
		testutil.AddTodo(data, 0, "milk", false)
		req := testutil.MakeFormRequest("POST", "/lists/1/delete", url.Values{})
		ht := newHandlerTest(t, data, req, listParam("1"))

		ht.serve(setupListHandler().DeleteList)

		assert.Equal(t, http.StatusFound, ht.w.Code)
		assert.Equal(t, "/lists", ht.w.Header().Get("Location"))

		saved := ht.saved(t)
		require.Len(t, saved.Lists, 1)
		assert.Equal(t, "Chores", saved.Lists[0].Name)
		assert.Equal(t, `The list "Groceries" has been deleted.`, saved.Flash.Success)
	})

	t.Run("answers XHR with the overview path", func(t *testing.T) {
		data := testutil.SessionWithLists("Groceries")
		ht := newHandlerTest(t, data, testutil.MakeXHRRequest("POST", "/lists/1/delete"), listParam("1"))

		ht.serve(setupListHandler().DeleteList)

		assert.Equal(t, http.StatusOK, ht.w.Code)
		assert.Equal(t, "/lists", ht.w.Body.String())
		assert.Empty(t, ht.saved(t).Lists)
	})

	t.Run("redirects unknown list", func(t *testing.T) {
		ht := newHandlerTest(t, models.NewSessionData(), testutil.MakeFormRequest("POST", "/lists/3/delete", url.Values{}), listParam("3"))

		ht.serve(setupListHandler().DeleteList)

		assert.Equal(t, http.StatusFound, ht.w.Code)
		assert.Equal(t, "The specified list was not found.", ht.saved(t).Flash.Error)
	})

	t.Run("deleted ids are not reused", func(t *testing.T) {
		data := testutil.SessionWithLists("Groceries", "Chores")
		ht := newHandlerTest(t, data, testutil.MakeFormRequest("POST", "/lists/2/delete", url.Values{}), listParam("2"))
		ht.serve(setupListHandler().DeleteList)

		req := testutil.MakeFormRequest("POST", "/lists", url.Values{"list_name": {"Work"}})
		ht = newHandlerTest(t, ht.saved(t), req)
		ht.serve(setupListHandler().CreateList)

		saved := ht.saved(t)
		require.Len(t, saved.Lists, 2)
		assert.Equal(t, 3, saved.Lists[1].ID)
	})
}
