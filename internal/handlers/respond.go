package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"todolist-web/internal/lists"
	"todolist-web/internal/logging"
	"todolist-web/internal/middleware"
	"todolist-web/internal/session"
	"todolist-web/internal/web"

	"github.com/gin-gonic/gin"
)

const (
	msgListNotFound = "The specified list was not found."
	msgTodoNotFound = "The specified todo was not found."

	msgTodoNotUpdated = "The todo could not be updated."
)

// Route parameters checked by middleware.IDValidator
var (
	ListIDParam = middleware.IDParam{Name: "id", Message: msgListNotFound}
	TodoIDParam = middleware.IDParam{Name: "todo_id", Message: msgTodoNotFound}
)

var errNoSession = errors.New("no session attached to request")

// currentSession returns the request's session or answers 500
func currentSession(c *gin.Context) (*session.Session, bool) {
	s := session.Current(c)
	if s == nil {
		storeFailure(c, errNoSession)
		return nil, false
	}
	return s, true
}

// renderPage consumes the pending flash messages and renders a page
func renderPage(c *gin.Context, s *session.Session, status int, name string, page web.Page) {
	page.Flash = s.TakeFlash()
	if err := session.Persist(c); err != nil {
		storeFailure(c, err)
		return
	}
	c.HTML(status, name, page)
}

// redirectTo saves the session and sends the browser elsewhere
func redirectTo(c *gin.Context, location string) {
	if err := session.Persist(c); err != nil {
		storeFailure(c, err)
		return
	}
	c.Redirect(http.StatusFound, location)
}

// notFound flashes the message for a missing list or todo and returns to the overview
func notFound(c *gin.Context, s *session.Session, err error) {
	message := msgListNotFound
	if errors.Is(err, lists.ErrTodoNotFound) {
		message = msgTodoNotFound
	}
	s.SetError(message)
	redirectTo(c, "/lists")
}

// storeFailure leaves the body to the error sanitizer
func storeFailure(c *gin.Context, err error) {
	logging.Logger.WithFields(map[string]interface{}{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	}).WithError(err).Error("Session unavailable")
	_ = c.Error(err)
	c.Status(http.StatusInternalServerError)
	c.Abort()
}

// paramID parses a positive integer route parameter
func paramID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

func isXHR(c *gin.Context) bool {
	return c.GetHeader("X-Requested-With") == "XMLHttpRequest"
}
