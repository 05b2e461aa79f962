package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"todolist-web/internal/lists"
	"todolist-web/internal/logging"
	"todolist-web/internal/models"
	"todolist-web/internal/session"
	"todolist-web/internal/web"

	"github.com/gin-gonic/gin"
)

// TodoHandler handles todo operations within a list
type TodoHandler struct {
	manager *lists.Manager
}

// NewTodoHandler creates a new todo handler
func NewTodoHandler(manager *lists.Manager) *TodoHandler {
	return &TodoHandler{manager: manager}
}

// CreateTodo handles POST /lists/:id/todos
func (h *TodoHandler) CreateTodo(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	listID, ok := paramID(c, "id")
	if !ok {
		notFound(c, s, lists.ErrListNotFound)
		return
	}

	var form models.TodoForm
	_ = c.ShouldBind(&form)

	todo, err := h.manager.CreateTodo(s.Data, listID, form.Name)
	var validationErr *lists.ValidationError
	switch {
	case errors.As(err, &validationErr):
		list, _ := h.manager.FindList(s.Data, listID)
		renderPage(c, s, http.StatusUnprocessableEntity, web.PageList, web.Page{
			Title:    list.Name,
			Error:    validationErr.Message,
			List:     list,
			TodoName: form.Name,
		})
		return
	case err != nil:
		notFound(c, s, err)
		return
	}

	s.SetSuccess(fmt.Sprintf("%s was added to the list!", todo.Name))
	redirectTo(c, listPath(listID))
}

// DeleteTodo handles POST /lists/:id/todos/:todo_id/delete
func (h *TodoHandler) DeleteTodo(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	listID, todoID, err := todoParams(c)
	if err == nil {
		err = h.manager.DeleteTodo(s.Data, listID, todoID)
	}
	if err != nil {
		notFound(c, s, err)
		return
	}

	s.SetSuccess("The todo has been deleted!")
	if isXHR(c) {
		if err := session.Persist(c); err != nil {
			storeFailure(c, err)
			return
		}
		c.Status(http.StatusNoContent)
		return
	}
	redirectTo(c, listPath(listID))
}

// UpdateTodo handles POST /lists/:id/todos/:todo_id/complete
func (h *TodoHandler) UpdateTodo(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	listID, todoID, err := todoParams(c)
	if err != nil {
		notFound(c, s, err)
		return
	}

	var form models.CompleteForm
	if err := c.ShouldBind(&form); err != nil {
		logging.ForSession(s.ID).WithError(err).Warn("Unreadable todo update form")
		s.SetError(msgTodoNotUpdated)
		redirectTo(c, listPath(listID))
		return
	}

	if _, err := h.manager.SetTodoComplete(s.Data, listID, todoID, form.Complete == "true"); err != nil {
		notFound(c, s, err)
		return
	}

	s.SetSuccess("Todo has been updated.")
	redirectTo(c, listPath(listID))
}

// CompleteAll handles POST /lists/:id/complete-all
func (h *TodoHandler) CompleteAll(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	listID, ok := paramID(c, "id")
	if !ok {
		notFound(c, s, lists.ErrListNotFound)
		return
	}

	if _, err := h.manager.CompleteAll(s.Data, listID); err != nil {
		notFound(c, s, err)
		return
	}

	s.SetSuccess("All todos have been accomplished!")
	redirectTo(c, listPath(listID))
}

// todoParams parses :id and :todo_id, reporting which one is malformed
func todoParams(c *gin.Context) (int, int, error) {
	listID, ok := paramID(c, "id")
	if !ok {
		return 0, 0, lists.ErrListNotFound
	}
	todoID, ok := paramID(c, "todo_id")
	if !ok {
		return 0, 0, lists.ErrTodoNotFound
	}
	return listID, todoID, nil
}

func listPath(listID int) string {
	return fmt.Sprintf("/lists/%d", listID)
}
