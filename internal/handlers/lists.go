package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"todolist-web/internal/lists"
	"todolist-web/internal/models"
	"todolist-web/internal/session"
	"todolist-web/internal/web"

	"github.com/gin-gonic/gin"
)

// ListHandler handles todo list pages
type ListHandler struct {
	manager *lists.Manager
}

// NewListHandler creates a new list handler
func NewListHandler(manager *lists.Manager) *ListHandler {
	return &ListHandler{manager: manager}
}

// Index handles GET /
func (h *ListHandler) Index(c *gin.Context) {
	c.Redirect(http.StatusFound, "/lists")
}

// GetAllLists handles GET /lists
func (h *ListHandler) GetAllLists(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	renderPage(c, s, http.StatusOK, web.PageLists, web.Page{
		Title: "Lists",
		Lists: s.Data.Lists,
	})
}

// NewList handles GET /lists/new
func (h *ListHandler) NewList(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	renderPage(c, s, http.StatusOK, web.PageNewList, web.Page{Title: "New List"})
}

// CreateList handles POST /lists
func (h *ListHandler) CreateList(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	// Missing fields bind as empty and fail validation
	var form models.ListForm
	_ = c.ShouldBind(&form)

	_, err := h.manager.CreateList(s.Data, form.Name)
	var validationErr *lists.ValidationError
	if errors.As(err, &validationErr) {
		renderPage(c, s, http.StatusUnprocessableEntity, web.PageNewList, web.Page{
			Title:    "New List",
			Error:    validationErr.Message,
			ListName: form.Name,
		})
		return
	}

	s.SetSuccess("The list has been created.")
	redirectTo(c, "/lists")
}

// GetList handles GET /lists/:id
func (h *ListHandler) GetList(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	list, err := h.findList(c, s.Data)
	if err != nil {
		notFound(c, s, err)
		return
	}

	renderPage(c, s, http.StatusOK, web.PageList, web.Page{
		Title: list.Name,
		List:  list,
	})
}

// EditList handles GET /lists/:id/edit
func (h *ListHandler) EditList(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	list, err := h.findList(c, s.Data)
	if err != nil {
		notFound(c, s, err)
		return
	}

	renderPage(c, s, http.StatusOK, web.PageEditList, web.Page{
		Title:    "Edit " + list.Name,
		List:     list,
		ListName: list.Name,
	})
}

// UpdateList handles POST /lists/:id
func (h *ListHandler) UpdateList(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	listID, ok := paramID(c, "id")
	if !ok {
		notFound(c, s, lists.ErrListNotFound)
		return
	}

	var form models.ListForm
	_ = c.ShouldBind(&form)

	list, err := h.manager.RenameList(s.Data, listID, form.Name)
	var validationErr *lists.ValidationError
	switch {
	case errors.As(err, &validationErr):
		current, _ := h.manager.FindList(s.Data, listID)
		renderPage(c, s, http.StatusUnprocessableEntity, web.PageEditList, web.Page{
			Title:    "Edit " + current.Name,
			Error:    validationErr.Message,
			List:     current,
			ListName: form.Name,
		})
		return
	case err != nil:
		notFound(c, s, err)
		return
	}

	s.SetSuccess("The list has been updated.")
	redirectTo(c, fmt.Sprintf("/lists/%d", list.ID))
}

// DeleteList handles POST /lists/:id/delete
func (h *ListHandler) DeleteList(c *gin.Context) {
	s, ok := currentSession(c)
	if !ok {
		return
	}

	listID, ok := paramID(c, "id")
	if !ok {
		notFound(c, s, lists.ErrListNotFound)
		return
	}

	deleted, err := h.manager.DeleteList(s.Data, listID)
	if err != nil {
		notFound(c, s, err)
		return
	}

	s.SetSuccess(fmt.Sprintf("The list \"%s\" has been deleted.", deleted.Name))
	if isXHR(c) {
		if err := session.Persist(c); err != nil {
			storeFailure(c, err)
			return
		}
		c.String(http.StatusOK, "/lists")
		return
	}
	redirectTo(c, "/lists")
}

// findList resolves the :id route parameter against the session
func (h *ListHandler) findList(c *gin.Context, data *models.SessionData) (*models.List, error) {
	listID, ok := paramID(c, "id")
	if !ok {
		return nil, lists.ErrListNotFound
	}
	return h.manager.FindList(data, listID)
}
