package lists

import (
	"errors"
	"fmt"
	"strings"

	"todolist-web/internal/models"

	"github.com/go-playground/validator/v10"
)

var (
	ErrListNotFound = errors.New("todo list not found")
	ErrTodoNotFound = errors.New("todo not found")
)

const (
	msgListNameLength = "List name must be between 1 and 100 characters."
	msgListNameUnique = "List name must be unique."
	msgTodoNameLength = "Todo must be between 1 and 100 characters."
)

// ValidationError reports user input that was rejected without touching the session
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Manager mutates the lists held by a session. It keeps no state of its own;
// every call receives the session it operates on.
type Manager struct {
	validate *validator.Validate
}

// NewManager creates a new list manager
func NewManager() *Manager {
	return &Manager{validate: validator.New()}
}

// CreateList validates name and appends a new empty list
func (m *Manager) CreateList(data *models.SessionData, name string) (*models.List, error) {
	name = strings.TrimSpace(name)
	if err := m.validateListName(data, name, 0); err != nil {
		return nil, err
	}

	data.LastListID = nextID(data.LastListID, listIDs(data.Lists))
	data.Lists = append(data.Lists, models.List{
		ID:    data.LastListID,
		Name:  name,
		Todos: make([]models.Todo, 0),
	})
	return &data.Lists[len(data.Lists)-1], nil
}

// FindList returns the list with the given ID
func (m *Manager) FindList(data *models.SessionData, listID int) (*models.List, error) {
	for i := range data.Lists {
		if data.Lists[i].ID == listID {
			return &data.Lists[i], nil
		}
	}
	return nil, ErrListNotFound
}

// RenameList changes a list's name. Keeping the current name is allowed.
func (m *Manager) RenameList(data *models.SessionData, listID int, name string) (*models.List, error) {
	list, err := m.FindList(data, listID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if err := m.validateListName(data, name, listID); err != nil {
		return nil, err
	}

	list.Name = name
	return list, nil
}

// DeleteList removes a list together with all of its todos and returns it
func (m *Manager) DeleteList(data *models.SessionData, listID int) (models.List, error) {
	for i, list := range data.Lists {
		if list.ID == listID {
			data.Lists = append(data.Lists[:i], data.Lists[i+1:]...)
			return list, nil
		}
	}
	return models.List{}, ErrListNotFound
}

// CreateTodo validates name and appends an incomplete todo to the list
func (m *Manager) CreateTodo(data *models.SessionData, listID int, name string) (*models.Todo, error) {
	list, err := m.FindList(data, listID)
	if err != nil {
		return nil, err
	}

	name = strings.TrimSpace(name)
	if !m.validLength(name) {
		return nil, &ValidationError{Field: "todo", Message: msgTodoNameLength}
	}

	list.LastTodoID = nextID(list.LastTodoID, todoIDs(list.Todos))
	list.Todos = append(list.Todos, models.Todo{
		ID:   list.LastTodoID,
		Name: name,
	})
	return &list.Todos[len(list.Todos)-1], nil
}

// FindTodo returns the todo with the given ID from the given list
func (m *Manager) FindTodo(data *models.SessionData, listID, todoID int) (*models.Todo, error) {
	list, err := m.FindList(data, listID)
	if err != nil {
		return nil, err
	}

	for i := range list.Todos {
		if list.Todos[i].ID == todoID {
			return &list.Todos[i], nil
		}
	}
	return nil, ErrTodoNotFound
}

// DeleteTodo removes a todo from its list
func (m *Manager) DeleteTodo(data *models.SessionData, listID, todoID int) error {
	list, err := m.FindList(data, listID)
	if err != nil {
		return err
	}

	for i, todo := range list.Todos {
		if todo.ID == todoID {
			list.Todos = append(list.Todos[:i], list.Todos[i+1:]...)
			return nil
		}
	}
	return ErrTodoNotFound
}

// SetTodoComplete sets the completion flag of a single todo
func (m *Manager) SetTodoComplete(data *models.SessionData, listID, todoID int, complete bool) (*models.Todo, error) {
	todo, err := m.FindTodo(data, listID, todoID)
	if err != nil {
		return nil, err
	}

	todo.Complete = complete
	return todo, nil
}

// CompleteAll marks every todo in the list complete
func (m *Manager) CompleteAll(data *models.SessionData, listID int) (*models.List, error) {
	list, err := m.FindList(data, listID)
	if err != nil {
		return nil, err
	}

	for i := range list.Todos {
		list.Todos[i].Complete = true
	}
	return list, nil
}

// validateListName checks length and uniqueness; exceptID is skipped in the
// uniqueness check so a list never collides with itself
func (m *Manager) validateListName(data *models.SessionData, name string, exceptID int) error {
	if !m.validLength(name) {
		return &ValidationError{Field: "list_name", Message: msgListNameLength}
	}

	for _, list := range data.Lists {
		if list.ID != exceptID && list.Name == name {
			return &ValidationError{Field: "list_name", Message: msgListNameUnique}
		}
	}
	return nil
}

// nameLengthTag counts runes, so multi-byte names get the full length
var nameLengthTag = fmt.Sprintf("min=%d,max=%d", models.MinNameLength, models.MaxNameLength)

func (m *Manager) validLength(name string) bool {
	return m.validate.Var(name, nameLengthTag) == nil
}

// nextID returns an ID above both the high-water mark and every live ID
func nextID(lastAssigned int, ids []int) int {
	highest := lastAssigned
	for _, id := range ids {
		if id > highest {
			highest = id
		}
	}
	return highest + 1
}

func listIDs(lists []models.List) []int {
	ids := make([]int, len(lists))
	for i, list := range lists {
		ids[i] = list.ID
	}
	return ids
}

func todoIDs(todos []models.Todo) []int {
	ids := make([]int, len(todos))
	for i, todo := range todos {
		ids[i] = todo.ID
	}
	return ids
}
