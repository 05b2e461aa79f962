package models

import (
	"time"
)

const (
	// MinNameLength and MaxNameLength bound list and todo names, in characters
	MinNameLength = 1
	MaxNameLength = 100
)

// Todo represents a single item within a list
type Todo struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Complete bool   `json:"complete"`
}

// List represents a named list containing todos
type List struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	Todos      []Todo `json:"todos"`
	LastTodoID int    `json:"lastTodoId"` // highest todo ID ever assigned in this list
}

// Flash holds one-shot messages shown on the next rendered page
type Flash struct {
	Success string `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Empty reports whether there is nothing to show
func (f Flash) Empty() bool {
	return f.Success == "" && f.Error == ""
}

// SessionData is everything a single session owns
type SessionData struct {
	Lists      []List `json:"lists"`
	LastListID int    `json:"lastListId"` // highest list ID ever assigned in this session
	Flash      Flash  `json:"flash"`
}

// NewSessionData returns an empty session
func NewSessionData() *SessionData {
	return &SessionData{
		Lists: make([]List, 0),
	}
}

// SessionRecord is the row persisted by SQL-backed session stores
type SessionRecord struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Data      []byte    `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName pins the table name shared with the SQL migrations
func (SessionRecord) TableName() string {
	return "sessions"
}

// ListForm is the form submitted to create or rename a list
type ListForm struct {
	Name string `form:"list_name"`
}

// TodoForm is the form submitted to add a todo
type TodoForm struct {
	Name string `form:"todo"`
}

// CompleteForm is the form submitted to set a todo's completion
type CompleteForm struct {
	Complete string `form:"complete"`
}
