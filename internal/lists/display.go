package lists

import (
	"sort"

	"todolist-web/internal/models"
)

// TodosCount returns the number of todos in a list
func TodosCount(list models.List) int {
	return len(list.Todos)
}

// TodosRemaining returns the number of incomplete todos in a list
func TodosRemaining(list models.List) int {
	remaining := 0
	for _, todo := range list.Todos {
		if !todo.Complete {
			remaining++
		}
	}
	return remaining
}

// IsComplete reports whether a list has todos and all of them are done
func IsComplete(list models.List) bool {
	return TodosCount(list) > 0 && TodosRemaining(list) == 0
}

// OrderLists returns a copy of lists with complete lists moved to the end,
// otherwise keeping insertion order
func OrderLists(lists []models.List) []models.List {
	ordered := make([]models.List, len(lists))
	copy(ordered, lists)
	sort.SliceStable(ordered, func(i, j int) bool {
		return !IsComplete(ordered[i]) && IsComplete(ordered[j])
	})
	return ordered
}

// OrderTodos returns a copy of todos with complete todos moved to the end
func OrderTodos(todos []models.Todo) []models.Todo {
	ordered := make([]models.Todo, len(todos))
	copy(ordered, todos)
	sort.SliceStable(ordered, func(i, j int) bool {
		return !ordered[i].Complete && ordered[j].Complete
	})
	return ordered
}
