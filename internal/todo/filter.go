package todo

import (
	"todod/internal/model"
)

// A Filter selects the slice of the list shown to the user.
type Filter string

const (
	// FilterAll keeps every todo.
	FilterAll Filter = "all"
	// FilterActive keeps the todos left to do.
	FilterActive Filter = "active"
	// FilterCompleted keeps the completed todos.
	FilterCompleted Filter = "completed"
)

// Valid returns true for a known filter.
func (f Filter) Valid() bool {
	switch f {
	case FilterAll, FilterActive, FilterCompleted:
		return true
	}
	return false
}

// Apply derives the filtered view of the given todos. It is a pure
// projection: the source slice is never mutated and the relative order is
// preserved.
func Apply(todos []*model.Todo, f Filter) []*model.Todo {
	view := make([]*model.Todo, 0, len(todos))
	if f == FilterAll {
		return append(view, todos...)
	}

	completed := f == FilterCompleted
	for _, todo := range todos {
		if todo.Completed == completed {
			view = append(view, todo)
		}
	}
	return view
}
