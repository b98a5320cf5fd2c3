package todo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"todod/internal/model"
	"todod/internal/todo"
)

func list() []*model.Todo {
	return []*model.Todo{
		{Base: model.Base{ID: "1"}, Text: "one", Completed: false},
		{Base: model.Base{ID: "2"}, Text: "two", Completed: true},
		{Base: model.Base{ID: "3"}, Text: "three", Completed: false},
		{Base: model.Base{ID: "4"}, Text: "four", Completed: true},
	}
}

func TestApply(t *testing.T) {
	todos := list()

	all := todo.Apply(todos, todo.FilterAll)
	assert.Len(t, all, 4)

	active := todo.Apply(todos, todo.FilterActive)
	assert.Len(t, active, 2)
	for _, item := range active {
		assert.False(t, item.Completed)
	}

	completed := todo.Apply(todos, todo.FilterCompleted)
	assert.Len(t, completed, 2)
	for _, item := range completed {
		assert.True(t, item.Completed)
	}
}

func TestApplyIsPartition(t *testing.T) {
	todos := list()

	active := todo.Apply(todos, todo.FilterActive)
	completed := todo.Apply(todos, todo.FilterCompleted)

	// No overlap, no loss: active and completed rebuild the whole list.
	seen := map[string]int{}
	for _, item := range append(active, completed...) {
		seen[item.ID]++
	}
	assert.Len(t, seen, len(todos))
	for id, n := range seen {
		assert.Equalf(t, 1, n, "todo %s appears %d times", id, n)
	}
}

func TestApplyDoesNotMutateSource(t *testing.T) {
	todos := list()

	view := todo.Apply(todos, todo.FilterActive)
	view[0] = &model.Todo{Base: model.Base{ID: "hijacked"}}

	assert.Equal(t, "1", todos[0].ID)
	assert.Len(t, todos, 4)

	// FilterAll returns a copy, not the source slice.
	all := todo.Apply(todos, todo.FilterAll)
	all[0] = nil
	assert.NotNil(t, todos[0])
}

func TestApplyPreservesOrder(t *testing.T) {
	todos := list()

	active := todo.Apply(todos, todo.FilterActive)
	assert.Equal(t, "1", active[0].ID)
	assert.Equal(t, "3", active[1].ID)
}

func TestFilterValid(t *testing.T) {
	assert.True(t, todo.FilterAll.Valid())
	assert.True(t, todo.FilterActive.Valid())
	assert.True(t, todo.FilterCompleted.Valid())
	assert.False(t, todo.Filter("done").Valid())
	assert.False(t, todo.Filter("").Valid())
}
