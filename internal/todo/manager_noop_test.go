package todo_test

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"todod/internal/model"
	"todod/internal/todo"
)

// recorder counts the requests issued to the persistence layer.
type recorder struct {
	mu      sync.Mutex
	saves   int
	deletes int
}

func (r *recorder) Save(model.Model) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	return nil
}

func (r *recorder) DeleteTodo(string, string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deletes++
	return nil
}

func (r *recorder) Subscribe(string) (<-chan []*model.Todo, func()) {
	ch := make(chan []*model.Todo)
	var once sync.Once
	return ch, func() { once.Do(func() { close(ch) }) }
}

func (r *recorder) counts() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves, r.deletes
}

func TestManagerSaveNoops(t *testing.T) {
	store := &recorder{}
	m := todo.NewManager(store, discard())
	defer m.Close()

	// No identity: nothing reaches the store.
	m.Save("orphan")

	m.SetIdentity(user("u1"))

	// Empty and whitespace-only text: no request issued.
	m.Save("")
	m.Save("   \t  ")

	saves, _ := store.counts()
	assert.Equal(t, 0, saves)

	m.Save("real one")
	saves, _ = store.counts()
	assert.Equal(t, 1, saves)
}

func TestManagerDeleteNeedsConfirmation(t *testing.T) {
	store := &recorder{}
	m := todo.NewManager(store, discard())
	defer m.Close()

	m.SetIdentity(user("u1"))

	m.Delete("some-id", nil)
	m.Delete("some-id", func() bool { return false })
	_, deletes := store.counts()
	assert.Equal(t, 0, deletes)

	m.Delete("some-id", func() bool { return true })
	_, deletes = store.counts()
	assert.Equal(t, 1, deletes)
}
