// Package todo owns the in-memory list of the active user's todos.
//
// The manager mirrors the persistence layer: it holds a read-only cache fed
// by one live scoped subscription and never the source of truth. Mutations
// are fire-and-forget requests; the UI observes their effect only through
// the next snapshot.
package todo

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"todod/internal/model"
)

// A Store is the persistence capability set consumed by the manager.
// database.Live satisfies it.
type Store interface {
	// Save inserts or updates the given record.
	Save(m model.Model) error
	// DeleteTodo permanently deletes the todo matching the given parameters.
	DeleteTodo(id, userID string) error
	// Subscribe opens a live query scoped to the given owner. The channel
	// carries full snapshots; the function releases the subscription.
	Subscribe(ownerID string) (<-chan []*model.Todo, func())
}

// A Manager drives the todo list of the active identity.
type Manager struct {
	store  Store
	logger logrus.FieldLogger

	mu          sync.Mutex
	identity    *model.User
	todos       []*model.Todo
	filter      Filter
	editingID   string
	unsubscribe func()
	drained     chan struct{}
}

// NewManager returns a new manager with no identity and the all filter.
func NewManager(store Store, logger logrus.FieldLogger) *Manager {
	return &Manager{
		store:  store,
		logger: logger,
		filter: FilterAll,
	}
}

// SetIdentity switches the manager to the given identity. A previous
// subscription is always torn down first, so two users' todos can never
// coexist in the cache. A nil identity clears the list and leaves no
// subscription open.
func (m *Manager) SetIdentity(user *model.User) {
	m.mu.Lock()

	if m.unsubscribe != nil {
		m.unsubscribe()
		m.unsubscribe = nil
		drained := m.drained
		m.mu.Unlock()
		<-drained // wait for the previous consumer to stop writing the cache
		m.mu.Lock()
	}

	m.identity = user
	m.todos = nil
	m.editingID = ""

	if user == nil {
		m.mu.Unlock()
		return
	}

	ch, unsubscribe := m.store.Subscribe(user.ID)
	m.unsubscribe = unsubscribe
	m.drained = make(chan struct{})
	go m.consume(ch, m.drained, user.ID)
	m.mu.Unlock()
}

// Close tears down the subscription. The manager is left as if anonymous.
func (m *Manager) Close() {
	m.SetIdentity(nil)
}

// Identity returns the active identity, or nil.
func (m *Manager) Identity() *model.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.identity
}

// Todos returns the cached snapshot, newest first.
func (m *Manager) Todos() []*model.Todo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*model.Todo(nil), m.todos...)
}

// View returns the cached snapshot restricted by the current filter.
func (m *Manager) View() []*model.Todo {
	m.mu.Lock()
	defer m.mu.Unlock()
	return Apply(m.todos, m.filter)
}

// SetFilter selects the derived view. Unknown filters are ignored.
func (m *Manager) SetFilter(f Filter) {
	if !f.Valid() {
		return
	}

	m.mu.Lock()
	m.filter = f
	m.mu.Unlock()
}

// Filter returns the current filter.
func (m *Manager) Filter() Filter {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.filter
}

// Save creates a todo from the given text or, in edit mode, rewrites the
// edited todo's text. Empty trimmed text or a missing identity is a no-op:
// no request is issued. Edit mode is cleared locally right away, regardless
// of the request outcome.
func (m *Manager) Save(text string) {
	text = strings.TrimSpace(text)

	m.mu.Lock()
	user := m.identity
	if text == "" || user == nil {
		m.mu.Unlock()
		return
	}

	editingID := m.editingID
	m.editingID = ""

	if editingID != "" {
		edited := m.lookup(editingID)
		m.mu.Unlock()
		if edited == nil {
			m.logger.WithField("id", editingID).Warn("todo: edited item vanished")
			return
		}

		todo := *edited
		todo.Text = text
		if err := m.store.Save(&todo); err != nil {
			m.logger.WithError(err).Error("todo: could not update text")
		}
		return
	}
	m.mu.Unlock()

	todo := &model.Todo{
		UserID:    user.ID,
		Text:      text,
		Completed: false,
	}
	if err := m.store.Save(todo); err != nil {
		m.logger.WithError(err).Error("todo: could not create")
	}
}

// Toggle flips the completion state of the given todo.
func (m *Manager) Toggle(id string) {
	m.mu.Lock()
	cached := m.lookup(id)
	m.mu.Unlock()
	if cached == nil {
		return
	}

	todo := *cached
	todo.Completed = !todo.Completed
	if err := m.store.Save(&todo); err != nil {
		m.logger.WithError(err).Error("todo: could not toggle")
	}
}

// Delete permanently removes the given todo once confirm returns true.
func (m *Manager) Delete(id string, confirm func() bool) {
	m.mu.Lock()
	user := m.identity
	m.mu.Unlock()
	if user == nil {
		return
	}

	if confirm == nil || !confirm() {
		return
	}

	if err := m.store.DeleteTodo(id, user.ID); err != nil {
		m.logger.WithError(err).Error("todo: could not delete")
	}
}

// StartEdit marks the given todo as being edited and returns its current
// text for pre-populating the input. At most one todo is edited at a time.
func (m *Manager) StartEdit(id string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	todo := m.lookup(id)
	if todo == nil {
		return "", false
	}

	m.editingID = id
	return todo.Text, true
}

// CancelEdit clears the editing marker.
func (m *Manager) CancelEdit() {
	m.mu.Lock()
	m.editingID = ""
	m.mu.Unlock()
}

// EditingID returns the id of the todo being edited, or "".
func (m *Manager) EditingID() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.editingID
}

// lookup must be called with the mutex held.
func (m *Manager) lookup(id string) *model.Todo {
	for _, todo := range m.todos {
		if todo.ID == id {
			return todo
		}
	}
	return nil
}

// consume replaces the cache wholesale with every delivered snapshot.
// It is the only writer of the cache.
func (m *Manager) consume(ch <-chan []*model.Todo, drained chan struct{}, ownerID string) {
	defer close(drained)

	for snapshot := range ch {
		sortNewestFirst(snapshot)

		m.mu.Lock()
		if m.identity == nil || m.identity.ID != ownerID {
			// A stale delivery from a subscription being torn down.
			m.mu.Unlock()
			continue
		}
		m.todos = snapshot
		m.mu.Unlock()
	}
}

func sortNewestFirst(todos []*model.Todo) {
	sort.SliceStable(todos, func(i, j int) bool {
		var ti, tj time.Time
		if todos[i].CreatedAt != nil {
			ti = *todos[i].CreatedAt
		}
		if todos[j].CreatedAt != nil {
			tj = *todos[j].CreatedAt
		}
		return ti.After(tj)
	})
}
