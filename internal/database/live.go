package database

import (
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/sirupsen/logrus"
	"todod/internal/model"
)

// notifyInterval coalesces bursts of writes into a single snapshot emission.
const notifyInterval = 25 * time.Millisecond

type (
	// A Live wraps a Client and turns every todo write into a fresh full
	// snapshot pushed to the owner's subscribers. It is the database-side
	// half of a scoped live query: one channel per subscription, the whole
	// result set on every change, latest snapshot wins when the consumer
	// lags behind.
	Live struct {
		Client
		logger logrus.FieldLogger

		mu         sync.Mutex
		subs       map[string][]*subscription
		debouncers map[string]func(func())
	}

	subscription struct {
		ownerID string
		ch      chan []*model.Todo
	}
)

// NewLive returns a new Live wrapping the given client.
func NewLive(c Client, logger logrus.FieldLogger) *Live {
	return &Live{
		Client:     c,
		logger:     logger,
		subs:       map[string][]*subscription{},
		debouncers: map[string]func(func()){},
	}
}

// Subscribe opens a live query scoped to the given owner. The returned
// channel carries full snapshots, the first one synchronously computed at
// subscription time. The returned function releases the subscription and
// closes the channel.
func (l *Live) Subscribe(ownerID string) (<-chan []*model.Todo, func()) {
	sub := &subscription{
		ownerID: ownerID,
		ch:      make(chan []*model.Todo, 1),
	}

	l.mu.Lock()
	l.subs[ownerID] = append(l.subs[ownerID], sub)

	todos, err := l.FindTodosByUserID(ownerID)
	if err != nil {
		l.logger.WithError(err).Error("live: could not compute initial snapshot")
	} else {
		sub.ch <- todos
	}
	l.mu.Unlock()

	var once sync.Once
	return sub.ch, func() {
		once.Do(func() {
			l.unsubscribe(sub)
		})
	}
}

// Save inserts or updates the entry and, for todos, notifies the owner's
// subscribers.
func (l *Live) Save(m model.Model) error {
	err := l.Client.Save(m)
	if err != nil {
		return err
	}

	if todo, ok := m.(*model.Todo); ok {
		l.notify(todo.UserID)
	}
	return nil
}

// Delete deletes the entry and, for todos, notifies the owner's subscribers.
func (l *Live) Delete(m model.Model) error {
	err := l.Client.Delete(m)
	if err != nil {
		return err
	}

	if todo, ok := m.(*model.Todo); ok {
		l.notify(todo.UserID)
	}
	return nil
}

// DeleteTodo deletes the todo matching the given parameters and notifies the
// owner's subscribers.
func (l *Live) DeleteTodo(id, userID string) error {
	err := l.Client.DeleteTodo(id, userID)
	if err != nil {
		return err
	}

	l.notify(userID)
	return nil
}

func (l *Live) unsubscribe(sub *subscription) {
	l.mu.Lock()
	defer l.mu.Unlock()

	subs := l.subs[sub.ownerID]
	for i, s := range subs {
		if s == sub {
			l.subs[sub.ownerID] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(l.subs[sub.ownerID]) == 0 {
		delete(l.subs, sub.ownerID)
	}

	close(sub.ch)
}

func (l *Live) notify(ownerID string) {
	l.mu.Lock()
	debounced, ok := l.debouncers[ownerID]
	if !ok {
		debounced = debounce.New(notifyInterval)
		l.debouncers[ownerID] = debounced
	}
	l.mu.Unlock()

	debounced(func() {
		l.emit(ownerID)
	})
}

func (l *Live) emit(ownerID string) {
	todos, err := l.FindTodosByUserID(ownerID)
	if err != nil {
		// A failed delivery is swallowed. The subscribers simply keep their
		// previous snapshot until the next write.
		l.logger.WithError(err).Error("live: could not compute snapshot")
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	for _, sub := range l.subs[ownerID] {
		// Latest snapshot wins: drop the undelivered one if the consumer lags.
		select {
		case sub.ch <- todos:
		default:
			select {
			case <-sub.ch:
			default:
			}
			select {
			case sub.ch <- todos:
			default:
			}
		}
	}
}
