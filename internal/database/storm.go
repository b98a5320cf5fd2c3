package database

import (
	"sort"
	"time"

	"github.com/asdine/storm/v3"
	"github.com/asdine/storm/v3/codec/msgpack"
	"github.com/asdine/storm/v3/q"
	"github.com/gofrs/uuid"
	"github.com/pkg/errors"
	"todod/internal/model"
)

type strm struct {
	db *storm.DB
}

// StormCodec is the format used to store data in the database.
var StormCodec = storm.Codec(msgpack.Codec)

// StormInit initializes Storm database.
func StormInit(database string) error {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return errors.Wrap(err, "could not get database connection")
	}
	defer db.Close()

	if err := db.Init(&model.User{}); err != nil {
		return errors.Wrap(err, "could not init user index")
	}

	if err := db.Init(&model.Session{}); err != nil {
		return errors.Wrap(err, "could not init session index")
	}

	err = db.Init(&model.Todo{})
	return errors.Wrap(err, "could not init todo index")
}

// StormReIndex rebuilds the indexes of all the buckets.
func StormReIndex(database string) error {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return errors.Wrap(err, "could not get database connection")
	}
	defer db.Close()

	if err := db.ReIndex(&model.User{}); err != nil {
		return errors.Wrap(err, "could not reindex users")
	}

	if err := db.ReIndex(&model.Session{}); err != nil {
		return errors.Wrap(err, "could not reindex sessions")
	}

	err = db.ReIndex(&model.Todo{})
	return errors.Wrap(err, "could not reindex todos")
}

// StormOpen returns a new Storm database connection.
func StormOpen(database string) (Client, error) {
	db, err := storm.Open(database, StormCodec)
	if err != nil {
		return nil, errors.Wrap(err, "could not get database connection")
	}

	return &strm{
		db: db,
	}, nil
}

// Save inserts or updates the entry in database with the given model.
func (c *strm) Save(m model.Model) error {
	t := time.Now().UTC()
	m.SetUpdatedAt(t)

	if m.GetID() == "" {
		m.SetID(uuid.Must(uuid.NewV4()).String())
		m.SetCreatedAt(t)
	}

	return errors.Wrap(c.db.Save(m), "could not save the model")
}

// Delete deletes the entry in database with the given model.
func (c *strm) Delete(m model.Model) error {
	return errors.Wrap(c.db.DeleteStruct(m), "could not delete the model")
}

// Close the database.
func (c *strm) Close() error {
	return c.db.Close()
}

// IsNotFound returns true if err is a not found error.
func (c *strm) IsNotFound(err error) bool {
	return errors.Cause(err) == storm.ErrNotFound
}

// FindUser returns the user for the given id (UUID).
func (c *strm) FindUser(id string) (*model.User, error) {
	var user model.User
	if err := c.db.One("ID", id, &user); err != nil {
		return nil, errors.Wrap(err, "find user by id")
	}
	return &user, nil
}

// FindUserByMail returns the user for the given email.
func (c *strm) FindUserByMail(email string) (*model.User, error) {
	var user model.User
	if err := c.db.One("Email", email, &user); err != nil {
		return nil, errors.Wrap(err, "find user by mail")
	}
	return &user, nil
}

// FindSession returns the session for the given id (UUID).
func (c *strm) FindSession(id string) (*model.Session, error) {
	var session model.Session
	if err := c.db.One("ID", id, &session); err != nil {
		return nil, errors.Wrap(err, "find session by id")
	}
	return &session, nil
}

// FindSessionByUserID returns the session for the given id and user id.
func (c *strm) FindSessionByUserID(id, userID string) (*model.Session, error) {
	var session model.Session
	err := c.db.Select(q.Eq("ID", id), q.Eq("UserID", userID)).First(&session)
	if err != nil {
		return nil, errors.Wrap(err, "find session by id and user id")
	}
	return &session, nil
}

// FindActiveSessionsByUserID returns all active sessions for the given user id.
func (c *strm) FindActiveSessionsByUserID(userID string) ([]*model.Session, error) {
	sessions := make([]*model.Session, 0)
	err := c.db.Select(q.Eq("UserID", userID), q.Gt("ExpireAt", time.Now())).OrderBy("CreatedAt").Find(&sessions)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find sessions by user id")
	}
	return sessions, nil
}

// FindSessionByAccessToken returns the session for the given access token.
func (c *strm) FindSessionByAccessToken(token string) (*model.Session, error) {
	var session model.Session
	if err := c.db.One("AccessToken", token, &session); err != nil {
		return nil, errors.Wrap(err, "find session by access token")
	}
	return &session, nil
}

// FindSessionByTokens returns the session for the given access and refresh token.
func (c *strm) FindSessionByTokens(access, refresh string) (*model.Session, error) {
	var session model.Session
	err := c.db.Select(q.Eq("AccessToken", access), q.Eq("RefreshToken", refresh)).First(&session)
	if err != nil {
		return nil, errors.Wrap(err, "find session by tokens")
	}
	return &session, nil
}

// FindTodo returns the todo for the given id (UUID).
func (c *strm) FindTodo(id string) (*model.Todo, error) {
	var todo model.Todo
	if err := c.db.One("ID", id, &todo); err != nil {
		return nil, errors.Wrap(err, "could not find todo")
	}
	return &todo, nil
}

// FindTodoByUserID returns the todo for the given id and user id (UUID).
func (c *strm) FindTodoByUserID(id, userID string) (*model.Todo, error) {
	var todo model.Todo
	err := c.db.Select(q.Eq("ID", id), q.Eq("UserID", userID)).First(&todo)
	if err != nil {
		return nil, errors.Wrap(err, "could not find todo by user id")
	}
	return &todo, nil
}

// FindTodosByUserID returns all the todos owned by the given user, newest first.
func (c *strm) FindTodosByUserID(userID string) ([]*model.Todo, error) {
	todos := make([]*model.Todo, 0)
	err := c.db.Select(q.Eq("UserID", userID)).Find(&todos)
	if err != nil && !c.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not find todos")
	}

	SortTodos(todos)
	return todos, nil
}

// DeleteTodo deletes the todo matching the given parameters.
func (c *strm) DeleteTodo(id, userID string) error {
	err := c.db.Select(q.Eq("ID", id), q.Eq("UserID", userID)).Delete(&model.Todo{})
	return errors.Wrap(err, "could not delete todo")
}

// SortTodos sorts the given todos by creation date, newest first.
// A todo without a creation date sorts as timestamp zero, so it ends up last.
func SortTodos(todos []*model.Todo) {
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
