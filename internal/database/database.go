package database

import (
	"todod/internal/model"
)

type (
	// A Client can interacts with the database.
	Client interface {
		// Save inserts or updates the entry in database with the given model.
		Save(m model.Model) error
		// Delete deletes the entry in database with the given model.
		Delete(m model.Model) error
		// Close the database.
		Close() error
		// IsNotFound returns true if err is a not found error.
		IsNotFound(err error) bool

		UserInteraction
		SessionInteraction
		TodoInteraction
	}

	// An UserInteraction defines all the methods used to interact with a user record.
	UserInteraction interface {
		// FindUser returns the user for the given id (UUID).
		FindUser(id string) (*model.User, error)
		// FindUserByMail returns the user for the given email.
		FindUserByMail(email string) (*model.User, error)
	}

	// An SessionInteraction defines all the methods used to interact with a session record.
	SessionInteraction interface {
		// FindSession returns the session for the given id (UUID).
		FindSession(id string) (*model.Session, error)
		// FindSessionByUserID returns the session for the given id and user id.
		FindSessionByUserID(id, userID string) (*model.Session, error)
		// FindActiveSessionsByUserID returns all active sessions for the given user id.
		FindActiveSessionsByUserID(userID string) ([]*model.Session, error)
		// FindSessionByAccessToken returns the session for the given access token.
		FindSessionByAccessToken(token string) (*model.Session, error)
		// FindSessionByTokens returns the session for the given access and refresh token.
		FindSessionByTokens(access, refresh string) (*model.Session, error)
	}

	// A TodoInteraction defines all the methods used to interact with todo record(s).
	TodoInteraction interface {
		// FindTodo returns the todo for the given id (UUID).
		FindTodo(id string) (*model.Todo, error)
		// FindTodoByUserID returns the todo for the given id and user id (UUID).
		FindTodoByUserID(id, userID string) (*model.Todo, error)
		// FindTodosByUserID returns all the todos owned by the given user,
		// newest first. Todos without a creation date sort last.
		FindTodosByUserID(userID string) ([]*model.Todo, error)
		// DeleteTodo deletes the todo matching the given parameters.
		DeleteTodo(id, userID string) error
	}
)
