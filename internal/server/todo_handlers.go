package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"todod/internal/database"
	"todod/internal/model"
	"todod/internal/tderror"
	"todod/internal/todo"
)

type (
	// todos contains all todo handlers.
	todos struct {
		db *database.Live
	}

	createTodoParams struct {
		Text string `json:"text"`
	}

	updateTodoParams struct {
		Text      *string `json:"text"`
		Completed *bool   `json:"completed"`
	}
)

///// List
////
//

// List renders the current user's todos, newest first, restricted by the
// optional filter query parameter (all, active or completed).
func (h *todos) List(c echo.Context) error {
	filter := todo.FilterAll
	if p := c.QueryParam("filter"); p != "" {
		filter = todo.Filter(p)
		if !filter.Valid() {
			return c.JSON(http.StatusBadRequest, tderror.New("Unknown filter."))
		}
	}

	list, err := h.db.FindTodosByUserID(currentUser(c).ID)
	if err != nil {
		return errors.Wrap(err, "could not get todos")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"todos": todo.Apply(list, filter),
	})
}

///// Create
////
//

// Create adds a new todo owned by the current user.
func (h *todos) Create(c echo.Context) error {
	// Filter params
	var params createTodoParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, tderror.New("Could not get todo params."))
	}

	text := strings.TrimSpace(params.Text)
	if text == "" {
		return c.JSON(http.StatusBadRequest, tderror.New("No text provided."))
	}

	record := &model.Todo{
		UserID:    currentUser(c).ID,
		Text:      text,
		Completed: false,
	}
	if err := h.db.Save(record); err != nil {
		return errors.Wrap(err, "could not persist todo")
	}

	return c.JSON(http.StatusCreated, record)
}

///// Update
////
//

// Update rewrites the text and/or the completion state of a todo.
func (h *todos) Update(c echo.Context) error {
	// Filter params
	var params updateTodoParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, tderror.New("Could not get todo params."))
	}

	record, err := h.db.FindTodoByUserID(c.Param("id"), currentUser(c).ID)
	if err != nil {
		if h.db.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, tderror.New("No such todo."))
		}
		return errors.Wrap(err, "could not get todo")
	}

	if params.Text != nil {
		text := strings.TrimSpace(*params.Text)
		if text == "" {
			return c.JSON(http.StatusBadRequest, tderror.New("No text provided."))
		}
		record.Text = text
	}
	if params.Completed != nil {
		record.Completed = *params.Completed
	}

	if err := h.db.Save(record); err != nil {
		return errors.Wrap(err, "could not persist todo")
	}

	return c.JSON(http.StatusOK, record)
}

///// Delete
////
//

// Delete permanently removes a todo. There is no soft delete nor undo.
func (h *todos) Delete(c echo.Context) error {
	user := currentUser(c)
	id := c.Param("id")

	if _, err := h.db.FindTodoByUserID(id, user.ID); err != nil {
		if h.db.IsNotFound(err) {
			return c.JSON(http.StatusNotFound, tderror.New("No such todo."))
		}
		return errors.Wrap(err, "could not get todo")
	}

	if err := h.db.DeleteTodo(id, user.ID); err != nil {
		return errors.Wrap(err, "could not delete todo")
	}

	return c.NoContent(http.StatusNoContent)
}

///// Stream
////
//

// Stream pushes the current user's full todo list as one JSON document per
// line, first the current state then again after every change, until the
// client goes away.
func (h *todos) Stream(c echo.Context) error {
	ch, unsubscribe := h.db.Subscribe(currentUser(c).ID)
	defer unsubscribe()

	response := c.Response()
	response.Header().Set(echo.HeaderContentType, "application/x-ndjson")
	response.WriteHeader(http.StatusOK)

	enc := json.NewEncoder(response)
	for {
		select {
		case snapshot, ok := <-ch:
			if !ok {
				return nil
			}
			if err := enc.Encode(echo.Map{"todos": snapshot}); err != nil {
				return nil // client is gone
			}
			response.Flush()
		case <-c.Request().Context().Done():
			return nil
		}
	}
}
