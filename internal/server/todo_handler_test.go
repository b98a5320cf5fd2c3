package server_test

import (
	"net/http"
	"testing"

	"github.com/appleboy/gofight/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fastjson"
	"todod/internal/model"
)

func TestRequestTodosRestricted(t *testing.T) {
	engine, _, r, cleanup := setup()
	defer cleanup()

	r.GET("/todos").Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusUnauthorized, r.Code)
		assert.JSONEq(t, `{"error":{"tag":"invalid-auth","message":"Invalid login credentials."}}`, r.Body.String())
	})

	r.POST("/todos").SetJSON(gofight.D{"text": "Buy milk"}).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusUnauthorized, r.Code)
	})
}

func TestRequestTodoCreate(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	user, session := createUserWithSession(ctrl)
	authorization := gofight.H{"Authorization": "Bearer " + accessToken(ctrl, session)}

	r.POST("/todos").
		SetHeader(authorization).
		SetJSON(gofight.D{"text": "   "}).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusBadRequest, r.Code)
			assert.JSONEq(t, `{"error":{"message":"No text provided."}}`, r.Body.String())
		})

	r.POST("/todos").
		SetHeader(authorization).
		SetJSON(gofight.D{"text": "  Buy milk  "}).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusCreated, r.Code)

			v, err := fastjson.Parse(r.Body.String())
			require.NoError(t, err)
			assert.Equal(t, "Buy milk", string(v.GetStringBytes("text")))
			assert.Equal(t, user.ID, string(v.GetStringBytes("user_uuid")))
			assert.False(t, v.GetBool("completed"))
			assert.True(t, len(v.GetStringBytes("uuid")) > 0)
			assert.True(t, len(v.GetStringBytes("created_at")) > 0)
		})
}

func TestRequestTodoList(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	user, session := createUserWithSession(ctrl)
	authorization := gofight.H{"Authorization": "Bearer " + accessToken(ctrl, session)}

	for _, text := range []string{"Buy milk", "Walk the dog", "Call mom"} {
		record := &model.Todo{UserID: user.ID, Text: text}
		require.NoError(t, ctrl.Database.Save(record))
	}
	done := &model.Todo{UserID: user.ID, Text: "Ship release", Completed: true}
	require.NoError(t, ctrl.Database.Save(done))

	r.GET("/todos").SetHeader(authorization).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		require.NoError(t, err)
		list := v.GetArray("todos")
		require.Len(t, list, 4)
		// Newest first.
		assert.Equal(t, "Ship release", string(list[0].GetStringBytes("text")))
		assert.Equal(t, "Buy milk", string(list[3].GetStringBytes("text")))
	})

	r.GET("/todos?filter=active").SetHeader(authorization).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)

		v, err := fastjson.Parse(r.Body.String())
		require.NoError(t, err)
		for _, item := range v.GetArray("todos") {
			assert.False(t, item.GetBool("completed"))
		}
		assert.Len(t, v.GetArray("todos"), 3)
	})

	r.GET("/todos?filter=completed").SetHeader(authorization).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		v, err := fastjson.Parse(r.Body.String())
		require.NoError(t, err)
		require.Len(t, v.GetArray("todos"), 1)
		assert.Equal(t, "Ship release", string(v.GetArray("todos")[0].GetStringBytes("text")))
	})

	r.GET("/todos?filter=trololo").SetHeader(authorization).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusBadRequest, r.Code)
		assert.JSONEq(t, `{"error":{"message":"Unknown filter."}}`, r.Body.String())
	})
}

func TestRequestTodoUpdate(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	user, session := createUserWithSession(ctrl)
	authorization := gofight.H{"Authorization": "Bearer " + accessToken(ctrl, session)}

	record := &model.Todo{UserID: user.ID, Text: "Buy milk"}
	require.NoError(t, ctrl.Database.Save(record))

	r.PATCH("/todos/"+record.ID).
		SetHeader(authorization).
		SetJSON(gofight.D{"completed": true}).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusOK, r.Code)

			v, err := fastjson.Parse(r.Body.String())
			require.NoError(t, err)
			assert.True(t, v.GetBool("completed"))
			assert.Equal(t, "Buy milk", string(v.GetStringBytes("text")))
		})

	r.PATCH("/todos/"+record.ID).
		SetHeader(authorization).
		SetJSON(gofight.D{"text": "Buy oat milk"}).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusOK, r.Code)

			v, err := fastjson.Parse(r.Body.String())
			require.NoError(t, err)
			assert.Equal(t, "Buy oat milk", string(v.GetStringBytes("text")))
			// Completion state untouched when only the text is sent.
			assert.True(t, v.GetBool("completed"))
		})

	r.PATCH("/todos/"+record.ID).
		SetHeader(authorization).
		SetJSON(gofight.D{"text": "  "}).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusBadRequest, r.Code)
			assert.JSONEq(t, `{"error":{"message":"No text provided."}}`, r.Body.String())
		})

	r.PATCH("/todos/nonexistent").
		SetHeader(authorization).
		SetJSON(gofight.D{"completed": true}).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusNotFound, r.Code)
			assert.JSONEq(t, `{"error":{"message":"No such todo."}}`, r.Body.String())
		})
}

func TestRequestTodoDelete(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	user, session := createUserWithSession(ctrl)
	authorization := gofight.H{"Authorization": "Bearer " + accessToken(ctrl, session)}

	record := &model.Todo{UserID: user.ID, Text: "Buy milk"}
	require.NoError(t, ctrl.Database.Save(record))

	r.DELETE("/todos/"+record.ID).SetHeader(authorization).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNoContent, r.Code)
	})

	_, err := ctrl.Database.FindTodo(record.ID)
	assert.True(t, ctrl.Database.IsNotFound(err))

	r.DELETE("/todos/"+record.ID).SetHeader(authorization).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNotFound, r.Code)
	})
}

func TestRequestTodoOwnership(t *testing.T) {
	engine, ctrl, r, cleanup := setup()
	defer cleanup()

	owner, _ := createUserWithSession(ctrl)
	record := &model.Todo{UserID: owner.ID, Text: "Owner secret"}
	require.NoError(t, ctrl.Database.Save(record))

	intruder := model.NewUser()
	intruder.Email = "intruder@nowhere.lan"
	intruder.Password = "irrelevant"
	require.NoError(t, ctrl.Database.Save(intruder))

	session := sessions(ctrl).Generate()
	session.UserID = intruder.ID
	require.NoError(t, ctrl.Database.Save(session))
	authorization := gofight.H{"Authorization": "Bearer " + accessToken(ctrl, session)}

	r.GET("/todos").SetHeader(authorization).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusOK, r.Code)
		assert.JSONEq(t, `{"todos":[]}`, r.Body.String())
	})

	r.PATCH("/todos/"+record.ID).
		SetHeader(authorization).
		SetJSON(gofight.D{"completed": true}).
		Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
			assert.Equal(t, http.StatusNotFound, r.Code)
		})

	r.DELETE("/todos/"+record.ID).SetHeader(authorization).Run(engine, func(r gofight.HTTPResponse, rq gofight.HTTPRequest) {
		assert.Equal(t, http.StatusNotFound, r.Code)
	})
}
