package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"todod/internal/database"
	"todod/internal/identity"
	"todod/internal/model"
	"todod/internal/server/serializer"
	sessionpkg "todod/internal/server/session"
	"todod/internal/tderror"
)

type (
	// auth contains all authentication handlers.
	auth struct {
		db       database.Client
		users    *identity.Service
		sessions sessionpkg.Manager
	}

	credentialParams struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
)

///// Register
////
//

// Register handler is used to register a user.
func (h *auth) Register(c echo.Context) error {
	// Filter params
	var params credentialParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, tderror.New("Could not get credentials."))
	}

	user, err := h.users.SignUp(params.Email, params.Password)
	if err != nil {
		return err
	}

	return h.successfulAuthentication(c, user)
}

///// Login
////
//

// Login authenticates a user and opens a session.
func (h *auth) Login(c echo.Context) error {
	// Filter params
	var params credentialParams
	if err := c.Bind(&params); err != nil {
		return c.JSON(http.StatusBadRequest, tderror.New("Could not get credentials."))
	}

	user, err := h.users.SignIn(params.Email, params.Password)
	if err != nil {
		return err
	}

	return h.successfulAuthentication(c, user)
}

///// Logout
////
//

// Logout terminates the current session.
func (h *auth) Logout(c echo.Context) error {
	session := currentSession(c)
	if session != nil {
		err := h.db.Delete(session)
		if err != nil && !h.db.IsNotFound(err) {
			return errors.Wrap(err, "could not delete session")
		}
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *auth) successfulAuthentication(c echo.Context, user *model.User) error {
	session := h.sessions.Generate()
	session.UserID = user.ID
	session.UserAgent = c.Request().UserAgent()

	if err := h.db.Save(session); err != nil {
		return errors.Wrap(err, "could not persist session")
	}

	access, err := h.sessions.Token(session, sessionpkg.TypeAccessToken)
	if err != nil {
		return errors.Wrap(err, "could not generate access token")
	}
	refresh, err := h.sessions.Token(session, sessionpkg.TypeRefreshToken)
	if err != nil {
		return errors.Wrap(err, "could not generate refresh token")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"user": serializer.User(user),
		"session": echo.Map{
			"access_token":       access,
			"refresh_token":      refresh,
			"access_expiration":  h.sessions.AccessTokenExpireAt(session).UTC(),
			"refresh_expiration": session.ExpireAt.UTC(),
		},
	})
}
