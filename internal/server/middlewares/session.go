package middlewares

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mdouchement/middlewarex"
	"github.com/o1egl/paseto/v2"
	"todod/internal/server/session"
)

const (
	// CurrentUserContextKey is the key to retrieve the current_user from echo.Context.
	CurrentUserContextKey = "current_user"
	// CurrentSessionContextKey is the key to retrieve the current_session from echo.Context.
	CurrentSessionContextKey = "current_session"
)

// Session returns a session auth middleware.
// It stores current_user and current_session into echo.Context.
func Session(m session.Manager) echo.MiddlewareFunc {
	check := middlewarex.PASETOWithConfig(middlewarex.PASETOConfig{
		SigningKey: m.SessionSecret(),
		Validators: []paseto.Validator{
			paseto.IssuedBy(session.Issuer),
			paseto.ForAudience(session.TypeAccessToken),
		},
	})

	fake := func(echo.Context) error {
		return nil
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) (err error) {
			authorization := c.Request().Header.Get(echo.HeaderAuthorization)
			token := token(authorization)

			if token == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": echo.Map{
						"tag":     "invalid-auth",
						"message": "Invalid login credentials.",
					},
				})
			}

			err = check(fake)(c) // Check PASETO validity according its claims.
			if err != nil && !strings.Contains(err.Error(), "token has expired: token validation error") {
				// Token is not valid.
				// We do not catch token expiration here and let the session manager performs its validation.
				return c.JSON(http.StatusUnauthorized, echo.Map{
					"error": echo.Map{
						"tag":     "invalid-auth",
						"message": "Invalid login credentials.",
					},
				})
			}

			tk := c.Get(middlewarex.DefaultPASETOConfig.ContextKey).(middlewarex.Token)

			// Find, validate and store current_session for handlers.
			session, err := m.Validate(tk.Subject, tk.Jti)
			if err != nil {
				return err
			}
			c.Set(CurrentSessionContextKey, session)

			// Find and store current_user for handlers.
			user, err := m.UserFromSession(session)
			if err != nil {
				return err
			}
			c.Set(CurrentUserContextKey, user)

			return next(c)
		}
	}
}

func token(authorization string) string {
	parts := strings.Split(authorization, " ")
	if strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}
