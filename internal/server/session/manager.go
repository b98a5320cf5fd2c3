package session

import (
	"net/http"
	"time"

	"github.com/o1egl/paseto/v2"
	"github.com/pkg/errors"
	"todod/internal/database"
	"todod/internal/model"
	"todod/internal/tderror"
)

// Issuer is the `iss` claim carried by every emitted token.
const Issuer = "todod"

const (
	// TypeAccessToken is the audience claim of access tokens.
	TypeAccessToken = "access_token"
	// TypeRefreshToken is the audience claim of refresh tokens.
	TypeRefreshToken = "refresh_token"
)

type (
	// A Manager manages sessions.
	Manager interface {
		// SessionSecret returns the key used to encrypt the tokens.
		SessionSecret() []byte
		// Generate creates a new session without user information.
		Generate() *model.Session
		// Token wraps the session's opaque token of the given type in a
		// transportable encrypted token.
		Token(session *model.Session, t string) (string, error)
		// ParseToken returns the session id and opaque token carried by the
		// given transportable token.
		ParseToken(token string) (id, opaque string, err error)
		// Validate validates the opaque access token against the stored session.
		Validate(id, token string) (*model.Session, error)
		// AccessTokenExpireAt returns the expiration date of the access token.
		AccessTokenExpireAt(session *model.Session) time.Time
		// Regenerate regenerates the session's tokens.
		Regenerate(session *model.Session) error
		// UserFromSession returns the session's user.
		UserFromSession(session *model.Session) (*model.User, error)
	}

	manager struct {
		db            database.Client
		sessionSecret []byte
		// Session params
		accessTokenExpirationTime  time.Duration
		refreshTokenExpirationTime time.Duration
	}
)

// NewManager returns a new manager.
func NewManager(db database.Client, sessionSecret []byte, accessTokenExpirationTime, refreshTokenExpirationTime time.Duration) Manager {
	return &manager{
		db:                         db,
		sessionSecret:              sessionSecret,
		accessTokenExpirationTime:  accessTokenExpirationTime,
		refreshTokenExpirationTime: refreshTokenExpirationTime,
	}
}

func (m *manager) SessionSecret() []byte {
	return m.sessionSecret
}

func (m *manager) Generate() *model.Session {
	return &model.Session{
		ExpireAt:     time.Now().Add(m.refreshTokenExpirationTime).UTC(),
		AccessToken:  SecureToken(24),
		RefreshToken: SecureToken(24),
	}
}

func (m *manager) Token(session *model.Session, t string) (string, error) {
	expire := session.ExpireAt
	opaque := session.RefreshToken
	if t == TypeAccessToken {
		expire = m.AccessTokenExpireAt(session)
		opaque = session.AccessToken
	}

	token := paseto.JSONToken{
		Issuer:     Issuer,
		Audience:   t,
		Subject:    session.ID,
		Jti:        opaque,
		IssuedAt:   time.Now().UTC(),
		Expiration: expire.UTC(),
	}

	payload, err := paseto.NewV2().Encrypt(m.sessionSecret, token, nil)
	return payload, errors.Wrap(err, "could not encrypt session token")
}

func (m *manager) ParseToken(token string) (string, string, error) {
	var claims paseto.JSONToken
	if err := paseto.NewV2().Decrypt(token, m.sessionSecret, &claims, nil); err != nil {
		return "", "", errors.Wrap(err, "could not decrypt session token")
	}
	return claims.Subject, claims.Jti, nil
}

func (m *manager) Validate(id, token string) (*model.Session, error) {
	session, err := m.db.FindSession(id)
	if err != nil {
		if m.db.IsNotFound(err) {
			return nil, tderror.NewWithTagCode(
				http.StatusUnauthorized,
				"invalid-auth",
				"Invalid login credentials.",
			)
		}
		return nil, errors.Wrap(err, "could not get access to database")
	}

	if !SecureCompare(session.AccessToken, token) {
		return nil, tderror.NewWithTagCode(http.StatusUnauthorized, "invalid-auth", "Invalid login credentials.")
	}

	if m.isSessionExpired(session) {
		return nil, tderror.NewWithTagCode(http.StatusUnauthorized, "invalid-auth", "Invalid login credentials.")
	}

	if m.isAccessTokenExpired(session) {
		return nil, tderror.NewWithTagCode(tderror.StatusExpiredAccessToken, "expired-access-token", "The provided access token has expired.")
	}

	return session, nil
}

func (m *manager) AccessTokenExpireAt(session *model.Session) time.Time {
	return session.ExpireAt.Add(-m.refreshTokenExpirationTime).Add(m.accessTokenExpirationTime)
}

func (m *manager) Regenerate(session *model.Session) error {
	if m.isSessionExpired(session) {
		return tderror.NewWithTagCode(
			http.StatusBadRequest,
			"expired-refresh-token",
			"The refresh token has expired.",
		)
	}

	session.AccessToken = SecureToken(24)
	session.RefreshToken = SecureToken(24)
	session.ExpireAt = time.Now().Add(m.refreshTokenExpirationTime)

	return errors.Wrap(m.db.Save(session), "could not save session after refreshing session")
}

func (m *manager) UserFromSession(session *model.Session) (*model.User, error) {
	user, err := m.db.FindUser(session.UserID)
	if err != nil {
		if m.db.IsNotFound(err) {
			return nil, tderror.NewWithTagCode(
				http.StatusUnauthorized,
				"invalid-auth",
				"Invalid login credentials.",
			)
		}
		return nil, errors.Wrap(err, "could not get access to database")
	}

	return user, nil
}

func (m *manager) isSessionExpired(session *model.Session) bool {
	return session.ExpireAt.Before(time.Now())
}

func (m *manager) isAccessTokenExpired(session *model.Session) bool {
	return m.AccessTokenExpireAt(session).Before(time.Now())
}
