// Package identity implements the credential operations and the
// authentication-state stream consumed by the session gate.
package identity

import (
	"net/http"
	"strings"
	"time"

	argon2 "github.com/mdouchement/simple-argon2"
	"github.com/pkg/errors"
	"todod/internal/database"
	"todod/internal/model"
	"todod/internal/tderror"
)

// MinPasswordLength is the weakest password accepted at sign-up.
// The console client enforces the same rule before submitting.
const MinPasswordLength = 6

// A Service verifies and creates credentials against the database.
// Failures are tagged with a tderror credential kind so callers can render
// the matching canned message.
type Service struct {
	db database.Client
}

// NewService returns a new Service.
func NewService(db database.Client) *Service {
	return &Service{db: db}
}

// SignUp creates a new account for the given credentials.
func (s *Service) SignUp(email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)

	if email == "" || !strings.Contains(email, "@") {
		return nil, tderror.NewKind(http.StatusUnauthorized, tderror.KindInvalidEmail)
	}
	if password == "" {
		return nil, tderror.NewKind(http.StatusUnauthorized, tderror.KindMissingPassword)
	}
	if len(password) < MinPasswordLength {
		return nil, tderror.NewKind(http.StatusUnauthorized, tderror.KindWeakPassword)
	}

	u, err := s.db.FindUserByMail(email)
	if err != nil && !s.db.IsNotFound(err) {
		return nil, errors.Wrap(err, "could not get access to database")
	}
	if u != nil {
		return nil, tderror.NewKind(http.StatusUnauthorized, tderror.KindEmailTaken)
	}

	user := model.NewUser()
	user.Email = email
	user.Password, err = argon2.GenerateFromPasswordString(password, argon2.Default)
	if err != nil {
		return nil, errors.Wrap(err, "could not store user password safe")
	}
	user.PasswordUpdatedAt = time.Now().Unix()

	if err := s.db.Save(user); err != nil {
		return nil, errors.Wrap(err, "could not persist user")
	}

	return user, nil
}

// SignIn verifies the given credentials and returns the matching account.
func (s *Service) SignIn(email, password string) (*model.User, error) {
	email = strings.TrimSpace(email)

	if email == "" || !strings.Contains(email, "@") {
		return nil, tderror.NewKind(http.StatusUnauthorized, tderror.KindInvalidEmail)
	}
	if password == "" {
		return nil, tderror.NewKind(http.StatusUnauthorized, tderror.KindMissingPassword)
	}

	user, err := s.db.FindUserByMail(email)
	if err != nil {
		if s.db.IsNotFound(err) {
			return nil, tderror.NewKind(http.StatusUnauthorized, tderror.KindUnknownAccount)
		}
		return nil, errors.Wrap(err, "could not get user")
	}

	if err = argon2.CompareHashAndPasswordString(user.Password, password); err != nil {
		if err == argon2.ErrMismatchedHashAndPassword {
			return nil, tderror.NewKind(http.StatusUnauthorized, tderror.KindWrongPassword)
		}
		return nil, errors.Wrap(err, "could not validate password")
	}

	return user, nil
}
