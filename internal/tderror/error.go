package tderror

import "net/http"

// StatusExpiredAccessToken is an HTTP status code used when an access token is expired.
const StatusExpiredAccessToken = 498

// Credential failure kinds. Each kind maps to exactly one fixed
// user-facing message; anything else falls back to KindOther.
const (
	KindEmailTaken      = "email-already-in-use"
	KindInvalidEmail    = "invalid-email"
	KindMissingPassword = "missing-password"
	KindWeakPassword    = "weak-password"
	KindWrongPassword   = "wrong-password"
	KindUnknownAccount  = "user-not-found"
	KindMissingFields   = "missing-fields"
	KindOther           = "other"
)

var messages = map[string]string{
	KindEmailTaken:      "This email is already registered.",
	KindInvalidEmail:    "Please enter a valid email.",
	KindMissingPassword: "Password is required.",
	KindWeakPassword:    "Password should be at least 6 characters.",
	KindWrongPassword:   "Wrong password. Try again.",
	KindUnknownAccount:  "No account found with this email.",
	KindMissingFields:   "Email and password are required.",
}

// Message returns the canned user-facing message for the given kind.
func Message(kind string) string {
	if m, ok := messages[kind]; ok {
		return m
	}
	return "Something went wrong. Please try again."
}

type (
	// A TDError represents the error format that can be rendered by the todod server.
	TDError struct {
		HTTPCode   int `json:"-"`
		FieldError err `json:"error"`
	}

	err struct {
		Tag     string `json:"tag,omitempty"`
		Message string `json:"message"`
	}
)

// StatusCode returns the HTTP status code.
func StatusCode(err error) int {
	if tderr, ok := err.(*TDError); ok {
		return tderr.HTTPCode
	}
	return http.StatusInternalServerError
}

// KindOf returns the credential failure kind carried by err.
// Any error that is not a tagged TDError has the fallback kind.
func KindOf(err error) string {
	if tderr, ok := err.(*TDError); ok && tderr.FieldError.Tag != "" {
		return tderr.FieldError.Tag
	}
	return KindOther
}

// New returns a new TDError with the given message.
func New(message string) *TDError {
	return &TDError{FieldError: err{Message: message}}
}

// NewKind returns a new TDError tagged with the given credential failure kind
// and carrying its canned message.
func NewKind(code int, kind string) *TDError {
	return &TDError{HTTPCode: code, FieldError: err{Tag: kind, Message: Message(kind)}}
}

// NewWithTagCode returns a new TDError with the given code, tag and message.
func NewWithTagCode(code int, tag, message string) *TDError {
	return &TDError{HTTPCode: code, FieldError: err{Tag: tag, Message: message}}
}

// Error implements error interface.
func (e *TDError) Error() string {
	return e.FieldError.Message
}
